// Copyright 2024 The Minos Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ksync

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"minos.dev/minos/pkg/test/testutil"
)

// signalled returns true if ch is closed before the timeout elapses.
func signalled(ch <-chan struct{}, timeout time.Duration) bool {
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestSpinMutexExclusion(t *testing.T) {
	m := NewSpinMutex()
	const workers = 8
	const iters = 1000

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iters; j++ {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	if counter != workers*iters {
		t.Fatalf("counter got: %d, expected: %d", counter, workers*iters)
	}
}

func TestBlockingMutexBlocksSecondLocker(t *testing.T) {
	m := NewBlockingMutex()
	m.Lock()

	acquired := make(chan struct{})
	go func() {
		m.Lock()
		close(acquired)
	}()

	if signalled(acquired, 50*time.Millisecond) {
		t.Fatalf("second Lock() should have blocked")
	}

	m.Unlock()
	if !signalled(acquired, time.Second) {
		t.Fatalf("second Lock() should have been granted after Unlock()")
	}
	m.Unlock()
}

func TestBlockingMutexHandoffOrder(t *testing.T) {
	m := NewBlockingMutex()
	m.Lock()

	const waiters = 3
	order := make(chan int, waiters)
	var startWG sync.WaitGroup
	for i := 0; i < waiters; i++ {
		startWG.Add(1)
		go func(i int) {
			startWG.Done()
			m.Lock()
			order <- i
			m.Unlock()
		}(i)
		// Give each waiter a chance to enqueue before starting the
		// next, so the queue order is deterministic.
		time.Sleep(20 * time.Millisecond)
	}
	startWG.Wait()

	m.Unlock()
	for i := 0; i < waiters; i++ {
		select {
		case got := <-order:
			if got != i {
				t.Fatalf("wake order got: %d, expected: %d", got, i)
			}
		case <-time.After(time.Second):
			t.Fatalf("waiter %d was never granted the mutex", i)
		}
	}
}

func TestSemaphoreBlocksAtZero(t *testing.T) {
	s := NewSemaphore(1)
	s.Down()

	acquired := make(chan struct{})
	go func() {
		s.Down()
		close(acquired)
	}()

	if signalled(acquired, 50*time.Millisecond) {
		t.Fatalf("Down() should have blocked at zero units")
	}

	s.Up()
	if !signalled(acquired, time.Second) {
		t.Fatalf("Down() should have been granted after Up()")
	}
	s.Up()
}

func TestSemaphoreZeroCapacity(t *testing.T) {
	s := NewSemaphore(0)

	acquired := make(chan struct{})
	go func() {
		s.Down()
		close(acquired)
	}()

	if signalled(acquired, 50*time.Millisecond) {
		t.Fatalf("Down() on an empty semaphore should have blocked")
	}
	s.Up()
	if !signalled(acquired, time.Second) {
		t.Fatalf("Down() should have been granted after Up()")
	}
}

func TestCondvarSignalWakesWaiter(t *testing.T) {
	m := NewBlockingMutex()
	cv := NewCondvar()

	woken := make(chan struct{})
	go func() {
		m.Lock()
		cv.Wait(m)
		m.Unlock()
		close(woken)
	}()

	if err := testutil.Poll(func() error {
		if got := cv.Waiters(); got != 1 {
			return fmt.Errorf("waiters got: %d, expected: 1", got)
		}
		return nil
	}, 5*time.Second); err != nil {
		t.Fatalf("waiter never suspended: %v", err)
	}

	cv.Signal()
	if !signalled(woken, time.Second) {
		t.Fatalf("Wait() should have returned after Signal()")
	}
	if got := cv.Waiters(); got != 0 {
		t.Fatalf("waiters got: %d, expected: 0", got)
	}
}

func TestCondvarSignalWithoutWaiters(t *testing.T) {
	cv := NewCondvar()
	// Must not panic or leave state behind.
	cv.Signal()
	if got := cv.Waiters(); got != 0 {
		t.Fatalf("waiters got: %d, expected: 0", got)
	}
}
