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

// Package ksync provides the blocking synchronization primitives consumed by
// the kernel's sync-object registry. It transforms blocking operations into
// waits on channels, which is useful in a Go-based kernel: each kernel thread
// is backed by a goroutine, so suspension is a channel receive.
//
// The registry treats these primitives as opaque. In particular, wake order
// when a resource is released is this package's business and carries no
// fairness guarantee.
package ksync

import (
	"runtime"
	"sync/atomic"

	"minos.dev/minos/pkg/sync"
)

// Mutex is the capability consumed by the registry for mutex slots. The
// flavor set is closed: SpinMutex and BlockingMutex, selected at creation
// time.
type Mutex interface {
	// Lock acquires the mutex, suspending the caller until it is
	// available.
	Lock()

	// Unlock releases the mutex.
	//
	// Preconditions: the mutex is locked.
	Unlock()
}

// SpinMutex is a test-and-set mutex that yields the processor while waiting.
type SpinMutex struct {
	locked atomic.Bool
}

// NewSpinMutex creates an unlocked SpinMutex.
func NewSpinMutex() *SpinMutex {
	return &SpinMutex{}
}

// Lock implements Mutex.Lock.
func (m *SpinMutex) Lock() {
	for !m.locked.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// Unlock implements Mutex.Unlock.
func (m *SpinMutex) Unlock() {
	m.locked.Store(false)
}

// BlockingMutex is a mutex that suspends waiters and hands the lock directly
// to the longest waiting one on unlock.
type BlockingMutex struct {
	// mu protects the fields below. It is only held for bounded bookkeeping,
	// never across a suspension.
	mu sync.Mutex

	locked  bool
	waiters waitQueue
}

// NewBlockingMutex creates an unlocked BlockingMutex.
func NewBlockingMutex() *BlockingMutex {
	return &BlockingMutex{}
}

// Lock implements Mutex.Lock.
func (m *BlockingMutex) Lock() {
	m.mu.Lock()
	if !m.locked {
		m.locked = true
		m.mu.Unlock()
		return
	}
	ch := m.waiters.push()
	m.mu.Unlock()
	<-ch
	// Ownership was transferred by Unlock; locked stays true throughout.
}

// Unlock implements Mutex.Unlock.
func (m *BlockingMutex) Unlock() {
	m.mu.Lock()
	if ch, ok := m.waiters.pop(); ok {
		ch <- struct{}{}
	} else {
		m.locked = false
	}
	m.mu.Unlock()
}

// Semaphore is a counting semaphore. The count may go negative, in which
// case its magnitude is the number of suspended waiters.
type Semaphore struct {
	mu      sync.Mutex
	count   int
	waiters waitQueue
}

// NewSemaphore creates a semaphore holding count units.
func NewSemaphore(count int) *Semaphore {
	return &Semaphore{count: count}
}

// Down acquires one unit, suspending the caller until one is available.
func (s *Semaphore) Down() {
	s.mu.Lock()
	s.count--
	if s.count < 0 {
		ch := s.waiters.push()
		s.mu.Unlock()
		<-ch
		return
	}
	s.mu.Unlock()
}

// Up releases one unit, waking a suspended waiter if there is one.
func (s *Semaphore) Up() {
	s.mu.Lock()
	s.count++
	if s.count <= 0 {
		if ch, ok := s.waiters.pop(); ok {
			ch <- struct{}{}
		}
	}
	s.mu.Unlock()
}

// Condvar is a condition variable. It holds no state of its own; the caller
// must hold the associated mutex around Wait.
type Condvar struct {
	mu      sync.Mutex
	waiters waitQueue
}

// NewCondvar creates a Condvar with no waiters.
func NewCondvar() *Condvar {
	return &Condvar{}
}

// Signal wakes one waiter, if any.
func (c *Condvar) Signal() {
	c.mu.Lock()
	if ch, ok := c.waiters.pop(); ok {
		ch <- struct{}{}
	}
	c.mu.Unlock()
}

// Wait releases mutex, suspends the caller until signalled, then reacquires
// mutex.
//
// Preconditions: the caller holds mutex.
func (c *Condvar) Wait(mutex Mutex) {
	c.mu.Lock()
	ch := c.waiters.push()
	c.mu.Unlock()
	mutex.Unlock()
	<-ch
	mutex.Lock()
}

// Waiters returns the number of threads currently suspended in Wait.
func (c *Condvar) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters.chs)
}

// waitQueue is a FIFO of suspended callers. Channels are buffered so a wake
// never blocks the waker.
type waitQueue struct {
	chs []chan struct{}
}

func (q *waitQueue) push() chan struct{} {
	ch := make(chan struct{}, 1)
	q.chs = append(q.chs, ch)
	return ch
}

func (q *waitQueue) pop() (chan struct{}, bool) {
	if len(q.chs) == 0 {
		return nil, false
	}
	ch := q.chs[0]
	q.chs = q.chs[1:]
	return ch, true
}
