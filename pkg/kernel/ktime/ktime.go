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

// Package ktime provides the kernel clock and the wake-deadline queue backing
// the sleep syscall.
package ktime

import (
	"time"

	"github.com/google/btree"

	"minos.dev/minos/pkg/sync"
)

// Time is a kernel timestamp in milliseconds since boot.
type Time int64

// Clock tells the kernel time.
type Clock interface {
	// Now returns the current kernel time.
	Now() Time
}

type monotonicClock struct {
	start time.Time
}

// Now implements Clock.Now.
func (c *monotonicClock) Now() Time {
	return Time(time.Since(c.start) / time.Millisecond)
}

// NewMonotonicClock returns a Clock counting milliseconds from its creation.
func NewMonotonicClock() Clock {
	return &monotonicClock{start: time.Now()}
}

// timerEntry is a single scheduled wake. seq breaks ties between entries
// with the same deadline so the btree never coalesces them.
type timerEntry struct {
	when Time
	seq  uint64
	ch   chan struct{}
}

func timerEntryLess(a, b timerEntry) bool {
	if a.when != b.when {
		return a.when < b.when
	}
	return a.seq < b.seq
}

// TimerQueue dispatches wakes at requested deadlines. Entries are kept in a
// btree ordered by deadline; a single goroutine sleeps until the earliest one
// and closes its channel when it is due.
type TimerQueue struct {
	clock Clock

	// mu protects entries and seq.
	mu      sync.Mutex
	entries *btree.BTreeG[timerEntry]
	seq     uint64

	// kick is signalled when a new earliest entry may have been added.
	kick chan struct{}
	stop chan struct{}
}

// NewTimerQueue creates a TimerQueue and starts its dispatch goroutine.
func NewTimerQueue(clock Clock) *TimerQueue {
	tq := &TimerQueue{
		clock:   clock,
		entries: btree.NewG(16, timerEntryLess),
		kick:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
	go tq.dispatch()
	return tq
}

// ScheduleWake registers a wake at the given deadline and returns the channel
// that will be closed when it fires. Deadlines in the past fire immediately.
func (tq *TimerQueue) ScheduleWake(when Time) <-chan struct{} {
	ch := make(chan struct{})
	tq.mu.Lock()
	tq.seq++
	tq.entries.ReplaceOrInsert(timerEntry{when: when, seq: tq.seq, ch: ch})
	tq.mu.Unlock()

	select {
	case tq.kick <- struct{}{}:
	default:
	}
	return ch
}

// Shutdown stops the dispatch goroutine. Pending wakes are abandoned.
func (tq *TimerQueue) Shutdown() {
	close(tq.stop)
}

func (tq *TimerQueue) dispatch() {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		now := tq.clock.Now()

		tq.mu.Lock()
		// Fire everything that is due.
		for {
			e, ok := tq.entries.Min()
			if !ok || e.when > now {
				break
			}
			tq.entries.DeleteMin()
			close(e.ch)
		}
		next, ok := tq.entries.Min()
		tq.mu.Unlock()

		if !ok {
			select {
			case <-tq.kick:
				continue
			case <-tq.stop:
				return
			}
		}

		timer.Reset(time.Duration(next.when-now) * time.Millisecond)
		select {
		case <-timer.C:
		case <-tq.kick:
			if !timer.Stop() {
				<-timer.C
			}
		case <-tq.stop:
			return
		}
	}
}
