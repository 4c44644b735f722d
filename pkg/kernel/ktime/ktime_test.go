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

package ktime

import (
	"testing"
	"time"
)

func TestMonotonicClock(t *testing.T) {
	c := NewMonotonicClock()
	first := c.Now()
	time.Sleep(5 * time.Millisecond)
	second := c.Now()
	if second < first {
		t.Fatalf("clock went backwards, first: %d, second: %d", first, second)
	}
}

func TestTimerQueueFires(t *testing.T) {
	c := NewMonotonicClock()
	tq := NewTimerQueue(c)
	defer tq.Shutdown()

	before := c.Now()
	ch := tq.ScheduleWake(before + 20)
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("wake never fired")
	}
	if elapsed := c.Now() - before; elapsed < 20 {
		t.Fatalf("wake fired after %dms, expected at least 20ms", elapsed)
	}
}

func TestTimerQueuePastDeadline(t *testing.T) {
	c := NewMonotonicClock()
	tq := NewTimerQueue(c)
	defer tq.Shutdown()

	ch := tq.ScheduleWake(0)
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("past deadline should fire immediately")
	}
}

func TestTimerQueueOrder(t *testing.T) {
	c := NewMonotonicClock()
	tq := NewTimerQueue(c)
	defer tq.Shutdown()

	now := c.Now()
	// Scheduled out of order on purpose.
	late := tq.ScheduleWake(now + 100)
	early := tq.ScheduleWake(now + 10)

	select {
	case <-early:
	case <-time.After(5 * time.Second):
		t.Fatalf("early wake never fired")
	}
	select {
	case <-late:
		t.Fatalf("late wake fired with the early one")
	default:
	}
	select {
	case <-late:
	case <-time.After(5 * time.Second):
		t.Fatalf("late wake never fired")
	}
}

func TestTimerQueueSameDeadline(t *testing.T) {
	c := NewMonotonicClock()
	tq := NewTimerQueue(c)
	defer tq.Shutdown()

	when := c.Now() + 10
	a := tq.ScheduleWake(when)
	b := tq.ScheduleWake(when)
	for i, ch := range []<-chan struct{}{a, b} {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatalf("wake %d never fired", i)
		}
	}
}
