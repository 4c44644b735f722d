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

package kernel

import (
	"testing"
)

// row builds an idle ledger row with held units for nsems semaphores.
func row(nsems int) threadRow {
	return threadRow{wantMutex: noMutex, wantSem: noSem, semHeld: make([]int, nsems)}
}

func TestMutexDetectorTwoThreadCycle(t *testing.T) {
	// t0 holds m0 and waits for m1; t1 holds m1 and requests m0.
	p := &Process{
		mutexes: []*mutexSlot{{holder: 0}, {holder: 1}},
		rows:    []threadRow{row(0), row(0)},
	}
	p.rows[0].wantMutex = 1
	p.rows[1].wantMutex = 0

	if !p.mutexDeadlockLocked(1, 0) {
		t.Fatalf("mutexDeadlockLocked got: false, expected: true")
	}
}

func TestMutexDetectorSelfCycle(t *testing.T) {
	// t0 requests the mutex it already holds.
	p := &Process{
		mutexes: []*mutexSlot{{holder: 0}},
		rows:    []threadRow{row(0)},
	}
	p.rows[0].wantMutex = 0

	if !p.mutexDeadlockLocked(0, 0) {
		t.Fatalf("mutexDeadlockLocked got: false, expected: true")
	}
}

func TestMutexDetectorFreeMutex(t *testing.T) {
	p := &Process{
		mutexes: []*mutexSlot{{holder: noThread}},
		rows:    []threadRow{row(0)},
	}
	p.rows[0].wantMutex = 0

	if p.mutexDeadlockLocked(0, 0) {
		t.Fatalf("mutexDeadlockLocked got: true, expected: false")
	}
}

func TestMutexDetectorChainEndsAtRunningThread(t *testing.T) {
	// t1 requests m0 held by t0; t0 is not waiting on anything.
	p := &Process{
		mutexes: []*mutexSlot{{holder: 0}, {holder: noThread}},
		rows:    []threadRow{row(0), row(0)},
	}
	p.rows[1].wantMutex = 0

	if p.mutexDeadlockLocked(1, 0) {
		t.Fatalf("mutexDeadlockLocked got: true, expected: false")
	}
}

func TestMutexDetectorThreeThreadCycle(t *testing.T) {
	// t0 holds m0 waits m1, t1 holds m1 waits m2, t2 holds m2 requests m0.
	p := &Process{
		mutexes: []*mutexSlot{{holder: 0}, {holder: 1}, {holder: 2}},
		rows:    []threadRow{row(0), row(0), row(0)},
	}
	p.rows[0].wantMutex = 1
	p.rows[1].wantMutex = 2
	p.rows[2].wantMutex = 0

	if !p.mutexDeadlockLocked(2, 0) {
		t.Fatalf("mutexDeadlockLocked got: false, expected: true")
	}
}

func TestSemDetectorSymmetricWait(t *testing.T) {
	// Two capacity-1 semaphores: each thread holds the unit the other
	// requests. Unsafe.
	p := &Process{
		semaphores: []*semSlot{
			{capacity: 1, avail: 0},
			{capacity: 1, avail: 0},
		},
		rows: []threadRow{row(2), row(2)},
	}
	p.rows[0].semHeld[0] = 1
	p.rows[0].wantSem = 1
	p.rows[1].semHeld[1] = 1
	p.rows[1].wantSem = 0

	if !p.semDeadlockLocked() {
		t.Fatalf("semDeadlockLocked got: false, expected: true")
	}
}

func TestSemDetectorSafeWait(t *testing.T) {
	// t0 holds one of two units and requests the other semaphore, whose
	// single unit is held by t1, which is not requesting anything. t1 can
	// finish and release what t0 needs.
	p := &Process{
		semaphores: []*semSlot{
			{capacity: 2, avail: 1},
			{capacity: 1, avail: 0},
		},
		rows: []threadRow{row(2), row(2)},
	}
	p.rows[0].semHeld[0] = 1
	p.rows[0].wantSem = 1
	p.rows[1].semHeld[1] = 1

	if p.semDeadlockLocked() {
		t.Fatalf("semDeadlockLocked got: true, expected: false")
	}
}

func TestSemDetectorIgnoresThreadsHoldingNothing(t *testing.T) {
	// A thread with a pending request but no holdings cannot contribute to
	// an unsafe state: it is trivially satisfiable once units come back.
	p := &Process{
		semaphores: []*semSlot{{capacity: 1, avail: 0}},
		rows:       []threadRow{row(1), row(1)},
	}
	p.rows[0].semHeld[0] = 1
	p.rows[1].wantSem = 0

	if p.semDeadlockLocked() {
		t.Fatalf("semDeadlockLocked got: true, expected: false")
	}
}

func TestSemDetectorEmptyLedger(t *testing.T) {
	p := &Process{
		semaphores: []*semSlot{{capacity: 1, avail: 1}},
		rows:       []threadRow{row(1)},
	}
	if p.semDeadlockLocked() {
		t.Fatalf("semDeadlockLocked got: true, expected: false")
	}
}
