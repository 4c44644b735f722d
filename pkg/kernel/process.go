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
	"minos.dev/minos/pkg/kernel/ksync"
	"minos.dev/minos/pkg/sync"
)

// PID is a process identifier.
type PID int32

// MutexID identifies a mutex slot within a process.
type MutexID int32

// SemID identifies a semaphore slot within a process.
type SemID int32

// CondID identifies a condition-variable slot within a process.
type CondID int32

const (
	noMutex MutexID = -1
	noSem   SemID   = -1
)

// mutexSlot is a mutex table entry: the blocking primitive plus its holder
// ledger entry. At most one thread holds a mutex at any time.
type mutexSlot struct {
	prim ksync.Mutex

	// holder is the thread currently holding the mutex, or noThread.
	holder ThreadID
}

// semSlot is a semaphore table entry.
type semSlot struct {
	prim *ksync.Semaphore

	// capacity is the unit count set at creation. Immutable.
	capacity int

	// avail is the number of units not currently held by any thread.
	// avail + sum of per-thread held counts == capacity, preserved by
	// every up/down pair.
	avail int
}

// threadRow is a thread's ledger row: its pending request, if any, and its
// per-semaphore held-unit counts. Rows are created when the thread is and
// never shrink.
type threadRow struct {
	// wantMutex is set only between a lock request and its grant.
	wantMutex MutexID

	// wantSem is set only between a down request and its grant.
	wantSem SemID

	// semHeld[sid] is the number of units of semaphore sid this thread
	// holds. len(semHeld) tracks the semaphore table length.
	semHeld []int
}

// Process is a collection of threads sharing a synchronization-object
// registry.
type Process struct {
	// pid is this process's PID. Immutable.
	pid PID

	// k is the owning kernel. Immutable.
	k *Kernel

	// mu is the exclusive-access guard over all fields below. It must be
	// released before delegating to a blocking primitive and re-acquired
	// after the primitive returns; request recording and deadlock
	// detection run while holding it.
	mu sync.Mutex

	// nextTID is the next thread ID to assign.
	nextTID ThreadID

	// rows are the per-thread ledger rows, indexed by ThreadID.
	rows []threadRow

	// mutexes, semaphores and condvars are the resource tables. nil
	// entries are free slots, reused lowest index first.
	mutexes    []*mutexSlot
	semaphores []*semSlot
	condvars   []*ksync.Condvar

	// detectDeadlock governs both deadlock detectors. Toggled by the
	// enable-detection syscall only.
	detectDeadlock bool
}

// PID returns p's process ID.
func (p *Process) PID() PID {
	return p.pid
}

// NewTask creates a new thread in p and returns its Task, allocating its
// ledger row. The caller runs the task's code on its own goroutine.
func (p *Process) NewTask() *Task {
	p.mu.Lock()
	defer p.mu.Unlock()

	tid := p.nextTID
	p.nextTID++
	p.rows = append(p.rows, threadRow{
		wantMutex: noMutex,
		wantSem:   noSem,
		semHeld:   make([]int, len(p.semaphores)),
	})
	return &Task{tid: tid, p: p, k: p.k}
}

// DeadlockDetectEnabled returns whether deadlock detection is currently
// enabled for p.
func (p *Process) DeadlockDetectEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detectDeadlock
}
