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
	"minos.dev/minos/pkg/abi/minos"
	"minos.dev/minos/pkg/errors/kernelerr"
	"minos.dev/minos/pkg/kernel/ksync"
	"minos.dev/minos/pkg/kernel/ktime"
	"minos.dev/minos/pkg/log"
)

// Sync-object entry points. Every operation follows the same discipline:
// validate the handle and record the request under the process guard, run
// the matching detector there if detection is enabled, then release the
// guard before calling into the blocking primitive and re-acquire it to
// record the grant. A rejected request never blocks and mutates nothing
// beyond clearing the just-recorded request.

// MutexCreate creates a mutex of the requested flavor and returns its id,
// reusing the lowest free slot before growing the table.
func (t *Task) MutexCreate(blocking bool) MutexID {
	var prim ksync.Mutex
	if blocking {
		prim = ksync.NewBlockingMutex()
	} else {
		prim = ksync.NewSpinMutex()
	}

	p := t.p
	p.mu.Lock()
	defer p.mu.Unlock()
	id := MutexID(slotInstall(&p.mutexes, &mutexSlot{prim: prim, holder: noThread}))
	log.Debugf("pid %d tid %v: created mutex %d (blocking=%t)", p.pid, t.tid, id, blocking)
	return id
}

// MutexLock locks the mutex, suspending t until it is granted. With
// detection enabled, a request that would provably deadlock the process is
// rejected with EDEADLK instead of blocking, leaving all holders unchanged.
func (t *Task) MutexLock(id MutexID) error {
	p := t.p
	p.mu.Lock()
	slot := slotGet(p.mutexes, int(id))
	if slot == nil {
		p.mu.Unlock()
		return kernelerr.EBADH
	}

	p.rows[t.tid].wantMutex = id
	if p.detectDeadlock && p.mutexDeadlockLocked(t.tid, id) {
		p.rows[t.tid].wantMutex = noMutex
		p.mu.Unlock()
		log.Warningf("deadlock: pid %d tid %v mutex %d", p.pid, t.tid, id)
		return kernelerr.EDEADLK
	}

	// Hold a reference to the primitive while the table lock is dropped.
	prim := slot.prim
	p.mu.Unlock()

	prim.Lock()

	p.mu.Lock()
	slot.holder = t.tid
	p.rows[t.tid].wantMutex = noMutex
	p.mu.Unlock()
	return nil
}

// MutexUnlock unlocks the mutex and clears its holder. Releasing never
// deadlocks, so no detection is involved.
func (t *Task) MutexUnlock(id MutexID) error {
	p := t.p
	p.mu.Lock()
	slot := slotGet(p.mutexes, int(id))
	if slot == nil {
		p.mu.Unlock()
		return kernelerr.EBADH
	}
	// Unlock wakes at most one waiter and never suspends, so it is safe
	// under the guard.
	slot.prim.Unlock()
	slot.holder = noThread
	p.mu.Unlock()
	return nil
}

// MutexDestroy frees the mutex slot for reuse. The mutex must be unheld and
// have no thread waiting on it.
func (t *Task) MutexDestroy(id MutexID) error {
	p := t.p
	p.mu.Lock()
	defer p.mu.Unlock()

	slot := slotGet(p.mutexes, int(id))
	if slot == nil {
		return kernelerr.EBADH
	}
	if slot.holder != noThread {
		return kernelerr.EBUSY
	}
	for tid := range p.rows {
		if p.rows[tid].wantMutex == id {
			return kernelerr.EBUSY
		}
	}
	p.mutexes[id] = nil
	return nil
}

// SemCreate creates a counting semaphore with the given unit capacity and
// returns its id. Every thread's held count for the new id starts at zero.
func (t *Task) SemCreate(capacity int) SemID {
	p := t.p
	p.mu.Lock()
	defer p.mu.Unlock()

	slot := &semSlot{
		prim:     ksync.NewSemaphore(capacity),
		capacity: capacity,
		avail:    capacity,
	}
	id := SemID(slotInstall(&p.semaphores, slot))
	// Extend or reset every ledger row at the new id.
	for tid := range p.rows {
		row := &p.rows[tid]
		for len(row.semHeld) < len(p.semaphores) {
			row.semHeld = append(row.semHeld, 0)
		}
		row.semHeld[id] = 0
	}
	log.Debugf("pid %d tid %v: created semaphore %d (capacity=%d)", p.pid, t.tid, id, capacity)
	return id
}

// SemUp releases one unit of the semaphore, waking a suspended waiter if
// there is one. Releasing never deadlocks, so no detection is involved.
func (t *Task) SemUp(id SemID) error {
	p := t.p
	p.mu.Lock()
	slot := slotGet(p.semaphores, int(id))
	if slot == nil {
		p.mu.Unlock()
		return kernelerr.EBADH
	}
	// Up wakes at most one waiter and never suspends, so it is safe under
	// the guard.
	slot.prim.Up()
	slot.avail++
	row := &p.rows[t.tid]
	if row.semHeld[id] > 0 {
		row.semHeld[id]--
	} else {
		// An up without a matching down. The unit count simply grows;
		// the ledger keeps held counts non-negative.
		t.k.syncLog.Warningf("pid %d tid %v: up on semaphore %d it does not hold", p.pid, t.tid, id)
	}
	p.mu.Unlock()
	return nil
}

// SemDown acquires one unit of the semaphore, suspending t until one is
// available. With detection enabled, a request leaving the process in an
// unsafe state is rejected with EDEADLK instead of blocking.
func (t *Task) SemDown(id SemID) error {
	p := t.p
	p.mu.Lock()
	slot := slotGet(p.semaphores, int(id))
	if slot == nil {
		p.mu.Unlock()
		return kernelerr.EBADH
	}

	p.rows[t.tid].wantSem = id
	if p.detectDeadlock && p.semDeadlockLocked() {
		p.rows[t.tid].wantSem = noSem
		p.mu.Unlock()
		log.Warningf("deadlock: pid %d tid %v semaphore %d", p.pid, t.tid, id)
		return kernelerr.EDEADLK
	}

	prim := slot.prim
	p.mu.Unlock()

	prim.Down()

	p.mu.Lock()
	p.rows[t.tid].wantSem = noSem
	slot.avail--
	p.rows[t.tid].semHeld[id]++
	p.mu.Unlock()
	return nil
}

// SemDestroy frees the semaphore slot for reuse. All units must be back in
// the pool and no thread may be waiting on it.
func (t *Task) SemDestroy(id SemID) error {
	p := t.p
	p.mu.Lock()
	defer p.mu.Unlock()

	slot := slotGet(p.semaphores, int(id))
	if slot == nil {
		return kernelerr.EBADH
	}
	if slot.avail != slot.capacity {
		return kernelerr.EBUSY
	}
	for tid := range p.rows {
		if p.rows[tid].wantSem == id {
			return kernelerr.EBUSY
		}
	}
	p.semaphores[id] = nil
	return nil
}

// CondvarCreate creates a condition variable and returns its id.
func (t *Task) CondvarCreate() CondID {
	p := t.p
	p.mu.Lock()
	defer p.mu.Unlock()
	id := CondID(slotInstall(&p.condvars, ksync.NewCondvar()))
	log.Debugf("pid %d tid %v: created condvar %d", p.pid, t.tid, id)
	return id
}

// CondvarSignal wakes one waiter of the condition variable, if any.
func (t *Task) CondvarSignal(id CondID) error {
	p := t.p
	p.mu.Lock()
	cv := slotGet(p.condvars, int(id))
	if cv == nil {
		p.mu.Unlock()
		return kernelerr.EBADH
	}
	p.mu.Unlock()

	cv.Signal()
	return nil
}

// CondvarWait suspends t on the condition variable until signalled. The
// caller must hold the mutex; the primitive releases it for the duration of
// the wait and reacquires it before returning. The wait is opaque to
// deadlock detection: the mutex holder ledger is maintained by lock/unlock
// only.
func (t *Task) CondvarWait(cid CondID, mid MutexID) error {
	p := t.p
	p.mu.Lock()
	cv := slotGet(p.condvars, int(cid))
	mslot := slotGet(p.mutexes, int(mid))
	if cv == nil || mslot == nil {
		p.mu.Unlock()
		return kernelerr.EBADH
	}
	prim := mslot.prim
	p.mu.Unlock()

	cv.Wait(prim)
	return nil
}

// CondvarDestroy frees the condition-variable slot for reuse. The condition
// variable must have no waiters.
func (t *Task) CondvarDestroy(id CondID) error {
	p := t.p
	p.mu.Lock()
	defer p.mu.Unlock()

	cv := slotGet(p.condvars, int(id))
	if cv == nil {
		return kernelerr.EBADH
	}
	if cv.Waiters() > 0 {
		return kernelerr.EBUSY
	}
	p.condvars[id] = nil
	return nil
}

// SetDeadlockDetect toggles deadlock detection for t's process. Only the
// two ABI sentinels are accepted; any other value leaves the flag unchanged
// and returns EINVAL.
func (t *Task) SetDeadlockDetect(v uint64) error {
	p := t.p
	p.mu.Lock()
	defer p.mu.Unlock()

	switch v {
	case minos.DeadlockDetectDisable:
		p.detectDeadlock = false
	case minos.DeadlockDetectEnable:
		p.detectDeadlock = true
	default:
		return kernelerr.EINVAL
	}
	return nil
}

// Sleep suspends t for at least ms milliseconds. No detection applies; the
// wake is registered with the timer facility and t yields.
func (t *Task) Sleep(ms uint64) {
	deadline := t.k.clock.Now() + ktime.Time(ms)
	t.block(t.k.timers.ScheduleWake(deadline))
}
