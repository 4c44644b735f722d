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

// Deadlock detection. Both detectors run with the process guard held and
// never suspend, so they observe a consistent registry snapshot. They are
// detection only: a positive result aborts the requesting call, nothing
// else is rolled back.

// mutexDeadlockLocked reports whether granting tid's pending request for mid
// would close a cycle in the wait-for graph.
//
// Mutexes are single-instance resources and each thread waits on at most one
// mutex at a time, so the graph from the requester is a unique chain:
// requested mutex -> holder -> mutex the holder waits on -> ... The walk
// terminates at a free mutex, at a thread that is not waiting, or at a
// thread already seen (a cycle).
//
// Preconditions: p.mu must be held. p.rows[tid].wantMutex == mid.
func (p *Process) mutexDeadlockLocked(tid ThreadID, mid MutexID) bool {
	visited := map[ThreadID]bool{tid: true}
	cursor := mid
	for {
		holder := p.mutexes[cursor].holder
		if holder == noThread {
			// Free, or will be granted without implicating tid.
			return false
		}
		if visited[holder] {
			return true
		}
		visited[holder] = true
		next := p.rows[holder].wantMutex
		if next == noMutex {
			return false
		}
		cursor = next
	}
}

// semDeadlockLocked runs a safety check over the semaphore ledger: given
// current holdings and pending requests, can every blocked thread eventually
// make progress? It is invoked after the requester's wantSem entry was
// recorded, so the requester participates like any other pending thread.
//
// This is the multi-instance analogue of the mutex chain walk, restricted to
// the down contract of one unit per request: a pending request is satisfiable
// in a pass iff the requested semaphore has a unit available in the work
// vector. A multi-unit down would need a magnitude comparison here instead
// of the == 0 test.
//
// Preconditions: p.mu must be held.
func (p *Process) semDeadlockLocked() bool {
	// work starts as the per-semaphore available units and accumulates the
	// holdings of every thread assumed to have finished.
	work := make([]int, len(p.semaphores))
	for sid, slot := range p.semaphores {
		if slot != nil {
			work[sid] = slot.avail
		}
	}

	// Threads holding nothing are trivially satisfiable and excluded up
	// front.
	unfinished := make(map[ThreadID]bool)
	for tid := range p.rows {
		for _, held := range p.rows[tid].semHeld {
			if held > 0 {
				unfinished[ThreadID(tid)] = true
				break
			}
		}
	}

	for len(unfinished) > 0 {
		progressed := false
		for tid := range unfinished {
			if want := p.rows[tid].wantSem; want != noSem && work[want] == 0 {
				// Cannot be satisfied this pass.
				continue
			}
			// The thread can run to completion: release everything
			// it holds.
			for sid, held := range p.rows[tid].semHeld {
				work[sid] += held
			}
			delete(unfinished, tid)
			progressed = true
		}
		if !progressed {
			// Fixpoint with threads left over: unsafe state.
			return true
		}
	}
	return false
}
