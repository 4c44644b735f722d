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

// Package kernel provides the process-scoped synchronization-object registry
// and deadlock detection.
//
// Threads within a process create mutexes, counting semaphores and condition
// variables through slot tables with hole reuse. The kernel tracks which
// thread holds or awaits which resource in per-thread ledger rows and, when
// detection is enabled, refuses a blocking request that would provably
// deadlock the process: a resource-allocation-graph cycle search for mutexes
// and a Banker's-style safety check for semaphores.
//
// Lock ordering: the process guard (Process.mu) is the only lock taken on
// registry paths. It is never held across a call into a blocking primitive.
package kernel

import (
	"time"

	"minos.dev/minos/pkg/kernel/ktime"
	"minos.dev/minos/pkg/log"
	"minos.dev/minos/pkg/sync"
)

// Kernel owns the machine-wide facilities shared by every process: the boot
// clock, the wake-deadline queue and PID assignment.
type Kernel struct {
	// clock counts milliseconds from boot. Immutable.
	clock ktime.Clock

	// timers dispatches sleep wakeups. Immutable.
	timers *ktime.TimerQueue

	// syncLog rate limits warnings that guest code can trigger at will.
	// Immutable.
	syncLog log.Logger

	// mu protects nextPID.
	mu      sync.Mutex
	nextPID PID
}

// New creates a booted Kernel.
func New() *Kernel {
	clock := ktime.NewMonotonicClock()
	return &Kernel{
		clock:   clock,
		timers:  ktime.NewTimerQueue(clock),
		syncLog: log.BasicRateLimitedLogger(time.Second),
		nextPID: 1,
	}
}

// Shutdown releases kernel resources. Tasks still blocked in primitives are
// abandoned.
func (k *Kernel) Shutdown() {
	k.timers.Shutdown()
}

// CreateProcess creates an empty process. Threads are added with
// Process.NewTask.
func (k *Kernel) CreateProcess() *Process {
	k.mu.Lock()
	pid := k.nextPID
	k.nextPID++
	k.mu.Unlock()

	return &Process{pid: pid, k: k}
}
