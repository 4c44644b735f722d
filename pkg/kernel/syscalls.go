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
)

// SyscallArguments are the raw arguments to a syscall.
type SyscallArguments [3]uint64

// SyscallFn is a syscall implementation.
type SyscallFn func(t *Task, args SyscallArguments) (int64, error)

// syscallTable maps syscall numbers to their implementations. Unknown
// numbers report ENOSYS.
var syscallTable = map[uintptr]SyscallFn{
	minos.SYS_SLEEP:                  sysSleep,
	minos.SYS_MUTEX_CREATE:           sysMutexCreate,
	minos.SYS_MUTEX_LOCK:             sysMutexLock,
	minos.SYS_MUTEX_UNLOCK:           sysMutexUnlock,
	minos.SYS_MUTEX_DESTROY:          sysMutexDestroy,
	minos.SYS_SEMAPHORE_CREATE:       sysSemaphoreCreate,
	minos.SYS_SEMAPHORE_UP:           sysSemaphoreUp,
	minos.SYS_SEMAPHORE_DOWN:         sysSemaphoreDown,
	minos.SYS_SEMAPHORE_DESTROY:      sysSemaphoreDestroy,
	minos.SYS_CONDVAR_CREATE:         sysCondvarCreate,
	minos.SYS_CONDVAR_SIGNAL:         sysCondvarSignal,
	minos.SYS_CONDVAR_WAIT:           sysCondvarWait,
	minos.SYS_CONDVAR_DESTROY:        sysCondvarDestroy,
	minos.SYS_ENABLE_DEADLOCK_DETECT: sysEnableDeadlockDetect,
}

// SyscallNames maps syscall numbers to names, for diagnostics.
var SyscallNames = map[uintptr]string{
	minos.SYS_SLEEP:                  "sleep",
	minos.SYS_MUTEX_CREATE:           "mutex_create",
	minos.SYS_MUTEX_LOCK:             "mutex_lock",
	minos.SYS_MUTEX_UNLOCK:           "mutex_unlock",
	minos.SYS_MUTEX_DESTROY:          "mutex_destroy",
	minos.SYS_SEMAPHORE_CREATE:       "semaphore_create",
	minos.SYS_SEMAPHORE_UP:           "semaphore_up",
	minos.SYS_SEMAPHORE_DOWN:         "semaphore_down",
	minos.SYS_SEMAPHORE_DESTROY:      "semaphore_destroy",
	minos.SYS_CONDVAR_CREATE:         "condvar_create",
	minos.SYS_CONDVAR_SIGNAL:         "condvar_signal",
	minos.SYS_CONDVAR_WAIT:           "condvar_wait",
	minos.SYS_CONDVAR_DESTROY:        "condvar_destroy",
	minos.SYS_ENABLE_DEADLOCK_DETECT: "enable_deadlock_detect",
}

// Syscall executes syscall sysno for t and returns the raw ABI result: a
// non-negative value on success, a negated errno on failure.
func (t *Task) Syscall(sysno uintptr, args SyscallArguments) int64 {
	fn, ok := syscallTable[sysno]
	if !ok {
		return -int64(kernelerr.ToErrno(kernelerr.ENOSYS))
	}
	r, err := fn(t, args)
	if err != nil {
		return -int64(kernelerr.ToErrno(err))
	}
	return r
}

func sysSleep(t *Task, args SyscallArguments) (int64, error) {
	t.Sleep(args[0])
	return 0, nil
}

func sysMutexCreate(t *Task, args SyscallArguments) (int64, error) {
	return int64(t.MutexCreate(args[0] == minos.MutexBlocking)), nil
}

func sysMutexLock(t *Task, args SyscallArguments) (int64, error) {
	return 0, t.MutexLock(MutexID(args[0]))
}

func sysMutexUnlock(t *Task, args SyscallArguments) (int64, error) {
	return 0, t.MutexUnlock(MutexID(args[0]))
}

func sysMutexDestroy(t *Task, args SyscallArguments) (int64, error) {
	return 0, t.MutexDestroy(MutexID(args[0]))
}

func sysSemaphoreCreate(t *Task, args SyscallArguments) (int64, error) {
	return int64(t.SemCreate(int(args[0]))), nil
}

func sysSemaphoreUp(t *Task, args SyscallArguments) (int64, error) {
	return 0, t.SemUp(SemID(args[0]))
}

func sysSemaphoreDown(t *Task, args SyscallArguments) (int64, error) {
	return 0, t.SemDown(SemID(args[0]))
}

func sysSemaphoreDestroy(t *Task, args SyscallArguments) (int64, error) {
	return 0, t.SemDestroy(SemID(args[0]))
}

func sysCondvarCreate(t *Task, args SyscallArguments) (int64, error) {
	return int64(t.CondvarCreate()), nil
}

func sysCondvarSignal(t *Task, args SyscallArguments) (int64, error) {
	return 0, t.CondvarSignal(CondID(args[0]))
}

func sysCondvarWait(t *Task, args SyscallArguments) (int64, error) {
	return 0, t.CondvarWait(CondID(args[0]), MutexID(args[1]))
}

func sysCondvarDestroy(t *Task, args SyscallArguments) (int64, error) {
	return 0, t.CondvarDestroy(CondID(args[0]))
}

func sysEnableDeadlockDetect(t *Task, args SyscallArguments) (int64, error) {
	return 0, t.SetDeadlockDetect(args[0])
}
