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

// Package minos contains constants and types shared by the minos kernel and
// its userspace ABI.
package minos

// Syscall numbers.
const (
	SYS_SLEEP                  = 101
	SYS_MUTEX_CREATE           = 1010
	SYS_MUTEX_LOCK             = 1011
	SYS_MUTEX_UNLOCK           = 1012
	SYS_MUTEX_DESTROY          = 1013
	SYS_SEMAPHORE_CREATE       = 1020
	SYS_SEMAPHORE_UP           = 1021
	SYS_SEMAPHORE_DOWN         = 1022
	SYS_SEMAPHORE_DESTROY      = 1023
	SYS_CONDVAR_CREATE         = 1030
	SYS_CONDVAR_SIGNAL         = 1031
	SYS_CONDVAR_WAIT           = 1032
	SYS_CONDVAR_DESTROY        = 1033
	SYS_ENABLE_DEADLOCK_DETECT = 1040
)

// Arguments accepted by SYS_ENABLE_DEADLOCK_DETECT. Any other value is
// rejected with EINVAL.
const (
	DeadlockDetectDisable = 0
	DeadlockDetectEnable  = 1
)

// MutexCreate argument selecting the mutex flavor.
const (
	MutexSpin     = 0
	MutexBlocking = 1
)
