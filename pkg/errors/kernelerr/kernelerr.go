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

// Package kernelerr contains kernel error codes exported as error interface
// pointers. Sentinels are compared by pointer, which keeps error checks on
// the syscall path cheap.
package kernelerr

import (
	"minos.dev/minos/pkg/abi/minos/errno"
	"minos.dev/minos/pkg/errors"
)

// The following errors cover every failure the sync registry reports. All of
// them are local, recoverable conditions: none terminate the process or the
// thread that hit them.
var (
	// EINVAL is returned for an argument outside its valid sentinels, e.g.
	// a deadlock-detection toggle other than 0 or 1.
	EINVAL = errors.New(errno.EINVAL, "invalid argument")

	// EBUSY is returned when destroying a resource that is still held or
	// has waiters.
	EBUSY = errors.New(errno.EBUSY, "resource busy")

	// EBADH is returned for a resource id that is out of range or not
	// currently allocated. This is a caller contract violation, reported
	// rather than allowed to corrupt table state.
	EBADH = errors.New(errno.EBADH, "bad resource handle")

	// ENOSYS is returned for an unknown syscall number.
	ENOSYS = errors.New(errno.ENOSYS, "syscall not implemented")

	// EDEADLK is returned when a blocking request would provably deadlock
	// the process. The request is not granted and the caller retains no
	// pending state.
	EDEADLK = errors.New(errno.EDEADLK, "resource deadlock would occur")
)

// ToErrno translates an error to its ABI errno value. Unrecognized errors
// map to EINVAL.
func ToErrno(err error) errno.Errno {
	if err == nil {
		return errno.NOERRNO
	}
	if e, ok := err.(*errors.Error); ok {
		return e.Errno()
	}
	return errno.EINVAL
}
