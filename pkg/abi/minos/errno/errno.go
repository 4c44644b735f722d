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

// Package errno holds errno codes for the minos ABI.
package errno

// Errno represents a minos errno value. Syscalls report failure by returning
// the negated errno value.
type Errno uint32

// Errno values defined by the ABI.
//
// EDEADLK deliberately keeps the historical 0xdead encoding: a rejected
// request surfaces to userspace as -0xdead.
const (
	NOERRNO Errno = iota
	EINVAL        // invalid argument
	EBUSY         // resource busy
	EBADH         // bad resource handle
	ENOSYS        // syscall not implemented

	EDEADLK Errno = 0xdead
)
