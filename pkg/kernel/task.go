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

// Task represents a kernel thread. Each Task is backed by a goroutine;
// kernel entry points are invoked as methods on the calling Task, so the
// receiver is always "the current thread".
type Task struct {
	// tid is this task's thread ID within its process. Immutable.
	tid ThreadID

	// p is the process this task belongs to. Immutable.
	p *Process

	// k is the owning kernel. Immutable.
	k *Kernel
}

// ThreadID returns t's thread ID.
func (t *Task) ThreadID() ThreadID {
	return t.tid
}

// Process returns t's process.
func (t *Task) Process() *Process {
	return t.p
}

// block suspends t until ch becomes readable.
//
// Preconditions: t.p.mu must not be held. A task asleep here must not
// serialize registry operations of other threads.
func (t *Task) block(ch <-chan struct{}) {
	<-ch
}
