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

// Resource tables are dense arrays with hole reuse: a nil entry is a free
// slot. Ids are never renumbered once assigned; an id is reused only after
// its slot was explicitly cleared. Tables are expected to stay small, so the
// free-slot search is a linear scan.

// slotInstall installs v in the smallest currently-free slot of *table and
// returns its index, appending a new slot if none is free.
func slotInstall[T any](table *[]*T, v *T) int {
	for id, entry := range *table {
		if entry == nil {
			(*table)[id] = v
			return id
		}
	}
	*table = append(*table, v)
	return len(*table) - 1
}

// slotGet returns the entry at id, or nil if id is out of range or the slot
// is free.
func slotGet[T any](table []*T, id int) *T {
	if id < 0 || id >= len(table) {
		return nil
	}
	return table[id]
}
