// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
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

package lockorder

// ID identifies one logical lock site. Identities are per-site, not
// per-instance: two GuardedLocks created from the same ID share a position
// in the declared order, because the order constrains which code paths may
// interleave, not which objects exist.
//
// IDs are created once with NewID, typically in a package var block, and
// compared by identity. The zero ID is invalid and rejected everywhere.
type ID struct {
	d *idData
}

type idData struct {
	name string
}

// NewID mints a fresh lock-site identity. The name appears only in
// diagnostics; two IDs with the same name are still distinct identities.
func NewID(name string) ID {
	return ID{d: &idData{name: name}}
}

// Unlocked is the root identity: the state of a goroutine that holds no
// guarded lock. It takes part in order declarations like any other
// identity, so the first lock of every chain needs an edge from Unlocked
// (directly or through the closure).
var Unlocked = NewID("unlocked")

// Valid reports whether the ID was created with NewID.
func (id ID) Valid() bool {
	return id.d != nil
}

func (id ID) String() string {
	if id.d == nil {
		return "<invalid lock identity>"
	}
	return id.d.name
}
