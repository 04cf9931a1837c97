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

// Package lockorder rules out circular-wait deadlocks by making lock
// acquisition order a declared, checked contract instead of a convention.
//
// Each logical lock site gets an identity (NewID); the integrator declares
// a strict partial order over identities (DeclareOrder), and every
// declaration that would close a cycle is rejected on the spot, so the
// relation is a strict partial order by construction. A GuardedLock ties a
// mutex and its protected value to one identity, and acquiring it consumes
// a witness token:
//
//	var (
//		idAccounts = lockorder.NewID("accounts")
//		idAudit    = lockorder.NewID("audit")
//	)
//
//	func init() {
//		lockorder.MustDeclareOrder(lockorder.Unlocked, idAccounts)
//		lockorder.MustDeclareOrder(idAccounts, idAudit)
//	}
//
//	accounts := lockorder.NewGuardedLock(idAccounts, map[string]int{})
//	audit := lockorder.NewGuardedLock(idAudit, []string{})
//
//	tok := lockorder.Root()
//	g1, tok1, err := accounts.Acquire(tok)
//	// ... use g1.Value() ...
//	g2, _, err := audit.Acquire(tok1) // fine: accounts < audit
//	g2.Unlock()
//	g1.Unlock()
//	tok.Release()
//
// Acquiring audit first and then accounts panics with a ViolationError
// naming the conflicting declaration, on every execution and regardless of
// timing, so
// the misordering cannot survive even a single test run. The ordering
// check never blocks; only the underlying mutex does.
//
// The companion analyzer in pkg/ordervet reports the same violations and
// any cyclic declarations at build time for code it can resolve
// statically.
//
// Threading a token parameter through every lock-taking function is an
// accepted ergonomic cost of the guarantee; the package does not try to
// hide it.
package lockorder
