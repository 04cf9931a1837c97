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

import (
	"sync/atomic"

	"github.com/ZaparooProject/go-lockorder/internal/syncutil"
)

// GuardedLock wraps a mutex and the value it protects, permanently tagged
// with one lock-site identity. The value is reachable only through the
// Guard returned by Acquire, so every access is covered both by mutual
// exclusion and by the declared order.
//
// GuardedLock values are typically shared across goroutines; each
// goroutine threads its own token chain through Acquire.
type GuardedLock[T any] struct {
	value    T
	id       ID
	mu       syncutil.Mutex
	poisoned atomic.Bool
}

// NewGuardedLock creates a lock for value at the given lock site. The
// identity is fixed for the lock's lifetime. An invalid ID panics: lock
// construction is setup-time code and a bad identity there is a bug.
func NewGuardedLock[T any](id ID, value T) *GuardedLock[T] {
	if !id.Valid() {
		panic(ErrInvalidIdentity)
	}
	return &GuardedLock[T]{id: id, value: value}
}

// ID returns the lock's identity.
func (l *GuardedLock[T]) ID() ID {
	return l.id
}

// Acquire blocks until the lock is free and returns an exclusive Guard on
// the value plus the token for the new chain tip. The input token is
// suspended until the returned token is fully released (guard unlocked),
// at which point it becomes the live tip again.
//
// The lock's identity is checked against every identity on the token's
// chain, not only the tip: the acquisition panics with a *ViolationError
// if the target is declared to precede any held identity, or if no held
// lock is declared to precede the target (for a bare root token, Unlocked
// must precede it). Holding a common predecessor therefore permits taking
// its unordered successors in either interleaving, while two successors
// with no held predecessor between them stay rejected. Acquire also
// panics with a *TokenStateError on token misuse (suspended or spent
// token, or a token from another goroutine). Ordering is never consulted
// under contention: the check completes before the mutex is touched.
//
// If a previous holder panicked inside With, Acquire returns a
// *PoisonError instead of handing out a guard over a possibly
// inconsistent value.
func (l *GuardedLock[T]) Acquire(tok *Token) (*Guard[T], *Token, error) {
	tok.use()
	if v := checkChain(tok, l.id); v != nil {
		if h := Opts.OnViolation; h != nil {
			h(v)
		}
		panic(v)
	}

	l.mu.Lock()
	if l.poisoned.Load() {
		l.mu.Unlock()
		return nil, nil, &PoisonError{ID: l.id}
	}

	next := &Token{id: l.id, gid: tok.gid, parent: tok}
	tok.child = next
	Debugf("goroutine %d acquired %s (chain tip was %s)", tok.gid, l.id, tok.id)
	return &Guard[T]{lock: l, token: next}, next, nil
}

// checkChain validates target against the token's whole chain. A held
// identity ordered after the target is a reversal; failing that, some held
// lock must be ordered before the target, with Unlocked standing in only
// when the chain is bare.
func checkChain(tok *Token, target ID) *ViolationError {
	for t := tok; t != nil; t = t.parent {
		if defaultGraph.Query(target, t.id) {
			return &ViolationError{Held: t.id, Target: target, Reversed: true}
		}
	}
	if tok.parent == nil {
		if !defaultGraph.Query(tok.id, target) {
			return &ViolationError{Held: tok.id, Target: target}
		}
		return nil
	}
	for t := tok; t.parent != nil; t = t.parent {
		if defaultGraph.Query(t.id, target) {
			return nil
		}
	}
	return &ViolationError{Held: tok.id, Target: target}
}

// With runs fn with exclusive access to the value, releasing the lock on
// every exit path. fn receives the new chain tip alongside the value, so
// nested acquisitions inside fn follow the usual token discipline. If fn
// panics, the lock is poisoned before release and the panic is re-raised;
// subsequent Acquire calls then fail with a *PoisonError. fn must release
// any nested guards it takes (the usual defer discipline); With only
// force-releases its own acquisition on the panic path, so a nested guard
// leaked across the panic keeps its lock held and unpoisoned until the
// leaked guard itself is unlocked.
func (l *GuardedLock[T]) With(tok *Token, fn func(value *T, tip *Token)) error {
	g, tip, err := l.Acquire(tok)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			l.poisoned.Store(true)
			g.release(true)
			panic(r)
		}
		g.release(false)
	}()
	fn(&l.value, tip)
	return nil
}

// Poisoned reports whether a previous holder panicked inside With.
func (l *GuardedLock[T]) Poisoned() bool {
	return l.poisoned.Load()
}

// ClearPoison removes the poison mark after the caller has restored the
// value to a consistent state.
func (l *GuardedLock[T]) ClearPoison() {
	l.poisoned.Store(false)
}

// Guard is exclusive access to a GuardedLock's value, valid from Acquire
// until Unlock. The guard and the token returned alongside it share a
// lifetime: unlocking the guard spends the token and reinstates its parent.
type Guard[T any] struct {
	lock     *GuardedLock[T]
	token    *Token
	released bool
}

// Value returns the protected value. It panics after Unlock.
func (g *Guard[T]) Value() *T {
	if g.released {
		panic(ErrGuardReleased)
	}
	return &g.lock.value
}

// Unlock releases the lock, spends the guard's token, and reinstates the
// parent token as the goroutine's chain tip. Releases are LIFO: unlocking
// while a token derived from this acquisition is still live panics, as
// does a second Unlock or an Unlock from another goroutine.
func (g *Guard[T]) Unlock() {
	g.release(false)
}

// release tears down the acquisition. When force is set (the With panic
// path) the LIFO and goroutine checks are skipped so the original panic is
// not masked; the guard's own token is spent regardless, so it fails its
// next use, while a guard nested under it stays held until unlocked.
func (g *Guard[T]) release(force bool) {
	if g.released {
		if force {
			return
		}
		panic(ErrGuardReleased)
	}
	t := g.token
	if !force {
		t.use()
	}

	g.released = true
	t.spent = true
	t.parent.child = nil
	g.lock.mu.Unlock()
	Debugf("goroutine %d released %s (chain tip back to %s)", t.gid, g.lock.id, t.parent.id)
}
