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
	"github.com/petermattis/goid"

	"github.com/ZaparooProject/go-lockorder/internal/syncutil"
)

// Token witnesses that every lock currently held by its goroutine was
// acquired consistently with the declared order. The token's identity is
// the chain tip: the most recently acquired, still-held lock, or Unlocked
// for a root token.
//
// A token is a linear capability rendered with runtime checks: Acquire
// suspends it and hands back a token for the new tip; releasing that tip's
// guard reinstates it. A suspended or spent token panics on any use, and a
// token never leaves the goroutine it was issued to. Tokens must not be
// copied; the embedded noCopy makes go vet flag copies.
type Token struct {
	_      noCopy
	parent *Token
	child  *Token
	id     ID
	gid    int64
	spent  bool
}

// ID returns the token's chain-tip identity.
func (t *Token) ID() ID {
	return t.id
}

// use validates the token as the live tip of its goroutine's chain. Every
// operation that consumes a token funnels through here.
func (t *Token) use() {
	if gid := goid.Get(); gid != t.gid {
		panic(&TokenStateError{ID: t.id, Err: ErrTokenWrongGoroutine})
	}
	if t.spent {
		panic(&TokenStateError{ID: t.id, Err: ErrTokenSpent})
	}
	if t.child != nil {
		panic(&TokenStateError{ID: t.id, Err: ErrTokenSuspended})
	}
}

// rootTokens tracks which goroutines currently have a live root token.
// Goroutine identity comes from goid, the same mechanism go-deadlock uses
// to attribute acquisitions.
var rootTokens = struct {
	live map[int64]struct{}
	mu   syncutil.Mutex
}{live: make(map[int64]struct{})}

// Root issues the Unlocked token for the calling goroutine, the starting
// point of every acquisition chain. At most one root token may be live per
// goroutine; a second request while one is outstanding panics with a
// *RootStateError. After the root token is released (all guards dropped,
// then Release called), Root may be called again to start an independent
// chain.
func Root() *Token {
	gid := goid.Get()

	rootTokens.mu.Lock()
	defer rootTokens.mu.Unlock()
	if _, live := rootTokens.live[gid]; live {
		panic(&RootStateError{GoroutineID: gid})
	}
	rootTokens.live[gid] = struct{}{}

	Debugf("root token issued to goroutine %d", gid)
	return &Token{id: Unlocked, gid: gid}
}

// Release retires a root token and frees its goroutine's root slot. Only
// the root token is released directly; derived tokens live and die with
// their guard. Release panics if any derived token is still live.
func (t *Token) Release() {
	t.use()
	if t.parent != nil {
		panic(&TokenStateError{ID: t.id, Err: ErrNotRootToken})
	}
	t.spent = true

	rootTokens.mu.Lock()
	delete(rootTokens.live, t.gid)
	rootTokens.mu.Unlock()

	Debugf("root token released by goroutine %d", t.gid)
}

// noCopy triggers go vet's copylocks check when embedded in a struct.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
