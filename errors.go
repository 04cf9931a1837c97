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
	"errors"
	"fmt"
)

// Error categories. Declaration errors are returned from DeclareOrder;
// acquisition errors are returned from Acquire/With; everything under
// "usage bugs" is delivered by panic because it indicates broken program
// structure rather than a runtime condition the caller could handle.
var (
	// Declaration errors - returned, relation left unchanged
	ErrInvalidIdentity = errors.New("identity was not created with NewID")
	ErrSelfOrder       = errors.New("identity cannot be ordered after itself")
	ErrOrderCycle      = errors.New("order declaration would create a cycle")
	ErrRedundantOrder  = errors.New("order is already declared or derivable")

	// Acquisition errors - returned from Acquire
	ErrLockPoisoned = errors.New("lock was poisoned by a panic in a previous holder")

	// Usage bugs - delivered by panic
	ErrOrderViolation      = errors.New("lock order violation")
	ErrTokenSuspended      = errors.New("token is suspended: a token derived from it is still live")
	ErrTokenSpent          = errors.New("token has already been released")
	ErrTokenWrongGoroutine = errors.New("token used outside the goroutine it was issued to")
	ErrNotRootToken        = errors.New("only the root token can be released directly")
	ErrRootTokenLive       = errors.New("goroutine already holds a live root token")
	ErrGuardReleased       = errors.New("guard has already been released")
)

// CycleError reports a rejected order declaration: the higher identity
// already precedes the lower one, so adding the edge would close a cycle.
type CycleError struct {
	Lower  ID
	Higher ID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cannot declare %q before %q: %q already precedes %q in the declared order",
		e.Lower, e.Higher, e.Higher, e.Lower)
}

func (*CycleError) Unwrap() error { return ErrOrderCycle }

// ViolationError reports an acquisition the declared order does not permit.
// Held names the chain identity that decided the rejection: either the
// held lock the target is declared to precede (Reversed), or the chain tip
// when nothing held precedes the target, in which case the message names
// the missing edge so the fix is actionable.
type ViolationError struct {
	Held     ID
	Target   ID
	Reversed bool
}

func (e *ViolationError) Error() string {
	if e.Reversed {
		return fmt.Sprintf("lock order violation: cannot acquire %q while holding %q; "+
			"%q is declared to precede %q", e.Target, e.Held, e.Target, e.Held)
	}
	return fmt.Sprintf("lock order violation: cannot acquire %q while holding %q; "+
		"no DeclareOrder(%q, %q) is in effect", e.Target, e.Held, e.Held, e.Target)
}

func (*ViolationError) Unwrap() error { return ErrOrderViolation }

// TokenStateError reports use of a token that is not the live tip of its
// chain, or that crossed goroutines.
type TokenStateError struct {
	Err error
	ID  ID
}

func (e *TokenStateError) Error() string {
	return fmt.Sprintf("token for %q: %v", e.ID, e.Err)
}

func (e *TokenStateError) Unwrap() error { return e.Err }

// RootStateError reports a second Root call while the goroutine's root
// token is still live. The message calls out that this is a structural bug,
// so it cannot be mistaken for ordinary lock contention.
type RootStateError struct {
	GoroutineID int64
}

func (e *RootStateError) Error() string {
	return fmt.Sprintf("goroutine %d requested a root token while one is still live "+
		"(structural misuse, not lock contention)", e.GoroutineID)
}

func (*RootStateError) Unwrap() error { return ErrRootTokenLive }

// PoisonError reports that a lock's previous holder panicked inside With,
// so the wrapped value may be in an inconsistent state.
type PoisonError struct {
	ID ID
}

func (e *PoisonError) Error() string {
	return fmt.Sprintf("lock %q: %v", e.ID, ErrLockPoisoned)
}

func (*PoisonError) Unwrap() error { return ErrLockPoisoned }
