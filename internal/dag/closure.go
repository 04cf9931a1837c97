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

// Package dag maintains the transitive closure of a strict partial order,
// rejecting any edge whose insertion would close a cycle. The closure is
// kept incrementally: every Add propagates the new reachability pairs
// immediately, so Reaches is a constant-time set lookup.
package dag

import "errors"

// Edge insertion failures. The closure is never modified when Add fails.
var (
	// ErrSelfEdge is returned for an edge from a node to itself.
	ErrSelfEdge = errors.New("edge would make the relation reflexive")
	// ErrCycle is returned for an edge whose target already reaches its source.
	ErrCycle = errors.New("edge would close a cycle")
	// ErrRedundant is returned for an edge the closure already contains,
	// whether declared directly or derived transitively.
	ErrRedundant = errors.New("edge is already in the closure")
)

// Closure is the transitively-closed "strictly before" relation over nodes
// of type N. The zero value is not usable; call New.
//
// Two mirrored maps are kept so that an insertion can enumerate both the
// ancestors of the new edge's source and the descendants of its target
// without a graph walk.
type Closure[N comparable] struct {
	// before[n] is the set of nodes strictly before n (all ancestors).
	before map[N]map[N]struct{}
	// after[n] is the set of nodes strictly after n (all descendants).
	after map[N]map[N]struct{}
}

// New returns an empty closure.
func New[N comparable]() *Closure[N] {
	return &Closure[N]{
		before: make(map[N]map[N]struct{}),
		after:  make(map[N]map[N]struct{}),
	}
}

// Add records that lower is strictly before higher and extends the closure
// with every pair that insertion implies: each ancestor of lower becomes an
// ancestor of each descendant of higher.
//
// Add refuses edges that would break strictness - lower == higher returns
// ErrSelfEdge, and an edge whose higher node already reaches lower returns
// ErrCycle - as well as edges the closure already holds, which return
// ErrRedundant so callers can surface the duplicate declaration instead of
// dropping it silently. All checks run before any mutation, so a failed Add
// leaves the closure exactly as it was.
func (c *Closure[N]) Add(lower, higher N) error {
	if lower == higher {
		return ErrSelfEdge
	}
	if c.Reaches(higher, lower) {
		return ErrCycle
	}
	if c.Reaches(lower, higher) {
		return ErrRedundant
	}

	sources := c.withAncestors(lower)
	targets := c.withDescendants(higher)
	for s := range sources {
		for t := range targets {
			c.link(s, t)
		}
	}
	return nil
}

// Reaches reports whether a is strictly before b in the closure. Nodes that
// were never part of an added edge reach nothing.
func (c *Closure[N]) Reaches(a, b N) bool {
	_, ok := c.before[b][a]
	return ok
}

// Before returns the set of nodes strictly before n, in no particular order.
func (c *Closure[N]) Before(n N) []N {
	anc := c.before[n]
	out := make([]N, 0, len(anc))
	for a := range anc {
		out = append(out, a)
	}
	return out
}

// Len returns the number of ordered pairs in the closure.
func (c *Closure[N]) Len() int {
	total := 0
	for _, anc := range c.before {
		total += len(anc)
	}
	return total
}

func (c *Closure[N]) withAncestors(n N) map[N]struct{} {
	set := make(map[N]struct{}, len(c.before[n])+1)
	set[n] = struct{}{}
	for a := range c.before[n] {
		set[a] = struct{}{}
	}
	return set
}

func (c *Closure[N]) withDescendants(n N) map[N]struct{} {
	set := make(map[N]struct{}, len(c.after[n])+1)
	set[n] = struct{}{}
	for d := range c.after[n] {
		set[d] = struct{}{}
	}
	return set
}

func (c *Closure[N]) link(lower, higher N) {
	anc := c.before[higher]
	if anc == nil {
		anc = make(map[N]struct{})
		c.before[higher] = anc
	}
	anc[lower] = struct{}{}

	desc := c.after[lower]
	if desc == nil {
		desc = make(map[N]struct{})
		c.after[lower] = desc
	}
	desc[higher] = struct{}{}
}
