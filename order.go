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

	"github.com/ZaparooProject/go-lockorder/internal/dag"
	"github.com/ZaparooProject/go-lockorder/internal/syncutil"
)

// OrderGraph holds the declared "must be acquired after" relation as a
// transitively-closed strict partial order. Declarations are expected
// during program composition (init blocks, setup code); queries happen on
// every acquisition, so reads take only an RLock over a set lookup.
type OrderGraph struct {
	closure *dag.Closure[ID]
	mu      syncutil.RWMutex
}

// NewOrderGraph returns an empty order relation.
func NewOrderGraph() *OrderGraph {
	return &OrderGraph{closure: dag.New[ID]()}
}

// DeclareOrder registers that lower must be acquired before higher and
// extends the transitive closure: every identity already before lower
// becomes before higher (and everything after it). A declaration that would
// make the relation reflexive or cyclic is rejected, as is a redundant one
// (already declared or transitively derivable); in every failure case the
// relation is left exactly as it was.
func (g *OrderGraph) DeclareOrder(lower, higher ID) error {
	if !lower.Valid() || !higher.Valid() {
		return fmt.Errorf("declare order (%s, %s): %w", lower, higher, ErrInvalidIdentity)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch err := g.closure.Add(lower, higher); {
	case errors.Is(err, dag.ErrSelfEdge):
		return fmt.Errorf("declare order for %q: %w", lower, ErrSelfOrder)
	case errors.Is(err, dag.ErrCycle):
		return &CycleError{Lower: lower, Higher: higher}
	case errors.Is(err, dag.ErrRedundant):
		return fmt.Errorf("declare order (%s, %s): %w", lower, higher, ErrRedundantOrder)
	case err != nil:
		return fmt.Errorf("declare order (%s, %s): %w", lower, higher, err)
	}

	Debugf("order declared: %s < %s", lower, higher)
	return nil
}

// MustDeclareOrder is DeclareOrder for var/init blocks: it panics on a
// rejected declaration, so a cyclic edge set stops the program before any
// acquisition code runs.
func (g *OrderGraph) MustDeclareOrder(lower, higher ID) {
	if err := g.DeclareOrder(lower, higher); err != nil {
		panic(err)
	}
}

// Query reports whether before must be acquired before after, i.e. whether
// the pair is in the declared relation's transitive closure.
func (g *OrderGraph) Query(before, after ID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.closure.Reaches(before, after)
}

// Before returns every identity declared (directly or transitively) to
// precede id. Diagnostic use only; order is unspecified.
func (g *OrderGraph) Before(id ID) []ID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.closure.Before(id)
}

// defaultGraph is the relation consulted by every GuardedLock. A process
// declares one lock order; separate OrderGraph values exist for tests and
// tooling.
var defaultGraph = NewOrderGraph()

// DeclareOrder registers an edge in the process-wide lock order.
func DeclareOrder(lower, higher ID) error {
	return defaultGraph.DeclareOrder(lower, higher)
}

// MustDeclareOrder registers an edge in the process-wide lock order and
// panics if the declaration is rejected.
func MustDeclareOrder(lower, higher ID) {
	defaultGraph.MustDeclareOrder(lower, higher)
}

// Query consults the process-wide lock order.
func Query(before, after ID) bool {
	return defaultGraph.Query(before, after)
}
