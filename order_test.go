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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareOrderTransitiveClosure(t *testing.T) {
	t.Parallel()

	a, b, c, d := NewID("a"), NewID("b"), NewID("c"), NewID("d")
	g := NewOrderGraph()
	require.NoError(t, g.DeclareOrder(Unlocked, a))
	require.NoError(t, g.DeclareOrder(a, b))
	require.NoError(t, g.DeclareOrder(b, c))
	require.NoError(t, g.DeclareOrder(c, d))

	tests := []struct {
		name   string
		before ID
		after  ID
		want   bool
	}{
		{name: "direct edge", before: a, after: b, want: true},
		{name: "two hops", before: a, after: c, want: true},
		{name: "three hops", before: a, after: d, want: true},
		{name: "root reaches deepest", before: Unlocked, after: d, want: true},
		{name: "reverse direct", before: b, after: a, want: false},
		{name: "reverse distant", before: d, after: Unlocked, want: false},
		{name: "reflexive", before: b, after: b, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, g.Query(tt.before, tt.after))
		})
	}
}

func TestDeclareOrderRejectsCycles(t *testing.T) {
	t.Parallel()

	a, b, c := NewID("a"), NewID("b"), NewID("c")
	g := NewOrderGraph()
	require.NoError(t, g.DeclareOrder(a, b))
	require.NoError(t, g.DeclareOrder(b, c))

	err := g.DeclareOrder(c, a)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrOrderCycle)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, c, cycleErr.Lower)
	assert.Equal(t, a, cycleErr.Higher)
	assert.Contains(t, err.Error(), `"c"`)
	assert.Contains(t, err.Error(), `"a"`)

	// Rejection must not leave partial closure behind.
	assert.False(t, g.Query(c, a))
	assert.True(t, g.Query(a, c))
}

func TestDeclareOrderRejectsSelfEdge(t *testing.T) {
	t.Parallel()

	a := NewID("a")
	g := NewOrderGraph()
	require.ErrorIs(t, g.DeclareOrder(a, a), ErrSelfOrder)
	assert.False(t, g.Query(a, a))
}

func TestDeclareOrderRejectsInvalidIdentity(t *testing.T) {
	t.Parallel()

	g := NewOrderGraph()
	require.ErrorIs(t, g.DeclareOrder(ID{}, NewID("a")), ErrInvalidIdentity)
	require.ErrorIs(t, g.DeclareOrder(NewID("a"), ID{}), ErrInvalidIdentity)
}

func TestDeclareOrderRejectsRedundantEdges(t *testing.T) {
	t.Parallel()

	a, b, c := NewID("a"), NewID("b"), NewID("c")
	g := NewOrderGraph()
	require.NoError(t, g.DeclareOrder(a, b))
	require.NoError(t, g.DeclareOrder(b, c))

	// A literal duplicate and a derivable pair are both surfaced rather
	// than silently dropped; the closure stays what one registration built.
	require.ErrorIs(t, g.DeclareOrder(a, b), ErrRedundantOrder)
	require.ErrorIs(t, g.DeclareOrder(a, c), ErrRedundantOrder)

	assert.True(t, g.Query(a, b))
	assert.True(t, g.Query(a, c))
	assert.False(t, g.Query(c, a))
}

func TestDeclareOrderDiamond(t *testing.T) {
	t.Parallel()

	a, b, c, d := NewID("a"), NewID("b"), NewID("c"), NewID("d")
	g := NewOrderGraph()
	require.NoError(t, g.DeclareOrder(a, b))
	require.NoError(t, g.DeclareOrder(a, c))
	require.NoError(t, g.DeclareOrder(b, d))
	require.NoError(t, g.DeclareOrder(c, d))

	// Both branches precede d, the branches themselves stay unordered.
	assert.True(t, g.Query(a, d))
	assert.True(t, g.Query(b, d))
	assert.True(t, g.Query(c, d))
	assert.False(t, g.Query(b, c))
	assert.False(t, g.Query(c, b))
}

func TestMustDeclareOrderPanicsOnCycle(t *testing.T) {
	t.Parallel()

	a, b := NewID("a"), NewID("b")
	g := NewOrderGraph()
	g.MustDeclareOrder(a, b)

	assert.Panics(t, func() { g.MustDeclareOrder(b, a) })
}

func TestBeforeListsAncestors(t *testing.T) {
	t.Parallel()

	a, b, c := NewID("a"), NewID("b"), NewID("c")
	g := NewOrderGraph()
	require.NoError(t, g.DeclareOrder(a, b))
	require.NoError(t, g.DeclareOrder(b, c))

	assert.ElementsMatch(t, []ID{a, b}, g.Before(c))
	assert.Empty(t, g.Before(a))
}

func TestPackageLevelDeclareOrder(t *testing.T) {
	t.Parallel()

	// Fresh identities keep this test independent of every other user of
	// the process-wide graph.
	lo, hi := NewID("pkg-low"), NewID("pkg-high")
	require.NoError(t, DeclareOrder(lo, hi))
	assert.True(t, Query(lo, hi))
	assert.False(t, Query(hi, lo))

	require.ErrorIs(t, DeclareOrder(hi, lo), ErrOrderCycle)
}
