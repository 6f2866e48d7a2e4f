// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package numshim

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/numshim/graph"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShared(t *testing.T) {
	b := New()
	s := b.NewShared([]float32{1, 2, 3}, "weights")
	assert.Equal(t, "weights", s.Name())
	assert.Equal(t, []float32{1, 2, 3}, s.Value().Value())
	assert.Equal(t, shapes.Make(dtypes.Float32, 3), s.Shape())

	require.NoError(t, s.SetValue([]float32{4, 5, 6}))
	assert.Equal(t, []float32{4, 5, 6}, s.Value().Value())

	err := s.SetValue([]float32{1, 2})
	require.ErrorContains(t, err, "shape")
	assert.Equal(t, []float32{4, 5, 6}, s.Value().Value())

	// Value returns the live cell: its identity is stable across SetValue.
	cell := s.Value()
	require.NoError(t, s.SetValue([]float32{7, 8, 9}))
	assert.Same(t, cell, s.Value())
	assert.Equal(t, []float32{7, 8, 9}, cell.Value())

	// An empty name gets a generated unique one.
	anon := b.NewShared(float64(0), "")
	assert.NotEmpty(t, anon.Name())
	assert.NotEqual(t, anon.Name(), b.NewShared(float64(0), "").Name())

	// Construction does not alias the initial value.
	init := tensors.FromValue([]int32{1, 2})
	fromTensor := b.NewShared(init, "copy")
	require.NoError(t, fromTensor.SetValue([]int32{9, 9}))
	assert.Equal(t, []int32{1, 2}, init.Value())
}

func TestSharedIdentity(t *testing.T) {
	b := New()
	s1 := b.NewShared([]float64{1, 2}, "a")
	s2 := b.NewShared([]float64{1, 2}, "a")

	// Identical contents, distinct containers.
	assert.NotSame(t, s1, s2)
	assert.True(t, s1.Value().Equal(s2.Value()))

	byRef := map[*Shared]string{s1: "first", s2: "second"}
	assert.Len(t, byRef, 2)
	assert.Equal(t, "first", byRef[s1])
}

func TestSharedSymbolicLift(t *testing.T) {
	g := graph.NewGraph("test", graph.WithTestValues())
	bs := New(WithSymbolic(g))
	s := bs.NewShared([]float64{1, 5, 3}, "state")

	node, ok := bs.Largest(s, AsTensor([]float64{4, 2, 3})).(*graph.Node)
	require.True(t, ok)
	tv, err := node.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 3}, tv.Value())

	// The same container lifts to the same variable node.
	other := bs.Smallest(s, AsTensor([]float64{0, 0, 0})).(*graph.Node)
	assert.Same(t, node.Inputs()[0], other.Inputs()[0])
	assert.Equal(t, graph.NodeTypeVariable, node.Inputs()[0].Type())

	// The variable's test value tracks the cell contents.
	require.NoError(t, s.SetValue([]float64{-1, -1, -1}))
	varTV, err := node.Inputs()[0].TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, -1, -1}, varTV.Value())
}

func TestUpdates(t *testing.T) {
	b := New()
	s1 := b.NewShared([]float64{1, 2}, "s1")
	s2 := b.NewShared([]float64{10, 20}, "s2")

	u := b.NewUpdates()
	// Simultaneous semantics: both rules read pre-update values.
	u.Set(s1, s2.Value())
	u.Set(s2, s1.Value())
	assert.Len(t, u.Rules(), 2)

	require.Panics(t, func() { u.Set(s1, AsTensor([]float64{0, 0})) }) // duplicate target

	require.NoError(t, u.Commit())
	assert.True(t, u.Committed())
	assert.Equal(t, []float64{10, 20}, s1.Value().Value())
	assert.Equal(t, []float64{1, 2}, s2.Value().Value())

	require.Panics(t, func() { u.Set(s2, AsTensor([]float64{0, 0})) }) // spent builder
	require.Error(t, u.Commit())

	// Shape mismatches are caught before any target is written.
	u2 := b.NewUpdates()
	u2.Set(s1, AsTensor([]float64{0, 0, 0}))
	require.Error(t, u2.Commit())
	assert.Equal(t, []float64{10, 20}, s1.Value().Value())
}

func TestUpdatesSymbolic(t *testing.T) {
	g := graph.NewGraph("test", graph.WithTestValues())
	bs := New(WithSymbolic(g))
	s := bs.NewShared([]float64{1, 2}, "state")

	u := bs.NewUpdates()
	u.Set(s, bs.Largest(s, AsTensor([]float64{5, 0})))
	require.NoError(t, u.Commit())

	// Sealed for a downstream compiler, not applied.
	assert.Equal(t, []float64{1, 2}, s.Value().Value())
	require.Len(t, u.Rules(), 1)
	assert.Same(t, s, u.Rules()[0].Target)
}

func TestCheck(t *testing.T) {
	b := New()
	assert.Equal(t, CheckPassed, b.Check(true))
	assert.Equal(t, CheckFailed, b.Check(false))
	assert.Equal(t, CheckPassed, b.Check(AsTensor([]int32{1, 2, 3})))
	assert.Equal(t, CheckFailed, b.Check(AsTensor([]int32{1, 0, 3})))
	assert.Equal(t, CheckPassed, b.Check(3.5))

	require.Panics(t, func() { b.Assert(false) })
	assert.NotPanics(t, func() { b.Assert(true) })

	// Symbolic without test values: explicitly unverified, not silently
	// passed.
	g := graph.NewGraph("test")
	bs := New(WithSymbolic(g))
	stmt := graph.GreaterThan(graph.Const(g, 1.0), graph.Const(g, 2.0))
	assert.Equal(t, CheckUnverified, bs.Check(stmt))
	assert.NotPanics(t, func() { bs.Assert(stmt) })

	// With test values the statement is evaluated.
	gt := graph.NewGraph("test", graph.WithTestValues())
	bst := New(WithSymbolic(gt))
	assert.Equal(t, CheckFailed,
		bst.Check(graph.GreaterThan(graph.Const(gt, 1.0), graph.Const(gt, 2.0))))
	assert.Equal(t, CheckPassed,
		bst.Check(graph.LessThan(graph.Const(gt, 1.0), graph.Const(gt, 2.0))))
}

func TestRandomStream(t *testing.T) {
	b := New()
	rs := b.NewRandomStream(42)
	sample := rs.Normal(shapes.Make(dtypes.Float64, 100), 2.0, 0.0).(*tensors.Tensor)
	require.Equal(t, []int{100}, sample.Shape().Dimensions)
	for _, v := range sample.Value().([]float64) {
		assert.Equal(t, 2.0, v)
	}

	// Same seed, same draws.
	a := b.NewRandomStream(7).Normal(shapes.Make(dtypes.Float32, 5), 0, 1).(*tensors.Tensor)
	c := b.NewRandomStream(7).Normal(shapes.Make(dtypes.Float32, 5), 0, 1).(*tensors.Tensor)
	assert.True(t, a.Equal(c))

	g := graph.NewGraph("test", graph.WithTestValues())
	bs := New(WithSymbolic(g))
	node, ok := bs.NewRandomStream(7).Normal(shapes.Make(dtypes.Float32, 5), 0, 1).(*graph.Node)
	require.True(t, ok)
	assert.Equal(t, graph.NodeTypeRandomNormal, node.Type())
	assert.True(t, node.HasTestValue())
}
