// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/numshim/backends/eager"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantsAndParameters(t *testing.T) {
	g := NewGraph("test")
	c := Const(g, []float32{1, 2, 3})
	assert.Equal(t, NodeTypeConstant, c.Type())
	tv, err := c.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, tv.Value())

	p := Parameter(g, "x", shapes.Make(dtypes.Float32, 2, 3))
	assert.Equal(t, "x", p.ParameterName())
	assert.Equal(t, shapes.Make(dtypes.Float32, 2, 3), p.Shape())
	_, err = p.TestValue()
	require.ErrorContains(t, err, "test value")
	require.ErrorContains(t, err, "Parameter")

	require.Panics(t, func() {
		p.SetTestValue(tensors.FromValue([]float32{1, 2}))
	})
	p.SetTestValue(tensors.FromValue([][]float32{{1, 2, 3}, {4, 5, 6}}))
	assert.True(t, p.HasTestValue())

	assert.Equal(t, 2, g.NumNodes())
	assert.Same(t, c, g.NodeById(c.Id()))
}

func TestMaximumMinimum(t *testing.T) {
	g := NewGraph("test", WithTestValues())
	a := Const(g, []float64{1, 5, 3})
	b := Const(g, []float64{4, 2, 3})
	c := Const(g, float64(2.5))

	maxNode := Maximum(a, b, c)
	assert.Equal(t, shapes.Make(dtypes.Float64, 3), maxNode.Shape())
	tv, err := maxNode.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 3}, tv.Value())

	minNode := Minimum(a, b)
	tv, err = minNode.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, tv.Value())

	require.Panics(t, func() { Maximum(a) })
	require.Panics(t, func() {
		Maximum(a, Const(g, []float32{1, 2, 3})) // dtype mismatch
	})
}

func TestComparisonsAndWhere(t *testing.T) {
	g := NewGraph("test", WithTestValues())
	a := Const(g, []int32{1, 5, 3})
	b := Const(g, []int32{4, 2, 3})

	lt := LessThan(a, b)
	assert.Equal(t, dtypes.Bool, lt.DType())
	tv, err := lt.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, tv.Value())

	ge := GreaterOrEqual(a, b)
	tv, err = ge.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true}, tv.Value())

	sel := Where(lt, a, b)
	assert.Equal(t, shapes.Make(dtypes.Int32, 3), sel.Shape())
	tv, err = sel.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, tv.Value())

	require.Panics(t, func() { Where(a, a, b) }) // condition is not Bool
}

func TestTestValuesDisabled(t *testing.T) {
	g := NewGraph("test") // no WithTestValues
	a := Const(g, []float32{1, 2})
	b := Const(g, []float32{3, 4})
	sum := Maximum(a, b)
	assert.False(t, sum.HasTestValue())
	_, err := sum.TestValue()
	require.ErrorContains(t, err, "test value")
}

func TestIfElse(t *testing.T) {
	g := NewGraph("test", WithTestValues())
	onTrue := Const(g, []float32{1, 2})
	onFalse := Parameter(g, "fallback", shapes.Make(dtypes.Float32, 2))

	// The untaken branch has no test value, and that is fine.
	sel := IfElse(Const(g, true), onTrue, onFalse)
	tv, err := sel.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, tv.Value())

	sel = IfElse(Const(g, false), onTrue, onFalse)
	assert.False(t, sel.HasTestValue())

	require.Panics(t, func() {
		IfElse(Const(g, []bool{true, false}), onTrue, onFalse) // non-scalar condition
	})
	require.Panics(t, func() {
		IfElse(Const(g, true), onTrue, Const(g, []float32{1, 2, 3})) // shape mismatch
	})
}

func TestSliceAndSetSubtensor(t *testing.T) {
	g := NewGraph("test", WithTestValues())
	x := Const(g, []float64{0, 1, 2, 3, 4})
	view := Slice(x, 1, 3)
	assert.Equal(t, shapes.Make(dtypes.Float64, 2), view.Shape())

	set := SetSubtensor(view, Const(g, []float64{10, 20}))
	assert.Equal(t, x.Shape(), set.Shape())
	tv, err := set.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 20, 3, 4}, tv.Value())

	inc := IncSubtensor(view, Const(g, []float64{10, 20}))
	tv, err = inc.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 11, 22, 3, 4}, tv.Value())

	// The update is non-destructive: the original value is untouched.
	tv, err = x.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, tv.Value())

	require.Panics(t, func() {
		SetSubtensor(x, Const(g, []float64{1, 2})) // target is not a Slice node
	})
	require.Panics(t, func() {
		SetSubtensor(view, Const(g, []float64{1, 2, 3})) // values don't fit
	})
}

func TestReshapeAndMoveAxis(t *testing.T) {
	g := NewGraph("test", WithTestValues())
	x := Const(g, [][]float32{{0, 1, 2}, {3, 4, 5}})

	r := Reshape(x, 3, -1)
	assert.Equal(t, shapes.Make(dtypes.Float32, 3, 2), r.Shape())
	tv, err := r.TestValue()
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1}, {2, 3}, {4, 5}}, tv.Value())

	m := MoveAxis(x, 0, -1)
	assert.Equal(t, shapes.Make(dtypes.Float32, 3, 2), m.Shape())
	tv, err = m.TestValue()
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 3}, {1, 4}, {2, 5}}, tv.Value())
}

func TestConvertRoundAbs(t *testing.T) {
	g := NewGraph("test", WithTestValues())
	x := Const(g, []float64{-1.6, 0.4, 2.5})

	c := ConvertDType(x, dtypes.Int32)
	assert.Equal(t, dtypes.Int32, c.DType())
	tv, err := c.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []int32{-1, 0, 2}, tv.Value())

	r := Round(x)
	tv, err = r.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, 0, 3}, tv.Value())

	a := Abs(x)
	tv, err = a.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float64{1.6, 0.4, 2.5}, tv.Value())
}

func TestRandomNormal(t *testing.T) {
	g := NewGraph("test", WithTestValues(), WithRandomSeed(42))
	n := RandomNormal(g, shapes.Make(dtypes.Float64, 100), 1.0, 0.0)
	tv, err := n.TestValue()
	require.NoError(t, err)
	for _, v := range tv.Value().([]float64) {
		assert.Equal(t, 1.0, v) // stddev 0 collapses to the average
	}

	// Same seed, same draw.
	g2 := NewGraph("test2", WithTestValues(), WithRandomSeed(17))
	g3 := NewGraph("test3", WithTestValues(), WithRandomSeed(17))
	n2 := RandomNormal(g2, shapes.Make(dtypes.Float32, 5), 0, 1)
	n3 := RandomNormal(g3, shapes.Make(dtypes.Float32, 5), 0, 1)
	tv2, err := n2.TestValue()
	require.NoError(t, err)
	tv3, err := n3.TestValue()
	require.NoError(t, err)
	assert.True(t, tv2.Equal(tv3))

	require.Panics(t, func() {
		RandomNormal(g, shapes.Make(dtypes.Int32, 3), 0, 1)
	})
}

func TestConv1D(t *testing.T) {
	g := NewGraph("test", WithTestValues())
	history := make([][]float64, 10)
	for t2 := range history {
		history[t2] = []float64{float64(t2), float64(2 * t2)}
	}
	kernel := [][][]float64{ // (3, 2, 2)
		{{1, 0}, {0, 1}},
		{{2, 1}, {1, 2}},
		{{0, 1}, {2, 0}},
	}
	h := Const(g, history)
	k := Const(g, kernel)

	out := Conv1D(h, k, eager.ConvValid)
	assert.Equal(t, shapes.Make(dtypes.Float64, 8, 2, 2), out.Shape())
	tv, err := out.TestValue()
	require.NoError(t, err)

	// Each (to, from) channel pair is an independent 1-dimensional
	// convolution of the corresponding history column and kernel taps.
	for to := 0; to < 2; to++ {
		for from := 0; from < 2; from++ {
			column := make([]float64, 10)
			for t2 := 0; t2 < 10; t2++ {
				column[t2] = history[t2][from]
			}
			taps := []float64{kernel[0][to][from], kernel[1][to][from], kernel[2][to][from]}
			want := eager.Convolve1D(
				tensors.FromValue(column), tensors.FromValue(taps), eager.ConvValid)
			for t2 := 0; t2 < 8; t2++ {
				got := tv.Value().([][][]float64)[t2][to][from]
				assert.InDelta(t, want.Value().([]float64)[t2], got, 1e-9)
			}
		}
	}

	require.Panics(t, func() { Conv1D(h, k, eager.ConvSame) })
	require.Panics(t, func() { Conv1D(k, h, eager.ConvValid) }) // ranks swapped
}
