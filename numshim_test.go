// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package numshim

import (
	"math"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/numshim/graph"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend(t *testing.T) {
	b := New()
	assert.False(t, b.IsSymbolic())
	assert.Nil(t, b.Graph())
	assert.True(t, math.IsInf(b.Inf(), 1))

	g := graph.NewGraph("test")
	bs := New(WithSymbolic(g))
	assert.True(t, bs.IsSymbolic())
	assert.Same(t, g, bs.Graph())
	assert.Equal(t, 1e12, bs.Inf())
}

func TestLargestSmallest(t *testing.T) {
	b := New()
	a := AsTensor([]float64{1, 5, 3})
	c := AsTensor([]float64{4, 2, 3})

	largest := b.Largest(a, c).(*tensors.Tensor)
	assert.Equal(t, []float64{4, 5, 3}, largest.Value())
	smallest := b.Smallest(a, c).(*tensors.Tensor)
	assert.Equal(t, []float64{1, 2, 3}, smallest.Value())

	// Left-to-right pairwise over 3 operands, with a broadcast scalar.
	clamped := b.Largest(a, c, AsTensor(3.5)).(*tensors.Tensor)
	assert.Equal(t, []float64{4, 5, 3.5}, clamped.Value())

	require.Panics(t, func() { b.Largest(a) })

	g := graph.NewGraph("test", graph.WithTestValues())
	bs := New(WithSymbolic(g))
	node, ok := bs.Largest(graph.Const(g, []float64{1, 5, 3}), c).(*graph.Node)
	require.True(t, ok)
	tv, err := node.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 3}, tv.Value())

	// A symbolic backend with all-concrete operands still computes eagerly.
	eagerResult := bs.Largest(a, c)
	_, isTensor := eagerResult.(*tensors.Tensor)
	assert.True(t, isTensor)
}

func TestComparisonsAndWhere(t *testing.T) {
	b := New()
	a := AsTensor([]int32{1, 5, 3})
	c := AsTensor([]int32{4, 2, 3})

	lt := b.LessThan(a, c).(*tensors.Tensor)
	assert.Equal(t, []bool{true, false, false}, lt.Value())
	assert.Equal(t, []bool{false, true, false}, b.GreaterThan(a, c).(*tensors.Tensor).Value())
	assert.Equal(t, []bool{true, false, true}, b.LessOrEqual(a, c).(*tensors.Tensor).Value())
	assert.Equal(t, []bool{false, true, true}, b.GreaterOrEqual(a, c).(*tensors.Tensor).Value())
	assert.Equal(t, []bool{false, false, true}, b.Equal(a, c).(*tensors.Tensor).Value())

	sel := b.Where(lt, a, c).(*tensors.Tensor)
	assert.Equal(t, []int32{1, 2, 3}, sel.Value())
}

func TestIfElse(t *testing.T) {
	b := New()
	onTrue := AsTensor([]float32{1, 2})
	onFalse := AsTensor([]float32{3, 4})

	// A concrete condition picks a branch now and returns it unevaluated:
	// the very same value, not a copy.
	assert.Same(t, onTrue, b.IfElse(AsTensor(true), onTrue, onFalse))
	assert.Same(t, onFalse, b.IfElse(AsTensor(0), onTrue, onFalse))

	require.Panics(t, func() {
		b.IfElse(AsTensor([]bool{true, false}), onTrue, onFalse)
	})

	// A data-dependent condition builds a lazy conditional node.
	g := graph.NewGraph("test", graph.WithTestValues())
	bs := New(WithSymbolic(g))
	cond := graph.GreaterThan(graph.Const(g, float32(1)), graph.Const(g, float32(0)))
	sel, ok := bs.IfElse(cond, onTrue, onFalse).(*graph.Node)
	require.True(t, ok)
	assert.Equal(t, graph.NodeTypeIfElse, sel.Type())
	tv, err := sel.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, tv.Value())

	// A concrete condition picks a branch even when the branches are
	// symbolic.
	branch := graph.Const(g, []float32{9, 9})
	assert.Same(t, Value(branch), bs.IfElse(AsTensor(true), branch, onFalse))
}

func TestInsertAxes(t *testing.T) {
	b := New()
	a := AsTensor([][]float32{{1, 2, 3}, {4, 5, 6}})

	leftT := b.InsertAxes(a, 1, AxisLeft)
	assert.Equal(t, []int{1, 2, 3}, leftT.Shape().Dimensions)
	rightT := b.InsertAxes(a, 1, AxisRight)
	assert.Equal(t, []int{2, 3, 1}, rightT.Shape().Dimensions)
	beforeLastT := b.InsertAxes(a, 2, AxisBeforeLast)
	assert.Equal(t, []int{2, 1, 1, 3}, beforeLastT.Shape().Dimensions)

	// Indexing semantics: left[0] == a elementwise.
	row0 := leftT.(*tensors.Tensor).Slice(0, 1)
	assert.Equal(t, a.(*tensors.Tensor).ConvertToFloat64(), row0.ConvertToFloat64())

	require.Panics(t, func() { b.InsertAxes(a, 1, AxisSide(42)) })
	require.Panics(t, func() { b.InsertAxes(a, -1, AxisLeft) })

	g := graph.NewGraph("test")
	bs := New(WithSymbolic(g))
	node := bs.InsertAxes(graph.Const(g, []float32{1, 2}), 1, AxisRight)
	assert.Equal(t, []int{2, 1}, node.Shape().Dimensions)
}

func TestMoveAxis(t *testing.T) {
	b := New()
	a := AsTensor([][]float32{{0, 1, 2}, {3, 4, 5}})
	moved := b.MoveAxis(a, 0, -1).(*tensors.Tensor)
	assert.Equal(t, [][]float32{{0, 3}, {1, 4}, {2, 5}}, moved.Value())
}

func TestSetIncSubtensor(t *testing.T) {
	b := New()
	x := tensors.FromValue([]float64{0, 1, 2, 3, 4})
	view := x.Slice(1, 3)

	result := b.SetSubtensor(view, AsTensor([]float64{10, 20}))
	// The base allocation itself is returned, mutated in place.
	assert.Same(t, Value(x), result)
	assert.Equal(t, []float64{0, 10, 20, 3, 4}, x.Value())

	b.IncSubtensor(view, AsTensor([]float64{1, 1}))
	assert.Equal(t, []float64{0, 11, 21, 3, 4}, x.Value())

	require.Panics(t, func() {
		b.SetSubtensor(x, AsTensor([]float64{1, 2})) // not a view
	})

	g := graph.NewGraph("test", graph.WithTestValues())
	bs := New(WithSymbolic(g))
	xn := graph.Const(g, []float64{0, 1, 2, 3, 4})
	set := bs.SetSubtensor(graph.Slice(xn, 1, 3), AsTensor([]float64{10, 20})).(*graph.Node)
	tv, err := set.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 20, 3, 4}, tv.Value())
	// Non-destructive symbolically.
	tv, err = xn.TestValue()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, tv.Value())
}

func TestConv1D(t *testing.T) {
	b := New()
	history := make([][]float64, 10)
	for i := range history {
		history[i] = []float64{float64(i) + 0.5, float64(3*i) - 1}
	}
	kernel := [][][]float64{
		{{1, 0}, {0, 1}},
		{{2, 1}, {1, 2}},
		{{0, 1}, {2, 0}},
	}
	historyT := AsTensor(history)
	kernelT := AsTensor(kernel)

	out := b.Conv1D(historyT, kernelT, ConvValid).(*tensors.Tensor)
	require.Equal(t, []int{8, 2, 2}, out.Shape().Dimensions)

	// out[t, to, from] is the 1-D valid convolution of history[:, from]
	// with kernel[:, to, from], evaluated at t.
	outValues := out.Value().([][][]float64)
	for to := 0; to < 2; to++ {
		for from := 0; from < 2; from++ {
			for t2 := 0; t2 < 8; t2++ {
				var want float64
				for k := 0; k < 3; k++ {
					want += history[t2+2-k][from] * kernel[k][to][from]
				}
				assert.InDelta(t, want, outValues[t2][to][from], 1e-9)
			}
		}
	}

	require.Panics(t, func() { b.Conv1D(kernelT, historyT, ConvValid) }) // history not rank 2

	// The symbolic path goes through the image-convolution primitive; the
	// results agree to floating-point accuracy.
	g := graph.NewGraph("test", graph.WithTestValues())
	bs := New(WithSymbolic(g))
	node := bs.Conv1D(graph.Const(g, history), graph.Const(g, kernel), ConvValid).(*graph.Node)
	require.Equal(t, []int{8, 2, 2}, node.Shape().Dimensions)
	tv, err := node.TestValue()
	require.NoError(t, err)
	assert.True(t, tv.InDelta(out, 1e-9))

	require.Panics(t, func() {
		bs.Conv1D(graph.Const(g, history), graph.Const(g, kernel), ConvSame)
	})
}

func TestIsDType(t *testing.T) {
	assert.True(t, IsDType(int32(5), "int32"))
	assert.False(t, IsDType(float64(5.0), "int32"))
	assert.True(t, IsDType([]float32{1}, "float"))
	assert.True(t, IsDType(AsTensor([]float64{1}), "float64", "int64"))
	assert.False(t, IsDType(true, "int"))
	assert.True(t, IsDType(true, "bool"))

	g := graph.NewGraph("test")
	assert.True(t, IsDType(graph.Const(g, []int64{1}), "int64"))
}

func TestCasts(t *testing.T) {
	b := New()
	x := AsTensor([]float64{1.7, -2.3})
	assert.Equal(t, []int32{1, -2}, b.CastInt32(x).(*tensors.Tensor).Value())
	assert.Equal(t, []int64{1, -2}, b.CastInt64(x).(*tensors.Tensor).Value())
	assert.Equal(t, []int16{1, -2}, b.CastInt16(x).(*tensors.Tensor).Value())
	assert.Equal(t, dtypes.Float32, b.CastAsDType(x, dtypes.Float32).Shape().DType)

	g := graph.NewGraph("test")
	bs := New(WithSymbolic(g))
	node := bs.CastInt32(graph.Const(g, []float64{1.7}))
	assert.Equal(t, dtypes.Int32, node.Shape().DType)
}

func TestCoercionHelpers(t *testing.T) {
	x := AsTensor(3.5)
	assert.True(t, IsScalar(x))
	assert.Equal(t, 0, Rank(x))
	assert.Equal(t, 2, Rank(AsTensor([][]int32{{1}, {2}})))

	b := New()
	assert.Same(t, x, Value(AsTensor(x)))
	_, isTensor := b.AsVariable([]float32{1, 2}).(*tensors.Tensor)
	assert.True(t, isTensor)

	g := graph.NewGraph("test")
	bs := New(WithSymbolic(g))
	_, isNode := bs.AsVariable([]float32{1, 2}).(*graph.Node)
	assert.True(t, isNode)

	require.Panics(t, func() { New().Largest(x, badValue{}) })
}

// badValue has a Shape but is not one of the dispatch layer's value types.
type badValue struct{}

func (badValue) Shape() shapes.Shape { return shapes.Make(dtypes.Float32) }

func TestRoundAbs(t *testing.T) {
	b := New()
	x := AsTensor([]float64{-1.6, 0.5, 2.4})
	assert.Equal(t, []float64{-2, 1, 2}, b.Round(x).(*tensors.Tensor).Value())
	assert.Equal(t, []float64{1.6, 0.5, 2.4}, b.Abs(x).(*tensors.Tensor).Value())
}
