// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package numshim

import (
	"slices"

	"github.com/gomlx/numshim/backends/eager"
	"github.com/gomlx/numshim/graph"
	"github.com/gomlx/numshim/types/xslices"
)

// AxisSide names the position where InsertAxes inserts new singleton axes.
type AxisSide int

const (
	// AxisLeft inserts before the first axis.
	AxisLeft AxisSide = iota
	// AxisRight inserts after the last axis.
	AxisRight
	// AxisBeforeLast inserts immediately before the last existing axis.
	AxisBeforeLast
)

// String implements fmt.Stringer.
func (side AxisSide) String() string {
	switch side {
	case AxisLeft:
		return "AxisLeft"
	case AxisRight:
		return "AxisRight"
	case AxisBeforeLast:
		return "AxisBeforeLast"
	default:
		return "AxisSide(invalid)"
	}
}

// insertAxesDims returns dims with num size-1 axes inserted at the position
// named by side.
func insertAxesDims(dims []int, num int, side AxisSide) []int {
	var pos int
	switch side {
	case AxisLeft:
		pos = 0
	case AxisRight:
		pos = len(dims)
	case AxisBeforeLast:
		pos = max(len(dims)-1, 0)
	default:
		Panicf("InsertAxes: unknown side %d", side)
	}
	return slices.Insert(slices.Clone(dims), pos, xslices.SliceWithValue(num, 1)...)
}

// InsertAxes returns x with num singleton axes inserted at the position
// named by side: before the first axis, after the last, or immediately
// before the last existing axis. The indexing semantics of the existing
// axes are preserved.
func (b *Backend) InsertAxes(x Value, num int, side AxisSide) Value {
	if num < 0 {
		Panicf("InsertAxes: cannot insert %d axes", num)
	}
	newDims := insertAxesDims(x.Shape().Dimensions, num, side)
	if b.anySymbolic(x) {
		return graph.Reshape(b.node(x), newDims...)
	}
	return eager.Reshape(concrete(x), newDims...)
}

// MoveAxis moves the axis source to the position destination, preserving
// the order of the remaining axes. Negative axes count from the end.
func (b *Backend) MoveAxis(x Value, source, destination int) Value {
	if b.anySymbolic(x) {
		return graph.MoveAxis(b.node(x), source, destination)
	}
	return eager.MoveAxis(concrete(x), source, destination)
}
