// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package numshim

import (
	"github.com/gomlx/numshim/backends/eager"
	"github.com/gomlx/numshim/graph"
	"github.com/gomlx/numshim/types/tensors"
)

// subtensorUpdate dispatches SetSubtensor and IncSubtensor. Eagerly the
// target must be a view (tensors.Tensor.Slice) and the write happens in
// place; the returned value is the view's base tensor, so the caller sees
// the mutation in the original allocation. Symbolically the target must be
// a graph.Slice node and the result is a new, non-destructive node.
func (b *Backend) subtensorUpdate(opName string,
	eagerAssign func(dst, src *tensors.Tensor),
	symbolic func(x, values *graph.Node) *graph.Node,
	x, values Value) Value {
	if b.anySymbolic(x, values) {
		return symbolic(b.node(x), b.node(values))
	}
	target := concrete(x)
	if !target.IsView() {
		Panicf("%s requires its target to be a view into a base tensor, got %s",
			opName, target.Shape())
	}
	eagerAssign(target, concrete(values))
	return target.Base()
}

// SetSubtensor writes values into the view x in place and returns x's base
// tensor. See subtensor semantics on Tensor.Slice and graph.Slice.
func (b *Backend) SetSubtensor(x, values Value) Value {
	return b.subtensorUpdate("SetSubtensor", eager.AssignTo, graph.SetSubtensor, x, values)
}

// IncSubtensor adds values to the view x in place and returns x's base
// tensor.
func (b *Backend) IncSubtensor(x, values Value) Value {
	return b.subtensorUpdate("IncSubtensor", eager.AddTo, graph.IncSubtensor, x, values)
}
