// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package numshim

import (
	"reflect"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/numshim/backends/eager"
	"github.com/gomlx/numshim/graph"
	"github.com/gomlx/numshim/types/tensors"
)

// variadicOp dispatches an n-ary elementwise reduction: left-to-right
// pairwise eagerly, a single n-ary node symbolically.
func (b *Backend) variadicOp(opName string,
	eagerPair func(lhs, rhs *tensors.Tensor) *tensors.Tensor,
	symbolic func(first *graph.Node, rest ...*graph.Node) *graph.Node,
	args ...Value) Value {
	if len(args) < 2 {
		Panicf("%s requires at least 2 operands, got %d", opName, len(args))
	}
	if b.anySymbolic(args...) {
		rest := make([]*graph.Node, 0, len(args)-1)
		for _, arg := range args[1:] {
			rest = append(rest, b.node(arg))
		}
		return symbolic(b.node(args[0]), rest...)
	}
	result := concrete(args[0])
	for _, arg := range args[1:] {
		result = eagerPair(result, concrete(arg))
	}
	return result
}

// Largest returns the elementwise maximum of its operands, broadcasting
// their shapes together. It accepts 2 or more operands of the same dtype.
func (b *Backend) Largest(args ...Value) Value {
	return b.variadicOp("Largest", eager.Maximum, graph.Maximum, args...)
}

// Smallest returns the elementwise minimum of its operands, broadcasting
// their shapes together. It accepts 2 or more operands of the same dtype.
func (b *Backend) Smallest(args ...Value) Value {
	return b.variadicOp("Smallest", eager.Minimum, graph.Minimum, args...)
}

// binaryOp dispatches a binary elementwise operation.
func (b *Backend) binaryOp(
	eagerFn func(lhs, rhs *tensors.Tensor) *tensors.Tensor,
	symbolic func(lhs, rhs *graph.Node) *graph.Node,
	lhs, rhs Value) Value {
	if b.anySymbolic(lhs, rhs) {
		return symbolic(b.node(lhs), b.node(rhs))
	}
	return eagerFn(concrete(lhs), concrete(rhs))
}

// LessThan returns the elementwise lhs < rhs, with dtype Bool.
func (b *Backend) LessThan(lhs, rhs Value) Value {
	return b.binaryOp(eager.LessThan, graph.LessThan, lhs, rhs)
}

// LessOrEqual returns the elementwise lhs <= rhs, with dtype Bool.
func (b *Backend) LessOrEqual(lhs, rhs Value) Value {
	return b.binaryOp(eager.LessOrEqual, graph.LessOrEqual, lhs, rhs)
}

// GreaterThan returns the elementwise lhs > rhs, with dtype Bool.
func (b *Backend) GreaterThan(lhs, rhs Value) Value {
	return b.binaryOp(eager.GreaterThan, graph.GreaterThan, lhs, rhs)
}

// GreaterOrEqual returns the elementwise lhs >= rhs, with dtype Bool.
func (b *Backend) GreaterOrEqual(lhs, rhs Value) Value {
	return b.binaryOp(eager.GreaterOrEqual, graph.GreaterOrEqual, lhs, rhs)
}

// Equal returns the elementwise lhs == rhs, with dtype Bool.
func (b *Backend) Equal(lhs, rhs Value) Value {
	return b.binaryOp(eager.Equal, graph.Equal, lhs, rhs)
}

// IfElse selects one of two branches according to a scalar condition. If the
// condition is data-dependent (a symbolic expression under a symbolic
// backend) it builds a lazy conditional node; otherwise the condition is
// evaluated now and the chosen branch is returned as-is, unevaluated.
//
// Both branches must have the same shape.
func (b *Backend) IfElse(condition, onTrue, onFalse Value) Value {
	if b.anySymbolic(condition) {
		return graph.IfElse(b.node(condition), b.node(onTrue), b.node(onFalse))
	}
	conditionT := concrete(condition)
	if !conditionT.IsScalar() {
		Panicf("IfElse requires a scalar condition, got shape %s", conditionT.Shape())
	}
	if !onTrue.Shape().EqualDimensions(onFalse.Shape()) {
		Panicf("IfElse branches must have the same dimensions, got %s and %s",
			onTrue.Shape(), onFalse.Shape())
	}
	if eager.Truthy(conditionT) {
		return onTrue
	}
	return onFalse
}

// Where selects elementwise between onTrue and onFalse according to
// condition, which must have dtype Bool. The three shapes are broadcast
// together.
func (b *Backend) Where(condition, onTrue, onFalse Value) Value {
	if b.anySymbolic(condition, onTrue, onFalse) {
		return graph.Where(b.node(condition), b.node(onTrue), b.node(onFalse))
	}
	return eager.Where(concrete(condition), concrete(onTrue), concrete(onFalse))
}

// Round returns x with float elements rounded to the nearest integer, half
// away from zero. Integer dtypes are returned unchanged.
func (b *Backend) Round(x Value) Value {
	if b.anySymbolic(x) {
		return graph.Round(b.node(x))
	}
	return eager.Round(concrete(x))
}

// Abs returns the elementwise absolute value of x.
func (b *Backend) Abs(x Value) Value {
	if b.anySymbolic(x) {
		return graph.Abs(b.node(x))
	}
	return eager.Abs(concrete(x))
}

// CastAsDType converts x to the given dtype.
func (b *Backend) CastAsDType(x Value, dtype dtypes.DType) Value {
	if b.anySymbolic(x) {
		return graph.ConvertDType(b.node(x), dtype)
	}
	return eager.ConvertDType(concrete(x), dtype)
}

// CastInt16 converts x to Int16.
func (b *Backend) CastInt16(x Value) Value { return b.CastAsDType(x, dtypes.Int16) }

// CastInt32 converts x to Int32.
func (b *Backend) CastInt32(x Value) Value { return b.CastAsDType(x, dtypes.Int32) }

// CastInt64 converts x to Int64.
func (b *Backend) CastInt64(x Value) Value { return b.CastAsDType(x, dtypes.Int64) }

// TestValue resolves v to a concrete tensor: concrete tensors return
// themselves, Shared containers their current cell, and symbolic nodes
// their attached test value -- or an error naming the node when none is set.
func (b *Backend) TestValue(v Value) (*tensors.Tensor, error) {
	switch vT := v.(type) {
	case *tensors.Tensor:
		return vT, nil
	case *Shared:
		return vT.Value(), nil
	case *graph.Node:
		return vT.TestValue()
	default:
		Panicf("numshim: %T is not a Value of the dispatch layer", v)
	}
	return nil, nil
}

// dtypeOf reports the element dtype of x, which may be a Value, a Go scalar
// or a (nested) slice of a supported dtype. Unsupported types report
// InvalidDType.
func dtypeOf(x any) dtypes.DType {
	if v, ok := x.(Value); ok {
		return v.Shape().DType
	}
	t := reflect.TypeOf(x)
	for t != nil && t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	return dtypes.FromGoType(t)
}

// IsDType reports whether the element dtype name of x contains any of the
// given names, case-insensitively. x may be a Value, a Go scalar or a
// (nested) slice.
//
//	IsDType(int32(5), "int32") == true
//	IsDType(float64(5), "int32") == false
//	IsDType([]float32{1}, "float") == true
func IsDType(x any, dtypeNames ...string) bool {
	name := strings.ToLower(dtypeOf(x).String())
	for _, want := range dtypeNames {
		if strings.Contains(name, strings.ToLower(want)) {
			return true
		}
	}
	return false
}

// AsTensor coerces x to a Value: Values pass through (Shared resolves to
// its cell), anything else goes through tensors.FromValue.
func AsTensor(x any) Value {
	switch xT := x.(type) {
	case *tensors.Tensor:
		return xT
	case *graph.Node:
		return xT
	case *Shared:
		return xT.Value()
	default:
		return tensors.FromValue(x)
	}
}

// AsVariable coerces x to a Value of the backend: on a symbolic backend the
// result is a graph node, on an eager backend it is the same as AsTensor.
func (b *Backend) AsVariable(x any) Value {
	v := AsTensor(x)
	if b.IsSymbolic() {
		return b.node(v)
	}
	return v
}

// IsScalar reports whether x has rank 0.
func IsScalar(x Value) bool { return x.Shape().IsScalar() }

// Rank returns the number of axes of x.
func Rank(x Value) int { return x.Shape().Rank() }
