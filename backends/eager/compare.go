// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package eager

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
)

// compareOpType enumerates the elementwise comparison operations.
type compareOpType int

const (
	compareLessThan compareOpType = iota
	compareLessOrEqual
	compareGreaterThan
	compareGreaterOrEqual
	compareEqual
)

func (op compareOpType) String() string {
	switch op {
	case compareLessThan:
		return "LessThan"
	case compareLessOrEqual:
		return "LessOrEqual"
	case compareGreaterThan:
		return "GreaterThan"
	case compareGreaterOrEqual:
		return "GreaterOrEqual"
	case compareEqual:
		return "Equal"
	default:
		return "UnknownCompareOp"
	}
}

func applyCompare[T numberPOD](op compareOpType, a, b T) bool {
	switch op {
	case compareLessThan:
		return a < b
	case compareLessOrEqual:
		return a <= b
	case compareGreaterThan:
		return a > b
	case compareGreaterOrEqual:
		return a >= b
	case compareEqual:
		return a == b
	}
	return false
}

func execCompare[T numberPOD](op compareOpType, lhsFlat, rhsFlat []T, outFlat []bool, lhsIt, rhsIt *broadcastIterator) {
	for ii := range outFlat {
		outFlat[ii] = applyCompare(op, lhsFlat[lhsIt.Next()], rhsFlat[rhsIt.Next()])
	}
}

// compareOp executes an elementwise comparison with broadcasting. The result
// has dtype Bool.
func compareOp(op compareOpType, lhs, rhs *tensors.Tensor) *tensors.Tensor {
	sameDTypeBinary(op.String(), lhs, rhs)
	outDims := shapes.BroadcastDims(lhs.Shape().Dimensions, rhs.Shape().Dimensions)
	out := tensors.FromShape(shapes.Shape{DType: dtypes.Bool, Dimensions: outDims})
	outFlat := mutableFlatOf(out).([]bool)
	lhsIt := newBroadcastIterator(lhs.Shape().Dimensions, outDims)
	rhsIt := newBroadcastIterator(rhs.Shape().Dimensions, outDims)
	switch lhsFlat := flatOf(lhs).(type) {
	case []int32:
		execCompare(op, lhsFlat, flatOf(rhs).([]int32), outFlat, lhsIt, rhsIt)
	case []int64:
		execCompare(op, lhsFlat, flatOf(rhs).([]int64), outFlat, lhsIt, rhsIt)
	case []int:
		execCompare(op, lhsFlat, flatOf(rhs).([]int), outFlat, lhsIt, rhsIt)
	case []float32:
		execCompare(op, lhsFlat, flatOf(rhs).([]float32), outFlat, lhsIt, rhsIt)
	case []float64:
		execCompare(op, lhsFlat, flatOf(rhs).([]float64), outFlat, lhsIt, rhsIt)
	case []bool:
		if op != compareEqual {
			exceptions.Panicf("%s: not defined for dtype %s", op, lhs.DType())
		}
		rhsFlat := flatOf(rhs).([]bool)
		for ii := range outFlat {
			outFlat[ii] = lhsFlat[lhsIt.Next()] == rhsFlat[rhsIt.Next()]
		}
	default:
		exceptions.Panicf("%s: unsupported dtype %s", op, lhs.DType())
	}
	return out
}

// LessThan returns the elementwise lhs < rhs, with broadcasting. Bool result.
func LessThan(lhs, rhs *tensors.Tensor) *tensors.Tensor {
	return compareOp(compareLessThan, lhs, rhs)
}

// LessOrEqual returns the elementwise lhs <= rhs, with broadcasting. Bool result.
func LessOrEqual(lhs, rhs *tensors.Tensor) *tensors.Tensor {
	return compareOp(compareLessOrEqual, lhs, rhs)
}

// GreaterThan returns the elementwise lhs > rhs, with broadcasting. Bool result.
func GreaterThan(lhs, rhs *tensors.Tensor) *tensors.Tensor {
	return compareOp(compareGreaterThan, lhs, rhs)
}

// GreaterOrEqual returns the elementwise lhs >= rhs, with broadcasting. Bool result.
func GreaterOrEqual(lhs, rhs *tensors.Tensor) *tensors.Tensor {
	return compareOp(compareGreaterOrEqual, lhs, rhs)
}

// Equal returns the elementwise lhs == rhs, with broadcasting. Bool result.
// It is also defined for Bool operands.
func Equal(lhs, rhs *tensors.Tensor) *tensors.Tensor {
	return compareOp(compareEqual, lhs, rhs)
}
