// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package eager

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
)

// binaryOpType enumerates the elementwise binary operations.
type binaryOpType int

const (
	binaryMax binaryOpType = iota
	binaryMin
	binaryAdd
)

func (op binaryOpType) String() string {
	switch op {
	case binaryMax:
		return "Maximum"
	case binaryMin:
		return "Minimum"
	case binaryAdd:
		return "Add"
	default:
		return "UnknownBinaryOp"
	}
}

func applyBinary[T numberPOD](op binaryOpType, a, b T) T {
	switch op {
	case binaryMax:
		if a >= b {
			return a
		}
		return b
	case binaryMin:
		if a <= b {
			return a
		}
		return b
	case binaryAdd:
		return a + b
	}
	var zero T
	return zero
}

func execBinary[T numberPOD](op binaryOpType, lhsFlat, rhsFlat, outFlat []T, lhsIt, rhsIt *broadcastIterator) {
	for ii := range outFlat {
		outFlat[ii] = applyBinary(op, lhsFlat[lhsIt.Next()], rhsFlat[rhsIt.Next()])
	}
}

// binaryOp executes an elementwise binary operation with broadcasting.
func binaryOp(op binaryOpType, lhs, rhs *tensors.Tensor) *tensors.Tensor {
	outShape := outputShapeForBinary(op.String(), lhs, rhs)
	out := tensors.FromShape(outShape)
	lhsIt := newBroadcastIterator(lhs.Shape().Dimensions, outShape.Dimensions)
	rhsIt := newBroadcastIterator(rhs.Shape().Dimensions, outShape.Dimensions)
	switch lhsFlat := flatOf(lhs).(type) {
	case []int32:
		execBinary(op, lhsFlat, flatOf(rhs).([]int32), mutableFlatOf(out).([]int32), lhsIt, rhsIt)
	case []int64:
		execBinary(op, lhsFlat, flatOf(rhs).([]int64), mutableFlatOf(out).([]int64), lhsIt, rhsIt)
	case []int:
		execBinary(op, lhsFlat, flatOf(rhs).([]int), mutableFlatOf(out).([]int), lhsIt, rhsIt)
	case []float32:
		execBinary(op, lhsFlat, flatOf(rhs).([]float32), mutableFlatOf(out).([]float32), lhsIt, rhsIt)
	case []float64:
		execBinary(op, lhsFlat, flatOf(rhs).([]float64), mutableFlatOf(out).([]float64), lhsIt, rhsIt)
	default:
		exceptions.Panicf("%s: unsupported dtype %s", op, lhs.DType())
	}
	return out
}

// Maximum returns the elementwise maximum of lhs and rhs, with broadcasting.
func Maximum(lhs, rhs *tensors.Tensor) *tensors.Tensor {
	return binaryOp(binaryMax, lhs, rhs)
}

// Minimum returns the elementwise minimum of lhs and rhs, with broadcasting.
func Minimum(lhs, rhs *tensors.Tensor) *tensors.Tensor {
	return binaryOp(binaryMin, lhs, rhs)
}

// Add returns the elementwise sum of lhs and rhs, with broadcasting.
func Add(lhs, rhs *tensors.Tensor) *tensors.Tensor {
	return binaryOp(binaryAdd, lhs, rhs)
}

// execAssign writes src (broadcast to dst's shape) into dst's flat data,
// either overwriting or accumulating.
func execAssign[T numberPOD](dstFlat, srcFlat []T, srcIt *broadcastIterator, accumulate bool) {
	for ii := range dstFlat {
		v := srcFlat[srcIt.Next()]
		if accumulate {
			dstFlat[ii] += v
		} else {
			dstFlat[ii] = v
		}
	}
}

func assignOp(opName string, dst, src *tensors.Tensor, accumulate bool) {
	sameDTypeBinary(opName, dst, src)
	// src must broadcast to exactly dst's shape.
	bcast := shapes.BroadcastDims(dst.Shape().Dimensions, src.Shape().Dimensions)
	dstShape := dst.Shape()
	if !shapes.Make(dstShape.DType, bcast...).EqualDimensions(dstShape) {
		exceptions.Panicf("%s: cannot broadcast value shape %s into target shape %s",
			opName, src.Shape(), dstShape)
	}
	srcIt := newBroadcastIterator(src.Shape().Dimensions, dstShape.Dimensions)
	switch dstFlat := mutableFlatOf(dst).(type) {
	case []int32:
		execAssign(dstFlat, flatOf(src).([]int32), srcIt, accumulate)
	case []int64:
		execAssign(dstFlat, flatOf(src).([]int64), srcIt, accumulate)
	case []int:
		execAssign(dstFlat, flatOf(src).([]int), srcIt, accumulate)
	case []float32:
		execAssign(dstFlat, flatOf(src).([]float32), srcIt, accumulate)
	case []float64:
		execAssign(dstFlat, flatOf(src).([]float64), srcIt, accumulate)
	default:
		exceptions.Panicf("%s: unsupported dtype %s", opName, dst.DType())
	}
}

// AssignTo overwrites dst's contents, in place, with src broadcast to dst's
// shape. If dst is a view, the mutation is visible in its base tensor.
func AssignTo(dst, src *tensors.Tensor) {
	assignOp("AssignTo", dst, src, false)
}

// AddTo accumulates src, broadcast to dst's shape, into dst in place. If dst
// is a view, the mutation is visible in its base tensor.
func AddTo(dst, src *tensors.Tensor) {
	assignOp("AddTo", dst, src, true)
}
