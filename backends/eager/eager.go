// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package eager implements the concrete compute kernels over tensors.Tensor
// used by the eager (non-symbolic) path of the dispatch layer.
//
// Kernels are pure functions: they take tensors, return new tensors (except
// the explicitly in-place AssignTo/AddTo used for sub-tensor updates), and
// panic with an exceptions error on invalid shapes or unsupported dtypes.
//
// Binary operations support NumPy-style broadcasting: dimensions are aligned
// from the end, and dimensions of size 1 expand to the other operand's
// dimension. Operands must have the same dtype; there is no implicit dtype
// promotion.
//
// The compute dtypes are Int32, Int64, Float32 and Float64 (plus Bool where
// it makes sense, e.g. Equal and Where). Float16 and BFloat16 are supported
// by ConvertDType only.
package eager

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
)

// numberPOD are the Go types of the dtypes the kernels compute with.
type numberPOD interface {
	int32 | int64 | int | float32 | float64
}

// elemPOD adds bool to numberPOD, for kernels that also operate on Bool
// tensors (Where, Equal).
type elemPOD interface {
	bool | int32 | int64 | int | float32 | float64
}

// flatOf returns the flat data slice of a tensor.
func flatOf(t *tensors.Tensor) any {
	var flat any
	t.ConstFlatData(func(f any) { flat = f })
	return flat
}

// mutableFlatOf returns the flat data slice of a tensor for in-place mutation.
func mutableFlatOf(t *tensors.Tensor) any {
	var flat any
	t.MutableFlatData(func(f any) { flat = f })
	return flat
}

// broadcastIterator iterates over the flat indices of a tensor that is being
// broadcast to a larger shape: broadcast axes repeat the same slice of the
// tensor.
type broadcastIterator struct {
	flatIdx     int
	perAxesIdx  []int
	targetDims  []int
	isBroadcast []bool
	strides     []int
}

// newBroadcastIterator returns an iterator over the flat indices of a tensor
// with dimensions fromDims being broadcast to targetDims. fromDims is aligned
// to the end of targetDims (missing leading axes count as 1).
func newBroadcastIterator(fromDims, targetDims []int) *broadcastIterator {
	rank := len(targetDims)
	padded := make([]int, rank)
	for axis := range padded {
		padded[axis] = 1
	}
	copy(padded[rank-len(fromDims):], fromDims)
	bi := &broadcastIterator{
		perAxesIdx:  make([]int, rank),
		targetDims:  targetDims,
		isBroadcast: make([]bool, rank),
		strides:     make([]int, rank),
	}
	stride := 1
	for axis := rank - 1; axis >= 0; axis-- {
		bi.strides[axis] = stride
		stride *= padded[axis]
		bi.isBroadcast[axis] = padded[axis] != targetDims[axis]
	}
	return bi
}

// Next returns the flat index of the current element and advances the iterator.
func (bi *broadcastIterator) Next() (flatIdx int) {
	flatIdx = bi.flatIdx
	bi.flatIdx++
	rank := len(bi.perAxesIdx)
	for axis := rank - 1; axis >= 0; axis-- {
		bi.perAxesIdx[axis]++
		if bi.perAxesIdx[axis] < bi.targetDims[axis] {
			if bi.isBroadcast[axis] {
				// Broadcasting on this axis: go back and repeat the same slice.
				bi.flatIdx -= bi.strides[axis]
			}
			break
		}
		bi.perAxesIdx[axis] = 0
	}
	return
}

// Truthy returns whether all elements of the tensor are true (Bool dtype) or
// non-zero (numeric dtypes). Follows the semantics of using an array as an
// assertion statement.
func Truthy(t *tensors.Tensor) bool {
	if t.DType().IsComplex() {
		exceptions.Panicf("Truthy: unsupported dtype %s", t.DType())
	}
	for _, v := range t.ConvertToFloat64() {
		if v == 0 {
			return false
		}
	}
	return true
}

// sameDTypeBinary panics if the two operands don't share a dtype.
func sameDTypeBinary(opName string, lhs, rhs *tensors.Tensor) {
	if lhs.DType() != rhs.DType() {
		exceptions.Panicf("%s: operands must have the same dtype, got %s and %s -- convert them first with ConvertDType",
			opName, lhs.Shape(), rhs.Shape())
	}
}

// outputShapeForBinary computes the broadcast output shape of a binary op.
func outputShapeForBinary(opName string, lhs, rhs *tensors.Tensor) shapes.Shape {
	sameDTypeBinary(opName, lhs, rhs)
	return shapes.BroadcastShapes(lhs.Shape(), rhs.Shape())
}
