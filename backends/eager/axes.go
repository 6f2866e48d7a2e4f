// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package eager

import (
	"reflect"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
)

// ResolveReshapeDims resolves the target dimensions of a reshape of a value
// with the given total size. The total size cannot change. One dimension can
// be left as -1, in which case it is set to match the size, if possible.
func ResolveReshapeDims(totalSize int, dimensions []int) []int {
	newSize := 1
	missingIdx := -1
	dims := slices.Clone(dimensions)
	for idx, dim := range dims {
		if dim == -1 {
			if missingIdx != -1 {
				exceptions.Panicf("Reshape: only one dimension can be -1, got %v", dimensions)
			}
			missingIdx = idx
			continue
		}
		newSize *= dim
	}
	if missingIdx != -1 {
		if newSize == 0 || totalSize%newSize != 0 {
			exceptions.Panicf("Reshape: cannot infer dimension %d for size %d with dimensions %v",
				missingIdx, totalSize, dimensions)
		}
		dims[missingIdx] = totalSize / newSize
		newSize *= dims[missingIdx]
	}
	if newSize != totalSize {
		exceptions.Panicf("Reshape: new dimensions %v have size %d, but the value has size %d",
			dimensions, newSize, totalSize)
	}
	return dims
}

// Reshape returns a copy of x with the given dimensions. The total size
// cannot change. One dimension can be left as -1, in which case it is set to
// match the size, if possible.
func Reshape(x *tensors.Tensor, dimensions ...int) *tensors.Tensor {
	dims := ResolveReshapeDims(x.Size(), dimensions)
	out := tensors.FromShape(shapes.Shape{DType: x.DType(), Dimensions: dims})
	reflect.Copy(reflect.ValueOf(mutableFlatOf(out)), reflect.ValueOf(flatOf(x)))
	return out
}

// Transpose returns x with its axes permuted: axis i of the result is axis
// permutation[i] of x. The permutation must have exactly one value per axis.
func Transpose(x *tensors.Tensor, permutation ...int) *tensors.Tensor {
	rank := x.Rank()
	if len(permutation) != rank {
		exceptions.Panicf("Transpose: permutation %v must have one value per axis of x (shape %s)",
			permutation, x.Shape())
	}
	seen := make([]bool, rank)
	for _, axis := range permutation {
		if axis < 0 || axis >= rank || seen[axis] {
			exceptions.Panicf("Transpose: invalid permutation %v for rank %d", permutation, rank)
		}
		seen[axis] = true
	}
	inShape := x.Shape()
	outDims := make([]int, rank)
	for ii, axis := range permutation {
		outDims[ii] = inShape.Dimensions[axis]
	}
	outShape := shapes.Shape{DType: inShape.DType, Dimensions: outDims}
	out := tensors.FromShape(outShape)

	inStrides := inShape.Strides()
	inV := reflect.ValueOf(flatOf(x))
	outV := reflect.ValueOf(mutableFlatOf(out))
	outIdx := make([]int, rank)
	for flatIdx := 0; flatIdx < outShape.Size(); flatIdx++ {
		inFlatIdx := 0
		for ii, idx := range outIdx {
			inFlatIdx += idx * inStrides[permutation[ii]]
		}
		outV.Index(flatIdx).Set(inV.Index(inFlatIdx))
		for axis := rank - 1; axis >= 0; axis-- {
			outIdx[axis]++
			if outIdx[axis] < outDims[axis] {
				break
			}
			outIdx[axis] = 0
		}
	}
	return out
}

// MoveAxis returns x with the axis source relocated to the position
// destination, shifting the other axes accordingly. Negative axes count from
// the end.
func MoveAxis(x *tensors.Tensor, source, destination int) *tensors.Tensor {
	rank := x.Rank()
	source = shapes.AdjustAxisToRank(source, rank)
	destination = shapes.AdjustAxisToRank(destination, rank)
	permutation := make([]int, 0, rank)
	for axis := 0; axis < rank; axis++ {
		if axis != source {
			permutation = append(permutation, axis)
		}
	}
	permutation = slices.Insert(permutation, destination, source)
	return Transpose(x, permutation...)
}
