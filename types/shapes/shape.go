// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape and associated tools.
//
// Shape represents the shape (rank, dimensions and DType) of either a concrete
// tensors.Tensor or of a node in a symbolic computation graph. DType indicates
// the type of the unit element of a tensor and is the enumeration defined in
// github.com/gomlx/gopjrt/dtypes.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a tensor.
//   - Axis: the index of a dimension on a multidimensional tensor. We refer to
//     a dimension index as "axis" (plural axes), and its size as its dimension.
//   - Dimension: the size of a multi-dimensional tensor in one of its axes.
//   - DType: the data type of the unit element in a tensor.
//   - Scalar: a shape with no axes (rank 0), holding a single value.
//
// Example: the multi-dimensional slice `[][]int32{{0, 1, 2}, {3, 4, 5}}`
// converted to a tensor has shape `(Int32)[2 3]`: rank 2, axis 0 has dimension
// 2 and axis 1 has dimension 3. It could be created with
// `shapes.Make(dtypes.Int32, 2, 3)`.
package shapes

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// Shape represents the shape of either a concrete tensor or the expected
// shape of the value from a computation node.
//
// Use Make to create a new shape. See example in package documentation.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int
}

// Make returns a Shape structure filled with the values given.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{Dimensions: slices.Clone(dimensions), DType: dtype}
	for _, dim := range dimensions {
		if dim <= 0 {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with an axis with dimension <= 0", s)
		}
	}
	return s
}

// Scalar returns a scalar Shape for the given type.
func Scalar[T dtypes.NumberNotComplex]() Shape {
	return Shape{DType: dtypes.FromGenericsType[T]()}
}

// Invalid returns an invalid shape.
//
// Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{DType: dtypes.InvalidDType}
}

// Ok returns whether this is a valid Shape. A "zero" shape, that is just
// instantiating it with Shape{}, will be invalid.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// Rank of the shape, that is, the number of dimensions.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape represents a scalar: no dimensions (rank==0).
func (s Shape) IsScalar() bool { return s.Ok() && s.Rank() == 0 }

// Dim returns the dimension of the given axis. axis can take negative numbers,
// in which case it counts from the end -- so axis=-1 refers to the last axis.
// It panics for an out-of-bound axis.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// Shape returns a shallow copy of itself. It implements the HasShape interface.
func (s Shape) Shape() Shape { return s }

// String implements stringer, pretty-prints the shape.
func (s Shape) String() string {
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	return fmt.Sprintf("(%s)%v", s.DType, s.Dimensions)
}

// Size returns the number of elements of DType needed for this shape.
// It's the product of all dimensions.
func (s Shape) Size() (size int) {
	size = 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return
}

// Memory returns the memory used to store an array of the given shape, the
// same as the size in bytes.
func (s Shape) Memory() uintptr {
	return s.DType.Memory() * uintptr(s.Size())
}

// Equal compares two shapes for equality: dtype and dimensions are compared.
func (s Shape) Equal(s2 Shape) bool {
	if s.DType != s2.DType {
		return false
	}
	return s.EqualDimensions(s2)
}

// EqualDimensions compares two shapes for equality of dimensions.
// DTypes can be different.
func (s Shape) EqualDimensions(s2 Shape) bool {
	if s.Rank() != s2.Rank() {
		return false
	}
	if s.IsScalar() {
		return true
	}
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() (s2 Shape) {
	s2.DType = s.DType
	s2.Dimensions = slices.Clone(s.Dimensions)
	return
}

// Strides returns the row-major strides (in elements, not bytes) for each axis.
func (s Shape) Strides() []int {
	rank := s.Rank()
	strides := make([]int, rank)
	stride := 1
	for axis := rank - 1; axis >= 0; axis-- {
		strides[axis] = stride
		stride *= s.Dimensions[axis]
	}
	return strides
}

// HasShape is an interface for objects that have an associated Shape. It
// includes Shape itself, concrete tensors and symbolic computation nodes.
type HasShape interface {
	Shape() Shape
}

// AdjustAxisToRank converts negative axes to their positive equivalent for the
// given rank (-1 maps to rank-1). It panics if the axis is out-of-range.
func AdjustAxisToRank(axis, rank int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += rank
	}
	if adjustedAxis < 0 || adjustedAxis >= rank {
		exceptions.Panicf("axis %d out-of-range for rank %d", axis, rank)
	}
	return adjustedAxis
}

// BroadcastDims returns the dimensions resulting from broadcasting d1 and d2
// together, aligning them from the end, with dimensions of size 1 expanding to
// the other's dimension. It panics if the dimensions are not
// broadcast-compatible.
func BroadcastDims(d1, d2 []int) []int {
	rank := max(len(d1), len(d2))
	dims := make([]int, rank)
	for axis := 1; axis <= rank; axis++ {
		v1, v2 := 1, 1
		if axis <= len(d1) {
			v1 = d1[len(d1)-axis]
		}
		if axis <= len(d2) {
			v2 = d2[len(d2)-axis]
		}
		switch {
		case v1 == v2:
			dims[rank-axis] = v1
		case v1 == 1:
			dims[rank-axis] = v2
		case v2 == 1:
			dims[rank-axis] = v1
		default:
			exceptions.Panicf("cannot broadcast dimensions %v and %v: axis %d dimensions %d and %d are incompatible",
				d1, d2, rank-axis, v1, v2)
		}
	}
	return dims
}

// BroadcastShapes returns the shape resulting from broadcasting s1 and s2
// together, aligning dimensions from the end, with dimensions of size 1
// expanding to the other shape's dimension. Both shapes must have the same
// DType. It panics if the shapes are not broadcast-compatible.
func BroadcastShapes(s1, s2 Shape) Shape {
	if s1.DType != s2.DType {
		exceptions.Panicf("cannot broadcast shapes with different dtypes: %s and %s", s1, s2)
	}
	return Shape{DType: s1.DType, Dimensions: BroadcastDims(s1.Dimensions, s2.Dimensions)}
}
