// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tensors implements a Tensor, a representation of a multi-dimensional array.
//
// Tensors are multidimensional arrays (from scalar with 0 dimensions, to
// arbitrarily large dimensions), defined by their shape (a data type and its
// axes' dimensions) and their actual content, stored as a flat (1D) slice of
// the Go type corresponding to the DType.
//
// There are various ways to construct a Tensor from local data:
//
//   - FromShape(shape shapes.Shape): creates a tensor with the given shape and
//     zero values.
//
//   - FromScalarAndDimensions[T dtypes.Supported](value T, dimensions ...int):
//     creates a tensor with the given dimensions, filled with the scalar value.
//
//   - FromFlatDataAndDimensions[T dtypes.Supported](data []T, dimensions ...int):
//     creates a tensor with the given dimensions, with the flattened values set
//     to data. Example:
//
//     t := FromFlatDataAndDimensions([]int8{1, 2, 3, 4}, 2, 2) // [[1,2], [3,4]]
//
//   - FromValue(value any): generic conversion from a Go scalar or an arbitrary
//     multidimensional slice of a supported dtype. Slices of rank > 1 must be
//     regular: all the sub-slices must have the same shape. Example:
//
//     t := FromValue([][]float32{{1, 2}, {3, 5}, {7, 11}})
//
// A Tensor can also be a view: a sub-range of another tensor's rows sharing
// the same backing storage, created with Tensor.Slice. Mutating a view
// mutates its base tensor. Views are how in-place sub-tensor updates are
// expressed by the dispatch layer on the eager path.
//
// Tensors are not synchronized: concurrent mutation requires external locking.
package tensors

import (
	"reflect"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/pkg/errors"
)

// Tensor represents a multidimensional array, defined by its shape and its
// content, stored as a flat slice of the Go type corresponding to its DType.
//
// A Tensor may be a view into another tensor (see Tensor.Slice), in which
// case it shares the backing storage of its base.
type Tensor struct {
	// shape of the tensor.
	shape shapes.Shape

	// flat holds the actual data: a slice of the Go type for the dtype of the
	// shape, of length shape.Size(). For views, it aliases a sub-range of the
	// base tensor's flat data.
	flat any

	// base is non-nil if this tensor is a view into another tensor.
	base *Tensor
}

// FromShape returns a Tensor with the given shape, with the data initialized
// with zeros.
//
// It panics if the shape is invalid.
func FromShape(shape shapes.Shape) *Tensor {
	if !shape.Ok() {
		panic(errors.New("invalid shape"))
	}
	flatV := reflect.MakeSlice(reflect.SliceOf(shape.DType.GoType()), shape.Size(), shape.Size())
	return &Tensor{
		shape: shape.Clone(),
		flat:  flatV.Interface(),
	}
}

// FromFlatDataAndShape creates a tensor that takes ownership of the given
// flat slice, which must be a slice of the Go type for shape.DType with
// exactly shape.Size() elements.
func FromFlatDataAndShape(flat any, shape shapes.Shape) *Tensor {
	flatV := reflect.ValueOf(flat)
	if flatV.Kind() != reflect.Slice {
		exceptions.Panicf("FromFlatDataAndShape: flat must be a slice, got %T", flat)
	}
	if got := dtypes.FromGoType(flatV.Type().Elem()); got != shape.DType {
		exceptions.Panicf("FromFlatDataAndShape: flat has dtype %s, but shape is %s", got, shape)
	}
	if flatV.Len() != shape.Size() {
		exceptions.Panicf("FromFlatDataAndShape: flat has %d elements, but shape %s requires %d",
			flatV.Len(), shape, shape.Size())
	}
	return &Tensor{shape: shape.Clone(), flat: flat}
}

// FromFlatDataAndDimensions creates a tensor with the given dimensions,
// initialized with the given flat data -- it is copied.
// The data size must match the dimensions.
func FromFlatDataAndDimensions[T dtypes.Supported](data []T, dimensions ...int) *Tensor {
	shape := shapes.Make(dtypes.FromGenericsType[T](), dimensions...)
	if len(data) != shape.Size() {
		exceptions.Panicf("FromFlatDataAndDimensions: data has %d elements, but dimensions %v require %d",
			len(data), dimensions, shape.Size())
	}
	t := FromShape(shape)
	copy(t.flat.([]T), data)
	return t
}

// FromScalar creates a scalar tensor with the given value.
func FromScalar[T dtypes.Supported](value T) *Tensor {
	t := FromShape(shapes.Shape{DType: dtypes.FromGenericsType[T]()})
	t.flat.([]T)[0] = value
	return t
}

// FromScalarAndDimensions creates a tensor with the given dimensions, filled
// with the given scalar value.
func FromScalarAndDimensions[T dtypes.Supported](value T, dimensions ...int) *Tensor {
	shape := shapes.Make(dtypes.FromGenericsType[T](), dimensions...)
	t := FromShape(shape)
	flat := t.flat.([]T)
	for ii := range flat {
		flat[ii] = value
	}
	return t
}

// FromValue converts a Go scalar or a (regular) multidimensional slice of a
// supported dtype into a Tensor. If value is already a *Tensor it is returned
// unchanged.
//
// It panics if the value's type is not supported or if the sub-slices are
// ragged.
func FromValue(value any) *Tensor {
	if t, ok := value.(*Tensor); ok {
		return t
	}
	v := reflect.ValueOf(value)
	var dims []int
	baseType := v.Type()
	for baseType.Kind() == reflect.Slice {
		baseType = baseType.Elem()
	}
	dtype := dtypes.FromGoType(baseType)
	if dtype == dtypes.InvalidDType {
		exceptions.Panicf("FromValue: cannot convert %T to a tensor, unsupported dtype", value)
	}
	findDims(v, &dims)
	shape := shapes.Shape{DType: dtype, Dimensions: dims}
	for _, dim := range dims {
		if dim <= 0 {
			exceptions.Panicf("FromValue: cannot convert %T with a zero-sized axis (shape %s)", value, shape)
		}
	}
	t := FromShape(shape)
	flatV := reflect.ValueOf(t.flat)
	copyRecursive(flatV, v, 0, shape.Dimensions)
	return t
}

// findDims recursively finds the dimensions of a multidimensional slice.
func findDims(v reflect.Value, dims *[]int) {
	if v.Kind() != reflect.Slice {
		return
	}
	*dims = append(*dims, v.Len())
	if v.Len() > 0 {
		findDims(v.Index(0), dims)
	}
}

// copyRecursive copies the values of a multidimensional slice into the flat
// storage, checking that the slice is regular.
func copyRecursive(flat, v reflect.Value, flatIdx int, dims []int) int {
	if len(dims) == 0 {
		flat.Index(flatIdx).Set(v)
		return flatIdx + 1
	}
	if v.Len() != dims[0] {
		exceptions.Panicf("FromValue: ragged multidimensional slice, got length %d where %d was expected",
			v.Len(), dims[0])
	}
	for ii := 0; ii < v.Len(); ii++ {
		flatIdx = copyRecursive(flat, v.Index(ii), flatIdx, dims[1:])
	}
	return flatIdx
}

// Shape of the tensor, includes DType.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// DType returns the DType of the tensor's shape.
func (t *Tensor) DType() dtypes.DType { return t.shape.DType }

// Rank returns the rank of the tensor's shape.
func (t *Tensor) Rank() int { return t.shape.Rank() }

// IsScalar returns whether the tensor represents a scalar value.
func (t *Tensor) IsScalar() bool { return t.shape.IsScalar() }

// Size returns the number of elements in the tensor.
func (t *Tensor) Size() int { return t.shape.Size() }

// Memory returns the number of bytes used to store the tensor.
func (t *Tensor) Memory() uintptr { return t.shape.Memory() }

// AssertValid panics if t is nil or if its shape is invalid.
func (t *Tensor) AssertValid() {
	if t == nil {
		panic(errors.New("Tensor is nil"))
	}
	if !t.shape.Ok() {
		panic(errors.New("Tensor shape is invalid"))
	}
}

// IsView returns whether the tensor is a view into another tensor's storage.
func (t *Tensor) IsView() bool { return t.base != nil }

// Base returns the tensor whose storage this view aliases, or nil if t is not
// a view.
func (t *Tensor) Base() *Tensor { return t.base }

// Slice returns a view of the rows [from, to) of the tensor, along axis 0.
// The view shares the backing storage: mutations through the view are
// immediately visible in the base tensor. The base of a view of a view is the
// original tensor.
//
// It panics for scalars or out-of-range indices.
func (t *Tensor) Slice(from, to int) *Tensor {
	t.AssertValid()
	if t.Rank() == 0 {
		exceptions.Panicf("Tensor.Slice: cannot slice a scalar (shape %s)", t.shape)
	}
	dim0 := t.shape.Dimensions[0]
	if from < 0 || to > dim0 || from >= to {
		exceptions.Panicf("Tensor.Slice(%d, %d) out-of-range for shape %s", from, to, t.shape)
	}
	rowSize := t.Size() / dim0
	flatV := reflect.ValueOf(t.flat)
	viewFlat := flatV.Slice(from*rowSize, to*rowSize).Interface()
	newDims := append([]int{to - from}, t.shape.Dimensions[1:]...)
	base := t
	if t.base != nil {
		base = t.base
	}
	return &Tensor{
		shape: shapes.Shape{DType: t.shape.DType, Dimensions: newDims},
		flat:  viewFlat,
		base:  base,
	}
}

// ConstFlatData calls accessFn with the flattened data as a slice of the Go
// type corresponding to the DType. Even scalar values have a flattened data
// representation of one element.
//
// This provides accessFn with the actual tensor data (not a copy); it should
// not be changed -- see Tensor.MutableFlatData for that.
func (t *Tensor) ConstFlatData(accessFn func(flat any)) {
	t.AssertValid()
	accessFn(t.flat)
}

// MutableFlatData calls accessFn with the flattened data as a slice of the Go
// type corresponding to the DType. The data can be mutated in place; for
// views, mutations are visible in the base tensor.
func (t *Tensor) MutableFlatData(accessFn func(flat any)) {
	t.AssertValid()
	accessFn(t.flat)
}

// Clone returns a deep copy of the tensor. The clone is never a view, even if
// t was one.
func (t *Tensor) Clone() *Tensor {
	t.AssertValid()
	clone := FromShape(t.shape)
	reflect.Copy(reflect.ValueOf(clone.flat), reflect.ValueOf(t.flat))
	return clone
}
