// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
)

var (
	typeFloat16  = reflect.TypeOf(float16.Float16(0))
	typeBFloat16 = reflect.TypeOf(bfloat16.BFloat16(0))
)

// Value returns a multidimensional slice (except if shape is a scalar) with a
// copy of the tensor values.
func (t *Tensor) Value() any {
	t.AssertValid()
	flatV := reflect.ValueOf(t.flat)
	if t.IsScalar() {
		return flatV.Index(0).Interface()
	}
	value, _ := buildMultidimensional(flatV, 0, t.shape.Dimensions)
	return value.Interface()
}

// buildMultidimensional recursively builds nested slices from the flat data.
func buildMultidimensional(flat reflect.Value, flatIdx int, dims []int) (reflect.Value, int) {
	if len(dims) == 1 {
		row := reflect.MakeSlice(flat.Type(), dims[0], dims[0])
		reflect.Copy(row, flat.Slice(flatIdx, flatIdx+dims[0]))
		return row, flatIdx + dims[0]
	}
	elemType := flat.Type()
	for range dims[1:] {
		elemType = reflect.SliceOf(elemType)
	}
	out := reflect.MakeSlice(elemType, dims[0], dims[0])
	for ii := 0; ii < dims[0]; ii++ {
		var sub reflect.Value
		sub, flatIdx = buildMultidimensional(flat, flatIdx, dims[1:])
		out.Index(ii).Set(sub)
	}
	return out, flatIdx
}

// GoStr converts the tensor values to a multidimensional slice and prints it,
// prefixed by the shape.
func (t *Tensor) GoStr() string {
	return fmt.Sprintf("%s: %v", t.shape, t.Value())
}

// String returns a short description of the tensor: its shape and, for small
// tensors, its content.
func (t *Tensor) String() string {
	t.AssertValid()
	if t.Size() <= 32 {
		return t.GoStr()
	}
	return fmt.Sprintf("Tensor%s with %d elements", t.shape, t.Size())
}

// Summary returns a multi-line summary of the tensor's content, with floats
// formatted with the given precision. Inspired by numpy output.
func (t *Tensor) Summary(precision int) string {
	t.AssertValid()
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "Tensor%s:\n", t.shape)
	flatV := reflect.ValueOf(t.flat)
	writeSummaryRecursive(&b, flatV, 0, t.shape.Dimensions, precision, 1)
	return b.String()
}

func writeSummaryRecursive(b *strings.Builder, flat reflect.Value, flatIdx int, dims []int, precision, indent int) int {
	if len(dims) == 0 {
		b.WriteString(formatElement(flat.Index(flatIdx), precision))
		return flatIdx + 1
	}
	b.WriteString("[")
	for ii := 0; ii < dims[0]; ii++ {
		if ii > 0 {
			if len(dims) > 1 {
				b.WriteString(",\n" + strings.Repeat(" ", indent))
			} else {
				b.WriteString(", ")
			}
		}
		flatIdx = writeSummaryRecursive(b, flat, flatIdx, dims[1:], precision, indent+1)
	}
	b.WriteString("]")
	return flatIdx
}

func formatElement(v reflect.Value, precision int) string {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.*f", precision, v.Float())
	default:
		if v.Type() == typeFloat16 {
			return fmt.Sprintf("%.*f", precision, v.Interface().(float16.Float16).Float32())
		}
		if v.Type() == typeBFloat16 {
			return fmt.Sprintf("%.*f", precision, v.Interface().(bfloat16.BFloat16).Float32())
		}
		return fmt.Sprintf("%v", v.Interface())
	}
}

// Equal checks whether t and other have the same shape and exactly the same
// values.
func (t *Tensor) Equal(other *Tensor) bool {
	t.AssertValid()
	other.AssertValid()
	if !t.shape.Equal(other.shape) {
		return false
	}
	return reflect.DeepEqual(t.flat, other.flat)
}

// InDelta checks whether t and other have the same shape and all their
// elements are within delta of each other. Non-float dtypes are compared
// after conversion to float64 as well, so delta < 1 means exact match for
// integers.
func (t *Tensor) InDelta(other *Tensor, delta float64) bool {
	t.AssertValid()
	other.AssertValid()
	if !t.shape.Equal(other.shape) {
		return false
	}
	aFlat := t.ConvertToFloat64()
	bFlat := other.ConvertToFloat64()
	for ii, a := range aFlat {
		diff := a - bFlat[ii]
		if math.IsNaN(diff) || math.Abs(diff) > delta {
			return false
		}
	}
	return true
}

// ConvertToFloat64 returns a copy of the flat values converted to float64.
// Bool converts to 0 or 1. It panics for unsupported dtypes.
func (t *Tensor) ConvertToFloat64() []float64 {
	t.AssertValid()
	out := make([]float64, t.Size())
	switch flat := t.flat.(type) {
	case []bool:
		for ii, v := range flat {
			if v {
				out[ii] = 1
			}
		}
	case []int8:
		for ii, v := range flat {
			out[ii] = float64(v)
		}
	case []int16:
		for ii, v := range flat {
			out[ii] = float64(v)
		}
	case []int32:
		for ii, v := range flat {
			out[ii] = float64(v)
		}
	case []int64:
		for ii, v := range flat {
			out[ii] = float64(v)
		}
	case []int:
		for ii, v := range flat {
			out[ii] = float64(v)
		}
	case []uint8:
		for ii, v := range flat {
			out[ii] = float64(v)
		}
	case []uint16:
		for ii, v := range flat {
			out[ii] = float64(v)
		}
	case []uint32:
		for ii, v := range flat {
			out[ii] = float64(v)
		}
	case []uint64:
		for ii, v := range flat {
			out[ii] = float64(v)
		}
	case []float16.Float16:
		for ii, v := range flat {
			out[ii] = float64(v.Float32())
		}
	case []bfloat16.BFloat16:
		for ii, v := range flat {
			out[ii] = float64(v.Float32())
		}
	case []float32:
		for ii, v := range flat {
			out[ii] = float64(v)
		}
	case []float64:
		copy(out, flat)
	default:
		exceptions.Panicf("Tensor.ConvertToFloat64: unsupported dtype %s", t.DType())
	}
	return out
}

// dtypeOfFlat returns the DType of a flat slice, or InvalidDType.
func dtypeOfFlat(flat any) dtypes.DType {
	v := reflect.TypeOf(flat)
	if v == nil || v.Kind() != reflect.Slice {
		return dtypes.InvalidDType
	}
	return dtypes.FromGoType(v.Elem())
}
