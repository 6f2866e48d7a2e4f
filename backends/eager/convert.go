// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package eager

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
	"github.com/x448/float16"
)

// ConvertDType returns a copy of x converted to the given dtype. Conversion
// to an integer dtype truncates towards zero; conversion to Bool maps
// non-zero to true. Float16 and BFloat16 are supported as conversion targets
// and sources, but not by the compute kernels.
func ConvertDType(x *tensors.Tensor, dtype dtypes.DType) *tensors.Tensor {
	if dtype == x.DType() {
		return x.Clone()
	}
	values := x.ConvertToFloat64()
	out := tensors.FromShape(shapes.Shape{DType: dtype, Dimensions: x.Shape().Clone().Dimensions})
	switch outFlat := mutableFlatOf(out).(type) {
	case []bool:
		for ii, v := range values {
			outFlat[ii] = v != 0
		}
	case []int8:
		convertNumeric(outFlat, values)
	case []int16:
		convertNumeric(outFlat, values)
	case []int32:
		convertNumeric(outFlat, values)
	case []int64:
		convertNumeric(outFlat, values)
	case []int:
		convertNumeric(outFlat, values)
	case []uint8:
		convertNumeric(outFlat, values)
	case []uint16:
		convertNumeric(outFlat, values)
	case []uint32:
		convertNumeric(outFlat, values)
	case []uint64:
		convertNumeric(outFlat, values)
	case []float32:
		convertNumeric(outFlat, values)
	case []float64:
		copy(outFlat, values)
	case []float16.Float16:
		for ii, v := range values {
			outFlat[ii] = float16.Fromfloat32(float32(v))
		}
	case []bfloat16.BFloat16:
		for ii, v := range values {
			outFlat[ii] = bfloat16.FromFloat32(float32(v))
		}
	default:
		exceptions.Panicf("ConvertDType: unsupported target dtype %s", dtype)
	}
	return out
}

func convertNumeric[T interface {
	int8 | int16 | int32 | int64 | int | uint8 | uint16 | uint32 | uint64 | float32
}](out []T, values []float64) {
	for ii, v := range values {
		out[ii] = T(v)
	}
}
