// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package eager

import (
	"math"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/numshim/types/tensors"
)

// Round returns x with float values rounded to the nearest integer, halfway
// cases away from zero. Integer tensors are returned as a copy, unchanged.
func Round(x *tensors.Tensor) *tensors.Tensor {
	out := x.Clone()
	switch outFlat := mutableFlatOf(out).(type) {
	case []float32:
		for ii, v := range outFlat {
			outFlat[ii] = float32(math.Round(float64(v)))
		}
	case []float64:
		for ii, v := range outFlat {
			outFlat[ii] = math.Round(v)
		}
	case []int32, []int64, []int:
		// Already integral.
	default:
		exceptions.Panicf("Round: unsupported dtype %s", x.DType())
	}
	return out
}

func execAbs[T numberPOD](flat []T) {
	for ii, v := range flat {
		if v < 0 {
			flat[ii] = -v
		}
	}
}

// Abs returns the elementwise absolute value of x.
func Abs(x *tensors.Tensor) *tensors.Tensor {
	out := x.Clone()
	switch outFlat := mutableFlatOf(out).(type) {
	case []int32:
		execAbs(outFlat)
	case []int64:
		execAbs(outFlat)
	case []int:
		execAbs(outFlat)
	case []float32:
		execAbs(outFlat)
	case []float64:
		execAbs(outFlat)
	default:
		exceptions.Panicf("Abs: unsupported dtype %s", x.DType())
	}
	return out
}
