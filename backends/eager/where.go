// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package eager

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
)

func execWhere[T elemPOD](condFlat []bool, onTrueFlat, onFalseFlat, outFlat []T, condIt, tIt, fIt *broadcastIterator) {
	for ii := range outFlat {
		tIdx, fIdx := tIt.Next(), fIt.Next()
		if condFlat[condIt.Next()] {
			outFlat[ii] = onTrueFlat[tIdx]
		} else {
			outFlat[ii] = onFalseFlat[fIdx]
		}
	}
}

// Where takes elementwise values from onTrue or onFalse depending on the
// value of condition. Condition must have dtype Bool; onTrue and onFalse must
// share a dtype. All three broadcast together to the output shape.
func Where(condition, onTrue, onFalse *tensors.Tensor) *tensors.Tensor {
	if condition.DType() != dtypes.Bool {
		exceptions.Panicf("Where: condition must have dtype Bool, got %s", condition.Shape())
	}
	sameDTypeBinary("Where", onTrue, onFalse)
	outDims := shapes.BroadcastDims(condition.Shape().Dimensions,
		shapes.BroadcastDims(onTrue.Shape().Dimensions, onFalse.Shape().Dimensions))
	out := tensors.FromShape(shapes.Shape{DType: onTrue.DType(), Dimensions: outDims})
	condFlat := flatOf(condition).([]bool)
	condIt := newBroadcastIterator(condition.Shape().Dimensions, outDims)
	tIt := newBroadcastIterator(onTrue.Shape().Dimensions, outDims)
	fIt := newBroadcastIterator(onFalse.Shape().Dimensions, outDims)
	switch onTrueFlat := flatOf(onTrue).(type) {
	case []bool:
		execWhere(condFlat, onTrueFlat, flatOf(onFalse).([]bool), mutableFlatOf(out).([]bool), condIt, tIt, fIt)
	case []int32:
		execWhere(condFlat, onTrueFlat, flatOf(onFalse).([]int32), mutableFlatOf(out).([]int32), condIt, tIt, fIt)
	case []int64:
		execWhere(condFlat, onTrueFlat, flatOf(onFalse).([]int64), mutableFlatOf(out).([]int64), condIt, tIt, fIt)
	case []int:
		execWhere(condFlat, onTrueFlat, flatOf(onFalse).([]int), mutableFlatOf(out).([]int), condIt, tIt, fIt)
	case []float32:
		execWhere(condFlat, onTrueFlat, flatOf(onFalse).([]float32), mutableFlatOf(out).([]float32), condIt, tIt, fIt)
	case []float64:
		execWhere(condFlat, onTrueFlat, flatOf(onFalse).([]float64), mutableFlatOf(out).([]float64), condIt, tIt, fIt)
	default:
		exceptions.Panicf("Where: unsupported dtype %s", onTrue.DType())
	}
	return out
}
