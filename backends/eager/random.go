// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package eager

import (
	"math/rand"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
)

// RandomNormal returns a tensor of the given shape filled with pseudo-random
// samples from a normal distribution with the given average and standard
// deviation, drawn from rng. Only float dtypes are supported.
func RandomNormal(rng *rand.Rand, shape shapes.Shape, avg, stddev float64) *tensors.Tensor {
	if !shape.DType.IsFloat() {
		exceptions.Panicf("RandomNormal only works with float dtypes, got shape %s", shape)
	}
	out := tensors.FromShape(shape)
	switch outFlat := mutableFlatOf(out).(type) {
	case []float32:
		for ii := range outFlat {
			outFlat[ii] = float32(rng.NormFloat64()*stddev + avg)
		}
	case []float64:
		for ii := range outFlat {
			outFlat[ii] = rng.NormFloat64()*stddev + avg
		}
	default:
		exceptions.Panicf("RandomNormal: unsupported dtype %s", shape.DType)
	}
	return out
}
