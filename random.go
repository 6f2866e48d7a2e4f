// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package numshim

import (
	"math/rand"

	"github.com/gomlx/numshim/backends/eager"
	"github.com/gomlx/numshim/graph"
	"github.com/gomlx/numshim/types/shapes"
)

// RandomStream is a seeded source of random Values, dispatching to the
// backend like every other operation: eager backends sample immediately,
// symbolic backends build sampling nodes (whose test values come from the
// graph's own generator).
type RandomStream struct {
	backend *Backend
	rng     *rand.Rand
}

// NewRandomStream creates a random stream with the given seed.
func (b *Backend) NewRandomStream(seed int64) *RandomStream {
	return &RandomStream{
		backend: b,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Normal returns a Value of the given shape sampled from a normal
// distribution with the given average and standard deviation. The shape's
// dtype must be a float.
func (rs *RandomStream) Normal(shape shapes.Shape, avg, stddev float64) Value {
	if rs.backend.IsSymbolic() {
		return graph.RandomNormal(rs.backend.graph, shape, avg, stddev)
	}
	return eager.RandomNormal(rs.rng, shape, avg, stddev)
}
