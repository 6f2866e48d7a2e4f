// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"

	"github.com/gomlx/numshim/backends/eager"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
)

type nodeInputsRandomNormal struct {
	shape       shapes.Shape
	avg, stddev float64
}

func (ni *nodeInputsRandomNormal) Type() NodeType { return NodeTypeRandomNormal }
func (ni *nodeInputsRandomNormal) String() string {
	return fmt.Sprintf("RandomNormal(%s, avg=%g, stddev=%g)", ni.shape, ni.avg, ni.stddev)
}

// RandomNormal creates a node sampling a tensor of the given shape from a
// normal distribution with the given average and standard deviation. The
// shape's dtype must be a float.
//
// If the graph carries test values, the node's test value is drawn
// immediately from the graph's pseudo-random generator (seeded with
// WithRandomSeed).
func RandomNormal(g *Graph, shape shapes.Shape, avg, stddev float64) *Node {
	if !shape.DType.IsFloat() {
		Panicf("RandomNormal requires a float shape, got %s", shape)
	}
	if stddev < 0 {
		Panicf("RandomNormal requires a non-negative stddev, got %g", stddev)
	}
	return g.newNode(&nodeInputsRandomNormal{shape: shape, avg: avg, stddev: stddev},
		shape, nil,
		func([]*tensors.Tensor) *tensors.Tensor {
			return eager.RandomNormal(g.rng, shape, avg, stddev)
		})
}
