// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graph implements the symbolic backend of the dispatch layer: a
// computation graph of deferred expression nodes.
//
// A Graph is a flat collection of Node values. Each Node represents an
// operation to be evaluated later, with its output shape inferred at
// construction time -- shape errors surface immediately, as exceptions
// panics, even though no numeric work happens.
//
// Optionally a Graph can carry "test values": concrete tensors attached to
// nodes and propagated eagerly through every operation (computed with the
// backends/eager kernels). Test values serve debugging and backend-aware
// assertions: without them the truth of a symbolic expression cannot be
// evaluated at graph-building time.
//
// Example:
//
//	g := graph.NewGraph("model", graph.WithTestValues())
//	x := graph.Parameter(g, "x", shapes.Make(dtypes.Float32, 3))
//	x.SetTestValue(tensors.FromValue([]float32{1, 2, 3}))
//	y := graph.Maximum(x, graph.Const(g, []float32{2, 2, 2}))
//	tv, err := y.TestValue() // [2, 2, 3]
package graph

import (
	"math/rand"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
)

// Panicf is an alias to exceptions.Panicf, the way graph construction errors
// are reported.
var Panicf = exceptions.Panicf

// Graph is a collection of symbolic computation nodes. It is not
// synchronized: build it from a single goroutine.
type Graph struct {
	name  string
	nodes []*Node

	testValuesEnabled bool
	rng               *rand.Rand
}

// GraphOption configures a Graph at construction.
type GraphOption func(*Graph)

// WithTestValues enables carrying concrete test values alongside the symbolic
// nodes: every operation eagerly computes its test value whenever all its
// inputs have one.
func WithTestValues() GraphOption {
	return func(g *Graph) { g.testValuesEnabled = true }
}

// WithRandomSeed sets the seed of the pseudo-random generator used to draw
// test values for random nodes. The default seed is 0.
func WithRandomSeed(seed int64) GraphOption {
	return func(g *Graph) { g.rng = rand.New(rand.NewSource(seed)) }
}

// NewGraph constructs an empty Graph. The name is used for diagnostics only.
func NewGraph(name string, options ...GraphOption) *Graph {
	g := &Graph{
		name: name,
		rng:  rand.New(rand.NewSource(0)),
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// Name of the graph, set at construction.
func (g *Graph) Name() string { return g.name }

// NumNodes returns the number of nodes created in the graph so far.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// TestValuesEnabled returns whether the graph carries concrete test values
// alongside its symbolic nodes.
func (g *Graph) TestValuesEnabled() bool { return g.testValuesEnabled }

// NodeById returns the node with the given id. Ids are assigned sequentially
// at node creation.
func (g *Graph) NodeById(id NodeId) *Node {
	if int(id) < 0 || int(id) >= len(g.nodes) {
		Panicf("graph %q has no node with id %d", g.name, id)
	}
	return g.nodes[id]
}

// validateGraphFromInputs panics if the inputs don't all belong to the same
// graph, and returns that graph.
func validateGraphFromInputs(inputs ...*Node) *Graph {
	if len(inputs) == 0 {
		Panicf("operation requires at least one input node")
	}
	g := inputs[0].graph
	for _, node := range inputs {
		node.AssertValid()
		if node.graph != g {
			Panicf("cannot mix nodes from different graphs (%q and %q) in one operation",
				g.name, node.graph.name)
		}
	}
	return g
}

// newNode registers a new node in the graph. If test values are enabled and
// every input carries a test value, evalFn is called to compute the new
// node's test value eagerly.
func (g *Graph) newNode(desc nodeInputs, shape shapes.Shape, inputs []*Node, evalFn func(values []*tensors.Tensor) *tensors.Tensor) *Node {
	node := &Node{
		graph:      g,
		id:         NodeId(len(g.nodes)),
		desc:       desc,
		shape:      shape,
		inputNodes: inputs,
	}
	g.nodes = append(g.nodes, node)
	if g.testValuesEnabled && evalFn != nil {
		values := make([]*tensors.Tensor, len(inputs))
		for ii, input := range inputs {
			if input.testValue == nil {
				return node
			}
			values[ii] = input.testValue
		}
		node.testValue = evalFn(values)
	}
	return node
}
