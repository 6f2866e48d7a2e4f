// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package numshim is a dispatch layer that lets numerical code run
// unmodified against either a deferred symbolic expression graph (package
// graph) or an eager in-memory tensor engine (packages types/tensors and
// backends/eager).
//
// A Backend object selects the active backend -- there is no process-global
// state. Every operation takes Value operands, classifies each one as
// symbolic expression or concrete tensor, and forwards to the matching
// backend implementation:
//
//	b := numshim.New() // eager
//	x := numshim.AsTensor([]float32{1, 5, 3})
//	y := b.Largest(x, numshim.AsTensor([]float32{4, 2, 3}))
//
//	g := graph.NewGraph("model", graph.WithTestValues())
//	bs := numshim.New(numshim.WithSymbolic(g))
//	n := bs.Largest(graph.Const(g, []float32{1, 5, 3}), x) // a graph node
//
// Backends, graphs and shared containers are not synchronized: use each from
// a single goroutine.
package numshim

import (
	"math"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/numshim/graph"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
	"k8s.io/klog/v2"
)

// Panicf is an alias to exceptions.Panicf, the way invalid arguments are
// reported.
var Panicf = exceptions.Panicf

// Value is what every operation of the dispatch layer accepts and returns.
// Exactly three types implement it: *tensors.Tensor (a concrete eager
// tensor), *graph.Node (a symbolic expression) and *Shared (a mutable
// concrete cell, lifted to a graph variable under a symbolic backend).
//
// Any other dynamic type passed to an operation panics with an
// invalid-argument error.
type Value interface {
	Shape() shapes.Shape
}

// Backend selects between the symbolic and the eager backend for every
// operation called through it.
type Backend struct {
	// graph is non-nil iff the backend is symbolic.
	graph *graph.Graph

	// variables caches the graph node a Shared container is lifted to, so
	// repeated uses of the same container resolve to the same node.
	variables map[*Shared]*graph.Node
}

// Option configures a Backend at construction.
type Option func(*Backend)

// WithSymbolic makes the backend symbolic: operations on symbolic operands
// build nodes in g instead of computing eagerly.
func WithSymbolic(g *graph.Graph) Option {
	return func(b *Backend) { b.graph = g }
}

// New creates a Backend. The default is eager; pass WithSymbolic to bind it
// to a computation graph instead.
func New(options ...Option) *Backend {
	b := &Backend{}
	for _, option := range options {
		option(b)
	}
	if b.IsSymbolic() {
		b.variables = make(map[*Shared]*graph.Node)
		klog.V(1).Infof("numshim: new symbolic backend on graph %q", b.graph.Name())
	} else {
		klog.V(1).Info("numshim: new eager backend")
	}
	return b
}

// IsSymbolic returns whether the backend builds symbolic expressions.
func (b *Backend) IsSymbolic() bool { return b.graph != nil }

// Graph returns the computation graph of a symbolic backend, nil for an
// eager one.
func (b *Backend) Graph() *graph.Graph { return b.graph }

// Inf returns the "infinity" sentinel of the backend: a large finite number
// under the symbolic backend (graph compilers dislike true infinities),
// +Inf otherwise.
func (b *Backend) Inf() float64 {
	if b.IsSymbolic() {
		return 1e12
	}
	return math.Inf(1)
}

// IsSymbolicValue returns whether v is a symbolic expression. Under a
// symbolic backend a *Shared also counts as symbolic, since operations lift
// it to a graph variable.
func (b *Backend) IsSymbolicValue(v Value) bool {
	switch v.(type) {
	case *graph.Node:
		return true
	case *Shared:
		return b.IsSymbolic()
	case *tensors.Tensor:
		return false
	default:
		Panicf("numshim: %T is not a Value of the dispatch layer", v)
	}
	return false
}

// anySymbolic returns whether the operation over the given operands takes
// the symbolic path: the backend is symbolic and at least one operand is a
// symbolic expression.
func (b *Backend) anySymbolic(operands ...Value) bool {
	if !b.IsSymbolic() {
		return false
	}
	for _, operand := range operands {
		if b.IsSymbolicValue(operand) {
			return true
		}
	}
	return false
}

// concrete resolves v to an eager tensor. Symbolic nodes cannot be resolved
// and panic.
func concrete(v Value) *tensors.Tensor {
	switch vT := v.(type) {
	case *tensors.Tensor:
		return vT
	case *Shared:
		return vT.Value()
	case *graph.Node:
		Panicf("numshim: cannot evaluate symbolic node %s on the eager path", vT)
	default:
		Panicf("numshim: %T is not a Value of the dispatch layer", v)
	}
	return nil
}

// node lifts v to a node of the backend's graph: tensors become constants,
// Shared containers become (cached) variables.
func (b *Backend) node(v Value) *graph.Node {
	if !b.IsSymbolic() {
		Panicf("numshim: cannot lift %T to a graph node on an eager backend", v)
	}
	switch vT := v.(type) {
	case *graph.Node:
		if vT.Graph() != b.graph {
			Panicf("numshim: node %s belongs to graph %q, backend is bound to %q",
				vT, vT.Graph().Name(), b.graph.Name())
		}
		return vT
	case *tensors.Tensor:
		return graph.Constant(b.graph, vT)
	case *Shared:
		node, found := b.variables[vT]
		if !found {
			node = graph.Variable(b.graph, vT)
			b.variables[vT] = node
		}
		return node
	default:
		Panicf("numshim: %T is not a Value of the dispatch layer", v)
	}
	return nil
}
