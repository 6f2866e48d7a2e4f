// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
	"github.com/pkg/errors"
)

// NodeId is a sequential unique id of a node within its graph.
type NodeId int

// NodeType enumerates the operations a Node can represent.
type NodeType int

const (
	NodeTypeInvalid NodeType = iota
	NodeTypeConstant
	NodeTypeParameter
	NodeTypeVariable
	NodeTypeMaximum
	NodeTypeMinimum
	NodeTypeLessThan
	NodeTypeLessOrEqual
	NodeTypeGreaterThan
	NodeTypeGreaterOrEqual
	NodeTypeEqual
	NodeTypeWhere
	NodeTypeIfElse
	NodeTypeSlice
	NodeTypeSetSubtensor
	NodeTypeIncSubtensor
	NodeTypeReshape
	NodeTypeMoveAxis
	NodeTypeConvertDType
	NodeTypeRound
	NodeTypeAbs
	NodeTypeRandomNormal
	NodeTypeConv1D
)

// String implements fmt.Stringer.
func (t NodeType) String() string {
	switch t {
	case NodeTypeConstant:
		return "Constant"
	case NodeTypeParameter:
		return "Parameter"
	case NodeTypeVariable:
		return "Variable"
	case NodeTypeMaximum:
		return "Maximum"
	case NodeTypeMinimum:
		return "Minimum"
	case NodeTypeLessThan:
		return "LessThan"
	case NodeTypeLessOrEqual:
		return "LessOrEqual"
	case NodeTypeGreaterThan:
		return "GreaterThan"
	case NodeTypeGreaterOrEqual:
		return "GreaterOrEqual"
	case NodeTypeEqual:
		return "Equal"
	case NodeTypeWhere:
		return "Where"
	case NodeTypeIfElse:
		return "IfElse"
	case NodeTypeSlice:
		return "Slice"
	case NodeTypeSetSubtensor:
		return "SetSubtensor"
	case NodeTypeIncSubtensor:
		return "IncSubtensor"
	case NodeTypeReshape:
		return "Reshape"
	case NodeTypeMoveAxis:
		return "MoveAxis"
	case NodeTypeConvertDType:
		return "ConvertDType"
	case NodeTypeRound:
		return "Round"
	case NodeTypeAbs:
		return "Abs"
	case NodeTypeRandomNormal:
		return "RandomNormal"
	case NodeTypeConv1D:
		return "Conv1D"
	default:
		return "Invalid"
	}
}

// nodeInputs describes the operation of a node and its static attributes --
// everything except the input nodes themselves.
type nodeInputs interface {
	Type() NodeType
	String() string
}

// Node represents a deferred operation in a computation Graph. Its shape is
// inferred at construction; its value is only materialized when the graph is
// evaluated -- or immediately as a "test value" if the graph carries them.
type Node struct {
	graph      *Graph
	id         NodeId
	desc       nodeInputs
	shape      shapes.Shape
	inputNodes []*Node

	// testValue is the concrete value carried alongside the node, or nil.
	testValue *tensors.Tensor
}

// Graph the node belongs to.
func (n *Node) Graph() *Graph { return n.graph }

// Id is the unique id of the node within its graph.
func (n *Node) Id() NodeId { return n.id }

// Type of the operation the node represents.
func (n *Node) Type() NodeType { return n.desc.Type() }

// Shape of the node's output.
func (n *Node) Shape() shapes.Shape { return n.shape }

// DType returns the DType of the node's shape.
func (n *Node) DType() dtypes.DType { return n.shape.DType }

// Rank returns the rank of the node's shape.
func (n *Node) Rank() int { return n.shape.Rank() }

// IsScalar returns whether the node's shape is a scalar.
func (n *Node) IsScalar() bool { return n.shape.IsScalar() }

// Inputs are the nodes the operation takes as inputs.
func (n *Node) Inputs() []*Node { return n.inputNodes }

// String implements fmt.Stringer.
func (n *Node) String() string {
	return fmt.Sprintf("#%d %s -> %s", n.id, n.desc, n.shape)
}

// AssertValid panics if the node is nil or does not belong to a graph.
func (n *Node) AssertValid() {
	if n == nil {
		panic(errors.New("graph.Node is nil"))
	}
	if n.graph == nil {
		panic(errors.New("graph.Node does not belong to a graph"))
	}
}

// HasTestValue returns whether the node carries a concrete test value.
func (n *Node) HasTestValue() bool { return n.testValue != nil }

// TestValue returns the concrete test value carried by the node. It returns
// a descriptive error, naming the node, if no test value is set -- either
// because the graph doesn't carry test values, or because some input of the
// node has none.
func (n *Node) TestValue() (*tensors.Tensor, error) {
	n.AssertValid()
	if n.testValue == nil {
		return nil, errors.Errorf(
			"attempting to use a value that requires a test value for the node %s to be set, and this value is not set",
			n)
	}
	return n.testValue, nil
}

// SetTestValue attaches a concrete test value to the node, typically a
// Parameter. The value's shape must match the node's shape.
//
// It returns the node to allow chaining.
func (n *Node) SetTestValue(value *tensors.Tensor) *Node {
	n.AssertValid()
	value.AssertValid()
	if !value.Shape().Equal(n.shape) {
		Panicf("SetTestValue: value shape %s does not match node %s", value.Shape(), n)
	}
	n.testValue = value
	return n
}
