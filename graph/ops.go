// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/numshim/backends/eager"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
)

type nodeInputsConstant struct {
	value *tensors.Tensor
}

func (ni *nodeInputsConstant) Type() NodeType { return NodeTypeConstant }
func (ni *nodeInputsConstant) String() string {
	return fmt.Sprintf("Constant(%s)", ni.value.Shape())
}

// Constant creates a node for the given concrete tensor. Constants always
// carry their value as a test value, whether or not the graph has test
// values enabled.
func Constant(g *Graph, value *tensors.Tensor) *Node {
	value.AssertValid()
	node := g.newNode(&nodeInputsConstant{value: value}, value.Shape(), nil, nil)
	node.testValue = value
	return node
}

// Const is a shortcut for Constant over tensors.FromValue: it accepts a Go
// scalar or a (regular) multidimensional slice of a supported dtype.
func Const(g *Graph, value any) *Node {
	return Constant(g, tensors.FromValue(value))
}

type nodeInputsParameter struct {
	name  string
	shape shapes.Shape
}

func (ni *nodeInputsParameter) Type() NodeType { return NodeTypeParameter }
func (ni *nodeInputsParameter) String() string {
	return fmt.Sprintf("Parameter(%q, %s)", ni.name, ni.shape)
}

// Parameter creates an input placeholder node with the given name and shape.
// It carries no test value until one is attached with Node.SetTestValue.
func Parameter(g *Graph, name string, shape shapes.Shape) *Node {
	if !shape.Ok() {
		Panicf("Parameter(%q): invalid shape", name)
	}
	return g.newNode(&nodeInputsParameter{name: name, shape: shape}, shape, nil, nil)
}

// ParameterName returns the name a Parameter node was created with. It panics
// for any other node type.
func (n *Node) ParameterName() string {
	n.AssertValid()
	ni, ok := n.desc.(*nodeInputsParameter)
	if !ok {
		Panicf("ParameterName called on non-parameter node %s", n)
	}
	return ni.name
}

// VariableSource is a container of a mutable concrete value that a graph
// Variable node reads from. It is implemented by the shared value handles of
// the dispatch layer.
type VariableSource interface {
	Name() string
	Value() *tensors.Tensor
}

type nodeInputsVariable struct {
	source VariableSource
}

func (ni *nodeInputsVariable) Type() NodeType { return NodeTypeVariable }
func (ni *nodeInputsVariable) String() string {
	return fmt.Sprintf("Variable(%q)", ni.source.Name())
}

// Variable creates a node that reads from a mutable concrete value container.
// The value held by the source at node creation is used as the node's test
// value.
func Variable(g *Graph, source VariableSource) *Node {
	value := source.Value()
	value.AssertValid()
	node := g.newNode(&nodeInputsVariable{source: source}, value.Shape(), nil, nil)
	node.testValue = value
	return node
}

// VariableSource returns the source container a Variable node reads from. It
// panics for any other node type.
func (n *Node) VariableSource() VariableSource {
	n.AssertValid()
	ni, ok := n.desc.(*nodeInputsVariable)
	if !ok {
		Panicf("VariableSource called on non-variable node %s", n)
	}
	return ni.source
}

type nodeInputsElementwise struct {
	nodeType NodeType
}

func (ni *nodeInputsElementwise) Type() NodeType { return ni.nodeType }
func (ni *nodeInputsElementwise) String() string { return ni.nodeType.String() }

// variadicBroadcastOp builds an n-ary elementwise node: all operands must
// share a dtype, and the output shape is the broadcast of all their shapes.
func variadicBroadcastOp(nodeType NodeType, evalPair func(lhs, rhs *tensors.Tensor) *tensors.Tensor, first *Node, rest ...*Node) *Node {
	operands := append([]*Node{first}, rest...)
	g := validateGraphFromInputs(operands...)
	if len(operands) < 2 {
		Panicf("%s requires at least 2 operands, got %d", nodeType, len(operands))
	}
	shape := operands[0].shape
	for _, operand := range operands[1:] {
		shape = shapes.BroadcastShapes(shape, operand.shape)
	}
	return g.newNode(&nodeInputsElementwise{nodeType: nodeType}, shape, operands,
		func(values []*tensors.Tensor) *tensors.Tensor {
			result := values[0]
			for _, value := range values[1:] {
				result = evalPair(result, value)
			}
			return result
		})
}

// Maximum returns the elementwise maximum of its operands, broadcasting their
// shapes together. It accepts 2 or more operands of the same dtype.
func Maximum(first *Node, rest ...*Node) *Node {
	return variadicBroadcastOp(NodeTypeMaximum, eager.Maximum, first, rest...)
}

// Minimum returns the elementwise minimum of its operands, broadcasting their
// shapes together. It accepts 2 or more operands of the same dtype.
func Minimum(first *Node, rest ...*Node) *Node {
	return variadicBroadcastOp(NodeTypeMinimum, eager.Minimum, first, rest...)
}

// compareOp builds a binary elementwise comparison node: the output has the
// broadcast shape of the operands and dtype Bool.
func compareOp(nodeType NodeType, eval func(lhs, rhs *tensors.Tensor) *tensors.Tensor, lhs, rhs *Node) *Node {
	g := validateGraphFromInputs(lhs, rhs)
	shape := shapes.BroadcastShapes(lhs.shape, rhs.shape)
	shape.DType = dtypes.Bool
	return g.newNode(&nodeInputsElementwise{nodeType: nodeType}, shape, []*Node{lhs, rhs},
		func(values []*tensors.Tensor) *tensors.Tensor {
			return eval(values[0], values[1])
		})
}

// LessThan returns the elementwise lhs < rhs, with dtype Bool.
func LessThan(lhs, rhs *Node) *Node {
	return compareOp(NodeTypeLessThan, eager.LessThan, lhs, rhs)
}

// LessOrEqual returns the elementwise lhs <= rhs, with dtype Bool.
func LessOrEqual(lhs, rhs *Node) *Node {
	return compareOp(NodeTypeLessOrEqual, eager.LessOrEqual, lhs, rhs)
}

// GreaterThan returns the elementwise lhs > rhs, with dtype Bool.
func GreaterThan(lhs, rhs *Node) *Node {
	return compareOp(NodeTypeGreaterThan, eager.GreaterThan, lhs, rhs)
}

// GreaterOrEqual returns the elementwise lhs >= rhs, with dtype Bool.
func GreaterOrEqual(lhs, rhs *Node) *Node {
	return compareOp(NodeTypeGreaterOrEqual, eager.GreaterOrEqual, lhs, rhs)
}

// Equal returns the elementwise lhs == rhs, with dtype Bool.
func Equal(lhs, rhs *Node) *Node {
	return compareOp(NodeTypeEqual, eager.Equal, lhs, rhs)
}

// Where selects elementwise between onTrue and onFalse according to
// condition, which must have dtype Bool. The three shapes are broadcast
// together.
func Where(condition, onTrue, onFalse *Node) *Node {
	g := validateGraphFromInputs(condition, onTrue, onFalse)
	if condition.DType() != dtypes.Bool {
		Panicf("Where requires a Bool condition, got %s", condition.shape)
	}
	shape := shapes.BroadcastShapes(onTrue.shape, onFalse.shape)
	shape.Dimensions = shapes.BroadcastDims(shape.Dimensions, condition.shape.Dimensions)
	return g.newNode(&nodeInputsElementwise{nodeType: NodeTypeWhere}, shape,
		[]*Node{condition, onTrue, onFalse},
		func(values []*tensors.Tensor) *tensors.Tensor {
			return eager.Where(values[0], values[1], values[2])
		})
}

type nodeInputsIfElse struct{}

func (ni *nodeInputsIfElse) Type() NodeType { return NodeTypeIfElse }
func (ni *nodeInputsIfElse) String() string { return "IfElse" }

// IfElse selects one of two branches according to a scalar condition. Unlike
// Where it is not elementwise: the whole of onTrue or the whole of onFalse is
// the result, and when test values are enabled only the taken branch's test
// value is required.
//
// Both branches must have the same shape.
func IfElse(condition, onTrue, onFalse *Node) *Node {
	g := validateGraphFromInputs(condition, onTrue, onFalse)
	if !condition.IsScalar() {
		Panicf("IfElse requires a scalar condition, got %s", condition.shape)
	}
	if !onTrue.shape.Equal(onFalse.shape) {
		Panicf("IfElse branches must have the same shape, got %s and %s",
			onTrue.shape, onFalse.shape)
	}
	node := g.newNode(&nodeInputsIfElse{}, onTrue.shape,
		[]*Node{condition, onTrue, onFalse}, nil)
	if g.testValuesEnabled && condition.testValue != nil {
		branch := onFalse
		if eager.Truthy(condition.testValue) {
			branch = onTrue
		}
		node.testValue = branch.testValue
	}
	return node
}

type nodeInputsSlice struct {
	from, to int
}

func (ni *nodeInputsSlice) Type() NodeType { return NodeTypeSlice }
func (ni *nodeInputsSlice) String() string { return fmt.Sprintf("Slice[%d:%d]", ni.from, ni.to) }

// Slice returns the rows [from, to) of x along axis 0. On the test value
// path the result is a view sharing x's test value storage.
//
// SetSubtensor and IncSubtensor only accept Slice nodes as their target.
func Slice(x *Node, from, to int) *Node {
	g := validateGraphFromInputs(x)
	if x.Rank() == 0 {
		Panicf("Slice: cannot slice a scalar node %s", x)
	}
	dim0 := x.shape.Dimensions[0]
	if from < 0 || to > dim0 || from >= to {
		Panicf("Slice(%d, %d) out-of-range for node %s", from, to, x)
	}
	newDims := append([]int{to - from}, x.shape.Dimensions[1:]...)
	shape := shapes.Make(x.DType(), newDims...)
	return g.newNode(&nodeInputsSlice{from: from, to: to}, shape, []*Node{x},
		func(values []*tensors.Tensor) *tensors.Tensor {
			return values[0].Slice(from, to)
		})
}

// subtensorUpdateOp builds the common part of SetSubtensor and IncSubtensor:
// x must be a Slice node, and the result is the sliced node's base with the
// rows covered by the slice replaced (or incremented). The update is
// non-destructive: on the test value path the base value is cloned first.
func subtensorUpdateOp(nodeType NodeType, assignFn func(dst, src *tensors.Tensor), x, values *Node) *Node {
	g := validateGraphFromInputs(x, values)
	sliceInputs, ok := x.desc.(*nodeInputsSlice)
	if !ok {
		Panicf("%s requires its target to be a Slice node, got %s", nodeType, x)
	}
	if values.DType() != x.DType() {
		Panicf("%s: values dtype %s does not match target dtype %s",
			nodeType, values.DType(), x.DType())
	}
	// Values must broadcast into the slice exactly.
	targetDims := shapes.BroadcastDims(x.shape.Dimensions, values.shape.Dimensions)
	if !slices.Equal(targetDims, x.shape.Dimensions) {
		Panicf("%s: values shape %s does not fit in target %s", nodeType, values.shape, x.shape)
	}
	base := x.inputNodes[0]
	from, to := sliceInputs.from, sliceInputs.to
	return g.newNode(&nodeInputsElementwise{nodeType: nodeType}, base.shape,
		[]*Node{base, values},
		func(inputs []*tensors.Tensor) *tensors.Tensor {
			result := inputs[0].Clone()
			assignFn(result.Slice(from, to), inputs[1])
			return result
		})
}

// SetSubtensor returns x's base tensor with the rows selected by x (a Slice
// node) replaced by values.
func SetSubtensor(x, values *Node) *Node {
	return subtensorUpdateOp(NodeTypeSetSubtensor, eager.AssignTo, x, values)
}

// IncSubtensor returns x's base tensor with values added to the rows selected
// by x (a Slice node).
func IncSubtensor(x, values *Node) *Node {
	return subtensorUpdateOp(NodeTypeIncSubtensor, eager.AddTo, x, values)
}

type nodeInputsReshape struct {
	dimensions []int
}

func (ni *nodeInputsReshape) Type() NodeType { return NodeTypeReshape }
func (ni *nodeInputsReshape) String() string { return fmt.Sprintf("Reshape%v", ni.dimensions) }

// Reshape returns x with the given dimensions, which must cover the same
// total size. At most one dimension can be -1, in which case it is inferred.
func Reshape(x *Node, dimensions ...int) *Node {
	g := validateGraphFromInputs(x)
	resolved := eager.ResolveReshapeDims(x.shape.Size(), dimensions)
	shape := shapes.Make(x.DType(), resolved...)
	return g.newNode(&nodeInputsReshape{dimensions: resolved}, shape, []*Node{x},
		func(values []*tensors.Tensor) *tensors.Tensor {
			return eager.Reshape(values[0], resolved...)
		})
}

type nodeInputsMoveAxis struct {
	source, destination int
}

func (ni *nodeInputsMoveAxis) Type() NodeType { return NodeTypeMoveAxis }
func (ni *nodeInputsMoveAxis) String() string {
	return fmt.Sprintf("MoveAxis(%d, %d)", ni.source, ni.destination)
}

// MoveAxis moves the axis source to the position destination, preserving the
// order of the remaining axes. Negative axes count from the end.
func MoveAxis(x *Node, source, destination int) *Node {
	g := validateGraphFromInputs(x)
	rank := x.Rank()
	adjustedSource := shapes.AdjustAxisToRank(source, rank)
	adjustedDestination := shapes.AdjustAxisToRank(destination, rank)
	newDims := slices.Delete(slices.Clone(x.shape.Dimensions), adjustedSource, adjustedSource+1)
	newDims = slices.Insert(newDims, adjustedDestination, x.shape.Dimensions[adjustedSource])
	shape := shapes.Make(x.DType(), newDims...)
	return g.newNode(&nodeInputsMoveAxis{source: source, destination: destination}, shape,
		[]*Node{x},
		func(values []*tensors.Tensor) *tensors.Tensor {
			return eager.MoveAxis(values[0], source, destination)
		})
}

type nodeInputsConvertDType struct {
	dtype dtypes.DType
}

func (ni *nodeInputsConvertDType) Type() NodeType { return NodeTypeConvertDType }
func (ni *nodeInputsConvertDType) String() string {
	return fmt.Sprintf("ConvertDType(%s)", ni.dtype)
}

// ConvertDType converts x to the given dtype.
func ConvertDType(x *Node, dtype dtypes.DType) *Node {
	g := validateGraphFromInputs(x)
	if dtype == dtypes.InvalidDType {
		Panicf("ConvertDType to an invalid dtype")
	}
	shape := shapes.Make(dtype, x.shape.Dimensions...)
	return g.newNode(&nodeInputsConvertDType{dtype: dtype}, shape, []*Node{x},
		func(values []*tensors.Tensor) *tensors.Tensor {
			return eager.ConvertDType(values[0], dtype)
		})
}

// Round returns x with float elements rounded to the nearest integer, half
// away from zero. Integer dtypes are returned unchanged.
func Round(x *Node) *Node {
	g := validateGraphFromInputs(x)
	return g.newNode(&nodeInputsElementwise{nodeType: NodeTypeRound}, x.shape, []*Node{x},
		func(values []*tensors.Tensor) *tensors.Tensor {
			return eager.Round(values[0])
		})
}

// Abs returns the elementwise absolute value of x.
func Abs(x *Node) *Node {
	g := validateGraphFromInputs(x)
	return g.newNode(&nodeInputsElementwise{nodeType: NodeTypeAbs}, x.shape, []*Node{x},
		func(values []*tensors.Tensor) *tensors.Tensor {
			return eager.Abs(values[0])
		})
}
