// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/numshim/backends/eager"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
)

type nodeInputsConv1D struct {
	mode eager.ConvMode
}

func (ni *nodeInputsConv1D) Type() NodeType { return NodeTypeConv1D }
func (ni *nodeInputsConv1D) String() string { return fmt.Sprintf("Conv1D(%s)", ni.mode) }

// Conv1D convolves a history of channel values with a per-channel-pair bank
// of 1-dimensional kernels.
//
// history must have shape (T, CFrom): T time steps of CFrom source channels.
// kernel must have shape (K, CTo, CFrom): for every (to, from) channel pair a
// 1-dimensional kernel of length K. The result has shape (TOut, CTo, CFrom)
// with result[t, to, from] the 1-dimensional convolution of history[:, from]
// with kernel[:, to, from], and TOut determined by mode.
//
// The symbolic test value path goes through the 2-dimensional image
// convolution primitive, treating each history column as a (T, 1) image, so
// ConvSame is not supported here.
func Conv1D(history, kernel *Node, mode eager.ConvMode) *Node {
	g := validateGraphFromInputs(history, kernel)
	if history.Rank() != 2 {
		Panicf("Conv1D requires a rank-2 (time, channels from) history, got %s", history.shape)
	}
	if kernel.Rank() != 3 {
		Panicf("Conv1D requires a rank-3 (kernel, channels to, channels from) kernel, got %s", kernel.shape)
	}
	if history.DType() != dtypes.Float32 && history.DType() != dtypes.Float64 {
		Panicf("Conv1D requires Float32 or Float64 operands, got %s", history.shape)
	}
	if kernel.DType() != history.DType() {
		Panicf("Conv1D requires operands of the same dtype, got %s and %s",
			history.shape, kernel.shape)
	}
	numSteps, channelsFrom := history.shape.Dimensions[0], history.shape.Dimensions[1]
	kernelLen, channelsTo := kernel.shape.Dimensions[0], kernel.shape.Dimensions[1]
	if kernel.shape.Dimensions[2] != channelsFrom {
		Panicf("Conv1D: kernel source channels %d do not match history channels %d",
			kernel.shape.Dimensions[2], channelsFrom)
	}
	if mode == eager.ConvSame {
		Panicf("Conv1D: mode %s is not supported by the image-convolution primitive", mode)
	}
	outSteps := mode.OutputLength(numSteps, kernelLen)
	if outSteps <= 0 {
		Panicf("Conv1D: kernel of length %d leaves no output for %d time steps in mode %s",
			kernelLen, numSteps, mode)
	}
	shape := shapes.Make(history.DType(), outSteps, channelsTo, channelsFrom)
	return g.newNode(&nodeInputsConv1D{mode: mode}, shape, []*Node{history, kernel},
		func(values []*tensors.Tensor) *tensors.Tensor {
			if values[0].DType() == dtypes.Float32 {
				return evalConv1D[float32](values[0], values[1], mode, shape)
			}
			return evalConv1D[float64](values[0], values[1], mode, shape)
		})
}

// evalConv1D computes Conv1D one channel pair at a time: each history column
// becomes a (T, 1) image and each kernel[:, to, from] a (K, 1) filter for the
// 2-dimensional convolution primitive.
func evalConv1D[T float32 | float64](history, kernel *tensors.Tensor, mode eager.ConvMode, outShape shapes.Shape) *tensors.Tensor {
	var historyFlat, kernelFlat []T
	history.ConstFlatData(func(flat any) { historyFlat = flat.([]T) })
	kernel.ConstFlatData(func(flat any) { kernelFlat = flat.([]T) })
	numSteps, channelsFrom := history.Shape().Dimensions[0], history.Shape().Dimensions[1]
	kernelLen, channelsTo := kernel.Shape().Dimensions[0], kernel.Shape().Dimensions[1]
	outSteps := outShape.Dimensions[0]

	out := tensors.FromShape(outShape)
	out.MutableFlatData(func(flat any) {
		outFlat := flat.([]T)
		column := make([]T, numSteps)
		filter := make([]T, kernelLen)
		for to := 0; to < channelsTo; to++ {
			for from := 0; from < channelsFrom; from++ {
				for t := 0; t < numSteps; t++ {
					column[t] = historyFlat[t*channelsFrom+from]
				}
				for k := 0; k < kernelLen; k++ {
					filter[k] = kernelFlat[(k*channelsTo+to)*channelsFrom+from]
				}
				image := tensors.FromFlatDataAndDimensions(column, numSteps, 1)
				taps := tensors.FromFlatDataAndDimensions(filter, kernelLen, 1)
				result := eager.Convolve2D(image, taps, mode)
				result.ConstFlatData(func(flat any) {
					resultFlat := flat.([]T)
					for t := 0; t < outSteps; t++ {
						outFlat[(t*channelsTo+to)*channelsFrom+from] = resultFlat[t]
					}
				})
			}
		}
	})
	return out
}
