// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package numshim

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/numshim/backends/eager"
	"github.com/gomlx/numshim/graph"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
)

// ConvMode selects the boundary handling of a convolution.
type ConvMode = eager.ConvMode

const (
	// ConvValid keeps only fully-overlapping positions: output length n-k+1.
	ConvValid = eager.ConvValid
	// ConvSame keeps the input length. Eager backend only.
	ConvSame = eager.ConvSame
	// ConvFull keeps every overlapping position: output length n+k-1.
	ConvFull = eager.ConvFull
)

// Conv1D convolves a history of channel values with a per-channel-pair bank
// of 1-dimensional kernels.
//
// history must have shape (T, CFrom) and kernel (K, CTo, CFrom); the result
// has shape (TOut, CTo, CFrom) with result[t, to, from] the 1-dimensional
// convolution of history[:, from] with kernel[:, to, from].
//
// The two backends do not share an implementation: the eager path runs a
// direct 1-dimensional convolution per channel pair, while the symbolic
// path (including test values) goes through a 2-dimensional image
// convolution primitive with single-column operands. The results agree to
// floating-point accuracy but are not guaranteed bit-identical, and
// ConvSame is only available eagerly.
func (b *Backend) Conv1D(history, kernel Value, mode ConvMode) Value {
	b.Assert(Rank(history) == 2)
	if b.anySymbolic(history, kernel) {
		return graph.Conv1D(b.node(history), b.node(kernel), mode)
	}
	historyT, kernelT := concrete(history), concrete(kernel)
	if kernelT.Rank() != 3 {
		Panicf("Conv1D requires a rank-3 (kernel, channels to, channels from) kernel, got %s",
			kernelT.Shape())
	}
	if historyT.DType() != dtypes.Float32 && historyT.DType() != dtypes.Float64 {
		Panicf("Conv1D requires Float32 or Float64 operands, got %s", historyT.Shape())
	}
	if kernelT.DType() != historyT.DType() {
		Panicf("Conv1D requires operands of the same dtype, got %s and %s",
			historyT.Shape(), kernelT.Shape())
	}
	numSteps, channelsFrom := historyT.Shape().Dimensions[0], historyT.Shape().Dimensions[1]
	kernelLen, channelsTo := kernelT.Shape().Dimensions[0], kernelT.Shape().Dimensions[1]
	if kernelT.Shape().Dimensions[2] != channelsFrom {
		Panicf("Conv1D: kernel source channels %d do not match history channels %d",
			kernelT.Shape().Dimensions[2], channelsFrom)
	}
	outSteps := mode.OutputLength(numSteps, kernelLen)
	if outSteps <= 0 {
		Panicf("Conv1D: kernel of length %d leaves no output for %d time steps in mode %s",
			kernelLen, numSteps, mode)
	}
	outShape := shapes.Make(historyT.DType(), outSteps, channelsTo, channelsFrom)
	if historyT.DType() == dtypes.Float32 {
		return eagerConv1D[float32](historyT, kernelT, mode, outShape)
	}
	return eagerConv1D[float64](historyT, kernelT, mode, outShape)
}

// eagerConv1D runs one direct 1-dimensional convolution per (to, from)
// channel pair and stacks the results with time as the outer axis.
func eagerConv1D[T float32 | float64](history, kernel *tensors.Tensor, mode ConvMode, outShape shapes.Shape) *tensors.Tensor {
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
		taps := make([]T, kernelLen)
		for to := 0; to < channelsTo; to++ {
			for from := 0; from < channelsFrom; from++ {
				for t := 0; t < numSteps; t++ {
					column[t] = historyFlat[t*channelsFrom+from]
				}
				for k := 0; k < kernelLen; k++ {
					taps[k] = kernelFlat[(k*channelsTo+to)*channelsFrom+from]
				}
				result := eager.Convolve1D(
					tensors.FromFlatDataAndDimensions(column, numSteps),
					tensors.FromFlatDataAndDimensions(taps, kernelLen), mode)
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
