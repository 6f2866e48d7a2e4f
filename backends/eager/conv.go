// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package eager

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
)

// ConvMode selects the boundary handling of a convolution: how much of the
// partial-overlap region is included in the output.
type ConvMode int

const (
	// ConvValid outputs only the positions where the kernel fully overlaps
	// the input: length n-k+1.
	ConvValid ConvMode = iota
	// ConvSame outputs the same length as the input, centered on the full
	// convolution.
	ConvSame
	// ConvFull outputs the entire convolution, including partial overlaps:
	// length n+k-1.
	ConvFull
)

// String implements fmt.Stringer.
func (mode ConvMode) String() string {
	switch mode {
	case ConvValid:
		return "valid"
	case ConvSame:
		return "same"
	case ConvFull:
		return "full"
	default:
		return "invalid-conv-mode"
	}
}

// OutputLength returns the length of the convolution of an input of length n
// with a kernel of length k, under this mode. It panics for an unknown mode
// or if the valid region is empty.
func (mode ConvMode) OutputLength(n, k int) int {
	switch mode {
	case ConvValid:
		if n < k {
			exceptions.Panicf("convolution mode %q requires the input (length %d) to be at least as long as the kernel (length %d)",
				mode, n, k)
		}
		return n - k + 1
	case ConvSame:
		return n
	case ConvFull:
		return n + k - 1
	default:
		exceptions.Panicf("unknown convolution mode %d", int(mode))
		return 0
	}
}

// offset returns the index into the full convolution where this mode's output
// starts.
func (mode ConvMode) offset(k int) int {
	switch mode {
	case ConvValid:
		return k - 1
	case ConvSame:
		return (k - 1) / 2
	default:
		return 0
	}
}

func execConvolve1D[T float32 | float64](xFlat, kFlat []T, mode ConvMode) []T {
	n, k := len(xFlat), len(kFlat)
	outLen := mode.OutputLength(n, k)
	start := mode.offset(k)
	out := make([]T, outLen)
	for oi := range out {
		// Position in the full convolution.
		pos := oi + start
		lo := pos - k + 1
		if lo < 0 {
			lo = 0
		}
		hi := pos
		if hi > n-1 {
			hi = n - 1
		}
		var acc T
		for m := lo; m <= hi; m++ {
			acc += xFlat[m] * kFlat[pos-m]
		}
		out[oi] = acc
	}
	return out
}

// Convolve1D returns the discrete convolution of the rank-1 tensors x and
// kernel, with the given boundary mode. Only float dtypes are supported.
func Convolve1D(x, kernel *tensors.Tensor, mode ConvMode) *tensors.Tensor {
	shapes.AssertRank(x, 1)
	shapes.AssertRank(kernel, 1)
	sameDTypeBinary("Convolve1D", x, kernel)
	switch xFlat := flatOf(x).(type) {
	case []float32:
		out := execConvolve1D(xFlat, flatOf(kernel).([]float32), mode)
		return tensors.FromFlatDataAndShape(out, shapes.Make(x.DType(), len(out)))
	case []float64:
		out := execConvolve1D(xFlat, flatOf(kernel).([]float64), mode)
		return tensors.FromFlatDataAndShape(out, shapes.Make(x.DType(), len(out)))
	default:
		exceptions.Panicf("Convolve1D: unsupported dtype %s", x.DType())
		return nil
	}
}

func execConvolve2D[T float32 | float64](img []T, imgH, imgW int, flt []T, fltH, fltW int, mode ConvMode) ([]T, int, int) {
	outH := mode.OutputLength(imgH, fltH)
	outW := mode.OutputLength(imgW, fltW)
	startR := mode.offset(fltH)
	startC := mode.offset(fltW)
	out := make([]T, outH*outW)
	for or := 0; or < outH; or++ {
		for oc := 0; oc < outW; oc++ {
			posR, posC := or+startR, oc+startC
			var acc T
			for ir := 0; ir < imgH; ir++ {
				fr := posR - ir
				if fr < 0 || fr >= fltH {
					continue
				}
				for ic := 0; ic < imgW; ic++ {
					fc := posC - ic
					if fc < 0 || fc >= fltW {
						continue
					}
					acc += img[ir*imgW+ic] * flt[fr*fltW+fc]
				}
			}
			out[or*outW+oc] = acc
		}
	}
	return out, outH, outW
}

// Convolve2D returns the discrete 2-D convolution of the rank-2 tensors image
// and filter. This is the image-convolution primitive; it only supports the
// "valid" and "full" modes. Only float dtypes are supported.
func Convolve2D(image, filter *tensors.Tensor, mode ConvMode) *tensors.Tensor {
	shapes.AssertRank(image, 2)
	shapes.AssertRank(filter, 2)
	sameDTypeBinary("Convolve2D", image, filter)
	if mode == ConvSame {
		exceptions.Panicf("Convolve2D: mode %q is not supported by the image-convolution primitive", mode)
	}
	imgH, imgW := image.Shape().Dimensions[0], image.Shape().Dimensions[1]
	fltH, fltW := filter.Shape().Dimensions[0], filter.Shape().Dimensions[1]
	switch imgFlat := flatOf(image).(type) {
	case []float32:
		out, outH, outW := execConvolve2D(imgFlat, imgH, imgW, flatOf(filter).([]float32), fltH, fltW, mode)
		return tensors.FromFlatDataAndShape(out, shapes.Make(image.DType(), outH, outW))
	case []float64:
		out, outH, outW := execConvolve2D(imgFlat, imgH, imgW, flatOf(filter).([]float64), fltH, fltW, mode)
		return tensors.FromFlatDataAndShape(out, shapes.Make(image.DType(), outH, outW))
	default:
		exceptions.Panicf("Convolve2D: unsupported dtype %s", image.DType())
		return nil
	}
}
