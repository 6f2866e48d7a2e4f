// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// This file holds runtime shape assertions: there is no compile-time checking
// of shapes, so validation happens when building a computation. These helpers
// also serve as code documentation of the expected shapes.

// CheckDims checks that the shape has the given dimensions and rank.
// A value of -1 in dimensions means it can take any value and is not checked.
//
// It returns an error if the rank is different or any of the dimensions don't
// match.
func (s Shape) CheckDims(dimensions ...int) error {
	if s.Rank() != len(dimensions) {
		return errors.Errorf("invalid rank %d (wanted rank %d) for shape %s", s.Rank(), len(dimensions), s)
	}
	for axis, wanted := range dimensions {
		if wanted != -1 && wanted != s.Dimensions[axis] {
			return errors.Errorf("invalid dimension %d for axis %d (wanted %d) for shape %s",
				s.Dimensions[axis], axis, wanted, s)
		}
	}
	return nil
}

// AssertDims panics if the shape doesn't have the given dimensions and rank.
// A value of -1 in dimensions means it can take any value and is not checked.
func (s Shape) AssertDims(dimensions ...int) {
	if err := s.CheckDims(dimensions...); err != nil {
		panic(err)
	}
}

// AssertRank panics if the shape doesn't have the given rank.
func (s Shape) AssertRank(rank int) {
	if s.Rank() != rank {
		exceptions.Panicf("invalid rank %d (wanted rank %d) for shape %s", s.Rank(), rank, s)
	}
}

// AssertScalar panics if the shape is not a scalar.
func (s Shape) AssertScalar() {
	s.AssertDims()
}

// AssertDims checks that the shape of x has the given dimensions and rank.
// A value of -1 in dimensions means it can take any value and is not checked.
// It panics if it doesn't match.
func AssertDims(x HasShape, dimensions ...int) {
	x.Shape().AssertDims(dimensions...)
}

// AssertRank checks that the shape of x has the given rank.
// It panics if it doesn't match.
func AssertRank(x HasShape, rank int) {
	x.Shape().AssertRank(rank)
}

// AssertScalar checks that x is a scalar. It panics if it isn't.
func AssertScalar(x HasShape) {
	x.Shape().AssertScalar()
}
