// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package numshim

import (
	"fmt"
	"reflect"

	"github.com/gomlx/numshim/types/shapes"
	"github.com/gomlx/numshim/types/tensors"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Shared is a mutable named container of a concrete tensor: a reference
// handle, equal only to itself. Two Shared containers holding identical data
// are distinct, so maps keyed by *Shared behave reference-keyed.
//
// Under a symbolic backend, operations lift a *Shared operand to a graph
// variable node whose test value tracks the cell contents.
//
// Shared is not synchronized.
type Shared struct {
	name string

	// cell is the current contents. SetValue copies into it in place, so the
	// tensor identity is stable for the lifetime of the container.
	cell *tensors.Tensor
}

// NewShared creates a mutable container initialized with value, which may be
// a *tensors.Tensor, a Go scalar or a (regular) multidimensional slice of a
// supported dtype. If name is empty a unique one is generated.
func (b *Backend) NewShared(value any, name string) *Shared {
	if name == "" {
		name = "shared_" + uuid.NewString()
	}
	var cell *tensors.Tensor
	if t, ok := value.(*tensors.Tensor); ok {
		// Don't alias the caller's tensor.
		cell = t.Clone()
	} else {
		cell = tensors.FromValue(value)
	}
	return &Shared{name: name, cell: cell}
}

// Name of the container, for diagnostics.
func (s *Shared) Name() string { return s.name }

// Value returns the current contents: the live cell, not a copy. Mutations
// through it are visible to every holder of the container.
func (s *Shared) Value() *tensors.Tensor { return s.cell }

// Shape of the contents. The shape is fixed at construction.
func (s *Shared) Shape() shapes.Shape { return s.cell.Shape() }

// SetValue overwrites the contents in place. The new value must have the
// same shape (dtype included) as the current contents, otherwise an error is
// returned and the contents are unchanged.
func (s *Shared) SetValue(value any) error {
	newT, ok := value.(*tensors.Tensor)
	if !ok {
		newT = tensors.FromValue(value)
	}
	if !newT.Shape().Equal(s.cell.Shape()) {
		return errors.Errorf("Shared %q: cannot set value of shape %s, container holds %s",
			s.name, newT.Shape(), s.cell.Shape())
	}
	s.cell.MutableFlatData(func(dstFlat any) {
		newT.ConstFlatData(func(srcFlat any) {
			reflect.Copy(reflect.ValueOf(dstFlat), reflect.ValueOf(srcFlat))
		})
	})
	return nil
}

// String implements fmt.Stringer.
func (s *Shared) String() string {
	return fmt.Sprintf("Shared(%q, %s)", s.name, s.cell.Shape())
}
