// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"encoding/gob"
	"os"
	"reflect"

	"github.com/gomlx/numshim/types/shapes"
	"github.com/pkg/errors"
)

// GobSerialize the tensor in binary format: shape (dtype and dimensions)
// followed by the flat data. Views are serialized by value, the link to the
// base tensor is not preserved.
func (t *Tensor) GobSerialize(encoder *gob.Encoder) (err error) {
	t.AssertValid()
	enc := func(e any) {
		if err != nil {
			return
		}
		err = encoder.Encode(e)
		if err != nil {
			err = errors.Wrapf(err, "failed to serialize Tensor %s", t.shape)
		}
	}
	enc(t.shape.DType)
	enc(t.shape.Dimensions)
	enc(t.flat)
	return
}

// GobDeserialize a Tensor. Returns a new Tensor or an error.
func GobDeserialize(decoder *gob.Decoder) (*Tensor, error) {
	var shape shapes.Shape
	var err error
	dec := func(data any) {
		if err != nil {
			return
		}
		err = decoder.Decode(data)
		if err != nil {
			err = errors.Wrapf(err, "failed to deserialize Tensor")
		}
	}
	dec(&shape.DType)
	dec(&shape.Dimensions)
	if err != nil {
		return nil, err
	}
	t := FromShape(shape)
	flatPtrV := reflect.New(reflect.TypeOf(t.flat))
	dec(flatPtrV.Interface())
	if err != nil {
		return nil, err
	}
	flat := flatPtrV.Elem().Interface()
	if got := dtypeOfFlat(flat); got != shape.DType {
		return nil, errors.Errorf("deserialized flat data has dtype %s, but shape is %s", got, shape)
	}
	if reflect.ValueOf(flat).Len() != shape.Size() {
		return nil, errors.Errorf("deserialized flat data has %d elements, but shape %s requires %d",
			reflect.ValueOf(flat).Len(), shape, shape.Size())
	}
	t.flat = flat
	return t, nil
}

// Save the tensor to the given file path, in binary format.
//
// The file is overwritten if it already exists.
func (t *Tensor) Save(filePath string) (err error) {
	f, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create file %q to save Tensor", filePath)
	}
	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "failed to close file %q after saving Tensor", filePath)
		}
	}()
	enc := gob.NewEncoder(f)
	return t.GobSerialize(enc)
}

// Load a tensor from the given file path, saved with Tensor.Save.
func Load(filePath string) (*Tensor, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file %q to load Tensor", filePath)
	}
	defer func() { _ = f.Close() }()
	dec := gob.NewDecoder(f)
	return GobDeserialize(dec)
}
