// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xslices provide missing functionality to the slices package.
package xslices

import (
	"golang.org/x/exp/constraints"
)

// At returns the element at the given index. If the index is negative, it
// takes from the end of the slice, facilitating getting elements at the end.
func At[T any](slice []T, index int) T {
	if index < 0 {
		index = len(slice) + index
	}
	return slice[index]
}

// Last returns the last element of a slice.
func Last[T any](slice []T) T {
	return slice[len(slice)-1]
}

// FillSlice fills a slice with the given value.
func FillSlice[T any](slice []T, value T) {
	for ii := range slice {
		slice[ii] = value
	}
}

// SliceWithValue creates a slice of the given size filled with the given value.
func SliceWithValue[T any](size int, value T) []T {
	s := make([]T, size)
	FillSlice(s, value)
	return s
}

// Iota returns a slice of incremental int values, starting with start and of
// the given length.
func Iota[T interface {
	constraints.Integer | constraints.Float
}](start T, length int) (slice []T) {
	slice = make([]T, length)
	for ii := range slice {
		slice[ii] = start + T(ii)
	}
	return
}

// Map executes the given function sequentially for every element on in, and
// returns a mapped slice.
func Map[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}

// Max scans the slice and returns the maximum value.
func Max[T constraints.Ordered](slice []T) (maxValue T) {
	if len(slice) == 0 {
		return
	}
	maxValue = slice[0]
	for _, v := range slice[1:] {
		if v > maxValue {
			maxValue = v
		}
	}
	return
}

// Min scans the slice and returns the minimum value.
func Min[T constraints.Ordered](slice []T) (minValue T) {
	if len(slice) == 0 {
		return
	}
	minValue = slice[0]
	for _, v := range slice[1:] {
		if v < minValue {
			minValue = v
		}
	}
	return
}
