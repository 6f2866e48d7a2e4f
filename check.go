// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package numshim

import (
	"github.com/gomlx/numshim/backends/eager"
	"github.com/gomlx/numshim/graph"
	"github.com/gomlx/numshim/types/tensors"
)

// CheckStatus is the outcome of a backend-aware assertion.
type CheckStatus int

const (
	// CheckPassed means the statement was evaluated and every element was
	// true (non-zero).
	CheckPassed CheckStatus = iota
	// CheckFailed means the statement was evaluated and some element was
	// false (zero).
	CheckFailed
	// CheckUnverified means the statement is a symbolic expression without a
	// test value: its truth cannot be evaluated at graph-building time.
	CheckUnverified
)

// String implements fmt.Stringer.
func (status CheckStatus) String() string {
	switch status {
	case CheckPassed:
		return "CheckPassed"
	case CheckFailed:
		return "CheckFailed"
	case CheckUnverified:
		return "CheckUnverified"
	default:
		return "CheckStatus(invalid)"
	}
}

// Check evaluates the truth of stmt where possible. stmt may be a Go bool, a
// concrete tensor, a Shared container or a symbolic expression; non-scalar
// statements are true iff every element is true (non-zero).
//
// A symbolic expression without a test value cannot be evaluated, and the
// result is an explicit CheckUnverified rather than a silent pass: callers
// asserting correctness must decide what unverified means to them (Assert
// treats it as a pass and logs nothing).
func (b *Backend) Check(stmt any) CheckStatus {
	var value *tensors.Tensor
	switch stmtT := stmt.(type) {
	case bool:
		if stmtT {
			return CheckPassed
		}
		return CheckFailed
	case *graph.Node:
		if !stmtT.HasTestValue() {
			return CheckUnverified
		}
		value, _ = stmtT.TestValue()
	case Value:
		value = concrete(stmtT)
	default:
		value = tensors.FromValue(stmt)
	}
	if eager.Truthy(value) {
		return CheckPassed
	}
	return CheckFailed
}

// Assert panics with an assertion error if Check(stmt) fails. An unverified
// symbolic statement does not panic.
func (b *Backend) Assert(stmt any) {
	if b.Check(stmt) == CheckFailed {
		Panicf("assertion failed on backend-aware check of %v", stmt)
	}
}
