// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package numshim

import (
	"github.com/gomlx/numshim/types/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// UpdateRule pairs a Shared target with the expression whose value it will
// receive.
type UpdateRule struct {
	Target *Shared
	Expr   Value
}

// Updates accumulates update rules for Shared containers, with a scoped
// begin/commit lifecycle: create with Backend.NewUpdates, add rules with
// Set, and apply (or seal, symbolically) with Commit. After Commit the
// builder is spent.
//
// Updates is not synchronized.
type Updates struct {
	backend   *Backend
	rules     []UpdateRule
	targets   map[*Shared]int
	committed bool
}

// NewUpdates creates an empty update builder bound to the backend.
func (b *Backend) NewUpdates() *Updates {
	return &Updates{
		backend: b,
		targets: make(map[*Shared]int),
	}
}

// Set adds the rule target <- expr. Each target can appear only once; a
// duplicate target panics. Set panics after Commit.
func (u *Updates) Set(target *Shared, expr Value) {
	if u.committed {
		Panicf("Updates: Set after Commit")
	}
	if idx, found := u.targets[target]; found {
		Panicf("Updates: target %s already has an update rule (%s)",
			target, u.rules[idx].Expr.Shape())
	}
	u.targets[target] = len(u.rules)
	u.rules = append(u.rules, UpdateRule{Target: target, Expr: expr})
}

// Rules returns the accumulated rules in insertion order. A downstream
// symbolic compiler consumes these to build its update step.
func (u *Updates) Rules() []UpdateRule { return u.rules }

// Committed returns whether Commit was called.
func (u *Updates) Committed() bool { return u.committed }

// Commit ends the builder's lifecycle. On an eager backend it applies every
// rule to its target: all expressions are resolved first and written after,
// so rules see the pre-update values of their targets. On a symbolic
// backend it only seals the builder, leaving the rules to a compiler.
//
// On error no target is modified.
func (u *Updates) Commit() error {
	if u.committed {
		return errors.New("Updates: Commit called twice")
	}
	u.committed = true
	if u.backend.IsSymbolic() {
		klog.V(1).Infof("numshim: sealed %d symbolic update rules", len(u.rules))
		return nil
	}
	resolved := make([]*tensors.Tensor, len(u.rules))
	for ii, rule := range u.rules {
		value, err := u.backend.TestValue(rule.Expr)
		if err != nil {
			return errors.WithMessagef(err, "Updates: resolving rule for target %s", rule.Target)
		}
		if !value.Shape().Equal(rule.Target.Shape()) {
			return errors.Errorf("Updates: rule value shape %s does not match target %s",
				value.Shape(), rule.Target)
		}
		// Snapshot: the resolved value may alias a target's live cell.
		resolved[ii] = value.Clone()
	}
	for ii, rule := range u.rules {
		if err := rule.Target.SetValue(resolved[ii]); err != nil {
			return errors.WithMessage(err, "Updates: applying rule")
		}
	}
	klog.V(1).Infof("numshim: committed %d update rules", len(u.rules))
	return nil
}
