// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ir defines the minimal interfaces a frontend must implement
// to drive package andersen. It deliberately defines no concrete IR:
// lowering a real compiler's intermediate representation into
// constraints is out of scope, so these are marker/opaque interfaces
// a caller's own IR types satisfy structurally.
package ir

// Value is any IR entity that can hold a pointer value: a local, a
// parameter, a global, an intermediate SSA-style temporary. Values are
// used only as map keys (by andersen.NodeFactory), so any comparable
// Go value (typically a pointer to the caller's own IR node type)
// satisfies this interface.
type Value interface {
	// IRValue is a marker method distinguishing Value from an
	// arbitrary `any`, the way go_tools/go/pointer's gen.go keys its
	// valNodes map on *ssa.Value-shaped types rather than bare
	// interface{}.
	IRValue()
}

// Func is any IR entity representing a function: a lowering target
// for CreateReturn/CreateVararg's one-node-per-function indexing.
type Func interface {
	IRFunc()
}

// StructLayoutOracle reports how many fields a struct type has, for
// frontends that want field-sensitive object splitting despite
// package andersen's own field-insensitive treatment of objects.
// Grounded on original_source/include/NodeFactory.h's per-field object
// allocation scheme, generalized here as an explicit frontend
// collaborator rather than hardwired into NodeFactory: package
// andersen itself stays field-insensitive, but a frontend remains
// free to pre-split a struct into NumFields(t) separate OBJECT nodes
// before handing constraints to the solver.
type StructLayoutOracle interface {
	// NumFields returns the number of fields t has, or 1 if t is not
	// (or the oracle does not recognize it as) a struct type.
	NumFields(t any) int
}
