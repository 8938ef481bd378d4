// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package andersen implements a flow-insensitive, context-insensitive,
// field-insensitive points-to analysis over a simple subset-constraint
// IR, in the style of Andersen's original inclusion-based algorithm.
//
// A client builds a NodeFactory and a ConstraintSet (typically via a
// frontend such as internal/toyfrontend, which walks a toyfrontend.Program),
// then hands both to NewSolver and calls Solve. The returned
// PointsToIndex answers PointsTo and Alias queries over the fixed
// point of the constraint system.
//
// The solver runs three optional passes before and during propagation:
// HVN (offline pointer-equivalence partitioning), HCD (offline hybrid
// cycle detection over copy, load and store edges with REF shadow
// nodes) and LCD (online
// lazy cycle detection during the worklist loop). All three are
// correctness-neutral: disabling any of them (see WithoutHVN,
// WithoutHCD, WithoutLCD) changes performance, not the result.
package andersen
