// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package andersen

import "testing"

// TestHVNMergesPointerEquivalentCopies exercises the classic case HVN
// is meant to catch statically: p and q both alias x through a plain
// copy (p = &x; q = p), so they are pointer-equivalent and HVN should
// merge them before the solver ever runs, without changing the
// solved result.
func TestHVNMergesPointerEquivalentCopies(t *testing.T) {
	nf := NewNodeFactory()
	cs := NewConstraintSet()
	x := nf.CreateObject(nil)
	p := nf.CreateValue(nil)
	q := nf.CreateValue(nil)

	cs.AddAddrOf(p, x)
	cs.AddCopy(q, p)

	runHVN(nf, cs)

	if nf.FindRep(p) != nf.FindRep(q) {
		t.Errorf("HVN should merge pointer-equivalent p and q: rep(p)=%d rep(q)=%d", nf.FindRep(p), nf.FindRep(q))
	}
}

func TestHVNDoesNotMergeDistinctTargets(t *testing.T) {
	nf := NewNodeFactory()
	cs := NewConstraintSet()
	x := nf.CreateObject(nil)
	y := nf.CreateObject(nil)
	p := nf.CreateValue(nil)
	q := nf.CreateValue(nil)

	cs.AddAddrOf(p, x)
	cs.AddAddrOf(q, y)

	runHVN(nf, cs)

	if nf.FindRep(p) == nf.FindRep(q) {
		t.Errorf("HVN should not merge p and q: they take the address of distinct objects")
	}
}

func TestHVNPreservesSolvedResult(t *testing.T) {
	for _, opts := range [][]SolverOption{nil, {WithoutHVN()}} {
		nf := NewNodeFactory()
		cs := NewConstraintSet()
		x := nf.CreateObject(nil)
		p := nf.CreateValue(nil)
		q := nf.CreateValue(nil)
		r := nf.CreateValue(nil)

		cs.AddAddrOf(p, x)
		cs.AddCopy(q, p)
		cs.AddCopy(r, q)

		idx := NewSolver(nf, cs, opts...).Solve()
		assertPointsTo(t, idx, r, []NodeID{x})
	}
}
