// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package toyfrontend

import (
	"testing"

	"github.com/o2lab/ptago/andersen"
)

// TestTranslateAddrOfCopyLoadStore exercises p = &x; q = p; *q = &y;
// r = *p end to end through the translator and solver, confirming
// both directions of indirection come out right.
func TestTranslateAddrOfCopyLoadStore(t *testing.T) {
	x := &Var{Name: "x"}
	y := &Var{Name: "y"}
	p := &Var{Name: "p"}
	q := &Var{Name: "q"}
	r := &Var{Name: "r"}
	tmp := &Var{Name: "tmp"}

	prog := &Program{
		Func:    &Fn{Name: "main"},
		Globals: []*Var{x, y},
		Stmts: []Stmt{
			{Op: OpAddrOf, A: p, B: x},
			{Op: OpAssign, A: q, B: p},
			{Op: OpAddrOf, A: tmp, B: y},
			{Op: OpStore, A: q, B: tmp},
			{Op: OpLoad, A: r, B: p},
		},
	}

	tr := New(andersen.NewDefaultExternalCallOracle())
	tr.Translate(prog)

	idx := andersen.NewSolver(tr.NodeFactory(), tr.ConstraintSet()).Solve()

	px := tr.ValueNode(p)
	pts := idx.PointsTo(px)
	if len(pts) != 1 {
		t.Fatalf("PointsTo(p) = %v, want a single object (x)", pts)
	}

	xObj, ok := tr.NodeFactory().ObjectNodeFor(x)
	if !ok {
		t.Fatal("x never got an object node")
	}
	if pts[0] != xObj {
		t.Errorf("PointsTo(p) = %v, want [%d] (x's object)", pts, xObj)
	}

	rNode := tr.ValueNode(r)
	yObj, ok := tr.NodeFactory().ObjectNodeFor(y)
	if !ok {
		t.Fatal("y never got an object node")
	}
	rPts := idx.PointsTo(rNode)
	found := false
	for _, o := range rPts {
		if o == yObj {
			found = true
		}
	}
	if !found {
		t.Errorf("PointsTo(r) = %v, want it to include y's object %d (via *q = &y; r = *p, p aliases q)", rPts, yObj)
	}
}

func TestTranslateExternalCallAllocates(t *testing.T) {
	result := &Var{Name: "result"}

	prog := &Program{
		Func: &Fn{Name: "main"},
		Stmts: []Stmt{
			{Op: OpCall, Call: &CallStmt{Callee: "malloc", Result: result}},
		},
	}

	tr := New(andersen.NewDefaultExternalCallOracle())
	tr.Translate(prog)

	idx := andersen.NewSolver(tr.NodeFactory(), tr.ConstraintSet()).Solve()
	pts := idx.PointsTo(tr.ValueNode(result))
	if len(pts) != 1 {
		t.Fatalf("PointsTo(result) = %v, want a single fresh allocation", pts)
	}
}

func TestGlobalsAreMarkedNonConstant(t *testing.T) {
	x := &Var{Name: "x"}
	prog := &Program{Func: &Fn{Name: "main"}, Globals: []*Var{x}}

	tr := New(andersen.NewDefaultExternalCallOracle())
	tr.Translate(prog)

	obj, ok := tr.NodeFactory().ObjectNodeFor(x)
	if !ok {
		t.Fatal("global x should have an object node after Translate")
	}
	p := &Var{Name: "p"}
	tr.cs.AddAddrOf(tr.ValueNode(p), obj)

	idx := andersen.NewSolver(tr.NodeFactory(), tr.ConstraintSet()).Solve()
	if idx.PointsToConstantMemory(tr.ValueNode(p), true) {
		t.Errorf("toyfrontend globals are marked non-constant; PointsToConstantMemory should be false")
	}
}
