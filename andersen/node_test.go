// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package andersen

import "testing"

func TestReservedNodes(t *testing.T) {
	nf := NewNodeFactory()
	if nf.NumNodes() != int(numReserved) {
		t.Fatalf("NumNodes() = %d, want %d", nf.NumNodes(), numReserved)
	}
	if nf.KindOf(UniversalPtr) != Value {
		t.Errorf("UniversalPtr is not a VALUE node")
	}
	if nf.KindOf(UniversalObj) != Object {
		t.Errorf("UniversalObj is not an OBJECT node")
	}
	if nf.KindOf(NullPtr) != Value {
		t.Errorf("NullPtr is not a VALUE node")
	}
	if nf.KindOf(NullObj) != Object {
		t.Errorf("NullObj is not an OBJECT node")
	}
}

func TestCreateValueDedup(t *testing.T) {
	nf := NewNodeFactory()
	type ref struct{ name string }
	r := &ref{"x"}

	id := nf.CreateValue(r)
	got, ok := nf.ValueNodeFor(r)
	if !ok || got != id {
		t.Fatalf("ValueNodeFor(r) = (%d, %v), want (%d, true)", got, ok, id)
	}

	anon1 := nf.CreateValue(nil)
	anon2 := nf.CreateValue(nil)
	if anon1 == anon2 {
		t.Errorf("two nil-ref CreateValue calls returned the same node")
	}
}

func TestCreateValueDuplicatePanics(t *testing.T) {
	nf := NewNodeFactory()
	type ref struct{}
	r := &ref{}
	nf.CreateValue(r)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate value node")
		}
	}()
	nf.CreateValue(r)
}

func TestFindRepAndMerge(t *testing.T) {
	nf := NewNodeFactory()
	a := nf.CreateValue(nil)
	b := nf.CreateValue(nil)
	c := nf.CreateValue(nil)

	if nf.FindRep(a) != a || nf.FindRep(b) != b {
		t.Fatalf("fresh nodes should be their own representative")
	}

	nf.Merge(a, b)
	if nf.FindRep(b) != a {
		t.Errorf("FindRep(b) = %d, want %d", nf.FindRep(b), a)
	}

	nf.Merge(a, c)
	if nf.FindRep(c) != a {
		t.Errorf("FindRep(c) = %d, want %d", nf.FindRep(c), a)
	}

	// Path compression: after FindRep(c), a second call must still agree.
	if nf.FindRep(c) != nf.FindRep(b) {
		t.Errorf("FindRep(c) and FindRep(b) disagree after merge")
	}
}

func TestMergeSameRootIsNoop(t *testing.T) {
	nf := NewNodeFactory()
	a := nf.CreateValue(nil)
	nf.Merge(a, a) // must not panic
	if nf.FindRep(a) != a {
		t.Errorf("self-merge changed representative")
	}
}

func TestMergeReservedPanics(t *testing.T) {
	nf := NewNodeFactory()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic merging away a reserved node")
		}
	}()
	a := nf.CreateValue(nil)
	nf.Merge(a, UniversalPtr)
}

func TestMarkGlobal(t *testing.T) {
	nf := NewNodeFactory()
	obj := nf.CreateObject(nil)
	nf.MarkGlobal(obj, true)
	if !nf.nodes[obj].isGlobal || !nf.nodes[obj].isConstant {
		t.Errorf("MarkGlobal(obj, true) did not set isGlobal/isConstant")
	}
}

func TestReturnAndVarargNodes(t *testing.T) {
	nf := NewNodeFactory()
	type fn struct{ name string }
	f := &fn{"f"}

	ret := nf.CreateReturn(f)
	if nf.KindOf(ret) != Value {
		t.Errorf("return node should be VALUE")
	}
	got, ok := nf.ReturnNodeFor(f)
	if !ok || got != ret {
		t.Errorf("ReturnNodeFor(f) = (%d, %v), want (%d, true)", got, ok, ret)
	}

	va := nf.CreateVararg(f)
	if nf.KindOf(va) != Object {
		t.Errorf("vararg node should be OBJECT")
	}
	gotVa, ok := nf.VarargNodeFor(f)
	if !ok || gotVa != va {
		t.Errorf("VarargNodeFor(f) = (%d, %v), want (%d, true)", gotVa, ok, va)
	}
}
