// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package andersen

import "testing"

func TestDefaultOracleClassification(t *testing.T) {
	o := NewDefaultExternalCallOracle()
	cases := []struct {
		callee string
		effect ExternalEffect
		arg    int
	}{
		{"strlen", EffectNoop, 0},
		{"malloc", EffectAllocates, 0},
		{"posix_memalign", EffectAllocatesIntoArg, 0},
		{"memcpy", EffectMemcpyLike, 0},
		{"va_start", EffectVarargStart, 0},
		{"strcpy", EffectReturnsArg, 0},
		{"memset", EffectReturnsArg, 0},
		{"totally_unknown_fn", EffectUnrecognized, 0},
	}
	for _, tc := range cases {
		effect, arg := o.Classify(ExternalCall{Callee: tc.callee})
		if effect != tc.effect || arg != tc.arg {
			t.Errorf("Classify(%q) = (%v, %d), want (%v, %d)", tc.callee, effect, arg, tc.effect, tc.arg)
		}
	}
}

func TestEmitAllocatesConstraints(t *testing.T) {
	nf := NewNodeFactory()
	cs := NewConstraintSet()
	result := nf.CreateValue(nil)

	EmitExternalCallConstraints(nf, cs, NewDefaultExternalCallOracle(), ExternalCall{
		Callee: "malloc",
		Result: result,
	})

	idx := NewSolver(nf, cs).Solve()
	pts := idx.PointsTo(result)
	if len(pts) != 1 {
		t.Fatalf("PointsTo(result) = %v, want a single fresh allocation", pts)
	}
}

// TestEmitAllocatesIntoArgConstraints models p = &out;
// posix_memalign(p, align, size): whatever p addressed must come to
// hold the fresh allocation.
func TestEmitAllocatesIntoArgConstraints(t *testing.T) {
	nf := NewNodeFactory()
	cs := NewConstraintSet()
	out := nf.CreateObject(nil)
	p := nf.CreateValue(nil)
	cs.AddAddrOf(p, out)

	EmitExternalCallConstraints(nf, cs, NewDefaultExternalCallOracle(), ExternalCall{
		Callee: "posix_memalign",
		Args:   []NodeID{p},
		Result: InvalidNode,
	})

	idx := NewSolver(nf, cs).Solve()
	pts := idx.PointsTo(out)
	if len(pts) != 1 {
		t.Fatalf("PointsTo(out) = %v, want the single fresh allocation stored through p", pts)
	}
	if nf.KindOf(pts[0]) != Object {
		t.Errorf("stored element n%d is not an OBJECT node", pts[0])
	}
}

func TestEmitReturnsArgConstraints(t *testing.T) {
	nf := NewNodeFactory()
	cs := NewConstraintSet()
	dst := nf.CreateValue(nil)
	src := nf.CreateValue(nil)
	result := nf.CreateValue(nil)
	x := nf.CreateObject(nil)
	cs.AddAddrOf(dst, x)

	EmitExternalCallConstraints(nf, cs, NewDefaultExternalCallOracle(), ExternalCall{
		Callee: "strcpy",
		Args:   []NodeID{dst, src},
		Result: result,
	})

	idx := NewSolver(nf, cs).Solve()
	assertPointsTo(t, idx, result, []NodeID{x})
}

func TestEmitUnrecognizedPollutesWithUniversal(t *testing.T) {
	nf := NewNodeFactory()
	cs := NewConstraintSet()
	arg := nf.CreateValue(nil)
	result := nf.CreateValue(nil)

	EmitExternalCallConstraints(nf, cs, NewDefaultExternalCallOracle(), ExternalCall{
		Callee: "mystery_fn",
		Args:   []NodeID{arg},
		Result: result,
	})

	idx := NewSolver(nf, cs).Solve()
	for _, n := range []NodeID{arg, result} {
		pts := idx.PointsTo(n)
		if len(pts) != 1 || pts[0] != UniversalObj {
			t.Errorf("PointsTo(n%d) = %v, want [UniversalObj]", n, pts)
		}
	}
}

func TestEmitNoopEmitsNothing(t *testing.T) {
	nf := NewNodeFactory()
	cs := NewConstraintSet()
	before := cs.Len()

	EmitExternalCallConstraints(nf, cs, NewDefaultExternalCallOracle(), ExternalCall{
		Callee: "strlen",
		Args:   []NodeID{nf.CreateValue(nil)},
	})

	if cs.Len() != before {
		t.Errorf("EffectNoop should not add constraints; Len() = %d, want %d", cs.Len(), before)
	}
}
