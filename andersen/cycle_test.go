// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package andersen

import (
	"sort"
	"testing"
)

// fixedGraph is a cycleHooks implementation over a plain adjacency
// map, for exercising cycleDetector independent of any real pass.
type fixedGraph struct {
	edges map[int][]int
	sccs  [][]int
	cur   []int
}

func (g *fixedGraph) Rep(n int) int      { return n }
func (g *fixedGraph) Children(n int) []int { return g.edges[n] }
func (g *fixedGraph) OnCycleMember(member, rep int) {
	g.cur = append(g.cur, member)
}
func (g *fixedGraph) OnCycleRep(rep int) {
	g.cur = append(g.cur, rep)
	sort.Ints(g.cur)
	g.sccs = append(g.sccs, g.cur)
	g.cur = nil
}

func TestCycleDetectorSingletons(t *testing.T) {
	g := &fixedGraph{edges: map[int][]int{0: {1}, 1: {2}, 2: {}}}
	d := newCycleDetector(g)
	d.RunOverGraph([]int{0, 1, 2})

	if len(g.sccs) != 3 {
		t.Fatalf("got %d SCCs, want 3 singletons: %v", len(g.sccs), g.sccs)
	}
	for _, scc := range g.sccs {
		if len(scc) != 1 {
			t.Errorf("expected singleton SCC, got %v", scc)
		}
	}
}

func TestCycleDetectorSimpleCycle(t *testing.T) {
	g := &fixedGraph{edges: map[int][]int{0: {1}, 1: {2}, 2: {0}}}
	d := newCycleDetector(g)
	d.RunOverGraph([]int{0, 1, 2})

	if len(g.sccs) != 1 {
		t.Fatalf("got %d SCCs, want 1: %v", len(g.sccs), g.sccs)
	}
	want := []int{0, 1, 2}
	if !intsEqual(g.sccs[0], want) {
		t.Errorf("SCC = %v, want %v", g.sccs[0], want)
	}
}

func TestCycleDetectorDiamondIsAcyclic(t *testing.T) {
	// 0 -> 1, 0 -> 2, 1 -> 3, 2 -> 3: no cycle anywhere.
	g := &fixedGraph{edges: map[int][]int{0: {1, 2}, 1: {3}, 2: {3}, 3: {}}}
	d := newCycleDetector(g)
	d.RunOverGraph([]int{0})

	if len(g.sccs) != 4 {
		t.Fatalf("got %d SCCs, want 4 singletons: %v", len(g.sccs), g.sccs)
	}
}

func TestCycleDetectorTwoSeparateCycles(t *testing.T) {
	g := &fixedGraph{edges: map[int][]int{
		0: {1}, 1: {0},
		2: {3}, 3: {2},
	}}
	d := newCycleDetector(g)
	d.RunOverGraph([]int{0, 2})

	if len(g.sccs) != 2 {
		t.Fatalf("got %d SCCs, want 2: %v", len(g.sccs), g.sccs)
	}
	for _, scc := range g.sccs {
		if len(scc) != 2 {
			t.Errorf("expected 2-node SCC, got %v", scc)
		}
	}
}

func TestCycleDetectorSelfLoop(t *testing.T) {
	g := &fixedGraph{edges: map[int][]int{0: {0}}}
	d := newCycleDetector(g)
	d.RunOverGraph([]int{0})

	if len(g.sccs) != 1 || !intsEqual(g.sccs[0], []int{0}) {
		t.Fatalf("sccs = %v, want [[0]]", g.sccs)
	}
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	sort.Ints(a)
	sort.Ints(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
