// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package andersen

// This file implements the generic Nuutila-refined Tarjan SCC driver,
// grounded directly on original_source/include/CycleDetector.h
// (visit/runOnGraph/runOnNode) and, for the idiomatic-Go generics
// shape, on the from-pack Tarjan implementation in
// awslabs-ar-go-tools/internal/graphutil/scc.go.
//
// The driver is iterative (an explicit frame stack) rather than
// recursive, to avoid overflowing the machine stack on worst-case
// inputs; the algorithm itself is unchanged from the recursive
// original.

// cycleHooks is the small trait-like interface the driver is
// parameterized by. Three implementations exist in this package: the
// offline HVN predecessor-graph pass (hvn.go), the offline HCD pass
// (solver.go), and online LCD (solver.go).
type cycleHooks interface {
	// Rep resolves n to its current representative, letting the
	// driver skip nodes merged away during a previous pass.
	Rep(n int) int
	// Children returns n's out-edges (for HVN, predecessor edges).
	Children(n int) []int
	// OnCycleMember is called for every non-representative member of
	// a newly closed SCC, before OnCycleRep is called for that SCC's
	// representative.
	OnCycleMember(member, rep int)
	// OnCycleRep is called once a node closes its own SCC (which may
	// be a singleton).
	OnCycleRep(rep int)
}

// cycleDetector runs one pass of the algorithm; create a fresh one
// per pass (its internal DFS-number map is not meant to be reused
// across independent graphs).
type cycleDetector struct {
	hooks     cycleHooks
	dfsNum    map[int]int
	inComp    map[int]bool
	stack     []int
	timestamp int
	frames    []frame
}

type frame struct {
	node     int
	entry    int
	children []int
	ci       int
}

func newCycleDetector(hooks cycleHooks) *cycleDetector {
	return &cycleDetector{
		hooks:  hooks,
		dfsNum: make(map[int]int),
		inComp: make(map[int]bool),
	}
}

// RunOverGraph visits every node in nodes once (resolving each through
// Rep first), the way the online LCD pass restricts itself to a
// specific candidate set rather than the whole graph.
func (d *cycleDetector) RunOverGraph(nodes []int) {
	for _, n := range nodes {
		d.RunOverNode(n)
	}
}

// RunOverNode runs the detector starting from a single node.
func (d *cycleDetector) RunOverNode(n int) {
	rep := d.hooks.Rep(n)
	if _, seen := d.dfsNum[rep]; seen {
		return
	}
	d.push(rep)
	for len(d.frames) > 0 {
		f := &d.frames[len(d.frames)-1]
		if f.ci < len(f.children) {
			childRaw := f.children[f.ci]
			f.ci++
			child := d.hooks.Rep(childRaw)
			if _, seen := d.dfsNum[child]; !seen {
				d.push(child)
				continue
			}
			if !d.inComp[child] && d.dfsNum[child] < d.dfsNum[f.node] {
				d.dfsNum[f.node] = d.dfsNum[child]
			}
			continue
		}

		// All children processed; close this frame.
		n := f.node
		entry := f.entry
		d.frames = d.frames[:len(d.frames)-1]

		if d.dfsNum[n] == entry {
			// n is the representative of a (possibly trivial) SCC.
			d.inComp[n] = true
			for len(d.stack) > 0 && d.dfsNum[d.stack[len(d.stack)-1]] >= entry {
				m := d.stack[len(d.stack)-1]
				d.stack = d.stack[:len(d.stack)-1]
				d.inComp[m] = true
				d.hooks.OnCycleMember(m, n)
			}
			d.hooks.OnCycleRep(n)
		} else {
			// n belongs to an ancestor's SCC; defer it.
			d.stack = append(d.stack, n)
		}

		if len(d.frames) > 0 {
			parent := &d.frames[len(d.frames)-1]
			if !d.inComp[n] && d.dfsNum[n] < d.dfsNum[parent.node] {
				d.dfsNum[parent.node] = d.dfsNum[n]
			}
		}
	}
}

func (d *cycleDetector) push(n int) {
	entry := d.timestamp
	d.dfsNum[n] = entry
	d.timestamp++
	d.frames = append(d.frames, frame{node: n, entry: entry, children: d.hooks.Children(n)})
}
