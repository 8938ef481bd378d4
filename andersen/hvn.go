// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package andersen

// This file implements HVN, the offline constraint optimizer. It
// builds the predecessor graph with REF/ADR shadow nodes as described
// in original_source/lib/ConstraintOptimize.cpp's hvn() (a stub
// there; this file carries out the complete algorithm it leaves
// unfinished), runs the Nuutila SCC driver (cycle.go) over it with
// predecessor-label propagation, assigns pointer-equivalence classes,
// and rewrites the constraint set.

import (
	"sort"
	"strconv"
	"strings"
)

// runHVN runs one HVN pass over cs, merging pointer-equivalent nodes
// in nf and returning the rewritten constraint set. N is frozen to
// the node count at call time: no real node may be created while
// runHVN is executing.
func runHVN(nf *NodeFactory, cs *ConstraintSet) []Constraint {
	n := nf.NumNodes()
	h := &hvnPass{
		nf:       nf,
		n:        n,
		pred:     newBitVectorGraph(3 * n),
		indirect: make(map[NodeID]bool),
		label:    make(map[int]uint32),
		byPreds:  make(map[string]uint32),
	}
	h.buildPredGraph(cs.All())

	d := newCycleDetector(h)
	all := make([]int, 3*n)
	for i := range all {
		all[i] = i
	}
	d.RunOverGraph(all)

	h.mergeByLabel()
	return h.rewrite(cs.All())
}

func (h *hvnPass) ref(n NodeID) int { return int(n) + h.n }
func (h *hvnPass) adr(n NodeID) int { return int(n) + 2*h.n }

type hvnPass struct {
	nf   *NodeFactory
	n    int
	pred *bitVectorGraph

	indirect map[NodeID]bool // srcs of ADDR_OF constraints

	nextLabel uint32
	label     map[int]uint32    // shadow/real index -> pointer-equivalence class
	byPreds   map[string]uint32 // canonical predecessor-label-set key -> label

	// sccMembers accumulates the members of the SCC currently being
	// closed; OnCycleRep consumes and clears it.
	sccMembers []int

	// adrOriginOf is lazily built by adrOrigin from label, mapping an
	// ADR(v)-minted label back to v.
	adrOriginOf map[uint32]NodeID
}

// buildPredGraph inserts, for each constraint, the predecessor edges
// that let a node's pointer-equivalence label depend on the labels
// feeding it. Edges point from right-hand side to left-hand side
// (predecessor = source of info).
func (h *hvnPass) buildPredGraph(constraints []Constraint) {
	for _, c := range constraints {
		d := int(c.Dst)
		s := int(c.Src)
		switch c.Kind {
		case AddrOf:
			h.indirect[c.Src] = true
			h.pred.InsertEdge(d, h.adr(c.Src))    // d ← ADR(s)
			h.pred.InsertEdge(h.ref(c.Dst), s)    // REF(d) ← s
		case Copy:
			h.pred.InsertEdge(d, s)                     // d ← s
			h.pred.InsertEdge(h.ref(c.Dst), h.ref(c.Src)) // REF(d) ← REF(s)
		case Load:
			h.pred.InsertEdge(d, h.ref(c.Src)) // d ← REF(s)
		case Store:
			h.pred.InsertEdge(h.ref(c.Dst), s) // REF(d) ← s
		}
	}
}

// --- cycleHooks ---

func (h *hvnPass) Rep(n int) int { return n } // no merges happen mid-pass

func (h *hvnPass) Children(n int) []int {
	var space [32]int
	elems := h.pred.Successors(n).AppendTo(space[:0])
	out := make([]int, len(elems))
	copy(out, elems)
	return out
}

func (h *hvnPass) OnCycleMember(member, rep int) {
	h.sccMembers = append(h.sccMembers, member)
}

func (h *hvnPass) OnCycleRep(rep int) {
	members := h.sccMembers
	h.sccMembers = nil

	lbl := h.computeLabel(rep, members)
	h.label[rep] = lbl
	for _, m := range members {
		h.label[m] = lbl
	}
}

// isShadow reports whether idx is a REF or ADR shadow index (idx >= n).
func (h *hvnPass) isShadow(idx int) bool { return idx >= h.n }

func (h *hvnPass) isIndirectReal(idx int) bool {
	return idx < h.n && h.indirect[NodeID(idx)]
}

func (h *hvnPass) computeLabel(rep int, members []int) uint32 {
	// An SCC touching a REF/ADR shadow or an address-taken node has no
	// statically known predecessor signature: mint a fresh class.
	all := append(members, rep)
	for _, n := range all {
		if h.isShadow(n) || h.isIndirectReal(n) {
			h.nextLabel++
			return h.nextLabel
		}
	}

	// Gather predecessor labels of every node folded into this SCC
	// (rep plus members), dropping zeros and self-labels.
	set := make(map[uint32]bool)
	for _, n := range all {
		var space [32]int
		for _, p := range h.pred.Successors(n).AppendTo(space[:0]) {
			pl := h.label[p]
			if pl == 0 {
				continue
			}
			if p == rep || p == n {
				continue
			}
			set[pl] = true
		}
	}

	switch len(set) {
	case 0:
		return 0
	case 1:
		for l := range set {
			return l
		}
	}

	key := canonicalLabelKey(set)
	if l, ok := h.byPreds[key]; ok {
		return l
	}
	h.nextLabel++
	h.byPreds[key] = h.nextLabel
	return h.nextLabel
}

func canonicalLabelKey(set map[uint32]bool) string {
	ls := make([]uint32, 0, len(set))
	for l := range set {
		ls = append(ls, l)
	}
	sort.Slice(ls, func(i, j int) bool { return ls[i] < ls[j] })
	var sb strings.Builder
	for i, l := range ls {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(l), 10))
	}
	return sb.String()
}

// mergeByLabel merges ordinary value-nodes that share a non-zero
// label. Object nodes keep their identity even when a constraint dst
// position gave them a label.
func (h *hvnPass) mergeByLabel() {
	groups := make(map[uint32][]NodeID)
	for idx, lbl := range h.label {
		if lbl == 0 || h.isShadow(idx) || h.nf.KindOf(NodeID(idx)) != Value {
			continue
		}
		groups[lbl] = append(groups[lbl], NodeID(idx))
	}
	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		sort.Slice(g, func(i, j int) bool { return g[i] < g[j] })
		keep := g[0]
		for _, drop := range g[1:] {
			if h.nf.isReserved(drop) {
				continue
			}
			if h.indirect[drop] {
				h.indirect[keep] = true
			}
			h.nf.Merge(keep, drop)
		}
	}
}

// rewrite simplifies constraints using the labels just computed
// (folding a LOAD/COPY/STORE through a known addr-of target into a
// plain ADDR_OF or COPY) and uniquifies the result.
func (h *hvnPass) rewrite(constraints []Constraint) []Constraint {
	out := NewConstraintSet()
	for _, c := range constraints {
		dst := h.nf.FindRep(c.Dst)
		src := h.nf.FindRep(c.Src)

		if h.label[int(dst)] == 0 && c.Kind != AddrOf {
			continue // dst is not a pointer; the constraint is inert
		}

		switch c.Kind {
		case AddrOf:
			out.AddAddrOf(dst, src)
		case Copy:
			// src carrying a label minted for some ADR(v) means src
			// denotes &v, so the copy is really an addr-of.
			if v, ok := h.adrOrigin(h.label[int(src)]); ok {
				out.AddAddrOf(dst, v)
				continue
			}
			if dst == src {
				continue // degenerate A = A
			}
			out.AddCopy(dst, src)
		case Load:
			// src ≡ &v turns the dereference into a direct read of v.
			if v, ok := h.adrOrigin(h.label[int(src)]); ok {
				out.AddCopy(dst, v)
				continue
			}
			out.AddLoad(dst, src)
		case Store:
			// dst ≡ &v turns the indirect write into a direct one.
			if v, ok := h.adrOrigin(h.label[int(dst)]); ok {
				out.AddCopy(v, src)
				continue
			}
			out.AddStore(dst, src)
		}
	}
	out.Sort()
	return out.All()
}

// adrOrigin tracks, for a label minted for an ADR(v) shadow, which v
// it was minted for, so rewrite can replace a label match with the
// concrete addr-of target.
func (h *hvnPass) adrOrigin(lbl uint32) (NodeID, bool) {
	if h.adrOriginOf == nil {
		h.adrOriginOf = make(map[uint32]NodeID)
		for idx, l := range h.label {
			if idx >= 2*h.n && l != 0 {
				h.adrOriginOf[l] = NodeID(idx - 2*h.n)
			}
		}
	}
	v, ok := h.adrOriginOf[lbl]
	return v, ok
}
