// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package andersen

// This file implements the Solver: the offline HCD pass, the
// online ConstraintGraph build, and the worklist-based fixed-point
// propagation loop with lazy cycle detection (LCD). Grounded on
// original_source/lib/ConstraintSolving.cpp's AndersWorkList/
// processCopyLoadStore machinery and on go_tools/go/pointer/solve.go's
// solve() worklist loop for the idiomatic-Go shape.

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// Solver runs Andersen's analysis to a fixed point over a frozen
// NodeFactory and ConstraintSet. Create one with NewSolver, call
// Solve, then read results off the returned PointsToIndex.
type Solver struct {
	nf  *NodeFactory
	cs  *ConstraintSet
	log *logrus.Entry

	skipHVN bool
	skipHCD bool
	skipLCD bool

	pts   []PtsSet
	graph *ConstraintGraph

	// collapseTarget maps a node n to the representative everything in
	// pts(n) must be merged with, per the offline HCD pass: REF(n) was
	// found in a cycle with the target, so *n is pointer-equivalent to
	// it.
	collapseTarget map[NodeID]NodeID

	curr, next *workSet

	// lcdChecked records copy edges already submitted to LCD once, so
	// a stable non-growing edge is not re-flagged every iteration.
	lcdChecked    map[copyEdge]bool
	lcdCandidates map[NodeID]bool
}

type copyEdge struct{ from, to NodeID }

// SolverOption configures optional passes. All passes are enabled by
// default; tests use these to isolate the online algorithm.
type SolverOption func(*Solver)

// WithoutHVN disables the offline HVN optimization pass.
func WithoutHVN() SolverOption { return func(s *Solver) { s.skipHVN = true } }

// WithoutHCD disables the offline hybrid cycle detection pass.
func WithoutHCD() SolverOption { return func(s *Solver) { s.skipHCD = true } }

// WithoutLCD disables the online lazy cycle detection heuristic.
func WithoutLCD() SolverOption { return func(s *Solver) { s.skipLCD = true } }

// NewSolver constructs a solver over a finished NodeFactory and
// ConstraintSet. nf and cs must not be modified further by the caller.
func NewSolver(nf *NodeFactory, cs *ConstraintSet, opts ...SolverOption) *Solver {
	s := &Solver{
		nf:             nf,
		cs:             cs,
		log:            logrus.WithField("component", "andersen"),
		collapseTarget: make(map[NodeID]NodeID),
		lcdChecked:     make(map[copyEdge]bool),
		lcdCandidates:  make(map[NodeID]bool),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Solve runs the analysis and returns a read-only index over the
// result. Solve must be called exactly once per Solver.
func (s *Solver) Solve() *PointsToIndex {
	s.seedStandingConstraints()

	if !s.skipHVN {
		s.cs.Reset(runHVN(s.nf, s.cs))
		s.log.WithField("constraints", s.cs.Len()).Debug("HVN pass complete")
	}

	if !s.skipHCD {
		s.runHCD()
	}

	n := s.nf.NumNodes()
	s.pts = make([]PtsSet, n)
	s.graph = NewConstraintGraph(n)
	s.curr = newWorkSet()
	s.next = newWorkSet()

	// The universal object points to itself as a base fact: no chain of
	// COPY/LOAD/STORE constraints can manufacture that from an empty
	// set, so it is asserted here rather than derived (see
	// seedStandingConstraints).
	s.pts[UniversalObj].Insert(UniversalObj)

	s.buildOnlineGraph()
	s.initWorklist()
	s.propagate()

	// Compress every union-find path now, so the FindRep calls made by
	// the returned index's queries only read the merge table.
	for i := 0; i < n; i++ {
		s.nf.FindRep(NodeID(i))
	}

	return &PointsToIndex{nf: s.nf, pts: s.pts}
}

// seedStandingConstraints installs the three constraints every
// analysis run needs regardless of frontend, grounded on
// original_source/lib/ConstraintSolving.cpp's startup sequence:
// ADDR_OF(UNIVERSAL_PTR, UNIVERSAL_OBJ), STORE(UNIVERSAL_OBJ,
// UNIVERSAL_OBJ) and ADDR_OF(NULL_PTR, NULL_OBJ). The self-store
// keeps the universal object absorbing through indirect writes.
func (s *Solver) seedStandingConstraints() {
	s.cs.AddAddrOf(UniversalPtr, UniversalObj)
	s.cs.AddStore(UniversalObj, UniversalObj)
	s.cs.AddAddrOf(NullPtr, NullObj)
}

// --- offline HCD ---

// runHCD builds the real+REF-shadow graph, merges each nontrivial
// SCC's real members into its lowest-numbered real node now, and for
// every REF member records a collapseTarget directive the online loop
// applies once *that* pointer's pts members are known.
func (s *Solver) runHCD() {
	n := s.nf.NumNodes()
	h := &hcdPass{nf: s.nf, n: n, g: newBitVectorGraph(2 * n), target: s.collapseTarget}
	for _, c := range s.cs.All() {
		switch c.Kind {
		case Copy:
			h.g.InsertEdge(int(c.Src), int(c.Dst))
		case Load:
			h.g.InsertEdge(h.ref(c.Src), int(c.Dst))
		case Store:
			h.g.InsertEdge(int(c.Src), h.ref(c.Dst))
		}
	}

	d := newCycleDetector(h)
	all := make([]int, 2*n)
	for i := range all {
		all[i] = i
	}
	d.RunOverGraph(all)
	s.log.WithFields(logrus.Fields{
		"merged":  h.merged,
		"targets": len(h.target),
	}).Debug("HCD pass complete")
}

type hcdPass struct {
	nf     *NodeFactory
	n      int
	g      *bitVectorGraph
	target map[NodeID]NodeID
	merged int

	members []int
}

func (h *hcdPass) ref(n NodeID) int { return int(n) + h.n }

func (h *hcdPass) Rep(n int) int { return n }

func (h *hcdPass) Children(n int) []int {
	var space [32]int
	elems := h.g.Successors(n).AppendTo(space[:0])
	out := make([]int, len(elems))
	copy(out, elems)
	return out
}

func (h *hcdPass) OnCycleMember(member, rep int) {
	h.members = append(h.members, member)
}

func (h *hcdPass) OnCycleRep(rep int) {
	members := h.members
	h.members = nil
	if len(members) == 0 {
		return // singleton SCC: nothing to collapse
	}
	scc := append(members, rep)

	// The representative is the lowest-numbered real (non-REF) node in
	// the SCC, not whichever node the DFS happened to close last: rep
	// may itself be a REF shadow.
	repReal := InvalidNode
	for _, m := range scc {
		if m < h.n && (repReal == InvalidNode || NodeID(m) < repReal) {
			repReal = NodeID(m)
		}
	}
	if repReal == InvalidNode {
		return // the whole SCC is REF shadows: nothing real to collapse
	}

	for _, m := range scc {
		if m >= h.n {
			continue
		}
		real := NodeID(m)
		if real == repReal || h.nf.isReserved(real) {
			continue
		}
		h.nf.Merge(repReal, real)
		h.merged++
	}
	for _, m := range scc {
		if m < h.n {
			continue
		}
		// REF(x) cycles with repReal, so *x ≡ repReal: direct the
		// online loop to merge everything x comes to point at. Keyed by
		// x's representative, where its pts set will live.
		h.target[h.nf.FindRep(NodeID(m-h.n))] = repReal
	}
}

// --- online ConstraintGraph construction ---

// buildOnlineGraph installs each constraint into the online graph,
// substituting representatives for both endpoints, and seeds ADDR_OF
// results directly into pts. The seeded element is the original src
// index, not its representative: object identity is by original index.
func (s *Solver) buildOnlineGraph() {
	for _, c := range s.cs.All() {
		dst := s.nf.FindRep(c.Dst)
		src := s.nf.FindRep(c.Src)
		switch c.Kind {
		case AddrOf:
			s.pts[dst].Insert(c.Src)
		case Copy:
			if dst != src {
				s.graph.InsertCopy(src, dst)
			}
		case Load:
			s.graph.InsertLoad(src, dst)
		case Store:
			s.graph.InsertStore(dst, src)
		}
	}
	for i := range s.pts {
		s.absorbUniversal(NodeID(i))
	}
}

// initWorklist schedules every representative that has a non-empty
// pts set and either out-edges to drive or a pending HCD directive.
func (s *Solver) initWorklist() {
	for i := range s.pts {
		n := NodeID(i)
		if s.nf.FindRep(n) != n || s.pts[n].IsEmpty() {
			continue
		}
		_, hcd := s.collapseTarget[n]
		if hcd || s.graph.HasOutEdges(n) {
			s.curr.add(n)
		}
	}
}

// absorbUniversal truncates pts(n) to the universal-object singleton
// once the universal object has entered it. The asymmetry (only sets
// containing it collapse) is load-bearing.
func (s *Solver) absorbUniversal(n NodeID) {
	if s.pts[n].Has(UniversalObj) && s.pts[n].Len() > 1 {
		s.pts[n].Clear()
		s.pts[n].Insert(UniversalObj)
	}
}

// --- worklist fixed-point loop ---

// propagate drives the outer iteration: an LCD pass over candidates
// flagged last round, a drain of the current worklist, then a swap.
// Every step either strictly enlarges some pts set or merges two
// representatives, so the loop terminates.
func (s *Solver) propagate() {
	for {
		if !s.skipLCD && len(s.lcdCandidates) > 0 {
			s.runLCD()
		}
		for {
			n, ok := s.curr.takeMin()
			if !ok {
				break
			}
			s.processNode(n)
		}
		if s.next.isEmpty() && len(s.lcdCandidates) == 0 {
			break
		}
		s.curr, s.next = s.next, s.curr
	}
}

// processNode applies, in order: the HCD fast path, load resolution,
// store resolution, and copy propagation, for one dequeued node.
// Edge retargets discovered along the way (a child merged into a new
// representative) are collected into side slices and applied after
// the iteration over that edge set, never under the live iterator.
func (s *Solver) processNode(n NodeID) {
	n = s.nf.FindRep(n)

	if t, ok := s.collapseTarget[n]; ok {
		if s.applyHCD(n, t) {
			return // n itself was merged away; its new rep is queued
		}
		n = s.nf.FindRep(n)
	}

	pn := &s.pts[n]
	if pn.IsEmpty() {
		return
	}
	var objSpace [64]int
	objs := pn.AppendTo(objSpace[:0])

	// Resolve loads: o ∈ pts(n) and load edge n -> t mean pts(t) must
	// absorb pts(o), expressed as a new copy edge rep(o) -> rep(t).
	var retargets [][2]NodeID
	s.graph.Load(n).Each(func(t NodeID) {
		tr := s.nf.FindRep(t)
		for _, x := range objs {
			or := s.nf.FindRep(NodeID(x))
			if or != tr && s.graph.InsertCopy(or, tr) {
				s.next.add(or)
			}
		}
		if tr != t {
			retargets = append(retargets, [2]NodeID{t, tr})
		}
	})
	for _, r := range retargets {
		s.graph.ReplaceLoadEdge(n, r[0], r[1])
	}

	// Resolve stores: o ∈ pts(n) and store edge n -> t mean pts(o)
	// must absorb pts(t), expressed as a new copy edge rep(t) -> rep(o).
	retargets = retargets[:0]
	s.graph.Store(n).Each(func(t NodeID) {
		tr := s.nf.FindRep(t)
		for _, x := range objs {
			or := s.nf.FindRep(NodeID(x))
			if tr != or && s.graph.InsertCopy(tr, or) {
				s.next.add(tr)
			}
		}
		if tr != t {
			retargets = append(retargets, [2]NodeID{t, tr})
		}
	})
	for _, r := range retargets {
		s.graph.ReplaceStoreEdge(n, r[0], r[1])
	}

	// Propagate copies: pts(t) ⊇ pts(n) for every copy edge n -> t.
	retargets = retargets[:0]
	s.graph.Copy(n).Each(func(t NodeID) {
		tr := s.nf.FindRep(t)
		if tr != t {
			retargets = append(retargets, [2]NodeID{t, tr})
		}
		if tr == n {
			return
		}
		if s.pts[tr].UnionWith(pn) {
			s.next.add(tr)
			s.absorbUniversal(tr)
		} else if !s.skipLCD && pn.Equals(&s.pts[tr]) {
			// The edge carried nothing and its endpoints look
			// identical: a cycle suspect. Flag it once.
			e := copyEdge{n, tr}
			if !s.lcdChecked[e] {
				s.lcdChecked[e] = true
				s.lcdCandidates[tr] = true
			}
		}
	})
	for _, r := range retargets {
		s.graph.ReplaceCopyEdge(n, r[0], r[1])
	}
}

// applyHCD merges the representative of target with the
// representative of every member of pts(n). A self-member (o whose
// rep is n itself) is deferred to last; if that final merge absorbs n
// into a different representative, the new rep is queued and true is
// returned so the caller stops processing the dead n.
func (s *Solver) applyHCD(n, target NodeID) bool {
	rep := s.nf.FindRep(target)
	var space [64]int
	self := false
	for _, x := range s.pts[n].AppendTo(space[:0]) {
		o := s.nf.FindRep(NodeID(x))
		if o == n {
			self = true
			continue
		}
		rep = s.collapseInto(rep, o)
	}
	if self && rep != n {
		rep = s.collapseInto(rep, n)
		if s.nf.FindRep(n) != n {
			s.next.add(rep)
			return true
		}
	}
	return false
}

// collapseInto merges drop's constraint-graph edges, pts set and
// union-find class into keep, returning the surviving representative
// (which may be drop's side when drop is a reserved node, since
// reserved nodes must remain roots).
func (s *Solver) collapseInto(keep, drop NodeID) NodeID {
	keep = s.nf.FindRep(keep)
	drop = s.nf.FindRep(drop)
	if keep == drop {
		return keep
	}
	if s.nf.isReserved(drop) {
		if s.nf.isReserved(keep) {
			return keep // two reserved nodes are never merged
		}
		keep, drop = drop, keep
	}
	s.graph.MergeInto(keep, drop)
	if s.pts[keep].UnionWith(&s.pts[drop]) {
		s.absorbUniversal(keep)
	}
	s.pts[drop].Clear()
	s.nf.Merge(keep, drop)
	s.curr.add(keep)
	return keep
}

// runLCD runs the SCC detector over the copy graph, rooted at the
// candidates flagged during the previous drain, and collapses every
// nontrivial cycle it finds. The candidate set is consumed.
func (s *Solver) runLCD() {
	cands := make([]int, 0, len(s.lcdCandidates))
	for n := range s.lcdCandidates {
		cands = append(cands, int(n))
	}
	sort.Ints(cands)
	for n := range s.lcdCandidates {
		delete(s.lcdCandidates, n)
	}

	h := &lcdPass{s: s}
	d := newCycleDetector(h)
	d.RunOverGraph(cands)

	sort.Slice(h.collapses, func(i, j int) bool { return h.collapses[i].drop < h.collapses[j].drop })
	for _, c := range h.collapses {
		s.collapseInto(c.keep, c.drop)
	}
	if len(h.collapses) > 0 {
		s.log.WithField("merged", len(h.collapses)).Debug("LCD collapsed a cycle")
	}
}

type lcdPass struct {
	s         *Solver
	members   []int
	collapses []collapsePair
}

type collapsePair struct{ keep, drop NodeID }

func (h *lcdPass) Rep(n int) int { return int(h.s.nf.FindRep(NodeID(n))) }

func (h *lcdPass) Children(n int) []int {
	var space [32]int
	elems := h.s.graph.Copy(NodeID(n)).AppendTo(space[:0])
	out := make([]int, len(elems))
	copy(out, elems)
	return out
}

func (h *lcdPass) OnCycleMember(member, rep int) {
	h.members = append(h.members, member)
}

func (h *lcdPass) OnCycleRep(rep int) {
	for _, m := range h.members {
		h.collapses = append(h.collapses, collapsePair{keep: NodeID(rep), drop: NodeID(m)})
	}
	h.members = nil
}

// workSet is a deduplicating worklist over node indices, backed by a
// PtsSet so re-adding an already-queued node is a no-op and nodes
// drain in ascending order.
type workSet struct {
	set PtsSet
}

func newWorkSet() *workSet { return &workSet{} }

func (w *workSet) add(n NodeID) { w.set.Insert(n) }

func (w *workSet) isEmpty() bool { return w.set.IsEmpty() }

func (w *workSet) takeMin() (NodeID, bool) { return w.set.TakeMin() }
