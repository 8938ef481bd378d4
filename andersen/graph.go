// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package andersen

// This file defines two graph representations used by the solver:
//
//   - bitVectorGraph: a single-colored directed graph whose out-edges
//     are PtsSets, generic enough to serve both the HCD offline graph
//     and the HVN predecessor graph. Grounded on
//     original_source/lib/ConstraintSolving.cpp's
//     DenseMap<NodeIndex, SparseBitVector<>> offline graph.
//
//   - ConstraintGraph: the online, three-colored (copy/load/store)
//     graph the solver iterates during fixed-point propagation.
//     Grounded on original_source/lib/ConstraintSolving.cpp's
//     ConstraintGraph class and on go_tools/go/pointer/solve.go's
//     solverState.copyTo field.

// bitVectorGraph is a directed graph over a fixed range of integer
// node indices. Edges are collected as a PtsSet per source node, so
// insertion and successor iteration are both proportional to the
// number of edges actually present, never to the index range.
type bitVectorGraph struct {
	succ []PtsSet
}

func newBitVectorGraph(size int) *bitVectorGraph {
	return &bitVectorGraph{succ: make([]PtsSet, size)}
}

// InsertEdge adds from->to and reports whether it is new.
func (g *bitVectorGraph) InsertEdge(from, to int) bool {
	return g.succ[from].Insert(NodeID(to))
}

// Successors returns the out-edge set of n. The returned pointer
// aliases the graph's storage.
func (g *bitVectorGraph) Successors(n int) *PtsSet { return &g.succ[n] }

// MergeInto unions src's out-edges into dst's and clears src's.
func (g *bitVectorGraph) MergeInto(dst, src int) {
	g.succ[dst].UnionWith(&g.succ[src])
	g.succ[src].Clear()
}

// ConstraintGraph holds, per representative node, three disjoint
// out-edge sets. Iterating only the copy set during the hot
// propagation loop keeps that loop bounded by actual dataflow rather
// than by the number of indirect (load/store) constraints.
type ConstraintGraph struct {
	copyEdges  []PtsSet
	loadEdges  []PtsSet
	storeEdges []PtsSet
}

// NewConstraintGraph allocates a graph over node indices [0, n).
func NewConstraintGraph(n int) *ConstraintGraph {
	return &ConstraintGraph{
		copyEdges:  make([]PtsSet, n),
		loadEdges:  make([]PtsSet, n),
		storeEdges: make([]PtsSet, n),
	}
}

// InsertCopy adds a copy edge from->to (pts(to) ⊇ pts(from)) and
// reports whether it is new.
func (g *ConstraintGraph) InsertCopy(from, to NodeID) bool { return g.copyEdges[from].Insert(to) }

// InsertLoad attaches a load edge at ptr (the node whose pts drives
// resolution): when o ∈ pts(ptr), a copy edge o -> dst is materialized.
func (g *ConstraintGraph) InsertLoad(ptr, dst NodeID) bool { return g.loadEdges[ptr].Insert(dst) }

// InsertStore attaches a store edge at ptr: when o ∈ pts(ptr), a copy
// edge src -> o is materialized.
func (g *ConstraintGraph) InsertStore(ptr, src NodeID) bool { return g.storeEdges[ptr].Insert(src) }

func (g *ConstraintGraph) Copy(n NodeID) *PtsSet  { return &g.copyEdges[n] }
func (g *ConstraintGraph) Load(n NodeID) *PtsSet  { return &g.loadEdges[n] }
func (g *ConstraintGraph) Store(n NodeID) *PtsSet { return &g.storeEdges[n] }

// HasOutEdges reports whether n has any copy, load or store out-edge,
// i.e. whether n is a source in the constraint graph.
func (g *ConstraintGraph) HasOutEdges(n NodeID) bool {
	return !g.copyEdges[n].IsEmpty() || !g.loadEdges[n].IsEmpty() || !g.storeEdges[n].IsEmpty()
}

// DeleteNode clears all of n's out-edge sets, e.g. after n has been
// absorbed into another representative by cycle collapse.
func (g *ConstraintGraph) DeleteNode(n NodeID) {
	g.copyEdges[n].Clear()
	g.loadEdges[n].Clear()
	g.storeEdges[n].Clear()
}

// MergeInto appends all three of src's out-edge sets into dst's and
// erases src.
func (g *ConstraintGraph) MergeInto(dst, src NodeID) {
	g.copyEdges[dst].UnionWith(&g.copyEdges[src])
	g.loadEdges[dst].UnionWith(&g.loadEdges[src])
	g.storeEdges[dst].UnionWith(&g.storeEdges[src])
	g.DeleteNode(src)
}

// ReplaceCopyEdge retargets node's copy edge from oldChild to
// newChild, if present, and reports whether it did anything.
func (g *ConstraintGraph) ReplaceCopyEdge(node, oldChild, newChild NodeID) bool {
	return retarget(&g.copyEdges[node], oldChild, newChild)
}

// ReplaceLoadEdge retargets node's load edge analogously.
func (g *ConstraintGraph) ReplaceLoadEdge(node, oldChild, newChild NodeID) bool {
	return retarget(&g.loadEdges[node], oldChild, newChild)
}

// ReplaceStoreEdge retargets node's store edge analogously.
func (g *ConstraintGraph) ReplaceStoreEdge(node, oldChild, newChild NodeID) bool {
	return retarget(&g.storeEdges[node], oldChild, newChild)
}

func retarget(set *PtsSet, oldChild, newChild NodeID) bool {
	if oldChild == newChild || !set.Has(oldChild) {
		return false
	}
	set.Remove(oldChild)
	set.Insert(newChild)
	return true
}
