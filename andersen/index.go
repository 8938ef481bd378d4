// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package andersen

// This file implements PointsToIndex, the read-only query surface
// returned by Solver.Solve. Grounded on
// go_tools/go/pointer/api.go's Result/Pointer query methods, adapted
// to this package's node-index representation rather than ssa.Value.

import (
	"sort"
	"strings"
)

// PointsToIndex answers points-to and alias queries over a solved
// analysis. It is safe for concurrent read-only use once no analysis
// is running on the same NodeFactory.
type PointsToIndex struct {
	nf  *NodeFactory
	pts []PtsSet
}

// AliasResult classifies the relation between two pointers.
type AliasResult uint8

const (
	// NoAlias means the two pointers cannot address the same object.
	NoAlias AliasResult = iota
	// MayAlias means the two pointers may address the same object.
	MayAlias
	// MustAlias means the two pointers address exactly the same object.
	MustAlias
)

func (r AliasResult) String() string {
	switch r {
	case NoAlias:
		return "NO"
	case MayAlias:
		return "MAY"
	case MustAlias:
		return "MUST"
	default:
		return "?"
	}
}

// PointsTo returns the set of abstract objects n may point to, empty
// if n's points-to set is empty or n was created after the solve. An
// index the NodeFactory never allocated is a programmer error and
// panics. Elements are original
// object indices (never representatives: object identity is by
// original index). The returned slice is sorted and owned by the
// caller.
func (idx *PointsToIndex) PointsTo(n NodeID) []NodeID {
	rep := idx.nf.FindRep(n)
	if int(rep) >= len(idx.pts) {
		return nil
	}
	var space [32]int
	elems := idx.pts[rep].AppendTo(space[:0])
	out := make([]NodeID, len(elems))
	for i, e := range elems {
		out[i] = NodeID(e)
	}
	return out
}

// PointsToRef answers the frontend-facing query: the opaque
// back-references of every object ref's pointer may address, skipping
// the null object. The second result is false when ref has no value
// node or resolves to the universal pointer, i.e. when nothing useful
// is known.
func (idx *PointsToIndex) PointsToRef(ref any) ([]any, bool) {
	v, ok := idx.nf.ValueNodeFor(ref)
	if !ok || v == UniversalPtr {
		return nil, false
	}
	rep := idx.nf.FindRep(v)
	if rep == UniversalPtr || int(rep) >= len(idx.pts) {
		return nil, false
	}
	var out []any
	idx.pts[rep].Each(func(o NodeID) {
		if o == NullObj {
			return
		}
		out = append(out, idx.nf.Ref(o))
	})
	return out, true
}

// Alias reports whether a and b may address a common object.
//
// Two pointers must-alias when they were merged to one representative
// or both hold exactly the same single object; a pointer about which
// nothing is known (empty set) may alias anything; a pointer holding
// only null aliases nothing.
func (idx *PointsToIndex) Alias(a, b NodeID) AliasResult {
	ra, rb := idx.nf.FindRep(a), idx.nf.FindRep(b)
	if int(ra) >= len(idx.pts) || int(rb) >= len(idx.pts) {
		return MayAlias
	}
	if ra == rb {
		return MustAlias
	}
	pa, pb := &idx.pts[ra], &idx.pts[rb]
	if pa.IsEmpty() || pb.IsEmpty() {
		return MayAlias
	}
	if isNullSingleton(pa) || isNullSingleton(pb) {
		return NoAlias
	}
	if pa.Len() == 1 && pb.Len() == 1 && pa.Equals(pb) {
		return MustAlias
	}
	var xa, xb PtsSet
	xa.Copy(pa)
	xa.Remove(NullObj)
	xb.Copy(pb)
	xb.Remove(NullObj)
	if xa.Intersects(&xb) {
		return MayAlias
	}
	return NoAlias
}

func isNullSingleton(s *PtsSet) bool {
	return s.Len() == 1 && s.Has(NullObj)
}

// PointsToConstantMemory reports whether n can only address memory
// that is never written: every object in pts(n) must be a
// known-constant global or, when includeLocals is set, possibly a
// local (stack or heap) object. The null object is disregarded; the
// universal object fails the test, since unknown memory is never
// known-constant. A pointer with an empty points-to set trivially
// passes.
func (idx *PointsToIndex) PointsToConstantMemory(n NodeID, includeLocals bool) bool {
	rep := idx.nf.FindRep(n)
	if int(rep) >= len(idx.pts) {
		return false
	}
	ok := true
	idx.pts[rep].Each(func(o NodeID) {
		switch o {
		case NullObj:
			return
		case UniversalObj:
			ok = false
			return
		}
		nd := idx.nf.nodes[o]
		if nd.isGlobal {
			if !nd.isConstant {
				ok = false
			}
		} else if !includeLocals {
			ok = false
		}
	})
	return ok
}

// AllAllocationSites returns every OBJECT node reachable from some
// pointer's solved points-to set, excluding the null and universal
// objects. The result is sorted by node index.
func (idx *PointsToIndex) AllAllocationSites() []NodeID {
	seen := make(map[NodeID]bool)
	for n := range idx.pts {
		if idx.nf.FindRep(NodeID(n)) != NodeID(n) {
			continue
		}
		idx.pts[n].Each(func(o NodeID) {
			if o == NullObj || o == UniversalObj || idx.nf.KindOf(o) != Object {
				return
			}
			seen[o] = true
		})
	}
	out := make([]NodeID, 0, len(seen))
	for o := range seen {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dump renders every non-empty representative's points-to set as one
// line of space-separated node indices, the node first and its
// targets after, sorted by node index. Used by cmd/ptago's -dump flag
// and by tests asserting on a full-result snapshot.
func (idx *PointsToIndex) Dump() string {
	var reps []int
	for n := range idx.pts {
		if idx.nf.FindRep(NodeID(n)) == NodeID(n) && !idx.pts[n].IsEmpty() {
			reps = append(reps, n)
		}
	}
	sort.Ints(reps)

	var sb strings.Builder
	for _, n := range reps {
		sb.WriteString("n" + itoa(NodeID(n)))
		idx.pts[n].Each(func(o NodeID) {
			sb.WriteString(" n" + itoa(o))
		})
		sb.WriteByte('\n')
	}
	return sb.String()
}
