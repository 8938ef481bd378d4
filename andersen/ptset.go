// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package andersen

// This file implements PtsSet, a sparse set of node indices. It is a
// thin wrapper over golang.org/x/tools/container/intsets.Sparse, the
// same sparse-bitset dependency go_tools/go/pointer wraps for its own
// nodeset type (see intsets.Sparse in api.go, gen.go). All operations
// are proportional to the number of set bits, not to the index range.

import (
	"bytes"
	"fmt"

	"golang.org/x/tools/container/intsets"
)

// PtsSet is an ordered set of node indices.
type PtsSet struct {
	bits intsets.Sparse
}

// Has reports whether i is a member.
func (s *PtsSet) Has(i NodeID) bool { return s.bits.Has(int(i)) }

// Insert adds i and reports whether the set grew.
func (s *PtsSet) Insert(i NodeID) bool { return s.bits.Insert(int(i)) }

// Remove discards i and reports whether it was present.
func (s *PtsSet) Remove(i NodeID) bool { return s.bits.Remove(int(i)) }

// UnionWith merges other into s and reports whether s grew. It is
// idempotent: once other has been merged in, a repeated
// UnionWith(other) is a no-op returning false.
func (s *PtsSet) UnionWith(other *PtsSet) bool { return s.bits.UnionWith(&other.bits) }

// Contains reports whether s is a superset of other.
func (s *PtsSet) Contains(other *PtsSet) bool { return other.bits.SubsetOf(&s.bits) }

// Intersects reports whether s and other share any element.
func (s *PtsSet) Intersects(other *PtsSet) bool { return s.bits.Intersects(&other.bits) }

// Equals reports value equality.
func (s *PtsSet) Equals(other *PtsSet) bool { return s.bits.Equals(&other.bits) }

// Clear empties the set.
func (s *PtsSet) Clear() { s.bits.Clear() }

// Len returns the number of elements. Not a constant-time operation.
func (s *PtsSet) Len() int { return s.bits.Len() }

// IsEmpty reports whether the set has no elements. Prefer this over
// Len() == 0: it is the efficient test.
func (s *PtsSet) IsEmpty() bool { return s.bits.IsEmpty() }

// Copy replaces s's contents with a copy of other's.
func (s *PtsSet) Copy(other *PtsSet) { s.bits.Copy(&other.bits) }

// Difference sets s = x - y.
func (s *PtsSet) Difference(x, y *PtsSet) { s.bits.Difference(&x.bits, &y.bits) }

// AppendTo appends the set's elements, in ascending order, to slice
// and returns the extended slice. Used to take a stable snapshot
// before an inner loop that may mutate the set.
func (s *PtsSet) AppendTo(slice []int) []int { return s.bits.AppendTo(slice) }

// TakeMin removes and returns the minimum element, reporting whether
// the set was non-empty. Used by the solver's worklist.
func (s *PtsSet) TakeMin() (NodeID, bool) {
	var x int
	if !s.bits.TakeMin(&x) {
		return 0, false
	}
	return NodeID(x), true
}

// Each calls f for every element, in ascending order.
func (s *PtsSet) Each(f func(NodeID)) {
	var space [64]int
	for _, x := range s.AppendTo(space[:0]) {
		f(NodeID(x))
	}
}

func (s *PtsSet) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var space [64]int
	for i, x := range s.AppendTo(space[:0]) {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "n%d", x)
	}
	buf.WriteByte('}')
	return buf.String()
}
