// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package andersen

// This file defines the four-variant constraint, grounded on
// awslabs-ar-go-tools/internal/pointer/constraint.go's constraint
// interface and on original_source/include/Constraint.h's single
// tagged-struct representation. We use the tagged-struct form: a
// constraint's three fields (kind, dst, src) are directly comparable,
// so a Go map keyed by Constraint gives us dedup for free, the way
// the struct's operator< gives the C++ version a total order for its
// std::set.

import (
	"sort"
	"strconv"
	"strings"
)

// ConstraintKind identifies which of the four constraint shapes a
// Constraint represents.
type ConstraintKind uint8

const (
	// AddrOf is `dst = &src`: pts(dst) ⊇ {src}.
	AddrOf ConstraintKind = iota
	// Copy is `dst = src`: pts(dst) ⊇ pts(src).
	Copy
	// Load is `dst = *src`: for each o ∈ pts(src), pts(dst) ⊇ pts(o).
	Load
	// Store is `*dst = src`: for each o ∈ pts(dst), pts(o) ⊇ pts(src).
	Store
)

func (k ConstraintKind) String() string {
	switch k {
	case AddrOf:
		return "addr_of"
	case Copy:
		return "copy"
	case Load:
		return "load"
	case Store:
		return "store"
	default:
		return "?"
	}
}

// Constraint is one subset-inclusion constraint. Two constraints are
// equal iff all three fields match.
type Constraint struct {
	Kind ConstraintKind
	Dst  NodeID
	Src  NodeID
}

func (c Constraint) less(o Constraint) bool {
	if c.Kind != o.Kind {
		return c.Kind < o.Kind
	}
	if c.Dst != o.Dst {
		return c.Dst < o.Dst
	}
	return c.Src < o.Src
}

func (c Constraint) String() string {
	switch c.Kind {
	case AddrOf:
		return "n" + itoa(c.Dst) + " = &n" + itoa(c.Src)
	case Copy:
		return "n" + itoa(c.Dst) + " = n" + itoa(c.Src)
	case Load:
		return "n" + itoa(c.Dst) + " = *n" + itoa(c.Src)
	case Store:
		return "*n" + itoa(c.Dst) + " = n" + itoa(c.Src)
	default:
		return "?"
	}
}

func itoa(n NodeID) string {
	return strconv.FormatUint(uint64(n), 10)
}

// ConstraintSet is a growable, deduplicated collection of constraints.
// During collection and HVN it behaves like a plain ordered vector;
// Add silently drops duplicates so the set stays uniqued throughout.
type ConstraintSet struct {
	items []Constraint
	seen  map[Constraint]bool
}

// NewConstraintSet returns an empty ConstraintSet.
func NewConstraintSet() *ConstraintSet {
	return &ConstraintSet{seen: make(map[Constraint]bool)}
}

// Add appends c if not already present, and reports whether it was added.
func (cs *ConstraintSet) Add(c Constraint) bool {
	if cs.seen[c] {
		return false
	}
	cs.seen[c] = true
	cs.items = append(cs.items, c)
	return true
}

// AddAddrOf, AddCopy, AddLoad, AddStore are convenience constructors
// for each constraint kind, used by frontends emitting constraints.
func (cs *ConstraintSet) AddAddrOf(dst, src NodeID) bool { return cs.Add(Constraint{AddrOf, dst, src}) }
func (cs *ConstraintSet) AddCopy(dst, src NodeID) bool   { return cs.Add(Constraint{Copy, dst, src}) }
func (cs *ConstraintSet) AddLoad(dst, src NodeID) bool   { return cs.Add(Constraint{Load, dst, src}) }
func (cs *ConstraintSet) AddStore(dst, src NodeID) bool  { return cs.Add(Constraint{Store, dst, src}) }

// Len returns the number of distinct constraints.
func (cs *ConstraintSet) Len() int { return len(cs.items) }

// All returns the constraints in insertion order. The returned slice
// aliases cs's storage and must not be mutated.
func (cs *ConstraintSet) All() []Constraint { return cs.items }

// Sort orders the constraints lexicographically by (kind, dst, src),
// giving a stable, deterministic iteration order for dumps and tests.
func (cs *ConstraintSet) Sort() {
	sort.Slice(cs.items, func(i, j int) bool { return cs.items[i].less(cs.items[j]) })
}

// Dump renders the constraints one per line as "kind dst src", in
// insertion order. Used by cmd/ptago's -dumpConstraints flag.
func (cs *ConstraintSet) Dump() string {
	var sb strings.Builder
	for _, c := range cs.items {
		sb.WriteString(c.Kind.String())
		sb.WriteString(" n" + itoa(c.Dst))
		sb.WriteString(" n" + itoa(c.Src))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Reset replaces the set's contents with exactly the given
// constraints, re-deduplicating them. Used by HVN to install its
// rewritten constraint set.
func (cs *ConstraintSet) Reset(items []Constraint) {
	cs.items = cs.items[:0]
	for k := range cs.seen {
		delete(cs.seen, k)
	}
	for _, c := range items {
		cs.Add(c)
	}
}
