// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package andersen

import "fmt"

// NodeID denotes a node by its dense index into a NodeFactory's node
// table. Small integers are used rather than pointers because they
// are compact, they sort, and they index directly into sparse bitsets
// and slices, following go_tools/go/pointer/analysis.go's nodeid.
type NodeID uint32

const InvalidNode NodeID = ^NodeID(0)

// Kind distinguishes a pointer-valued program variable from an
// abstract memory object.
type Kind uint8

const (
	// Value is a pointer-holding variable.
	Value Kind = iota
	// Object is an abstract memory cell.
	Object
)

func (k Kind) String() string {
	if k == Object {
		return "OBJECT"
	}
	return "VALUE"
}

// Reserved node indices, fixed at NodeFactory construction, in this
// order.
const (
	UniversalPtr NodeID = iota // VALUE: unknown pointer
	UniversalObj                // OBJECT: catch-all target
	NullPtr                     // VALUE: the null constant
	NullObj                     // OBJECT: the null constant's target
	numReserved
)

// node is one entry in a NodeFactory's dense table.
type node struct {
	kind Kind
	ref  any // opaque back-reference to the IR entity, or nil

	// isGlobal and isConstant only matter for OBJECT nodes and are
	// used by PointsToIndex.PointsToConstantMemory.
	isGlobal   bool
	isConstant bool
}

// NodeFactory is the dense index allocator for value/object/return/
// vararg nodes. It owns the union-find merge targets and the four
// reserved special nodes.
//
// NodeFactory is not safe for concurrent use: the frontend, HVN and
// the solver all mutate it, so callers must confine a given
// NodeFactory to a single analysis goroutine at a time.
type NodeFactory struct {
	nodes       []node
	mergeTarget []NodeID

	valueIndex  map[any]NodeID
	objectIndex map[any]NodeID
	returnIndex map[any]NodeID
	varargIndex map[any]NodeID
}

// NewNodeFactory creates a NodeFactory populated with the four
// reserved nodes, in the order UNIVERSAL_PTR, UNIVERSAL_OBJ, NULL_PTR,
// NULL_OBJ.
func NewNodeFactory() *NodeFactory {
	nf := &NodeFactory{
		valueIndex:  make(map[any]NodeID),
		objectIndex: make(map[any]NodeID),
		returnIndex: make(map[any]NodeID),
		varargIndex: make(map[any]NodeID),
	}
	nf.nodes = append(nf.nodes,
		node{kind: Value},  // UniversalPtr
		node{kind: Object}, // UniversalObj
		node{kind: Value},  // NullPtr
		node{kind: Object}, // NullObj
	)
	nf.mergeTarget = append(nf.mergeTarget, 0, 1, 2, 3)
	return nf
}

// NumNodes returns the number of nodes created so far, including
// reserved nodes.
func (nf *NodeFactory) NumNodes() int { return len(nf.nodes) }

func (nf *NodeFactory) isReserved(n NodeID) bool { return n < numReserved }

func (nf *NodeFactory) newNode(k Kind, ref any) NodeID {
	id := NodeID(len(nf.nodes))
	nf.nodes = append(nf.nodes, node{kind: k, ref: ref})
	nf.mergeTarget = append(nf.mergeTarget, id)
	return id
}

// CreateValue allocates a fresh VALUE node, optionally indexed by ref
// so later lookups via ValueNodeFor(ref) resolve to it.
//
// It panics if ref is non-nil and already has a value node: creating
// a second value node for the same IR ref is a frontend bug, not a
// condition to recover from.
func (nf *NodeFactory) CreateValue(ref any) NodeID {
	if ref != nil {
		if _, ok := nf.valueIndex[ref]; ok {
			panic(fmt.Sprintf("andersen: duplicate value node for %v", ref))
		}
	}
	id := nf.newNode(Value, ref)
	if ref != nil {
		nf.valueIndex[ref] = id
	}
	return id
}

// CreateObject allocates a fresh OBJECT node, optionally indexed by ref.
func (nf *NodeFactory) CreateObject(ref any) NodeID {
	if ref != nil {
		if _, ok := nf.objectIndex[ref]; ok {
			panic(fmt.Sprintf("andersen: duplicate object node for %v", ref))
		}
	}
	id := nf.newNode(Object, ref)
	if ref != nil {
		nf.objectIndex[ref] = id
	}
	return id
}

// MarkGlobal records that the given OBJECT node denotes global memory,
// for PointsToIndex.PointsToConstantMemory.
func (nf *NodeFactory) MarkGlobal(obj NodeID, constant bool) {
	nf.nodes[obj].isGlobal = true
	nf.nodes[obj].isConstant = constant
}

// CreateReturn allocates the VALUE node representing a function's
// pointer-typed result. One per pointer-returning function.
func (nf *NodeFactory) CreateReturn(fnRef any) NodeID {
	if _, ok := nf.returnIndex[fnRef]; ok {
		panic(fmt.Sprintf("andersen: duplicate return node for %v", fnRef))
	}
	id := nf.newNode(Value, fnRef)
	nf.returnIndex[fnRef] = id
	return id
}

// CreateVararg allocates the OBJECT node representing the merged
// pointer-typed varargs of a variadic function.
func (nf *NodeFactory) CreateVararg(fnRef any) NodeID {
	if _, ok := nf.varargIndex[fnRef]; ok {
		panic(fmt.Sprintf("andersen: duplicate vararg node for %v", fnRef))
	}
	id := nf.newNode(Object, fnRef)
	nf.varargIndex[fnRef] = id
	return id
}

// ValueNodeFor returns the value-node for ref, or (InvalidNode, false).
func (nf *NodeFactory) ValueNodeFor(ref any) (NodeID, bool) {
	id, ok := nf.valueIndex[ref]
	if !ok {
		return InvalidNode, false
	}
	return id, true
}

// ObjectNodeFor returns the object-node for ref, or (InvalidNode, false).
func (nf *NodeFactory) ObjectNodeFor(ref any) (NodeID, bool) {
	id, ok := nf.objectIndex[ref]
	if !ok {
		return InvalidNode, false
	}
	return id, true
}

// ReturnNodeFor returns the return-value node for fnRef, or (InvalidNode, false).
func (nf *NodeFactory) ReturnNodeFor(fnRef any) (NodeID, bool) {
	id, ok := nf.returnIndex[fnRef]
	if !ok {
		return InvalidNode, false
	}
	return id, true
}

// VarargNodeFor returns the vararg node for fnRef, or (InvalidNode, false).
func (nf *NodeFactory) VarargNodeFor(fnRef any) (NodeID, bool) {
	id, ok := nf.varargIndex[fnRef]
	if !ok {
		return InvalidNode, false
	}
	return id, true
}

func (nf *NodeFactory) Ref(n NodeID) any { return nf.nodes[n].ref }

func (nf *NodeFactory) KindOf(n NodeID) Kind { return nf.nodes[n].kind }

// FindRep returns the representative of n's equivalence class under
// union-find, performing path compression.
func (nf *NodeFactory) FindRep(n NodeID) NodeID {
	root := n
	for nf.mergeTarget[root] != root {
		root = nf.mergeTarget[root]
	}
	for nf.mergeTarget[n] != root {
		next := nf.mergeTarget[n]
		nf.mergeTarget[n] = root
		n = next
	}
	return root
}

// Merge sets drop's merge target to keep, so FindRep(drop) == FindRep(keep)
// from now on. Callers are responsible for transferring drop's outgoing
// data (edges, pts sets) to keep; Merge only updates the union-find
// forest.
//
// Merge panics if drop is a reserved node (reserved nodes must remain
// roots) or if keep and drop are distinct reserved nodes.
func (nf *NodeFactory) Merge(keep, drop NodeID) {
	if nf.isReserved(drop) {
		panic(fmt.Sprintf("andersen: cannot merge away reserved node n%d", drop))
	}
	dropRoot := nf.FindRep(drop)
	keepRoot := nf.FindRep(keep)
	if dropRoot == keepRoot {
		return
	}
	if nf.isReserved(dropRoot) {
		panic(fmt.Sprintf("andersen: cannot merge away reserved node n%d", dropRoot))
	}
	nf.mergeTarget[dropRoot] = keepRoot
}
