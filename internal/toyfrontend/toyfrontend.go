// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package toyfrontend translates a small hand-rolled statement IR
// into andersen constraints. It exists to drive the engine end to end
// the way original_source/unittest/AndersTest.cpp drives the original
// C++ engine with directly-built constraint sets. It is not a real
// compiler frontend and never lowers an actual source language.
package toyfrontend

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/o2lab/ptago/andersen"
)

// Var names a toy-program variable. Distinct Vars with the same name
// are distinct variables: callers mint fresh Vars per declaration.
type Var struct {
	Name string
}

func (*Var) IRValue() {}

// Fn names a toy-program function, for CreateReturn/CreateVararg
// indexing.
type Fn struct {
	Name     string
	Variadic bool
}

func (*Fn) IRFunc() {}

// Stmt is one statement in a toy function body. Exactly one of the
// typed fields is meaningful, selected by Op.
type Stmt struct {
	Op Op

	// Assign (A = B), AddrOf (A = &B), Load (A = *B), Store (*A = B).
	A, B *Var

	// Call is populated when Op == OpCall.
	Call *CallStmt
}

// Op selects a Stmt's shape.
type Op uint8

const (
	OpAssign Op = iota
	OpAddrOf
	OpLoad
	OpStore
	OpCall
)

// CallStmt models a call to an external function: Result (optional)
// receives the call's pointer-typed return value, Args are the
// pointer-typed actual arguments.
type CallStmt struct {
	Callee string
	Result *Var // nil if the call's result is unused or non-pointer
	Args   []*Var
}

// Program is a flat list of toy statements sharing one variable
// namespace, e.g. the body of a single function plus its globals.
type Program struct {
	Func    *Fn
	Globals []*Var
	Stmts   []Stmt
}

// Translator walks a Program and emits the corresponding constraints.
// Every *Var it encounters gets exactly one VALUE node and, if it is
// ever the target of AddrOf, exactly one OBJECT node (its "address").
type Translator struct {
	nf     *andersen.NodeFactory
	cs     *andersen.ConstraintSet
	oracle andersen.ExternalCallOracle
	log    *logrus.Entry

	objOf   map[*Var]bool
	curFunc *Fn // set for the duration of Translate, for translateCall
}

// New creates a Translator over a fresh NodeFactory and ConstraintSet.
// oracle classifies external calls; pass
// andersen.NewDefaultExternalCallOracle() for the common case.
func New(oracle andersen.ExternalCallOracle) *Translator {
	return &Translator{
		nf:     andersen.NewNodeFactory(),
		cs:     andersen.NewConstraintSet(),
		oracle: oracle,
		log:    logrus.WithField("component", "toyfrontend"),
		objOf:  make(map[*Var]bool),
	}
}

// NodeFactory returns the translator's NodeFactory, for handing to
// andersen.NewSolver once Translate has run.
func (t *Translator) NodeFactory() *andersen.NodeFactory { return t.nf }

// ConstraintSet returns the translator's accumulated ConstraintSet.
func (t *Translator) ConstraintSet() *andersen.ConstraintSet { return t.cs }

// ValueNode returns v's VALUE node, creating one on first use.
func (t *Translator) ValueNode(v *Var) andersen.NodeID {
	if v == nil {
		panic("toyfrontend: nil Var")
	}
	if id, ok := t.nf.ValueNodeFor(v); ok {
		return id
	}
	return t.nf.CreateValue(v)
}

// objectNode returns v's OBJECT node (the thing &v denotes), creating
// one on first use.
func (t *Translator) objectNode(v *Var) andersen.NodeID {
	if id, ok := t.nf.ObjectNodeFor(v); ok {
		return id
	}
	t.objOf[v] = true
	return t.nf.CreateObject(v)
}

// Translate emits constraints for every statement in p, in order, and
// for p.Globals marks their object nodes as global, non-constant
// memory: go_tools/go/pointer/gen.go reserves the constant bit for
// string literals and other read-only data, which this toy IR has no
// way to declare, so every Global here is ordinary mutable storage.
func (t *Translator) Translate(p *Program) {
	t.curFunc = p.Func
	for _, g := range p.Globals {
		obj := t.objectNode(g)
		t.nf.MarkGlobal(obj, false)
	}

	for i, s := range p.Stmts {
		t.translateStmt(s)
		t.log.WithField("stmt", i).Debug("translated")
	}
}

func (t *Translator) translateStmt(s Stmt) {
	switch s.Op {
	case OpAssign:
		t.cs.AddCopy(t.ValueNode(s.A), t.ValueNode(s.B))
	case OpAddrOf:
		t.cs.AddAddrOf(t.ValueNode(s.A), t.objectNode(s.B))
	case OpLoad:
		t.cs.AddLoad(t.ValueNode(s.A), t.ValueNode(s.B))
	case OpStore:
		t.cs.AddStore(t.ValueNode(s.A), t.ValueNode(s.B))
	case OpCall:
		t.translateCall(s.Call)
	default:
		panic(fmt.Sprintf("toyfrontend: unknown Op %d", s.Op))
	}
}

func (t *Translator) translateCall(c *CallStmt) {
	call := andersen.ExternalCall{Callee: c.Callee, Result: andersen.InvalidNode, EnclosingFunc: t.curFunc}
	for _, a := range c.Args {
		call.Args = append(call.Args, t.ValueNode(a))
	}
	if c.Result != nil {
		call.Result = t.ValueNode(c.Result)
	}
	andersen.EmitExternalCallConstraints(t.nf, t.cs, t.oracle, call)
}
