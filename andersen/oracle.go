// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package andersen

// This file defines the external-call oracle: the frontend
// collaborator that tells constraint generation how to model a call
// to a function whose body is unavailable (an external/library
// call). Grounded on go_tools/go/pointer/gen.go's genBuiltinCall /
// gen.go external-function special-casing, which dispatches by
// function identity into a handful of hand-modeled effects rather
// than analyzing bodies that don't exist.

// ExternalEffect classifies how an external call affects its
// arguments and result, for the handful of modelable shapes.
type ExternalEffect uint8

const (
	// EffectNoop makes no pointer-relevant change: the call reads
	// scalars only, e.g. strlen.
	EffectNoop ExternalEffect = iota
	// EffectAllocates returns a pointer to a fresh, unaliased object,
	// e.g. malloc.
	EffectAllocates
	// EffectReturnsArg makes the result an alias of one argument,
	// e.g. `char *strcpy(char *dst, const char *src)` returning dst.
	EffectReturnsArg
	// EffectAllocatesIntoArg stores a pointer to a fresh object through
	// its first argument rather than returning it, e.g. posix_memalign.
	EffectAllocatesIntoArg
	// EffectMemcpyLike copies the pointees of one argument into
	// another without aliasing the pointers themselves, e.g. memcpy.
	EffectMemcpyLike
	// EffectVarargStart captures the function's merged vararg object
	// into a VALUE argument, e.g. va_start.
	EffectVarargStart
	// EffectUnrecognized is the conservative fallback: the call may do
	// anything, so every pointer-typed argument must be treated as
	// escaping to (and potentially aliasing) the universal object.
	EffectUnrecognized
)

// ExternalCall describes one call site to a function with no
// analyzable body.
type ExternalCall struct {
	// Callee identifies the external function, e.g. by linker symbol
	// name; opaque to this package.
	Callee string
	// Args are the VALUE nodes of the call's pointer-typed arguments,
	// in declaration order.
	Args []NodeID
	// Result is the VALUE node of the call's pointer-typed result, or
	// InvalidNode if the result is not pointer-typed or the call is
	// used as a statement.
	Result NodeID
	// ArgIndex is not read by DefaultExternalCallOracle or
	// EmitExternalCallConstraints: for EffectReturnsArg the aliased
	// argument's index is the one returned by Classify.
	ArgIndex int
	// EnclosingFunc identifies the function containing this call site,
	// the same ref passed to NodeFactory.CreateVararg/VarargNodeFor for
	// that function. Only consulted for EffectVarargStart, to find the
	// merged vararg object the va_list argument should alias.
	EnclosingFunc any
}

// ExternalCallOracle classifies calls to unanalyzable functions so
// the frontend can emit the right constraints for them instead of
// silently dropping their pointer effects.
type ExternalCallOracle interface {
	// Classify returns the effect modeling call, and for
	// EffectReturnsArg the index into call.Args that the result
	// aliases.
	Classify(call ExternalCall) (effect ExternalEffect, argIndex int)
}

// DefaultExternalCallOracle recognizes a small, fixed table of
// well-known C-library-shaped external functions by name, falling
// back to EffectUnrecognized for anything else. Frontends with richer
// knowledge (e.g. an IR that carries external function signatures)
// should supply their own ExternalCallOracle instead.
type DefaultExternalCallOracle struct {
	// Noop, Allocating, Memcpy and VarargStart name functions with the
	// corresponding effect; ReturnsArg maps a function name to the
	// index of the argument its result aliases.
	Noop            map[string]bool
	Allocating      map[string]bool
	AllocatingToArg map[string]bool
	Memcpy          map[string]bool
	VarargStart     map[string]bool
	ReturnsArg      map[string]int
}

// NewDefaultExternalCallOracle returns an oracle pre-populated with
// the common libc-shaped entries original_source/lib names when
// special-casing external calls (strlen/strcmp as no-ops, malloc/
// calloc as allocators, strcpy/strcat as returns-arg-0, memcpy/memmove
// as memcpy-like, va_start as vararg-start).
func NewDefaultExternalCallOracle() *DefaultExternalCallOracle {
	return &DefaultExternalCallOracle{
		Noop: map[string]bool{
			"strlen": true, "strcmp": true, "strncmp": true,
			"atoi": true, "atol": true, "printf": true, "fprintf": true,
		},
		Allocating: map[string]bool{
			"malloc": true, "calloc": true, "realloc": true, "strdup": true,
			"aligned_alloc": true, "memalign": true, "valloc": true,
		},
		AllocatingToArg: map[string]bool{
			"posix_memalign": true,
		},
		Memcpy: map[string]bool{
			"memcpy": true, "memmove": true, "bcopy": true,
		},
		VarargStart: map[string]bool{
			"va_start": true,
		},
		ReturnsArg: map[string]int{
			"strcpy": 0, "strcat": 0, "strncpy": 0, "strncat": 0,
			"memset": 0,
		},
	}
}

func (o *DefaultExternalCallOracle) Classify(call ExternalCall) (ExternalEffect, int) {
	if o.Noop[call.Callee] {
		return EffectNoop, 0
	}
	if o.Allocating[call.Callee] {
		return EffectAllocates, 0
	}
	if o.AllocatingToArg[call.Callee] {
		return EffectAllocatesIntoArg, 0
	}
	if o.Memcpy[call.Callee] {
		return EffectMemcpyLike, 0
	}
	if o.VarargStart[call.Callee] {
		return EffectVarargStart, 0
	}
	if idx, ok := o.ReturnsArg[call.Callee]; ok {
		return EffectReturnsArg, idx
	}
	return EffectUnrecognized, 0
}

// EmitExternalCallConstraints translates the oracle's classification
// of call into constraints against cs, creating a fresh object node
// via nf for EffectAllocates. It is the frontend-facing entry point:
// toyfrontend and any other caller should route every unanalyzable
// call through this function rather than re-deriving the rules.
func EmitExternalCallConstraints(nf *NodeFactory, cs *ConstraintSet, oracle ExternalCallOracle, call ExternalCall) {
	effect, argIndex := oracle.Classify(call)
	switch effect {
	case EffectNoop:
		// No pointer-relevant effect: emit nothing.
	case EffectAllocates:
		if call.Result != InvalidNode {
			obj := nf.CreateObject(nil)
			cs.AddAddrOf(call.Result, obj)
		}
	case EffectAllocatesIntoArg:
		if len(call.Args) >= 1 {
			obj := nf.CreateObject(nil)
			tmp := nf.CreateValue(nil)
			cs.AddAddrOf(tmp, obj)
			cs.AddStore(call.Args[0], tmp)
		}
	case EffectReturnsArg:
		if call.Result != InvalidNode && argIndex >= 0 && argIndex < len(call.Args) {
			cs.AddCopy(call.Result, call.Args[argIndex])
		}
	case EffectMemcpyLike:
		if len(call.Args) >= 2 {
			dst, src := call.Args[0], call.Args[1]
			tmp := nf.CreateValue(nil)
			cs.AddLoad(tmp, src)
			cs.AddStore(dst, tmp)
			if call.Result != InvalidNode {
				cs.AddCopy(call.Result, dst)
			}
		}
	case EffectVarargStart:
		if len(call.Args) >= 1 {
			vararg, ok := nf.VarargNodeFor(call.EnclosingFunc)
			if !ok {
				vararg = nf.CreateVararg(call.EnclosingFunc)
			}
			cs.AddAddrOf(call.Args[0], vararg)
		}
	case EffectUnrecognized:
		for _, a := range call.Args {
			cs.AddCopy(a, UniversalPtr)
		}
		if call.Result != InvalidNode {
			cs.AddCopy(call.Result, UniversalPtr)
		}
	}
}
