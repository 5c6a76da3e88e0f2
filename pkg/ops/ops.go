// Package ops catalogs the concrete bit-vector operations under
// evaluation, together with a small set of hand-written KnownBits
// reference transfer functions used as a known-good baseline and as the
// reference (and candidate) functions evalctl eval scores. The catalog
// mirrors the named Fn table the original engine builds in its
// llvmKBs.cpp (one entry per operation: a name, a concrete function, an
// optional precondition, and a transfer function), reduced here to the
// concrete side and the precondition; Registry entries carry no transfer
// function.
package ops

import (
	"fmt"

	"github.com/Hatsunespica/xdsl-smt/pkg/bv"
	"github.com/Hatsunespica/xdsl-smt/pkg/oracle"
)

// Op names an operation this harness knows how to evaluate concretely.
// Names are the values evalctl's --op flag accepts.
type Op struct {
	Name    string
	Arity   int
	Concrete oracle.ConcreteFn
	Pre      oracle.Precondition
}

// Registry is the fixed catalog of known operations, keyed by name.
var Registry = map[string]Op{
	"and": {Name: "and", Arity: 2, Concrete: func(a []bv.BV) bv.BV { return a[0].And(a[1]) }},
	"or":  {Name: "or", Arity: 2, Concrete: func(a []bv.BV) bv.BV { return a[0].Or(a[1]) }},
	"xor": {Name: "xor", Arity: 2, Concrete: func(a []bv.BV) bv.BV { return a[0].Xor(a[1]) }},
	"add": {Name: "add", Arity: 2, Concrete: func(a []bv.BV) bv.BV { return a[0].Add(a[1]) }},
	"add nsw": {
		Name: "add nsw", Arity: 2,
		Concrete: func(a []bv.BV) bv.BV { return a[0].Add(a[1]) },
		Pre: func(a []bv.BV) bool { _, ov := a[0].AddOvS(a[1]); return !ov },
	},
	"add nuw": {
		Name: "add nuw", Arity: 2,
		Concrete: func(a []bv.BV) bv.BV { return a[0].Add(a[1]) },
		Pre: func(a []bv.BV) bool { _, ov := a[0].AddOvU(a[1]); return !ov },
	},
	"sub": {Name: "sub", Arity: 2, Concrete: func(a []bv.BV) bv.BV { return a[0].Sub(a[1]) }},
	"mul": {Name: "mul", Arity: 2, Concrete: func(a []bv.BV) bv.BV { return a[0].Mul(a[1]) }},
	"udiv": {
		Name: "udiv", Arity: 2,
		Concrete: func(a []bv.BV) bv.BV { return a[0].UDiv(a[1]) },
		Pre:      func(a []bv.BV) bool { return !a[1].IsZero() },
	},
	"sdiv": {
		Name: "sdiv", Arity: 2,
		Concrete: func(a []bv.BV) bv.BV { return a[0].SDiv(a[1]) },
		Pre: func(a []bv.BV) bool {
			if a[1].IsZero() {
				return false
			}
			_, ov := a[0].SDivOv(a[1])
			return !ov
		},
	},
	"lshr": {
		Name: "lshr", Arity: 2,
		Concrete: func(a []bv.BV) bv.BV { return a[0].Lshr(int(a[1].Uint64())) },
		Pre:      func(a []bv.BV) bool { return a[1].Uint64() < uint64(a[0].Width()) },
	},
	"ashr": {
		Name: "ashr", Arity: 2,
		Concrete: func(a []bv.BV) bv.BV { return a[0].Ashr(int(a[1].Uint64())) },
		Pre:      func(a []bv.BV) bool { return a[1].Uint64() < uint64(a[0].Width()) },
	},
	"shl": {
		Name: "shl", Arity: 2,
		Concrete: func(a []bv.BV) bv.BV { return a[0].Shl(int(a[1].Uint64())) },
		Pre:      func(a []bv.BV) bool { return a[1].Uint64() < uint64(a[0].Width()) },
	},
}

// Lookup returns the named operation, or an error if the catalog has no
// entry for it.
func Lookup(name string) (Op, error) {
	op, ok := Registry[name]
	if !ok {
		return Op{}, fmt.Errorf("ops: unknown operation %q", name)
	}
	return op, nil
}
