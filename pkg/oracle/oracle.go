// Package oracle computes the best (most precise) abstract value
// representable for a concrete operation applied across a tuple of
// abstract inputs — the ground truth that transfer functions under
// evaluation are scored against.
//
// Two strategies are offered, mirroring the original engine's EnumEval:
// Best walks every concrete value in each input exactly (only practical
// at low bit-widths, where the lattice itself is enumerable), and
// BestSampled approximates the same join with a fixed number of randomly
// drawn concrete samples per input, for bit-widths where exhaustive
// concretization would never finish.
package oracle

import (
	"math/rand/v2"

	"github.com/Hatsunespica/xdsl-smt/pkg/bv"
	"github.com/Hatsunespica/xdsl-smt/pkg/domain"
)

// ConcreteFn evaluates an operation over a tuple of concrete operands.
type ConcreteFn func(args []bv.BV) bv.BV

// Precondition reports whether a tuple of concrete operands is in the
// operation's domain (e.g. "no signed overflow" for add nsw). A nil
// Precondition always holds.
type Precondition func(args []bv.BV) bool

// Best returns the join of fn(args) over every concrete tuple drawn from
// the Cartesian product of inputs[i].Concretize(), restricted to tuples
// that satisfy pre. If no tuple satisfies pre, the result is bottom: the
// operation is undefined on every value the inputs could represent.
func Best[D domain.Value[D]](ops domain.Ops[D], fn ConcreteFn, pre Precondition, inputs []D) D {
	width := 0
	if len(inputs) > 0 {
		width = inputs[0].Width()
	}
	acc := ops.Bottom(width)
	args := make([]bv.BV, len(inputs))
	var rec func(i int) bool
	rec = func(i int) bool {
		if i == len(inputs) {
			if pre != nil && !pre(args) {
				return true
			}
			out := ops.FromConcrete(fn(args))
			acc = acc.Join(out)
			return true
		}
		for v := range inputs[i].Concretize() {
			args[i] = v
			if !rec(i + 1) {
				return false
			}
		}
		return true
	}
	rec(0)
	return acc
}

// BestSampled approximates Best using at most k random concrete tuples
// per input instead of full concretization, for inputs wide enough that
// exhaustive enumeration is infeasible. Each sample is drawn by rejection:
// a uniformly random bit-vector of the input's width is accepted once
// it's confirmed to lie inside the input's concrete set.
func BestSampled[D domain.Value[D]](ops domain.Ops[D], fn ConcreteFn, pre Precondition, inputs []D, k int, rng *rand.Rand) D {
	width := 0
	if len(inputs) > 0 {
		width = inputs[0].Width()
	}
	acc := ops.Bottom(width)
	if len(inputs) == 0 {
		return acc
	}
	samples := make([][]bv.BV, len(inputs))
	for i, in := range inputs {
		samples[i] = sampleMembers(ops, in, k, rng)
	}
	args := make([]bv.BV, len(inputs))
	n := len(samples[0])
	for _, s := range samples {
		if len(s) < n {
			n = len(s)
		}
	}
	for idx := 0; idx < n; idx++ {
		for i := range inputs {
			args[i] = samples[i][idx]
		}
		if pre != nil && !pre(args) {
			continue
		}
		out := ops.FromConcrete(fn(args))
		acc = acc.Join(out)
	}
	return acc
}

// sampleMembers draws up to k concrete values belonging to a via
// rejection sampling (independent draws, so a value may repeat), giving up (and returning whatever was gathered) once
// a generous retry budget is exhausted — relevant only for tiny or
// near-bottom inputs where member density is low.
func sampleMembers[D domain.Value[D]](ops domain.Ops[D], a D, k int, rng *rand.Rand) []bv.BV {
	if a.IsBottom() {
		return nil
	}
	width := a.Width()
	out := make([]bv.BV, 0, k)
	budget := k * 64
	if budget < 256 {
		budget = 256
	}
	for len(out) < k && budget > 0 {
		budget--
		x := bv.New(width, rng.Uint64())
		if a.IsSuperset(ops.FromConcrete(x)) {
			out = append(out, x)
		}
	}
	if len(out) == 0 {
		// Fall back to exact concretization for small/sparse inputs
		// where rejection sampling is unlikely to hit a member.
		for v := range a.Concretize() {
			out = append(out, v)
			if len(out) == k {
				break
			}
		}
	}
	return out
}
