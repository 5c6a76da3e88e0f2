// Package sample generates and serializes the evaluation corpus: triples
// of (lhs, rhs, best) abstract values for a given operation and width,
// produced under one of three regimes that trade exhaustiveness for
// reach at high bit-widths.
//
//   - low:    full lattice enumeration via Ops.EnumVals, paired with the
//     exact oracle. Only tractable while the lattice itself is small.
//   - medium: random lhs/rhs draws via Ops.Rand, paired with the exact
//     oracle (concretization is still cheap enough to enumerate).
//   - high:   random lhs/rhs draws, paired with a sampled oracle that
//     approximates the best abstraction from a bounded number of
//     concrete witnesses rather than full concretization.
package sample

import (
	"fmt"
	"hash/fnv"
	"io"
	"math/rand/v2"

	"github.com/willf/bitset"

	"github.com/Hatsunespica/xdsl-smt/pkg/domain"
	"github.com/Hatsunespica/xdsl-smt/pkg/oracle"
)

// Triple is one evaluation example: two abstract operands and the best
// abstract value the oracle could derive for applying an operation to
// them. It mirrors the original engine's on-disk std::tuple<D, D, D>.
type Triple[D domain.Value[D]] struct {
	Lhs  D
	Rhs  D
	Best D
}

// Regime names the generation strategy a triple set was produced under.
// It is also the leading component of the triple file's name.
type Regime string

const (
	RegimeLow    Regime = "low"
	RegimeMedium Regime = "medium"
	RegimeHigh   Regime = "high"
)

// FileName returns the conventional name for a triple file: the regime,
// declared bit-width, and sample count.
func FileName(regime Regime, width, count int) string {
	return fmt.Sprintf("%s_bw_%d_samples_%d.bin", regime, width, count)
}

// dedupGuard tracks which (lhs, rhs) triples have already been emitted
// during low-regime generation, so that a near-collision in the lattice
// enumeration order doesn't write the same example twice. It trades exact
// set membership for a compact bitmap, matching a hash to one of a fixed
// number of buckets; a shared bucket only ever causes a (harmless) skip of
// a fresh-but-colliding triple, never a false "never seen" accept.
type dedupGuard struct {
	seen *bitset.BitSet
	size uint
}

func newDedupGuard(capacityHint int) *dedupGuard {
	size := uint(capacityHint)
	if size < 1024 {
		size = 1024
	}
	return &dedupGuard{seen: bitset.New(size), size: size}
}

func (g *dedupGuard) seenBefore(key string) bool {
	h := fnv.New64a()
	_, _ = io.WriteString(h, key)
	idx := uint(h.Sum64() % uint64(g.size))
	if g.seen.Test(idx) {
		return true
	}
	g.seen.Set(idx)
	return false
}

func tripleKey[D domain.Value[D]](lhs, rhs D) string {
	return lhs.Display() + "|" + rhs.Display()
}

// GenerateLow exhaustively pairs every abstract value EnumVals yields for
// the given width (lhs against rhs) and scores each pair with the exact
// oracle, skipping pairs a dedup guard has already seen and pairs whose
// best abstraction is bottom (the operation is undefined on every
// concrete value either operand could hold).
func GenerateLow[D domain.Value[D]](ops domain.Ops[D], width int, fn oracle.ConcreteFn, pre oracle.Precondition) []Triple[D] {
	var out []Triple[D]
	guard := newDedupGuard(1 << 16)
	for lhs := range ops.EnumVals(width) {
		for rhs := range ops.EnumVals(width) {
			if guard.seenBefore(tripleKey[D](lhs, rhs)) {
				continue
			}
			best := oracle.Best[D](ops, fn, pre, []D{lhs, rhs})
			if best.IsBottom() {
				continue
			}
			out = append(out, Triple[D]{Lhs: lhs, Rhs: rhs, Best: best})
		}
	}
	return out
}

// GenerateMedium draws count random (lhs, rhs) pairs via Ops.Rand and
// scores each with the exact oracle. Pairs whose best abstraction is
// bottom are retried, within a budget of 64 draws per requested example;
// when the budget runs out, fewer than count triples are returned.
func GenerateMedium[D domain.Value[D]](ops domain.Ops[D], width, count int, fn oracle.ConcreteFn, pre oracle.Precondition, rng *rand.Rand) []Triple[D] {
	out := make([]Triple[D], 0, count)
	budget := count * 64
	for len(out) < count && budget > 0 {
		budget--
		lhs := ops.Rand(rng, width)
		rhs := ops.Rand(rng, width)
		best := oracle.Best[D](ops, fn, pre, []D{lhs, rhs})
		if best.IsBottom() {
			continue
		}
		out = append(out, Triple[D]{Lhs: lhs, Rhs: rhs, Best: best})
	}
	return out
}

// GenerateHigh draws count random (lhs, rhs) pairs and scores each with
// the sampled oracle (k concrete witnesses per operand), for widths where
// exact concretization is infeasible. Unlike the low and medium regimes,
// a bottom result is permitted here and emitted as-is rather than
// retried: at these widths bottom may simply reflect an unlucky draw of
// k witnesses, not a genuinely undefined operation.
func GenerateHigh[D domain.Value[D]](ops domain.Ops[D], width, count, k int, fn oracle.ConcreteFn, pre oracle.Precondition, rng *rand.Rand) []Triple[D] {
	out := make([]Triple[D], 0, count)
	for len(out) < count {
		lhs := ops.Rand(rng, width)
		rhs := ops.Rand(rng, width)
		best := oracle.BestSampled[D](ops, fn, pre, []D{lhs, rhs}, k, rng)
		out = append(out, Triple[D]{Lhs: lhs, Rhs: rhs, Best: best})
	}
	return out
}
