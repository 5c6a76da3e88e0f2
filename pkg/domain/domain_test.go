package domain

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/Hatsunespica/xdsl-smt/pkg/bv"
)

func TestKnownBitsLattice(t *testing.T) {
	w := 8
	ops := KnownBitsOps{}
	top := ops.Top(w)
	bot := ops.Bottom(w)
	if !top.IsTop() || top.IsBottom() {
		t.Fatalf("Top should be top and not bottom: %v", top)
	}
	if !bot.IsBottom() {
		t.Fatalf("Bottom should be bottom: %v", bot)
	}
	x := ops.FromConcrete(bv.New(w, 0b01010101))
	if x.IsBottom() {
		t.Fatalf("singleton should not be bottom: %v", x)
	}
	if !top.IsSuperset(x) {
		t.Fatalf("top should be a superset of everything")
	}
	if !x.Meet(top).Equal(x) {
		t.Fatalf("meet with top should be identity: got %v", x.Meet(top))
	}
	if !x.Join(bot).Equal(x) {
		t.Fatalf("join with bottom should be identity: got %v", x.Join(bot))
	}
}

func TestKnownBitsConcretizeRoundTrip(t *testing.T) {
	w := 4
	ops := KnownBitsOps{}
	x := ops.FromConcrete(bv.New(w, 5))
	count := 0
	for v := range x.Concretize() {
		if v.Uint64() != 5 {
			t.Fatalf("singleton concretize produced %v, want 5", v)
		}
		count++
	}
	if count != 1 {
		t.Fatalf("singleton should concretize to exactly one value, got %d", count)
	}
	top := ops.Top(w)
	count = 0
	for range top.Concretize() {
		count++
	}
	if count != 16 {
		t.Fatalf("top of width 4 should concretize to 16 values, got %d", count)
	}
}

func TestURangeLattice(t *testing.T) {
	w := 8
	ops := URangeOps{}
	a := URange{width: w, Lower: bv.New(w, 2), Upper: bv.New(w, 10)}
	b := URange{width: w, Lower: bv.New(w, 5), Upper: bv.New(w, 20)}
	m := a.Meet(b)
	if m.Lower.Uint64() != 5 || m.Upper.Uint64() != 10 {
		t.Fatalf("Meet([2,10],[5,20]) = %v, want [5,10]", m)
	}
	j := a.Join(b)
	if j.Lower.Uint64() != 2 || j.Upper.Uint64() != 20 {
		t.Fatalf("Join([2,10],[5,20]) = %v, want [2,20]", j)
	}
	disjoint := URange{width: w, Lower: bv.New(w, 50), Upper: bv.New(w, 60)}
	if !a.Meet(disjoint).IsBottom() {
		t.Fatalf("Meet of disjoint ranges should be bottom")
	}
	_ = ops
}

func TestURangeConcretize(t *testing.T) {
	w := 8
	a := URange{width: w, Lower: bv.New(w, 3), Upper: bv.New(w, 6)}
	var got []uint64
	for v := range a.Concretize() {
		got = append(got, v.Uint64())
	}
	want := []uint64{3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("Concretize produced %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Concretize produced %v, want %v", got, want)
		}
	}
}

func TestSRangeLattice(t *testing.T) {
	w := 8
	a := SRange{width: w, Lower: bv.New(w, 0).Sub(bv.New(w, 10)), Upper: bv.New(w, 3)}
	b := SRange{width: w, Lower: bv.New(w, 0).Sub(bv.New(w, 2)), Upper: bv.New(w, 20)}
	m := a.Meet(b)
	if m.Lower.Int64() != -2 || m.Upper.Int64() != 3 {
		t.Fatalf("Meet = %v, want [-2,3]", m)
	}
}

func TestModuloMeetJoin(t *testing.T) {
	w := 8
	ops := ModuloOps{}
	a := ops.FromConcrete(bv.New(w, 7))
	b := ops.FromConcrete(bv.New(w, 7))
	m := a.Meet(b)
	if m.IsBottom() {
		t.Fatalf("meeting equal singletons should not be bottom")
	}
	c := ops.FromConcrete(bv.New(w, 8))
	if !a.Meet(c).IsBottom() {
		t.Fatalf("meeting distinct singletons should be bottom")
	}
	// 7 and 8 have different residues modulo every prime, so the join
	// keeps no residue at all.
	j := a.Join(c)
	if j.IsBottom() || !j.IsTop() {
		t.Fatalf("join of 7 and 8 should be top: %v", j)
	}
}

func TestModuloConcretizeContainsSource(t *testing.T) {
	w := 8
	ops := ModuloOps{}
	x := ops.FromConcrete(bv.New(w, 42))
	found := false
	n := 0
	for v := range x.Concretize() {
		n++
		if v.Uint64() == 42 {
			found = true
		}
		if n > 10 {
			break
		}
	}
	if !found {
		t.Fatalf("Concretize of FromConcrete(42) never yielded 42")
	}
}

func TestModuloSerializeRoundTrip(t *testing.T) {
	w := 8
	ops := ModuloOps{}
	x := ops.FromConcrete(bv.New(w, 11))
	var buf bytes.Buffer
	if err := x.Serialize(&buf); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	got, err := ops.Deserialize(&buf)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if !got.Equal(x) {
		t.Fatalf("round trip mismatch: got %v want %v", got, x)
	}
}

func TestKnownBitsSerializeRoundTrip(t *testing.T) {
	w := 16
	ops := KnownBitsOps{}
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		x := ops.Rand(rng, w)
		var buf bytes.Buffer
		if err := x.Serialize(&buf); err != nil {
			t.Fatalf("Serialize failed: %v", err)
		}
		got, err := ops.Deserialize(&buf)
		if err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}
		if !got.Equal(x) {
			t.Fatalf("round trip mismatch: got %v want %v", got, x)
		}
	}
}

func TestKnownBitsDistanceAsymmetricBottom(t *testing.T) {
	w := 4
	ops := KnownBitsOps{}
	bot := ops.Bottom(w)
	top := ops.Top(w)
	singleton := ops.FromConcrete(bv.New(w, 5))
	if d := bot.Distance(singleton); d != 0 {
		t.Fatalf("distance(bottom, fully-known singleton) = %d, want 0", d)
	}
	if d := bot.Distance(top); d != w {
		t.Fatalf("distance(bottom, top) = %d, want %d", d, w)
	}
	if d := bot.Distance(bot); d != 0 {
		t.Fatalf("distance(bottom, bottom) = %d, want 0", d)
	}
	// A sum-of-two-sums formula must double-count a bit that differs in
	// both masks, not OR the masks together.
	a := KnownBits{Zero: 0b1, One: 0b0}.WithWidth(w)
	b := KnownBits{Zero: 0b0, One: 0b1}.WithWidth(w)
	if d := a.Distance(b); d != 2 {
		t.Fatalf("distance of bit 0 known-zero vs known-one = %d, want 2", d)
	}
}

func TestURangeDistanceAsymmetricBottom(t *testing.T) {
	w := 4
	ops := URangeOps{}
	bot := ops.Bottom(w)
	top := ops.Top(w)
	singleton := URange{width: w, Lower: bv.New(w, 5), Upper: bv.New(w, 5)}
	if d := bot.Distance(singleton); d != 0 {
		t.Fatalf("distance(bottom, singleton) = %d, want 0", d)
	}
	want := ops.MaxDistance(w)
	if d := bot.Distance(top); d != want {
		t.Fatalf("distance(bottom, top) = %d, want %d", d, want)
	}
}

func TestSRangeDistanceAsymmetricBottom(t *testing.T) {
	w := 4
	ops := SRangeOps{}
	bot := ops.Bottom(w)
	top := ops.Top(w)
	singleton := SRange{width: w, Lower: bv.New(w, 3), Upper: bv.New(w, 3)}
	if d := bot.Distance(singleton); d != 0 {
		t.Fatalf("distance(bottom, singleton) = %d, want 0", d)
	}
	want := ops.MaxDistance(w)
	if d := bot.Distance(top); d != want {
		t.Fatalf("distance(bottom, top) = %d, want %d", d, want)
	}
}

func TestModuloDistanceBottomScalesWithKnownSlots(t *testing.T) {
	w := 8
	ops := ModuloOps{}
	bot := ops.Bottom(w)
	top := ops.Top(w)
	singleton := ops.FromConcrete(bv.New(w, 7))
	if d := bot.Distance(bot); d != 0 {
		t.Fatalf("distance(bottom, bottom) = %d, want 0", d)
	}
	if d := bot.Distance(top); d != 0 {
		t.Fatalf("distance(bottom, top) = %d, want 0 (both treat every slot as unknown)", d)
	}
	if d := bot.Distance(singleton); d != ModuloArity {
		t.Fatalf("distance(bottom, fully-known singleton) = %d, want %d", d, ModuloArity)
	}
}

func TestSizeMatchesConcretizeCount(t *testing.T) {
	w := 5
	ops := KnownBitsOps{}
	x := KnownBits{Zero: 0b00100, One: 0b01000}.WithWidth(w)
	n := 0
	for range x.Concretize() {
		n++
	}
	if int(x.Size()) != n {
		t.Fatalf("Size() = %v, want %d", x.Size(), n)
	}
	if ops.Bottom(w).Size() != 0 {
		t.Fatalf("bottom should have size 0")
	}
}

// TestModuloOverflowedPrimesForceZeroAndIgnored is the narrow-width seed
// test spec §8 scenario 5 describes for IntegerModulo (from_concrete then
// join of two near values), adapted to this lattice's fixed six-prime
// set: at width 3 primes 11 and 13 exceed 2^3-1=7 and overflow, so their
// slots are forced to 0 and left out of the CRT reconstruction in
// Concretize. The test checks that from_concrete(7) still concretizes to
// 7 and that the join with from_concrete(6) keeps the overflowed slots
// at 0.
func TestModuloOverflowedPrimesForceZeroAndIgnored(t *testing.T) {
	w := 3
	ops := ModuloOps{}
	x := ops.FromConcrete(bv.New(w, 7))
	if x.IsBottom() {
		t.Fatalf("from_concrete(7) at width 3 should not be bottom")
	}
	found := false
	for v := range x.Concretize() {
		if v.Uint64() == 7 {
			found = true
		}
	}
	if !found {
		t.Fatalf("Concretize of from_concrete(7) at width 3 never yielded 7 (phantom-bottom overflow)")
	}

	y := ops.FromConcrete(bv.New(w, 6))
	j := x.Join(y)
	if j.IsBottom() {
		t.Fatalf("join of two concrete values at width 3 should not be bottom")
	}
	// Primes 11 and 13 overflow at width 3 and are forced to the shared
	// residue 0 on both operands, so they must never be the reason two
	// concrete values fail to join cleanly.
	for i, p := range moduloPrimes {
		if p > 7 && j.res[i] != 0 {
			t.Fatalf("overflowed prime slot %d should stay forced to 0, got %d", i, j.res[i])
		}
	}
}

func TestEnumValsCoversFromConcrete(t *testing.T) {
	w := 3
	ops := KnownBitsOps{}
	seen := map[string]bool{}
	for v := range ops.EnumVals(w) {
		seen[v.Display()] = true
	}
	for x := uint64(0); x < 8; x++ {
		s := ops.FromConcrete(bv.New(w, x))
		if !seen[s.Display()] {
			t.Fatalf("EnumVals missed singleton %d (%s)", x, s.Display())
		}
	}
}
