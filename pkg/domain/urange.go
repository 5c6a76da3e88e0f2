package domain

import (
	"io"
	"math/rand/v2"

	"github.com/Hatsunespica/xdsl-smt/pkg/bv"
)

// URange is a closed interval [Lower, Upper] under unsigned ordering.
// Bottom is represented canonically as Lower > Upper (an inverted range),
// rather than with a separate flag; every operation that could produce an
// inverted range collapses it to the single canonical bottom value first.
type URange struct {
	width int
	Lower bv.BV
	Upper bv.BV
}

// URangeOps is the witness for the unsigned constant-range lattice.
type URangeOps struct{}

var _ Ops[URange] = URangeOps{}
var _ Value[URange] = URange{}

func (URangeOps) Name() string { return "urange" }
func (URangeOps) Arity() int   { return 2 }

func (URangeOps) Bottom(width int) URange {
	return URange{width: width, Lower: bv.Max(width), Upper: bv.Zero(width)}
}

func (URangeOps) Top(width int) URange {
	return URange{width: width, Lower: bv.Zero(width), Upper: bv.Max(width)}
}

func (URangeOps) FromConcrete(x bv.BV) URange {
	return URange{width: x.Width(), Lower: x, Upper: x}
}

func (o URangeOps) Rand(rng *rand.Rand, width int) URange {
	m := bv.Max(width).Uint64()
	lo := randU64(rng, m)
	hi := randU64(rng, m)
	if lo > hi {
		lo, hi = hi, lo
	}
	return URange{width: width, Lower: bv.New(width, lo), Upper: bv.New(width, hi)}
}

func randU64(rng *rand.Rand, max uint64) uint64 {
	if max == ^uint64(0) {
		return rng.Uint64()
	}
	return rng.Uint64N(max + 1)
}

func (o URangeOps) EnumVals(width int) func(yield func(URange) bool) {
	return func(yield func(URange) bool) {
		m := bv.Max(width).Uint64()
		for i := uint64(0); i <= m; i++ {
			for j := i; j <= m; j++ {
				if !yield(URange{width: width, Lower: bv.New(width, i), Upper: bv.New(width, j)}) {
					return
				}
			}
			if i == m {
				break
			}
		}
	}
}

func (URangeOps) MaxDistance(width int) int {
	m := bv.Max(width).Uint64()
	return int(m) * 2
}

func (URangeOps) Deserialize(r io.Reader) (URange, error) {
	w, lo, err := readSlot(r)
	if err != nil {
		return URange{}, err
	}
	_, hi, err := readSlot(r)
	if err != nil {
		return URange{}, err
	}
	return URange{width: w, Lower: bv.New(w, lo), Upper: bv.New(w, hi)}, nil
}

func (a URange) Width() int { return a.width }

func (a URange) IsBottom() bool { return a.Lower.UGt(a.Upper) }

func (a URange) IsTop() bool {
	return a.Lower.IsZero() && a.Upper.IsAllOnes()
}

func (a URange) canon(lo, hi bv.BV) URange {
	if lo.UGt(hi) {
		return URangeOps{}.Bottom(a.width)
	}
	return URange{width: a.width, Lower: lo, Upper: hi}
}

// Meet intersects the two ranges; a.Lower/a.Upper are clamped inward by
// whichever bound is tighter, and an empty result collapses to bottom.
func (a URange) Meet(b URange) URange {
	if a.IsBottom() || b.IsBottom() {
		return URangeOps{}.Bottom(a.width)
	}
	lo := a.Lower
	if b.Lower.UGt(lo) {
		lo = b.Lower
	}
	hi := a.Upper
	if b.Upper.ULt(hi) {
		hi = b.Upper
	}
	return a.canon(lo, hi)
}

// Join takes the convex hull of the two ranges under unsigned ordering.
func (a URange) Join(b URange) URange {
	if a.IsBottom() {
		return b
	}
	if b.IsBottom() {
		return a
	}
	lo := a.Lower
	if b.Lower.ULt(lo) {
		lo = b.Lower
	}
	hi := a.Upper
	if b.Upper.UGt(hi) {
		hi = b.Upper
	}
	return URange{width: a.width, Lower: lo, Upper: hi}
}

func (a URange) IsSuperset(b URange) bool {
	if b.IsBottom() {
		return true
	}
	if a.IsBottom() {
		return false
	}
	return a.Lower.ULe(b.Lower) && b.Upper.ULe(a.Upper)
}

func (a URange) Equal(b URange) bool {
	if a.IsBottom() && b.IsBottom() {
		return true
	}
	return a.width == b.width && a.Lower.Eq(b.Lower) && a.Upper.Eq(b.Upper)
}

func (a URange) Concretize() func(yield func(bv.BV) bool) {
	return func(yield func(bv.BV) bool) {
		if a.IsBottom() {
			return
		}
		for v := a.Lower; ; v = v.Inc() {
			if !yield(v) {
				return
			}
			if v.Eq(a.Upper) {
				return
			}
		}
	}
}

// Distance sums the two bounds' unsigned absolute differences. When
// exactly one side is bottom, it falls back to twice the other side's
// span (Upper-Lower): a singleton (span 0) scores 0, top (span
// 2^w-1) scores MaxDistance(w), mirroring how KnownBits' one-sided
// case scales with the non-bottom operand's precision rather than
// returning a flat constant. Both sides bottom gives 0.
func (a URange) Distance(b URange) int {
	if a.IsBottom() && b.IsBottom() {
		return 0
	}
	if a.IsBottom() {
		return 2 * int(b.Upper.Uint64()-b.Lower.Uint64())
	}
	if b.IsBottom() {
		return 2 * int(a.Upper.Uint64()-a.Lower.Uint64())
	}
	return int(a.Lower.AbdU(b.Lower).Uint64()) + int(a.Upper.AbdU(b.Upper).Uint64())
}

// Size is Upper-Lower+1, or 0 for bottom.
func (a URange) Size() float64 {
	if a.IsBottom() {
		return 0
	}
	return float64(a.Upper.Uint64()-a.Lower.Uint64()) + 1
}

func (a URange) Display() string {
	if a.IsBottom() {
		return "[bottom]"
	}
	return "[" + a.Lower.String() + ", " + a.Upper.String() + "]"
}

func (a URange) Serialize(w io.Writer) error {
	if err := writeSlot(w, a.width, a.Lower.Uint64()); err != nil {
		return err
	}
	return writeSlot(w, a.width, a.Upper.Uint64())
}
