package domain

import (
	"io"
	"math/rand/v2"

	"github.com/Hatsunespica/xdsl-smt/pkg/bv"
)

// SRange is a closed interval [Lower, Upper] under signed ordering, the
// mirror of URange with comparisons and bounds flipped to two's-complement
// signed semantics. Bottom is the canonical inverted range Lower > Upper
// (signed).
type SRange struct {
	width int
	Lower bv.BV
	Upper bv.BV
}

// SRangeOps is the witness for the signed constant-range lattice.
type SRangeOps struct{}

var _ Ops[SRange] = SRangeOps{}
var _ Value[SRange] = SRange{}

func (SRangeOps) Name() string { return "srange" }
func (SRangeOps) Arity() int   { return 2 }

func (SRangeOps) Bottom(width int) SRange {
	return SRange{width: width, Lower: bv.SignedMax(width), Upper: bv.SignedMin(width)}
}

func (SRangeOps) Top(width int) SRange {
	return SRange{width: width, Lower: bv.SignedMin(width), Upper: bv.SignedMax(width)}
}

func (SRangeOps) FromConcrete(x bv.BV) SRange {
	return SRange{width: x.Width(), Lower: x, Upper: x}
}

func (o SRangeOps) Rand(rng *rand.Rand, width int) SRange {
	smin, smax := bv.SignedMin(width).Int64(), bv.SignedMax(width).Int64()
	span := uint64(smax-smin) + 1
	lo := smin + int64(randU64(rng, span-1))
	hi := smin + int64(randU64(rng, span-1))
	if lo > hi {
		lo, hi = hi, lo
	}
	return SRange{width: width, Lower: bv.New(width, uint64(lo)), Upper: bv.New(width, uint64(hi))}
}

func (o SRangeOps) EnumVals(width int) func(yield func(SRange) bool) {
	return func(yield func(SRange) bool) {
		smin, smax := bv.SignedMin(width).Int64(), bv.SignedMax(width).Int64()
		for i := smin; i <= smax; i++ {
			for j := i; j <= smax; j++ {
				v := SRange{width: width, Lower: bv.New(width, uint64(i)), Upper: bv.New(width, uint64(j))}
				if !yield(v) {
					return
				}
			}
		}
	}
}

func (SRangeOps) MaxDistance(width int) int {
	smin, smax := bv.SignedMin(width).Int64(), bv.SignedMax(width).Int64()
	return int(smax-smin) * 2
}

func (SRangeOps) Deserialize(r io.Reader) (SRange, error) {
	w, lo, err := readSlot(r)
	if err != nil {
		return SRange{}, err
	}
	_, hi, err := readSlot(r)
	if err != nil {
		return SRange{}, err
	}
	return SRange{width: w, Lower: bv.New(w, lo), Upper: bv.New(w, hi)}, nil
}

func (a SRange) Width() int { return a.width }

func (a SRange) IsBottom() bool { return a.Lower.SGt(a.Upper) }

func (a SRange) IsTop() bool {
	return a.Lower.Eq(bv.SignedMin(a.width)) && a.Upper.Eq(bv.SignedMax(a.width))
}

func (a SRange) canon(lo, hi bv.BV) SRange {
	if lo.SGt(hi) {
		return SRangeOps{}.Bottom(a.width)
	}
	return SRange{width: a.width, Lower: lo, Upper: hi}
}

func (a SRange) Meet(b SRange) SRange {
	if a.IsBottom() || b.IsBottom() {
		return SRangeOps{}.Bottom(a.width)
	}
	lo := a.Lower
	if b.Lower.SGt(lo) {
		lo = b.Lower
	}
	hi := a.Upper
	if b.Upper.SLt(hi) {
		hi = b.Upper
	}
	return a.canon(lo, hi)
}

func (a SRange) Join(b SRange) SRange {
	if a.IsBottom() {
		return b
	}
	if b.IsBottom() {
		return a
	}
	lo := a.Lower
	if b.Lower.SLt(lo) {
		lo = b.Lower
	}
	hi := a.Upper
	if b.Upper.SGt(hi) {
		hi = b.Upper
	}
	return SRange{width: a.width, Lower: lo, Upper: hi}
}

func (a SRange) IsSuperset(b SRange) bool {
	if b.IsBottom() {
		return true
	}
	if a.IsBottom() {
		return false
	}
	return a.Lower.SLe(b.Lower) && b.Upper.SLe(a.Upper)
}

func (a SRange) Equal(b SRange) bool {
	if a.IsBottom() && b.IsBottom() {
		return true
	}
	return a.width == b.width && a.Lower.Eq(b.Lower) && a.Upper.Eq(b.Upper)
}

func (a SRange) Concretize() func(yield func(bv.BV) bool) {
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

// Distance mirrors URange.Distance under signed ordering: the one-sided
// bottom case falls back to twice the other side's span rather than a
// flat MaxDistance constant, so it scales from 0 (singleton) up to
// MaxDistance(w) (top) with the non-bottom operand's precision.
func (a SRange) Distance(b SRange) int {
	if a.IsBottom() && b.IsBottom() {
		return 0
	}
	if a.IsBottom() {
		return 2 * int(b.Upper.Int64()-b.Lower.Int64())
	}
	if b.IsBottom() {
		return 2 * int(a.Upper.Int64()-a.Lower.Int64())
	}
	return int(a.Lower.AbdS(b.Lower).Uint64()) + int(a.Upper.AbdS(b.Upper).Uint64())
}

// Size is Upper-Lower+1 under signed ordering, or 0 for bottom.
func (a SRange) Size() float64 {
	if a.IsBottom() {
		return 0
	}
	return float64(a.Upper.Int64()-a.Lower.Int64()) + 1
}

func (a SRange) Display() string {
	if a.IsBottom() {
		return "[bottom]"
	}
	return "[" + a.Lower.String() + ", " + a.Upper.String() + "]"
}

func (a SRange) Serialize(w io.Writer) error {
	if err := writeSlot(w, a.width, a.Lower.Uint64()); err != nil {
		return err
	}
	return writeSlot(w, a.width, a.Upper.Uint64())
}
