package domain

import (
	"io"
	"math"
	"math/bits"
	"math/rand/v2"

	"github.com/Hatsunespica/xdsl-smt/pkg/bv"
)

// KnownBits tracks, per bit position, whether the bit is known to be zero,
// known to be one, or unknown. Zero and One are disjoint for any value
// that isn't bottom; a bit set in both masks is a conflict, which is how
// bottom is represented (rather than as a separate sentinel).
type KnownBits struct {
	width int
	Zero  uint64
	One   uint64
}

// KnownBitsOps is the witness for the KnownBits lattice.
type KnownBitsOps struct{}

var _ Ops[KnownBits] = KnownBitsOps{}
var _ Value[KnownBits] = KnownBits{}

func (KnownBitsOps) Name() string  { return "knownbits" }
func (KnownBitsOps) Arity() int    { return 2 }

// Bottom returns the value with every bit simultaneously known-zero and
// known-one, the conflicting state that concretizes to nothing.
func (KnownBitsOps) Bottom(width int) KnownBits {
	m := bv.Max(width).Uint64()
	return KnownBits{width: width, Zero: m, One: m}
}

// Top returns the value with no bit constrained either way.
func (KnownBitsOps) Top(width int) KnownBits {
	return KnownBits{width: width}
}

func (KnownBitsOps) FromConcrete(x bv.BV) KnownBits {
	m := bv.Max(x.Width()).Uint64()
	return KnownBits{width: x.Width(), Zero: (^x.Uint64()) & m, One: x.Uint64()}
}

func (o KnownBitsOps) Rand(rng *rand.Rand, width int) KnownBits {
	m := bv.Max(width).Uint64()
	var zero, one uint64
	for i := 0; i < width; i++ {
		switch rng.IntN(3) {
		case 0:
			zero |= 1 << uint(i)
		case 1:
			one |= 1 << uint(i)
		}
	}
	return KnownBits{width: width, Zero: zero & m, One: one & m}
}

func (o KnownBitsOps) EnumVals(width int) func(yield func(KnownBits) bool) {
	return func(yield func(KnownBits) bool) {
		m := bv.Max(width).Uint64()
		// Every bit independently takes one of {unknown, zero, one}: a
		// base-3 odometer over width digits, skipping nothing (bottom,
		// where a bit is both, is not reachable by this encoding and is
		// produced separately by Bottom()).
		total := 1
		for i := 0; i < width; i++ {
			total *= 3
		}
		for code := 0; code < total; code++ {
			var zero, one uint64
			c := code
			for i := 0; i < width; i++ {
				switch c % 3 {
				case 1:
					zero |= 1 << uint(i)
				case 2:
					one |= 1 << uint(i)
				}
				c /= 3
			}
			if !yield(KnownBits{width: width, Zero: zero & m, One: one & m}) {
				return
			}
		}
	}
}

func (KnownBitsOps) MaxDistance(width int) int { return width }

func (KnownBitsOps) Deserialize(r io.Reader) (KnownBits, error) {
	w1, zero, err := readSlot(r)
	if err != nil {
		return KnownBits{}, err
	}
	_, one, err := readSlot(r)
	if err != nil {
		return KnownBits{}, err
	}
	return KnownBits{width: w1, Zero: zero, One: one}, nil
}

func (a KnownBits) Width() int { return a.width }

// WithWidth returns a copy of a with its width set to w, letting transfer
// functions in other packages build a KnownBits value from a composite
// literal (which cannot set the unexported width field directly) and then
// attach the width in one step.
func (a KnownBits) WithWidth(w int) KnownBits {
	a.width = w
	return a
}

// MinMax returns the minimum and maximum concrete values consistent with
// a's known bits: the unknown bits set to zero and to one, respectively.
func (a KnownBits) MinMax() (min, max uint64) {
	m := bv.Max(a.width).Uint64()
	unknown := (^(a.Zero | a.One)) & m
	return a.One, a.One | unknown
}

// FromConcreteU64 is FromConcrete specialized to a raw width and value,
// convenient for callers that already have a masked uint64 in hand.
func (KnownBitsOps) FromConcreteU64(width int, x uint64) KnownBits {
	m := bv.Max(width).Uint64()
	x &= m
	return KnownBits{width: width, Zero: (^x) & m, One: x}
}

// hasConflict reports whether any bit is marked both known-zero and
// known-one, which is how this lattice represents bottom.
func (a KnownBits) hasConflict() bool { return a.Zero&a.One != 0 }

func (a KnownBits) IsBottom() bool { return a.hasConflict() }

func (a KnownBits) IsTop() bool { return a.Zero == 0 && a.One == 0 }

// Meet combines two independently-gathered sets of bit knowledge: anything
// either operand knows, the result knows, so the masks union. A bit known
// zero by one operand and one by the other yields a conflict (bottom).
func (a KnownBits) Meet(b KnownBits) KnownBits {
	return KnownBits{width: a.width, Zero: a.Zero | b.Zero, One: a.One | b.One}
}

// Join keeps only the knowledge both operands agree on, so the masks
// intersect: this is the least upper bound of the two concrete sets.
func (a KnownBits) Join(b KnownBits) KnownBits {
	return KnownBits{width: a.width, Zero: a.Zero & b.Zero, One: a.One & b.One}
}

func (a KnownBits) IsSuperset(b KnownBits) bool {
	return a.Zero&b.Zero == a.Zero && a.One&b.One == a.One
}

func (a KnownBits) Equal(b KnownBits) bool {
	return a.width == b.width && a.Zero == b.Zero && a.One == b.One
}

func (a KnownBits) Concretize() func(yield func(bv.BV) bool) {
	return func(yield func(bv.BV) bool) {
		if a.IsBottom() {
			return
		}
		unknown := (^(a.Zero | a.One)) & bv.Max(a.width).Uint64()
		// Enumerate every assignment to the unknown bits by walking the
		// submask lattice of `unknown` (Knuth's "loop over the subsets
		// of a bitmask" idiom).
		sub := unknown
		for {
			if !yield(bv.New(a.width, a.One|sub)) {
				return
			}
			if sub == 0 {
				break
			}
			sub = (sub - 1) & unknown
		}
	}
}

// Distance sums the Hamming distances of the two masks independently, so
// a bit that differs in both Zero and One counts twice. When exactly one
// side is bottom, distance falls back to w minus how many bits the other
// side actually pins down (the number of bits bottom itself "gets right"
// by having none known); both sides bottom gives 0.
func (a KnownBits) Distance(b KnownBits) int {
	if a.IsBottom() && b.IsBottom() {
		return 0
	}
	if a.IsBottom() {
		return b.width - bits.OnesCount64(b.Zero^b.One)
	}
	if b.IsBottom() {
		return a.width - bits.OnesCount64(a.Zero^a.One)
	}
	return bits.OnesCount64(a.Zero^b.Zero) + bits.OnesCount64(a.One^b.One)
}

// Size is 2^(number of unknown bits), or 0 for bottom.
func (a KnownBits) Size() float64 {
	if a.IsBottom() {
		return 0
	}
	unknown := bits.OnesCount64((^(a.Zero | a.One)) & bv.Max(a.width).Uint64())
	return math.Pow(2, float64(unknown))
}

func (a KnownBits) Display() string {
	out := make([]byte, a.width)
	for i := 0; i < a.width; i++ {
		bitZero := a.Zero&(1<<uint(i)) != 0
		bitOne := a.One&(1<<uint(i)) != 0
		switch {
		case bitZero && bitOne:
			out[a.width-1-i] = '!'
		case bitZero:
			out[a.width-1-i] = '0'
		case bitOne:
			out[a.width-1-i] = '1'
		default:
			out[a.width-1-i] = '?'
		}
	}
	return string(out)
}

func (a KnownBits) Serialize(w io.Writer) error {
	if err := writeSlot(w, a.width, a.Zero); err != nil {
		return err
	}
	return writeSlot(w, a.width, a.One)
}
