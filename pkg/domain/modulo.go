package domain

import (
	"io"
	"math"
	"math/rand/v2"

	"github.com/Hatsunespica/xdsl-smt/pkg/bv"
)

// moduloPrimes are the six pairwise-coprime moduli the IntegerModulo
// lattice tracks residues against. Their product, 30030, bounds how many
// distinct non-bottom, fully-known values the lattice can distinguish
// before two concrete values of a wide enough type become
// indistinguishable to it.
var moduloPrimes = [6]int{2, 3, 5, 7, 11, 13}

// ModuloArity is Ops.Arity() for the IntegerModulo domain: one residue
// slot per prime in moduloPrimes.
const ModuloArity = 6

// Modulo tracks, for each prime in moduloPrimes, either a known residue or
// "unknown". A value is bottom when two constraints gathered by Meet
// disagree on the residue for the same prime; bottom is folded to a
// single canonical representation (every slot holds the bottom sentinel)
// rather than tracked with a side flag. Known residues whose CRT
// reconstruction exceeds the width are not folded to bottom.
type Modulo struct {
	width int
	res   [6]int // -1 < res[i] < moduloPrimes[i]: known; == moduloPrimes[i]: unknown; == moduloPrimes[i]+1: bottom marker
}

// ModuloOps is the witness for the IntegerModulo lattice.
type ModuloOps struct{}

var _ Ops[Modulo] = ModuloOps{}
var _ Value[Modulo] = Modulo{}

func (ModuloOps) Name() string { return "modulo" }
func (ModuloOps) Arity() int   { return ModuloArity }

func unknownMark(i int) int { return moduloPrimes[i] }
func bottomMark(i int) int  { return moduloPrimes[i] + 1 }

// overflowed reports whether moduloPrimes[i] exceeds the largest value
// representable at width, per the construction pipeline's "a prime is
// overflowed at width w iff pᵢ > 2^w − 1" rule: such a prime's residue
// carries no real constraint at this width (every representable value's
// true residue mod it is just itself), so the slot is forced to a fixed
// value instead of tracked.
func overflowed(i, width int) bool {
	return uint64(moduloPrimes[i]) > bv.Max(width).Uint64()
}

// normalizeOverflow forces every overflowed slot to the fixed residue 0,
// the construction pipeline's "zero overflowed slots" step. Concretize
// additionally excludes these slots from CRT reconstruction ("ignored"),
// so forcing them to a value every operand agrees on makes Meet, Join,
// Equal, and Distance treat the slot as uninformative without any
// further special-casing.
func normalizeOverflow(width int, res *[6]int) {
	for i := range res {
		if overflowed(i, width) {
			res[i] = 0
		}
	}
}

func (ModuloOps) Bottom(width int) Modulo {
	var m Modulo
	m.width = width
	for i := range m.res {
		m.res[i] = bottomMark(i)
	}
	return m
}

func (ModuloOps) Top(width int) Modulo {
	var m Modulo
	m.width = width
	for i := range m.res {
		m.res[i] = unknownMark(i)
	}
	normalizeOverflow(width, &m.res)
	return m
}

func (ModuloOps) FromConcrete(x bv.BV) Modulo {
	var m Modulo
	m.width = x.Width()
	for i, p := range moduloPrimes {
		m.res[i] = int(x.Uint64() % uint64(p))
	}
	normalizeOverflow(m.width, &m.res)
	return m
}

func (o ModuloOps) Rand(rng *rand.Rand, width int) Modulo {
	var m Modulo
	m.width = width
	for i, p := range moduloPrimes {
		// bias toward "unknown" so sampled values aren't overwhelmingly
		// singletons: one extra bucket for unknown alongside the p
		// known residues.
		v := rng.IntN(p + 1)
		if v == p {
			m.res[i] = unknownMark(i)
		} else {
			m.res[i] = v
		}
	}
	normalizeOverflow(width, &m.res)
	return m
}

func (o ModuloOps) EnumVals(width int) func(yield func(Modulo) bool) {
	return func(yield func(Modulo) bool) {
		total := 1
		for i, p := range moduloPrimes {
			if overflowed(i, width) {
				continue
			}
			total *= p + 1
		}
		for code := 0; code < total; code++ {
			var m Modulo
			m.width = width
			c := code
			for i, p := range moduloPrimes {
				if overflowed(i, width) {
					m.res[i] = 0
					continue
				}
				digit := c % (p + 1)
				c /= p + 1
				if digit == p {
					m.res[i] = unknownMark(i)
				} else {
					m.res[i] = digit
				}
			}
			if !yield(m) {
				return
			}
		}
	}
}

func (ModuloOps) MaxDistance(width int) int { return 2 * ModuloArity }

func (ModuloOps) Deserialize(r io.Reader) (Modulo, error) {
	var m Modulo
	for i := range m.res {
		w, v, err := readSlot(r)
		if err != nil {
			return Modulo{}, err
		}
		m.width = w
		m.res[i] = int(v)
	}
	return m, nil
}

func (a Modulo) Width() int { return a.width }

func (a Modulo) IsBottom() bool { return a.res[0] == bottomMark(0) }

func (a Modulo) IsTop() bool {
	for i := range a.res {
		if overflowed(i, a.width) {
			continue
		}
		if a.res[i] != unknownMark(i) {
			return false
		}
	}
	return true
}

func (a Modulo) slotKnown(i int) bool { return a.res[i] < moduloPrimes[i] }

// Meet combines per-slot knowledge gathered independently: equal slots
// agree, an unknown slot yields to a known one, and two different known
// residues for the same prime are unsatisfiable, collapsing the whole
// value to bottom.
func (a Modulo) Meet(b Modulo) Modulo {
	if a.IsBottom() || b.IsBottom() {
		return ModuloOps{}.Bottom(a.width)
	}
	var out Modulo
	out.width = a.width
	for i := range out.res {
		switch {
		case a.res[i] == b.res[i]:
			out.res[i] = a.res[i]
		case a.slotKnown(i) && !b.slotKnown(i):
			out.res[i] = a.res[i]
		case !a.slotKnown(i) && b.slotKnown(i):
			out.res[i] = b.res[i]
		default:
			return ModuloOps{}.Bottom(a.width)
		}
	}
	return out
}

// Join keeps only residues both operands agree on, promoting to unknown
// wherever they disagree (the least upper bound of the two constraints).
func (a Modulo) Join(b Modulo) Modulo {
	if a.IsBottom() {
		return b
	}
	if b.IsBottom() {
		return a
	}
	var out Modulo
	out.width = a.width
	for i := range out.res {
		if a.res[i] == b.res[i] {
			out.res[i] = a.res[i]
		} else {
			out.res[i] = unknownMark(i)
		}
	}
	return out
}

func (a Modulo) IsSuperset(b Modulo) bool {
	if b.IsBottom() {
		return true
	}
	if a.IsBottom() {
		return false
	}
	for i := range a.res {
		if a.slotKnown(i) && a.res[i] != b.res[i] {
			return false
		}
	}
	return true
}

func (a Modulo) Equal(b Modulo) bool {
	if a.IsBottom() && b.IsBottom() {
		return true
	}
	return a.width == b.width && a.res == b.res
}

// Concretize reconstructs, via the Chinese Remainder Theorem over the
// known-residue subset of moduloPrimes, every concrete value of the
// declared width consistent with the known residues. Unknown slots are
// free; known slots restrict the result to an arithmetic progression with
// step equal to the product of the known primes.
func (a Modulo) Concretize() func(yield func(bv.BV) bool) {
	return func(yield func(bv.BV) bool) {
		if a.IsBottom() {
			return
		}
		step := 1
		base := 0
		for i, p := range moduloPrimes {
			if overflowed(i, a.width) || !a.slotKnown(i) {
				continue
			}
			base, step = crtMerge(base, step, a.res[i], p)
		}
		limit := bv.Max(a.width).Uint64()
		for x := uint64(base); x <= limit; x += uint64(step) {
			if !yield(bv.New(a.width, x)) {
				return
			}
		}
	}
}

// crtMerge folds the congruence x ≡ r2 (mod m2) into an existing solution
// x ≡ r1 (mod m1) where m1 and m2 are coprime, returning the merged
// (residue, modulus) pair via the standard two-modulus CRT combination.
func crtMerge(r1, m1, r2, m2 int) (int, int) {
	m2inv := modInverse(m1%m2, m2)
	t := ((r2 - r1%m2) * m2inv) % m2
	if t < 0 {
		t += m2
	}
	merged := r1 + m1*t
	return merged, m1 * m2
}

func modInverse(a, m int) int {
	a = ((a % m) + m) % m
	for x := 1; x < m; x++ {
		if (a*x)%m == 1 {
			return x
		}
	}
	return 1
}

// Distance sums, per prime slot, 0 when the residues agree (or both
// sides leave the slot unknown), 1 when exactly one side has a known
// residue, and 2 when both sides know different residues. slotKnown is
// false for a bottom value's sentinel at every slot, so a bottom operand
// falls out of the same per-slot rule as an all-unknown (top) one: its
// distance to a non-bottom b scales with how many slots b actually pins
// down, rather than a flat constant, and two bottom values naturally
// score 0 without a special case.
func (a Modulo) Distance(b Modulo) int {
	d := 0
	for i := range a.res {
		ak, bk := a.slotKnown(i), b.slotKnown(i)
		switch {
		case ak && bk && a.res[i] != b.res[i]:
			d += 2
		case ak != bk:
			d++
		}
	}
	return d
}

// Size approximates the concrete set's cardinality as 2^width divided by
// the product of the known primes (the density a system of congruences
// over pairwise-coprime moduli implies), or 0 for bottom.
func (a Modulo) Size() float64 {
	if a.IsBottom() {
		return 0
	}
	total := math.Pow(2, float64(a.width))
	for i, p := range moduloPrimes {
		if overflowed(i, a.width) {
			continue
		}
		if a.slotKnown(i) {
			total /= float64(p)
		}
	}
	return total
}

func (a Modulo) Display() string {
	if a.IsBottom() {
		return "[bottom mod]"
	}
	s := "{"
	for i, p := range moduloPrimes {
		if i > 0 {
			s += ", "
		}
		if a.slotKnown(i) {
			s += itoa(a.res[i])
		} else {
			s += "?"
		}
		s += "(mod " + itoa(p) + ")"
	}
	return s + "}"
}

func itoa(x int) string {
	if x == 0 {
		return "0"
	}
	neg := x < 0
	if neg {
		x = -x
	}
	var buf [20]byte
	i := len(buf)
	for x > 0 {
		i--
		buf[i] = byte('0' + x%10)
		x /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func (a Modulo) Serialize(w io.Writer) error {
	for _, r := range a.res {
		if err := writeSlot(w, a.width, uint64(r)); err != nil {
			return err
		}
	}
	return nil
}
