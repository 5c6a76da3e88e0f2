// Package domain defines the abstract-value contract shared by every
// lattice under evaluation (known-bits, unsigned range, signed range,
// integer-modulo) and implements the four concrete lattices.
//
// The original evaluation engine specializes its lattices through C++
// CRTP: a AbstVal<Domain,N> base class dispatches to Domain's static and
// instance members at compile time, with no virtual calls. Go has no
// direct analogue (generics carry no static methods), so the same
// zero-overhead specialization is modeled with two interfaces instead of
// one: Value[D] is the instance side (meet, join, concretize, ...), and
// Ops[D] is a zero-size witness struct that stands in for the "static"
// side (Bottom, Top, FromConcrete, EnumVals, ...). A witness value carries
// no state; passing it around costs nothing and every method on it
// monomorphizes the same way a C++ template instantiation would.
package domain

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/Hatsunespica/xdsl-smt/pkg/bv"
)

// Value is the instance-side contract every abstract value satisfies.
// D is the concrete lattice type itself (KnownBits, URange, ...), so that
// Meet/Join/IsSuperset operate without boxing into an interface.
type Value[D any] interface {
	// Width reports the bit-width this value was constructed for.
	Width() int

	// IsBottom reports whether this value represents the empty set of
	// concrete values (an unsatisfiable combination of constraints).
	IsBottom() bool

	// IsTop reports whether this value places no constraint at all,
	// i.e. concretizes to every representable bit-vector of its width.
	IsTop() bool

	// Meet computes the greatest lower bound: the abstract value
	// representing the intersection of what both operands allow.
	Meet(other D) D

	// Join computes the least upper bound: the abstract value
	// representing the union of what either operand allows.
	Join(other D) D

	// IsSuperset reports whether every concrete value allowed by other
	// is also allowed by this value (other ⊑ this).
	IsSuperset(other D) bool

	// Equal reports structural equality of the two abstract values.
	Equal(other D) bool

	// Concretize lazily yields every concrete bit-vector this value
	// allows. Iteration order is unspecified; callers that need a
	// deterministic order should collect and sort.
	Concretize() func(yield func(bv.BV) bool)

	// Distance is a domain-specific measure of how far this value is
	// from other, used to score transfer-function precision against a
	// reference implementation. Equal values are at distance zero. When
	// exactly one side is bottom the distance scales with the other
	// side's precision, so bottom is also at distance zero from a
	// KnownBits or range singleton and from a Modulo top.
	Distance(other D) int

	// Size estimates the cardinality of the concrete set this value
	// represents, without necessarily enumerating it (Concretize is
	// exact but infeasible at high bit-widths; Size gives the
	// high-bit-width evaluator a cheap proxy for how precise a value is).
	// Bottom has size zero.
	Size() float64

	// Display renders a short human-readable form, used in result logs.
	Display() string

	// Serialize appends this value's wire representation (§6's binary
	// triple layout: one (width, value) pair per lattice slot) to w.
	Serialize(w io.Writer) error
}

// Ops is the witness side of a lattice: a zero-size struct implementing
// construction, enumeration, and random sampling for D. Callers hold a
// value of the concrete Ops type (e.g. KnownBitsOps{}) and use it the way
// the original engine used D's static members.
type Ops[D Value[D]] interface {
	// Name is the stable identifier used in CLI flags, sample filenames,
	// and result headers (e.g. "knownbits", "urange").
	Name() string

	// Arity is the number of (width, value) slots this domain serializes
	// per abstract value (N in the original engine's AbstVal<Domain,N>).
	Arity() int

	// Bottom returns the empty-set value of the given width.
	Bottom(width int) D

	// Top returns the no-constraint value of the given width.
	Top(width int) D

	// FromConcrete returns the most precise abstract value containing
	// exactly the single concrete bit-vector x (a singleton).
	FromConcrete(x bv.BV) D

	// Rand draws a non-bottom abstract value of the given width from
	// rng. No implementation ever returns bottom.
	Rand(rng *rand.Rand, width int) D

	// EnumVals lazily yields every distinct non-bottom abstract value of
	// the given width, in an unspecified but stable order. Bottom is not
	// yielded. Used by the low sampling regime, which needs exhaustive
	// lattice coverage.
	EnumVals(width int) func(yield func(D) bool)

	// MaxDistance is the maximum value Distance can return for two
	// values of the given width; used to normalize precision scores.
	MaxDistance(width int) int

	// Deserialize reads Arity() (width, value) pairs from r and
	// reconstructs a value of this domain from them as read. It does not
	// validate or normalize the slots: for IntegerModulo there is no
	// isBadBottom / isBadSingleton folding.
	Deserialize(r io.Reader) (D, error)
}

// ErrShortRead is returned by Deserialize implementations when r is
// exhausted before a full slot pair could be read.
var ErrShortRead = fmt.Errorf("domain: short read while deserializing abstract value")

func writeSlot(w io.Writer, width int, value uint64) error {
	var buf [12]byte
	putU32(buf[0:4], uint32(width))
	putU64(buf[4:12], value)
	_, err := w.Write(buf[:])
	return err
}

func readSlot(r io.Reader) (width int, value uint64, err error) {
	var buf [12]byte
	n, err := io.ReadFull(r, buf[:])
	if n == len(buf) {
		return int(getU32(buf[0:4])), getU64(buf[4:12]), nil
	}
	if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
		err = ErrShortRead
	}
	return 0, 0, err
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func getU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
