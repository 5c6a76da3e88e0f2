package ops

import (
	"math/bits"

	"github.com/Hatsunespica/xdsl-smt/pkg/domain"
)

// KnownBitsAnd, KnownBitsOr, KnownBitsXor, and KnownBitsAdd are reference
// transfer functions for the KnownBits lattice, transcribed from the
// known-bits propagation rules LLVM's KnownBits class implements. They
// serve as the "reference" participant in a batch when no bridged
// external library is configured, and as a known-good baseline to sanity
// check candidate transfer functions against.

// KnownBitsAnd computes known bits for a bitwise AND: a bit is known zero
// if either operand's bit is known zero, known one only if both operands'
// bits are known one.
func KnownBitsAnd(lhs, rhs domain.KnownBits) domain.KnownBits {
	return domain.KnownBits{
		Zero: lhs.Zero | rhs.Zero,
		One:  lhs.One & rhs.One,
	}.WithWidth(lhs.Width())
}

// KnownBitsOr computes known bits for a bitwise OR: known one if either
// operand's bit is known one, known zero only if both are known zero.
func KnownBitsOr(lhs, rhs domain.KnownBits) domain.KnownBits {
	return domain.KnownBits{
		Zero: lhs.Zero & rhs.Zero,
		One:  lhs.One | rhs.One,
	}.WithWidth(lhs.Width())
}

// KnownBitsXor computes known bits for a bitwise XOR: a bit is known when
// both operands know it, and its value is the XOR of the two known bits.
func KnownBitsXor(lhs, rhs domain.KnownBits) domain.KnownBits {
	sameKnown := (lhs.Zero | lhs.One) & (rhs.Zero | rhs.One)
	oneVal := (lhs.One ^ rhs.One) & sameKnown
	return domain.KnownBits{
		Zero: (^oneVal) & sameKnown,
		One:  oneVal,
	}.WithWidth(lhs.Width())
}

// KnownBitsAdd computes known bits for addition from the operands' bounds:
// every sum lies between the sum of the two minimum values and the sum of
// the two maximum values, and the bits both bound sums share above their
// highest differing bit are known. There is no per-bit carry tracking, so
// a bit below that position is always reported unknown.
func KnownBitsAdd(lhs, rhs domain.KnownBits) domain.KnownBits {
	w := lhs.Width()
	lhsMinVal, lhsMaxVal := lhs.MinMax()
	rhsMinVal, rhsMaxVal := rhs.MinMax()
	mnSum, mnCarry := bits.Add64(lhsMinVal, rhsMinVal, 0)
	mxSum, mxCarry := bits.Add64(lhsMaxVal, rhsMaxVal, 0)
	mnOver := mnCarry != 0 || mnSum > widthMask(w)
	mxOver := mxCarry != 0 || mxSum > widthMask(w)
	mn := mnSum & widthMask(w)
	mx := mxSum & widthMask(w)
	if mnOver != mxOver {
		// carry out changed the bound relationship; fall back to unknown
		// rather than risk an unsound wraparound range.
		return domain.KnownBitsOps{}.Top(w)
	}
	return rangeToKnownBits(w, mn, mx)
}

func widthMask(w int) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(w)) - 1
}

// rangeToKnownBits derives the known bits shared by every value of width
// w in [mn, mx]: bits above the highest position where mn and mx differ
// are common to both and therefore known; everything at or below it is
// unknown.
func rangeToKnownBits(w int, mn, mx uint64) domain.KnownBits {
	diff := mn ^ mx
	if diff == 0 {
		return domain.KnownBitsOps{}.FromConcreteU64(w, mn)
	}
	highBit := 63 - bits.LeadingZeros64(diff)
	knownMask := ^widthMask(highBit + 1) & widthMask(w)
	return domain.KnownBits{
		Zero: (^mn) & knownMask,
		One:  mn & knownMask,
	}.WithWidth(w)
}

