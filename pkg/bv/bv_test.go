package bv

import "testing"

func TestZExtSExtTrunc(t *testing.T) {
	cases := []struct {
		w, nw int
		val   uint64
	}{
		{4, 8, 0b1010},
		{4, 8, 0b0110},
		{1, 8, 1},
		{8, 16, 0xFF},
	}
	for _, c := range cases {
		v := New(c.w, c.val)
		z := v.ZExt(c.nw)
		if z.Trunc(c.w).val != v.val {
			t.Fatalf("ZExt/Trunc round-trip failed for %v", v)
		}
		s := v.SExt(c.nw)
		if s.Trunc(c.w).val != v.val {
			t.Fatalf("SExt/Trunc round-trip failed for %v", v)
		}
		if v.IsSignBitSet() && s.Int64() >= 0 {
			t.Fatalf("SExt of negative value %v produced non-negative %v", v, s)
		}
	}
}

func TestShlLshrRoundTrip(t *testing.T) {
	v := New(8, 0b00110101)
	for k := 0; k < 8; k++ {
		s := v.Shl(k)
		back := s.Lshr(k)
		want := New(8, v.val&mask(8-k))
		if back.val != want.val {
			t.Fatalf("Shl(%d)/Lshr(%d) round-trip: got %v want %v", k, k, back, want)
		}
	}
}

func TestRotlRotrInverse(t *testing.T) {
	v := New(8, 0b10110010)
	for k := 0; k < 16; k++ {
		if v.Rotl(k).Rotr(k).val != v.val {
			t.Fatalf("Rotl(%d) then Rotr(%d) did not round-trip for %v", k, k, v)
		}
	}
}

func TestUMulOv(t *testing.T) {
	a := New(8, 200)
	b := New(8, 3)
	r, ov := a.MulOvU(b)
	if !ov {
		t.Fatalf("expected overflow for 200*3 in 8 bits, got %v", r)
	}
	a = New(8, 2)
	b = New(8, 3)
	r, ov = a.MulOvU(b)
	if ov || r.val != 6 {
		t.Fatalf("unexpected result for 2*3: %v ov=%v", r, ov)
	}
}

func TestSMulOv(t *testing.T) {
	a := SignedMax(8) // 127
	b := New(8, 2)
	_, ov := a.MulOvS(b)
	if !ov {
		t.Fatalf("expected signed overflow for 127*2 in 8 bits")
	}
	a = New(8, 5)
	b = New(8, 0).Sub(New(8, 3)) // -3
	r, ov := a.MulOvS(b)
	if ov || r.Int64() != -15 {
		t.Fatalf("unexpected result for 5*-3: %v ov=%v", r, ov)
	}
}

func TestAddSubOverflow(t *testing.T) {
	a := Max(8)
	b := New(8, 1)
	r, ov := a.AddOvU(b)
	if !ov || r.val != 0 {
		t.Fatalf("expected unsigned overflow wrapping to 0, got %v ov=%v", r, ov)
	}
	a = SignedMax(8)
	r2, ov2 := a.AddOvS(New(8, 1))
	if !ov2 || !r2.Eq(SignedMin(8)) {
		t.Fatalf("expected signed overflow to SignedMin, got %v ov=%v", r2, ov2)
	}
}

func TestSaturating(t *testing.T) {
	a := Max(8)
	if got := a.AddSatU(New(8, 10)); !got.Eq(Max(8)) {
		t.Fatalf("AddSatU should clamp to Max, got %v", got)
	}
	a = SignedMax(8)
	if got := a.AddSatS(New(8, 1)); !got.Eq(SignedMax(8)) {
		t.Fatalf("AddSatS should clamp to SignedMax, got %v", got)
	}
}

func TestAvg(t *testing.T) {
	a, b := New(8, 5), New(8, 10)
	if got := a.AvgFloorU(b); got.val != 7 {
		t.Fatalf("AvgFloorU(5,10) = %v, want 7", got)
	}
	if got := a.AvgCeilU(b); got.val != 8 {
		t.Fatalf("AvgCeilU(5,10) = %v, want 8", got)
	}
}

func TestAbd(t *testing.T) {
	a, b := New(8, 5), New(8, 10)
	if got := a.AbdU(b); got.val != 5 {
		t.Fatalf("AbdU(5,10) = %v, want 5", got)
	}
}

func TestMulH(t *testing.T) {
	a := New(8, 200)
	b := New(8, 200)
	full := a.val * b.val // 40000
	want := full >> 8
	if got := a.MulHU(b); got.val != want {
		t.Fatalf("MulHU(200,200) = %v, want %v", got.val, want)
	}
}

func TestMultiplicativeInverse(t *testing.T) {
	for _, x := range []uint64{1, 3, 5, 7, 9, 123, 255} {
		v := New(8, x)
		inv := v.MultiplicativeInverse()
		prod := v.Mul(inv)
		if prod.val != 1 {
			t.Fatalf("MultiplicativeInverse(%d) = %d, product = %d, want 1", x, inv.val, prod.val)
		}
	}
}

func TestGCD(t *testing.T) {
	if got := New(8, 12).GCD(New(8, 18)); got.val != 6 {
		t.Fatalf("GCD(12,18) = %v, want 6", got)
	}
	if got := New(8, 0).GCD(New(8, 7)); got.val != 7 {
		t.Fatalf("GCD(0,7) = %v, want 7", got)
	}
}

func TestIsPowerOfTwoAndNegated(t *testing.T) {
	if !New(8, 16).IsPowerOfTwo() {
		t.Fatalf("16 should be a power of two")
	}
	if New(8, 0).IsPowerOfTwo() {
		t.Fatalf("0 should not be a power of two")
	}
	neg16 := New(8, 0).Sub(New(8, 16)) // -16
	if !neg16.IsNegatedPowerOfTwo() {
		t.Fatalf("-16 should be a negated power of two, got %v", neg16)
	}
}

func TestCounts(t *testing.T) {
	v := New(8, 0b00011100)
	if v.CountrZero() != 2 {
		t.Fatalf("CountrZero = %d, want 2", v.CountrZero())
	}
	if v.CountlZero() != 3 {
		t.Fatalf("CountlZero = %d, want 3", v.CountlZero())
	}
	if v.PopCount() != 3 {
		t.Fatalf("PopCount = %d, want 3", v.PopCount())
	}
}

func TestSplat(t *testing.T) {
	p := New(4, 0b1010)
	s := Splat(16, p)
	if s.val != 0b1010101010101010 {
		t.Fatalf("Splat(16, 0b1010) = %016b", s.val)
	}
}

func TestByteSwapReverseBits(t *testing.T) {
	v := New(16, 0x1234)
	if got := v.ByteSwap(); got.val != 0x3412 {
		t.Fatalf("ByteSwap(0x1234) = %#x, want 0x3412", got.val)
	}
	r := New(4, 0b1000).ReverseBits()
	if r.val != 0b0001 {
		t.Fatalf("ReverseBits(0b1000) = %04b, want 0001", r.val)
	}
}
