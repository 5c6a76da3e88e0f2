package ops

import (
	"testing"

	"github.com/Hatsunespica/xdsl-smt/pkg/bv"
	"github.com/Hatsunespica/xdsl-smt/pkg/domain"
)

func TestRegistryConcreteBehavior(t *testing.T) {
	w := 8
	add, err := Lookup("add")
	if err != nil {
		t.Fatalf("Lookup(add): %v", err)
	}
	got := add.Concrete([]bv.BV{bv.New(w, 5), bv.New(w, 7)})
	if got.Uint64() != 12 {
		t.Fatalf("add(5,7) = %v, want 12", got)
	}
}

func TestAddNSWPrecondition(t *testing.T) {
	w := 8
	addNSW, err := Lookup("add nsw")
	if err != nil {
		t.Fatalf("Lookup(add nsw): %v", err)
	}
	ok := addNSW.Pre([]bv.BV{bv.SignedMax(w), bv.New(w, 1)})
	if ok {
		t.Fatalf("add nsw precondition should reject signed overflow")
	}
	ok = addNSW.Pre([]bv.BV{bv.New(w, 1), bv.New(w, 1)})
	if !ok {
		t.Fatalf("add nsw precondition should accept 1+1")
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("frobnicate"); err == nil {
		t.Fatalf("expected an error for an unknown operation")
	}
}

func TestKnownBitsAndMatchesConcrete(t *testing.T) {
	w := 6
	kops := domain.KnownBitsOps{}
	for lv := uint64(0); lv < 1<<w; lv++ {
		for rv := uint64(0); rv < 1<<w; rv++ {
			lhs := kops.FromConcrete(bv.New(w, lv))
			rhs := kops.FromConcrete(bv.New(w, rv))
			got := KnownBitsAnd(lhs, rhs)
			want := kops.FromConcrete(bv.New(w, lv&rv))
			if !got.Equal(want) {
				t.Fatalf("KnownBitsAnd(%d,%d) = %v, want %v", lv, rv, got, want)
			}
		}
	}
}

func TestKnownBitsAddSoundOnSingletons(t *testing.T) {
	w := 5
	kops := domain.KnownBitsOps{}
	for lv := uint64(0); lv < 1<<w; lv++ {
		for rv := uint64(0); rv < 1<<w; rv++ {
			lhs := kops.FromConcrete(bv.New(w, lv))
			rhs := kops.FromConcrete(bv.New(w, rv))
			got := KnownBitsAdd(lhs, rhs)
			want := kops.FromConcrete(bv.New(w, lv+rv))
			if !got.Equal(want) {
				t.Fatalf("KnownBitsAdd(%d,%d) = %v, want %v", lv, rv, got, want)
			}
		}
	}
}

func TestKnownBitsAddSoundOnIntervals(t *testing.T) {
	w := 6
	kops := domain.KnownBitsOps{}
	lhs := domain.KnownBits{Zero: 0b000100, One: 0}.WithWidth(w) // bit 2 known zero, rest unknown
	rhs := kops.FromConcrete(bv.New(w, 3))
	got := KnownBitsAdd(lhs, rhs)
	for v := range lhs.Concretize() {
		want := kops.FromConcrete(v.Add(bv.New(w, 3)))
		if !got.IsSuperset(want) {
			t.Fatalf("KnownBitsAdd result %v is not sound for concrete witness %v (want at least %v)", got, v, want)
		}
	}
}
