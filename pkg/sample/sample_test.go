package sample

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/Hatsunespica/xdsl-smt/pkg/bv"
	"github.com/Hatsunespica/xdsl-smt/pkg/domain"
)

func andFn(a []bv.BV) bv.BV { return a[0].And(a[1]) }

func TestFileNameConvention(t *testing.T) {
	got := FileName(RegimeLow, 4, 256)
	want := "low_bw_4_samples_256.bin"
	if got != want {
		t.Fatalf("FileName = %q, want %q", got, want)
	}
}

func TestGenerateLowNonEmpty(t *testing.T) {
	ops := domain.KnownBitsOps{}
	triples := GenerateLow[domain.KnownBits](ops, 3, andFn, nil)
	if len(triples) == 0 {
		t.Fatalf("GenerateLow produced no triples")
	}
	for _, tr := range triples {
		if tr.Best.IsBottom() {
			t.Fatalf("GenerateLow should never emit a bottom best value: %v", tr)
		}
	}
}

func TestGenerateMediumCount(t *testing.T) {
	ops := domain.KnownBitsOps{}
	rng := rand.New(rand.NewPCG(1, 2))
	triples := GenerateMedium[domain.KnownBits](ops, 8, 32, andFn, nil, rng)
	if len(triples) != 32 {
		t.Fatalf("GenerateMedium produced %d triples, want 32", len(triples))
	}
}

func TestGenerateHighCount(t *testing.T) {
	ops := domain.URangeOps{}
	rng := rand.New(rand.NewPCG(3, 4))
	triples := GenerateHigh[domain.URange](ops, 32, 16, 8, andFn, nil, rng)
	if len(triples) != 16 {
		t.Fatalf("GenerateHigh produced %d triples, want 16", len(triples))
	}
}

func TestWriteReadFileRoundTrip(t *testing.T) {
	ops := domain.KnownBitsOps{}
	rng := rand.New(rand.NewPCG(5, 6))
	triples := GenerateMedium[domain.KnownBits](ops, 8, 10, andFn, nil, rng)
	path := filepath.Join(t.TempDir(), FileName(RegimeMedium, 8, len(triples)))
	if err := WriteFile[domain.KnownBits](path, triples); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile[domain.KnownBits](ops, path, len(triples))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != len(triples) {
		t.Fatalf("round trip produced %d triples, want %d", len(got), len(triples))
	}
	for i := range triples {
		if !got[i].Lhs.Equal(triples[i].Lhs) || !got[i].Rhs.Equal(triples[i].Rhs) || !got[i].Best.Equal(triples[i].Best) {
			t.Fatalf("triple %d mismatch: got %+v want %+v", i, got[i], triples[i])
		}
	}
}
