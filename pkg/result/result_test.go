package result

import (
	"path/filepath"
	"testing"

	"github.com/Hatsunespica/xdsl-smt/pkg/eval"
)

func TestTableSortOrder(t *testing.T) {
	tbl := NewTable()
	tbl.Add(Entry{Domain: "knownbits", Op: "and", Result: eval.Result{Bitwidth: 8, UnsolvedCases: 2}})
	tbl.Add(Entry{Domain: "knownbits", Op: "or", Result: eval.Result{Bitwidth: 4, UnsolvedCases: 9}})
	tbl.Add(Entry{Domain: "knownbits", Op: "xor", Result: eval.Result{Bitwidth: 8, UnsolvedCases: 5}})
	entries := tbl.Entries()
	if entries[0].Result.Bitwidth != 4 {
		t.Fatalf("expected the width-4 entry first, got %+v", entries[0])
	}
	if entries[1].Op != "xor" || entries[2].Op != "and" {
		t.Fatalf("expected width-8 entries ordered by unsolved cases descending, got %+v", entries[1:])
	}
	if tbl.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tbl.Len())
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	ckpt := &Checkpoint{
		Entries:       []Entry{{Domain: "knownbits", Op: "and", Result: eval.Result{Bitwidth: 8, Cases: 10}}},
		CompletedKeys: []string{"knownbits:8:and"},
	}
	path := filepath.Join(t.TempDir(), "ckpt.gob")
	if err := SaveCheckpoint(path, ckpt); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	got, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if len(got.Entries) != 1 || got.Entries[0].Result.Cases != 10 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.CompletedKeys) != 1 || got.CompletedKeys[0] != "knownbits:8:and" {
		t.Fatalf("CompletedKeys mismatch: %+v", got.CompletedKeys)
	}
}
