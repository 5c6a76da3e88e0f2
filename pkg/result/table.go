// Package result tallies and persists evaluation outcomes across a run
// that spans many (domain, bit-width, operation) batches.
package result

import (
	"sort"
	"sync"

	"github.com/Hatsunespica/xdsl-smt/pkg/eval"
)

// Entry is one completed batch's result, tagged with enough information
// to identify which (domain, width, operation) it came from.
type Entry struct {
	Domain string
	Op     string
	Result eval.Result
}

// Table stores completed batch entries, safe for concurrent Add calls
// from a BatchPool's workers.
type Table struct {
	mu      sync.Mutex
	entries []Entry
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts one completed entry into the table.
func (t *Table) Add(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
}

// Entries returns a copy of every entry, sorted by bit-width then by
// unsolved-case count descending (the batches most worth a closer look
// sort first).
func (t *Table) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Result.Bitwidth != out[j].Result.Bitwidth {
			return out[i].Result.Bitwidth < out[j].Result.Bitwidth
		}
		return out[i].Result.UnsolvedCases > out[j].Result.UnsolvedCases
	})
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
