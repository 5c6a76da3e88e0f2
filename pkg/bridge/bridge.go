// Package bridge specifies the contract an external decision-procedure
// library must satisfy to stand in as the evaluator's "external" or
// "reference" participant, without committing to any particular binding.
//
// The original engine's bridging story is a cgo call into a solver's
// bit-vector API (the shape this package is grounded on is a Z3 binding:
// construct sorts and constants, run the solver's own transfer-style
// reasoning, and read back a concrete or interval result). That binding
// requires a system install of the solver and a cgo build, which this
// harness does not assume is available, so only the contract is defined
// here; Table is satisfied by anything that can answer the questions an
// evaluation batch needs answered, whether that's a real cgo-backed
// solver, a network RPC to one, or (via NopTable) nothing at all.
package bridge

import (
	"fmt"

	"github.com/Hatsunespica/xdsl-smt/pkg/domain"
)

// Table is the external-library bridge contract for one abstract domain.
// A Table is expected to be safe for concurrent use by multiple batch
// workers.
type Table[D domain.Value[D]] interface {
	// Available reports whether this Table can actually answer queries
	// (a real binding found its native library at startup, a stub
	// always reports false).
	Available() bool

	// BestAbstraction asks the bridge for its own opinion of the best
	// abstract value for applying op to inputs, the same question
	// oracle.Best answers by brute-force concretization. A bridge backed
	// by a real solver can answer this for bit-widths where exhaustive
	// enumeration would never finish.
	BestAbstraction(op string, inputs []D) (D, error)

	// Name identifies the backing library, for result headers and logs
	// ("z3", "nop").
	Name() string
}

// NopTable is the zero-value bridge: Available always reports false and
// BestAbstraction always errors. Evaluation batches configured with a
// NopTable simply skip the external-library participant, which is the
// default until a real binding is wired in.
type NopTable[D domain.Value[D]] struct{}

var _ Table[domain.KnownBits] = NopTable[domain.KnownBits]{}

func (NopTable[D]) Available() bool { return false }

func (NopTable[D]) Name() string { return "nop" }

func (NopTable[D]) BestAbstraction(op string, inputs []D) (d D, err error) {
	return d, fmt.Errorf("bridge: no external library configured (op %q)", op)
}
