// Package eval scores candidate transfer functions against the triples
// pkg/sample generates, in the three modes the driver protocol exposes:
// ordinary per-triple scoring (EvalSingle/Eval), high-bit-width
// size-of-image scoring for widths too large to carry a per-triple
// "best" value (EvalHigh), and the four-participant final comparison
// (EvalFinal) that always scores top, a single reference implementation,
// an external bridge, and the meet of the reference and the bridge.
package eval

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/Hatsunespica/xdsl-smt/pkg/bridge"
	"github.com/Hatsunespica/xdsl-smt/pkg/domain"
	"github.com/Hatsunespica/xdsl-smt/pkg/sample"
)

// TransferFunc is a binary abstract transfer function: the shape every
// candidate, reference implementation, and bridge answer must present.
type TransferFunc[D domain.Value[D]] func(lhs, rhs D) D

// CaseOutcome is one candidate's scoring record for a single triple, once
// its output has been met with ref_meet per the evaluator's per-triple
// procedure.
type CaseOutcome struct {
	Sound         bool
	Exact         bool
	Distance      int
	SoundDistance int
}

// meetAll folds meet across fns' outputs on (lhs, rhs), with top(width) as
// the identity, matching the spec's meet_all(xs, w).
func meetAll[D domain.Value[D]](ops domain.Ops[D], width int, fns []TransferFunc[D], lhs, rhs D) D {
	acc := ops.Top(width)
	for _, f := range fns {
		acc = acc.Meet(f(lhs, rhs))
	}
	return acc
}

// EvalSingle runs one triple's per-triple procedure: it meets every
// reference function's output into ref_meet, decides whether that meet
// is already exact ("solved"), and then scores every synth candidate by
// meeting its own output with ref_meet before comparing to best. ok is
// false when the triple's best value is bottom (the operation was
// undefined on every concrete value the inputs could hold, so there is
// nothing meaningful to score).
func EvalSingle[D domain.Value[D]](ops domain.Ops[D], t sample.Triple[D], syn []TransferFunc[D], ref []TransferFunc[D]) (outcomes []CaseOutcome, solved bool, baseDis int, ok bool) {
	if t.Best.IsBottom() {
		return nil, false, 0, false
	}
	width := t.Lhs.Width()
	refMeet := meetAll[D](ops, width, ref, t.Lhs, t.Rhs)
	solved = refMeet.Equal(t.Best)
	baseDis = refMeet.Distance(t.Best)

	outcomes = make([]CaseOutcome, len(syn))
	for i, f := range syn {
		m := refMeet.Meet(f(t.Lhs, t.Rhs))
		sound := m.IsSuperset(t.Best)
		exact := m.Equal(t.Best)
		dis := m.Distance(t.Best)
		soundDis := dis
		if !sound {
			soundDis = baseDis
		}
		outcomes[i] = CaseOutcome{Sound: sound, Exact: exact, Distance: dis, SoundDistance: soundDis}
	}
	return outcomes, solved, baseDis, true
}

// CandidateTally accumulates one synth candidate's outcomes across a batch.
type CandidateTally struct {
	Sound         int
	Exact         int
	UnsolvedExact int
	SumDistance   int
	SumSoundDist  int
}

// Result accumulates batch-level counters shared across every candidate
// plus one CandidateTally per synth candidate, mirroring the original
// engine's per-batch Results tally.
type Result struct {
	Bitwidth      int
	Cases         int
	UnsolvedCases int
	SumBaseDist   int
	Candidates    []CandidateTally
}

// Add folds one triple's outcomes into the running tally. unsolved_exact
// counts a candidate's exact outcomes only among triples where the
// reference meet itself fell short of best.
func (r *Result) Add(outcomes []CaseOutcome, solved bool, baseDis int) {
	r.Cases++
	if !solved {
		r.UnsolvedCases++
	}
	r.SumBaseDist += baseDis
	if r.Candidates == nil {
		r.Candidates = make([]CandidateTally, len(outcomes))
	}
	for i, o := range outcomes {
		c := &r.Candidates[i]
		if o.Sound {
			c.Sound++
		}
		if o.Exact {
			c.Exact++
			if !solved {
				c.UnsolvedExact++
			}
		}
		c.SumDistance += o.Distance
		c.SumSoundDist += o.SoundDistance
	}
}

func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bw: %d\ncases: %d\nunsolved: %d\nsum_base_distance: %d\n", r.Bitwidth, r.Cases, r.UnsolvedCases, r.SumBaseDist)
	for i, c := range r.Candidates {
		fmt.Fprintf(&b, "candidate[%d]: sound=%d exact=%d unsolved_exact=%d sum_distance=%d sum_sound_distance=%d\n",
			i, c.Sound, c.Exact, c.UnsolvedExact, c.SumDistance, c.SumSoundDist)
	}
	b.WriteString("---")
	return b.String()
}

// Eval scores every candidate in syn against every triple in triples,
// meeting each against the reference functions' combined output per
// triple, and returns the accumulated Result.
func Eval[D domain.Value[D]](ops domain.Ops[D], width int, triples []sample.Triple[D], syn []TransferFunc[D], ref []TransferFunc[D]) Result {
	res := Result{Bitwidth: width}
	for _, t := range triples {
		outcomes, solved, baseDis, ok := EvalSingle[D](ops, t, syn, ref)
		if !ok {
			continue
		}
		res.Add(outcomes, solved, baseDis)
	}
	return res
}

// HighBwResult is the size-of-image tally EvalHigh produces: rather than
// compare against a single best value (infeasible to compute exactly at
// these widths), it compares how large a concrete set the candidate's
// output represents against how large the reference's output represents,
// on the same randomly drawn abstract inputs.
type HighBwResult struct {
	Bitwidth     int
	NumSamples   int
	SumRefSize   float64
	SumSynthSize float64
	SumMeetSize  float64
	NumSynthBot  int
}

func (r HighBwResult) String() string {
	return fmt.Sprintf(
		"bw: %d\nsamples: %d\nsum_ref_size: %g\nsum_synth_size: %g\nsum_meet_size: %g\nsynth_bottoms: %d\n---",
		r.Bitwidth, r.NumSamples, r.SumRefSize, r.SumSynthSize, r.SumMeetSize, r.NumSynthBot,
	)
}

// EvalHigh draws numSamples random (lhs, rhs) pairs at the given width
// and, for each, compares the concrete-set size of candidate(lhs, rhs)
// against reference(lhs, rhs) and their meet. The meet is never larger
// than the candidate's output, so SumMeetSize <= SumSynthSize; a candidate
// at least as precise as the reference keeps the two equal, while one less
// precise than the reference pushes SumSynthSize above SumMeetSize.
func EvalHigh[D domain.Value[D]](ops domain.Ops[D], width, numSamples int, candidate, reference TransferFunc[D], rng *rand.Rand) HighBwResult {
	res := HighBwResult{Bitwidth: width}
	for i := 0; i < numSamples; i++ {
		lhs := ops.Rand(rng, width)
		rhs := ops.Rand(rng, width)
		synth := candidate(lhs, rhs)
		ref := reference(lhs, rhs)
		meet := synth.Meet(ref)
		res.NumSamples++
		res.SumRefSize += ref.Size()
		res.SumSynthSize += synth.Size()
		res.SumMeetSize += meet.Size()
		if synth.IsBottom() {
			res.NumSynthBot++
		}
	}
	return res
}

// FinalResult is the four-participant comparison EvalFinal always runs:
// the trivial top value, a single designated reference implementation,
// the external bridge (when available), and the meet of the reference
// and the bridge. Per spec, each participant reports only distance and
// exactness; sound/solved/sound-distance stay zero.
type FinalResult struct {
	Bitwidth  int
	Cases     int
	Top       CandidateTally
	Reference CandidateTally
	Bridge    CandidateTally
	BridgeRan bool
	Meet      CandidateTally
}

func scoreFinal[D domain.Value[D]](tally *CandidateTally, val, best D) {
	tally.SumDistance += val.Distance(best)
	if val.Equal(best) {
		tally.Exact++
	}
}

// EvalFinal scores the four fixed participants against triples, skipping
// any triple whose best is bottom: "top" (the trivial, maximally
// imprecise answer), a single named reference transfer function, the
// bridged external library's opinion when tbl.Available(), and the meet
// of the reference and the bridge (or of the reference and top, when the
// bridge is unavailable).
func EvalFinal[D domain.Value[D]](ops domain.Ops[D], width int, triples []sample.Triple[D], reference TransferFunc[D], tbl bridge.Table[D], opName string) FinalResult {
	out := FinalResult{Bitwidth: width}
	bridgeAvailable := tbl != nil && tbl.Available()
	out.BridgeRan = bridgeAvailable

	for _, t := range triples {
		if t.Best.IsBottom() {
			continue
		}
		out.Cases++

		top := ops.Top(width)
		scoreFinal[D](&out.Top, top, t.Best)

		ref := reference(t.Lhs, t.Rhs)
		scoreFinal[D](&out.Reference, ref, t.Best)

		bridgeVal := top
		if bridgeAvailable {
			bv, err := tbl.BestAbstraction(opName, []D{t.Lhs, t.Rhs})
			if err == nil {
				bridgeVal = bv
			}
			scoreFinal[D](&out.Bridge, bridgeVal, t.Best)
		}

		meet := ref.Meet(bridgeVal)
		scoreFinal[D](&out.Meet, meet, t.Best)
	}
	return out
}
