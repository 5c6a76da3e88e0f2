package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Hatsunespica/xdsl-smt/pkg/domain"
	"github.com/Hatsunespica/xdsl-smt/pkg/eval"
	"github.com/Hatsunespica/xdsl-smt/pkg/ops"
	"github.com/Hatsunespica/xdsl-smt/pkg/result"
	"github.com/Hatsunespica/xdsl-smt/pkg/sample"
)

func newEvalCmd() *cobra.Command {
	var triplesPath string
	var count int
	var candidateNames []string
	var checkpointPath string

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Score candidate transfer functions against a triple file",
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := ops.Lookup(flagOp)
			if err != nil {
				return err
			}

			key := batchKey(flagDomain, flagWidth, op.Name)
			var ckpt *result.Checkpoint
			if checkpointPath != "" {
				ckpt, err = loadOrNewCheckpoint(checkpointPath)
				if err != nil {
					return err
				}
				if entry, ok := completedEntry(ckpt, key); ok {
					fmt.Println(entry.Result)
					return nil
				}
			}

			res, err := evalFile(flagDomain, flagWidth, triplesPath, count, op, candidateNames)
			if err != nil {
				return err
			}
			fmt.Println(res)

			if ckpt != nil {
				ckpt.Entries = append(ckpt.Entries, result.Entry{Domain: flagDomain, Op: op.Name, Result: res})
				ckpt.CompletedKeys = append(ckpt.CompletedKeys, key)
				if err := result.SaveCheckpoint(checkpointPath, ckpt); err != nil {
					return fmt.Errorf("eval: saving checkpoint: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&triplesPath, "triples", "", "path to a triple file produced by generate")
	cmd.Flags().IntVar(&count, "count", 0, "number of triples in the file (encoded in its name by convention)")
	cmd.Flags().StringSliceVar(&candidateNames, "candidate", []string{"reference"}, "candidates to score, each 'reference' or 'top' (ref_meet is always the reference transfer function)")
	cmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "resume/save progress here across a multi-batch sweep; skips (domain, width, op) batches already recorded")
	cmd.MarkFlagRequired("triples")
	cmd.MarkFlagRequired("count")
	return cmd
}

// batchKey identifies one (domain, width, op) batch in a checkpoint's
// CompletedKeys set.
func batchKey(domainName string, width int, opName string) string {
	return fmt.Sprintf("%s:%d:%s", domainName, width, opName)
}

// loadOrNewCheckpoint loads an existing checkpoint file, or returns a
// fresh empty one if path doesn't exist yet.
func loadOrNewCheckpoint(path string) (*result.Checkpoint, error) {
	ckpt, err := result.LoadCheckpoint(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &result.Checkpoint{}, nil
		}
		return nil, fmt.Errorf("eval: loading checkpoint: %w", err)
	}
	return ckpt, nil
}

// completedEntry reports whether key is already recorded in ckpt, and
// returns its stored entry.
func completedEntry(ckpt *result.Checkpoint, key string) (result.Entry, bool) {
	completed := false
	for _, k := range ckpt.CompletedKeys {
		if k == key {
			completed = true
			break
		}
	}
	if !completed {
		return result.Entry{}, false
	}
	for _, e := range ckpt.Entries {
		if batchKey(e.Domain, e.Result.Bitwidth, e.Op) == key {
			return e, true
		}
	}
	return result.Entry{}, false
}

func evalFile(domainName string, width int, triplesPath string, count int, op ops.Op, candidateNames []string) (eval.Result, error) {
	switch domainName {
	case "knownbits":
		return evalFileFor[domain.KnownBits](domain.KnownBitsOps{}, width, triplesPath, count, candidateNames, knownBitsReference(op.Name))
	case "urange":
		return evalFileFor[domain.URange](domain.URangeOps{}, width, triplesPath, count, candidateNames, nil)
	case "srange":
		return evalFileFor[domain.SRange](domain.SRangeOps{}, width, triplesPath, count, candidateNames, nil)
	case "modulo":
		return evalFileFor[domain.Modulo](domain.ModuloOps{}, width, triplesPath, count, candidateNames, nil)
	default:
		return eval.Result{}, fmt.Errorf("eval: unknown domain %q", domainName)
	}
}

func knownBitsReference(opName string) eval.TransferFunc[domain.KnownBits] {
	switch opName {
	case "and":
		return ops.KnownBitsAnd
	case "or":
		return ops.KnownBitsOr
	case "xor":
		return ops.KnownBitsXor
	case "add", "add nsw", "add nuw":
		return ops.KnownBitsAdd
	default:
		return nil
	}
}

func evalFileFor[D domain.Value[D]](dops domain.Ops[D], width int, triplesPath string, count int, candidateNames []string, reference eval.TransferFunc[D]) (eval.Result, error) {
	triples, err := sample.ReadFile[D](dops, triplesPath, count)
	if err != nil {
		return eval.Result{}, err
	}

	syn := make([]eval.TransferFunc[D], len(candidateNames))
	for i, name := range candidateNames {
		switch name {
		case "top":
			syn[i] = func(lhs, rhs D) D { return dops.Top(width) }
		case "reference":
			if reference == nil {
				return eval.Result{}, fmt.Errorf("eval: no reference transfer function registered for this domain/operation")
			}
			syn[i] = reference
		default:
			return eval.Result{}, fmt.Errorf("eval: unknown candidate %q", name)
		}
	}
	if reference == nil {
		return eval.Result{}, fmt.Errorf("eval: no reference transfer function registered for this domain/operation")
	}
	ref := []eval.TransferFunc[D]{reference}

	res := eval.Eval[D](dops, width, triples, syn, ref)
	return res, nil
}
