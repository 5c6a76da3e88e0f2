package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Hatsunespica/xdsl-smt/pkg/domain"
	"github.com/Hatsunespica/xdsl-smt/pkg/ops"
	"github.com/Hatsunespica/xdsl-smt/pkg/sample"
)

func newGenerateCmd() *cobra.Command {
	var regime string
	var count int
	var k int
	var outDir string
	var seed uint64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a triple file for one domain, width, and operation",
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := ops.Lookup(flagOp)
			if err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seed, seed^0xA5A5A5A5))
			path, n, err := generateFile(flagDomain, sample.Regime(regime), flagWidth, count, k, op, outDir, rng)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %d triples to %s\n", n, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&regime, "regime", "low", "sampling regime: low, medium, high")
	cmd.Flags().IntVar(&count, "count", 256, "number of triples for medium/high regimes")
	cmd.Flags().IntVar(&k, "k", 16, "concrete samples per operand for the high regime's approximated oracle")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the triple file into")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "PRNG seed for medium/high regimes")
	return cmd
}

func generateFile(domainName string, regime sample.Regime, width, count, k int, op ops.Op, outDir string, rng *rand.Rand) (string, int, error) {
	switch domainName {
	case "knownbits":
		return generateFileFor[domain.KnownBits](domain.KnownBitsOps{}, regime, width, count, k, op, outDir, rng)
	case "urange":
		return generateFileFor[domain.URange](domain.URangeOps{}, regime, width, count, k, op, outDir, rng)
	case "srange":
		return generateFileFor[domain.SRange](domain.SRangeOps{}, regime, width, count, k, op, outDir, rng)
	case "modulo":
		return generateFileFor[domain.Modulo](domain.ModuloOps{}, regime, width, count, k, op, outDir, rng)
	default:
		return "", 0, fmt.Errorf("generate: unknown domain %q", domainName)
	}
}

func generateFileFor[D domain.Value[D]](dops domain.Ops[D], regime sample.Regime, width, count, k int, op ops.Op, outDir string, rng *rand.Rand) (string, int, error) {
	var triples []sample.Triple[D]
	switch regime {
	case sample.RegimeLow:
		triples = sample.GenerateLow[D](dops, width, op.Concrete, op.Pre)
	case sample.RegimeMedium:
		triples = sample.GenerateMedium[D](dops, width, count, op.Concrete, op.Pre, rng)
	case sample.RegimeHigh:
		triples = sample.GenerateHigh[D](dops, width, count, k, op.Concrete, op.Pre, rng)
	default:
		return "", 0, fmt.Errorf("generate: unknown regime %q", regime)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", 0, err
	}
	name := sample.FileName(regime, width, len(triples))
	path := filepath.Join(outDir, name)
	if err := sample.WriteFile[D](path, triples); err != nil {
		return "", 0, err
	}
	return path, len(triples), nil
}
