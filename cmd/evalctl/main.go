// Command evalctl drives abstract-domain transfer-function evaluation:
// generating triple files, scoring candidates against them, and speaking
// the textual driver protocol the original evaluation engine's main.cpp
// exposed over stdin/stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagDomain string
	flagWidth  int
	flagOp     string
)

func main() {
	root := &cobra.Command{
		Use:   "evalctl",
		Short: "Evaluate abstract-domain transfer functions against generated triples",
	}
	root.PersistentFlags().StringVar(&flagDomain, "domain", "knownbits", "abstract domain: knownbits, urange, srange, modulo")
	root.PersistentFlags().IntVar(&flagWidth, "width", 8, "bit-width of the values under evaluation")
	root.PersistentFlags().StringVar(&flagOp, "op", "and", "operation name from the op catalog")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newEvalCmd())
	root.AddCommand(newProtocolCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
