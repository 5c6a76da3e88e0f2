package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// driverRequest is the textual stdin protocol the original engine's
// main.cpp parsed: a line naming the corpus directory, a line naming the
// abstract domain, an optional line naming an operation (empty means
// ordinary eval; non-empty selects final mode keyed by that name), a
// line of single-quoted candidate ("synth") function names, a line of
// single-quoted baseline function names, and the remainder of stdin as a
// blob of JIT source the engine compiled and linked against at runtime.
//
// The JIT toolchain that turns that source blob into callable transfer
// functions is out of scope here: protocol only parses and reports the
// request's shape, it never compiles or executes the blob.
type driverRequest struct {
	CorpusDir  string
	Domain     string
	OpName     string
	SynNames   []string
	BFnNames   []string
	SourceSize int
}

func newProtocolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protocol",
		Short: "Parse one driver-protocol request from stdin and report its shape",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readDriverRequest(os.Stdin)
			if err != nil {
				return err
			}
			fmt.Printf("corpus_dir: %s\n", req.CorpusDir)
			fmt.Printf("domain: %s\n", req.Domain)
			fmt.Printf("op_name: %s\n", req.OpName)
			fmt.Printf("synth_names: %s\n", strings.Join(req.SynNames, " "))
			fmt.Printf("baseline_names: %s\n", strings.Join(req.BFnNames, " "))
			fmt.Printf("source_bytes: %d\n", req.SourceSize)
			return nil
		},
	}
	return cmd
}

func readDriverRequest(r io.Reader) (driverRequest, error) {
	br := bufio.NewReader(r)
	corpusDir, err := readLine(br)
	if err != nil {
		return driverRequest{}, fmt.Errorf("protocol: reading corpus dir line: %w", err)
	}
	domainName, err := readLine(br)
	if err != nil {
		return driverRequest{}, fmt.Errorf("protocol: reading domain line: %w", err)
	}
	opLine, err := readLine(br)
	if err != nil {
		return driverRequest{}, fmt.Errorf("protocol: reading op-name line: %w", err)
	}
	synLine, err := readLine(br)
	if err != nil {
		return driverRequest{}, fmt.Errorf("protocol: reading synth-names line: %w", err)
	}
	bFnLine, err := readLine(br)
	if err != nil {
		return driverRequest{}, fmt.Errorf("protocol: reading baseline-names line: %w", err)
	}
	rest, err := io.ReadAll(br)
	if err != nil {
		return driverRequest{}, fmt.Errorf("protocol: reading source blob: %w", err)
	}
	return driverRequest{
		CorpusDir:  strings.TrimSpace(corpusDir),
		Domain:     strings.TrimSpace(domainName),
		OpName:     strings.TrimSpace(opLine),
		SynNames:   splitQuotedNames(synLine),
		BFnNames:   splitQuotedNames(bFnLine),
		SourceSize: len(rest),
	}, nil
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if err == io.EOF && line == "" {
		return "", io.ErrUnexpectedEOF
	}
	return line, nil
}

// splitQuotedNames splits a line of whitespace-separated, single-quoted
// transfer-function names and strips the surrounding quotes from each.
// A token without both surrounding quotes is returned as-is.
func splitQuotedNames(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, len(fields))
	for i, f := range fields {
		if len(f) >= 2 && f[0] == '\'' && f[len(f)-1] == '\'' {
			f = f[1 : len(f)-1]
		}
		out[i] = f
	}
	return out
}
