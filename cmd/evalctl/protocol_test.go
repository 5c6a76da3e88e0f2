package main

import (
	"strings"
	"testing"
)

func TestReadDriverRequest(t *testing.T) {
	input := "corpus/\nknownbits\n\n'and' 'or' 'xor'\n'add' 'sub'\nint foo() { return 0; }\nmore source\n"
	req, err := readDriverRequest(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readDriverRequest: %v", err)
	}
	if req.CorpusDir != "corpus/" {
		t.Fatalf("CorpusDir = %q, want corpus/", req.CorpusDir)
	}
	if req.Domain != "knownbits" {
		t.Fatalf("Domain = %q, want knownbits", req.Domain)
	}
	if req.OpName != "" {
		t.Fatalf("OpName = %q, want empty (ordinary eval mode)", req.OpName)
	}
	if strings.Join(req.SynNames, ",") != "and,or,xor" {
		t.Fatalf("SynNames = %v, want quotes stripped", req.SynNames)
	}
	if strings.Join(req.BFnNames, ",") != "add,sub" {
		t.Fatalf("BFnNames = %v, want quotes stripped", req.BFnNames)
	}
	wantSize := len("int foo() { return 0; }\nmore source\n")
	if req.SourceSize != wantSize {
		t.Fatalf("SourceSize = %d, want %d", req.SourceSize, wantSize)
	}
}

func TestReadDriverRequestFinalModeOpName(t *testing.T) {
	input := "corpus/\nurange\nadd\n'cand1'\n'ref1'\n"
	req, err := readDriverRequest(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readDriverRequest: %v", err)
	}
	if req.OpName != "add" {
		t.Fatalf("OpName = %q, want add (final mode keyed by operation)", req.OpName)
	}
	if strings.Join(req.SynNames, ",") != "cand1" {
		t.Fatalf("SynNames = %v", req.SynNames)
	}
	if strings.Join(req.BFnNames, ",") != "ref1" {
		t.Fatalf("BFnNames = %v", req.BFnNames)
	}
}

func TestReadDriverRequestTruncated(t *testing.T) {
	if _, err := readDriverRequest(strings.NewReader("only_one_line\n")); err == nil {
		t.Fatalf("expected an error for a truncated request")
	}
}
