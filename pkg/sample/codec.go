package sample

import (
	"bufio"
	"os"

	"github.com/Hatsunespica/xdsl-smt/pkg/domain"
)

// WriteFile serializes triples to path in the packed, unframed layout the
// original engine's write_vecs used: each triple is (lhs, rhs, best), and
// each abstract value is Ops.Arity() (width uint32, value uint64)
// little-endian pairs written back to back, with no length prefix or
// record separator anywhere in the file. The triple count therefore has
// to travel out of band (the filename convention in FileName encodes it).
func WriteFile[D domain.Value[D]](path string, triples []Triple[D]) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, t := range triples {
		if err := t.Lhs.Serialize(w); err != nil {
			return err
		}
		if err := t.Rhs.Serialize(w); err != nil {
			return err
		}
		if err := t.Best.Serialize(w); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ReadFile deserializes count triples from path using ops.Deserialize for
// each of the three abstract values per triple.
func ReadFile[D domain.Value[D]](ops domain.Ops[D], path string, count int) ([]Triple[D], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)
	out := make([]Triple[D], 0, count)
	for i := 0; i < count; i++ {
		lhs, err := ops.Deserialize(r)
		if err != nil {
			return nil, err
		}
		rhs, err := ops.Deserialize(r)
		if err != nil {
			return nil, err
		}
		best, err := ops.Deserialize(r)
		if err != nil {
			return nil, err
		}
		out = append(out, Triple[D]{Lhs: lhs, Rhs: rhs, Best: best})
	}
	return out, nil
}
