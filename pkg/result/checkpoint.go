package result

import (
	"encoding/gob"
	"os"

	"github.com/Hatsunespica/xdsl-smt/pkg/eval"
)

// Checkpoint holds enough state to resume a multi-batch evaluation run:
// every entry completed so far, and which (domain, width, operation)
// batches in the planned sweep are already accounted for.
type Checkpoint struct {
	Entries       []Entry
	CompletedKeys []string // "domain:width:op" strings already processed
}

func init() {
	gob.Register(Entry{})
	gob.Register(eval.Result{})
}

// SaveCheckpoint writes run state to a file.
func SaveCheckpoint(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ckpt)
}

// LoadCheckpoint loads run state from a file.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, err
	}
	return &ckpt, nil
}
