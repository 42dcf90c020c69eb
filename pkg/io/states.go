package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flowdot/pkg/workflow"
)

// ReadStates decodes a run-state snapshot from r. Status names are
// normalized with [workflow.ParseRunStatus]; unknown ones are kept verbatim.
func ReadStates(r io.Reader, f Format) (workflow.States, error) {
	var data map[string]string
	if err := decode(r, f, &data); err != nil {
		return nil, err
	}
	states := make(workflow.States, len(data))
	for id, s := range data {
		st, _ := workflow.ParseRunStatus(s)
		states[id] = st
	}
	return states, nil
}

// ImportStates reads the run-state file at path.
func ImportStates(path string) (workflow.States, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return ReadStates(file, f)
}

// WriteStates encodes states to w.
func WriteStates(w io.Writer, states workflow.States, f Format) error {
	out := make(map[string]string, len(states))
	for id, st := range states {
		out[id] = string(st)
	}
	return encode(w, f, out)
}
