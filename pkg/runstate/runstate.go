// Package runstate supplies the latest run status of each task of a
// workflow, used to colour rendered nodes.
//
// A [Source] returns a [workflow.States] map keyed by qualified task ID. A nil
// map means there is no run context at all; a task missing from a non-nil map
// was not seen in the latest run. Both render with the default style.
//
// Sources:
//
//   - [Static] returns a fixed snapshot for every workflow
//   - [Map] holds one snapshot per workflow ID
//   - [File] reads a snapshot file on every call
//   - [Mongo] reads task-instance documents from MongoDB
package runstate

import (
	"context"
	"errors"

	"github.com/matzehuels/flowdot/pkg/io"
	"github.com/matzehuels/flowdot/pkg/workflow"
)

// ErrNoRun is returned by sources that can tell a workflow has never run
// from one whose run recorded no tasks.
var ErrNoRun = errors.New("no run recorded")

// Source looks up the latest run state of a workflow.
type Source interface {
	Latest(ctx context.Context, workflowID string) (workflow.States, error)
}

// Static returns the same snapshot for every workflow.
type Static workflow.States

// Latest returns the snapshot.
func (s Static) Latest(ctx context.Context, workflowID string) (workflow.States, error) {
	return workflow.States(s), nil
}

// Map holds one snapshot per workflow ID.
type Map map[string]workflow.States

// Latest returns the snapshot stored for workflowID, or nil.
func (m Map) Latest(ctx context.Context, workflowID string) (workflow.States, error) {
	return m[workflowID], nil
}

// File reads a run-state file (JSON, YAML or TOML) on every call, so edits
// show up without a restart. The file applies to every workflow.
type File struct {
	Path string
}

// Latest reads and parses the file.
func (f File) Latest(ctx context.Context, workflowID string) (workflow.States, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.ImportStates(f.Path)
}

var (
	_ Source = Static(nil)
	_ Source = Map(nil)
	_ Source = File{}
	_ Source = (*Mongo)(nil)
)
