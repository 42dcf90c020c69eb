package dot

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEndpoint is returned when an edge references an ID that is
	// not a task or group of the workflow.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")

	// ErrCyclicGroupNesting is returned when a group contains itself, directly
	// or through descendants, or nesting exceeds the configured depth limit.
	ErrCyclicGroupNesting = errors.New("cyclic group nesting")

	// ErrInvalidEdge is returned for self-loops and for edges between a group
	// and one of its own descendants.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrDuplicateID is returned when two nodes share a qualified ID.
	ErrDuplicateID = errors.New("duplicate node ID")

	// ErrInvalidID is returned for empty task, group, or workflow IDs.
	ErrInvalidID = errors.New("ID must not be empty")

	// ErrInvalidNode is returned for a node whose kind does not match the
	// variant it holds.
	ErrInvalidNode = errors.New("invalid node")
)

// EndpointError describes an edge whose endpoint could not be resolved.
// It matches [ErrUnknownEndpoint] with errors.Is.
type EndpointError struct {
	From, To string
	Missing  string
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("edge %s -> %s: %v: %q", e.From, e.To, ErrUnknownEndpoint, e.Missing)
}

// Is reports whether target is ErrUnknownEndpoint.
func (e *EndpointError) Is(target error) bool { return target == ErrUnknownEndpoint }
