package workflow

import "strings"

// PathSeparator joins group IDs and local IDs into qualified IDs.
const PathSeparator = "."

// NodeKind tags the variant held by a [Node].
type NodeKind int

const (
	// KindTask marks a leaf task.
	KindTask NodeKind = iota
	// KindGroup marks a group container.
	KindGroup
)

// String returns "task" or "group".
func (k NodeKind) String() string {
	if k == KindGroup {
		return "group"
	}
	return "task"
}

// Task is a single unit of work.
type Task struct {
	ID    string `json:"id"`              // Local identifier, unique among its siblings
	Label string `json:"label,omitempty"` // Display label; defaults to ID

	// Color and FgColor are the task's own fill and border colours, used when
	// no run state is supplied. Empty values fall back to the palette default.
	Color   string `json:"color,omitempty"`
	FgColor string `json:"fgcolor,omitempty"`
}

// DisplayLabel returns Label, or ID when no label is set.
func (t Task) DisplayLabel() string {
	if t.Label != "" {
		return t.Label
	}
	return t.ID
}

// Group is a named container of tasks and nested groups.
type Group struct {
	ID       string `json:"id"`
	Label    string `json:"label,omitempty"`
	Tooltip  string `json:"tooltip,omitempty"`
	Color    string `json:"color,omitempty"`   // join node fill
	FgColor  string `json:"fgcolor,omitempty"` // join node and cluster border
	Children []Node `json:"children,omitempty"`
}

// DisplayLabel returns Label, or ID when no label is set.
func (g *Group) DisplayLabel() string {
	if g.Label != "" {
		return g.Label
	}
	return g.ID
}

// Node is either a task or a group. Exactly one of Task and Group is set,
// matching Kind.
type Node struct {
	Kind  NodeKind `json:"kind"`
	Task  *Task    `json:"task,omitempty"`
	Group *Group   `json:"group,omitempty"`
}

// TaskNode wraps t as a task node.
func TaskNode(t Task) Node { return Node{Kind: KindTask, Task: &t} }

// GroupNode wraps g as a group node.
func GroupNode(g *Group) Node { return Node{Kind: KindGroup, Group: g} }

// NewGroup builds a group holding children in declaration order.
func NewGroup(id string, children ...Node) *Group {
	return &Group{ID: id, Children: children}
}

// ID returns the local identifier of the wrapped task or group.
func (n Node) ID() string {
	switch {
	case n.Kind == KindGroup && n.Group != nil:
		return n.Group.ID
	case n.Task != nil:
		return n.Task.ID
	}
	return ""
}

// Edge declares that From must complete before To starts. Both endpoints are
// qualified IDs of tasks or groups.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// Workflow is the rendered unit: a named, ordered collection of nodes and the
// dependency edges declared between them.
type Workflow struct {
	ID    string `json:"id"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges,omitempty"`
}

// Qualify joins a parent path and a local ID. An empty parent yields id.
func Qualify(parent, id string) string {
	if parent == "" {
		return id
	}
	return parent + PathSeparator + id
}

// LocalID returns the last path segment of a qualified ID.
func LocalID(qualified string) string {
	if i := strings.LastIndex(qualified, PathSeparator); i >= 0 {
		return qualified[i+len(PathSeparator):]
	}
	return qualified
}

// WalkFunc is called by [Workflow.Walk] for every node. Returning false skips
// the children of a group.
type WalkFunc func(qualifiedID string, n Node, depth int) bool

// Walk visits nodes depth-first in declaration order. Walk stops descending
// at maxDepth, so a malformed tree that contains itself cannot loop forever;
// use a non-positive maxDepth for no limit.
func (w *Workflow) Walk(maxDepth int, fn WalkFunc) {
	var visit func(parent string, nodes []Node, depth int)
	visit = func(parent string, nodes []Node, depth int) {
		if maxDepth > 0 && depth > maxDepth {
			return
		}
		for _, n := range nodes {
			id := Qualify(parent, n.ID())
			if !fn(id, n, depth) {
				continue
			}
			if n.Kind == KindGroup && n.Group != nil {
				visit(id, n.Group.Children, depth+1)
			}
		}
	}
	visit("", w.Nodes, 0)
}

// TaskCount returns the number of tasks in the workflow, including nested ones.
func (w *Workflow) TaskCount() int {
	count := 0
	w.Walk(DefaultMaxDepth, func(_ string, n Node, _ int) bool {
		if n.Kind == KindTask {
			count++
		}
		return true
	})
	return count
}

// DefaultMaxDepth bounds group nesting when no explicit limit is given.
const DefaultMaxDepth = 256
