package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flowdot/pkg/workflow"
)

const (
	kindTask  = "task"
	kindGroup = "group"
)

type workflowFile struct {
	ID    string     `json:"id" yaml:"id" toml:"id"`
	Nodes []nodeSpec `json:"nodes" yaml:"nodes" toml:"nodes"`
	Edges []edgeSpec `json:"edges,omitempty" yaml:"edges,omitempty" toml:"edges,omitempty"`
}

type nodeSpec struct {
	ID       string     `json:"id" yaml:"id" toml:"id"`
	Kind     string     `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`
	Label    string     `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Tooltip  string     `json:"tooltip,omitempty" yaml:"tooltip,omitempty" toml:"tooltip,omitempty"`
	Color    string     `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
	FgColor  string     `json:"fgcolor,omitempty" yaml:"fgcolor,omitempty" toml:"fgcolor,omitempty"`
	Children []nodeSpec `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

type edgeSpec struct {
	From  string `json:"from" yaml:"from" toml:"from"`
	To    string `json:"to" yaml:"to" toml:"to"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

// ReadWorkflow decodes a workflow definition from r.
//
// ReadWorkflow only rejects files it cannot decode and nodes with an unknown
// kind; the graph checks (unknown endpoints, duplicate IDs) happen at render
// time. ReadWorkflow does not close r.
func ReadWorkflow(r io.Reader, f Format) (*workflow.Workflow, error) {
	var data workflowFile
	if err := decode(r, f, &data); err != nil {
		return nil, err
	}

	nodes, err := toNodes(data.Nodes, "")
	if err != nil {
		return nil, err
	}
	wf := &workflow.Workflow{ID: data.ID, Nodes: nodes}
	for _, e := range data.Edges {
		wf.Edges = append(wf.Edges, workflow.Edge{From: e.From, To: e.To, Label: e.Label})
	}
	return wf, nil
}

func toNodes(specs []nodeSpec, parent string) ([]workflow.Node, error) {
	nodes := make([]workflow.Node, 0, len(specs))
	for _, s := range specs {
		switch {
		case s.Kind == kindGroup || (s.Kind == "" && s.Children != nil):
			children, err := toNodes(s.Children, workflow.Qualify(parent, s.ID))
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, workflow.GroupNode(&workflow.Group{
				ID:       s.ID,
				Label:    s.Label,
				Tooltip:  s.Tooltip,
				Color:    s.Color,
				FgColor:  s.FgColor,
				Children: children,
			}))
		case s.Kind == kindTask || s.Kind == "":
			if len(s.Children) > 0 {
				return nil, fmt.Errorf("node %s: task cannot have children: %w", workflow.Qualify(parent, s.ID), ErrMalformed)
			}
			nodes = append(nodes, workflow.TaskNode(workflow.Task{
				ID:      s.ID,
				Label:   s.Label,
				Color:   s.Color,
				FgColor: s.FgColor,
			}))
		default:
			return nil, fmt.Errorf("node %s: unknown kind %q: %w", workflow.Qualify(parent, s.ID), s.Kind, ErrMalformed)
		}
	}
	return nodes, nil
}

// ImportWorkflow reads the workflow file at path, picking the format from
// its extension.
func ImportWorkflow(path string) (*workflow.Workflow, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return ReadWorkflow(file, f)
}

// WriteWorkflow encodes wf to w. The output can be read back with
// [ReadWorkflow].
func WriteWorkflow(w io.Writer, wf *workflow.Workflow, f Format) error {
	out := workflowFile{ID: wf.ID, Nodes: fromNodes(wf.Nodes)}
	for _, e := range wf.Edges {
		out.Edges = append(out.Edges, edgeSpec{From: e.From, To: e.To, Label: e.Label})
	}
	return encode(w, f, out)
}

func fromNodes(nodes []workflow.Node) []nodeSpec {
	specs := make([]nodeSpec, 0, len(nodes))
	for _, n := range nodes {
		switch {
		case n.Kind == workflow.KindGroup && n.Group != nil:
			g := n.Group
			specs = append(specs, nodeSpec{
				ID:       g.ID,
				Kind:     kindGroup,
				Label:    g.Label,
				Tooltip:  g.Tooltip,
				Color:    g.Color,
				FgColor:  g.FgColor,
				Children: fromNodes(g.Children),
			})
		case n.Task != nil:
			t := n.Task
			specs = append(specs, nodeSpec{ID: t.ID, Label: t.Label, Color: t.Color, FgColor: t.FgColor})
		}
	}
	return specs
}

// ExportWorkflow writes wf to path in the format given by its extension.
func ExportWorkflow(wf *workflow.Workflow, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	return WriteWorkflow(file, wf, f)
}
