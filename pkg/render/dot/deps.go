package dot

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/flowdot/pkg/workflow"
)

// DefaultDependencyLabel titles cross-workflow graphs.
const DefaultDependencyLabel = "Workflow Dependencies"

// DependencyOptions configures [BuildDependencies].
type DependencyOptions struct {
	Palette *Palette
	// Label is the graph title. Empty uses DefaultDependencyLabel.
	Label string
}

// BuildDependencies builds a flat graph of workflows linked through their
// coupling instances. Each record yields source -> instance and
// instance -> target, with the instance drawn as its own node labelled with
// the record's label. Records sharing an instance ID share one node.
//
// Map keys are visited in sorted order, so the first record to introduce a
// node decides its style deterministically. An instance ID that is also a
// workflow ID fails with [ErrDuplicateID].
func BuildDependencies(deps workflow.DependencyMap, opts DependencyOptions) (*Graph, error) {
	palette := opts.Palette
	if palette == nil {
		palette = DefaultPalette()
	}
	label := opts.Label
	if label == "" {
		label = DefaultDependencyLabel
	}

	g := NewGraph("", Attrs{"label": label, "labelloc": LabelLocTop, "rankdir": RankDirLeftRt})
	add := func(n *Node) error {
		if g.addNode(nil, n, rankChild) {
			return nil
		}
		if existing, _ := g.Node(n.ID); existing.Kind != n.Kind {
			return fmt.Errorf("%q is both a workflow and a coupling instance: %w", n.ID, ErrDuplicateID)
		}
		return nil
	}
	addWorkflow := func(id string) error {
		return add(&Node{ID: id, Kind: NodeKindWorkflow, Attrs: palette.Workflow.attrs(id)})
	}

	for _, owner := range slices.Sorted(maps.Keys(deps)) {
		if owner == "" {
			return nil, fmt.Errorf("dependency owner: %w", ErrInvalidID)
		}
		if err := addWorkflow(owner); err != nil {
			return nil, err
		}
		for i, d := range deps[owner] {
			if d.Source == "" || d.Target == "" || d.ID == "" {
				return nil, fmt.Errorf("%s dependency %d: source, target and id are required: %w", owner, i, ErrInvalidID)
			}
			for _, n := range []*Node{
				{ID: d.Source, Kind: NodeKindWorkflow, Attrs: palette.Workflow.attrs(d.Source)},
				{ID: d.Target, Kind: NodeKindWorkflow, Attrs: palette.Workflow.attrs(d.Target)},
				{ID: d.ID, Kind: NodeKindCoupling, Attrs: palette.coupling(d.Kind).attrs(d.NodeLabel())},
			} {
				if err := add(n); err != nil {
					return nil, fmt.Errorf("%s dependency %d: %w", owner, i, err)
				}
			}

			g.addEdge(d.Source, d.ID, nil)
			g.addEdge(d.ID, d.Target, nil)
		}
	}
	return g, nil
}

// RenderDependencies builds the cross-workflow graph and serializes it.
func RenderDependencies(deps workflow.DependencyMap, opts DependencyOptions) (string, error) {
	g, err := BuildDependencies(deps, opts)
	if err != nil {
		return "", err
	}
	return g.String(), nil
}
