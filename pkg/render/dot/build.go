package dot

import (
	"fmt"

	"github.com/matzehuels/flowdot/pkg/workflow"
)

// Graph attribute values shared by every rendered graph.
const (
	LabelLocTop   = "t"
	RankDirLeftRt = "LR"
)

// Options configures [Build].
type Options struct {
	// States holds the latest run status per qualified task ID. Nil means no
	// run context; tasks then use their own or the default colours.
	States workflow.States
	// Palette overrides the colour table. Nil uses [DefaultPalette].
	Palette *Palette
	// Tooltips adds each group's tooltip to its cluster box.
	Tooltips bool
	// MaxDepth bounds group nesting. Zero uses workflow.DefaultMaxDepth.
	MaxDepth int
}

func (o Options) palette() *Palette {
	if o.Palette != nil {
		return o.Palette
	}
	return DefaultPalette()
}

func (o Options) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return workflow.DefaultMaxDepth
}

// Build converts a workflow into a render graph.
//
// Tasks become styled nodes; groups become clusters whose synthesized join
// nodes stand in for the group wherever an edge crosses its boundary. The
// workflow ID is used as both graph name and label, laid out left to right.
//
// Build fails with [ErrUnknownEndpoint] when an edge references an ID that is
// not in the workflow, [ErrCyclicGroupNesting] for a group tree that contains
// itself, and [ErrInvalidEdge], [ErrDuplicateID], [ErrInvalidID] or
// [ErrInvalidNode] for other malformed input. No partial graph is returned.
func Build(wf *workflow.Workflow, opts Options) (*Graph, error) {
	if wf == nil || wf.ID == "" {
		return nil, fmt.Errorf("workflow: %w", ErrInvalidID)
	}

	ix, err := newIndex(wf.Nodes, opts.maxDepth())
	if err != nil {
		return nil, err
	}
	if err := ix.declare(wf.Edges); err != nil {
		return nil, err
	}

	g := NewGraph(wf.ID, Attrs{"label": wf.ID, "labelloc": LabelLocTop, "rankdir": RankDirLeftRt})
	b := &builder{graph: g, index: ix, palette: opts.palette(), opts: opts}
	if err := b.drawGroup(nil, ix.root); err != nil {
		return nil, err
	}

	edges, reroute := ix.collapse()
	labels := ix.edgeLabels(reroute)
	for _, p := range edges {
		var attrs Attrs
		if label, ok := labels[p]; ok {
			attrs = Attrs{"label": label}
		}
		g.addEdge(p[0], p[1], attrs)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Render builds the workflow graph and serializes it to DOT text with
// default encoding options.
func Render(wf *workflow.Workflow, opts Options) (string, error) {
	g, err := Build(wf, opts)
	if err != nil {
		return "", err
	}
	return g.String(), nil
}

type builder struct {
	graph   *Graph
	index   *index
	palette *Palette
	opts    Options
}

// drawGroup emits the join nodes of gi (when it has external dependencies)
// and its children into cluster c. The root group is drawn at top level.
func (b *builder) drawGroup(c *Cluster, gi *groupInfo) error {
	if !gi.isRoot() {
		if gi.hasUpstream() {
			if err := b.addNode(c, &Node{ID: UpstreamJoinID(gi.id), Kind: NodeKindJoin, Attrs: b.palette.joinAttrs(gi.group)}, rankUpstreamJoin); err != nil {
				return err
			}
		}
		if gi.hasDownstream() {
			if err := b.addNode(c, &Node{ID: DownstreamJoinID(gi.id), Kind: NodeKindJoin, Attrs: b.palette.joinAttrs(gi.group)}, rankDownstreamJoin); err != nil {
				return err
			}
		}
	}

	for _, m := range gi.children {
		if m.task != nil {
			style := b.palette.Resolve(*m.task, b.opts.States[m.id])
			n := &Node{ID: m.id, Kind: NodeKindTask, Attrs: style.attrs(m.task.DisplayLabel())}
			if err := b.addNode(c, n, rankChild); err != nil {
				return err
			}
			continue
		}

		sub := &Cluster{ID: m.id, Attrs: b.palette.clusterAttrs(m.group.group)}
		if b.opts.Tooltips && m.group.group.Tooltip != "" {
			sub.Attrs["tooltip"] = m.group.group.Tooltip
		}
		b.graph.addCluster(c, sub)
		if err := b.drawGroup(sub, m.group); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addNode(c *Cluster, n *Node, rank int) error {
	if !b.graph.addNode(c, n, rank) {
		return fmt.Errorf("%q: %w", n.ID, ErrDuplicateID)
	}
	return nil
}
