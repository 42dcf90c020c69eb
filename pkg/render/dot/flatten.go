package dot

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/flowdot/pkg/workflow"
)

// Join node suffixes appended to a group path.
const (
	UpstreamJoinSuffix   = ".upstream_join_id"
	DownstreamJoinSuffix = ".downstream_join_id"
)

// UpstreamJoinID returns the ID of the entry join node of a group.
func UpstreamJoinID(groupPath string) string { return groupPath + UpstreamJoinSuffix }

// DownstreamJoinID returns the ID of the exit join node of a group.
func DownstreamJoinID(groupPath string) string { return groupPath + DownstreamJoinSuffix }

type pair = [2]string

// member is one child of a group: a task or a nested group.
type member struct {
	id    string
	task  *workflow.Task
	group *groupInfo
}

type taskInfo struct {
	id     string
	task   *workflow.Task
	parent *groupInfo
}

// groupInfo is the flattened view of one group. The root of the workflow is
// represented by a groupInfo with an empty id and nil group.
type groupInfo struct {
	id       string
	group    *workflow.Group
	parent   *groupInfo
	children []member
	tasks    []string // Qualified IDs of all tasks in the subtree, in declaration order

	upTasks, upGroups, downTasks, downGroups []string

	resolved      bool
	roots, leaves []string
}

func (g *groupInfo) isRoot() bool { return g.parent == nil }

func (g *groupInfo) hasUpstream() bool   { return len(g.upTasks)+len(g.upGroups) > 0 }
func (g *groupInfo) hasDownstream() bool { return len(g.downTasks)+len(g.downGroups) > 0 }

// contains reports whether h is g or one of its descendants.
func (g *groupInfo) contains(h *groupInfo) bool {
	for ; h != nil; h = h.parent {
		if h == g {
			return true
		}
	}
	return false
}

// index resolves qualified IDs and computes the group boundaries the builder
// needs to rewrite edges through join nodes.
type index struct {
	root   *groupInfo
	tasks  map[string]*taskInfo
	groups map[string]*groupInfo
	edges  []workflow.Edge
	labels map[pair]string
}

// newIndex walks the node tree. It fails with ErrCyclicGroupNesting when a
// group is reached again along its own path or nesting exceeds maxDepth.
func newIndex(nodes []workflow.Node, maxDepth int) (*index, error) {
	ix := &index{
		root:   &groupInfo{},
		tasks:  make(map[string]*taskInfo),
		groups: make(map[string]*groupInfo),
		labels: make(map[pair]string),
	}
	onPath := make(map[*workflow.Group]bool)
	if err := ix.addChildren(ix.root, nodes, onPath, 0, maxDepth); err != nil {
		return nil, err
	}
	return ix, nil
}

func (ix *index) addChildren(parent *groupInfo, nodes []workflow.Node, onPath map[*workflow.Group]bool, depth, maxDepth int) error {
	if depth > maxDepth {
		return fmt.Errorf("group %q: nesting deeper than %d: %w", parent.id, maxDepth, ErrCyclicGroupNesting)
	}
	for _, n := range nodes {
		local := n.ID()
		if local == "" {
			return fmt.Errorf("child of %q: %w", parent.id, ErrInvalidID)
		}
		id := workflow.Qualify(parent.id, local)
		if ix.exists(id) {
			return fmt.Errorf("%q: %w", id, ErrDuplicateID)
		}

		switch {
		case n.Kind == workflow.KindTask && n.Task != nil:
			ix.tasks[id] = &taskInfo{id: id, task: n.Task, parent: parent}
			parent.children = append(parent.children, member{id: id, task: n.Task})
			for g := parent; g != nil; g = g.parent {
				g.tasks = append(g.tasks, id)
			}

		case n.Kind == workflow.KindGroup && n.Group != nil:
			if onPath[n.Group] {
				return fmt.Errorf("group %q contains itself: %w", id, ErrCyclicGroupNesting)
			}
			gi := &groupInfo{id: id, group: n.Group, parent: parent}
			ix.groups[id] = gi
			parent.children = append(parent.children, member{id: id, group: gi})

			onPath[n.Group] = true
			err := ix.addChildren(gi, n.Group.Children, onPath, depth+1, maxDepth)
			delete(onPath, n.Group)
			if err != nil {
				return err
			}

		default:
			return fmt.Errorf("%q: %s node without payload: %w", id, n.Kind, ErrInvalidNode)
		}
	}
	return nil
}

func (ix *index) exists(id string) bool {
	_, isTask := ix.tasks[id]
	_, isGroup := ix.groups[id]
	return isTask || isGroup
}

// container returns the group holding id (for tasks) or id itself (for
// groups), and whether id is a group.
func (ix *index) container(id string) (*groupInfo, bool, bool) {
	if t, ok := ix.tasks[id]; ok {
		return t.parent, false, true
	}
	if g, ok := ix.groups[id]; ok {
		return g, true, true
	}
	return nil, false, false
}

// declare validates the declared edges and records group-level relations.
func (ix *index) declare(edges []workflow.Edge) error {
	for _, e := range edges {
		from, fromGroup, ok := ix.container(e.From)
		if !ok {
			return &EndpointError{From: e.From, To: e.To, Missing: e.From}
		}
		to, toGroup, ok := ix.container(e.To)
		if !ok {
			return &EndpointError{From: e.From, To: e.To, Missing: e.To}
		}
		if e.From == e.To {
			return fmt.Errorf("edge %s -> %s: self-loop: %w", e.From, e.To, ErrInvalidEdge)
		}
		if (fromGroup && from.contains(to)) || (toGroup && to.contains(from)) {
			return fmt.Errorf("edge %s -> %s: group and its own member: %w", e.From, e.To, ErrInvalidEdge)
		}

		switch {
		case fromGroup && toGroup:
			from.downGroups = appendUnique(from.downGroups, e.To)
			to.upGroups = appendUnique(to.upGroups, e.From)
		case fromGroup:
			from.downTasks = appendUnique(from.downTasks, e.To)
		case toGroup:
			to.upTasks = appendUnique(to.upTasks, e.From)
		}

		ix.edges = append(ix.edges, e)
		if e.Label != "" {
			ix.labels[ix.representative(e)] = e.Label
		}
	}
	return nil
}

// representative returns the rendered edge that stands for a declared edge
// once group endpoints are routed through join nodes.
func (ix *index) representative(e workflow.Edge) pair {
	from, to := e.From, e.To
	if _, ok := ix.groups[from]; ok {
		from = DownstreamJoinID(from)
	}
	if _, ok := ix.groups[to]; ok {
		to = UpstreamJoinID(to)
	}
	return pair{from, to}
}

// inside reports whether id lies strictly inside g's subtree.
func (ix *index) inside(g *groupInfo, id string) bool {
	if t, ok := ix.tasks[id]; ok {
		return g.contains(t.parent)
	}
	if h, ok := ix.groups[id]; ok {
		return h != g && g.contains(h)
	}
	return false
}

// internal expands every declared edge whose endpoints both lie strictly
// inside g into task-level edges. For the root this is the whole task graph.
func (ix *index) internal(g *groupInfo) []pair {
	var out []pair
	for _, e := range ix.edges {
		if ix.inside(g, e.From) && ix.inside(g, e.To) {
			out = append(out, ix.expand(e)...)
		}
	}
	return out
}

// expand turns a declared edge into task-level edges: a group source
// contributes its leaves and a group target its roots.
func (ix *index) expand(e workflow.Edge) []pair {
	sources := []string{e.From}
	if g, ok := ix.groups[e.From]; ok {
		sources = ix.leaves(g)
	}
	targets := []string{e.To}
	if g, ok := ix.groups[e.To]; ok {
		targets = ix.roots(g)
	}
	out := make([]pair, 0, len(sources)*len(targets))
	for _, s := range sources {
		for _, t := range targets {
			out = append(out, pair{s, t})
		}
	}
	return out
}

func (ix *index) roots(g *groupInfo) []string {
	ix.resolve(g)
	return g.roots
}

func (ix *index) leaves(g *groupInfo) []string {
	ix.resolve(g)
	return g.leaves
}

// resolve computes the roots (no upstream inside g) and leaves (no downstream
// inside g) of a group. Only edges of strictly nested subtrees are consulted,
// so inner groups are always resolved before the groups that embed them.
func (ix *index) resolve(g *groupInfo) {
	if g.resolved {
		return
	}
	hasIn := make(map[string]bool)
	hasOut := make(map[string]bool)
	for _, p := range ix.internal(g) {
		hasOut[p[0]] = true
		hasIn[p[1]] = true
	}
	g.roots, g.leaves = []string{}, []string{}
	for _, id := range g.tasks {
		if !hasIn[id] {
			g.roots = append(g.roots, id)
		}
		if !hasOut[id] {
			g.leaves = append(g.leaves, id)
		}
	}
	g.resolved = true
}

// collapse computes the final edge list. Task-level edges that cross a group
// boundary are replaced by edges through the group's join nodes, so each
// group presents one entry and one exit to the rest of the graph. The result
// is sorted by source, then target.
//
// The returned map sends each replaced edge to the first edge of the path
// that stands in for it.
func (ix *index) collapse() ([]pair, map[pair]pair) {
	add := make(map[pair]bool)
	reroute := make(map[pair]pair)
	skip := func(p, via pair) {
		if _, ok := reroute[p]; !ok {
			reroute[p] = via
		}
	}

	var visit func(g *groupInfo)
	visit = func(g *groupInfo) {
		if !g.isRoot() {
			up, down := UpstreamJoinID(g.id), DownstreamJoinID(g.id)

			for _, id := range g.downGroups {
				target := ix.groups[id]
				targetUp := UpstreamJoinID(id)
				add[pair{down, targetUp}] = true
				for _, leaf := range ix.leaves(g) {
					add[pair{leaf, down}] = true
					for _, root := range ix.roots(target) {
						skip(pair{leaf, root}, pair{leaf, down})
					}
					skip(pair{leaf, targetUp}, pair{leaf, down})
				}
				for _, root := range ix.roots(target) {
					add[pair{targetUp, root}] = true
					skip(pair{down, root}, pair{down, targetUp})
				}
			}

			for _, id := range g.downTasks {
				add[pair{down, id}] = true
				for _, leaf := range ix.leaves(g) {
					add[pair{leaf, down}] = true
					skip(pair{leaf, id}, pair{leaf, down})
				}
			}

			for _, id := range g.upTasks {
				add[pair{id, up}] = true
				for _, root := range ix.roots(g) {
					add[pair{up, root}] = true
					skip(pair{id, root}, pair{id, up})
				}
			}
		}
		for _, m := range g.children {
			if m.group != nil {
				visit(m.group)
			}
		}
	}
	visit(ix.root)

	all := make(map[pair]bool, len(add))
	for _, p := range ix.internal(ix.root) {
		all[p] = true
	}
	for p := range add {
		all[p] = true
	}

	out := make([]pair, 0, len(all))
	for p := range all {
		if _, skipped := reroute[p]; !skipped {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, comparePairs)
	return out, reroute
}

// edgeLabels places declared labels on the rendered edges. A label whose
// edge was replaced moves to the first edge of its replacement, unless that
// edge carries a label of its own. Ties go to the smallest replaced edge.
func (ix *index) edgeLabels(reroute map[pair]pair) map[pair]string {
	out := make(map[pair]string, len(ix.labels))
	var moved []pair
	for p, label := range ix.labels {
		if _, ok := reroute[p]; ok {
			moved = append(moved, p)
			continue
		}
		out[p] = label
	}
	slices.SortFunc(moved, comparePairs)
	for _, p := range moved {
		via := reroute[p]
		if _, taken := out[via]; !taken {
			out[via] = ix.labels[p]
		}
	}
	return out
}

func comparePairs(a, b pair) int {
	return cmp.Or(cmp.Compare(a[0], b[0]), cmp.Compare(a[1], b[1]))
}

func appendUnique(s []string, v string) []string {
	if slices.Contains(s, v) {
		return s
	}
	return append(s, v)
}
