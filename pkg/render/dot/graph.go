package dot

import (
	"maps"
	"slices"
)

// Attrs holds DOT attributes. Keys are always emitted in sorted order.
type Attrs map[string]string

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string { return slices.Sorted(maps.Keys(a)) }

// NodeKind distinguishes real tasks from synthesized nodes.
type NodeKind int

const (
	// NodeKindTask is a workflow task.
	NodeKindTask NodeKind = iota
	// NodeKindJoin is a synthesized group entry or exit point.
	NodeKindJoin
	// NodeKindWorkflow is a workflow in a cross-workflow graph.
	NodeKindWorkflow
	// NodeKindCoupling is a coupling instance (sensor, trigger) between workflows.
	NodeKindCoupling
)

// Node is a style-annotated graph vertex.
type Node struct {
	ID    string
	Kind  NodeKind
	Attrs Attrs
}

// IsSynthetic reports whether the node was created by the builder rather
// than taken from the input.
func (n *Node) IsSynthetic() bool { return n.Kind == NodeKindJoin || n.Kind == NodeKindCoupling }

// Edge is a directed connection between two node IDs.
type Edge struct {
	From  string
	To    string
	Attrs Attrs
}

// Sort ranks control sibling order inside a graph or cluster body. Items are
// ordered by rank first, then by key.
const (
	rankUpstreamJoin = iota
	rankDownstreamJoin
	rankChild
)

// Item is one entry of a graph or cluster body: either a node or a nested
// cluster. Exactly one of Node and Cluster is set.
type Item struct {
	Node    *Node
	Cluster *Cluster

	rank int
	key  string
}

// Cluster is the DOT subgraph drawn for a workflow group.
type Cluster struct {
	ID    string // Dot-joined group path
	Attrs Attrs
	Items []Item
}

// Name returns the subgraph name, which must start with "cluster" for
// Graphviz to draw a box around it.
func (c *Cluster) Name() string { return "cluster_" + c.ID }

// Graph is the intermediate render graph: nodes indexed by ID, a tree of
// cluster declarations, and the edge list. It is built fresh per render call.
//
// The zero value is not usable; use [NewGraph].
type Graph struct {
	Name  string
	Attrs Attrs
	Items []Item
	Edges []Edge

	nodes    map[string]*Node
	clusters map[string]*Cluster
	edges    map[[2]string]int
}

// NewGraph creates an empty graph with the given name and graph attributes.
func NewGraph(name string, attrs Attrs) *Graph {
	if attrs == nil {
		attrs = Attrs{}
	}
	return &Graph{
		Name:     name,
		Attrs:    attrs,
		nodes:    make(map[string]*Node),
		clusters: make(map[string]*Cluster),
		edges:    make(map[[2]string]int),
	}
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Cluster returns the cluster with the given group path.
func (g *Graph) Cluster(id string) (*Cluster, bool) {
	c, ok := g.clusters[id]
	return c, ok
}

// NodeCount returns the number of nodes, including synthesized ones.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// ClusterCount returns the number of clusters at any depth.
func (g *Graph) ClusterCount() int { return len(g.clusters) }

// addNode registers n and appends it to parent's body (the top level when
// parent is nil). It reports false if the ID is already taken.
func (g *Graph) addNode(parent *Cluster, n *Node, rank int) bool {
	if _, exists := g.nodes[n.ID]; exists {
		return false
	}
	g.nodes[n.ID] = n
	g.appendItem(parent, Item{Node: n, rank: rank, key: n.ID})
	return true
}

// addCluster registers c under parent (the top level when parent is nil).
func (g *Graph) addCluster(parent *Cluster, c *Cluster) {
	g.clusters[c.ID] = c
	g.appendItem(parent, Item{Cluster: c, rank: rankChild, key: c.ID})
}

func (g *Graph) appendItem(parent *Cluster, it Item) {
	if parent == nil {
		g.Items = append(g.Items, it)
		return
	}
	parent.Items = append(parent.Items, it)
}

// addEdge appends from->to unless it is already present. Attributes of a
// duplicate are merged into the existing edge.
func (g *Graph) addEdge(from, to string, attrs Attrs) {
	key := [2]string{from, to}
	if i, ok := g.edges[key]; ok {
		maps.Copy(g.Edges[i].Attrs, attrs)
		return
	}
	if attrs == nil {
		attrs = Attrs{}
	}
	g.edges[key] = len(g.Edges)
	g.Edges = append(g.Edges, Edge{From: from, To: to, Attrs: attrs})
}

// Validate checks that every edge endpoint names a node in the graph.
func (g *Graph) Validate() error {
	for _, e := range g.Edges {
		if _, ok := g.nodes[e.From]; !ok {
			return &EndpointError{From: e.From, To: e.To, Missing: e.From}
		}
		if _, ok := g.nodes[e.To]; !ok {
			return &EndpointError{From: e.From, To: e.To, Missing: e.To}
		}
	}
	return nil
}
