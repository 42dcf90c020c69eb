package dot

import (
	"bytes"
	"cmp"
	"io"
	"regexp"
	"slices"
	"strings"
)

// EncodeOptions configures DOT serialization.
type EncodeOptions struct {
	// ClustersFirst emits every cluster before the plain nodes at the same
	// nesting level. It is off by default: join nodes come first, then tasks
	// and clusters interleaved in ID order, which keeps output byte-identical
	// to existing task-group renderings.
	ClustersFirst bool
	// Indent is the per-level indentation. Empty uses a tab.
	Indent string
}

// String serializes the graph with default options.
func (g *Graph) String() string { return g.Format(EncodeOptions{}) }

// Format serializes the graph to DOT text.
func (g *Graph) Format(opts EncodeOptions) string {
	var buf bytes.Buffer
	newEncoder(&buf, opts).graph(g)
	return buf.String()
}

// Encode writes the DOT serialization of g to w.
//
// Output is a pure function of the graph: attributes are emitted in sorted
// key order, sibling items by explicit rank and ID, and edges last, sorted by
// source then target. Encoding a well-formed graph cannot fail except for
// write errors from w.
func Encode(w io.Writer, g *Graph, opts EncodeOptions) error {
	var buf bytes.Buffer
	newEncoder(&buf, opts).graph(g)
	_, err := w.Write(buf.Bytes())
	return err
}

type encoder struct {
	buf  *bytes.Buffer
	opts EncodeOptions
}

func newEncoder(buf *bytes.Buffer, opts EncodeOptions) *encoder {
	if opts.Indent == "" {
		opts.Indent = "\t"
	}
	return &encoder{buf: buf, opts: opts}
}

func (e *encoder) indent(depth int) {
	for range depth {
		e.buf.WriteString(e.opts.Indent)
	}
}

func (e *encoder) graph(g *Graph) {
	e.buf.WriteString("digraph ")
	if g.Name != "" {
		e.buf.WriteString(Quote(g.Name))
		e.buf.WriteByte(' ')
	}
	e.buf.WriteString("{\n")

	if len(g.Attrs) > 0 {
		e.indent(1)
		e.buf.WriteString("graph [")
		e.attrs(g.Attrs)
		e.buf.WriteString("]\n")
	}

	e.items(g.Items, 1)

	edges := slices.Clone(g.Edges)
	slices.SortStableFunc(edges, func(a, b Edge) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To))
	})
	for _, ed := range edges {
		e.indent(1)
		e.buf.WriteString(Quote(ed.From))
		e.buf.WriteString(" -> ")
		e.buf.WriteString(Quote(ed.To))
		if len(ed.Attrs) > 0 {
			e.buf.WriteString(" [")
			e.attrs(ed.Attrs)
			e.buf.WriteByte(']')
		}
		e.buf.WriteByte('\n')
	}

	e.buf.WriteString("}\n")
}

func (e *encoder) items(items []Item, depth int) {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, e.compareItems)

	for _, it := range sorted {
		if it.Cluster != nil {
			e.cluster(it.Cluster, depth)
			continue
		}
		e.indent(depth)
		e.buf.WriteString(Quote(it.Node.ID))
		if len(it.Node.Attrs) > 0 {
			e.buf.WriteString(" [")
			e.attrs(it.Node.Attrs)
			e.buf.WriteByte(']')
		}
		e.buf.WriteByte('\n')
	}
}

func (e *encoder) compareItems(a, b Item) int {
	if c := cmp.Compare(a.rank, b.rank); c != 0 {
		return c
	}
	if e.opts.ClustersFirst {
		if c := cmp.Compare(kindOrder(a), kindOrder(b)); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.sortKey(), b.sortKey())
}

func kindOrder(it Item) int {
	if it.Cluster != nil {
		return 0
	}
	return 1
}

func (it Item) sortKey() string {
	if it.key != "" {
		return it.key
	}
	if it.Cluster != nil {
		return it.Cluster.ID
	}
	return it.Node.ID
}

func (e *encoder) cluster(c *Cluster, depth int) {
	e.indent(depth)
	e.buf.WriteString("subgraph ")
	e.buf.WriteString(Quote(c.Name()))
	e.buf.WriteString(" {\n")
	if len(c.Attrs) > 0 {
		e.indent(depth + 1)
		e.attrs(c.Attrs)
		e.buf.WriteByte('\n')
	}
	e.items(c.Items, depth+1)
	e.indent(depth)
	e.buf.WriteString("}\n")
}

func (e *encoder) attrs(a Attrs) {
	for i, k := range a.Keys() {
		if i > 0 {
			e.buf.WriteByte(' ')
		}
		e.buf.WriteString(Quote(k))
		e.buf.WriteByte('=')
		e.buf.WriteString(Quote(a[k]))
	}
}

var (
	// idPattern matches DOT IDs that need no quoting: alphabetic
	// identifiers and numerals.
	idPattern = regexp.MustCompile(`^(?:[a-zA-Z_][a-zA-Z0-9_]*|-?(?:\.[0-9]+|[0-9]+(?:\.[0-9]*)?))$`)

	keywords = map[string]bool{
		"node": true, "edge": true, "graph": true,
		"digraph": true, "subgraph": true, "strict": true,
	}
)

// Quote returns s as a DOT ID, quoting it unless it is a plain identifier
// or numeral. Double quotes not already escaped are escaped.
func Quote(s string) string {
	if idPattern.MatchString(s) && !keywords[strings.ToLower(s)] {
		return s
	}
	return `"` + escapeQuotes(s) + `"`
}

// escapeQuotes escapes bare double quotes and completes a trailing odd run
// of backslashes so the closing quote is never read as escaped.
func escapeQuotes(s string) string {
	if !strings.Contains(s, `"`) && !strings.HasSuffix(s, `\`) {
		return s
	}
	var b strings.Builder
	backslashes := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' && backslashes%2 == 0 {
			b.WriteByte('\\')
		}
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		b.WriteByte(c)
	}
	if backslashes%2 == 1 {
		b.WriteByte('\\')
	}
	return b.String()
}
