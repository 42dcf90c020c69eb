package dot

import (
	"maps"
	"strings"

	"github.com/matzehuels/flowdot/pkg/workflow"
)

// Shape and outline styles for task nodes.
const (
	ShapeTask = "rectangle"
	StyleTask = "filled,rounded"
)

// Style is the visual style tuple of a node or cluster box.
type Style struct {
	Color     string `toml:"color" json:"color,omitempty"`         // Border colour
	FillColor string `toml:"fillcolor" json:"fillcolor,omitempty"` // Fill colour
	Shape     string `toml:"shape" json:"shape,omitempty"`
	Style     string `toml:"style" json:"style,omitempty"` // Outline style, e.g. "filled,rounded"
}

// overlay returns s with every non-empty field of o applied on top.
func (s Style) overlay(o Style) Style {
	if o.Color != "" {
		s.Color = o.Color
	}
	if o.FillColor != "" {
		s.FillColor = o.FillColor
	}
	if o.Shape != "" {
		s.Shape = o.Shape
	}
	if o.Style != "" {
		s.Style = o.Style
	}
	return s
}

// attrs converts the style into DOT attributes, adding label. Empty fields
// are omitted.
func (s Style) attrs(label string) Attrs {
	a := Attrs{"label": label}
	set := func(k, v string) {
		if v != "" {
			a[k] = v
		}
	}
	set("color", RefineColor(s.Color))
	set("fillcolor", RefineColor(s.FillColor))
	set("shape", s.Shape)
	set("style", s.Style)
	return a
}

// Palette is the colour table used by the style resolver. The literals are
// presentation data; load overrides with [Palette.Merge].
type Palette struct {
	// Default styles tasks with no run status, or an unmapped one.
	Default Style
	// States maps each run status to its border and fill colours.
	States map[workflow.RunStatus]Style
	// Join styles synthesized group entry and exit nodes.
	Join Style
	// JoinSize is the width and height of join nodes, in inches.
	JoinSize string
	// Cluster styles group boxes.
	Cluster Style
	// Workflow styles workflow nodes in cross-workflow graphs.
	Workflow Style
	// Couplings styles coupling nodes by coupling kind; CouplingDefault
	// covers kinds missing from the map.
	Couplings       map[string]Style
	CouplingDefault Style
}

// DefaultPalette returns the standard colour table. Each call returns a fresh
// copy that can be modified freely.
func DefaultPalette() *Palette {
	return &Palette{
		Default: Style{Color: "#000000", FillColor: "#f0ede4", Shape: ShapeTask, Style: StyleTask},
		States: map[workflow.RunStatus]Style{
			workflow.StatusQueued:          {Color: "black", FillColor: "gray"},
			workflow.StatusRunning:         {Color: "black", FillColor: "lime"},
			workflow.StatusSuccess:         {Color: "white", FillColor: "green"},
			workflow.StatusRestarting:      {Color: "black", FillColor: "violet"},
			workflow.StatusFailed:          {Color: "white", FillColor: "red"},
			workflow.StatusUpForRetry:      {Color: "black", FillColor: "gold"},
			workflow.StatusUpForReschedule: {Color: "black", FillColor: "turquoise"},
			workflow.StatusUpstreamFailed:  {Color: "black", FillColor: "orange"},
			workflow.StatusSkipped:         {Color: "black", FillColor: "hotpink"},
			workflow.StatusRemoved:         {Color: "black", FillColor: "lightgrey"},
			workflow.StatusScheduled:       {Color: "black", FillColor: "tan"},
			workflow.StatusDeferred:        {Color: "black", FillColor: "mediumpurple"},
		},
		Join:     Style{Color: "#000", FillColor: "CornflowerBlue", Shape: "circle", Style: StyleTask},
		JoinSize: "0.2",
		// Partially transparent CornflowerBlue.
		Cluster:  Style{Color: "#000", FillColor: "#6495ed7f", Shape: "rectangle", Style: "filled"},
		Workflow: Style{Color: "#000000", FillColor: "#e8eef7", Shape: ShapeTask, Style: StyleTask},
		Couplings: map[string]Style{
			workflow.CouplingSensor:  {Color: "#000000", FillColor: "#e6f1f2", Shape: "ellipse", Style: "filled"},
			workflow.CouplingTrigger: {Color: "#000000", FillColor: "#ffefeb", Shape: "cds", Style: "filled"},
			workflow.CouplingAsset:   {Color: "#000000", FillColor: "#fcecd4", Shape: "cylinder", Style: "filled"},
		},
		CouplingDefault: Style{Color: "#000000", FillColor: "#f5f5f5", Shape: "diamond", Style: "filled"},
	}
}

// Merge returns a copy of p with the non-empty parts of o applied on top.
// Map entries are overlaid per key.
func (p *Palette) Merge(o *Palette) *Palette {
	out := *p
	out.States = maps.Clone(p.States)
	out.Couplings = maps.Clone(p.Couplings)
	if o == nil {
		return &out
	}
	out.Default = out.Default.overlay(o.Default)
	out.Join = out.Join.overlay(o.Join)
	out.Cluster = out.Cluster.overlay(o.Cluster)
	out.Workflow = out.Workflow.overlay(o.Workflow)
	out.CouplingDefault = out.CouplingDefault.overlay(o.CouplingDefault)
	if o.JoinSize != "" {
		out.JoinSize = o.JoinSize
	}
	if out.States == nil {
		out.States = make(map[workflow.RunStatus]Style)
	}
	for k, v := range o.States {
		out.States[k] = out.States[k].overlay(v)
	}
	if out.Couplings == nil {
		out.Couplings = make(map[string]Style)
	}
	for k, v := range o.Couplings {
		out.Couplings[k] = out.Couplings[k].overlay(v)
	}
	return &out
}

// Resolve returns the style of task t given its latest run status.
//
// With no status, the task's own colours (if any) override the palette
// default. A status present in the table replaces the border and fill
// colours. Aliases such as "succeeded" are normalized first. Unknown
// statuses resolve to the no-status style. Resolve is pure.
func (p *Palette) Resolve(t workflow.Task, status workflow.RunStatus) Style {
	if status != workflow.StatusNone {
		status, _ = workflow.ParseRunStatus(string(status))
		if st, ok := p.States[status]; ok {
			return p.Default.overlay(st)
		}
	}
	return p.Default.overlay(Style{Color: t.FgColor, FillColor: t.Color})
}

// joinAttrs returns the attributes of a join node of group g.
func (p *Palette) joinAttrs(g *workflow.Group) Attrs {
	a := p.Join.overlay(Style{Color: g.FgColor, FillColor: g.Color}).attrs("")
	if p.JoinSize != "" {
		a["width"] = p.JoinSize
		a["height"] = p.JoinSize
	}
	return a
}

// clusterAttrs returns the attributes of the box drawn around group g.
func (p *Palette) clusterAttrs(g *workflow.Group) Attrs {
	return p.Cluster.overlay(Style{Color: g.FgColor}).attrs(g.DisplayLabel())
}

// coupling returns the style for a coupling kind.
func (p *Palette) coupling(kind string) Style {
	if st, ok := p.Couplings[strings.ToLower(kind)]; ok {
		return p.CouplingDefault.overlay(st)
	}
	return p.CouplingDefault
}

// RefineColor expands three-digit hex colours ("#abc") to six digits
// ("#aabbcc"). Any other value is returned unchanged.
func RefineColor(c string) string {
	if len(c) != 4 || c[0] != '#' {
		return c
	}
	for i := 1; i < 4; i++ {
		if !isHex(c[i]) {
			return c
		}
	}
	return string([]byte{'#', c[1], c[1], c[2], c[2], c[3], c[3]})
}

func isHex(b byte) bool {
	return ('0' <= b && b <= '9') || ('a' <= b && b <= 'f') || ('A' <= b && b <= 'F')
}
