// Package pipeline runs the flowdot render pipeline for both the CLI and the
// HTTP API: look up the cache, build the render graph, serialize it to DOT,
// optionally check it with Graphviz, and store the result.
//
// By centralizing this logic, both entry points share caching, logging and
// observability hooks, and produce byte-identical output for the same input.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.RenderWorkflow(ctx, wf, states, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	fmt.Print(res.DOT)
//
// With a run-state source attached, [Runner.RenderLatest] colours the graph
// with the latest run of the workflow:
//
//	runner.States = mongoSource
//	res, err := runner.RenderLatest(ctx, wf, pipeline.Options{})
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowdot/pkg/render/dot"
	"github.com/matzehuels/flowdot/pkg/workflow"
)

// DefaultMaxDepth is the group nesting limit used when Options.MaxDepth is
// zero.
const DefaultMaxDepth = workflow.DefaultMaxDepth

// Options configures one render. It supports JSON for API requests.
type Options struct {
	// ClustersFirst emits clusters before plain sibling nodes.
	ClustersFirst bool `json:"clusters_first,omitempty"`
	// Tooltips adds group tooltips to cluster boxes.
	Tooltips bool `json:"tooltips,omitempty"`
	// MaxDepth bounds group nesting. Zero uses DefaultMaxDepth.
	MaxDepth int `json:"max_depth,omitempty"`
	// Label titles cross-workflow graphs.
	Label string `json:"label,omitempty"`
	// Check parses the output with Graphviz before returning it.
	Check bool `json:"check,omitempty"`
	// Refresh skips the cache lookup; the result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Palette *dot.Palette `json:"-"`
	Logger  *log.Logger  `json:"-"`
}

// SetDefaults fills zero fields. It is idempotent.
func (o *Options) SetDefaults() {
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Palette == nil {
		o.Palette = dot.DefaultPalette()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (o *Options) renderOptions(states workflow.States) dot.Options {
	return dot.Options{
		States:   states,
		Palette:  o.Palette,
		Tooltips: o.Tooltips,
		MaxDepth: o.MaxDepth,
	}
}

func (o *Options) encodeOptions() dot.EncodeOptions {
	return dot.EncodeOptions{ClustersFirst: o.ClustersFirst}
}

// Result is the output of one render.
type Result struct {
	// DOT is the serialized graph.
	DOT string

	// Hash is the SHA-256 of DOT, usable as an ETag.
	Hash string

	// Graph is the intermediate render graph. It is nil when the result
	// came from the cache.
	Graph *dot.Graph

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether DOT came from the cache.
	CacheHit bool
}

// Stats contains render statistics.
type Stats struct {
	NodeCount    int           `json:"nodes"`
	EdgeCount    int           `json:"edges"`
	ClusterCount int           `json:"clusters"`
	BuildTime    time.Duration `json:"-"`
	CheckTime    time.Duration `json:"-"`
}
