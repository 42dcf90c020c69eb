package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowdot/pkg/cache"
	"github.com/matzehuels/flowdot/pkg/observability"
	"github.com/matzehuels/flowdot/pkg/render/dot"
	"github.com/matzehuels/flowdot/pkg/runstate"
	"github.com/matzehuels/flowdot/pkg/workflow"
)

// Cache key types reported to cache hooks.
const (
	keyTypeRender       = "render"
	keyTypeDependencies = "deps"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators; multiple goroutines
// can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// States is consulted by RenderLatest. It may be nil.
	States runstate.Source

	// TTL overrides the default cache entry lifetime when non-zero.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedResult is the cache entry format.
type cachedResult struct {
	DOT   string `json:"dot"`
	Stats Stats  `json:"stats"`
}

// RenderWorkflow renders wf coloured by states. A nil states map renders
// without run context.
func (r *Runner) RenderWorkflow(ctx context.Context, wf *workflow.Workflow, states workflow.States, opts Options) (*Result, error) {
	opts.SetDefaults()
	start := time.Now()
	id := ""
	if wf != nil {
		id = wf.ID
	}

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, id)

	res, err := r.renderWorkflow(ctx, wf, states, opts)
	if err != nil {
		hooks.OnRenderComplete(ctx, id, 0, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnRenderComplete(ctx, id, res.Stats.NodeCount, res.Stats.EdgeCount, time.Since(start), nil)

	r.Logger.Debug("rendered workflow",
		"workflow", id,
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"cached", res.CacheHit,
		"duration", time.Since(start))
	return res, nil
}

func (r *Runner) renderWorkflow(ctx context.Context, wf *workflow.Workflow, states workflow.States, opts Options) (*Result, error) {
	key, cacheable := r.renderKey(wf, states, &opts)
	if cacheable && !opts.Refresh {
		if res, ok := r.lookup(ctx, key, keyTypeRender); ok {
			return r.check(ctx, res, &opts)
		}
	}

	buildStart := time.Now()
	g, err := dot.Build(wf, opts.renderOptions(states))
	if err != nil {
		return nil, err
	}
	res := newResult(g.Format(opts.encodeOptions()), g)
	res.Stats.BuildTime = time.Since(buildStart)

	if res, err = r.check(ctx, res, &opts); err != nil {
		return nil, err
	}
	if cacheable {
		r.store(ctx, key, keyTypeRender, res, cache.TTLRender)
	}
	return res, nil
}

// RenderLatest renders wf coloured by the latest run reported by the
// runner's States source. Without a source it renders without run context.
func (r *Runner) RenderLatest(ctx context.Context, wf *workflow.Workflow, opts Options) (*Result, error) {
	var states workflow.States
	if r.States != nil && wf != nil {
		var err error
		if states, err = r.States.Latest(ctx, wf.ID); err != nil {
			return nil, fmt.Errorf("run state of %s: %w", wf.ID, err)
		}
		r.Logger.Debug("loaded run state", "workflow", wf.ID, "tasks", len(states))
	}
	return r.RenderWorkflow(ctx, wf, states, opts)
}

// RenderDependencies renders the cross-workflow dependency graph.
func (r *Runner) RenderDependencies(ctx context.Context, deps workflow.DependencyMap, opts Options) (*Result, error) {
	opts.SetDefaults()
	start := time.Now()

	hooks := observability.Render()
	hooks.OnDependenciesStart(ctx, len(deps))

	res, err := r.renderDependencies(ctx, deps, opts)
	if err != nil {
		hooks.OnDependenciesComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnDependenciesComplete(ctx, res.Stats.NodeCount, time.Since(start), nil)

	r.Logger.Debug("rendered dependencies",
		"workflows", len(deps),
		"nodes", res.Stats.NodeCount,
		"cached", res.CacheHit,
		"duration", time.Since(start))
	return res, nil
}

func (r *Runner) renderDependencies(ctx context.Context, deps workflow.DependencyMap, opts Options) (*Result, error) {
	var key string
	depsHash, err1 := cache.HashJSON(deps)
	paletteHash, err2 := cache.HashJSON(opts.Palette)
	cacheable := err1 == nil && err2 == nil
	if cacheable {
		key = r.Keyer.DependenciesKey(depsHash, cache.DependencyKeyOpts{PaletteHash: paletteHash, Label: opts.Label})
		if !opts.Refresh {
			if res, ok := r.lookup(ctx, key, keyTypeDependencies); ok {
				return r.check(ctx, res, &opts)
			}
		}
	}

	buildStart := time.Now()
	g, err := dot.BuildDependencies(deps, dot.DependencyOptions{Palette: opts.Palette, Label: opts.Label})
	if err != nil {
		return nil, err
	}
	res := newResult(g.Format(opts.encodeOptions()), g)
	res.Stats.BuildTime = time.Since(buildStart)

	if res, err = r.check(ctx, res, &opts); err != nil {
		return nil, err
	}
	if cacheable {
		r.store(ctx, key, keyTypeDependencies, res, cache.TTLDependencies)
	}
	return res, nil
}

// renderKey derives the cache key of a workflow render. It reports false
// when the input cannot be hashed (e.g. a group that contains itself); such
// input is rendered uncached so the builder reports the real error.
func (r *Runner) renderKey(wf *workflow.Workflow, states workflow.States, opts *Options) (string, bool) {
	if wf == nil {
		return "", false
	}
	wfHash, err := cache.HashJSON(wf)
	if err != nil {
		return "", false
	}
	statesHash, err := cache.HashJSON(states)
	if err != nil {
		return "", false
	}
	paletteHash, err := cache.HashJSON(opts.Palette)
	if err != nil {
		return "", false
	}
	return r.Keyer.RenderKey(wfHash, cache.RenderKeyOpts{
		StatesHash:    statesHash,
		PaletteHash:   paletteHash,
		ClustersFirst: opts.ClustersFirst,
		Tooltips:      opts.Tooltips,
		MaxDepth:      opts.MaxDepth,
	}), true
}

// lookup returns a cached result. Backend and decoding errors count as
// misses.
func (r *Runner) lookup(ctx context.Context, key, keyType string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	var entry cachedResult
	if err := json.Unmarshal(data, &entry); err != nil {
		r.Logger.Debug("discarding corrupt cache entry", "key", key, "err", err)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)

	res := newResult(entry.DOT, nil)
	res.Stats = entry.Stats
	res.CacheHit = true
	return res, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, res *Result, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	data, err := json.Marshal(cachedResult{DOT: res.DOT, Stats: res.Stats})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// check parses the output with Graphviz when opts.Check is set.
func (r *Runner) check(ctx context.Context, res *Result, opts *Options) (*Result, error) {
	if !opts.Check {
		return res, nil
	}
	start := time.Now()
	if err := dot.Validate(ctx, res.DOT); err != nil {
		return nil, fmt.Errorf("check output: %w", err)
	}
	res.Stats.CheckTime = time.Since(start)
	return res, nil
}

func newResult(src string, g *dot.Graph) *Result {
	res := &Result{DOT: src, Hash: cache.Hash([]byte(src)), Graph: g}
	if g != nil {
		res.Stats.NodeCount = g.NodeCount()
		res.Stats.EdgeCount = g.EdgeCount()
		res.Stats.ClusterCount = g.ClusterCount()
	}
	return res
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
