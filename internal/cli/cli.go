// Package cli implements the flowdot command-line interface.
//
// # Commands
//
//   - render: Render a workflow file to DOT
//   - deps: Render a cross-workflow dependency map to DOT
//   - validate: Check a DOT file with Graphviz, or a workflow file with the renderer
//   - serve: Run the HTTP API
//   - cache: Manage the render cache
//   - completion: Generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// carried in the [CLI] struct and handed to the pipeline runner and the API
// server.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowdot/pkg/buildinfo"
	"github.com/matzehuels/flowdot/pkg/cache"
	"github.com/matzehuels/flowdot/pkg/config"
	"github.com/matzehuels/flowdot/pkg/pipeline"
	"github.com/matzehuels/flowdot/pkg/runstate"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "flowdot"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Flowdot renders workflow graphs as Graphviz DOT",
		Long:         `Flowdot turns workflow definitions (tasks, nested task groups and their dependencies) into Graphviz DOT, coloured by the latest run state, and draws the dependency graph between workflows.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/flowdot/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("cache", "backend", cacheBackend(cfg, noCache))
	// Output may change between releases, so entries are scoped by version.
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	runner := pipeline.NewRunner(cc, keyer, c.Logger)
	runner.TTL = cfg.Cache.TTL
	return runner, nil
}

func cacheBackend(cfg *config.Config, noCache bool) string {
	if noCache {
		return config.CacheNone
	}
	return cfg.Cache.Backend
}

func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	switch cacheBackend(cfg, noCache) {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.RedisConfig())
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newMongo connects to the configured run-state database. uri overrides the
// configured URI when set.
func (c *CLI) newMongo(ctx context.Context, cfg *config.Config, uri string) (*runstate.Mongo, error) {
	mc := runstate.MongoConfig{
		URI:        cfg.RunState.MongoURI,
		Database:   cfg.RunState.Database,
		Collection: cfg.RunState.Collection,
	}
	if uri != "" {
		mc.URI = uri
	}
	spin := newSpinnerWithContext(ctx, "Connecting to run-state database...")
	spin.Start()
	defer spin.Stop()
	return runstate.NewMongo(ctx, mc)
}

// =============================================================================
// Options Helpers
// =============================================================================

// renderDefaults builds pipeline options from the [render] and [palette]
// config sections.
func renderDefaults(cfg *config.Config) (pipeline.Options, error) {
	palette, err := cfg.Palette.Palette()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		ClustersFirst: cfg.Render.ClustersFirst,
		Tooltips:      cfg.Render.Tooltips,
		MaxDepth:      cfg.Render.MaxDepth,
		Palette:       palette,
	}, nil
}
