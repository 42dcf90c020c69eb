package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowdot/pkg/api"
	"github.com/matzehuels/flowdot/pkg/observability"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Serve the render API over HTTP until interrupted.

The cache backend, the palette and the run-state database come from the
config file. With a run-state database configured, render requests without
states are coloured by the workflow's latest run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd.Flags().Changed("addr"), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addrSet bool, addr string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if !addrSet {
		addr = cfg.Server.Addr
	}
	popts, err := renderDefaults(cfg)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	if cfg.RunState.MongoURI != "" {
		m, err := c.newMongo(ctx, cfg, "")
		if err != nil {
			return err
		}
		defer m.Close(context.WithoutCancel(ctx))
		runner.States = m
	}

	hooks := observability.NewLogHooks(c.Logger)
	observability.SetRenderHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	srv := api.NewServer(runner, c.Logger, api.Config{
		MaxBodySize: cfg.Server.MaxBodySize,
		Palette:     popts.Palette,
	})
	printInfo("Serving on %s", StyleHighlight.Render(addr))
	printDetail("cache: %s", cfg.Cache.Backend)
	return srv.ListenAndServe(ctx, addr)
}
