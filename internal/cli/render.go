package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowdot/pkg/config"
	pkgio "github.com/matzehuels/flowdot/pkg/io"
	"github.com/matzehuels/flowdot/pkg/pipeline"
	"github.com/matzehuels/flowdot/pkg/workflow"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output        string // output file; stdout when empty
	states        string // run-state file
	latest        bool   // colour with the latest run from MongoDB
	runID         string // colour with a specific run from MongoDB
	mongoURI      string // overrides runstate.mongo_uri
	clustersFirst bool
	tooltips      bool
	maxDepth      int
	check         bool // parse the output with Graphviz
	noCache       bool
	refresh       bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <workflow-file>",
		Short: "Render a workflow to Graphviz DOT",
		Long: `Render a workflow file (JSON, YAML or TOML) to Graphviz DOT.

Tasks are coloured by run state when one is given, either from a state file
(--states) or from the run-state database (--latest or --run-id).`,
		Example: `  flowdot render etl.yaml | dot -Tsvg > etl.svg
  flowdot render etl.yaml --states states.json -o etl.dot
  flowdot render etl.yaml --latest --check`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.states != "" && (opts.latest || opts.runID != "") {
				return fmt.Errorf("--states cannot be combined with --latest or --run-id")
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.states, "states", "s", "", "run-state file (JSON, YAML or TOML)")
	cmd.Flags().BoolVar(&opts.latest, "latest", false, "colour with the latest run from the run-state database")
	cmd.Flags().StringVar(&opts.runID, "run-id", "", "colour with the given run from the run-state database")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "run-state database URI (overrides config)")
	cmd.Flags().BoolVar(&opts.clustersFirst, "clusters-first", false, "emit clusters before plain sibling nodes")
	cmd.Flags().BoolVar(&opts.tooltips, "tooltips", false, "add group tooltips to clusters")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum group nesting depth")
	cmd.Flags().BoolVar(&opts.check, "check", false, "parse the output with Graphviz before writing it")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached output and re-render")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts *renderOpts) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	cfg, err := c.config()
	if err != nil {
		return err
	}
	popts, err := renderDefaults(cfg)
	if err != nil {
		return err
	}
	applyRenderFlags(cmd, &popts, opts)

	wf, err := pkgio.ImportWorkflow(path)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded workflow", "id", wf.ID, "tasks", wf.TaskCount(), "edges", len(wf.Edges))

	states, err := c.loadStates(ctx, cfg, wf.ID, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.RenderWorkflow(ctx, wf, states, popts)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), res.DOT)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(res.DOT), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done("Rendered " + wf.ID)
	printSuccess("Rendered %s", StyleHighlight.Render(wf.ID))
	printFile(opts.output)
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheHit)
	printNextStep("Draw it", svgCommand(opts.output))
	return nil
}

// applyRenderFlags overrides config defaults with explicitly set flags.
func applyRenderFlags(cmd *cobra.Command, popts *pipeline.Options, opts *renderOpts) {
	flags := cmd.Flags()
	if flags.Changed("clusters-first") {
		popts.ClustersFirst = opts.clustersFirst
	}
	if flags.Changed("tooltips") {
		popts.Tooltips = opts.tooltips
	}
	if flags.Changed("max-depth") {
		popts.MaxDepth = opts.maxDepth
	}
	popts.Check = opts.check
	popts.Refresh = opts.refresh
}

// loadStates resolves run state from a file or the run-state database. It
// returns nil when no source was requested.
func (c *CLI) loadStates(ctx context.Context, cfg *config.Config, workflowID string, opts *renderOpts) (workflow.States, error) {
	switch {
	case opts.states != "":
		return pkgio.ImportStates(opts.states)
	case opts.latest || opts.runID != "":
	default:
		return nil, nil
	}

	m, err := c.newMongo(ctx, cfg, opts.mongoURI)
	if err != nil {
		return nil, err
	}
	defer m.Close(context.WithoutCancel(ctx))

	var states workflow.States
	if opts.runID != "" {
		states, err = m.Run(ctx, workflowID, opts.runID)
	} else {
		states, err = m.Latest(ctx, workflowID)
	}
	if err != nil {
		return nil, err
	}
	if states == nil {
		c.Logger.Warn("no runs recorded; rendering without run state", "workflow", workflowID)
	} else {
		c.Logger.Debug("loaded run state", "workflow", workflowID, "tasks", len(states))
	}
	return states, nil
}

// svgCommand suggests the Graphviz invocation turning a DOT file into SVG.
func svgCommand(dotPath string) string {
	svg := strings.TrimSuffix(dotPath, filepath.Ext(dotPath)) + ".svg"
	return fmt.Sprintf("dot -Tsvg %s -o %s", dotPath, svg)
}
