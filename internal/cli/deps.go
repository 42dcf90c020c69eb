package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/flowdot/pkg/io"
)

type depsOpts struct {
	output  string
	label   string
	check   bool
	noCache bool
}

// depsCommand creates the deps command for cross-workflow graphs.
func (c *CLI) depsCommand() *cobra.Command {
	var opts depsOpts

	cmd := &cobra.Command{
		Use:   "deps <dependency-file>",
		Short: "Render the dependency graph between workflows",
		Long: `Render a dependency file (JSON, YAML or TOML) mapping each workflow to the
sensors, triggers and assets that couple it to other workflows.`,
		Example: `  flowdot deps deps.json | dot -Tpng > deps.png`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDeps(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.label, "label", "", `graph title (default "Workflow Dependencies")`)
	cmd.Flags().BoolVar(&opts.check, "check", false, "parse the output with Graphviz before writing it")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runDeps(cmd *cobra.Command, path string, opts *depsOpts) error {
	ctx := cmd.Context()
	cfg, err := c.config()
	if err != nil {
		return err
	}
	popts, err := renderDefaults(cfg)
	if err != nil {
		return err
	}
	popts.Label = opts.label
	popts.Check = opts.check

	deps, err := pkgio.ImportDependencies(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.RenderDependencies(ctx, deps, popts)
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
	printSuccess("Rendered dependencies of %s workflows", StyleNumber.Render(fmt.Sprint(len(deps))))
	printFile(opts.output)
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheHit)
	printNextStep("Draw it", svgCommand(opts.output))
	return nil
}
