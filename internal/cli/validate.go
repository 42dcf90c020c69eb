package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/flowdot/pkg/io"
	"github.com/matzehuels/flowdot/pkg/render/dot"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a DOT file or a workflow file",
		Long: `Check a file without writing output.

DOT files (.dot, .gv) and "-" (stdin) are parsed with Graphviz. Workflow files
(.json, .yaml, .yml, .toml) are loaded and built, which reports unknown edge
endpoints, cyclic group nesting and invalid edges.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if isDOTPath(path) {
				return c.validateDOT(cmd, path)
			}
			return c.validateWorkflow(path)
		},
	}
}

func isDOTPath(path string) bool {
	if path == "-" {
		return true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		return true
	}
	return false
}

func (c *CLI) validateDOT(cmd *cobra.Command, path string) error {
	var (
		src []byte
		err error
	)
	if path == "-" {
		src, err = io.ReadAll(cmd.InOrStdin())
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := dot.Validate(cmd.Context(), string(src)); err != nil {
		return err
	}
	printSuccess("%s is valid DOT", path)
	return nil
}

func (c *CLI) validateWorkflow(path string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	wf, err := pkgio.ImportWorkflow(path)
	if err != nil {
		return err
	}
	g, err := dot.Build(wf, dot.Options{MaxDepth: cfg.Render.MaxDepth})
	if err != nil {
		return err
	}
	printSuccess("%s is a valid workflow", StyleHighlight.Render(wf.ID))
	printDetail("%d tasks, %d groups, %d edges", wf.TaskCount(), g.ClusterCount(), g.EdgeCount())
	return nil
}
