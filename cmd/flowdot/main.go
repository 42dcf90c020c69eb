package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowdot/internal/cli"
	apperrors "github.com/matzehuels/flowdot/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		e := apperrors.Classify(err)
		fmt.Fprintf(os.Stderr, "error [%s]: %s\n", e.Code, e.Message)
		os.Exit(exitCode(e.Code))
	}
}

// exitCode separates bad input (2) from environment failures (1).
func exitCode(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInternal, apperrors.ErrCodeNetwork, apperrors.ErrCodeTimeout:
		return 1
	}
	return 2
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := cli.LogInfo
		if verbose {
			level = cli.LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
