package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/boolnet/internal/neterr"
)

// Set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signalContext(context.Background())
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "boolnet",
		Short: "Boolean network dynamics and sensitivity analysis",
		Long: `boolnet analyzes the dynamics of Boolean networks: rewired elementary
cellular automata, logic-table networks and weight/threshold networks.

It computes single-state and ensemble sensitivity, the average difference
matrix and its spectral radius, c-sensitivity, canalization, the attractor
landscape and information measures of the dynamics, and keeps a history of
analysis reports.

Networks come from a definition file (--network, optionally --name) or
directly from an ECA rule (--rule, --size, --boundary). --randomize redraws
a logic network's table or rewires a threshold network from --seed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.Bool("json", false, "Output as JSON")
	flags.String("config", "", "Config file (default ~/.boolnet/config.yaml)")
	flags.String("log-level", "", "Log level: info, debug, trace")
	flags.String("store", "", "Report store: sqlite or memory")
	flags.Bool("no-save", false, "Do not save a report for this run")
	flags.StringP("network", "f", "", "Network definition file (YAML or JSON)")
	flags.String("name", "", "Network to select from a multi-network file")
	flags.Int("rule", 0, "Elementary CA rule code (0-255)")
	flags.Int("size", 0, "Lattice size for --rule")
	flags.IntSlice("boundary", nil, "Fixed boundary values left,right for --rule")
	flags.String("randomize", "", "Redraw the network from --seed: fixed, shuffled or free (logic), degree or size (threshold)")
	flags.Float64Slice("p", nil, "Bias for --randomize: one value, or one per node (default 0.5)")
	flags.Uint64("seed", 0, "Seed for --randomize (default: time-based)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newStepCmd(),
		newSensitivityCmd(),
		newMatrixCmd(),
		newCanalizingCmd(),
		newLambdaCmd(),
		newCSensCmd(),
		newReportCmd(),
		newLandscapeCmd(),
		newNeighborsCmd(),
		newInfoCmd(),
		newReportsCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// exitCode maps error kinds to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, neterr.ErrValidation), errors.Is(err, neterr.ErrConfiguration):
		return 2
	case errors.Is(err, neterr.ErrInvariant):
		return 3
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
