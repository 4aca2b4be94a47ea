package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/nvandessel/boolnet/internal/information"
	"github.com/nvandessel/boolnet/internal/landscape"
	"github.com/nvandessel/boolnet/internal/network"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Information storage and transfer in the dynamics",
		Long: `Runs every initial state for --steps updates and measures the time series
in bits, pooled over all initial states:

  active information   what a node's last --k values say about its next one
  entropy rate         what remains uncertain about the next value
  transfer entropy     what a source's previous value adds about a target
  mutual information   what two nodes' values share

The transfer entropy matrix is indexed [target][source].

Examples:
  boolnet info --rule 110 --size 6 --k 2 --steps 10
  boolnet info -f nets.yaml --name toy --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, _ := cmd.Flags().GetInt("k")
			steps, _ := cmd.Flags().GetInt("steps")
			return analysis[*information.Architecture]{
				name:   "information",
				params: map[string]any{"k": k, "steps": steps},
				compute: func(ctx context.Context, s *session, net network.Network) (*information.Architecture, map[string]any, error) {
					limit := landscape.WithMaxSize(s.engine.Config().MaxExhaustiveSize)
					arch, err := information.Analyze(ctx, net, k, steps, limit)
					if err != nil {
						return nil, nil, err
					}
					return arch, map[string]any{
						"mean_active_information": stat.Mean(arch.ActiveInformation, nil),
						"mean_entropy_rate":       stat.Mean(arch.EntropyRate, nil),
					}, nil
				},
				text: func(w io.Writer, a *information.Architecture) {
					fmt.Fprintf(w, "history k=%d over %d steps\n", a.K, a.Steps)
					fmt.Fprintln(w, "node  active  entropy-rate")
					for i := range a.ActiveInformation {
						fmt.Fprintf(w, "%4d  %.4f  %.4f\n", i, a.ActiveInformation[i], a.EntropyRate[i])
					}
					fmt.Fprintln(w, "transfer entropy [target][source]:")
					writeMatrix(w, a.TransferEntropy)
					fmt.Fprintln(w, "mutual information:")
					writeMatrix(w, a.MutualInformation)
				},
			}.run(cmd)
		},
	}
	cmd.Flags().Int("k", 1, "History length")
	cmd.Flags().Int("steps", 10, "Updates per initial state")
	return cmd
}
