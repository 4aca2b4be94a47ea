package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nvandessel/boolnet/internal/landscape"
	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
)

func newStepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Advance a state through the network",
		Long: `Applies the update --steps times and prints every state visited,
starting with the initial one.

--index recomputes a single node per step; --pin holds the given nodes at
their current values during a full update. The two cannot be combined.

Examples:
  boolnet step --rule 30 --size 3 --boundary 0,1 --state 010 --index 1
  boolnet step -f nets.yaml --name toy --state 000 --steps 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			raw, _ := flags.GetString("state")
			initial, err := parseState(raw)
			if err != nil {
				return err
			}
			steps, _ := flags.GetInt("steps")
			if steps < 1 {
				return neterr.Validationf("--steps must be at least 1, got %d", steps)
			}

			params := map[string]any{"state": formatState(initial), "steps": steps}
			var opts []network.UpdateOption
			if flags.Changed("index") {
				index, _ := flags.GetInt("index")
				opts = append(opts, network.WithIndex(index))
				params["index"] = index
			}
			if pin, _ := flags.GetIntSlice("pin"); len(pin) > 0 {
				opts = append(opts, network.WithPin(pin...))
				params["pin"] = pin
			}

			return analysis[[]string]{
				name:   "trajectory",
				params: params,
				compute: func(ctx context.Context, s *session, net network.Network) ([]string, map[string]any, error) {
					states, err := landscape.Trajectory(net, initial, steps, opts...)
					if err != nil {
						return nil, nil, err
					}
					path := make([]string, len(states))
					for t, state := range states {
						path[t] = formatState(state)
					}
					return path, map[string]any{"final": path[len(path)-1]}, nil
				},
				text: func(w io.Writer, path []string) {
					for t, state := range path {
						fmt.Fprintf(w, "%3d  %s\n", t, state)
					}
				},
			}.run(cmd)
		},
	}
	cmd.Flags().String("state", "", "Initial state, e.g. 0110 (node 0 first)")
	cmd.Flags().Int("steps", 1, "Number of updates")
	cmd.Flags().Int("index", 0, "Update only this node; negative values count from the end")
	cmd.Flags().IntSlice("pin", nil, "Nodes held fixed during a full update")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}
