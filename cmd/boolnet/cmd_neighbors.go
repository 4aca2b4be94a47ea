package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nvandessel/boolnet/internal/network"
)

func newNeighborsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neighbors",
		Short: "Show the wiring of a network",
		Long: `With --index, lists the neighbors of one node in the given --direction
(in, out or both). Without it, lists every edge source -> target.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			def, net, err := loadNetwork(cmd)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("index") {
				edges := network.Edges(net)
				return s.emit(map[string]any{"network": def.Name, "edges": edges}, func(w io.Writer) {
					writeEdges(w, edges)
				})
			}

			index, _ := cmd.Flags().GetInt("index")
			raw, _ := cmd.Flags().GetString("direction")
			dir, err := network.ParseDirection(raw)
			if err != nil {
				return err
			}
			nodes, err := network.Neighbors(net, index, dir)
			if err != nil {
				return err
			}
			return s.emit(map[string]any{
				"network":   def.Name,
				"index":     index,
				"direction": dir,
				"neighbors": nodes,
			}, func(w io.Writer) {
				fmt.Fprintf(w, "%s neighbors of %d: %v\n", dir, index, nodes)
			})
		},
	}
	cmd.Flags().Int("index", 0, "Node to inspect")
	cmd.Flags().String("direction", string(network.DirectionIn), "in, out or both")
	return cmd
}
