package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nvandessel/boolnet/internal/landscape"
	"github.com/nvandessel/boolnet/internal/network"
)

// attractorView is one attractor with its states in readable form.
type attractorView struct {
	Codes  []int    `json:"codes"`
	States []string `json:"states"`
	Basin  int      `json:"basin"`
}

// landscapeResult summarizes the state transition graph.
type landscapeResult struct {
	Nodes       int             `json:"nodes"`
	States      int             `json:"states"`
	Attractors  []attractorView `json:"attractors"`
	Transitions []int           `json:"transitions,omitempty"`

	// Timeseries is indexed [node][initial state code][time].
	Timeseries [][][]int `json:"timeseries,omitempty"`

	Async [][]landscape.Transition `json:"async,omitempty"`
}

func newLandscapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "landscape",
		Short: "Attractors and basins of the full state space",
		Long: `Builds the transition table of every state, then finds the attractors
(fixed points and cycles) and the size of each basin of attraction.

Cycles start at their smallest state code; attractors are ordered by that
code. Networks above the configured exhaustive size are rejected.

--timeseries N adds the trajectory of every node from every initial state
over N updates. --async adds the asynchronous successors of every state,
where one node chosen uniformly is updated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			withTable, _ := cmd.Flags().GetBool("transitions")
			seriesSteps, _ := cmd.Flags().GetInt("timeseries")
			withAsync, _ := cmd.Flags().GetBool("async")
			params := map[string]any{"transitions": withTable, "async": withAsync}
			if seriesSteps != 0 {
				params["timeseries"] = seriesSteps
			}
			return analysis[landscapeResult]{
				name:   "landscape",
				params: params,
				compute: func(ctx context.Context, s *session, net network.Network) (landscapeResult, map[string]any, error) {
					limit := landscape.WithMaxSize(s.engine.Config().MaxExhaustiveSize)
					table, err := landscape.Transitions(ctx, net, limit)
					if err != nil {
						return landscapeResult{}, nil, err
					}

					space := net.Space()
					res := landscapeResult{Nodes: net.Size(), States: len(table)}
					for _, b := range landscape.Basins(table) {
						view := attractorView{Codes: b.Attractor, Basin: b.Size}
						for _, code := range b.Attractor {
							view.States = append(view.States, formatState(space.Decode(code)))
						}
						res.Attractors = append(res.Attractors, view)
					}
					if withTable {
						res.Transitions = table
					}
					if withAsync {
						if res.Async, err = landscape.AsyncTransitions(ctx, net, limit); err != nil {
							return landscapeResult{}, nil, err
						}
					}
					if seriesSteps != 0 {
						if res.Timeseries, err = landscape.Timeseries(ctx, net, seriesSteps, limit); err != nil {
							return landscapeResult{}, nil, err
						}
					}
					return res, map[string]any{"attractors": len(res.Attractors)}, nil
				},
				text: func(w io.Writer, r landscapeResult) {
					fmt.Fprintf(w, "%d nodes, %d states, %d attractors\n", r.Nodes, r.States, len(r.Attractors))
					for i, a := range r.Attractors {
						fmt.Fprintf(w, "attractor %d (period %d, basin %d): %v\n", i, len(a.Codes), a.Basin, a.States)
					}
					if len(r.Transitions) > 0 {
						fmt.Fprintln(w, "transitions:")
						for code, next := range r.Transitions {
							fmt.Fprintf(w, "  %d -> %d\n", code, next)
						}
					}
					if len(r.Async) > 0 {
						fmt.Fprintln(w, "asynchronous transitions:")
						for code, succ := range r.Async {
							fmt.Fprintf(w, "  %d ->", code)
							for _, tr := range succ {
								fmt.Fprintf(w, " %d (%.4g)", tr.State, tr.Probability)
							}
							fmt.Fprintln(w)
						}
					}
					for node, runs := range r.Timeseries {
						fmt.Fprintf(w, "node %d:\n", node)
						for code, values := range runs {
							fmt.Fprintf(w, "  %d: %s\n", code, formatState(values))
						}
					}
				},
			}.run(cmd)
		},
	}
	cmd.Flags().Bool("transitions", false, "Include the full transition table")
	cmd.Flags().Bool("async", false, "Include asynchronous transition probabilities")
	cmd.Flags().Int("timeseries", 0, "Include every node's time series over this many updates")
	return cmd
}
