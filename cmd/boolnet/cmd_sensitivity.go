package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/sensitivity"
)

// valueResult is a scalar measure, optionally tied to one state.
type valueResult struct {
	State string  `json:"state,omitempty"`
	C     int     `json:"c,omitempty"`
	Value float64 `json:"value"`
}

func newSensitivityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "Sensitivity of one state, or the average over an ensemble",
		Long: `With --state, prints the average number of nodes whose successor changes
when a single node of the state is flipped.

Without --state, prints the average sensitivity: the exact average over
every state, or over the ensemble given with --states/--weights.

Examples:
  boolnet sensitivity --rule 30 --size 5 --state 00100
  boolnet sensitivity -f nets.yaml --name toy --states 000 --states 111`,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := optionalState(cmd)
			if err != nil {
				return err
			}
			text := func(w io.Writer, r valueResult) {
				if r.State != "" {
					fmt.Fprintf(w, "sensitivity(%s) = %.6g\n", r.State, r.Value)
				} else {
					fmt.Fprintf(w, "average sensitivity = %.6g\n", r.Value)
				}
			}
			if state != nil {
				return analysis[valueResult]{
					name:   "sensitivity",
					params: map[string]any{"state": formatState(state)},
					compute: func(ctx context.Context, s *session, net network.Network) (valueResult, map[string]any, error) {
						v, err := sensitivity.Sensitivity(net, state, nil)
						return valueResult{State: formatState(state), Value: v}, map[string]any{"sensitivity": v}, err
					},
					text: text,
				}.run(cmd)
			}

			opts, params, err := ensembleOptions(cmd)
			if err != nil {
				return err
			}
			return analysis[valueResult]{
				name:   sensitivity.AnalysisAverageSensitivity,
				params: params,
				compute: func(ctx context.Context, s *session, net network.Network) (valueResult, map[string]any, error) {
					v, err := s.engine.AverageSensitivity(ctx, net, opts...)
					return valueResult{Value: v}, map[string]any{"average_sensitivity": v}, err
				},
				text: text,
			}.run(cmd)
		},
	}
	cmd.Flags().String("state", "", "State to analyze, e.g. 0110 (node 0 first)")
	addEnsembleFlags(cmd)
	return cmd
}

func newMatrixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Difference matrix of one state, or the average difference matrix",
		Long: `Entry (i, j) is 1 when flipping node j changes node i's successor.

With --state, prints the 0/1 matrix of that state. Without it, prints the
average difference matrix Q: the exact average over every state, computed
from each node's inputs, or the weighted average over --states.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := optionalState(cmd)
			if err != nil {
				return err
			}
			text := func(w io.Writer, rows [][]float64) { writeMatrix(w, rows) }

			if state != nil {
				return analysis[[][]float64]{
					name:   "difference_matrix",
					params: map[string]any{"state": formatState(state)},
					compute: func(ctx context.Context, s *session, net network.Network) ([][]float64, map[string]any, error) {
						m, err := sensitivity.DifferenceMatrix(net, state, nil)
						if err != nil {
							return nil, nil, err
						}
						return sensitivity.Rows(m), nil, nil
					},
					text: text,
				}.run(cmd)
			}

			opts, params, err := ensembleOptions(cmd)
			if err != nil {
				return err
			}
			return analysis[[][]float64]{
				name:   sensitivity.AnalysisAverageDifferenceMatrix,
				params: params,
				compute: func(ctx context.Context, s *session, net network.Network) ([][]float64, map[string]any, error) {
					q, err := s.engine.AverageDifferenceMatrix(ctx, net, opts...)
					if err != nil {
						return nil, nil, err
					}
					return sensitivity.Rows(q), nil, nil
				},
				text: text,
			}.run(cmd)
		},
	}
	cmd.Flags().String("state", "", "State to analyze, e.g. 0110 (node 0 first)")
	addEnsembleFlags(cmd)
	return cmd
}

func newLambdaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Spectral radius of the average difference matrix",
		Long: `Prints λQ, the largest eigenvalue magnitude of the average difference
matrix. Values above 1 indicate that perturbations tend to spread.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, params, err := ensembleOptions(cmd)
			if err != nil {
				return err
			}
			return analysis[valueResult]{
				name:   sensitivity.AnalysisLambdaQ,
				params: params,
				compute: func(ctx context.Context, s *session, net network.Network) (valueResult, map[string]any, error) {
					v, err := s.engine.LambdaQ(ctx, net, opts...)
					return valueResult{Value: v}, map[string]any{"lambda_q": v}, err
				},
				text: func(w io.Writer, r valueResult) { fmt.Fprintf(w, "lambda_q = %.6g\n", r.Value) },
			}.run(cmd)
		},
	}
	addEnsembleFlags(cmd)
	return cmd
}

func newCSensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csens",
		Short: "c-sensitivity of one state, or averaged over an ensemble",
		Long: `Counts the size-c subsets of nodes whose simultaneous flip changes at
least one node's successor. With --state the count for that state is
printed; otherwise its average over every state or over --states.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _ := cmd.Flags().GetInt("c")
			state, err := optionalState(cmd)
			if err != nil {
				return err
			}
			text := func(w io.Writer, r valueResult) {
				if r.State != "" {
					fmt.Fprintf(w, "c-sensitivity(%s, c=%d) = %g\n", r.State, c, r.Value)
				} else {
					fmt.Fprintf(w, "average c-sensitivity (c=%d) = %.6g\n", c, r.Value)
				}
			}
			if state != nil {
				return analysis[valueResult]{
					name:   "c_sensitivity",
					params: map[string]any{"state": formatState(state), "c": c},
					compute: func(ctx context.Context, s *session, net network.Network) (valueResult, map[string]any, error) {
						n, err := sensitivity.CSensitivity(net, state, c, nil)
						return valueResult{State: formatState(state), C: c, Value: float64(n)}, map[string]any{"c_sensitivity": n}, err
					},
					text: text,
				}.run(cmd)
			}

			opts, params, err := ensembleOptions(cmd)
			if err != nil {
				return err
			}
			params["c"] = c
			return analysis[valueResult]{
				name:   sensitivity.AnalysisAverageCSensitivity,
				params: params,
				compute: func(ctx context.Context, s *session, net network.Network) (valueResult, map[string]any, error) {
					v, err := s.engine.AverageCSensitivity(ctx, net, c, opts...)
					return valueResult{C: c, Value: v}, map[string]any{"average_c_sensitivity": v}, err
				},
				text: text,
			}.run(cmd)
		},
	}
	cmd.Flags().Int("c", 1, "Subset size")
	cmd.Flags().String("state", "", "State to analyze, e.g. 0110 (node 0 first)")
	addEnsembleFlags(cmd)
	return cmd
}

// canalizingResult lists canalizing edges and the nodes that have one.
type canalizingResult struct {
	Edges []network.Edge `json:"edges"`
	Nodes []int          `json:"nodes"`
}

func newCanalizingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "canalizing",
		Short: "List canalizing edges and nodes",
		Long: `An edge source -> target is canalizing when some value of the source fixes
the target's next value whatever its other inputs are.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis[canalizingResult]{
				name: "canalizing",
				compute: func(ctx context.Context, s *session, net network.Network) (canalizingResult, map[string]any, error) {
					edges := sensitivity.CanalizingEdges(net)
					nodes := sensitivity.CanalizingNodes(net)
					return canalizingResult{Edges: edges, Nodes: nodes},
						map[string]any{"edges": len(edges), "nodes": len(nodes)}, nil
				},
				text: func(w io.Writer, r canalizingResult) {
					fmt.Fprintf(w, "canalizing edges: %d\n", len(r.Edges))
					writeEdges(w, r.Edges)
					fmt.Fprintf(w, "canalizing nodes: %v\n", r.Nodes)
				},
			}.run(cmd)
		},
	}
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Average difference matrix with every measure derived from it",
		Long: `Computes the average difference matrix once and derives the average
sensitivity, λQ and the canalizing structure from it. The result is saved
as a report unless --no-save is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, params, err := ensembleOptions(cmd)
			if err != nil {
				return err
			}
			return analysis[sensitivity.Summary]{
				name:   sensitivity.AnalysisReport,
				params: params,
				compute: func(ctx context.Context, s *session, net network.Network) (sensitivity.Summary, map[string]any, error) {
					sum, err := s.engine.Report(ctx, net, opts...)
					return sum, map[string]any{
						"average_sensitivity": sum.AverageSensitivity,
						"lambda_q":            sum.LambdaQ,
						"mode":                sum.Mode,
					}, err
				},
				text: func(w io.Writer, r sensitivity.Summary) {
					fmt.Fprintf(w, "nodes:               %d\n", r.Size)
					fmt.Fprintf(w, "mode:                %s\n", r.Mode)
					fmt.Fprintf(w, "average sensitivity: %.6g\n", r.AverageSensitivity)
					fmt.Fprintf(w, "lambda_q:            %.6g\n", r.LambdaQ)
					fmt.Fprintf(w, "canalizing nodes:    %v\n", r.CanalizingNodes)
					fmt.Fprintln(w, "average difference matrix:")
					writeMatrix(w, r.Matrix)
				},
			}.run(cmd)
		},
	}
	addEnsembleFlags(cmd)
	return cmd
}
