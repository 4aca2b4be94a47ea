package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
	"github.com/nvandessel/boolnet/internal/sensitivity"
)

// parseState reads a state written as bits ("0110") or a comma list
// ("0,1,1,0"). Node 0 comes first. Length is checked by the network.
func parseState(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, neterr.Validationf("empty state")
	}
	var parts []string
	if strings.Contains(s, ",") {
		parts = strings.Split(s, ",")
	} else {
		parts = strings.Split(s, "")
	}
	state := make([]int, len(parts))
	for i, p := range parts {
		switch strings.TrimSpace(p) {
		case "0":
		case "1":
			state[i] = 1
		default:
			return nil, neterr.Validationf("invalid value %q at node %d in state %q", p, i, s)
		}
	}
	return state, nil
}

// formatState writes a state as bits, node 0 first.
func formatState(state []int) string {
	var b strings.Builder
	for _, x := range state {
		b.WriteByte(byte('0' + x))
	}
	return b.String()
}

// optionalState returns the --state flag parsed, or nil when it is unset.
func optionalState(cmd *cobra.Command) ([]int, error) {
	raw, _ := cmd.Flags().GetString("state")
	if raw == "" {
		return nil, nil
	}
	return parseState(raw)
}

// addEnsembleFlags registers the flags that describe an explicit ensemble.
func addEnsembleFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArray("states", nil, "Ensemble state (repeatable); default is the exact average over every state")
	f.Float64Slice("weights", nil, "Ensemble weights, one per --states entry or one per state code")
	f.Bool("table", false, "Precompute the transition table (default from config)")
}

// ensembleOptions converts the ensemble flags into engine options and a
// params record for the report.
func ensembleOptions(cmd *cobra.Command) ([]sensitivity.Option, map[string]any, error) {
	f := cmd.Flags()
	params := map[string]any{}
	var opts []sensitivity.Option

	raw, _ := f.GetStringArray("states")
	if len(raw) > 0 {
		states := make([][]int, len(raw))
		for i, r := range raw {
			state, err := parseState(r)
			if err != nil {
				return nil, nil, err
			}
			states[i] = state
		}
		opts = append(opts, sensitivity.WithStates(states...))
		params["states"] = raw
	}
	if weights, _ := f.GetFloat64Slice("weights"); len(weights) > 0 {
		opts = append(opts, sensitivity.WithWeights(weights...))
		params["weights"] = weights
	}
	if f.Changed("table") {
		table, _ := f.GetBool("table")
		opts = append(opts, sensitivity.WithTransitionTable(table))
		params["table"] = table
	}
	return opts, params, nil
}

// writeMatrix prints rows of a matrix with aligned columns.
func writeMatrix(w io.Writer, rows [][]float64) {
	for _, row := range rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprintf("%6.4f", v)
		}
		fmt.Fprintln(w, strings.Join(cells, " "))
	}
}

// writeEdges prints one "source -> target" line per edge.
func writeEdges(w io.Writer, edges []network.Edge) {
	for _, e := range edges {
		fmt.Fprintf(w, "%d -> %d\n", e.Source, e.Target)
	}
}
