// Package landscape walks the state-transition graph of a network: the
// one-step transition table, trajectories, attractors and their basins.
//
// The transition graph of a deterministic network is functional (every state
// has exactly one successor), so attractors are its cycles and every state
// drains into exactly one of them.
package landscape

import (
	"context"
	"maps"
	"slices"

	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
)

// DefaultMaxSize bounds the networks whose state space is enumerated in
// full. A table for 20 nodes already holds 2^20 entries.
const DefaultMaxSize = 20

// cancelCheckInterval is how many states are processed between context checks.
const cancelCheckInterval = 4096

// Option configures exhaustive walks.
type Option func(*options)

type options struct {
	maxSize int
}

// WithMaxSize overrides DefaultMaxSize.
func WithMaxSize(n int) Option {
	return func(o *options) { o.maxSize = n }
}

func resolve(net network.Network, opts []Option) error {
	o := options{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&o)
	}
	if net.Size() > o.maxSize {
		return neterr.Validationf("network has %d nodes; exhaustive enumeration is limited to %d", net.Size(), o.maxSize)
	}
	return nil
}

// Transitions returns the encoded successor of every encoded state.
func Transitions(ctx context.Context, net network.Network, opts ...Option) ([]int, error) {
	if err := resolve(net, opts); err != nil {
		return nil, err
	}
	space := net.Space()
	table := make([]int, space.Volume())
	for code := range table {
		if code%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		next := net.UnsafeUpdate(space.Decode(code))
		table[code] = space.UnsafeEncode(next)
	}
	return table, nil
}

// DecodedTransitions returns the successor state of every encoded state. The
// table is read-only once built and may be shared between goroutines.
func DecodedTransitions(ctx context.Context, net network.Network, opts ...Option) ([][]int, error) {
	if err := resolve(net, opts); err != nil {
		return nil, err
	}
	space := net.Space()
	table := make([][]int, space.Volume())
	for code := range table {
		if code%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		table[code] = net.UnsafeUpdate(space.Decode(code))
	}
	return table, nil
}

// Transition is one possible successor of a state and its probability.
type Transition struct {
	State       int     `json:"state"`
	Probability float64 `json:"probability"`
}

// AsyncTransitions returns, for every encoded state, its successors under
// asynchronous update: one node, chosen uniformly, is recomputed. Updates
// that leave the state unchanged count too. Successors are ordered by code
// and their probabilities sum to 1.
func AsyncTransitions(ctx context.Context, net network.Network, opts ...Option) ([][]Transition, error) {
	if err := resolve(net, opts); err != nil {
		return nil, err
	}

	space := net.Space()
	size := net.Size()
	share := 1 / float64(size)
	out := make([][]Transition, space.Volume())
	for code := range out {
		if code%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		state := space.Decode(code)
		counts := make(map[int]int, size)
		for i := range size {
			next := net.UnsafeUpdateNode(slices.Clone(state), i)
			counts[space.UnsafeEncode(next)]++
		}
		succ := make([]Transition, 0, len(counts))
		for _, next := range slices.Sorted(maps.Keys(counts)) {
			succ = append(succ, Transition{State: next, Probability: float64(counts[next]) * share})
		}
		out[code] = succ
	}
	return out, nil
}

// Trajectory returns state followed by its next steps successors under
// net.Update with opts. The input slice is not modified.
func Trajectory(net network.Network, state []int, steps int, opts ...network.UpdateOption) ([][]int, error) {
	if steps < 1 {
		return nil, neterr.Validationf("number of steps must be positive, got %d", steps)
	}

	current := slices.Clone(state)
	path := make([][]int, 0, steps+1)
	path = append(path, slices.Clone(current))
	for range steps {
		if _, err := net.Update(current, opts...); err != nil {
			return nil, err
		}
		path = append(path, slices.Clone(current))
	}
	return path, nil
}

// Timeseries returns the trajectories of every initial state, indexed as
// [node][initial state code][time].
func Timeseries(ctx context.Context, net network.Network, steps int, opts ...Option) ([][][]int, error) {
	if steps < 1 {
		return nil, neterr.Validationf("time series must have at least one step, got %d", steps)
	}
	if err := resolve(net, opts); err != nil {
		return nil, err
	}

	space := net.Space()
	volume := space.Volume()
	series := make([][][]int, net.Size())
	for node := range series {
		series[node] = make([][]int, volume)
		for code := range series[node] {
			series[node][code] = make([]int, steps+1)
		}
	}

	for code := 0; code < volume; code++ {
		if code%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		state := space.Decode(code)
		for t := 0; t <= steps; t++ {
			for node, v := range state {
				series[node][code][t] = v
			}
			net.UnsafeUpdate(state)
		}
	}
	return series, nil
}

// Attractors returns the cycles of the transition table. Each cycle starts at
// its smallest encoded state and follows the dynamics; cycles are ordered by
// their first state.
func Attractors(transitions []int) [][]int {
	cycles, _ := walk(transitions)
	return cycles
}

// Basin is an attractor together with the number of states that reach it,
// the attractor's own states included.
type Basin struct {
	Attractor []int `json:"attractor"`
	Size      int   `json:"size"`
}

// Basins returns one basin per attractor, in the order of Attractors.
func Basins(transitions []int) []Basin {
	cycles, label := walk(transitions)
	basins := make([]Basin, len(cycles))
	for i, c := range cycles {
		basins[i].Attractor = c
	}
	for _, l := range label {
		basins[l].Size++
	}
	return basins
}

// walk finds the cycles of a functional graph and labels every state with
// the index of the cycle it drains into.
func walk(next []int) ([][]int, []int) {
	const (
		unseen = -1
		onPath = -2
	)
	label := make([]int, len(next))
	for i := range label {
		label[i] = unseen
	}

	var cycles [][]int
	var path []int
	for start := range next {
		if label[start] != unseen {
			continue
		}
		path = path[:0]
		s := start
		for label[s] == unseen {
			label[s] = onPath
			path = append(path, s)
			s = next[s]
		}

		target := label[s]
		if target == onPath {
			// s closes a new cycle.
			at := slices.Index(path, s)
			cycle := slices.Clone(path[at:])
			target = len(cycles)
			cycles = append(cycles, rotateToMin(cycle))
		}
		for _, p := range path {
			label[p] = target
		}
	}

	// Order cycles by their first state and remap labels.
	order := make([]int, len(cycles))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return cycles[a][0] - cycles[b][0] })
	remap := make([]int, len(cycles))
	sorted := make([][]int, len(cycles))
	for newIdx, oldIdx := range order {
		remap[oldIdx] = newIdx
		sorted[newIdx] = cycles[oldIdx]
	}
	for i, l := range label {
		label[i] = remap[l]
	}
	return sorted, label
}

func rotateToMin(cycle []int) []int {
	at := 0
	for i, s := range cycle {
		if s < cycle[at] {
			at = i
		}
	}
	return append(slices.Clone(cycle[at:]), cycle[:at]...)
}
