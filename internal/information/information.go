// Package information measures how a network's dynamics store and transfer
// information. Every measure is estimated in bits from the trajectories of
// all initial states, with samples pooled across initial states.
package information

import (
	"context"
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/nvandessel/boolnet/internal/landscape"
	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
)

// Architecture holds the information measures of every node and node pair.
type Architecture struct {
	K     int `json:"k"`
	Steps int `json:"steps"`

	ActiveInformation []float64 `json:"active_information"`
	EntropyRate       []float64 `json:"entropy_rate"`

	// TransferEntropy[i][j] is the transfer entropy from source j to target
	// i. The diagonal is zero.
	TransferEntropy [][]float64 `json:"transfer_entropy"`

	// MutualInformation is symmetric; the diagonal holds each node's entropy.
	MutualInformation [][]float64 `json:"mutual_information"`
}

// Analyze runs every initial state for steps updates and measures the
// resulting time series with history length k. opts bound the state space
// as in landscape.Timeseries.
func Analyze(ctx context.Context, net network.Network, k, steps int, opts ...landscape.Option) (*Architecture, error) {
	if k < 1 {
		return nil, neterr.Validationf("history length must be positive, got %d", k)
	}
	if steps < k {
		return nil, neterr.Validationf("need at least %d steps for history length %d, got %d", k, k, steps)
	}
	series, err := landscape.Timeseries(ctx, net, steps, opts...)
	if err != nil {
		return nil, err
	}
	arch, err := FromSeries(ctx, series, k)
	if err != nil {
		return nil, err
	}
	arch.Steps = steps
	return arch, nil
}

// FromSeries measures series indexed as [node][initial state][time].
func FromSeries(ctx context.Context, series [][][]int, k int) (*Architecture, error) {
	n := len(series)
	if n == 0 {
		return nil, neterr.Validationf("time series has no nodes")
	}
	for _, s := range series {
		if err := check(k, s, series[0]); err != nil {
			return nil, err
		}
	}

	arch := &Architecture{
		K:                 k,
		Steps:             len(series[0][0]) - 1,
		ActiveInformation: make([]float64, n),
		EntropyRate:       make([]float64, n),
		TransferEntropy:   make([][]float64, n),
		MutualInformation: make([][]float64, n),
	}
	for i := range n {
		arch.TransferEntropy[i] = make([]float64, n)
		arch.MutualInformation[i] = make([]float64, n)
	}

	for i, target := range series {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		arch.ActiveInformation[i] = activeInformation(target, k)
		arch.EntropyRate[i] = entropyRate(target, k)
		for j, source := range series {
			if j != i {
				arch.TransferEntropy[i][j] = transferEntropy(source, target, k)
			}
			if j >= i {
				mi := mutualInformation(target, source)
				arch.MutualInformation[i][j] = mi
				arch.MutualInformation[j][i] = mi
			}
		}
	}
	return arch, nil
}

// ActiveInformation is the mutual information between a node's last k
// values and its next value: how much of its future its own past predicts.
// series is indexed as [initial state][time].
func ActiveInformation(series [][]int, k int) (float64, error) {
	if err := check(k, series, series); err != nil {
		return 0, err
	}
	return activeInformation(series, k), nil
}

// EntropyRate is the entropy of a node's next value given its last k
// values.
func EntropyRate(series [][]int, k int) (float64, error) {
	if err := check(k, series, series); err != nil {
		return 0, err
	}
	return entropyRate(series, k), nil
}

// TransferEntropy is the information the source's previous value adds about
// the target's next value beyond the target's own last k values.
func TransferEntropy(source, target [][]int, k int) (float64, error) {
	if err := check(k, target, source); err != nil {
		return 0, err
	}
	return transferEntropy(source, target, k), nil
}

// MutualInformation is the information shared by two nodes' values, pooled
// over every time step.
func MutualInformation(a, b [][]int) (float64, error) {
	if err := check(0, a, b); err != nil {
		return 0, err
	}
	return mutualInformation(a, b), nil
}

// check validates that series is binary, longer than k, and shaped like other.
func check(k int, series, other [][]int) error {
	if k < 0 {
		return neterr.Validationf("history length must not be negative, got %d", k)
	}
	if len(series) == 0 || len(series) != len(other) {
		return neterr.Validationf("time series need the same, non-zero number of initial states")
	}
	length := len(series[0])
	if length <= k {
		return neterr.Validationf("time series of length %d is too short for history length %d", length, k)
	}
	if k > 30 {
		return neterr.Validationf("history length %d is too long", k)
	}
	for _, s := range [][][]int{series, other} {
		for r, row := range s {
			if len(row) != length {
				return neterr.Validationf("time series %d has length %d, expected %d", r, len(row), length)
			}
			for t, v := range row {
				if v != 0 && v != 1 {
					return neterr.Validationf("time series %d has value %d at time %d", r, v, t)
				}
			}
		}
	}
	return nil
}

// history packs x[t-k..t-1] into an int, oldest value in the lowest bit.
func history(x []int, t, k int) int {
	h := 0
	for m := range k {
		h |= x[t-k+m] << m
	}
	return h
}

// counts tallies joint observations keyed by packed integers.
type counts struct {
	n     map[int]int
	total int
}

func newCounts() *counts { return &counts{n: make(map[int]int)} }

func (c *counts) add(key int) {
	c.n[key]++
	c.total++
}

// entropy returns the Shannon entropy of the empirical distribution in bits.
func (c *counts) entropy() float64 {
	if c.total == 0 {
		return 0
	}
	p := make([]float64, 0, len(c.n))
	for _, key := range slices.Sorted(maps.Keys(c.n)) {
		p = append(p, float64(c.n[key])/float64(c.total))
	}
	return stat.Entropy(p) / math.Ln2
}

// pastFuture returns the entropies of the k-history, the next value, and
// their joint.
func pastFuture(series [][]int, k int) (past, future, joint float64) {
	h, f, hf := newCounts(), newCounts(), newCounts()
	for _, x := range series {
		for t := k; t < len(x); t++ {
			hist := history(x, t, k)
			h.add(hist)
			f.add(x[t])
			hf.add(hist<<1 | x[t])
		}
	}
	return h.entropy(), f.entropy(), hf.entropy()
}

func activeInformation(series [][]int, k int) float64 {
	past, future, joint := pastFuture(series, k)
	return nonNegative(past + future - joint)
}

func entropyRate(series [][]int, k int) float64 {
	past, _, joint := pastFuture(series, k)
	return nonNegative(joint - past)
}

func transferEntropy(source, target [][]int, k int) float64 {
	h, hy, hf, hyf := newCounts(), newCounts(), newCounts(), newCounts()
	for r, x := range target {
		y := source[r]
		for t := k; t < len(x); t++ {
			hist := history(x, t, k)
			h.add(hist)
			hy.add(hist<<1 | y[t-1])
			hf.add(hist<<1 | x[t])
			hyf.add(hist<<2 | y[t-1]<<1 | x[t])
		}
	}
	return nonNegative(hy.entropy() + hf.entropy() - hyf.entropy() - h.entropy())
}

func mutualInformation(a, b [][]int) float64 {
	x, y, xy := newCounts(), newCounts(), newCounts()
	for r, row := range a {
		for t, v := range row {
			w := b[r][t]
			x.add(v)
			y.add(w)
			xy.add(v<<1 | w)
		}
	}
	return nonNegative(x.entropy() + y.entropy() - xy.entropy())
}

// nonNegative clears the rounding error left when equal entropies cancel.
func nonNegative(v float64) float64 {
	return max(v, 0)
}
