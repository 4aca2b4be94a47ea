package threshold

import (
	"math/rand/v2"

	"github.com/nvandessel/boolnet/internal/neterr"
)

// Rewiring selects how Rewire shuffles a network's edges. Both modes keep
// thresholds, theta, names and self-loops.
type Rewiring string

const (
	// RewireDegree swaps the sources of two edges of equal weight, keeping
	// every node's in- and out-degree per weight.
	RewireDegree Rewiring = "degree"
	// RewireSize swaps arbitrary off-diagonal entries, keeping only the
	// number of edges of each weight.
	RewireSize Rewiring = "size"
)

// ParseRewiring converts a string to a Rewiring.
func ParseRewiring(s string) (Rewiring, error) {
	switch r := Rewiring(s); r {
	case RewireDegree, RewireSize:
		return r, nil
	default:
		return "", neterr.Configf("rewiring must be %q or %q, got %q", RewireDegree, RewireSize, s)
	}
}

// Rewire returns a randomly rewired copy of net. Every off-diagonal edge
// (i, j) in turn is offered swaps with the entries (k, l) in row-major
// order, each accepted with probability 1/2, until one is accepted.
func Rewire(net *Network, rng *rand.Rand, mode Rewiring) (*Network, error) {
	if _, err := ParseRewiring(string(mode)); err != nil {
		return nil, err
	}
	w := net.Weights()
	n := len(w)
	for i := range n {
		for j := range n {
			if w[i][j] == 0 || i == j {
				continue
			}
		swap:
			for k := range n {
				for l := range n {
					if k == l || (mode == RewireDegree && !degreeSwap(w, i, j, k, l)) {
						continue
					}
					if rng.Float64() >= 0.5 {
						continue
					}
					if mode == RewireDegree {
						w[i][l], w[k][j] = w[i][j], w[k][l]
						w[i][j], w[k][l] = 0, 0
					} else {
						w[i][j], w[k][l] = w[k][l], w[i][j]
					}
					break swap
				}
			}
		}
	}

	opts := []Option{WithTheta(net.theta)}
	if net.names != nil {
		opts = append(opts, WithNames(net.names...))
	}
	return New(w, net.Thresholds(), opts...)
}

// degreeSwap reports whether edges (i, j) and (k, l) can become (i, l) and
// (k, j) without changing a weight class, creating a double edge or touching
// the diagonal.
func degreeSwap(w [][]float64, i, j, k, l int) bool {
	switch {
	case w[i][j] != w[k][l]:
		return false
	case k == i || l == j || i == l || k == j:
		return false
	default:
		return w[i][l] == 0 && w[k][j] == 0
	}
}
