package logic

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/nvandessel/boolnet/internal/neterr"
)

// Connections selects how Random wires the nodes of the generated network.
type Connections string

const (
	// ConnectionsFixed keeps every node's inputs from the base network.
	ConnectionsFixed Connections = "fixed"
	// ConnectionsShuffled keeps every node's in-degree but draws new inputs.
	ConnectionsShuffled Connections = "shuffled"
	// ConnectionsFree draws both the in-degree (1 to N) and the inputs.
	ConnectionsFree Connections = "free"
)

// ParseConnections converts a string to a Connections mode.
func ParseConnections(s string) (Connections, error) {
	switch c := Connections(s); c {
	case ConnectionsFixed, ConnectionsShuffled, ConnectionsFree:
		return c, nil
	default:
		return "", neterr.Configf("connections must be %q, %q or %q, got %q",
			ConnectionsFixed, ConnectionsShuffled, ConnectionsFree, s)
	}
}

// DefaultBias is the activation probability used when Random gets none.
const DefaultBias = 0.5

// Random returns a network with the size and names of base and a random truth
// table: every input combination of node i switches it on with probability
// p[i]. p may be empty (DefaultBias for all nodes), a single value for all
// nodes, or one value per node. Drawn inputs are sorted.
func Random(base *Network, rng *rand.Rand, conn Connections, p ...float64) (*Network, error) {
	if _, err := ParseConnections(string(conn)); err != nil {
		return nil, err
	}
	size := base.Size()
	ps, err := biases(p, size)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, size)
	for i := range rows {
		var inputs []int
		switch conn {
		case ConnectionsFixed:
			inputs = slices.Clone(base.rows[i].Inputs)
		case ConnectionsShuffled:
			inputs = sample(rng, size, len(base.rows[i].Inputs))
		case ConnectionsFree:
			inputs = sample(rng, size, 1+rng.IntN(size))
		}
		rows[i] = Row{Inputs: inputs, Conditions: randomConditions(rng, len(inputs), ps[i])}
	}

	var opts []Option
	if base.names != nil {
		opts = append(opts, WithNames(base.names...))
	}
	return New(rows, opts...)
}

func biases(p []float64, size int) ([]float64, error) {
	var ps []float64
	switch len(p) {
	case 0:
		ps = slices.Repeat([]float64{DefaultBias}, size)
	case 1:
		ps = slices.Repeat(p, size)
	case size:
		ps = slices.Clone(p)
	default:
		return nil, neterr.Configf("got %d activation probabilities for %d nodes", len(p), size)
	}
	for i, v := range ps {
		if !(v >= 0 && v <= 1) {
			return nil, neterr.Configf("activation probability %g of node %d outside [0, 1]", v, i)
		}
	}
	return ps, nil
}

// sample draws k distinct nodes from [0, n) and returns them sorted.
func sample(rng *rand.Rand, n, k int) []int {
	picked := rng.Perm(n)[:k]
	slices.Sort(picked)
	return picked
}

// randomConditions keeps each of the 2^k input combinations with probability
// p. Combinations are visited in encoding order.
func randomConditions(rng *rand.Rand, k int, p float64) []string {
	conds := []string{}
	var b strings.Builder
	for code := range 1 << k {
		if rng.Float64() >= p {
			continue
		}
		b.Reset()
		for m := range k {
			b.WriteByte('0' + byte(code>>m&1))
		}
		conds = append(conds, b.String())
	}
	return conds
}
