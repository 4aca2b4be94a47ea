// Package threshold implements weight/threshold Boolean networks. Node i
// computes x_i = sum_j W[i][j]*s_j - T[i] and takes its next value from a
// threshold function of x_i.
package threshold

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
	"github.com/nvandessel/boolnet/internal/statespace"
)

// Theta is the threshold function applied to a node's shifted input sum.
type Theta string

const (
	// ThetaSplit gives 0 below zero, 1 above, and keeps the node's value at zero.
	ThetaSplit Theta = "split"
	// ThetaNegative gives 1 above zero and 0 otherwise.
	ThetaNegative Theta = "negative"
	// ThetaPositive gives 0 below zero and 1 otherwise.
	ThetaPositive Theta = "positive"
)

// ParseTheta converts a string to a Theta. The empty string is ThetaSplit.
func ParseTheta(s string) (Theta, error) {
	switch th := Theta(s); th {
	case "":
		return ThetaSplit, nil
	case ThetaSplit, ThetaNegative, ThetaPositive:
		return th, nil
	default:
		return "", neterr.Configf("threshold function must be %q, %q or %q, got %q",
			ThetaSplit, ThetaNegative, ThetaPositive, s)
	}
}

// Apply returns the next value of a node whose shifted input sum is x and
// whose current value is current.
func (th Theta) Apply(x float64, current int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return 0
	}
	switch th {
	case ThetaPositive:
		return 1
	case ThetaNegative:
		return 0
	default:
		return current
	}
}

// Option configures New.
type Option func(*Network)

// WithNames attaches node names.
func WithNames(names ...string) Option {
	return func(n *Network) {
		n.names = slices.Clone(names)
	}
}

// WithTheta selects the threshold function. The default is ThetaSplit.
func WithTheta(th Theta) Option {
	return func(n *Network) {
		n.theta = th
	}
}

// Network is a weight/threshold network. It is immutable after construction
// and safe for concurrent use.
type Network struct {
	weights    *mat.Dense
	thresholds *mat.VecDense
	theta      Theta
	names      []string
	in         [][]int
	space      statespace.Space
}

var _ network.Network = (*Network)(nil)

// New builds a network from a square weight matrix, where weights[i][j] is
// the weight of the edge from j to i, and one threshold per node. Nil
// thresholds are all zero.
func New(weights [][]float64, thresholds []float64, opts ...Option) (*Network, error) {
	size := len(weights)
	if size == 0 {
		return nil, neterr.Configf("weight matrix must have at least one row")
	}
	data := make([]float64, 0, size*size)
	for i, row := range weights {
		if len(row) != size {
			return nil, neterr.Configf("weight matrix must be square: row %d has %d entries, expected %d", i, len(row), size)
		}
		for j, w := range row {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, neterr.Configf("weight[%d][%d] is not finite", i, j)
			}
		}
		data = append(data, row...)
	}

	if thresholds == nil {
		thresholds = make([]float64, size)
	}
	if len(thresholds) != size {
		return nil, neterr.Configf("got %d thresholds for %d nodes", len(thresholds), size)
	}
	for i, t := range thresholds {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, neterr.Configf("threshold %d is not finite", i)
		}
	}

	space, err := statespace.New(size)
	if err != nil {
		return nil, err
	}
	n := &Network{
		weights:    mat.NewDense(size, size, data),
		thresholds: mat.NewVecDense(size, slices.Clone(thresholds)),
		theta:      ThetaSplit,
		space:      space,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.theta, err = ParseTheta(string(n.theta)); err != nil {
		return nil, err
	}
	if n.names != nil && len(n.names) != size {
		return nil, neterr.Configf("got %d names for %d nodes", len(n.names), size)
	}

	n.in = make([][]int, size)
	for i := range size {
		var in []int
		for j := range size {
			// Under the split function a node at zero input keeps its value,
			// so it depends on itself.
			if n.weights.At(i, j) != 0 || (i == j && n.theta == ThetaSplit) {
				in = append(in, j)
			}
		}
		n.in[i] = in
	}
	return n, nil
}

// Size returns the number of nodes.
func (n *Network) Size() int { return len(n.in) }

// Space returns the binary state space.
func (n *Network) Space() statespace.Space { return n.space }

// Names returns the node names, or nil if none were given.
func (n *Network) Names() []string { return slices.Clone(n.names) }

// Theta returns the threshold function.
func (n *Network) Theta() Theta { return n.theta }

// Weights returns a copy of the weight matrix.
func (n *Network) Weights() [][]float64 {
	out := make([][]float64, n.Size())
	for i := range out {
		out[i] = mat.Row(nil, i, n.weights)
	}
	return out
}

// Thresholds returns a copy of the node thresholds.
func (n *Network) Thresholds() []float64 {
	return mat.Col(nil, 0, n.thresholds)
}

// Update advances state one step in place after validation.
func (n *Network) Update(state []int, opts ...network.UpdateOption) ([]int, error) {
	req, err := network.ResolveUpdate(n.space, state, opts...)
	if err != nil {
		return nil, err
	}
	if req.HasIndex {
		return n.UnsafeUpdateNode(state, req.Index), nil
	}

	pinned := make([]int, len(req.Pin))
	for k, p := range req.Pin {
		pinned[k] = state[p]
	}
	n.UnsafeUpdate(state)
	for k, p := range req.Pin {
		state[p] = pinned[k]
	}
	return state, nil
}

// UnsafeUpdate advances every node from a snapshot of state.
func (n *Network) UnsafeUpdate(state []int) []int {
	var x mat.VecDense
	x.MulVec(n.weights, vector(state))
	x.SubVec(&x, n.thresholds)
	for i := range state {
		state[i] = n.theta.Apply(x.AtVec(i), state[i])
	}
	return state
}

// UnsafeUpdateNode recomputes node index in place.
func (n *Network) UnsafeUpdateNode(state []int, index int) []int {
	x := mat.Dot(n.weights.RowView(index), vector(state)) - n.thresholds.AtVec(index)
	state[index] = n.theta.Apply(x, state[index])
	return state
}

func vector(state []int) *mat.VecDense {
	v := make([]float64, len(state))
	for i, s := range state {
		v[i] = float64(s)
	}
	return mat.NewVecDense(len(v), v)
}

// NeighborsIn returns the nodes with a nonzero weight into node index, plus
// index itself under the split function.
func (n *Network) NeighborsIn(index int) []int {
	return slices.Clone(n.in[index])
}

// NeighborsOut returns the nodes that read node index.
func (n *Network) NeighborsOut(index int) []int {
	return network.NeighborsOut(n, index)
}
