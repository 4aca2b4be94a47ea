// Package logic implements Boolean networks given as explicit truth tables:
// each node lists its inputs and the input combinations that switch it on.
package logic

import (
	"slices"

	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
	"github.com/nvandessel/boolnet/internal/statespace"
)

// Row is the rule of a single node. Each condition is a bit string aligned
// with Inputs ("10" means Inputs[0]=1 and Inputs[1]=0) for which the node
// becomes 1. Every other combination makes it 0.
type Row struct {
	Inputs     []int    `json:"inputs" yaml:"inputs"`
	Conditions []string `json:"conditions" yaml:"conditions"`
}

// Option configures New.
type Option func(*Network)

// WithNames attaches node names.
func WithNames(names ...string) Option {
	return func(n *Network) {
		n.names = slices.Clone(names)
	}
}

type rule struct {
	inputs []int
	on     map[int]struct{}
}

// Network is a truth-table Boolean network. It is immutable after
// construction and safe for concurrent use.
type Network struct {
	rows  []Row
	rules []rule
	in    [][]int
	names []string
	space statespace.Space
}

var _ network.Network = (*Network)(nil)

// New builds a network from one row per node.
func New(rows []Row, opts ...Option) (*Network, error) {
	if len(rows) == 0 {
		return nil, neterr.Configf("logic table must have at least one row")
	}
	size := len(rows)
	space, err := statespace.New(size)
	if err != nil {
		return nil, err
	}

	n := &Network{
		space: space,
		rows:  make([]Row, size),
		rules: make([]rule, size),
		in:    make([][]int, size),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.names != nil && len(n.names) != size {
		return nil, neterr.Configf("got %d names for %d nodes", len(n.names), size)
	}

	for i, row := range rows {
		r, err := compile(i, row, size)
		if err != nil {
			return nil, err
		}
		n.rules[i] = r
		n.rows[i] = Row{Inputs: slices.Clone(row.Inputs), Conditions: slices.Clone(row.Conditions)}
		in := slices.Clone(row.Inputs)
		slices.Sort(in)
		n.in[i] = in
	}
	return n, nil
}

// compile validates a row and encodes its conditions. Bit k of an encoded
// condition holds the value of Inputs[k].
func compile(node int, row Row, size int) (rule, error) {
	seen := make(map[int]bool, len(row.Inputs))
	for _, idx := range row.Inputs {
		if idx < 0 || idx >= size {
			return rule{}, neterr.Configf("node %d: input %d out of range [0, %d)", node, idx, size)
		}
		if seen[idx] {
			return rule{}, neterr.Configf("node %d: duplicate input %d", node, idx)
		}
		seen[idx] = true
	}

	on := make(map[int]struct{}, len(row.Conditions))
	for _, cond := range row.Conditions {
		if len(cond) != len(row.Inputs) {
			return rule{}, neterr.Configf("node %d: condition %q has %d bits, expected %d", node, cond, len(cond), len(row.Inputs))
		}
		code := 0
		for k, c := range cond {
			switch c {
			case '1':
				code |= 1 << k
			case '0':
			default:
				return rule{}, neterr.Configf("node %d: condition %q contains %q", node, cond, c)
			}
		}
		on[code] = struct{}{}
	}
	return rule{inputs: slices.Clone(row.Inputs), on: on}, nil
}

// Size returns the number of nodes.
func (n *Network) Size() int { return len(n.rules) }

// Space returns the binary state space.
func (n *Network) Space() statespace.Space { return n.space }

// Names returns the node names, or nil if none were given.
func (n *Network) Names() []string { return slices.Clone(n.names) }

// Table returns a copy of the rows the network was built from.
func (n *Network) Table() []Row {
	out := make([]Row, len(n.rows))
	for i, r := range n.rows {
		out[i] = Row{Inputs: slices.Clone(r.Inputs), Conditions: slices.Clone(r.Conditions)}
	}
	return out
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

	var pinned []int
	for _, p := range req.Pin {
		pinned = append(pinned, state[p])
	}
	n.UnsafeUpdate(state)
	for k, p := range req.Pin {
		state[p] = pinned[k]
	}
	return state, nil
}

// UnsafeUpdate advances every node from a snapshot of state.
func (n *Network) UnsafeUpdate(state []int) []int {
	next := make([]int, len(state))
	for i := range n.rules {
		next[i] = n.eval(state, i)
	}
	copy(state, next)
	return state
}

// UnsafeUpdateNode recomputes node index in place.
func (n *Network) UnsafeUpdateNode(state []int, index int) []int {
	state[index] = n.eval(state, index)
	return state
}

func (n *Network) eval(state []int, i int) int {
	r := n.rules[i]
	code := 0
	for k, idx := range r.inputs {
		code |= state[idx] << k
	}
	if _, ok := r.on[code]; ok {
		return 1
	}
	return 0
}

// NeighborsIn returns the sorted inputs of node index.
func (n *Network) NeighborsIn(index int) []int {
	return slices.Clone(n.in[index])
}

// NeighborsOut returns the nodes that read node index.
func (n *Network) NeighborsOut(index int) []int {
	return network.NeighborsOut(n, index)
}
