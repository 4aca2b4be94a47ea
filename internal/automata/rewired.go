// Package automata implements rewired elementary cellular automata: an
// 8-bit Wolfram rule applied over an arbitrary three-input wiring instead of
// the fixed nearest-neighbor lattice.
package automata

import (
	"slices"

	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
	"github.com/nvandessel/boolnet/internal/statespace"
)

// LeftBoundary is the wiring sentinel for the left boundary cell.
const LeftBoundary = -1

// Boundary holds the boundary conditions of an automaton. The zero value is
// periodic: the left boundary reads the last cell and the right boundary
// reads the first.
type Boundary struct {
	Fixed bool
	Left  int
	Right int
}

// Periodic reports whether the boundary wraps around the lattice.
func (b Boundary) Periodic() bool { return !b.Fixed }

// Option configures NewRewired.
type Option func(*options)

type options struct {
	size     int
	hasSize  bool
	wiring   [][]int
	boundary Boundary
	bErr     error
}

// WithSize builds the default nearest-neighbor wiring for n cells.
func WithSize(n int) Option {
	return func(o *options) {
		o.size = n
		o.hasSize = true
	}
}

// WithWiring supplies an explicit 3×N wiring matrix. Column j lists the
// three inputs of cell j; -1 is the left boundary and N the right boundary.
func WithWiring(wiring [][]int) Option {
	return func(o *options) {
		o.wiring = wiring
	}
}

// WithBoundary fixes the boundary cells to the given values.
func WithBoundary(left, right int) Option {
	return func(o *options) {
		if (left != 0 && left != 1) || (right != 0 && right != 1) {
			o.bErr = neterr.Configf("boundary values must be 0 or 1, got (%d, %d)", left, right)
			return
		}
		o.boundary = Boundary{Fixed: true, Left: left, Right: right}
	}
}

// RewiredECA is an elementary cellular automaton rule over an arbitrary
// wiring. It is immutable once constructed and safe for concurrent use; only
// the state slices passed to its update methods are mutated.
type RewiredECA struct {
	code     int
	size     int
	wiring   [3][]int
	boundary Boundary
	space    statespace.Space
	in       [][]int
}

var _ network.Network = (*RewiredECA)(nil)

// NewRewired constructs a rewired automaton for the given Wolfram code.
// Exactly one of WithSize and WithWiring must be provided.
func NewRewired(code int, opts ...Option) (*RewiredECA, error) {
	if code < 0 || code > 255 {
		return nil, neterr.Configf("rule code must be in [0, 255], got %d", code)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.bErr != nil {
		return nil, o.bErr
	}

	var wiring [3][]int
	switch {
	case o.hasSize && o.wiring != nil:
		return nil, neterr.Configf("cannot provide size and wiring at the same time")
	case o.hasSize:
		if o.size <= 0 {
			return nil, neterr.Configf("size must be positive, got %d", o.size)
		}
		wiring = DefaultWiring(o.size)
	case o.wiring != nil:
		w, err := checkWiring(o.wiring)
		if err != nil {
			return nil, err
		}
		wiring = w
	default:
		return nil, neterr.Configf("either size or wiring must be provided")
	}

	size := len(wiring[0])
	space, err := statespace.New(size)
	if err != nil {
		return nil, err
	}

	r := &RewiredECA{
		code:     code,
		size:     size,
		wiring:   wiring,
		boundary: o.boundary,
		space:    space,
	}
	r.in = r.inputs()
	return r, nil
}

// DefaultWiring returns the nearest-neighbor wiring for n cells: column j is
// (j-1, j, j+1), so the lattice ends read the -1 and n boundary sentinels.
func DefaultWiring(n int) [3][]int {
	var w [3][]int
	for row := range w {
		w[row] = make([]int, n)
		for j := range w[row] {
			w[row][j] = j + row - 1
		}
	}
	return w
}

// checkWiring validates an explicit wiring and returns a private copy. The
// right boundary sentinel is the wiring's own column count.
func checkWiring(wiring [][]int) ([3][]int, error) {
	var w [3][]int
	if len(wiring) != 3 {
		return w, neterr.Configf("wiring must have 3 rows, got %d", len(wiring))
	}
	n := len(wiring[0])
	if n == 0 {
		return w, neterr.Configf("wiring must have at least one column")
	}
	for row := range wiring {
		if len(wiring[row]) != n {
			return w, neterr.Configf("wiring rows must have equal length: row %d has %d entries, expected %d", row, len(wiring[row]), n)
		}
		for col, k := range wiring[row] {
			if k < LeftBoundary || k > n {
				return w, neterr.Configf("invalid input node %d at wiring[%d][%d]: must be in [-1, %d]", k, row, col, n)
			}
		}
		w[row] = slices.Clone(wiring[row])
	}
	return w, nil
}

// Code returns the Wolfram rule code.
func (r *RewiredECA) Code() int { return r.code }

// Size returns the number of cells.
func (r *RewiredECA) Size() int { return r.size }

// Boundary returns the boundary conditions.
func (r *RewiredECA) Boundary() Boundary { return r.boundary }

// Space returns the binary state space of the lattice.
func (r *RewiredECA) Space() statespace.Space { return r.space }

// Wiring returns a copy of the 3×N wiring matrix.
func (r *RewiredECA) Wiring() [][]int {
	out := make([][]int, 3)
	for row := range r.wiring {
		out[row] = slices.Clone(r.wiring[row])
	}
	return out
}

// Update advances lattice one step in place. WithIndex recomputes a single
// cell; WithPin holds the given cells at their current values.
func (r *RewiredECA) Update(lattice []int, opts ...network.UpdateOption) ([]int, error) {
	req, err := network.ResolveUpdate(r.space, lattice, opts...)
	if err != nil {
		return nil, err
	}
	if req.HasIndex {
		return r.UnsafeUpdateNode(lattice, req.Index), nil
	}
	return r.step(lattice, req.Pin), nil
}

// UnsafeUpdate advances every cell of lattice in place.
func (r *RewiredECA) UnsafeUpdate(lattice []int) []int {
	return r.step(lattice, nil)
}

// UnsafeUpdateNode recomputes cell index of lattice in place.
func (r *RewiredECA) UnsafeUpdateNode(lattice []int, index int) []int {
	left, right := r.edges(lattice)
	lattice[index] = r.cell(lattice, index, left, right)
	return lattice
}

// step computes every cell from a snapshot of lattice, then writes the
// result back, restoring pinned cells.
func (r *RewiredECA) step(lattice []int, pin []int) []int {
	var pinned []int
	if len(pin) > 0 {
		pinned = make([]int, len(pin))
		for k, i := range pin {
			pinned[k] = lattice[i]
		}
	}

	left, right := r.edges(lattice)
	next := make([]int, r.size)
	for j := range next {
		next[j] = r.cell(lattice, j, left, right)
	}
	copy(lattice, next)

	for k, i := range pin {
		lattice[i] = pinned[k]
	}
	return lattice
}

// edges resolves the left and right boundary values for lattice.
func (r *RewiredECA) edges(lattice []int) (int, int) {
	if r.boundary.Fixed {
		return r.boundary.Left, r.boundary.Right
	}
	return lattice[r.size-1], lattice[0]
}

// cell computes the next value of cell j. Row 0 of the wiring is the most
// significant bit of the neighborhood code.
func (r *RewiredECA) cell(lattice []int, j, left, right int) int {
	shift := 0
	for row := range r.wiring {
		var bit int
		switch k := r.wiring[row][j]; k {
		case LeftBoundary:
			bit = left
		case r.size:
			bit = right
		default:
			bit = lattice[k]
		}
		shift = 2*shift + bit
	}
	return (r.code >> (shift & 7)) & 1
}

// inputs computes the distinct real inputs of every cell. Under a periodic
// boundary the sentinels read the last and first cells; under a fixed
// boundary they read constants and contribute no input.
func (r *RewiredECA) inputs() [][]int {
	in := make([][]int, r.size)
	for j := range in {
		var nodes []int
		for row := range r.wiring {
			k := r.wiring[row][j]
			switch {
			case k == LeftBoundary && r.boundary.Fixed, k == r.size && r.boundary.Fixed:
				continue
			case k == LeftBoundary:
				k = r.size - 1
			case k == r.size:
				k = 0
			}
			nodes = append(nodes, k)
		}
		slices.Sort(nodes)
		in[j] = slices.Compact(nodes)
	}
	return in
}

// NeighborsIn returns the cells whose values feed cell index.
func (r *RewiredECA) NeighborsIn(index int) []int {
	return slices.Clone(r.in[index])
}

// NeighborsOut returns the cells fed by cell index.
func (r *RewiredECA) NeighborsOut(index int) []int {
	return network.NeighborsOut(r, index)
}
