// Package statespace describes the space of binary states of a fixed-size
// network: membership, integer encoding, and the enumerations the
// sensitivity analyses walk (whole space, subspaces, Hamming neighbors).
//
// States are plain []int slices holding 0 or 1. The integer encoding is
// little-endian: state[0] is the least significant bit, so enumeration in
// encoding order flips the first node fastest.
package statespace

import (
	"iter"

	"github.com/nvandessel/boolnet/internal/neterr"
)

// MaxSize is the largest network size whose encoding still fits in an int.
const MaxSize = 62

// Space is the binary state space of a network with a fixed number of nodes.
// The zero value is not usable; construct with New.
type Space struct {
	size int
}

// New returns the state space of networks with size nodes.
func New(size int) (Space, error) {
	if size < 1 {
		return Space{}, neterr.Configf("state space size must be positive, got %d", size)
	}
	if size > MaxSize {
		return Space{}, neterr.Configf("state space size %d exceeds maximum %d", size, MaxSize)
	}
	return Space{size: size}, nil
}

// Size returns the number of nodes.
func (s Space) Size() int { return s.size }

// Volume returns the number of states, 2^Size.
func (s Space) Volume() int { return 1 << s.size }

// Contains reports whether state has the right length and only binary entries.
func (s Space) Contains(state []int) bool {
	if len(state) != s.size {
		return false
	}
	for _, x := range state {
		if x != 0 && x != 1 {
			return false
		}
	}
	return true
}

// Check is Contains with a descriptive validation error.
func (s Space) Check(state []int) error {
	if len(state) != s.size {
		return neterr.Validationf("state has length %d, expected %d", len(state), s.size)
	}
	for i, x := range state {
		if x != 0 && x != 1 {
			return neterr.Validationf("invalid value %d at node %d", x, i)
		}
	}
	return nil
}

// Encode returns the integer code of a validated state.
func (s Space) Encode(state []int) (int, error) {
	if err := s.Check(state); err != nil {
		return 0, err
	}
	return s.UnsafeEncode(state), nil
}

// UnsafeEncode encodes state without validating it.
func (s Space) UnsafeEncode(state []int) int {
	code := 0
	for i := len(state) - 1; i >= 0; i-- {
		code = code<<1 | state[i]
	}
	return code
}

// Decode returns a fresh state for the given code.
func (s Space) Decode(code int) []int {
	state := make([]int, s.size)
	for i := range state {
		state[i] = code & 1
		code >>= 1
	}
	return state
}

// States yields every state of the space in encoding order. Each yielded
// slice is owned by the caller.
func (s Space) States() iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		volume := s.Volume()
		for code := 0; code < volume; code++ {
			if !yield(s.Decode(code)) {
				return
			}
		}
	}
}

// Subspace yields the states obtained from base by varying only the nodes in
// indices, in little-endian order over indices. With no indices it yields a
// single copy of base. Each yielded slice is owned by the caller.
func (s Space) Subspace(indices []int, base []int) iter.Seq[[]int] {
	idx := append([]int(nil), indices...)
	origin := append([]int(nil), base...)
	return func(yield func([]int) bool) {
		count := 1 << len(idx)
		for code := 0; code < count; code++ {
			state := append([]int(nil), origin...)
			for bit, node := range idx {
				state[node] = (code >> bit) & 1
			}
			if !yield(state) {
				return
			}
		}
	}
}

// HammingNeighbors returns the len(state) states that differ from state in
// exactly one node. Neighbor j has node j flipped; the order matters because
// difference matrix columns are aligned with it.
func HammingNeighbors(state []int) [][]int {
	neighbors := make([][]int, len(state))
	for j := range state {
		neighbor := append([]int(nil), state...)
		neighbor[j] ^= 1
		neighbors[j] = neighbor
	}
	return neighbors
}

// Distance returns the Hamming distance between two equal-length states.
func Distance(a, b []int) int {
	d := 0
	for i := range a {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}
