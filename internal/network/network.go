// Package network defines the capability contract every simulated network
// satisfies. Analyses (sensitivity, canalization, landscapes) are written
// against this interface only, never against a concrete network type.
package network

import (
	"slices"

	"github.com/nvandessel/boolnet/internal/neterr"
	"github.com/nvandessel/boolnet/internal/statespace"
)

// Network is a deterministic, synchronous, binary network.
type Network interface {
	// Size is the number of nodes.
	Size() int

	// Space is the state space of the network.
	Space() statespace.Space

	// Update advances state one step in place after validating the
	// arguments, and returns the same slice.
	Update(state []int, opts ...UpdateOption) ([]int, error)

	// UnsafeUpdate advances every node of state in place without validation.
	// Callers must pass a member of Space().
	UnsafeUpdate(state []int) []int

	// UnsafeUpdateNode recomputes only node index, in place, without
	// validation. index must be in [0, Size()).
	UnsafeUpdateNode(state []int, index int) []int

	// NeighborsIn returns the sorted, distinct nodes whose values feed node index.
	NeighborsIn(index int) []int

	// NeighborsOut returns the sorted, distinct nodes that node index feeds.
	NeighborsOut(index int) []int
}

// Edge is a dependency from Source to Target: Source is one of Target's inputs.
type Edge struct {
	Target int `json:"target" yaml:"target"`
	Source int `json:"source" yaml:"source"`
}

// Edges returns every edge of the network ordered by target, then source.
func Edges(net Network) []Edge {
	var edges []Edge
	for i := 0; i < net.Size(); i++ {
		for _, j := range net.NeighborsIn(i) {
			edges = append(edges, Edge{Target: i, Source: j})
		}
	}
	return edges
}

// Direction selects which neighbors of a node Neighbors returns.
type Direction string

const (
	DirectionIn   Direction = "in"   // Nodes feeding the node
	DirectionOut  Direction = "out"  // Nodes fed by the node
	DirectionBoth Direction = "both" // Union of in and out
)

// ParseDirection converts a string to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionIn, DirectionOut, DirectionBoth:
		return d, nil
	default:
		return "", neterr.Validationf("direction must be %q, %q or %q, got %q", DirectionIn, DirectionOut, DirectionBoth, s)
	}
}

// Neighbors returns the sorted neighbors of node index in the given direction.
func Neighbors(net Network, index int, dir Direction) ([]int, error) {
	if index < 0 || index >= net.Size() {
		return nil, neterr.Validationf("node %d out of range [0, %d)", index, net.Size())
	}
	switch dir {
	case DirectionIn:
		return net.NeighborsIn(index), nil
	case DirectionOut:
		return net.NeighborsOut(index), nil
	case DirectionBoth:
		union := append(net.NeighborsIn(index), net.NeighborsOut(index)...)
		slices.Sort(union)
		return slices.Compact(union), nil
	default:
		return nil, neterr.Validationf("invalid direction %q", dir)
	}
}

// NeighborsOut derives outgoing neighbors from NeighborsIn. Network
// implementations that only store inputs use it to satisfy the interface.
func NeighborsOut(net Network, index int) []int {
	var out []int
	for j := 0; j < net.Size(); j++ {
		if slices.Contains(net.NeighborsIn(j), index) {
			out = append(out, j)
		}
	}
	return out
}
