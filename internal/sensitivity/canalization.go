package sensitivity

import (
	"slices"

	"github.com/nvandessel/boolnet/internal/network"
)

// IsCanalizing reports whether the edge source → target is canalizing:
// holding source at 0, or at 1, fixes target's next value whatever the
// other inputs of target are.
//
// exists is false when target is out of range or source is not an input of
// target; canalizing is then meaningless.
func IsCanalizing(net network.Network, target, source int) (canalizing, exists bool) {
	if target < 0 || target >= net.Size() {
		return false, false
	}
	in := net.NeighborsIn(target)
	at := slices.Index(in, source)
	if at < 0 {
		return false, false
	}
	others := slices.Delete(slices.Clone(in), at, at+1)
	zero := make([]int, net.Size())

	offForced, onForced := true, true
	offValue, onValue := -1, -1
	for state := range net.Space().Subspace(others, zero) {
		if !offForced && !onForced {
			break
		}
		if offForced {
			v := nodeNext(net, state, target, source, 0)
			switch {
			case offValue < 0:
				offValue = v
			case offValue != v:
				offForced = false
			}
		}
		if onForced {
			v := nodeNext(net, state, target, source, 1)
			switch {
			case onValue < 0:
				onValue = v
			case onValue != v:
				onForced = false
			}
		}
	}
	return offForced || onForced, true
}

// nodeNext returns target's next value from state with source held at value.
// state is left as it was found.
func nodeNext(net network.Network, state []int, target, source, value int) int {
	work := slices.Clone(state)
	work[source] = value
	return net.UnsafeUpdateNode(work, target)[target]
}

// CanalizingEdges returns the canalizing edges of net, ordered by target,
// then source. It is always a subset of network.Edges(net).
func CanalizingEdges(net network.Network) []network.Edge {
	var out []network.Edge
	for _, e := range network.Edges(net) {
		if ok, _ := IsCanalizing(net, e.Target, e.Source); ok {
			out = append(out, e)
		}
	}
	return out
}

// CanalizingNodes returns the sorted nodes with at least one canalizing
// incoming edge.
func CanalizingNodes(net network.Network) []int {
	return nodesOf(CanalizingEdges(net))
}

func nodesOf(edges []network.Edge) []int {
	var nodes []int
	for _, e := range edges {
		nodes = append(nodes, e.Target)
	}
	slices.Sort(nodes)
	return slices.Compact(nodes)
}
