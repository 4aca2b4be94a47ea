package sensitivity

import (
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
	"github.com/nvandessel/boolnet/internal/statespace"
)

// Sensitivity returns the mean, over the Hamming neighbors of state, of the
// Hamming distance between the neighbor's successor and the successor of
// state. The result lies in [0, N].
//
// transitions is an optional decoded transition table indexed by state code,
// as built by landscape.DecodedTransitions. It is only read.
func Sensitivity(net network.Network, state []int, transitions [][]int) (float64, error) {
	if err := checkArgs(net, state, transitions); err != nil {
		return 0, err
	}
	p := newEvaluator(net, transitions)
	base := p.next(state)

	total := 0
	neighbor := slices.Clone(state)
	for j := range neighbor {
		neighbor[j] ^= 1
		total += statespace.Distance(p.next(neighbor), base)
		neighbor[j] ^= 1
	}
	return float64(total) / float64(net.Size()), nil
}

// DifferenceMatrix returns the N×N matrix whose entry (i, j) is 1 when
// flipping node j of state changes the successor value of node i, and 0
// otherwise. Column j corresponds to the j-th Hamming neighbor.
func DifferenceMatrix(net network.Network, state []int, transitions [][]int) (*mat.Dense, error) {
	if err := checkArgs(net, state, transitions); err != nil {
		return nil, err
	}
	n := net.Size()
	q := mat.NewDense(n, n, nil)
	newEvaluator(net, transitions).difference(q, state, 1)
	return q, nil
}

func checkArgs(net network.Network, state []int, transitions [][]int) error {
	space := net.Space()
	if err := space.Check(state); err != nil {
		return err
	}
	if transitions != nil && len(transitions) != space.Volume() {
		return neterr.Validationf("transition table has %d entries, expected %d", len(transitions), space.Volume())
	}
	return nil
}

// evaluator computes successors, either from a transition table or by running
// the network on a private copy. It counts the updates it performs.
type evaluator struct {
	net     network.Network
	space   statespace.Space
	trans   [][]int
	updates int
}

func newEvaluator(net network.Network, transitions [][]int) *evaluator {
	return &evaluator{net: net, space: net.Space(), trans: transitions}
}

// next returns the successor of state. The result must not be modified: it
// may be a row of the shared transition table.
func (p *evaluator) next(state []int) []int {
	if p.trans != nil {
		return p.trans[p.space.UnsafeEncode(state)]
	}
	p.updates++
	return p.net.UnsafeUpdate(slices.Clone(state))
}

// difference adds weight to every entry (i, j) of dst where flipping node j
// of state changes node i's successor.
func (p *evaluator) difference(dst *mat.Dense, state []int, weight float64) {
	base := p.next(state)
	neighbor := slices.Clone(state)
	for j := range neighbor {
		neighbor[j] ^= 1
		image := p.next(neighbor)
		for i := range base {
			if image[i] != base[i] {
				dst.Set(i, j, dst.At(i, j)+weight)
			}
		}
		neighbor[j] ^= 1
	}
}
