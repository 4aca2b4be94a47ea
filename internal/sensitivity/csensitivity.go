package sensitivity

import (
	"context"
	"iter"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
	"github.com/nvandessel/boolnet/internal/statespace"
)

// Combinations yields every size-c subset of [0, n) in lexicographic order.
// c == 0 yields the empty subset once; c outside [0, n] yields nothing.
// Each yielded slice is owned by the caller.
func Combinations(n, c int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if c < 0 || c > n {
			return
		}
		comb := make([]int, c)
		for i := range comb {
			comb[i] = i
		}
		for {
			if !yield(slices.Clone(comb)) {
				return
			}
			// Advance the rightmost position that still has room.
			i := c - 1
			for i >= 0 && comb[i] == n-c+i {
				i--
			}
			if i < 0 {
				return
			}
			comb[i]++
			for k := i + 1; k < c; k++ {
				comb[k] = comb[k-1] + 1
			}
		}
	}
}

// Binomial returns C(n, c) as a float64, or 0 when c is outside [0, n].
func Binomial(n, c int) float64 {
	if c < 0 || c > n {
		return 0
	}
	c = min(c, n-c)
	r := 1.0
	for k := 1; k <= c; k++ {
		r = r * float64(n-c+k) / float64(k)
	}
	return r
}

// CSensitivity counts the size-c subsets of nodes whose simultaneous flip
// changes the successor of state at all. The count lies in [0, C(N, c)].
func CSensitivity(net network.Network, state []int, c int, transitions [][]int) (int, error) {
	if err := checkArgs(net, state, transitions); err != nil {
		return 0, err
	}
	if err := checkSubsetSize(net, c); err != nil {
		return 0, err
	}
	return newEvaluator(net, transitions).cSensitivity(state, c), nil
}

func checkSubsetSize(net network.Network, c int) error {
	if c < 0 || c > net.Size() {
		return neterr.Validationf("subset size %d out of range [0, %d]", c, net.Size())
	}
	return nil
}

func (p *evaluator) cSensitivity(state []int, c int) int {
	base := p.next(state)
	flipped := slices.Clone(state)
	count := 0
	for subset := range Combinations(len(state), c) {
		for _, k := range subset {
			flipped[k] ^= 1
		}
		if statespace.Distance(p.next(flipped), base) > 0 {
			count++
		}
		for _, k := range subset {
			flipped[k] ^= 1
		}
	}
	return count
}

// AverageCSensitivity averages CSensitivity over an explicit ensemble
// (weighted when WithWeights is given) or over the whole state space.
// A result outside [0, C(N, c)] is reported as an invariant violation.
func (e *Engine) AverageCSensitivity(ctx context.Context, net network.Network, c int, opts ...Option) (float64, error) {
	start := time.Now()
	if err := checkSubsetSize(net, c); err != nil {
		return 0, err
	}
	// Without an explicit ensemble resolve falls back to the whole space.
	ens, err := e.resolve(ctx, net, newRequest(opts))
	if err != nil {
		return 0, err
	}

	parts := chunks(len(ens.states), e.config.Workers)
	sums := make([]float64, len(parts))
	updates := make([]int, len(parts))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)
	for k, part := range parts {
		g.Go(func() error {
			p := newEvaluator(net, ens.trans)
			for s := part[0]; s < part[1]; s++ {
				if (s-part[0])%cancelCheckInterval == 0 {
					if err := gCtx.Err(); err != nil {
						return err
					}
				}
				sums[k] += ens.weights[s] * float64(p.cSensitivity(ens.states[s], c))
			}
			updates[k] = p.updates
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	avg, total := 0.0, 0
	for k := range sums {
		avg += sums[k]
		total += updates[k]
	}

	bound := Binomial(net.Size(), c)
	if avg < -boundTolerance || avg > bound+boundTolerance {
		return 0, neterr.Invariantf("average %d-sensitivity %g outside [0, %g]", c, avg, bound)
	}
	e.observe(AnalysisAverageCSensitivity, start, total)
	return avg, nil
}

// boundTolerance absorbs rounding in the weighted sum.
const boundTolerance = 1e-9
