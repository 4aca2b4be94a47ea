package sensitivity

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/nvandessel/boolnet/internal/network"
)

// AverageDifferenceMatrix returns Q, where Q[i][j] is the probability that
// flipping node j changes node i's successor.
//
// With WithStates or WithWeights the difference matrix is averaged over the
// explicit ensemble, weighted and normalized by the weight sum. Otherwise Q
// is computed exactly from the network's wiring: for every edge j → i, the
// flip of j is tried under every assignment of i's other inputs. That costs
// Σ 2^indegree(i) node updates instead of 2^N full updates.
func (e *Engine) AverageDifferenceMatrix(ctx context.Context, net network.Network, opts ...Option) (*mat.Dense, error) {
	start := time.Now()
	q, updates, err := e.averageDifference(ctx, net, newRequest(opts))
	if err != nil {
		return nil, err
	}
	e.observe(AnalysisAverageDifferenceMatrix, start, updates)
	return q, nil
}

func (e *Engine) averageDifference(ctx context.Context, net network.Network, r *request) (*mat.Dense, int, error) {
	if r.explicit() {
		ens, err := e.resolve(ctx, net, r)
		if err != nil {
			return nil, 0, err
		}
		return e.ensembleDifference(ctx, net, ens)
	}
	return e.sparseDifference(ctx, net)
}

// ensembleDifference averages per-state difference matrices. Each chunk of
// states accumulates into its own matrix; the partials are summed in chunk
// order so the result does not depend on scheduling.
func (e *Engine) ensembleDifference(ctx context.Context, net network.Network, ens *ensemble) (*mat.Dense, int, error) {
	n := net.Size()
	parts := chunks(len(ens.states), e.config.Workers)
	partials := make([]*mat.Dense, len(parts))
	updates := make([]int, len(parts))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)
	for k, part := range parts {
		g.Go(func() error {
			q := mat.NewDense(n, n, nil)
			p := newEvaluator(net, ens.trans)
			for s := part[0]; s < part[1]; s++ {
				if (s-part[0])%cancelCheckInterval == 0 {
					if err := gCtx.Err(); err != nil {
						return err
					}
				}
				p.difference(q, ens.states[s], ens.weights[s])
			}
			partials[k] = q
			updates[k] = p.updates
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	q := mat.NewDense(n, n, nil)
	total := 0
	for k, part := range partials {
		q.Add(q, part)
		total += updates[k]
	}
	return q, total, nil
}

// sparseDifference computes Q row by row from each node's inputs. Rows are
// independent, so chunks of rows run in parallel and write disjoint rows.
func (e *Engine) sparseDifference(ctx context.Context, net network.Network) (*mat.Dense, int, error) {
	n := net.Size()
	parts := chunks(n, e.config.Workers)
	rows := make([][]float64, n)
	updates := make([]int, len(parts))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)
	for k, part := range parts {
		g.Go(func() error {
			for i := part[0]; i < part[1]; i++ {
				if err := gCtx.Err(); err != nil {
					return err
				}
				row, u := sparseRow(net, i)
				rows[i] = row
				updates[k] += u
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	q := mat.NewDense(n, n, nil)
	total := 0
	for i, row := range rows {
		q.SetRow(i, row)
	}
	for _, u := range updates {
		total += u
	}
	return q, total, nil
}

// sparseRow returns row i of Q and the number of node updates it took.
func sparseRow(net network.Network, i int) ([]float64, int) {
	n := net.Size()
	row := make([]float64, n)
	in := net.NeighborsIn(i)
	zero := make([]int, n)
	updates := 0

	for at, j := range in {
		others := slices.Delete(slices.Clone(in), at, at+1)
		changed, total := 0, 0
		for state := range net.Space().Subspace(others, zero) {
			held := state[i]
			state[j] = 0
			off := net.UnsafeUpdateNode(state, i)[i]
			state[i] = held
			state[j] = 1
			on := net.UnsafeUpdateNode(state, i)[i]
			if off != on {
				changed++
			}
			total++
			updates += 2
		}
		row[j] = float64(changed) / float64(total)
	}
	return row, updates
}

// AverageSensitivity returns the sum of the entries of
// AverageDifferenceMatrix divided by N.
func (e *Engine) AverageSensitivity(ctx context.Context, net network.Network, opts ...Option) (float64, error) {
	start := time.Now()
	q, updates, err := e.averageDifference(ctx, net, newRequest(opts))
	if err != nil {
		return 0, err
	}
	s := mat.Sum(q) / float64(net.Size())
	e.observe(AnalysisAverageSensitivity, start, updates)
	return s, nil
}

// cancelCheckInterval is how many states a worker processes between
// context checks.
const cancelCheckInterval = 1024
