package sensitivity

import (
	"context"
	"math/cmplx"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
)

// LambdaQ returns the spectral radius of AverageDifferenceMatrix: the
// largest eigenvalue magnitude. Values above 1 indicate that perturbations
// tend to grow.
func (e *Engine) LambdaQ(ctx context.Context, net network.Network, opts ...Option) (float64, error) {
	start := time.Now()
	q, updates, err := e.averageDifference(ctx, net, newRequest(opts))
	if err != nil {
		return 0, err
	}
	lambda, err := SpectralRadius(q)
	if err != nil {
		return 0, err
	}
	e.observe(AnalysisLambdaQ, start, updates)
	return lambda, nil
}

// SpectralRadius returns the largest eigenvalue magnitude of the square
// matrix q.
func SpectralRadius(q mat.Matrix) (float64, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(q, mat.EigenNone); !ok {
		return 0, neterr.Invariantf("eigendecomposition of the difference matrix did not converge")
	}
	radius := 0.0
	for _, v := range eig.Values(nil) {
		radius = max(radius, cmplx.Abs(v))
	}
	return radius, nil
}
