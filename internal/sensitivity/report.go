package sensitivity

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/nvandessel/boolnet/internal/network"
)

// Mode names how an averaged difference matrix was computed.
type Mode string

const (
	ModeSparse   Mode = "sparse"   // Exact, from each node's inputs
	ModeEnsemble Mode = "ensemble" // Averaged over explicit states
)

// Summary is the result of Report.
type Summary struct {
	Size               int            `json:"size"`
	Mode               Mode           `json:"mode"`
	Matrix             [][]float64    `json:"matrix"`
	AverageSensitivity float64        `json:"average_sensitivity"`
	LambdaQ            float64        `json:"lambda_q"`
	CanalizingEdges    []network.Edge `json:"canalizing_edges"`
	CanalizingNodes    []int          `json:"canalizing_nodes"`
}

// Report computes the averaged difference matrix once and derives every
// aggregate measure from it, together with the canalizing structure.
func (e *Engine) Report(ctx context.Context, net network.Network, opts ...Option) (Summary, error) {
	start := time.Now()
	r := newRequest(opts)
	q, updates, err := e.averageDifference(ctx, net, r)
	if err != nil {
		return Summary{}, err
	}
	lambda, err := SpectralRadius(q)
	if err != nil {
		return Summary{}, err
	}
	edges := CanalizingEdges(net)

	mode := ModeSparse
	if r.explicit() {
		mode = ModeEnsemble
	}
	summary := Summary{
		Size:               net.Size(),
		Mode:               mode,
		Matrix:             Rows(q),
		AverageSensitivity: mat.Sum(q) / float64(net.Size()),
		LambdaQ:            lambda,
		CanalizingEdges:    edges,
		CanalizingNodes:    nodesOf(edges),
	}
	e.observe(AnalysisReport, start, updates)
	return summary, nil
}

// Rows copies a matrix into a slice of rows.
func Rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}
