// Package sensitivity measures how perturbations of a network's state
// propagate through one update step: per-state sensitivity and difference
// matrices, canalizing edges, the averaged difference matrix and its
// spectral radius, and generalized c-sensitivity.
//
// Per-state analyses are free functions. Ensemble analyses run on an Engine,
// which carries the tuning knobs (parallelism, transition precomputation,
// exhaustive-enumeration limit) but holds no mutable state between calls.
package sensitivity

import (
	"context"
	"runtime"
	"time"

	"github.com/nvandessel/boolnet/internal/landscape"
	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
)

// Analysis names reported to a Recorder.
const (
	AnalysisAverageDifferenceMatrix = "average_difference_matrix"
	AnalysisAverageSensitivity      = "average_sensitivity"
	AnalysisLambdaQ                 = "lambda_q"
	AnalysisAverageCSensitivity     = "average_c_sensitivity"
	AnalysisReport                  = "report"
)

// Config holds tunable parameters for the analysis engine.
type Config struct {
	// Workers bounds the goroutines used by ensemble analyses. Values
	// below 1 mean GOMAXPROCS.
	Workers int

	// PrecomputeTransitions builds the full transition table once before
	// walking an explicit ensemble. Skipped silently for networks larger
	// than MaxExhaustiveSize unless requested per call.
	PrecomputeTransitions bool

	// MaxExhaustiveSize is the largest network whose full state space may be
	// enumerated. Default: 20.
	MaxExhaustiveSize int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Workers:               runtime.GOMAXPROCS(0),
		PrecomputeTransitions: true,
		MaxExhaustiveSize:     landscape.DefaultMaxSize,
	}
}

// Recorder receives measurements from the engine.
type Recorder interface {
	// ObserveAnalysis records one completed analysis and its wall time.
	ObserveAnalysis(analysis string, elapsed time.Duration)

	// AddUpdates records how many node or network updates an analysis ran.
	AddUpdates(analysis string, n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAnalysis(string, time.Duration) {}
func (nopRecorder) AddUpdates(string, int)                {}

// EngineOption configures NewEngine.
type EngineOption func(*Engine)

// WithRecorder sends engine measurements to r.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// Engine runs ensemble analyses over any network.Network. It never mutates
// the networks it is given and is safe for concurrent use.
type Engine struct {
	config   Config
	recorder Recorder
}

// NewEngine creates an analysis engine.
func NewEngine(config Config, opts ...EngineOption) *Engine {
	if config.Workers < 1 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.MaxExhaustiveSize < 1 {
		config.MaxExhaustiveSize = landscape.DefaultMaxSize
	}
	e := &Engine{config: config, recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine configuration after defaults were applied.
func (e *Engine) Config() Config { return e.config }

// Option selects the state ensemble of an analysis.
type Option func(*request)

type request struct {
	states     [][]int
	hasStates  bool
	weights    []float64
	hasWeights bool
	trans      *bool
}

// WithStates averages over the given states instead of the whole space.
func WithStates(states ...[]int) Option {
	return func(r *request) {
		r.states = states
		r.hasStates = true
	}
}

// WithWeights weights each state of the ensemble. Without WithStates the
// ensemble is the whole state space in encoding order.
func WithWeights(weights ...float64) Option {
	return func(r *request) {
		r.weights = weights
		r.hasWeights = true
	}
}

// WithTransitionTable overrides Config.PrecomputeTransitions for one call.
func WithTransitionTable(enabled bool) Option {
	return func(r *request) {
		r.trans = &enabled
	}
}

// ensemble is a validated explicit ensemble. weights are already divided by
// their sum.
type ensemble struct {
	states  [][]int
	weights []float64
	trans   [][]int
}

// explicit reports whether the request names an explicit ensemble.
func (r *request) explicit() bool { return r.hasStates || r.hasWeights }

func newRequest(opts []Option) *request {
	r := &request{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// resolve validates an explicit ensemble before any bulk work runs.
func (e *Engine) resolve(ctx context.Context, net network.Network, r *request) (*ensemble, error) {
	space := net.Space()
	var states [][]int
	if r.hasStates {
		states = r.states
		for k, s := range states {
			if err := space.Check(s); err != nil {
				return nil, neterr.Validationf("ensemble state %d: %v", k, err)
			}
		}
	} else {
		if err := e.checkExhaustive(net); err != nil {
			return nil, err
		}
		states = make([][]int, 0, space.Volume())
		for s := range space.States() {
			states = append(states, s)
		}
	}

	weights := make([]float64, len(states))
	if r.hasWeights {
		if len(r.weights) != len(states) {
			return nil, neterr.Validationf("got %d weights for %d states", len(r.weights), len(states))
		}
		copy(weights, r.weights)
	} else {
		for k := range weights {
			weights[k] = 1
		}
	}
	var norm float64
	for k, w := range weights {
		if w < 0 {
			return nil, neterr.Validationf("weight %d is negative: %g", k, w)
		}
		norm += w
	}
	if norm <= 0 {
		return nil, neterr.Validationf("ensemble weights must sum to a positive value")
	}
	for k := range weights {
		weights[k] /= norm
	}

	trans, err := e.transitions(ctx, net, r)
	if err != nil {
		return nil, err
	}
	return &ensemble{states: states, weights: weights, trans: trans}, nil
}

// transitions builds the decoded transition table when the request or the
// configuration asks for one.
func (e *Engine) transitions(ctx context.Context, net network.Network, r *request) ([][]int, error) {
	enabled := e.config.PrecomputeTransitions
	if r.trans != nil {
		enabled = *r.trans
	}
	if !enabled {
		return nil, nil
	}
	if net.Size() > e.config.MaxExhaustiveSize {
		if r.trans != nil {
			return nil, e.checkExhaustive(net)
		}
		return nil, nil
	}
	return landscape.DecodedTransitions(ctx, net, landscape.WithMaxSize(e.config.MaxExhaustiveSize))
}

func (e *Engine) checkExhaustive(net network.Network) error {
	if net.Size() > e.config.MaxExhaustiveSize {
		return neterr.Validationf("network has %d nodes; enumerating its state space is limited to %d", net.Size(), e.config.MaxExhaustiveSize)
	}
	return nil
}

// chunks splits [0, n) into at most workers contiguous ranges.
func chunks(n, workers int) [][2]int {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	size := (n + workers - 1) / workers
	var out [][2]int
	for lo := 0; lo < n; lo += size {
		out = append(out, [2]int{lo, min(lo+size, n)})
	}
	return out
}

func (e *Engine) observe(analysis string, start time.Time, updates int) {
	e.recorder.AddUpdates(analysis, updates)
	e.recorder.ObserveAnalysis(analysis, time.Since(start))
}
