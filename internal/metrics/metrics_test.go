package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/boolnet/internal/automata"
	"github.com/nvandessel/boolnet/internal/sensitivity"
)

func TestRecorder_Counts(t *testing.T) {
	r, err := NewRecorder(nil)
	require.NoError(t, err)

	r.ObserveAnalysis("lambda_q", 20*time.Millisecond)
	r.ObserveAnalysis("lambda_q", 30*time.Millisecond)
	r.AddUpdates("lambda_q", 12)
	r.AddUpdates("lambda_q", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues("lambda_q")))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.updates.WithLabelValues("lambda_q")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_WiredIntoEngine(t *testing.T) {
	r, err := NewRecorder(nil)
	require.NoError(t, err)
	eng := sensitivity.NewEngine(sensitivity.DefaultConfig(), sensitivity.WithRecorder(r))

	net, err := automata.NewRewired(30, automata.WithSize(4))
	require.NoError(t, err)
	_, err = eng.LambdaQ(context.Background(), net)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues(sensitivity.AnalysisLambdaQ)))
	// Four nodes with three inputs each: 4 * 3 * 2^2 assignments, two updates each.
	assert.Equal(t, 96.0, testutil.ToFloat64(r.updates.WithLabelValues(sensitivity.AnalysisLambdaQ)))
}

func TestNewRecorder_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)
	assert.Same(t, reg, r.Registry())

	_, err = NewRecorder(reg)
	assert.Error(t, err, "collectors are already registered")
}

func TestWriteTextfile(t *testing.T) {
	r, err := NewRecorder(nil)
	require.NoError(t, err)
	r.ObserveAnalysis("report", time.Second)

	path := filepath.Join(t.TempDir(), "boolnet.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `boolnet_analysis_runs_total{analysis="report"} 1`)
	assert.Contains(t, text, "boolnet_analysis_duration_seconds_bucket")
}
