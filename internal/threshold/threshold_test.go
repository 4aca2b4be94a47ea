package threshold

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
	"github.com/nvandessel/boolnet/internal/sensitivity"
)

func TestTheta_Apply(t *testing.T) {
	inputs := []float64{1, -1, 0}
	tests := []struct {
		theta   Theta
		current []int
		want    []int
	}{
		{ThetaSplit, []int{0, 0, 0}, []int{1, 0, 0}},
		{ThetaSplit, []int{1, 1, 1}, []int{1, 0, 1}},
		{ThetaNegative, []int{0, 0, 0}, []int{1, 0, 0}},
		{ThetaNegative, []int{1, 1, 1}, []int{1, 0, 0}},
		{ThetaPositive, []int{0, 0, 0}, []int{1, 0, 1}},
		{ThetaPositive, []int{1, 1, 1}, []int{1, 0, 1}},
	}
	for _, tt := range tests {
		got := make([]int, len(inputs))
		for i, x := range inputs {
			got[i] = tt.theta.Apply(x, tt.current[i])
		}
		assert.Equal(t, tt.want, got, "%s from %v", tt.theta, tt.current)
	}
}

func TestParseTheta(t *testing.T) {
	th, err := ParseTheta("")
	require.NoError(t, err)
	assert.Equal(t, ThetaSplit, th)

	th, err = ParseTheta("negative")
	require.NoError(t, err)
	assert.Equal(t, ThetaNegative, th)

	_, err = ParseTheta("sigmoid")
	assert.ErrorIs(t, err, neterr.ErrConfiguration)
}

func TestNew(t *testing.T) {
	net, err := New([][]float64{{1, 0}, {1, 1}}, []float64{0.5, -0.5}, WithNames("a", "b"))
	require.NoError(t, err)

	assert.Equal(t, 2, net.Size())
	assert.Equal(t, ThetaSplit, net.Theta())
	assert.Equal(t, []string{"a", "b"}, net.Names())
	assert.Equal(t, [][]float64{{1, 0}, {1, 1}}, net.Weights())
	assert.Equal(t, []float64{0.5, -0.5}, net.Thresholds())

	zero, err := New([][]float64{{1, 0}, {1, 1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, zero.Thresholds())
}

func TestNew_CopiesInputs(t *testing.T) {
	weights := [][]float64{{1, 0}, {1, 1}}
	thresholds := []float64{0.5, -0.5}
	net, err := New(weights, thresholds)
	require.NoError(t, err)

	weights[0][0] = 9
	thresholds[0] = 9
	assert.Equal(t, [][]float64{{1, 0}, {1, 1}}, net.Weights())
	assert.Equal(t, []float64{0.5, -0.5}, net.Thresholds())
}

func TestNew_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name       string
		weights    [][]float64
		thresholds []float64
		opts       []Option
	}{
		{"empty", nil, nil, nil},
		{"not square", [][]float64{{1, 0}, {1}}, nil, nil},
		{"wide rows", [][]float64{{1, 0, 1}, {1, 1, 0}}, nil, nil},
		{"threshold count", [][]float64{{1}}, []float64{0, 1}, nil},
		{"nan weight", [][]float64{{math.NaN()}}, nil, nil},
		{"infinite threshold", [][]float64{{1}}, []float64{math.Inf(1)}, nil},
		{"name count", [][]float64{{1}}, nil, []Option{WithNames("a", "b")}},
		{"unknown theta", [][]float64{{1}}, nil, []Option{WithTheta("step")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.weights, tt.thresholds, tt.opts...)
			assert.ErrorIs(t, err, neterr.ErrConfiguration)
		})
	}
}

func TestUpdate_ShiftedThresholds(t *testing.T) {
	net, err := New([][]float64{{1, 0}, {1, 1}}, []float64{0.5, -0.5})
	require.NoError(t, err)

	tests := map[string][2][]int{
		"00": {{0, 0}, {0, 1}},
		"10": {{1, 0}, {1, 1}},
		"01": {{0, 1}, {0, 1}},
		"11": {{1, 1}, {1, 1}},
	}
	for name, tt := range tests {
		state := slices.Clone(tt[0])
		got, err := net.Update(state)
		require.NoError(t, err)
		assert.Equal(t, tt[1], got, name)
		assert.Equal(t, tt[1], state, "%s: updates in place", name)
	}
}

func TestUpdate_ThetaAtZero(t *testing.T) {
	weights := [][]float64{{0, -1}, {1, 0}}
	tests := []struct {
		theta Theta
		from  []int
		want  []int
	}{
		{ThetaSplit, []int{1, 0}, []int{1, 1}},
		{ThetaNegative, []int{1, 0}, []int{0, 1}},
		{ThetaPositive, []int{1, 0}, []int{1, 1}},
		{ThetaSplit, []int{0, 1}, []int{0, 1}},
		{ThetaNegative, []int{0, 1}, []int{0, 0}},
		{ThetaPositive, []int{0, 0}, []int{1, 1}},
		{ThetaSplit, []int{1, 1}, []int{0, 1}},
	}
	for _, tt := range tests {
		net, err := New(weights, nil, WithTheta(tt.theta))
		require.NoError(t, err)
		got, err := net.Update(slices.Clone(tt.from))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s from %v", tt.theta, tt.from)
	}
}

func TestUpdate_IndexAndPin(t *testing.T) {
	net, err := New([][]float64{{0, -1}, {1, 0}}, nil)
	require.NoError(t, err)

	got, err := net.Update([]int{1, 1}, network.WithIndex(0))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)

	got, err = net.Update([]int{1, 0}, network.WithIndex(-1))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, got)

	got, err = net.Update([]int{1, 1}, network.WithPin(0))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, got)

	_, err = net.Update([]int{1, 2})
	assert.ErrorIs(t, err, neterr.ErrValidation)
	_, err = net.Update([]int{1, 0}, network.WithIndex(0), network.WithPin(1))
	assert.ErrorIs(t, err, neterr.ErrValidation)
}

func TestUpdateNode_MatchesFullUpdate(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for range 20 {
		net := randomNetwork(t, rng, 5)
		for state := range net.Space().States() {
			full := net.UnsafeUpdate(slices.Clone(state))
			for i := range net.Size() {
				single := net.UnsafeUpdateNode(slices.Clone(state), i)
				assert.Equal(t, full[i], single[i], "node %d of %v", i, state)
			}
		}
	}
}

func TestNeighbors(t *testing.T) {
	weights := [][]float64{{0, -1}, {1, 0}}

	split, err := New(weights, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, split.NeighborsIn(0))
	assert.Equal(t, []int{0, 1}, split.NeighborsOut(1))

	negative, err := New(weights, nil, WithTheta(ThetaNegative))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, negative.NeighborsIn(0))
	assert.Equal(t, []int{0}, negative.NeighborsIn(1))
	assert.Equal(t, []int{1}, negative.NeighborsOut(0))
}

// randomNetwork draws weights from {-1, 0, 1}, thresholds from
// {-0.5, 0, 0.5} and a random threshold function.
func randomNetwork(t *testing.T, rng *rand.Rand, maxSize int) *Network {
	t.Helper()
	n := 1 + rng.IntN(maxSize)
	weights := make([][]float64, n)
	thresholds := make([]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
		for j := range weights[i] {
			weights[i][j] = float64(rng.IntN(3) - 1)
		}
		thresholds[i] = float64(rng.IntN(3)-1) / 2
	}
	thetas := []Theta{ThetaSplit, ThetaNegative, ThetaPositive}
	net, err := New(weights, thresholds, WithTheta(thetas[rng.IntN(len(thetas))]))
	require.NoError(t, err)
	return net
}

func TestSensitivity_SparseMatchesEnsemble(t *testing.T) {
	ctx := context.Background()
	engine := sensitivity.NewEngine(sensitivity.DefaultConfig())
	rng := rand.New(rand.NewPCG(11, 11))

	for range 30 {
		net := randomNetwork(t, rng, 5)
		var states [][]int
		for s := range net.Space().States() {
			states = append(states, s)
		}

		sparse, err := engine.AverageDifferenceMatrix(ctx, net)
		require.NoError(t, err)
		explicit, err := engine.AverageDifferenceMatrix(ctx, net, sensitivity.WithStates(states...))
		require.NoError(t, err)
		assert.True(t, mat.EqualApprox(sparse, explicit, 1e-9), "theta %s weights %v", net.Theta(), net.Weights())

		for _, e := range sensitivity.CanalizingEdges(net) {
			assert.Contains(t, net.NeighborsIn(e.Target), e.Source)
		}
	}
}

func TestRewire_Degree(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 13))
	for range 30 {
		net := randomNetwork(t, rng, 6)
		rewired, err := Rewire(net, rng, RewireDegree)
		require.NoError(t, err)

		before, after := net.Weights(), rewired.Weights()
		for i := range before {
			assert.Equal(t, before[i][i], after[i][i], "self-loop of %d", i)
			for _, w := range []float64{-1, 1} {
				assert.Equal(t, countRow(before, i, w), countRow(after, i, w), "row %d weight %g", i, w)
				assert.Equal(t, countCol(before, i, w), countCol(after, i, w), "column %d weight %g", i, w)
			}
		}
		assert.Equal(t, net.Thresholds(), rewired.Thresholds())
		assert.Equal(t, net.Theta(), rewired.Theta())
	}
}

func TestRewire_Size(t *testing.T) {
	rng := rand.New(rand.NewPCG(17, 17))
	for range 30 {
		net := randomNetwork(t, rng, 6)
		rewired, err := Rewire(net, rng, RewireSize)
		require.NoError(t, err)

		before, after := net.Weights(), rewired.Weights()
		var offBefore, offAfter []float64
		for i := range before {
			assert.Equal(t, before[i][i], after[i][i], "self-loop of %d", i)
			for j := range before {
				if i != j {
					offBefore = append(offBefore, before[i][j])
					offAfter = append(offAfter, after[i][j])
				}
			}
		}
		slices.Sort(offBefore)
		slices.Sort(offAfter)
		assert.Equal(t, offBefore, offAfter)
	}
}

func TestRewire_SeedAndErrors(t *testing.T) {
	net, err := New([][]float64{
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{1, 0, 0, 0},
	}, nil, WithNames("a", "b", "c", "d"))
	require.NoError(t, err)

	a, err := Rewire(net, rand.New(rand.NewPCG(1, 2)), RewireSize)
	require.NoError(t, err)
	b, err := Rewire(net, rand.New(rand.NewPCG(1, 2)), RewireSize)
	require.NoError(t, err)
	assert.Equal(t, a.Weights(), b.Weights())
	assert.Equal(t, []string{"a", "b", "c", "d"}, a.Names())

	_, err = Rewire(net, rand.New(rand.NewPCG(1, 2)), "scramble")
	assert.ErrorIs(t, err, neterr.ErrConfiguration)
	_, err = ParseRewiring("")
	assert.ErrorIs(t, err, neterr.ErrConfiguration)
}

func countRow(w [][]float64, i int, v float64) int {
	n := 0
	for _, x := range w[i] {
		if x == v {
			n++
		}
	}
	return n
}

func countCol(w [][]float64, j int, v float64) int {
	n := 0
	for i := range w {
		if w[i][j] == v {
			n++
		}
	}
	return n
}
