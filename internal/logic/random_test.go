package logic

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/boolnet/internal/neterr"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestRandom_FixedKeepsWiring(t *testing.T) {
	base, err := New(toyRows(), WithNames("osc", "and", "xor"))
	require.NoError(t, err)

	net, err := Random(base, seeded(1), ConnectionsFixed)
	require.NoError(t, err)
	assert.Equal(t, base.Names(), net.Names())
	for i := range net.Size() {
		assert.Equal(t, base.NeighborsIn(i), net.NeighborsIn(i), "node %d", i)
	}
}

func TestRandom_Bias(t *testing.T) {
	base, err := New(toyRows())
	require.NoError(t, err)

	always, err := Random(base, seeded(2), ConnectionsFixed, 1)
	require.NoError(t, err)
	for i, row := range always.Table() {
		assert.Len(t, row.Conditions, 1<<len(row.Inputs), "node %d", i)
	}
	state, err := always.Update([]int{0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, state)

	never, err := Random(base, seeded(2), ConnectionsFixed, 0, 0, 0)
	require.NoError(t, err)
	for _, row := range never.Table() {
		assert.Empty(t, row.Conditions)
	}
	state, err = never.Update([]int{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, state)
}

func TestRandom_ShuffledKeepsInDegree(t *testing.T) {
	rows := []Row{
		{Inputs: []int{4}, Conditions: []string{"1"}},
		{Inputs: []int{0, 1}, Conditions: []string{"11"}},
		{Inputs: []int{0, 2, 3}, Conditions: []string{"111"}},
		{Inputs: []int{0, 1, 2, 3}, Conditions: []string{"0000"}},
		{Inputs: []int{}, Conditions: []string{""}},
	}
	base, err := New(rows)
	require.NoError(t, err)

	rng := seeded(3)
	for range 20 {
		net, err := Random(base, rng, ConnectionsShuffled, 0.3)
		require.NoError(t, err)
		for i, row := range net.Table() {
			assert.Len(t, row.Inputs, len(rows[i].Inputs), "node %d", i)
			assert.True(t, slices.IsSorted(row.Inputs))
			assert.Len(t, slices.Compact(slices.Clone(row.Inputs)), len(row.Inputs), "inputs are distinct")
		}
	}
}

func TestRandom_FreeDrawsInDegree(t *testing.T) {
	base, err := New(toyRows())
	require.NoError(t, err)

	rng := seeded(4)
	degrees := map[int]bool{}
	for range 50 {
		net, err := Random(base, rng, ConnectionsFree)
		require.NoError(t, err)
		for i := range net.Size() {
			in := net.NeighborsIn(i)
			assert.GreaterOrEqual(t, len(in), 1)
			assert.LessOrEqual(t, len(in), 3)
			degrees[len(in)] = true
		}
	}
	assert.Len(t, degrees, 3, "every in-degree from 1 to N should appear")
}

func TestRandom_SameSeedSameNetwork(t *testing.T) {
	base, err := New(toyRows())
	require.NoError(t, err)

	a, err := Random(base, seeded(42), ConnectionsFree, 0.7)
	require.NoError(t, err)
	b, err := Random(base, seeded(42), ConnectionsFree, 0.7)
	require.NoError(t, err)
	assert.Equal(t, a.Table(), b.Table())
}

func TestRandom_ConfigurationErrors(t *testing.T) {
	base, err := New(toyRows())
	require.NoError(t, err)

	tests := []struct {
		name string
		conn Connections
		p    []float64
	}{
		{"unknown connections", Connections("rewired"), nil},
		{"wrong probability count", ConnectionsFixed, []float64{0.1, 0.2}},
		{"probability above one", ConnectionsFixed, []float64{1.5}},
		{"negative probability", ConnectionsFixed, []float64{0.5, -0.1, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Random(base, seeded(5), tt.conn, tt.p...)
			assert.ErrorIs(t, err, neterr.ErrConfiguration)
		})
	}
}

func TestParseConnections(t *testing.T) {
	c, err := ParseConnections("shuffled")
	require.NoError(t, err)
	assert.Equal(t, ConnectionsShuffled, c)

	_, err = ParseConnections("")
	assert.ErrorIs(t, err, neterr.ErrConfiguration)
}
