package logic

import (
	"slices"
	"testing"

	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toyRows is a three-node network: a self-inverting oscillator, an AND of
// the first two nodes, and the parity of all three.
func toyRows() []Row {
	return []Row{
		{Inputs: []int{0}, Conditions: []string{"0"}},
		{Inputs: []int{0, 1}, Conditions: []string{"11"}},
		{Inputs: []int{0, 1, 2}, Conditions: []string{"100", "010", "001", "111"}},
	}
}

func TestNew(t *testing.T) {
	net, err := New(toyRows(), WithNames("osc", "and", "xor"))
	require.NoError(t, err)

	assert.Equal(t, 3, net.Size())
	assert.Equal(t, []string{"osc", "and", "xor"}, net.Names())
	assert.Equal(t, toyRows(), net.Table())
}

func TestNew_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
		opts []Option
	}{
		{"empty table", nil, nil},
		{"input out of range", []Row{{Inputs: []int{1}, Conditions: []string{"1"}}}, nil},
		{"negative input", []Row{{Inputs: []int{-1}, Conditions: []string{"1"}}}, nil},
		{"duplicate input", []Row{{Inputs: []int{0, 0}, Conditions: []string{"11"}}}, nil},
		{"short condition", []Row{{Inputs: []int{0}, Conditions: []string{""}}}, nil},
		{"long condition", []Row{{Inputs: []int{0}, Conditions: []string{"10"}}}, nil},
		{"bad character", []Row{{Inputs: []int{0}, Conditions: []string{"x"}}}, nil},
		{"name count", toyRows(), []Option{WithNames("a", "b")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows, tt.opts...)
			assert.ErrorIs(t, err, neterr.ErrConfiguration)
		})
	}
}

func TestUpdate(t *testing.T) {
	net, err := New(toyRows())
	require.NoError(t, err)

	tests := []struct {
		state []int
		want  []int
	}{
		{[]int{0, 0, 0}, []int{1, 0, 0}},
		{[]int{1, 1, 0}, []int{0, 1, 0}},
		{[]int{1, 0, 1}, []int{0, 0, 0}},
		{[]int{1, 1, 1}, []int{0, 1, 1}},
		{[]int{0, 0, 1}, []int{1, 0, 1}},
	}
	for _, tt := range tests {
		got, err := net.Update(slices.Clone(tt.state))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "state %v", tt.state)
	}
}

func TestUpdate_IndexAndPin(t *testing.T) {
	net, err := New(toyRows())
	require.NoError(t, err)

	got, err := net.Update([]int{0, 0, 0}, network.WithIndex(0))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0}, got)

	got, err = net.Update([]int{1, 1, 1}, network.WithIndex(-1))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, got)

	got, err = net.Update([]int{0, 0, 0}, network.WithPin(0))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, got)

	_, err = net.Update([]int{0, 0, 0}, network.WithIndex(0), network.WithPin(1))
	assert.ErrorIs(t, err, neterr.ErrValidation)

	_, err = net.Update([]int{0, 3, 0})
	assert.ErrorIs(t, err, neterr.ErrValidation)
}

func TestNeighbors(t *testing.T) {
	net, err := New([]Row{
		{Inputs: []int{2, 1}, Conditions: []string{"11"}},
		{Inputs: nil, Conditions: nil},
		{Inputs: []int{0}, Conditions: []string{"1"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, net.NeighborsIn(0))
	assert.Empty(t, net.NeighborsIn(1))
	assert.Equal(t, []int{0}, net.NeighborsIn(2))
	assert.Equal(t, []int{2}, net.NeighborsOut(0))
	assert.Equal(t, []int{0}, net.NeighborsOut(1))

	edges := network.Edges(net)
	assert.Equal(t, []network.Edge{
		{Target: 0, Source: 1},
		{Target: 0, Source: 2},
		{Target: 2, Source: 0},
	}, edges)
}

func TestUpdate_ConditionOrderFollowsInputs(t *testing.T) {
	// Inputs listed out of index order: "10" means node 2 is on, node 0 off.
	net, err := New([]Row{
		{Inputs: []int{2, 0}, Conditions: []string{"10"}},
		{Inputs: []int{1}, Conditions: []string{"1"}},
		{Inputs: []int{2}, Conditions: []string{"1"}},
	})
	require.NoError(t, err)

	got, err := net.Update([]int{0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, got[0])

	got, err = net.Update([]int{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, got[0])
}
