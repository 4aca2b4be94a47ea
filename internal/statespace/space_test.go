package statespace

import (
	"slices"
	"testing"

	"github.com/nvandessel/boolnet/internal/neterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidSize(t *testing.T) {
	for _, size := range []int{-1, 0, MaxSize + 1} {
		_, err := New(size)
		assert.ErrorIs(t, err, neterr.ErrConfiguration, "size %d", size)
	}
}

func TestStates_Order(t *testing.T) {
	space, err := New(3)
	require.NoError(t, err)

	got := slices.Collect(space.States())
	want := [][]int{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 8, space.Volume())
}

func TestStates_EarlyStop(t *testing.T) {
	space, err := New(4)
	require.NoError(t, err)

	n := 0
	for range space.States() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestEncodeDecode_Bijection(t *testing.T) {
	space, err := New(5)
	require.NoError(t, err)

	for code := 0; code < space.Volume(); code++ {
		state := space.Decode(code)
		got, err := space.Encode(state)
		require.NoError(t, err)
		assert.Equal(t, code, got)
	}
}

func TestEncode_LittleEndian(t *testing.T) {
	space, err := New(3)
	require.NoError(t, err)

	code, err := space.Encode([]int{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	code, err = space.Encode([]int{0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 4, code)
}

func TestCheck(t *testing.T) {
	space, err := New(3)
	require.NoError(t, err)

	tests := []struct {
		name  string
		state []int
		ok    bool
	}{
		{"valid", []int{0, 1, 1}, true},
		{"too short", []int{0, 1}, false},
		{"too long", []int{0, 1, 1, 0}, false},
		{"non-binary", []int{0, 2, 1}, false},
		{"negative", []int{0, -1, 1}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, space.Contains(tt.state))
			err := space.Check(tt.state)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, neterr.ErrValidation)
			}
		})
	}
}

func TestSubspace(t *testing.T) {
	space, err := New(4)
	require.NoError(t, err)

	base := []int{1, 0, 1, 0}
	got := slices.Collect(space.Subspace([]int{1, 3}, base))
	want := [][]int{
		{1, 0, 1, 0},
		{1, 1, 1, 0},
		{1, 0, 1, 1},
		{1, 1, 1, 1},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []int{1, 0, 1, 0}, base, "base must not be mutated")
}

func TestSubspace_NoIndices(t *testing.T) {
	space, err := New(2)
	require.NoError(t, err)

	got := slices.Collect(space.Subspace(nil, []int{1, 0}))
	assert.Equal(t, [][]int{{1, 0}}, got)
}

func TestSubspace_YieldsOwnedSlices(t *testing.T) {
	space, err := New(2)
	require.NoError(t, err)

	var states [][]int
	for s := range space.Subspace([]int{0}, []int{0, 0}) {
		s[1] = 1
		states = append(states, s)
	}
	assert.Equal(t, [][]int{{0, 1}, {1, 1}}, states)
}

func TestHammingNeighbors(t *testing.T) {
	state := []int{0, 0, 1}
	got := HammingNeighbors(state)
	want := [][]int{
		{1, 0, 1},
		{0, 1, 1},
		{0, 0, 0},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []int{0, 0, 1}, state)

	for _, n := range got {
		assert.Equal(t, 1, Distance(state, n))
	}
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0, Distance([]int{1, 0, 1}, []int{1, 0, 1}))
	assert.Equal(t, 2, Distance([]int{1, 0, 1}, []int{0, 0, 0}))
	assert.Equal(t, 3, Distance([]int{1, 1, 1}, []int{0, 0, 0}))
}
