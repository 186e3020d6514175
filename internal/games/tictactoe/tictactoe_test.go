package tictactoe

import (
	"fmt"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestGameWin(t *testing.T) {
	g := New()
	ts := g.Reset()
	assert.Nil(t, ts.Rewards)
	assert.Equal(t, 0, ts.CurrentPlayer)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, ts.LegalActions[0])
	assert.Empty(t, ts.LegalActions[1])
	assert.Len(t, ts.InfoStates, 2)
	assert.Len(t, ts.InfoStates[0], ObservationSize)

	var err error
	for _, action := range []int{0, 3, 1, 4} {
		ts, err = g.Step(action)
		require.NoError(t, err)
		assert.False(t, ts.Last)
		assert.Equal(t, []float32{0, 0}, ts.Rewards)
	}
	assert.Equal(t, "XX./OO./...", g.String())
	assert.Equal(t, []int{2, 5, 6, 7, 8}, ts.LegalActions[0])

	_, err = g.Step(0)
	require.Error(t, err)

	ts, err = g.Step(2)
	require.NoError(t, err)
	assert.True(t, ts.Last)
	assert.Equal(t, rl.TerminalPlayer, ts.CurrentPlayer)
	assert.Equal(t, []float32{1, -1}, ts.Rewards)
	assert.Equal(t, 0, g.Winner())
	assert.Empty(t, ts.LegalActions[0])
	assert.Empty(t, ts.LegalActions[1])

	_, err = g.Step(8)
	require.Error(t, err)
	assert.Equal(t, "XXX\nOO.\n...", fmt.Sprintf("%+v", g))
}

func TestGameDraw(t *testing.T) {
	g := New()
	var ts *rl.TimeStep
	var err error
	// X O X / X O O / O X X
	for _, action := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
		ts, err = g.Step(action)
		require.NoError(t, err)
	}
	assert.True(t, ts.Last)
	assert.Equal(t, []float32{0, 0}, ts.Rewards)
	assert.Equal(t, -1, g.Winner())
}

func TestObservation(t *testing.T) {
	g, err := FromString("X.O/.X./..O")
	require.NoError(t, err)
	assert.False(t, g.IsFinished())
	ts := g.TimeStep()
	assert.Equal(t, 0, ts.CurrentPlayer)
	obs := ts.InfoStates[0]
	for cell, mark := range g.Board() {
		for plane := range 3 {
			want := float32(0)
			if int(mark) == plane {
				want = 1
			}
			assert.Equal(t, want, obs[plane*NumCells+cell], "cell %d, plane %d", cell, plane)
		}
	}
	assert.Equal(t, ts.InfoStates[0], ts.InfoStates[1])

	g, err = FromString("XXX/OO./...")
	require.NoError(t, err)
	assert.True(t, g.IsFinished())
	assert.Equal(t, 0, g.Winner())

	for _, invalid := range []string{"XX./.../...", "X../...", "X?./.../..."} {
		_, err = FromString(invalid)
		assert.Error(t, err, invalid)
	}
}
