package shaping

import (
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

// ticTacToeObs builds an observation from a board string of 'x', 'o' and '.'.
func ticTacToeObs(board string) []float32 {
	obs := make([]float32, 27)
	for ii, r := range board {
		switch r {
		case 'x':
			obs[9+ii] = 1
		case 'o':
			obs[18+ii] = 1
		default:
			obs[ii] = 1
		}
	}
	return obs
}

func TestLayoutBoard(t *testing.T) {
	obs := ticTacToeObs("x.o" + ".x." + "..o")
	board, err := TicTacToeLayout.Board(obs, 0)
	require.NoError(t, err)
	assert.Equal(t, "+.-.+...-", BoardString(board))
	board, err = TicTacToeLayout.Board(obs, 1)
	require.NoError(t, err)
	assert.Equal(t, "-.+.-...+", BoardString(board))

	_, err = TicTacToeLayout.Board(obs[:20], 0)
	assert.True(t, errors.Is(err, rl.ErrInvalidObservation))
	_, err = TicTacToeLayout.Board(obs, 2)
	assert.True(t, errors.Is(err, rl.ErrInvalidObservation))
}

func TestRules(t *testing.T) {
	likeable := ".x." + "x.x" + "..."
	obs := ticTacToeObs(likeable)
	board, err := TicTacToeLayout.Board(obs, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(LikeableBonus), LikeablePattern(board))

	// Opponent pieces don't matter for the OwnPattern.
	board, err = TicTacToeLayout.Board(ticTacToeObs(".x."+"xox"+"o.."), 0)
	require.NoError(t, err)
	assert.Equal(t, float32(LikeableBonus), LikeablePattern(board))
	assert.Equal(t, float32(0), Pattern(board[:0], 1)(board))

	// But they do for Pattern.
	exact := Pattern([]Cell{Empty, Own, Empty, Own, Empty, Own, Empty, Empty, Empty}, 5)
	assert.Equal(t, float32(0), exact(board))
	board, err = TicTacToeLayout.Board(obs, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(5), exact(board))

	// An extra piece breaks the pattern.
	board, err = TicTacToeLayout.Board(ticTacToeObs(".x."+"x.x"+"x.."), 0)
	require.NoError(t, err)
	assert.Equal(t, float32(0), LikeablePattern(board))

	_, err = ParseOwnMask("01a")
	assert.Error(t, err)
}

func TestShaperReward(t *testing.T) {
	obs := ticTacToeObs(".x." + "x.x" + "...")
	ts := &rl.TimeStep{InfoStates: [][]float32{obs, obs}}
	constant := func(board []Cell) float32 { return 0.5 }
	shaper := &Shaper{Layout: TicTacToeLayout, Rules: []Rule{LikeablePattern, constant}}

	// Absent rewards count as 0, shaping still applies.
	reward, err := shaper.Reward(ts, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1000.5), reward)
	reward, err = shaper.Reward(ts, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), reward)

	ts.Rewards = []float32{1, -1}
	reward, err = shaper.Reward(ts, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(-0.5), reward)

	// No rules: only the environment reward.
	var noShaping *Shaper
	reward, err = noShaping.Reward(ts, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1), reward)

	ts.Rewards = []float32{1}
	_, err = shaper.Reward(ts, 1)
	assert.True(t, errors.Is(err, rl.ErrInvalidObservation))

	rules, err := ParseRules("likeable")
	require.NoError(t, err)
	assert.Len(t, rules, 1)
	_, err = ParseRules("likeable+unknown")
	assert.Error(t, err)
}
