package main

import (
	"github.com/janpfeifer/qlearner/internal/games/tictactoe"
	"github.com/janpfeifer/qlearner/internal/qlearner"
	"github.com/janpfeifer/qlearner/internal/qtable"
	"github.com/janpfeifer/qlearner/internal/randomagent"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path"
	"testing"
)

func TestSeatBoard(t *testing.T) {
	game, err := tictactoe.FromString("XXX/OO./...")
	require.NoError(t, err)
	for seat := range 2 {
		board, err := seatBoard(game.TimeStep(), seat)
		require.NoError(t, err)
		assert.Equal(t, "    XXX\n    OO.\n    ...", board)
	}
	_, err = seatBoard(game.TimeStep(), 2)
	assert.ErrorIs(t, err, rl.ErrInvalidObservation)
}

func TestTrajectoryBoards(t *testing.T) {
	game := tictactoe.New()
	trajectory := []*rl.TimeStep{game.TimeStep()}
	for _, action := range []int{4, 0} {
		ts, err := game.Step(action)
		require.NoError(t, err)
		trajectory = append(trajectory, ts)
	}
	boards, err := trajectoryBoards(trajectory, 1)
	require.NoError(t, err)
	want := "    Step 0:\n    ...\n    ...\n    ...\n\n" +
		"    Step 1:\n    ...\n    .X.\n    ...\n\n" +
		"    Step 2:\n    O..\n    .X.\n    ..."
	assert.Equal(t, want, boards)

	trajectory[1].InfoStates = nil
	_, err = trajectoryBoards(trajectory, 1)
	assert.ErrorIs(t, err, rl.ErrInvalidObservation)
}

func TestSaveTables(t *testing.T) {
	agent, err := qlearner.New(qlearner.NewConfig(0, tictactoe.NumPlayers, tictactoe.NumCells))
	require.NoError(t, err)
	_, err = agent.Step(tictactoe.New().TimeStep(), rl.StepOptions{})
	require.NoError(t, err)
	random, err := randomagent.New(1, tictactoe.NumCells, 1)
	require.NoError(t, err)

	prefix := path.Join(t.TempDir(), "ttt")
	*flagSave = prefix
	require.NoError(t, saveTables([]rl.Agent{agent, random}))
	table, err := qtable.LoadFromFile(tableFileName(prefix, 0))
	require.NoError(t, err)
	assert.Equal(t, agent.Table().Len(), table.Len())
	assert.Equal(t, prefix+"_1.qtable", tableFileName(prefix, 1))
}
