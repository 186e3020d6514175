package cli

import (
	"bytes"
	"github.com/janpfeifer/qlearner/internal/games/tictactoe"
	"github.com/janpfeifer/qlearner/internal/qlearner"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"strings"
	"testing"
)

func TestPrettyBoard(t *testing.T) {
	game, err := tictactoe.FromString("X.O/.X./...")
	require.NoError(t, err)
	ui := NewWithIO(strings.NewReader(""), io.Discard, false)
	assert.Equal(t, "X | 2 | O\n4 | X | 6\n7 | 8 | 9", ui.PrettyBoard(game.Board()))
}

func TestReadAction(t *testing.T) {
	var out bytes.Buffer
	ui := NewWithIO(strings.NewReader("foo\n1\n 3 \n"), &out, false)
	action, err := ui.ReadAction(1, []int{1, 2, 5})
	require.NoError(t, err)
	assert.Equal(t, 2, action)
	assert.Contains(t, out.String(), `Failed to parse your input "foo"`)
	assert.Contains(t, out.String(), "Cell 1 is not available")

	// Last line without a newline is still accepted.
	ui = NewWithIO(strings.NewReader("6"), &out, false)
	action, err = ui.ReadAction(0, []int{5})
	require.NoError(t, err)
	assert.Equal(t, 5, action)

	ui = NewWithIO(strings.NewReader("1\n"), &out, false)
	_, err = ui.ReadAction(0, []int{5})
	assert.ErrorIs(t, err, io.EOF)
}

func TestPrintProbabilities(t *testing.T) {
	var out bytes.Buffer
	ui := NewWithIO(strings.NewReader(""), &out, false)
	ui.PrintProbabilities([]float32{0.5, 0, 0, 0, 0.25, 0, 0, 0, 0.25})
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, " 50.0%   0.0%   0.0%", lines[0])
	assert.Equal(t, "  0.0%   0.0%  25.0%", lines[2])
}

func newAgents(t *testing.T) []rl.Agent {
	agents := make([]rl.Agent, tictactoe.NumPlayers)
	for playerID := range agents {
		agent, err := qlearner.New(qlearner.NewConfig(playerID, tictactoe.NumPlayers, tictactoe.NumCells))
		require.NoError(t, err)
		agents[playerID] = agent
	}
	return agents
}

func TestPlay(t *testing.T) {
	// Agents with an empty table play (and suggest) the first legal cell.
	agents := newAgents(t)
	var out bytes.Buffer
	ui := NewWithIO(strings.NewReader("5\nabc\n1\n3\n7\n"), &out, false)
	_, err := ui.Play(agents[:1], 1)
	assert.Error(t, err)
	_, err = ui.Play(agents, 2)
	assert.Error(t, err)

	// X: 0, O: 4, X: 1, O: 2, X: 3, O: 6 wins on the diagonal.
	winner, err := ui.Play(agents, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, winner)
	assert.Contains(t, out.String(), "O PLAYER WINS")
	assert.Contains(t, out.String(), "plays 4")
	// Suggestion for the human's first move, after X played cell 1.
	assert.Contains(t, out.String(), "Suggested by")
	assert.Contains(t, out.String(), "  0.0% 100.0%   0.0%")
	for _, agent := range agents {
		assert.Equal(t, 0, agent.(*qlearner.Agent).Table().Len())
	}
}

func TestPlayLoop(t *testing.T) {
	agents := newAgents(t)
	var out bytes.Buffer
	// Game 1, human plays O: X: 0, O: 4, X: 1, O: 2, X: 3, O: 6 wins.
	// Game 2, human plays X: X: 0, O: 1, X: 3, O: 2, X: 6 wins.
	// Game 3 is interrupted by the end of the input.
	ui := NewWithIO(strings.NewReader("5\n3\n7\n1\n4\n7\n"), &out, false)
	numGames, err := ui.PlayLoop(agents, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, numGames)
	assert.Contains(t, out.String(), "O PLAYER WINS")
	assert.Contains(t, out.String(), "X PLAYER WINS")
	assert.Contains(t, out.String(), "New game: you play X")
	assert.Contains(t, out.String(), "New game: you play O")
}
