// Package tictactoe implements the game of tic-tac-toe as an rl.Environment.
//
// Observations are the same for both players: 27 values organized in 3 planes of 9 cells
// (row-major), with a 1 where the cell is [empty | X | O]. Player 0 plays X and starts.
package tictactoe

import (
	"fmt"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/pkg/errors"
	"strings"
)

// Mark in a cell of the board.
type Mark int8

const (
	NoMark Mark = iota
	X
	O
)

const (
	NumCells        = 9
	NumPlayers      = 2
	ObservationSize = 3 * NumCells
)

// String returns "X", "O" or ".".
func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "."
	}
}

// MarkOf returns the mark used by the player.
func MarkOf(player int) Mark { return Mark(player + 1) }

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // Rows.
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // Columns.
	{0, 4, 8}, {2, 4, 6}, // Diagonals.
}

// Game of tic-tac-toe. It implements rl.Environment.
type Game struct {
	board    [NumCells]Mark
	current  int
	moves    int
	winner   int
	finished bool
}

var _ rl.Environment = (*Game)(nil)

// New creates a new game, ready to play.
func New() *Game {
	g := &Game{}
	g.Reset()
	return g
}

// NumPlayers implements rl.Environment.
func (g *Game) NumPlayers() int { return NumPlayers }

// NumActions implements rl.Environment: one action per cell.
func (g *Game) NumActions() int { return NumCells }

// ObservationSize implements rl.Environment.
func (g *Game) ObservationSize() int { return ObservationSize }

// Board returns a copy of the board.
func (g *Game) Board() [NumCells]Mark { return g.board }

// Winner returns the player who won, or -1 if the game is not finished or it was a draw.
func (g *Game) Winner() int { return g.winner }

// IsFinished returns whether the game is over.
func (g *Game) IsFinished() bool { return g.finished }

// Reset implements rl.Environment.
func (g *Game) Reset() *rl.TimeStep {
	*g = Game{winner: -1}
	return g.timeStep(nil)
}

// Step implements rl.Environment: the current player marks the cell given by action.
func (g *Game) Step(action int) (*rl.TimeStep, error) {
	if g.finished {
		return nil, errors.New("tictactoe: game already finished")
	}
	if action < 0 || action >= NumCells || g.board[action] != NoMark {
		return nil, errors.Errorf("tictactoe: illegal action %d for player %d on board %s", action, g.current, g)
	}
	g.board[action] = MarkOf(g.current)
	g.moves++
	rewards := make([]float32, NumPlayers)
	if g.lineCompleted(MarkOf(g.current)) {
		g.finished = true
		g.winner = g.current
		rewards[g.current] = 1
		rewards[1-g.current] = -1
	} else if g.moves == NumCells {
		g.finished = true
	}
	g.current = 1 - g.current
	return g.timeStep(rewards), nil
}

func (g *Game) lineCompleted(mark Mark) bool {
	for _, line := range lines {
		if g.board[line[0]] == mark && g.board[line[1]] == mark && g.board[line[2]] == mark {
			return true
		}
	}
	return false
}

// Observation returns the current observation (the same for both players).
func (g *Game) Observation() []float32 {
	obs := make([]float32, ObservationSize)
	for cell, mark := range g.board {
		obs[int(mark)*NumCells+cell] = 1
	}
	return obs
}

// LegalActions returns the empty cells, in increasing order.
func (g *Game) LegalActions() []int {
	legal := make([]int, 0, NumCells)
	if g.finished {
		return legal
	}
	for cell, mark := range g.board {
		if mark == NoMark {
			legal = append(legal, cell)
		}
	}
	return legal
}

func (g *Game) timeStep(rewards []float32) *rl.TimeStep {
	obs := g.Observation()
	ts := &rl.TimeStep{
		InfoStates:    [][]float32{obs, append([]float32(nil), obs...)},
		LegalActions:  [][]int{{}, {}},
		CurrentPlayer: g.current,
		Rewards:       rewards,
		Last:          g.finished,
	}
	if g.finished {
		ts.CurrentPlayer = rl.TerminalPlayer
	} else {
		ts.LegalActions[g.current] = g.LegalActions()
	}
	return ts
}

// String returns the board as a single line, rows separated by "/", e.g.: "X.O/.X./..O".
func (g *Game) String() string {
	var sb strings.Builder
	for cell, mark := range g.board {
		if cell > 0 && cell%3 == 0 {
			sb.WriteString("/")
		}
		sb.WriteString(mark.String())
	}
	return sb.String()
}

// FromString creates a game from a board in the format of Game.String. The player to move is
// inferred from the number of marks, and it must be X's or O's turn accordingly.
func FromString(board string) (*Game, error) {
	g := New()
	cell := 0
	var counts [3]int
	for _, r := range board {
		if r == '/' {
			continue
		}
		if cell >= NumCells {
			return nil, errors.Errorf("tictactoe: board %q has too many cells", board)
		}
		switch r {
		case 'X', 'x':
			g.board[cell] = X
		case 'O', 'o':
			g.board[cell] = O
		case '.':
		default:
			return nil, errors.Errorf("tictactoe: invalid cell %q in board %q", r, board)
		}
		counts[g.board[cell]]++
		cell++
	}
	if cell != NumCells {
		return nil, errors.Errorf("tictactoe: board %q has %d cells, wanted %d", board, cell, NumCells)
	}
	if counts[X] != counts[O] && counts[X] != counts[O]+1 {
		return nil, errors.Errorf("tictactoe: board %q has %d X's and %d O's", board, counts[X], counts[O])
	}
	g.moves = counts[X] + counts[O]
	g.current = g.moves % 2
	for player := range NumPlayers {
		if g.lineCompleted(MarkOf(player)) {
			g.finished = true
			g.winner = player
		}
	}
	if g.moves == NumCells {
		g.finished = true
	}
	return g, nil
}

// TimeStep returns the TimeStep for the current position, with absent rewards.
func (g *Game) TimeStep() *rl.TimeStep { return g.timeStep(nil) }

// Format implements fmt.Formatter for the verb %v with the flag '+', printing the board in 3 lines.
func (g *Game) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('+') {
		s := g.String()
		_, _ = fmt.Fprint(f, strings.ReplaceAll(s, "/", "\n"))
		return
	}
	_, _ = fmt.Fprint(f, g.String())
}
