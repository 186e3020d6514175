// Package shaping implements reward shaping: extra rewards computed by scoring rules over a player's
// view of the board, added to the reward given by the environment.
package shaping

import (
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/pkg/errors"
	"strings"
)

// Cell of a board, from the point of view of one player.
type Cell int8

const (
	Opponent Cell = iota - 1
	Empty
	Own
)

// String returns a one letter representation of the cell.
func (c Cell) String() string {
	switch c {
	case Own:
		return "+"
	case Opponent:
		return "-"
	default:
		return "."
	}
}

// BoardString returns the cells as a string, e.g.: ".+.-.....".
func BoardString(board []Cell) string {
	var sb strings.Builder
	for _, cell := range board {
		sb.WriteString(cell.String())
	}
	return sb.String()
}

// Rule scores a board seen from one player's perspective.
type Rule func(board []Cell) float32

// Layout describes where in an observation vector each player's pieces are: observations are expected
// to hold one "occupancy plane" of NumCells values per player.
type Layout struct {
	NumCells int

	// PlayerPlanes[p] is the offset of player p's occupancy plane in the observation.
	PlayerPlanes []int
}

// TicTacToeLayout matches the tic-tac-toe observations: 3 planes of 9 cells, [empty | X | O].
var TicTacToeLayout = Layout{NumCells: 9, PlayerPlanes: []int{9, 18}}

// Board builds the board seen by playerID from an observation.
func (l Layout) Board(obs []float32, playerID int) ([]Cell, error) {
	if playerID < 0 || playerID >= len(l.PlayerPlanes) {
		return nil, errors.Wrapf(rl.ErrInvalidObservation, "shaping layout has %d players, player %d requested",
			len(l.PlayerPlanes), playerID)
	}
	for player, offset := range l.PlayerPlanes {
		if offset < 0 || offset+l.NumCells > len(obs) {
			return nil, errors.Wrapf(rl.ErrInvalidObservation,
				"observation of length %d too short for player %d's plane at [%d, %d)",
				len(obs), player, offset, offset+l.NumCells)
		}
	}
	board := make([]Cell, l.NumCells)
	for player, offset := range l.PlayerPlanes {
		for ii := range board {
			if obs[offset+ii] == 0 {
				continue
			}
			if player == playerID {
				board[ii] = Own
			} else if board[ii] == Empty {
				board[ii] = Opponent
			}
		}
	}
	return board, nil
}

// Shaper sums the rules over the board of a player.
type Shaper struct {
	Layout Layout
	Rules  []Rule
}

// Extra returns the sum of the rules over the board of playerID, built from its own observation.
// If there are no rules it returns 0, without looking at the observation.
func (s *Shaper) Extra(ts *rl.TimeStep, playerID int) (float32, error) {
	if s == nil || len(s.Rules) == 0 {
		return 0, nil
	}
	if playerID < 0 || playerID >= len(ts.InfoStates) {
		return 0, errors.Wrapf(rl.ErrInvalidObservation, "no observation for player %d", playerID)
	}
	board, err := s.Layout.Board(ts.InfoStates[playerID], playerID)
	if err != nil {
		return 0, err
	}
	var extra float32
	for _, rule := range s.Rules {
		extra += rule(board)
	}
	return extra, nil
}

// Reward returns the environment reward of playerID (0 if absent) plus the Extra shaped reward.
func (s *Shaper) Reward(ts *rl.TimeStep, playerID int) (float32, error) {
	reward, err := ts.Reward(playerID)
	if err != nil {
		return 0, err
	}
	extra, err := s.Extra(ts, playerID)
	if err != nil {
		return 0, err
	}
	return reward + extra, nil
}

// LayoutsByName maps layout names accepted in configuration strings to layouts.
var LayoutsByName = map[string]Layout{
	"tictactoe": TicTacToeLayout,
}
