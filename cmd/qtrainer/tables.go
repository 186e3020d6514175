package main

import (
	"fmt"
	"github.com/janpfeifer/qlearner/internal/games/tictactoe"
	"github.com/janpfeifer/qlearner/internal/qlearner"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/janpfeifer/qlearner/internal/shaping"
	"github.com/pkg/errors"
	"strings"
)

// tableFileName returns the file name where player's table is saved.
func tableFileName(prefix string, playerID int) string {
	return fmt.Sprintf("%s_%d.qtable", prefix, playerID)
}

// saveTables of the Q-learning agents, to the files given by -save.
// Other agents are skipped.
func saveTables(agents []rl.Agent) error {
	for playerID, agent := range agents {
		qAgent, ok := agent.(*qlearner.Agent)
		if !ok {
			continue
		}
		fileName := tableFileName(*flagSave, playerID)
		if err := qAgent.Table().SaveToFile(fileName); err != nil {
			return errors.WithMessagef(err, "saving table of player %d", playerID)
		}
		fmt.Printf("Saved %s to %q\n", qAgent.Table(), fileName)
	}
	return nil
}

// trajectoryBoards renders every board of the trajectory, as seen by seat, separated by empty lines.
func trajectoryBoards(trajectory []*rl.TimeStep, seat int) (string, error) {
	boards := make([]string, 0, len(trajectory))
	for step, ts := range trajectory {
		board, err := seatBoard(ts, seat)
		if err != nil {
			return "", errors.WithMessagef(err, "step %d", step)
		}
		boards = append(boards, fmt.Sprintf("    Step %d:\n%s", step, board))
	}
	return strings.Join(boards, "\n\n"), nil
}

// seatBoard renders the board of a TimeStep in 3 lines, as seen by seat: its marks
// are rendered with its tic-tac-toe mark.
func seatBoard(ts *rl.TimeStep, seat int) (string, error) {
	if seat < 0 || seat >= len(ts.InfoStates) {
		return "", errors.Wrapf(rl.ErrInvalidObservation, "no observation for seat %d", seat)
	}
	cells, err := shaping.TicTacToeLayout.Board(ts.InfoStates[seat], seat)
	if err != nil {
		return "", err
	}
	own, opponent := tictactoe.MarkOf(seat), tictactoe.MarkOf(1-seat)
	var sb strings.Builder
	for ii, cell := range cells {
		if ii > 0 && ii%3 == 0 {
			sb.WriteString("\n")
		}
		if ii%3 == 0 {
			sb.WriteString("    ")
		}
		switch cell {
		case shaping.Own:
			sb.WriteString(own.String())
		case shaping.Opponent:
			sb.WriteString(opponent.String())
		default:
			sb.WriteString(tictactoe.NoMark.String())
		}
	}
	return sb.String(), nil
}
