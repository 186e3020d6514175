// Package cli implements a command-line UI to play tic-tac-toe against a trained agent.
package cli

import (
	"bufio"
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"github.com/janpfeifer/qlearner/internal/games/tictactoe"
	"github.com/janpfeifer/qlearner/internal/generics"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/pkg/errors"
	"golang.org/x/term"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// displayWidth of s removes its color/control sequences and returns the length of what is left.
func displayWidth(s string) int {
	return len(ansiFilter.ReplaceAllString(s, ""))
}

// UI holds the input and output of the command-line interface.
type UI struct {
	color, clearScreen bool
	reader             *bufio.Reader
	out                io.Writer

	// terminalWidth returns the width used to center blocks, 0 if unknown.
	terminalWidth func() int
}

// New creates a UI reading from stdin and writing to stdout.
func New(color, clearScreen bool) *UI {
	ui := NewWithIO(os.Stdin, os.Stdout, color)
	ui.clearScreen = clearScreen
	ui.terminalWidth = func() int {
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			return 0
		}
		return width
	}
	return ui
}

// NewWithIO creates a UI reading from in and writing to out. Output is not centered.
func NewWithIO(in io.Reader, out io.Writer, color bool) *UI {
	return &UI{
		color:         color,
		reader:        bufio.NewReader(in),
		out:           out,
		terminalWidth: func() int { return 0 },
	}
}

func (ui *UI) printCentered(block string) {
	lines := strings.Split(block, "\n")
	blockWidth := 0
	for _, line := range lines {
		blockWidth = max(blockWidth, displayWidth(line))
	}
	indent := max((ui.terminalWidth()-blockWidth)/2, 0)
	for _, line := range lines {
		if len(line) == 0 {
			_, _ = fmt.Fprintln(ui.out)
			continue
		}
		_, _ = fmt.Fprintf(ui.out, "%s%s\n", strings.Repeat(" ", indent), line)
	}
}

var (
	markStyles = map[tictactoe.Mark]lipgloss.Style{
		tictactoe.X: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		tictactoe.O: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
	}
	emptyStyle = lipgloss.NewStyle().Faint(true)
	boardStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// PrettyBoard renders the board in 3 lines. Empty cells show the 1-based number used to play them.
func (ui *UI) PrettyBoard(board [tictactoe.NumCells]tictactoe.Mark) string {
	rows := make([]string, 0, 3)
	for row := range 3 {
		cells := make([]string, 0, 3)
		for col := range 3 {
			cell := 3*row + col
			mark := board[cell]
			var s string
			if mark == tictactoe.NoMark {
				s = strconv.Itoa(cell + 1)
				if ui.color {
					s = emptyStyle.Render(s)
				}
			} else {
				s = mark.String()
				if ui.color {
					s = markStyles[mark].Render(s)
				}
			}
			cells = append(cells, s)
		}
		rows = append(rows, strings.Join(cells, " | "))
	}
	grid := strings.Join(rows, "\n")
	if !ui.color {
		return grid
	}
	return boardStyle.Render(grid)
}

// PrintBoard prints the board centered.
func (ui *UI) PrintBoard(board [tictactoe.NumCells]tictactoe.Mark) {
	if ui.clearScreen {
		_, _ = fmt.Fprint(ui.out, "\033c")
	}
	_, _ = fmt.Fprintln(ui.out)
	ui.printCentered(ui.PrettyBoard(board))
	_, _ = fmt.Fprintln(ui.out)
}

// PrintProbabilities prints the probabilities of each cell in a 3x3 grid, in percent.
func (ui *UI) PrintProbabilities(probs []float32) {
	if len(probs) != tictactoe.NumCells {
		return
	}
	var sb strings.Builder
	for row := range 3 {
		for col := range 3 {
			if col > 0 {
				sb.WriteString(" ")
			}
			_, _ = fmt.Fprintf(&sb, "%5.1f%%", 100*probs[3*row+col])
		}
		if row < 2 {
			sb.WriteString("\n")
		}
	}
	ui.printCentered(sb.String())
}

// ReadAction reads the cell to play (1-based) from the input, until a legal one is given.
// It returns an error only if reading fails, e.g. with io.EOF.
func (ui *UI) ReadAction(player int, legal []int) (action int, err error) {
	legalSet := generics.SetWith(legal...)
	for {
		_, _ = fmt.Fprintf(ui.out, "    %s action (1-9) > ", tictactoe.MarkOf(player))
		var text string
		text, err = ui.reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if err != nil && (err != io.EOF || text == "") {
			return -1, err
		}
		cell, parseErr := strconv.Atoi(text)
		if parseErr != nil {
			_, _ = fmt.Fprintf(ui.out, "    * Failed to parse your input %q, please try again.\n", text)
			continue
		}
		action = cell - 1
		if !legalSet.Has(action) {
			_, _ = fmt.Fprintf(ui.out, "    * Cell %d is not available, please try again.\n", cell)
			continue
		}
		return action, nil
	}
}

// PrintResult prints the winner, or that it was a draw.
func (ui *UI) PrintResult(winner int) {
	style := lipgloss.NewStyle().Padding(1, 2)
	if ui.color {
		style = style.Background(lipgloss.Color("13")).Foreground(lipgloss.Color("0"))
	}
	var msg string
	if winner < 0 {
		msg = "*** DRAW! ***"
	} else {
		msg = fmt.Sprintf("*** %s PLAYER WINS!! ***", tictactoe.MarkOf(winner))
	}
	_, _ = fmt.Fprintln(ui.out)
	ui.printCentered(style.Render(msg))
	_, _ = fmt.Fprintln(ui.out)
}

// Play a game of tic-tac-toe between the human, reading actions from the input, and agents[1-humanPlayer].
// Before each human move, the probabilities suggested by agents[humanPlayer] are printed.
// Agents play in evaluation mode, so they don't learn from the game.
//
// It returns the winner of the game, or -1 for a draw.
func (ui *UI) Play(agents []rl.Agent, humanPlayer int) (winner int, err error) {
	if len(agents) != tictactoe.NumPlayers {
		return -1, errors.Errorf("tic-tac-toe requires %d agents, got %d", tictactoe.NumPlayers, len(agents))
	}
	if humanPlayer < 0 || humanPlayer >= tictactoe.NumPlayers {
		return -1, errors.Errorf("invalid human player %d", humanPlayer)
	}
	evalOpts := rl.StepOptions{Evaluation: true}
	game := tictactoe.New()
	ts := game.TimeStep()
	for !ts.Last {
		ui.PrintBoard(game.Board())
		var action int
		if ts.CurrentPlayer == humanPlayer {
			suggestion, err := agents[humanPlayer].Step(ts, evalOpts)
			if err != nil {
				return -1, err
			}
			_, _ = fmt.Fprintf(ui.out, "    Suggested by %s:\n", agents[humanPlayer])
			ui.PrintProbabilities(suggestion.Probs)
			action, err = ui.ReadAction(humanPlayer, ts.LegalActions[humanPlayer])
			if err != nil {
				return -1, err
			}
		} else {
			agent := agents[ts.CurrentPlayer]
			output, err := agent.Step(ts, evalOpts)
			if err != nil {
				return -1, err
			}
			action = output.Action
			_, _ = fmt.Fprintf(ui.out, "    %s plays %d\n", agent, action+1)
		}
		ts, err = game.Step(action)
		if err != nil {
			return -1, err
		}
	}
	ui.PrintBoard(game.Board())
	ui.PrintResult(game.Winner())
	return game.Winner(), nil
}

// PlayLoop plays games with Play until the input ends, switching the human's side after each game.
// It returns the number of games completed.
func (ui *UI) PlayLoop(agents []rl.Agent, humanPlayer int) (numGames int, err error) {
	for {
		_, err = ui.Play(agents, humanPlayer)
		if errors.Is(err, io.EOF) {
			_, _ = fmt.Fprintln(ui.out)
			return numGames, nil
		}
		if err != nil {
			return numGames, err
		}
		numGames++
		humanPlayer = 1 - humanPlayer
		_, _ = fmt.Fprintf(ui.out, "\n    New game: you play %s\n", tictactoe.MarkOf(humanPlayer))
	}
}
