// Package rl defines the types shared between environments, agents and the control loops
// that drive them: the TimeStep observed at each decision point, the output of an agent's step,
// and the error kinds agents report.
package rl

import (
	"fmt"
	"github.com/pkg/errors"
)

// TerminalPlayer is the CurrentPlayer of a TimeStep at the end of an episode.
const TerminalPlayer = -1

var (
	// ErrInvalidObservation is returned (wrapped) when a TimeStep doesn't match the layout an agent
	// was configured with: wrong number of players, inconsistent observation lengths or out of range
	// legal actions.
	ErrInvalidObservation = errors.New("invalid observation")

	// ErrNoLegalActions is returned (wrapped) when an action is required but the acting player has
	// no legal actions.
	ErrNoLegalActions = errors.New("no legal actions")
)

// TimeStep is what an environment exposes at each decision point.
type TimeStep struct {
	// InfoStates holds one observation vector per player.
	InfoStates [][]float32

	// LegalActions holds the legal actions of each player. It is usually empty for the players
	// that are not to act.
	LegalActions [][]int

	// CurrentPlayer is the player to act, or TerminalPlayer if Last is set.
	CurrentPlayer int

	// Rewards per player. A nil value marks an absent reward (e.g. at the first step of an episode),
	// and it is treated as zero.
	Rewards []float32

	// Last is set at the terminal step of the episode.
	Last bool
}

// Reward returns the reward for the given player, or 0 if rewards are absent.
func (ts *TimeStep) Reward(playerID int) (float32, error) {
	if ts.Rewards == nil {
		return 0, nil
	}
	if playerID < 0 || playerID >= len(ts.Rewards) {
		return 0, errors.Wrapf(ErrInvalidObservation, "rewards for %d players, but player %d requested",
			len(ts.Rewards), playerID)
	}
	return ts.Rewards[playerID], nil
}

// Legal returns the legal actions for the given player.
func (ts *TimeStep) Legal(playerID int) ([]int, error) {
	if playerID < 0 || playerID >= len(ts.LegalActions) {
		return nil, errors.Wrapf(ErrInvalidObservation, "legal actions given for %d players, but player %d requested",
			len(ts.LegalActions), playerID)
	}
	return ts.LegalActions[playerID], nil
}

// StepOptions configure one call to Agent.Step.
type StepOptions struct {
	// Evaluation calls don't explore and never change the agent's learned state.
	Evaluation bool

	// Top1 makes the agent return the most likely action of its policy, instead of sampling it.
	Top1 bool
}

// StepOutput is the action chosen by an agent along with its policy probabilities over all actions.
type StepOutput struct {
	Action int
	Probs  []float32
}

// String implements fmt.Stringer.
func (o *StepOutput) String() string {
	if o == nil {
		return "<no action>"
	}
	return fmt.Sprintf("action=%d, probs=%v", o.Action, o.Probs)
}

// Agent is anything that can play (and possibly learn) in an Environment.
type Agent interface {
	// Step is called once per decision point: the agent returns its action if it's not a terminal TimeStep,
	// in which case it returns nil.
	//
	// Agents that learn do so between consecutive calls, and need to also be called at the terminal step
	// of each episode.
	Step(ts *TimeStep, opts StepOptions) (*StepOutput, error)

	// PlayerID the agent was created for.
	PlayerID() int

	String() string
}

// Environment is a turn-based game where agents take turns to act.
type Environment interface {
	// Reset starts a new episode and returns its first TimeStep.
	Reset() *TimeStep

	// Step applies the action of the current player and returns the next TimeStep.
	Step(action int) (*TimeStep, error)

	NumPlayers() int
	NumActions() int
	ObservationSize() int
}
