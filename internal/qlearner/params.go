package qlearner

import (
	"github.com/janpfeifer/qlearner/internal/parameters"
	"github.com/janpfeifer/qlearner/internal/policy"
	"github.com/janpfeifer/qlearner/internal/qtable"
	"github.com/janpfeifer/qlearner/internal/schedule"
	"github.com/janpfeifer/qlearner/internal/shaping"
	"github.com/pkg/errors"
)

// NewFromParams creates an Agent configured from params. Parameters used are removed from params.
//
// Parameters:
//
//   - step_size (float): learning rate, default 0.1.
//   - epsilon (float): exploration probability (or temperature if softmax is set), default 0.2.
//   - epsilon_final (float) and epsilon_steps (int): if epsilon_steps > 0, the exploration decays linearly
//     from epsilon to epsilon_final in epsilon_steps updates.
//   - discount (float): discount factor in [0, 1], default 1.
//   - centralized (bool): build states from the observations of all players.
//   - softmax (bool): use a softmax selector instead of epsilon-greedy.
//   - seed (int): seed of the random number generator.
//   - shaping (string): "+" separated list of reward shaping rules, e.g. "likeable".
//   - layout (string): board layout used by the shaping rules, default "tictactoe".
//   - load (string): file with a table saved previously to start from.
func NewFromParams(playerID, numPlayers, numActions, observationSize int, params parameters.Params) (*Agent, error) {
	cfg := NewConfig(playerID, numPlayers, numActions)
	cfg.ObservationSize = observationSize
	var err error
	if cfg.StepSize, err = parameters.PopParamOr(params, "step_size", cfg.StepSize); err != nil {
		return nil, err
	}
	if cfg.Discount, err = parameters.PopParamOr(params, "discount", cfg.Discount); err != nil {
		return nil, err
	}
	if cfg.Centralized, err = parameters.PopParamOr(params, "centralized", cfg.Centralized); err != nil {
		return nil, err
	}
	if cfg.Seed, err = parameters.PopParamOr(params, "seed", cfg.Seed); err != nil {
		return nil, err
	}

	// Exploration.
	epsilon, err := parameters.PopParamOr(params, "epsilon", float32(DefaultEpsilon))
	if err != nil {
		return nil, err
	}
	epsilonFinal, err := parameters.PopParamOr(params, "epsilon_final", epsilon)
	if err != nil {
		return nil, err
	}
	epsilonSteps, err := parameters.PopParamOr(params, "epsilon_steps", 0)
	if err != nil {
		return nil, err
	}
	if epsilonSteps != 0 {
		cfg.Schedule, err = schedule.Linear(epsilon, epsilonFinal, epsilonSteps)
	} else {
		cfg.Schedule, err = schedule.Constant(epsilon)
	}
	if err != nil {
		return nil, err
	}
	softmax, err := parameters.PopParamOr(params, "softmax", false)
	if err != nil {
		return nil, err
	}
	if softmax {
		cfg.Selector = policy.Softmax{NumActions: numActions}
	}

	// Reward shaping.
	rulesNames, err := parameters.PopParamOr(params, "shaping", "")
	if err != nil {
		return nil, err
	}
	if cfg.Rules, err = shaping.ParseRules(rulesNames); err != nil {
		return nil, err
	}
	layoutName, err := parameters.PopParamOr(params, "layout", "tictactoe")
	if err != nil {
		return nil, err
	}
	var found bool
	if cfg.Layout, found = shaping.LayoutsByName[layoutName]; !found {
		return nil, errors.Errorf("unknown shaping layout %q", layoutName)
	}

	// Start from a saved table.
	fileName, err := parameters.PopParamOr(params, "load", "")
	if err != nil {
		return nil, err
	}
	if fileName != "" {
		if cfg.Table, err = qtable.LoadFromFile(fileName); err != nil {
			return nil, err
		}
	}
	return New(cfg)
}
