// Package _default registers the default agents that can be included in any
// front-end: "qlearner" (tabular Q-learning) and "random".
package _default

import (
	"github.com/janpfeifer/qlearner/internal/parameters"
	"github.com/janpfeifer/qlearner/internal/players"
	"github.com/janpfeifer/qlearner/internal/qlearner"
	"github.com/janpfeifer/qlearner/internal/randomagent"
	"github.com/janpfeifer/qlearner/internal/rl"
)

func init() {
	players.RegisterModule("qlearner", players.ModuleFunc(newQLearner))
	players.RegisterModule("random", players.ModuleFunc(newRandom))
}

// newQLearner accepts the parameters documented in qlearner.NewFromParams.
func newQLearner(playerID int, env rl.Environment, params parameters.Params) (rl.Agent, error) {
	return qlearner.NewFromParams(playerID, env.NumPlayers(), env.NumActions(), env.ObservationSize(), params)
}

// newRandom accepts an optional "seed" parameter.
func newRandom(playerID int, env rl.Environment, params parameters.Params) (rl.Agent, error) {
	seed, err := parameters.PopParamOr(params, "seed", uint64(0))
	if err != nil {
		return nil, err
	}
	return randomagent.New(playerID, env.NumActions(), seed)
}
