package players

import (
	"github.com/janpfeifer/qlearner/internal/games/tictactoe"
	"github.com/janpfeifer/qlearner/internal/parameters"
	"github.com/janpfeifer/qlearner/internal/randomagent"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestNew(t *testing.T) {
	env := tictactoe.New()
	_, err := New(0, env, "fake")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no modules registered")

	var gotParams parameters.Params
	RegisterModule("fake", ModuleFunc(func(playerID int, env rl.Environment, params parameters.Params) (rl.Agent, error) {
		gotParams = parameters.Params{}
		for key, value := range params {
			gotParams[key] = value
		}
		_, err := parameters.PopParamOr(params, "seed", uint64(0))
		if err != nil {
			return nil, err
		}
		return randomagent.New(playerID, env.NumActions(), 1)
	}))
	defer delete(keywordToModules, "fake")
	assert.Equal(t, []string{"fake"}, RegisteredModules())

	agent, err := New(1, env, "fake:seed=3")
	require.NoError(t, err)
	assert.Equal(t, 1, agent.PlayerID())
	assert.Equal(t, parameters.Params{"seed": "3"}, gotParams)

	_, err = New(1, env, "fake:seed=3,extra")
	assert.Error(t, err)
	_, err = New(1, env, "other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `registered agents are ["fake"]`)
}
