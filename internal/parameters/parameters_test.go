package parameters

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParams(t *testing.T) {
	params := NewFromConfigString("step_size=0.5, centralized,seed=7,load=a=b.gob,epsilon=,verbose=false")
	assert.Equal(t, Params{"step_size": "0.5", "centralized": "", "seed": "7", "load": "a=b.gob",
		"epsilon": "", "verbose": "false"}, params)

	stepSize, err := PopParamOr(params, "step_size", float32(0.1))
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), stepSize)

	centralized, err := PopParamOr(params, "centralized", false)
	require.NoError(t, err)
	assert.True(t, centralized)

	verbose, err := PopParamOr(params, "verbose", true)
	require.NoError(t, err)
	assert.False(t, verbose)

	seed, err := PopParamOr(params, "seed", uint64(0))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), seed)

	load, err := GetParamOr(params, "load", "")
	require.NoError(t, err)
	assert.Equal(t, "a=b.gob", load)

	// Empty values use the default for numbers.
	epsilon, err := PopParamOr(params, "epsilon", 0.2)
	require.NoError(t, err)
	assert.Equal(t, 0.2, epsilon)

	missing, err := PopParamOr(params, "missing", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, missing)

	require.Error(t, CheckAllUsed(params))
	delete(params, "load")
	require.NoError(t, CheckAllUsed(params))

	_, err = GetParamOr(Params{"n": "x"}, "n", 1)
	assert.Error(t, err)
	_, err = GetParamOr(Params{"b": "maybe"}, "b", false)
	assert.Error(t, err)
}
