package schedule

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestConstant(t *testing.T) {
	s, err := Constant(0.2)
	require.NoError(t, err)
	assert.Equal(t, float32(0.2), s.Value())
	for range 1000 {
		assert.Equal(t, float32(0.2), s.Step())
	}
	assert.Equal(t, float32(0.2), s.Value())

	for _, invalid := range []float32{-0.1, 1.01} {
		_, err = Constant(invalid)
		assert.Error(t, err, "value=%g", invalid)
	}
}

func TestLinear(t *testing.T) {
	s, err := Linear(1.0, 0.2, 4)
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), s.Value())
	want := []float32{0.8, 0.6, 0.4, 0.2, 0.2, 0.2}
	for ii, w := range want {
		got := s.Step()
		assert.InDelta(t, w, got, 1e-6, "step #%d", ii+1)
		assert.Equal(t, got, s.Value())
	}

	// Increasing schedule.
	s, err = Linear(0, 0.5, 2)
	require.NoError(t, err)
	assert.InDelta(t, float32(0.25), s.Step(), 1e-6)
	assert.InDelta(t, float32(0.5), s.Step(), 1e-6)

	// Zero steps starts at the final value.
	s, err = Linear(1, 0.1, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(0.1), s.Value())

	_, err = Linear(1, 1.5, 10)
	assert.Error(t, err)
	_, err = Linear(1, 0.5, -1)
	assert.Error(t, err)
}
