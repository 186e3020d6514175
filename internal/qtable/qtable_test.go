package qtable

import (
	"bytes"
	"encoding/gob"
	"github.com/chewxy/math32"
	"github.com/janpfeifer/qlearner/internal/infostate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"testing"
)

func TestGetOrInsertAndPeek(t *testing.T) {
	table := New(3)
	_, found := table.Peek("a", 1)
	assert.False(t, found)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, float32(0), table.ReadOnly().Value("a", 1))
	assert.Equal(t, 0, table.Len(), "ReadOnly view must not insert")

	assert.Equal(t, float32(0), table.GetOrInsert("a", 1))
	assert.Equal(t, 1, table.Len())
	value, found := table.Peek("a", 2)
	assert.True(t, found)
	assert.Equal(t, float32(0), value)

	table.Set("a", 2, 0.5)
	assert.Equal(t, float32(0.5), table.Value("a", 2))
	assert.Equal(t, float32(0.5), table.ReadOnly().Value("a", 2))
	assert.Panics(t, func() { table.Set("a", 0, math32.Inf(1)) })
	assert.Panics(t, func() { table.Set("a", 0, math32.NaN()) })
	assert.Panics(t, func() { table.GetOrInsert("a", 3) })
}

func TestTDUpdateTerminal(t *testing.T) {
	table := New(2)
	newValue, loss := table.TDUpdate("s", 0, 1.0, 0.5)
	assert.Equal(t, float32(0.5), newValue)
	assert.Equal(t, float32(-0.5), loss)
	assert.Equal(t, float32(0.5), table.GetOrInsert("s", 0))
}

func TestTDUpdateBootstrapped(t *testing.T) {
	table := New(2)
	table.Set("next", 0, 0.2)
	table.Set("next", 1, 0.8)
	maxNext := table.MaxLegal("next", []int{0, 1})
	assert.Equal(t, float32(0.8), maxNext)
	target := float32(0) + 1.0*maxNext
	newValue, loss := table.TDUpdate("s", 1, target, 0.1)
	assert.InDelta(t, 0.08, newValue, 1e-6)
	assert.InDelta(t, 0.08-0.8, loss, 1e-6)

	// MaxLegal only considers the legal actions, and inserts missing states.
	assert.Equal(t, float32(0.2), table.MaxLegal("next", []int{0}))
	assert.Equal(t, float32(0), table.MaxLegal("other", []int{1}))
	_, found := table.Peek("other", 0)
	assert.True(t, found)
}

func TestSaveLoad(t *testing.T) {
	table := New(2)
	table.Set("b", 1, -0.25)
	table.Set("a", 0, 3)
	var buf bytes.Buffer
	require.NoError(t, table.Save(&buf))
	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, table.Snapshot(), loaded.Snapshot())
	assert.Equal(t, 2, loaded.NumActions())

	// Saving is deterministic.
	var buf1, buf2 bytes.Buffer
	require.NoError(t, table.Save(&buf1))
	require.NoError(t, loaded.Save(&buf2))
	assert.Equal(t, buf1.Bytes(), buf2.Bytes())

	fileName := filepath.Join(t.TempDir(), "q.gob")
	require.NoError(t, table.SaveToFile(fileName))
	require.NoError(t, table.SaveToFile(fileName)) // Second time renames the previous one.
	loaded, err = LoadFromFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, map[infostate.Key][]float32{"a": {3, 0}, "b": {0, -0.25}}, loaded.Snapshot())
	_, err = LoadFromFile(fileName + "~")
	require.NoError(t, err)
}

func TestLoadRejectsNonFinite(t *testing.T) {
	for _, value := range []float32{math32.NaN(), math32.Inf(1), math32.Inf(-1)} {
		var buf bytes.Buffer
		enc := gob.NewEncoder(&buf)
		require.NoError(t, enc.Encode(header{NumActions: 2, NumStates: 1}))
		require.NoError(t, enc.Encode(row{Key: "k", Values: []float32{value, 0}}))
		var err error
		require.NotPanics(t, func() { _, err = Load(&buf) })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-finite value")
	}
}
