package profilers

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path"
	"testing"
)

func TestCPUProfile(t *testing.T) {
	fileName := path.Join(t.TempDir(), "cpu.prof")
	p, err := setup(context.Background(), -1, fileName, false)
	require.NoError(t, err)
	p.OnQuit()
	info, err := os.Stat(fileName)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = setup(context.Background(), -1, path.Join(t.TempDir(), "missing", "cpu.prof"), false)
	assert.Error(t, err)
}

func TestNoProfilers(t *testing.T) {
	p, err := Setup(context.Background())
	require.NoError(t, err)
	p.OnQuit() // No-op.
}
