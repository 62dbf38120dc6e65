package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTrackerMissingFile(t *testing.T) {
	tracker, err := LoadTracker(filepath.Join(t.TempDir(), "processed.log"))
	require.NoError(t, err)
	assert.Zero(t, tracker.Len())
	assert.False(t, tracker.Contains("anything.pdf"))
}

func TestTrackerAppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.log")

	tracker, err := LoadTracker(path)
	require.NoError(t, err)
	require.NoError(t, tracker.Append("go168.pdf"))
	require.NoError(t, tracker.Append("master-plan.pdf"))

	assert.True(t, tracker.Contains("go168.pdf"))
	assert.Equal(t, 2, tracker.Len())

	reloaded, err := LoadTracker(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Contains("go168.pdf"))
	assert.True(t, reloaded.Contains("master-plan.pdf"))
	assert.Equal(t, 2, reloaded.Len())
}

func TestTrackerAppendIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.log")

	tracker, err := LoadTracker(path)
	require.NoError(t, err)
	require.NoError(t, tracker.Append("go168.pdf"))
	require.NoError(t, tracker.Append("go168.pdf"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "go168.pdf\n", string(data))
}
