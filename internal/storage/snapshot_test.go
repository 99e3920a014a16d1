package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milestonebot/milestone/internal/storage"
)

type payload struct {
	Name  string           `json:"name"`
	Count int64            `json:"count"`
	Tags  map[string]int64 `json:"tags"`
}

func TestSnapshotMissingFile(t *testing.T) {
	t.Parallel()

	snap := storage.NewSnapshot[payload](filepath.Join(t.TempDir(), "missing.json"))

	value, found, err := snap.Load()
	require.NoError(t, err, "a missing snapshot is not an error")
	assert.False(t, found)
	assert.Equal(t, payload{}, value)
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	snap := storage.NewSnapshot[payload](path)

	saved := payload{
		Name:  "guild",
		Count: 42,
		Tags:  map[string]int64{"2024-06-15": 3},
	}
	require.NoError(t, snap.Save(saved))

	loaded, found, err := snap.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, saved, loaded)
}

func TestSnapshotOverwrite(t *testing.T) {
	t.Parallel()

	snap := storage.NewSnapshot[payload](filepath.Join(t.TempDir(), "data.json"))

	require.NoError(t, snap.Save(payload{Name: "first"}))
	require.NoError(t, snap.Save(payload{Name: "second"}))

	loaded, found, err := snap.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second", loaded.Name)
}

func TestSnapshotCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	snap := storage.NewSnapshot[payload](path)

	value, found, err := snap.Load()
	require.Error(t, err)
	assert.False(t, found)
	assert.Equal(t, payload{}, value)
}

func TestSnapshotCreatesDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "data.json")
	snap := storage.NewSnapshot[payload](path)

	require.NoError(t, snap.Save(payload{Name: "nested"}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestSnapshotLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	snap := storage.NewSnapshot[payload](filepath.Join(dir, "data.json"))

	require.NoError(t, snap.Save(payload{Name: "clean"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "data.json", entries[0].Name())
}

func TestSnapshotPath(t *testing.T) {
	t.Parallel()

	snap := storage.NewSnapshot[payload]("data/data.json")
	assert.Equal(t, "data/data.json", snap.Path())
}
