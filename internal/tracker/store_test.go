package tracker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStoreUserLifecycle(t *testing.T) {
	t.Parallel()

	store := NewStore(&memoryRepository{}, zap.NewNop())

	_, ok := store.User(testGuildID, testUserID)
	assert.False(t, ok, "records are never pre-provisioned")

	now := testTime()
	created := store.EnsureUser(testGuildID, testUserID, now, now)
	require.NotNil(t, created)
	assert.Equal(t, now, created.JoinDate)
	assert.NotNil(t, created.Unlocked)
	assert.NotNil(t, created.Voice)

	again := store.EnsureUser(testGuildID, testUserID, now.AddDate(0, 0, 5), now)
	assert.Same(t, created, again, "EnsureUser returns the existing record")
	assert.Equal(t, now, again.JoinDate, "a later join date never overwrites the recorded one")
}

func TestStorePersistReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "activity.json")
	now := testTime()

	store := NewStore(NewSnapshotRepository(path), zap.NewNop())

	user := store.EnsureUser(testGuildID, testUserID, now.AddDate(0, -1, 0), now)
	user.MessageCount = 37
	user.ActiveDays[DateKey(now)] = true
	user.RecordDaily(DailyMessages, DateKey(now), 37)
	user.Unlocked[KindFirstMessage] = true
	user.Unlocked[KindChatterbox] = true
	user.CachedLevel = 1
	user.DistinctMentioners[testOtherID] = true
	user.Voice.TotalMs = 90000
	user.Voice.Joined = true
	store.Flush()

	reloaded := NewStore(NewSnapshotRepository(path), zap.NewNop())

	got, ok := reloaded.User(testGuildID, testUserID)
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestStoreLegacySnapshotBackfill(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "activity.json")

	// A snapshot written by an older schema carries only a subset of the
	// fields; loading must backfill the rest.
	legacy := `{
		"100": {
			"users": {
				"200": {
					"message_count": 12,
					"join_date": "2023-01-02T03:04:05Z"
				}
			}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	store := NewStore(NewSnapshotRepository(path), zap.NewNop())

	user, ok := store.User(testGuildID, testUserID)
	require.True(t, ok)
	assert.Equal(t, int64(12), user.MessageCount)
	assert.NotNil(t, user.ActiveDays)
	assert.NotNil(t, user.DailyMessageCounts)
	assert.NotNil(t, user.DailyMentionsSent)
	assert.NotNil(t, user.DailyReactionsGiven)
	assert.NotNil(t, user.Unlocked)
	assert.NotNil(t, user.DistinctMentioners)
	require.NotNil(t, user.Voice)
	assert.Zero(t, user.Voice.TotalMs)
}

func TestStoreCorruptSnapshotStartsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "activity.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	store := NewStore(NewSnapshotRepository(path), zap.NewNop())

	_, ok := store.User(testGuildID, testUserID)
	assert.False(t, ok)

	// The store is usable and the next flush rewrites a valid snapshot.
	now := testTime()
	store.EnsureUser(testGuildID, testUserID, now, now)
	store.Flush()

	reloaded := NewStore(NewSnapshotRepository(path), zap.NewNop())
	_, ok = reloaded.User(testGuildID, testUserID)
	assert.True(t, ok)
}

func TestStoreGuildBucketIsolation(t *testing.T) {
	t.Parallel()

	store := NewStore(&memoryRepository{}, zap.NewNop())
	now := testTime()

	store.EnsureUser(testGuildID, testUserID, now, now).MessageCount = 7
	store.EnsureUser(snowflake.ID(999), testUserID, now, now).MessageCount = 3

	first, ok := store.User(testGuildID, testUserID)
	require.True(t, ok)
	assert.Equal(t, int64(7), first.MessageCount)

	second, ok := store.User(snowflake.ID(999), testUserID)
	require.True(t, ok)
	assert.Equal(t, int64(3), second.MessageCount)
}
