package tracker

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/milestonebot/milestone/internal/storage"
)

// ActivityRepository persists the full per-guild activity state. The
// default implementation is a write-through JSON snapshot; a write-behind
// implementation would widen the crash-consistency window and must document
// that trade-off.
type ActivityRepository interface {
	Load() (map[snowflake.ID]*GuildActivity, bool, error)
	Save(map[snowflake.ID]*GuildActivity) error
}

// NewSnapshotRepository returns the default file-backed repository.
func NewSnapshotRepository(path string) ActivityRepository {
	return &snapshotRepository{snap: storage.NewSnapshot[map[snowflake.ID]*GuildActivity](path)}
}

type snapshotRepository struct {
	snap *storage.Snapshot[map[snowflake.ID]*GuildActivity]
}

func (r *snapshotRepository) Load() (map[snowflake.ID]*GuildActivity, bool, error) {
	return r.snap.Load()
}

func (r *snapshotRepository) Save(guilds map[snowflake.ID]*GuildActivity) error {
	return r.snap.Save(guilds)
}

// Store owns the in-memory activity state for every guild. It is not safe
// for concurrent use on its own; the tracker serializes access per guild.
type Store struct {
	repo   ActivityRepository
	logger *zap.Logger
	guilds map[snowflake.ID]*GuildActivity
}

// NewStore loads the persisted snapshot and normalizes every record against
// the current schema. A missing, malformed or unreadable snapshot starts
// the store empty with a warning; losing the snapshot is never fatal.
func NewStore(repo ActivityRepository, logger *zap.Logger) *Store {
	guilds, found, err := repo.Load()
	if err != nil {
		logger.Warn("Failed to load activity snapshot, starting empty", zap.Error(err))
	}

	if !found || guilds == nil {
		guilds = make(map[snowflake.ID]*GuildActivity)
	}

	for _, guild := range guilds {
		if guild.Users == nil {
			guild.Users = make(map[snowflake.ID]*UserRecord)
			continue
		}

		for _, user := range guild.Users {
			user.normalize()
		}
	}

	return &Store{
		repo:   repo,
		logger: logger,
		guilds: guilds,
	}
}

// Guild returns the activity bucket for a guild, creating it on first use.
func (s *Store) Guild(guildID snowflake.ID) *GuildActivity {
	guild, ok := s.guilds[guildID]
	if !ok {
		guild = &GuildActivity{Users: make(map[snowflake.ID]*UserRecord)}
		s.guilds[guildID] = guild
	}

	return guild
}

// User returns the record for a user if one exists. Records are only ever
// created by observed events, never pre-provisioned.
func (s *Store) User(guildID, userID snowflake.ID) (*UserRecord, bool) {
	guild, ok := s.guilds[guildID]
	if !ok {
		return nil, false
	}

	user, ok := guild.Users[userID]

	return user, ok
}

// EnsureUser returns the record for a user, creating it with the given join
// date on first reference.
func (s *Store) EnsureUser(guildID, userID snowflake.ID, joinDate, now time.Time) *UserRecord {
	guild := s.Guild(guildID)

	user, ok := guild.Users[userID]
	if !ok {
		user = newUserRecord(joinDate, now)
		guild.Users[userID] = user
	}

	return user
}

// Flush rewrites the whole snapshot. A write failure is logged and the
// in-memory state stays authoritative; the next successful flush recovers
// consistency.
func (s *Store) Flush() {
	if err := s.repo.Save(s.guilds); err != nil {
		s.logger.Warn("Failed to persist activity snapshot", zap.Error(err))
	}
}
