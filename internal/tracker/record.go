// Package tracker maintains per-guild, per-user engagement records and
// derives the achievement catalogue from them.
package tracker

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// UserRecord holds everything tracked for a single user inside one guild.
// Records are created lazily on the first observed event and live for the
// life of the snapshot; daily counter maps are never pruned.
type UserRecord struct {
	MessageCount int64 `json:"message_count"`
	MentionsSent int64 `json:"mentions_sent"`

	// ActiveDays marks every UTC calendar date the user sent a
	// non-command message on.
	ActiveDays map[string]bool `json:"active_days"`

	DailyMessageCounts  map[string]int64 `json:"daily_message_counts"`
	DailyMentionsSent   map[string]int64 `json:"daily_mentions_sent"`
	DailyReactionsGiven map[string]int64 `json:"daily_reactions_given"`

	JoinDate     time.Time `json:"join_date"`
	LastActiveAt time.Time `json:"last_active_at"`

	// Unlocked only ever grows outside of an explicit full reset.
	Unlocked map[Kind]bool `json:"unlocked_achievements"`

	// CachedLevel is recomputed on every evaluation pass; the message
	// count is the source of truth.
	CachedLevel int64 `json:"cached_level"`

	NightOwlMessageCount int64 `json:"night_owl_message_count"`
	ImageMessageCount    int64 `json:"image_message_count"`
	ReactionsGiven       int64 `json:"reactions_given"`
	ReactionsReceived    int64 `json:"reactions_received"`

	// DistinctMentioners is the set of users who have mentioned this user
	// at least once.
	DistinctMentioners map[snowflake.ID]bool `json:"distinct_mentioners"`

	Voice *VoiceRecord `json:"voice"`
}

// VoiceRecord accumulates voice-channel activity. A zero SessionStartedAt
// means the user is not in a session.
type VoiceRecord struct {
	TotalMs int64 `json:"total_ms"`
	InAFKMs int64 `json:"in_afk_ms"`

	SessionStartedAt     time.Time    `json:"session_started_at"`
	SessionChannelID     snowflake.ID `json:"session_channel_id,omitempty"`
	SessionJoinOccupancy int          `json:"session_join_occupancy,omitempty"`

	// Sticky flags. Party and duet are decided from the occupancy snapshot
	// taken when the session started, not from mid-session changes.
	Joined         bool `json:"joined,omitempty"`
	HadLongSession bool `json:"had_long_session,omitempty"`
	HadParty       bool `json:"had_party,omitempty"`
	HadDuet        bool `json:"had_duet,omitempty"`
}

// GuildActivity holds every tracked user record for one guild.
type GuildActivity struct {
	Users map[snowflake.ID]*UserRecord `json:"users"`
}

// newUserRecord builds a fresh record for a user first seen now.
func newUserRecord(joinDate, now time.Time) *UserRecord {
	u := &UserRecord{
		JoinDate:     joinDate,
		LastActiveAt: now,
	}
	u.normalize()

	return u
}

// normalize backfills fields that are absent from snapshots written by
// older schema versions. It is applied once when a snapshot is loaded and
// when a record is created, so the rest of the package can assume every
// map and sub-record is present.
func (u *UserRecord) normalize() {
	if u.ActiveDays == nil {
		u.ActiveDays = make(map[string]bool)
	}

	if u.DailyMessageCounts == nil {
		u.DailyMessageCounts = make(map[string]int64)
	}

	if u.DailyMentionsSent == nil {
		u.DailyMentionsSent = make(map[string]int64)
	}

	if u.DailyReactionsGiven == nil {
		u.DailyReactionsGiven = make(map[string]int64)
	}

	if u.Unlocked == nil {
		u.Unlocked = make(map[Kind]bool)
	}

	if u.DistinctMentioners == nil {
		u.DistinctMentioners = make(map[snowflake.ID]bool)
	}

	if u.Voice == nil {
		u.Voice = &VoiceRecord{}
	}
}

// reset clears every counter, flag and unlocked achievement. The join date
// restarts at now, so tenure achievements accrue from the reset rather than
// re-unlocking on the next event. This is the only operation allowed to
// shrink the unlocked set or clear sticky voice flags.
func (u *UserRecord) reset(now time.Time) {
	*u = UserRecord{
		JoinDate:     now,
		LastActiveAt: now,
	}
	u.normalize()
}
