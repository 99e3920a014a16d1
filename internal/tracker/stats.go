package tracker

import (
	"sort"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Read-side queries backing the collaborator commands (!stats, !today,
// !monthly, !top, !active, !achievements). All are read-only and never
// flush.

// MemberStats is a point-in-time snapshot of one member's tracked activity.
type MemberStats struct {
	MessageCount      int64
	MessagesToday     int64
	MentionsSent      int64
	ActiveDayCount    int
	Level             int64
	VoiceMinutes      int64
	ReactionsGiven    int64
	ReactionsReceived int64
	Unlocked          []Kind
	JoinDate          time.Time
	LastActiveAt      time.Time
}

// MemberStats returns a member's stats, or false if no record exists.
func (t *Tracker) MemberStats(guildID, userID snowflake.ID) (MemberStats, bool) {
	defer t.lockGuild(guildID)()

	user, ok := t.store.User(guildID, userID)
	if !ok {
		return MemberStats{}, false
	}

	now := t.clock()

	return MemberStats{
		MessageCount:      user.MessageCount,
		MessagesToday:     user.DailyMessageCounts[DateKey(now)],
		MentionsSent:      user.MentionsSent,
		ActiveDayCount:    len(user.ActiveDays),
		Level:             Level(user),
		VoiceMinutes:      user.Voice.TotalMs / 60000,
		ReactionsGiven:    user.ReactionsGiven,
		ReactionsReceived: user.ReactionsReceived,
		Unlocked:          user.unlockedKinds(),
		JoinDate:          user.JoinDate,
		LastActiveAt:      user.LastActiveAt,
	}, true
}

// UnlockedKinds returns a member's unlocked achievements in catalogue
// order.
func (t *Tracker) UnlockedKinds(guildID, userID snowflake.ID) []Kind {
	defer t.lockGuild(guildID)()

	user, ok := t.store.User(guildID, userID)
	if !ok {
		return nil
	}

	return user.unlockedKinds()
}

// TodayCounts returns today's message count per user for the guild,
// omitting users with none.
func (t *Tracker) TodayCounts(guildID snowflake.ID) map[snowflake.ID]int64 {
	return t.windowCounts(guildID, 1)
}

// MonthlyCounts returns each user's message total over the trailing 30
// calendar days, inclusive of today, omitting users with none.
func (t *Tracker) MonthlyCounts(guildID snowflake.ID) map[snowflake.ID]int64 {
	return t.windowCounts(guildID, 30)
}

func (t *Tracker) windowCounts(guildID snowflake.ID, windowDays int) map[snowflake.ID]int64 {
	defer t.lockGuild(guildID)()

	now := t.clock()
	counts := make(map[snowflake.ID]int64)

	guild, ok := t.store.guilds[guildID]
	if !ok {
		return counts
	}

	for userID, user := range guild.Users {
		if sum := user.RollingSum(DailyMessages, windowDays, now); sum > 0 {
			counts[userID] = sum
		}
	}

	return counts
}

// TopEntry is one row of the achievement leaderboard.
type TopEntry struct {
	UserID           snowflake.ID
	AchievementCount int
	MessageCount     int64
}

// TopByAchievements returns up to limit members ordered by unlocked
// achievement count, message count as tiebreak, user ID as a stable final
// tiebreak.
func (t *Tracker) TopByAchievements(guildID snowflake.ID, limit int) []TopEntry {
	defer t.lockGuild(guildID)()

	guild, ok := t.store.guilds[guildID]
	if !ok {
		return nil
	}

	entries := make([]TopEntry, 0, len(guild.Users))
	for userID, user := range guild.Users {
		entries = append(entries, TopEntry{
			UserID:           userID,
			AchievementCount: len(user.Unlocked),
			MessageCount:     user.MessageCount,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AchievementCount != entries[j].AchievementCount {
			return entries[i].AchievementCount > entries[j].AchievementCount
		}

		if entries[i].MessageCount != entries[j].MessageCount {
			return entries[i].MessageCount > entries[j].MessageCount
		}

		return entries[i].UserID < entries[j].UserID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries
}

// LastActive returns the member's last-activity timestamp.
func (t *Tracker) LastActive(guildID, userID snowflake.ID) (time.Time, bool) {
	defer t.lockGuild(guildID)()

	user, ok := t.store.User(guildID, userID)
	if !ok {
		return time.Time{}, false
	}

	return user.LastActiveAt, true
}

// unlockedKinds filters the catalogue against the record's unlocked set,
// preserving catalogue order for deterministic rendering.
func (u *UserRecord) unlockedKinds() []Kind {
	var kinds []Kind

	for _, kind := range Kinds {
		if u.Unlocked[kind] {
			kinds = append(kinds, kind)
		}
	}

	return kinds
}
