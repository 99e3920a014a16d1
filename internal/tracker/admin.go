package tracker

import (
	"github.com/disgoorg/snowflake/v2"
)

// Administrative operations, exposed to the command-routing collaborator.
// Input validation (numeric amounts, resolvable users) happens at that
// boundary; these assume validated inputs. Each operation flushes.

// ResetAll wipes one user's record, or every record in the guild when
// userID is zero. Everything is cleared, join dates included, so tenure
// achievements do not immediately re-unlock after a reset.
func (t *Tracker) ResetAll(guildID, userID snowflake.ID) {
	defer t.lockGuild(guildID)()

	now := t.clock()
	t.forEachTarget(guildID, userID, func(u *UserRecord) {
		u.reset(now)
	})
	t.store.Flush()
}

// ResetAchievements wipes every record in the guild, counters and join
// dates included. Clearing only the unlocked sets would make the next
// evaluation pass re-unlock everything the surviving counters still
// satisfy, so the counters go with them.
func (t *Tracker) ResetAchievements(guildID snowflake.ID) {
	defer t.lockGuild(guildID)()

	now := t.clock()
	t.forEachTarget(guildID, 0, func(u *UserRecord) {
		u.reset(now)
	})
	t.store.Flush()
}

// ResetMessages zeroes message counters and daily message buckets for one
// user, or all users when userID is zero.
func (t *Tracker) ResetMessages(guildID, userID snowflake.ID) {
	defer t.lockGuild(guildID)()

	t.forEachTarget(guildID, userID, func(u *UserRecord) {
		u.MessageCount = 0
		u.CachedLevel = 0
		u.DailyMessageCounts = make(map[string]int64)
		u.NightOwlMessageCount = 0
	})
	t.store.Flush()
}

// ResetDays clears active-day sets for one user, or all users when userID
// is zero.
func (t *Tracker) ResetDays(guildID, userID snowflake.ID) {
	defer t.lockGuild(guildID)()

	t.forEachTarget(guildID, userID, func(u *UserRecord) {
		u.ActiveDays = make(map[string]bool)
	})
	t.store.Flush()
}

// ResetMentions clears mention counters and mentioner sets for one user, or
// all users when userID is zero.
func (t *Tracker) ResetMentions(guildID, userID snowflake.ID) {
	defer t.lockGuild(guildID)()

	t.forEachTarget(guildID, userID, func(u *UserRecord) {
		u.MentionsSent = 0
		u.DailyMentionsSent = make(map[string]int64)
		u.DistinctMentioners = make(map[snowflake.ID]bool)
	})
	t.store.Flush()
}

// AdjustMessageCount adds delta (which may be negative) to a user's message
// count, clamping at zero. The cached level is recomputed immediately, but
// no evaluation pass runs: administrative adjustments never announce.
func (t *Tracker) AdjustMessageCount(guildID, userID snowflake.ID, delta int64) {
	defer t.lockGuild(guildID)()

	now := t.clock()
	user := t.store.EnsureUser(guildID, userID, now, now)

	user.MessageCount += delta
	if user.MessageCount < 0 {
		user.MessageCount = 0
	}

	user.CachedLevel = Level(user)
	t.store.Flush()
}

// forEachTarget applies fn to one user's record, or every record in the
// guild when userID is zero. Missing records are skipped, never created.
func (t *Tracker) forEachTarget(guildID, userID snowflake.ID, fn func(*UserRecord)) {
	if userID != 0 {
		if user, ok := t.store.User(guildID, userID); ok {
			fn(user)
		}

		return
	}

	if guild, ok := t.store.guilds[guildID]; ok {
		for _, user := range guild.Users {
			fn(user)
		}
	}
}
