package tracker

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Session-shape thresholds.
const (
	longSessionMin = 3 * time.Hour
	duetSessionMin = 30 * time.Minute
	partyOccupancy = 10
	duetOccupancy  = 2
)

// VoiceEvent is a voice-state transition reduced to what the session state
// machine needs. A zero channel ID means "not in a voice channel" on that
// side of the transition.
type VoiceEvent struct {
	GuildID snowflake.ID
	UserID  snowflake.ID

	OldChannelID snowflake.ID
	NewChannelID snowflake.ID

	// JoinOccupancy is the member count of the new channel at the moment
	// of joining, including the joining user.
	JoinOccupancy int

	// AFKChannelID is the guild's AFK channel, zero if none is set.
	AFKChannelID snowflake.ID
}

// applyVoice advances the per-user session state machine. A move closes the
// old session and opens the new one in the same step, so no idle gap is
// ever observed.
func (u *UserRecord) applyVoice(ev VoiceEvent, now time.Time) {
	if ev.OldChannelID != 0 && ev.NewChannelID != ev.OldChannelID {
		u.closeVoiceSession(ev.AFKChannelID, now)
	}

	if ev.NewChannelID != 0 && ev.NewChannelID != ev.OldChannelID {
		u.openVoiceSession(ev.NewChannelID, ev.JoinOccupancy, now)
	}
}

func (u *UserRecord) openVoiceSession(channelID snowflake.ID, occupancy int, now time.Time) {
	v := u.Voice
	v.SessionStartedAt = now
	v.SessionChannelID = channelID
	v.SessionJoinOccupancy = occupancy
	v.Joined = true

	// Party is decided immediately on join, before any duration accrues.
	if occupancy >= partyOccupancy {
		v.HadParty = true
	}

	u.LastActiveAt = now
}

// closeVoiceSession folds the active session into the accumulated totals.
// Duet uses the occupancy snapshot taken at join, not mid-session
// membership changes.
func (u *UserRecord) closeVoiceSession(afkChannelID snowflake.ID, now time.Time) {
	v := u.Voice
	if v.SessionStartedAt.IsZero() {
		return
	}

	duration := now.Sub(v.SessionStartedAt)
	durationMs := duration.Milliseconds()
	v.TotalMs += durationMs

	if duration >= longSessionMin {
		v.HadLongSession = true
	}

	if afkChannelID != 0 && v.SessionChannelID == afkChannelID {
		v.InAFKMs += durationMs
	}

	if v.SessionJoinOccupancy == duetOccupancy && duration >= duetSessionMin {
		v.HadDuet = true
	}

	v.SessionStartedAt = time.Time{}
	v.SessionChannelID = 0
	v.SessionJoinOccupancy = 0
}
