package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	voiceChannelID = 500
	afkChannelID   = 501
)

func TestApplyVoiceJoinLeave(t *testing.T) {
	t.Parallel()

	start := testTime()
	u := newUserRecord(start, start)

	u.applyVoice(VoiceEvent{NewChannelID: voiceChannelID, JoinOccupancy: 3}, start)
	assert.True(t, u.Voice.Joined)
	assert.Equal(t, start, u.Voice.SessionStartedAt)
	assert.Zero(t, u.Voice.TotalMs, "nothing accrues until the session closes")

	u.applyVoice(VoiceEvent{OldChannelID: voiceChannelID}, start.Add(45*time.Minute))
	assert.Equal(t, (45 * time.Minute).Milliseconds(), u.Voice.TotalMs)
	assert.True(t, u.Voice.SessionStartedAt.IsZero())
	assert.Zero(t, u.Voice.SessionChannelID)
	assert.False(t, u.Voice.HadLongSession)
	assert.False(t, u.Voice.HadDuet)
}

func TestApplyVoiceLongSession(t *testing.T) {
	t.Parallel()

	start := testTime()
	u := newUserRecord(start, start)

	u.applyVoice(VoiceEvent{NewChannelID: voiceChannelID, JoinOccupancy: 1}, start)
	u.applyVoice(VoiceEvent{OldChannelID: voiceChannelID}, start.Add(3*time.Hour))

	assert.True(t, u.Voice.HadLongSession)
}

func TestApplyVoiceDuet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		occupancy int
		duration  time.Duration
		want      bool
	}{
		{name: "two for half an hour", occupancy: 2, duration: 30 * time.Minute, want: true},
		{name: "two but too short", occupancy: 2, duration: 29 * time.Minute},
		{name: "three for an hour", occupancy: 3, duration: time.Hour},
		{name: "alone for an hour", occupancy: 1, duration: time.Hour},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			start := testTime()
			u := newUserRecord(start, start)

			u.applyVoice(VoiceEvent{NewChannelID: voiceChannelID, JoinOccupancy: tt.occupancy}, start)
			u.applyVoice(VoiceEvent{OldChannelID: voiceChannelID}, start.Add(tt.duration))

			assert.Equal(t, tt.want, u.Voice.HadDuet)
		})
	}
}

func TestApplyVoiceMove(t *testing.T) {
	t.Parallel()

	start := testTime()
	u := newUserRecord(start, start)

	u.applyVoice(VoiceEvent{NewChannelID: voiceChannelID, JoinOccupancy: 1}, start)

	// A move closes the old session and opens the new one in the same step.
	moveAt := start.Add(20 * time.Minute)
	u.applyVoice(VoiceEvent{
		OldChannelID:  voiceChannelID,
		NewChannelID:  voiceChannelID + 1,
		JoinOccupancy: 2,
	}, moveAt)

	assert.Equal(t, (20 * time.Minute).Milliseconds(), u.Voice.TotalMs)
	assert.Equal(t, moveAt, u.Voice.SessionStartedAt)
	assert.EqualValues(t, voiceChannelID+1, u.Voice.SessionChannelID)
	assert.Equal(t, 2, u.Voice.SessionJoinOccupancy)

	u.applyVoice(VoiceEvent{OldChannelID: voiceChannelID + 1}, moveAt.Add(30*time.Minute))
	assert.Equal(t, (50 * time.Minute).Milliseconds(), u.Voice.TotalMs)
	assert.True(t, u.Voice.HadDuet, "duet uses the occupancy snapshot from the move")
}

func TestApplyVoiceSameChannelUpdateIgnored(t *testing.T) {
	t.Parallel()

	start := testTime()
	u := newUserRecord(start, start)

	u.applyVoice(VoiceEvent{NewChannelID: voiceChannelID, JoinOccupancy: 1}, start)

	// Mute or deaf toggles arrive as updates with an unchanged channel.
	u.applyVoice(VoiceEvent{
		OldChannelID:  voiceChannelID,
		NewChannelID:  voiceChannelID,
		JoinOccupancy: 11,
	}, start.Add(10*time.Minute))

	assert.Equal(t, start, u.Voice.SessionStartedAt, "session must not restart")
	assert.Zero(t, u.Voice.TotalMs)
	assert.False(t, u.Voice.HadParty, "mid-session occupancy changes never grant party")
}

func TestApplyVoiceAFKAccrual(t *testing.T) {
	t.Parallel()

	start := testTime()
	u := newUserRecord(start, start)

	u.applyVoice(VoiceEvent{NewChannelID: afkChannelID, JoinOccupancy: 1, AFKChannelID: afkChannelID}, start)
	u.applyVoice(VoiceEvent{OldChannelID: afkChannelID, AFKChannelID: afkChannelID}, start.Add(time.Hour))

	assert.Equal(t, time.Hour.Milliseconds(), u.Voice.TotalMs, "AFK time still counts toward the total")
	assert.Equal(t, time.Hour.Milliseconds(), u.Voice.InAFKMs)
}

func TestApplyVoiceNonAFKChannelNoAFKAccrual(t *testing.T) {
	t.Parallel()

	start := testTime()
	u := newUserRecord(start, start)

	u.applyVoice(VoiceEvent{NewChannelID: voiceChannelID, JoinOccupancy: 1, AFKChannelID: afkChannelID}, start)
	u.applyVoice(VoiceEvent{OldChannelID: voiceChannelID, AFKChannelID: afkChannelID}, start.Add(time.Hour))

	assert.Zero(t, u.Voice.InAFKMs)
}

func TestApplyVoiceLeaveWithoutSession(t *testing.T) {
	t.Parallel()

	start := testTime()
	u := newUserRecord(start, start)

	// A leave observed without a tracked session, such as after a restart,
	// is a no-op.
	u.applyVoice(VoiceEvent{OldChannelID: voiceChannelID}, start)

	assert.Zero(t, u.Voice.TotalMs)
	assert.False(t, u.Voice.Joined)
}

func TestApplyVoicePartyThreshold(t *testing.T) {
	t.Parallel()

	start := testTime()

	u := newUserRecord(start, start)
	u.applyVoice(VoiceEvent{NewChannelID: voiceChannelID, JoinOccupancy: 9}, start)
	assert.False(t, u.Voice.HadParty)

	u = newUserRecord(start, start)
	u.applyVoice(VoiceEvent{NewChannelID: voiceChannelID, JoinOccupancy: 10}, start)
	assert.True(t, u.Voice.HadParty)
}
