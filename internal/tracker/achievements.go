package tracker

import "time"

// Kind identifies one entry in the closed achievement catalogue. The string
// values are stable: they are persisted in activity snapshots and referenced
// by the per-guild role mappings.
type Kind string

const (
	KindFirstMessage  Kind = "first_message"
	KindChatterbox    Kind = "chatterbox"
	KindVeteran30Days Kind = "veteran_30d"
	KindVeteran1Year  Kind = "veteran_1y"
	KindLevel1        Kind = "level_1"
	KindLevel5        Kind = "level_5"
	KindLevel10       Kind = "level_10"
	KindLevel25       Kind = "level_25"
	KindLevel50       Kind = "level_50"
	KindLevel100      Kind = "level_100"
	KindNightOwl      Kind = "night_owl"
	KindMarathon      Kind = "marathon"
	KindPhilosopher   Kind = "philosopher"
	KindMemeLord      Kind = "meme_lord"
	KindFirstReaction Kind = "first_reaction"
	KindReactor       Kind = "reactor"
	KindSocial        Kind = "social"
	KindFirstVoice    Kind = "first_voice"
	KindVoiceNovice   Kind = "voice_novice"
	KindVoiceTalker   Kind = "voice_talker"
	KindLongSession   Kind = "voice_long_session"
	KindPartyAnimal   Kind = "voice_party"
	KindDuet          Kind = "voice_duet"
	KindCaptainAFK    Kind = "voice_afk"
)

// Kinds lists the full catalogue in announcement order.
var Kinds = []Kind{
	KindFirstMessage,
	KindChatterbox,
	KindVeteran30Days,
	KindVeteran1Year,
	KindLevel1,
	KindLevel5,
	KindLevel10,
	KindLevel25,
	KindLevel50,
	KindLevel100,
	KindNightOwl,
	KindMarathon,
	KindPhilosopher,
	KindMemeLord,
	KindFirstReaction,
	KindReactor,
	KindSocial,
	KindFirstVoice,
	KindVoiceNovice,
	KindVoiceTalker,
	KindLongSession,
	KindPartyAnimal,
	KindDuet,
	KindCaptainAFK,
}

// Label returns the public announcement label for a kind. Unknown kinds
// fall back to their raw value so a stale snapshot never breaks rendering.
func (k Kind) Label() string {
	switch k {
	case KindFirstMessage:
		return "👋 Hey, Anybody Here? (first message)"
	case KindChatterbox:
		return "🗨️ Chatterbox (10+ messages)"
	case KindVeteran30Days:
		return "⌛ Old Dog (30+ days)"
	case KindVeteran1Year:
		return "🎖️ Veteran (1 year on the server)"
	case KindLevel1:
		return "🎯 First Steps (level 1)"
	case KindLevel5:
		return "🆙 Rookie (level 5)"
	case KindLevel10:
		return "🏅 Experienced (level 10)"
	case KindLevel25:
		return "🥇 Guru (level 25)"
	case KindLevel50:
		return "🏆 Legend (level 50)"
	case KindLevel100:
		return "👑 Legend+ (level 100)"
	case KindNightOwl:
		return "🦉 Night Owl (100 messages between 00-06)"
	case KindMarathon:
		return "🏃 Marathoner (1000 messages in 7 days)"
	case KindPhilosopher:
		return "🤔 Philosopher (50 reactions on your messages)"
	case KindMemeLord:
		return "😂 Meme Lord (100 images)"
	case KindFirstReaction:
		return "✅ Reactor (first reaction)"
	case KindReactor:
		return "⚡ Reactor (500 reactions given)"
	case KindSocial:
		return "🧑‍🤝‍🧑 Social (mentioned by 10 different people)"
	case KindFirstVoice:
		return "🎧 Listener (joined a voice channel)"
	case KindVoiceNovice:
		return "🎙️ First Words (10 voice minutes)"
	case KindVoiceTalker:
		return "🗣️ Conversationalist (5 voice hours)"
	case KindLongSession:
		return "⏱️ Long Talk (3+ hour session)"
	case KindPartyAnimal:
		return "🎉 Party Animal (10+ in the channel)"
	case KindDuet:
		return "🎤 Duet (30 minutes one-on-one)"
	case KindCaptainAFK:
		return "😴 Captain AFK (1 hour in the AFK channel)"
	default:
		return string(k)
	}
}

// Achievement thresholds.
const (
	chatterboxMessages  = 10
	veteranDays         = 30
	veteranYearDays     = 365
	nightOwlMessages    = 100
	marathonWindowDays  = 7
	marathonMessages    = 1000
	philosopherReceived = 50
	memeLordImages      = 100
	reactorGiven        = 500
	socialMentioners    = 10
	voiceNoviceMinutes  = 10
	voiceTalkerMinutes  = 300
	afkMarathonMs       = 60 * 60 * 1000
)

// levelTiers pairs each level achievement with its threshold.
var levelTiers = []struct {
	Threshold int64
	Kind      Kind
}{
	{1, KindLevel1},
	{5, KindLevel5},
	{10, KindLevel10},
	{25, KindLevel25},
	{50, KindLevel50},
	{100, KindLevel100},
}

// Evaluate tests every still-locked kind's predicate against the record's
// current state and unlocks the ones that hold, returning them in catalogue
// order. Predicates are re-evaluated on every call, but only kinds absent
// from the unlocked set can appear in the result, so repeated calls are
// idempotent. The cached level is recomputed as part of the pass.
func Evaluate(u *UserRecord, now time.Time) []Kind {
	var newly []Kind

	unlock := func(kind Kind, ok bool) {
		if ok && !u.Unlocked[kind] {
			u.Unlocked[kind] = true
			newly = append(newly, kind)
		}
	}

	u.CachedLevel = Level(u)

	tenureDays := int64(now.Sub(u.JoinDate) / (24 * time.Hour))

	unlock(KindFirstMessage, u.MessageCount >= 1)
	unlock(KindChatterbox, u.MessageCount >= chatterboxMessages)
	unlock(KindVeteran30Days, tenureDays >= veteranDays)
	unlock(KindVeteran1Year, tenureDays >= veteranYearDays)

	for _, tier := range levelTiers {
		unlock(tier.Kind, u.CachedLevel >= tier.Threshold)
	}

	unlock(KindNightOwl, u.NightOwlMessageCount >= nightOwlMessages)
	unlock(KindMarathon, u.RollingSum(DailyMessages, marathonWindowDays, now) >= marathonMessages)
	unlock(KindPhilosopher, u.ReactionsReceived >= philosopherReceived)
	unlock(KindMemeLord, u.ImageMessageCount >= memeLordImages)
	unlock(KindFirstReaction, u.ReactionsGiven >= 1)
	unlock(KindReactor, u.ReactionsGiven >= reactorGiven)
	unlock(KindSocial, int64(len(u.DistinctMentioners)) >= socialMentioners)

	voiceMinutes := u.Voice.TotalMs / 60000
	unlock(KindFirstVoice, u.Voice.Joined)
	unlock(KindVoiceNovice, voiceMinutes >= voiceNoviceMinutes)
	unlock(KindVoiceTalker, voiceMinutes >= voiceTalkerMinutes)
	unlock(KindLongSession, u.Voice.HadLongSession)
	unlock(KindPartyAnimal, u.Voice.HadParty)
	unlock(KindDuet, u.Voice.HadDuet)
	unlock(KindCaptainAFK, u.Voice.InAFKMs >= afkMarathonMs)

	return newly
}
