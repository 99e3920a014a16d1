package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

// Night-owl hour range, inclusive, in the message's local time.
const (
	nightOwlStartHour = 0
	nightOwlEndHour   = 5
)

// MessageEvent is a non-bot guild message reduced to what the core tracks.
type MessageEvent struct {
	GuildID   snowflake.ID
	AuthorID  snowflake.ID
	ChannelID snowflake.ID

	// LocalHour is the hour of day the message was sent, in local time.
	LocalHour int

	MentionedUserIDs []snowflake.ID
	HasImage         bool

	// IsCommand marks prefix commands, which the core ignores entirely.
	IsCommand bool
}

// ReactionEvent is a reaction added to a guild message. MessageAuthorID is
// zero when the author could not be resolved or is a bot.
type ReactionEvent struct {
	GuildID         snowflake.ID
	ReactorID       snowflake.ID
	MessageAuthorID snowflake.ID
	ChannelID       snowflake.ID
}

// MemberResolver resolves guild member details from the platform. Lookups
// fail closed: ok=false makes the caller apply defaults instead of
// propagating an error.
type MemberResolver interface {
	JoinDate(ctx context.Context, guildID, userID snowflake.ID) (time.Time, bool)
}

// Dispatcher receives newly unlocked achievement kinds for announcement and
// role grants. Implementations must swallow their own failures; event
// processing never depends on side effects succeeding. channelID is the
// triggering channel and may be zero for voice-driven unlocks.
type Dispatcher interface {
	AnnounceAndGrant(ctx context.Context, guildID, userID, channelID snowflake.ID, kinds []Kind)
}

// Tracker turns inbound activity events into record mutations, runs the
// achievement evaluation synchronously after each one, hands newly unlocked
// kinds to the dispatcher and then flushes the store. Events for the same
// guild are serialized by a per-guild mutex, so no two events ever mutate
// one guild's state concurrently.
type Tracker struct {
	store      *Store
	resolver   MemberResolver
	dispatcher Dispatcher
	logger     *zap.Logger
	clock      func() time.Time

	mu         sync.Mutex
	guildLocks map[snowflake.ID]*sync.Mutex
}

// New creates a tracker around the given store and collaborators.
func New(store *Store, resolver MemberResolver, dispatcher Dispatcher, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:      store,
		resolver:   resolver,
		dispatcher: dispatcher,
		logger:     logger,
		clock:      time.Now,
		guildLocks: make(map[snowflake.ID]*sync.Mutex),
	}
}

// lockGuild acquires the guild's mutex and returns the unlock function.
func (t *Tracker) lockGuild(guildID snowflake.ID) func() {
	t.mu.Lock()
	lock, ok := t.guildLocks[guildID]
	if !ok {
		lock = &sync.Mutex{}
		t.guildLocks[guildID] = lock
	}
	t.mu.Unlock()

	lock.Lock()

	return lock.Unlock
}

// ensure returns the user's record, creating it lazily. The join date comes
// from the member resolver on first creation and defaults to now when the
// lookup fails.
func (t *Tracker) ensure(ctx context.Context, guildID, userID snowflake.ID, now time.Time) *UserRecord {
	if user, ok := t.store.User(guildID, userID); ok {
		return user
	}

	joinDate := now
	if t.resolver != nil {
		if joined, ok := t.resolver.JoinDate(ctx, guildID, userID); ok {
			joinDate = joined
		}
	}

	return t.store.EnsureUser(guildID, userID, joinDate, now)
}

// evaluate runs an evaluation pass and hands any newly unlocked kinds to
// the dispatcher.
func (t *Tracker) evaluate(ctx context.Context, guildID, userID, channelID snowflake.ID, user *UserRecord, now time.Time) {
	newly := Evaluate(user, now)
	if len(newly) == 0 {
		return
	}

	t.logger.Info("Achievements unlocked",
		zap.Uint64("guild_id", uint64(guildID)),
		zap.Uint64("user_id", uint64(userID)),
		zap.Int("count", len(newly)))

	if t.dispatcher != nil {
		t.dispatcher.AnnounceAndGrant(ctx, guildID, userID, channelID, newly)
	}
}

// HandleMessage processes a guild message. Command messages are ignored;
// everything else drives the counters, the active-day set and the daily
// buckets. Every mutated record, the author's and each mentioned user's, is
// evaluated synchronously before the write-through flush.
func (t *Tracker) HandleMessage(ctx context.Context, ev MessageEvent) {
	if ev.IsCommand {
		return
	}

	defer t.lockGuild(ev.GuildID)()

	now := t.clock()
	day := DateKey(now)

	user := t.ensure(ctx, ev.GuildID, ev.AuthorID, now)
	user.MessageCount++
	user.ActiveDays[day] = true
	user.RecordDaily(DailyMessages, day, 1)

	if n := int64(len(ev.MentionedUserIDs)); n > 0 {
		user.MentionsSent += n
		user.RecordDaily(DailyMentions, day, n)
	}

	for _, mentioned := range ev.MentionedUserIDs {
		if mentioned == ev.AuthorID {
			continue
		}

		t.ensure(ctx, ev.GuildID, mentioned, now).DistinctMentioners[ev.AuthorID] = true
	}

	if ev.LocalHour >= nightOwlStartHour && ev.LocalHour <= nightOwlEndHour {
		user.NightOwlMessageCount++
	}

	if ev.HasImage {
		user.ImageMessageCount++
	}

	user.LastActiveAt = now

	t.evaluate(ctx, ev.GuildID, ev.AuthorID, ev.ChannelID, user, now)

	// Mentioned records were mutated too, so they get their own pass; the
	// tenth distinct mentioner unlocks social in the same event.
	for _, mentioned := range ev.MentionedUserIDs {
		if mentioned == ev.AuthorID {
			continue
		}

		if target, ok := t.store.User(ev.GuildID, mentioned); ok {
			t.evaluate(ctx, ev.GuildID, mentioned, ev.ChannelID, target, now)
		}
	}

	t.store.Flush()
}

// HandleReaction credits the reactor and, when known, the message author.
// Both records are evaluated independently, each potentially producing its
// own unlock batch.
func (t *Tracker) HandleReaction(ctx context.Context, ev ReactionEvent) {
	defer t.lockGuild(ev.GuildID)()

	now := t.clock()
	day := DateKey(now)

	reactor := t.ensure(ctx, ev.GuildID, ev.ReactorID, now)
	reactor.ReactionsGiven++
	reactor.RecordDaily(DailyReactions, day, 1)
	reactor.LastActiveAt = now

	var author *UserRecord
	if ev.MessageAuthorID != 0 {
		author = t.ensure(ctx, ev.GuildID, ev.MessageAuthorID, now)
		author.ReactionsReceived++
		author.LastActiveAt = now
	}

	t.evaluate(ctx, ev.GuildID, ev.ReactorID, ev.ChannelID, reactor, now)

	if author != nil && ev.MessageAuthorID != ev.ReactorID {
		t.evaluate(ctx, ev.GuildID, ev.MessageAuthorID, ev.ChannelID, author, now)
	}

	t.store.Flush()
}

// HandleVoice advances the voice session state machine. Voice transitions
// have no triggering text channel, so unlock announcements fall back to the
// guild's configured channel.
func (t *Tracker) HandleVoice(ctx context.Context, ev VoiceEvent) {
	defer t.lockGuild(ev.GuildID)()

	now := t.clock()

	user := t.ensure(ctx, ev.GuildID, ev.UserID, now)
	user.applyVoice(ev, now)

	t.evaluate(ctx, ev.GuildID, ev.UserID, 0, user, now)
	t.store.Flush()
}
