// Package bot wires the Discord gateway to the tracker core: it converts
// gateway events into tracker events and carries the tracker's side effects
// (announcements, role grants) back to Discord.
package bot

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"go.uber.org/zap"

	"github.com/milestonebot/milestone/internal/settings"
	"github.com/milestonebot/milestone/internal/setup/config"
	"github.com/milestonebot/milestone/internal/tracker"
)

// Bot owns the Discord client and the glue between gateway events and the
// tracker.
type Bot struct {
	client   bot.Client
	tracker  *tracker.Tracker
	settings *settings.Manager
	logger   *zap.Logger
	prefix   string
}

// New configures the Discord client with the gateway intents and caches the
// tracker needs (guilds for AFK channels, voice states for occupancy) and
// builds the tracker with its Discord-backed collaborators.
func New(cfg *config.Bot, store *tracker.Store, settingsManager *settings.Manager, logger *zap.Logger) (*Bot, error) {
	prefix := cfg.CommandPrefix
	if prefix == "" {
		prefix = "!"
	}

	b := &Bot{
		settings: settingsManager,
		logger:   logger,
		prefix:   prefix,
	}

	client, err := disgo.New(cfg.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
				gateway.IntentGuildMessageReactions,
				gateway.IntentGuildVoiceStates,
				gateway.IntentGuildMembers,
			),
		),
		bot.WithCacheConfigOpts(
			cache.WithCaches(
				cache.FlagGuilds,
				cache.FlagChannels,
				cache.FlagMembers,
				cache.FlagVoiceStates,
			),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnGuildMessageCreate:      b.onMessageCreate,
			OnGuildMessageReactionAdd: b.onReactionAdd,
			OnGuildVoiceJoin:          b.onVoiceJoin,
			OnGuildVoiceMove:          b.onVoiceMove,
			OnGuildVoiceLeave:         b.onVoiceLeave,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	b.client = client

	// The announcer and resolver need the client, the tracker needs both,
	// and the listeners above need the tracker. Listeners only fire after
	// Start, so assigning the tracker here is safe.
	announcer := NewAnnouncer(client, settingsManager, logger)
	resolver := NewMemberResolver(client, logger)
	b.tracker = tracker.New(store, resolver, announcer, logger)

	return b, nil
}

// Tracker exposes the tracker for administrative collaborators.
func (b *Bot) Tracker() *tracker.Tracker {
	return b.tracker
}

// Start opens the gateway connection.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.client.OpenGateway(ctx); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	return nil
}

// Close shuts down the gateway connection.
func (b *Bot) Close(ctx context.Context) {
	b.client.Close(ctx)
}
