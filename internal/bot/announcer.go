package bot

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/milestonebot/milestone/internal/settings"
	"github.com/milestonebot/milestone/internal/tracker"
)

// Announcer is the side-effect dispatcher: it publishes unlock
// announcements to the guild's configured channel and grants mapped roles.
// Every send or grant failure is logged and swallowed so event processing
// never depends on Discord permissions.
type Announcer struct {
	client   bot.Client
	settings *settings.Manager
	logger   *zap.Logger
}

// NewAnnouncer creates an announcer reading channel and role mappings from
// the settings manager.
func NewAnnouncer(client bot.Client, settingsManager *settings.Manager, logger *zap.Logger) *Announcer {
	return &Announcer{
		client:   client,
		settings: settingsManager,
		logger:   logger,
	}
}

// AnnounceAndGrant implements tracker.Dispatcher.
func (a *Announcer) AnnounceAndGrant(ctx context.Context, guildID, userID, channelID snowflake.ID, kinds []tracker.Kind) {
	if len(kinds) == 0 {
		return
	}

	a.announce(ctx, guildID, userID, channelID, kinds)
	a.grantRoles(ctx, guildID, userID, kinds)
}

// announce sends the public unlock message to the configured achievement
// channel, falling back to the triggering channel. Voice-driven unlocks
// have no triggering channel; without a configured one the announcement is
// skipped.
func (a *Announcer) announce(ctx context.Context, guildID, userID, channelID snowflake.ID, kinds []tracker.Kind) {
	target := a.settings.Channel(guildID, settings.PurposeAchievements)
	if target == 0 {
		target = channelID
	}

	if target == 0 {
		a.logger.Debug("No channel available for achievement announcement",
			zap.Uint64("guild_id", uint64(guildID)),
			zap.Uint64("user_id", uint64(userID)))

		return
	}

	labels := make([]string, len(kinds))
	for i, kind := range kinds {
		labels[i] = kind.Label()
	}

	content := fmt.Sprintf("🎉 <@%s> unlocked: **%s**!", userID, strings.Join(labels, "**, **"))

	_, err := a.client.Rest().CreateMessage(target, discord.NewMessageCreateBuilder().
		SetContent(content).
		Build(), rest.WithCtx(ctx))
	if err != nil {
		a.logger.Warn("Failed to send achievement announcement",
			zap.Uint64("guild_id", uint64(guildID)),
			zap.Uint64("channel_id", uint64(target)),
			zap.Error(err))
	}
}

// grantRoles adds the role mapped to each kind the member does not already
// hold. Hierarchy and permission failures surface as rest errors and are
// swallowed.
func (a *Announcer) grantRoles(ctx context.Context, guildID, userID snowflake.ID, kinds []tracker.Kind) {
	var held []snowflake.ID

	member, err := a.client.Rest().GetMember(guildID, userID, rest.WithCtx(ctx))
	if err != nil {
		a.logger.Debug("Failed to fetch member for role grant",
			zap.Uint64("guild_id", uint64(guildID)),
			zap.Uint64("user_id", uint64(userID)),
			zap.Error(err))
	} else {
		held = member.RoleIDs
	}

	for _, kind := range kinds {
		roleID := a.settings.RoleFor(guildID, kind)
		if roleID == 0 || slices.Contains(held, roleID) {
			continue
		}

		if err := a.client.Rest().AddMemberRole(guildID, userID, roleID, rest.WithCtx(ctx)); err != nil {
			a.logger.Warn("Failed to grant achievement role",
				zap.Uint64("guild_id", uint64(guildID)),
				zap.Uint64("user_id", uint64(userID)),
				zap.Uint64("role_id", uint64(roleID)),
				zap.String("kind", string(kind)),
				zap.Error(err))
		}
	}
}
