package bot

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

// MemberResolver resolves member join dates over the rest API. Lookups fail
// closed: a fetch error reports the member as unknown and the tracker falls
// back to the current time.
type MemberResolver struct {
	client bot.Client
	logger *zap.Logger
}

// NewMemberResolver creates a resolver over the given client.
func NewMemberResolver(client bot.Client, logger *zap.Logger) *MemberResolver {
	return &MemberResolver{
		client: client,
		logger: logger,
	}
}

// JoinDate implements tracker.MemberResolver.
func (r *MemberResolver) JoinDate(ctx context.Context, guildID, userID snowflake.ID) (time.Time, bool) {
	if member, ok := r.client.Caches().Member(guildID, userID); ok {
		return member.JoinedAt, true
	}

	member, err := r.client.Rest().GetMember(guildID, userID, rest.WithCtx(ctx))
	if err != nil {
		r.logger.Debug("Failed to resolve member join date",
			zap.Uint64("guild_id", uint64(guildID)),
			zap.Uint64("user_id", uint64(userID)),
			zap.Error(err))

		return time.Time{}, false
	}

	return member.JoinedAt, true
}
