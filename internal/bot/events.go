package bot

import (
	"context"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/milestonebot/milestone/internal/tracker"
)

func (b *Bot) onMessageCreate(event *events.GuildMessageCreate) {
	msg := event.Message
	if msg.Author.Bot {
		return
	}

	mentioned := make([]snowflake.ID, 0, len(msg.Mentions))
	for _, user := range msg.Mentions {
		if user.Bot {
			continue
		}

		mentioned = append(mentioned, user.ID)
	}

	b.tracker.HandleMessage(context.Background(), tracker.MessageEvent{
		GuildID:          event.GuildID,
		AuthorID:         msg.Author.ID,
		ChannelID:        msg.ChannelID,
		LocalHour:        time.Now().Hour(),
		MentionedUserIDs: mentioned,
		HasImage:         hasImageContent(msg),
		IsCommand:        strings.HasPrefix(msg.Content, b.prefix),
	})
}

func (b *Bot) onReactionAdd(event *events.GuildMessageReactionAdd) {
	if event.Member.User.Bot {
		return
	}

	// The author only earns reactionsReceived when the gateway payload
	// identifies them and they are not a bot. Resolution is best-effort.
	var authorID snowflake.ID

	if event.MessageAuthorID != nil {
		authorID = *event.MessageAuthorID
		if member, ok := b.client.Caches().Member(event.GuildID, authorID); ok && member.User.Bot {
			authorID = 0
		}
	}

	b.tracker.HandleReaction(context.Background(), tracker.ReactionEvent{
		GuildID:         event.GuildID,
		ReactorID:       event.UserID,
		MessageAuthorID: authorID,
		ChannelID:       event.ChannelID,
	})
}

func (b *Bot) onVoiceJoin(event *events.GuildVoiceJoin) {
	if event.Member.User.Bot {
		return
	}

	b.handleVoice(event.VoiceState.GuildID, event.VoiceState.UserID, 0, channelOrZero(event.VoiceState.ChannelID))
}

func (b *Bot) onVoiceMove(event *events.GuildVoiceMove) {
	if event.Member.User.Bot {
		return
	}

	b.handleVoice(event.VoiceState.GuildID, event.VoiceState.UserID,
		channelOrZero(event.OldVoiceState.ChannelID), channelOrZero(event.VoiceState.ChannelID))
}

func (b *Bot) onVoiceLeave(event *events.GuildVoiceLeave) {
	if event.Member.User.Bot {
		return
	}

	b.handleVoice(event.VoiceState.GuildID, event.VoiceState.UserID, channelOrZero(event.OldVoiceState.ChannelID), 0)
}

func (b *Bot) handleVoice(guildID, userID, oldChannel, newChannel snowflake.ID) {
	ev := tracker.VoiceEvent{
		GuildID:      guildID,
		UserID:       userID,
		OldChannelID: oldChannel,
		NewChannelID: newChannel,
		AFKChannelID: b.afkChannel(guildID),
	}

	if newChannel != 0 {
		ev.JoinOccupancy = b.channelOccupancy(guildID, newChannel)
	}

	b.tracker.HandleVoice(context.Background(), ev)
}

// channelOccupancy counts cached voice states for the channel. The joining
// user's own state is already cached when the event fires, so the count
// includes them.
func (b *Bot) channelOccupancy(guildID, channelID snowflake.ID) int {
	count := 0

	b.client.Caches().VoiceStatesForEach(guildID, func(state discord.VoiceState) {
		if state.ChannelID != nil && *state.ChannelID == channelID {
			count++
		}
	})

	return count
}

// afkChannel returns the guild's AFK channel, zero when the guild is not
// cached or has none.
func (b *Bot) afkChannel(guildID snowflake.ID) snowflake.ID {
	guild, ok := b.client.Caches().Guild(guildID)
	if !ok {
		return 0
	}

	return channelOrZero(guild.AfkChannelID)
}

func channelOrZero(channelID *snowflake.ID) snowflake.ID {
	if channelID == nil {
		return 0
	}

	return *channelID
}

// hasImageContent reports whether the message carries an image attachment
// or an embed with an image.
func hasImageContent(msg discord.Message) bool {
	for _, attachment := range msg.Attachments {
		if attachment.ContentType != nil && strings.HasPrefix(*attachment.ContentType, "image/") {
			return true
		}
	}

	for _, embed := range msg.Embeds {
		if embed.Image != nil {
			return true
		}
	}

	return false
}
