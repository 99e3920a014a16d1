// Package settings owns per-guild configuration: purpose channels, the
// achievement-kind to role mapping and free-form guild lists. The store is
// mutated by administrative collaborators and read by the announcer.
package settings

import (
	"strconv"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/milestonebot/milestone/internal/storage"
	"github.com/milestonebot/milestone/internal/tracker"
)

// ChannelPurpose keys the per-guild channel map.
type ChannelPurpose string

const (
	PurposeAchievements ChannelPurpose = "achievements"
	PurposeNickLogs     ChannelPurpose = "nicklogs"
	PurposeReports      ChannelPurpose = "reports"
)

// GuildSettings is one guild's configuration.
type GuildSettings struct {
	Channels         map[ChannelPurpose]snowflake.ID `json:"channels"`
	AchievementRoles map[tracker.Kind]snowflake.ID   `json:"achievement_roles"`
	SocialLinks      []string                        `json:"social_links"`
}

func newGuildSettings() *GuildSettings {
	return &GuildSettings{
		Channels:         make(map[ChannelPurpose]snowflake.ID),
		AchievementRoles: make(map[tracker.Kind]snowflake.ID),
	}
}

// Manager holds every guild's settings in memory and rewrites the snapshot
// wholesale on each change.
type Manager struct {
	snap   *storage.Snapshot[map[snowflake.ID]*GuildSettings]
	logger *zap.Logger

	mu     sync.RWMutex
	guilds map[snowflake.ID]*GuildSettings
}

// NewManager loads the settings snapshot from path. A missing or malformed
// snapshot starts the manager empty with a warning.
func NewManager(path string, logger *zap.Logger) *Manager {
	snap := storage.NewSnapshot[map[snowflake.ID]*GuildSettings](path)

	guilds, found, err := snap.Load()
	if err != nil {
		logger.Warn("Failed to load settings snapshot, starting empty", zap.Error(err))
	}

	if !found || guilds == nil {
		guilds = make(map[snowflake.ID]*GuildSettings)
	}

	for _, guild := range guilds {
		if guild.Channels == nil {
			guild.Channels = make(map[ChannelPurpose]snowflake.ID)
		}

		if guild.AchievementRoles == nil {
			guild.AchievementRoles = make(map[tracker.Kind]snowflake.ID)
		}
	}

	return &Manager{
		snap:   snap,
		logger: logger,
		guilds: guilds,
	}
}

// ensure returns the guild's settings, creating them on first use. Callers
// must hold the write lock.
func (m *Manager) ensure(guildID snowflake.ID) *GuildSettings {
	guild, ok := m.guilds[guildID]
	if !ok {
		guild = newGuildSettings()
		m.guilds[guildID] = guild
	}

	return guild
}

// flush rewrites the snapshot; failures are logged and the in-memory state
// stays authoritative. Callers must hold the write lock.
func (m *Manager) flush() {
	if err := m.snap.Save(m.guilds); err != nil {
		m.logger.Warn("Failed to persist settings snapshot", zap.Error(err))
	}
}

// Channel returns the channel configured for a purpose, zero if unset.
func (m *Manager) Channel(guildID snowflake.ID, purpose ChannelPurpose) snowflake.ID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	guild, ok := m.guilds[guildID]
	if !ok {
		return 0
	}

	return guild.Channels[purpose]
}

// SetChannel maps a purpose to a channel. A zero channel clears the
// mapping.
func (m *Manager) SetChannel(guildID snowflake.ID, purpose ChannelPurpose, channelID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	guild := m.ensure(guildID)
	if channelID == 0 {
		delete(guild.Channels, purpose)
	} else {
		guild.Channels[purpose] = channelID
	}

	m.flush()
}

// Channels returns a copy of the guild's purpose-channel map.
func (m *Manager) Channels(guildID snowflake.ID) map[ChannelPurpose]snowflake.ID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	channels := make(map[ChannelPurpose]snowflake.ID)

	if guild, ok := m.guilds[guildID]; ok {
		for purpose, channelID := range guild.Channels {
			channels[purpose] = channelID
		}
	}

	return channels
}

// RoleFor returns the role mapped to an achievement kind, zero if none.
func (m *Manager) RoleFor(guildID snowflake.ID, kind tracker.Kind) snowflake.ID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	guild, ok := m.guilds[guildID]
	if !ok {
		return 0
	}

	return guild.AchievementRoles[kind]
}

// SetRole maps an achievement kind to a role. A zero role clears the
// mapping.
func (m *Manager) SetRole(guildID snowflake.ID, kind tracker.Kind, roleID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	guild := m.ensure(guildID)
	if roleID == 0 {
		delete(guild.AchievementRoles, kind)
	} else {
		guild.AchievementRoles[kind] = roleID
	}

	m.flush()
}

// ClearRoles removes every achievement role mapping for the guild.
func (m *Manager) ClearRoles(guildID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	guild := m.ensure(guildID)
	guild.AchievementRoles = make(map[tracker.Kind]snowflake.ID)

	m.flush()
}

// Roles returns a copy of the guild's achievement role map.
func (m *Manager) Roles(guildID snowflake.ID) map[tracker.Kind]snowflake.ID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	roles := make(map[tracker.Kind]snowflake.ID)

	if guild, ok := m.guilds[guildID]; ok {
		for kind, roleID := range guild.AchievementRoles {
			roles[kind] = roleID
		}
	}

	return roles
}

// SocialLinks returns the guild's social links in insertion order.
func (m *Manager) SocialLinks(guildID snowflake.ID) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	guild, ok := m.guilds[guildID]
	if !ok {
		return nil
	}

	links := make([]string, len(guild.SocialLinks))
	copy(links, guild.SocialLinks)

	return links
}

// AddSocialLink appends a link, rejecting duplicates.
func (m *Manager) AddSocialLink(guildID snowflake.ID, url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	guild := m.ensure(guildID)
	for _, existing := range guild.SocialLinks {
		if existing == url {
			return false
		}
	}

	guild.SocialLinks = append(guild.SocialLinks, url)
	m.flush()

	return true
}

// RemoveSocialLink removes a link by exact URL or by its 1-based position
// in the list, returning the removed link.
func (m *Manager) RemoveSocialLink(guildID snowflake.ID, ref string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	guild, ok := m.guilds[guildID]
	if !ok {
		return "", false
	}

	index := -1

	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(guild.SocialLinks) {
			index = n - 1
		}
	} else {
		for i, existing := range guild.SocialLinks {
			if existing == ref {
				index = i
				break
			}
		}
	}

	if index < 0 {
		return "", false
	}

	removed := guild.SocialLinks[index]
	guild.SocialLinks = append(guild.SocialLinks[:index], guild.SocialLinks[index+1:]...)
	m.flush()

	return removed, true
}
