package dispatch

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/keshon/commandbot/internal/command"
)

// GuildSettings is the per-guild settings store (see storage.Storage).
type GuildSettings interface {
	Prefix(guildID string) (string, error)
	Locale(guildID string) (string, error)
}

// Settings resolves prefix and locale from a guild's stored settings, falling back to
// the configured defaults. Stored prefixes are only honoured when AllowGuildPrefix is set.
type Settings struct {
	Store            GuildSettings
	DefaultPrefix    string
	AllowGuildPrefix bool
	DefaultLocale    string
	Log              zerolog.Logger
}

func (s *Settings) Prefix(_ context.Context, ev *command.Event) string {
	if !s.AllowGuildPrefix || s.Store == nil || ev.GuildID == "" {
		return s.DefaultPrefix
	}
	prefix, err := s.Store.Prefix(ev.GuildID)
	if err != nil {
		s.Log.Warn().Err(err).Str("guild", ev.GuildID).Msg("failed to read guild prefix")
		return s.DefaultPrefix
	}
	if prefix == "" {
		return s.DefaultPrefix
	}
	return prefix
}

func (s *Settings) Locale(_ context.Context, ev *command.Event) string {
	if s.Store == nil || ev.GuildID == "" {
		return s.DefaultLocale
	}
	locale, err := s.Store.Locale(ev.GuildID)
	if err != nil {
		s.Log.Warn().Err(err).Str("guild", ev.GuildID).Msg("failed to read guild locale")
		return s.DefaultLocale
	}
	if locale == "" {
		return s.DefaultLocale
	}
	return locale
}
