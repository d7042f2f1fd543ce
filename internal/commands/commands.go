// /internal/commands/commands.go
package commands

import (
	"context"
	"embed"
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/reload"
	"github.com/keshon/commandbot/internal/source"
	"github.com/keshon/commandbot/internal/storage"
)

//go:embed definitions
var definitions embed.FS

// Definitions returns the built-in command definitions, rooted at the category folders.
func Definitions() fs.FS {
	sub, err := fs.Sub(definitions, "definitions")
	if err != nil {
		panic(err)
	}
	return sub
}

// Reloader swaps a registered command for a freshly loaded one.
type Reloader interface {
	Reload(ctx context.Context, token string) (*reload.Result, error)
}

// SettingsStore persists per-guild settings.
type SettingsStore interface {
	SetPrefix(guildID, prefix string) error
	SetLocale(guildID, locale string) error
}

// HistoryReader returns the recorded command history of a guild.
type HistoryReader interface {
	FetchCommandHistory(guildID string) ([]storage.CommandHistoryRecord, error)
}

// Languages reports which locales replies can be rendered in.
type Languages interface {
	Supported(locale string) (string, bool)
	Locales() []string
}

// Deps is shared by every command handler. Build it once at startup.
type Deps struct {
	Reloader          Reloader
	Settings          SettingsStore
	History           HistoryReader
	Languages         Languages
	AllowPrefixChange bool

	AppName string
	Version string

	Log zerolog.Logger
}

// Table lists every built-in command. Handlers are created by the entry factories so a
// reload always gets a fresh one.
func Table(d *Deps) []source.Entry {
	return []source.Entry{
		{Category: "core", Name: "help", New: func() command.Handler { return helpHandler() }},
		{Category: "core", Name: "ping", New: func() command.Handler { return pingHandler() }},
		{Category: "core", Name: "about", New: func() command.Handler { return aboutHandler(d) }},

		{Category: "admin", Name: "reload", New: func() command.Handler { return reloadHandler(d) }},
		{Category: "admin", Name: "prefix", New: func() command.Handler { return prefixHandler(d) }},
		{Category: "admin", Name: "lang", New: func() command.Handler { return langHandler(d) }},
		{Category: "admin", Name: "history", New: func() command.Handler { return historyHandler(d) }},

		{Category: "fun", Name: "echo", New: func() command.Handler { return echoHandler() }},
		{Category: "fun", Name: "roll", New: func() command.Handler { return rollHandler(nil) }},
	}
}
