package commands

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/keshon/commandbot/internal/command"
)

const maxPrefixLength = 5

func prefixHandler(d *Deps) command.Handler {
	return func(ctx context.Context, inv *command.Invocation) error {
		if !d.AllowPrefixChange {
			return inv.Reply(ctx, inv.T("commands.prefix.disabled"))
		}
		if len(inv.Args) != 1 || utf8.RuneCountInString(inv.Args[0]) > maxPrefixLength {
			return inv.Reply(ctx, inv.T("commands.prefix.invalid"))
		}

		prefix := inv.Args[0]
		if err := d.Settings.SetPrefix(inv.Event.GuildID, prefix); err != nil {
			return err
		}
		d.Log.Info().Str("guild", inv.Event.GuildID).Str("prefix", prefix).Msg("prefix changed")
		return inv.Reply(ctx, inv.T("commands.prefix.updated", prefix))
	}
}

func langHandler(d *Deps) command.Handler {
	return func(ctx context.Context, inv *command.Invocation) error {
		requested := ""
		if len(inv.Args) > 0 {
			requested = inv.Args[0]
		}
		locale, ok := d.Languages.Supported(requested)
		if !ok {
			return inv.Reply(ctx, inv.T("commands.lang.unsupported", requested, strings.Join(d.Languages.Locales(), ", ")))
		}

		if err := d.Settings.SetLocale(inv.Event.GuildID, locale); err != nil {
			return err
		}
		d.Log.Info().Str("guild", inv.Event.GuildID).Str("locale", locale).Msg("locale changed")

		// the confirmation is already in the new language
		inv.Locale = locale
		return inv.Reply(ctx, inv.T("commands.lang.updated", locale))
	}
}
