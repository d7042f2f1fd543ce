package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/storage"
)

// HistoryStore keeps the per-guild command history.
type HistoryStore interface {
	AppendCommandToHistory(guildID string, rec storage.CommandHistoryRecord) error
}

// WithHistory records every guarded-through invocation before the handler runs.
// Store failures are logged and never block the command.
func WithHistory(store HistoryStore, log zerolog.Logger) command.Middleware {
	return func(next command.Handler) command.Handler {
		return func(ctx context.Context, inv *command.Invocation) error {
			name := inv.Name
			if inv.Command != nil {
				name = inv.Command.Name
			}
			rec := storage.CommandHistoryRecord{
				ChannelID: inv.Event.ChannelID,
				UserID:    inv.Event.AuthorID,
				Username:  inv.Event.AuthorName,
				Command:   name,
				Param:     strings.Join(inv.Args, " "),
				Datetime:  time.Now(),
			}
			if err := store.AppendCommandToHistory(inv.Event.GuildID, rec); err != nil {
				log.Warn().Err(err).Str("command", name).Msg("failed to record command history")
			}
			return next(ctx, inv)
		}
	}
}

// WithTiming logs how long each handler took at debug level.
func WithTiming(log zerolog.Logger) command.Middleware {
	return func(next command.Handler) command.Handler {
		return func(ctx context.Context, inv *command.Invocation) error {
			start := time.Now()
			err := next(ctx, inv)
			log.Debug().
				Str("invocation", inv.ID).
				Str("command", inv.Name).
				Dur("took", time.Since(start)).
				Bool("ok", err == nil).
				Msg("handler finished")
			return err
		}
	}
}
