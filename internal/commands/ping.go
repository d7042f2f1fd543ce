package commands

import (
	"context"

	"github.com/keshon/commandbot/internal/command"
)

func pingHandler() command.Handler {
	return func(ctx context.Context, inv *command.Invocation) error {
		return inv.Reply(ctx, inv.T("commands.ping.reply", inv.Event.Mention()))
	}
}
