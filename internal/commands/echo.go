package commands

import (
	"context"
	"strings"

	"github.com/keshon/commandbot/internal/command"
)

func echoHandler() command.Handler {
	return func(ctx context.Context, inv *command.Invocation) error {
		return inv.Send(ctx, strings.Join(inv.Args, " "))
	}
}
