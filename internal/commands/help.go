package commands

import (
	"context"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/menu"
)

// helpHandler sends the command index, or the detail of the command named in the first argument.
func helpHandler() command.Handler {
	return func(ctx context.Context, inv *command.Invocation) error {
		value := menu.ValueAll
		if len(inv.Args) > 0 {
			value = inv.Args[0]
		}
		return inv.Transport.SendView(ctx, inv.Event, menu.Render(inv.Registry, inv, value))
	}
}
