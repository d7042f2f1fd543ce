// /internal/commands/about.go
package commands

import (
	"context"

	"github.com/keshon/commandbot/internal/command"
)

func aboutHandler(d *Deps) command.Handler {
	return func(ctx context.Context, inv *command.Invocation) error {
		return inv.Reply(ctx, inv.T("commands.about.text", d.AppName, d.Version, inv.Registry.Len()))
	}
}
