package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/reload"
)

func reloadHandler(d *Deps) command.Handler {
	return func(ctx context.Context, inv *command.Invocation) error {
		if len(inv.Args) == 0 {
			return errors.New("reload: no command name given")
		}
		token := strings.ToLower(inv.Args[0])

		res, err := d.Reloader.Reload(ctx, token)
		var unknown *reload.UnknownCommandError
		var failed *reload.Error
		switch {
		case errors.As(err, &unknown):
			return inv.Send(ctx, inv.T("commands.reload.invalid_command", unknown.Token, inv.Event.Mention()))
		case errors.As(err, &failed):
			d.Log.Error().Err(failed.Err).Str("command", failed.Name).Msg("reload failed")
			return inv.Send(ctx, inv.T("commands.reload.fail", failed.Name, failed.Err.Error()))
		case err != nil:
			return err
		}
		return inv.Send(ctx, inv.T("commands.reload.success", res.Current.Name))
	}
}
