package guard

import (
	"context"

	"github.com/keshon/commandbot/internal/command"
)

func adminOnly() Guard {
	return Guard{
		Kind: AdminOnly,
		Fails: func(ctx context.Context, c *command.Command, inv *command.Invocation, p Predicates) bool {
			return c.Guards.AdminOnly && !p.IsAdministrator(ctx, inv.Event)
		},
	}
}

// needPermission requires every listed permission.
func needPermission() Guard {
	return Guard{
		Kind: MissingPermission,
		Fails: func(ctx context.Context, c *command.Command, inv *command.Invocation, p Predicates) bool {
			return len(c.Guards.NeedPermission) > 0 && !p.HasPermissions(ctx, inv.Event, c.Guards.NeedPermission)
		},
	}
}

func guildOnly() Guard {
	return Guard{
		Kind: GuildOnly,
		Fails: func(_ context.Context, c *command.Command, inv *command.Invocation, p Predicates) bool {
			return c.Guards.GuildOnly && !p.FromGuild(inv.Event)
		},
	}
}

func dmOnly() Guard {
	return Guard{
		Kind: DMOnly,
		Fails: func(_ context.Context, c *command.Command, inv *command.Invocation, p Predicates) bool {
			return c.Guards.DMOnly && !p.FromDM(inv.Event)
		},
	}
}

func nsfwOnly() Guard {
	return Guard{
		Kind: NSFWOnly,
		Fails: func(ctx context.Context, c *command.Command, inv *command.Invocation, p Predicates) bool {
			return c.Guards.NSFWOnly && !p.IsNSFWChannel(ctx, inv.Event)
		},
	}
}

func argsNeeded() Guard {
	return Guard{
		Kind: MissingArgs,
		Fails: func(_ context.Context, c *command.Command, inv *command.Invocation, _ Predicates) bool {
			return c.Guards.ArgsNeeded && CountArgs(inv.Args) < minArgs(c)
		},
	}
}

// CountArgs returns the number of argument tokens.
func CountArgs(args []string) int { return len(args) }

// minArgs treats args_needed without a minimum as "at least one".
func minArgs(c *command.Command) int {
	if c.Guards.ArgsMinLength < 1 {
		return 1
	}
	return c.Guards.ArgsMinLength
}
