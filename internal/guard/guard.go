// Package guard evaluates the ordered access and shape checks that gate a command.
package guard

import (
	"context"

	"github.com/keshon/commandbot/internal/command"
)

// Predicates is the capability set the chain consults. Implementations live with
// the transport (Discord state lookups, console flags).
type Predicates interface {
	IsAdministrator(ctx context.Context, ev *command.Event) bool
	HasPermissions(ctx context.Context, ev *command.Event, perms []command.Permission) bool
	FromGuild(ev *command.Event) bool
	FromDM(ev *command.Event) bool
	IsNSFWChannel(ctx context.Context, ev *command.Event) bool
}

// Kind identifies which guard stopped an invocation.
type Kind int

const (
	Pass Kind = iota
	AdminOnly
	MissingPermission
	GuildOnly
	DMOnly
	NSFWOnly
	MissingArgs
)

var kindNames = map[Kind]string{
	Pass:              "pass",
	AdminOnly:         "admin_only",
	MissingPermission: "need_permission",
	GuildOnly:         "guild_only",
	DMOnly:            "dm_only",
	NSFWOnly:          "nsfw_only",
	MissingArgs:       "args_needed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// MessageKey returns the message kind replied for a failure of this guard.
func (k Kind) MessageKey() string {
	switch k {
	case AdminOnly:
		return "dispatch.restricted"
	case MissingPermission:
		return "dispatch.missing_permission"
	case GuildOnly:
		return "dispatch.guild_only"
	case DMOnly:
		return "dispatch.dm_only"
	case NSFWOnly:
		return "dispatch.nsfw_only"
	case MissingArgs:
		return "dispatch.missing_args"
	}
	return ""
}

// Guard is one check of the chain. Fails reports whether the invocation must stop.
type Guard struct {
	Kind  Kind
	Fails func(ctx context.Context, c *command.Command, inv *command.Invocation, p Predicates) bool
}

// Chain is an ordered list of guards.
type Chain []Guard

// DefaultChain returns the guards in their fixed evaluation order.
func DefaultChain() Chain {
	return Chain{
		adminOnly(),
		needPermission(),
		guildOnly(),
		dmOnly(),
		nsfwOnly(),
		argsNeeded(),
	}
}

// Evaluate runs the guards in order and returns the kind of the first one that fails,
// or Pass. Guards after the first failure are not evaluated.
func (ch Chain) Evaluate(ctx context.Context, c *command.Command, inv *command.Invocation, p Predicates) Kind {
	for _, g := range ch {
		if g.Fails(ctx, c, inv, p) {
			return g.Kind
		}
	}
	return Pass
}
