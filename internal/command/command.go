// Package command holds the transport-agnostic command core: the Command record,
// the per-event Invocation context and the Registry that indexes commands by name,
// alias and category. How events reach a command (Discord, console) is defined by
// adapters that build Invocations and call into the dispatch pipeline.
package command

import (
	"context"
	"strings"
)

// Permission names a platform permission a command can require (e.g. "MANAGE_MESSAGES").
type Permission string

// Guards lists the checks the guard chain runs before a command is invoked.
// Every field defaults to its zero value, so an unset guard and a false guard are the same.
type Guards struct {
	AdminOnly      bool
	NeedPermission []Permission
	GuildOnly      bool
	DMOnly         bool
	NSFWOnly       bool
	ArgsNeeded     bool
	ArgsMinLength  int
}

// Handler runs a command. Returned errors are reported as execution failures.
type Handler func(ctx context.Context, inv *Invocation) error

// Command is a named unit of behavior. A Command is never mutated after it is built;
// reloading produces a new value that takes the old one's slot in the Registry.
type Command struct {
	Name     string
	Aliases  []string
	Category string

	// Description and UsageKey are message keys; text missing from the catalog is shown verbatim.
	Description string
	UsageKey    string

	Guards   Guards
	Disabled bool
	Handler  Handler
}

// Usage renders the command's argument usage for the invocation's locale.
// Empty when the command defines none.
func (c *Command) Usage(inv *Invocation) string {
	if c.UsageKey == "" {
		return ""
	}
	if inv == nil {
		return c.UsageKey
	}
	return inv.T(c.UsageKey)
}

// Describe renders the command's description for the invocation's locale.
func (c *Command) Describe(inv *Invocation) string {
	if c.Description == "" {
		return ""
	}
	if inv == nil {
		return c.Description
	}
	return inv.T(c.Description)
}

// keys returns the lower-cased name followed by every lower-cased alias.
func (c *Command) keys() []string {
	out := make([]string, 0, len(c.Aliases)+1)
	out = append(out, normalize(c.Name))
	for _, a := range c.Aliases {
		out = append(out, normalize(a))
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Permission kinds a definition may require.
const (
	PermAdministrator   Permission = "ADMINISTRATOR"
	PermManageGuild     Permission = "MANAGE_GUILD"
	PermManageChannels  Permission = "MANAGE_CHANNELS"
	PermManageMessages  Permission = "MANAGE_MESSAGES"
	PermManageRoles     Permission = "MANAGE_ROLES"
	PermKickMembers     Permission = "KICK_MEMBERS"
	PermBanMembers      Permission = "BAN_MEMBERS"
	PermModerateMembers Permission = "MODERATE_MEMBERS"
	PermMentionEveryone Permission = "MENTION_EVERYONE"
	PermSendMessages    Permission = "SEND_MESSAGES"
	PermEmbedLinks      Permission = "EMBED_LINKS"
	PermAttachFiles     Permission = "ATTACH_FILES"
)

// Permissions lists every known permission kind.
var Permissions = []Permission{
	PermAdministrator,
	PermManageGuild,
	PermManageChannels,
	PermManageMessages,
	PermManageRoles,
	PermKickMembers,
	PermBanMembers,
	PermModerateMembers,
	PermMentionEveryone,
	PermSendMessages,
	PermEmbedLinks,
	PermAttachFiles,
}
