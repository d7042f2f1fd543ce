package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/commandbot/internal/command"
)

// permissionBits maps permission kinds to Discord permission flags.
var permissionBits = map[command.Permission]int64{
	command.PermAdministrator:   discordgo.PermissionAdministrator,
	command.PermManageGuild:     discordgo.PermissionManageServer,
	command.PermManageChannels:  discordgo.PermissionManageChannels,
	command.PermManageMessages:  discordgo.PermissionManageMessages,
	command.PermManageRoles:     discordgo.PermissionManageRoles,
	command.PermKickMembers:     discordgo.PermissionKickMembers,
	command.PermBanMembers:      discordgo.PermissionBanMembers,
	command.PermModerateMembers: discordgo.PermissionModerateMembers,
	command.PermMentionEveryone: discordgo.PermissionMentionEveryone,
	command.PermSendMessages:    discordgo.PermissionSendMessages,
	command.PermEmbedLinks:      discordgo.PermissionEmbedLinks,
	command.PermAttachFiles:     discordgo.PermissionAttachFiles,
}

// hasAll reports whether granted covers every permission. Administrator implies all.
func hasAll(granted int64, perms []command.Permission) bool {
	if granted&discordgo.PermissionAdministrator != 0 {
		return true
	}
	for _, p := range perms {
		bit, ok := permissionBits[p]
		if !ok || granted&bit != bit {
			return false
		}
	}
	return true
}

// Predicates answers guard lookups from the Discord session.
type Predicates struct {
	s       *discordgo.Session
	isOwner func(userID string) bool
}

func NewPredicates(s *discordgo.Session, isOwner func(string) bool) *Predicates {
	if isOwner == nil {
		isOwner = func(string) bool { return false }
	}
	return &Predicates{s: s, isOwner: isOwner}
}

// IsAdministrator is true for configured owners, the guild owner and members whose
// roles grant Administrator. Outside guilds only owners count.
func (p *Predicates) IsAdministrator(_ context.Context, ev *command.Event) bool {
	if p.isOwner(ev.AuthorID) {
		return true
	}
	if ev.GuildID == "" {
		return false
	}

	guild, err := p.s.State.Guild(ev.GuildID)
	if err != nil || guild == nil {
		guild, err = p.s.Guild(ev.GuildID)
		if err != nil || guild == nil {
			return false
		}
	}
	if guild.OwnerID == ev.AuthorID {
		return true
	}

	perms, err := p.s.UserChannelPermissions(ev.AuthorID, ev.ChannelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}

// HasPermissions checks the author's effective permissions in the channel.
func (p *Predicates) HasPermissions(ctx context.Context, ev *command.Event, perms []command.Permission) bool {
	if len(perms) == 0 {
		return true
	}
	if ev.GuildID == "" {
		return false
	}
	if p.IsAdministrator(ctx, ev) {
		return true
	}
	granted, err := p.s.UserChannelPermissions(ev.AuthorID, ev.ChannelID)
	if err != nil {
		return false
	}
	return hasAll(granted, perms)
}

func (p *Predicates) FromGuild(ev *command.Event) bool { return ev.GuildID != "" }

func (p *Predicates) FromDM(ev *command.Event) bool { return ev.GuildID == "" }

// IsNSFWChannel reads the channel's age-restricted flag.
func (p *Predicates) IsNSFWChannel(_ context.Context, ev *command.Event) bool {
	channel, err := p.s.State.Channel(ev.ChannelID)
	if err != nil || channel == nil {
		channel, err = p.s.Channel(ev.ChannelID)
		if err != nil || channel == nil {
			return false
		}
	}
	return channel.NSFW
}
