package command

import (
	"context"
	"fmt"
	"strings"
)

// Event is the raw inbound chat event in transport-neutral form.
// GuildID is empty for direct messages.
type Event struct {
	ID         string
	Content    string
	AuthorID   string
	AuthorName string
	Bot        bool
	ChannelID  string
	GuildID    string

	// Raw carries the adapter's original event (e.g. *discordgo.MessageCreate).
	Raw any
}

// Mention returns a string that addresses the author in a reply.
func (e *Event) Mention() string {
	if e.AuthorID == "" {
		return e.AuthorName
	}
	return fmt.Sprintf("<@%s>", e.AuthorID)
}

// Localizer renders message kinds for a locale.
type Localizer interface {
	Text(locale, key string, args ...any) string
}

// Transport sends replies back over the chat connection.
type Transport interface {
	Reply(ctx context.Context, ev *Event, content string) error
	Send(ctx context.Context, channelID, content string) error
	SendView(ctx context.Context, ev *Event, view *View) error
}

// Invocation is the ephemeral per-event context handed to guards and handlers.
type Invocation struct {
	ID       string
	Event    *Event
	Prefix   string
	Name     string
	Args     []string
	Locale   string
	Registry *Registry
	// Command is the resolved command; nil for menu interactions.
	Command *Command

	Transport Transport
	Texts     Localizer
}

// T renders a message kind in the invocation's locale. Without a localiser the key is
// returned verbatim, followed by the arguments.
func (inv *Invocation) T(key string, args ...any) string {
	if inv.Texts == nil {
		if len(args) == 0 {
			return key
		}
		return key + " " + strings.TrimSuffix(fmt.Sprintln(args...), "\n")
	}
	return inv.Texts.Text(inv.Locale, key, args...)
}

// Reply answers the invoking message.
func (inv *Invocation) Reply(ctx context.Context, content string) error {
	return inv.Transport.Reply(ctx, inv.Event, content)
}

// Send posts to the invoking channel without replying to the message.
func (inv *Invocation) Send(ctx context.Context, content string) error {
	return inv.Transport.Send(ctx, inv.Event.ChannelID, content)
}
