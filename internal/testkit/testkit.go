// Package testkit provides in-memory transport and predicate fakes for tests.
package testkit

import (
	"context"
	"sync"

	"github.com/keshon/commandbot/internal/command"
)

// Message is one outbound message captured by Transport.
type Message struct {
	Reply     bool
	ChannelID string
	Content   string
	View      *command.View
}

// Transport records everything sent through it.
type Transport struct {
	mu       sync.Mutex
	messages []Message

	// Err, when set, is returned by every send.
	Err error
}

func (t *Transport) Reply(_ context.Context, ev *command.Event, content string) error {
	t.record(Message{Reply: true, ChannelID: ev.ChannelID, Content: content})
	return t.Err
}

func (t *Transport) Send(_ context.Context, channelID, content string) error {
	t.record(Message{ChannelID: channelID, Content: content})
	return t.Err
}

func (t *Transport) SendView(_ context.Context, ev *command.Event, view *command.View) error {
	t.record(Message{ChannelID: ev.ChannelID, View: view})
	return t.Err
}

// Messages returns a copy of the captured messages.
func (t *Transport) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Last returns the most recent message, or the zero Message.
func (t *Transport) Last() Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.messages) == 0 {
		return Message{}
	}
	return t.messages[len(t.messages)-1]
}

// Reset drops captured messages.
func (t *Transport) Reset() {
	t.mu.Lock()
	t.messages = nil
	t.mu.Unlock()
}

func (t *Transport) record(m Message) {
	t.mu.Lock()
	t.messages = append(t.messages, m)
	t.mu.Unlock()
}

// Predicates answers guard lookups from fixed flags and counts every call.
type Predicates struct {
	Admin       bool
	Permissions map[command.Permission]bool
	NSFW        bool

	mu    sync.Mutex
	calls map[string]int
}

func (p *Predicates) IsAdministrator(context.Context, *command.Event) bool {
	p.count("admin")
	return p.Admin
}

func (p *Predicates) HasPermissions(_ context.Context, _ *command.Event, perms []command.Permission) bool {
	p.count("permissions")
	for _, perm := range perms {
		if !p.Permissions[perm] {
			return false
		}
	}
	return true
}

func (p *Predicates) FromGuild(ev *command.Event) bool {
	p.count("guild")
	return ev.GuildID != ""
}

func (p *Predicates) FromDM(ev *command.Event) bool {
	p.count("dm")
	return ev.GuildID == ""
}

func (p *Predicates) IsNSFWChannel(context.Context, *command.Event) bool {
	p.count("nsfw")
	return p.NSFW
}

// Calls returns how many times the named predicate was consulted.
func (p *Predicates) Calls(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[name]
}

func (p *Predicates) count(name string) {
	p.mu.Lock()
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[name]++
	p.mu.Unlock()
}

// GuildEvent returns a human message event from a guild channel.
func GuildEvent(content string) *command.Event {
	return &command.Event{
		ID:         "m1",
		Content:    content,
		AuthorID:   "100",
		AuthorName: "tester",
		ChannelID:  "c1",
		GuildID:    "g1",
	}
}

// DMEvent returns a human direct-message event.
func DMEvent(content string) *command.Event {
	ev := GuildEvent(content)
	ev.GuildID = ""
	ev.ChannelID = "dm1"
	return ev
}
