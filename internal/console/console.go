// Package console runs the command pipeline over a line-based terminal. Each input line
// is one message event; `select <value>` drives the help menu of the last view shown.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/dispatch"
)

// Handler is the part of the dispatch pipeline the console feeds.
type Handler interface {
	Handle(ctx context.Context, ev *command.Event) dispatch.Outcome
	Menu(ctx context.Context, ev *command.Event, menuID, value string) (*command.View, bool)
}

// Identity describes who the console user is pretending to be.
type Identity struct {
	UserID    string
	Username  string
	ChannelID string
	// GuildID empty makes every line a direct message.
	GuildID string
}

// Console is both the transport replies are written to and the reader of input lines.
type Console struct {
	out io.Writer
	id  Identity

	mu       sync.Mutex
	lastView *command.View
	seq      int
}

func New(out io.Writer, id Identity) *Console {
	if id.UserID == "" {
		id.UserID = "console"
	}
	if id.Username == "" {
		id.Username = "console"
	}
	if id.ChannelID == "" {
		id.ChannelID = "console"
	}
	return &Console{out: out, id: id}
}

// Run reads lines from in until EOF, "quit" or ctx ends.
func (c *Console) Run(ctx context.Context, in io.Reader, h Handler) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return nil
		case strings.HasPrefix(line, "select "):
			c.selectValue(ctx, h, strings.TrimSpace(strings.TrimPrefix(line, "select ")))
		default:
			if out := h.Handle(ctx, c.event(line)); out == dispatch.Ignored {
				c.printf("(ignored)\n")
			}
		}
	}
	return scanner.Err()
}

func (c *Console) selectValue(ctx context.Context, h Handler, value string) {
	c.mu.Lock()
	last := c.lastView
	c.mu.Unlock()
	if last == nil {
		c.printf("(no menu to select from)\n")
		return
	}
	view, ok := h.Menu(ctx, c.event(""), last.MenuID, value)
	if !ok {
		c.printf("(menu %q is not handled)\n", last.MenuID)
		return
	}
	c.show(view)
}

func (c *Console) event(content string) *command.Event {
	c.mu.Lock()
	c.seq++
	id := fmt.Sprintf("console-%d", c.seq)
	c.mu.Unlock()
	return &command.Event{
		ID:         id,
		Content:    content,
		AuthorID:   c.id.UserID,
		AuthorName: c.id.Username,
		ChannelID:  c.id.ChannelID,
		GuildID:    c.id.GuildID,
	}
}

func (c *Console) Reply(_ context.Context, ev *command.Event, content string) error {
	c.printf("> %s\n", content)
	return nil
}

func (c *Console) Send(_ context.Context, _ string, content string) error {
	c.printf("%s\n", content)
	return nil
}

func (c *Console) SendView(_ context.Context, _ *command.Event, view *command.View) error {
	c.show(view)
	return nil
}

func (c *Console) show(view *command.View) {
	c.mu.Lock()
	c.lastView = view
	c.mu.Unlock()
	c.printf("%s", RenderText(view))
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// RenderText draws a view as plain text.
func RenderText(view *command.View) string {
	var sb strings.Builder
	sb.WriteString("== " + view.Title + " ==\n")
	if view.Notice != "" {
		sb.WriteString(view.Notice + "\n")
	}

	if view.Kind == command.ViewDetailKind && view.Detail != nil {
		d := view.Detail
		if d.Description != "" {
			sb.WriteString(d.Description + "\n")
		}
		fmt.Fprintf(&sb, "%s: %s\n", view.Labels.Usage, d.Usage)
		if len(d.Aliases) > 0 {
			fmt.Fprintf(&sb, "%s: %s\n", view.Labels.Aliases, strings.Join(d.Aliases, ", "))
		}
		fmt.Fprintf(&sb, "%s: %s\n", view.Labels.Category, d.Category)
	} else {
		for _, s := range view.Sections {
			sb.WriteString("[" + s.Category + "]\n")
			for _, e := range s.Entries {
				fmt.Fprintf(&sb, "  %-10s %s\n", e.Name, e.Description)
			}
		}
	}

	values := make([]string, 0, len(view.Options))
	for _, o := range view.Options {
		values = append(values, o.Value)
	}
	if len(values) > 0 {
		fmt.Fprintf(&sb, "%s: select %s\n", view.Labels.Placeholder, strings.Join(values, " | "))
	}
	return sb.String()
}

// Predicates answers guard lookups from fixed flags.
type Predicates struct {
	Admin bool
	NSFW  bool
}

func (p Predicates) IsAdministrator(context.Context, *command.Event) bool { return p.Admin }

// HasPermissions grants every permission to an administrator and none otherwise.
func (p Predicates) HasPermissions(context.Context, *command.Event, []command.Permission) bool {
	return p.Admin
}

func (p Predicates) FromGuild(ev *command.Event) bool { return ev.GuildID != "" }

func (p Predicates) FromDM(ev *command.Event) bool { return ev.GuildID == "" }

func (p Predicates) IsNSFWChannel(context.Context, *command.Event) bool { return p.NSFW }
