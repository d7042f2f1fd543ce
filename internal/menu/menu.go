// Package menu rebuilds the interactive help view from the registry on every request.
// Nothing about a previously shown view is kept between interactions.
package menu

import (
	"strings"

	"github.com/keshon/commandbot/internal/command"
)

const (
	// ID is the menu identifier carried by help interactions.
	ID = "help"
	// ValueAll selects the index view.
	ValueAll = "all"
)

// Render derives the view for a selected value: ValueAll (or an empty value) gives the
// index, a command name gives its detail. A name that no longer resolves falls back to
// the index with a notice.
func Render(reg *command.Registry, inv *command.Invocation, value string) *command.View {
	value = strings.ToLower(strings.TrimSpace(value))

	if value != "" && value != ValueAll {
		if cmd, ok := reg.Resolve(value); ok {
			return detail(reg, inv, cmd)
		}
		view := index(reg, inv)
		view.Notice = inv.T("commands.help.unavailable", value)
		return view
	}
	return index(reg, inv)
}

func index(reg *command.Registry, inv *command.Invocation) *command.View {
	view := &command.View{
		Kind:   command.ViewIndex,
		MenuID: ID,
		Title:  inv.T("commands.help.index_title"),
	}
	for category, cmds := range reg.ListByCategory() {
		section := command.ViewSection{Category: category}
		for _, c := range cmds {
			section.Entries = append(section.Entries, command.ViewEntry{
				Name:        c.Name,
				Description: c.Describe(inv),
			})
		}
		view.Sections = append(view.Sections, section)
	}
	view.Options = options(reg, inv, ValueAll)
	view.Labels = labels(inv)
	return view
}

func detail(reg *command.Registry, inv *command.Invocation, c *command.Command) *command.View {
	return &command.View{
		Kind:   command.ViewDetailKind,
		MenuID: ID,
		Title:  inv.T("commands.help.detail_title", c.Name),
		Detail: &command.ViewDetail{
			Name:        c.Name,
			Aliases:     append([]string(nil), c.Aliases...),
			Category:    c.Category,
			Usage:       usageLine(inv, c),
			Description: c.Describe(inv),
		},
		Options: options(reg, inv, c.Name),
		Labels:  labels(inv),
	}
}

func labels(inv *command.Invocation) command.ViewLabels {
	return command.ViewLabels{
		Usage:       inv.T("commands.help.field_usage"),
		Aliases:     inv.T("commands.help.field_aliases"),
		Category:    inv.T("commands.help.field_category"),
		Placeholder: inv.T("commands.help.menu_placeholder"),
	}
}

// options lists "all" first, then every command by name. selected is marked as default.
func options(reg *command.Registry, inv *command.Invocation, selected string) []command.ViewOption {
	all := reg.All()
	out := make([]command.ViewOption, 0, len(all)+1)
	out = append(out, command.ViewOption{
		Label:       inv.T("commands.help.menu_all"),
		Value:       ValueAll,
		Description: inv.T("commands.help.menu_all_description"),
		Default:     selected == ValueAll,
	})
	for _, c := range all {
		out = append(out, command.ViewOption{
			Label:       c.Name,
			Value:       c.Name,
			Description: c.Describe(inv),
			Default:     c.Name == selected,
		})
	}
	return out
}

func usageLine(inv *command.Invocation, c *command.Command) string {
	line := inv.Prefix + c.Name
	if u := c.Usage(inv); u != "" {
		line += " " + u
	}
	return line
}
