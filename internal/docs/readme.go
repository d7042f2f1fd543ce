// Package docs renders a Markdown reference of the registered commands.
package docs

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/keshon/commandbot/internal/command"
)

// DefaultTemplate is used when no template file is given.
const DefaultTemplate = `# {{ .AppName }}

Prefix: ` + "`{{ .Prefix }}`" + `

## Commands

{{ .CommandSections }}`

// Texts localises description and usage keys.
type Texts interface {
	Text(locale, key string, args ...any) string
}

type Options struct {
	AppName string
	Prefix  string
	Locale  string
	// Template overrides DefaultTemplate. It sees AppName, Prefix and CommandSections.
	Template string
}

// Render writes the command reference for reg to w.
func Render(w io.Writer, reg *command.Registry, texts Texts, opts Options) error {
	src := opts.Template
	if src == "" {
		src = DefaultTemplate
	}
	tmpl, err := template.New("readme").Parse(src)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	data := struct {
		AppName         string
		Prefix          string
		CommandSections string
	}{
		AppName:         opts.AppName,
		Prefix:          opts.Prefix,
		CommandSections: Sections(reg, texts, opts.Locale, opts.Prefix),
	}
	return tmpl.Execute(w, data)
}

// Sections lists commands grouped by category in registry order.
func Sections(reg *command.Registry, texts Texts, locale, prefix string) string {
	var buf bytes.Buffer
	first := true
	for category, cmds := range reg.ListByCategory() {
		if !first {
			buf.WriteString("\n")
		}
		first = false
		fmt.Fprintf(&buf, "### %s\n\n", category)

		for _, c := range cmds {
			usage := prefix + c.Name
			if c.UsageKey != "" {
				usage += " " + texts.Text(locale, c.UsageKey)
			}
			fmt.Fprintf(&buf, "- **`%s`** %s", usage, texts.Text(locale, c.Description))
			if len(c.Aliases) > 0 {
				fmt.Fprintf(&buf, " (aliases: %s)", strings.Join(c.Aliases, ", "))
			}
			if notes := guardNotes(c.Guards); notes != "" {
				fmt.Fprintf(&buf, " _%s_", notes)
			}
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

func guardNotes(g command.Guards) string {
	var notes []string
	if g.AdminOnly {
		notes = append(notes, "admin")
	}
	for _, p := range g.NeedPermission {
		notes = append(notes, string(p))
	}
	switch {
	case g.GuildOnly:
		notes = append(notes, "server only")
	case g.DMOnly:
		notes = append(notes, "DM only")
	}
	if g.NSFWOnly {
		notes = append(notes, "NSFW")
	}
	return strings.Join(notes, ", ")
}
