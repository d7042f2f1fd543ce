package docs

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/lang"
)

func registry(t *testing.T) *command.Registry {
	t.Helper()
	noop := func(context.Context, *command.Invocation) error { return nil }
	reg := command.NewRegistry()
	require.NoError(t, reg.Register(&command.Command{
		Name: "ping", Aliases: []string{"p"}, Category: "core",
		Description: "commands.ping.description", Handler: noop,
	}))
	require.NoError(t, reg.Register(&command.Command{
		Name: "purge", Category: "admin", Description: "Deletes messages", UsageKey: "<count>",
		Guards:  command.Guards{AdminOnly: true, NeedPermission: []command.Permission{command.PermManageMessages}, GuildOnly: true},
		Handler: noop,
	}))
	return reg
}

func TestSections(t *testing.T) {
	texts, err := lang.Default()
	require.NoError(t, err)

	got := Sections(registry(t), texts, "en", "!")
	want := "### admin\n\n" +
		"- **`!purge <count>`** Deletes messages _admin, MANAGE_MESSAGES, server only_\n" +
		"\n### core\n\n" +
		"- **`!ping`** " + texts.Text("en", "commands.ping.description") + " (aliases: p)\n"
	assert.Equal(t, want, got)
}

func TestRender_Template(t *testing.T) {
	texts, err := lang.Default()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, registry(t), texts, Options{AppName: "Bot", Prefix: "?", Locale: "en"}))
	assert.Contains(t, buf.String(), "# Bot\n")
	assert.Contains(t, buf.String(), "Prefix: `?`")
	assert.Contains(t, buf.String(), "`?ping`")

	buf.Reset()
	require.NoError(t, Render(&buf, registry(t), texts, Options{Template: "{{ .AppName }}|{{ len .CommandSections }}", AppName: "X"}))
	assert.Regexp(t, `^X\|\d+$`, buf.String())

	assert.Error(t, Render(&buf, registry(t), texts, Options{Template: "{{ .Missing"}))
}
