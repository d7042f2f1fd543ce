package source

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/commandbot/internal/command"
)

func noop() command.Handler {
	return func(context.Context, *command.Invocation) error { return nil }
}

func newSource(t *testing.T, fsys fstest.MapFS, entries ...Entry) *Source {
	t.Helper()
	s, err := New(fsys, entries, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func TestLoad_BuildsCommandFromDefinition(t *testing.T) {
	fsys := fstest.MapFS{
		"utility/ping.yaml": {Data: []byte(`
name: ping
aliases: [p, pong]
description: commands.ping.description
need_permission: [send_messages]
guild_only: true
args_needed: true
args_min_length: 2
`)},
	}
	s := newSource(t, fsys, Entry{Category: "utility", Name: "ping", New: noop})

	cmd, err := s.Load(s.Locate("utility", "ping"))
	require.NoError(t, err)

	assert.Equal(t, "ping", cmd.Name)
	assert.Equal(t, []string{"p", "pong"}, cmd.Aliases)
	assert.Equal(t, "utility", cmd.Category)
	assert.Equal(t, []command.Permission{command.PermSendMessages}, cmd.Guards.NeedPermission)
	assert.True(t, cmd.Guards.GuildOnly)
	assert.False(t, cmd.Guards.AdminOnly)
	assert.Equal(t, 2, cmd.Guards.ArgsMinLength)
	assert.NotNil(t, cmd.Handler)
}

func TestLoad_RejectsInvalidDefinitions(t *testing.T) {
	cases := map[string]string{
		"unknown field":       "name: ping\ncooldown: 3\n",
		"negative min":        "name: ping\nargs_min_length: -1\n",
		"guild and dm":        "name: ping\nguild_only: true\ndm_only: true\n",
		"unknown permission":  "name: ping\nneed_permission: [FLY]\n",
		"name mismatch":       "name: pong\n",
		"empty":               "",
		"malformed yaml":      "name: [ping\n",
		"whitespace in alias": "name: ping\naliases: [\"p p\"]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			s := newSource(t, fstest.MapFS{"utility/ping.yaml": {Data: []byte(body)}},
				Entry{Category: "utility", Name: "ping", New: noop})
			_, err := s.Load(s.Locate("utility", "ping"))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFileAndUnknownLocation(t *testing.T) {
	s := newSource(t, fstest.MapFS{}, Entry{Category: "utility", Name: "ping", New: noop})

	_, err := s.Load(s.Locate("utility", "ping"))
	assert.Error(t, err)

	_, err = s.Load("utility/nothing.yaml")
	assert.Error(t, err)
}

func TestInvalidate_RereadsDefinition(t *testing.T) {
	fsys := fstest.MapFS{"utility/ping.yaml": {Data: []byte("name: ping\ndescription: old\n")}}
	s := newSource(t, fsys, Entry{Category: "utility", Name: "ping", New: noop})
	loc := s.Locate("utility", "ping")

	cmd, err := s.Load(loc)
	require.NoError(t, err)
	assert.Equal(t, "old", cmd.Description)

	fsys["utility/ping.yaml"] = &fstest.MapFile{Data: []byte("name: ping\ndescription: new\n")}

	cmd, err = s.Load(loc)
	require.NoError(t, err)
	assert.Equal(t, "old", cmd.Description, "cached definition is used until invalidated")

	s.Invalidate(loc)
	cmd, err = s.Load(loc)
	require.NoError(t, err)
	assert.Equal(t, "new", cmd.Description)
}

func TestLoad_FreshHandlerEveryTime(t *testing.T) {
	built := 0
	factory := func() command.Handler {
		built++
		return noop()
	}
	fsys := fstest.MapFS{"utility/ping.yaml": {Data: []byte("name: ping\n")}}
	s := newSource(t, fsys, Entry{Category: "utility", Name: "ping", New: factory})

	for range 3 {
		_, err := s.Load(s.Locate("utility", "ping"))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, built)
}

func TestLoadAll_SkipsBrokenDisabledAndDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"utility/ping.yaml":   {Data: []byte("name: ping\naliases: [p]\n")},
		"utility/pong.yaml":   {Data: []byte("name: pong\naliases: [p]\n")},
		"utility/echo.yaml":   {Data: []byte("name: echo\nargs_min_length: -2\n")},
		"utility/hidden.yaml": {Data: []byte("name: hidden\ndisabled: true\n")},
		"fun/roll.yaml":       {Data: []byte("name: roll\n")},
	}
	s := newSource(t, fsys,
		Entry{Category: "utility", Name: "ping", New: noop},
		Entry{Category: "utility", Name: "pong", New: noop},
		Entry{Category: "utility", Name: "echo", New: noop},
		Entry{Category: "utility", Name: "hidden", New: noop},
		Entry{Category: "fun", Name: "roll", New: noop},
	)
	reg := command.NewRegistry()

	loaded, err := s.LoadAll(reg)
	assert.Equal(t, 2, loaded)
	require.Error(t, err)

	var dup *command.DuplicateNameError
	assert.True(t, errors.As(err, &dup))

	_, ok := reg.Resolve("ping")
	assert.True(t, ok)
	_, ok = reg.Resolve("roll")
	assert.True(t, ok)
	_, ok = reg.Resolve("pong")
	assert.False(t, ok)
	_, ok = reg.Resolve("hidden")
	assert.False(t, ok)
	assert.Equal(t, 2, reg.Len())
}

func TestNew_RejectsBadTable(t *testing.T) {
	_, err := New(fstest.MapFS{}, []Entry{{Category: "utility", Name: "ping"}}, zerolog.Nop())
	assert.Error(t, err)

	_, err = New(fstest.MapFS{}, []Entry{
		{Category: "utility", Name: "ping", New: noop},
		{Category: "Utility", Name: "PING", New: noop},
	}, zerolog.Nop())
	assert.Error(t, err)
}
