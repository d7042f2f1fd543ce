package dispatch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/lang"
	"github.com/keshon/commandbot/internal/menu"
	"github.com/keshon/commandbot/internal/storage"
	"github.com/keshon/commandbot/internal/testkit"
)

type env struct {
	reg       *command.Registry
	transport *testkit.Transport
	preds     *testkit.Predicates
	pipeline  *Pipeline
	calls     map[string]int
}

func newEnv(t *testing.T, mws ...command.Middleware) *env {
	t.Helper()
	texts, err := lang.Default()
	require.NoError(t, err)

	e := &env{
		reg:       command.NewRegistry(),
		transport: &testkit.Transport{},
		preds:     &testkit.Predicates{},
		calls:     map[string]int{},
	}
	e.pipeline = New(Deps{
		Registry:    e.reg,
		Predicates:  e.preds,
		Transport:   e.transport,
		Texts:       texts,
		Prefixes:    &Settings{DefaultPrefix: "!"},
		Locales:     &Settings{DefaultLocale: "en"},
		Middlewares: mws,
		Log:         zerolog.Nop(),
	})
	return e
}

func (e *env) add(t *testing.T, c *command.Command) {
	t.Helper()
	if c.Handler == nil {
		name := c.Name
		c.Handler = func(ctx context.Context, inv *command.Invocation) error {
			e.calls[name]++
			return nil
		}
	}
	require.NoError(t, e.reg.Register(c))
}

func TestHandle_IgnoresNonCommands(t *testing.T) {
	e := newEnv(t)
	e.add(t, &command.Command{Name: "ping"})

	bot := testkit.GuildEvent("!ping")
	bot.Bot = true

	for _, ev := range []*command.Event{
		testkit.GuildEvent("ping"),
		testkit.GuildEvent("?ping"),
		testkit.GuildEvent("!"),
		testkit.GuildEvent("!unknown"),
		bot,
		nil,
	} {
		assert.Equal(t, Ignored, e.pipeline.Handle(context.Background(), ev))
	}
	assert.Empty(t, e.transport.Messages())
	assert.Zero(t, e.calls["ping"])
}

func TestHandle_ResolvesAliasCaseInsensitively(t *testing.T) {
	e := newEnv(t)
	var got *command.Invocation
	e.add(t, &command.Command{
		Name:    "ping",
		Aliases: []string{"p", "pong"},
		Handler: func(_ context.Context, inv *command.Invocation) error {
			got = inv
			return nil
		},
	})

	out := e.pipeline.Handle(context.Background(), testkit.GuildEvent("!P   one  two"))

	require.Equal(t, Executed, out)
	require.NotNil(t, got)
	assert.Equal(t, "p", got.Name)
	assert.Equal(t, []string{"one", "two"}, got.Args)
	assert.Equal(t, "ping", got.Command.Name)
	assert.Equal(t, "!", got.Prefix)
	assert.Equal(t, "en", got.Locale)
	assert.NotEmpty(t, got.ID)
	assert.Same(t, e.reg, got.Registry)
}

func TestHandle_AdminRestrictionBeatsMissingArgs(t *testing.T) {
	e := newEnv(t)
	e.add(t, &command.Command{
		Name:     "reload",
		UsageKey: "commands.reload.usage",
		Guards:   command.Guards{AdminOnly: true, ArgsNeeded: true},
	})

	out := e.pipeline.Handle(context.Background(), testkit.GuildEvent("!reload"))

	assert.Equal(t, Rejected, out)
	msgs := e.transport.Messages()
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Reply)
	assert.Equal(t, "You are not allowed to use this command.", msgs[0].Content)
	assert.Zero(t, e.calls["reload"])
}

func TestHandle_MissingArgsIncludesUsage(t *testing.T) {
	e := newEnv(t)
	e.add(t, &command.Command{
		Name:     "echo",
		UsageKey: "commands.echo.usage",
		Guards:   command.Guards{ArgsNeeded: true, ArgsMinLength: 1},
	})

	out := e.pipeline.Handle(context.Background(), testkit.GuildEvent("!echo"))

	assert.Equal(t, Rejected, out)
	last := e.transport.Last()
	assert.False(t, last.Reply)
	assert.Equal(t, "c1", last.ChannelID)
	assert.Equal(t,
		"You didn't provide any arguments, <@100>!\nThe proper usage would be: `!echo <text>`",
		last.Content)
}

func TestHandle_MissingArgsWithoutUsage(t *testing.T) {
	e := newEnv(t)
	e.add(t, &command.Command{Name: "say", Guards: command.Guards{ArgsNeeded: true}})

	e.pipeline.Handle(context.Background(), testkit.GuildEvent("!say"))
	assert.Equal(t, "You didn't provide any arguments, <@100>!", e.transport.Last().Content)
}

func TestHandle_GuardReplies(t *testing.T) {
	cases := []struct {
		name   string
		guards command.Guards
		ev     *command.Event
		want   string
	}{
		{"guild only in dm", command.Guards{GuildOnly: true}, testkit.DMEvent("!x"), "This command only works on a server."},
		{"dm only in guild", command.Guards{DMOnly: true}, testkit.GuildEvent("!x"), "This command only works in direct messages."},
		{"nsfw", command.Guards{NSFWOnly: true}, testkit.GuildEvent("!x"), "This command only works in NSFW channels."},
		{"permission", command.Guards{NeedPermission: []command.Permission{command.PermKickMembers}}, testkit.GuildEvent("!x"), "You lack the permissions this command requires."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			e.add(t, &command.Command{Name: "x", Guards: tc.guards})

			assert.Equal(t, Rejected, e.pipeline.Handle(context.Background(), tc.ev))
			assert.Equal(t, tc.want, e.transport.Last().Content)
			assert.Zero(t, e.calls["x"])
		})
	}
}

func TestHandle_HandlerFailuresAreIsolated(t *testing.T) {
	e := newEnv(t)
	e.add(t, &command.Command{Name: "boom", Handler: func(context.Context, *command.Invocation) error {
		return errors.New("kaput")
	}})
	e.add(t, &command.Command{Name: "panic", Handler: func(context.Context, *command.Invocation) error {
		panic("unexpected")
	}})
	e.add(t, &command.Command{Name: "ping"})

	assert.Equal(t, Failed, e.pipeline.Handle(context.Background(), testkit.GuildEvent("!boom")))
	assert.Equal(t, "There was an error trying to execute that command!", e.transport.Last().Content)
	assert.True(t, e.transport.Last().Reply)

	assert.NotPanics(t, func() {
		assert.Equal(t, Failed, e.pipeline.Handle(context.Background(), testkit.GuildEvent("!panic")))
	})

	assert.Equal(t, Executed, e.pipeline.Handle(context.Background(), testkit.GuildEvent("!ping")))
	assert.Equal(t, 1, e.calls["ping"])
}

func TestHandle_MiddlewaresWrapHandler(t *testing.T) {
	var order []string
	mw := func(tag string) command.Middleware {
		return func(next command.Handler) command.Handler {
			return func(ctx context.Context, inv *command.Invocation) error {
				order = append(order, tag)
				return next(ctx, inv)
			}
		}
	}
	e := newEnv(t, mw("outer"), mw("inner"))
	e.add(t, &command.Command{Name: "ping", Handler: func(context.Context, *command.Invocation) error {
		order = append(order, "handler")
		return nil
	}})

	e.pipeline.Handle(context.Background(), testkit.GuildEvent("!ping"))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestHandle_RecordsHistory(t *testing.T) {
	store, err := storage.New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	e := newEnv(t, WithHistory(store, zerolog.Nop()))
	e.add(t, &command.Command{Name: "echo", Aliases: []string{"say"}})
	e.add(t, &command.Command{Name: "admin", Guards: command.Guards{AdminOnly: true}})

	e.pipeline.Handle(context.Background(), testkit.GuildEvent("!say hello world"))
	e.pipeline.Handle(context.Background(), testkit.GuildEvent("!admin"))

	history, err := store.FetchCommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "echo", history[0].Command)
	assert.Equal(t, "hello world", history[0].Param)
	assert.Equal(t, "tester", history[0].Username)
}

func TestHandle_GuildPrefixAndLocale(t *testing.T) {
	store, err := storage.New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.SetPrefix("g1", "?"))
	require.NoError(t, store.SetLocale("g1", "de"))

	texts, err := lang.Default()
	require.NoError(t, err)
	reg := command.NewRegistry()
	transport := &testkit.Transport{}
	require.NoError(t, reg.Register(&command.Command{
		Name:   "secret",
		Guards: command.Guards{AdminOnly: true},
		Handler: func(context.Context, *command.Invocation) error {
			return nil
		},
	}))

	settings := &Settings{Store: store, DefaultPrefix: "!", AllowGuildPrefix: true, DefaultLocale: "en"}
	p := New(Deps{
		Registry:   reg,
		Predicates: &testkit.Predicates{},
		Transport:  transport,
		Texts:      texts,
		Prefixes:   settings,
		Locales:    settings,
		Log:        zerolog.Nop(),
	})

	assert.Equal(t, Ignored, p.Handle(context.Background(), testkit.GuildEvent("!secret")))
	assert.Equal(t, Rejected, p.Handle(context.Background(), testkit.GuildEvent("?secret")))
	assert.Equal(t, Rejected, p.Handle(context.Background(), testkit.DMEvent("!secret")), "direct messages use the default prefix")

	msgs := transport.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Du darfst diesen Befehl nicht benutzen.", msgs[0].Content)
	assert.Equal(t, "You are not allowed to use this command.", msgs[1].Content)

	settings.AllowGuildPrefix = false
	assert.Equal(t, Rejected, p.Handle(context.Background(), testkit.GuildEvent("!secret")))
}

func TestMenu_OnlyServesHelpMenu(t *testing.T) {
	e := newEnv(t)
	e.add(t, &command.Command{Name: "ping", Category: "utility"})

	_, ok := e.pipeline.Menu(context.Background(), testkit.GuildEvent(""), "other", menu.ValueAll)
	assert.False(t, ok)

	view, ok := e.pipeline.Menu(context.Background(), testkit.GuildEvent(""), menu.ID, "ping")
	require.True(t, ok)
	assert.Equal(t, command.ViewDetailKind, view.Kind)
	assert.Equal(t, "!ping", view.Detail.Usage)
}
