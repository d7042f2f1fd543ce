package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/commandbot/internal/config"
	"github.com/keshon/commandbot/internal/dispatch"
	"github.com/keshon/commandbot/internal/testkit"
)

func newConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse()
	require.NoError(t, err)
	cfg.StoragePath = filepath.Join(t.TempDir(), "datastore.json")
	return cfg
}

func TestNew_EmbeddedDefinitions(t *testing.T) {
	a, err := New(newConfig(t), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.NoError(t, a.LoadErr)
	assert.Equal(t, 9, a.Registry.Len())

	transport := &testkit.Transport{}
	p := a.Pipeline(transport, &testkit.Predicates{Admin: true})
	assert.Equal(t, dispatch.Executed, p.Handle(context.Background(), testkit.GuildEvent("!ping")))
	assert.Equal(t, dispatch.Executed, p.Handle(context.Background(), testkit.GuildEvent("!reload ping")))
	assert.Equal(t, "`ping` was reloaded!", transport.Last().Content)

	history, err := a.Store.FetchCommandHistory("g1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestNew_CommandsDirOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "core"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core", "ping.yaml"), []byte("name: ping\n"), 0644))

	cfg := newConfig(t)
	cfg.CommandsDir = dir

	a, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Error(t, a.LoadErr, "missing definitions are reported")
	assert.Equal(t, 1, a.Registry.Len())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "core", "ping.yaml"), []byte("name: ping\naliases: [latency]\n"), 0644))
	_, err = a.Reloader.Reload(context.Background(), "ping")
	require.NoError(t, err)
	_, ok := a.Registry.Resolve("latency")
	assert.True(t, ok)
}

func TestWatch_DisabledReturnsAtOnce(t *testing.T) {
	cfg := newConfig(t)
	cfg.WatchCommands = true // no COMMANDS_DIR, built-in definitions are not watched

	a, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.NoError(t, a.Watch(context.Background()))
}
