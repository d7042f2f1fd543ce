package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "!", cfg.Prefix)
	assert.False(t, cfg.EnablePrefixChange)
	assert.Equal(t, "en", cfg.DefaultLocale)
	assert.Equal(t, "datastore.json", cfg.StoragePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Error(t, cfg.RequireDiscord())
}

func TestParse_FromEnvironment(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("PREFIX", "?")
	t.Setenv("ENABLE_PREFIX_CHANGE", "true")
	t.Setenv("OWNER_IDS", "1,2")
	t.Setenv("COMMANDS_DIR", "/srv/commands")
	t.Setenv("WATCH_COMMANDS", "true")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.NoError(t, cfg.RequireDiscord())
	assert.Equal(t, "?", cfg.Prefix)
	assert.True(t, cfg.EnablePrefixChange)
	assert.Equal(t, "/srv/commands", cfg.CommandsDir)
	assert.True(t, cfg.WatchCommands)
	assert.True(t, cfg.IsOwner("2"))
	assert.False(t, cfg.IsOwner("3"))
	assert.False(t, cfg.IsOwner(""))
}

func TestParse_InvalidBool(t *testing.T) {
	t.Setenv("ENABLE_PREFIX_CHANGE", "maybe")
	_, err := Parse()
	assert.Error(t, err)
}
