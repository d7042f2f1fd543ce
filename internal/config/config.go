// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	AppName    = "Commandbot"
	AppVersion = "1.4.0"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`

	Prefix             string `env:"PREFIX" envDefault:"!"`
	EnablePrefixChange bool   `env:"ENABLE_PREFIX_CHANGE" envDefault:"false"`
	DefaultLocale      string `env:"DEFAULT_LOCALE" envDefault:"en"`

	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	// CommandsDir overrides the embedded command definitions with a directory on disk.
	CommandsDir string `env:"COMMANDS_DIR"`
	// WatchCommands reloads a command when its file under CommandsDir changes.
	WatchCommands bool `env:"WATCH_COMMANDS" envDefault:"false"`

	// OwnerIDs are treated as administrators everywhere, including direct messages.
	OwnerIDs []string `env:"OWNER_IDS" envSeparator:","`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	EnableActivity bool   `env:"ENABLE_ACTIVITY" envDefault:"false"`
	ActivityName   string `env:"ACTIVITY_NAME" envDefault:"!help"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Prefix == "" {
		return errors.New("PREFIX must not be empty")
	}
	return nil
}

// RequireDiscord reports whether the settings needed to connect to Discord are present.
func (c *Config) RequireDiscord() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	return nil
}

// IsOwner reports whether userID is one of the configured owners.
func (c *Config) IsOwner(userID string) bool {
	return userID != "" && slices.Contains(c.OwnerIDs, userID)
}
