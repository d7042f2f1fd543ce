// Package app assembles the command bot from configuration: storage, texts, the
// command source, the registry and the reload manager. Transports plug in through
// Pipeline.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/commands"
	"github.com/keshon/commandbot/internal/config"
	"github.com/keshon/commandbot/internal/dispatch"
	"github.com/keshon/commandbot/internal/guard"
	"github.com/keshon/commandbot/internal/lang"
	"github.com/keshon/commandbot/internal/reload"
	"github.com/keshon/commandbot/internal/source"
	"github.com/keshon/commandbot/internal/storage"
)

type App struct {
	Config   *config.Config
	Store    *storage.Storage
	Texts    *lang.Bundle
	Source   *source.Source
	Registry *command.Registry
	Reloader *reload.Manager
	Log      zerolog.Logger

	// LoadErr joins the problems of commands skipped at startup.
	LoadErr error
}

// New builds the application. Broken command definitions are logged and skipped;
// only storage, texts and the command table itself are fatal.
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		return nil, err
	}

	texts, err := lang.Default()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load texts: %w", err)
	}
	if _, ok := texts.Supported(cfg.DefaultLocale); !ok {
		log.Warn().Str("locale", cfg.DefaultLocale).Msg("default locale is not bundled, falling back to " + lang.BaseLocale)
	}

	a := &App{
		Config:   cfg,
		Store:    store,
		Texts:    texts,
		Registry: command.NewRegistry(),
		Log:      log,
	}

	deps := &commands.Deps{
		Settings:          store,
		History:           store,
		Languages:         texts,
		AllowPrefixChange: cfg.EnablePrefixChange,
		AppName:           config.AppName,
		Version:           config.AppVersion,
		Log:               log.With().Str("component", "commands").Logger(),
	}

	a.Source, err = source.New(definitionsFS(cfg), commands.Table(deps), log.With().Str("component", "source").Logger())
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	_, a.LoadErr = a.Source.LoadAll(a.Registry)

	a.Reloader = reload.NewManager(a.Registry, a.Source, log.With().Str("component", "reload").Logger())
	deps.Reloader = a.Reloader
	return a, nil
}

func definitionsFS(cfg *config.Config) fs.FS {
	if cfg.CommandsDir != "" {
		return os.DirFS(cfg.CommandsDir)
	}
	return commands.Definitions()
}

// Pipeline returns a dispatch pipeline replying through t and checking guards with p.
func (a *App) Pipeline(t command.Transport, p guard.Predicates) *dispatch.Pipeline {
	settings := &dispatch.Settings{
		Store:            a.Store,
		DefaultPrefix:    a.Config.Prefix,
		AllowGuildPrefix: a.Config.EnablePrefixChange,
		DefaultLocale:    a.Config.DefaultLocale,
		Log:              a.Log,
	}
	log := a.Log.With().Str("component", "dispatch").Logger()
	return dispatch.New(dispatch.Deps{
		Registry:   a.Registry,
		Predicates: p,
		Transport:  t,
		Texts:      a.Texts,
		Prefixes:   settings,
		Locales:    settings,
		Middlewares: []command.Middleware{
			dispatch.WithTiming(log),
			dispatch.WithHistory(a.Store, log),
		},
		Log: log,
	})
}

// Watch reloads commands as their files under COMMANDS_DIR change, until ctx is done.
// It returns at once when watching is off or the built-in definitions are used.
func (a *App) Watch(ctx context.Context) error {
	if !a.Config.WatchCommands || a.Config.CommandsDir == "" {
		return nil
	}
	w, err := reload.NewWatcher(a.Config.CommandsDir, a.Reloader, 500*time.Millisecond,
		a.Log.With().Str("component", "watcher").Logger())
	if err != nil {
		return fmt.Errorf("watch %s: %w", a.Config.CommandsDir, err)
	}
	a.Log.Info().Str("dir", a.Config.CommandsDir).Msg("watching command definitions")
	return w.Run(ctx)
}

func (a *App) Close() error {
	return errors.Join(a.Store.Close())
}
