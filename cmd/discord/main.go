// cmd/discord/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/commandbot/internal/app"
	"github.com/keshon/commandbot/internal/config"
	"github.com/keshon/commandbot/internal/discord"
	"github.com/keshon/commandbot/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	log.Info().Str("version", config.AppVersion).Msgf("starting %s bot", config.AppName)

	if err := cfg.RequireDiscord(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise")
	}
	defer a.Close()
	if a.LoadErr != nil {
		log.Warn().Err(a.LoadErr).Msg("some commands were not loaded")
	}
	log.Info().Int("commands", a.Registry.Len()).Msg("commands registered")

	opts := discord.Options{Token: cfg.DiscordToken, IsOwner: cfg.IsOwner}
	if cfg.EnableActivity {
		opts.Activity = cfg.ActivityName
	}
	bot, err := discord.New(opts, log.With().Str("component", "discord").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}
	pipeline := a.Pipeline(bot.Transport(), bot.Predicates())

	go func() {
		if err := a.Watch(ctx); err != nil {
			log.Error().Err(err).Msg("definition watcher stopped")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx, pipeline); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("discord bot error")
		}
		cancel()
	}

	log.Info().Msg("discord bot exited cleanly")
}
