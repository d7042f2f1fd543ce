package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/dispatch"
	"github.com/keshon/commandbot/pkg/retrylimit"
)

// Handler is the part of the dispatch pipeline the bot feeds events into.
type Handler interface {
	Handle(ctx context.Context, ev *command.Event) dispatch.Outcome
	Menu(ctx context.Context, ev *command.Event, menuID, value string) (*command.View, bool)
}

type Options struct {
	Token string
	// Activity is shown as the bot's status when set.
	Activity string
	// IsOwner marks users that are administrators everywhere.
	IsOwner func(userID string) bool
}

// Bot is a Discord bot
type Bot struct {
	dg        *discordgo.Session
	opts      Options
	log       zerolog.Logger
	transport *Transport
	preds     *Predicates
}

// New creates the session without connecting.
func New(opts Options, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	b := &Bot{dg: dg, opts: opts, log: log}
	b.transport = NewTransport(dg, retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5), log)
	b.preds = NewPredicates(dg, opts.IsOwner)
	return b, nil
}

// Transport sends replies through the bot's session.
func (b *Bot) Transport() *Transport { return b.transport }

// Predicates answers guard lookups from the session state.
func (b *Bot) Predicates() *Predicates { return b.preds }

// Run connects, feeds events to h and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context, h Handler) error {
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.onMessageCreate(ctx, h, m)
	})
	b.dg.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.onInteractionCreate(ctx, h, i)
	})

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, closing session")
	return nil
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if b.opts.Activity != "" {
		if err := s.UpdateGameStatus(0, b.opts.Activity); err != nil {
			b.log.Warn().Err(err).Msg("failed to set activity")
		}
	}
	b.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("discord bot is running")
}

// onMessageCreate is called when a message is created
func (b *Bot) onMessageCreate(ctx context.Context, h Handler, m *discordgo.MessageCreate) {
	ev := messageEvent(m)
	if ev == nil {
		return
	}
	h.Handle(ctx, ev)
}

// onInteractionCreate handles help menu selections; other interactions are ignored.
func (b *Bot) onInteractionCreate(ctx context.Context, h Handler, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	data := i.MessageComponentData()
	ev := interactionEvent(i)

	view, ok := h.Menu(ctx, ev, data.CustomID, selectedValue(data))
	if !ok {
		b.log.Debug().Str("custom_id", data.CustomID).Msg("no handler for component")
		return
	}
	if err := b.transport.UpdateView(ctx, i.Interaction, view); err != nil {
		b.log.Error().Err(err).Str("custom_id", data.CustomID).Msg("failed to update help menu")
	}
}
