// Package dispatch turns raw chat events into command invocations: prefix match,
// tokenising, registry lookup, the guard chain and an isolated handler call.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/guard"
	"github.com/keshon/commandbot/internal/menu"
)

// Outcome tells the caller what happened to an event.
type Outcome int

const (
	// Ignored events were not commands (wrong prefix, bot author, unknown name).
	Ignored Outcome = iota
	// Rejected events stopped at a guard; the user got the guard's reply.
	Rejected
	// Executed events ran their handler to completion.
	Executed
	// Failed events ran a handler that returned an error or panicked.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Rejected:
		return "rejected"
	case Executed:
		return "executed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// PrefixSource returns the active command prefix for an event.
type PrefixSource interface {
	Prefix(ctx context.Context, ev *command.Event) string
}

// LocaleSource returns the locale replies to an event are rendered in.
type LocaleSource interface {
	Locale(ctx context.Context, ev *command.Event) string
}

// Deps is everything the pipeline needs. It is built once at startup.
type Deps struct {
	Registry   *command.Registry
	Predicates guard.Predicates
	Transport  command.Transport
	Texts      command.Localizer
	Prefixes   PrefixSource
	Locales    LocaleSource

	// Chain defaults to guard.DefaultChain.
	Chain guard.Chain
	// Middlewares wrap every handler call, first is outermost.
	Middlewares []command.Middleware

	Log zerolog.Logger
}

type Pipeline struct {
	deps Deps
}

// New returns a pipeline. Registry, Predicates, Transport and Prefixes are required.
func New(d Deps) *Pipeline {
	if d.Chain == nil {
		d.Chain = guard.DefaultChain()
	}
	return &Pipeline{deps: d}
}

// Handle processes one raw event. It never panics and never returns an error;
// failures are reported to the user and logged.
func (p *Pipeline) Handle(ctx context.Context, ev *command.Event) Outcome {
	if ev == nil || ev.Bot {
		return Ignored
	}

	prefix := p.deps.Prefixes.Prefix(ctx, ev)
	if prefix == "" || !strings.HasPrefix(ev.Content, prefix) {
		return Ignored
	}

	tokens := strings.Fields(ev.Content[len(prefix):])
	if len(tokens) == 0 {
		return Ignored
	}
	name := strings.ToLower(tokens[0])

	cmd, ok := p.deps.Registry.Resolve(name)
	if !ok {
		return Ignored
	}

	inv := p.invocation(ctx, ev, prefix)
	inv.Name = name
	inv.Args = tokens[1:]
	inv.Command = cmd

	log := p.deps.Log.With().
		Str("invocation", inv.ID).
		Str("command", cmd.Name).
		Str("guild", ev.GuildID).
		Str("user", ev.AuthorID).
		Logger()

	if kind := p.deps.Chain.Evaluate(ctx, cmd, inv, p.deps.Predicates); kind != guard.Pass {
		log.Debug().Stringer("guard", kind).Msg("invocation rejected")
		p.reject(ctx, log, cmd, inv, kind)
		return Rejected
	}

	if err := p.invoke(ctx, cmd, inv); err != nil {
		log.Error().Err(err).Msg("command failed")
		if rerr := inv.Reply(ctx, inv.T("dispatch.error")); rerr != nil {
			log.Warn().Err(rerr).Msg("failed to report command failure")
		}
		return Failed
	}

	log.Debug().Msg("command executed")
	return Executed
}

// Menu renders the help view for an interaction. ok is false when menuID is not a
// menu this pipeline serves.
func (p *Pipeline) Menu(ctx context.Context, ev *command.Event, menuID, value string) (view *command.View, ok bool) {
	if menuID != menu.ID {
		return nil, false
	}
	inv := p.invocation(ctx, ev, p.deps.Prefixes.Prefix(ctx, ev))
	return menu.Render(p.deps.Registry, inv, value), true
}

func (p *Pipeline) invocation(ctx context.Context, ev *command.Event, prefix string) *command.Invocation {
	inv := &command.Invocation{
		ID:        uuid.NewString(),
		Event:     ev,
		Prefix:    prefix,
		Registry:  p.deps.Registry,
		Transport: p.deps.Transport,
		Texts:     p.deps.Texts,
	}
	if p.deps.Locales != nil {
		inv.Locale = p.deps.Locales.Locale(ctx, ev)
	}
	return inv
}

func (p *Pipeline) reject(ctx context.Context, log zerolog.Logger, cmd *command.Command, inv *command.Invocation, kind guard.Kind) {
	var err error
	if kind == guard.MissingArgs {
		text := inv.T(kind.MessageKey(), inv.Event.Mention())
		if usage := cmd.Usage(inv); usage != "" {
			text += fmt.Sprintf("\n%s `%s%s %s`", inv.T("dispatch.missing_args_usage"), inv.Prefix, cmd.Name, usage)
		}
		err = inv.Send(ctx, text)
	} else {
		err = inv.Reply(ctx, inv.T(kind.MessageKey()))
	}
	if err != nil {
		log.Warn().Err(err).Stringer("guard", kind).Msg("failed to send guard reply")
	}
}

// invoke runs the wrapped handler and turns a panic into an error.
func (p *Pipeline) invoke(ctx context.Context, cmd *command.Command, inv *command.Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", cmd.Name, r)
		}
	}()
	h := command.Apply(cmd.Handler, p.deps.Middlewares...)
	return h(ctx, inv)
}
