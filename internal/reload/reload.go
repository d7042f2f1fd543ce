// Package reload swaps a single registered command for a freshly loaded definition
// while the process keeps running.
package reload

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/keshon/commandbot/internal/command"
)

// Loader finds and loads command definitions by location.
type Loader interface {
	Locate(category, name string) string
	Invalidate(loc string)
	Load(loc string) (*command.Command, error)
}

// UnknownCommandError is returned when the reload target does not resolve.
type UnknownCommandError struct {
	Token string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("no command with name or alias %q", e.Token)
}

// Error reports a failed reload of the named command. The registry still holds the
// previous definition.
type Error struct {
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("reload %s: %v", e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Result describes a completed reload.
type Result struct {
	Previous *command.Command
	Current  *command.Command
	Location string
}

type Manager struct {
	registry *command.Registry
	loader   Loader
	log      zerolog.Logger

	// mu serializes whole reloads so two of them never interleave their load and replace steps.
	mu sync.Mutex
}

func NewManager(reg *command.Registry, loader Loader, log zerolog.Logger) *Manager {
	return &Manager{registry: reg, loader: loader, log: log}
}

// Reload resolves token, reloads the command's definition and replaces the registry
// entry. On any failure the registry is left as it was.
func (m *Manager) Reload(ctx context.Context, token string) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	old, ok := m.registry.Resolve(token)
	if !ok {
		return nil, &UnknownCommandError{Token: token}
	}

	loc := m.loader.Locate(old.Category, old.Name)
	m.loader.Invalidate(loc)

	next, err := m.loader.Load(loc)
	if err != nil {
		m.log.Warn().Err(err).Str("command", old.Name).Str("location", loc).Msg("reload failed")
		return nil, &Error{Name: old.Name, Err: err}
	}
	if next.Category == "" {
		next.Category = old.Category
	}

	if err := m.registry.Replace(old.Name, next); err != nil {
		m.log.Warn().Err(err).Str("command", old.Name).Msg("reload rejected by registry")
		return nil, &Error{Name: old.Name, Err: err}
	}

	m.log.Info().Str("command", next.Name).Str("location", loc).Msg("command reloaded")
	return &Result{Previous: old, Current: next, Location: loc}, nil
}
