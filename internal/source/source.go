// Package source builds commands from an explicit start-time table. Each table entry
// owns a YAML definition stored at <category>/<name>.yaml; the definition carries the
// command's metadata and guards, the entry carries the handler factory.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/keshon/commandbot/internal/command"
)

// Entry registers one command in the start-time table.
type Entry struct {
	Category string
	Name     string
	New      func() command.Handler
}

// Definition is the YAML form of a command.
type Definition struct {
	Name           string   `yaml:"name"`
	Aliases        []string `yaml:"aliases"`
	Description    string   `yaml:"description"`
	Usage          string   `yaml:"usage"`
	Disabled       bool     `yaml:"disabled"`
	AdminOnly      bool     `yaml:"admin_only"`
	NeedPermission []string `yaml:"need_permission"`
	GuildOnly      bool     `yaml:"guild_only"`
	DMOnly         bool     `yaml:"dm_only"`
	NSFWOnly       bool     `yaml:"nsfw_only"`
	ArgsNeeded     bool     `yaml:"args_needed"`
	ArgsMinLength  int      `yaml:"args_min_length"`
}

// Source loads command definitions from fsys.
type Source struct {
	fsys    fs.FS
	entries []Entry
	byLoc   map[string]Entry
	log     zerolog.Logger

	mu    sync.Mutex
	cache map[string]*Definition
}

// New validates the table and returns a Source reading definitions from fsys.
func New(fsys fs.FS, entries []Entry, log zerolog.Logger) (*Source, error) {
	s := &Source{
		fsys:  fsys,
		byLoc: make(map[string]Entry, len(entries)),
		log:   log,
		cache: make(map[string]*Definition),
	}
	for _, e := range entries {
		if e.Category == "" || e.Name == "" {
			return nil, fmt.Errorf("table entry %q/%q: category and name are required", e.Category, e.Name)
		}
		if e.New == nil {
			return nil, fmt.Errorf("table entry %s/%s: no handler factory", e.Category, e.Name)
		}
		loc := s.Locate(e.Category, e.Name)
		if _, dup := s.byLoc[loc]; dup {
			return nil, fmt.Errorf("table entry %s listed twice", loc)
		}
		s.byLoc[loc] = e
		s.entries = append(s.entries, e)
	}
	return s, nil
}

// Entries returns the table in registration order.
func (s *Source) Entries() []Entry {
	return slices.Clone(s.entries)
}

// Locate returns the definition path for a command.
func (s *Source) Locate(category, name string) string {
	return path.Join(strings.ToLower(category), strings.ToLower(name)+".yaml")
}

// Invalidate drops the cached definition for loc. Unknown locations are ignored.
func (s *Source) Invalidate(loc string) {
	s.mu.Lock()
	delete(s.cache, loc)
	s.mu.Unlock()
}

// Load builds a fresh Command from the definition at loc. Nothing is cached when
// the definition cannot be read or is invalid.
func (s *Source) Load(loc string) (*command.Command, error) {
	entry, ok := s.byLoc[loc]
	if !ok {
		return nil, fmt.Errorf("no table entry for %s", loc)
	}

	def, err := s.definition(loc)
	if err != nil {
		return nil, err
	}

	handler := entry.New()
	if handler == nil {
		return nil, fmt.Errorf("%s: handler factory returned nil", loc)
	}

	perms := make([]command.Permission, 0, len(def.NeedPermission))
	for _, p := range def.NeedPermission {
		perms = append(perms, command.Permission(strings.ToUpper(p)))
	}

	return &command.Command{
		Name:        strings.ToLower(def.Name),
		Aliases:     slices.Clone(def.Aliases),
		Category:    entry.Category,
		Description: def.Description,
		UsageKey:    def.Usage,
		Disabled:    def.Disabled,
		Guards: command.Guards{
			AdminOnly:      def.AdminOnly,
			NeedPermission: perms,
			GuildOnly:      def.GuildOnly,
			DMOnly:         def.DMOnly,
			NSFWOnly:       def.NSFWOnly,
			ArgsNeeded:     def.ArgsNeeded,
			ArgsMinLength:  def.ArgsMinLength,
		},
		Handler: handler,
	}, nil
}

func (s *Source) definition(loc string) (*Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if def, ok := s.cache[loc]; ok {
		return def, nil
	}

	data, err := fs.ReadFile(s.fsys, loc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc, err)
	}
	entry := s.byLoc[loc]
	if !strings.EqualFold(def.Name, entry.Name) {
		return nil, fmt.Errorf("%s: definition names %q, expected %q", loc, def.Name, entry.Name)
	}

	s.cache[loc] = def
	return def, nil
}

// Parse decodes and validates a single definition. Unknown fields are errors.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty definition")
		}
		return nil, fmt.Errorf("parse definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks the definition for contradictory or unknown settings.
func (d *Definition) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if strings.ContainsAny(d.Name, " \t\n") {
		errs = append(errs, fmt.Errorf("name %q contains whitespace", d.Name))
	}
	for _, a := range d.Aliases {
		if strings.TrimSpace(a) == "" || strings.ContainsAny(a, " \t\n") {
			errs = append(errs, fmt.Errorf("invalid alias %q", a))
		}
	}
	if d.ArgsMinLength < 0 {
		errs = append(errs, fmt.Errorf("args_min_length must not be negative, got %d", d.ArgsMinLength))
	}
	if d.GuildOnly && d.DMOnly {
		errs = append(errs, errors.New("guild_only and dm_only cannot both be set"))
	}
	for _, p := range d.NeedPermission {
		if !slices.Contains(command.Permissions, command.Permission(strings.ToUpper(p))) {
			errs = append(errs, fmt.Errorf("unknown permission %q", p))
		}
	}
	return errors.Join(errs...)
}

// LoadAll loads every table entry into reg. A command whose definition is broken,
// disabled or clashes with an earlier one is skipped; the returned error joins
// every skip caused by a problem.
func (s *Source) LoadAll(reg *command.Registry) (int, error) {
	var (
		loaded int
		errs   []error
	)
	for _, e := range s.entries {
		loc := s.Locate(e.Category, e.Name)
		cmd, err := s.Load(loc)
		if err != nil {
			s.log.Error().Err(err).Str("location", loc).Msg("skipping command")
			errs = append(errs, err)
			continue
		}
		if cmd.Disabled {
			s.log.Debug().Str("command", cmd.Name).Msg("command disabled")
			continue
		}
		if err := reg.Register(cmd); err != nil {
			s.log.Error().Err(err).Str("location", loc).Msg("skipping command")
			errs = append(errs, err)
			continue
		}
		loaded++
	}
	s.log.Info().Int("loaded", loaded).Int("skipped", len(errs)).Msg("commands registered")
	return loaded, errors.Join(errs...)
}
