package command

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"sync"
)

var (
	// ErrNotFound is returned by Replace when no command is registered under the name.
	ErrNotFound = errors.New("command not found")
	// ErrDisabled is returned by Replace when the replacement is marked disabled.
	ErrDisabled = errors.New("command definition is disabled")
)

// DuplicateNameError reports a name or alias that is already taken.
type DuplicateNameError struct {
	Name     string // command being registered
	Conflict string // the colliding name or alias
	Owner    string // command that already holds it
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("command %q: name or alias %q already used by %q", e.Name, e.Conflict, e.Owner)
}

// NameMismatchError is returned by Replace when the replacement carries another name.
type NameMismatchError struct {
	Want string
	Got  string
}

func (e *NameMismatchError) Error() string {
	return fmt.Sprintf("replacement for %q is named %q", e.Want, e.Got)
}

// Registry stores commands by name, alias and category. It does not dispatch;
// the pipeline resolves tokens here and invokes the result.
type Registry struct {
	mu         sync.RWMutex
	byName     map[string]*Command
	byAlias    map[string]string // alias -> owning name
	byCategory map[string]map[string]*Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:     make(map[string]*Command),
		byAlias:    make(map[string]string),
		byCategory: make(map[string]map[string]*Command),
	}
}

// Register adds a command. Disabled commands are skipped silently.
func (r *Registry) Register(c *Command) error {
	if c == nil || c.Disabled {
		return nil
	}
	if normalize(c.Name) == "" {
		return fmt.Errorf("command has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkKeys(c, ""); err != nil {
		return err
	}
	r.insert(c)
	return nil
}

// Resolve finds a command by name, then by alias. Matching is case-insensitive.
func (r *Registry) Resolve(token string) (*Command, bool) {
	key := normalize(token)
	if key == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.byName[key]; ok {
		return c, true
	}
	if owner, ok := r.byAlias[key]; ok {
		return r.byName[owner], true
	}
	return nil, false
}

// Replace swaps the command registered under name for next. Every check runs before
// anything is touched, so on error the registry is exactly as it was.
func (r *Registry) Replace(name string, next *Command) error {
	key := normalize(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byName[key]
	if !ok {
		return fmt.Errorf("replace %q: %w", name, ErrNotFound)
	}
	if next == nil {
		return fmt.Errorf("replace %q: nil command", name)
	}
	if normalize(next.Name) != key {
		return &NameMismatchError{Want: old.Name, Got: next.Name}
	}
	if next.Disabled {
		return fmt.Errorf("replace %q: %w", name, ErrDisabled)
	}
	if err := r.checkKeys(next, key); err != nil {
		return err
	}

	r.evict(old)
	r.insert(next)
	return nil
}

// ListByCategory yields each category with its commands sorted by name. The snapshot is
// taken when ListByCategory is called; later registry changes are not observed by the sequence.
func (r *Registry) ListByCategory() iter.Seq2[string, []*Command] {
	r.mu.RLock()
	categories := make([]string, 0, len(r.byCategory))
	snapshot := make(map[string][]*Command, len(r.byCategory))
	for cat, cmds := range r.byCategory {
		categories = append(categories, cat)
		list := make([]*Command, 0, len(cmds))
		for _, c := range cmds {
			list = append(list, c)
		}
		sortByName(list)
		snapshot[cat] = list
	}
	r.mu.RUnlock()
	sort.Strings(categories)

	return func(yield func(string, []*Command) bool) {
		for _, cat := range categories {
			if !yield(cat, snapshot[cat]) {
				return
			}
		}
	}
}

// All returns every registered command sorted by name.
func (r *Registry) All() []*Command {
	r.mu.RLock()
	list := make([]*Command, 0, len(r.byName))
	for _, c := range r.byName {
		list = append(list, c)
	}
	r.mu.RUnlock()
	sortByName(list)
	return list
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// checkKeys reports the first name or alias of c that is already taken by a command
// other than the one registered under skip. Callers hold the write lock.
func (r *Registry) checkKeys(c *Command, skip string) error {
	seen := make(map[string]bool)
	for _, k := range c.keys() {
		if k == "" {
			continue
		}
		if seen[k] {
			if k == normalize(c.Name) {
				return &DuplicateNameError{Name: c.Name, Conflict: k, Owner: c.Name}
			}
			continue
		}
		seen[k] = true

		if owner, ok := r.byName[k]; ok && normalize(owner.Name) != skip {
			return &DuplicateNameError{Name: c.Name, Conflict: k, Owner: owner.Name}
		}
		if owner, ok := r.byAlias[k]; ok && owner != skip {
			return &DuplicateNameError{Name: c.Name, Conflict: k, Owner: r.byName[owner].Name}
		}
	}
	return nil
}

func (r *Registry) insert(c *Command) {
	key := normalize(c.Name)
	r.byName[key] = c
	for _, a := range c.Aliases {
		if ak := normalize(a); ak != "" && ak != key {
			r.byAlias[ak] = key
		}
	}
	cat := r.byCategory[c.Category]
	if cat == nil {
		cat = make(map[string]*Command)
		r.byCategory[c.Category] = cat
	}
	cat[key] = c
}

func (r *Registry) evict(c *Command) {
	key := normalize(c.Name)
	delete(r.byName, key)
	for _, a := range c.Aliases {
		if ak := normalize(a); r.byAlias[ak] == key {
			delete(r.byAlias, ak)
		}
	}
	if cat := r.byCategory[c.Category]; cat != nil {
		delete(cat, key)
		if len(cat) == 0 {
			delete(r.byCategory, c.Category)
		}
	}
}

func sortByName(list []*Command) {
	sort.Slice(list, func(i, j int) bool {
		return normalize(list[i].Name) < normalize(list[j].Name)
	})
}
