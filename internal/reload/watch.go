package reload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Reloader is satisfied by Manager.
type Reloader interface {
	Reload(ctx context.Context, token string) (*Result, error)
}

// Watcher reloads a command when its definition file under root changes. Definitions
// live at <root>/<category>/<name>.yaml; only the category level is watched.
type Watcher struct {
	root     string
	reloader Reloader
	debounce time.Duration
	log      zerolog.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time // command name -> last change
}

func NewWatcher(root string, r Reloader, debounce time.Duration, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     filepath.Clean(root),
		reloader: r,
		debounce: debounce,
		log:      log,
		fsw:      fsw,
		pending:  make(map[string]time.Time),
	}
	if err := w.addDirs(); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addDirs() error {
	if err := w.fsw.Add(w.root); err != nil {
		return err
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := w.fsw.Add(filepath.Join(w.root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Run processes file events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	tick := max(w.debounce/2, 10*time.Millisecond)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watcher error")

		case <-ticker.C:
			for _, name := range w.due(time.Now()) {
				w.reload(ctx, name)
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	// New category folders are picked up as they appear.
	if ev.Has(fsnotify.Create) && filepath.Dir(ev.Name) == w.root {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(ev.Name); err != nil {
				w.log.Warn().Err(err).Str("dir", ev.Name).Msg("cannot watch category")
			}
			return
		}
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	name, ok := commandName(w.root, ev.Name)
	if !ok {
		return
	}
	w.mu.Lock()
	w.pending[name] = time.Now()
	w.mu.Unlock()
}

// due pops the commands whose last change is older than the debounce window.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var names []string
	for name, changed := range w.pending {
		if now.Sub(changed) >= w.debounce {
			names = append(names, name)
			delete(w.pending, name)
		}
	}
	return names
}

func (w *Watcher) reload(ctx context.Context, name string) {
	res, err := w.reloader.Reload(ctx, name)
	var unknown *UnknownCommandError
	switch {
	case errors.As(err, &unknown):
		w.log.Warn().Str("command", name).Msg("changed definition is not registered, restart to add it")
	case err != nil:
		w.log.Warn().Err(err).Str("command", name).Msg("automatic reload failed")
	default:
		w.log.Info().Str("command", res.Current.Name).Msg("definition changed, command reloaded")
	}
}

// commandName maps <root>/<category>/<name>.yaml to name.
func commandName(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 || parts[0] == ".." {
		return "", false
	}
	name, ok := strings.CutSuffix(parts[1], ".yaml")
	if !ok || name == "" || strings.HasPrefix(name, ".") {
		return "", false
	}
	return strings.ToLower(name), true
}
