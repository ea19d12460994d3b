// Package watch turns filesystem changes under the source tree into debounced
// rebuild triggers.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/util/sets"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// DefaultDebounce collapses editor save bursts into a single rebuild.
const DefaultDebounce = 500 * time.Millisecond

// TriggerFunc receives the sorted, de-duplicated set of changed paths.
type TriggerFunc func(ctx context.Context, changed []string)

// Watcher monitors a set of directories. Missing directories are skipped.
type Watcher struct {
	Dirs     []string
	Debounce time.Duration
	// Ignore filters out paths the build itself writes.
	Ignore func(path string) bool
	Logger *slog.Logger
}

// New creates a watcher over dirs with the default debounce.
func New(logger *slog.Logger, dirs ...string) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{Dirs: dirs, Debounce: DefaultDebounce, Logger: logger}
}

// Run blocks until ctx is canceled. trigger is never invoked concurrently.
func (w *Watcher) Run(ctx context.Context, trigger TriggerFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create file watcher").Build()
	}
	defer func() { _ = fw.Close() }()

	watched := 0
	for _, dir := range w.Dirs {
		if dir == "" {
			continue
		}
		if fi, statErr := os.Stat(dir); statErr != nil || !fi.IsDir() {
			w.Logger.Debug("Skipping watch directory", logfields.Path(dir))
			continue
		}
		if err := fw.Add(dir); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to watch directory").
				WithContext("path", dir).Build()
		}
		watched++
		w.Logger.Info("Watching directory", logfields.Path(dir))
	}
	if watched == 0 {
		return ferrors.NotFoundError("no watchable directories").Build()
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	pending := sets.New[string]()
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.Logger.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			pending.Add(ev.Name)
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				pending.Add("")
				timer.Reset(debounce)
			}
			w.Logger.Warn("File watcher error", logfields.Error(err))
		case <-timer.C:
			if pending.Len() == 0 {
				continue
			}
			changed := slices.DeleteFunc(sets.Sorted(pending), func(p string) bool { return p == "" })
			pending = sets.New[string]()
			trigger(ctx, changed)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	// Editor swap and backup files.
	if base == "" || base[0] == '.' || base[len(base)-1] == '~' || filepath.Ext(base) == ".swp" {
		return false
	}
	if w.Ignore != nil && w.Ignore(ev.Name) {
		return false
	}
	return true
}

// Under reports whether path lies within any of roots. It backs Ignore
// predicates for output directories nested in the source tree.
func Under(path string, roots ...string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, root := range roots {
		if root == "" {
			continue
		}
		r, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(r, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
