package files

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls back when a data source changes. For a file the parent
// directory is watched so editors that save by rename are still noticed; for
// a directory every CSV inside it counts.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher for path. Bursts of events closer together
// than debounce produce a single callback.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		logger:   logger.With("component", "watcher"),
	}
}

// Run blocks until ctx is cancelled, calling onChange after the file is
// written, created or renamed into place.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir, match := w.target()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logger.InfoContext(ctx, "Watching data source for changes", slog.String("path", w.path))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !match(filepath.Clean(event.Name)) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			w.logger.Debug("Data source changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()))

			if w.debounce <= 0 {
				onChange()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.logger.InfoContext(ctx, "Data source updated, reloading", slog.String("path", w.path))
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", slog.String("error", err.Error()))
		}
	}
}

// target returns the directory to watch and the filter for its events. A
// directory source reacts to any CSV inside it, a file source to itself.
func (w *Watcher) target() (string, func(string) bool) {
	if info, err := os.Stat(w.path); err == nil && info.IsDir() {
		return w.path, func(name string) bool {
			return strings.EqualFold(filepath.Ext(name), ".csv")
		}
	}
	return filepath.Dir(w.path), func(name string) bool {
		return name == w.path
	}
}
