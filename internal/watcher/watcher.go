// Package watcher re-runs report generation when composables reports change.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ppiankov/mendable/internal/metrics"
	"github.com/ppiankov/mendable/internal/models"
	"github.com/ppiankov/mendable/pkg/config"
)

// ChangeFunc handles one debounced batch of changed report paths. Batches
// never overlap.
type ChangeFunc func(ctx context.Context, paths []string)

// Watcher observes a scan root for changes to composables reports
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	recursive bool
	debounce  time.Duration
	exclude   *config.ExcludeMatcher

	Metrics *metrics.Metrics
}

// New creates a watcher on root. Subdirectories are followed when recursive is set.
func New(root string, recursive bool, debounce time.Duration, exclude *config.ExcludeMatcher) (*Watcher, error) {
	if debounce <= 0 {
		return nil, fmt.Errorf("debounce must be positive, got %s", debounce)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsw,
		root:      root,
		recursive: recursive,
		debounce:  debounce,
		exclude:   exclude,
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers debounced change batches to onChange until ctx is done.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	if onChange == nil {
		return os.ErrInvalid
	}

	pending := make(map[string]struct{})
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

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) && w.recursive {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}

			if !w.relevant(event) {
				continue
			}
			w.Metrics.ObserveWatchEvent()
			slog.Debug("report changed", "path", event.Name, "op", event.Op.String())

			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			clear(pending)
			onChange(ctx, paths)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, models.ReportFileSuffix) {
		return false
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		rel = name
	}
	return !w.exclude.Excluded(models.ModuleNameFromPath(event.Name), rel)
}

func (w *Watcher) addTree(root string) error {
	if !w.recursive {
		if err := w.fsWatcher.Add(root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories can vanish between the event and the walk.
			if path != root && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
