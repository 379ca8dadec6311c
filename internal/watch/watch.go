// Package watch re-runs the audit when an input changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"bennypowers.dev/cssaudit/internal/collections"
	"bennypowers.dev/cssaudit/internal/log"
	"bennypowers.dev/cssaudit/internal/parser"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last event before re-running
const DefaultDebounce = 200 * time.Millisecond

// RunFunc performs one full audit and returns the paths it read
type RunFunc func() ([]string, error)

// Watcher watches the directories of the audited files
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	run      RunFunc
	dirs     collections.Set[string]
	files    collections.Set[string]
}

// New creates a watcher that calls run after changes settle for debounce.
// A zero debounce means DefaultDebounce.
func New(debounce time.Duration, run RunFunc) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		watcher:  watcher,
		debounce: debounce,
		run:      run,
		dirs:     collections.NewSet[string](),
		files:    collections.NewSet[string](),
	}, nil
}

// Add watches the directory of each path. Directories already watched are skipped.
func (w *Watcher) Add(paths []string) error {
	dirs := collections.NewSet[string]()
	for _, p := range paths {
		w.files.Add(filepath.Clean(p))
		dirs.Add(filepath.Dir(p))
	}
	for _, dir := range collections.Sorted(dirs) {
		if w.dirs.Has(dir) {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs.Add(dir)
		log.Debug("watching %s", dir)
	}
	return nil
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run handles events until ctx is done. Runs happen one at a time on the
// calling goroutine; a failed run is logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			log.Debug("%s %s", event.Op, event.Name)
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("file watcher error: %v", err)

		case <-timer.C:
			paths, err := w.run()
			if err != nil {
				log.Error("%v", err)
				continue
			}
			if err := w.Add(paths); err != nil {
				log.Warn("%v", err)
			}
		}
	}
}

// relevant reports whether an event can change the audit: a change to an
// audited file, or to any file with a supported extension
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return w.files.Has(filepath.Clean(event.Name)) ||
		parser.LanguageForPath(event.Name) != parser.Unknown
}
