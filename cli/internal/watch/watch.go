// Package watch re-runs a callback when the scripts of a directory change.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of events to end
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a directory for changes
type Watcher struct {
	dir      string
	callback func() error
	debounce time.Duration
	watcher  *fsnotify.Watcher
	done     chan bool
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a new directory watcher
func NewWatcher(dir string, callback func() error, opts ...Option) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if err := watcher.Add(absPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	w := &Watcher{
		dir:      absPath,
		callback: callback,
		debounce: DefaultDebounce,
		watcher:  watcher,
		done:     make(chan bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start runs the callback once and then again after every change.
func (w *Watcher) Start() error {
	if err := w.callback(); err != nil {
		return fmt.Errorf("initial callback failed: %w", err)
	}

	go func() {
		debounceTimer := time.NewTimer(w.debounce)
		debounceTimer.Stop()
		var debounceCh <-chan time.Time

		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !relevant(event) {
					continue
				}
				// Debounce: reset timer on each event
				debounceTimer.Reset(w.debounce)
				debounceCh = debounceTimer.C

			case <-debounceCh:
				if err := w.callback(); err != nil {
					fmt.Fprintf(os.Stderr, "Watch callback error: %v\n", err)
				}
				debounceCh = nil

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

			case <-w.done:
				debounceTimer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop stops watching the directory
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}

// relevant ignores chmod-only events and editor swap files.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if base == "" || base[0] == '.' || base[len(base)-1] == '~' {
		return false
	}
	return filepath.Ext(base) != ".swp"
}
