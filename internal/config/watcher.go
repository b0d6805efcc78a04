package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/hoverlay/internal/debounce"
)

// Watcher reloads a store from a TOML file when it changes on disk. The
// parent directory is watched rather than the file itself, so
// atomic-rename saves (write temp, rename over) are still observed.
// Events are debounced: editors fire several writes per save.
type Watcher struct {
	path    string
	store   *Store
	fsw     *fsnotify.Watcher
	reload  *debounce.Scheduler[string]
	onError func(error)
	done    chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithErrorHandler sets the callback for reload failures. Without one,
// failures are dropped and the store keeps its previous settings.
func WithErrorHandler(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// NewWatcher starts watching path and pushing reloaded settings into
// store. Close releases the watch.
func NewWatcher(path string, store *Store, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:  abs,
		store: store,
		fsw:   fsw,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.reload = debounce.NewScheduler(100*time.Millisecond, func(string) {
		w.reloadNow()
	})

	go w.run()
	return w, nil
}

// Close stops the watcher. Pending debounced reloads are cancelled.
func (w *Watcher) Close() error {
	w.reload.Unschedule()
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.reload.Schedule(ev.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.fail(err)
		}
	}
}

func (w *Watcher) reloadNow() {
	settings, err := Load(w.path)
	if err != nil {
		w.fail(err)
		return
	}
	w.store.Update(settings)
}

func (w *Watcher) fail(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}
