package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"pdf-annotator/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports when any of a set of files changes on disk. Editors often
// save by writing a new file and renaming it over the old one, so the
// containing directories are watched and events are filtered by name.
// Bursts of events within the debounce interval are reported once.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *slog.Logger

	stopCh    chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	onChange  func(path string) // Called from the watcher goroutine
}

// NewWatcher creates a watcher for paths. A nil logger discards output.
func NewWatcher(debounce time.Duration, logger *slog.Logger, paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		files:    make(map[string]bool),
		debounce: debounce,
		fsw:      fsw,
		logger:   logging.OrDiscard(logger),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return w, nil
}

// OnChange sets the callback invoked with the changed file's path. The
// callback runs on the watcher goroutine.
func (w *Watcher) OnChange(callback func(path string)) {
	w.onChange = callback
}

// Start begins watching in a background goroutine. Only the first call,
// before any Stop, has an effect.
func (w *Watcher) Start() {
	w.startOnce.Do(func() { go w.watchLoop() })
}

// Stop ends watching and waits for the goroutine started by Start to exit.
// It may be called without Start.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.fsw.Close()
		w.startOnce.Do(func() { close(w.done) })
		<-w.done
	})
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	var pending string

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Clean(ev.Name)] {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("file event", "path", ev.Name, "op", ev.Op.String())
			pending = filepath.Clean(ev.Name)
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		case <-timer.C:
			if pending != "" && w.onChange != nil {
				w.onChange(pending)
			}
			pending = ""
		}
	}
}
