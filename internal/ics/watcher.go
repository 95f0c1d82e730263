package ics

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// Watcher calls onChange once a watched file has settled after a write.
// Editors that save by renaming a new file over the old one drop the
// inotify watch, so a Rename or Remove re-adds the path before onChange
// runs.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	onChange func(string)
	log      *slog.Logger
	mu       sync.Mutex
	pending  map[string]*time.Timer
	readd    map[string]bool
	done     chan struct{}
	once     sync.Once
}

func NewWatcher(onChange func(string), log *slog.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  watcher,
		files:    make(map[string]struct{}),
		onChange: onChange,
		log:      log,
		pending:  make(map[string]*time.Timer),
		readd:    make(map[string]bool),
		done:     make(chan struct{}),
	}

	go w.watch()
	return w, nil
}

func (w *Watcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.files[absPath]; exists {
		return nil
	}

	if err := w.watcher.Add(absPath); err != nil {
		return err
	}

	w.files[absPath] = struct{}{}
	return nil
}

// RemoveFile stops watching path. A path whose watch the kernel already
// dropped (the file was deleted) is removed without error.
func (w *Watcher) RemoveFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.files[absPath]; !exists {
		return nil
	}

	if err := w.watcher.Remove(absPath); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
		return err
	}

	delete(w.files, absPath)
	delete(w.readd, absPath)
	return nil
}

// isWatched reports whether path is in the watch set.
func (w *Watcher) isWatched(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[absPath]
	return ok
}

func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			switch {
			case event.Op&(fsnotify.Rename|fsnotify.Remove) != 0:
				w.schedule(event.Name, true)
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				w.schedule(event.Name, false)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "err", err)

		case <-w.done:
			return
		}
	}
}

// schedule restarts the debounce timer for name. readd sticks until the
// timer fires.
func (w *Watcher) schedule(name string, readd bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, watching := w.files[name]; !watching {
		return
	}
	if readd {
		w.readd[name] = true
	}
	if timer, exists := w.pending[name]; exists {
		timer.Stop()
	}
	w.pending[name] = time.AfterFunc(debounceDelay, func() { w.fire(name) })
}

func (w *Watcher) fire(name string) {
	w.mu.Lock()
	delete(w.pending, name)
	_, watching := w.files[name]
	readd := w.readd[name]
	delete(w.readd, name)
	if watching && readd {
		// A rename leaves the old watch on the moved inode.
		_ = w.watcher.Remove(name)
		if err := w.watcher.Add(name); err != nil {
			w.log.Warn("rewatch failed", "file", name, "err", err)
		} else {
			w.log.Debug("rewatched file", "file", name)
		}
	}
	w.mu.Unlock()

	if watching && w.onChange != nil {
		w.onChange(name)
	}
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)

		w.mu.Lock()
		for name, timer := range w.pending {
			timer.Stop()
			delete(w.pending, name)
		}
		w.mu.Unlock()

		err = w.watcher.Close()
	})
	return err
}
