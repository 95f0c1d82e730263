package ics

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cwarden/skuld/internal/events"
)

// Importer loads iCalendar files into a store. Re-importing a file swaps
// out the events it produced last time; events created by hand are left
// alone.
type Importer struct {
	store *events.Manager
	loc   *time.Location
	log   *slog.Logger

	mu       sync.Mutex
	imported map[string][]uuid.UUID
}

func NewImporter(store *events.Manager, loc *time.Location, log *slog.Logger) *Importer {
	if loc == nil {
		loc = time.Local
	}
	return &Importer{
		store:    store,
		loc:      loc,
		log:      log,
		imported: make(map[string][]uuid.UUID),
	}
}

// ImportFile reads path and replaces its previous import. It returns the
// number of events now held for path.
func (im *Importer) ImportFile(path string) (int, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	evs, err := Load(f, im.loc, im.log.With("file", path))
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	im.imported[path] = im.store.Replace(im.imported[path], evs)
	im.log.Info("imported calendar", "file", path, "events", len(evs))
	return len(evs), nil
}

// ImportFiles imports each path, stopping at the first failure.
func (im *Importer) ImportFiles(paths []string) (int, error) {
	total := 0
	for _, path := range paths {
		n, err := im.ImportFile(path)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Files returns the paths imported so far.
func (im *Importer) Files() []string {
	im.mu.Lock()
	defer im.mu.Unlock()

	out := make([]string, 0, len(im.imported))
	for path := range im.imported {
		out = append(out, path)
	}
	return out
}

// Forget drops the events imported from path.
func (im *Importer) Forget(path string) int {
	path, err := filepath.Abs(path)
	if err != nil {
		return 0
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	ids, ok := im.imported[path]
	if !ok {
		return 0
	}
	im.store.Replace(ids, nil)
	delete(im.imported, path)
	im.log.Info("forgot calendar", "file", path, "events", len(ids))
	return len(ids)
}

// Watch re-imports files when they change on disk. A file that is gone
// when the reload runs is forgotten and dropped from the watch set.
// onReload runs on the watcher's goroutine after each attempt.
func (im *Importer) Watch(paths []string, onReload func(path string, n int, err error)) (*Watcher, error) {
	var w *Watcher
	w, err := NewWatcher(func(path string) {
		n, err := im.ImportFile(path)
		if err != nil {
			im.log.Error("reimport failed", "file", path, "err", err)
			if errors.Is(err, os.ErrNotExist) {
				im.Forget(path)
				if rerr := w.RemoveFile(path); rerr != nil {
					im.log.Warn("unwatch failed", "file", path, "err", rerr)
				}
			}
		}
		if onReload != nil {
			onReload(path, n, err)
		}
	}, im.log)
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		if err := w.AddFile(path); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
	}
	return w, nil
}
