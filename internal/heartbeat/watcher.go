package heartbeat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/gadomski/atlas/internal/sbd"
)

// Watcher keeps a shared heartbeat slice up to date as message files land in
// a store directory.
//
// The slice is guarded by a single reader-writer lock: any number of
// concurrent Snapshot calls, one Refresh at a time. A refresh replaces the
// contents wholesale under the write lock, so readers always see either the
// previous complete batch or the new one, never a partial rebuild. One
// watcher owns the write path; nothing serializes two watchers over the same
// slice.
type Watcher struct {
	mu         sync.RWMutex
	heartbeats []Heartbeat

	dir    string
	source *Source
}

// NewWatcher creates a watcher over the message store at dir, restricted to
// the given IMEI numbers (none means all), and performs the initial refresh.
func NewWatcher(dir string, imeis []string) (*Watcher, error) {
	store, err := sbd.OpenFilesystemStore(dir)
	if err != nil {
		return nil, err
	}
	source := NewSource(store)
	for _, imei := range imeis {
		source.Allow(imei)
	}
	w := &Watcher{dir: dir, source: source}
	if err := w.Refresh(); err != nil {
		return nil, err
	}
	return w, nil
}

// Snapshot returns a copy of the current heartbeat slice, sorted ascending
// by start time.
func (w *Watcher) Snapshot() []Heartbeat {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Heartbeat, len(w.heartbeats))
	copy(out, w.heartbeats)
	return out
}

// Latest returns the most recent heartbeat, or false if there is none yet.
func (w *Watcher) Latest() (Heartbeat, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.heartbeats) == 0 {
		return Heartbeat{}, false
	}
	return w.heartbeats[len(w.heartbeats)-1], true
}

// Refresh rebuilds the heartbeat slice from the store.
func (w *Watcher) Refresh() error {
	heartbeats, err := w.source.Heartbeats()
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.heartbeats = w.heartbeats[:0]
	w.heartbeats = append(w.heartbeats, heartbeats...)
	return nil
}

// Watch blocks on filesystem change notifications for the store directory,
// refreshing whenever a message file changes. Refresh failures are logged
// and the loop continues; the loop ends only when ctx is cancelled (nil) or
// the notification channel breaks (error).
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("heartbeat: start watch: %w", err)
	}
	defer watcher.Close()

	if err := armWatch(watcher, w.dir); err != nil {
		return err
	}
	slog.Info("heartbeat: watching for messages", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("heartbeat: watch on %s: event channel closed", w.dir)
			}
			// A new or renamed IMEI subdirectory will not be covered by the
			// existing watches; re-arm so its files are seen. Some platforms
			// also silently stop delivering after a directory rename.
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := armWatch(watcher, w.dir); err != nil {
					return err
				}
				slog.Info("heartbeat: watch re-armed", "dir", w.dir, "cause", event.Name)
			}
			if _, ok := sbd.SessionTimeFromPath(event.Name); !ok {
				continue
			}
			if err := w.Refresh(); err != nil {
				slog.Error("heartbeat: refresh failed", "dir", w.dir, "err", err)
				continue
			}
			w.mu.RLock()
			count := len(w.heartbeats)
			w.mu.RUnlock()
			slog.Info("heartbeat: refreshed", "cause", event.Name, "count", count)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("heartbeat: watch on %s: error channel closed", w.dir)
			}
			slog.Error("heartbeat: watch error", "dir", w.dir, "err", err)
		}
	}
}

// armWatch registers the store root and every IMEI subdirectory. fsnotify
// watches are not recursive; Add is idempotent for already-watched paths.
func armWatch(watcher *fsnotify.Watcher, dir string) error {
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("heartbeat: watch %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("heartbeat: watch %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := watcher.Add(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("heartbeat: watch %s: %w", entry.Name(), err)
		}
	}
	return nil
}
