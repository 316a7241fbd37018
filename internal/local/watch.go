package local

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadDelay is how long to wait after a change before re-reading the
// dataset, so that editors which write in several steps settle first.
const ReloadDelay = 100 * time.Millisecond

// ReloadFunc is called after every reload attempt with the new entry
// count or the error that kept the previous records in place.
type ReloadFunc func(entries int, err error)

// Watch reloads the dataset whenever its file changes, until ctx is
// cancelled. The parent directory is watched so that editors that
// replace the file through a rename are still seen.
func (s *Source) Watch(ctx context.Context, onReload ReloadFunc) error {
	if s.path == "" {
		return fmt.Errorf("in-memory dataset cannot be watched")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.path, err)
	}

	go s.watchLoop(ctx, watcher, onReload)
	return nil
}

func (s *Source) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onReload ReloadFunc) {
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(s.path)
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(ReloadDelay)
			}

		case <-pending:
			pending = nil
			err := s.Reload()
			if err != nil {
				s.logger.Warn("reload failed: %v", err)
			} else {
				s.logger.Info("reloaded %d entries", s.Len())
			}
			if onReload != nil {
				onReload(s.Len(), err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watch error: %v", err)
		}
	}
}
