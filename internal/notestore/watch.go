package notestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/simplenotes/internal/checksum"
)

const (
	watchDebounce = 200 * time.Millisecond
	removedSum    = "removed"
)

// Watch reports writes to the notes file that did not come from s, until
// ctx is cancelled. It never reloads the store: when another process
// replaces the file, the next Save from this process overwrites it again.
//
// The parent directory is watched rather than the file, because atomic
// writes replace the file's inode on every save.
func Watch(ctx context.Context, s *Store, logger *slog.Logger, cb EventCallback) error {
	path := s.Path()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("notestore: watch: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("notestore: watch: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("notestore: watch %s: %w", dir, err)
	}

	logger.Info("watcher: started", slog.String("path", path))

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(watchDebounce)
		}
	}

	// Last foreign checksum reported, so one external write is reported once.
	reported := ""

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			sum, changed := foreignChange(s, path)
			if !changed {
				reported = ""
				continue
			}
			if sum == reported {
				continue
			}
			reported = sum
			logger.Warn("notes file changed outside this process; the next save will overwrite it",
				slog.String("path", path))
			if cb != nil {
				cb(EventChangedOnDisk, path)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// foreignChange compares the file on disk with the store's last known
// checksum. The returned sum identifies the foreign state.
func foreignChange(s *Store, path string) (string, bool) {
	known := s.LastChecksum()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return removedSum, known != ""
	}
	if err != nil {
		return "", false
	}
	if checksum.Matches(data, known) {
		return "", false
	}
	return checksum.Sum(data), true
}
