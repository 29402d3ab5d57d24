package profile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/buildcard/pkg/logger"
)

// Watch reloads the dataset whenever its file changes on disk, until ctx is
// done. The parent directory is watched so editors that replace the file
// are picked up too.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatch, err)
	}
	defer func() { _ = w.Close() }()

	target := filepath.Clean(s.path)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrWatch, err)
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWatch, dir, err)
	}
	s.logger.Info(ctx, "watching weighting dataset", logger.String("path", target))

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			reload = time.After(s.debounce)
		case <-reload:
			reload = nil
			if err := s.Load(ctx); err != nil {
				s.logger.Warn(ctx, "weighting dataset reload failed", logger.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn(ctx, "weighting dataset watcher error", logger.Error(err))
		}
	}
}
