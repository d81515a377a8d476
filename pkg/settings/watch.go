package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

const watchDebounce = 50 * time.Millisecond

// StopFunc ends a watch and waits for its goroutine to exit.
type StopFunc func() error

// Watch reloads the store whenever its backing file changes and calls
// onChange after each successful reload. The parent directory is watched
// so that atomic replace-by-rename writes are observed.
func (s *Store) Watch(ctx context.Context, onChange func()) (StopFunc, error) {
	if s.path == "" {
		return nil, fmt.Errorf("settings store has no backing file")
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create settings directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		_ = watcher.Close()
	})

	var (
		mu        sync.Mutex
		debouncer *time.Timer
	)
	reload := func() {
		if sctx.IsStopping() {
			return
		}
		if err := s.Reload(); err != nil {
			s.logger.Error("settings reload failed", "path", s.path, "err", err)
			return
		}
		s.logger.Debug("settings reloaded", "path", s.path)
		onChange()
	}

	base := filepath.Base(s.path)
	sctx.Go(func(sctx *stopper.Context) error {
		sctx.Defer(func() {
			mu.Lock()
			if debouncer != nil {
				debouncer.Stop()
			}
			mu.Unlock()
		})

		for {
			select {
			case <-sctx.Stopping():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
					continue
				}
				mu.Lock()
				if debouncer != nil {
					debouncer.Stop()
				}
				debouncer = time.AfterFunc(watchDebounce, reload)
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				s.logger.Warn("settings watcher error", "err", err)
			}
		}
	})

	return func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}, nil
}
