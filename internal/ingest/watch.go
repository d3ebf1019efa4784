package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"sgci.io/catalog/internal/logging"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before reloading.
const DefaultDebounce = 500 * time.Millisecond

// Watch reloads dir into the store whenever a data file in it changes, until
// ctx is done. Bursts of events within debounce trigger a single reload.
// Failed reloads are logged and leave the previous collection in place.
func (l *Loader) Watch(ctx context.Context, dir string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	l.logger.Info("watching data directory", zap.String("dir", dir), zap.Duration("debounce", debounce))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsDataFile(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			l.logger.Debug("data file changed", zap.String(logging.FieldFile, event.Name), zap.String("op", event.Op.String()))
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			if _, err := l.Load(ctx, dir); err != nil {
				l.logger.Error("reload failed, keeping previous collection", zap.Error(err))
			}
		}
	}
}
