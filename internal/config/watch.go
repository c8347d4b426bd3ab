package config

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

// reloadDelay coalesces the burst of events one editor save produces.
const reloadDelay = 200 * time.Millisecond

// Watch reloads path whenever watcher reports a change to it and passes the
// new config to apply. Invalid files are logged and skipped. Watch blocks
// until ctx is done or the watcher closes.
func Watch(ctx context.Context, path string, watcher ports.FileWatcher, logger *zap.Logger, apply func(*Config)) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	events, err := watcher.Watch(ctx, filepath.Dir(path))
	if err != nil {
		return err
	}

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Path) != filepath.Base(path) || ev.Operation == ports.FileDeleted {
				continue
			}
			timer.Reset(reloadDelay)
		case <-timer.C:
			cfg, err := Load(path)
			if err != nil {
				logger.Warn("Ignoring invalid config", zap.String("path", path), zap.Error(err))
				continue
			}
			logger.Info("Config reloaded", zap.String("path", path))
			apply(cfg)
		}
	}
}
