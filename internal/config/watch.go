// internal/config/watch.go
package config

import (
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch watches path for writes and logs the change - secrets are never
// hot-reloaded, the process must be restarted to pick up new config.
func Watch(path string, logger *zap.Logger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					logger.Warn("configuration file changed on disk, restart to apply",
						zap.String("path", event.Name))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("config watcher error", zap.Error(err))
			}
		}
	}()

	return watcher, nil
}
