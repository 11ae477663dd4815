package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher re-reads the config file on change and applies its dynamic
// section. Static settings need a restart.
type Watcher struct {
	path     string
	dynamic  *DynamicConfig
	logger   *zap.Logger
	debounce time.Duration

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher watches path and pushes reloaded settings into dynamic
func NewWatcher(path string, dynamic *DynamicConfig, logger *zap.Logger) (*Watcher, error) {
	return newWatcher(path, dynamic, logger, defaultDebounce)
}

func newWatcher(path string, dynamic *DynamicConfig, logger *zap.Logger, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Editors replace files by rename, so watch the directory.
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	w := &Watcher{
		path:     path,
		dynamic:  dynamic,
		logger:   logger,
		debounce: debounce,
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled", zap.String("file", path))
	return w, nil
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	var debounceTimer *time.Timer
	target := filepath.Clean(w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error("Failed to reload configuration", zap.Error(err))
		return
	}
	if err := cfg.Dynamic.Validate(); err != nil {
		w.logger.Error("Invalid configuration after reload", zap.Error(err))
		return
	}

	old := w.dynamic.Snapshot()
	if old == cfg.Dynamic {
		w.logger.Debug("Configuration unchanged after reload")
		return
	}

	w.dynamic.Store(cfg.Dynamic)
	w.logger.Info("Configuration reloaded",
		zap.Bool("notify_self_comment", cfg.Dynamic.NotifySelfComment),
		zap.Int("max_sessions_per_identity", cfg.Dynamic.MaxSessionsPerIdentity),
		zap.Int("max_page_size", cfg.Dynamic.MaxPageSize),
	)
}

// Stop ends the watch loop and waits for it to exit
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.done
	})
}
