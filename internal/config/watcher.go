package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 500 * time.Millisecond

// Watcher watches the config file and reloads it on change.
type Watcher struct {
	path       string
	schemaPath string
	onReload   func(*Config, error)
	current    *Config
	done       chan struct{}
	closeOnce  sync.Once
	mu         sync.RWMutex
	reloads    atomic.Uint32
}

// NewWatcher loads the config once and starts watching it for changes.
func NewWatcher(path string, schemaPath string, onReload func(*Config, error)) (*Watcher, error) {
	watcher := &Watcher{
		path:       path,
		schemaPath: schemaPath,
		onReload:   onReload,
		done:       make(chan struct{}),
	}

	cfg, err := LoadAndValidate(path, schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}
	watcher.current = cfg

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so atomic-rename saves are still seen.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	go watcher.watch(fsw)

	return watcher, nil
}

func (cw *Watcher) watch(fsw *fsnotify.Watcher) {
	defer fsw.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	target := filepath.Clean(cw.path)
	for {
		select {
		case <-cw.done:
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if timer != nil {
					timer.Stop()
				}

				timer = time.AfterFunc(debounce, cw.reload)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}

			slog.Error("Watcher error", "error", err)
		}
	}
}

func (cw *Watcher) reload() {
	count := cw.reloads.Add(1)
	slog.Info("Reloading config file", "path", cw.path, "count", count)

	cfg, err := LoadAndValidate(cw.path, cw.schemaPath)
	if err != nil {
		slog.Error("Failed to reload config", "error", err)
		cw.onReload(nil, err)
		return
	}

	cw.mu.Lock()
	cw.current = cfg
	cw.mu.Unlock()

	slog.Info("Config reloaded successfully", "count", count)
	cw.onReload(cfg, nil)
}

// Snapshot returns the current config snapshot (thread-safe).
func (cw *Watcher) Snapshot() *Config {
	cw.mu.RLock()
	defer cw.mu.RUnlock()

	return cw.current
}

// ReloadCount returns the number of times the config has been reloaded.
func (cw *Watcher) ReloadCount() uint32 {
	return cw.reloads.Load()
}

// Close stops watching.
func (cw *Watcher) Close() {
	cw.closeOnce.Do(func() {
		close(cw.done)
	})
}
