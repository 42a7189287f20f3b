package registry

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bpqx-io/bpqx/internal/event"
	"github.com/bpqx-io/bpqx/internal/logging"
)

// reloadDelay coalesces bursts of filesystem events (editors often write a
// document in several steps) into a single reload.
const reloadDelay = 250 * time.Millisecond

// Watcher reloads the registry when extension documents change. It only
// makes sense over the OS filesystem; registries over synthetic
// filesystems should not be watched.
type Watcher struct {
	watcher  *fsnotify.Watcher
	registry *Registry
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	mu       sync.Mutex
}

// NewWatcher creates a watcher over the registry's extensions directory.
func NewWatcher(reg *Registry) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(reg.Dir()); err != nil {
		w.Close()
		return nil, err
	}

	logging.Info().Str("dir", reg.Dir()).Msg("extension watcher initialized")

	return &Watcher{
		watcher:  w,
		registry: reg,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching for document changes.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	go w.run()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !isDocument(ev.Name) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(reloadDelay, w.reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error().Err(err).Msg("extension watcher error")
		}
	}
}

func isDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}

func (w *Watcher) reload() {
	if err := w.registry.Load(); err != nil {
		logging.Error().Err(err).Msg("registry reload failed")
		return
	}

	logging.Info().
		Int("extensions", w.registry.Len()).
		Msg("registry reloaded")

	event.PublishSync(event.Event{
		Type: event.RegistryReloaded,
		Data: event.RegistryReloadedData{
			Extensions: w.registry.Len(),
			Rejected:   len(w.registry.Failures()),
		},
	})
}

// Stop stops the watcher and waits for its goroutine to finish. It is
// safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	started := w.started
	w.started = false
	w.mu.Unlock()

	if !started {
		w.watcher.Close()
		return
	}

	close(w.stopCh)
	w.watcher.Close()
	<-w.doneCh
}
