package manifest

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tandemview/tandem/internal/logging"
)

// Watcher reloads manifest stores when the build rewrites their documents.
// Development-mode only: production loads each manifest once at process
// start. Events are debounced because build tools commonly write a document
// in several bursts.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	stores    map[string]*Store
	onReload  func(Domain)
	logger    logging.Logger
	debounce  time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher creates a watcher over the given stores. onReload is invoked
// after a store has been swapped to a freshly loaded manifest; it may be nil.
func NewWatcher(stores []*Store, onReload func(Domain), logger logging.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		stores:    make(map[string]*Store, len(stores)),
		onReload:  onReload,
		logger:    logger.WithComponent("manifest-watcher"),
		debounce:  200 * time.Millisecond,
		timers:    make(map[string]*time.Timer),
	}

	watched := make(map[string]struct{})
	for _, store := range stores {
		if store.Path() == "" {
			continue
		}
		abs, err := filepath.Abs(store.Path())
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
		w.stores[abs] = store

		// Watch the directory: build tools replace the document rather
		// than writing it in place.
		dir := filepath.Dir(abs)
		if _, ok := watched[dir]; ok {
			continue
		}
		if err := fsWatcher.Add(dir); err != nil {
			fsWatcher.Close()
			return nil, err
		}
		watched[dir] = struct{}{}
	}

	return w, nil
}

// Start consumes file events until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		defer w.fsWatcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.fsWatcher.Events:
				if !ok {
					return
				}
				w.handleEvent(ctx, event)
			case err, ok := <-w.fsWatcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn(ctx, err, "manifest watch error")
			}
		}
	}()
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	store, ok := w.stores[abs]
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[abs]; ok {
		timer.Stop()
	}
	w.timers[abs] = time.AfterFunc(w.debounce, func() {
		w.reload(ctx, store)
	})
}

func (w *Watcher) reload(ctx context.Context, store *Store) {
	if err := store.Reload(); err != nil {
		w.logger.Warn(ctx, err, "manifest reload failed",
			"domain", string(store.Domain()),
			"path", store.Path())
		return
	}

	w.logger.Info(ctx, "manifest reloaded",
		"domain", string(store.Domain()),
		"entries", store.Current().Len())

	if w.onReload != nil {
		w.onReload(store.Domain())
	}
}
