package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher caches a Lister's catalog and rescans only after the media
// directory changes. Until Run has registered the directory, and after it
// returns, every List call rescans.
type Watcher struct {
	mu        sync.Mutex
	dir       string
	lister    Lister
	fw        *fsnotify.Watcher
	log       *slog.Logger
	watching  bool
	gen       uint64
	cachedGen uint64
	cached    []MediaItem
	onRescan  func(items int)
}

// NewWatcher wraps lister with an fsnotify watch on dir.
func NewWatcher(dir string, lister Lister, log *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		dir:    dir,
		lister: lister,
		fw:     fw,
		log:    log,
		gen:    1,
	}, nil
}

// OnRescan registers a callback invoked after every rescan with the new
// catalog size.
func (w *Watcher) OnRescan(fn func(items int)) {
	w.mu.Lock()
	w.onRescan = fn
	w.mu.Unlock()
}

// List implements Lister.
func (w *Watcher) List() []MediaItem {
	w.mu.Lock()
	if w.watching && w.cached != nil && w.cachedGen == w.gen {
		out := make([]MediaItem, len(w.cached))
		copy(out, w.cached)
		w.mu.Unlock()
		return out
	}
	gen := w.gen
	w.mu.Unlock()

	items := w.lister.List()

	w.mu.Lock()
	w.cached = items
	w.cachedGen = gen
	fn := w.onRescan
	w.mu.Unlock()

	if fn != nil {
		fn(len(items))
	}

	out := make([]MediaItem, len(items))
	copy(out, items)
	return out
}

// Run watches the directory until ctx is done. It returns the registration
// error if the directory cannot be watched; List keeps working uncached.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.fw.Add(w.dir); err != nil {
		w.log.Warn("media directory not watched, rescanning on every request",
			slog.String("dir", w.dir), slog.String("error", err.Error()))
		return err
	}

	w.mu.Lock()
	w.watching = true
	w.gen++
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	}()

	w.log.Info("watching media directory", slog.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if isRelevantEvent(event) {
				w.log.Debug("media directory changed",
					slog.String("op", event.Op.String()), slog.String("name", event.Name))
				w.invalidate()
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("media watcher error", slog.String("error", err.Error()))
			w.invalidate()
		}
	}
}

// Close releases the fsnotify resources.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) invalidate() {
	w.mu.Lock()
	w.gen++
	w.mu.Unlock()
}

func isRelevantEvent(e fsnotify.Event) bool {
	return e.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) != 0
}
