package download

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/vslauncher/launcher/internal/fsstore"
)

// DefaultWatchDebounce is how long the watcher waits after the last event before rebuilding
const DefaultWatchDebounce = 500 * time.Millisecond

// IndexWatcher rebuilds the installed index when the version cache changes on disk
// outside the download manager (manual copies or deletions).
type IndexWatcher struct {
	fsWatcher *fsnotify.Watcher
	index     *InstalledIndex
	dir       string
	debounce  time.Duration

	mu    sync.Mutex
	timer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewIndexWatcher watches dir (the versions directory) for top-level changes
func NewIndexWatcher(index *InstalledIndex, dir string, debounce time.Duration) (*IndexWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &IndexWatcher{
		fsWatcher: fsWatcher,
		index:     index,
		dir:       dir,
		debounce:  debounce,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start begins processing filesystem events
func (w *IndexWatcher) Start() {
	w.wg.Add(1)
	go w.eventLoop()
	log.Info().Str("path", w.dir).Msg("Watching version cache")
}

// Stop stops the watcher and waits for the event loop to exit
func (w *IndexWatcher) Stop() error {
	w.cancel()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	return w.fsWatcher.Close()
}

func (w *IndexWatcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.schedule()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Version cache watcher error")
		}
	}
}

// relevant filters out staging artefacts and pure content writes
func relevant(event fsnotify.Event) bool {
	if fsstore.IsHidden(filepath.Base(event.Name)) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// schedule (re)arms the debounce timer
func (w *IndexWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.rebuild)
}

func (w *IndexWatcher) rebuild() {
	if w.ctx.Err() != nil {
		return
	}
	if err := w.index.Rebuild(w.ctx); err != nil {
		log.Error().Err(err).Msg("Failed to rebuild installed index after filesystem change")
		return
	}
	log.Debug().Int("installed", w.index.Len()).Msg("Installed index refreshed from filesystem")
}
