// Package scheduler runs periodic background checks for the launcher.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/vslauncher/launcher/internal/catalog"
	"github.com/vslauncher/launcher/internal/domain"
)

// DefaultInterval is how often the catalog is polled for a new stable release
const DefaultInterval = time.Hour

// ReleaseInfo is the newest stable release seen in the catalog
// @Description Newest stable game release
type ReleaseInfo struct {
	Version   domain.GameVersion `json:"version"`
	Installed bool               `json:"installed"`
	CheckedAt time.Time          `json:"checked_at"`
}

// ReleaseWatcher polls the version catalog and records the newest stable release
type ReleaseWatcher struct {
	catalog   domain.VersionCatalog
	installed domain.InstalledVersions
	interval  time.Duration
	timeout   time.Duration

	scheduler gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc

	mu        sync.RWMutex
	latest    *ReleaseInfo
	announced string
}

// NewReleaseWatcher creates a watcher; nothing runs until Start
func NewReleaseWatcher(versions domain.VersionCatalog, installed domain.InstalledVersions, interval time.Duration) (*ReleaseWatcher, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ReleaseWatcher{
		catalog:   versions,
		installed: installed,
		interval:  interval,
		timeout:   time.Minute,
		scheduler: s,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start schedules the periodic check, running the first one immediately
func (w *ReleaseWatcher) Start() error {
	_, err := w.scheduler.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(w.run),
		gocron.WithName("release-check"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule release check: %w", err)
	}

	w.scheduler.Start()
	log.Info().Dur("interval", w.interval).Msg("Release watcher started")
	return nil
}

// Stop cancels a running check and shuts the scheduler down
func (w *ReleaseWatcher) Stop() error {
	w.cancel()
	return w.scheduler.Shutdown()
}

// Latest returns the most recent check result, if any
func (w *ReleaseWatcher) Latest() (ReleaseInfo, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.latest == nil {
		return ReleaseInfo{}, false
	}
	info := *w.latest
	// installation may have changed since the check
	_, info.Installed = w.installed.Lookup(info.Version.ID)
	return info, true
}

// Check fetches the catalog once and records the newest stable release
func (w *ReleaseWatcher) Check(ctx context.Context) (ReleaseInfo, error) {
	versions, err := w.catalog.FetchCatalog(ctx)
	if err != nil {
		return ReleaseInfo{}, err
	}

	newest, ok := catalog.Latest(versions, domain.ChannelStable)
	if !ok {
		return ReleaseInfo{}, domain.NewAppError(domain.ErrNotFound, "Catalog lists no stable release", 404, nil)
	}

	_, installed := w.installed.Lookup(newest.ID)
	info := ReleaseInfo{Version: newest, Installed: installed, CheckedAt: time.Now().UTC()}

	w.mu.Lock()
	w.latest = &info
	announce := !installed && w.announced != newest.ID
	if announce {
		w.announced = newest.ID
	}
	w.mu.Unlock()

	if announce {
		log.Info().Str("version", newest.ID).Msg("New stable release available")
	}
	return info, nil
}

func (w *ReleaseWatcher) run() {
	ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	defer cancel()

	if _, err := w.Check(ctx); err != nil {
		log.Warn().Err(err).Msg("Release check failed")
	}
}
