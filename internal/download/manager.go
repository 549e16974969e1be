// Package download streams game archives to disk, unpacks them into the
// version cache and keeps the installed-version index current.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/vslauncher/launcher/internal/domain"
	"github.com/vslauncher/launcher/internal/fsstore"
)

const (
	// DefaultMaxConcurrent caps parallel downloads
	DefaultMaxConcurrent = 2
	// DefaultChunkSize is the read size between progress updates and cancellation checks
	DefaultChunkSize = 256 * 1024
	// DefaultRetainFinished is how many finished tasks stay visible to pollers
	DefaultRetainFinished = 32
)

// Source opens the byte stream of an archive
type Source interface {
	OpenDownload(ctx context.Context, url string) (io.ReadCloser, int64, error)
}

// ManagerConfig holds configuration for the download manager
type ManagerConfig struct {
	MaxConcurrent  int
	ChunkSize      int
	RetainFinished int
}

// Manager runs downloads, one goroutine per in-flight version
type Manager struct {
	store  *fsstore.Store
	source Source
	index  *InstalledIndex
	config ManagerConfig
	sem    *semaphore.Weighted

	// mu guards inflight and is held only to check-or-insert
	mu       sync.Mutex
	inflight map[string]*Task

	tasksMu sync.RWMutex
	tasks   map[string]*Task
	recent  []*Task

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup
	validator  *domain.InputValidator
}

// NewManager creates a download manager writing into the store's version cache
func NewManager(store *fsstore.Store, source Source, index *InstalledIndex, config ManagerConfig) *Manager {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = DefaultMaxConcurrent
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.RetainFinished <= 0 {
		config.RetainFinished = DefaultRetainFinished
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:      store,
		source:     source,
		index:      index,
		config:     config,
		sem:        semaphore.NewWeighted(int64(config.MaxConcurrent)),
		inflight:   make(map[string]*Task),
		tasks:      make(map[string]*Task),
		baseCtx:    ctx,
		baseCancel: cancel,
		validator:  domain.NewInputValidator(),
	}
}

// Index returns the installed-version index the manager maintains
func (m *Manager) Index() *InstalledIndex { return m.index }

// StartDownload begins downloading and installing version and returns immediately.
// An installed version yields an already completed task; a version that is already
// downloading yields the existing task.
func (m *Manager) StartDownload(ctx context.Context, version domain.GameVersion) (*Task, error) {
	if err := m.validator.ValidateVersionID(version.ID); err != nil {
		return nil, err
	}
	if err := m.baseCtx.Err(); err != nil {
		return nil, domain.NewAppErrorWithCause(domain.ErrInternal, "Download manager is shut down", 503, err, nil)
	}

	destination := m.store.VersionDir(version.ID)

	m.mu.Lock()
	if existing, ok := m.inflight[version.ID]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	if _, installed := m.index.Lookup(version.ID); installed {
		m.mu.Unlock()
		task := completedTask(uuid.NewString(), version, destination)
		m.remember(task)
		log.Info().Str("version", version.ID).Msg("Version already installed")
		return task, nil
	}
	if m.store.IsDir(destination) {
		// Installed behind the index's back, e.g. by another process
		if err := m.index.Rebuild(ctx); err != nil {
			log.Warn().Err(err).Str("version", version.ID).Msg("Failed to rebuild installed index")
		}
		m.mu.Unlock()
		task := completedTask(uuid.NewString(), version, destination)
		m.remember(task)
		log.Info().Str("version", version.ID).Msg("Version directory already present, skipping download")
		return task, nil
	}
	if version.DownloadURL == "" {
		m.mu.Unlock()
		return nil, domain.NewAppError(domain.ErrInvalidInput, "Version has no download URL", 400,
			map[string]any{"version": version.ID})
	}

	// Detached from ctx: the download outlives the request that started it
	task := newTask(uuid.NewString(), version, destination, m.baseCtx)
	m.inflight[version.ID] = task
	m.mu.Unlock()

	m.tasksMu.Lock()
	m.tasks[task.ID] = task
	m.tasksMu.Unlock()

	log.Info().
		Str("task_id", task.ID).
		Str("version", version.ID).
		Str("url", version.DownloadURL).
		Msg("Download queued")

	m.wg.Add(1)
	go m.run(task)

	return task, nil
}

// Get returns an active or recently finished task
func (m *Manager) Get(taskID string) (*Task, bool) {
	m.tasksMu.RLock()
	defer m.tasksMu.RUnlock()

	if t, ok := m.tasks[taskID]; ok {
		return t, true
	}
	for _, t := range m.recent {
		if t.ID == taskID {
			return t, true
		}
	}
	return nil, false
}

// List returns active tasks followed by recently finished ones, newest first
func (m *Manager) List() []*Task {
	m.tasksMu.RLock()
	defer m.tasksMu.RUnlock()

	active := make([]*Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		active = append(active, t)
	}
	sort.Slice(active, func(i, j int) bool { return active[i].CreatedAt.After(active[j].CreatedAt) })

	result := make([]*Task, 0, len(active)+len(m.recent))
	result = append(result, active...)
	for i := len(m.recent) - 1; i >= 0; i-- {
		result = append(result, m.recent[i])
	}
	return result
}

// Cancel cancels an active task
func (m *Manager) Cancel(taskID string) error {
	t, ok := m.Get(taskID)
	if !ok {
		return domain.NewAppError(domain.ErrNotFound, "Download task not found", 404, map[string]any{"task_id": taskID})
	}
	t.Cancel()
	return nil
}

// ActiveCount returns the number of pending or running downloads
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inflight)
}

// Shutdown cancels every running download and waits for the workers to exit
func (m *Manager) Shutdown(ctx context.Context) error {
	m.baseCancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) run(task *Task) {
	defer m.wg.Done()

	id := task.Version.ID
	logger := log.With().Str("task_id", task.ID).Str("version", id).Logger()

	err := m.sem.Acquire(task.ctx, 1)
	if err == nil {
		task.setState(StateInProgress)
		logger.Info().Msg("Download started")
		err = m.install(task)
		m.sem.Release(1)
	}

	state := StateCompleted
	switch {
	case err == nil:
		if rebuildErr := m.index.Rebuild(context.Background()); rebuildErr != nil {
			logger.Error().Err(rebuildErr).Msg("Failed to rebuild installed index")
		}
	case task.ctx.Err() != nil:
		state = StateCancelled
		err = domain.NewAppErrorWithCause(domain.ErrCanceled, "Download cancelled", 409, task.ctx.Err(),
			map[string]any{"version": id})
	default:
		state = StateFailed
	}

	if state != StateCompleted {
		m.cleanup(id)
	}

	// Index is current before the version leaves the in-flight map
	m.mu.Lock()
	delete(m.inflight, id)
	m.mu.Unlock()

	task.finish(state, err)
	m.retire(task)

	switch state {
	case StateCompleted:
		logger.Info().Int64("bytes", task.receivedBytes()).Str("path", task.Destination).Msg("Version installed")
	case StateCancelled:
		logger.Warn().Msg("Download cancelled")
	default:
		logger.Error().Err(err).Msg("Download failed")
	}
}

// install streams, verifies, unpacks and moves the version into place
func (m *Manager) install(task *Task) error {
	ctx := task.ctx
	id := task.Version.ID

	if err := os.MkdirAll(m.store.VersionsDir(), 0755); err != nil {
		return fsstore.DiskError(err, "Failed to create versions directory", m.store.VersionsDir())
	}

	partPath := m.store.PartialDownloadPath(id)
	if err := m.stream(ctx, task, partPath); err != nil {
		return err
	}

	archivePath := m.store.ArchivePath(id)
	if err := m.store.Rename(partPath, archivePath); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stagingDir := m.store.StagingDir(id)
	if err := m.store.RemoveAll(stagingDir); err != nil {
		return err
	}
	if err := Extract(archivePath, stagingDir); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// An install that appeared while downloading is kept and the fresh copy discarded
	if m.store.IsDir(task.Destination) {
		log.Warn().Str("version", id).Msg("Version directory appeared during download, keeping existing install")
		if err := m.store.RemoveAll(stagingDir); err != nil {
			return err
		}
	} else if err := m.store.Rename(stagingDir, task.Destination); err != nil {
		return err
	}

	if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", archivePath).Msg("Failed to remove archive after install")
	}
	return nil
}

// stream copies the remote archive into partPath chunk by chunk
func (m *Manager) stream(ctx context.Context, task *Task, partPath string) error {
	body, size, err := m.source.OpenDownload(ctx, task.Version.DownloadURL)
	if err != nil {
		return err
	}
	defer body.Close()

	task.setTotal(size)

	f, err := os.Create(partPath)
	if err != nil {
		return fsstore.DiskError(err, "Failed to create download file", partPath)
	}

	buf := make([]byte, m.config.ChunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			_ = f.Close()
			return err
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				_ = f.Close()
				return fsstore.DiskError(err, "Failed to write download file", partPath)
			}
			written += int64(n)
			task.addReceived(int64(n))
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			_ = f.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return domain.NewAppErrorWithCause(domain.ErrDownload, "Download interrupted", 502, readErr,
				map[string]any{"version": task.Version.ID, "received": written})
		}
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fsstore.DiskError(err, "Failed to sync download file", partPath)
	}
	if err := f.Close(); err != nil {
		return fsstore.DiskError(err, "Failed to close download file", partPath)
	}

	if size >= 0 && written != size {
		return domain.NewAppError(domain.ErrDownload,
			fmt.Sprintf("Incomplete download: received %d of %d bytes", written, size), 502,
			map[string]any{"version": task.Version.ID, "received": written, "expected": size})
	}
	return nil
}

// cleanup removes every temporary artefact of a failed or cancelled install
func (m *Manager) cleanup(id string) {
	for _, path := range []string{
		m.store.PartialDownloadPath(id),
		m.store.ArchivePath(id),
		m.store.StagingDir(id),
	} {
		if err := os.RemoveAll(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove download artefact")
		}
	}
}

// retire moves a finished task from the active set to the bounded recent list
func (m *Manager) retire(task *Task) {
	m.tasksMu.Lock()
	defer m.tasksMu.Unlock()
	delete(m.tasks, task.ID)
	m.appendRecentLocked(task)
}

func (m *Manager) remember(task *Task) {
	m.tasksMu.Lock()
	defer m.tasksMu.Unlock()
	m.appendRecentLocked(task)
}

func (m *Manager) appendRecentLocked(task *Task) {
	m.recent = append(m.recent, task)
	if over := len(m.recent) - m.config.RetainFinished; over > 0 {
		m.recent = append(m.recent[:0:0], m.recent[over:]...)
	}
}

// CleanStale removes artefacts left by a previous process that died mid-download.
// Call it before the first StartDownload.
func (m *Manager) CleanStale() error {
	removed, err := m.store.CleanStaleArtifacts(m.store.VersionsDir())
	for _, path := range removed {
		log.Info().Str("path", path).Msg("Removed stale download artefact")
	}
	return err
}
