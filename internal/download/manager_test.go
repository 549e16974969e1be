package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vslauncher/launcher/internal/domain"
)

func TestManager_InstallsVersion(t *testing.T) {
	source := &fakeSource{payload: gameArchive(t)}
	m, store := newTestManager(t, source, ManagerConfig{})

	task, err := m.StartDownload(context.Background(), testVersion("1.20.11"))
	require.NoError(t, err)
	require.NoError(t, waitTask(t, task))

	assert.Equal(t, StateCompleted, task.State())
	progress := task.Progress()
	assert.Equal(t, int64(len(source.payload)), progress.Received)
	assert.Equal(t, progress.Total, progress.Received)
	assert.Equal(t, 1.0, progress.Fraction())

	path, ok := m.Index().Lookup("1.20.11")
	require.True(t, ok)
	assert.Equal(t, store.VersionDir("1.20.11"), path)

	data, err := os.ReadFile(filepath.Join(path, "vintagestory", "Vintagestory"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "echo vs")

	info, err := os.Stat(filepath.Join(path, "vintagestory", "Vintagestory"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0100, "exec bit preserved")

	assert.Equal(t, []string{"1.20.11"}, versionsEntries(t, store), "no temporaries left")
	assert.Equal(t, 0, m.ActiveCount())
}

func TestManager_AlreadyInstalledIsIdempotent(t *testing.T) {
	source := &fakeSource{payload: gameArchive(t)}
	m, _ := newTestManager(t, source, ManagerConfig{})

	first, err := m.StartDownload(context.Background(), testVersion("1.20.11"))
	require.NoError(t, err)
	require.NoError(t, waitTask(t, first))

	second, err := m.StartDownload(context.Background(), testVersion("1.20.11"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, StateCompleted, second.State())
	select {
	case <-second.Done():
	default:
		t.Fatal("installed version should yield a finished task")
	}
	assert.Equal(t, 1, source.openCount(), "no network activity for an installed version")

	// an installed version needs no download URL
	third, err := m.StartDownload(context.Background(), domain.GameVersion{ID: "1.20.11"})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, third.State())
}

func TestManager_ExistingDirectoryOutsideIndexIsKept(t *testing.T) {
	source := &fakeSource{payload: gameArchive(t)}
	m, store := newTestManager(t, source, ManagerConfig{})

	// installed by another process after the index was built
	dir := store.VersionDir("1.21.0")
	require.NoError(t, os.MkdirAll(dir, 0755))
	userFile := filepath.Join(dir, "user-file.txt")
	require.NoError(t, os.WriteFile(userFile, []byte("keep"), 0644))
	_, indexed := m.Index().Lookup("1.21.0")
	require.False(t, indexed)

	task, err := m.StartDownload(context.Background(), testVersion("1.21.0"))
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, task.State())
	assert.Zero(t, source.openCount())

	data, err := os.ReadFile(userFile)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	path, indexed := m.Index().Lookup("1.21.0")
	assert.True(t, indexed)
	assert.Equal(t, dir, path)
}

func TestManager_ConcurrentRequestsCollapse(t *testing.T) {
	gate := make(chan struct{})
	source := &fakeSource{payload: gameArchive(t), gate: gate}
	m, store := newTestManager(t, source, ManagerConfig{})

	const callers = 8
	tasks := make([]*Task, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			task, err := m.StartDownload(context.Background(), testVersion("1.21.0"))
			assert.NoError(t, err)
			tasks[i] = task
		}(i)
	}
	wg.Wait()

	for _, task := range tasks[1:] {
		assert.Same(t, tasks[0], task)
	}
	assert.Equal(t, 1, m.ActiveCount())

	close(gate)
	require.NoError(t, waitTask(t, tasks[0]))

	assert.Equal(t, 1, source.openCount())
	assert.Equal(t, []string{"1.21.0"}, versionsEntries(t, store))
}

func TestManager_CancelMidStreamLeavesNothing(t *testing.T) {
	payload := gameArchive(t)
	source := &fakeSource{payload: payload, stallAfter: len(payload) / 2}
	m, store := newTestManager(t, source, ManagerConfig{})

	task, err := m.StartDownload(context.Background(), testVersion("1.21.0"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return task.Progress().Received >= int64(len(payload)/2)
	}, 5*time.Second, 5*time.Millisecond)
	assert.True(t, store.Exists(store.PartialDownloadPath("1.21.0")))

	require.NoError(t, m.Cancel(task.ID))
	err = waitTask(t, task)

	require.Error(t, err)
	assert.True(t, domain.IsCanceled(err))
	assert.Equal(t, StateCancelled, task.State())
	assert.Empty(t, versionsEntries(t, store), "cancelled download must leave no files")

	_, ok := m.Index().Lookup("1.21.0")
	assert.False(t, ok)
}

func TestManager_CancelWhilePending(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	source := &fakeSource{payload: gameArchive(t), gate: gate}
	m, store := newTestManager(t, source, ManagerConfig{MaxConcurrent: 1})

	running, err := m.StartDownload(context.Background(), testVersion("1.20.0"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return running.State() == StateInProgress }, 5*time.Second, 5*time.Millisecond)

	queued, err := m.StartDownload(context.Background(), testVersion("1.21.0"))
	require.NoError(t, err)
	assert.Equal(t, StatePending, queued.State())

	queued.Cancel()
	err = waitTask(t, queued)
	assert.True(t, domain.IsCanceled(err))
	assert.Equal(t, StateCancelled, queued.State())
	assert.False(t, store.Exists(store.VersionDir("1.21.0")))
}

func TestManager_ConcurrencyCap(t *testing.T) {
	gate := make(chan struct{})
	source := &fakeSource{payload: gameArchive(t), gate: gate}
	m, _ := newTestManager(t, source, ManagerConfig{MaxConcurrent: 1})

	first, err := m.StartDownload(context.Background(), testVersion("1.20.0"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return first.State() == StateInProgress }, 5*time.Second, 5*time.Millisecond)

	second, err := m.StartDownload(context.Background(), testVersion("1.21.0"))
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StatePending, second.State())
	assert.Equal(t, 1, source.openCount())

	close(gate)
	require.NoError(t, waitTask(t, first))
	require.NoError(t, waitTask(t, second))
	assert.Equal(t, 2, source.openCount())
	assert.Len(t, m.Index().List(), 2)
}

func TestManager_Failures(t *testing.T) {
	payload := gameArchive(t)

	tests := []struct {
		name   string
		source *fakeSource
		code   string
	}{
		{
			name:   "size mismatch",
			source: &fakeSource{payload: payload, overrideSize: true, announce: int64(len(payload) + 100)},
			code:   domain.ErrDownload,
		},
		{
			name:   "connection drop",
			source: &fakeSource{payload: payload, failAfter: len(payload) / 3},
			code:   domain.ErrDownload,
		},
		{
			name:   "http error",
			source: &fakeSource{openErr: domain.NewAppError(domain.ErrDownload, "Download failed: HTTP 404", 502, nil)},
			code:   domain.ErrDownload,
		},
		{
			name:   "corrupt archive",
			source: &fakeSource{payload: []byte("this is not an archive at all")},
			code:   domain.ErrArchive,
		},
		{
			name:   "truncated gzip",
			source: &fakeSource{payload: payload[:len(payload)/2]},
			code:   domain.ErrArchive,
		},
		{
			name:   "path escaping entry",
			source: &fakeSource{payload: tarGz(t, archiveEntry{name: "../escape.txt", body: "x"})},
			code:   domain.ErrArchive,
		},
		{
			name:   "disk full",
			source: &fakeSource{openErr: domain.NewAppErrorWithCause(domain.ErrDisk, "no space", 507, syscall.ENOSPC, nil)},
			code:   domain.ErrDisk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store := newTestManager(t, tt.source, ManagerConfig{})

			task, err := m.StartDownload(context.Background(), testVersion("1.21.0"))
			require.NoError(t, err)
			err = waitTask(t, task)

			require.Error(t, err)
			assert.True(t, domain.HasCode(err, tt.code), "expected %s, got %v", tt.code, err)
			assert.Equal(t, StateFailed, task.State())
			assert.Empty(t, versionsEntries(t, store), "failed download must be cleaned up")
			assert.False(t, store.Exists(filepath.Join(store.Root(), "escape.txt")))

			snap := task.Snapshot()
			require.NotNil(t, snap.Error)
			assert.Equal(t, tt.code, snap.Error.Code)
			assert.NotNil(t, snap.FinishedAt)
		})
	}
}

func TestManager_ZipArchive(t *testing.T) {
	payload := zipArchive(t,
		archiveEntry{name: "Vintagestory.exe", body: "MZ", mode: 0755},
		archiveEntry{name: "assets", isDir: true},
		archiveEntry{name: "assets/a.json", body: "{}"},
	)
	m, store := newTestManager(t, &fakeSource{payload: payload}, ManagerConfig{})

	task, err := m.StartDownload(context.Background(), testVersion("1.19.8"))
	require.NoError(t, err)
	require.NoError(t, waitTask(t, task))

	assert.True(t, store.Exists(filepath.Join(store.VersionDir("1.19.8"), "Vintagestory.exe")))
	assert.True(t, store.Exists(filepath.Join(store.VersionDir("1.19.8"), "assets", "a.json")))
}

func TestManager_UnknownContentLength(t *testing.T) {
	source := &fakeSource{payload: gameArchive(t), overrideSize: true, announce: -1}
	m, _ := newTestManager(t, source, ManagerConfig{})

	task, err := m.StartDownload(context.Background(), testVersion("1.20.0"))
	require.NoError(t, err)
	require.NoError(t, waitTask(t, task))

	p := task.Progress()
	assert.Equal(t, int64(-1), p.Total)
	assert.Equal(t, 1.0, p.Fraction())
}

func TestManager_InvalidRequests(t *testing.T) {
	m, _ := newTestManager(t, &fakeSource{}, ManagerConfig{})

	_, err := m.StartDownload(context.Background(), domain.GameVersion{ID: "../etc", DownloadURL: "http://x"})
	assert.True(t, domain.HasCode(err, domain.ErrInvalidInput))

	_, err = m.StartDownload(context.Background(), domain.GameVersion{ID: "1.20.0"})
	assert.True(t, domain.HasCode(err, domain.ErrInvalidInput))

	assert.True(t, domain.IsNotFound(m.Cancel("missing")))
}

func TestManager_Subscribe(t *testing.T) {
	gate := make(chan struct{})
	source := &fakeSource{payload: gameArchive(t), gate: gate}
	m, _ := newTestManager(t, source, ManagerConfig{})

	task, err := m.StartDownload(context.Background(), testVersion("1.20.0"))
	require.NoError(t, err)
	updates := task.Subscribe()
	close(gate)

	var last Progress
	count := 0
	timeout := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case p, ok := <-updates:
			if !ok {
				done = true
				break
			}
			last = p
			count++
		case <-timeout:
			t.Fatal("subscription was not closed")
		}
	}

	assert.Positive(t, count)
	assert.Equal(t, StateCompleted, last.State)
	assert.Equal(t, task.ID, last.TaskID)

	// Subscribing after completion yields the final state and a closed channel
	late := task.Subscribe()
	p, ok := <-late
	require.True(t, ok)
	assert.Equal(t, StateCompleted, p.State)
	_, ok = <-late
	assert.False(t, ok)
}

func TestManager_RetainsBoundedHistory(t *testing.T) {
	m, store := newTestManager(t, &fakeSource{}, ManagerConfig{RetainFinished: 2})
	for _, id := range []string{"1.18.0", "1.19.0", "1.20.0"} {
		require.NoError(t, os.MkdirAll(store.VersionDir(id), 0755))
	}
	require.NoError(t, m.Index().Rebuild(context.Background()))

	var ids []string
	for _, id := range []string{"1.18.0", "1.19.0", "1.20.0"} {
		task, err := m.StartDownload(context.Background(), testVersion(id))
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID, "newest first")

	_, ok := m.Get(ids[0])
	assert.False(t, ok, "oldest finished task dropped")
	_, ok = m.Get(ids[2])
	assert.True(t, ok)
}

func TestManager_ShutdownCancelsRunning(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	source := &fakeSource{payload: gameArchive(t), gate: gate}
	m, store := newTestManager(t, source, ManagerConfig{})

	task, err := m.StartDownload(context.Background(), testVersion("1.20.0"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))

	assert.Equal(t, StateCancelled, task.State())
	assert.Empty(t, versionsEntries(t, store))

	_, err = m.StartDownload(context.Background(), testVersion("1.21.0"))
	assert.Error(t, err)
}

func TestManager_CleanStale(t *testing.T) {
	m, store := newTestManager(t, &fakeSource{}, ManagerConfig{})
	require.NoError(t, os.WriteFile(store.PartialDownloadPath("1.20.0"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(store.StagingDir("1.20.0"), 0755))
	require.NoError(t, os.MkdirAll(store.VersionDir("1.19.0"), 0755))

	require.NoError(t, m.CleanStale())
	assert.Equal(t, []string{"1.19.0"}, versionsEntries(t, store))
}

func TestTask_WaitHonoursContext(t *testing.T) {
	task := newTask("t1", testVersion("1.20.0"), "/tmp/x", context.Background())
	defer task.Cancel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, errors.Is(task.Wait(ctx), context.Canceled))
}
