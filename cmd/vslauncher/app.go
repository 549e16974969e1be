package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/vslauncher/launcher/internal/catalog"
	"github.com/vslauncher/launcher/internal/config"
	"github.com/vslauncher/launcher/internal/download"
	"github.com/vslauncher/launcher/internal/fsstore"
	"github.com/vslauncher/launcher/internal/instance"
	"github.com/vslauncher/launcher/internal/launch"
	"github.com/vslauncher/launcher/internal/logger"
	"github.com/vslauncher/launcher/internal/modbrowser"
)

// launcherApp wires the launcher components from one configuration
type launcherApp struct {
	cfg  *config.Config
	logs *logger.Logger

	store     *fsstore.Store
	catalog   *catalog.Client
	index     *download.InstalledIndex
	downloads *download.Manager
	instances *instance.Registry
	launcher  *launch.Controller
	mods      *modbrowser.Client
}

// newLauncherApp prepares the data root, cleans leftovers from an interrupted run
// and builds the installed-version index
func newLauncherApp(ctx context.Context, cfg *config.Config, console io.Writer) (*launcherApp, error) {
	logs, err := logger.Setup(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Dir:        cfg.Logging.Dir,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}, console)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	store := fsstore.New(cfg.Storage.DataDir)
	if err := store.EnsureLayout(ctx); err != nil {
		_ = logs.Close()
		return nil, err
	}

	catalogClient := catalog.NewClient(catalog.ClientConfig{
		BaseURL:       cfg.Catalog.URL,
		CDNURL:        cfg.Catalog.CDNURL,
		Platform:      cfg.Catalog.Platform,
		Timeout:       cfg.Catalog.Timeout,
		HeaderTimeout: cfg.Download.HeaderTimeout,
	})

	index := download.NewInstalledIndex(store)
	manager := download.NewManager(store, catalogClient, index, download.ManagerConfig{
		MaxConcurrent: cfg.Download.MaxConcurrent,
		ChunkSize:     cfg.Download.ChunkSize,
	})

	if err := manager.CleanStale(); err != nil {
		log.Warn().Err(err).Msg("Failed to remove stale download artefacts")
	}
	if err := index.Rebuild(ctx); err != nil {
		_ = logs.Close()
		return nil, err
	}

	log.Debug().
		Str("data_dir", store.Root()).
		Int("installed_versions", index.Len()).
		Str("catalog_url", cfg.Catalog.URL).
		Msg("Launcher initialised")

	return &launcherApp{
		cfg:       cfg,
		logs:      logs,
		store:     store,
		catalog:   catalogClient,
		index:     index,
		downloads: manager,
		instances: instance.NewRegistry(store),
		launcher:  launch.NewController(index),
		mods: modbrowser.NewClient(modbrowser.Config{
			BaseURL:   cfg.Catalog.URL,
			PageSize:  cfg.Mods.PageSize,
			CacheSize: cfg.Mods.CacheSize,
			CacheTTL:  cfg.Mods.CacheTTL,
			Timeout:   cfg.Catalog.Timeout,
		}),
	}, nil
}

// Close cancels running downloads and closes the log file
func (a *launcherApp) Close(ctx context.Context) error {
	err := a.downloads.Shutdown(ctx)
	if closeErr := a.logs.Close(); err == nil {
		err = closeErr
	}
	return err
}
