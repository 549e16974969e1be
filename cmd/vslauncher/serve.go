package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vslauncher/launcher/internal/api"
	"github.com/vslauncher/launcher/internal/config"
	"github.com/vslauncher/launcher/internal/download"
	"github.com/vslauncher/launcher/internal/health"
	"github.com/vslauncher/launcher/internal/scheduler"

	docs "github.com/vslauncher/launcher/docs"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(s *cliState) *cobra.Command {
	var healthCheck bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if healthCheck {
				return probeHealth(cmd, s.app.cfg)
			}
			return serve(cmd.Context(), s.app)
		},
	}

	cmd.Flags().BoolVar(&healthCheck, "health-check", false, "query /health of a running server and exit")
	return cmd
}

func serve(ctx context.Context, a *launcherApp) error {
	cfg := a.cfg
	logStartupConfig(cfg)

	releases, err := scheduler.NewReleaseWatcher(a.catalog, a.index, cfg.Catalog.ReleaseCheckInterval)
	if err != nil {
		return err
	}
	defer func() {
		if err := releases.Stop(); err != nil {
			log.Warn().Err(err).Msg("Failed to stop release watcher")
		}
	}()
	if cfg.Catalog.ReleaseCheckEnabled {
		if err := releases.Start(); err != nil {
			return err
		}
	}

	if cfg.Download.WatchVersions {
		watcher, err := download.NewIndexWatcher(a.index, a.store.VersionsDir(), 0)
		if err != nil {
			return err
		}
		watcher.Start()
		defer func() {
			if err := watcher.Stop(); err != nil {
				log.Warn().Err(err).Msg("Failed to stop version cache watcher")
			}
		}()
	}

	healthChecker := health.NewSystemHealthChecker(health.Dependencies{
		Instances:    a.instances,
		Installed:    a.index,
		Catalog:      a.catalog,
		Downloads:    a.downloads,
		Mods:         a.mods,
		MaxDownloads: cfg.Download.MaxConcurrent,
	})

	result := api.SetupRouter(api.RouterDependencies{
		Catalog:       a.catalog,
		Installed:     a.index,
		Downloads:     a.downloads,
		Instances:     a.instances,
		Launcher:      a.launcher,
		Mods:          a.mods,
		Releases:      releases,
		HealthChecker: healthChecker,
	}, api.RouterConfig{
		CORSOrigins:    cfg.Security.CORSOrigins,
		BodyLimit:      cfg.Server.BodyLimit,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		RateLimitRPS:   cfg.Security.RateLimitRPS,
		RateLimitBurst: cfg.Security.RateLimitBurst,
	})
	defer result.Cleanup()

	addr := cfg.ListenAddress()
	docs.SwaggerInfo.Host = addr

	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		listenErr <- result.App.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("HTTP server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Received shutdown signal, initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := result.App.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during HTTP server shutdown")
	}
	log.Info().Msg("Graceful shutdown completed")
	return nil
}

func probeHealth(cmd *cobra.Command, cfg *config.Config) error {
	client := &http.Client{Timeout: 3 * time.Second}

	url := "http://" + cfg.ListenAddress() + "/health"
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: HTTP %d", resp.StatusCode)
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Health check passed"))
	return nil
}

func logStartupConfig(cfg *config.Config) {
	log.Info().
		Str("listen_addr", cfg.ListenAddress()).
		Dur("server_read_timeout", cfg.Server.ReadTimeout).
		Dur("server_write_timeout", cfg.Server.WriteTimeout).
		Int("server_body_limit", cfg.Server.BodyLimit).
		Str("data_dir", cfg.Storage.DataDir).
		Str("catalog_url", cfg.Catalog.URL).
		Int("download_max_concurrent", cfg.Download.MaxConcurrent).
		Bool("release_check_enabled", cfg.Catalog.ReleaseCheckEnabled).
		Strs("security_cors_origins", cfg.Security.CORSOrigins).
		Str("logging_level", cfg.Logging.Level).
		Msg("Configuration loaded successfully")
}
