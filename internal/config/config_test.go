package config

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()
	xdg := t.TempDir()
	t.Setenv("XDG_DATA_HOME", xdg)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8765, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 65536, cfg.Server.BodyLimit)
	assert.Equal(t, filepath.Join(xdg, AppDirName), cfg.Storage.DataDir)

	assert.Equal(t, "https://mods.vintagestory.at/api", cfg.Catalog.URL)
	assert.Equal(t, "https://cdn.vintagestory.at/gamefiles", cfg.Catalog.CDNURL)
	assert.Equal(t, "linux-x64", cfg.Catalog.Platform)
	assert.Equal(t, 30*time.Second, cfg.Catalog.Timeout)
	assert.False(t, cfg.Catalog.ReleaseCheckEnabled)
	assert.Equal(t, time.Hour, cfg.Catalog.ReleaseCheckInterval)

	assert.Equal(t, 2, cfg.Download.MaxConcurrent)
	assert.Equal(t, 262144, cfg.Download.ChunkSize)
	assert.Equal(t, 30*time.Second, cfg.Download.HeaderTimeout)
	assert.False(t, cfg.Download.WatchVersions)

	assert.Equal(t, 96, cfg.Mods.PageSize)
	assert.Equal(t, 32, cfg.Mods.CacheSize)
	assert.Equal(t, 5*time.Minute, cfg.Mods.CacheTTL)

	assert.Empty(t, cfg.Security.CORSOrigins)
	assert.Equal(t, 20, cfg.Security.RateLimitRPS)
	assert.Equal(t, 40, cfg.Security.RateLimitBurst)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.Logging.Dir)

	assert.Equal(t, "127.0.0.1:8765", cfg.ListenAddress())
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	dataDir := t.TempDir()
	os.Setenv("PORT", "9090")
	os.Setenv("DATA_DIR", dataDir)
	os.Setenv("CATALOG_URL", "http://localhost:9999/api")
	os.Setenv("DOWNLOAD_PLATFORM", "win-x64")
	os.Setenv("MAX_CONCURRENT_DOWNLOADS", "4")
	os.Setenv("WATCH_VERSIONS", "true")
	os.Setenv("RELEASE_CHECK_ENABLED", "true")
	os.Setenv("RELEASE_CHECK_INTERVAL", "30m")
	os.Setenv("MODS_PAGE_SIZE", "50")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_DIR", dataDir+"/logs")
	os.Setenv("CORS_ORIGINS", "https://example.com,http://localhost:3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, dataDir, cfg.Storage.DataDir)
	assert.Equal(t, "http://localhost:9999/api", cfg.Catalog.URL)
	assert.Equal(t, "win-x64", cfg.Catalog.Platform)
	assert.Equal(t, 4, cfg.Download.MaxConcurrent)
	assert.True(t, cfg.Download.WatchVersions)
	assert.True(t, cfg.Catalog.ReleaseCheckEnabled)
	assert.Equal(t, 30*time.Minute, cfg.Catalog.ReleaseCheckInterval)
	assert.Equal(t, 50, cfg.Mods.PageSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, dataDir+"/logs", cfg.Logging.Dir)
	assert.Equal(t, []string{"https://example.com", "http://localhost:3000"}, cfg.Security.CORSOrigins)
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparseable port", "PORT", "not-a-number"},
		{"port out of range", "PORT", "70000"},
		{"too many downloads", "MAX_CONCURRENT_DOWNLOADS", "64"},
		{"tiny chunk", "DOWNLOAD_CHUNK_SIZE", "16"},
		{"catalog not a url", "CATALOG_URL", "mods.vintagestory.at"},
		{"bad log format", "LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			defer clearEnvVars()
			os.Setenv("DATA_DIR", t.TempDir())
			os.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	dir, err := DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", AppDirName), dir)

	home := t.TempDir()
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", home)
	dir, err = DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local", "share", AppDirName), dir)
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := createValidConfig(t.TempDir())
	cfg.Logging.Level = "invalid"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Level must be one of: debug info warn error")
}

func TestValidate_InvalidCORSOrigins(t *testing.T) {
	cfg := createValidConfig(t.TempDir())
	cfg.Security.CORSOrigins = []string{"invalid-origin"}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CORSOrigins contains invalid origin format")
}

func TestValidate_ValidCORSOrigins(t *testing.T) {
	cfg := createValidConfig(t.TempDir())
	cfg.Security.CORSOrigins = []string{"*", "https://example.com", "http://localhost:3000"}

	assert.NoError(t, Validate(cfg))
}

func TestValidate_PortRange(t *testing.T) {
	for _, port := range []int{1, 80, 8765, 65535} {
		t.Run(strconv.Itoa(port), func(t *testing.T) {
			cfg := createValidConfig(t.TempDir())
			cfg.Server.Port = port
			assert.NoError(t, Validate(cfg))
		})
	}

	for _, port := range []int{0, -1, 65536} {
		t.Run(strconv.Itoa(port), func(t *testing.T) {
			cfg := createValidConfig(t.TempDir())
			cfg.Server.Port = port
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestValidate_CustomRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		message string
	}{
		{"empty data dir", func(cfg *Config) { cfg.Storage.DataDir = "" }, "data directory"},
		{"zero read timeout", func(cfg *Config) { cfg.Server.ReadTimeout = 0 }, "read timeout"},
		{"short catalog timeout", func(cfg *Config) { cfg.Catalog.Timeout = time.Millisecond }, "catalog timeout"},
		{"short header timeout", func(cfg *Config) { cfg.Download.HeaderTimeout = 0 }, "header timeout"},
		{"frequent release check", func(cfg *Config) {
			cfg.Catalog.ReleaseCheckEnabled = true
			cfg.Catalog.ReleaseCheckInterval = time.Second
		}, "release check interval"},
		{"negative mods ttl", func(cfg *Config) { cfg.Mods.CacheTTL = -time.Second }, "TTL"},
		{"burst below rps", func(cfg *Config) { cfg.Security.RateLimitBurst = 5 }, "burst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createValidConfig(t.TempDir())
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidate_ReleaseIntervalIgnoredWhenDisabled(t *testing.T) {
	cfg := createValidConfig(t.TempDir())
	cfg.Catalog.ReleaseCheckInterval = time.Second
	assert.NoError(t, Validate(cfg))
}

func clearEnvVars() {
	envVars := []string{
		"PORT", "LISTEN_ADDR", "READ_TIMEOUT", "WRITE_TIMEOUT", "BODY_LIMIT",
		"DATA_DIR",
		"CATALOG_URL", "CDN_URL", "DOWNLOAD_PLATFORM", "CATALOG_TIMEOUT",
		"RELEASE_CHECK_ENABLED", "RELEASE_CHECK_INTERVAL",
		"MAX_CONCURRENT_DOWNLOADS", "DOWNLOAD_CHUNK_SIZE", "DOWNLOAD_HEADER_TIMEOUT", "WATCH_VERSIONS",
		"MODS_PAGE_SIZE", "MODS_CACHE_SIZE", "MODS_CACHE_TTL",
		"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_DIR", "LOG_MAX_SIZE_MB", "LOG_MAX_BACKUPS",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func createValidConfig(tempDir string) *Config {
	cfg := &Config{}
	cfg.Server.Port = 8765
	cfg.Server.ListenAddr = "127.0.0.1"
	cfg.Server.BodyLimit = 65536
	cfg.Server.ReadTimeout = time.Second
	cfg.Server.WriteTimeout = time.Second
	cfg.Storage.DataDir = tempDir + "/data"
	cfg.Catalog.URL = "https://mods.vintagestory.at/api"
	cfg.Catalog.CDNURL = "https://cdn.vintagestory.at/gamefiles"
	cfg.Catalog.Platform = "linux-x64"
	cfg.Catalog.Timeout = 30 * time.Second
	cfg.Catalog.ReleaseCheckInterval = time.Hour
	cfg.Download.MaxConcurrent = 2
	cfg.Download.ChunkSize = 262144
	cfg.Download.HeaderTimeout = 30 * time.Second
	cfg.Mods.PageSize = 96
	cfg.Mods.CacheSize = 32
	cfg.Mods.CacheTTL = 5 * time.Minute
	cfg.Security.CORSOrigins = []string{"*"}
	cfg.Security.RateLimitRPS = 20
	cfg.Security.RateLimitBurst = 40
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	cfg.Logging.MaxSizeMB = 10
	cfg.Logging.MaxBackups = 3
	return cfg
}
