package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppDirName is the directory created under the user's data home
const AppDirName = "vs_launcher"

// Config holds all configuration for the launcher
type Config struct {
	Server struct {
		Port         int           `env:"PORT" envDefault:"8765" validate:"min=1,max=65535"`
		ListenAddr   string        `env:"LISTEN_ADDR" envDefault:"127.0.0.1" validate:"required"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
		BodyLimit    int           `env:"BODY_LIMIT" envDefault:"65536" validate:"min=1"`
	}

	Storage struct {
		// DataDir defaults to $XDG_DATA_HOME/vs_launcher or ~/.local/share/vs_launcher
		DataDir string `env:"DATA_DIR"`
	}

	Catalog struct {
		URL                  string        `env:"CATALOG_URL" envDefault:"https://mods.vintagestory.at/api" validate:"required,http_url"`
		CDNURL               string        `env:"CDN_URL" envDefault:"https://cdn.vintagestory.at/gamefiles" validate:"required,http_url"`
		Platform             string        `env:"DOWNLOAD_PLATFORM" envDefault:"linux-x64" validate:"required"`
		Timeout              time.Duration `env:"CATALOG_TIMEOUT" envDefault:"30s"`
		ReleaseCheckEnabled  bool          `env:"RELEASE_CHECK_ENABLED" envDefault:"false"`
		ReleaseCheckInterval time.Duration `env:"RELEASE_CHECK_INTERVAL" envDefault:"1h"`
	}

	Download struct {
		MaxConcurrent int           `env:"MAX_CONCURRENT_DOWNLOADS" envDefault:"2" validate:"min=1,max=16"`
		ChunkSize     int           `env:"DOWNLOAD_CHUNK_SIZE" envDefault:"262144" validate:"min=4096"`
		HeaderTimeout time.Duration `env:"DOWNLOAD_HEADER_TIMEOUT" envDefault:"30s"`
		WatchVersions bool          `env:"WATCH_VERSIONS" envDefault:"false"`
	}

	Mods struct {
		PageSize  int           `env:"MODS_PAGE_SIZE" envDefault:"96" validate:"min=1,max=200"`
		CacheSize int           `env:"MODS_CACHE_SIZE" envDefault:"32" validate:"min=1"`
		CacheTTL  time.Duration `env:"MODS_CACHE_TTL" envDefault:"5m"`
	}

	Security struct {
		CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," validate:"cors_origins"`
		RateLimitRPS   int      `env:"RATE_LIMIT_RPS" envDefault:"20" validate:"min=1"`
		RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"40" validate:"min=1"`
	}

	Logging struct {
		Level      string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
		Format     string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=json text"`
		Dir        string `env:"LOG_DIR"`
		MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"10" validate:"min=1"`
		MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3" validate:"min=0"`
	}
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if cfg.Storage.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.Storage.DataDir = dir
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DefaultDataDir returns the per-user data root
func DefaultDataDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, AppDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine data directory, set DATA_DIR: %w", err)
	}
	return filepath.Join(home, ".local", "share", AppDirName), nil
}

// Validate validates the configuration using struct tags
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.RegisterValidation("cors_origins", validateCORSOrigins); err != nil {
		return fmt.Errorf("failed to register cors_origins validation: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCORSOrigins validates CORS origins format
func validateCORSOrigins(fl validator.FieldLevel) bool {
	origins := fl.Field().Interface().([]string)
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return false
		}
	}
	return true
}

// validateCustomRules performs additional validation beyond struct tags
func validateCustomRules(cfg *Config) error {
	if cfg.Storage.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if cfg.Server.ReadTimeout < time.Millisecond {
		return fmt.Errorf("read timeout must be at least 1ms")
	}
	if cfg.Server.WriteTimeout < time.Millisecond {
		return fmt.Errorf("write timeout must be at least 1ms")
	}
	if cfg.Catalog.Timeout < time.Second {
		return fmt.Errorf("catalog timeout must be at least 1 second")
	}
	if cfg.Download.HeaderTimeout < time.Second {
		return fmt.Errorf("download header timeout must be at least 1 second")
	}
	if cfg.Catalog.ReleaseCheckEnabled && cfg.Catalog.ReleaseCheckInterval < time.Minute {
		return fmt.Errorf("release check interval must be at least 1 minute")
	}
	if cfg.Mods.CacheTTL < 0 {
		return fmt.Errorf("mods cache TTL cannot be negative")
	}
	if cfg.Security.RateLimitBurst < cfg.Security.RateLimitRPS {
		return fmt.Errorf("rate limit burst must be at least the rate limit RPS")
	}

	return nil
}

// ListenAddress returns host:port for the HTTP control API
func (cfg *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", cfg.Server.ListenAddr, cfg.Server.Port)
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
			case "oneof":
				messages = append(messages, fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param()))
			case "http_url":
				messages = append(messages, fmt.Sprintf("%s must be an http(s) URL", e.Field()))
			case "cors_origins":
				messages = append(messages, fmt.Sprintf("%s contains invalid origin format", e.Field()))
			default:
				messages = append(messages, fmt.Sprintf("%s failed validation: %s", e.Field(), e.Tag()))
			}
		}
		return fmt.Errorf("validation errors: %s", strings.Join(messages, "; "))
	}
	return err
}
