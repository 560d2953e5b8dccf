// Package config loads client configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "fruitsalade-drive"

// Config holds all client configuration.
type Config struct {
	// Remote
	ServerURL     string
	Token         string
	Timeout       time.Duration
	RetryAttempts int

	// Platform ("device" or "desktop")
	Platform    string
	DownloadDir string

	// Offline copies ("local" or "s3")
	OfflineBackend string
	OfflineDir     string
	S3Endpoint     string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3Region       string

	// Availability registry ("bolt" or "postgres")
	RegistryBackend string
	RegistryPath    string
	DatabaseURL     string

	// Listing
	PageSize    int
	RecentLimit int

	// Logging
	LogLevel  string
	LogFormat string

	// Metrics endpoint, disabled when empty
	MetricsAddr string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ServerURL:       envOr("DRIVE_SERVER_URL", "http://localhost:8080"),
		Token:           envOr("DRIVE_TOKEN", ""),
		Timeout:         envDuration("DRIVE_TIMEOUT", 30*time.Second),
		RetryAttempts:   envInt("DRIVE_RETRY_ATTEMPTS", 3),
		Platform:        envOr("DRIVE_PLATFORM", "desktop"),
		DownloadDir:     envOr("DRIVE_DOWNLOAD_DIR", defaultDownloadDir()),
		OfflineBackend:  envOr("DRIVE_OFFLINE_BACKEND", "local"),
		OfflineDir:      envOr("DRIVE_OFFLINE_DIR", filepath.Join(xdg.CacheHome, AppName, "offline")),
		S3Endpoint:      envOr("DRIVE_S3_ENDPOINT", "http://localhost:9000"),
		S3Bucket:        envOr("DRIVE_S3_BUCKET", "drive-offline"),
		S3AccessKey:     envOr("DRIVE_S3_ACCESS_KEY", ""),
		S3SecretKey:     envOr("DRIVE_S3_SECRET_KEY", ""),
		S3Region:        envOr("DRIVE_S3_REGION", "us-east-1"),
		RegistryBackend: envOr("DRIVE_REGISTRY_BACKEND", "bolt"),
		RegistryPath:    envOr("DRIVE_REGISTRY_PATH", filepath.Join(xdg.DataHome, AppName, "offline.db")),
		DatabaseURL:     envOr("DATABASE_URL", ""),
		PageSize:        envInt("DRIVE_PAGE_SIZE", 30),
		RecentLimit:     envInt("DRIVE_RECENT_LIMIT", 50),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		LogFormat:       envOr("LOG_FORMAT", "console"),
		MetricsAddr:     envOr("METRICS_ADDR", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings and their dependencies.
func (c *Config) Validate() error {
	switch c.Platform {
	case "device", "desktop":
	default:
		return fmt.Errorf("DRIVE_PLATFORM must be device or desktop, got %q", c.Platform)
	}
	switch c.OfflineBackend {
	case "local", "s3":
	default:
		return fmt.Errorf("DRIVE_OFFLINE_BACKEND must be local or s3, got %q", c.OfflineBackend)
	}
	switch c.RegistryBackend {
	case "bolt":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres registry")
		}
	default:
		return fmt.Errorf("DRIVE_REGISTRY_BACKEND must be bolt or postgres, got %q", c.RegistryBackend)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("DRIVE_PAGE_SIZE must be positive")
	}
	if c.ServerURL == "" {
		return fmt.Errorf("DRIVE_SERVER_URL is required")
	}
	return nil
}

// TokenFilePath returns where the login token is persisted.
func TokenFilePath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "token.json")
}

func defaultDownloadDir() string {
	if xdg.UserDirs.Download != "" {
		return xdg.UserDirs.Download
	}
	return filepath.Join(xdg.Home, "Downloads")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
