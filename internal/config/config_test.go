package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DRIVE_SERVER_URL", "")
	t.Setenv("DRIVE_PLATFORM", "")
	t.Setenv("DRIVE_REGISTRY_BACKEND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "http://localhost:8080" {
		t.Errorf("unexpected server url %q", cfg.ServerURL)
	}
	if cfg.Platform != "desktop" {
		t.Errorf("expected desktop platform, got %q", cfg.Platform)
	}
	if cfg.PageSize != 30 {
		t.Errorf("expected page size 30, got %d", cfg.PageSize)
	}
	if cfg.OfflineDir == "" || cfg.RegistryPath == "" {
		t.Error("expected xdg based default paths")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DRIVE_PLATFORM", "device")
	t.Setenv("DRIVE_PAGE_SIZE", "50")
	t.Setenv("DRIVE_TIMEOUT", "5s")
	t.Setenv("DRIVE_RETRY_ATTEMPTS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Platform != "device" {
		t.Errorf("expected device, got %q", cfg.Platform)
	}
	if cfg.PageSize != 50 {
		t.Errorf("expected 50, got %d", cfg.PageSize)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.Timeout)
	}
	if cfg.RetryAttempts != 3 {
		t.Errorf("invalid int should fall back to 3, got %d", cfg.RetryAttempts)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad platform", func(c *Config) { c.Platform = "cordova" }, true},
		{"bad offline backend", func(c *Config) { c.OfflineBackend = "smb" }, true},
		{"postgres without url", func(c *Config) { c.RegistryBackend = "postgres" }, true},
		{"postgres with url", func(c *Config) {
			c.RegistryBackend = "postgres"
			c.DatabaseURL = "postgres://localhost/drive"
		}, false},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				ServerURL:       "http://localhost",
				Platform:        "desktop",
				OfflineBackend:  "local",
				RegistryBackend: "bolt",
				PageSize:        30,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
