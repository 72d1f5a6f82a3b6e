package common

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("OCR_DPI", "")
	t.Setenv("WATCH_DIRS", "")

	cfg := LoadConfig()
	if cfg.OCR.DPI != 300 {
		t.Errorf("OCR.DPI = %d, want 300", cfg.OCR.DPI)
	}
	if cfg.OCR.Strategy != "adaptive" {
		t.Errorf("OCR.Strategy = %q, want adaptive", cfg.OCR.Strategy)
	}
	if cfg.Pipeline.ProcessTimeout != 10*time.Minute {
		t.Errorf("Pipeline.ProcessTimeout = %v", cfg.Pipeline.ProcessTimeout)
	}
	if len(cfg.Watch.Roots) != 0 {
		t.Errorf("Watch.Roots = %v, want empty", cfg.Watch.Roots)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("OCR_DPI", "200")
	t.Setenv("OCR_STRATEGY", "deskew")
	t.Setenv("WATCH_DIRS", " /a, ,/b ")
	t.Setenv("WATCH_INITIAL_SCAN", "false")
	t.Setenv("OCR_PAGE_TIMEOUT", "not-a-duration")

	cfg := LoadConfig()
	if cfg.OCR.DPI != 200 || cfg.OCR.Strategy != "deskew" {
		t.Errorf("OCR = %+v", cfg.OCR)
	}
	if len(cfg.Watch.Roots) != 2 || cfg.Watch.Roots[0] != "/a" || cfg.Watch.Roots[1] != "/b" {
		t.Errorf("Watch.Roots = %v", cfg.Watch.Roots)
	}
	if cfg.Watch.InitialScan {
		t.Error("Watch.InitialScan should be false")
	}
	if cfg.OCR.PageTimeout != 60*time.Second {
		t.Errorf("invalid duration should fall back to default, got %v", cfg.OCR.PageTimeout)
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite"},
			OCR:      OCRConfig{Strategy: "adaptive", Engine: "cli", DPI: 300},
			Pipeline: PipelineConfig{Workers: 2},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "sqlite without dsn", mutate: func(*Config) {}},
		{name: "postgres requires dsn", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *Config) {
			c.Database.Driver = "postgres"
			c.Database.DSN = "postgres://localhost/credit"
		}},
		{name: "unknown strategy", mutate: func(c *Config) { c.OCR.Strategy = "magic" }, wantErr: true},
		{name: "zero dpi", mutate: func(c *Config) { c.OCR.DPI = 0 }, wantErr: true},
		{name: "relative sink url", mutate: func(c *Config) { c.Notify.SinkURL = "/events" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var appErr *AppError
			if !errors.As(err, &appErr) || appErr.Code != "CONFIG_ERROR" {
				t.Errorf("expected CONFIG_ERROR AppError, got %v", err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected error to wrap ErrValidation, got %v", err)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "DEBUG"}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v", cfg.SlogLevel())
	}
	cfg.LogLevel = "verbose"
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("unknown level should map to info, got %v", cfg.SlogLevel())
	}
}
