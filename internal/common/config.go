package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	LogLevel string
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Pipeline PipelineConfig
	Watch    WatchConfig
	GCP      GCPConfig
	Notify   NotifyConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // "postgres" | "sqlite"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// OCRConfig holds text extraction configuration
type OCRConfig struct {
	Pdftotext   string
	Pdftoppm    string
	Tesseract   string
	Engine      string // "cli" | "gosseract"
	Language    string
	TessdataDir string
	DPI         int
	Strategy    string
	PageTimeout time.Duration
	MaxPages    int
	Concurrency int
}

// PipelineConfig holds worker queue configuration
type PipelineConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// WatchConfig holds inbox watcher configuration
type WatchConfig struct {
	Roots       []string
	Debounce    time.Duration
	InitialScan bool
}

// GCPConfig holds Cloud Storage / Firestore configuration
type GCPConfig struct {
	ProjectID     string
	Bucket        string
	ArchiveBucket string // results/<id>.json copies; empty disables the archive
	Collection    string
}

// NotifyConfig holds completion notification configuration
type NotifyConfig struct {
	SinkURL string // CloudEvents HTTP sink; empty -> log only
	Source  string
}

// LoadConfig loads configuration from environment variables, reading a .env file first if one exists.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using process environment", "error", err)
	}

	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "postgres"),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		OCR: OCRConfig{
			Pdftotext:   getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:    getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			Engine:      getEnv("OCR_ENGINE", "cli"),
			Language:    getEnv("OCR_LANG", "eng"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			DPI:         getEnvAsInt("OCR_DPI", 300),
			Strategy:    getEnv("OCR_STRATEGY", "adaptive"),
			PageTimeout: getEnvAsDuration("OCR_PAGE_TIMEOUT", 60*time.Second),
			MaxPages:    getEnvAsInt("OCR_MAX_PAGES", 0),
			Concurrency: getEnvAsInt("OCR_CONCURRENCY", 4),
		},
		Pipeline: PipelineConfig{
			Workers:        getEnvAsInt("PIPELINE_WORKERS", 4),
			QueueSize:      getEnvAsInt("PIPELINE_QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("PIPELINE_TIMEOUT", 10*time.Minute),
		},
		Watch: WatchConfig{
			Roots:       getEnvAsList("WATCH_DIRS"),
			Debounce:    getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
			InitialScan: getEnvAsBool("WATCH_INITIAL_SCAN", true),
		},
		GCP: GCPConfig{
			ProjectID:     getEnv("PROJECT_ID", ""),
			Bucket:        getEnv("REPORTS_BUCKET", ""),
			ArchiveBucket: getEnv("ARCHIVE_BUCKET", ""),
			Collection:    getEnv("FIRESTORE_COLLECTION", "credit_reports"),
		},
		Notify: NotifyConfig{
			SinkURL: getEnv("NOTIFY_SINK_URL", ""),
			Source:  getEnv("NOTIFY_SOURCE", "credit-audit"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the settings every binary depends on. Surface-specific requirements
// (watch roots, GCP project) are checked by the binaries that need them.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("DB_DRIVER", c.Database.Driver, Required, OneOf("postgres", "sqlite")).
		Field("OCR_STRATEGY", c.OCR.Strategy, OneOf("standard", "aggressive", "adaptive", "morphological", "deskew")).
		Field("OCR_ENGINE", c.OCR.Engine, OneOf("cli", "gosseract")).
		Field("OCR_DPI", c.OCR.DPI, Positive).
		Field("PIPELINE_WORKERS", c.Pipeline.Workers, Positive).
		Field("NOTIFY_SINK_URL", c.Notify.SinkURL, URL)
	if c.Database.Driver == "postgres" {
		v.Field("DB_URL", c.Database.DSN, Required)
	}
	if err := v.Error(); err != nil {
		return NewAppError("CONFIG_ERROR", "invalid configuration", err)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
