// Package config provides configuration loading and validation for the worker.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Config holds every externally provided setting the worker needs. It is
// loaded once at startup and passed explicitly to each collaborator's
// constructor; stage code never reads the process environment itself.
type Config struct {
	// Inference service
	GeminiAPIKey string        `validate:"required"`
	GeminiModel  string        `validate:"required"`
	PollInterval time.Duration `validate:"gt=0"`
	PollTimeout  time.Duration `validate:"gt=0"`

	// Storage service (Google Drive, refresh-token OAuth)
	GoogleClientID     string `validate:"required"`
	GoogleClientSecret string `validate:"required"`
	GoogleRefreshToken string `validate:"required"`
	DriveFolderID      string // optional destination folder

	// Local ephemeral storage
	DownloadDir string `validate:"required"`
	OutputDir   string `validate:"required"`

	// Pipeline tuning
	MaxSourceHeight   int `validate:"gt=0"`
	MinSegmentSeconds int `validate:"gt=0"`
	MaxSegmentSeconds int `validate:"gt=0,gtefield=MinSegmentSeconds"`
}

// FromEnv builds a Config from environment variables, applying defaults for
// everything except credentials. Missing credentials are not an error here:
// they surface as an init-stage failure when a job constructs its
// collaborators, so the server can still start and report liveness.
// Malformed tunables fall back to their defaults with a warning.
func FromEnv(log *zap.SugaredLogger) *Config {
	return &Config{
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		PollInterval:       envDuration(log, "GEMINI_POLL_INTERVAL", 2*time.Second),
		PollTimeout:        envDuration(log, "GEMINI_POLL_TIMEOUT", 10*time.Minute),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),
		DriveFolderID:      os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
		DownloadDir:        envOr("DOWNLOAD_DIR", "downloads"),
		OutputDir:          envOr("OUTPUT_DIR", "processed"),
		MaxSourceHeight:    envInt(log, "MAX_SOURCE_HEIGHT", 1080),
		MinSegmentSeconds:  envInt(log, "SEGMENT_MIN_SECONDS", 60),
		MaxSegmentSeconds:  envInt(log, "SEGMENT_MAX_SECONDS", 90),
	}
}

// Validate checks that the configuration is complete enough to run a job.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(log *zap.SugaredLogger, key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warnw("ignoring malformed numeric setting", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envDuration(log *zap.SugaredLogger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warnw("ignoring malformed duration setting", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
