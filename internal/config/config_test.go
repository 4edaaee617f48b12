package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_POLL_INTERVAL", "GEMINI_POLL_TIMEOUT",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REFRESH_TOKEN", "GOOGLE_DRIVE_FOLDER_ID",
		"DOWNLOAD_DIR", "OUTPUT_DIR", "MAX_SOURCE_HEIGHT", "SEGMENT_MIN_SECONDS", "SEGMENT_MAX_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv(zap.NewNop().Sugar())

	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 10*time.Minute, cfg.PollTimeout)
	assert.Equal(t, "downloads", cfg.DownloadDir)
	assert.Equal(t, "processed", cfg.OutputDir)
	assert.Equal(t, 1080, cfg.MaxSourceHeight)
	assert.Equal(t, 60, cfg.MinSegmentSeconds)
	assert.Equal(t, 90, cfg.MaxSegmentSeconds)
	assert.Empty(t, cfg.GeminiAPIKey, "credentials have no defaults")
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("GEMINI_POLL_INTERVAL", "5s")
	t.Setenv("MAX_SOURCE_HEIGHT", "720")
	t.Setenv("SEGMENT_MIN_SECONDS", "30")
	t.Setenv("SEGMENT_MAX_SECONDS", "45")

	cfg := FromEnv(zap.NewNop().Sugar())

	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiModel)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 720, cfg.MaxSourceHeight)
	assert.Equal(t, 30, cfg.MinSegmentSeconds)
	assert.Equal(t, 45, cfg.MaxSegmentSeconds)
}

func TestFromEnvWarnsAboutMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_POLL_INTERVAL", "soon")
	t.Setenv("MAX_SOURCE_HEIGHT", "full hd")

	core, observed := observer.New(zapcore.WarnLevel)
	cfg := FromEnv(zap.New(core).Sugar())

	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 1080, cfg.MaxSourceHeight)

	// Each malformed setting is surfaced, not silently replaced.
	assert.Equal(t, 1, observed.FilterMessage("ignoring malformed duration setting").Len())
	assert.Equal(t, 1, observed.FilterMessage("ignoring malformed numeric setting").Len())
}

func validConfig() *Config {
	return &Config{
		GeminiAPIKey:       "key",
		GeminiModel:        "gemini-2.5-flash",
		PollInterval:       2 * time.Second,
		PollTimeout:        10 * time.Minute,
		GoogleClientID:     "id",
		GoogleClientSecret: "secret",
		GoogleRefreshToken: "token",
		DownloadDir:        "downloads",
		OutputDir:          "processed",
		MaxSourceHeight:    1080,
		MinSegmentSeconds:  60,
		MaxSegmentSeconds:  90,
	}
}

func TestValidate(t *testing.T) {
	t.Run("complete config passes", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("folder id is optional", func(t *testing.T) {
		cfg := validConfig()
		cfg.DriveFolderID = ""
		assert.NoError(t, cfg.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing API key", mutate: func(c *Config) { c.GeminiAPIKey = "" }},
		{name: "missing client secret", mutate: func(c *Config) { c.GoogleClientSecret = "" }},
		{name: "missing refresh token", mutate: func(c *Config) { c.GoogleRefreshToken = "" }},
		{name: "zero poll interval", mutate: func(c *Config) { c.PollInterval = 0 }},
		{name: "max segment below min", mutate: func(c *Config) { c.MaxSegmentSeconds = 30 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
