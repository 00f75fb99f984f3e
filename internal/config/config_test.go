package config

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procforge/internal/proc"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, proc.DefaultCapacity, cfg.Capacity)
	assert.Equal(t, proc.DefaultRateCapPerSecond, cfg.RateCap)
	assert.Equal(t, "", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 600.0, cfg.AuditMaxPerMinute)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PROCFORGE_CAPACITY", "8")
	t.Setenv("PROCFORGE_RATE_CAP", "20")
	t.Setenv("PROCFORGE_DB", "/tmp/procs.db")
	t.Setenv("PROCFORGE_LOG_LEVEL", "debug")
	t.Setenv("PROCFORGE_AUDIT_MAX_PER_MINUTE", "90.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Capacity:          8,
		RateCap:           20,
		DBPath:            "/tmp/procs.db",
		LogLevel:          "debug",
		AuditMaxPerMinute: 90.5,
	}, cfg)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("PROCFORGE_CAPACITY", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestLevel_Invalid(t *testing.T) {
	_, err := Config{LogLevel: "chatty"}.Level()
	assert.Error(t, err)

	_, err = Config{LogLevel: "chatty"}.Logger(&bytes.Buffer{})
	assert.Error(t, err)
}

func TestEngineOptions(t *testing.T) {
	cfg := Config{Capacity: 2, RateCap: 5, LogLevel: "warn"}

	var buf bytes.Buffer
	logger, err := cfg.Logger(&buf)
	require.NoError(t, err)

	eng := proc.New(cfg.EngineOptions(logger)...)
	assert.Equal(t, 2, eng.Capacity())
	assert.Equal(t, 5, eng.RateCapPerSecond())

	for i := 0; i < 3; i++ {
		_, _ = eng.Register(proc.Definition{Trigger: proc.OnHit})
	}
	assert.Contains(t, buf.String(), "level=WARN", "capacity rejection is logged at warn")
}
