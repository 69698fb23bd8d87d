package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileDefaults(t *testing.T) {
	t.Setenv("DUFFEL_API_KEY", "")
	t.Setenv("DUFFEL_TOKEN", "")

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"ICN", "GMP"}, cfg.Search.Destinations)
	assert.Equal(t, 45*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 0, cfg.Search.MaxRetries)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, cfg.Search.RetryDelays)
	assert.Equal(t, 720, cfg.Rules.MaxConnectionMinutes)
	assert.True(t, cfg.Rules.DefaultBaggageIncluded)
	assert.Equal(t, 10, cfg.Calendar.TripLength)
	assert.Equal(t, 30, cfg.Calendar.LeadTimeDays)
	assert.Equal(t, 6*time.Hour, cfg.Calendar.DayTTL)
	assert.Equal(t, 2, cfg.Prewarm.Concurrency)
	assert.True(t, cfg.UsesStaticProvider())
	assert.Equal(t, "NONE", cfg.TokenSource)
}

func TestLoadFileEnvOverrides(t *testing.T) {
	t.Setenv("DUFFEL_API_KEY", "")
	t.Setenv("DUFFEL_TOKEN", "duffel_test_abcdefghijkl")
	t.Setenv("PORT", "9090")
	t.Setenv("SEARCH_DESTINATIONS", "icn,gmp,pus")
	t.Setenv("CALENDAR_CONCURRENCY", "6")
	t.Setenv("SEARCH_CACHE_TTL", "90s")
	t.Setenv("CACHE_ENABLED", "true")

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"ICN", "GMP", "PUS"}, cfg.Search.Destinations)
	assert.Equal(t, 6, cfg.Calendar.Concurrency)
	assert.Equal(t, 90*time.Second, cfg.Search.CacheTTL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "duffel_test_abcdefghijkl", cfg.Duffel.APIKey)
	assert.Equal(t, "DUFFEL_TOKEN", cfg.TokenSource)
	assert.False(t, cfg.UsesStaticProvider())
}

func TestLoadFileYAML(t *testing.T) {
	t.Setenv("DUFFEL_API_KEY", "")
	t.Setenv("DUFFEL_TOKEN", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
calendar:
  lead_time_days: 14
  default_origin: mad
rules:
  require_baggage: true
search:
  max_retries: 2
  retry_delays: [250ms, 2s]
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.Calendar.LeadTimeDays)
	assert.Equal(t, "MAD", cfg.Calendar.DefaultOrigin)
	assert.True(t, cfg.Rules.RequireBaggage)
	assert.Equal(t, 10, cfg.Calendar.TripLength)
	assert.Equal(t, 2, cfg.Search.MaxRetries)
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 2 * time.Second}, cfg.Search.RetryDelays)
}

func TestLoadFileInvalid(t *testing.T) {
	t.Setenv("CALENDAR_DEFAULT_PAX", "9")
	_, err := LoadFile("")
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMask(t *testing.T) {
	assert.Nil(t, Mask(""))
	assert.Equal(t, "********", Mask("short"))
	assert.Equal(t, "duffel…ijkl", Mask("duffel_test_abcdefghijkl"))
}

func TestSummaryMasksSecrets(t *testing.T) {
	cfg := &Config{Duffel: DuffelConfig{APIKey: "duffel_live_secretvalue"}, Redis: RedisConfig{Password: "hunter2"}}
	s := cfg.Summary()
	assert.Equal(t, "duffel…alue", s["duffel_api_key_masked"])
	assert.Equal(t, "********", s["redis_password_masked"])
	assert.Equal(t, "duffel", s["provider"])
}
