package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/pushscope/pkg/domain"
	"github.com/umputun/pushscope/pkg/scoring"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configPath := writeConfig(t, `
server:
  listen: ":9090"
  timeout: 45s

schedule:
  ingest_interval: 10m
  dispatch_interval: 2s
  batch_size: 50

scoring:
  like: 2
  decay_hours: 12

matching:
  quality_gate: true

delivery:
  max_retries: 5
  retry_base_delay: 10s
  rate_limits:
    telegram: 25

sources:
  - https://example.com/feed1.xml
  - https://example.com/feed2.xml

telegram:
  token: abc
  recipients:
    alice: 12345
`)
		cfg, err := Load(configPath)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
		assert.Equal(t, 10*time.Minute, cfg.Schedule.IngestInterval)
		assert.Equal(t, 2*time.Second, cfg.Schedule.DispatchInterval)
		assert.Equal(t, 50, cfg.Schedule.BatchSize)
		assert.InDelta(t, 2.0, cfg.Scoring.Like, 1e-9)
		assert.InDelta(t, 12.0, cfg.Scoring.DecayHours, 1e-9)
		assert.True(t, cfg.Matching.QualityGate)
		assert.Equal(t, 5, cfg.Delivery.MaxRetries)
		assert.Equal(t, 10*time.Second, cfg.Delivery.RetryBaseDelay)
		assert.Equal(t, map[domain.Channel]float64{domain.ChannelTelegram: 25}, cfg.RateLimits())
		assert.Equal(t, []string{"https://example.com/feed1.xml", "https://example.com/feed2.xml"}, cfg.Sources)
		assert.Equal(t, int64(12345), cfg.Telegram.Recipients["alice"])

		listen, timeout := cfg.GetServerConfig()
		assert.Equal(t, ":9090", listen)
		assert.Equal(t, 45*time.Second, timeout)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "sources: [https://example.com/feed.xml]\n"))
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Listen)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
		assert.Equal(t, "file:pushscope.db?cache=shared&mode=rwc&_txlock=immediate", cfg.Database.DSN)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5*time.Minute, cfg.Schedule.IngestInterval)
		assert.Equal(t, 5*time.Second, cfg.Schedule.DispatchInterval)
		assert.Equal(t, 15*time.Minute, cfg.Schedule.RescoreInterval)
		assert.Equal(t, 48*time.Hour, cfg.Schedule.RescoreWindow)
		assert.Equal(t, 10*time.Minute, cfg.Schedule.StaleAfter)
		assert.Equal(t, 100, cfg.Schedule.BatchSize)
		assert.Zero(t, cfg.Delivery.MaxRetries)
		assert.Equal(t, 5*time.Second, cfg.Delivery.RetryBaseDelay)
		assert.Equal(t, time.Second, cfg.Delivery.MaxJitter)
		assert.Equal(t, 30*time.Second, cfg.Delivery.SendTimeout)
		assert.Equal(t, 30*time.Second, cfg.Telegram.Timeout)
		assert.False(t, cfg.Matching.QualityGate)
		assert.Empty(t, cfg.RateLimits())
		assert.Equal(t, scoring.DefaultWeights, cfg.Scoring)
	})

	t.Run("explicit zero weight kept", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "scoring:\n  quote: 0\n  retweet: 3\n"))
		require.NoError(t, err)
		assert.Zero(t, cfg.Scoring.Quote)
		assert.InDelta(t, 3.0, cfg.Scoring.Retweet, 1e-9)
		assert.InDelta(t, scoring.DefaultWeights.Like, cfg.Scoring.Like, 1e-9)
		assert.InDelta(t, scoring.DefaultWeights.DecayHours, cfg.Scoring.DecayHours, 1e-9)
	})

	t.Run("environment expansion", func(t *testing.T) {
		t.Setenv("PUSHSCOPE_TG_TOKEN", "secret-token")
		cfg, err := Load(writeConfig(t, "telegram:\n  token: ${PUSHSCOPE_TG_TOKEN}\n"))
		require.NoError(t, err)
		assert.Equal(t, "secret-token", cfg.Telegram.Token)
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := Load("/nonexistent/config.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [listen\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"short server timeout", "server:\n  timeout: 100ms\n", "server timeout"},
		{"short dispatch interval", "schedule:\n  dispatch_interval: 10ms\n", "dispatch_interval"},
		{"negative retries", "delivery:\n  max_retries: -1\n", "max_retries"},
		{"unknown rate limit channel", "delivery:\n  rate_limits:\n    fax: 1\n", "unknown channel"},
		{"negative rate limit", "delivery:\n  rate_limits:\n    email: -1\n", "non-negative"},
		{"negative weight", "scoring:\n  like: -1\n", "scoring weights"},
		{"recipients without token", "telegram:\n  recipients:\n    alice: 1\n", "telegram.token"},
		{"bad source url", "sources: [ftp://example.com/feed]\n", "sources[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
