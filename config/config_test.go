package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.True(t, cfg.Postgres.RunMigrationsOnStart)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "https://api.apify.com/v2", cfg.Executor.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.Executor.RunTimeout)
	assert.Equal(t, 5*time.Second, cfg.Executor.PollCacheTTL)
	assert.True(t, cfg.Poller.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Poller.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Observability.StatsDEnabled)
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("EXECUTOR_ACTOR_ID", "acme~lead-finder")
	t.Setenv("EXECUTOR_RUN_TIMEOUT", "45m")
	t.Setenv("POLLER_ENABLED", "false")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "acme~lead-finder", cfg.Executor.ActorID)
	assert.Equal(t, 45*time.Minute, cfg.Executor.RunTimeout)
	assert.False(t, cfg.Poller.Enabled)
}

func TestAppConfig_SanitizeClampsInvalidValues(t *testing.T) {
	cfg := AppConfig{
		Executor: ExecutorConfig{RunTimeout: -time.Minute},
		Poller:   PollerConfig{Interval: 0, BatchSize: -1, Concurrency: 0},
	}
	cfg.Sanitize()

	assert.Equal(t, 30*time.Minute, cfg.Executor.RunTimeout)
	assert.Equal(t, 15*time.Second, cfg.Poller.Interval)
	assert.Equal(t, 100, cfg.Poller.BatchSize)
	assert.Equal(t, 4, cfg.Poller.Concurrency)
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()
	assert.True(t, cfg.IsDev)
}
