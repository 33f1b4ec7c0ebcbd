package tests

import (
	"testing"
	"time"

	"github.com/nekomata/nekomata/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProductionConfig(t *testing.T) {
	t.Run("DefaultsWithKey", func(t *testing.T) {
		t.Setenv("CAT_API_KEY", "live_test_key")

		cfg, err := config.LoadProductionConfig()
		require.NoError(t, err)

		assert.Equal(t, "https://api.thecatapi.com/v1", cfg.CatAPI.BaseURL)
		assert.Equal(t, "live_test_key", cfg.CatAPI.APIKey)
		assert.Equal(t, 25, cfg.CatAPI.PageLimit)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.True(t, cfg.Database.AutoMigrate)
		assert.False(t, cfg.Scheduler.IngestionEnabled)
	})

	t.Run("MissingAPIKeyRejected", func(t *testing.T) {
		t.Setenv("CAT_API_KEY", "")

		_, err := config.LoadProductionConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CAT_API_KEY")
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("CAT_API_KEY", "k")
		t.Setenv("CAT_API_PAGE_LIMIT", "10")
		t.Setenv("CAT_API_TIMEOUT", "5s")
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("SCHEDULER_INGESTION_ENABLED", "true")
		t.Setenv("SCHEDULER_INGESTION_INTERVAL", "15m")

		cfg, err := config.LoadProductionConfig()
		require.NoError(t, err)

		assert.Equal(t, 10, cfg.CatAPI.PageLimit)
		assert.Equal(t, 5*time.Second, cfg.CatAPI.Timeout)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.True(t, cfg.Scheduler.IngestionEnabled)
		assert.Equal(t, 15*time.Minute, cfg.Scheduler.IngestionInterval)
	})

	t.Run("PageLimitBounds", func(t *testing.T) {
		t.Setenv("CAT_API_KEY", "k")
		t.Setenv("CAT_API_PAGE_LIMIT", "101")

		_, err := config.LoadProductionConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CAT_API_PAGE_LIMIT")
	})
}

func TestValidateProductionConfig(t *testing.T) {
	valid := func() *config.ProductionConfig {
		return &config.ProductionConfig{
			Database: config.DatabaseConfig{
				Host: "localhost", Port: 5432, Name: "nekomata", User: "postgres",
			},
			Server: config.ServerConfig{
				Port: 8080, ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second,
			},
			CatAPI: config.CatAPIConfig{
				BaseURL: "https://api.thecatapi.com/v1", APIKey: "k", PageLimit: 25,
			},
			Logging: config.LoggingConfig{Level: "info"},
		}
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, config.ValidateProductionConfig(valid()))
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		cfg := valid()
		cfg.Logging.Level = "verbose"
		err := config.ValidateProductionConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LOG_LEVEL")
	})

	t.Run("CacheEnabledNeedsRedisURL", func(t *testing.T) {
		cfg := valid()
		cfg.Cache.Enabled = true
		cfg.Cache.Provider = "redis"
		err := config.ValidateProductionConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CACHE_REDIS_URL")
	})
}
