package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"grpc_address":           "www.example:9000",
		"metrics_address":        ":9191",
		"database_dsn":           "postgres://x",
		"secret_key":             "my_secret_key",
		"access_token_validity":  "1m",
		"refresh_token_validity": 180000000000,
		"reset_url":              "https://shop.example/reset",
		"redis_address":          "redis:6379",
		"redis_db":               2,
		"bcrypt_cost":            11,
		"cleanup_schedule":       "@hourly",
		"smtp_host":              "smtp.example",
		"smtp_port":              2525,
		"smtp_user":              "u",
		"smtp_password":          "p",
		"smtp_from":              "shop@example",
		"log_level":              "debug",
		"log_format":             "zerolog",
	})

	t.Run("loads every field", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, ":9191", cfg.MetricsAddr)
		assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 3*time.Minute, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, "https://shop.example/reset", cfg.ResetURL)
		assert.Equal(t, "redis:6379", cfg.RedisAddr)
		assert.Equal(t, 2, cfg.RedisDB)
		assert.Equal(t, 11, cfg.BcryptCost)
		assert.Equal(t, "@hourly", cfg.CleanupSchedule)
		assert.Equal(t, "smtp.example", cfg.SMTPHost)
		assert.Equal(t, 2525, cfg.SMTPPort)
		assert.Equal(t, "u", cfg.SMTPUser)
		assert.Equal(t, "p", cfg.SMTPPassword)
		assert.Equal(t, "shop@example", cfg.SMTPFrom)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "zerolog", cfg.LogFormat)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJson(cfg, []string{"-a", ":1"}))
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("partial file only overrides named fields", func(t *testing.T) {
		partial := writeTempJSON(t, map[string]any{"secret_key": "s2"})
		cfg := defaults()
		require.NoError(t, parseJson(cfg, []string{"-c", partial}))

		want := defaults()
		want.SecretKey = "s2"
		assert.Equal(t, want, cfg)
	})

	t.Run("bad duration", func(t *testing.T) {
		bad := writeTempJSON(t, map[string]any{"access_token_validity": "soon"})
		assert.Error(t, parseJson(&Config{}, []string{"-c", bad}))
	})
}
