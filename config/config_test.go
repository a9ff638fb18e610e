package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv(envMap(nil))

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "wearero", cfg.MongoDB)
	assert.Equal(t, "usd", cfg.Currency)
	assert.Equal(t, TokenTTL, cfg.TokenTTL)
	assert.False(t, cfg.PaymentsEnabled())
	assert.False(t, cfg.UploadsEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{
		"PORT":              "8080",
		"REDIS_DB":          "3",
		"CURRENCY":          "EUR",
		"STRIPE_SECRET_KEY": "sk_test_123",
		"CORS_ORIGINS":      "https://a.example, ,https://b.example",
		"MINIO_ENDPOINT":    "minio:9000",
		"MINIO_ACCESS_KEY":  "ak",
		"MINIO_SECRET_KEY":  "sk",
		"IS_PROD":           "true",
	}))

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "eur", cfg.Currency)
	assert.True(t, cfg.PaymentsEnabled())
	assert.True(t, cfg.UploadsEnabled())
	assert.True(t, cfg.IsProd)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}
