package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, SessionMemory, cfg.SessionBackend)
	assert.Equal(t, AuthLocal, cfg.AuthProvider)
	assert.Equal(t, PublisherLog, cfg.Publisher)
	assert.Equal(t, "storefront-orders", cfg.KafkaTopic)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location.String())
	assert.NotEmpty(t, cfg.SessionSecret)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("PUBLISHER", "kafka")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOGIN_RPS", "1.5")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, StorePostgres, cfg.StoreBackend)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, 1.5, cfg.LoginRPS)
}

func TestFromEnv_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"STORE_BACKEND": "cassandra"}},
		{"unknown session backend", map[string]string{"SESSION_BACKEND": "memcached"}},
		{"gotrue without url", map[string]string{"AUTH_PROVIDER": "gotrue"}},
		{"unknown publisher", map[string]string{"PUBLISHER": "nats"}},
		{"production without secret", map[string]string{"APP_ENV": "production"}},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{"zero burst", map[string]string{"LOGIN_BURST": "0"}},
		{"zero session ttl", map[string]string{"SESSION_TTL": "0s"}},
		{"negative session ttl", map[string]string{"SESSION_TTL": "-1h"}},
		{"zero store timeout", map[string]string{"STORE_TIMEOUT": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
