package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(missingEnvFile(t))

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 6, cfg.PasswordHistoryDepth)
	assert.Equal(t, DigestSHA256, cfg.PasswordDigest)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.True(t, cfg.TaxRate.IsZero())
	assert.Equal(t, time.Second, cfg.OutboxInterval)
	assert.False(t, cfg.KafkaEnabled())
	assert.False(t, cfg.RedisEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("LOCK_TTL", "3s")
	t.Setenv("PASSWORD_HISTORY_DEPTH", "4")
	t.Setenv("TAX_RATE", "0.08")
	t.Setenv("DEFAULT_CURRENCY", "jpy")
	t.Setenv("PASSWORD_DIGEST", "BLAKE2B")

	cfg, err := Load(missingEnvFile(t))

	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, 3*time.Second, cfg.LockTTL)
	assert.Equal(t, 4, cfg.PasswordHistoryDepth)
	assert.True(t, decimal.RequireFromString("0.08").Equal(cfg.TaxRate))
	assert.Equal(t, "JPY", cfg.DefaultCurrency)
	assert.Equal(t, DigestBlake2b, cfg.PasswordDigest)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:9999\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("HTTP_ADDR") })

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
}

func TestLoad_InvalidValuesAreReturned(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "STORE_DRIVER", "sqlite"},
		{"bad duration", "OUTBOX_INTERVAL", "soon"},
		{"bad int", "OUTBOX_BATCH", "many"},
		{"zero history", "PASSWORD_HISTORY_DEPTH", "0"},
		{"bad currency", "DEFAULT_CURRENCY", "XYZ1"},
		{"negative tax", "TAX_RATE", "-0.1"},
		{"unknown digest", "PASSWORD_DIGEST", "md5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			cfg, err := Load(missingEnvFile(t))

			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
