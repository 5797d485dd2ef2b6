package config_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/batch-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.Reconciliation.Window)
	assert.True(t, cfg.Reconciliation.Tolerance.Equal(decimal.RequireFromString("0.01")))
	assert.Equal(t, 4, cfg.Reconciliation.Workers)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_LOCK_TTL", "10s")
	t.Setenv("RECONCILE_WINDOW", "90")
	t.Setenv("RECONCILE_WORKERS", "8")
	t.Setenv("RECONCILE_SYSTEM_ACTOR", "svc-reconcile")
	t.Setenv("RECONCILE_TOLERANCE", "0.5")
	t.Setenv("DB_PORT", "6543")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 10*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, 90*time.Second, cfg.Reconciliation.Window)
	assert.Equal(t, 8, cfg.Reconciliation.Workers)
	assert.Equal(t, "svc-reconcile", cfg.Reconciliation.SystemActor)
	assert.True(t, cfg.Reconciliation.Tolerance.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, 6543, cfg.DB.Port)
}

func TestLoad_ProduccionExigeSecretoJWT(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/ledger?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
