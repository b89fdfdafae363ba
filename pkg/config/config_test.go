package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Ledger.MaxRetries)
	assert.Equal(t, "atomic", cfg.Ledger.TransferMode)
	assert.Equal(t, 7, cfg.Ledger.UsageWindowDays)
	assert.Equal(t, 15*time.Minute, cfg.Alerts.SweepInterval)
	assert.Equal(t, "20", cfg.Alerts.PriceChangeThresholdPct.String())
	assert.False(t, cfg.Kafka.Enabled(), "sin brokers Kafka queda deshabilitado")
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_MAX_RETRIES", "9")
	t.Setenv("LEDGER_TRANSFER_MODE", "saga")
	t.Setenv("ALERTS_SWEEP_INTERVAL", "30s")
	t.Setenv("ALERTS_PRICE_CHANGE_THRESHOLD_PCT", "12.5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Ledger.MaxRetries)
	assert.Equal(t, "saga", cfg.Ledger.TransferMode)
	assert.Equal(t, 30*time.Second, cfg.Alerts.SweepInterval)
	assert.Equal(t, "12.5", cfg.Alerts.PriceChangeThresholdPct.String())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_ModoTrasladoInvalido(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_TRANSFER_MODE", "otro")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss/w", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%2Fw@db:5432/ledger?sslmode=disable", c.DSN())
}
