package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.WebConnector.AutoQueue)
	assert.Equal(t, 30, cfg.WebConnector.AutoQueueLookback)
	assert.Equal(t, 5*time.Minute, cfg.WebConnector.CompanyCacheTTL)
	assert.Equal(t, "13.0", cfg.WebConnector.QBXMLVersion)
	assert.Equal(t, 0.01, cfg.Reconcile.AmountTolerance)
	assert.Equal(t, 5, cfg.Reconcile.DateToleranceDays)
	assert.Equal(t, 95, cfg.Reconcile.SkipAt)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("QBWC_AUTO_QUEUE", "false")
	t.Setenv("QBWC_COMPANY_CACHE_SECONDS", "10")
	t.Setenv("RECONCILE_AMOUNT_TOLERANCE", "0.05")
	t.Setenv("RECONCILE_THRESHOLD", "not-a-number")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SYNC_REPORT_EMAIL", "ops@example.com")
	t.Setenv("GO_ENV", "Production")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.WebConnector.AutoQueue)
	assert.Equal(t, 10*time.Second, cfg.WebConnector.CompanyCacheTTL)
	assert.Equal(t, 0.05, cfg.Reconcile.AmountTolerance)
	assert.Equal(t, 80, cfg.Reconcile.Threshold)
	assert.True(t, cfg.SMTP.Enabled())
	assert.True(t, cfg.App.IsProduction())
}
