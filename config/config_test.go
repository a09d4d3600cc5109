package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database:\n  driver: sqlite\n  dsn: floor.db\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 300*time.Second, cfg.Server.CacheTTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "0.16", cfg.Billing.TaxRate.String())
	assert.Equal(t, []int{10, 15, 20}, cfg.Billing.TipPresets)
	assert.Equal(t, time.UTC, cfg.Business.Location)
	assert.Equal(t, "floor.events", cfg.Relay.Exchange)
	assert.Equal(t, 5*time.Second, cfg.Relay.PublishTimeout)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 64, cfg.WorkerPool.Queue)
	assert.Equal(t, 5, cfg.Display.PollIntervalSeconds)
	assert.Equal(t, 300*time.Second, cfg.Catalog.Interval)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9090
billing:
  tax_rate: "0.08"
  tip_presets: [12, 18]
business:
  timezone: "America/Mexico_City"
catalog:
  enabled: true
  interval_seconds: 60
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.08", cfg.Billing.TaxRate.String())
	assert.Equal(t, []int{12, 18}, cfg.Billing.TipPresets)
	assert.Equal(t, "America/Mexico_City", cfg.Business.Location.String())
	assert.True(t, cfg.Catalog.Enabled)
	assert.Equal(t, time.Minute, cfg.Catalog.Interval)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"tax rate not a number", "billing:\n  tax_rate: lots\n"},
		{"tax rate out of range", "billing:\n  tax_rate: \"1.5\"\n"},
		{"unknown timezone", "business:\n  timezone: Mars/Olympus\n"},
		{"malformed yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.False(t, cfg.Relay.Enabled)
}
