package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/polyedge/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "trading:\n  simulation: true\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 600, cfg.Trading.IntervalSeconds)
	assert.Equal(t, 10*time.Minute, cfg.Interval())
	assert.True(t, cfg.Trading.Simulation)
	assert.InDelta(t, 100, cfg.Trading.InitialBalance, 0.0001)
	assert.InDelta(t, 0.08, cfg.Trading.MinDiscrepancy, 0.0001)
	assert.InDelta(t, 0.015, cfg.Trading.MaxPositionFraction, 0.0001)
	assert.InDelta(t, 24, cfg.Trading.MaxHoursToClose, 0.0001)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAMLValues(t *testing.T) {
	path := writeConfig(t, `
trading:
  simulation: true
  interval_seconds: 300
  initial_balance: 250
  min_discrepancy: 0.12
  max_position_fraction: 0.02
storage:
  backend: sqlite
  dsn: ledger.db
log:
  level: debug
  format: json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Interval())
	assert.InDelta(t, 250, cfg.Trading.InitialBalance, 0.0001)
	assert.InDelta(t, 0.12, cfg.Trading.MinDiscrepancy, 0.0001)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "ledger.db", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INITIAL_BALANCE", "500")
	t.Setenv("MAX_POSITION_SIZE", "0.05")
	t.Setenv("SIMULATION_MODE", "true")
	t.Setenv("LOG_LEVEL", "warn")

	path := writeConfig(t, "trading:\n  simulation: false\n  initial_balance: 100\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	// El entorno manda sobre el YAML
	assert.InDelta(t, 500, cfg.Trading.InitialBalance, 0.0001)
	assert.InDelta(t, 0.05, cfg.Trading.MaxPositionFraction, 0.0001)
	assert.True(t, cfg.Trading.Simulation)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_LiveRequiresPrivateKey(t *testing.T) {
	path := writeConfig(t, "trading:\n  simulation: false\n")

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLY_PRIVATE_KEY")
}

func TestLoad_LiveWithPrivateKey(t *testing.T) {
	t.Setenv("POLY_PRIVATE_KEY", "0xabc123")

	path := writeConfig(t, "trading:\n  simulation: false\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0xabc123", cfg.Trading.PrivateKey)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"fraction above 1", "trading:\n  simulation: true\n  max_position_fraction: 1.5\n"},
		{"discrepancy at 1", "trading:\n  simulation: true\n  min_discrepancy: 1.0\n"},
		{"unknown backend", "trading:\n  simulation: true\nstorage:\n  backend: redis\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
