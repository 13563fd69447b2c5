package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rras-datagen/internal/datastore"
	"rras-datagen/internal/generator"
	"rras-datagen/internal/snapshot"
)

var envKeys = []string{
	"SINK_TYPE", "DB_CONN_STRING", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"DB_SSLMODE", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME",
	"API_BASE_URL", "API_TOKEN", "API_TIMEOUT", "SIM_CUSTOMERS", "SIM_DURATION", "SIM_RATE",
	"SIM_INTERVAL", "SIM_BATCH_SIZE", "SIM_BACKOFF", "SIM_SEED", "SIM_POLICY",
	"SIM_DELINQUENCY_MODE", "SIM_SNAPSHOT_MODE", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE", "METRICS_ADDR",
}

// clearEnv blanks every key so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.SinkType)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 100, cfg.Simulation.Customers)
	assert.Equal(t, 5*time.Second, cfg.Simulation.Interval)
	assert.Equal(t, "fixed", cfg.Simulation.SnapshotMode)
	assert.Equal(t, "info", cfg.Log.Level)

	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, "batch", p.Name)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	for _, k := range envKeys {
		// godotenv only fills unset variables
		require.NoError(t, os.Unsetenv(k))
	}

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"SINK_TYPE=api\nAPI_BASE_URL=https://rras.example.ls/api/\nAPI_TOKEN=abc\nSIM_RATE=2.5\nSIM_DELINQUENCY_MODE=uniform\n",
	), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"SINK_TYPE", "API_BASE_URL", "API_TOKEN", "SIM_RATE", "SIM_DELINQUENCY_MODE"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "api", cfg.SinkType)
	assert.Equal(t, "https://rras.example.ls/api", cfg.API.BaseURL)
	assert.Equal(t, 2.5, cfg.Simulation.Rate)

	ds := cfg.DataStore()
	assert.Equal(t, datastore.APIStore, ds.Type)
	assert.Equal(t, "abc", ds.APIToken)

	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, "stream", p.Name)
	assert.Equal(t, generator.DelinquencyUniform, p.Delinquency)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"port not a number":  {"DB_PORT": "fivefourthreetwo"},
		"port out of range":  {"DB_PORT": "70000"},
		"unknown sink":       {"SINK_TYPE": "kafka"},
		"api without url":    {"SINK_TYPE": "api"},
		"bad url":            {"SINK_TYPE": "api", "API_BASE_URL": "not a url"},
		"bad duration":       {"SIM_DURATION": "ten minutes"},
		"zero batch size":    {"SIM_BATCH_SIZE": "0"},
		"negative rate":      {"SIM_RATE": "-1"},
		"unknown policy":     {"SIM_POLICY": "monthly"},
		"unknown snapshot":   {"SIM_SNAPSHOT_MODE": "weekly"},
		"unknown log level":  {"LOG_LEVEL": "verbose"},
		"unknown delinquent": {"SIM_DELINQUENCY_MODE": "gaussian"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(missingEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestConnStringReplacesHost(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_CONN_STRING", "postgres://sim@db/rras")
	t.Setenv("DB_HOST", "")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "postgres://sim@db/rras", cfg.DataStore().Database.DSN())
}

func TestRunnerConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIM_DURATION", "10m")
	t.Setenv("SIM_SNAPSHOT_MODE", "random")
	t.Setenv("SIM_BACKOFF", "250ms")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	rc := cfg.Runner()
	assert.Equal(t, 10*time.Minute, rc.Duration)
	assert.Equal(t, 250*time.Millisecond, rc.Backoff)
	assert.Equal(t, snapshot.ModeRandom, rc.SnapshotMode)
}
