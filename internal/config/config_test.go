package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "09:00", cfg.Slots.Start)
	assert.Equal(t, "17:00", cfg.Slots.End)
	assert.Equal(t, 30, cfg.Slots.StepMinutes)
	assert.Equal(t, 180, cfg.Booking.CancellationWindowDays)
	assert.Equal(t, 5, cfg.Booking.MaxRecentCancellations)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[database]
host = "db"
port = 6543
user = "turnos"
password = "secret"
dbname = "agenda"
sslmode = "require"

[booking]
cancellation_window_days = 150
max_recent_cancellations = 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 150, cfg.Booking.CancellationWindowDays)
	assert.Equal(t, 3, cfg.Booking.MaxRecentCancellations)
	assert.Equal(t, "host=db port=6543 user=turnos password=secret dbname=agenda sslmode=require", cfg.Database.DSN())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "postgres.internal")
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("HTTP_PORT", "7000")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load(writeConfig(t, "[database]\nhost = \"db\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "postgres.internal", cfg.Database.Host)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, 7000, cfg.Server.HTTPPort)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	_, err := Load(writeConfig(t, ""))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_InvalidSlots(t *testing.T) {
	_, err := Load(writeConfig(t, "[slots]\nstep_minutes = 0\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
