package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RACETRACK_WIN_POSITION", "30")
	t.Setenv("RACETRACK_RESET_PAUSE", "250ms")
	t.Setenv("RACETRACK_SCORE_URL", "sqlite:///var/lib/racetrack/scores.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.WinPosition)
	assert.Equal(t, 250*time.Millisecond, cfg.ResetPause)
	assert.Equal(t, "sqlite:///var/lib/racetrack/scores.db", cfg.ScoreURL)
	assert.Equal(t, "/tmp", cfg.FIFODir)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RACETRACK_FIFO_DIR=/run/racetrack\nRACETRACK_STATUS_PORT=8080\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("RACETRACK_FIFO_DIR")
		os.Unsetenv("RACETRACK_STATUS_PORT")
	})
	// already-set variables win over the file
	t.Setenv("RACETRACK_STATUS_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/run/racetrack", cfg.FIFODir)
	assert.Equal(t, 9090, cfg.StatusPort)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero win position", "RACETRACK_WIN_POSITION", "0"},
		{"zero poll interval", "RACETRACK_POLL_INTERVAL", "0s"},
		{"bad duration", "RACETRACK_SCHEDULER_INTERVAL", "soon"},
		{"port out of range", "RACETRACK_STATUS_PORT", "70000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
