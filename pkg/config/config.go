// Package config holds the runtime settings shared by the server's parent
// and worker processes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cbodonnell/racetrack/pkg/game/constants"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "RACETRACK_"

type Config struct {
	RunDir            string        `env:"RUN_DIR" envDefault:"/dev/shm/racetrack"`
	FIFODir           string        `env:"FIFO_DIR" envDefault:"/tmp"`
	LogFile           string        `env:"LOG_FILE" envDefault:"game.log"`
	LogRotateBytes    int64         `env:"LOG_ROTATE_BYTES" envDefault:"1048576"`
	ScoreURL          string        `env:"SCORE_URL" envDefault:"file://scores.txt"`
	MigrationsDir     string        `env:"MIGRATIONS_DIR" envDefault:"./migrations"`
	WinPosition       int           `env:"WIN_POSITION" envDefault:"20"`
	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"50ms"`
	LoggerInterval    time.Duration `env:"LOGGER_INTERVAL" envDefault:"100ms"`
	PollInterval      time.Duration `env:"POLL_INTERVAL" envDefault:"100ms"`
	ResetPause        time.Duration `env:"RESET_PAUSE" envDefault:"3s"`
	StatusPort        int           `env:"STATUS_PORT" envDefault:"0"`
	Seed              int64         `env:"SEED" envDefault:"0"`
}

// Load reads the configuration from the environment. Variables in envFile
// are applied first without overriding ones already set; a missing file is
// not an error. An empty envFile skips the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %v", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.WinPosition < 1 {
		return fmt.Errorf("win position must be positive, got %d", c.WinPosition)
	}
	for name, d := range map[string]time.Duration{
		"scheduler interval": c.SchedulerInterval,
		"logger interval":    c.LoggerInterval,
		"poll interval":      c.PollInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.ResetPause < 0 {
		return fmt.Errorf("reset pause must not be negative, got %s", c.ResetPause)
	}
	if c.StatusPort < 0 || c.StatusPort > 65535 {
		return fmt.Errorf("invalid status port %d", c.StatusPort)
	}
	return nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		RunDir:            "/dev/shm/racetrack",
		FIFODir:           "/tmp",
		LogFile:           "game.log",
		LogRotateBytes:    1 << 20,
		ScoreURL:          "file://scores.txt",
		MigrationsDir:     "./migrations",
		WinPosition:       constants.DefaultWinPosition,
		SchedulerInterval: 50 * time.Millisecond,
		LoggerInterval:    100 * time.Millisecond,
		PollInterval:      100 * time.Millisecond,
		ResetPause:        3 * time.Second,
	}
}
