// Package config loads cadence settings from a YAML file and CADENCE_* environment variables.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/progress"
	"github.com/julianstephens/cadence/internal/schedule"
)

type EngineConfig struct {
	GoalCapDays int              `mapstructure:"goal_cap_days" yaml:"goal_cap_days"`
	Momentum    progress.Weights `mapstructure:"momentum" yaml:"momentum"`
}

type SyncConfig struct {
	Enabled    bool          `mapstructure:"enabled" yaml:"enabled"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
}

type NotifyConfig struct {
	GoalCompleted bool `mapstructure:"goal_completed" yaml:"goal_completed"`
	// Reminders gates 'cadence notify', meant to run from cron
	Reminders bool `mapstructure:"reminders" yaml:"reminders"`
}

// Config is the top-level application configuration
type Config struct {
	// Database is a SQLite path, a password-less PostgreSQL connection string,
	// or ":memory:". Empty means use the keyring/environment secret.
	Database string       `mapstructure:"database" yaml:"database"`
	Timezone string       `mapstructure:"timezone" yaml:"timezone"`
	Debug    bool         `mapstructure:"debug" yaml:"debug"`
	Engine   EngineConfig `mapstructure:"engine" yaml:"engine"`
	Sync     SyncConfig   `mapstructure:"sync" yaml:"sync"`
	Notify   NotifyConfig `mapstructure:"notify" yaml:"notify"`

	path string
}

// Path returns the file the config was read from, or the path it would be read from
func (c *Config) Path() string {
	return c.path
}

// Dir returns the directory holding the config file; logs and backups live beside it
func (c *Config) Dir() string {
	return filepath.Dir(c.path)
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := schedule.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks values that would otherwise fail deep inside the engine
func (c *Config) Validate() error {
	if c.Engine.GoalCapDays < 1 {
		return fmt.Errorf("%s must be positive, got %d", constants.SettingGoalCapDays, c.Engine.GoalCapDays)
	}
	if err := c.Engine.Momentum.Validate(); err != nil {
		return err
	}
	if c.Sync.MaxRetries < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", constants.SettingSyncMaxRetries, c.Sync.MaxRetries)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// DefaultPath returns ~/.config/cadence/config.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, strings.TrimPrefix(constants.DefaultConfigFile, "~/"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(constants.SettingDatabase, constants.DefaultDBPath)
	v.SetDefault(constants.SettingTimezone, constants.DefaultTimezone)
	v.SetDefault(constants.SettingDebug, false)
	v.SetDefault(constants.SettingGoalCapDays, constants.GoalCapDays)
	v.SetDefault(constants.SettingMomentumDaily, constants.MomentumDailyWeight)
	v.SetDefault(constants.SettingMomentumWeekly, constants.MomentumWeeklyWeight)
	v.SetDefault(constants.SettingMomentumOverall, constants.MomentumOverallWeight)
	v.SetDefault(constants.SettingSyncEnabled, constants.DefaultSyncEnabled)
	v.SetDefault(constants.SettingSyncMaxRetries, constants.SyncMaxRetries)
	v.SetDefault(constants.SettingSyncRetryDelay, constants.SyncRetryDelay)
	v.SetDefault(constants.SettingNotifyOnGoal, constants.DefaultNotifyOnGoal)
	v.SetDefault(constants.SettingNotifyReminders, constants.DefaultReminders)
}

// Load reads the YAML file at path (DefaultPath when empty). A missing file
// yields the defaults. CADENCE_* variables override file values, with dots
// in keys becoming underscores (CADENCE_SYNC_MAX_RETRIES).
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !stderrors.As(err, &notFound) && !stderrors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{path: path}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories if needed
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set(constants.SettingDatabase, cfg.Database)
	v.Set(constants.SettingTimezone, cfg.Timezone)
	v.Set(constants.SettingDebug, cfg.Debug)
	v.Set(constants.SettingGoalCapDays, cfg.Engine.GoalCapDays)
	v.Set(constants.SettingMomentumDaily, cfg.Engine.Momentum.Daily)
	v.Set(constants.SettingMomentumWeekly, cfg.Engine.Momentum.Weekly)
	v.Set(constants.SettingMomentumOverall, cfg.Engine.Momentum.Overall)
	v.Set(constants.SettingSyncEnabled, cfg.Sync.Enabled)
	v.Set(constants.SettingSyncMaxRetries, cfg.Sync.MaxRetries)
	v.Set(constants.SettingSyncRetryDelay, cfg.Sync.RetryDelay.String())
	v.Set(constants.SettingNotifyOnGoal, cfg.Notify.GoalCompleted)
	v.Set(constants.SettingNotifyReminders, cfg.Notify.Reminders)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
