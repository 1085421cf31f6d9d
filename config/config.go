// Package config loads the engine configuration with Viper. Values are read
// once at startup and passed into components as explicit parameters; nothing
// below this package reads configuration from ambient state.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/skubi6/kpi/errors"
)

// Config holds the engine's runtime configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Exports  ExportConfig   `mapstructure:"exports"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

type ExportConfig struct {
	// MaxRunSeconds is the longest an export run is expected to take. The
	// stuck reaper's cutoff is four times this value.
	MaxRunSeconds int `mapstructure:"max_run_seconds"`
	// MaxPerUserPerForm caps retained completed exports per (owner, source).
	MaxPerUserPerForm int `mapstructure:"max_per_user_per_form"`
}

type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// MaxRunTime returns the configured export run bound as a duration.
func (c *Config) MaxRunTime() time.Duration {
	return time.Duration(c.Exports.MaxRunSeconds) * time.Second
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "kpi.db")
	v.SetDefault("storage.dir", "kpi-storage")

	// Matches the legacy celery soft time limit for exports.
	v.SetDefault("exports.max_run_seconds", 2100)
	v.SetDefault("exports.max_per_user_per_form", 10)

	v.SetDefault("log.json", false)
}

// Load reads configuration from kpid.toml in the working directory (when
// present), environment variables prefixed KPI_, and defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("KPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	v.SetConfigName("kpid")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	return LoadWithViper(v)
}

// LoadWithViper unmarshals configuration from a provided Viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	return &config, nil
}
