package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skubi6/kpi/config"
)

func TestLoadWithViper_Defaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "kpi.db", cfg.Database.Path)
	assert.Equal(t, "kpi-storage", cfg.Storage.Dir)
	assert.Equal(t, 2100, cfg.Exports.MaxRunSeconds)
	assert.Equal(t, 10, cfg.Exports.MaxPerUserPerForm)
	assert.False(t, cfg.Log.JSON)
}

func TestLoadWithViper_Overrides(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("database.path", "/var/lib/kpi/kpi.db")
	v.Set("exports.max_run_seconds", 60)

	cfg, err := config.LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/kpi/kpi.db", cfg.Database.Path)
	assert.Equal(t, 60, cfg.Exports.MaxRunSeconds)
}

func TestConfig_MaxRunTime(t *testing.T) {
	cfg := &config.Config{}
	cfg.Exports.MaxRunSeconds = 2100
	assert.Equal(t, 35*time.Minute, cfg.MaxRunTime())
}
