package config

import (
	"testing"

	"patrimony-manager/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "patrimony.db", cfg.Database.Path)
	assert.Equal(t, "patrimony-backups", cfg.Storage.Bucket)
	assert.Equal(t, reconcile.MissingRuleZero, cfg.Policy.MissingRule)
	assert.True(t, cfg.Policy.AllowCreateNew)
	assert.Equal(t, "PAT-{seq}", cfg.Policy.AssetNumberFormat)
	assert.Zero(t, cfg.Session.UserID)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("POLICY_MISSING_RULE", "keep")
	t.Setenv("POLICY_ALLOW_CREATE_NEW", "false")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, reconcile.MissingRuleKeep, cfg.Policy.MissingRule)
	assert.False(t, cfg.Policy.AllowCreateNew)
}
