package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalyx/gatekeeper/internal/gatekeep"
	"github.com/robalyx/gatekeeper/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the loader reads. Empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"BOT_TOKEN", "INTEGRATION_ROLE", "ACCESS_ROLE", "GATEKEEP_ROLE", "LOG_LEVEL", "DRY_RUN",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0o600))

	return dir
}

func TestLoadDefaultsFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "token")

	cfg, path, err := config.LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, path)
	assert.Equal(t, "token", cfg.Discord.Token)
	assert.Equal(t, gatekeep.RoleNames{
		Integration: "twitch subscriber",
		Access:      "subscriber access",
		Gatekeep:    "follower",
	}, cfg.RoleNames())
	assert.True(t, cfg.Reconcile.OnStartup)
	assert.False(t, cfg.Reconcile.DryRun)
	assert.Equal(t, "info", cfg.Debug.LogLevel)

	policy, err := cfg.AmbiguityPolicy()
	require.NoError(t, err)
	assert.Equal(t, gatekeep.AmbiguityPolicyExclude, policy)

	retry := cfg.RetryOptions()
	assert.Equal(t, uint64(3), retry.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, retry.InitialInterval)
	assert.Equal(t, 5*time.Second, retry.MaxInterval)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("GATEKEEP_ROLE", "Verified")
	t.Setenv("ACCESS_ROLE", "   ")
	t.Setenv("DRY_RUN", "true")

	dir := writeConfig(t, `
version = 1

[discord]
token = "file-token"

[roles]
access = "VIP"
ambiguity = "first"

[reconcile]
concurrency = 8
`)

	cfg, path, err := config.LoadFrom(filepath.Join(dir, "missing"), dir)
	require.NoError(t, err)

	assert.Equal(t, dir, path)
	assert.Equal(t, "env-token", cfg.Discord.Token)
	assert.Equal(t, "Verified", cfg.Roles.Gatekeep)
	assert.Equal(t, "VIP", cfg.Roles.Access, "blank environment values are ignored")
	assert.Equal(t, "twitch subscriber", cfg.Roles.Integration)
	assert.Equal(t, 8, cfg.Reconcile.Concurrency)
	assert.True(t, cfg.Reconcile.DryRun)

	policy, err := cfg.AmbiguityPolicy()
	require.NoError(t, err)
	assert.Equal(t, gatekeep.AmbiguityPolicyFirst, policy)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantErr error
	}{
		{
			name:    "missing token",
			wantErr: config.ErrMissingToken,
		},
		{
			name:    "duplicate role names",
			env:     map[string]string{"BOT_TOKEN": "t", "ACCESS_ROLE": "Follower"},
			wantErr: gatekeep.ErrInvalidRoleNames,
		},
		{
			name:    "unknown ambiguity policy",
			env:     map[string]string{"BOT_TOKEN": "t"},
			file:    "version = 1\n[roles]\nambiguity = \"random\"\n",
			wantErr: config.ErrInvalidSetting,
		},
		{
			name:    "missing version",
			env:     map[string]string{"BOT_TOKEN": "t"},
			file:    "[reconcile]\non_startup = false\n",
			wantErr: config.ErrConfigVersionMissing,
		},
		{
			name:    "version mismatch",
			env:     map[string]string{"BOT_TOKEN": "t"},
			file:    "version = 2\n",
			wantErr: config.ErrConfigVersionMismatch,
		},
		{
			name:    "zero concurrency",
			env:     map[string]string{"BOT_TOKEN": "t"},
			file:    "version = 1\n[reconcile]\nconcurrency = 0\n",
			wantErr: config.ErrInvalidSetting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)

			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			dir := t.TempDir()
			if tt.file != "" {
				dir = writeConfig(t, tt.file)
			}

			_, _, err := config.LoadFrom(dir)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
