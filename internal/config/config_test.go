package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0 9 * * *", cfg.Escalation.Cron)
	assert.Equal(t, "Asia/Kolkata", cfg.Escalation.Timezone)
	assert.Equal(t, "sarvam", cfg.LLM.Provider)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_YAMLFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte("env: production\nserver:\n  port: 9090\nescalation:\n  cron: \"30 6 * * *\"\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port, "env wins over yaml")
	assert.Equal(t, "30 6 * * *", cfg.Escalation.Cron)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Auth:       AuthConfig{JWTSecret: "0123456789abcdef0123456789abcdef", TokenTTL: 1},
			OTP:        OTPConfig{TTL: 1},
			Server:     ServerConfig{MaxUploadMB: 1},
			Escalation: EscalationConfig{Enabled: true, Cron: "0 9 * * *", Timezone: "UTC"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: true},
		{name: "bad cron", mutate: func(c *Config) { c.Escalation.Cron = "every day" }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.Escalation.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "bad cron ignored when disabled", mutate: func(c *Config) {
			c.Escalation.Enabled = false
			c.Escalation.Cron = "nope"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsValidCategory(t *testing.T) {
	assert.True(t, IsValidCategory("Water"))
	assert.False(t, IsValidCategory("water"), "categories are case-sensitive")
	assert.False(t, IsValidCategory(""))
}
