package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 9000
  shutdown_timeout: 5s
database:
  url: postgres://localhost/vregistry?sslmode=disable
auth:
  mode: LOCAL
  jwt_secret: yaml-secret
  access_ttl: 10m
telegram:
  bot_token: ""
nats:
  url: nats://localhost:4222
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAMLWithDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "local", cfg.Auth.Mode)
	assert.Equal(t, 10*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 5, cfg.Auth.LoginMaxPerMinute)
	assert.Equal(t, "vregistry", cfg.NATS.SubjectPrefix)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverridesYAML(t *testing.T) {
	t.Setenv("APP_PORT", "7070")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("ACCESS_TTL", "1h")
	t.Setenv("TG_CHAT_ID", "-100123")
	t.Setenv("IDP_SCOPES", "openid, roles")
	t.Setenv("NOTIFY_EMAILS", "ops@example.kz,audit@example.kz")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, int64(-100123), cfg.Telegram.ChatID)
	assert.Equal(t, []string{"openid", "roles"}, cfg.IDP.Scopes)
	assert.Equal(t, []string{"ops@example.kz", "audit@example.kz"}, cfg.Email.To)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.NoError(t, cfg.Validate())
}

func TestLoadBrokenYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: ["))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing database", func(c *Config) { c.Database.DSN = "" }, "database.url"},
		{"local without secret", func(c *Config) { c.Auth.JWTSecret = "" }, "jwt_secret"},
		{"idp without urls", func(c *Config) { c.Auth.Mode = "idp" }, "idp.token_url"},
		{"unknown mode", func(c *Config) { c.Auth.Mode = "ldap" }, "auth.mode"},
		{"telegram without chat", func(c *Config) { c.Telegram.BotToken = "t" }, "chat_id"},
		{"email without recipients", func(c *Config) { c.Email.SMTPHost = "smtp" }, "email.to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Database: DatabaseConfig{DSN: "postgres://x"},
				Auth:     AuthConfig{Mode: "local", JWTSecret: "s"},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	ok := &Config{
		Database: DatabaseConfig{DSN: "postgres://x"},
		Auth:     AuthConfig{Mode: "idp"},
		IDP:      IDPConfig{TokenURL: "https://idp/token", UserInfoURL: "https://idp/userinfo", ClientID: "vregistry"},
	}
	assert.NoError(t, ok.Validate())
}
