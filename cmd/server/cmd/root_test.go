package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func resetGlobalFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		configPath, logLevel, logFormat = "", "", ""
	})
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		contains    string
		expectError bool
	}{
		{name: "help flag", args: []string{"--help"}, contains: "eventos server"},
		{name: "short help flag", args: []string{"-h"}, contains: "eventos server"},
		{name: "invalid flag", args: []string{"--invalid-flag"}, contains: "unknown flag: --invalid-flag", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestRootCommandPersistentFlags(t *testing.T) {
	cmd := newRootCommand()
	for _, flag := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	cmd := newRootCommand()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "seed", "token", "version", "healthcheck"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestLoadConfig_FileEnvAndFlags(t *testing.T) {
	resetGlobalFlags(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  url: postgres://file@localhost/eventos
auth:
  jwt_secret: from-file
server:
  port: 7000
logging:
  level: warn
`), 0o600))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENVIRONMENT", "test")

	configPath = path
	logFormat = "console"

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://file@localhost/eventos", cfg.Database.URL)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	resetGlobalFlags(t)
	configPath = filepath.Join(t.TempDir(), "absent.yaml")

	_, err := loadConfig()
	assert.ErrorContains(t, err, "read config file")
}

func TestMigrateDownRejectsZeroSteps(t *testing.T) {
	_, err := execute(t, "migrate", "down", "--steps", "0")
	assert.ErrorContains(t, err, "--steps must be > 0")
}

func TestTokenCommand(t *testing.T) {
	resetGlobalFlags(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/eventos")
	t.Setenv("JWT_SECRET", "token-command-secret")
	t.Setenv("ENVIRONMENT", "development")

	out, err := execute(t, "token", "--user-id", "3", "--username", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Authorization: Bearer ey")

	_, err = execute(t, "token")
	assert.ErrorContains(t, err, "--user-id must be > 0")
}

func TestTokenCommandRefusesProduction(t *testing.T) {
	resetGlobalFlags(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/eventos")
	t.Setenv("JWT_SECRET", "a-production-grade-secret-of-32-chars!!")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.org")

	_, err := execute(t, "token", "--user-id", "3")
	assert.ErrorContains(t, err, "refusing to mint tokens in production")
}
