package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dommgrand/notesapp/pkg/config"
)

type testConfig struct {
	Host string `env:"LOADTEST_HOST" env-default:"localhost"`
	Port int    `env:"LOADTEST_PORT" env-default:"8080"`
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load[testConfig](context.Background(), "loadtest", "")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LOADTEST_HOST", "example.com")
	t.Setenv("LOADTEST_PORT", "9090")

	cfg, err := config.Load[testConfig](context.Background(), "loadtest", "")
	require.NoError(t, err)

	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	content := "LOADTEST_FILE_HOST=from-file\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	type fileConfig struct {
		Host string `env:"LOADTEST_FILE_HOST" env-default:"unset"`
	}

	t.Cleanup(func() { os.Unsetenv("LOADTEST_FILE_HOST") })

	cfg, err := config.Load[fileConfig](context.Background(), "loadtest", envPath)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Host)
}

func TestLoadMissingEnvFileIsNotFatal(t *testing.T) {
	cfg, err := config.Load[testConfig](context.Background(), "loadtest", "nonexistent/.env")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}
