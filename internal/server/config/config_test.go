package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("test", []string{"-env-file", noEnvFile(t)})
	require.NoError(t, err)
	require.Equal(t, "localhost", cfg.APIHost)
	require.Equal(t, 8080, cfg.APIPort)
	require.False(t, cfg.Dev)
	require.Equal(t, 25*time.Second, cfg.PollInterval)
	require.Equal(t, "localhost:8080", cfg.Addr())
}

func TestLoadEnvThenFlags(t *testing.T) {
	t.Setenv("CHARFORGE_API_PORT", "9000")
	t.Setenv("CHARFORGE_STORAGE_PATH", "/tmp/env.db")
	t.Setenv("CHARFORGE_DEV", "true")

	cfg, err := Load("test", []string{"-env-file", noEnvFile(t), "-storage-path", "/tmp/flag.db"})
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.APIPort)
	require.Equal(t, "/tmp/flag.db", cfg.StoragePath)
	require.True(t, cfg.Dev)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CHARFORGE_API_HOST=0.0.0.0\nCHARFORGE_POLL_INTERVAL=5s\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("CHARFORGE_API_HOST")
		os.Unsetenv("CHARFORGE_POLL_INTERVAL")
	})

	cfg, err := Load("test", []string{"-env-file", path})
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.APIHost)
	require.Equal(t, 5*time.Second, cfg.PollInterval)
}

func TestLoadRejectsPIDLockWithoutPath(t *testing.T) {
	_, err := Load("test", []string{"-env-file", noEnvFile(t), "-pid-lock"})
	require.Error(t, err)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	_, err := Load("test", []string{"-env-file", noEnvFile(t), "-jwt-secret", "short"})
	require.Error(t, err)
}

func TestSecret(t *testing.T) {
	s, err := Config{Dev: true}.Secret()
	require.NoError(t, err)
	require.Equal(t, DevJWTSecret, string(s))

	a, err := Config{}.Secret()
	require.NoError(t, err)
	b, err := Config{}.Secret()
	require.NoError(t, err)
	require.Len(t, a, 32)
	require.NotEqual(t, a, b)
}
