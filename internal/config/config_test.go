package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, name := range []string{
		"APP_ENV", "LISTEN_ADDR", "GEMINI_API_KEY", "GEMINI_MODEL", "LOCAL_LLM_URL", "LOCAL_LLM_MODEL",
		"BACKEND_API_URL", "STORAGE_DRIVER", "STORAGE_PATH", "DATABASE_URL", "REDIS_URL", "STORAGE_KEY", "IMAGES_DIR",
	} {
		if v, ok := os.LookupEnv(name); ok {
			os.Unsetenv(name)
			t.Cleanup(func() { os.Setenv(name, v) })
		}
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "reelchef_recipes", cfg.Storage.Key)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout())
	require.NotNil(t, cfg.NotesThreshold)
	assert.Equal(t, 20, *cfg.NotesThreshold)
	assert.Len(t, cfg.Warnings(), 2)
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"gemini_api_key": "from-file",
		"backend_api_url": "http://localhost:3001",
		"storage": {"driver": "memory"},
		"notes_threshold": 30
	}`), 0644))
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.GeminiAPIKey)
	assert.Equal(t, "http://localhost:3001", cfg.BackendAPIURL)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	require.NotNil(t, cfg.NotesThreshold)
	assert.Equal(t, 30, *cfg.NotesThreshold)
	assert.Empty(t, cfg.Warnings())
}

func TestLoad_ZeroNotesThresholdIsKept(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"notes_threshold": 0}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.NotesThreshold)
	assert.Equal(t, 0, *cfg.NotesThreshold)
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&Config{Storage: StorageConfig{Driver: "mongo"}}).Validate())
	assert.Error(t, (&Config{Storage: StorageConfig{Driver: DriverPostgres}}).Validate())
	assert.Error(t, (&Config{Storage: StorageConfig{Driver: DriverRedis}}).Validate())
	assert.NoError(t, (&Config{Storage: StorageConfig{Driver: DriverPostgres, DatabaseURL: "postgres://x"}}).Validate())

	negative := -1
	assert.Error(t, (&Config{Storage: StorageConfig{Driver: DriverMemory}, NotesThreshold: &negative}).Validate())
}
