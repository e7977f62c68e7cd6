package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())

		path := writeConfig(t, "server:\n  api_key: secret\n")
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "secret", cfg.Server.APIKey)
		assert.Equal(t, "data/index.db", cfg.Database.Path)
		assert.Equal(t, "data/days", cfg.Data.DaysDir)
	})

	t.Run("EnvExpansion", func(t *testing.T) {
		t.Setenv("TEST_API_KEY", "from-env")
		path := writeConfig(t, `
server:
  port: 9000
  api_key: "${TEST_API_KEY}"
database:
  path: "`+filepath.Join(t.TempDir(), "index.db")+`"
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "from-env", cfg.Server.APIKey)
	})

	t.Run("Checklists", func(t *testing.T) {
		path := writeConfig(t, `
database:
  path: "`+filepath.Join(t.TempDir(), "index.db")+`"
checklists:
  new_day:
    - "open register"
  end_day:
    - "count register"
    - "lock up"
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"open register"}, cfg.Checklists.NewDay)
		assert.Len(t, cfg.Checklists.EndDay, 2)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestDurationHelpers(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 24*time.Hour, cfg.BackupInterval())
	assert.Equal(t, time.Duration(0), cfg.CacheTTL())

	cfg.Backup.IntervalHours = 6
	cfg.Redis.CacheTTLSeconds = 300
	assert.Equal(t, 6*time.Hour, cfg.BackupInterval())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
}

func TestTemplateSource(t *testing.T) {
	src := NewTemplateSource(Templates{NewDay: []string{"a"}})
	assert.Equal(t, []string{"a"}, src.Templates().NewDay)

	src.Set(Templates{NewDay: []string{"b"}, EndDay: []string{"c"}})
	got := src.Templates()
	assert.Equal(t, []string{"b"}, got.NewDay)
	assert.Equal(t, []string{"c"}, got.EndDay)
}
