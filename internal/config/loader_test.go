package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achievemint/gitminer/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Storage.Dir)
	assert.Equal(t, config.DefaultObjectCacheSize, cfg.Cache.ObjectCacheSize)
	assert.Equal(t, uint16(config.DefaultRenameThreshold), cfg.Diff.RenameThreshold)
	assert.True(t, cfg.Diff.DetectCopies)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gitminer.yaml")

	content := []byte(`
storage:
  dir: /var/lib/gitminer
cache:
  object_cache_size: 1GB
diff:
  rename_threshold: 70
  detect_copies: false
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/gitminer", cfg.Storage.Dir)
	assert.Equal(t, "1GB", cfg.Cache.ObjectCacheSize)
	assert.Equal(t, uint16(70), cfg.Diff.RenameThreshold)
	assert.False(t, cfg.Diff.DetectCopies)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateRenameThreshold(t *testing.T) {
	cfg := &config.Config{}
	cfg.Diff.RenameThreshold = 150

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrRenameThreshold)
}

func TestCacheOptionsParsesHumanizedSizes(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.ObjectCacheSize = "256MB"
	cfg.Cache.MwindowSize = "1MB"
	cfg.Cache.MwindowMappedLimit = "512MB"

	opts, err := cfg.CacheOptions()
	require.NoError(t, err)

	assert.Equal(t, 256_000_000, opts.ObjectCacheBytes)
	assert.Equal(t, 1_000_000, opts.MwindowSizeBytes)
	assert.Equal(t, 512_000_000, opts.MwindowMappedLimitBytes)
}

func TestCacheOptionsEmptyFieldsStayZero(t *testing.T) {
	cfg := &config.Config{}

	opts, err := cfg.CacheOptions()
	require.NoError(t, err)
	assert.Equal(t, 0, opts.ObjectCacheBytes)
}

func TestCacheOptionsRejectsGarbage(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.ObjectCacheSize = "a lot"

	_, err := cfg.CacheOptions()
	require.Error(t, err)
}

func TestAcquireOptionsCarriesDiffSettings(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Dir = "/tmp/repos"
	cfg.SSH.User = "git"
	cfg.Diff.RenameThreshold = 60
	cfg.Diff.DetectCopies = true

	opts := cfg.AcquireOptions()

	assert.Equal(t, "/tmp/repos", opts.StorageDir)
	assert.Equal(t, "git", opts.SSH.User)
	assert.Equal(t, uint16(60), opts.Diff.RenameThreshold)
	assert.True(t, opts.Diff.DetectCopies)
}
