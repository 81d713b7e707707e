// Package config loads gitminer configuration from file, environment and
// defaults.
package config

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/achievemint/gitminer/pkg/gitio"
)

// Config is the top-level configuration struct for gitminer.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	SSH     SSHConfig     `mapstructure:"ssh"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Diff    DiffConfig    `mapstructure:"diff"`
}

// StorageConfig locates the local repository copies.
type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

// SSHConfig holds the key material used for SSH remotes.
type SSHConfig struct {
	User           string `mapstructure:"user"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
	PublicKeyPath  string `mapstructure:"public_key_path"`
	Passphrase     string `mapstructure:"passphrase"`
}

// CacheConfig tunes the process-wide libgit2 object caches. Byte fields
// accept humanized strings ("256MB").
type CacheConfig struct {
	ObjectCacheSize    string `mapstructure:"object_cache_size"`
	MwindowSize        string `mapstructure:"mwindow_size"`
	MwindowMappedLimit string `mapstructure:"mwindow_mapped_limit"`
}

// DiffConfig tunes rename and copy detection.
type DiffConfig struct {
	RenameThreshold uint16 `mapstructure:"rename_threshold"`
	DetectCopies    bool   `mapstructure:"detect_copies"`
}

// ErrRenameThreshold is returned for similarity scores outside 0-100.
var ErrRenameThreshold = errors.New("rename threshold must be between 0 and 100")

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Diff.RenameThreshold > 100 {
		return fmt.Errorf("%w: %d", ErrRenameThreshold, c.Diff.RenameThreshold)
	}

	if _, err := c.CacheOptions(); err != nil {
		return err
	}

	return nil
}

// CacheOptions converts the humanized cache sizes into gitio options.
func (c *Config) CacheOptions() (gitio.CacheOptions, error) {
	opts := gitio.CacheOptions{}

	for _, field := range []struct {
		name  string
		value string
		dst   *int
	}{
		{"cache.object_cache_size", c.Cache.ObjectCacheSize, &opts.ObjectCacheBytes},
		{"cache.mwindow_size", c.Cache.MwindowSize, &opts.MwindowSizeBytes},
		{"cache.mwindow_mapped_limit", c.Cache.MwindowMappedLimit, &opts.MwindowMappedLimitBytes},
	} {
		if field.value == "" {
			continue
		}

		parsed, err := humanize.ParseBytes(field.value)
		if err != nil {
			return gitio.CacheOptions{}, fmt.Errorf("parse %s %q: %w", field.name, field.value, err)
		}

		*field.dst = int(parsed)
	}

	return opts, nil
}

// AcquireOptions assembles the acquisition options for one repository.
func (c *Config) AcquireOptions() gitio.AcquireOptions {
	return gitio.AcquireOptions{
		StorageDir: c.Storage.Dir,
		SSH: gitio.SSHOptions{
			User:           c.SSH.User,
			PrivateKeyPath: c.SSH.PrivateKeyPath,
			PublicKeyPath:  c.SSH.PublicKeyPath,
			Passphrase:     c.SSH.Passphrase,
		},
		Diff: gitio.DiffOptions{
			RenameThreshold: c.Diff.RenameThreshold,
			DetectCopies:    c.Diff.DetectCopies,
		},
	}
}
