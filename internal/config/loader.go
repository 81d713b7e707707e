package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".gitminer"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for gitminer settings.
const envPrefix = "GITMINER"

// Load reads configuration from file, env vars and defaults. If configPath
// is non-empty it is used as the explicit config file path; otherwise the
// config file is searched in CWD and $HOME. A missing config file is not an
// error; defaults apply.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("storage.dir", defaultStorageDir())

	viperCfg.SetDefault("cache.object_cache_size", DefaultObjectCacheSize)
	viperCfg.SetDefault("cache.mwindow_size", DefaultMwindowSize)
	viperCfg.SetDefault("cache.mwindow_mapped_limit", DefaultMwindowMappedLimit)

	viperCfg.SetDefault("diff.rename_threshold", DefaultRenameThreshold)
	viperCfg.SetDefault("diff.detect_copies", DefaultDetectCopies)
}

// Defaults for the tunable knobs.
const (
	DefaultObjectCacheSize    = "256MB"
	DefaultMwindowSize        = "1MB"
	DefaultMwindowMappedLimit = "512MB"
	DefaultRenameThreshold    = 50
	DefaultDetectCopies       = true
)

func defaultStorageDir() string {
	cache, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "gitminer", "repos")
	}

	return filepath.Join(cache, "gitminer", "repos")
}
