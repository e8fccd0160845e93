package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk portion of the configuration. Only settings that
// must survive between invocations live here; everything else is env-driven.
type fileConfig struct {
	CacheDirectory string `yaml:"cache_directory,omitempty"`
}

func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home: %w", err)
	}
	return filepath.Join(home, ".skimmer", "config.yaml"), nil
}

// SetCacheDir persists a non-default cache directory to the config file.
func SetCacheDir(dir string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create config dir: %w", err)
	}

	fc, err := readFileConfig(path)
	if err != nil {
		return err
	}
	fc.CacheDirectory = dir

	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// persistedCacheDir returns the cache directory recorded in the config file,
// or "" when none has been set.
func persistedCacheDir() (string, error) {
	path, err := configFilePath()
	if err != nil {
		return "", err
	}
	fc, err := readFileConfig(path)
	if err != nil {
		return "", err
	}
	return fc.CacheDirectory, nil
}

func readFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fc, nil
	}
	if err != nil {
		return fc, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return fc, nil
}
