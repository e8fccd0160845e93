package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ErrMissingExclusionPolicy is returned when no client-IP exclusion regex was
// supplied. Extraction refuses to start without one: internal and monitoring
// traffic would otherwise be counted as access evidence.
var ErrMissingExclusionPolicy = errors.New("config: missing IP exclusion policy (set SKIMMER_IP_FILTER)")

// Config holds all skimmer configuration. Loaded once at startup and passed
// by reference to every shard worker; never mutated afterwards.
type Config struct {
	// IPFilter is the mandatory regular expression matching client IPs to
	// discard (e.g. internal infrastructure).
	IPFilter string

	// CacheDir is the root of the extraction cache. Subdirectories hold
	// extracted streams, run records, and per-worker temporary space.
	CacheDir string

	// Mode selects the object-key policy: "generic" (no key filtering) or
	// "dandi" (blobs/zarr allow-list with zarr truncation).
	Mode string

	// Timestamps selects the canonical encoding: "canonical" for the
	// stripped DD/Mon/YYYY:HH:MM:SS form, "compact" for YYMMDDHHMMSS.
	Timestamps string

	// Workers is the shard-level parallelism for directory extraction.
	Workers int

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with sensible defaults.
// The cache directory falls back to any persisted override, then to
// ~/.skimmer-cache.
func Load() Config {
	return Config{
		IPFilter:   os.Getenv("SKIMMER_IP_FILTER"),
		CacheDir:   getenv("SKIMMER_CACHE_DIR", defaultCacheDir()),
		Mode:       getenv("SKIMMER_MODE", "generic"),
		Timestamps: getenv("SKIMMER_TIMESTAMPS", "canonical"),
		Workers:    getenvInt("SKIMMER_WORKERS", 1),
		LogLevel:   getenv("SKIMMER_LOG_LEVEL", "info"),
		LogFormat:  getenv("SKIMMER_LOG_FORMAT", "console"),
	}
}

// Validate checks the mandatory inputs before any line is read.
func (c Config) Validate() error {
	if c.IPFilter == "" {
		return ErrMissingExclusionPolicy
	}
	switch c.Mode {
	case "generic", "dandi":
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	switch c.Timestamps {
	case "canonical", "compact":
	default:
		return fmt.Errorf("config: unknown timestamp encoding %q", c.Timestamps)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be >= 1, got %d", c.Workers)
	}
	return nil
}

// ExtractionDir is where per-shard aligned streams are written.
func (c Config) ExtractionDir() string { return filepath.Join(c.CacheDir, "extraction") }

// RecordsDir holds extraction/validation records and the stop file.
func (c Config) RecordsDir() string { return filepath.Join(c.CacheDir, "records") }

// TmpDir holds per-worker scratch space.
func (c Config) TmpDir() string { return filepath.Join(c.CacheDir, "tmp") }

// StopFile is the path whose existence halts extraction between shards.
func (c Config) StopFile() string { return filepath.Join(c.RecordsDir(), "stop_extraction") }

// EnsureDirs creates the cache directory tree.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.CacheDir, c.ExtractionDir(), c.RecordsDir(), c.TmpDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return nil
}

func defaultCacheDir() string {
	if dir, err := persistedCacheDir(); err == nil && dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".skimmer-cache"
	}
	return filepath.Join(home, ".skimmer-cache")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
