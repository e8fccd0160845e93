package skimmer

import (
	"context"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/crimson-sun/skimmer/internal/config"
	"github.com/crimson-sun/skimmer/internal/extract"
	"github.com/crimson-sun/skimmer/internal/validate"
)

// Stats summarizes an extraction run. This is the stable public type;
// internal representations may evolve independently.
type Stats struct {
	Shards  int   // shards fully processed this run
	Skipped int   // shards skipped via the extraction record
	Lines   int64 // lines scanned
	Events  int64 // access records emitted
	Bytes   int64 // input bytes processed
}

// Option configures a Skimmer.
type Option func(*config.Config, *zerolog.Logger)

// WithCacheDir sets the cache root for streams, records, and scratch space.
func WithCacheDir(dir string) Option {
	return func(c *config.Config, _ *zerolog.Logger) { c.CacheDir = dir }
}

// WithIPFilter sets the mandatory client-IP exclusion pattern.
func WithIPFilter(pattern string) Option {
	return func(c *config.Config, _ *zerolog.Logger) { c.IPFilter = pattern }
}

// WithDandiKeys enables the blobs/zarr key policy.
func WithDandiKeys() Option {
	return func(c *config.Config, _ *zerolog.Logger) { c.Mode = "dandi" }
}

// WithCompactTimestamps selects the 12-digit sortable timestamp encoding.
func WithCompactTimestamps() Option {
	return func(c *config.Config, _ *zerolog.Logger) { c.Timestamps = "compact" }
}

// WithWorkers sets shard-level parallelism.
func WithWorkers(n int) Option {
	return func(c *config.Config, _ *zerolog.Logger) { c.Workers = n }
}

// WithLogger routes diagnostics to the given logger instead of discarding
// them.
func WithLogger(log zerolog.Logger) Option {
	return func(_ *config.Config, l *zerolog.Logger) { *l = log }
}

// Skimmer is the public handle over the extraction and validation engines.
// Create once, reuse across directories; safe for concurrent use.
type Skimmer struct {
	ex  *extract.Extractor
	val *validate.Validator
	cfg config.Config
}

// New builds a Skimmer from environment defaults overridden by options.
// The IP exclusion policy is mandatory; New fails without it.
func New(opts ...Option) (*Skimmer, error) {
	cfg := config.Load()
	log := zerolog.New(io.Discard)
	for _, opt := range opts {
		opt(&cfg, &log)
	}

	ex, err := extract.New(cfg, log)
	if err != nil {
		return nil, err
	}
	val, err := validate.New(filepath.Join(cfg.RecordsDir(), "validation.txt"), log)
	if err != nil {
		ex.Close()
		return nil, err
	}
	return &Skimmer{ex: ex, val: val, cfg: cfg}, nil
}

// Extract processes every unextracted *.log shard under dir.
func (s *Skimmer) Extract(ctx context.Context, dir string) (Stats, error) {
	st, err := s.ex.ExtractDirectory(ctx, dir, 0)
	return Stats(st), err
}

// Validate audits every unvalidated *.log shard under dir, returning the
// first fatal diagnostic.
func (s *Skimmer) Validate(ctx context.Context, dir string) error {
	return s.val.ValidateDirectory(ctx, dir, 0)
}

// ValidateFile audits a single shard.
func (s *Skimmer) ValidateFile(ctx context.Context, path string) error {
	return s.val.ValidateFile(ctx, path)
}

// Close releases run records.
func (s *Skimmer) Close() error {
	err := s.ex.Close()
	if verr := s.val.Close(); err == nil {
		err = verr
	}
	return err
}
