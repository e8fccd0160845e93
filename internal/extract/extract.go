// Package extract runs the production path: shard-per-file, single-pass,
// heuristic field extraction into aligned output streams. Shards are
// embarrassingly parallel; within a shard processing is strictly sequential
// so that output order equals filtered input order.
package extract

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/skimmer/internal/config"
	"github.com/crimson-sun/skimmer/internal/gate"
	"github.com/crimson-sun/skimmer/internal/parse"
	"github.com/crimson-sun/skimmer/internal/records"
	"github.com/crimson-sun/skimmer/internal/sink"
	"github.com/crimson-sun/skimmer/internal/source"
)

const maxLineBytes = 1 << 20

// Stats summarizes one extraction run.
type Stats struct {
	Shards  int   // shards fully processed this run
	Skipped int   // shards skipped via the extraction record
	Lines   int64 // lines scanned
	Events  int64 // events emitted to the aligned streams
	Bytes   int64 // input bytes processed
}

func (s *Stats) add(o Stats) {
	s.Shards += o.Shards
	s.Skipped += o.Skipped
	s.Lines += o.Lines
	s.Events += o.Events
	s.Bytes += o.Bytes
}

// Extractor owns the run-wide read-only policy state (gate, encoding) and
// the extraction record. Safe for concurrent shard processing.
type Extractor struct {
	cfg  config.Config
	gate *gate.Gate
	rec  *records.Set
	log  zerolog.Logger
}

// New validates the configuration (the config guard runs here, before any
// line is read), compiles the gate, and opens the extraction record.
func New(cfg config.Config, log zerolog.Logger) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	var policy *gate.KeyPolicy
	if cfg.Mode == "dandi" {
		policy = gate.DandiKeyPolicy()
	}
	enc := parse.Canonical
	if cfg.Timestamps == "compact" {
		enc = parse.Compact
	}

	g, err := gate.New(cfg.IPFilter, policy, enc)
	if err != nil {
		return nil, err
	}

	rec, err := records.Open(filepath.Join(cfg.RecordsDir(), "extraction.txt"))
	if err != nil {
		return nil, err
	}

	return &Extractor{
		cfg:  cfg,
		gate: g,
		rec:  rec,
		log:  log.With().Str("component", "extract").Logger(),
	}, nil
}

// Close releases the extraction record.
func (e *Extractor) Close() error { return e.rec.Close() }

// Stopped reports whether the stop file exists. Workers check it between
// shards; a stopped run resumes later from the extraction record.
func (e *Extractor) Stopped() bool {
	_, err := os.Stat(e.cfg.StopFile())
	return err == nil
}

// ExtractFile processes one shard end to end, appending retained events to
// the shard's four aligned streams under the extraction directory. Shards
// already listed in the extraction record are skipped.
func (e *Extractor) ExtractFile(ctx context.Context, path, name string) (Stats, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Stats{}, fmt.Errorf("extract: resolve %s: %w", path, err)
	}
	if e.rec.Has(abs) {
		e.log.Debug().Str("shard", abs).Msg("already extracted, skipping")
		return Stats{Skipped: 1}, nil
	}

	f, err := os.Open(abs)
	if err != nil {
		return Stats{}, fmt.Errorf("extract: open %s: %w", abs, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Stats{}, fmt.Errorf("extract: stat %s: %w", abs, err)
	}

	w, err := sink.Open(filepath.Join(e.cfg.ExtractionDir(), name))
	if err != nil {
		return Stats{}, err
	}

	stats, scanErr := e.scan(ctx, f, abs, w)
	if closeErr := w.Close(); scanErr == nil {
		scanErr = closeErr
	}
	if scanErr != nil {
		return stats, scanErr
	}

	stats.Shards = 1
	stats.Bytes = info.Size()
	if err := e.rec.Add(abs); err != nil {
		return stats, err
	}
	e.log.Info().
		Str("shard", abs).
		Int64("lines", stats.Lines).
		Int64("events", stats.Events).
		Str("size", humanize.Bytes(uint64(info.Size()))).
		Msg("shard extracted")
	return stats, nil
}

// scan is the per-line hot loop: split on the marker, read fixed positions,
// gate, append. Lines the heuristic cannot address (blank, no marker, too
// few tokens) fall through silently; establishing that nothing relevant is
// lost that way is the validation path's job, not this one's.
func (e *Extractor) scan(ctx context.Context, f *os.File, shard string, w *sink.Writer) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Lines++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		pre, posts, count := parse.Split(line)
		if count == 0 {
			continue
		}
		fields, ok := parse.Extract(pre, posts[0])
		if !ok {
			continue
		}

		event, reason, err := e.gate.Evaluate(fields)
		if err != nil {
			return stats, fmt.Errorf("extract: %s:%d: %w", shard, stats.Lines, err)
		}
		if reason != gate.ReasonPass {
			continue
		}
		if err := w.Append(event); err != nil {
			return stats, err
		}
		stats.Events++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("extract: scan %s: %w", shard, err)
	}
	return stats, nil
}

// ExtractDirectory processes every unextracted *.log shard under dir,
// distributing shards across the configured number of workers. limit <= 0
// means no limit. The stop file halts dispatch between shards.
func (e *Extractor) ExtractDirectory(ctx context.Context, dir string, limit int) (Stats, error) {
	shards, err := (source.Local{Dir: dir}).Shards(ctx)
	if err != nil {
		return Stats{}, err
	}
	return e.ExtractShards(ctx, dir, shards, limit)
}

// ExtractShards processes the given shard paths. Output locations are
// namespaced by each shard's path relative to root (falling back to the
// base name), so concurrent shards never share streams; two pending shards
// resolving to the same output location abort the run before any dispatch.
func (e *Extractor) ExtractShards(ctx context.Context, root string, shards []string, limit int) (Stats, error) {
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return Stats{}, fmt.Errorf("extract: resolve %s: %w", root, err)
		}
		root = abs
	}

	pending := make([]string, 0, len(shards))
	names := make(map[string]string, len(shards))
	for _, shard := range shards {
		if e.rec.Has(shard) {
			continue
		}
		name := shardName(root, shard)
		if prev, taken := names[name]; taken {
			return Stats{}, fmt.Errorf("extract: shards %s and %s both map to output %s", prev, shard, name)
		}
		names[name] = shard
		pending = append(pending, shard)
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	e.log.Info().
		Int("pending", len(pending)).
		Int("recorded", e.rec.Len()).
		Int("workers", e.cfg.Workers).
		Msg("starting extraction")

	var (
		mu    sync.Mutex
		total Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for _, shard := range pending {
		if e.Stopped() {
			e.log.Warn().Msg("stop file present, halting dispatch")
			break
		}
		g.Go(func() error {
			if e.Stopped() {
				return nil
			}
			stats, err := e.ExtractFile(gctx, shard, shardName(root, shard))
			if err != nil {
				return err
			}
			mu.Lock()
			total.add(stats)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return total, err
	}

	e.log.Info().
		Int("shards", total.Shards).
		Int64("events", total.Events).
		Str("processed", humanize.Bytes(uint64(total.Bytes))).
		Msg("extraction finished")
	return total, nil
}

// shardName derives the shard's namespaced output location.
func shardName(root, shard string) string {
	name := shard
	if root != "" {
		if rel, err := filepath.Rel(root, shard); err == nil && !strings.HasPrefix(rel, "..") {
			name = rel
		} else {
			name = filepath.Base(shard)
		}
	} else {
		name = filepath.Base(shard)
	}
	return strings.TrimSuffix(name, ".log")
}
