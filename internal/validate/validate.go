package validate

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/crimson-sun/skimmer/internal/model"
	"github.com/crimson-sun/skimmer/internal/parse"
	"github.com/crimson-sun/skimmer/internal/records"
	"github.com/crimson-sun/skimmer/internal/source"
)

// maxLineBytes bounds a single log line; request URIs can be long but a line
// beyond this is not a well-formed access record.
const maxLineBytes = 1 << 20

// Diagnostic is a fatal validation outcome. It carries everything an
// operator needs to locate and inspect the offending input.
type Diagnostic struct {
	Verdict model.Verdict
	Line    model.RawLine
	Err     error // underlying cause, when one exists
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("validate: %s at %s:%d: %q", d.Verdict, d.Line.Source, d.Line.Number, d.Line.Text)
}

func (d *Diagnostic) Unwrap() error { return d.Err }

// Validator runs the per-line audits over whole shards, fail-fast. Files
// that pass in full are recorded so re-validation skips them.
type Validator struct {
	record *records.Set
	log    zerolog.Logger
}

// New creates a Validator whose success record lives at recordPath.
func New(recordPath string, log zerolog.Logger) (*Validator, error) {
	rec, err := records.Open(recordPath)
	if err != nil {
		return nil, err
	}
	return &Validator{record: rec, log: log.With().Str("component", "validate").Logger()}, nil
}

// Close releases the success record.
func (v *Validator) Close() error { return v.record.Close() }

// ValidateFile audits every line of one shard. The first fatal verdict is
// returned as a *Diagnostic; a nil return means the shard is consistent and
// has been recorded as such.
func (v *Validator) ValidateFile(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("validate: resolve %s: %w", path, err)
	}
	if v.record.Has(abs) {
		v.log.Debug().Str("file", abs).Msg("already validated, skipping")
		return nil
	}

	f, err := os.Open(abs)
	if err != nil {
		return fmt.Errorf("validate: open %s: %w", abs, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNumber := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNumber++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		if verdict := v.auditLine(text); verdict.Fatal() {
			diag := &Diagnostic{
				Verdict: verdict,
				Line:    model.RawLine{Number: lineNumber, Source: abs, Text: text},
			}
			v.log.Error().
				Str("verdict", verdict.String()).
				Str("file", abs).
				Int("line", lineNumber).
				Str("text", text).
				Msg("fatal validation verdict")
			return diag
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("validate: scan %s: %w", abs, err)
	}

	if err := v.record.Add(abs); err != nil {
		return err
	}
	v.log.Info().Str("file", abs).Int("lines", lineNumber).Msg("shard consistent")
	return nil
}

// auditLine applies the delimiter-count audit, the ground-truth resolution,
// and the consistency audit, in that order.
func (v *Validator) auditLine(text string) model.Verdict {
	count := strings.Count(text, parse.Marker)

	if verdict := AuditMarkerCount(text, count); verdict.Fatal() {
		return verdict
	}

	truth, err := ResolveStatus(text)
	if err != nil {
		return model.MissingGroundTruth
	}

	status, valid := fastStatus(text, count)
	return AuditConsistency(truth, status, valid)
}

// ValidateDirectory audits every unvalidated *.log shard under dir,
// aborting on the first fatal verdict. limit <= 0 means no limit.
func (v *Validator) ValidateDirectory(ctx context.Context, dir string, limit int) error {
	shards, err := source.Local{Dir: dir}.Shards(ctx)
	if err != nil {
		return err
	}

	validated := 0
	for _, shard := range shards {
		if limit > 0 && validated >= limit {
			break
		}
		if v.record.Has(shard) {
			continue
		}
		if err := v.ValidateFile(ctx, shard); err != nil {
			return err
		}
		validated++
	}
	return nil
}
