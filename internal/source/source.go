// Package source enumerates log shards for extraction and validation.
// A source materializes shards as local files; processing is always a local
// sequential scan regardless of where the logs originate.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source yields the absolute paths of the log shards to process.
type Source interface {
	Shards(ctx context.Context) ([]string, error)
}

// Local enumerates *.log files under a directory tree, sorted for a stable
// traversal order.
type Local struct {
	Dir string
}

// Shards implements Source.
func (l Local) Shards(ctx context.Context) ([]string, error) {
	var shards []string
	err := filepath.WalkDir(l.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".log") {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			shards = append(shards, abs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("source: walk %s: %w", l.Dir, err)
	}
	sort.Strings(shards)
	return shards, nil
}
