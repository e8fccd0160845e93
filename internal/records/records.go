// Package records tracks which shards a run has already processed so that
// re-invocations skip completed work. A record set is an append-only text
// file, one absolute path per line, mirrored in memory.
package records

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Set is a persistent, append-only set of shard identifiers.
type Set struct {
	path string

	mu   sync.Mutex
	seen map[string]bool
	f    *os.File
}

// Open loads the record file at path, creating it if absent.
func Open(path string) (*Set, error) {
	seen := make(map[string]bool)

	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("records: open %s: %w", path, err)
	default:
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				seen[line] = true
			}
		}
		closeErr := f.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("records: read %s: %w", path, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("records: close %s: %w", path, closeErr)
		}
	}

	appendFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("records: open %s for append: %w", path, err)
	}
	return &Set{path: path, seen: seen, f: appendFile}, nil
}

// Has reports whether key has been recorded.
func (s *Set) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[key]
}

// Add records key durably and in memory. Adding an existing key is a no-op.
func (s *Set) Add(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[key] {
		return nil
	}
	if _, err := fmt.Fprintln(s.f, key); err != nil {
		return fmt.Errorf("records: append to %s: %w", s.path, err)
	}
	s.seen[key] = true
	return nil
}

// Len returns the number of recorded keys.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Close releases the underlying file.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
