// Package mirror bins a shard's aligned streams into per-object-key
// directories, mirroring the bucket's object structure. Many shards can be
// mirrored into the same destination over time; per-key files are
// append-only, so the step composes with incremental extraction.
package mirror

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crimson-sun/skimmer/internal/sink"
)

// perKeyStreams are the files appended under each object key's directory.
// Object keys themselves become the directory paths, so no key stream is
// mirrored.
var perKeyStreams = [3]string{sink.FileTimestamps, sink.FileBytesSent, sink.FileIPs}

// Run bins the four aligned streams found in shardDir into destDir. The
// positional alignment invariant is verified before anything is written:
// a length mismatch between streams means the shard output is corrupt.
func Run(shardDir, destDir string) error {
	keys, err := readLines(filepath.Join(shardDir, sink.FileObjectKeys))
	if err != nil {
		return err
	}

	values := [3][]string{}
	for i, name := range perKeyStreams {
		lines, err := readLines(filepath.Join(shardDir, name))
		if err != nil {
			return err
		}
		if len(lines) != len(keys) {
			return fmt.Errorf("mirror: %s has %d lines but %s has %d in %s",
				name, len(lines), sink.FileObjectKeys, len(keys), shardDir)
		}
		values[i] = lines
	}

	// Group row indices per key so each per-key file is opened once.
	rowsPerKey := make(map[string][]int)
	for i, key := range keys {
		rowsPerKey[key] = append(rowsPerKey[key], i)
	}

	for key, rows := range rowsPerKey {
		keyDir := filepath.Join(destDir, filepath.FromSlash(key))
		if err := os.MkdirAll(keyDir, 0o755); err != nil {
			return fmt.Errorf("mirror: create %s: %w", keyDir, err)
		}
		for i, name := range perKeyStreams {
			if err := appendLines(filepath.Join(keyDir, name), values[i], rows); err != nil {
				return err
			}
		}
	}
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mirror: open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mirror: read %s: %w", path, err)
	}
	return lines, nil
}

func appendLines(path string, values []string, rows []int) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("mirror: open %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, row := range rows {
		if _, err := w.WriteString(values[row]); err != nil {
			f.Close()
			return fmt.Errorf("mirror: append %s: %w", path, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			f.Close()
			return fmt.Errorf("mirror: append %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("mirror: flush %s: %w", path, err)
	}
	return f.Close()
}
