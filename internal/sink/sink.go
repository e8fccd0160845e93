// Package sink writes the four aligned output streams of a shard. Line i of
// each stream belongs to the i-th retained event; the writer enforces that
// lock-step by appending to all four files in one call.
package sink

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/crimson-sun/skimmer/internal/model"
)

// Stream file names, fixed per deployment.
const (
	FileObjectKeys = "object_keys.txt"
	FileTimestamps = "timestamps.txt"
	FileBytesSent  = "bytes_sent.txt"
	FileIPs        = "ips.txt"
)

const defaultBufSize = 64 * 1024 // 64KB

// Option configures a Writer.
type Option func(*Writer)

// WithBufSize sets the per-stream bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(w *Writer) { w.bufSize = bytes }
}

type stream struct {
	f *os.File
	w *bufio.Writer
}

// Writer appends events to a shard's four streams. Streams are opened once,
// appended to for the shard's duration, and closed; no in-place mutation
// ever occurs.
type Writer struct {
	dir     string
	bufSize int

	mu      sync.Mutex
	streams [4]stream
	count   int
}

// Open creates the shard's output directory and its four append-only streams.
func Open(dir string, opts ...Option) (*Writer, error) {
	w := &Writer{dir: dir, bufSize: defaultBufSize}
	for _, opt := range opts {
		opt(w)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sink: create %s: %w", dir, err)
	}

	names := [4]string{FileObjectKeys, FileTimestamps, FileBytesSent, FileIPs}
	for i, name := range names {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			w.closeOpened(i)
			return nil, fmt.Errorf("sink: open %s: %w", name, err)
		}
		w.streams[i] = stream{f: f, w: bufio.NewWriterSize(f, w.bufSize)}
	}
	return w, nil
}

// Append writes the event's four fields to their respective streams. The
// write is line-atomic with respect to Close: a partially processed shard
// remains positionally valid up to its last fully appended event.
func (w *Writer) Append(e model.AccessEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	values := [4]string{e.ObjectKey, e.Timestamp, strconv.FormatUint(e.BytesSent, 10), e.ClientIP}
	for i, v := range values {
		if _, err := w.streams[i].w.WriteString(v); err != nil {
			return fmt.Errorf("sink: append: %w", err)
		}
		if err := w.streams[i].w.WriteByte('\n'); err != nil {
			return fmt.Errorf("sink: append: %w", err)
		}
	}
	w.count++
	return nil
}

// Count returns the number of events appended by this writer.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close flushes and closes all four streams.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	for i := range w.streams {
		if err := w.streams[i].w.Flush(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("sink: flush: %w", err)
		}
		if err := w.streams[i].f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("sink: close: %w", err)
		}
	}
	return firstErr
}

func (w *Writer) closeOpened(n int) {
	for i := 0; i < n; i++ {
		w.streams[i].f.Close()
	}
}
