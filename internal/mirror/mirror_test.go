package mirror

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/skimmer/internal/sink"
)

func writeStream(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readStream(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := strings.TrimRight(string(data), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestRunBinsRowsPerKey(t *testing.T) {
	shardDir := t.TempDir()
	writeStream(t, shardDir, sink.FileObjectKeys, "blobs/a", "zarr/storeA", "blobs/a")
	writeStream(t, shardDir, sink.FileTimestamps, "t1", "t2", "t3")
	writeStream(t, shardDir, sink.FileBytesSent, "10", "20", "30")
	writeStream(t, shardDir, sink.FileIPs, "1.1.1.1", "2.2.2.2", "3.3.3.3")

	destDir := t.TempDir()
	require.NoError(t, Run(shardDir, destDir))

	blobDir := filepath.Join(destDir, "blobs", "a")
	assert.Equal(t, []string{"t1", "t3"}, readStream(t, filepath.Join(blobDir, sink.FileTimestamps)))
	assert.Equal(t, []string{"10", "30"}, readStream(t, filepath.Join(blobDir, sink.FileBytesSent)))
	assert.Equal(t, []string{"1.1.1.1", "3.3.3.3"}, readStream(t, filepath.Join(blobDir, sink.FileIPs)))

	zarrDir := filepath.Join(destDir, "zarr", "storeA")
	assert.Equal(t, []string{"t2"}, readStream(t, filepath.Join(zarrDir, sink.FileTimestamps)))

	// Object keys are the directory structure, never mirrored as a stream.
	_, err := os.Stat(filepath.Join(blobDir, sink.FileObjectKeys))
	assert.True(t, os.IsNotExist(err))
}

func TestRunAppendsAcrossShards(t *testing.T) {
	destDir := t.TempDir()

	for _, row := range [][2]string{{"t1", "1.1.1.1"}, {"t2", "2.2.2.2"}} {
		shardDir := t.TempDir()
		writeStream(t, shardDir, sink.FileObjectKeys, "blobs/a")
		writeStream(t, shardDir, sink.FileTimestamps, row[0])
		writeStream(t, shardDir, sink.FileBytesSent, "1")
		writeStream(t, shardDir, sink.FileIPs, row[1])
		require.NoError(t, Run(shardDir, destDir))
	}

	got := readStream(t, filepath.Join(destDir, "blobs", "a", sink.FileTimestamps))
	assert.Equal(t, []string{"t1", "t2"}, got)
}

func TestRunRejectsMisalignedStreams(t *testing.T) {
	shardDir := t.TempDir()
	writeStream(t, shardDir, sink.FileObjectKeys, "blobs/a", "blobs/b")
	writeStream(t, shardDir, sink.FileTimestamps, "t1", "t2")
	writeStream(t, shardDir, sink.FileBytesSent, "10")
	writeStream(t, shardDir, sink.FileIPs, "1.1.1.1", "2.2.2.2")

	err := Run(shardDir, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), sink.FileBytesSent)
}

func TestRunEmptyShard(t *testing.T) {
	shardDir := t.TempDir()
	writeStream(t, shardDir, sink.FileObjectKeys)
	writeStream(t, shardDir, sink.FileTimestamps)
	writeStream(t, shardDir, sink.FileBytesSent)
	writeStream(t, shardDir, sink.FileIPs)

	destDir := t.TempDir()
	require.NoError(t, Run(shardDir, destDir))

	entries, err := os.ReadDir(destDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
