package sink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/skimmer/internal/model"
)

func readStream(t *testing.T, dir, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestWriterAppendAligned(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shard")
	w, err := Open(dir)
	require.NoError(t, err)

	events := []model.AccessEvent{
		{ObjectKey: "blobs/a", Timestamp: "10/Oct/2023:13:55:36", BytesSent: 4096, ClientIP: "1.2.3.4"},
		{ObjectKey: "zarr/storeA", Timestamp: "10/Oct/2023:13:55:37", BytesSent: 0, ClientIP: "5.6.7.8"},
	}
	for _, e := range events {
		require.NoError(t, w.Append(e))
	}
	assert.Equal(t, 2, w.Count())
	require.NoError(t, w.Close())

	assert.Equal(t, []string{"blobs/a", "zarr/storeA"}, readStream(t, dir, FileObjectKeys))
	assert.Equal(t, []string{"10/Oct/2023:13:55:36", "10/Oct/2023:13:55:37"}, readStream(t, dir, FileTimestamps))
	assert.Equal(t, []string{"4096", "0"}, readStream(t, dir, FileBytesSent))
	assert.Equal(t, []string{"1.2.3.4", "5.6.7.8"}, readStream(t, dir, FileIPs))
}

func TestWriterAppendAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shard")

	w, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, w.Append(model.AccessEvent{ObjectKey: "blobs/a", Timestamp: "t1", BytesSent: 1, ClientIP: "1.1.1.1"}))
	require.NoError(t, w.Close())

	w, err = Open(dir)
	require.NoError(t, err)
	require.NoError(t, w.Append(model.AccessEvent{ObjectKey: "blobs/b", Timestamp: "t2", BytesSent: 2, ClientIP: "2.2.2.2"}))
	assert.Equal(t, 1, w.Count())
	require.NoError(t, w.Close())

	assert.Equal(t, []string{"blobs/a", "blobs/b"}, readStream(t, dir, FileObjectKeys))
	assert.Equal(t, []string{"1", "2"}, readStream(t, dir, FileBytesSent))
}

func TestOpenCreatesAllStreams(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "shard")
	w, err := Open(dir, WithBufSize(16))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	for _, name := range []string{FileObjectKeys, FileTimestamps, FileBytesSent, FileIPs} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "stream %s", name)
	}
}
