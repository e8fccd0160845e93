package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStatus(t *testing.T) {
	line := `owner bucket [10/Oct/2023:13:55:36 +0000] 1.2.3.4 - id REST.GET.OBJECT key "GET /key HTTP/1.1" 200 - 4096`
	status, err := ResolveStatus(line)
	require.NoError(t, err)
	assert.Equal(t, "200", status)
}

func TestResolveStatusOlderProtocol(t *testing.T) {
	line := `owner bucket [10/Oct/2023:13:55:36 +0000] 1.2.3.4 - id REST.GET.OBJECT key "GET /key HTTP/1.0" 304 - -`
	status, err := ResolveStatus(line)
	require.NoError(t, err)
	assert.Equal(t, "304", status)
}

func TestResolveStatusPrefersNewerAnchor(t *testing.T) {
	// Both anchors present: the newer version wins even though the older
	// one appears first in the line.
	line := `owner bucket [10/Oct/2023:13:55:36 +0000] 1.2.3.4 - id REST.GET.OBJECT key "GET /old/HTTP/1.0" HTTP/1.1" 200 - 64`
	status, err := ResolveStatus(line)
	require.NoError(t, err)
	assert.Equal(t, "200", status)
}

func TestResolveStatusMissingAnchor(t *testing.T) {
	_, err := ResolveStatus("owner bucket [10/Oct/2023:13:55:36 +0000] 1.2.3.4 - id REST.HEAD.BUCKET - 200")
	assert.ErrorIs(t, err, ErrMissingAnchor)
}

func TestResolveStatusNothingAfterAnchor(t *testing.T) {
	status, err := ResolveStatus(`owner "GET /key HTTP/1.1"`)
	require.NoError(t, err)
	assert.Equal(t, "", status)
}

func TestValidStatus(t *testing.T) {
	valid := []string{"100", "200", "206", "301", "404", "503", "599"}
	for _, s := range valid {
		assert.True(t, ValidStatus(s), "status %q", s)
	}

	invalid := []string{"", "2", "20", "2000", "000", "600", "999", "20x", "-", "OK2"}
	for _, s := range invalid {
		assert.False(t, ValidStatus(s), "status %q", s)
	}
}
