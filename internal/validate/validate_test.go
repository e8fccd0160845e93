package validate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/skimmer/internal/model"
)

const goodLine = `owner bucket [10/Oct/2023:13:55:36 +0000] 1.2.3.4 - id REST.GET.OBJECT my/key "GET /my/key HTTP/1.1" 200 - 4096 4096 12 11`
const failedLine = `owner bucket [10/Oct/2023:13:55:37 +0000] 5.6.7.8 - id REST.GET.OBJECT my/key "GET /my/key HTTP/1.1" 404 NoSuchKey - - 3 2`
const ambiguousLine = `owner bucket [10/Oct/2023:13:55:38 +0000] 1.2.3.4 - id REST.GET.OBJECT key "GET /echo/HTTP/1.1" HTTP/1.1" 200 - 512 512 1 1`

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New(filepath.Join(t.TempDir(), "validation.txt"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { v.Close() })
	return v
}

func writeShard(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shard.log")
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateFileConsistent(t *testing.T) {
	v := newValidator(t)
	path := writeShard(t, goodLine, failedLine, "", goodLine)

	require.NoError(t, v.ValidateFile(context.Background(), path))
}

func TestValidateFileAmbiguousDelimiter(t *testing.T) {
	v := newValidator(t)
	path := writeShard(t, goodLine, ambiguousLine)

	err := v.ValidateFile(context.Background(), path)
	require.Error(t, err)

	var diag *Diagnostic
	require.True(t, errors.As(err, &diag))
	assert.Equal(t, model.AmbiguousDelimiter, diag.Verdict)
	assert.Equal(t, 2, diag.Line.Number)
	assert.Equal(t, ambiguousLine, diag.Line.Text)
	assert.Contains(t, diag.Line.Source, "shard.log")
}

func TestValidateFileMissingAnchor(t *testing.T) {
	v := newValidator(t)
	path := writeShard(t, "owner bucket [10/Oct/2023:13:55:36 +0000] 1.2.3.4 - id WEBSITE.GET.OBJECT key garbage 200")

	err := v.ValidateFile(context.Background(), path)
	var diag *Diagnostic
	require.True(t, errors.As(err, &diag))
	assert.Equal(t, model.MissingGroundTruth, diag.Verdict)
}

func TestValidateFileSilentDrop(t *testing.T) {
	// Ground truth sees a 2xx via the HTTP/1.0 anchor, but the splitter's
	// marker never occurs, so the fast path extracts nothing.
	line := `owner bucket [10/Oct/2023:13:55:36 +0000] 1.2.3.4 - id REST.GET.OBJECT key "GET /key HTTP/1.0" 200 - 4096`
	v := newValidator(t)
	path := writeShard(t, line)

	err := v.ValidateFile(context.Background(), path)
	var diag *Diagnostic
	require.True(t, errors.As(err, &diag))
	assert.Equal(t, model.SilentHeuristicDrop, diag.Verdict)
	assert.Equal(t, 1, diag.Line.Number)
}

func TestValidateFileRecordsSuccessAndSkips(t *testing.T) {
	v := newValidator(t)
	path := writeShard(t, goodLine)

	require.NoError(t, v.ValidateFile(context.Background(), path))

	// Corrupt the file; a recorded shard must not be re-read.
	require.NoError(t, os.WriteFile(path, []byte(ambiguousLine+"\n"), 0o644))
	require.NoError(t, v.ValidateFile(context.Background(), path))
}

func TestValidateDirectoryFailFast(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.log"), []byte(goodLine+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.log"), []byte(ambiguousLine+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.log"), []byte(goodLine+"\n"), 0o644))

	v := newValidator(t)
	err := v.ValidateDirectory(context.Background(), dir, 0)

	var diag *Diagnostic
	require.True(t, errors.As(err, &diag))
	assert.Contains(t, diag.Line.Source, "b.log")
}
