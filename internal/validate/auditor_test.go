package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crimson-sun/skimmer/internal/model"
)

func TestAuditMarkerCount(t *testing.T) {
	getLine := `owner bucket [10/Oct/2023:13:55:36 +0000] 1.2.3.4 - id REST.GET.OBJECT key no-marker-here`
	putLine := `owner bucket [10/Oct/2023:13:55:36 +0000] 1.2.3.4 - id REST.PUT.OBJECT key no-marker-here`

	cases := []struct {
		name  string
		line  string
		count int
		want  model.Verdict
	}{
		{"single occurrence is normal", getLine, 1, model.Consistent},
		{"two occurrences always fatal", getLine, 2, model.AmbiguousDelimiter},
		{"three occurrences always fatal", putLine, 3, model.AmbiguousDelimiter},
		{"zero occurrences on a GET line is a silent split failure", getLine, 0, model.SilentHeuristicDrop},
		{"zero occurrences on a non-GET line is fine", putLine, 0, model.Consistent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AuditMarkerCount(tc.line, tc.count))
		})
	}
}

func TestAuditConsistency(t *testing.T) {
	cases := []struct {
		name      string
		truth     string
		fast      string
		fastValid bool
		want      model.Verdict
	}{
		{"agreement on success", "200", "200", true, model.Consistent},
		{"agreement on failure", "404", "404", true, model.Consistent},
		{"unreliable ground truth", "xyz", "200", true, model.MissingGroundTruth},
		{"success silently dropped by fast path", "200", "", false, model.SilentHeuristicDrop},
		{"success status mismatch", "200", "206", true, model.StatusMismatch},
		{"failure mismatch is harmless", "404", "500", true, model.Consistent},
		{"failure dropped by fast path is harmless", "500", "", false, model.Consistent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AuditConsistency(tc.truth, tc.fast, tc.fastValid))
		})
	}
}

func TestFastStatus(t *testing.T) {
	line := `owner bucket [10/Oct/2023:13:55:36 +0000] 1.2.3.4 - id REST.GET.OBJECT key "GET /key HTTP/1.1" 200 - 4096`
	status, valid := fastStatus(line, 1)
	assert.True(t, valid)
	assert.Equal(t, "200", status)

	_, valid = fastStatus(line, 0)
	assert.False(t, valid)

	_, valid = fastStatus(line, 2)
	assert.False(t, valid)
}
