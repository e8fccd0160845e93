package validate

import (
	"strings"

	"github.com/crimson-sun/skimmer/internal/gate"
	"github.com/crimson-sun/skimmer/internal/model"
	"github.com/crimson-sun/skimmer/internal/parse"
)

// AuditMarkerCount classifies a line by its marker occurrence count.
// More than one occurrence is always fatal: the split target is ambiguous,
// typically a crafted request echoing the marker text. Zero occurrences is
// fatal only when an independent token scan (not the split) classifies
// the line as the target operation, because then the split silently failed
// on a line the extraction path believes relevant.
func AuditMarkerCount(line string, count int) model.Verdict {
	switch {
	case count > 1:
		return model.AmbiguousDelimiter
	case count == 0 && tokenScanIsTargetOperation(line):
		return model.SilentHeuristicDrop
	default:
		return model.Consistent
	}
}

// AuditConsistency compares the fast path's status derivation against the
// ground-truth candidate for the same line.
//
// Only success-class disagreements are fatal: non-2xx records are dropped by
// the record gate regardless, so a mismatch there cannot corrupt output.
func AuditConsistency(truth string, fastStatus string, fastValid bool) model.Verdict {
	if !ValidStatus(truth) {
		// Ground truth itself is unreliable here; escalate.
		return model.MissingGroundTruth
	}
	if truth[0] != '2' {
		return model.Consistent
	}
	if !fastValid {
		// The extraction path would have discarded a billable event
		// without trace.
		return model.SilentHeuristicDrop
	}
	if fastStatus != truth {
		return model.StatusMismatch
	}
	return model.Consistent
}

// tokenScanIsTargetOperation scans whitespace tokens of the whole raw line
// for the target operation literal, independently of the marker split.
func tokenScanIsTargetOperation(line string) bool {
	for _, tok := range strings.Fields(line) {
		if tok == gate.TargetOperation {
			return true
		}
	}
	return false
}

// fastStatus re-runs the extraction path's derivation: split on the marker,
// read the fixed post-segment position. The boolean reports whether the
// fast path produced any valid status at all.
func fastStatus(line string, count int) (string, bool) {
	if count != 1 {
		return "", false
	}
	pre, posts, _ := parse.Split(line)
	f, ok := parse.Extract(pre, posts[0])
	if !ok {
		return "", false
	}
	return f.Status, ValidStatus(f.Status)
}
