// Package validate implements the independent ground-truth cross-check of
// the fast extraction heuristic. It shares input with the extraction path
// but no code and no mutable state: the status is re-derived by direct
// substring search so that a broken fixed-offset assumption cannot hide
// behind itself.
package validate

import (
	"errors"
	"strings"
)

// anchors are the known protocol-version literals, closing quote included,
// searched newer first. The quote ends the quoted request field, so the
// whitespace token after a match is the status, same as the splitter's
// marker.
var anchors = []string{`HTTP/1.1"`, `HTTP/1.0"`}

// ErrMissingAnchor means no protocol-version literal occurs anywhere in the
// line: the line does not conform to the expected grammar and the whole
// validation run must abort rather than silently skip it.
var ErrMissingAnchor = errors.New("validate: no protocol-version anchor in line")

// ResolveStatus locates the first matching anchor by direct substring search
// and returns the whitespace token immediately following it. The returned
// token is the ground-truth status candidate; validity is checked
// separately by ValidStatus.
func ResolveStatus(line string) (string, error) {
	for _, anchor := range anchors {
		idx := strings.Index(line, anchor)
		if idx < 0 {
			continue
		}
		rest := line[idx+len(anchor):]
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return "", nil
		}
		return fields[0], nil
	}
	return "", ErrMissingAnchor
}

// ValidStatus reports whether s is exactly three digits with a leading
// digit in 1–5.
func ValidStatus(s string) bool {
	if len(s) != 3 {
		return false
	}
	if s[0] < '1' || s[0] > '5' {
		return false
	}
	for i := 1; i < 3; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
