// Package parse implements the throughput-critical line decomposition: a
// single split on the protocol-version marker followed by fixed-position
// token reads. It is deliberately not a grammar-level parser; structural
// correctness is established separately by the validate package.
package parse

import "strings"

// Marker is the literal boundary between the pre-request and post-request
// portions of an access log line. The dot is a literal character, and the
// closing quote is part of the marker so that the token immediately after
// the split is the HTTP status.
const Marker = `HTTP/1.1"`

// Split divides a raw line on the marker. It returns the pre-segment, the
// post-segments, and the number of marker occurrences. Zero or multiple
// occurrences are reported, never handled here: the extraction path skips
// such lines and the validation path escalates them.
func Split(line string) (pre string, posts []string, count int) {
	count = strings.Count(line, Marker)
	if count == 0 {
		return line, nil, 0
	}
	parts := strings.Split(line, Marker)
	return parts[0], parts[1:], count
}
