package parse

import (
	"errors"
	"fmt"
)

// Encoding selects the canonical timestamp form. Exactly one encoding is
// used for an entire run; downstream consumers key on the chosen format.
type Encoding int

const (
	// Canonical strips the bracket: "10/Oct/2023:13:55:36" (20 chars).
	Canonical Encoding = iota
	// Compact re-encodes to the lexicographically sortable "231010135536"
	// (YYMMDDHHMMSS, 12 digits).
	Compact
)

// ErrBadTimestamp reports a raw timestamp token that does not have the
// expected bracketed fixed-width layout.
var ErrBadTimestamp = errors.New("parse: malformed timestamp token")

// rawTimestampLen is the bracketed token length: "[DD/Mon/YYYY:HH:MM:SS".
const rawTimestampLen = 21

var monthNumbers = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04",
	"May": "05", "Jun": "06", "Jul": "07", "Aug": "08",
	"Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// CanonicalizeTimestamp converts the bracketed raw token into the chosen
// canonical form. It is a pure function of its input: identical inputs yield
// identical outputs, and distinct valid inputs never collide. Both encodings
// validate the full token; the set of accepted inputs does not depend on the
// encoding, so a deployment can switch encodings without previously accepted
// lines turning into errors.
func CanonicalizeTimestamp(raw string, enc Encoding) (string, error) {
	if len(raw) != rawTimestampLen || raw[0] != '[' {
		return "", fmt.Errorf("%w: %q", ErrBadTimestamp, raw)
	}
	if raw[3] != '/' || raw[7] != '/' || raw[12] != ':' || raw[15] != ':' || raw[18] != ':' {
		return "", fmt.Errorf("%w: %q", ErrBadTimestamp, raw)
	}
	month, ok := monthNumbers[raw[4:7]]
	if !ok {
		return "", fmt.Errorf("%w: unknown month in %q", ErrBadTimestamp, raw)
	}
	if !allDigits(raw[1:3]) || !allDigits(raw[8:12]) ||
		!allDigits(raw[13:15]) || !allDigits(raw[16:18]) || !allDigits(raw[19:21]) {
		return "", fmt.Errorf("%w: %q", ErrBadTimestamp, raw)
	}

	if enc == Canonical {
		return raw[1:], nil
	}
	return raw[10:12] + month + raw[1:3] + raw[13:15] + raw[16:18] + raw[19:21], nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
