package parse

import "strings"

// Fixed 1-based token positions within the whitespace-tokenized segments.
// These are deployment constants derived from the marker definition; they are
// never inferred per line. Pre-segment layout:
//
//	owner bucket [timestamp tz] ip requester request_id operation key "METHOD /uri
//
// Post-segment layout (first segment after the marker):
//
//	status error_code bytes_sent object_size ...
const (
	posTimestamp = 3
	posClientIP  = 5
	posOperation = 8
	posObjectKey = 9

	posStatus    = 1
	posBytesSent = 3
)

// Fields are the raw field values read by the fast extractor. No
// normalization has been applied yet; BytesSent may still be the "-"
// sentinel and RawTimestamp is still bracketed.
type Fields struct {
	Operation    string
	ClientIP     string
	ObjectKey    string
	RawTimestamp string // bracketed, timezone token excluded: "[10/Oct/2023:13:55:36"
	Status       string
	BytesSent    string
}

// Extract tokenizes the pre-segment and first post-segment on whitespace runs
// and reads the fixed positions. It reports false when either segment has too
// few tokens for the positions to exist; such lines cannot be access records
// under the assumed layout.
func Extract(pre, post string) (Fields, bool) {
	preTokens := strings.Fields(pre)
	if len(preTokens) < posObjectKey {
		return Fields{}, false
	}
	postTokens := strings.Fields(post)
	if len(postTokens) < posBytesSent {
		return Fields{}, false
	}

	return Fields{
		Operation:    preTokens[posOperation-1],
		ClientIP:     preTokens[posClientIP-1],
		ObjectKey:    preTokens[posObjectKey-1],
		RawTimestamp: preTokens[posTimestamp-1],
		Status:       postTokens[posStatus-1],
		BytesSent:    postTokens[posBytesSent-1],
	}, true
}
