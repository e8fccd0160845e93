package model

// AccessEvent is skimmer's output type: one retained access record, already
// filtered and normalized. Its four fields map one-to-one onto the four
// aligned output streams.
type AccessEvent struct {
	ObjectKey string // possibly truncated by the key policy
	Timestamp string // canonical encoding chosen at startup, fixed width
	BytesSent uint64 // "-" sentinel normalized to 0
	ClientIP  string
}
