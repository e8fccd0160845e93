package model

// Verdict is the outcome of cross-checking one line between the fast
// extraction path and the ground-truth status derivation.
type Verdict int

const (
	// Consistent means the two derivations agree, or disagree only on a
	// non-success record that the gate would drop anyway.
	Consistent Verdict = iota

	// AmbiguousDelimiter means the marker occurred more than once, usually a
	// request URI echoing the marker text.
	AmbiguousDelimiter

	// MissingGroundTruth means no protocol-version anchor was found, so the
	// line does not conform to the expected grammar at all.
	MissingGroundTruth

	// SilentHeuristicDrop means ground truth saw a success record that the
	// fast path failed to produce any valid status for.
	SilentHeuristicDrop

	// StatusMismatch means ground truth and the fast path produced different
	// status codes for a success-class record.
	StatusMismatch
)

// String returns the verdict name as used in diagnostics.
func (v Verdict) String() string {
	switch v {
	case Consistent:
		return "consistent"
	case AmbiguousDelimiter:
		return "ambiguous_delimiter"
	case MissingGroundTruth:
		return "missing_ground_truth"
	case SilentHeuristicDrop:
		return "silent_heuristic_drop"
	case StatusMismatch:
		return "status_mismatch"
	default:
		return "unknown"
	}
}

// Fatal reports whether this verdict must abort the validation run.
func (v Verdict) Fatal() bool {
	return v != Consistent
}
