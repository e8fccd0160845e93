// Package gate decides which extracted lines become output. The predicate
// chain is ordered and short-circuiting; the order is a correctness
// contract, not an optimization.
package gate

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/crimson-sun/skimmer/internal/model"
	"github.com/crimson-sun/skimmer/internal/parse"
)

// TargetOperation is the only operation counted as access evidence.
const TargetOperation = "REST.GET.OBJECT"

// bytesSentSentinel is the log's "no value" marker for the bytes field.
// It is normalized to zero rather than dropped: a successful zero-byte GET
// is still an access.
const bytesSentSentinel = "-"

// Reason identifies which predicate dropped a record.
type Reason string

const (
	ReasonPass        Reason = ""
	ReasonOperation   Reason = "operation"
	ReasonExcludedIP  Reason = "excluded_ip"
	ReasonStatusClass Reason = "status_class"
	ReasonKeyPrefix   Reason = "key_prefix"
)

// Gate applies the ordered predicate chain and normalization rules.
// A Gate is immutable after construction and safe for concurrent use.
type Gate struct {
	exclude  *regexp.Regexp
	policy   *KeyPolicy // nil disables key filtering
	encoding parse.Encoding
}

// New compiles the mandatory IP exclusion pattern and builds a Gate.
func New(excludePattern string, policy *KeyPolicy, enc parse.Encoding) (*Gate, error) {
	if excludePattern == "" {
		return nil, fmt.Errorf("gate: empty IP exclusion pattern")
	}
	re, err := regexp.Compile(excludePattern)
	if err != nil {
		return nil, fmt.Errorf("gate: compile IP exclusion pattern: %w", err)
	}
	return &Gate{exclude: re, policy: policy, encoding: enc}, nil
}

// Evaluate runs the predicate chain over raw fields. When every predicate
// passes it returns the normalized event and ReasonPass; otherwise the
// zero event and the reason for the drop. An error means a line passed all
// predicates but carries a value that cannot be normalized, a structural
// format violation, not a filtered record.
func (g *Gate) Evaluate(f parse.Fields) (model.AccessEvent, Reason, error) {
	if !g.isTargetOperation(f.Operation) {
		return model.AccessEvent{}, ReasonOperation, nil
	}
	if g.isExcludedIP(f.ClientIP) {
		return model.AccessEvent{}, ReasonExcludedIP, nil
	}
	if !g.isSuccessClass(f.Status) {
		return model.AccessEvent{}, ReasonStatusClass, nil
	}

	bytesSent, err := normalizeBytesSent(f.BytesSent)
	if err != nil {
		return model.AccessEvent{}, ReasonPass, err
	}

	key := f.ObjectKey
	if g.policy != nil {
		truncated, ok := g.policy.Apply(key)
		if !ok {
			return model.AccessEvent{}, ReasonKeyPrefix, nil
		}
		key = truncated
	}

	ts, err := parse.CanonicalizeTimestamp(f.RawTimestamp, g.encoding)
	if err != nil {
		return model.AccessEvent{}, ReasonPass, err
	}

	return model.AccessEvent{
		ObjectKey: key,
		Timestamp: ts,
		BytesSent: bytesSent,
		ClientIP:  f.ClientIP,
	}, ReasonPass, nil
}

func (g *Gate) isTargetOperation(op string) bool { return op == TargetOperation }

func (g *Gate) isExcludedIP(ip string) bool { return g.exclude.MatchString(ip) }

// isSuccessClass compares only the leading digit: the gate cares about the
// status class, not the exact code.
func (g *Gate) isSuccessClass(status string) bool {
	return len(status) > 0 && status[0] == '2'
}

func normalizeBytesSent(raw string) (uint64, error) {
	if raw == bytesSentSentinel {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("gate: bytes_sent %q is neither numeric nor the %q sentinel: %w", raw, bytesSentSentinel, err)
	}
	return n, nil
}
