package gate

import "strings"

// KeyPolicy is an allow-list of object-key top-level prefixes, with a
// truncation rule for one designated chunked-store prefix. Keys under the
// truncated prefix are cut to their first two slash segments, collapsing a
// store's many chunk files into one logical identifier.
type KeyPolicy struct {
	Allowed   []string // top-level prefixes, no trailing slash
	Truncated string   // member of Allowed whose keys are truncated
}

// DandiKeyPolicy matches the DANDI archive layout: plain assets under
// blobs/, chunked stores under zarr/.
func DandiKeyPolicy() *KeyPolicy {
	return &KeyPolicy{
		Allowed:   []string{"blobs", "zarr"},
		Truncated: "zarr",
	}
}

// Apply returns the (possibly truncated) key and whether the key's top-level
// prefix is allow-listed.
func (p *KeyPolicy) Apply(key string) (string, bool) {
	top, _, _ := strings.Cut(key, "/")
	allowed := false
	for _, prefix := range p.Allowed {
		if top == prefix {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", false
	}
	if top != p.Truncated {
		return key, true
	}

	segments := strings.SplitN(key, "/", 3)
	if len(segments) < 2 {
		return key, true
	}
	return segments[0] + "/" + segments[1], true
}
