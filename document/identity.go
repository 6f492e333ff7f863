// Package document holds the value types the engine passes between actors:
// document identities, word frequency maps and fetched content.
package document

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidIdentity = errors.New("invalid document identity")

// Identity is a validated, normalized absolute URI. It is comparable and
// safe to use as a map key; two identities are equal when their normalized
// forms are equal.
type Identity struct {
	uri string
}

// ParseIdentity validates raw as an absolute URI and normalizes it: scheme
// and host are lower-cased and the fragment is dropped.
func ParseIdentity(raw string) (Identity, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Identity{}, fmt.Errorf("%w: empty", ErrInvalidIdentity)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if !u.IsAbs() {
		return Identity{}, fmt.Errorf("%w: %q is not absolute", ErrInvalidIdentity, raw)
	}
	if u.Opaque == "" && u.Host == "" {
		return Identity{}, fmt.Errorf("%w: %q has no host", ErrInvalidIdentity, raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	return Identity{uri: u.String()}, nil
}

// MustParseIdentity is ParseIdentity for literals; it panics on error.
func MustParseIdentity(raw string) Identity {
	id, err := ParseIdentity(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseIdentities parses every entry, failing on the first invalid one.
func ParseIdentities(raws ...string) ([]Identity, error) {
	ids := make([]Identity, 0, len(raws))
	for _, raw := range raws {
		id, err := ParseIdentity(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (id Identity) String() string {
	return id.uri
}

func (id Identity) IsZero() bool {
	return id.uri == ""
}

// URL returns a fresh parsed copy of the identity.
func (id Identity) URL() *url.URL {
	u, _ := url.Parse(id.uri)
	return u
}

// Name is an escaped form of the identity usable as an actor name. The
// escaping is reversible, so distinct identities never share a name.
func (id Identity) Name() string {
	return url.QueryEscape(id.uri)
}

func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.uri), nil
}

func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Unique returns ids without duplicates, keeping first occurrences in order.
func Unique(ids []Identity) []Identity {
	seen := make(map[Identity]bool, len(ids))
	out := make([]Identity, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
