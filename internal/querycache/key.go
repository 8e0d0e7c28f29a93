package querycache

import (
	"slices"
	"strings"
)

// Key is a structured cache key: an ordered sequence of components, e.g.
// {"wishlists", "list"} or {"recommendations", "detail", "cafe-sao-paulo"}.
// A key family shares a common prefix; longer keys within a family represent
// filtered or paginated variants.
type Key []string

// String renders the key for use as a map index and in logs.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether the key starts with the given prefix. Every key
// is a prefix of itself.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports component-wise equality.
func (k Key) Equal(other Key) bool {
	return slices.Equal(k, other)
}

// Clone returns an independent copy of the key.
func (k Key) Clone() Key {
	return slices.Clone(k)
}

// NewKey builds a key from components.
func NewKey(components ...string) Key {
	return Key(components)
}
