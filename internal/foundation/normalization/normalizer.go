// Package normalization maps loosely written configuration strings onto
// typed enumerations.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer resolves case- and whitespace-insensitive names to values of T.
type Normalizer[T comparable] struct {
	values   map[string]T
	fallback T
	keys     []string
}

// New returns a Normalizer over values. Unknown input normalizes to fallback.
func New[T comparable](values map[string]T, fallback T) *Normalizer[T] {
	n := &Normalizer[T]{
		values:   make(map[string]T, len(values)),
		fallback: fallback,
		keys:     make([]string, 0, len(values)),
	}
	for k, v := range values {
		k = clean(k)
		n.values[k] = v
		n.keys = append(n.keys, k)
	}
	sort.Strings(n.keys)
	return n
}

// Normalize returns the value named by raw, or the fallback.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.fallback
}

// Parse is Normalize for callers that must reject unknown names. Empty input
// yields the fallback.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	c := clean(raw)
	if c == "" {
		return n.fallback, nil
	}
	if v, ok := n.values[c]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %s", raw, strings.Join(n.keys, ", "))
}

// Valid reports whether v is one of the known values.
func (n *Normalizer[T]) Valid(v T) bool {
	for _, known := range n.values {
		if known == v {
			return true
		}
	}
	return false
}

// Keys returns the accepted names in sorted order.
func (n *Normalizer[T]) Keys() []string {
	return append([]string(nil), n.keys...)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
