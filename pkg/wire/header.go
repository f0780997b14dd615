package wire

import "strings"

// Header is a case-insensitive set of HTTP headers. Lookups succeed
// regardless of the casing used at insertion or query time; the casing
// first seen for a key is preserved for writing. Insertion order is kept
// so that responses frame headers deterministically.
type Header struct {
	names []string          // first-seen casing, insertion order
	vals  map[string]string // lower(name) -> value
}

// NewHeader returns an empty Header.
func NewHeader() *Header {
	return &Header{vals: make(map[string]string)}
}

// Set stores value under key, replacing any previous value.
func (h *Header) Set(key, value string) {
	lower := strings.ToLower(key)
	if _, ok := h.vals[lower]; !ok {
		h.names = append(h.names, key)
	}
	h.vals[lower] = value
}

// Get returns the value for key, or "" if absent.
func (h *Header) Get(key string) string {
	if h == nil {
		return ""
	}
	return h.vals[strings.ToLower(key)]
}

// Lookup returns the value for key and whether it is present.
func (h *Header) Lookup(key string) (string, bool) {
	if h == nil {
		return "", false
	}
	v, ok := h.vals[strings.ToLower(key)]
	return v, ok
}

// Has reports whether key is present.
func (h *Header) Has(key string) bool {
	_, ok := h.Lookup(key)
	return ok
}

// Del removes key from the header set.
func (h *Header) Del(key string) {
	lower := strings.ToLower(key)
	if _, ok := h.vals[lower]; !ok {
		return
	}
	delete(h.vals, lower)
	for i, name := range h.names {
		if strings.ToLower(name) == lower {
			h.names = append(h.names[:i], h.names[i+1:]...)
			break
		}
	}
}

// Len returns the number of headers.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.vals)
}

// Each calls fn for every header in insertion order.
func (h *Header) Each(fn func(key, value string)) {
	if h == nil {
		return
	}
	for _, name := range h.names {
		fn(name, h.vals[strings.ToLower(name)])
	}
}
