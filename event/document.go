// Package event models one inbound event as it moves through the
// dispatch pipeline: the deserialized Document, the declared-field
// Extractor, and the transient Resolved event handed to dispatch.
package event

import (
	"strings"
)

// Document is the deserialized form of a raw inbound payload: a
// key-value tree with path-addressable fields. Field access signals
// absence explicitly instead of returning implicit nulls.
type Document map[string]any

// Lookup resolves a field path against the document. Paths may be
// slash-rooted ("/order/customerId") or plain field names
// ("customerId"). The boolean result reports whether the field exists;
// a field holding an explicit null is treated as absent.
func (d Document) Lookup(path string) (any, bool) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, false
	}

	var cur any = map[string]any(d)
	for _, part := range strings.Split(trimmed, "/") {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[part]
		if !ok {
			return nil, false
		}
	}

	if cur == nil {
		return nil, false
	}
	return cur, true
}

// LookupString resolves a path and returns its value as a string.
// Returns false if the field is absent, null, empty, or not a string.
func (d Document) LookupString(path string) (string, bool) {
	v, ok := d.Lookup(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
