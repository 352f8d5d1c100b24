package event

import (
	"fmt"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/definition"
)

// Extract reads the definition's declared correlation parameters and
// payload fields out of the document, coercing each to its declared
// semantic type. A correlation parameter absent from the document is
// fatal (ErrMissingField); payload fields that are absent, or whose
// value cannot be coerced, are omitted. Extraction is pure: the
// document is never modified and field read order does not matter.
func Extract(def *definition.Definition, doc Document) (*Resolved, error) {
	correlation := make(map[string]any, len(def.CorrelationParameters))
	for _, p := range def.CorrelationParameters {
		raw, ok := doc.Lookup(p.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q (event key %q)", correlate.ErrMissingField, p.Name, def.Key)
		}
		v, err := Coerce(raw, p.Type)
		if err != nil {
			return nil, fmt.Errorf("correlation parameter %q: %w", p.Name, err)
		}
		correlation[p.Name] = v
	}

	payload := make(map[string]any, len(def.PayloadFields))
	for _, p := range def.PayloadFields {
		raw, ok := doc.Lookup(p.Name)
		if !ok {
			continue
		}
		v, err := Coerce(raw, p.Type)
		if err != nil {
			continue
		}
		payload[p.Name] = v
	}

	return &Resolved{
		EventKey:    def.Key,
		Correlation: correlation,
		Payload:     payload,
	}, nil
}

// Coerce converts a raw document value to the declared field type.
// Canonical forms are string, float64, and bool. A value of the wrong
// shape wraps ErrFieldType.
func Coerce(raw any, t definition.FieldType) (any, error) {
	switch t {
	case definition.TypeString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case definition.TypeNumber:
		switch n := raw.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case definition.TypeBoolean:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown field type %q", correlate.ErrFieldType, t)
	}
	return nil, fmt.Errorf("%w: %T is not %s", correlate.ErrFieldType, raw, t)
}
