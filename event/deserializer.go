package event

import (
	"encoding/json"
	"fmt"

	"github.com/xraph/correlate"
)

// Deserializer turns a raw channel payload into a Document. Channels
// reference a Deserializer; format plugins live outside the core.
type Deserializer interface {
	Deserialize(raw []byte) (Document, error)
}

// JSONDeserializer deserializes JSON object payloads. It is the default
// deserializer for inbound channels.
type JSONDeserializer struct{}

// Deserialize parses raw as a JSON object. Any parse failure, or a
// payload whose top level is not an object, wraps ErrDeserialize.
func (JSONDeserializer) Deserialize(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", correlate.ErrDeserialize, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object", correlate.ErrDeserialize)
	}
	return doc, nil
}
