// Package types defines all core data types for the satvm contract
// execution engine.
//
// These are plain Go structs with cramberry struct tags for
// deterministic binary serialization. Transport concerns
// (gRPC codec registration) are handled in the transport packages.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSON is a raw JSON-encoded value. Contract state, call payloads and
// returned values cross the engine boundary in this form: the engine
// never interprets them beyond decoding into the sandbox and encoding
// back out.
//
// A nil or empty JSON means "absent".
type JSON []byte

// MarshalValue encodes an arbitrary Go value as a JSON document.
func MarshalValue(v interface{}) (JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	return JSON(b), nil
}

// Unmarshal decodes the document into dest. Decoding an absent value
// leaves dest untouched.
func (j JSON) Unmarshal(dest interface{}) error {
	if len(j) == 0 {
		return nil
	}
	return json.Unmarshal(j, dest)
}

// Present reports whether the value carries a document (including an
// explicit JSON null).
func (j JSON) Present() bool { return len(j) > 0 }

// Equal compares two documents for semantic equality, ignoring
// whitespace and map ordering.
func (j JSON) Equal(other JSON) bool {
	if len(j) == 0 || len(other) == 0 {
		return len(j) == 0 && len(other) == 0
	}
	var a, b interface{}
	if err := json.Unmarshal(j, &a); err != nil {
		return bytes.Equal(j, other)
	}
	if err := json.Unmarshal(other, &b); err != nil {
		return false
	}
	ca, _ := json.Marshal(a)
	cb, _ := json.Marshal(b)
	return bytes.Equal(ca, cb)
}

func (j JSON) String() string {
	if len(j) == 0 {
		return "null"
	}
	return string(j)
}

// MarshalJSON inlines the raw document.
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON stores the raw document.
func (j *JSON) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[:0], data...)
	return nil
}
