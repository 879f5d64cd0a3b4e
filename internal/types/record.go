package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// Record is a JSON object read from an input file. Fields the pipeline does
// not understand are carried through to the snapshot untouched; computed
// fields are added with With.
type Record map[string]json.RawMessage

// String returns the value of key when it is a JSON string.
func (r Record) String(key string) (string, bool) {
	raw, ok := r[key]
	if !ok || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Float returns the value of key when it is a JSON number.
func (r Record) Float(key string) (float64, bool) {
	raw, ok := r[key]
	if !ok || isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

// Bool reports whether key holds the JSON literal true.
func (r Record) Bool(key string) bool {
	raw, ok := r[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// With returns a copy of r with key set to the JSON encoding of v.
// The receiver is not modified.
func (r Record) With(key string, v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	out := make(Record, len(r)+1)
	maps.Copy(out, r)
	out[key] = raw
	return out, nil
}

// MarshalJSON ensures a nil Record marshals as {} not null.
func (r Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]json.RawMessage(r))
}

// NewRecord builds a Record from Go values. Intended for synthetic records
// and tests.
func NewRecord(fields map[string]any) (Record, error) {
	r := make(Record, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		r[k] = raw
	}
	return r, nil
}
