// Package jsonutil provides small helpers for round-tripping opaque
// provider payloads through jsonb columns.
package jsonutil

import "encoding/json"

// Encode marshals a payload map for storage in a jsonb column. A nil map
// encodes as "{}" rather than "null" so downstream readers never need a
// null check.
func Encode(v map[string]any) ([]byte, error) {
	if v == nil {
		v = map[string]any{}
	}
	return json.Marshal(v)
}

// Decode unmarshals a jsonb column into a payload map. Empty input decodes
// to an empty, non-nil map.
func Decode(raw []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetString fetches a string field tolerating both snake_case and
// camelCase keys, returning "" if neither is present or the value isn't a
// string. Provider payloads are not schema-controlled (§9 design notes),
// so accessors must tolerate both namings.
func GetString(m map[string]any, snakeCase, camelCase string) string {
	if v, ok := m[snakeCase]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if camelCase != "" {
		if v, ok := m[camelCase]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// GetAny fetches a raw field by trying each key in order, returning the
// first present value regardless of type.
func GetAny(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}
