package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FieldValue is a tagged decoder for the upstream catalog's heterogeneous
// field shapes. A field may arrive as a plain scalar, a wrapped scalar
// ({"value": x} or [{"value": x}]), or a nested object repeating the same
// shape one level deeper. The raw bytes are kept so records re-marshal
// byte-identically through the cache.
type FieldValue struct {
	raw    json.RawMessage
	scalar string
	isNull bool
	list   []FieldValue
	object map[string]FieldValue
}

// Record is a raw catalog record as returned by the upstream API.
type Record map[string]FieldValue

func (f *FieldValue) UnmarshalJSON(data []byte) error {
	f.raw = append(f.raw[:0], data...)
	f.scalar = ""
	f.isNull = false
	f.list = nil
	f.object = nil

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		f.isNull = true
		return nil
	}

	switch trimmed[0] {
	case '[':
		return json.Unmarshal(trimmed, &f.list)
	case '{':
		return json.Unmarshal(trimmed, &f.object)
	case '"':
		return json.Unmarshal(trimmed, &f.scalar)
	case 'n':
		f.isNull = true
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		f.scalar = strconv.FormatBool(b)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		f.scalar = n.String()
		return nil
	}
}

// MarshalJSON returns the original bytes untouched.
func (f FieldValue) MarshalJSON() ([]byte, error) {
	if f.raw == nil {
		return []byte("null"), nil
	}
	return f.raw, nil
}

// FirstString walks down to the first string leaf: a scalar returns itself,
// a list delegates to its first element, an object delegates to its "value"
// member. Any dead end resolves to the empty string, never an error.
func (f FieldValue) FirstString() string {
	switch {
	case f.isNull:
		return ""
	case f.list != nil:
		if len(f.list) == 0 {
			return ""
		}
		return f.list[0].FirstString()
	case f.object != nil:
		if v, ok := f.object["value"]; ok {
			return v.FirstString()
		}
		return ""
	default:
		return f.scalar
	}
}

// Member resolves a named sub-field, looking through a wrapping list first.
func (f FieldValue) Member(name string) FieldValue {
	if f.list != nil {
		if len(f.list) == 0 {
			return FieldValue{isNull: true}
		}
		return f.list[0].Member(name)
	}
	if f.object != nil {
		if v, ok := f.object[name]; ok {
			return v
		}
	}
	return FieldValue{isNull: true}
}

// String extracts a field's first string leaf, "" when the field is absent.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	return v.FirstString()
}

// Nested extracts field -> sub-object -> first string leaf, e.g. the theme
// name of a formation ("field_theme" -> "name").
func (r Record) Nested(field, sub string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	return v.Member(sub).FirstString()
}
