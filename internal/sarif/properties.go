package sarif

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValueKind tags the JSON type of a property value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k ValueKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
	return kindNames[k]
}

// PropertyValue is a property bag entry kept in its serialized form.
// Serialized is compact JSON text; Kind records which JSON type it holds.
type PropertyValue struct {
	Serialized string
	Kind       ValueKind
}

// PropertyBag maps property names to values. Iteration order carries no
// meaning.
type PropertyBag map[string]PropertyValue

// NewPropertyValue serializes v and tags it with its JSON kind.
func NewPropertyValue(v any) (PropertyValue, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return PropertyValue{}, fmt.Errorf("failed to serialize property value: %w", err)
	}
	var pv PropertyValue
	if err := pv.UnmarshalJSON(data); err != nil {
		return PropertyValue{}, err
	}
	return pv, nil
}

// StringValue returns a string-kind property value for s.
func StringValue(s string) PropertyValue {
	data, _ := json.Marshal(s)
	return PropertyValue{Serialized: string(data), Kind: KindString}
}

// Normalized maps the zero PropertyValue to an explicit JSON null, so a
// value built as PropertyValue{} behaves like a decoded null.
func (p PropertyValue) Normalized() PropertyValue {
	if p.Serialized == "" {
		return PropertyValue{Serialized: "null", Kind: KindNull}
	}
	return p
}

// MarshalJSON writes the serialized form back verbatim.
func (p PropertyValue) MarshalJSON() ([]byte, error) {
	return []byte(p.Normalized().Serialized), nil
}

// UnmarshalJSON stores the compacted JSON text and detects its kind.
func (p *PropertyValue) UnmarshalJSON(data []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return fmt.Errorf("invalid property value: %w", err)
	}
	raw := buf.Bytes()
	if len(raw) == 0 {
		return fmt.Errorf("invalid property value: empty")
	}
	p.Serialized = buf.String()
	p.Kind = kindOf(raw[0])
	return nil
}

// Decode unmarshals the serialized form into v.
func (p PropertyValue) Decode(v any) error {
	return json.Unmarshal([]byte(p.Normalized().Serialized), v)
}

func kindOf(first byte) ValueKind {
	switch first {
	case 'n':
		return KindNull
	case 't', 'f':
		return KindBool
	case '"':
		return KindString
	case '[':
		return KindArray
	case '{':
		return KindObject
	default:
		return KindNumber
	}
}

// Set stores v under key, serializing it first.
func (b PropertyBag) Set(key string, v any) error {
	pv, err := NewPropertyValue(v)
	if err != nil {
		return err
	}
	b[key] = pv
	return nil
}

// GetString returns the string stored under key, if it holds one.
func (b PropertyBag) GetString(key string) (string, bool) {
	pv, ok := b[key]
	if !ok || pv.Kind != KindString {
		return "", false
	}
	var s string
	if err := pv.Decode(&s); err != nil {
		return "", false
	}
	return s, true
}
