package filter

import "strings"

// Type tags the value domain of a filterable field. It decides how raw
// query values are coerced and which operators apply.
type Type int

const (
	TypeUnsupported Type = iota
	TypeString
	TypeInteger
	TypeFloat
	TypeBool
	TypeEnum
	TypeTimestamp
)

// Enum describes an enumerated field type. Variants are listed in
// declaration order; a variant's ordinal is its index in that list.
type Enum struct {
	Name     string
	Variants []string
}

// Ordinal returns the declared position of variant, matching the exact
// (uppercased) variant name.
func (e *Enum) Ordinal(variant string) (int, bool) {
	for i, v := range e.Variants {
		if v == variant {
			return i, true
		}
	}
	return 0, false
}

// Parse matches raw case-insensitively against the variant set and
// returns the canonical variant name.
func (e *Enum) Parse(raw string) (string, bool) {
	upper := strings.ToUpper(raw)
	for _, v := range e.Variants {
		if v == upper {
			return v, true
		}
	}
	return "", false
}

// Field describes one filterable field: the SQL column it lives in and
// its declared type. Enum is set only for TypeEnum fields.
type Field struct {
	Column string
	Type   Type
	Enum   *Enum
}

// Schema is the static field-name -> descriptor map for one entity,
// with at most one level of embedded descriptors (e.g. "coordinates.x").
// It is built once at startup and read-only afterwards, so it is safe
// to share across requests.
type Schema struct {
	fields   map[string]Field
	embedded map[string]*Schema
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{
		fields:   make(map[string]Field),
		embedded: make(map[string]*Schema),
	}
}

// AddField registers a top-level field. Returns the schema for chaining.
func (s *Schema) AddField(name string, f Field) *Schema {
	s.fields[name] = f
	return s
}

// Embed registers a nested embedded descriptor under name.
func (s *Schema) Embed(name string, nested *Schema) *Schema {
	s.embedded[name] = nested
	return s
}

// Resolve maps a dotted field path to its descriptor. Exactly one level
// of nesting is supported; deeper paths and unknown segments report not
// found, which callers treat as "skip this filter".
func (s *Schema) Resolve(path string) (Field, bool) {
	parts := strings.Split(path, ".")
	switch len(parts) {
	case 1:
		f, ok := s.fields[path]
		return f, ok
	case 2:
		nested, ok := s.embedded[parts[0]]
		if !ok {
			return Field{}, false
		}
		f, ok := nested.fields[parts[1]]
		return f, ok
	default:
		return Field{}, false
	}
}
