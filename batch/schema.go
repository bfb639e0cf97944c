package batch

import "fmt"

// Field is one (name, type) pair in a Schema. Names are case-sensitive;
// backtick-quoted identifiers in the schema-string grammar (schemastring.go)
// preserve original casing, same as bare identifiers do.
type Field struct {
	Name string
	Type DataType
}

// Schema is an ordered sequence of Fields. A RowBatch's rows are ordered
// positionally to match their Schema (spec.md §3, invariant (a)). Schemas
// are created once (by parsing a schema string, by a source, or by
// projection) and are treated as immutable thereafter — see spec.md §3
// "Lifecycles".
type Schema struct {
	Fields []Field
}

// NewSchema builds a Schema, rejecting duplicate names (spec.md §3: "Names
// within a schema must be unique").
func NewSchema(fields []Field) (Schema, error) {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return Schema{}, fmt.Errorf("duplicate column name %q in schema", f.Name)
		}
		seen[f.Name] = true
	}
	return Schema{Fields: fields}, nil
}

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.Fields) }

// IndexOf returns the position of the first column named name, case
// sensitively, and whether it was found. Spec.md §4.2: "A bare identifier
// in an expression resolves to the first column ... with that name."
func (s Schema) IndexOf(name string) (int, bool) {
	for i, f := range s.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Append returns a new Schema with additional fields appended — used by
// LateralView, which appends the generator's output columns to the input
// row's schema (spec.md §4.2).
func (s Schema) Append(fields ...Field) Schema {
	out := make([]Field, 0, len(s.Fields)+len(fields))
	out = append(out, s.Fields...)
	out = append(out, fields...)
	return Schema{Fields: out}
}
