package batch

import "fmt"

// RowBatch is a schema plus an ordered sequence of rows; each row is an
// ordered sequence of Value positionally matching the schema. Batches are
// the unit of flow between operators (spec.md §3).
//
// A batch is immutable once handed to an operator: every operator in
// package sql produces a new RowBatch rather than mutating its input
// (spec.md §3, invariants (b) and (c)).
type RowBatch struct {
	Schema Schema
	Rows   [][]Value
}

// NewRowBatch validates that every row is positionally type-compatible with
// schema (spec.md §3, invariant (a)) before returning the batch. Integer
// widening (Int32 value stored where Int64 is declared, or vice versa) and
// the same between Float32 and Float64 are allowed; any other kind mismatch
// for a non-null value is rejected.
func NewRowBatch(schema Schema, rows [][]Value) (RowBatch, error) {
	for r, row := range rows {
		if len(row) != len(schema.Fields) {
			return RowBatch{}, fmt.Errorf("row %d has %d values, schema has %d columns", r, len(row), len(schema.Fields))
		}
		for c, v := range row {
			if v.IsNull() {
				continue
			}
			want := schema.Fields[c].Type
			if !kindCompatible(want.Kind, v.Type().Kind) {
				return RowBatch{}, fmt.Errorf("row %d column %q: value of kind %s is not compatible with declared type %s", r, schema.Fields[c].Name, v.Type().Kind, want)
			}
		}
	}
	return RowBatch{Schema: schema, Rows: rows}, nil
}

func kindCompatible(want, got Kind) bool {
	if want == got {
		return true
	}
	// integer widening both ways; the executor is responsible for not
	// narrowing in a way that overflows (spec.md §3: "narrowing is a
	// runtime error" is enforced at cast time, not at batch-construction
	// time).
	if (want == KindInt32 || want == KindInt64) && (got == KindInt32 || got == KindInt64) {
		return true
	}
	if (want == KindFloat32 || want == KindFloat64) && (got == KindFloat32 || got == KindFloat64) {
		return true
	}
	return false
}

// NumRows returns the number of rows in the batch.
func (b RowBatch) NumRows() int { return len(b.Rows) }

// NumCols returns the number of columns in the batch's schema.
func (b RowBatch) NumCols() int { return b.Schema.Len() }

// Builder accumulates rows for a new RowBatch with a fixed schema. Physical
// operators use a Builder rather than appending to a slice directly so the
// immutability contract (operators never mutate their input) is structural:
// a Builder always starts from an empty slice.
type Builder struct {
	schema Schema
	rows   [][]Value
}

// NewBuilder creates a Builder for schema, optionally pre-sizing for
// capacity rows.
func NewBuilder(schema Schema, capacity int) *Builder {
	return &Builder{schema: schema, rows: make([][]Value, 0, capacity)}
}

// AddRow appends row, which must already match the builder's schema
// positionally; callers are expected to have constructed row correctly —
// Builder does not re-validate per row for performance, matching spec.md
// §5's "pure function from input batch + bound plan -> output batch" model
// where validation already happened once at bind time.
func (b *Builder) AddRow(row []Value) {
	b.rows = append(b.rows, row)
}

// Build finalizes the batch.
func (b *Builder) Build() RowBatch {
	return RowBatch{Schema: b.schema, Rows: b.rows}
}
