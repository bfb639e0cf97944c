package sql

import (
	"testing"

	"github.com/flowsql/flowsql/batch"
)

// TestProject_OneRowPerInputRow exercises Project directly against
// hand-built bound expressions, bypassing the binder.
func TestProject_OneRowPerInputRow(t *testing.T) {
	inSchema := mustSchema(t, batch.Field{Name: "n", Type: batch.Int32Type()})
	in, err := batch.NewRowBatch(inSchema, [][]batch.Value{
		{batch.Int32(1)}, {batch.Int32(2)}, {batch.Int32(3)},
	})
	if err != nil {
		t.Fatalf("NewRowBatch error: %v", err)
	}

	outSchema := mustSchema(t, batch.Field{Name: "n", Type: batch.Int32Type()})
	out := Project(in, []BoundExpr{&boundColumn{index: 0, typ: batch.Int32Type()}}, outSchema, &EvalCtx{})

	if out.NumRows() != 3 {
		t.Fatalf("NumRows() = %d, want 3", out.NumRows())
	}
	for i := 0; i < 3; i++ {
		if got := out.Rows[i][0].AsInt64(); got != int64(i+1) {
			t.Errorf("row %d = %d, want %d", i, got, i+1)
		}
	}
}

// TestProject_NeverMutatesInput asserts Project does not mutate the input
// batch's row slices (spec.md §3 invariant (c)).
func TestProject_NeverMutatesInput(t *testing.T) {
	inSchema := mustSchema(t, batch.Field{Name: "n", Type: batch.Int32Type()})
	rows := [][]batch.Value{{batch.Int32(1)}}
	in, err := batch.NewRowBatch(inSchema, rows)
	if err != nil {
		t.Fatalf("NewRowBatch error: %v", err)
	}
	outSchema := mustSchema(t, batch.Field{Name: "doubled", Type: batch.Int32Type()})
	lit := &boundLiteral{val: batch.Int32(99)}
	_ = Project(in, []BoundExpr{lit}, outSchema, &EvalCtx{})

	if in.Rows[0][0].AsInt64() != 1 {
		t.Errorf("input row mutated: got %v, want unchanged [1]", in.Rows[0])
	}
}

// TestFilter_DropsFalseAndNull asserts both false and NULL predicate
// results drop the row (spec.md §4.4).
func TestFilter_DropsFalseAndNull(t *testing.T) {
	inSchema := mustSchema(t, batch.Field{Name: "b", Type: batch.BooleanType()})
	rows := [][]batch.Value{
		{batch.Bool(true)},
		{batch.Bool(false)},
		{batch.Null(batch.BooleanType())},
		{batch.Bool(true)},
	}
	in, err := batch.NewRowBatch(inSchema, rows)
	if err != nil {
		t.Fatalf("NewRowBatch error: %v", err)
	}
	out := Filter(in, &boundColumn{index: 0, typ: batch.BooleanType()}, &EvalCtx{})
	if out.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", out.NumRows())
	}
	for _, row := range out.Rows {
		if !row[0].AsBool() {
			t.Errorf("row %v: expected only true rows to survive", row)
		}
	}
}
