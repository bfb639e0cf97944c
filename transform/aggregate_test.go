package transform

import (
	"testing"

	"github.com/flowsql/flowsql/batch"
)

func TestTaskAggregateTransform_GroupedPerBatch(t *testing.T) {
	schema := mustSchema(t,
		batch.Field{Name: "cate_id", Type: batch.Int32Type()},
		batch.Field{Name: "n", Type: batch.Int64Type()},
	)
	tr, err := NewTaskAggregateTransform(
		"SELECT cate_id, sum(n) total FROM t GROUP BY cate_id", schema, fixedClock(0))
	if err != nil {
		t.Fatalf("NewTaskAggregateTransform error: %v", err)
	}

	b1, err := batch.NewRowBatch(schema, [][]batch.Value{
		{batch.Int32(1), batch.Int64(10)},
		{batch.Int32(1), batch.Int64(5)},
		{batch.Int32(2), batch.Int64(7)},
	})
	if err != nil {
		t.Fatalf("NewRowBatch error: %v", err)
	}
	out1, err := tr.Run(b1)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out1.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", out1.NumRows())
	}

	// A second, disjoint batch must not see any state left over from the
	// first (spec.md §4.6: "does not retain state across batches").
	b2, err := batch.NewRowBatch(schema, [][]batch.Value{
		{batch.Int32(1), batch.Int64(100)},
	})
	if err != nil {
		t.Fatalf("NewRowBatch error: %v", err)
	}
	out2, err := tr.Run(b2)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out2.NumRows() != 1 {
		t.Fatalf("NumRows() = %d, want 1", out2.NumRows())
	}
	if got := out2.Rows[0][1].AsInt64(); got != 100 {
		t.Errorf("second batch sum = %d, want 100 (no carryover from batch 1)", got)
	}
}

func TestTaskAggregateTransform_UngroupedGlobalAggregate(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "n", Type: batch.Int64Type()})
	tr, err := NewTaskAggregateTransform("SELECT sum(n) total, count(1) c FROM t", schema, fixedClock(0))
	if err != nil {
		t.Fatalf("NewTaskAggregateTransform error: %v", err)
	}
	in, err := batch.NewRowBatch(schema, [][]batch.Value{
		{batch.Int64(1)}, {batch.Int64(2)}, {batch.Int64(3)},
	})
	if err != nil {
		t.Fatalf("NewRowBatch error: %v", err)
	}
	out, err := tr.Run(in)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out.NumRows() != 1 {
		t.Fatalf("NumRows() = %d, want 1 (global aggregate)", out.NumRows())
	}
	if got := out.Rows[0][0].AsInt64(); got != 6 {
		t.Errorf("total = %d, want 6", got)
	}
	if got := out.Rows[0][1].AsInt64(); got != 3 {
		t.Errorf("c = %d, want 3", got)
	}
}
