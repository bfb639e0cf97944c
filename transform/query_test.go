package transform

import (
	"testing"

	"github.com/flowsql/flowsql/batch"
)

func fixedClock(ms int64) func() int64 {
	return func() int64 { return ms }
}

func mustSchema(t *testing.T, fields ...batch.Field) batch.Schema {
	t.Helper()
	s, err := batch.NewSchema(fields)
	if err != nil {
		t.Fatalf("NewSchema error: %v", err)
	}
	return s
}

func TestQueryTransform_RunsPerBatch(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "n", Type: batch.Int32Type()})
	tr, err := NewQueryTransform("SELECT n * 2 AS doubled FROM t WHERE n > 1", schema, fixedClock(0))
	if err != nil {
		t.Fatalf("NewQueryTransform error: %v", err)
	}

	batch1, err := batch.NewRowBatch(schema, [][]batch.Value{{batch.Int32(1)}, {batch.Int32(2)}})
	if err != nil {
		t.Fatalf("NewRowBatch error: %v", err)
	}
	out1, err := tr.Run(batch1)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out1.NumRows() != 1 || out1.Rows[0][0].AsInt64() != 4 {
		t.Fatalf("Run(batch1) = %v, want one row [4]", out1.Rows)
	}

	batch2, err := batch.NewRowBatch(schema, [][]batch.Value{{batch.Int32(5)}})
	if err != nil {
		t.Fatalf("NewRowBatch error: %v", err)
	}
	out2, err := tr.Run(batch2)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out2.NumRows() != 1 || out2.Rows[0][0].AsInt64() != 10 {
		t.Fatalf("Run(batch2) = %v, want one row [10]", out2.Rows)
	}

	if got := tr.OutputSchema().Names(); len(got) != 1 || got[0] != "doubled" {
		t.Errorf("OutputSchema().Names() = %v, want [doubled]", got)
	}
}

func TestQueryTransform_BindErrorSurfaces(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "n", Type: batch.Int32Type()})
	if _, err := NewQueryTransform("SELECT missing FROM t", schema, fixedClock(0)); err == nil {
		t.Fatal("NewQueryTransform succeeded, want bind error")
	}
}
