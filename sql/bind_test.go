package sql

import (
	"errors"
	"testing"

	"github.com/flowsql/flowsql/batch"
)

func bindErr(t *testing.T, sqlText string, schema batch.Schema, opts BindOptions) *BindError {
	t.Helper()
	ast, err := Parse(sqlText)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", sqlText, err)
	}
	_, err = Bind(ast, schema, opts)
	if err == nil {
		t.Fatalf("Bind(%q) succeeded, want error", sqlText)
	}
	var be *BindError
	if !errors.As(err, &be) {
		t.Fatalf("Bind(%q) error = %v (%T), want *BindError", sqlText, err, err)
	}
	return be
}

func TestBind_UnresolvedColumn(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "n", Type: batch.Int32Type()})
	be := bindErr(t, "SELECT missing FROM t", schema, BindOptions{})
	if be.Code != UnresolvedColumn {
		t.Errorf("Code = %v, want UnresolvedColumn", be.Code)
	}
}

func TestBind_NonGroupedColumn(t *testing.T) {
	schema := mustSchema(t,
		batch.Field{Name: "cate_id", Type: batch.Int32Type()},
		batch.Field{Name: "in_bytes", Type: batch.Int64Type()},
	)
	be := bindErr(t, "SELECT in_bytes, count(1) FROM t GROUP BY cate_id", schema, BindOptions{})
	if be.Code != NonGroupedColumn {
		t.Errorf("Code = %v, want NonGroupedColumn", be.Code)
	}
}

func TestBind_GroupingExpressionIsAllowed(t *testing.T) {
	schema := mustSchema(t,
		batch.Field{Name: "cate_id", Type: batch.Int32Type()},
		batch.Field{Name: "in_bytes", Type: batch.Int64Type()},
	)
	ast, err := Parse("SELECT cate_id, sum(in_bytes) FROM t GROUP BY cate_id")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if _, err := Bind(ast, schema, BindOptions{}); err != nil {
		t.Fatalf("Bind error: %v", err)
	}
}

func TestBind_IllegalAggregateOutsideGroupBy(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "n", Type: batch.Int64Type()})
	be := bindErr(t, "SELECT n FROM t WHERE sum(n) > 1", schema, BindOptions{})
	if be.Code != UnresolvedColumn && be.Code != IllegalAggregate {
		t.Errorf("Code = %v, want IllegalAggregate-family error", be.Code)
	}
}

func TestBind_UngroupedAggregateRequiresOptIn(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "n", Type: batch.Int64Type()})

	ast, err := Parse("SELECT sum(n) FROM t")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if _, err := Bind(ast, schema, BindOptions{}); err == nil {
		t.Fatalf("Bind succeeded without AllowUngroupedAggregates, want error")
	}
	if _, err := Bind(ast, schema, BindOptions{AllowUngroupedAggregates: true}); err != nil {
		t.Fatalf("Bind with AllowUngroupedAggregates failed: %v", err)
	}
}

func TestBind_ArityMismatch(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "s", Type: batch.StringType()})
	be := bindErr(t, "SELECT upper(s, s) FROM t", schema, BindOptions{})
	if be.Code != ArityMismatch {
		t.Errorf("Code = %v, want ArityMismatch", be.Code)
	}
}

func TestBind_InvalidRegex(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "s", Type: batch.StringType()})
	be := bindErr(t, "SELECT s FROM t WHERE s REGEXP '[unterminated'", schema, BindOptions{})
	if be.Code != InvalidRegex {
		t.Errorf("Code = %v, want InvalidRegex", be.Code)
	}
}

// TestBind_CanonicalNaming covers spec.md §6: implicit output column names
// for unaliased select items.
func TestBind_CanonicalNaming(t *testing.T) {
	schema := mustSchema(t,
		batch.Field{Name: "a", Type: batch.Int32Type()},
		batch.Field{Name: "b", Type: batch.Int32Type()},
	)
	ast, err := Parse("SELECT a + b, upper('x'), a FROM t")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	bq, err := Bind(ast, schema, BindOptions{})
	if err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	want := []string{"a + b", "upper('x')", "a"}
	got := bq.OutputSchema.Names()
	if len(got) != len(want) {
		t.Fatalf("OutputSchema.Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestBind_ConstantFolding covers spec.md §4.2/§9: pure scalar expressions
// over literals are folded at bind time into a single boundLiteral.
func TestBind_ConstantFolding(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "n", Type: batch.Int32Type()})
	ast, err := Parse("SELECT 1 + 2 AS three FROM t")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	bq, err := Bind(ast, schema, BindOptions{})
	if err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	lit, ok := bq.Residual[0].(*boundLiteral)
	if !ok {
		t.Fatalf("Residual[0] = %T, want *boundLiteral (constant folding should have collapsed it)", bq.Residual[0])
	}
	if lit.val.AsInt64() != 3 {
		t.Errorf("folded value = %d, want 3", lit.val.AsInt64())
	}
}

// TestBind_NowIsNotFolded ensures now() survives constant folding since its
// value depends on the per-batch EvalCtx, not bind-time state.
func TestBind_NowIsNotFolded(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "n", Type: batch.Int32Type()})
	ast, err := Parse("SELECT now() FROM t")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	bq, err := Bind(ast, schema, BindOptions{})
	if err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	if _, ok := bq.Residual[0].(*boundLiteral); ok {
		t.Fatalf("now() was folded into a literal, want it to stay dynamic")
	}
}
