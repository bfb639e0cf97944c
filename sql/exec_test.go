package sql

import (
	"testing"

	"github.com/flowsql/flowsql/batch"
)

// runQuery parses, binds, and executes sqlText against a batch built from
// schema/rows in one step, mirroring the teacher's integration-test style of
// driving the stack end to end rather than unit-testing each layer alone
// (Vegasq-parcat/query/integration_test.go).
func runQuery(t *testing.T, sqlText string, schema batch.Schema, rows [][]batch.Value, opts BindOptions) batch.RowBatch {
	t.Helper()
	ast, err := Parse(sqlText)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", sqlText, err)
	}
	bq, err := Bind(ast, schema, opts)
	if err != nil {
		t.Fatalf("Bind(%q) error: %v", sqlText, err)
	}
	in, err := batch.NewRowBatch(schema, rows)
	if err != nil {
		t.Fatalf("NewRowBatch error: %v", err)
	}
	out, err := Execute(bq, in, &EvalCtx{NowMillis: 1700000000000})
	if err != nil {
		t.Fatalf("Execute(%q) error: %v", sqlText, err)
	}
	return out
}

func mustSchema(t *testing.T, fields ...batch.Field) batch.Schema {
	t.Helper()
	s, err := batch.NewSchema(fields)
	if err != nil {
		t.Fatalf("NewSchema error: %v", err)
	}
	return s
}

// TestExecute_ScalarProjection covers end-to-end scenario 1: a scalar
// projection with arithmetic over every row.
func TestExecute_ScalarProjection(t *testing.T) {
	schema := mustSchema(t,
		batch.Field{Name: "in_bytes", Type: batch.Int64Type()},
		batch.Field{Name: "out_bytes", Type: batch.Int64Type()},
	)
	rows := [][]batch.Value{
		{batch.Int64(10), batch.Int64(3)},
		{batch.Int64(20), batch.Int64(5)},
	}
	out := runQuery(t, "SELECT in_bytes + out_bytes AS total FROM t", schema, rows, BindOptions{})

	if out.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", out.NumRows())
	}
	if got := out.Schema.Names(); len(got) != 1 || got[0] != "total" {
		t.Fatalf("output schema names = %v, want [total]", got)
	}
	want := []int64{13, 25}
	for i, w := range want {
		if got := out.Rows[i][0].AsInt64(); got != w {
			t.Errorf("row %d total = %d, want %d", i, got, w)
		}
	}
}

// TestExecute_FilterWithModulus covers end-to-end scenario 2: a WHERE
// clause using the modulus operator.
func TestExecute_FilterWithModulus(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "n", Type: batch.Int32Type()})
	rows := [][]batch.Value{
		{batch.Int32(1)}, {batch.Int32(2)}, {batch.Int32(3)}, {batch.Int32(4)},
	}
	out := runQuery(t, "SELECT n FROM t WHERE n % 2 = 0", schema, rows, BindOptions{})

	if out.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", out.NumRows())
	}
	for _, row := range out.Rows {
		if row[0].AsInt64()%2 != 0 {
			t.Errorf("row %v: n is not even", row)
		}
	}
}

// TestExecute_LateralViewOuterExplode covers end-to-end scenario 3: OUTER
// explode null-pads rows whose array argument is empty rather than
// dropping them.
func TestExecute_LateralViewOuterExplode(t *testing.T) {
	schema := mustSchema(t,
		batch.Field{Name: "id", Type: batch.Int32Type()},
		batch.Field{Name: "tags", Type: batch.ArrayType(batch.StringType())},
	)
	rows := [][]batch.Value{
		{batch.Int32(1), batch.Array(batch.StringType(), []batch.Value{batch.Str("a"), batch.Str("b")})},
		{batch.Int32(2), batch.Array(batch.StringType(), nil)},
	}
	out := runQuery(t,
		"SELECT id, tag FROM t LATERAL VIEW OUTER explode(tags) v AS tag",
		schema, rows, BindOptions{})

	if out.NumRows() != 3 {
		t.Fatalf("NumRows() = %d, want 3 (2 exploded + 1 null-padded)", out.NumRows())
	}
	var sawNullPad bool
	for _, row := range out.Rows {
		if row[0].AsInt64() == 2 {
			if !row[1].IsNull() {
				t.Errorf("row for id=2 tag = %v, want NULL", row[1])
			}
			sawNullPad = true
		}
	}
	if !sawNullPad {
		t.Errorf("expected a null-padded row for id=2, got none")
	}
}

// TestExecute_GroupByAggregate covers end-to-end scenario 4: grouped
// aggregation with a post-aggregate division in the select list.
func TestExecute_GroupByAggregate(t *testing.T) {
	schema := mustSchema(t,
		batch.Field{Name: "cate_id", Type: batch.Int32Type()},
		batch.Field{Name: "in_bytes", Type: batch.Int64Type()},
	)
	rows := [][]batch.Value{
		{batch.Int32(1), batch.Int64(10)},
		{batch.Int32(1), batch.Int64(20)},
		{batch.Int32(2), batch.Int64(5)},
	}
	out := runQuery(t,
		"SELECT cate_id, sum(in_bytes) s, count(1) c, sum(in_bytes)/count(1) avg FROM t GROUP BY cate_id",
		schema, rows, BindOptions{})

	if out.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", out.NumRows())
	}
	byCate := map[int64][]batch.Value{}
	for _, row := range out.Rows {
		byCate[row[0].AsInt64()] = row
	}
	cate1 := byCate[1]
	if s := cate1[1].AsInt64(); s != 30 {
		t.Errorf("cate_id=1 sum = %d, want 30", s)
	}
	if c := cate1[2].AsInt64(); c != 2 {
		t.Errorf("cate_id=1 count = %d, want 2", c)
	}
	if avg := cate1[3].AsFloat64(); avg != 15 {
		t.Errorf("cate_id=1 avg = %v, want 15", avg)
	}
	cate2 := byCate[2]
	if s := cate2[1].AsInt64(); s != 5 {
		t.Errorf("cate_id=2 sum = %d, want 5", s)
	}
}

// TestExecute_GroupByInsertionOrder asserts groups are emitted in
// first-seen order (spec.md §4.4 step 3), not sorted.
func TestExecute_GroupByInsertionOrder(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "cate_id", Type: batch.Int32Type()})
	rows := [][]batch.Value{
		{batch.Int32(3)}, {batch.Int32(1)}, {batch.Int32(3)}, {batch.Int32(2)},
	}
	out := runQuery(t, "SELECT cate_id, count(1) c FROM t GROUP BY cate_id", schema, rows, BindOptions{})

	want := []int64{3, 1, 2}
	if out.NumRows() != len(want) {
		t.Fatalf("NumRows() = %d, want %d", out.NumRows(), len(want))
	}
	for i, w := range want {
		if got := out.Rows[i][0].AsInt64(); got != w {
			t.Errorf("row %d cate_id = %d, want %d", i, got, w)
		}
	}
}

// TestExecute_JSONExtractAndCase covers end-to-end scenario 5.
func TestExecute_JSONExtractAndCase(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "payload", Type: batch.StringType()})
	rows := [][]batch.Value{
		{batch.Str(`{"level": "error"}`)},
		{batch.Str(`{"level": "info"}`)},
	}
	out := runQuery(t,
		`SELECT CASE WHEN get_json_object(payload, '$.level') = 'error' THEN 1 ELSE 0 END AS is_error FROM t`,
		schema, rows, BindOptions{})

	want := []int64{1, 0}
	for i, w := range want {
		if got := out.Rows[i][0].AsInt64(); got != w {
			t.Errorf("row %d is_error = %d, want %d", i, got, w)
		}
	}
}

// TestExecute_CollectSetDeterminism covers end-to-end scenario 6:
// collect_set's output order is deterministic (first-seen, deduplicated)
// across repeated runs over the same input.
func TestExecute_CollectSetDeterminism(t *testing.T) {
	schema := mustSchema(t,
		batch.Field{Name: "cate_id", Type: batch.Int32Type()},
		batch.Field{Name: "tag", Type: batch.StringType()},
	)
	rows := [][]batch.Value{
		{batch.Int32(1), batch.Str("b")},
		{batch.Int32(1), batch.Str("a")},
		{batch.Int32(1), batch.Str("b")},
	}
	sqlText := "SELECT cate_id, collect_set(tag) tags FROM t GROUP BY cate_id"

	var prev string
	for i := 0; i < 3; i++ {
		out := runQuery(t, sqlText, schema, rows, BindOptions{})
		got := out.Rows[0][1].String()
		if i > 0 && got != prev {
			t.Fatalf("collect_set output changed across runs: %q vs %q", prev, got)
		}
		prev = got
	}
}

// TestExecute_Subquery exercises the `FROM (subquery)` plan shape (spec.md
// §4.2), confirming the outer plan binds against the inner plan's output
// schema.
func TestExecute_Subquery(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "n", Type: batch.Int32Type()})
	rows := [][]batch.Value{{batch.Int32(1)}, {batch.Int32(2)}, {batch.Int32(3)}}
	out := runQuery(t,
		"SELECT doubled FROM (SELECT n * 2 AS doubled FROM t) sub WHERE doubled > 2",
		schema, rows, BindOptions{})

	if out.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", out.NumRows())
	}
	want := []int64{4, 6}
	for i, w := range want {
		if got := out.Rows[i][0].AsInt64(); got != w {
			t.Errorf("row %d doubled = %d, want %d", i, got, w)
		}
	}
}
