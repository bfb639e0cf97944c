package sql

import (
	"testing"

	"github.com/flowsql/flowsql/batch"
)

// TestScalarFunctions drives a representative sample of the scalar
// function registry end to end, one row per case, in the teacher's
// table-driven style (Vegasq-parcat/query/function_test.go).
func TestScalarFunctions(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "dummy", Type: batch.Int32Type()})
	rows := [][]batch.Value{{batch.Int32(0)}}

	tests := []struct {
		name    string
		sqlText string
		check   func(t *testing.T, v batch.Value)
	}{
		{"upper", "SELECT upper('abc')", func(t *testing.T, v batch.Value) {
			if v.AsString() != "ABC" {
				t.Errorf("got %q, want ABC", v.AsString())
			}
		}},
		{"lower", "SELECT lower('ABC')", func(t *testing.T, v batch.Value) {
			if v.AsString() != "abc" {
				t.Errorf("got %q, want abc", v.AsString())
			}
		}},
		{"length", "SELECT length('hello')", func(t *testing.T, v batch.Value) {
			if v.AsInt64() != 5 {
				t.Errorf("got %d, want 5", v.AsInt64())
			}
		}},
		{"concat", "SELECT concat('a', 'b', 'c')", func(t *testing.T, v batch.Value) {
			if v.AsString() != "abc" {
				t.Errorf("got %q, want abc", v.AsString())
			}
		}},
		{"substr", "SELECT substr('hello', 2, 3)", func(t *testing.T, v batch.Value) {
			if v.AsString() != "ell" {
				t.Errorf("got %q, want ell", v.AsString())
			}
		}},
		{"split_part", "SELECT split_part('a/b/c', '/', 2)", func(t *testing.T, v batch.Value) {
			if v.AsString() != "b" {
				t.Errorf("got %q, want b", v.AsString())
			}
		}},
		{"split_part out of range", "SELECT split_part('a,b', ',', 5)", func(t *testing.T, v batch.Value) {
			if v.IsNull() || v.AsString() != "" {
				t.Errorf("got %v, want empty string", v)
			}
		}},
		{"round", "SELECT round(3.14159, 2)", func(t *testing.T, v batch.Value) {
			if v.AsFloat64() != 3.14 {
				t.Errorf("got %v, want 3.14", v.AsFloat64())
			}
		}},
		{"floor", "SELECT floor(3.7)", func(t *testing.T, v batch.Value) {
			if v.AsFloat64() != 3 {
				t.Errorf("got %v, want 3", v.AsFloat64())
			}
		}},
		{"ceil", "SELECT ceil(3.2)", func(t *testing.T, v batch.Value) {
			if v.AsFloat64() != 4 {
				t.Errorf("got %v, want 4", v.AsFloat64())
			}
		}},
		{"abs", "SELECT abs(-5)", func(t *testing.T, v batch.Value) {
			if v.AsInt64() != 5 {
				t.Errorf("got %d, want 5", v.AsInt64())
			}
		}},
		{"mod", "SELECT mod(7, 3)", func(t *testing.T, v batch.Value) {
			if v.AsInt64() != 1 {
				t.Errorf("got %d, want 1", v.AsInt64())
			}
		}},
		{"coalesce", "SELECT coalesce(NULL, NULL, 'x')", func(t *testing.T, v batch.Value) {
			if v.AsString() != "x" {
				t.Errorf("got %q, want x", v.AsString())
			}
		}},
		{"nvl", "SELECT nvl(NULL, 'fallback')", func(t *testing.T, v batch.Value) {
			if v.AsString() != "fallback" {
				t.Errorf("got %q, want fallback", v.AsString())
			}
		}},
		{"greatest", "SELECT greatest(1, 5, 3)", func(t *testing.T, v batch.Value) {
			if v.AsInt64() != 5 {
				t.Errorf("got %d, want 5", v.AsInt64())
			}
		}},
		{"least", "SELECT least(1, 5, 3)", func(t *testing.T, v batch.Value) {
			if v.AsInt64() != 1 {
				t.Errorf("got %d, want 1", v.AsInt64())
			}
		}},
		{"replace", "SELECT replace('foobar', 'bar', 'baz')", func(t *testing.T, v batch.Value) {
			if v.AsString() != "foobaz" {
				t.Errorf("got %q, want foobaz", v.AsString())
			}
		}},
		{"regexp_extract", "SELECT regexp_extract('abc123', '[0-9]+', 0)", func(t *testing.T, v batch.Value) {
			if v.AsString() != "123" {
				t.Errorf("got %q, want 123", v.AsString())
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runQuery(t, tt.sqlText+" FROM t", schema, rows, BindOptions{})
			if out.NumRows() != 1 {
				t.Fatalf("NumRows() = %d, want 1", out.NumRows())
			}
			tt.check(t, out.Rows[0][0])
		})
	}
}

// TestScalarFunctions_NullPropagation asserts most scalar functions
// propagate NULL rather than panicking (spec.md §7).
func TestScalarFunctions_NullPropagation(t *testing.T) {
	schema := mustSchema(t, batch.Field{Name: "s", Type: batch.StringType()})
	rows := [][]batch.Value{{batch.Null(batch.StringType())}}
	out := runQuery(t, "SELECT upper(s) FROM t", schema, rows, BindOptions{})
	if !out.Rows[0][0].IsNull() {
		t.Errorf("upper(NULL) = %v, want NULL", out.Rows[0][0])
	}
}
