package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/flowsql/flowsql/batch"
)

func mustBatch(t *testing.T, fields []batch.Field, rows [][]batch.Value) batch.RowBatch {
	t.Helper()
	schema, err := batch.NewSchema(fields)
	if err != nil {
		t.Fatalf("NewSchema error: %v", err)
	}
	b, err := batch.NewRowBatch(schema, rows)
	if err != nil {
		t.Fatalf("NewRowBatch error: %v", err)
	}
	return b
}

func TestJSONLFormatter_OneObjectPerLine(t *testing.T) {
	b := mustBatch(t,
		[]batch.Field{{Name: "id", Type: batch.Int64Type()}, {Name: "name", Type: batch.StringType()}},
		[][]batch.Value{
			{batch.Int64(1), batch.Str("alice")},
			{batch.Int64(2), batch.Null(batch.StringType())},
		},
	)
	var buf bytes.Buffer
	f := NewJSONLFormatter(&buf)
	if err := f.Format(b); err != nil {
		t.Fatalf("Format error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"alice"`) {
		t.Errorf("line 0 = %q, want to contain alice", lines[0])
	}
	if !strings.Contains(lines[1], `"name":null`) {
		t.Errorf("line 1 = %q, want name:null", lines[1])
	}
}

func TestCSVFormatter_HeaderAndInjectionGuard(t *testing.T) {
	b := mustBatch(t,
		[]batch.Field{{Name: "id", Type: batch.Int32Type()}, {Name: "note", Type: batch.StringType()}},
		[][]batch.Value{
			{batch.Int32(1), batch.Str("=cmd|'/c calc'!A0")},
		},
	)
	var buf bytes.Buffer
	f := NewCSVFormatter(&buf)
	if err := f.Format(b); err != nil {
		t.Fatalf("Format error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "id,note\n") {
		t.Fatalf("missing header, got %q", out)
	}
	if !strings.Contains(out, "'=cmd") {
		t.Errorf("formula-leading value was not neutralized: %q", out)
	}
}

func TestTableFormatter_RendersWithoutError(t *testing.T) {
	b := mustBatch(t,
		[]batch.Field{{Name: "a", Type: batch.Int32Type()}},
		[][]batch.Value{{batch.Int32(1)}, {batch.Int32(2)}},
	)
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)
	if err := f.Format(b); err != nil {
		t.Fatalf("Format error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "1") || !strings.Contains(out, "2") {
		t.Errorf("table output missing expected values: %q", out)
	}
}
