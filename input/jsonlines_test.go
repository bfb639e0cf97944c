package input

import (
	"testing"

	"github.com/flowsql/flowsql/batch"
)

func TestDecodeJSONLines_BasicTypes(t *testing.T) {
	schema, err := batch.NewSchema([]batch.Field{
		{Name: "id", Type: batch.Int64Type()},
		{Name: "name", Type: batch.StringType()},
		{Name: "active", Type: batch.BooleanType()},
		{Name: "score", Type: batch.Float64Type()},
	})
	if err != nil {
		t.Fatalf("NewSchema error: %v", err)
	}
	data := []byte(`
{"id": 1, "name": "alice", "active": true, "score": 3.5}
{"id": 2, "name": "bob", "active": false, "score": 1.25}
`)
	b, err := DecodeJSONLines(data, schema)
	if err != nil {
		t.Fatalf("DecodeJSONLines error: %v", err)
	}
	if b.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", b.NumRows())
	}
	if b.Rows[0][1].AsString() != "alice" || b.Rows[0][2].AsBool() != true {
		t.Errorf("row 0 = %v, want alice/true", b.Rows[0])
	}
	if b.Rows[1][3].AsFloat64() != 1.25 {
		t.Errorf("row 1 score = %v, want 1.25", b.Rows[1][3].AsFloat64())
	}
}

func TestDecodeJSONLines_MissingAndNullFieldsBecomeNull(t *testing.T) {
	schema, err := batch.NewSchema([]batch.Field{
		{Name: "id", Type: batch.Int64Type()},
		{Name: "note", Type: batch.StringType()},
	})
	if err != nil {
		t.Fatalf("NewSchema error: %v", err)
	}
	data := []byte(`{"id": 1}
{"id": 2, "note": null}
`)
	b, err := DecodeJSONLines(data, schema)
	if err != nil {
		t.Fatalf("DecodeJSONLines error: %v", err)
	}
	for i, row := range b.Rows {
		if !row[1].IsNull() {
			t.Errorf("row %d note = %v, want NULL", i, row[1])
		}
	}
}

func TestDecodeJSONLines_Array(t *testing.T) {
	schema, err := batch.NewSchema([]batch.Field{
		{Name: "tags", Type: batch.ArrayType(batch.StringType())},
	})
	if err != nil {
		t.Fatalf("NewSchema error: %v", err)
	}
	data := []byte(`{"tags": ["a", "b", "c"]}`)
	b, err := DecodeJSONLines(data, schema)
	if err != nil {
		t.Fatalf("DecodeJSONLines error: %v", err)
	}
	arr := b.Rows[0][0].AsArray()
	if len(arr) != 3 || arr[1].AsString() != "b" {
		t.Errorf("tags = %v, want [a b c]", arr)
	}
}
