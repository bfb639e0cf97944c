package sql

import (
	"testing"

	"github.com/flowsql/flowsql/batch"
)

func TestGenerator_Explode(t *testing.T) {
	gen, ok := lookupGenerator("explode")
	if !ok {
		t.Fatal("explode not registered")
	}
	outTypes, err := gen.OutputTypes([]batch.DataType{batch.ArrayType(batch.StringType())})
	if err != nil {
		t.Fatalf("OutputTypes error: %v", err)
	}
	if len(outTypes) != 1 || outTypes[0].Kind != batch.KindString {
		t.Fatalf("OutputTypes = %v, want [String]", outTypes)
	}

	arr := batch.Array(batch.StringType(), []batch.Value{batch.Str("a"), batch.Str("b")})
	tuples := gen.Produce([]batch.Value{arr})
	if len(tuples) != 2 {
		t.Fatalf("Produce returned %d tuples, want 2", len(tuples))
	}
	if tuples[0][0].AsString() != "a" || tuples[1][0].AsString() != "b" {
		t.Errorf("tuples = %v, want [[a] [b]]", tuples)
	}

	empty := batch.Array(batch.StringType(), nil)
	if got := gen.Produce([]batch.Value{empty}); len(got) != 0 {
		t.Errorf("Produce(empty array) = %v, want no tuples", got)
	}

	if _, err := gen.OutputTypes([]batch.DataType{batch.StringType()}); err == nil {
		t.Error("OutputTypes(non-array) succeeded, want error")
	}
}

func TestGenerator_PathFileUnroll(t *testing.T) {
	gen, ok := lookupGenerator("path_file_unroll")
	if !ok {
		t.Fatal("path_file_unroll not registered")
	}
	args := []batch.Value{batch.Str("a/b/c.txt"), batch.Str("c.txt"), batch.Str("/")}
	tuples := gen.Produce(args)

	want := [][2]string{
		{"a", "a"},
		{"a/b", "b"},
		{"a/b/c.txt", "c.txt"},
	}
	if len(tuples) != len(want) {
		t.Fatalf("Produce returned %d tuples, want %d: %v", len(tuples), len(want), tuples)
	}
	for i, w := range want {
		if tuples[i][0].AsString() != w[0] || tuples[i][1].AsString() != w[1] {
			t.Errorf("tuple[%d] = (%s, %s), want (%s, %s)",
				i, tuples[i][0].AsString(), tuples[i][1].AsString(), w[0], w[1])
		}
	}
}

func TestGenerator_PathFileUnroll_EmptySeparator(t *testing.T) {
	gen, _ := lookupGenerator("path_file_unroll")
	args := []batch.Value{batch.Str("a/b"), batch.Str("b"), batch.Str("")}
	if got := gen.Produce(args); len(got) != 0 {
		t.Errorf("Produce with empty separator = %v, want no tuples", got)
	}
}
