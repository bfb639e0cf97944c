package sql

import (
	"testing"

	"github.com/flowsql/flowsql/batch"
)

func TestAggregate_SumAvgMinMax(t *testing.T) {
	vals := []int64{3, 1, 4, 1, 5}

	for _, name := range []string{"sum", "avg", "min", "max"} {
		agg, ok := lookupAggregate(name)
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		acc := agg.New(batch.Int64Type(), false)
		for _, v := range vals {
			acc.Update([]batch.Value{batch.Int64(v)})
		}
		got := acc.Finalize()

		var want float64
		switch name {
		case "sum":
			want = 14
		case "avg":
			want = 2.8
		case "min":
			want = 1
		case "max":
			want = 5
		}
		if got.AsFloat64() != want {
			t.Errorf("%s = %v, want %v", name, got.AsFloat64(), want)
		}
	}
}

func TestAggregate_CountStar(t *testing.T) {
	agg, _ := lookupAggregate("count")
	acc := agg.New(batch.NullType(), true)
	for i := 0; i < 5; i++ {
		acc.Update(nil)
	}
	if got := acc.Finalize().AsInt64(); got != 5 {
		t.Errorf("count(*) = %d, want 5", got)
	}
}

func TestAggregate_CountIgnoresNulls(t *testing.T) {
	agg, _ := lookupAggregate("count")
	acc := agg.New(batch.Int64Type(), false)
	acc.Update([]batch.Value{batch.Int64(1)})
	acc.Update([]batch.Value{batch.Null(batch.Int64Type())})
	acc.Update([]batch.Value{batch.Int64(2)})
	if got := acc.Finalize().AsInt64(); got != 2 {
		t.Errorf("count = %d, want 2 (NULLs excluded)", got)
	}
}

func TestAggregate_FirstLast(t *testing.T) {
	first, _ := lookupAggregate("first")
	last, _ := lookupAggregate("last")

	fa := first.New(batch.Int64Type(), false)
	la := last.New(batch.Int64Type(), false)
	for _, v := range []int64{10, 20, 30} {
		fa.Update([]batch.Value{batch.Int64(v)})
		la.Update([]batch.Value{batch.Int64(v)})
	}
	if got := fa.Finalize().AsInt64(); got != 10 {
		t.Errorf("first = %d, want 10", got)
	}
	if got := la.Finalize().AsInt64(); got != 30 {
		t.Errorf("last = %d, want 30", got)
	}
}

// TestAggregate_CollectSetDeduplicatesInFirstSeenOrder covers spec.md §8
// scenario 6: collect_set dedups while preserving first-seen order.
func TestAggregate_CollectSetDeduplicatesInFirstSeenOrder(t *testing.T) {
	agg, _ := lookupAggregate("collect_set")
	acc := agg.New(batch.StringType(), false)
	for _, s := range []string{"b", "a", "b", "c", "a"} {
		acc.Update([]batch.Value{batch.Str(s)})
	}
	got := acc.Finalize().AsArray()
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("collect_set = %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i].AsString() != w {
			t.Errorf("collect_set[%d] = %s, want %s", i, got[i].AsString(), w)
		}
	}
}

func TestAggregate_CollectListKeepsDuplicates(t *testing.T) {
	agg, _ := lookupAggregate("collect_list")
	acc := agg.New(batch.StringType(), false)
	for _, s := range []string{"b", "a", "b"} {
		acc.Update([]batch.Value{batch.Str(s)})
	}
	got := acc.Finalize().AsArray()
	if len(got) != 3 {
		t.Fatalf("collect_list = %v, want 3 elements", got)
	}
}
