package config

import (
	"testing"

	"github.com/flowsql/flowsql/batch"
)

const samplePipeline = `
env:
  region: us-east-1
sources:
  - name: clicks
    type: kafka
    options:
      topic: clicks.raw
transforms:
  - name: enrich
    type: query
    inputs: [clicks]
    outputs: [enriched]
    sql: "SELECT user_id, url FROM t WHERE url IS NOT NULL"
  - name: rollup
    type: task_aggregate
    inputs: [enriched]
    outputs: [rolled_up]
    sql: "SELECT user_id, count(1) c FROM t GROUP BY user_id"
sinks:
  - name: warehouse
    type: bigquery
active_sinks: [warehouse]
`

func TestLoad_ParsesPipeline(t *testing.T) {
	p, err := Load([]byte(samplePipeline))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if p.Env["region"] != "us-east-1" {
		t.Errorf("Env[region] = %q, want us-east-1", p.Env["region"])
	}
	if len(p.Sources) != 1 || p.Sources[0].Options["topic"] != "clicks.raw" {
		t.Errorf("Sources = %+v, want one kafka source with topic clicks.raw", p.Sources)
	}
	if len(p.Transforms) != 2 {
		t.Fatalf("len(Transforms) = %d, want 2", len(p.Transforms))
	}
	if p.Transforms[0].Type != "query" || p.Transforms[1].Type != "task_aggregate" {
		t.Errorf("Transforms types = [%s, %s], want [query, task_aggregate]",
			p.Transforms[0].Type, p.Transforms[1].Type)
	}
	if len(p.ActiveSinks) != 1 || p.ActiveSinks[0] != "warehouse" {
		t.Errorf("ActiveSinks = %v, want [warehouse]", p.ActiveSinks)
	}
}

func TestLoad_RejectsUnknownTransformType(t *testing.T) {
	bad := `
transforms:
  - name: x
    type: join
    sql: "SELECT 1"
`
	if _, err := Load([]byte(bad)); err == nil {
		t.Fatal("Load succeeded for unknown transform type, want error")
	}
}

func TestLoad_RejectsMissingSQL(t *testing.T) {
	bad := `
transforms:
  - name: x
    type: query
`
	if _, err := Load([]byte(bad)); err == nil {
		t.Fatal("Load succeeded for missing sql, want error")
	}
}

func TestBuildTransform_Query(t *testing.T) {
	schema, err := batch.NewSchema([]batch.Field{
		{Name: "user_id", Type: batch.Int64Type()},
		{Name: "url", Type: batch.StringType()},
	})
	if err != nil {
		t.Fatalf("NewSchema error: %v", err)
	}
	tc := TransformConfig{Name: "enrich", Type: "query", SQL: "SELECT user_id FROM t WHERE url IS NOT NULL"}
	rt, err := BuildTransform(tc, schema, func() int64 { return 0 })
	if err != nil {
		t.Fatalf("BuildTransform error: %v", err)
	}
	in, err := batch.NewRowBatch(schema, [][]batch.Value{
		{batch.Int64(1), batch.Str("a")},
		{batch.Int64(2), batch.Null(batch.StringType())},
	})
	if err != nil {
		t.Fatalf("NewRowBatch error: %v", err)
	}
	out, err := rt.Run(in)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out.NumRows() != 1 {
		t.Fatalf("NumRows() = %d, want 1", out.NumRows())
	}
}

func TestBuildTransform_UnknownType(t *testing.T) {
	schema, err := batch.NewSchema([]batch.Field{{Name: "n", Type: batch.Int32Type()}})
	if err != nil {
		t.Fatalf("NewSchema error: %v", err)
	}
	tc := TransformConfig{Name: "x", Type: "mystery", SQL: "SELECT n FROM t"}
	if _, err := BuildTransform(tc, schema, func() int64 { return 0 }); err == nil {
		t.Fatal("BuildTransform succeeded for unknown type, want error")
	}
}
