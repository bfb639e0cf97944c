package transform

import (
	"fmt"

	"github.com/flowsql/flowsql/batch"
	"github.com/flowsql/flowsql/sql"
)

// TaskAggregateTransform binds sql once with AllowUngroupedAggregates set
// (spec.md §4.2: "Aggregates may appear only in the select list of a
// grouped query... or an task_aggregate transform") and runs the full
// aggregate algorithm against every batch it is handed, independently —
// spec.md §4.6: "per input batch... emits exactly one output batch
// containing one row per observed group. It does not retain state
// across batches."
type TaskAggregateTransform struct {
	bq  *sql.BoundQuery
	now func() int64
}

// NewTaskAggregateTransform parses and binds sqlText as a (possibly
// ungrouped) aggregate query against inputSchema.
func NewTaskAggregateTransform(sqlText string, inputSchema batch.Schema, now func() int64) (*TaskAggregateTransform, error) {
	ast, err := sql.Parse(sqlText)
	if err != nil {
		return nil, fmt.Errorf("transform: parse %q: %w", sqlText, err)
	}
	bq, err := sql.Bind(ast, inputSchema, sql.BindOptions{AllowUngroupedAggregates: true})
	if err != nil {
		return nil, fmt.Errorf("transform: bind %q: %w", sqlText, err)
	}
	return &TaskAggregateTransform{bq: bq, now: now}, nil
}

// OutputSchema returns the schema every batch Run produces carries.
func (t *TaskAggregateTransform) OutputSchema() batch.Schema {
	return t.bq.OutputSchema
}

// Run groups and aggregates in from scratch — no accumulator state
// survives between calls.
func (t *TaskAggregateTransform) Run(in batch.RowBatch) (batch.RowBatch, error) {
	out, err := sql.Execute(t.bq, in, &sql.EvalCtx{NowMillis: t.now()})
	if err != nil {
		return batch.RowBatch{}, fmt.Errorf("transform: execute: %w", err)
	}
	return out, nil
}
