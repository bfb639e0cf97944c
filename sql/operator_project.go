package sql

import "github.com/flowsql/flowsql/batch"

// Project evaluates exprs against every row of input and returns a new
// batch with outputSchema, one row per input row (spec.md §4.4). Grounded
// on Vegasq-parcat/query/filter.go's ApplySelectList, generalized from
// map[string]interface{} rows to the typed []batch.Value row model.
func Project(input batch.RowBatch, exprs []BoundExpr, outputSchema batch.Schema, ctx *EvalCtx) batch.RowBatch {
	b := batch.NewBuilder(outputSchema, input.NumRows())
	for _, row := range input.Rows {
		out := make([]batch.Value, len(exprs))
		for i, e := range exprs {
			out[i] = e.Eval(row, ctx)
		}
		b.AddRow(out)
	}
	return b.Build()
}
