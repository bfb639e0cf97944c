package sql

import "github.com/flowsql/flowsql/batch"

// Filter drops rows whose predicate evaluates to anything other than true —
// both false and NULL are filtered out (spec.md §4.4). Grounded on
// Vegasq-parcat/query/filter.go's ApplyFilter, adapted to the typed bound
// expression evaluator instead of an Expression.Evaluate(row) -> (bool,
// error) contract.
func Filter(input batch.RowBatch, predicate BoundExpr, ctx *EvalCtx) batch.RowBatch {
	b := batch.NewBuilder(input.Schema, input.NumRows())
	for _, row := range input.Rows {
		v := predicate.Eval(row, ctx)
		if !v.IsNull() && v.AsBool() {
			b.AddRow(row)
		}
	}
	return b.Build()
}
