package sql

import "github.com/flowsql/flowsql/batch"

// Execute runs bq against input and returns the resulting batch (spec.md
// §4.2's plan shapes: `Project [ over Filter [ over LateralView ] ] over
// Source`, or `Aggregate over Source`). A non-nil bq.Subquery is executed
// first and its output becomes the relation the rest of the plan runs
// over — the binder already resolved every reference in bq against that
// inner output schema (bind.go's bindQuery).
func Execute(bq *BoundQuery, input batch.RowBatch, ctx *EvalCtx) (batch.RowBatch, error) {
	relation := input
	if bq.Subquery != nil {
		sub, err := Execute(bq.Subquery, input, ctx)
		if err != nil {
			return batch.RowBatch{}, err
		}
		relation = sub
	}

	if bq.IsAggregate {
		return Aggregate(relation, bq, ctx), nil
	}

	cur := relation
	if bq.Lateral != nil {
		extended := cur.Schema.Append(lateralOutputFields(bq.Lateral)...)
		cur = LateralView(cur, bq.Lateral, extended, ctx)
	}
	if bq.Filter != nil {
		cur = Filter(cur, bq.Filter, ctx)
	}
	return Project(cur, bq.Residual, bq.OutputSchema, ctx), nil
}

func lateralOutputFields(lv *BoundLateralView) []batch.Field {
	fields := make([]batch.Field, len(lv.OutputCols))
	for i, name := range lv.OutputCols {
		fields[i] = batch.Field{Name: name, Type: lv.OutputTypes[i]}
	}
	return fields
}
