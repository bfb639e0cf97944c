package sql

import "github.com/flowsql/flowsql/batch"

// aggGroup is one group's accumulator bundle plus its key, kept alongside
// an insertion-order slice so output rows preserve first-seen order
// (spec.md §4.4 step 3: "emit one output row per key in insertion order").
// Grounded on Vegasq-parcat/query/aggregate.go's Group struct, generalized
// from a string hash key to groupKeyHash's uint64 with explicit collision
// resolution (that teacher used row-key strings built by fmt.Sprintf over
// interface{} values, which this typed model replaces with groupKeysEqual).
type aggGroup struct {
	key  []batch.Value
	accs []Accumulator
}

// Aggregate runs the single-batch hash-grouped aggregation algorithm
// (spec.md §4.4): group, update per row, then finalize and evaluate each
// select item's residual expression over the combined
// (group-values..., finalized-agg-values...) row.
func Aggregate(input batch.RowBatch, bq *BoundQuery, ctx *EvalCtx) batch.RowBatch {
	buckets := make(map[uint64][]*aggGroup)
	var order []*aggGroup

	argVals := make([]batch.Value, 1)
	for _, row := range input.Rows {
		key := make([]batch.Value, len(bq.GroupExprs))
		for i, g := range bq.GroupExprs {
			key[i] = g.Eval(row, ctx)
		}
		h := groupKeyHash(key)

		var g *aggGroup
		for _, cand := range buckets[h] {
			if groupKeysEqual(cand.key, key) {
				g = cand
				break
			}
		}
		if g == nil {
			accs := make([]Accumulator, len(bq.AggCalls))
			for i, call := range bq.AggCalls {
				accs[i] = call.Agg.New(call.ArgType, call.Star)
			}
			g = &aggGroup{key: key, accs: accs}
			buckets[h] = append(buckets[h], g)
			order = append(order, g)
		}

		for i, call := range bq.AggCalls {
			if call.Star {
				g.accs[i].Update(nil)
				continue
			}
			argVals[0] = call.Arg.Eval(row, ctx)
			g.accs[i].Update(argVals)
		}
	}

	b := batch.NewBuilder(bq.OutputSchema, len(order))
	combined := make([]batch.Value, len(bq.GroupExprs)+len(bq.AggCalls))
	for _, g := range order {
		copy(combined, g.key)
		for i, acc := range g.accs {
			combined[len(g.key)+i] = acc.Finalize()
		}
		if bq.Having != nil {
			hv := bq.Having.Eval(combined, ctx)
			if hv.IsNull() || !hv.AsBool() {
				continue
			}
		}
		out := make([]batch.Value, len(bq.Residual))
		for i, r := range bq.Residual {
			out[i] = r.Eval(combined, ctx)
		}
		b.AddRow(out)
	}
	return b.Build()
}
