package sql

import "github.com/flowsql/flowsql/batch"

// LateralView invokes lv's generator once per input row, appending each
// produced tuple's values to that row's values (spec.md §4.4). A row whose
// generator call produces zero tuples is dropped unless lv.Outer is set, in
// which case one NULL-padded row is emitted instead — matching the
// `explode` vs. `outer explode` distinction end-to-end scenario 3 names.
func LateralView(input batch.RowBatch, lv *BoundLateralView, outputSchema batch.Schema, ctx *EvalCtx) batch.RowBatch {
	b := batch.NewBuilder(outputSchema, input.NumRows())
	args := make([]batch.Value, len(lv.Args))

	for _, row := range input.Rows {
		for i, a := range lv.Args {
			args[i] = a.Eval(row, ctx)
		}
		tuples := lv.Generator.Produce(args)

		if len(tuples) == 0 {
			if !lv.Outer {
				continue
			}
			b.AddRow(appendValues(row, nullPad(lv.OutputTypes)))
			continue
		}
		for _, tuple := range tuples {
			b.AddRow(appendValues(row, tuple))
		}
	}
	return b.Build()
}

// appendValues returns a fresh row combining base and extra — never
// mutates base, which may still be referenced by the input batch (spec.md
// §3, invariant (c)).
func appendValues(base []batch.Value, extra []batch.Value) []batch.Value {
	out := make([]batch.Value, 0, len(base)+len(extra))
	out = append(out, base...)
	out = append(out, extra...)
	return out
}

func nullPad(types []batch.DataType) []batch.Value {
	out := make([]batch.Value, len(types))
	for i, t := range types {
		out[i] = batch.Null(t)
	}
	return out
}
