package sql

import "github.com/flowsql/flowsql/batch"

// Named cast functions (spec.md §4.5): `string(e) / int(e)` etc. alongside
// the `CAST(expr AS type)` syntax handled directly by boundCast. Each just
// forwards to castValue with a fixed target type.

func init() {
	registerNamedCast("string", batch.StringType())
	registerNamedCast("int", batch.Int32Type())
	registerNamedCast("bigint", batch.Int64Type())
	registerNamedCast("float", batch.Float32Type())
	registerNamedCast("double", batch.Float64Type())
	registerNamedCast("boolean", batch.BooleanType())
}

func registerNamedCast(name string, target batch.DataType) {
	registerFunction(&Function{
		Name: name, MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(target),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			return castValue(args[0], target)
		},
	})
}
