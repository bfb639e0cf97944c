package sql

import (
	"math"

	"github.com/flowsql/flowsql/batch"
)

// Numeric built-ins (spec.md §4.5). Grounded on Vegasq-parcat/query/
// function_math.go's struct-per-function layout.

func init() {
	registerFunction(&Function{
		Name: "pow", MinArgs: 2, MaxArgs: 2,
		CheckArgs: fixedReturn(batch.Float64Type()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() || args[1].IsNull() {
				return batch.Null(batch.Float64Type())
			}
			return batch.Float64Val(math.Pow(args[0].AsFloat64(), args[1].AsFloat64()))
		},
	})

	// round(x, digits?): banker's rounding (half-even) at integer digits
	// (spec.md §4.5).
	registerFunction(&Function{
		Name: "round", MinArgs: 1, MaxArgs: 2,
		CheckArgs: func(argTypes []batch.DataType) (batch.DataType, error) {
			return argTypes[0], nil
		},
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(args[0].Type())
			}
			digits := 0
			if len(args) == 2 && !args[1].IsNull() {
				digits = int(args[1].AsInt64())
			}
			rounded := roundHalfEven(args[0].AsFloat64(), digits)
			return reboxFloat(rounded, args[0].Type())
		},
	})

	registerFunction(&Function{
		Name: "floor", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.Int64Type()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(batch.Int64Type())
			}
			return batch.Int64(int64(math.Floor(args[0].AsFloat64())))
		},
	})

	registerFunction(&Function{
		Name: "ceil", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.Int64Type()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(batch.Int64Type())
			}
			return batch.Int64(int64(math.Ceil(args[0].AsFloat64())))
		},
	})

	registerFunction(&Function{
		Name: "abs", MinArgs: 1, MaxArgs: 1,
		CheckArgs: func(argTypes []batch.DataType) (batch.DataType, error) {
			return argTypes[0], nil
		},
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(args[0].Type())
			}
			return reboxFloat(math.Abs(args[0].AsFloat64()), args[0].Type())
		},
	})

	registerFunction(&Function{
		Name: "mod", MinArgs: 2, MaxArgs: 2,
		CheckArgs: func(argTypes []batch.DataType) (batch.DataType, error) {
			return coerceOrErr("mod", argTypes)
		},
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() || args[1].IsNull() {
				return batch.Null(batch.Int64Type())
			}
			b := args[1].AsInt64()
			if b == 0 {
				return batch.Null(batch.Int64Type())
			}
			return batch.Int64(args[0].AsInt64() % b)
		},
	})
}

func coerceOrErr(name string, argTypes []batch.DataType) (batch.DataType, error) {
	t, ok := coerceArith(argTypes[0], argTypes[1])
	if !ok {
		return batch.DataType{}, newBindError(ArgumentTypeMismatch, 0, "%s: incompatible argument types %s, %s", name, argTypes[0], argTypes[1])
	}
	return t, nil
}

// roundHalfEven rounds x to digits decimal places using round-half-to-even
// (banker's rounding), per spec.md §4.5.
func roundHalfEven(x float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	scaled := x * scale
	floor := math.Floor(scaled)
	diff := scaled - floor
	var rounded float64
	switch {
	case diff < 0.5:
		rounded = floor
	case diff > 0.5:
		rounded = floor + 1
	default:
		if math.Mod(floor, 2) == 0 {
			rounded = floor
		} else {
			rounded = floor + 1
		}
	}
	return rounded / scale
}

func reboxFloat(f float64, t batch.DataType) batch.Value {
	switch t.Kind {
	case batch.KindInt32:
		return batch.Int32(int32(f))
	case batch.KindInt64:
		return batch.Int64(int64(f))
	case batch.KindFloat32:
		return batch.Float32Val(float32(f))
	default:
		return batch.Float64Val(f)
	}
}
