package sql

import (
	"fmt"
	"strings"

	"github.com/flowsql/flowsql/batch"
)

// Function is one entry in the scalar function registry: a name, an
// arity/type contract checked once at bind time, and a monomorphic eval
// handler that branches on the concrete value case (spec.md §9's "Built-in
// function dispatch" design note — a name->handler map, not a deep
// inheritance hierarchy).
type Function struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 means variadic (no upper bound)
	// CheckArgs validates argument types and returns the call's result
	// type, or a *BindError (ArgumentTypeMismatch/ArityMismatch).
	CheckArgs func(argTypes []batch.DataType) (batch.DataType, error)
	// EvalFunc computes the result given evaluated argument values. It
	// must not panic on NULL arguments; the null-tolerant policy
	// (spec.md §7) is each function's own responsibility since null
	// handling varies per function (nvl/coalesce are sinks, most others
	// propagate).
	EvalFunc func(args []batch.Value, ctx *EvalCtx) batch.Value
}

// Eval adapts a Function to the BoundExpr-facing signature used by
// boundFuncCall.
func (f *Function) Eval(args []batch.Value, ctx *EvalCtx) batch.Value {
	return f.EvalFunc(args, ctx)
}

var functionRegistry = map[string]*Function{}

// registerFunction adds f to the process-wide registry, keyed by its
// lower-cased name (spec.md §4.2: "Function names are case-insensitive").
// Called only from init() functions in the function_*.go files, so the
// registry is fully populated and read-only by the time any query binds
// (spec.md §5).
func registerFunction(f *Function) {
	key := strings.ToLower(f.Name)
	if _, exists := functionRegistry[key]; exists {
		panic(fmt.Sprintf("sql: duplicate function registration %q", key))
	}
	functionRegistry[key] = f
}

func lookupFunction(name string) (*Function, bool) {
	f, ok := functionRegistry[strings.ToLower(name)]
	return f, ok
}

// checkArity validates argc against [min,max] (max==-1 meaning unbounded)
// and returns an ArityMismatch BindError if out of range.
func checkArity(name string, argc, min, max int) error {
	if argc < min || (max >= 0 && argc > max) {
		return newBindError(ArityMismatch, 0, "%s expects %s arguments, got %d", name, arityDescription(min, max), argc)
	}
	return nil
}

func arityDescription(min, max int) string {
	switch {
	case max < 0:
		return fmt.Sprintf("at least %d", min)
	case min == max:
		return fmt.Sprintf("exactly %d", min)
	default:
		return fmt.Sprintf("between %d and %d", min, max)
	}
}

// fixedReturn returns a CheckArgs implementation that ignores argument
// types entirely and always reports the same result type — used by
// functions whose signature is homogeneous regardless of input (e.g.
// length(s) -> Int64).
func fixedReturn(t batch.DataType) func([]batch.DataType) (batch.DataType, error) {
	return func(argTypes []batch.DataType) (batch.DataType, error) {
		return t, nil
	}
}
