package sql

import (
	"strings"

	"github.com/flowsql/flowsql/batch"
)

// Generator produces a (possibly empty) sequence of value tuples from one
// input row's generator-call arguments, for use by LATERAL VIEW (spec.md
// §4.4). Unlike scalar Function, a Generator's arity and per-tuple output
// types depend on its own logic rather than a uniform CheckArgs contract,
// so it gets its own small registry.
type Generator struct {
	Name       string
	NumOutputs int
	// OutputTypes returns the output column types given the call's
	// argument types, used by the binder to build the extended schema.
	OutputTypes func(argTypes []batch.DataType) ([]batch.DataType, error)
	// Produce returns zero or more output tuples for one input row.
	Produce func(args []batch.Value) [][]batch.Value
}

var generatorRegistry = map[string]*Generator{
	"explode": {
		Name:       "explode",
		NumOutputs: 1,
		OutputTypes: func(argTypes []batch.DataType) ([]batch.DataType, error) {
			if len(argTypes) != 1 || argTypes[0].Kind != batch.KindArray {
				return nil, newBindError(ArgumentTypeMismatch, 0, "explode expects a single array argument")
			}
			if argTypes[0].Elem == nil {
				return []batch.DataType{batch.NullType()}, nil
			}
			return []batch.DataType{*argTypes[0].Elem}, nil
		},
		Produce: func(args []batch.Value) [][]batch.Value {
			if args[0].IsNull() {
				return nil
			}
			arr := args[0].AsArray()
			out := make([][]batch.Value, len(arr))
			for i, e := range arr {
				out[i] = []batch.Value{e}
			}
			return out
		},
	},
	"path_file_unroll": {
		Name:       "path_file_unroll",
		NumOutputs: 2,
		OutputTypes: func(argTypes []batch.DataType) ([]batch.DataType, error) {
			if len(argTypes) != 3 {
				return nil, newBindError(ArityMismatch, 0, "path_file_unroll expects 3 arguments (path, leaf, sep)")
			}
			return []batch.DataType{batch.StringType(), batch.StringType()}, nil
		},
		// Produce tokenizes path by sep and emits, for each prefix length
		// k=1..n, a 2-tuple (prefix-path, k==n ? leaf : token_k) (spec.md
		// §4.4).
		Produce: func(args []batch.Value) [][]batch.Value {
			if args[0].IsNull() || args[1].IsNull() || args[2].IsNull() {
				return nil
			}
			path := args[0].AsString()
			leaf := args[1].AsString()
			sep := args[2].AsString()
			if sep == "" {
				return nil
			}
			tokens := strings.Split(path, sep)
			n := len(tokens)
			out := make([][]batch.Value, 0, n)
			for k := 1; k <= n; k++ {
				prefix := strings.Join(tokens[:k], sep)
				label := tokens[k-1]
				if k == n {
					label = leaf
				}
				out = append(out, []batch.Value{batch.Str(prefix), batch.Str(label)})
			}
			return out
		},
	},
}

func lookupGenerator(name string) (*Generator, bool) {
	g, ok := generatorRegistry[strings.ToLower(name)]
	return g, ok
}
