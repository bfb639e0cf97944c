package sql

import (
	"regexp"
	"strings"

	"github.com/flowsql/flowsql/batch"
)

// String built-ins (spec.md §4.5). Grounded on Vegasq-parcat/query/
// function_string.go's per-function struct layout, adapted to the
// registry-of-Function style the rest of this package uses.

func init() {
	registerFunction(&Function{
		Name: "length", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.Int64Type()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(batch.Int64Type())
			}
			return batch.Int64(int64(len(args[0].AsString())))
		},
	})

	registerFunction(&Function{
		Name: "trim", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: stringUnary(strings.TrimSpace),
	})

	registerFunction(&Function{
		Name: "lower", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: stringUnary(strings.ToLower),
	})

	registerFunction(&Function{
		Name: "upper", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: stringUnary(strings.ToUpper),
	})

	registerFunction(&Function{
		Name: "concat", MinArgs: 1, MaxArgs: -1,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			var sb strings.Builder
			for _, a := range args {
				if a.IsNull() {
					return batch.Null(batch.StringType())
				}
				sb.WriteString(a.String())
			}
			return batch.Str(sb.String())
		},
	})

	// concat_ws(sep, ...) skips nulls; empty input -> "" (spec.md §4.5).
	registerFunction(&Function{
		Name: "concat_ws", MinArgs: 1, MaxArgs: -1,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(batch.StringType())
			}
			sep := args[0].AsString()
			var parts []string
			for _, a := range args[1:] {
				if a.IsNull() {
					continue
				}
				parts = append(parts, a.String())
			}
			return batch.Str(strings.Join(parts, sep))
		},
	})

	// substr(s, start, len?): 1-based, negative start counts from end.
	registerFunction(&Function{
		Name: "substr", MinArgs: 2, MaxArgs: 3,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() || args[1].IsNull() {
				return batch.Null(batch.StringType())
			}
			s := []rune(args[0].AsString())
			start := int(args[1].AsInt64())
			n := len(s)
			idx := start - 1
			if start < 0 {
				idx = n + start
			}
			if idx < 0 {
				idx = 0
			}
			if idx > n {
				idx = n
			}
			end := n
			if len(args) == 3 && !args[2].IsNull() {
				l := int(args[2].AsInt64())
				if l < 0 {
					l = 0
				}
				if idx+l < end {
					end = idx + l
				}
			}
			if idx >= end {
				return batch.Str("")
			}
			return batch.Str(string(s[idx:end]))
		},
	})

	// split(s, sep): exact separator match.
	registerFunction(&Function{
		Name: "split", MinArgs: 2, MaxArgs: 2,
		CheckArgs: fixedReturn(batch.ArrayType(batch.StringType())),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			elemType := batch.StringType()
			if args[0].IsNull() || args[1].IsNull() {
				return batch.Null(batch.ArrayType(elemType))
			}
			parts := strings.Split(args[0].AsString(), args[1].AsString())
			vals := make([]batch.Value, len(parts))
			for i, p := range parts {
				vals[i] = batch.Str(p)
			}
			return batch.Array(elemType, vals)
		},
	})

	// split_part(s, sep, n): 1-based; n<0 counts from end; n=0 -> NULL
	// (spec.md §9 open question (2), resolved to NULL per original_source/).
	// An index out of range the other way (n beyond the part count, or n
	// more negative than -len) returns "", not NULL, matching
	// original_source/src/physical_expr/string.rs's SplitPart::null_safe_eval.
	registerFunction(&Function{
		Name: "split_part", MinArgs: 3, MaxArgs: 3,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() || args[1].IsNull() || args[2].IsNull() {
				return batch.Null(batch.StringType())
			}
			n := int(args[2].AsInt64())
			if n == 0 {
				return batch.Null(batch.StringType())
			}
			parts := strings.Split(args[0].AsString(), args[1].AsString())
			idx := n - 1
			if n < 0 {
				idx = len(parts) + n
			}
			if idx < 0 || idx >= len(parts) {
				return batch.Str("")
			}
			return batch.Str(parts[idx])
		},
	})

	registerFunction(&Function{
		Name: "replace", MinArgs: 3, MaxArgs: 3,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() || args[1].IsNull() || args[2].IsNull() {
				return batch.Null(batch.StringType())
			}
			return batch.Str(strings.ReplaceAll(args[0].AsString(), args[1].AsString(), args[2].AsString()))
		},
	})

	registerFunction(&Function{
		Name: "regexp_replace", MinArgs: 3, MaxArgs: 3,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() || args[1].IsNull() || args[2].IsNull() {
				return batch.Null(batch.StringType())
			}
			re, err := regexp.Compile(args[1].AsString())
			if err != nil {
				return batch.Null(batch.StringType()) // RegexError -> NULL
			}
			return batch.Str(re.ReplaceAllString(args[0].AsString(), args[2].AsString()))
		},
	})

	registerFunction(&Function{
		Name: "regexp_extract", MinArgs: 2, MaxArgs: 3,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() || args[1].IsNull() {
				return batch.Null(batch.StringType())
			}
			group := 0
			if len(args) == 3 && !args[2].IsNull() {
				group = int(args[2].AsInt64())
			}
			re, err := regexp.Compile(args[1].AsString())
			if err != nil {
				return batch.Null(batch.StringType())
			}
			m := re.FindStringSubmatch(args[0].AsString())
			if m == nil || group >= len(m) {
				return batch.Null(batch.StringType())
			}
			return batch.Str(m[group])
		},
	})

	// nvl(x, d): x if non-null else d (explicit null-sink, spec.md §4.5).
	registerFunction(&Function{
		Name: "nvl", MinArgs: 2, MaxArgs: 2,
		CheckArgs: func(argTypes []batch.DataType) (batch.DataType, error) {
			return commonSupertype(argTypes[0], argTypes[1]), nil
		},
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if !args[0].IsNull() {
				return args[0]
			}
			return args[1]
		},
	})

	// coalesce(x1, ...): first non-null.
	registerFunction(&Function{
		Name: "coalesce", MinArgs: 1, MaxArgs: -1,
		CheckArgs: func(argTypes []batch.DataType) (batch.DataType, error) {
			t := argTypes[0]
			for _, a := range argTypes[1:] {
				t = commonSupertype(t, a)
			}
			return t, nil
		},
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			for _, a := range args {
				if !a.IsNull() {
					return a
				}
			}
			return args[len(args)-1]
		},
	})

	// greatest/least ignore nulls; all-null -> null (spec.md §4.5).
	registerFunction(&Function{
		Name: "greatest", MinArgs: 1, MaxArgs: -1,
		CheckArgs: variadicCommonType,
		EvalFunc:  extremeFunc(func(c int) bool { return c > 0 }),
	})
	registerFunction(&Function{
		Name: "least", MinArgs: 1, MaxArgs: -1,
		CheckArgs: variadicCommonType,
		EvalFunc:  extremeFunc(func(c int) bool { return c < 0 }),
	})
}

func variadicCommonType(argTypes []batch.DataType) (batch.DataType, error) {
	t := argTypes[0]
	for _, a := range argTypes[1:] {
		t = commonSupertype(t, a)
	}
	return t, nil
}

func extremeFunc(better func(cmp int) bool) func([]batch.Value, *EvalCtx) batch.Value {
	return func(args []batch.Value, ctx *EvalCtx) batch.Value {
		var best batch.Value
		found := false
		for _, a := range args {
			if a.IsNull() {
				continue
			}
			if !found || better(compareOrder(a, best)) {
				best = a
				found = true
			}
		}
		if !found {
			return batch.Null(args[0].Type())
		}
		return best
	}
}

func stringUnary(f func(string) string) func([]batch.Value, *EvalCtx) batch.Value {
	return func(args []batch.Value, ctx *EvalCtx) batch.Value {
		if args[0].IsNull() {
			return batch.Null(batch.StringType())
		}
		return batch.Str(f(args[0].AsString()))
	}
}
