package sql

import (
	"strconv"
	"strings"

	"github.com/flowsql/flowsql/batch"
	json "github.com/segmentio/encoding/json"
)

// JSON built-ins (spec.md §4.5). Uses segmentio/encoding/json rather than
// the standard library encoding/json — the same drop-in-compatible
// decoder the input package uses for JSON-lines ingestion (see
// input/jsonlines.go), so the module pays for one JSON codec, not two.

func init() {
	registerFunction(&Function{
		Name: "get_json_object", MinArgs: 2, MaxArgs: 2,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			v, ok := jsonPathLookup(args[0], args[1])
			if !ok {
				return batch.Null(batch.StringType())
			}
			return batch.Str(jsonStringify(v))
		},
	})

	registerFunction(&Function{
		Name: "get_json_int", MinArgs: 2, MaxArgs: 2,
		CheckArgs: fixedReturn(batch.Int32Type()),
		EvalFunc: jsonTypedGetter(func(v any) (batch.Value, bool) {
			f, ok := v.(float64)
			if !ok {
				return batch.Value{}, false
			}
			return batch.Int32(int32(f)), true
		}, batch.Int32Type()),
	})
	registerFunction(&Function{
		Name: "get_json_long", MinArgs: 2, MaxArgs: 2,
		CheckArgs: fixedReturn(batch.Int64Type()),
		EvalFunc: jsonTypedGetter(func(v any) (batch.Value, bool) {
			f, ok := v.(float64)
			if !ok {
				return batch.Value{}, false
			}
			return batch.Int64(int64(f)), true
		}, batch.Int64Type()),
	})
	registerFunction(&Function{
		Name: "get_json_double", MinArgs: 2, MaxArgs: 2,
		CheckArgs: fixedReturn(batch.Float64Type()),
		EvalFunc: jsonTypedGetter(func(v any) (batch.Value, bool) {
			f, ok := v.(float64)
			if !ok {
				return batch.Value{}, false
			}
			return batch.Float64Val(f), true
		}, batch.Float64Type()),
	})
	registerFunction(&Function{
		Name: "get_json_bool", MinArgs: 2, MaxArgs: 2,
		CheckArgs: fixedReturn(batch.BooleanType()),
		EvalFunc: jsonTypedGetter(func(v any) (batch.Value, bool) {
			b, ok := v.(bool)
			if !ok {
				return batch.Value{}, false
			}
			return batch.Bool(b), true
		}, batch.BooleanType()),
	})

	// from_json(s, schema_string): parse failure -> NULL for the entire
	// result (spec.md §9, resolving the open question against
	// original_source/'s intent rather than its sometimes-struct-of-NULLs
	// behavior).
	registerFunction(&Function{
		Name: "from_json", MinArgs: 2, MaxArgs: 2,
		CheckArgs: func(argTypes []batch.DataType) (batch.DataType, error) {
			// The concrete struct type depends on the schema string's
			// *value*, not its static type, so the binder special-cases
			// from_json when the second argument is a literal (bind.go).
			// CheckArgs here only validates arity/shape for the
			// non-literal fallback case.
			return batch.StructType(nil), nil
		},
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			return fromJSON(args[0], args[1])
		},
	})

	registerFunction(&Function{
		Name: "encode_json", MinArgs: 1, MaxArgs: 2,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(batch.StringType())
			}
			pretty := len(args) == 2 && !args[1].IsNull() && args[1].AsBool()
			return batch.Str(encodeJSON(args[0], pretty))
		},
	})
}

func jsonTypedGetter(convert func(any) (batch.Value, bool), nullType batch.DataType) func([]batch.Value, *EvalCtx) batch.Value {
	return func(args []batch.Value, ctx *EvalCtx) batch.Value {
		v, ok := jsonPathLookup(args[0], args[1])
		if !ok {
			return batch.Null(nullType)
		}
		out, ok := convert(v)
		if !ok {
			return batch.Null(nullType)
		}
		return out
	}
}

// jsonPathLookup decodes s as JSON and resolves a "$.field.field[idx]"
// style path against it.
func jsonPathLookup(s, path batch.Value) (any, bool) {
	if s.IsNull() || path.IsNull() {
		return nil, false
	}
	var doc any
	if err := json.Unmarshal([]byte(s.AsString()), &doc); err != nil {
		return nil, false
	}
	segments, ok := parseJSONPath(path.AsString())
	if !ok {
		return nil, false
	}
	cur := doc
	for _, seg := range segments {
		if seg.field != "" {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			cur, ok = m[seg.field]
			if !ok {
				return nil, false
			}
		}
		if seg.hasIndex {
			arr, ok := cur.([]any)
			if !ok || seg.index < 0 || seg.index >= len(arr) {
				return nil, false
			}
			cur = arr[seg.index]
		}
	}
	return cur, true
}

type jsonPathSegment struct {
	field    string
	hasIndex bool
	index    int
}

// parseJSONPath parses "$.a.b[0].c" into segments. Malformed paths report
// ok=false, which callers treat as a JsonPathError -> NULL (spec.md §7).
func parseJSONPath(path string) ([]jsonPathSegment, bool) {
	p := strings.TrimPrefix(path, "$")
	p = strings.TrimPrefix(p, ".")
	if p == "" {
		return nil, true
	}
	var segments []jsonPathSegment
	for _, part := range strings.Split(p, ".") {
		if part == "" {
			return nil, false
		}
		field := part
		index := -1
		hasIndex := false
		if i := strings.IndexByte(part, '['); i >= 0 {
			if !strings.HasSuffix(part, "]") {
				return nil, false
			}
			field = part[:i]
			n, err := strconv.Atoi(part[i+1 : len(part)-1])
			if err != nil {
				return nil, false
			}
			index = n
			hasIndex = true
		}
		segments = append(segments, jsonPathSegment{field: field, hasIndex: hasIndex, index: index})
	}
	return segments, true
}

func jsonStringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// fromJSON parses s against the schema named by schemaStr, returning a
// Struct-typed Value, or NULL on any parse failure.
func fromJSON(s, schemaStr batch.Value) batch.Value {
	if s.IsNull() || schemaStr.IsNull() {
		return batch.Null(batch.StructType(nil))
	}
	schema, err := batch.ParseSchemaString(schemaStr.AsString())
	if err != nil {
		return batch.Null(batch.StructType(nil))
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(s.AsString()), &doc); err != nil {
		return batch.Null(batch.StructType(toStructFields(schema)))
	}
	fields := toStructFields(schema)
	vals := make([]batch.Value, len(fields))
	for i, f := range fields {
		raw, ok := doc[f.Name]
		if !ok {
			vals[i] = batch.Null(f.Type)
			continue
		}
		vals[i] = jsonValueToTyped(raw, f.Type)
	}
	return batch.StructVal(fields, vals)
}

func toStructFields(schema batch.Schema) []batch.StructField {
	fields := make([]batch.StructField, len(schema.Fields))
	for i, f := range schema.Fields {
		fields[i] = batch.StructField{Name: f.Name, Type: f.Type}
	}
	return fields
}

func jsonValueToTyped(raw any, t batch.DataType) batch.Value {
	if raw == nil {
		return batch.Null(t)
	}
	switch t.Kind {
	case batch.KindInt32:
		f, ok := raw.(float64)
		if !ok {
			return batch.Null(t)
		}
		return batch.Int32(int32(f))
	case batch.KindInt64:
		f, ok := raw.(float64)
		if !ok {
			return batch.Null(t)
		}
		return batch.Int64(int64(f))
	case batch.KindFloat32:
		f, ok := raw.(float64)
		if !ok {
			return batch.Null(t)
		}
		return batch.Float32Val(float32(f))
	case batch.KindFloat64:
		f, ok := raw.(float64)
		if !ok {
			return batch.Null(t)
		}
		return batch.Float64Val(f)
	case batch.KindBoolean:
		b, ok := raw.(bool)
		if !ok {
			return batch.Null(t)
		}
		return batch.Bool(b)
	case batch.KindString:
		s, ok := raw.(string)
		if !ok {
			return batch.Null(t)
		}
		return batch.Str(s)
	case batch.KindArray:
		arr, ok := raw.([]any)
		if !ok {
			return batch.Null(t)
		}
		vals := make([]batch.Value, len(arr))
		for i, e := range arr {
			vals[i] = jsonValueToTyped(e, *t.Elem)
		}
		return batch.Array(*t.Elem, vals)
	case batch.KindStruct:
		m, ok := raw.(map[string]any)
		if !ok {
			return batch.Null(t)
		}
		vals := make([]batch.Value, len(t.Fields))
		for i, f := range t.Fields {
			vals[i] = jsonValueToTyped(m[f.Name], f.Type)
		}
		return batch.StructVal(t.Fields, vals)
	default:
		return batch.Null(t)
	}
}

func encodeJSON(v batch.Value, pretty bool) string {
	native := valueToNative(v)
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(native, "", "  ")
	} else {
		b, err = json.Marshal(native)
	}
	if err != nil {
		return ""
	}
	return string(b)
}

func valueToNative(v batch.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Type().Kind {
	case batch.KindBoolean:
		return v.AsBool()
	case batch.KindInt32:
		return v.AsInt32()
	case batch.KindInt64:
		return v.AsInt64()
	case batch.KindFloat32, batch.KindFloat64, batch.KindDecimal:
		return v.AsFloat64()
	case batch.KindString:
		return v.AsString()
	case batch.KindBytes:
		return string(v.AsBytes())
	case batch.KindArray:
		arr := v.AsArray()
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = valueToNative(e)
		}
		return out
	case batch.KindStruct:
		st := v.AsStruct()
		out := make(map[string]any, len(st.Fields))
		for i, f := range st.Fields {
			out[f.Name] = valueToNative(st.Values[i])
		}
		return out
	default:
		return nil
	}
}
