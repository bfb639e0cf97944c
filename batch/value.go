package batch

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a tagged variant aligned with DataType, plus Null. It is the
// runtime counterpart of DataType: every Value carries the type it was
// produced as, even when its payload is absent (Null).
//
// Booleans follow three-valued logic at the expression-evaluation layer
// (package sql); Value itself is just storage. Strings are UTF-8; Bytes are
// opaque octets. Timestamps are an integer count since the Unix epoch at
// the type's declared Unit.
type Value struct {
	typ  DataType
	null bool

	i   int64   // Boolean (0/1), Int32, Int64, Timestamp
	f   float64 // Float32, Float64, Decimal
	s   string  // String
	b   []byte  // Bytes
	arr []Value // Array
	st  *Struct // Struct
}

// Struct is an ordered set of named field values, aligned positionally with
// its DataType's Fields.
type Struct struct {
	Fields []StructField
	Values []Value
}

// Get returns the value of the named field and whether it was found.
func (s *Struct) Get(name string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	for i, f := range s.Fields {
		if f.Name == name {
			return s.Values[i], true
		}
	}
	return Value{}, false
}

func Null(t DataType) Value           { return Value{typ: t, null: true} }
func Bool(v bool) Value               { return Value{typ: BooleanType(), i: boolToInt(v)} }
func Int32(v int32) Value             { return Value{typ: Int32Type(), i: int64(v)} }
func Int64(v int64) Value             { return Value{typ: Int64Type(), i: v} }
func Float32Val(v float32) Value      { return Value{typ: Float32Type(), f: float64(v)} }
func Float64Val(v float64) Value      { return Value{typ: Float64Type(), f: v} }
func Str(v string) Value              { return Value{typ: StringType(), s: v} }
func Bytes(v []byte) Value            { return Value{typ: BytesType(), b: v} }
func Timestamp(v int64, u TimeUnit) Value {
	return Value{typ: TimestampType(u), i: v}
}
func Decimal(v float64, precision, scale int) Value {
	return Value{typ: DecimalType(precision, scale), f: v}
}

func Array(elem DataType, vals []Value) Value {
	return Value{typ: ArrayType(elem), arr: vals}
}

func StructVal(fields []StructField, vals []Value) Value {
	return Value{typ: StructType(fields), st: &Struct{Fields: fields, Values: vals}}
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func (v Value) Type() DataType { return v.typ }
func (v Value) IsNull() bool   { return v.null }

func (v Value) AsBool() bool   { return v.i != 0 }
func (v Value) AsInt64() int64 { return v.i }
func (v Value) AsInt32() int32 { return int32(v.i) }

// AsFloat64 returns the value as a float64 regardless of whether it was
// stored in the integer or float slot of Value, widening as needed.
func (v Value) AsFloat64() float64 {
	switch v.typ.Kind {
	case KindInt32, KindInt64, KindTimestamp, KindBoolean:
		return float64(v.i)
	default:
		return v.f
	}
}

func (v Value) AsString() string  { return v.s }
func (v Value) AsBytes() []byte   { return v.b }
func (v Value) AsArray() []Value  { return v.arr }
func (v Value) AsStruct() *Struct { return v.st }

// WithType returns a copy of v tagged with a different DataType without
// converting the payload — used when a NULL of one declared type needs to
// be reported as a NULL of another (e.g. lifting a residual-expression
// NULL to the aggregate's output type).
func (v Value) WithType(t DataType) Value {
	v.typ = t
	return v
}

// Equal implements value equality used by grouping keys (spec.md §4.4: "NULLs
// compare equal within keys") and by IN-list / CASE WHEN matching (which use
// SQL `=` semantics elsewhere — see package sql's compareEqual for that).
func (v Value) Equal(other Value) bool {
	if v.null != other.null {
		return false
	}
	if v.null {
		return true
	}
	if v.typ.Kind != other.typ.Kind {
		return false
	}
	switch v.typ.Kind {
	case KindBoolean, KindInt32, KindInt64, KindTimestamp:
		return v.i == other.i
	case KindFloat32, KindFloat64, KindDecimal:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindBytes:
		return string(v.b) == string(other.b)
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindStruct:
		if v.st == nil || other.st == nil {
			return v.st == other.st
		}
		if len(v.st.Values) != len(other.st.Values) {
			return false
		}
		for i := range v.st.Values {
			if !v.st.Values[i].Equal(other.st.Values[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the canonical printed form used by cast-to-string and by
// debugging/log output. It follows spec.md §4.5's cast table:
// timestamp<->string uses "yyyy-MM-dd HH:mm:ss[.fff]" (see package sql's
// date/time functions for that formatting; Value.String keeps the raw
// integer count for timestamps since it has no unit-to-wall-clock logic of
// its own).
func (v Value) String() string {
	if v.null {
		return "NULL"
	}
	switch v.typ.Kind {
	case KindBoolean:
		return strconv.FormatBool(v.i != 0)
	case KindInt32, KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindTimestamp:
		return strconv.FormatInt(v.i, 10)
	case KindFloat32, KindFloat64, KindDecimal:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindBytes:
		return string(v.b)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindStruct:
		if v.st == nil {
			return "{}"
		}
		parts := make([]string, len(v.st.Values))
		for i, e := range v.st.Values {
			parts[i] = fmt.Sprintf("%s:%s", v.st.Fields[i].Name, e.String())
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return ""
	}
}
