// Package batch implements the row-batch data model: data types, values,
// schemas, and the row batches that flow between the SQL operators in the
// sibling sql package.
//
// A batch carries no time watermark or key; row order is preserved by every
// stateless operator. A batch is immutable once handed to an operator — see
// package sql for the operators that read batches and produce new ones.
package batch

import (
	"fmt"
	"strings"
)

// Kind tags the variant of a DataType.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindString
	KindBytes
	KindTimestamp
	KindArray
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTimestamp:
		return "timestamp"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// TimeUnit is the granularity a Timestamp value is counted in, relative to
// the Unix epoch.
type TimeUnit int

const (
	UnitSecond TimeUnit = iota
	UnitMilli
	UnitMicro
	UnitNano
)

func (u TimeUnit) String() string {
	switch u {
	case UnitSecond:
		return "sec"
	case UnitMilli:
		return "milli"
	case UnitMicro:
		return "micro"
	case UnitNano:
		return "nano"
	default:
		return "sec"
	}
}

// StructField is one named, typed member of a Struct DataType. Field order
// is significant: it is the row-positional order used everywhere else in
// this package.
type StructField struct {
	Name string
	Type DataType
}

// DataType is a tagged variant over the types spec.md §3 names. Every value
// of every Kind is independently nullable at runtime (DataType itself
// carries no nullability flag — see Value.IsNull).
type DataType struct {
	Kind Kind

	// Decimal
	Precision int
	Scale     int

	// Timestamp
	Unit TimeUnit

	// Array
	Elem *DataType

	// Struct, ordered
	Fields []StructField
}

func NullType() DataType    { return DataType{Kind: KindNull} }
func BooleanType() DataType { return DataType{Kind: KindBoolean} }
func Int32Type() DataType   { return DataType{Kind: KindInt32} }
func Int64Type() DataType   { return DataType{Kind: KindInt64} }
func Float32Type() DataType { return DataType{Kind: KindFloat32} }
func Float64Type() DataType { return DataType{Kind: KindFloat64} }
func StringType() DataType  { return DataType{Kind: KindString} }
func BytesType() DataType   { return DataType{Kind: KindBytes} }

func DecimalType(precision, scale int) DataType {
	return DataType{Kind: KindDecimal, Precision: precision, Scale: scale}
}

func TimestampType(unit TimeUnit) DataType {
	return DataType{Kind: KindTimestamp, Unit: unit}
}

func ArrayType(elem DataType) DataType {
	return DataType{Kind: KindArray, Elem: &elem}
}

func StructType(fields []StructField) DataType {
	return DataType{Kind: KindStruct, Fields: fields}
}

// IsNumeric reports whether t is one of the fixed-width numeric kinds
// (integer or float; Decimal counts as numeric too).
func (t DataType) IsNumeric() bool {
	switch t.Kind {
	case KindInt32, KindInt64, KindFloat32, KindFloat64, KindDecimal:
		return true
	default:
		return false
	}
}

// IsInteger reports whether t is Int32 or Int64.
func (t DataType) IsInteger() bool {
	return t.Kind == KindInt32 || t.Kind == KindInt64
}

// IsFloat reports whether t is Float32 or Float64.
func (t DataType) IsFloat() bool {
	return t.Kind == KindFloat32 || t.Kind == KindFloat64
}

// Equal reports structural equality between two data types.
func (t DataType) Equal(other DataType) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindDecimal:
		return t.Precision == other.Precision && t.Scale == other.Scale
	case KindTimestamp:
		return t.Unit == other.Unit
	case KindArray:
		if t.Elem == nil || other.Elem == nil {
			return t.Elem == other.Elem
		}
		return t.Elem.Equal(*other.Elem)
	case KindStruct:
		if len(t.Fields) != len(other.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Name != other.Fields[i].Name || !t.Fields[i].Type.Equal(other.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the canonical printed form of a DataType, used by CAST
// error messages and by the schema-string round trip.
func (t DataType) String() string {
	switch t.Kind {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInt32:
		return "int"
	case KindInt64:
		return "bigint"
	case KindFloat32:
		return "float"
	case KindFloat64:
		return "double"
	case KindDecimal:
		return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale)
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTimestamp:
		return "timestamp"
	case KindArray:
		if t.Elem == nil {
			return "array<null>"
		}
		return fmt.Sprintf("array<%s>", t.Elem.String())
	case KindStruct:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = fmt.Sprintf("%s:%s", quoteIfNeeded(f.Name), f.Type.String())
		}
		return fmt.Sprintf("struct<%s>", strings.Join(parts, ","))
	default:
		return "unknown"
	}
}

func quoteIfNeeded(name string) string {
	for _, r := range name {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return "`" + name + "`"
		}
	}
	if name == "" {
		return "``"
	}
	return name
}

// WidestNumeric returns the common supertype two numeric types must be
// promoted to for arithmetic, per spec.md §4.2/§4.3. Decimal widens to
// Float64 for simplicity (this design doesn't keep exact decimal
// arithmetic beyond parsing/printing).
func WidestNumeric(a, b DataType) DataType {
	if a.Kind == KindDecimal {
		a = Float64Type()
	}
	if b.Kind == KindDecimal {
		b = Float64Type()
	}
	rank := func(t DataType) int {
		switch t.Kind {
		case KindInt32:
			return 0
		case KindInt64:
			return 1
		case KindFloat32:
			return 2
		case KindFloat64:
			return 3
		default:
			return -1
		}
	}
	ra, rb := rank(a), rank(b)
	if ra < 0 || rb < 0 {
		return Float64Type()
	}
	if ra >= rb {
		return a
	}
	return b
}
