package sql

import (
	"strconv"
	"strings"
	"time"

	"github.com/flowsql/flowsql/batch"
)

// coerceArith returns the common widest type two operand types must
// promote to for arithmetic, and whether the pairing is legal at all
// (booleans never coerce to numeric except through explicit CAST,
// spec.md §4.2).
func coerceArith(a, b batch.DataType) (batch.DataType, bool) {
	if a.Kind == batch.KindBoolean || b.Kind == batch.KindBoolean {
		return batch.DataType{}, false
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		return batch.DataType{}, false
	}
	return batch.WidestNumeric(a, b), true
}

// coerceBitwise picks Int64 if either operand is Int64, else Int32.
func coerceBitwise(a, b batch.DataType) (batch.DataType, bool) {
	if !a.IsInteger() || !b.IsInteger() {
		return batch.DataType{}, false
	}
	if a.Kind == batch.KindInt64 || b.Kind == batch.KindInt64 {
		return batch.Int64Type(), true
	}
	return batch.Int32Type(), true
}

// commonSupertype returns the common supertype of two expression result
// types, used by CASE (spec.md §4.2: "CASE returns the common supertype
// of all branch result types").
func commonSupertype(a, b batch.DataType) batch.DataType {
	if a.Kind == batch.KindNull {
		return b
	}
	if b.Kind == batch.KindNull {
		return a
	}
	if a.Equal(b) {
		return a
	}
	if a.IsNumeric() && b.IsNumeric() {
		return batch.WidestNumeric(a, b)
	}
	// No common ground (e.g. string vs struct): fall back to string, the
	// universal printable representation.
	return batch.StringType()
}

// castValue implements spec.md §4.5's cast table: Null -> Null; numeric ->
// numeric widens or narrows with overflow -> NULL; string -> numeric uses
// strict parsing, failure -> NULL; *->String uses the canonical printed
// form; timestamp<->string uses "yyyy-MM-dd HH:mm:ss[.fff]".
func castValue(v batch.Value, target batch.DataType) batch.Value {
	if v.IsNull() {
		return batch.Null(target)
	}
	if v.Type().Equal(target) {
		return v
	}

	switch target.Kind {
	case batch.KindString:
		if v.Type().Kind == batch.KindTimestamp {
			return batch.Str(formatTimestamp(v.AsInt64(), v.Type().Unit))
		}
		return batch.Str(v.String())
	case batch.KindInt32, batch.KindInt64:
		return castToInt(v, target)
	case batch.KindFloat32, batch.KindFloat64:
		return castToFloat(v, target)
	case batch.KindBoolean:
		if v.Type().Kind == batch.KindBoolean {
			return v
		}
		return batch.Null(target) // no implicit boolean coercion (spec.md §4.2)
	case batch.KindTimestamp:
		return castToTimestamp(v, target)
	default:
		return batch.Null(target)
	}
}

func castToInt(v batch.Value, target batch.DataType) batch.Value {
	var f float64
	switch v.Type().Kind {
	case batch.KindString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.AsString()), 64)
		if err != nil {
			return batch.Null(target)
		}
		f = parsed
	case batch.KindInt32, batch.KindInt64, batch.KindFloat32, batch.KindFloat64, batch.KindDecimal, batch.KindTimestamp:
		f = v.AsFloat64()
	default:
		return batch.Null(target)
	}
	if target.Kind == batch.KindInt32 {
		if f > 1<<31-1 || f < -(1<<31) {
			return batch.Null(target) // OverflowOnCast -> NULL, spec.md §7
		}
		return batch.Int32(int32(f))
	}
	return batch.Int64(int64(f))
}

func castToFloat(v batch.Value, target batch.DataType) batch.Value {
	var f float64
	switch v.Type().Kind {
	case batch.KindString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.AsString()), 64)
		if err != nil {
			return batch.Null(target)
		}
		f = parsed
	case batch.KindInt32, batch.KindInt64, batch.KindFloat32, batch.KindFloat64, batch.KindDecimal, batch.KindTimestamp:
		f = v.AsFloat64()
	default:
		return batch.Null(target)
	}
	if target.Kind == batch.KindFloat32 {
		return batch.Float32Val(float32(f))
	}
	return batch.Float64Val(f)
}

const timestampLayout = "2006-01-02 15:04:05.000"
const timestampLayoutNoMillis = "2006-01-02 15:04:05"

func castToTimestamp(v batch.Value, target batch.DataType) batch.Value {
	switch v.Type().Kind {
	case batch.KindString:
		t, ok := parseTimestampString(v.AsString())
		if !ok {
			return batch.Null(target)
		}
		return batch.Timestamp(unitFromTime(t, target.Unit), target.Unit)
	case batch.KindInt32, batch.KindInt64:
		return batch.Timestamp(v.AsInt64(), target.Unit)
	default:
		return batch.Null(target)
	}
}

func parseTimestampString(s string) (time.Time, bool) {
	for _, layout := range []string{timestampLayout, timestampLayoutNoMillis} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func unitFromTime(t time.Time, unit batch.TimeUnit) int64 {
	switch unit {
	case batch.UnitSecond:
		return t.Unix()
	case batch.UnitMicro:
		return t.UnixMicro()
	case batch.UnitNano:
		return t.UnixNano()
	default:
		return t.UnixMilli()
	}
}

// formatTimestamp renders a timestamp count at unit as
// "yyyy-MM-dd HH:mm:ss.fff" (spec.md §4.5).
func formatTimestamp(count int64, unit batch.TimeUnit) string {
	t := timeFromCount(count, unit)
	return t.UTC().Format(timestampLayout)
}

func timeFromCount(count int64, unit batch.TimeUnit) time.Time {
	switch unit {
	case batch.UnitSecond:
		return time.Unix(count, 0)
	case batch.UnitMicro:
		return time.UnixMicro(count)
	case batch.UnitNano:
		return time.Unix(0, count)
	default:
		return time.UnixMilli(count)
	}
}
