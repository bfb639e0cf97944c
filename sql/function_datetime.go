package sql

import (
	"strconv"
	"strings"
	"time"

	"github.com/flowsql/flowsql/batch"
)

// Date/time built-ins (spec.md §4.5). now()-class functions read ctx
// rather than calling time.Now() themselves, so every row in a batch sees
// the same wall-clock reading (spec.md §5).

func init() {
	registerFunction(&Function{
		Name: "current_timestamp", MinArgs: 0, MaxArgs: 0,
		CheckArgs: fixedReturn(batch.TimestampType(batch.UnitMilli)),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			return batch.Timestamp(ctx.NowMillis, batch.UnitMilli)
		},
	})
	registerFunction(&Function{
		Name: "now", MinArgs: 0, MaxArgs: 0,
		CheckArgs: fixedReturn(batch.TimestampType(batch.UnitMilli)),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			return batch.Timestamp(ctx.NowMillis, batch.UnitMilli)
		},
	})

	registerFunction(&Function{
		Name: "from_unixtime", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.TimestampType(batch.UnitSecond)),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(batch.TimestampType(batch.UnitSecond))
			}
			return batch.Timestamp(args[0].AsInt64(), batch.UnitSecond)
		},
	})

	registerFunction(&Function{
		Name: "from_unixtime_millis", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.TimestampType(batch.UnitMilli)),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(batch.TimestampType(batch.UnitMilli))
			}
			return batch.Timestamp(args[0].AsInt64(), batch.UnitMilli)
		},
	})

	// unix_timestamp(): now in seconds. unix_timestamp(s) / to_unix_timestamp(s|ts):
	// parses "yyyy-MM-dd HH:mm:ss[.SSS]" or accepts a timestamp directly.
	registerFunction(&Function{
		Name: "unix_timestamp", MinArgs: 0, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.Int64Type()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if len(args) == 0 {
				return batch.Int64(ctx.NowMillis / 1000)
			}
			return toUnixTimestamp(args[0])
		},
	})
	registerFunction(&Function{
		Name: "to_unix_timestamp", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.Int64Type()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			return toUnixTimestamp(args[0])
		},
	})

	// timestamp(s): cast a string/number to Timestamp.
	registerFunction(&Function{
		Name: "timestamp", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.TimestampType(batch.UnitMilli)),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			return castValue(args[0], batch.TimestampType(batch.UnitMilli))
		},
	})

	registerFunction(&Function{
		Name: "date_trunc", MinArgs: 2, MaxArgs: 2,
		CheckArgs: func(argTypes []batch.DataType) (batch.DataType, error) {
			if argTypes[1].Kind != batch.KindTimestamp {
				return batch.TimestampType(batch.UnitMilli), nil
			}
			return argTypes[1], nil
		},
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() || args[1].IsNull() {
				return batch.Null(args[1].Type())
			}
			return dateTrunc(args[1], args[0].AsString())
		},
	})

	registerFunction(&Function{
		Name: "date_floor", MinArgs: 2, MaxArgs: 2,
		CheckArgs: func(argTypes []batch.DataType) (batch.DataType, error) {
			return argTypes[0], nil
		},
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() || args[1].IsNull() {
				return batch.Null(args[0].Type())
			}
			return dateFloor(args[0], args[1].AsString())
		},
	})
}

const dateTimeLayoutMillis = "2006-01-02 15:04:05.000"
const dateTimeLayout = "2006-01-02 15:04:05"

func toUnixTimestamp(v batch.Value) batch.Value {
	if v.IsNull() {
		return batch.Null(batch.Int64Type())
	}
	if v.Type().Kind == batch.KindTimestamp {
		return batch.Int64(unitToSeconds(v.AsInt64(), v.Type().Unit))
	}
	t, ok := parseTimestampString(v.AsString())
	if !ok {
		return batch.Null(batch.Int64Type())
	}
	return batch.Int64(t.Unix())
}

func unitToSeconds(count int64, unit batch.TimeUnit) int64 {
	switch unit {
	case batch.UnitSecond:
		return count
	case batch.UnitMicro:
		return count / 1_000_000
	case batch.UnitNano:
		return count / 1_000_000_000
	default:
		return count / 1000
	}
}

// dateTrunc truncates ts down to unit (second|minute|hour|day).
func dateTrunc(v batch.Value, unit string) batch.Value {
	t := timeFromCount(v.AsInt64(), v.Type().Unit).UTC()
	var truncated time.Time
	switch strings.ToLower(unit) {
	case "second":
		truncated = t.Truncate(time.Second)
	case "minute":
		truncated = t.Truncate(time.Minute)
	case "hour":
		truncated = t.Truncate(time.Hour)
	case "day":
		truncated = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return batch.Null(v.Type())
	}
	return batch.Timestamp(unitFromTime(truncated, v.Type().Unit), v.Type().Unit)
}

// dateFloor floors ts to an arbitrary integer multiple of a unit, spec
// "N unit" e.g. "5 minute" (spec.md §4.5).
func dateFloor(v batch.Value, spec string) batch.Value {
	fields := strings.Fields(spec)
	if len(fields) != 2 {
		return batch.Null(v.Type())
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return batch.Null(v.Type())
	}
	var unitDur time.Duration
	switch strings.ToLower(fields[1]) {
	case "second", "seconds":
		unitDur = time.Second
	case "minute", "minutes":
		unitDur = time.Minute
	case "hour", "hours":
		unitDur = time.Hour
	case "day", "days":
		unitDur = 24 * time.Hour
	default:
		return batch.Null(v.Type())
	}
	step := unitDur * time.Duration(n)
	t := timeFromCount(v.AsInt64(), v.Type().Unit).UTC()
	floored := t.Truncate(step)
	return batch.Timestamp(unitFromTime(floored, v.Type().Unit), v.Type().Unit)
}
