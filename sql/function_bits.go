package sql

import (
	"strconv"

	"github.com/flowsql/flowsql/batch"
)

// Bit functions (spec.md §4.5): bin(x, signed), hex, unhex. The `<< >> >>>
// ~` operators themselves are handled inline by the expression evaluator
// (boundexpr.go); only their named-function counterparts live here.

func init() {
	// bin(x, signed): produces the two's-complement binary string.
	registerFunction(&Function{
		Name: "bin", MinArgs: 1, MaxArgs: 2,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(batch.StringType())
			}
			signed := len(args) == 2 && !args[1].IsNull() && args[1].AsBool()
			width := 32
			if args[0].Type().Kind == batch.KindInt64 {
				width = 64
			}
			v := args[0].AsInt64()
			var u uint64
			if width == 32 {
				u = uint64(uint32(v))
			} else {
				u = uint64(v)
			}
			s := strconv.FormatUint(u, 2)
			if !signed {
				for len(s) < width {
					s = "0" + s
				}
			}
			return batch.Str(s)
		},
	})

	registerFunction(&Function{
		Name: "hex", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(batch.StringType())
			}
			switch args[0].Type().Kind {
			case batch.KindString:
				return batch.Str(bytesToHex([]byte(args[0].AsString())))
			case batch.KindBytes:
				return batch.Str(bytesToHex(args[0].AsBytes()))
			default:
				return batch.Str(strconv.FormatInt(args[0].AsInt64(), 16))
			}
		},
	})

	registerFunction(&Function{
		Name: "unhex", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.BytesType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(batch.BytesType())
			}
			b, err := hexToBytes(args[0].AsString())
			if err != nil {
				return batch.Null(batch.BytesType()) // DecodeError -> NULL
			}
			return batch.Bytes(b)
		},
	})
}

const hexDigits = "0123456789abcdef"

func bytesToHex(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0x0f]
	}
	return string(out)
}

func hexToBytes(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		s = "0" + s
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		hi, err := hexNibble(s[i*2])
		if err != nil {
			return nil, err
		}
		lo, err := hexNibble(s[i*2+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, &EvalError{Code: DecodeError, Message: "invalid hex digit"}
	}
}
