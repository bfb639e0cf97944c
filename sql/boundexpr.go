package sql

import (
	"regexp"
	"strings"

	"github.com/flowsql/flowsql/batch"
)

// EvalCtx carries state shared across every row evaluated within one
// operator call: a single wall-clock reading so now()/current_timestamp()
// are consistent across a batch (spec.md §5).
type EvalCtx struct {
	NowMillis int64
}

// BoundExpr is a node in the typed expression tree the binder produces.
// Every node knows its own result type, matching spec.md §9's "tagged
// variant with an eval(&row) -> Value contract" design note (grounded
// also on other_examples/spirit-labs-tektite's Expression.ResultType()
// pattern).
type BoundExpr interface {
	Eval(row []batch.Value, ctx *EvalCtx) batch.Value
	Type() batch.DataType
}

// --- Column reference -------------------------------------------------

type boundColumn struct {
	index int
	typ   batch.DataType
}

func (b *boundColumn) Type() batch.DataType { return b.typ }
func (b *boundColumn) Eval(row []batch.Value, ctx *EvalCtx) batch.Value {
	return row[b.index]
}

// --- Literal ------------------------------------------------------------

type boundLiteral struct {
	val batch.Value
}

func (b *boundLiteral) Type() batch.DataType { return b.val.Type() }
func (b *boundLiteral) Eval(row []batch.Value, ctx *EvalCtx) batch.Value {
	return b.val
}

// --- Unary ---------------------------------------------------------------

type boundUnary struct {
	op      TokenType
	operand BoundExpr
	typ     batch.DataType
}

func (b *boundUnary) Type() batch.DataType { return b.typ }

func (b *boundUnary) Eval(row []batch.Value, ctx *EvalCtx) batch.Value {
	v := b.operand.Eval(row, ctx)
	switch b.op {
	case TokenNot:
		if v.IsNull() {
			return batch.Null(batch.BooleanType())
		}
		return batch.Bool(!v.AsBool())
	case TokenMinus:
		if v.IsNull() {
			return batch.Null(b.typ)
		}
		switch b.typ.Kind {
		case batch.KindInt32:
			return batch.Int32(-v.AsInt32())
		case batch.KindInt64:
			return batch.Int64(-v.AsInt64())
		case batch.KindFloat32:
			return batch.Float32Val(float32(-v.AsFloat64()))
		default:
			return batch.Float64Val(-v.AsFloat64())
		}
	case TokenPlus:
		return v
	case TokenTilde:
		if v.IsNull() {
			return batch.Null(b.typ)
		}
		if b.typ.Kind == batch.KindInt64 {
			return batch.Int64(^v.AsInt64())
		}
		return batch.Int32(^v.AsInt32())
	}
	return batch.Null(b.typ)
}

// --- Binary arithmetic / comparison / bitwise --------------------------

type boundBinary struct {
	op    TokenType
	left  BoundExpr
	right BoundExpr
	typ   batch.DataType
}

func (b *boundBinary) Type() batch.DataType { return b.typ }

func (b *boundBinary) Eval(row []batch.Value, ctx *EvalCtx) batch.Value {
	l := b.left.Eval(row, ctx)
	r := b.right.Eval(row, ctx)

	// <=> is null-safe equality, the one comparison operator that does not
	// propagate NULL (spec.md §4.3).
	if b.op == TokenNullSafeEq {
		return batch.Bool(l.Equal(r))
	}

	if l.IsNull() || r.IsNull() {
		switch b.op {
		case TokenEqual, TokenNotEqual, TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual:
			return batch.Null(batch.BooleanType())
		case TokenAnd:
			// NULL AND false => false; NULL AND true/NULL => NULL
			// (three-valued logic, spec.md §4.4).
			if (!l.IsNull() && !l.AsBool()) || (!r.IsNull() && !r.AsBool()) {
				return batch.Bool(false)
			}
			return batch.Null(batch.BooleanType())
		case TokenOr:
			if (!l.IsNull() && l.AsBool()) || (!r.IsNull() && r.AsBool()) {
				return batch.Bool(true)
			}
			return batch.Null(batch.BooleanType())
		default:
			return batch.Null(b.typ)
		}
	}

	switch b.op {
	case TokenAnd:
		return batch.Bool(l.AsBool() && r.AsBool())
	case TokenOr:
		return batch.Bool(l.AsBool() || r.AsBool())
	case TokenEqual:
		return batch.Bool(compareEqual(l, r))
	case TokenNotEqual:
		return batch.Bool(!compareEqual(l, r))
	case TokenLess:
		return batch.Bool(compareOrder(l, r) < 0)
	case TokenLessEqual:
		return batch.Bool(compareOrder(l, r) <= 0)
	case TokenGreater:
		return batch.Bool(compareOrder(l, r) > 0)
	case TokenGreaterEqual:
		return batch.Bool(compareOrder(l, r) >= 0)
	case TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent:
		return evalArith(b.op, l, r, b.typ)
	case TokenAmp, TokenPipe, TokenCaret, TokenShl, TokenShr, TokenUshr:
		return evalBitwise(b.op, l, r, b.typ)
	}
	return batch.Null(b.typ)
}

// compareEqual implements SQL `=` semantics (used outside grouping keys,
// where batch.Value.Equal's NULL-safe variant applies instead).
func compareEqual(l, r batch.Value) bool {
	if l.Type().IsNumeric() && r.Type().IsNumeric() {
		return l.AsFloat64() == r.AsFloat64()
	}
	return l.Equal(r)
}

// compareOrder returns -1/0/1; only called once both operands are
// confirmed non-null by the caller.
func compareOrder(l, r batch.Value) int {
	if l.Type().IsNumeric() && r.Type().IsNumeric() || l.Type().Kind == batch.KindTimestamp {
		lf, rf := l.AsFloat64(), r.AsFloat64()
		switch {
		case lf < rf:
			return -1
		case lf > rf:
			return 1
		default:
			return 0
		}
	}
	ls, rs := valueAsOrderableString(l), valueAsOrderableString(r)
	return strings.Compare(ls, rs)
}

func valueAsOrderableString(v batch.Value) string {
	if v.Type().Kind == batch.KindBytes {
		return string(v.AsBytes())
	}
	return v.AsString()
}

// evalArith implements spec.md §4.3's arithmetic rules: integer division
// truncates toward zero; division/modulo by zero yields NULL; overflow
// wraps in 64-bit; float arithmetic follows IEEE-754.
func evalArith(op TokenType, l, r batch.Value, typ batch.DataType) batch.Value {
	if typ.IsFloat() {
		lf, rf := l.AsFloat64(), r.AsFloat64()
		var out float64
		switch op {
		case TokenPlus:
			out = lf + rf
		case TokenMinus:
			out = lf - rf
		case TokenStar:
			out = lf * rf
		case TokenSlash:
			if rf == 0 {
				return batch.Null(typ)
			}
			out = lf / rf
		case TokenPercent:
			if rf == 0 {
				return batch.Null(typ)
			}
			out = mathMod(lf, rf)
		}
		if typ.Kind == batch.KindFloat32 {
			return batch.Float32Val(float32(out))
		}
		return batch.Float64Val(out)
	}

	li, ri := l.AsInt64(), r.AsInt64()
	var out int64
	switch op {
	case TokenPlus:
		out = li + ri
	case TokenMinus:
		out = li - ri
	case TokenStar:
		out = li * ri
	case TokenSlash:
		if ri == 0 {
			return batch.Null(typ)
		}
		out = li / ri // Go's / truncates toward zero for integers, matching spec
	case TokenPercent:
		if ri == 0 {
			return batch.Null(typ)
		}
		out = li % ri
	}
	if typ.Kind == batch.KindInt32 {
		return batch.Int32(int32(out))
	}
	return batch.Int64(out)
}

func mathMod(a, b float64) float64 {
	for a >= b {
		a -= b
	}
	for a < 0 {
		a += b
	}
	return a
}

// evalBitwise implements spec.md §4.3's bitwise/shift rules: `& | ^`
// defined at the operands' widest integer width; `<<`/`>>` arithmetic,
// `>>>` logical.
func evalBitwise(op TokenType, l, r batch.Value, typ batch.DataType) batch.Value {
	li, ri := l.AsInt64(), r.AsInt64()
	var out int64
	switch op {
	case TokenAmp:
		out = li & ri
	case TokenPipe:
		out = li | ri
	case TokenCaret:
		out = li ^ ri
	case TokenShl:
		out = li << uint64(ri)
	case TokenShr:
		out = li >> uint64(ri)
	case TokenUshr:
		out = int64(uint64(li) >> uint64(ri))
	}
	if typ.Kind == batch.KindInt32 {
		return batch.Int32(int32(out))
	}
	return batch.Int64(out)
}

// --- BETWEEN / LIKE / IN / IS NULL ---------------------------------------

type boundBetween struct {
	operand, low, high BoundExpr
	not                bool
}

func (b *boundBetween) Type() batch.DataType { return batch.BooleanType() }

func (b *boundBetween) Eval(row []batch.Value, ctx *EvalCtx) batch.Value {
	v := b.operand.Eval(row, ctx)
	lo := b.low.Eval(row, ctx)
	hi := b.high.Eval(row, ctx)

	ge := nullableCompare(v, lo, func(c int) bool { return c >= 0 })
	le := nullableCompare(v, hi, func(c int) bool { return c <= 0 })
	return maybeNegate(threeValAnd(ge, le), b.not)
}

// nullableCompare returns NULL if either operand is NULL, else the result
// of applying pred to compareOrder(a, b).
func nullableCompare(a, b batch.Value, pred func(int) bool) batch.Value {
	if a.IsNull() || b.IsNull() {
		return batch.Null(batch.BooleanType())
	}
	return batch.Bool(pred(compareOrder(a, b)))
}

func threeValAnd(l, r batch.Value) batch.Value {
	if l.IsNull() || r.IsNull() {
		if (!l.IsNull() && !l.AsBool()) || (!r.IsNull() && !r.AsBool()) {
			return batch.Bool(false)
		}
		return batch.Null(batch.BooleanType())
	}
	return batch.Bool(l.AsBool() && r.AsBool())
}

func maybeNegate(v batch.Value, not bool) batch.Value {
	if !not {
		return v
	}
	if v.IsNull() {
		return v
	}
	return batch.Bool(!v.AsBool())
}

type boundLike struct {
	operand BoundExpr
	pattern BoundExpr
	not     bool
	regex   bool
	// static holds a pre-compiled regex when the pattern argument was a
	// literal at bind time (spec.md §9: "Regex lifecycle. Compiled once
	// per bound expression").
	static *regexp.Regexp
}

func (b *boundLike) Type() batch.DataType { return batch.BooleanType() }

func (b *boundLike) Eval(row []batch.Value, ctx *EvalCtx) batch.Value {
	v := b.operand.Eval(row, ctx)
	p := b.pattern.Eval(row, ctx)
	if v.IsNull() || p.IsNull() {
		return batch.Null(batch.BooleanType())
	}
	re := b.static
	if re == nil {
		pat := p.AsString()
		if b.regex {
			compiled, err := regexp.Compile(pat)
			if err != nil {
				return batch.Null(batch.BooleanType()) // RegexError -> NULL, spec.md §9 open question (3)
			}
			re = compiled
		} else {
			compiled, err := regexp.Compile(likePatternToRegexp(pat))
			if err != nil {
				return batch.Null(batch.BooleanType())
			}
			re = compiled
		}
	}
	matched := re.MatchString(v.AsString())
	return maybeNegate(batch.Bool(matched), b.not)
}

// likePatternToRegexp translates SQL LIKE wildcards (% any string, _ any
// single char) into an anchored regex, escaping everything else.
func likePatternToRegexp(pat string) string {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range pat {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return sb.String()
}

type boundIn struct {
	operand BoundExpr
	list    []BoundExpr
	not     bool
}

func (b *boundIn) Type() batch.DataType { return batch.BooleanType() }

// Eval implements spec.md §4.3: "true if any element is =; NULL if no
// match and any element is NULL, else false".
func (b *boundIn) Eval(row []batch.Value, ctx *EvalCtx) batch.Value {
	v := b.operand.Eval(row, ctx)
	if v.IsNull() {
		return maybeNegate(batch.Null(batch.BooleanType()), b.not)
	}
	sawNull := false
	for _, item := range b.list {
		iv := item.Eval(row, ctx)
		if iv.IsNull() {
			sawNull = true
			continue
		}
		if compareEqual(v, iv) {
			return maybeNegate(batch.Bool(true), b.not)
		}
	}
	if sawNull {
		return maybeNegate(batch.Null(batch.BooleanType()), b.not)
	}
	return maybeNegate(batch.Bool(false), b.not)
}

type boundIsNull struct {
	operand BoundExpr
	not     bool
}

func (b *boundIsNull) Type() batch.DataType { return batch.BooleanType() }

func (b *boundIsNull) Eval(row []batch.Value, ctx *EvalCtx) batch.Value {
	v := b.operand.Eval(row, ctx)
	if b.not {
		return batch.Bool(!v.IsNull())
	}
	return batch.Bool(v.IsNull())
}

// --- Subscript / field access -------------------------------------------

type boundSubscript struct {
	operand BoundExpr
	index   BoundExpr
	typ     batch.DataType
}

func (b *boundSubscript) Type() batch.DataType { return b.typ }

// Eval implements spec.md §4.3: 1-based array indexing; i<1 or i>len
// yields NULL.
func (b *boundSubscript) Eval(row []batch.Value, ctx *EvalCtx) batch.Value {
	v := b.operand.Eval(row, ctx)
	idx := b.index.Eval(row, ctx)
	if v.IsNull() || idx.IsNull() {
		return batch.Null(b.typ)
	}
	arr := v.AsArray()
	i := int(idx.AsInt64())
	if i < 1 || i > len(arr) {
		return batch.Null(b.typ)
	}
	return arr[i-1]
}

type boundFieldAccess struct {
	operand BoundExpr
	field   string
	typ     batch.DataType
}

func (b *boundFieldAccess) Type() batch.DataType { return b.typ }

func (b *boundFieldAccess) Eval(row []batch.Value, ctx *EvalCtx) batch.Value {
	v := b.operand.Eval(row, ctx)
	if v.IsNull() {
		return batch.Null(b.typ)
	}
	st := v.AsStruct()
	val, ok := st.Get(b.field)
	if !ok {
		return batch.Null(b.typ)
	}
	return val
}

// --- CASE -----------------------------------------------------------------

type boundCaseWhen struct {
	cond   BoundExpr // already rewritten to a boolean-producing expr (operand = value for simple CASE)
	result BoundExpr
}

type boundCase struct {
	whens []boundCaseWhen
	els   BoundExpr // nil if no ELSE
	typ   batch.DataType
}

func (b *boundCase) Type() batch.DataType { return b.typ }

func (b *boundCase) Eval(row []batch.Value, ctx *EvalCtx) batch.Value {
	for _, w := range b.whens {
		cond := w.cond.Eval(row, ctx)
		if !cond.IsNull() && cond.AsBool() {
			return w.result.Eval(row, ctx)
		}
	}
	if b.els != nil {
		return b.els.Eval(row, ctx)
	}
	return batch.Null(b.typ)
}

// --- CAST -----------------------------------------------------------------

type boundCast struct {
	operand BoundExpr
	target  batch.DataType
}

func (b *boundCast) Type() batch.DataType { return b.target }

func (b *boundCast) Eval(row []batch.Value, ctx *EvalCtx) batch.Value {
	v := b.operand.Eval(row, ctx)
	return castValue(v, b.target)
}

// --- Function call ---------------------------------------------------------

type boundFuncCall struct {
	fn   *Function
	args []BoundExpr
	typ  batch.DataType
	star bool
}

func (b *boundFuncCall) Type() batch.DataType { return b.typ }

func (b *boundFuncCall) Eval(row []batch.Value, ctx *EvalCtx) batch.Value {
	args := make([]batch.Value, len(b.args))
	for i, a := range b.args {
		args[i] = a.Eval(row, ctx)
	}
	return b.fn.Eval(args, ctx)
}
