package sql

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/flowsql/flowsql/batch"
)

// BindOptions configures binder behavior that differs between the two
// transform façades (spec.md §4.6): the `query` transform requires an
// explicit GROUP BY before aggregates are legal; `task_aggregate` allows
// aggregates in the select list unconditionally, implicitly grouping into
// a single group when no GROUP BY is given.
type BindOptions struct {
	AllowUngroupedAggregates bool
}

// BoundLateralView is the bound form of a LATERAL VIEW clause (spec.md
// §4.1, §4.4).
type BoundLateralView struct {
	Generator   *Generator
	Args        []BoundExpr
	OutputCols  []string
	OutputTypes []batch.DataType
	Outer       bool
}

// BoundAggCall is one aggregate function call extracted from the select
// list (or HAVING) during binding of a grouped query.
type BoundAggCall struct {
	Agg        *AggregateFunc
	Arg        BoundExpr // nil for count(*)
	ArgType    batch.DataType
	Star       bool
	ResultType batch.DataType
}

// BoundQuery is the typed logical plan the binder emits (spec.md §4.2):
// `Project(exprs) [ over Filter(predicate) [ over LateralView(...) ] ]
// over Source`, or `Aggregate(groupExprs, aggExprs) over Source`.
type BoundQuery struct {
	InputSchema batch.Schema

	Subquery *BoundQuery // non-nil if FROM named a derived relation

	Lateral *BoundLateralView
	Filter  BoundExpr // non-nil only for the non-aggregate shape

	IsAggregate bool
	GroupExprs  []BoundExpr
	AggCalls    []*BoundAggCall
	Having      BoundExpr // bound against the post-aggregate combined row

	Residual     []BoundExpr // one per output column
	OutputSchema batch.Schema
}

// Bind resolves ast against inputSchema and produces a typed, immutable
// plan (spec.md §4.2). Grounded on spec.md §9's binder design notes and
// on other_examples/spirit-labs-tektite's Expression.ResultType()
// pattern; constant folding and canonicalization follow
// SnellerInc-sneller/expr's simplify.go / node.go text() style.
func Bind(ast *Query, inputSchema batch.Schema, opts BindOptions) (*BoundQuery, error) {
	b := &binder{opts: opts}
	return b.bindQuery(ast, inputSchema)
}

type binder struct {
	opts BindOptions
}

func (b *binder) bindQuery(ast *Query, inputSchema batch.Schema) (*BoundQuery, error) {
	bq := &BoundQuery{InputSchema: inputSchema}

	relationSchema := inputSchema
	if ast.From != nil && ast.From.Subquery != nil {
		sub, err := b.bindQuery(ast.From.Subquery, inputSchema)
		if err != nil {
			return nil, err
		}
		bq.Subquery = sub
		relationSchema = sub.OutputSchema
	}

	isAgg := len(ast.GroupBy) > 0
	if !isAgg && b.opts.AllowUngroupedAggregates {
		for _, item := range ast.SelectItems {
			if exprContainsAggregate(item.Expr) {
				isAgg = true
				break
			}
		}
	}

	if isAgg {
		return b.bindAggregate(ast, relationSchema, bq)
	}
	return b.bindProjectChain(ast, relationSchema, bq)
}

// bindProjectChain binds the `Project [ over Filter [ over LateralView ] ]`
// shape (spec.md §4.2).
func (b *binder) bindProjectChain(ast *Query, relationSchema batch.Schema, bq *BoundQuery) (*BoundQuery, error) {
	effectiveSchema := relationSchema

	if ast.Lateral != nil {
		lv, extended, err := b.bindLateralView(ast.Lateral, relationSchema)
		if err != nil {
			return nil, err
		}
		bq.Lateral = lv
		effectiveSchema = extended
	}

	if ast.Where != nil {
		filter, err := b.bindExpr(ast.Where, effectiveSchema)
		if err != nil {
			return nil, err
		}
		if filter.Type().Kind != batch.KindBoolean && filter.Type().Kind != batch.KindNull {
			return nil, newBindError(ArgumentTypeMismatch, 0, "WHERE predicate must be boolean, got %s", filter.Type())
		}
		if exprHasAggregate(ast.Where) {
			return nil, newBindError(IllegalAggregate, 0, "aggregate functions are not allowed in WHERE")
		}
		bq.Filter = filter
	}

	items, schema, err := b.bindSelectItems(ast.SelectItems, effectiveSchema)
	if err != nil {
		return nil, err
	}
	bq.Residual = items
	bq.OutputSchema = schema
	return bq, nil
}

// bindSelectItems binds the select list against schema, expanding `*` and
// `relation.*` (spec.md §4.2).
func (b *binder) bindSelectItems(items []SelectItem, schema batch.Schema) ([]BoundExpr, batch.Schema, error) {
	var bound []BoundExpr
	var fields []batch.Field

	for _, item := range items {
		if ident, ok := item.Expr.(*Ident); ok && ident.Name == "*" {
			for i, f := range schema.Fields {
				bound = append(bound, &boundColumn{index: i, typ: f.Type})
				fields = append(fields, batch.Field{Name: f.Name, Type: f.Type})
			}
			continue
		}
		if qi, ok := item.Expr.(*QualifiedIdent); ok && qi.Name == "*" {
			for i, f := range schema.Fields {
				bound = append(bound, &boundColumn{index: i, typ: f.Type})
				fields = append(fields, batch.Field{Name: f.Name, Type: f.Type})
			}
			continue
		}

		be, err := b.bindExpr(item.Expr, schema)
		if err != nil {
			return nil, batch.Schema{}, err
		}
		be = foldConstant(be)
		name := item.Alias
		if name == "" {
			name = canonicalName(item.Expr)
		}
		bound = append(bound, be)
		fields = append(fields, batch.Field{Name: name, Type: be.Type()})
	}

	schemaOut, err := batch.NewSchema(fields)
	if err != nil {
		return nil, batch.Schema{}, newBindError(InvalidSchemaString, 0, "%s", err)
	}
	return bound, schemaOut, nil
}

// bindLateralView binds a LATERAL VIEW clause, returning the bound form
// and the extended schema (input columns plus generator output columns)
// used by the rest of the plan (spec.md §4.4).
func (b *binder) bindLateralView(lv *LateralViewClause, schema batch.Schema) (*BoundLateralView, batch.Schema, error) {
	gen, ok := lookupGenerator(lv.Generator.Name)
	if !ok {
		return nil, batch.Schema{}, newBindError(UnknownFunction, lv.Generator.Pos, "unknown generator function %q", lv.Generator.Name)
	}
	args := make([]BoundExpr, len(lv.Generator.Args))
	argTypes := make([]batch.DataType, len(lv.Generator.Args))
	for i, a := range lv.Generator.Args {
		be, err := b.bindExpr(a, schema)
		if err != nil {
			return nil, batch.Schema{}, err
		}
		args[i] = be
		argTypes[i] = be.Type()
	}
	outTypes, err := gen.OutputTypes(argTypes)
	if err != nil {
		return nil, batch.Schema{}, err
	}
	if len(lv.OutputCols) != len(outTypes) {
		return nil, batch.Schema{}, newBindError(ArityMismatch, 0, "%s produces %d columns, %d names given", gen.Name, len(outTypes), len(lv.OutputCols))
	}
	extended := schema
	newFields := make([]batch.Field, len(outTypes))
	for i, t := range outTypes {
		newFields[i] = batch.Field{Name: lv.OutputCols[i], Type: t}
	}
	extended = extended.Append(newFields...)

	return &BoundLateralView{
		Generator:   gen,
		Args:        args,
		OutputCols:  lv.OutputCols,
		OutputTypes: outTypes,
		Outer:       lv.Outer,
	}, extended, nil
}

// --- aggregate binding ----------------------------------------------------

func (b *binder) bindAggregate(ast *Query, schema batch.Schema, bq *BoundQuery) (*BoundQuery, error) {
	groupExprs := make([]BoundExpr, len(ast.GroupBy))
	for i, e := range ast.GroupBy {
		be, err := b.bindExpr(e, schema)
		if err != nil {
			return nil, err
		}
		groupExprs[i] = be
	}
	bq.IsAggregate = true
	bq.GroupExprs = groupExprs
	groupTypes := make([]batch.DataType, len(groupExprs))
	for i, g := range groupExprs {
		groupTypes[i] = g.Type()
	}

	ctx := &aggBindCtx{binder: b, schema: schema, groupAST: ast.GroupBy, groupTypes: groupTypes}

	var fields []batch.Field
	residual := make([]BoundExpr, len(ast.SelectItems))
	for i, item := range ast.SelectItems {
		be, err := ctx.rewrite(item.Expr)
		if err != nil {
			return nil, err
		}
		be = foldConstant(be)
		residual[i] = be
		name := item.Alias
		if name == "" {
			name = canonicalName(item.Expr)
		}
		fields = append(fields, batch.Field{Name: name, Type: be.Type()})
	}
	bq.Residual = residual

	schemaOut, err := batch.NewSchema(fields)
	if err != nil {
		return nil, newBindError(InvalidSchemaString, 0, "%s", err)
	}
	bq.OutputSchema = schemaOut

	if ast.Having != nil {
		having, err := ctx.rewrite(ast.Having)
		if err != nil {
			return nil, err
		}
		bq.Having = having
	}
	bq.AggCalls = ctx.calls

	return bq, nil
}

// aggBindCtx rewrites a select-list/HAVING expression tree: aggregate
// calls become positional references into the post-aggregation "combined
// row" ([]batch.Value of group-key values followed by finalized
// accumulator values, spec.md §4.4's "evaluates the residual expression
// over finalized values"); bare references to a grouping expression
// become references to that expression's position; anything else is
// rejected as a NonGroupedColumn.
type aggBindCtx struct {
	binder     *binder
	schema     batch.Schema
	groupAST   []Expr
	groupTypes []batch.DataType
	calls      []*BoundAggCall
}

func (c *aggBindCtx) rewrite(e Expr) (BoundExpr, error) {
	if call, ok := e.(*FunctionCallExpr); ok {
		if agg, ok := lookupAggregate(call.Name); ok {
			return c.bindAggCall(call, agg)
		}
	}
	for i, g := range c.groupAST {
		if canonicalName(e) == canonicalName(g) {
			return &boundColumn{index: i, typ: c.groupTypes[i]}, nil
		}
	}
	switch node := e.(type) {
	case *Ident, *QualifiedIdent:
		return nil, newBindError(NonGroupedColumn, 0, "column %q must appear in GROUP BY or inside an aggregate", canonicalName(e))
	case *UnaryExpr:
		operand, err := c.rewrite(node.Operand)
		if err != nil {
			return nil, err
		}
		return rebuildUnary(node.Op, operand)
	case *BinaryExpr:
		left, err := c.rewrite(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.rewrite(node.Right)
		if err != nil {
			return nil, err
		}
		return rebuildBinary(node.Op, left, right)
	case *ParenExpr:
		return c.rewrite(node.Inner)
	case *CaseExpr:
		return c.rewriteCase(node)
	case *CastExpr:
		operand, err := c.rewrite(node.Operand)
		if err != nil {
			return nil, err
		}
		target, err := batch.ParseDataType(node.TypeStr)
		if err != nil {
			return nil, newBindError(InvalidSchemaString, node.Pos, "invalid CAST type %q: %s", node.TypeStr, err)
		}
		return &boundCast{operand: operand, target: target}, nil
	case *NumberLiteral, *StringLiteral, *BoolLiteral, *NullLiteral:
		return c.binder.bindExpr(e, batch.Schema{})
	case *FunctionCallExpr:
		// A non-aggregate function call over aggregate/group results,
		// e.g. round(avg(x), 2); bind each argument recursively.
		return c.bindScalarOverAggregates(node)
	default:
		return nil, newBindError(NonGroupedColumn, 0, "expression %q must appear in GROUP BY or inside an aggregate", canonicalName(e))
	}
}

func (c *aggBindCtx) rewriteCase(node *CaseExpr) (BoundExpr, error) {
	bc := &boundCase{}
	var branchTypes []batch.DataType
	var operand BoundExpr
	if node.Operand != nil {
		var err error
		operand, err = c.rewrite(node.Operand)
		if err != nil {
			return nil, err
		}
	}
	for _, w := range node.WhenList {
		var cond BoundExpr
		var err error
		if operand != nil {
			valExpr, err := c.rewrite(w.Cond)
			if err != nil {
				return nil, err
			}
			cond = &boundBinary{op: TokenEqual, left: operand, right: valExpr, typ: batch.BooleanType()}
		} else {
			cond, err = c.rewrite(w.Cond)
			if err != nil {
				return nil, err
			}
		}
		result, err := c.rewrite(w.Result)
		if err != nil {
			return nil, err
		}
		bc.whens = append(bc.whens, boundCaseWhen{cond: cond, result: result})
		branchTypes = append(branchTypes, result.Type())
	}
	if node.Else != nil {
		els, err := c.rewrite(node.Else)
		if err != nil {
			return nil, err
		}
		bc.els = els
		branchTypes = append(branchTypes, els.Type())
	}
	bc.typ = branchTypes[0]
	for _, t := range branchTypes[1:] {
		bc.typ = commonSupertype(bc.typ, t)
	}
	return bc, nil
}

func (c *aggBindCtx) bindScalarOverAggregates(call *FunctionCallExpr) (BoundExpr, error) {
	fn, ok := lookupFunction(call.Name)
	if !ok {
		return nil, newBindError(UnknownFunction, call.Pos, "unknown function %q", call.Name)
	}
	args := make([]BoundExpr, len(call.Args))
	argTypes := make([]batch.DataType, len(call.Args))
	for i, a := range call.Args {
		be, err := c.rewrite(a)
		if err != nil {
			return nil, err
		}
		args[i] = be
		argTypes[i] = be.Type()
	}
	if err := checkArity(call.Name, len(args), fn.MinArgs, fn.MaxArgs); err != nil {
		return nil, err
	}
	resultType, err := fn.CheckArgs(argTypes)
	if err != nil {
		return nil, err
	}
	return &boundFuncCall{fn: fn, args: args, typ: resultType}, nil
}

func (c *aggBindCtx) bindAggCall(call *FunctionCallExpr, agg *AggregateFunc) (BoundExpr, error) {
	if call.Star {
		if !agg.AllowStar {
			return nil, newBindError(ArgumentTypeMismatch, call.Pos, "%s does not accept *", agg.Name)
		}
		bc := &BoundAggCall{Agg: agg, Star: true, ResultType: agg.ResultType(batch.NullType())}
		c.calls = append(c.calls, bc)
		return &boundColumn{index: len(c.groupAST) + len(c.calls) - 1, typ: bc.ResultType}, nil
	}
	if len(call.Args) != 1 {
		return nil, newBindError(ArityMismatch, call.Pos, "%s expects exactly 1 argument, got %d", agg.Name, len(call.Args))
	}
	arg, err := c.binder.bindExpr(call.Args[0], c.schema)
	if err != nil {
		return nil, err
	}
	bc := &BoundAggCall{Agg: agg, Arg: arg, ArgType: arg.Type(), ResultType: agg.ResultType(arg.Type())}
	c.calls = append(c.calls, bc)
	return &boundColumn{index: len(c.groupAST) + len(c.calls) - 1, typ: bc.ResultType}, nil
}

func rebuildUnary(op TokenType, operand BoundExpr) (BoundExpr, error) {
	return &boundUnary{op: op, operand: operand, typ: unaryResultType(op, operand.Type())}, nil
}

func rebuildBinary(op TokenType, left, right BoundExpr) (BoundExpr, error) {
	return bindBinaryTyped(op, left, right)
}

// --- scalar expression binder --------------------------------------------

func (b *binder) bindExpr(e Expr, schema batch.Schema) (BoundExpr, error) {
	switch node := e.(type) {
	case *Ident:
		return b.bindIdent(node, schema)
	case *QualifiedIdent:
		return b.bindQualifiedIdent(node, schema)
	case *NumberLiteral:
		v, err := parseNumberLiteral(node)
		if err != nil {
			return nil, newBindError(ArgumentTypeMismatch, node.Pos, "%s", err)
		}
		return &boundLiteral{val: v}, nil
	case *StringLiteral:
		return &boundLiteral{val: batch.Str(node.Value)}, nil
	case *BoolLiteral:
		return &boundLiteral{val: batch.Bool(node.Value)}, nil
	case *NullLiteral:
		return &boundLiteral{val: batch.Null(batch.NullType())}, nil
	case *ParenExpr:
		return b.bindExpr(node.Inner, schema)
	case *UnaryExpr:
		operand, err := b.bindExpr(node.Operand, schema)
		if err != nil {
			return nil, err
		}
		return &boundUnary{op: node.Op, operand: operand, typ: unaryResultType(node.Op, operand.Type())}, nil
	case *BinaryExpr:
		left, err := b.bindExpr(node.Left, schema)
		if err != nil {
			return nil, err
		}
		right, err := b.bindExpr(node.Right, schema)
		if err != nil {
			return nil, err
		}
		return bindBinaryTyped(node.Op, left, right)
	case *BetweenExpr:
		operand, err := b.bindExpr(node.Operand, schema)
		if err != nil {
			return nil, err
		}
		low, err := b.bindExpr(node.Low, schema)
		if err != nil {
			return nil, err
		}
		high, err := b.bindExpr(node.High, schema)
		if err != nil {
			return nil, err
		}
		return &boundBetween{operand: operand, low: low, high: high, not: node.Not}, nil
	case *LikeExpr:
		return b.bindLike(node, schema)
	case *InExpr:
		operand, err := b.bindExpr(node.Operand, schema)
		if err != nil {
			return nil, err
		}
		list := make([]BoundExpr, len(node.List))
		for i, item := range node.List {
			be, err := b.bindExpr(item, schema)
			if err != nil {
				return nil, err
			}
			list[i] = be
		}
		return &boundIn{operand: operand, list: list, not: node.Not}, nil
	case *IsNullExpr:
		operand, err := b.bindExpr(node.Operand, schema)
		if err != nil {
			return nil, err
		}
		return &boundIsNull{operand: operand, not: node.Not}, nil
	case *SubscriptExpr:
		operand, err := b.bindExpr(node.Operand, schema)
		if err != nil {
			return nil, err
		}
		index, err := b.bindExpr(node.Index, schema)
		if err != nil {
			return nil, err
		}
		elemType := batch.NullType()
		if operand.Type().Kind == batch.KindArray && operand.Type().Elem != nil {
			elemType = *operand.Type().Elem
		}
		return &boundSubscript{operand: operand, index: index, typ: elemType}, nil
	case *FieldAccessExpr:
		operand, err := b.bindExpr(node.Operand, schema)
		if err != nil {
			return nil, err
		}
		fieldType := batch.NullType()
		if operand.Type().Kind == batch.KindStruct {
			for _, f := range operand.Type().Fields {
				if f.Name == node.Field {
					fieldType = f.Type
					break
				}
			}
		}
		return &boundFieldAccess{operand: operand, field: node.Field, typ: fieldType}, nil
	case *CaseExpr:
		return b.bindCase(node, schema)
	case *CastExpr:
		operand, err := b.bindExpr(node.Operand, schema)
		if err != nil {
			return nil, err
		}
		target, err := batch.ParseDataType(node.TypeStr)
		if err != nil {
			return nil, newBindError(InvalidSchemaString, node.Pos, "invalid CAST type %q: %s", node.TypeStr, err)
		}
		return &boundCast{operand: operand, target: target}, nil
	case *FunctionCallExpr:
		return b.bindFunctionCall(node, schema)
	default:
		return nil, newBindError(UnresolvedColumn, 0, "unsupported expression node %T", e)
	}
}

func (b *binder) bindIdent(node *Ident, schema batch.Schema) (BoundExpr, error) {
	idx, ok := schema.IndexOf(node.Name)
	if !ok {
		return nil, newBindError(UnresolvedColumn, node.Pos, "unresolved column %q", node.Name)
	}
	return &boundColumn{index: idx, typ: schema.Fields[idx].Type}, nil
}

func (b *binder) bindQualifiedIdent(node *QualifiedIdent, schema batch.Schema) (BoundExpr, error) {
	// Single-relation model: the relation qualifier is accepted but not
	// cross-checked against a table alias registry (spec.md §4.2's join
	// Non-goal means there is never more than one relation in scope).
	idx, ok := schema.IndexOf(node.Name)
	if !ok {
		return nil, newBindError(UnresolvedColumn, node.Pos, "unresolved column %q.%q", node.Relation, node.Name)
	}
	return &boundColumn{index: idx, typ: schema.Fields[idx].Type}, nil
}

func (b *binder) bindLike(node *LikeExpr, schema batch.Schema) (BoundExpr, error) {
	operand, err := b.bindExpr(node.Operand, schema)
	if err != nil {
		return nil, err
	}
	pattern, err := b.bindExpr(node.Pattern, schema)
	if err != nil {
		return nil, err
	}
	bl := &boundLike{operand: operand, pattern: pattern, not: node.Not, regex: node.Regex}
	if lit, ok := pattern.(*boundLiteral); ok && !lit.val.IsNull() {
		var pat string
		if node.Regex {
			pat = lit.val.AsString()
		} else {
			pat = likePatternToRegexp(lit.val.AsString())
		}
		re, err := compileRegexOrBindError(pat, node.Pos)
		if err != nil {
			return nil, err
		}
		bl.static = re
	}
	return bl, nil
}

func (b *binder) bindCase(node *CaseExpr, schema batch.Schema) (BoundExpr, error) {
	bc := &boundCase{}
	var operand BoundExpr
	if node.Operand != nil {
		var err error
		operand, err = b.bindExpr(node.Operand, schema)
		if err != nil {
			return nil, err
		}
	}
	var branchTypes []batch.DataType
	for _, w := range node.WhenList {
		var cond BoundExpr
		if operand != nil {
			valExpr, err := b.bindExpr(w.Cond, schema)
			if err != nil {
				return nil, err
			}
			cond = &boundBinary{op: TokenEqual, left: operand, right: valExpr, typ: batch.BooleanType()}
		} else {
			var err error
			cond, err = b.bindExpr(w.Cond, schema)
			if err != nil {
				return nil, err
			}
		}
		result, err := b.bindExpr(w.Result, schema)
		if err != nil {
			return nil, err
		}
		bc.whens = append(bc.whens, boundCaseWhen{cond: cond, result: result})
		branchTypes = append(branchTypes, result.Type())
	}
	if node.Else != nil {
		els, err := b.bindExpr(node.Else, schema)
		if err != nil {
			return nil, err
		}
		bc.els = els
		branchTypes = append(branchTypes, els.Type())
	}
	if len(branchTypes) == 0 {
		return nil, newBindError(ArgumentTypeMismatch, node.Pos, "CASE has no branches")
	}
	bc.typ = branchTypes[0]
	for _, t := range branchTypes[1:] {
		bc.typ = commonSupertype(bc.typ, t)
	}
	return bc, nil
}

func (b *binder) bindFunctionCall(node *FunctionCallExpr, schema batch.Schema) (BoundExpr, error) {
	if _, ok := lookupAggregate(node.Name); ok {
		return nil, newBindError(IllegalAggregate, node.Pos, "%s is only valid in a grouped query or task_aggregate transform", node.Name)
	}
	fn, ok := lookupFunction(node.Name)
	if !ok {
		return nil, newBindError(UnknownFunction, node.Pos, "unknown function %q", node.Name)
	}
	args := make([]BoundExpr, len(node.Args))
	argTypes := make([]batch.DataType, len(node.Args))
	for i, a := range node.Args {
		be, err := b.bindExpr(a, schema)
		if err != nil {
			return nil, err
		}
		args[i] = be
		argTypes[i] = be.Type()
	}
	if err := checkArity(node.Name, len(args), fn.MinArgs, fn.MaxArgs); err != nil {
		return nil, err
	}
	resultType, err := fn.CheckArgs(argTypes)
	if err != nil {
		return nil, err
	}
	// from_json's result type depends on its second argument's literal
	// value, not just its static type (spec.md §4.5).
	if strings.EqualFold(node.Name, "from_json") {
		if lit, ok := args[1].(*boundLiteral); ok && !lit.val.IsNull() {
			if schemaParsed, err := batch.ParseSchemaString(lit.val.AsString()); err == nil {
				resultType = batch.StructType(toStructFields(schemaParsed))
			}
		}
	}
	return &boundFuncCall{fn: fn, args: args, typ: resultType, star: node.Star}, nil
}

func compileRegexOrBindError(pattern string, pos int) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, newBindError(InvalidRegex, pos, "invalid regular expression %q: %s", pattern, err)
	}
	return re, nil
}

// unaryResultType computes the static result type of a unary operator
// (spec.md §4.3).
func unaryResultType(op TokenType, operandType batch.DataType) batch.DataType {
	switch op {
	case TokenNot:
		return batch.BooleanType()
	default:
		return operandType
	}
}

// bindBinaryTyped computes the static result type of a binary operator
// and returns the bound node (spec.md §4.2, §4.3).
func bindBinaryTyped(op TokenType, left, right BoundExpr) (BoundExpr, error) {
	switch op {
	case TokenAnd, TokenOr:
		return &boundBinary{op: op, left: left, right: right, typ: batch.BooleanType()}, nil
	case TokenEqual, TokenNotEqual, TokenNullSafeEq, TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual:
		return &boundBinary{op: op, left: left, right: right, typ: batch.BooleanType()}, nil
	case TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent:
		t, ok := coerceArith(left.Type(), right.Type())
		if !ok {
			return nil, newBindError(ArgumentTypeMismatch, 0, "incompatible operand types %s, %s", left.Type(), right.Type())
		}
		return &boundBinary{op: op, left: left, right: right, typ: t}, nil
	case TokenAmp, TokenPipe, TokenCaret, TokenShl, TokenShr, TokenUshr:
		t, ok := coerceBitwise(left.Type(), right.Type())
		if !ok {
			return nil, newBindError(ArgumentTypeMismatch, 0, "bitwise operator requires integer operands, got %s, %s", left.Type(), right.Type())
		}
		return &boundBinary{op: op, left: left, right: right, typ: t}, nil
	default:
		return nil, newBindError(ArgumentTypeMismatch, 0, "unsupported operator")
	}
}

// --- literal parsing --------------------------------------------------

func parseNumberLiteral(lit *NumberLiteral) (batch.Value, error) {
	text := lit.Text
	isDecimalForm := strings.ContainsAny(text, ".eE")
	switch lit.Suffix {
	case "L":
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return batch.Value{}, err
		}
		return batch.Int64(n), nil
	case "F":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return batch.Value{}, err
		}
		return batch.Float32Val(float32(f)), nil
	case "D":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return batch.Value{}, err
		}
		return batch.Float64Val(f), nil
	}
	if isDecimalForm {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return batch.Value{}, err
		}
		return batch.Float64Val(f), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return batch.Value{}, err
	}
	if n >= -(1<<31) && n <= 1<<31-1 {
		return batch.Int32(int32(n)), nil
	}
	return batch.Int64(n), nil
}

// --- helpers shared with aggregate binding --------------------------------

func exprContainsAggregate(e Expr) bool {
	found := false
	walkExpr(e, func(n Expr) {
		if call, ok := n.(*FunctionCallExpr); ok {
			if _, isAgg := lookupAggregate(call.Name); isAgg {
				found = true
			}
		}
	})
	return found
}

func exprHasAggregate(e Expr) bool { return exprContainsAggregate(e) }

// walkExpr calls visit on every node in the tree rooted at e.
func walkExpr(e Expr, visit func(Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch n := e.(type) {
	case *UnaryExpr:
		walkExpr(n.Operand, visit)
	case *BinaryExpr:
		walkExpr(n.Left, visit)
		walkExpr(n.Right, visit)
	case *BetweenExpr:
		walkExpr(n.Operand, visit)
		walkExpr(n.Low, visit)
		walkExpr(n.High, visit)
	case *LikeExpr:
		walkExpr(n.Operand, visit)
		walkExpr(n.Pattern, visit)
	case *InExpr:
		walkExpr(n.Operand, visit)
		for _, item := range n.List {
			walkExpr(item, visit)
		}
	case *IsNullExpr:
		walkExpr(n.Operand, visit)
	case *SubscriptExpr:
		walkExpr(n.Operand, visit)
		walkExpr(n.Index, visit)
	case *FieldAccessExpr:
		walkExpr(n.Operand, visit)
	case *CaseExpr:
		if n.Operand != nil {
			walkExpr(n.Operand, visit)
		}
		for _, w := range n.WhenList {
			walkExpr(w.Cond, visit)
			walkExpr(w.Result, visit)
		}
		if n.Else != nil {
			walkExpr(n.Else, visit)
		}
	case *CastExpr:
		walkExpr(n.Operand, visit)
	case *ParenExpr:
		walkExpr(n.Inner, visit)
	case *FunctionCallExpr:
		for _, a := range n.Args {
			walkExpr(a, visit)
		}
	}
}

// --- canonical naming (spec.md §6) ----------------------------------------

// canonicalName renders the implicit output-column name for a select item
// with no explicit alias: operators infix with spaces, function calls as
// name(arg, ...), * by itself, and a bare column reference as its original
// identifier.
func canonicalName(e Expr) string {
	switch n := e.(type) {
	case *Ident:
		return n.Name
	case *QualifiedIdent:
		return n.Relation + "." + n.Name
	case *NumberLiteral:
		return n.Text + n.Suffix
	case *StringLiteral:
		return "'" + n.Value + "'"
	case *BoolLiteral:
		if n.Value {
			return "true"
		}
		return "false"
	case *NullLiteral:
		return "NULL"
	case *UnaryExpr:
		return opText(n.Op) + canonicalName(n.Operand)
	case *BinaryExpr:
		return canonicalName(n.Left) + " " + opText(n.Op) + " " + canonicalName(n.Right)
	case *BetweenExpr:
		not := ""
		if n.Not {
			not = "NOT "
		}
		return fmt.Sprintf("%s %sBETWEEN %s AND %s", canonicalName(n.Operand), not, canonicalName(n.Low), canonicalName(n.High))
	case *LikeExpr:
		not := ""
		if n.Not {
			not = "NOT "
		}
		op := "LIKE"
		if n.Regex {
			op = "RLIKE"
		}
		return fmt.Sprintf("%s %s%s %s", canonicalName(n.Operand), not, op, canonicalName(n.Pattern))
	case *InExpr:
		parts := make([]string, len(n.List))
		for i, item := range n.List {
			parts[i] = canonicalName(item)
		}
		not := ""
		if n.Not {
			not = "NOT "
		}
		return fmt.Sprintf("%s %sIN (%s)", canonicalName(n.Operand), not, strings.Join(parts, ", "))
	case *IsNullExpr:
		not := ""
		if n.Not {
			not = " NOT"
		}
		return fmt.Sprintf("%s IS%s NULL", canonicalName(n.Operand), not)
	case *SubscriptExpr:
		return fmt.Sprintf("%s[%s]", canonicalName(n.Operand), canonicalName(n.Index))
	case *FieldAccessExpr:
		return canonicalName(n.Operand) + "." + n.Field
	case *FunctionCallExpr:
		if n.Star {
			return n.Name + "(*)"
		}
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			parts[i] = canonicalName(a)
		}
		distinct := ""
		if n.Distinct {
			distinct = "DISTINCT "
		}
		return fmt.Sprintf("%s(%s%s)", n.Name, distinct, strings.Join(parts, ", "))
	case *CastExpr:
		return fmt.Sprintf("CAST(%s AS %s)", canonicalName(n.Operand), n.TypeStr)
	case *CaseExpr:
		var sb strings.Builder
		sb.WriteString("CASE")
		if n.Operand != nil {
			sb.WriteString(" ")
			sb.WriteString(canonicalName(n.Operand))
		}
		for _, w := range n.WhenList {
			sb.WriteString(" WHEN ")
			sb.WriteString(canonicalName(w.Cond))
			sb.WriteString(" THEN ")
			sb.WriteString(canonicalName(w.Result))
		}
		if n.Else != nil {
			sb.WriteString(" ELSE ")
			sb.WriteString(canonicalName(n.Else))
		}
		sb.WriteString(" END")
		return sb.String()
	case *ParenExpr:
		return "(" + canonicalName(n.Inner) + ")"
	default:
		return ""
	}
}

func opText(t TokenType) string {
	switch t {
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenNot:
		return "NOT "
	case TokenEqual:
		return "="
	case TokenNotEqual:
		return "!="
	case TokenNullSafeEq:
		return "<=>"
	case TokenLess:
		return "<"
	case TokenLessEqual:
		return "<="
	case TokenGreater:
		return ">"
	case TokenGreaterEqual:
		return ">="
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenStar:
		return "*"
	case TokenSlash:
		return "/"
	case TokenPercent:
		return "%"
	case TokenTilde:
		return "~"
	case TokenAmp:
		return "&"
	case TokenPipe:
		return "|"
	case TokenCaret:
		return "^"
	case TokenShl:
		return "<<"
	case TokenShr:
		return ">>"
	case TokenUshr:
		return ">>>"
	default:
		return "?"
	}
}

// --- constant folding ------------------------------------------------------

// impureFunctions never get folded at bind time even with all-literal
// arguments: their result depends on the per-batch EvalCtx (spec.md §5),
// which does not exist yet during binding.
var impureFunctions = map[string]bool{
	"now": true, "current_timestamp": true, "unix_timestamp": true,
}

// foldConstant replaces a bound subexpression with its literal value when
// every leaf beneath it is already a literal and the node is pure (spec.md
// §9's binder design notes call out constant folding as a bind-time pass).
// It recurses bottom-up so nested constant expressions (e.g.
// concat(upper('a'), 'b')) fold fully.
func foldConstant(be BoundExpr) BoundExpr {
	switch n := be.(type) {
	case *boundLiteral:
		return n
	case *boundColumn:
		return n
	case *boundUnary:
		operand := foldConstant(n.operand)
		n.operand = operand
		if lit, ok := operand.(*boundLiteral); ok {
			return &boundLiteral{val: n.Eval([]batch.Value{lit.val}, &EvalCtx{})}
		}
		return n
	case *boundBinary:
		left := foldConstant(n.left)
		right := foldConstant(n.right)
		n.left, n.right = left, right
		if litL, okL := left.(*boundLiteral); okL {
			if litR, okR := right.(*boundLiteral); okR {
				return &boundLiteral{val: n.Eval([]batch.Value{litL.val, litR.val}, &EvalCtx{})}
			}
		}
		return n
	case *boundCast:
		operand := foldConstant(n.operand)
		n.operand = operand
		if lit, ok := operand.(*boundLiteral); ok {
			return &boundLiteral{val: castValue(lit.val, n.target)}
		}
		return n
	case *boundFuncCall:
		allLiteral := true
		for i, a := range n.args {
			n.args[i] = foldConstant(a)
			if _, ok := n.args[i].(*boundLiteral); !ok {
				allLiteral = false
			}
		}
		if allLiteral && !impureFunctions[strings.ToLower(n.fn.Name)] {
			vals := make([]batch.Value, len(n.args))
			for i, a := range n.args {
				vals[i] = a.(*boundLiteral).val
			}
			return &boundLiteral{val: n.fn.Eval(vals, &EvalCtx{})}
		}
		return n
	default:
		return n
	}
}
