package sql

// Query is the AST root: select, from, lateral view, where, and group-by
// clauses, plus an expression tree per named item. Grounded on
// Vegasq-parcat/query/types.go's Query struct, pared to the productions
// spec.md §4.1 names and without JOIN/CTE/window/order/limit support (the
// teacher's Non-goal-excluded features — see DESIGN.md).
type Query struct {
	SelectItems []SelectItem
	From        *FromClause
	Lateral     *LateralViewClause
	Where       Expr
	GroupBy     []Expr
	Having      Expr
}

// SelectItem is one named expression in the select list: an explicit alias
// if given, else the canonical name is derived at bind time (spec.md §4.4,
// §6).
type SelectItem struct {
	Expr  Expr
	Alias string // "" if no AS given
}

// FromClause names either a table or a parenthesized subquery, with an
// optional alias (spec.md §4.1).
type FromClause struct {
	TableName string
	Subquery  *Query
	Alias     string
}

// LateralViewClause is `LATERAL VIEW [OUTER] generator(args) alias AS
// col1, col2, ...` (spec.md §4.1, §4.4).
type LateralViewClause struct {
	Outer      bool
	Generator  *FunctionCallExpr
	ViewAlias  string
	OutputCols []string
}

// Expr is any node in the expression tree. Each concrete type carries its
// own evaluation logic in the bound form (boundexpr.go); the AST form is
// purely syntactic. Grounded on spec.md §9's "tagged variant with an
// eval(&row) -> Value contract" design note.
type Expr interface {
	exprNode()
}

// Pos returns the source byte offset a node was parsed at, when available,
// for use in bind-time error messages.
type posNode struct {
	Pos int
}

// Ident is a bare or backtick-quoted column reference, or "*".
type Ident struct {
	posNode
	Name string
}

// QualifiedIdent is `relation.name` or `relation.*`.
type QualifiedIdent struct {
	posNode
	Relation string
	Name     string // "*" for relation.*
}

// NumberLiteral is a parsed numeric literal; Suffix is one of "", "L",
// "F", "D" as lexed (spec.md §4.1).
type NumberLiteral struct {
	posNode
	Text   string
	Suffix string
}

// StringLiteral is a single- or double-quoted string literal.
type StringLiteral struct {
	posNode
	Value string
}

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	posNode
	Value bool
}

// NullLiteral is the `NULL` keyword used as an expression.
type NullLiteral struct {
	posNode
}

// UnaryExpr is `- + ~ NOT` applied to Operand.
type UnaryExpr struct {
	posNode
	Op      TokenType
	Operand Expr
}

// BinaryExpr is any infix operator: logical, comparison, bitwise, shift,
// additive, multiplicative.
type BinaryExpr struct {
	posNode
	Op    TokenType
	Left  Expr
	Right Expr
}

// BetweenExpr is `expr [NOT] BETWEEN low AND high`.
type BetweenExpr struct {
	posNode
	Operand Expr
	Low     Expr
	High    Expr
	Not     bool
}

// LikeExpr is `expr [NOT] LIKE pattern` or the RLIKE/REGEXP variant.
type LikeExpr struct {
	posNode
	Operand Expr
	Pattern Expr
	Not     bool
	Regex   bool // true for RLIKE/REGEXP
}

// InExpr is `expr [NOT] IN (list...)`.
type InExpr struct {
	posNode
	Operand Expr
	List    []Expr
	Not     bool
}

// IsNullExpr is `expr IS [NOT] NULL`.
type IsNullExpr struct {
	posNode
	Operand Expr
	Not     bool
}

// SubscriptExpr is `expr[index]`, 1-based array indexing (spec.md §4.3).
type SubscriptExpr struct {
	posNode
	Operand Expr
	Index   Expr
}

// FieldAccessExpr is `expr.field`, struct field dereference.
type FieldAccessExpr struct {
	posNode
	Operand Expr
	Field   string
}

// FunctionCallExpr is `name(args...)`; Distinct is set for aggregate
// `count(DISTINCT e)`-style calls (spec.md §4.2: functions are looked up
// case-insensitively).
type FunctionCallExpr struct {
	posNode
	Name     string
	Args     []Expr
	Star     bool // true for count(*)
	Distinct bool
}

// CastExpr is `CAST(expr AS dataType)`.
type CastExpr struct {
	posNode
	Operand Expr
	TypeStr string
}

// CaseExpr covers both searched and simple CASE forms (spec.md §4.1, §4.3):
// simple form sets Operand; searched form leaves it nil.
type CaseExpr struct {
	posNode
	Operand  Expr // nil for searched CASE
	WhenList []WhenClause
	Else     Expr // nil if no ELSE given
}

// WhenClause is one `WHEN cond THEN result` (searched) or `WHEN value THEN
// result` (simple) arm.
type WhenClause struct {
	Cond   Expr // predicate (searched) or comparison value (simple)
	Result Expr
}

// ParenExpr preserves explicit parenthesization for canonical-name
// rendering parity with the source grammar; binding unwraps it.
type ParenExpr struct {
	posNode
	Inner Expr
}

func (*Ident) exprNode()            {}
func (*QualifiedIdent) exprNode()    {}
func (*NumberLiteral) exprNode()     {}
func (*StringLiteral) exprNode()     {}
func (*BoolLiteral) exprNode()       {}
func (*NullLiteral) exprNode()       {}
func (*UnaryExpr) exprNode()         {}
func (*BinaryExpr) exprNode()        {}
func (*BetweenExpr) exprNode()       {}
func (*LikeExpr) exprNode()          {}
func (*InExpr) exprNode()            {}
func (*IsNullExpr) exprNode()        {}
func (*SubscriptExpr) exprNode()     {}
func (*FieldAccessExpr) exprNode()   {}
func (*FunctionCallExpr) exprNode()  {}
func (*CastExpr) exprNode()          {}
func (*CaseExpr) exprNode()          {}
func (*ParenExpr) exprNode()         {}
