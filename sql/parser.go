package sql

import (
	"fmt"
)

// MaxExpressionDepth bounds expression nesting to guard against stack
// exhaustion on malicious or malformed SQL text. Grounded on
// Vegasq-parcat's internal/query/validation.go ExpressionDepthCounter.
const MaxExpressionDepth = 100

// depthGuard is entered at the top of parseOr, parseAnd, parsePredicate and
// parseComparison and exited via defer. Every parenthesized or argument
// sub-expression re-enters parseOr and so counts; chains of prefix NOT or
// unary operators do not.
type depthGuard struct {
	depth    int
	maxDepth int
}

func newDepthGuard() *depthGuard {
	return &depthGuard{maxDepth: MaxExpressionDepth}
}

func (g *depthGuard) enter(pos int) error {
	g.depth++
	if g.depth > g.maxDepth {
		return &ParseError{Pos: pos, Message: fmt.Sprintf("expression nested too deeply (max %d)", g.maxDepth)}
	}
	return nil
}

func (g *depthGuard) exit() { g.depth-- }

// Parser turns a token stream into a Query AST. Grounded on
// Vegasq-parcat/query/parser.go's token-cursor structure (current/peek/
// advance/expect), re-targeted at spec.md §4.1's grammar.
type Parser struct {
	tokens []Token
	pos    int
	depth  *depthGuard
}

// Parse tokenizes and parses a full SQL query string.
func Parse(sqlText string) (*Query, error) {
	lex := NewLexer(sqlText)
	var tokens []Token
	for {
		tok := lex.NextToken()
		if tok.Type == TokenError {
			return nil, &ParseError{Pos: tok.Pos, Message: fmt.Sprintf("unexpected character %q", tok.Text)}
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	p := &Parser{tokens: tokens, depth: newDepthGuard()}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenEOF {
		return nil, &ParseError{Pos: p.current().Pos, Message: fmt.Sprintf("unexpected trailing input %q", p.current().Text)}
	}
	return q, nil
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() Token {
	tok := p.current()
	p.pos++
	return tok
}

func (p *Parser) expect(t TokenType, what string) (Token, error) {
	if p.current().Type != t {
		return Token{}, &ParseError{Pos: p.current().Pos, Message: fmt.Sprintf("expected %s, got %q", what, p.current().Text), Expected: []string{what}}
	}
	return p.advance(), nil
}

// parseQuery parses `selectClause fromClause? lateralView? whereClause?
// aggregationClause?` (spec.md §4.1).
func (p *Parser) parseQuery() (*Query, error) {
	if _, err := p.expect(TokenSelect, "SELECT"); err != nil {
		return nil, err
	}

	items, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}
	q := &Query{SelectItems: items}

	if p.current().Type == TokenFrom {
		p.advance()
		from, err := p.parseFromClause()
		if err != nil {
			return nil, err
		}
		q.From = from
	}

	if p.current().Type == TokenLateral {
		lv, err := p.parseLateralView()
		if err != nil {
			return nil, err
		}
		q.Lateral = lv
	}

	if p.current().Type == TokenWhere {
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		q.Where = expr
	}

	if p.current().Type == TokenGroup {
		p.advance()
		if _, err := p.expect(TokenBy, "BY"); err != nil {
			return nil, err
		}
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		q.GroupBy = exprs
	}

	if p.current().Type == TokenHaving {
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		q.Having = expr
	}

	return q, nil
}

func (p *Parser) parseSelectList() ([]SelectItem, error) {
	var items []SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.current().Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	return items, nil
}

// parseSelectItem parses one named expression: optional AS, unquoted or
// backtick-quoted alias (spec.md §4.1).
func (p *Parser) parseSelectItem() (SelectItem, error) {
	expr, err := p.parseOr()
	if err != nil {
		return SelectItem{}, err
	}
	alias := ""
	if p.current().Type == TokenAs {
		p.advance()
		a, err := p.parseAliasName()
		if err != nil {
			return SelectItem{}, err
		}
		alias = a
	} else if p.current().Type == TokenIdent || p.current().Type == TokenQuotedIdent {
		alias = p.advance().Text
	}
	return SelectItem{Expr: expr, Alias: alias}, nil
}

func (p *Parser) parseAliasName() (string, error) {
	switch p.current().Type {
	case TokenIdent, TokenQuotedIdent:
		return p.advance().Text, nil
	default:
		return "", &ParseError{Pos: p.current().Pos, Message: "expected alias name after AS"}
	}
}

func (p *Parser) parseFromClause() (*FromClause, error) {
	fc := &FromClause{}
	if p.current().Type == TokenLParen {
		p.advance()
		sub, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen, ")"); err != nil {
			return nil, err
		}
		fc.Subquery = sub
	} else {
		tok, err := p.expect(TokenIdent, "table name")
		if err != nil {
			return nil, err
		}
		fc.TableName = tok.Text
	}
	if p.current().Type == TokenAs {
		p.advance()
	}
	if p.current().Type == TokenIdent {
		fc.Alias = p.advance().Text
	}
	return fc, nil
}

// parseLateralView parses `LATERAL VIEW [OUTER] generator(args) alias AS
// col1, col2, ...` (spec.md §4.1).
func (p *Parser) parseLateralView() (*LateralViewClause, error) {
	if _, err := p.expect(TokenLateral, "LATERAL"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenView, "VIEW"); err != nil {
		return nil, err
	}
	lv := &LateralViewClause{}
	if p.current().Type == TokenOuter {
		lv.Outer = true
		p.advance()
	}
	gen, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	call, ok := gen.(*FunctionCallExpr)
	if !ok {
		return nil, &ParseError{Pos: p.current().Pos, Message: "expected generator function call after LATERAL VIEW [OUTER]"}
	}
	lv.Generator = call

	if p.current().Type == TokenIdent {
		lv.ViewAlias = p.advance().Text
	}
	if p.current().Type == TokenAs {
		p.advance()
	}
	for {
		tok, err := p.expect(TokenIdent, "output column name")
		if err != nil {
			return nil, err
		}
		lv.OutputCols = append(lv.OutputCols, tok.Text)
		if p.current().Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	return lv, nil
}

func (p *Parser) parseExprList() ([]Expr, error) {
	var exprs []Expr
	for {
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if p.current().Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	return exprs, nil
}
