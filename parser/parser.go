// Package parser provides a recursive descent SQL parser over a CSV-backed
// query language, implementing the grammar precedence levels described in
// the expression/condition layer files of this package.
package parser

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/lexer"
	"github.com/cqsql/cq/token"
)

// Parser is a recursive descent SQL parser.
type Parser struct {
	lexer  *lexer.Lexer
	errors []ParseError
	cur    token.Item
	force  bool // allows DELETE without WHERE (CLI force flag, threaded in)
}

// ParseError reports a parse failure with source position.
type ParseError struct {
	Pos     token.Pos
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// New creates a parser for input.
func New(input string) *Parser {
	p := &Parser{lexer: lexer.New(input)}
	p.advance()
	return p
}

var parserPool = sync.Pool{
	New: func() any { return &Parser{} },
}

// Get returns a pooled Parser for input. Call Put(p) when done.
func Get(input string) *Parser {
	p := parserPool.Get().(*Parser)
	p.lexer = lexer.Get(input)
	p.errors = p.errors[:0]
	p.cur = token.Item{}
	p.force = false
	p.advance()
	return p
}

// Put returns p and its lexer to their pools.
func Put(p *Parser) {
	if p.lexer != nil {
		lexer.Put(p.lexer)
		p.lexer = nil
	}
	parserPool.Put(p)
}

// AllowUnsafeDelete permits a DELETE with no WHERE clause to parse;
// without it, such a statement is rejected at parse time.
func (p *Parser) AllowUnsafeDelete(allow bool) {
	p.force = allow
}

// Parse parses a single statement.
func (p *Parser) Parse() (ast.Statement, error) {
	if p.curIs(token.EOF) {
		return nil, nil
	}
	stmt := p.parseStatement()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	for p.curIs(token.SEMI) {
		p.advance()
	}
	if !p.curIs(token.EOF) {
		p.errorf("unexpected token %v after statement", p.cur.Type)
		return nil, p.errors[0]
	}
	return stmt, nil
}

func (p *Parser) advance() {
	p.cur = p.lexer.Next()
}

func (p *Parser) curIs(t token.Token) bool {
	return p.cur.Type == t
}

// curIsIdent reports whether the current token can stand in for a name:
// an IDENT, or any reserved keyword used positionally as a column/table/
// function name (e.g. RANK, LAG used as function names).
func (p *Parser) curIsIdent() bool {
	return p.cur.Type == token.IDENT || p.cur.Type.IsKeyword()
}

func (p *Parser) peek() token.Item {
	return p.lexer.Peek()
}

func (p *Parser) expect(t token.Token) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	p.errorf("expected %v, got %v", t, p.cur.Type)
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, ParseError{Pos: p.cur.Pos, Message: fmt.Sprintf(format, args...)})
}

// mustCondition asserts that e (already parsed by parseCondition) is a
// boolean predicate, as required in WHERE/ON/HAVING position.
func (p *Parser) mustCondition(e ast.Expr) *ast.Condition {
	if e == nil {
		return nil
	}
	c, ok := e.(*ast.Condition)
	if !ok {
		p.errorf("expected boolean condition")
		return nil
	}
	return c
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.SELECT:
		return p.parseSelectWithSetOps()
	case token.INSERT:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.CREATE:
		return p.parseCreate()
	case token.ALTER:
		return p.parseAlter()
	default:
		p.errorf("unexpected token %v at start of statement", p.cur.Type)
		p.advance()
		return nil
	}
}

// parseTableNameOnly parses a bare table target with no alias, for
// INSERT/UPDATE/DELETE/CREATE/ALTER.
func (p *Parser) parseTableNameOnly() *ast.TableRef {
	pos := p.cur.Pos
	var name string
	switch {
	case p.curIs(token.STRING):
		name = p.cur.Value
		p.advance()
	case p.curIsIdent():
		name = p.cur.Value
		p.advance()
	default:
		p.errorf("expected table name")
		return nil
	}
	return &ast.TableRef{StartPos: pos, EndPos: p.cur.Pos, Name: name}
}

func parseInt(s string) int {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	maxInt := int64(int(^uint(0) >> 1))
	if n > maxInt {
		return int(maxInt)
	}
	if n < -maxInt-1 {
		return int(-maxInt - 1)
	}
	return int(n)
}
