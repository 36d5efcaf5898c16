package parser

import (
	"strings"

	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/token"
)

// parseArith parses the arithmetic expression grammar: bitwise (lowest),
// additive, multiplicative, unary, then primary.
func (p *Parser) parseArith() ast.Expr {
	return p.parseBitwise()
}

// parseBitwise handles `& | ^`, the lowest-precedence binary tier.
func (p *Parser) parseBitwise() ast.Expr {
	left := p.parseAdditive()
	if left == nil {
		return nil
	}
	for {
		var op ast.ArithOp
		switch p.cur.Type {
		case token.AMP:
			op = ast.OpBitAnd
		case token.PIPE:
			op = ast.OpBitOr
		case token.CARET:
			op = ast.OpBitXor
		default:
			return left
		}
		pos := p.cur.Pos
		p.advance()
		right := p.parseAdditive()
		if right == nil {
			return nil
		}
		left = &ast.BinaryOp{StartPos: pos, EndPos: p.cur.Pos, Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	if left == nil {
		return nil
	}
	for {
		var op ast.ArithOp
		switch p.cur.Type {
		case token.PLUS:
			op = ast.OpAdd
		case token.MINUS:
			op = ast.OpSub
		default:
			return left
		}
		pos := p.cur.Pos
		p.advance()
		right := p.parseMultiplicative()
		if right == nil {
			return nil
		}
		left = &ast.BinaryOp{StartPos: pos, EndPos: p.cur.Pos, Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for {
		var op ast.ArithOp
		switch p.cur.Type {
		case token.STAR:
			op = ast.OpMul
		case token.SLASH:
			op = ast.OpDiv
		case token.MOD:
			op = ast.OpMod
		default:
			return left
		}
		pos := p.cur.Pos
		p.advance()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = &ast.BinaryOp{StartPos: pos, EndPos: p.cur.Pos, Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	if p.curIs(token.PLUS) || p.curIs(token.MINUS) {
		op := ast.OpAdd
		if p.curIs(token.MINUS) {
			op = ast.OpSub
		}
		pos := p.cur.Pos
		p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.BinaryOp{StartPos: pos, EndPos: p.cur.Pos, Left: nil, Op: op, Right: operand}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.cur.Type {
	case token.INT:
		return p.parseLiteral(ast.LiteralInt)
	case token.FLOAT:
		return p.parseLiteral(ast.LiteralFloat)
	case token.STRING:
		return p.parseLiteral(ast.LiteralString)
	case token.NULL:
		pos := p.cur.Pos
		p.advance()
		return &ast.Literal{StartPos: pos, EndPos: pos, Kind: ast.LiteralNull}
	case token.STAR:
		pos := p.cur.Pos
		p.advance()
		return &ast.Star{StartPos: pos, EndPos: pos}
	case token.LPAREN:
		return p.parseParenOrSubquery()
	case token.CASE:
		return p.parseCase()
	case token.IDENT:
		return p.parseIdentOrFunc()
	default:
		if p.cur.Type.IsKeyword() {
			// A keyword used positionally as a column or function name
			// (e.g. RANK(), LAG(...)).
			return p.parseIdentOrFunc()
		}
		p.errorf("unexpected token %v in expression", p.cur.Type)
		p.advance()
		return nil
	}
}

func (p *Parser) parseLiteral(kind ast.LiteralKind) *ast.Literal {
	lit := &ast.Literal{StartPos: p.cur.Pos, EndPos: p.cur.Pos, Kind: kind, Value: p.cur.Value}
	p.advance()
	return lit
}

// parseIdentOrFunc parses a (possibly dotted) column reference, a
// qualified star (`alias.*`), or a function call.
func (p *Parser) parseIdentOrFunc() ast.Expr {
	pos := p.cur.Pos
	name := p.cur.Value
	p.advance()

	if p.curIs(token.LPAREN) {
		return p.parseFuncCall(pos, name)
	}

	parts := []string{name}
	endPos := pos
	for p.curIs(token.DOT) {
		p.advance()
		if p.curIs(token.STAR) {
			endPos = p.cur.Pos
			p.advance()
			return &ast.Star{StartPos: pos, EndPos: endPos, Table: parts[len(parts)-1]}
		}
		if !p.curIsIdent() {
			p.errorf("expected identifier after '.'")
			return nil
		}
		parts = append(parts, p.cur.Value)
		endPos = p.cur.Pos
		p.advance()
	}
	return &ast.ColName{StartPos: pos, EndPos: endPos, Parts: parts}
}

func (p *Parser) parseFuncCall(pos token.Pos, name string) ast.Expr {
	p.advance() // consume '('

	var args []ast.Expr
	if p.curIs(token.STAR) {
		args = append(args, &ast.Star{StartPos: p.cur.Pos, EndPos: p.cur.Pos})
		p.advance()
	} else if !p.curIs(token.RPAREN) {
		for {
			arg := p.parseArith()
			if arg == nil {
				break
			}
			args = append(args, arg)
			if !p.curIs(token.COMMA) {
				break
			}
			p.advance()
		}
	}

	if !p.expect(token.RPAREN) {
		return nil
	}
	endPos := p.cur.Pos
	upperName := strings.ToUpper(name)

	if p.curIs(token.OVER) {
		return p.parseWindowFunc(pos, upperName, args)
	}
	return &ast.FuncCall{StartPos: pos, EndPos: endPos, Name: upperName, Args: args}
}

// parseWindowFunc parses the OVER (PARTITION BY ... ORDER BY ...) clause
// following a function call. Frame clauses are not part of this grammar.
func (p *Parser) parseWindowFunc(pos token.Pos, name string, args []ast.Expr) ast.Expr {
	p.advance() // consume OVER
	if !p.expect(token.LPAREN) {
		return nil
	}

	wf := &ast.WindowFunc{StartPos: pos, Name: name, Args: args}

	if p.curIs(token.PARTITION) {
		p.advance()
		p.expect(token.BY)
		for {
			if !p.curIsIdent() {
				break
			}
			wf.PartitionBy = append(wf.PartitionBy, p.parseQualifiedName())
			if !p.curIs(token.COMMA) {
				break
			}
			p.advance()
		}
	}

	if p.curIs(token.ORDER) {
		p.advance()
		p.expect(token.BY)
		if p.curIsIdent() {
			wf.OrderBy = p.parseQualifiedName()
			wf.HasOrderBy = true
			if p.curIs(token.DESC) {
				wf.Desc = true
				p.advance()
			} else if p.curIs(token.ASC) {
				p.advance()
			}
		}
	}

	if !p.expect(token.RPAREN) {
		return nil
	}
	wf.EndPos = p.cur.Pos
	return wf
}

// parseQualifiedName reads a dotted name (a.b.c) without building an AST
// node, returning its joined textual spelling.
func (p *Parser) parseQualifiedName() string {
	if !p.curIsIdent() {
		p.errorf("expected identifier")
		return ""
	}
	parts := []string{p.cur.Value}
	p.advance()
	for p.curIs(token.DOT) {
		p.advance()
		if !p.curIsIdent() {
			break
		}
		parts = append(parts, p.cur.Value)
		p.advance()
	}
	return strings.Join(parts, ".")
}

func (p *Parser) parseParenOrSubquery() ast.Expr {
	pos := p.cur.Pos
	p.advance() // consume '('

	if p.curIs(token.SELECT) {
		sel := p.parseSelect()
		if sel == nil {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return &ast.Subquery{StartPos: pos, EndPos: p.cur.Pos, Query: sel}
	}

	inner := p.parseCondition()
	if !p.expect(token.RPAREN) {
		return nil
	}
	return inner
}

func (p *Parser) parseCase() ast.Expr {
	pos := p.cur.Pos
	p.advance() // consume CASE

	c := &ast.Case{StartPos: pos}
	if !p.curIs(token.WHEN) {
		c.Operand = p.parseArith()
	}

	for p.curIs(token.WHEN) {
		p.advance()
		var cond ast.Node
		if c.Operand != nil {
			cond = p.parseArith()
		} else {
			e := p.parseCondition()
			cnd, ok := e.(*ast.Condition)
			if !ok {
				p.errorf("expected condition in WHEN clause")
				return nil
			}
			cond = cnd
		}
		if !p.expect(token.THEN) {
			return nil
		}
		result := p.parseArith()
		c.Whens = append(c.Whens, ast.CaseWhen{Cond: cond, Result: result})
	}

	if p.curIs(token.ELSE) {
		p.advance()
		c.Else = p.parseArith()
	}

	if !p.expect(token.END) {
		return nil
	}
	c.EndPos = p.cur.Pos
	return c
}
