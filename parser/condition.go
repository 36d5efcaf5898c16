package parser

import (
	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/token"
)

// parseCondition is the entry point for the boolean expression grammar:
// AND/OR folding over the predicate layer.
func (p *Parser) parseCondition() ast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	if left == nil {
		return nil
	}
	for p.curIs(token.OR) {
		pos := p.cur.Pos
		p.advance()
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		left = &ast.Condition{StartPos: pos, EndPos: p.cur.Pos, Op: ast.CondOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()
	if left == nil {
		return nil
	}
	for p.curIs(token.AND) {
		pos := p.cur.Pos
		p.advance()
		right := p.parseNot()
		if right == nil {
			return nil
		}
		left = &ast.Condition{StartPos: pos, EndPos: p.cur.Pos, Op: ast.CondAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseNot() ast.Expr {
	if p.curIs(token.NOT) {
		pos := p.cur.Pos
		p.advance()
		operand := p.parseNot()
		if operand == nil {
			return nil
		}
		return &ast.Condition{StartPos: pos, EndPos: p.cur.Pos, Op: ast.CondNot, Left: operand}
	}
	return p.parsePredicate()
}

// parsePredicate parses BETWEEN/IN/LIKE/ILIKE/comparisons over the
// arithmetic layer, including their NOT-prefixed
// variants (NOT BETWEEN, NOT IN, NOT LIKE, NOT ILIKE).
func (p *Parser) parsePredicate() ast.Expr {
	left := p.parseArith()
	if left == nil {
		return nil
	}

	negate := false
	if p.curIs(token.NOT) {
		switch p.peek().Type {
		case token.BETWEEN, token.IN, token.LIKE, token.ILIKE:
			negate = true
			p.advance()
		}
	}

	switch p.cur.Type {
	case token.BETWEEN:
		return p.parseBetween(left, negate)
	case token.IN:
		return p.parseIn(left, negate)
	case token.LIKE:
		return p.parseLikeOp(left, negate, ast.CondLike)
	case token.ILIKE:
		return p.parseLikeOp(left, negate, ast.CondILike)
	}

	if negate {
		p.errorf("expected BETWEEN, IN, LIKE or ILIKE after NOT")
		return nil
	}

	var op ast.ConditionOp
	switch p.cur.Type {
	case token.EQ:
		op = ast.CondEq
	case token.NEQ:
		op = ast.CondNeq
	case token.LT:
		op = ast.CondLt
	case token.GT:
		op = ast.CondGt
	case token.LE:
		op = ast.CondLe
	case token.GE:
		op = ast.CondGe
	default:
		return left
	}
	pos := p.cur.Pos
	p.advance()
	right := p.parseArith()
	if right == nil {
		return nil
	}
	return &ast.Condition{StartPos: pos, EndPos: p.cur.Pos, Op: op, Left: left, Right: right}
}

// parseBetween desugars `x BETWEEN lo AND hi` into `x >= lo AND x <= hi`
// (and wraps the result in CondNot for NOT BETWEEN), since the condition
// operator set has no dedicated BETWEEN variant.
func (p *Parser) parseBetween(left ast.Expr, negate bool) ast.Expr {
	pos := p.cur.Pos
	p.advance() // consume BETWEEN
	lo := p.parseArith()
	if lo == nil {
		return nil
	}
	if !p.expect(token.AND) {
		return nil
	}
	hi := p.parseArith()
	if hi == nil {
		return nil
	}
	endPos := p.cur.Pos

	ge := &ast.Condition{StartPos: pos, EndPos: endPos, Op: ast.CondGe, Left: left, Right: lo}
	le := &ast.Condition{StartPos: pos, EndPos: endPos, Op: ast.CondLe, Left: dupOperand(left), Right: hi}
	between := &ast.Condition{StartPos: pos, EndPos: endPos, Op: ast.CondAnd, Left: ge, Right: le}
	if negate {
		return &ast.Condition{StartPos: pos, EndPos: endPos, Op: ast.CondNot, Left: between}
	}
	return between
}

// dupOperand structurally duplicates the simple operand shapes BETWEEN
// desugaring reuses on both branches; anything more complex is shared
// read-only.
func dupOperand(e ast.Expr) ast.Expr {
	switch v := e.(type) {
	case *ast.ColName:
		c := *v
		c.Parts = append([]string(nil), v.Parts...)
		return &c
	case *ast.Literal:
		l := *v
		return &l
	default:
		return e
	}
}

func (p *Parser) parseIn(left ast.Expr, negate bool) ast.Expr {
	pos := p.cur.Pos
	p.advance() // consume IN
	if !p.expect(token.LPAREN) {
		return nil
	}

	var right ast.Node
	if p.curIs(token.SELECT) {
		sel := p.parseSelect()
		if sel == nil {
			return nil
		}
		right = &ast.Subquery{StartPos: pos, EndPos: p.cur.Pos, Query: sel}
	} else {
		list := &ast.ExprList{StartPos: pos}
		for {
			item := p.parseArith()
			if item == nil {
				break
			}
			list.Items = append(list.Items, item)
			if !p.curIs(token.COMMA) {
				break
			}
			p.advance()
		}
		list.EndPos = p.cur.Pos
		right = list
	}

	if !p.expect(token.RPAREN) {
		return nil
	}

	op := ast.CondIn
	if negate {
		op = ast.CondNotIn
	}
	return &ast.Condition{StartPos: pos, EndPos: p.cur.Pos, Op: op, Left: left, Right: right}
}

func (p *Parser) parseLikeOp(left ast.Expr, negate bool, op ast.ConditionOp) ast.Expr {
	pos := p.cur.Pos
	p.advance() // consume LIKE/ILIKE
	right := p.parseArith()
	if right == nil {
		return nil
	}
	cond := &ast.Condition{StartPos: pos, EndPos: p.cur.Pos, Op: op, Left: left, Right: right}
	if negate {
		return &ast.Condition{StartPos: pos, EndPos: p.cur.Pos, Op: ast.CondNot, Left: cond}
	}
	return cond
}
