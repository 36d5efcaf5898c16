package parser

import (
	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/token"
)

// parseSelectWithSetOps parses a SELECT and folds any trailing
// UNION/INTERSECT/EXCEPT operators into a left-associative *ast.SetOp
// chain.
func (p *Parser) parseSelectWithSetOps() ast.Statement {
	left := ast.Statement(p.parseSelect())
	if left == nil {
		return nil
	}
	for {
		var opType ast.SetOpType
		pos := p.cur.Pos
		switch p.cur.Type {
		case token.UNION:
			opType = ast.Union
		case token.INTERSECT:
			opType = ast.Intersect
		case token.EXCEPT:
			opType = ast.Except
		default:
			return left
		}
		p.advance()

		all := false
		if p.curIs(token.ALL) {
			all = true
			p.advance()
		}
		if !p.curIs(token.SELECT) {
			p.errorf("expected SELECT after %v", p.cur.Type)
			return left
		}
		right := p.parseSelect()
		if right == nil {
			return left
		}
		left = &ast.SetOp{StartPos: pos, EndPos: p.cur.Pos, Type: opType, All: all, Left: left, Right: right}
	}
}

// parseSelect parses one SELECT in its fixed clause order: SELECT,
// FROM, joins, WHERE, GROUP BY, HAVING, ORDER BY, LIMIT/OFFSET.
func (p *Parser) parseSelect() *ast.SelectStmt {
	pos := p.cur.Pos
	p.advance() // consume SELECT

	sel := &ast.SelectStmt{StartPos: pos, Limit: -1, Offset: -1}
	if p.curIs(token.DISTINCT) {
		sel.Distinct = true
		p.advance()
	}

	for {
		item := p.parseSelectItem()
		if item == nil {
			break
		}
		sel.Columns = append(sel.Columns, item)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}

	if !p.expect(token.FROM) {
		return nil
	}
	sel.From = p.parseTableExprPrimary()
	if sel.From == nil {
		return nil
	}
	sel.Joins = p.parseJoins()

	if p.curIs(token.WHERE) {
		p.advance()
		sel.Where = p.mustCondition(p.parseCondition())
	}

	if p.curIs(token.GROUP) {
		p.advance()
		if !p.expect(token.BY) {
			return nil
		}
		sel.GroupBy = p.parseExprListComma()
	}

	if p.curIs(token.HAVING) {
		p.advance()
		sel.Having = p.mustCondition(p.parseCondition())
	}

	if p.curIs(token.ORDER) {
		p.advance()
		if !p.expect(token.BY) {
			return nil
		}
		sel.OrderBy = p.parseOrderByItems()
	}

	p.parseLimitOffset(sel)
	sel.EndPos = p.cur.Pos
	return sel
}

// parseSelectItem parses one entry of the SELECT list: a bare or
// qualified '*', or an expression with an optional alias. Items go
// through the full condition grammar so boolean expressions like
// `a AND b` are valid select columns.
func (p *Parser) parseSelectItem() *ast.SelectItem {
	pos := p.cur.Pos
	expr := p.parseCondition()
	if expr == nil {
		return nil
	}

	item := &ast.SelectItem{StartPos: pos, EndPos: p.cur.Pos}
	if star, ok := expr.(*ast.Star); ok {
		item.Star = star
		item.Text = exprText(star)
		return item
	}
	item.Expr = expr
	item.Text = exprText(expr)

	if p.curIs(token.AS) {
		p.advance()
		if !p.curIsIdent() {
			p.errorf("expected alias after AS")
			return item
		}
		item.Alias = p.cur.Value
		item.EndPos = p.cur.Pos
		p.advance()
	} else if p.curIs(token.IDENT) {
		item.Alias = p.cur.Value
		item.EndPos = p.cur.Pos
		p.advance()
	}
	return item
}

// parseTableExprPrimary parses a FROM/JOIN source: a table name or a
// parenthesized subquery, each with an optional alias.
func (p *Parser) parseTableExprPrimary() ast.TableExpr {
	pos := p.cur.Pos
	if p.curIs(token.LPAREN) {
		p.advance()
		sel := p.parseSelect()
		if sel == nil {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		st := &ast.SubqueryTable{StartPos: pos, EndPos: p.cur.Pos, Query: sel}
		st.Alias = p.parseOptionalAlias()
		st.EndPos = p.cur.Pos
		return st
	}

	ref := p.parseTableNameOnly()
	if ref == nil {
		return nil
	}
	ref.Alias = p.parseOptionalAlias()
	ref.EndPos = p.cur.Pos
	return ref
}

func (p *Parser) parseOptionalAlias() string {
	if p.curIs(token.AS) {
		p.advance()
		if !p.curIsIdent() {
			p.errorf("expected alias after AS")
			return ""
		}
		v := p.cur.Value
		p.advance()
		return v
	}
	if p.curIs(token.IDENT) {
		v := p.cur.Value
		p.advance()
		return v
	}
	return ""
}

// parseJoins parses a run of INNER/LEFT/RIGHT/FULL [OUTER] JOIN
// clauses. CROSS/NATURAL joins are not part of the dialect.
func (p *Parser) parseJoins() []*ast.Join {
	var joins []*ast.Join
	for {
		pos := p.cur.Pos
		var kind ast.JoinKind
		switch p.cur.Type {
		case token.JOIN:
			kind = ast.JoinInner
			p.advance()
		case token.INNER:
			kind = ast.JoinInner
			p.advance()
			if !p.expect(token.JOIN) {
				return joins
			}
		case token.LEFT:
			kind = ast.JoinLeft
			p.advance()
			if p.curIs(token.OUTER) {
				p.advance()
			}
			if !p.expect(token.JOIN) {
				return joins
			}
		case token.RIGHT:
			kind = ast.JoinRight
			p.advance()
			if p.curIs(token.OUTER) {
				p.advance()
			}
			if !p.expect(token.JOIN) {
				return joins
			}
		case token.FULL:
			kind = ast.JoinFull
			p.advance()
			if p.curIs(token.OUTER) {
				p.advance()
			}
			if !p.expect(token.JOIN) {
				return joins
			}
		default:
			return joins
		}

		table := p.parseTableExprPrimary()
		if table == nil {
			return joins
		}
		var on *ast.Condition
		if p.curIs(token.ON) {
			p.advance()
			on = p.mustCondition(p.parseCondition())
		}
		joins = append(joins, &ast.Join{StartPos: pos, EndPos: p.cur.Pos, Kind: kind, Table: table, On: on})
	}
}

// parseExprListComma parses a comma-separated list of arithmetic
// expressions, used for GROUP BY.
func (p *Parser) parseExprListComma() []ast.Expr {
	var exprs []ast.Expr
	for {
		e := p.parseArith()
		if e == nil {
			break
		}
		exprs = append(exprs, e)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return exprs
}

// parseOrderByItems parses the comma-separated ORDER BY list. Each item
// is captured purely as text (ast.OrderByItem), matched against result
// columns at evaluation time.
func (p *Parser) parseOrderByItems() []ast.OrderByItem {
	var items []ast.OrderByItem
	for {
		text := p.scanTextExpr()
		if text == "" {
			break
		}
		desc := false
		if p.curIs(token.DESC) {
			desc = true
			p.advance()
		} else if p.curIs(token.ASC) {
			p.advance()
		}
		items = append(items, ast.OrderByItem{Text: text, Desc: desc})
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return items
}

func (p *Parser) parseLimitOffset(sel *ast.SelectStmt) {
	if p.curIs(token.LIMIT) {
		p.advance()
		if p.curIs(token.INT) {
			sel.Limit = parseInt(p.cur.Value)
			p.advance()
		} else {
			p.errorf("expected integer after LIMIT")
		}
	}
	if p.curIs(token.OFFSET) {
		p.advance()
		if p.curIs(token.INT) {
			sel.Offset = parseInt(p.cur.Value)
			p.advance()
		} else {
			p.errorf("expected integer after OFFSET")
		}
	}
}
