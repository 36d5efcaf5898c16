package parser

import (
	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/token"
)

// parseInsert parses INSERT INTO table [(cols)] VALUES (...), ... or
// INSERT INTO table [(cols)] SELECT ....
func (p *Parser) parseInsert() *ast.InsertStmt {
	pos := p.cur.Pos
	p.advance() // consume INSERT
	if !p.expect(token.INTO) {
		return nil
	}
	table := p.parseTableNameOnly()
	if table == nil {
		return nil
	}

	ins := &ast.InsertStmt{StartPos: pos, Table: table}

	if p.curIs(token.LPAREN) {
		p.advance()
		for p.curIsIdent() {
			ins.Columns = append(ins.Columns, p.cur.Value)
			p.advance()
			if !p.curIs(token.COMMA) {
				break
			}
			p.advance()
		}
		p.expect(token.RPAREN)
	}

	if p.curIs(token.SELECT) {
		ins.Select = p.parseSelect()
		ins.EndPos = p.cur.Pos
		return ins
	}

	if !p.expect(token.VALUES) {
		return nil
	}
	for {
		if !p.expect(token.LPAREN) {
			return nil
		}
		var row []ast.Expr
		for {
			e := p.parseArith()
			if e == nil {
				break
			}
			row = append(row, e)
			if !p.curIs(token.COMMA) {
				break
			}
			p.advance()
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		ins.Values = append(ins.Values, row)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	ins.EndPos = p.cur.Pos
	return ins
}

// parseUpdate parses UPDATE table SET col = expr, ... [WHERE cond].
func (p *Parser) parseUpdate() *ast.UpdateStmt {
	pos := p.cur.Pos
	p.advance() // consume UPDATE
	table := p.parseTableNameOnly()
	if table == nil {
		return nil
	}
	if !p.expect(token.SET) {
		return nil
	}

	upd := &ast.UpdateStmt{StartPos: pos, Table: table}
	for {
		if !p.curIsIdent() {
			p.errorf("expected column name in SET clause")
			break
		}
		col := p.cur.Value
		p.advance()
		if !p.expect(token.EQ) {
			break
		}
		expr := p.parseArith()
		upd.Set = append(upd.Set, ast.SetClause{Column: col, Expr: expr})
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}

	if p.curIs(token.WHERE) {
		p.advance()
		upd.Where = p.mustCondition(p.parseCondition())
	}
	upd.EndPos = p.cur.Pos
	return upd
}

// parseDelete parses DELETE FROM table [WHERE cond], rejecting a missing
// WHERE clause unless the parser was configured to allow it
// (AllowUnsafeDelete, threaded from the CLI force flag).
func (p *Parser) parseDelete() *ast.DeleteStmt {
	pos := p.cur.Pos
	p.advance() // consume DELETE
	if !p.expect(token.FROM) {
		return nil
	}
	table := p.parseTableNameOnly()
	if table == nil {
		return nil
	}

	del := &ast.DeleteStmt{StartPos: pos, Table: table, Force: p.force}
	if p.curIs(token.WHERE) {
		p.advance()
		del.Where = p.mustCondition(p.parseCondition())
	} else if !p.force {
		p.errorf("DELETE without WHERE is rejected; rerun with the force flag to allow it")
		return nil
	}
	del.EndPos = p.cur.Pos
	return del
}

// parseCreate parses CREATE TABLE name (col, ...) or
// CREATE TABLE name AS SELECT ....
func (p *Parser) parseCreate() *ast.CreateTableStmt {
	pos := p.cur.Pos
	p.advance() // consume CREATE
	if !p.expect(token.TABLE) {
		return nil
	}
	table := p.parseTableNameOnly()
	if table == nil {
		return nil
	}

	ct := &ast.CreateTableStmt{StartPos: pos, Table: table}
	if p.curIs(token.AS) {
		p.advance()
		ct.As = p.parseSelect()
		ct.EndPos = p.cur.Pos
		return ct
	}

	if !p.expect(token.LPAREN) {
		return nil
	}
	for p.curIsIdent() {
		ct.Columns = append(ct.Columns, p.cur.Value)
		p.advance()
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	p.expect(token.RPAREN)
	ct.EndPos = p.cur.Pos
	return ct
}

// parseAlter parses ALTER TABLE name RENAME COLUMN a TO b,
// ALTER TABLE name ADD COLUMN a, or ALTER TABLE name DROP COLUMN a.
func (p *Parser) parseAlter() *ast.AlterTableStmt {
	pos := p.cur.Pos
	p.advance() // consume ALTER
	if !p.expect(token.TABLE) {
		return nil
	}
	table := p.parseTableNameOnly()
	if table == nil {
		return nil
	}

	at := &ast.AlterTableStmt{StartPos: pos, Table: table}
	actionPos := p.cur.Pos
	switch p.cur.Type {
	case token.RENAME:
		p.advance()
		p.expect(token.COLUMN)
		if !p.curIsIdent() {
			p.errorf("expected column name")
			return nil
		}
		oldName := p.cur.Value
		p.advance()
		if !p.expect(token.TO) {
			return nil
		}
		if !p.curIsIdent() {
			p.errorf("expected column name")
			return nil
		}
		newName := p.cur.Value
		p.advance()
		at.Action = &ast.RenameColumnAction{StartPos: actionPos, EndPos: p.cur.Pos, OldName: oldName, NewName: newName}
	case token.ADD:
		p.advance()
		p.expect(token.COLUMN)
		if !p.curIsIdent() {
			p.errorf("expected column name")
			return nil
		}
		name := p.cur.Value
		p.advance()
		at.Action = &ast.AddColumnAction{StartPos: actionPos, EndPos: p.cur.Pos, Name: name}
	case token.DROP:
		p.advance()
		p.expect(token.COLUMN)
		if !p.curIsIdent() {
			p.errorf("expected column name")
			return nil
		}
		name := p.cur.Value
		p.advance()
		at.Action = &ast.DropColumnAction{StartPos: actionPos, EndPos: p.cur.Pos, Name: name}
	default:
		p.errorf("expected RENAME, ADD or DROP")
		return nil
	}
	at.EndPos = p.cur.Pos
	return at
}
