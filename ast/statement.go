package ast

import "github.com/cqsql/cq/token"

// SelectStmt is one SELECT query: SELECT, FROM, JOINs, WHERE,
// GROUP BY, HAVING, ORDER BY, LIMIT/OFFSET (-1 = none).
type SelectStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Distinct bool
	Columns  []*SelectItem
	From     TableExpr
	Joins    []*Join
	Where    *Condition
	GroupBy  []Expr
	Having   *Condition
	OrderBy  []OrderByItem
	Limit    int
	Offset   int
}

func (*SelectStmt) statementNode()   {}
func (s *SelectStmt) Pos() token.Pos { return s.StartPos }
func (s *SelectStmt) End() token.Pos { return s.EndPos }

// SetOpType enumerates UNION/INTERSECT/EXCEPT.
type SetOpType int

const (
	Union SetOpType = iota
	Intersect
	Except
)

// SetOp is a left-associative chain link combining two statements with
// UNION/INTERSECT/EXCEPT.
type SetOp struct {
	StartPos token.Pos
	EndPos   token.Pos
	Type     SetOpType
	All      bool
	Left     Statement
	Right    Statement
}

func (*SetOp) statementNode()   {}
func (s *SetOp) Pos() token.Pos { return s.StartPos }
func (s *SetOp) End() token.Pos { return s.EndPos }

// InsertStmt is an INSERT statement.
type InsertStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Table    *TableRef
	Columns  []string // explicit column list; empty means "all columns, in order"
	Values   [][]Expr // VALUES rows
	Select   *SelectStmt
}

func (*InsertStmt) statementNode()   {}
func (i *InsertStmt) Pos() token.Pos { return i.StartPos }
func (i *InsertStmt) End() token.Pos { return i.EndPos }

// SetClause is one `col = expr` assignment of an UPDATE statement.
type SetClause struct {
	Column string
	Expr   Expr
}

// UpdateStmt is an UPDATE statement.
type UpdateStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Table    *TableRef
	Set      []SetClause
	Where    *Condition
}

func (*UpdateStmt) statementNode()   {}
func (u *UpdateStmt) Pos() token.Pos { return u.StartPos }
func (u *UpdateStmt) End() token.Pos { return u.EndPos }

// DeleteStmt is a DELETE statement. Force mirrors the CLI force flag:
// when Where is nil, the parser rejects the statement unless Force is
// set.
type DeleteStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Table    *TableRef
	Where    *Condition
	Force    bool
}

func (*DeleteStmt) statementNode()   {}
func (d *DeleteStmt) Pos() token.Pos { return d.StartPos }
func (d *DeleteStmt) End() token.Pos { return d.EndPos }

// CreateTableStmt is a CREATE TABLE statement: schema-only
// (len(Columns) > 0) or AS SELECT (As != nil).
type CreateTableStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Table    *TableRef
	Columns  []string
	As       *SelectStmt
}

func (*CreateTableStmt) statementNode()   {}
func (c *CreateTableStmt) Pos() token.Pos { return c.StartPos }
func (c *CreateTableStmt) End() token.Pos { return c.EndPos }

// RenameColumnAction implements ALTER TABLE ... RENAME COLUMN a TO b.
type RenameColumnAction struct {
	StartPos, EndPos token.Pos
	OldName, NewName string
}

func (*RenameColumnAction) alterActionNode() {}
func (a *RenameColumnAction) Pos() token.Pos { return a.StartPos }
func (a *RenameColumnAction) End() token.Pos { return a.EndPos }

// AddColumnAction implements ALTER TABLE ... ADD COLUMN name.
type AddColumnAction struct {
	StartPos, EndPos token.Pos
	Name             string
}

func (*AddColumnAction) alterActionNode() {}
func (a *AddColumnAction) Pos() token.Pos { return a.StartPos }
func (a *AddColumnAction) End() token.Pos { return a.EndPos }

// DropColumnAction implements ALTER TABLE ... DROP COLUMN name.
type DropColumnAction struct {
	StartPos, EndPos token.Pos
	Name             string
}

func (*DropColumnAction) alterActionNode() {}
func (a *DropColumnAction) Pos() token.Pos { return a.StartPos }
func (a *DropColumnAction) End() token.Pos { return a.EndPos }

// AlterTableStmt is an ALTER TABLE statement (rename/add/drop column).
type AlterTableStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Table    *TableRef
	Action   AlterAction
}

func (*AlterTableStmt) statementNode()   {}
func (a *AlterTableStmt) Pos() token.Pos { return a.StartPos }
func (a *AlterTableStmt) End() token.Pos { return a.EndPos }
