package ast

import "github.com/cqsql/cq/token"

// TableRef names a CSV source: a file path (quoted string literal or
// bare identifier) with an optional alias.
type TableRef struct {
	StartPos token.Pos
	EndPos   token.Pos
	Name     string
	Alias    string
}

func (*TableRef) tableExprNode()   {}
func (t *TableRef) Pos() token.Pos { return t.StartPos }
func (t *TableRef) End() token.Pos { return t.EndPos }

// SubqueryTable is a subquery used in a FROM clause.
type SubqueryTable struct {
	StartPos token.Pos
	EndPos   token.Pos
	Query    *SelectStmt
	Alias    string
}

func (*SubqueryTable) tableExprNode()   {}
func (s *SubqueryTable) Pos() token.Pos { return s.StartPos }
func (s *SubqueryTable) End() token.Pos { return s.EndPos }

// JoinKind enumerates the supported join kinds.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
	JoinFull
)

// Join is one join clause.
type Join struct {
	StartPos token.Pos
	EndPos   token.Pos
	Kind     JoinKind
	Table    TableExpr
	On       *Condition
}

func (j *Join) Pos() token.Pos { return j.StartPos }
func (j *Join) End() token.Pos { return j.EndPos }

// SelectItem is one entry of a SELECT list: an expression, its optional
// alias, and its reconstructed text form.
type SelectItem struct {
	StartPos token.Pos
	EndPos   token.Pos
	Expr     Expr // nil for a bare '*'
	Star     *Star
	Alias    string
	Text     string
}

func (i *SelectItem) Pos() token.Pos { return i.StartPos }
func (i *SelectItem) End() token.Pos { return i.EndPos }

// OrderByItem is purely textual: it is matched against result column
// names or SELECT-item text forms at evaluation time, not bound to an
// expression node at parse time.
type OrderByItem struct {
	Text string
	Desc bool
}
