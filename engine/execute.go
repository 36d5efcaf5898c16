package engine

import (
	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/table"
)

// Execute dispatches a parsed top-level statement: a SELECT (possibly
// chained with UNION/INTERSECT/EXCEPT into a SetOp) or one of the
// DML/DDL statements.
func (ctx *Context) Execute(stmt ast.Statement) (*table.Table, error) {
	switch v := stmt.(type) {
	case *ast.SelectStmt:
		t, _, err := ctx.evalSelect(v)
		return t, err
	case *ast.SetOp:
		return ctx.execSetOp(v)
	case *ast.InsertStmt:
		return ctx.execInsert(v)
	case *ast.UpdateStmt:
		return ctx.execUpdate(v)
	case *ast.DeleteStmt:
		return ctx.execDelete(v)
	case *ast.CreateTableStmt:
		return ctx.execCreate(v)
	case *ast.AlterTableStmt:
		return ctx.execAlter(v)
	default:
		return nil, ErrEvaluation.New("unsupported statement")
	}
}
