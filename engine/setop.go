package engine

import (
	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/table"
)

// execSetOp implements UNION [ALL]/INTERSECT/EXCEPT:
// both sides must produce the same column count (a schema error
// otherwise), and row membership/equality is decided by value.Compare,
// not textual comparison.
func (ctx *Context) execSetOp(op *ast.SetOp) (*table.Table, error) {
	left, err := ctx.execStatement(op.Left)
	if err != nil {
		return nil, err
	}
	right, err := ctx.execStatement(op.Right)
	if err != nil {
		return nil, err
	}
	if len(left.Columns) != len(right.Columns) {
		return nil, ErrSchema.New("set operation requires matching column counts")
	}

	out := &table.Table{
		Origin:    left.Origin,
		Columns:   left.Columns,
		Delimiter: left.Delimiter,
		Quote:     left.Quote,
		HasHeader: left.HasHeader,
	}

	switch op.Type {
	case ast.Union:
		out.Rows = append(out.Rows, left.Rows...)
		out.Rows = append(out.Rows, right.Rows...)
		if !op.All {
			applyDistinct(out)
		}
	case ast.Intersect:
		rightSeen := rowSet(right.Rows)
		seen := map[string]bool{}
		for _, row := range left.Rows {
			k := rowKey(row)
			if !rightSeen[k] {
				continue
			}
			if !op.All && seen[k] {
				continue
			}
			seen[k] = true
			out.Rows = append(out.Rows, row)
		}
	case ast.Except:
		rightSeen := rowSet(right.Rows)
		seen := map[string]bool{}
		for _, row := range left.Rows {
			k := rowKey(row)
			if rightSeen[k] {
				continue
			}
			if !op.All && seen[k] {
				continue
			}
			seen[k] = true
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

func rowSet(rows []table.Row) map[string]bool {
	set := make(map[string]bool, len(rows))
	for _, row := range rows {
		set[rowKey(row)] = true
	}
	return set
}

// execStatement dispatches a Statement that appears on one side of a
// SetOp chain: either a plain SELECT or a nested SetOp.
func (ctx *Context) execStatement(s ast.Statement) (*table.Table, error) {
	switch v := s.(type) {
	case *ast.SelectStmt:
		t, _, err := ctx.evalSelect(v)
		return t, err
	case *ast.SetOp:
		return ctx.execSetOp(v)
	default:
		return nil, ErrEvaluation.New("unsupported set operation operand")
	}
}
