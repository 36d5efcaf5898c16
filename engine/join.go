package engine

import (
	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/table"
	"github.com/cqsql/cq/value"
)

// execJoins folds base (already loaded and aliased) with each of joins
// in turn, producing one table whose columns are all prefixed
// "alias.column" so resolveColumn's verbatim dotted lookup finds them
// directly.
func (ctx *Context) execJoins(base *table.Table, baseAlias string, joins []*ast.Join) (*table.Table, error) {
	cur := prefixTable(base, baseAlias)
	for _, j := range joins {
		right, alias, err := ctx.loadTableExpr(j.Table)
		if err != nil {
			return nil, err
		}
		right = prefixTable(right, alias)
		cur, err = ctx.joinOne(cur, right, j)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// prefixTable returns a shallow copy of t with every column renamed
// "alias.name"; rows are shared, not copied.
func prefixTable(t *table.Table, alias string) *table.Table {
	cols := make([]table.Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = table.Column{Name: alias + "." + c.Name, InferredKind: c.InferredKind}
	}
	return &table.Table{
		Origin:    t.Origin,
		Columns:   cols,
		Rows:      t.Rows,
		Delimiter: t.Delimiter,
		Quote:     t.Quote,
		HasHeader: t.HasHeader,
	}
}

// joinOne implements one INNER/LEFT/RIGHT/FULL join between the
// accumulated left side and a newly loaded right table: a nil ON
// condition degenerates to a cross product; a non-nil ON is evaluated by
// evalJoinOn, which only gives meaning to the simple "a.x = b.y" shape.
func (ctx *Context) joinOne(left, right *table.Table, j *ast.Join) (*table.Table, error) {
	merged := &table.Table{
		Origin:    left.Origin,
		Columns:   joinColumns(left, right),
		Delimiter: left.Delimiter,
		Quote:     left.Quote,
		HasHeader: left.HasHeader,
	}

	matchedRight := make([]bool, len(right.Rows))
	for _, lr := range left.Rows {
		matchedLeft := false
		for ri, rr := range right.Rows {
			row := combineRows(lr, rr)
			ok := true
			if j.On != nil {
				var err error
				ok, err = ctx.evalJoinOn(j.On, merged, row)
				if err != nil {
					return nil, err
				}
			}
			if ok {
				merged.Rows = append(merged.Rows, row)
				matchedLeft = true
				matchedRight[ri] = true
			}
		}
		if !matchedLeft && (j.Kind == ast.JoinLeft || j.Kind == ast.JoinFull) {
			merged.Rows = append(merged.Rows, combineRows(lr, nullRow(len(right.Columns))))
		}
	}
	if j.Kind == ast.JoinRight || j.Kind == ast.JoinFull {
		for ri, rr := range right.Rows {
			if !matchedRight[ri] {
				merged.Rows = append(merged.Rows, combineRows(nullRow(len(left.Columns)), rr))
			}
		}
	}
	return merged, nil
}

// evalJoinOn gives meaning only to the simple "a.x = b.y" ON shape;
// any other shape (compound ANDs, inequalities, function calls) returns
// false for every row pair.
func (ctx *Context) evalJoinOn(on *ast.Condition, merged *table.Table, row table.Row) (bool, error) {
	if on.Op != ast.CondEq {
		return false, nil
	}
	if _, ok := on.Left.(*ast.ColName); !ok {
		return false, nil
	}
	if _, ok := on.Right.(*ast.ColName); !ok {
		return false, nil
	}
	return ctx.EvalCondition(on, merged, row)
}

func joinColumns(left, right *table.Table) []table.Column {
	cols := make([]table.Column, 0, len(left.Columns)+len(right.Columns))
	cols = append(cols, left.Columns...)
	cols = append(cols, right.Columns...)
	return cols
}

func combineRows(l, r table.Row) table.Row {
	row := make(table.Row, 0, len(l)+len(r))
	row = append(row, l...)
	row = append(row, r...)
	return row
}

func nullRow(n int) table.Row {
	row := make(table.Row, n)
	for i := range row {
		row[i] = value.NewNull()
	}
	return row
}
