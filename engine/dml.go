package engine

import (
	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/csvio"
	"github.com/cqsql/cq/table"
	"github.com/cqsql/cq/value"
)

// execInsert implements INSERT: an explicit column list
// or, when omitted, every column in file order; missing columns in a
// row are left Null.
func (ctx *Context) execInsert(stmt *ast.InsertStmt) (*table.Table, error) {
	t, err := csvio.Load(stmt.Table.Name, ctx.Cfg.CSVOptions())
	if err != nil {
		return nil, ErrIO.New(err.Error())
	}

	cols := stmt.Columns
	if len(cols) == 0 {
		cols = t.ColumnNames()
	}
	idxs := make([]int, len(cols))
	for i, c := range cols {
		idx := t.ColumnIndex(c)
		if idx < 0 {
			return nil, ErrSchema.New("unknown column " + c)
		}
		idxs[i] = idx
	}

	if stmt.Select != nil {
		sub, _, err := ctx.evalSelect(stmt.Select)
		if err != nil {
			return nil, err
		}
		for _, srow := range sub.Rows {
			row := newNullRow(len(t.Columns))
			for i, idx := range idxs {
				if i < len(srow) {
					row[idx] = srow[i]
				}
			}
			t.Rows = append(t.Rows, row)
		}
	} else {
		for _, values := range stmt.Values {
			if len(values) != len(cols) {
				return nil, ErrSchema.New("VALUES count does not match column count")
			}
			// Value expressions evaluate against the null row being
			// built, so a stray column reference yields Null instead
			// of an out-of-range read.
			row := newNullRow(len(t.Columns))
			for i, expr := range values {
				v, err := ctx.Evaluate(expr, t, row)
				if err != nil {
					return nil, err
				}
				row[idxs[i]] = v
			}
			t.Rows = append(t.Rows, row)
		}
	}

	if err := csvio.Save(stmt.Table.Name, t); err != nil {
		return nil, ErrIO.New(err.Error())
	}
	return t, nil
}

func newNullRow(n int) table.Row {
	row := make(table.Row, n)
	for i := range row {
		row[i] = value.NewNull()
	}
	return row
}

// execUpdate implements UPDATE: every matching row has
// its SET assignments evaluated and written in place.
func (ctx *Context) execUpdate(stmt *ast.UpdateStmt) (*table.Table, error) {
	t, err := csvio.Load(stmt.Table.Name, ctx.Cfg.CSVOptions())
	if err != nil {
		return nil, ErrIO.New(err.Error())
	}

	idxs := make([]int, len(stmt.Set))
	for i, sc := range stmt.Set {
		idx := t.ColumnIndex(sc.Column)
		if idx < 0 {
			return nil, ErrSchema.New("unknown column " + sc.Column)
		}
		idxs[i] = idx
	}

	for _, row := range t.Rows {
		if stmt.Where != nil {
			ok, err := ctx.EvalCondition(stmt.Where, t, row)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		for i, sc := range stmt.Set {
			v, err := ctx.Evaluate(sc.Expr, t, row)
			if err != nil {
				return nil, err
			}
			row[idxs[i]] = v
		}
	}

	if err := csvio.Save(stmt.Table.Name, t); err != nil {
		return nil, ErrIO.New(err.Error())
	}
	return t, nil
}

// execDelete implements DELETE. The parser already rejects a missing
// WHERE unless Force is set, so a nil Where here always means "delete
// every row".
func (ctx *Context) execDelete(stmt *ast.DeleteStmt) (*table.Table, error) {
	t, err := csvio.Load(stmt.Table.Name, ctx.Cfg.CSVOptions())
	if err != nil {
		return nil, ErrIO.New(err.Error())
	}

	var kept []table.Row
	for _, row := range t.Rows {
		if stmt.Where == nil {
			continue
		}
		ok, err := ctx.EvalCondition(stmt.Where, t, row)
		if err != nil {
			return nil, err
		}
		if ok {
			continue
		}
		kept = append(kept, row)
	}
	t.Rows = kept

	if err := csvio.Save(stmt.Table.Name, t); err != nil {
		return nil, ErrIO.New(err.Error())
	}
	return t, nil
}

// execCreate implements CREATE TABLE: schema-only
// (writes a header-only file) or AS SELECT (writes the inner query's
// result).
func (ctx *Context) execCreate(stmt *ast.CreateTableStmt) (*table.Table, error) {
	opts := ctx.Cfg.CSVOptions()

	if stmt.As != nil {
		t, _, err := ctx.evalSelect(stmt.As)
		if err != nil {
			return nil, err
		}
		t.Origin = stmt.Table.Name
		t.Delimiter = opts.Delimiter
		t.Quote = opts.Quote
		t.HasHeader = opts.HasHeader
		if err := csvio.Save(stmt.Table.Name, t); err != nil {
			return nil, ErrIO.New(err.Error())
		}
		return t, nil
	}

	t := table.New(stmt.Table.Name, stmt.Columns)
	t.Delimiter = opts.Delimiter
	t.Quote = opts.Quote
	t.HasHeader = opts.HasHeader
	if err := csvio.Save(stmt.Table.Name, t); err != nil {
		return nil, ErrIO.New(err.Error())
	}
	return t, nil
}

// execAlter implements ALTER TABLE: rename/add/drop a
// column, rejecting a drop that would leave the table columnless.
func (ctx *Context) execAlter(stmt *ast.AlterTableStmt) (*table.Table, error) {
	t, err := csvio.Load(stmt.Table.Name, ctx.Cfg.CSVOptions())
	if err != nil {
		return nil, ErrIO.New(err.Error())
	}

	switch a := stmt.Action.(type) {
	case *ast.RenameColumnAction:
		idx := t.ColumnIndex(a.OldName)
		if idx < 0 {
			return nil, ErrSchema.New("unknown column " + a.OldName)
		}
		t.RenameColumn(idx, a.NewName)
	case *ast.AddColumnAction:
		t.AddColumn(a.Name)
	case *ast.DropColumnAction:
		if len(t.Columns) <= 1 {
			return nil, ErrSchema.New("cannot drop the only column")
		}
		idx := t.ColumnIndex(a.Name)
		if idx < 0 {
			return nil, ErrSchema.New("unknown column " + a.Name)
		}
		t.DropColumn(idx)
	default:
		return nil, ErrEvaluation.New("unsupported ALTER action")
	}

	if err := csvio.Save(stmt.Table.Name, t); err != nil {
		return nil, ErrIO.New(err.Error())
	}
	return t, nil
}
