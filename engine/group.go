package engine

import (
	"strings"

	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/table"
	"github.com/cqsql/cq/value"
)

type groupBucket struct {
	keyVals []value.Value
	rows    []table.Row
}

// needsGrouping reports whether sel requires the grouped path: an
// explicit GROUP BY, or any aggregate function appearing in the SELECT
// list or HAVING (the implicit "_all_" single-group rule).
func needsGrouping(sel *ast.SelectStmt) bool {
	if len(sel.GroupBy) > 0 {
		return true
	}
	for _, item := range sel.Columns {
		if containsAggregate(item.Expr) {
			return true
		}
	}
	return havingContainsAggregate(sel.Having)
}

func containsAggregate(e ast.Expr) bool {
	switch v := e.(type) {
	case nil:
		return false
	case *ast.FuncCall:
		if aggregateNames[strings.ToUpper(v.Name)] {
			return true
		}
		for _, a := range v.Args {
			if containsAggregate(a) {
				return true
			}
		}
		return false
	case *ast.BinaryOp:
		return containsAggregate(v.Left) || containsAggregate(v.Right)
	case *ast.Case:
		if containsAggregate(v.Operand) || containsAggregate(v.Else) {
			return true
		}
		for _, w := range v.Whens {
			if we, ok := w.Cond.(ast.Expr); ok && containsAggregate(we) {
				return true
			}
			if containsAggregate(w.Result) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func havingContainsAggregate(c *ast.Condition) bool {
	if c == nil {
		return false
	}
	switch c.Op {
	case ast.CondAnd, ast.CondOr:
		l, _ := c.Left.(*ast.Condition)
		r, _ := c.Right.(*ast.Condition)
		return havingContainsAggregate(l) || havingContainsAggregate(r)
	case ast.CondNot:
		l, _ := c.Left.(*ast.Condition)
		return havingContainsAggregate(l)
	default:
		le, _ := c.Left.(ast.Expr)
		re, _ := c.Right.(ast.Expr)
		return containsAggregate(le) || containsAggregate(re)
	}
}

// execGroupAggregate implements grouping and aggregation:
// groups are built in first-seen order (single-column fast path folded
// into the same composite-key machinery as the general case), aggregate
// SELECT items are computed over each group's rows, non-aggregate items
// take their value from the group's first ("representative") row, and
// HAVING is applied as a second pass over the built rows.
func (ctx *Context) execGroupAggregate(sel *ast.SelectStmt, cur *table.Table, rows []table.Row) (*table.Table, error) {
	hasGroupBy := len(sel.GroupBy) > 0

	var order []string
	groups := map[string]*groupBucket{}

	if !hasGroupBy {
		groups["_all_"] = &groupBucket{rows: rows}
		order = []string{"_all_"}
	} else {
		for _, row := range rows {
			keyVals := make([]value.Value, len(sel.GroupBy))
			for i, e := range sel.GroupBy {
				v, err := ctx.Evaluate(e, cur, row)
				if err != nil {
					return nil, err
				}
				keyVals[i] = v
			}
			key := groupKeyText(keyVals)
			g, ok := groups[key]
			if !ok {
				g = &groupBucket{keyVals: keyVals}
				groups[key] = g
				order = append(order, key)
			}
			g.rows = append(g.rows, row)
		}
	}

	var outCols []table.Column
	for _, item := range sel.Columns {
		if item.Star != nil {
			for _, c := range cur.Columns {
				if item.Star.Table != "" && !strings.EqualFold(columnTablePrefix(c.Name), item.Star.Table) {
					continue
				}
				outCols = append(outCols, table.Column{Name: stripTablePrefix(c.Name), InferredKind: c.InferredKind})
			}
			continue
		}
		outCols = append(outCols, table.Column{Name: columnDisplayName(item)})
	}

	out := &table.Table{
		Origin:    cur.Origin,
		Columns:   outCols,
		Delimiter: cur.Delimiter,
		Quote:     cur.Quote,
		HasHeader: cur.HasHeader,
	}

	for _, key := range order {
		g := groups[key]
		row, err := ctx.buildGroupRow(sel, cur, g, outCols)
		if err != nil {
			return nil, err
		}
		if sel.Having != nil {
			ok, err := ctx.evalGroupCondition(sel.Having, g, cur, outCols, row)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func (ctx *Context) buildGroupRow(sel *ast.SelectStmt, cur *table.Table, g *groupBucket, outCols []table.Column) (table.Row, error) {
	var row table.Row
	for _, item := range sel.Columns {
		if item.Star != nil {
			var rep table.Row
			if len(g.rows) > 0 {
				rep = g.rows[0]
			}
			for ci, c := range cur.Columns {
				if item.Star.Table != "" && !strings.EqualFold(columnTablePrefix(c.Name), item.Star.Table) {
					continue
				}
				if rep == nil {
					row = append(row, value.NewNull())
				} else {
					row = append(row, rep[ci])
				}
			}
			continue
		}
		v, err := ctx.evalGroupExpr(item.Expr, g, cur, outCols, nil)
		if err != nil {
			return nil, err
		}
		row = append(row, v)
	}
	return row, nil
}

func groupKeyText(vals []value.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.GroupText()
	}
	return strings.Join(parts, "\t")
}

// evalGroupExpr evaluates e within a group's context: aggregate calls are
// computed over g.rows, bare column references first try the partially
// built output row (so HAVING can reference a SELECT alias), then fall
// back to the group's representative (first) row.
func (ctx *Context) evalGroupExpr(e ast.Expr, g *groupBucket, cur *table.Table, outCols []table.Column, outRow table.Row) (value.Value, error) {
	switch v := e.(type) {
	case nil:
		return value.NewNull(), nil
	case *ast.Literal:
		return evalLiteral(v), nil
	case *ast.ColName:
		if !v.Dotted() && outRow != nil {
			for i, c := range outCols {
				if strings.EqualFold(c.Name, v.Name()) {
					return outRow[i], nil
				}
			}
		}
		if len(g.rows) == 0 {
			return value.NewNull(), nil
		}
		return ctx.resolveColumn(v, cur, g.rows[0])
	case *ast.FuncCall:
		name := strings.ToUpper(v.Name)
		if aggregateNames[name] {
			return ctx.evalAggregateCall(v, cur, g.rows)
		}
		args := make([]value.Value, 0, len(v.Args))
		for _, a := range v.Args {
			if _, ok := a.(*ast.Star); ok {
				continue
			}
			av, err := ctx.evalGroupExpr(a, g, cur, outCols, outRow)
			if err != nil {
				return value.NewNull(), err
			}
			args = append(args, av)
		}
		if fn, ok := scalarFuncs[name]; ok {
			return fn(args), nil
		}
		return value.NewNull(), nil
	case *ast.BinaryOp:
		var left value.Value
		var err error
		if v.Left != nil {
			left, err = ctx.evalGroupExpr(v.Left, g, cur, outCols, outRow)
			if err != nil {
				return value.NewNull(), err
			}
		}
		right, err := ctx.evalGroupExpr(v.Right, g, cur, outCols, outRow)
		if err != nil {
			return value.NewNull(), err
		}
		return applyArith(v.Op, v.Left != nil, left, right)
	case *ast.Case:
		return ctx.evalGroupCase(v, g, cur, outCols, outRow)
	default:
		if len(g.rows) == 0 {
			return value.NewNull(), nil
		}
		return ctx.Evaluate(e, cur, g.rows[0])
	}
}

func (ctx *Context) evalGroupCase(c *ast.Case, g *groupBucket, cur *table.Table, outCols []table.Column, outRow table.Row) (value.Value, error) {
	hasSubject := c.Operand != nil
	var subject value.Value
	if hasSubject {
		v, err := ctx.evalGroupExpr(c.Operand, g, cur, outCols, outRow)
		if err != nil {
			return value.NewNull(), err
		}
		subject = v
	}
	for _, w := range c.Whens {
		matched := false
		if hasSubject {
			we, ok := w.Cond.(ast.Expr)
			if !ok {
				continue
			}
			wv, err := ctx.evalGroupExpr(we, g, cur, outCols, outRow)
			if err != nil {
				return value.NewNull(), err
			}
			matched = value.Equal(subject, wv)
		} else {
			cond, ok := w.Cond.(*ast.Condition)
			if !ok {
				continue
			}
			ok2, err := ctx.evalGroupCondition(cond, g, cur, outCols, outRow)
			if err != nil {
				return value.NewNull(), err
			}
			matched = ok2
		}
		if matched {
			return ctx.evalGroupExpr(w.Result, g, cur, outCols, outRow)
		}
	}
	if c.Else != nil {
		return ctx.evalGroupExpr(c.Else, g, cur, outCols, outRow)
	}
	return value.NewNull(), nil
}

// evalGroupCondition evaluates a HAVING/CASE-guard condition in group
// context, recursing through AND/OR/NOT and delegating comparisons to
// evalGroupExpr so aggregate calls on either side are computed over the
// group's rows.
func (ctx *Context) evalGroupCondition(c *ast.Condition, g *groupBucket, cur *table.Table, outCols []table.Column, outRow table.Row) (bool, error) {
	switch c.Op {
	case ast.CondAnd, ast.CondOr, ast.CondNot:
		left, ok := c.Left.(*ast.Condition)
		if !ok {
			return false, ErrEvaluation.New("expected condition operand")
		}
		l, err := ctx.evalGroupCondition(left, g, cur, outCols, outRow)
		if err != nil {
			return false, err
		}
		if c.Op == ast.CondNot {
			return !l, nil
		}
		if c.Op == ast.CondAnd && !l {
			return false, nil
		}
		if c.Op == ast.CondOr && l {
			return true, nil
		}
		right, ok := c.Right.(*ast.Condition)
		if !ok {
			return false, ErrEvaluation.New("expected condition operand")
		}
		return ctx.evalGroupCondition(right, g, cur, outCols, outRow)
	case ast.CondLike, ast.CondILike, ast.CondIn, ast.CondNotIn:
		// Pattern/membership predicates never reference aggregates in
		// practice; fall back to the representative row.
		if len(g.rows) == 0 {
			return false, nil
		}
		return ctx.EvalCondition(c, cur, g.rows[0])
	default:
		le, ok := c.Left.(ast.Expr)
		if !ok {
			return false, ErrEvaluation.New("expected expression operand")
		}
		re, ok := c.Right.(ast.Expr)
		if !ok {
			return false, ErrEvaluation.New("expected expression operand")
		}
		lv, err := ctx.evalGroupExpr(le, g, cur, outCols, outRow)
		if err != nil {
			return false, err
		}
		rv, err := ctx.evalGroupExpr(re, g, cur, outCols, outRow)
		if err != nil {
			return false, err
		}
		cmp := value.Compare(lv, rv)
		switch c.Op {
		case ast.CondEq:
			return cmp == 0, nil
		case ast.CondNeq:
			return cmp != 0, nil
		case ast.CondLt:
			return cmp < 0, nil
		case ast.CondGt:
			return cmp > 0, nil
		case ast.CondLe:
			return cmp <= 0, nil
		default:
			return cmp >= 0, nil
		}
	}
}

// evalAggregateCall gathers each row's argument value over the group's
// rows and dispatches to AggregateValue; COUNT(*) (a Star argument)
// simply counts rows.
func (ctx *Context) evalAggregateCall(fc *ast.FuncCall, cur *table.Table, rows []table.Row) (value.Value, error) {
	name := strings.ToUpper(fc.Name)
	if len(fc.Args) == 0 {
		return AggregateValue(name, make([]value.Value, len(rows))), nil
	}
	if _, ok := fc.Args[0].(*ast.Star); ok {
		return AggregateValue(name, make([]value.Value, len(rows))), nil
	}
	vals := make([]value.Value, 0, len(rows))
	for _, row := range rows {
		v, err := ctx.Evaluate(fc.Args[0], cur, row)
		if err != nil {
			return value.NewNull(), err
		}
		vals = append(vals, v)
	}
	return AggregateValue(name, vals), nil
}
