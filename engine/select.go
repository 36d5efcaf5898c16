package engine

import (
	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/table"
)

// evalSelect implements the SELECT control flow: load FROM,
// fold in JOINs, filter WHERE, group+aggregate or project, apply ORDER
// BY, DISTINCT and LIMIT/OFFSET. It sets ctx.Select for the duration so
// nested evaluation (resolveColumn's WHERE-alias fallback, GROUP BY
// expressions) can see the query being evaluated, restoring the caller's
// on return so a subquery doesn't leak its SELECT into the outer scope.
func (ctx *Context) evalSelect(sel *ast.SelectStmt) (*table.Table, []Diagnostic, error) {
	prevSelect := ctx.Select
	ctx.Select = sel
	defer func() { ctx.Select = prevSelect }()

	var cur *table.Table
	if sel.From == nil {
		cur = &table.Table{Rows: []table.Row{{}}}
	} else {
		base, alias, err := ctx.loadTableExpr(sel.From)
		if err != nil {
			return nil, nil, err
		}
		if len(sel.Joins) > 0 {
			cur, err = ctx.execJoins(base, alias, sel.Joins)
			if err != nil {
				return nil, nil, err
			}
		} else {
			cur = base
		}
	}

	var filtered []table.Row
	for _, row := range cur.Rows {
		if sel.Where == nil {
			filtered = append(filtered, row)
			continue
		}
		ok, err := ctx.EvalCondition(sel.Where, cur, row)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			filtered = append(filtered, row)
		}
	}

	var result *table.Table
	var err error
	if needsGrouping(sel) {
		result, err = ctx.execGroupAggregate(sel, cur, filtered)
	} else {
		result, err = ctx.execProject(sel, cur, filtered)
	}
	if err != nil {
		return nil, nil, err
	}

	ctx.applyOrderBy(sel, result)
	if sel.Distinct {
		applyDistinct(result)
	}
	applyLimitOffset(result, sel.Limit, sel.Offset)

	return result, ctx.Diags, nil
}
