package engine

import (
	"sort"
	"strings"

	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/table"
	"github.com/cqsql/cq/value"
)

// projCol is one resolved entry of a SELECT list after star expansion:
// either a straight copy of a source column, an expression to evaluate
// per row, or a window function filled in by a dedicated pass.
type projCol struct {
	name      string
	srcIdx    int // >= 0 for a column copy
	expr      ast.Expr
	windowIdx int // >= 0 for a window function, indexing into windowItems
}

// execProject implements the result builder for the
// non-grouped path: '*'/"alias.*" expansion, per-item naming (alias,
// else a function/expression's reconstructed text, else the bare column
// name with its table prefix stripped), and a window function pass once
// every row's other columns are in place.
func (ctx *Context) execProject(sel *ast.SelectStmt, cur *table.Table, rows []table.Row) (*table.Table, error) {
	var cols []projCol
	var windowItems []*ast.WindowFunc

	for _, item := range sel.Columns {
		if item.Star != nil {
			for ci, c := range cur.Columns {
				if item.Star.Table != "" && !strings.EqualFold(columnTablePrefix(c.Name), item.Star.Table) {
					continue
				}
				cols = append(cols, projCol{name: stripTablePrefix(c.Name), srcIdx: ci, windowIdx: -1})
			}
			continue
		}
		if wf, ok := item.Expr.(*ast.WindowFunc); ok {
			wi := len(windowItems)
			windowItems = append(windowItems, wf)
			cols = append(cols, projCol{name: columnDisplayName(item), srcIdx: -1, windowIdx: wi})
			continue
		}
		cols = append(cols, projCol{name: columnDisplayName(item), srcIdx: -1, expr: item.Expr, windowIdx: -1})
	}

	outCols := make([]table.Column, len(cols))
	for i, c := range cols {
		kind := value.Null
		if c.srcIdx >= 0 {
			kind = cur.Columns[c.srcIdx].InferredKind
		}
		outCols[i] = table.Column{Name: c.name, InferredKind: kind}
	}

	out := &table.Table{
		Origin:    cur.Origin,
		Columns:   outCols,
		Delimiter: cur.Delimiter,
		Quote:     cur.Quote,
		HasHeader: cur.HasHeader,
	}

	for _, row := range rows {
		outRow := make(table.Row, len(cols))
		for i, c := range cols {
			switch {
			case c.srcIdx >= 0:
				outRow[i] = row[c.srcIdx]
			case c.windowIdx >= 0:
				outRow[i] = value.NewNull()
			default:
				v, err := ctx.Evaluate(c.expr, cur, row)
				if err != nil {
					return nil, err
				}
				outRow[i] = v
			}
		}
		out.Rows = append(out.Rows, outRow)
	}

	for wi, wf := range windowItems {
		values, err := ctx.computeWindowValues(wf, cur, rows)
		if err != nil {
			return nil, err
		}
		for i, c := range cols {
			if c.windowIdx != wi {
				continue
			}
			for ri := range out.Rows {
				out.Rows[ri][i] = values[ri]
			}
		}
	}

	return out, nil
}

func columnDisplayName(item *ast.SelectItem) string {
	if item.Alias != "" {
		return item.Alias
	}
	if col, ok := item.Expr.(*ast.ColName); ok {
		return col.Name()
	}
	return item.Text
}

func columnTablePrefix(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return ""
}

func stripTablePrefix(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// applyOrderBy implements ORDER BY over the result: each item's text form
// is matched against a result column name, falling back to the name with
// any table prefix stripped; an unresolved item is reported as a
// diagnostic and otherwise ignored, leaving prior ordering untouched.
func (ctx *Context) applyOrderBy(sel *ast.SelectStmt, out *table.Table) {
	if len(sel.OrderBy) == 0 {
		return
	}
	type key struct {
		idx  int
		desc bool
	}
	var keys []key
	for _, item := range sel.OrderBy {
		idx := findOrderColumn(sel, out, item.Text)
		if idx < 0 {
			addDiag(&ctx.Diags, DiagUnresolvedOrderBy, "ORDER BY %q does not match a result column", item.Text)
			continue
		}
		keys = append(keys, key{idx: idx, desc: item.Desc})
	}
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(out.Rows, func(a, b int) bool {
		for _, k := range keys {
			cmp := value.Compare(out.Rows[a][k.idx], out.Rows[b][k.idx])
			if cmp == 0 {
				continue
			}
			if k.desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// findOrderColumn matches an ORDER BY item's text against the result's
// display names first, then against the SELECT items' original text
// forms (stripping table prefixes on both sides), so an aliased item can
// still be ordered by its spelled-out expression.
func findOrderColumn(sel *ast.SelectStmt, out *table.Table, text string) int {
	if idx := out.ColumnIndex(text); idx >= 0 {
		return idx
	}
	if idx := out.ColumnIndex(stripTablePrefix(text)); idx >= 0 {
		return idx
	}
	for _, item := range sel.Columns {
		if item.Star != nil || item.Text == "" {
			continue
		}
		if strings.EqualFold(item.Text, text) ||
			strings.EqualFold(stripTablePrefix(item.Text), stripTablePrefix(text)) {
			return out.ColumnIndex(columnDisplayName(item))
		}
	}
	return -1
}

// applyDistinct implements DISTINCT: value-equality
// deduplication preserving first-seen order.
func applyDistinct(out *table.Table) {
	seen := map[string]bool{}
	rows := out.Rows[:0]
	for _, row := range out.Rows {
		key := rowKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, row)
	}
	out.Rows = rows
}

func rowKey(row table.Row) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = v.KeyText()
	}
	return strings.Join(parts, "\x1f")
}

// applyLimitOffset implements LIMIT/OFFSET: -1 means
// "unset"; an offset at or beyond the row count yields an empty result.
func applyLimitOffset(out *table.Table, limit, offset int) {
	if offset > 0 {
		if offset >= len(out.Rows) {
			out.Rows = nil
		} else {
			out.Rows = out.Rows[offset:]
		}
	}
	if limit >= 0 && limit < len(out.Rows) {
		out.Rows = out.Rows[:limit]
	}
}
