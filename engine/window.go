package engine

import (
	"sort"
	"strings"

	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/table"
	"github.com/cqsql/cq/value"
)

type windowPartition struct {
	key     string
	indices []int
}

// computeWindowValues implements the window function engine: rows are
// partitioned by PARTITION BY's composite key in insertion order, sorted
// within each partition by the single ORDER BY column when present, and
// assigned a value per the function's algorithm. The result is indexed
// by position in rows, not by sorted position.
func (ctx *Context) computeWindowValues(wf *ast.WindowFunc, cur *table.Table, rows []table.Row) ([]value.Value, error) {
	n := len(rows)
	result := make([]value.Value, n)

	groups := map[string]*windowPartition{}
	var order []string
	for i, row := range rows {
		key := ctx.partitionKey(wf.PartitionBy, cur, row)
		p, ok := groups[key]
		if !ok {
			p = &windowPartition{key: key}
			groups[key] = p
			order = append(order, key)
		}
		p.indices = append(p.indices, i)
	}

	name := strings.ToUpper(wf.Name)
	orderColIdx := -1
	if wf.HasOrderBy {
		orderColIdx = cur.ColumnIndex(wf.OrderBy)
	}

	for _, key := range order {
		p := groups[key]
		idxs := append([]int(nil), p.indices...)
		if orderColIdx >= 0 {
			sort.SliceStable(idxs, func(a, b int) bool {
				cmp := value.Compare(rows[idxs[a]][orderColIdx], rows[idxs[b]][orderColIdx])
				if wf.Desc {
					return cmp > 0
				}
				return cmp < 0
			})
		}

		switch name {
		case "ROW_NUMBER":
			for pos, ri := range idxs {
				result[ri] = value.NewInt(int64(pos + 1))
			}
		case "RANK", "DENSE_RANK":
			ctx.computeRank(name, orderColIdx, idxs, rows, result)
		case "LAG", "LEAD":
			ctx.computeLagLead(name, wf, cur, idxs, rows, result)
		default:
			ctx.computeCumulativeAggregate(name, wf, orderColIdx, cur, idxs, rows, result)
		}
	}
	return result, nil
}

func (ctx *Context) computeRank(name string, orderColIdx int, idxs []int, rows []table.Row, result []value.Value) {
	if orderColIdx < 0 {
		for _, ri := range idxs {
			result[ri] = value.NewNull()
		}
		addDiag(&ctx.Diags, DiagUnsupportedOperand, "%s requires ORDER BY", name)
		return
	}
	rank, dense := 0, 0
	for pos, ri := range idxs {
		if pos == 0 || value.Compare(rows[idxs[pos]][orderColIdx], rows[idxs[pos-1]][orderColIdx]) != 0 {
			rank = pos + 1
			dense++
		}
		if name == "RANK" {
			result[ri] = value.NewInt(int64(rank))
		} else {
			result[ri] = value.NewInt(int64(dense))
		}
	}
}

func (ctx *Context) computeLagLead(name string, wf *ast.WindowFunc, cur *table.Table, idxs []int, rows []table.Row, result []value.Value) {
	offset := 1
	def := value.NewNull()
	if len(wf.Args) >= 2 {
		if v, err := ctx.Evaluate(wf.Args[1], cur, rows[idxs[0]]); err == nil {
			if f, ok := v.AsFloat(); ok {
				offset = int(f)
			}
		}
	}
	if len(wf.Args) >= 3 {
		if v, err := ctx.Evaluate(wf.Args[2], cur, rows[idxs[0]]); err == nil {
			def = v
		}
	}
	var colExpr ast.Expr
	if len(wf.Args) > 0 {
		colExpr = wf.Args[0]
	}
	for pos, ri := range idxs {
		srcPos := pos - offset
		if name == "LEAD" {
			srcPos = pos + offset
		}
		if srcPos < 0 || srcPos >= len(idxs) || colExpr == nil {
			result[ri] = def
			continue
		}
		v, err := ctx.Evaluate(colExpr, cur, rows[idxs[srcPos]])
		if err != nil {
			result[ri] = value.NewNull()
			continue
		}
		result[ri] = v
	}
}

func (ctx *Context) computeCumulativeAggregate(name string, wf *ast.WindowFunc, orderColIdx int, cur *table.Table, idxs []int, rows []table.Row, result []value.Value) {
	var colExpr ast.Expr
	if len(wf.Args) > 0 {
		if _, isStar := wf.Args[0].(*ast.Star); !isStar {
			colExpr = wf.Args[0]
		}
	}
	for pos, ri := range idxs {
		frame := idxs
		if orderColIdx >= 0 {
			frame = idxs[:pos+1]
		}
		vals := make([]value.Value, 0, len(frame))
		for _, fi := range frame {
			if colExpr == nil {
				vals = append(vals, value.NewNull())
				continue
			}
			v, err := ctx.Evaluate(colExpr, cur, rows[fi])
			if err != nil {
				vals = append(vals, value.NewNull())
				continue
			}
			vals = append(vals, v)
		}
		result[ri] = AggregateValue(name, vals)
	}
}

func (ctx *Context) partitionKey(cols []string, cur *table.Table, row table.Row) string {
	if len(cols) == 0 {
		return ""
	}
	parts := make([]string, len(cols))
	for i, c := range cols {
		idx := cur.ColumnIndex(c)
		if idx < 0 {
			parts[i] = "NULL"
			continue
		}
		parts[i] = row[idx].KeyText()
	}
	return strings.Join(parts, "\t")
}
