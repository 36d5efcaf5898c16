package engine

import (
	"strconv"
	"strings"

	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/table"
	"github.com/cqsql/cq/value"
)

// Evaluate computes e against row of the current table cur, using ctx
// for column resolution, function dispatch and correlated subqueries.
func (ctx *Context) Evaluate(e ast.Expr, cur *table.Table, row table.Row) (value.Value, error) {
	switch v := e.(type) {
	case nil:
		return value.NewNull(), nil
	case *ast.Literal:
		return evalLiteral(v), nil
	case *ast.ColName:
		return ctx.resolveColumn(v, cur, row)
	case *ast.Star:
		return value.NewNull(), nil
	case *ast.BinaryOp:
		return ctx.evalBinaryOp(v, cur, row)
	case *ast.FuncCall:
		return ctx.evalFuncCall(v, cur, row)
	case *ast.WindowFunc:
		addDiag(&ctx.Diags, DiagWindowOutsideSelect, "window function %s used outside a window context", v.Name)
		return value.NewNull(), nil
	case *ast.Case:
		return ctx.evalCase(v, cur, row)
	case *ast.Subquery:
		return ctx.evalScalarSubquery(v, cur, row)
	case *ast.Condition:
		ok, err := ctx.EvalCondition(v, cur, row)
		if err != nil {
			return value.NewNull(), err
		}
		if ok {
			return value.NewInt(1), nil
		}
		return value.NewInt(0), nil
	default:
		return value.NewNull(), ErrEvaluation.New("unsupported expression node")
	}
}

// evalLiteral parses a Literal's textual payload through the same type
// inference as a CSV cell.
func evalLiteral(l *ast.Literal) value.Value {
	switch l.Kind {
	case ast.LiteralNull:
		return value.NewNull()
	case ast.LiteralInt:
		i, _ := strconv.ParseInt(l.Value, 10, 64)
		return value.NewInt(i)
	case ast.LiteralFloat:
		f, _ := strconv.ParseFloat(l.Value, 64)
		return value.NewDouble(f)
	case ast.LiteralString:
		return value.ParseValue(l.Value)
	default:
		return value.NewNull()
	}
}

// resolveColumn implements the four-step column resolution order:
// verbatim dotted lookup, table-alias lookup (reading through the outer
// row for a correlated subquery), unqualified lookup in the current then
// outer table, and finally the non-standard WHERE-references-SELECT-
// alias extension.
func (ctx *Context) resolveColumn(col *ast.ColName, cur *table.Table, row table.Row) (value.Value, error) {
	name := col.Name()

	if col.Dotted() {
		// Step 1: verbatim "a.c" lookup (handles join-prefixed names).
		verbatim := col.Table() + "." + name
		if idx := cur.ColumnIndex(verbatim); idx >= 0 {
			return row[idx], nil
		}
		// Step 2: alias lookup in context. The alias may name the
		// current table, the outer table of a correlated subquery
		// (read through the outer row), or a table whose column also
		// exists on the current one.
		if t, ok := ctx.Tables[strings.ToLower(col.Table())]; ok {
			if idx := t.ColumnIndex(name); idx >= 0 {
				if t == cur && idx < len(row) {
					return row[idx], nil
				}
				if ctx.hasOuter && t == ctx.outerTable && idx < len(ctx.outerRow) {
					return ctx.outerRow[idx], nil
				}
				if idx2 := cur.ColumnIndex(name); idx2 >= 0 {
					return row[idx2], nil
				}
			}
		} else if ctx.hasOuter {
			if idx := ctx.outerTable.ColumnIndex(name); idx >= 0 {
				return ctx.outerRow[idx], nil
			}
		}
		return value.NewNull(), ErrSchema.New("unknown column " + verbatim)
	}

	// Step 3: unqualified lookup, current table then outer table.
	if idx := cur.ColumnIndex(name); idx >= 0 {
		return row[idx], nil
	}
	if ctx.hasOuter {
		if idx := ctx.outerTable.ColumnIndex(name); idx >= 0 {
			return ctx.outerRow[idx], nil
		}
	}

	// Step 4: WHERE-references-SELECT-alias extension (non-standard).
	if ctx.Select != nil {
		for _, item := range ctx.Select.Columns {
			if item.Alias != "" && strings.EqualFold(item.Alias, name) && item.Expr != nil {
				return ctx.Evaluate(item.Expr, cur, row)
			}
		}
	}
	return value.NewNull(), ErrSchema.New("unknown column " + name)
}

// evalBinaryOp implements the arithmetic rules: Null
// propagation, integer/double promotion, division/modulo-by-zero -> Null,
// and the bitwise operators requiring both operands Integer.
func (ctx *Context) evalBinaryOp(b *ast.BinaryOp, cur *table.Table, row table.Row) (value.Value, error) {
	right, err := ctx.Evaluate(b.Right, cur, row)
	if err != nil {
		return value.NewNull(), err
	}
	if b.Left == nil {
		return applyArith(b.Op, false, value.Value{}, right)
	}
	left, err := ctx.Evaluate(b.Left, cur, row)
	if err != nil {
		return value.NewNull(), err
	}
	return applyArith(b.Op, true, left, right)
}

// applyArith applies the arithmetic rules over already
// evaluated operands: Null propagation, integer/double promotion,
// division/modulo-by-zero -> Null, and the bitwise operators requiring
// both operands Integer. hasLeft false makes it the unary +/- form over
// right.
func applyArith(op ast.ArithOp, hasLeft bool, left, right value.Value) (value.Value, error) {
	if !hasLeft {
		if right.IsNull() {
			return value.NewNull(), nil
		}
		if op == ast.OpAdd {
			return right, nil
		}
		switch right.Kind {
		case value.Integer:
			return value.NewInt(-right.I), nil
		case value.Double:
			return value.NewDouble(-right.F), nil
		default:
			return value.NewNull(), nil
		}
	}

	if left.IsNull() || right.IsNull() {
		return value.NewNull(), nil
	}

	switch op {
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor:
		if left.Kind != value.Integer || right.Kind != value.Integer {
			return value.NewNull(), nil
		}
		switch op {
		case ast.OpBitAnd:
			return value.NewInt(left.I & right.I), nil
		case ast.OpBitOr:
			return value.NewInt(left.I | right.I), nil
		default:
			return value.NewInt(left.I ^ right.I), nil
		}
	case ast.OpMod:
		if left.Kind == value.Integer && right.Kind == value.Integer {
			if right.I == 0 {
				return value.NewNull(), nil
			}
			return value.NewInt(left.I % right.I), nil
		}
		lf, lok := left.AsFloat()
		rf, rok := right.AsFloat()
		if !lok || !rok || rf == 0 {
			return value.NewNull(), nil
		}
		return value.NewDouble(modFloat(lf, rf)), nil
	}

	if !left.IsNumeric() || !right.IsNumeric() {
		return value.NewNull(), nil
	}
	lf, _ := left.AsFloat()
	rf, _ := right.AsFloat()
	bothInt := left.Kind == value.Integer && right.Kind == value.Integer

	switch op {
	case ast.OpAdd:
		if bothInt {
			return value.NewInt(left.I + right.I), nil
		}
		return preserveIntegral(lf + rf), nil
	case ast.OpSub:
		if bothInt {
			return value.NewInt(left.I - right.I), nil
		}
		return preserveIntegral(lf - rf), nil
	case ast.OpMul:
		if bothInt {
			return value.NewInt(left.I * right.I), nil
		}
		return preserveIntegral(lf * rf), nil
	case ast.OpDiv:
		if rf == 0 {
			return value.NewNull(), nil
		}
		if bothInt && left.I%right.I == 0 {
			return value.NewInt(left.I / right.I), nil
		}
		return preserveIntegral(lf / rf), nil
	default:
		return value.NewNull(), ErrEvaluation.New("unsupported binary operator")
	}
}

// preserveIntegral returns an Integer value when f is exactly integral,
// else a Double.
func preserveIntegral(f float64) value.Value {
	if f == float64(int64(f)) {
		return value.NewInt(int64(f))
	}
	return value.NewDouble(f)
}

func modFloat(a, b float64) float64 {
	return a - b*float64(int64(a/b))
}

func (ctx *Context) evalCase(c *ast.Case, cur *table.Table, row table.Row) (value.Value, error) {
	var subject value.Value
	hasSubject := c.Operand != nil
	if hasSubject {
		v, err := ctx.Evaluate(c.Operand, cur, row)
		if err != nil {
			return value.NewNull(), err
		}
		subject = v
	}

	for _, w := range c.Whens {
		matched := false
		if hasSubject {
			whenExpr, ok := w.Cond.(ast.Expr)
			if !ok {
				continue
			}
			whenVal, err := ctx.Evaluate(whenExpr, cur, row)
			if err != nil {
				return value.NewNull(), err
			}
			matched = value.Equal(subject, whenVal)
		} else {
			cond, ok := w.Cond.(*ast.Condition)
			if !ok {
				continue
			}
			ok2, err := ctx.EvalCondition(cond, cur, row)
			if err != nil {
				return value.NewNull(), err
			}
			matched = ok2
		}
		if matched {
			return ctx.Evaluate(w.Result, cur, row)
		}
	}

	if c.Else != nil {
		return ctx.Evaluate(c.Else, cur, row)
	}
	return value.NewNull(), nil
}

// evalScalarSubquery evaluates sub correlated to (cur, row), requiring
// exactly one row and one column.
func (ctx *Context) evalScalarSubquery(sub *ast.Subquery, cur *table.Table, row table.Row) (value.Value, error) {
	child := ctx.WithOuter(row, cur)
	result, _, err := child.evalSelect(sub.Query)
	ctx.Diags = append(ctx.Diags, child.Diags...)
	if err != nil {
		return value.NewNull(), err
	}
	if len(result.Rows) != 1 || len(result.Columns) != 1 {
		addDiag(&ctx.Diags, DiagWrongCardinality, "scalar subquery returned %d rows x %d columns, want 1x1", len(result.Rows), len(result.Columns))
		return value.NewNull(), nil
	}
	return result.Rows[0][0], nil
}
