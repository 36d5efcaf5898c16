package engine

import (
	"strings"

	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/table"
	"github.com/cqsql/cq/value"
)

// EvalCondition evaluates c against row of the current table cur:
// AND/OR short-circuit left to right, NOT negates
// recursively, comparisons compare under value semantics, IN/NOT IN and
// LIKE/ILIKE follow their dedicated rules below.
func (ctx *Context) EvalCondition(c *ast.Condition, cur *table.Table, row table.Row) (bool, error) {
	switch c.Op {
	case ast.CondAnd:
		l, err := ctx.evalNodeAsCond(c.Left, cur, row)
		if err != nil || !l {
			return false, err
		}
		return ctx.evalNodeAsCond(c.Right, cur, row)
	case ast.CondOr:
		l, err := ctx.evalNodeAsCond(c.Left, cur, row)
		if err != nil {
			return false, err
		}
		if l {
			return true, nil
		}
		return ctx.evalNodeAsCond(c.Right, cur, row)
	case ast.CondNot:
		v, err := ctx.evalNodeAsCond(c.Left, cur, row)
		if err != nil {
			return false, err
		}
		return !v, nil
	case ast.CondEq, ast.CondNeq, ast.CondLt, ast.CondGt, ast.CondLe, ast.CondGe:
		lv, rv, err := ctx.evalComparands(c, cur, row)
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
	case ast.CondLike, ast.CondILike:
		lv, rv, err := ctx.evalComparands(c, cur, row)
		if err != nil {
			return false, err
		}
		if lv.Kind != value.String || rv.Kind != value.String {
			return false, nil
		}
		s, pattern := lv.S, rv.S
		if c.Op == ast.CondILike {
			s = strings.ToLower(s)
			pattern = strings.ToLower(pattern)
		}
		return likeMatch(s, pattern), nil
	case ast.CondIn, ast.CondNotIn:
		return ctx.evalIn(c, cur, row)
	default:
		return false, ErrEvaluation.New("unsupported condition operator")
	}
}

func (ctx *Context) evalComparands(c *ast.Condition, cur *table.Table, row table.Row) (value.Value, value.Value, error) {
	leftExpr, ok := c.Left.(ast.Expr)
	if !ok {
		return value.NewNull(), value.NewNull(), ErrEvaluation.New("expected expression operand")
	}
	rightExpr, ok := c.Right.(ast.Expr)
	if !ok {
		return value.NewNull(), value.NewNull(), ErrEvaluation.New("expected expression operand")
	}
	lv, err := ctx.Evaluate(leftExpr, cur, row)
	if err != nil {
		return value.NewNull(), value.NewNull(), err
	}
	rv, err := ctx.Evaluate(rightExpr, cur, row)
	if err != nil {
		return value.NewNull(), value.NewNull(), err
	}
	return lv, rv, nil
}

// evalIn implements the IN (list) and IN (subquery) rules:
// empty list means IN = false / NOT IN = true; a subquery must return
// exactly one column and inherits the outer row/table for correlation.
func (ctx *Context) evalIn(c *ast.Condition, cur *table.Table, row table.Row) (bool, error) {
	leftExpr, ok := c.Left.(ast.Expr)
	if !ok {
		return false, ErrEvaluation.New("expected expression operand")
	}
	lv, err := ctx.Evaluate(leftExpr, cur, row)
	if err != nil {
		return false, err
	}

	found := false
	switch r := c.Right.(type) {
	case *ast.ExprList:
		for _, item := range r.Items {
			iv, err := ctx.Evaluate(item, cur, row)
			if err != nil {
				return false, err
			}
			if value.Equal(lv, iv) {
				found = true
				break
			}
		}
	case *ast.Subquery:
		child := ctx.WithOuter(row, cur)
		result, _, err := child.evalSelect(r.Query)
		ctx.Diags = append(ctx.Diags, child.Diags...)
		if err != nil {
			return false, err
		}
		if len(result.Columns) != 1 {
			return false, ErrSchema.New("IN subquery must return exactly one column")
		}
		for _, rr := range result.Rows {
			if value.Equal(lv, rr[0]) {
				found = true
				break
			}
		}
	default:
		return false, ErrEvaluation.New("unsupported IN right-hand side")
	}

	if c.Op == ast.CondNotIn {
		return !found, nil
	}
	return found, nil
}

// evalNodeAsCond evaluates a Condition node's operand, which is a
// *ast.Condition for nested AND/OR/NOT, or (structurally permitted by
// the grammar) a bare arithmetic Expr used as a truth value.
func (ctx *Context) evalNodeAsCond(n ast.Node, cur *table.Table, row table.Row) (bool, error) {
	switch v := n.(type) {
	case *ast.Condition:
		return ctx.EvalCondition(v, cur, row)
	case ast.Expr:
		val, err := ctx.Evaluate(v, cur, row)
		if err != nil {
			return false, err
		}
		return truthy(val), nil
	default:
		return false, ErrEvaluation.New("expected boolean operand")
	}
}

func truthy(v value.Value) bool {
	switch v.Kind {
	case value.Null:
		return false
	case value.Integer:
		return v.I != 0
	case value.Double:
		return v.F != 0
	case value.String:
		return v.S != ""
	default:
		return false
	}
}

// likeMatch is the classic two-pointer backtracking LIKE matcher:
// '%' matches any run (including empty), '_'
// matches exactly one character, and a terminal '%' absorbs the rest of
// the input.
func likeMatch(s, pattern string) bool {
	return likeMatchRunes([]rune(s), []rune(pattern))
}

func likeMatchRunes(s, p []rune) bool {
	for len(p) > 0 && p[0] == '%' {
		// Collapse a run of consecutive '%' into one.
		rest := p[1:]
		for len(rest) > 0 && rest[0] == '%' {
			rest = rest[1:]
		}
		p = rest
		if len(p) == 0 {
			return true
		}
		for i := 0; i <= len(s); i++ {
			if likeMatchRunes(s[i:], p) {
				return true
			}
		}
		return false
	}
	if len(p) == 0 {
		return len(s) == 0
	}
	if len(s) == 0 {
		return false
	}
	if p[0] == '_' || p[0] == s[0] {
		return likeMatchRunes(s[1:], p[1:])
	}
	return false
}
