package parser

import (
	"strings"

	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/token"
)

// exprText reconstructs the textual spelling of e, used to populate
// SelectItem.Text (an unaliased item's text form is its column label and
// the key ORDER BY references are matched against).
func exprText(e ast.Expr) string {
	switch v := e.(type) {
	case nil:
		return ""
	case *ast.ColName:
		return v.Raw()
	case *ast.Literal:
		switch v.Kind {
		case ast.LiteralString:
			return "'" + v.Value + "'"
		case ast.LiteralNull:
			return "NULL"
		default:
			return v.Value
		}
	case *ast.Star:
		if v.Table != "" {
			return v.Table + ".*"
		}
		return "*"
	case *ast.FuncCall:
		return v.Name + "(" + exprListText(v.Args) + ")"
	case *ast.WindowFunc:
		return v.Name + "(" + exprListText(v.Args) + ")"
	case *ast.BinaryOp:
		if v.Left == nil {
			return arithOpText(v.Op) + exprText(v.Right)
		}
		return exprText(v.Left) + " " + arithOpText(v.Op) + " " + exprText(v.Right)
	case *ast.Case:
		var b strings.Builder
		b.WriteString("CASE")
		if v.Operand != nil {
			b.WriteString(" " + exprText(v.Operand))
		}
		for _, w := range v.Whens {
			b.WriteString(" WHEN " + nodeText(w.Cond) + " THEN " + exprText(w.Result))
		}
		if v.Else != nil {
			b.WriteString(" ELSE " + exprText(v.Else))
		}
		b.WriteString(" END")
		return b.String()
	case *ast.Subquery:
		return "(...)"
	case *ast.Condition:
		return conditionText(v)
	default:
		return ""
	}
}

func nodeText(n ast.Node) string {
	switch v := n.(type) {
	case ast.Expr:
		return exprText(v)
	case *ast.Condition:
		return conditionText(v)
	default:
		return ""
	}
}

func conditionText(c *ast.Condition) string {
	switch c.Op {
	case ast.CondAnd:
		return nodeText(c.Left) + " AND " + nodeText(c.Right)
	case ast.CondOr:
		return nodeText(c.Left) + " OR " + nodeText(c.Right)
	case ast.CondNot:
		return "NOT " + nodeText(c.Left)
	case ast.CondEq:
		return nodeText(c.Left) + " = " + nodeText(c.Right)
	case ast.CondNeq:
		return nodeText(c.Left) + " != " + nodeText(c.Right)
	case ast.CondLt:
		return nodeText(c.Left) + " < " + nodeText(c.Right)
	case ast.CondGt:
		return nodeText(c.Left) + " > " + nodeText(c.Right)
	case ast.CondLe:
		return nodeText(c.Left) + " <= " + nodeText(c.Right)
	case ast.CondGe:
		return nodeText(c.Left) + " >= " + nodeText(c.Right)
	case ast.CondLike:
		return nodeText(c.Left) + " LIKE " + nodeText(c.Right)
	case ast.CondILike:
		return nodeText(c.Left) + " ILIKE " + nodeText(c.Right)
	case ast.CondIn:
		return nodeText(c.Left) + " IN (...)"
	case ast.CondNotIn:
		return nodeText(c.Left) + " NOT IN (...)"
	default:
		return ""
	}
}

func exprListText(args []ast.Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = exprText(a)
	}
	return strings.Join(parts, ", ")
}

func arithOpText(op ast.ArithOp) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpMod:
		return "%"
	case ast.OpBitAnd:
		return "&"
	case ast.OpBitOr:
		return "|"
	case ast.OpBitXor:
		return "^"
	default:
		return ""
	}
}

// scanTextExpr reconstructs the raw spelling of the expression starting at
// the current token, for ORDER BY items that are matched
// against result columns purely by text and so are never bound to an
// Expr node. It consumes tokens directly,
// tracking parenthesis depth so it can span function calls such as
// AVG(age) or nested arithmetic.
func (p *Parser) scanTextExpr() string {
	var b strings.Builder
	depth := 0
	first := true
	prev := token.ILLEGAL
	for {
		switch p.cur.Type {
		case token.EOF, token.SEMI:
			return b.String()
		case token.COMMA:
			if depth == 0 {
				return b.String()
			}
		case token.LPAREN:
			depth++
		case token.RPAREN:
			if depth == 0 {
				return b.String()
			}
			depth--
		case token.ASC, token.DESC:
			if depth == 0 {
				return strings.TrimSpace(b.String())
			}
		case token.LIMIT, token.OFFSET, token.UNION, token.INTERSECT, token.EXCEPT:
			if depth == 0 {
				return b.String()
			}
		}
		if !first && needsSpaceBetween(prev, p.cur.Type) {
			b.WriteByte(' ')
		}
		b.WriteString(tokenText(p.cur))
		first = false
		prev = p.cur.Type
		p.advance()
	}
}

// needsSpaceBetween matches exprText's spacing: no space around '.',
// none after '(', none before ')' , '(' or ',', so "AVG(age)" scans back
// to exactly "AVG(age)".
func needsSpaceBetween(prev, cur token.Token) bool {
	switch cur {
	case token.DOT, token.LPAREN, token.RPAREN, token.COMMA:
		return false
	}
	switch prev {
	case token.DOT, token.LPAREN:
		return false
	}
	return true
}

func tokenText(it token.Item) string {
	switch it.Type {
	case token.STRING:
		return "'" + it.Value + "'"
	case token.DOT, token.LPAREN, token.RPAREN, token.COMMA:
		return it.Type.String()
	default:
		if it.Value != "" {
			return it.Value
		}
		return it.Type.String()
	}
}
