package engine

import (
	"strings"

	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/config"
	"github.com/cqsql/cq/csvio"
	"github.com/cqsql/cq/table"
)

// Context carries the state threaded through one query's evaluation:
// the loaded source tables by alias, the query tree (for the
// WHERE-references-SELECT-alias fallback of column resolution), and the
// outer row/table pair for correlated subqueries.
type Context struct {
	Cfg   config.Config
	Diags []Diagnostic

	// Tables holds each FROM/JOIN source by lower-cased alias, as loaded
	// from disk before any join prefixing.
	Tables map[string]*table.Table

	// Select is the query whose SELECT list is consulted for the
	// WHERE-alias fallback (§4.3.1 step 4). It changes as evaluation
	// descends into subqueries.
	Select *ast.SelectStmt

	outerRow   table.Row
	outerTable *table.Table
	hasOuter   bool
}

// NewContext creates an empty evaluation context.
func NewContext(cfg config.Config) *Context {
	return &Context{Cfg: cfg, Tables: map[string]*table.Table{}}
}

// WithOuter returns a child context correlating to outerRow/outerTable,
// used while evaluating a scalar or IN subquery.
func (c *Context) WithOuter(row table.Row, t *table.Table) *Context {
	child := &Context{
		Cfg:        c.Cfg,
		Tables:     c.Tables,
		Select:     c.Select,
		outerRow:   row,
		outerTable: t,
		hasOuter:   true,
	}
	return child
}

// loadTableExpr loads a FROM/JOIN table expression (a named CSV file or
// a subquery) into ctx.Tables under its alias (or its bare name if no
// alias is given), and returns the resulting table and alias.
func (ctx *Context) loadTableExpr(te ast.TableExpr) (*table.Table, string, error) {
	switch v := te.(type) {
	case *ast.TableRef:
		t, err := csvio.Load(v.Name, ctx.Cfg.CSVOptions())
		if err != nil {
			return nil, "", ErrIO.New(err.Error())
		}
		alias := v.Alias
		if alias == "" {
			alias = baseAlias(v.Name)
		}
		ctx.Tables[strings.ToLower(alias)] = t
		return t, alias, nil
	case *ast.SubqueryTable:
		sub, _, err := ctx.evalSelect(v.Query)
		if err != nil {
			return nil, "", err
		}
		alias := v.Alias
		if alias == "" {
			alias = "subquery"
		}
		ctx.Tables[strings.ToLower(alias)] = sub
		return sub, alias, nil
	default:
		return nil, "", ErrSchema.New("unsupported table expression")
	}
}

// baseAlias derives a default table alias from a file path, stripping
// any directory and the .csv extension, e.g. "data/users.csv" -> "users".
func baseAlias(name string) string {
	s := name
	if i := strings.LastIndexAny(s, "/\\"); i >= 0 {
		s = s[i+1:]
	}
	if strings.HasSuffix(strings.ToLower(s), ".csv") {
		s = s[:len(s)-4]
	}
	return s
}
