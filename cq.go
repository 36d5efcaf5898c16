// Package cq is the top-level facade over the parser, engine and CSV
// storage layer: parse one statement, run it against its CSV sources,
// and return the resulting table.
package cq

import (
	"github.com/cqsql/cq/config"
	"github.com/cqsql/cq/engine"
	"github.com/cqsql/cq/parser"
	"github.com/cqsql/cq/table"
)

// Execute parses and runs a single SQL statement under cfg, returning
// either a parse/schema/evaluation/i-o/safety error or the result table
// plus any non-fatal diagnostics collected along the way.
// cfg.ForceDelete threads through to the parser's DELETE-without-WHERE
// safety check.
func Execute(query string, cfg config.Config) (*table.Table, []engine.Diagnostic, error) {
	p := parser.Get(query)
	defer parser.Put(p)
	p.AllowUnsafeDelete(cfg.ForceDelete)
	stmt, err := p.Parse()
	if err != nil {
		return nil, nil, engine.ErrParse.New(err.Error())
	}
	if stmt == nil {
		return nil, nil, nil
	}

	ctx := engine.NewContext(cfg)
	t, err := ctx.Execute(stmt)
	if err != nil {
		return nil, ctx.Diags, err
	}
	return t, ctx.Diags, nil
}
