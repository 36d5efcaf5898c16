// Package ast declares the tagged-union abstract syntax tree produced by
// the parser and consumed by the evaluator.
package ast

import "github.com/cqsql/cq/token"

// Node is implemented by every AST type; it reports the source span.
type Node interface {
	Pos() token.Pos
	End() token.Pos
}

// Statement is a top-level executable construct: a query or a DML/DDL
// operation.
type Statement interface {
	Node
	statementNode()
}

// Expr is a value-producing expression node.
type Expr interface {
	Node
	exprNode()
}

// TableExpr appears in a FROM clause or as a join's right-hand side.
type TableExpr interface {
	Node
	tableExprNode()
}

// AlterAction is one clause of an ALTER TABLE statement.
type AlterAction interface {
	Node
	alterActionNode()
}
