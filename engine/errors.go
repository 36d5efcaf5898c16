package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// The engine's five error kinds: parse, schema, evaluation, i/o and
// safety. The first/second/fourth/fifth abort the statement; evaluation
// events usually degrade to Null plus a Diagnostic instead.
var (
	ErrParse      = goerrors.NewKind("parse error: %s")
	ErrSchema     = goerrors.NewKind("schema error: %s")
	ErrEvaluation = goerrors.NewKind("evaluation error: %s")
	ErrIO         = goerrors.NewKind("i/o error: %s")
	ErrSafety     = goerrors.NewKind("safety error: %s")
)

// DiagnosticKind classifies a non-fatal evaluation event: the offending
// value becomes Null and evaluation continues.
type DiagnosticKind int

const (
	DiagWrongCardinality DiagnosticKind = iota
	DiagWindowOutsideSelect
	DiagUnsupportedOperand
	DiagUnresolvedOrderBy
)

// Diagnostic is one non-aborting evaluation event collected during a
// query, carried alongside the result rather than printed from within
// the engine.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

// Log is the package-level structured logger that addDiag writes each
// diagnostic to. It defaults to logrus's standard logger; cmd/cq does not
// replace it.
var Log logrus.FieldLogger = logrus.StandardLogger()

func addDiag(diags *[]Diagnostic, kind DiagnosticKind, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	*diags = append(*diags, Diagnostic{Kind: kind, Message: msg})
	Log.WithField("kind", kind).Warn(msg)
}
