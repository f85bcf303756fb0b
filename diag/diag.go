// Package diag defines the structured diagnostic record shared by the
// lexer, parser, module constant analyzer, and compiler.
//
// Every user-facing problem surfaced before the VM starts running is
// reported as a [Diagnostic] rather than a bare Go error, so an external
// diagnostics printer (outside this module's scope) can render a stable
// code, severity, message, optional hint, and source span uniformly.
package diag

import (
	"fmt"

	"github.com/flux-lang/flux/token"
)

// Severity classifies a diagnostic as blocking compilation or merely advisory.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
)

// Code identifiers. Lexical codes are E00x and syntactic codes E01x;
// semantic (constant analyzer + compiler) codes are E04x-E05x; warnings are Wxxx.
const (
	CodeUnterminatedString = "E001"
	CodeInvalidNumber      = "E002"

	CodeUnexpectedToken  = "E010"
	CodeMissingDelimiter = "E011"
	CodeInvalidPattern   = "E012"

	CodeCircularConstant    = "E041"
	CodeNonConstantExpr     = "E042"
	CodeUnknownConstantRef  = "E043"
	CodeUndefinedVariable   = "E050"
	CodeDuplicateGlobal     = "E051"
	CodeImmutableAssign     = "E052"
	CodePrivateMemberAccess = "E053"
	CodeAssignOuterScope    = "E054"
	CodeImportCollision     = "E055"

	CodeUnusedFunction = "W007"
)

// Diagnostic is a single structured problem report.
type Diagnostic struct {
	Code     string
	Severity Severity
	Message  string
	Hint     string
	Span     token.Span
}

func (d Diagnostic) Error() string {
	if d.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", d.Code, d.Message, d.Hint)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// New builds an error-severity diagnostic.
func New(code, message string, span token.Span) Diagnostic {
	return Diagnostic{Code: code, Severity: Error, Message: message, Span: span}
}

// NewWithHint builds an error-severity diagnostic carrying a fix hint.
func NewWithHint(code, message, hint string, span token.Span) Diagnostic {
	return Diagnostic{Code: code, Severity: Error, Message: message, Hint: hint, Span: span}
}

// Warn builds a warning-severity diagnostic.
func Warn(code, message string, span token.Span) Diagnostic {
	return Diagnostic{Code: code, Severity: Warning, Message: message, Span: span}
}

// Diagnostics is an ordered collection of [Diagnostic] records, returned by
// pipeline stages that keep parsing/analyzing after the first failure.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	if len(ds) == 0 {
		return "no diagnostics"
	}
	if len(ds) == 1 {
		return ds[0].Error()
	}
	return fmt.Sprintf("%s (and %d more diagnostic(s))", ds[0].Error(), len(ds)-1)
}

// HasErrors reports whether any diagnostic in the collection is an Error.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
