// Package diagnostics provides the single flat error taxonomy shared by
// the catalog parser, the expression evaluator, the solver, and the
// execution engine.
package diagnostics

import "fmt"

// ErrorCode identifies the kind of diagnostic. Codes are stable strings
// rather than an enum so they survive round-tripping through JSON.
type ErrorCode string

const (
	ErrDuplicateTypeName       ErrorCode = "C001"
	ErrUndeclaredTypeReference ErrorCode = "C002"
	ErrMalformedSignature      ErrorCode = "C003"
	ErrMalformedImpl           ErrorCode = "C004"
	ErrUnterminatedFuncBlock   ErrorCode = "C005"
	ErrMalformedType           ErrorCode = "C006"
	ErrMalformedAttr           ErrorCode = "C007"

	ErrUnknownGoalType   ErrorCode = "S001"
	ErrUnknownSourceType ErrorCode = "S002"

	ErrExpressionEval      ErrorCode = "E001"
	ErrMissingSource       ErrorCode = "E002"
	ErrUnknownBuiltin      ErrorCode = "E003"
	ErrExecutionFailed     ErrorCode = "E004"
	ErrConcurrencyConflict ErrorCode = "E005"
)

// Pos is the position a diagnostic is anchored to. It is a plain struct
// rather than a dependency on the lexer's token type so that every
// package (solver, executor) which has no notion of source text can
// still produce diagnostics.
type Pos struct {
	Line   int
	Column int
}

// Error is the single diagnostic type produced anywhere in the module.
// Stages append Errors to a pipeline.Context rather than returning on
// the first failure, so a catalog with several bad declarations is
// reported all at once instead of one error per run.
type Error struct {
	Code    ErrorCode
	File    string
	Pos     Pos
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Pos.Line, e.Pos.Column, e.Code, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s: %s", e.Pos.Line, e.Pos.Column, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error at the given position with a formatted message.
func New(code ErrorCode, pos Pos, format string, args ...any) *Error {
	return &Error{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that carries an underlying cause, used when a
// lower layer (e.g. the expression evaluator) already produced an error
// and a higher layer (e.g. the executor) needs to attach its own code
// and position without losing the original message.
func Wrap(code ErrorCode, pos Pos, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...), Cause: cause}
}
