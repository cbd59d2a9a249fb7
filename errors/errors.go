// Package errors provides error handling for convex-typegen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// It also defines the pipeline's error taxonomy. Every failure returned by the
// generator wraps exactly one of the sentinels below, so callers can branch
// with errors.Is regardless of how much context was added on the way up.
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	if errors.Is(err, errors.ErrEmptySchemaFile) {
//	    // handle empty schema
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Pipeline error taxonomy. All of these are terminal: generation is a
// deterministic offline transform, so nothing is retried.
var (
	// ErrMissingSchemaFile indicates the configured schema path does not exist
	ErrMissingSchemaFile = New("schema file not found")

	// ErrEmptySchemaFile indicates the schema file has no recognizable content
	ErrEmptySchemaFile = New("schema file is empty")

	// ErrMissingSchemaDefinition indicates the schema file has no defineSchema export
	ErrMissingSchemaDefinition = New("schema file has no schema definition")

	// ErrUnrecognizedValidator indicates a call outside the validator vocabulary
	ErrUnrecognizedValidator = New("unrecognized validator")

	// ErrInvalidRecordKey indicates a record key validator that is not a permitted scalar
	ErrInvalidRecordKey = New("invalid record key")

	// ErrDuplicateName indicates a duplicate table or field name
	ErrDuplicateName = New("duplicate name")

	// ErrSyntax indicates the parser rejected a source file
	ErrSyntax = New("syntax error")

	// ErrIO indicates a read, write or path canonicalization failure
	ErrIO = New("io error")
)

// IOError records a filesystem failure for a specific file.
type IOError struct {
	File string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// Unwrap exposes the underlying filesystem error.
func (e *IOError) Unwrap() error { return e.Err }

// NewIOError wraps err as an IOError for file, marked with ErrIO.
func NewIOError(file string, err error) error {
	return Mark(WithStack(&IOError{File: file, Err: err}), ErrIO)
}

// SyntaxError is a parser failure propagated verbatim with its originating file.
type SyntaxError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// NewSyntaxError builds a SyntaxError marked with ErrSyntax.
func NewSyntaxError(file string, line, column int, message string) error {
	return Mark(WithStack(&SyntaxError{File: file, Line: line, Column: column, Message: message}), ErrSyntax)
}

// IsUserError reports whether err belongs to the input-problem part of the
// taxonomy (as opposed to IO failures).
func IsUserError(err error) bool {
	return err != nil && IsAny(err,
		ErrMissingSchemaFile,
		ErrEmptySchemaFile,
		ErrMissingSchemaDefinition,
		ErrUnrecognizedValidator,
		ErrInvalidRecordKey,
		ErrDuplicateName,
		ErrSyntax,
	)
}
