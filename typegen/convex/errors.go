package convex

import (
	"fmt"

	"github.com/teranos/convex-typegen/errors"
	"github.com/teranos/convex-typegen/syntax"
)

// UnrecognizedValidatorError is returned for any call or expression outside
// the validator vocabulary. Path is the dotted callee chain (e.g. "v.email")
// or a short description of the offending expression.
type UnrecognizedValidatorError struct {
	Path   string
	Reason string
	Pos    syntax.Position
}

func (e *UnrecognizedValidatorError) Error() string {
	msg := fmt.Sprintf("unrecognized validator %q", e.Path)
	if e.Pos.Line > 0 {
		msg = fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, msg)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// InvalidRecordKeyError is returned when v.record's key validator is not a
// string, number or int64 scalar or an id.
type InvalidRecordKeyError struct {
	Found string
	Pos   syntax.Position
}

func (e *InvalidRecordKeyError) Error() string {
	msg := fmt.Sprintf("invalid record key %s: keys must be string, number, int64 or id", e.Found)
	if e.Pos.Line > 0 {
		msg = fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, msg)
	}
	return msg
}

// DuplicateNameError is returned for a repeated table or field name.
type DuplicateNameError struct {
	Kind string // "table" or "field"
	Name string
	Pos  syntax.Position
}

func (e *DuplicateNameError) Error() string {
	msg := fmt.Sprintf("duplicate %s name %q", e.Kind, e.Name)
	if e.Pos.Line > 0 {
		msg = fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, msg)
	}
	return msg
}

func unrecognized(pos syntax.Position, path, reason string) error {
	return errors.Mark(errors.WithStack(&UnrecognizedValidatorError{Path: path, Reason: reason, Pos: pos}), errors.ErrUnrecognizedValidator)
}

func invalidRecordKey(pos syntax.Position, found string) error {
	err := errors.Mark(errors.WithStack(&InvalidRecordKeyError{Found: found, Pos: pos}), errors.ErrInvalidRecordKey)
	return errors.WithHint(err, "Use v.string(), v.number(), v.int64() or v.id(\"table\") as the record key")
}

func duplicateName(pos syntax.Position, kind, name string) error {
	return errors.Mark(errors.WithStack(&DuplicateNameError{Kind: kind, Name: name, Pos: pos}), errors.ErrDuplicateName)
}
