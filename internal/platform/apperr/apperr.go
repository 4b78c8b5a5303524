// Package apperr defines the error taxonomy shared by the stores and the
// HTTP layer. Stores return *Error values; the HTTP error handler maps the
// Kind onto a status code and renders the {message, errors} envelope.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// NonFieldKey is the errors-map key used for messages that do not belong
// to a single request field.
const NonFieldKey = "non_field_errors"

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %v", e.Message, e.Fields)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a ValidationError carrying field-level messages.
func Validation(message string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// FieldError is shorthand for a ValidationError on a single field.
func FieldError(field, msg string) *Error {
	return Validation("Invalid input", map[string][]string{field: {msg}})
}

// Conflict returns a ConflictError. detail is reported under NonFieldKey.
func Conflict(message, detail string, cause error) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: message,
		Fields:  map[string][]string{NonFieldKey: {detail}},
		Err:     cause,
	}
}

// NotFound returns a NotFoundError.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Unauthorized returns an AuthError.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// KindOf reports the Kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsConflict(err error) bool     { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }

// WithMessage returns a copy of err with its message replaced when err is an
// *Error. Handlers use it to put operation-specific wording ("Error creating
// patient") on top of store errors while keeping the field map.
func WithMessage(err error, message string) error {
	var ae *Error
	if !errors.As(err, &ae) {
		return err
	}
	cp := *ae
	cp.Message = message
	return &cp
}
