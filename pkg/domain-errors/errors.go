// Package domainerrors carries coded errors from services to transports.
//
// Services return *Error values built with New or Wrap. Transports inspect the
// Code to pick a status and never look at wrapped infrastructure errors.
package domainerrors

import (
	"errors"
	"sort"
)

// Code classifies a domain error independently of any transport.
type Code string

const (
	CodeBadRequest Code = "bad_request"
	CodeValidation Code = "validation_error"
	CodeInternal   Code = "internal_error"
)

// Fields maps an input field name to the messages describing why it was rejected.
type Fields map[string][]string

// Add appends a message for field.
func (f Fields) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Empty reports whether no field has been rejected.
func (f Fields) Empty() bool {
	return len(f) == 0
}

// Names returns the rejected field names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Error is a domain error with a stable code.
type Error struct {
	Code    Code
	Message string
	Fields  Fields
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Validation builds a CodeValidation error listing every rejected field.
// cause is kept for errors.Is checks and may be nil.
func Validation(fields Fields, cause error) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: "invalid input",
		Fields:  fields,
		Err:     cause,
	}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}
