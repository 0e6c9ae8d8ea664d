package transport

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorKindTransport ErrorKind = "transport_error"
	ErrorKindStatus    ErrorKind = "status_error"
	ErrorKindShape     ErrorKind = "shape_error"
	ErrorKindConfig    ErrorKind = "config_error"
	ErrorKindRender    ErrorKind = "render_error"
	ErrorKindIO        ErrorKind = "file_io_error"
)

var (
	// ErrUnexpectedShape is matched by every shape error regardless of operation.
	ErrUnexpectedShape = errors.New("unexpected response shape")
)

type Error struct {
	Kind      ErrorKind
	Operation string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed in %s: %s (caused by: %v)", e.Kind, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s failed in %s: %s", e.Kind, e.Operation, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	return target == ErrUnexpectedShape && e.Kind == ErrorKindShape
}

func NewError(kind ErrorKind, operation, message string, cause error) *Error {
	return &Error{
		Kind:      kind,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

func NewTransportError(operation, message string, cause error) *Error {
	return NewError(ErrorKindTransport, operation, message, cause)
}

func NewStatusError(operation string, statusCode int) *Error {
	return NewError(ErrorKindStatus, operation, fmt.Sprintf("unexpected status code %d", statusCode), nil)
}

func NewShapeError(operation, message string, cause error) *Error {
	return NewError(ErrorKindShape, operation, message, cause)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
