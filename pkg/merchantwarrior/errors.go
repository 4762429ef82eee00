package merchantwarrior

import (
	"errors"
	"fmt"
)

// ErrorKind classifies client failures
type ErrorKind string

const (
	// KindInvalidArgument is a precondition violation raised before any
	// network activity. Not retryable.
	KindInvalidArgument ErrorKind = "INVALID_ARGUMENT"
	// KindTransport covers request construction, connection failures,
	// body read failures and non-2xx HTTP status codes.
	KindTransport ErrorKind = "TRANSPORT"
	// KindResponseFormat means the response body could not be decoded:
	// malformed XML, missing root element, or a field with the wrong shape.
	KindResponseFormat ErrorKind = "RESPONSE_FORMAT"
)

// Error is returned by every Client operation
type Error struct {
	Kind       ErrorKind
	Op         string // API operation, e.g. "processCard"
	Field      string // offending argument or response element, if any
	StatusCode int    // HTTP status for transport errors, 0 otherwise
	Message    string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("merchantwarrior: %s", e.Kind)
	if e.Op != "" {
		msg += " " + e.Op
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" [%s]", e.Field)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Field == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrTransport       = &Error{Kind: KindTransport}
	ErrResponseFormat  = &Error{Kind: KindResponseFormat}
)

func invalidArgument(op, field string) *Error {
	return &Error{
		Kind:    KindInvalidArgument,
		Op:      op,
		Field:   field,
		Message: "value is required",
	}
}

func transportError(op string, statusCode int, message string, err error) *Error {
	return &Error{
		Kind:       KindTransport,
		Op:         op,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

func responseFormatError(op, field, message string, err error) *Error {
	return &Error{
		Kind:    KindResponseFormat,
		Op:      op,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// KindOf extracts the ErrorKind from err, returns an empty kind for foreign errors
func KindOf(err error) ErrorKind {
	var mwErr *Error
	if errors.As(err, &mwErr) {
		return mwErr.Kind
	}
	return ""
}

// IsInvalidArgument checks if err is a precondition violation
func IsInvalidArgument(err error) bool {
	return KindOf(err) == KindInvalidArgument
}

// IsTransportError checks if err is a transport failure
func IsTransportError(err error) bool {
	return KindOf(err) == KindTransport
}

// IsResponseFormatError checks if err is a response decoding failure
func IsResponseFormatError(err error) bool {
	return KindOf(err) == KindResponseFormat
}
