package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies an error for logging and handling.
type ErrorType int

const (
	// ErrorTypeTransport covers socket and frame write failures
	ErrorTypeTransport ErrorType = iota
	// ErrorTypeProtocol covers malformed or unknown wire input
	ErrorTypeProtocol
	// ErrorTypeAddressing covers delivery to an unknown recipient or room
	ErrorTypeAddressing
	// ErrorTypeNotFound covers missing entities
	ErrorTypeNotFound
	// ErrorTypeUnauthorized covers failed authentication
	ErrorTypeUnauthorized
	// ErrorTypeInternal covers unexpected internal failures
	ErrorTypeInternal
	// ErrorTypeTimeout covers deadline expiry
	ErrorTypeTimeout
	// ErrorTypeValidation covers rejected input values
	ErrorTypeValidation
)

// String returns the type's log representation.
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransport:
		return "transport"
	case ErrorTypeProtocol:
		return "protocol"
	case ErrorTypeAddressing:
		return "addressing"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeUnauthorized:
		return "unauthorized"
	case ErrorTypeInternal:
		return "internal"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeValidation:
		return "validation"
	}
	return "unknown"
}

// Error is a classified error carrying a stable code.
type Error struct {
	Type      ErrorType `json:"type"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Cause     error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *Error) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("[%s] %s: %s (caused by: %v)", e.Code, e.Message, e.Details, e.Cause)
	case e.Details != "":
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by type and code so comparisons through errors.Is
// work against sentinel values built with New.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// New builds a classified error.
func New(errorType ErrorType, code, message string) *Error {
	return &Error{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap builds a classified error around a cause.
func Wrap(err error, errorType ErrorType, code, message string) *Error {
	e := New(errorType, code, message)
	e.Cause = err
	return e
}

// WithDetails attaches free-form detail text.
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}
