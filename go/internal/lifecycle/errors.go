package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies engine failures so the transport can map them to status codes
type Kind int

const (
	KindInvalidPayload Kind = iota + 1
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidPayload:
		return "invalid payload"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// FieldViolation names one rejected field of a request payload
type FieldViolation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// Error is the typed failure returned by every engine operation
type Error struct {
	Kind       Kind
	Message    string
	Violations []FieldViolation
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Violations) > 0 {
		parts := make([]string, 0, len(e.Violations))
		for _, v := range e.Violations {
			parts = append(parts, v.Field+": "+v.Description)
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(parts, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalidPayload(message string, violations ...FieldViolation) *Error {
	return &Error{Kind: KindInvalidPayload, Message: message, Violations: violations}
}

func notFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsInvalidPayload reports whether err is a validation failure
func IsInvalidPayload(err error) bool { return kindOf(err) == KindInvalidPayload }

// IsNotFound reports whether err means a referenced record does not exist
func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }

// IsConflict reports whether err means the current state forbids the operation
func IsConflict(err error) bool { return kindOf(err) == KindConflict }
