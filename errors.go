package rival

import (
	"errors"
	"fmt"
)

// Application error codes.
// These map failures to broad categories that callers can branch on
// without inspecting error strings.
const (
	ECONFLICT    = "conflict"    // action cannot be performed
	EINTERNAL    = "internal"    // internal error
	EINVALID     = "invalid"     // validation failed
	ENOTFOUND    = "not_found"   // entity does not exist
	ETIMEOUT     = "timeout"     // deadline exceeded
	EUNAVAILABLE = "unavailable" // upstream service failed
)

// Error represents an application error with a machine-readable code
// and a human-readable message.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("rival error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode returns the code of the root error, if available.
// Returns EINTERNAL for non-application errors and an empty string for nil.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the message of the root error, if available.
// Returns a generic message for non-application errors and an empty
// string for nil.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper for constructing an *Error with a formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
