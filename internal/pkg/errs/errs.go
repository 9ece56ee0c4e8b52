/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go error
interface and includes a business code, a user-friendly message, and an HTTP status
code for unified error reporting, plus predicates the client stores use for
programmatic branching (timeout vs cancellation vs network failure).
*/
package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"roboveda/internal/pkg/logx"
)

// CustomError is the custom error structure used throughout the application.
// It wraps the Go error interface, adding a business code and HTTP status code.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-friendly error description.
	Message string

	// Status is the standard HTTP status code corresponding to this error.
	// Zero for errors that only exist client-side.
	Status int
}

// Error implements the standard Go error interface. It returns a formatted
// error string containing the error code, HTTP status, and message.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError constructs and returns a new *CustomError instance based on a predefined error code.
// The optional details parameter allows for formatting arguments (printf-style) to be supplied
// for the error message. If an unknown code is provided, it defaults to returning ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &CustomError{
			Code:    unknownErr.Code,
			Message: unknownErr.Message,
			Status:  unknownErr.Status,
		}
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	if code == ErrUnknown && len(details) > 0 {
		if originalErr, ok := details[0].(error); ok {
			logx.Error(
				originalErr,
				"Handling ErrUnknown with underlying error",
			)
		}
	} else if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn(
				"Details provided for error, but message template has no formatting placeholders. Details ignored.",
			)
		}
	}

	return &customErr
}

// CodeOf extracts the business error code from err, or 0 when err is not a CustomError.
func CodeOf(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 0
}

// Is reports whether err is a CustomError carrying the given business code.
func Is(err error, code int) bool {
	return CodeOf(err) == code
}

// IsCancelled reports whether err represents explicit or superseding cancellation.
// Cancellation is benign: stores absorb it instead of surfacing an error banner.
func IsCancelled(err error) bool {
	return Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// IsTimeout reports whether err represents a deadline expiry.
func IsTimeout(err error) bool {
	return Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// FromContext translates a context error into the matching transport CustomError.
// A nil or non-context error maps to ErrNetwork.
func FromContext(err error) *CustomError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(ErrTimeout)
	case errors.Is(err, context.Canceled):
		return NewError(ErrCancelled)
	default:
		return NewError(ErrNetwork)
	}
}
