/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
// A zero Status means the error is client-local and never travels as an HTTP response on its own.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling and Validation Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrInvalidEmail:         {Code: ErrInvalidEmail, Message: "Invalid email address.", Status: http.StatusBadRequest},
	ErrInvalidPassword:      {Code: ErrInvalidPassword, Message: "Password must be 8-72 characters with upper, lower and digit.", Status: http.StatusBadRequest},
	ErrInvalidUsername:      {Code: ErrInvalidUsername, Message: "Username must be 3-20 lowercase letters, digits or underscores.", Status: http.StatusBadRequest},
	ErrInvalidAddress:       {Code: ErrInvalidAddress, Message: "Invalid wallet address.", Status: http.StatusBadRequest},
	ErrInvalidChain:         {Code: ErrInvalidChain, Message: "Unsupported chain.", Status: http.StatusBadRequest},

	// 2xxx: Device and Content Business Logic Errors
	ErrDeviceTypeInvalid: {Code: ErrDeviceTypeInvalid, Message: "Unknown device type: %s.", Status: http.StatusBadRequest},
	ErrDeviceNotFound:    {Code: ErrDeviceNotFound, Message: "Device not found.", Status: http.StatusNotFound},
	ErrCommandInvalid:    {Code: ErrCommandInvalid, Message: "Invalid command '%s' for device type '%s'.", Status: http.StatusBadRequest},

	// 3xxx: User, Session, and Security Errors
	ErrUnauthorized:        {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidCredentials:  {Code: ErrInvalidCredentials, Message: "Incorrect email or password.", Status: http.StatusUnauthorized},
	ErrSessionExpired:      {Code: ErrSessionExpired, Message: "Your session has expired. Please sign in again.", Status: http.StatusUnauthorized},
	ErrUserAlreadyExists:   {Code: ErrUserAlreadyExists, Message: "An account with this email or username already exists.", Status: http.StatusConflict},
	ErrUserNotFound:        {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},
	ErrWalletAlreadyLinked: {Code: ErrWalletAlreadyLinked, Message: "Wallet already linked to another account.", Status: http.StatusConflict},

	// 4xxx: Wallet Provider Errors
	ErrProviderRejected:    {Code: ErrProviderRejected, Message: "Wallet request was rejected."},
	ErrProviderUnavailable: {Code: ErrProviderUnavailable, Message: "No wallet provider available for %q."},
	ErrChainSwitchRejected: {Code: ErrChainSwitchRejected, Message: "Failed to switch network."},

	// 5xxx: Internal System Errors
	ErrUnknown:       {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrAIUnavailable: {Code: ErrAIUnavailable, Message: "AI service not configured.", Status: http.StatusServiceUnavailable},

	// 6xxx: Transport Errors
	ErrNetwork:   {Code: ErrNetwork, Message: "Network error. Check your connection and try again."},
	ErrTimeout:   {Code: ErrTimeout, Message: "The request timed out."},
	ErrCancelled: {Code: ErrCancelled, Message: "Request cancelled."},
}
