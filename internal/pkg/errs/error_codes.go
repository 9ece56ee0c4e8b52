/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both inside the
server and the client stores and in responses sent to API consumers.
*/
package errs

// 1xxx: General Request Handling and Validation Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005

	// ErrInvalidEmail indicates that the supplied email address is malformed.
	ErrInvalidEmail = 1101

	// ErrInvalidPassword indicates that the supplied password does not meet the policy.
	ErrInvalidPassword = 1102

	// ErrInvalidUsername indicates that the supplied username is malformed.
	ErrInvalidUsername = 1103

	// ErrInvalidAddress indicates that a wallet address failed validation.
	ErrInvalidAddress = 1104

	// ErrInvalidChain indicates that an unknown or unsupported chain id was supplied.
	ErrInvalidChain = 1105
)

// 2xxx: Device and Content Business Logic Errors
const (
	// ErrDeviceTypeInvalid indicates that an unknown device type was supplied at registration.
	ErrDeviceTypeInvalid = 2101

	// ErrDeviceNotFound indicates that the requested device does not exist.
	ErrDeviceNotFound = 2102

	// ErrCommandInvalid indicates that the command is not valid for the target device type.
	ErrCommandInvalid = 2103
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates the request lacks a valid session.
	ErrUnauthorized = 3001

	// ErrInvalidCredentials indicates the supplied email/password pair did not match.
	ErrInvalidCredentials = 3002

	// ErrSessionExpired indicates the session cookie is present but no longer valid.
	ErrSessionExpired = 3003

	// ErrUserAlreadyExists indicates the email or username is already taken.
	ErrUserAlreadyExists = 3101

	// ErrUserNotFound indicates that the referenced account does not exist.
	ErrUserNotFound = 3102

	// ErrWalletAlreadyLinked indicates the wallet address is linked to another account.
	ErrWalletAlreadyLinked = 3103
)

// 4xxx: Wallet Provider Errors
const (
	// ErrProviderRejected indicates the wallet provider rejected the operation.
	ErrProviderRejected = 4001

	// ErrProviderUnavailable indicates no wallet provider is reachable for the connector.
	ErrProviderUnavailable = 4002

	// ErrChainSwitchRejected indicates the provider refused to switch to the requested chain.
	ErrChainSwitchRejected = 4003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general internal error.
	ErrUnknown = 5000

	// ErrAIUnavailable indicates the AI service is not configured or unreachable.
	ErrAIUnavailable = 5101
)

// 6xxx: Transport Errors (client-side HTTP and streaming)
const (
	// ErrNetwork indicates a transport-level failure before a response was received.
	ErrNetwork = 6001

	// ErrTimeout indicates the request deadline expired.
	ErrTimeout = 6002

	// ErrCancelled indicates the operation was cancelled, explicitly or by a superseding call.
	ErrCancelled = 6003
)
