// internal/common/errors.go
package common

import "net/http"

// Code is a member of the closed error taxonomy every handler and
// subsystem reports through. New codes are not added ad hoc - see spec §7.
type Code string

const (
	// client input
	CodeValidationFailed          Code = "VALIDATION_FAILED"
	CodeInvalidName               Code = "INVALID_NAME"
	CodeInvalidPassword           Code = "INVALID_PASSWORD"
	CodeInvalidUtf8               Code = "INVALID_UTF8"
	CodeUnableToDecodeBase64      Code = "UNABLE_TO_DECODE_BASE64"
	CodeMissingPathParameter      Code = "MISSING_PATH_PARAMETER"
	CodeUnableToParsePathParam    Code = "UNABLE_TO_PARSE_PATH_PARAMETER"

	// auth
	CodeMissingAuthorizationHeader Code = "MISSING_AUTHORIZATION_HEADER"
	CodeInvalidAuthorizationParts  Code = "INVALID_AUTHORIZATION_PARTS"
	CodeInvalidAuthenticationType  Code = "INVALID_AUTHENTICATION_TYPE"
	CodeInvalidSessionToken        Code = "INVALID_SESSION_TOKEN"
	CodeSessionExpired             Code = "SESSION_EXPIRED"
	CodeUnknownSession             Code = "UNKNOWN_SESSION"
	CodeRefreshTokenRequired       Code = "REFRESH_TOKEN_REQUIRED"
	CodeMissingPassword            Code = "MISSING_PASSWORD"
	CodeInsufficientScope          Code = "INSUFFICIENT_SCOPE"
	CodeInvalidJwtClaim            Code = "INVALID_JWT_CLAIM"

	// resource
	CodeEntityNotFound      Code = "ENTITY_NOT_FOUND"
	CodeEntityAlreadyExists Code = "ENTITY_ALREADY_EXISTS"
	CodeHandlerNotFound     Code = "HANDLER_NOT_FOUND"

	// policy
	CodeRegistrationsDisabled Code = "REGISTRATIONS_DISABLED"
	CodePrereleaseNotAllowed  Code = "PRERELEASE_NOT_ALLOWED"

	// upload
	CodeMissingFile         Code = "MISSING_FILE"
	CodeMissingContentType  Code = "MISSING_CONTENT_TYPE"
	CodeInvalidContentType  Code = "INVALID_CONTENT_TYPE"
	CodeObjectTooLarge      Code = "OBJECT_TOO_LARGE"

	// server
	CodeInternalServerError Code = "INTERNAL_SERVER_ERROR"
	CodeRateLimited         Code = "RATE_LIMITED"
)

// Error is the typed error every public operation in this module should
// eventually bottom out to when something the caller needs to see goes
// wrong.
type Error struct {
	Code    Code
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds an Error, the entry point the rest of the codebase uses.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetail attaches a structured detail field and returns the same error
// for chaining at the call site.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// AsError unwraps err into an *Error, or wraps it as InternalServerError if
// it isn't one already - the taxonomy is closed, so nothing else escapes to
// an HTTP response.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return NewError(CodeInternalServerError, "internal server error")
}

// HTTPStatus maps a taxonomy code to the response status the spec assigns
// its class.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidationFailed, CodeInvalidName, CodeInvalidUtf8,
		CodeUnableToDecodeBase64, CodeMissingPathParameter,
		CodeUnableToParsePathParam, CodeMissingFile, CodeMissingContentType,
		CodeInvalidContentType, CodeObjectTooLarge, CodeMissingPassword,
		CodeInvalidAuthorizationParts:
		return http.StatusBadRequest
	case CodeMissingAuthorizationHeader, CodeInvalidAuthenticationType,
		CodeSessionExpired, CodeUnknownSession, CodeInvalidPassword:
		return http.StatusUnauthorized
	case CodeInvalidSessionToken, CodeRefreshTokenRequired,
		CodeInsufficientScope, CodeRegistrationsDisabled,
		CodeInvalidJwtClaim:
		return http.StatusForbidden
	case CodeEntityNotFound, CodeHandlerNotFound:
		return http.StatusNotFound
	case CodeEntityAlreadyExists:
		return http.StatusConflict
	case CodePrereleaseNotAllowed:
		return http.StatusNotAcceptable
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
