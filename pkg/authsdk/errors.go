package authsdk

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable classification of a session error. The UI
// layer switches on kinds to render localized messages, a human-readable
// message is not always available.
type Kind string

const (
	// KindInvalidCredentials: the provider rejected the email/password pair.
	KindInvalidCredentials Kind = "invalid_credentials"

	// KindRateLimited: the provider signalled too many attempts.
	KindRateLimited Kind = "rate_limited"

	// KindServerUnavailable: the provider answered with a 5xx.
	KindServerUnavailable Kind = "server_unavailable"

	// KindNetworkUnreachable: the request never produced an HTTP response
	// (DNS failure, connection refused, timeout).
	KindNetworkUnreachable Kind = "network_unreachable"

	// KindEmailAlreadyRegistered: registration hit an existing account.
	KindEmailAlreadyRegistered Kind = "email_already_registered"

	// KindRefreshTokenInvalid: the provider rejected the refresh token.
	// Terminal, the caller must re-authenticate.
	KindRefreshTokenInvalid Kind = "refresh_token_invalid"

	// KindRefreshFailed: the refresh call failed for any other reason.
	KindRefreshFailed Kind = "refresh_failed"

	// KindNoAccessToken: an authenticated call was attempted with no
	// stored access token. No network request was made.
	KindNoAccessToken Kind = "no_access_token"

	// KindNoRefreshToken: a 401 was observed but no refresh token is
	// stored. Credentials have been cleared.
	KindNoRefreshToken Kind = "no_refresh_token"

	// KindTokenRefreshFailed: the mid-request refresh failed. Credentials
	// have been cleared, the caller must re-authenticate.
	KindTokenRefreshFailed Kind = "token_refresh_failed"

	// KindAuthFailedAfterRefresh: the retried request was still
	// unauthorized after a successful refresh. Credentials have been
	// cleared.
	KindAuthFailedAfterRefresh Kind = "authentication_failed_after_refresh"

	// KindInvalidOrExpiredCode: the password reset confirmation code was
	// rejected.
	KindInvalidOrExpiredCode Kind = "invalid_or_expired_code"

	// KindUnknown: an unrecognized provider response. Message carries the
	// provider-supplied description when one was present.
	KindUnknown Kind = "unknown"
)

// Error is a typed session error.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Message is the provider-supplied description, when present.
	Message string

	// StatusCode is the HTTP status observed, or 0 when the failure
	// happened below HTTP (or before any request was sent).
	StatusCode int

	cause error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("authsdk: %s: %s", e.Kind, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("authsdk: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("authsdk: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf extracts the Kind from an error chain, or KindUnknown for
// errors that did not originate here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, status int, message string, cause error) *Error {
	return &Error{Kind: kind, StatusCode: status, Message: message, cause: cause}
}
