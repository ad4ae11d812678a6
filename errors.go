package session

import (
	"context"
	"net"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidCredentials = "INVALID_CREDENTIALS"
	textCodeSessionConflict    = "SESSION_CONFLICT"
	textCodeSessionNotCreated  = "SESSION_NOT_CREATED"
	textCodeAuthorizationGone  = "AUTHORIZATION_GONE"
	textCodeTokenExpired       = "TOKEN_EXPIRED"
	textCodeTokenMalformed     = "TOKEN_MALFORMED"
	textCodeTokenUndecodable   = "TOKEN_UNDECODABLE"
)

// ErrInvalidCredentials is returned when the provider rejects the credential
// exchange itself, not a later enrichment call.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionConflict is returned when the provider refuses a new session
// because one is already active for this client.
var ErrSessionConflict = goerrors.New("a session is already active, retry or clear cookies", goerrors.CategoryConflict).
	WithTextCode(textCodeSessionConflict).
	WithCode(goerrors.CodeConflict)

// ErrSessionNotCreated is returned when the provider accepted the credential
// check but did not hand back a usable session id.
var ErrSessionNotCreated = goerrors.New("login failed, session was not created", goerrors.CategoryAuth).
	WithTextCode(textCodeSessionNotCreated).
	WithCode(goerrors.CodeUnauthorized)

// ErrAuthorizationGone marks a valid identity whose staff record no longer
// exists. Callers redirect to an unauthorized view; the cache is purged.
var ErrAuthorizationGone = goerrors.New("staff record missing for identity", goerrors.CategoryAuthz).
	WithTextCode(textCodeAuthorizationGone).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned when a console token fails validation solely
// because it is past its expiry.
var ErrTokenExpired = goerrors.New("console token has expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned when a console token cannot be parsed or its
// signature does not verify.
var ErrTokenMalformed = goerrors.New("console token is malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToDecodeSession is returned when a token parses but its claims do
// not carry a usable session payload.
var ErrUnableToDecodeSession = goerrors.New("unable to decode session claims", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenUndecodable).
	WithCode(goerrors.CodeUnauthorized)

// IsInvalidCredentialsError reports whether err is the credential-rejection
// outcome of a login.
func IsInvalidCredentialsError(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == textCodeInvalidCredentials
	}
	return false
}

// IsSessionConflictError reports whether err is the already-active-session
// outcome of a login.
func IsSessionConflictError(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == textCodeSessionConflict
	}
	return false
}

// IsTokenExpiredError reports whether err carries the expired-token text code.
func IsTokenExpiredError(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == textCodeTokenExpired
	}
	return false
}

// IsMalformedError reports whether err carries the malformed-token text code.
func IsMalformedError(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == textCodeTokenMalformed
	}
	return false
}

// IsTransientError reports whether err looks like a timeout or network
// failure: something the lifecycle recovers from locally (fall back to cache,
// return nil) instead of treating as an authorization state change.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, context.DeadlineExceeded) || goerrors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if goerrors.As(err, &netErr) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryExternal
	}
	return false
}

// classifyLoginError maps provider failures during session creation onto the
// login taxonomy. Anything unrecognized propagates unchanged.
func classifyLoginError(err error) error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryAuth:
			return ErrInvalidCredentials
		case goerrors.CategoryConflict:
			return ErrSessionConflict
		}
	}

	return err
}
