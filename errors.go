package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = goerrors.New("value must not be an empty string", goerrors.CategoryValidation)

// ErrMismatchedHashAndPassword is the uniform mismatch error returned by
// ComparePasswordAndHash. Malformed hashes produce the same error so a
// caller cannot tell a bad guess from a bad record.
var ErrMismatchedHashAndPassword = goerrors.New("mismatched hash and password", goerrors.CategoryAuth).
	WithTextCode("CREDENTIALS_MISMATCH")

// ErrInvalidCredentials is the single low-information error for every
// failed login: unknown email and wrong password are indistinguishable.
var ErrInvalidCredentials = goerrors.New("Invalid email or password", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS")

// ErrEmailNotVerified blocks login when the deployment requires a
// verified email. Distinct from ErrInvalidCredentials: identity was
// already proven.
var ErrEmailNotVerified = goerrors.New("Email address has not been verified", goerrors.CategoryAuthz).
	WithTextCode("EMAIL_NOT_VERIFIED")

// ErrEmailInUse is the uniqueness conflict surfaced by signup. It does
// not reveal whether the prior account is verified.
var ErrEmailInUse = goerrors.New("Email already in use", goerrors.CategoryConflict).
	WithTextCode("EMAIL_IN_USE")

// ErrInvalidVerificationToken covers both never-issued and already
// consumed verification tokens.
var ErrInvalidVerificationToken = goerrors.New("Invalid verification token", goerrors.CategoryBadInput).
	WithTextCode("INVALID_VERIFICATION_TOKEN")

// ErrInvalidOrExpiredResetToken covers absent and expired reset tokens
// alike; an expired token is rejected even if still present in storage.
var ErrInvalidOrExpiredResetToken = goerrors.New("Invalid or expired password reset token", goerrors.CategoryBadInput).
	WithTextCode("INVALID_RESET_TOKEN")

// ErrNotificationFailed reports that every notifier transport failed.
// Callers log it; it never rolls back the mutation that triggered the
// notification.
var ErrNotificationFailed = goerrors.New("failed to send notification through all available channels", goerrors.CategoryOperation).
	WithTextCode("NOTIFICATION_FAILED")

// ErrTokenExpired is returned for bearer tokens past their expiry
var ErrTokenExpired = goerrors.New("authentication token has expired", goerrors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed is returned for bearer tokens that fail to parse or
// carry an invalid signature
var ErrTokenMalformed = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED")

// ErrUnableToFindSession is the error when the request carries no token
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithTextCode("SESSION_NOT_FOUND")

// ErrUnableToDecodeSession unable to decode claims into a session
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryAuth).
	WithTextCode("SESSION_DECODE")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired") ||
		strings.Contains(err.Error(), "token has expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsUniqueViolation reports whether err is the store's email uniqueness
// rejection. Covers the sqlite and postgres driver messages bun relays.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}
