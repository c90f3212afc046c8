// Package usecase implements the business logic for the account feature.
package usecase

import "errors"

// ValidationError reports malformed, missing or conflicting form input.
// The message is surfaced verbatim to the user; no system state changes.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// AuthError reports a credential mismatch or an unverified account.
// The message is intentionally vague so it never leaks which field failed.
type AuthError struct {
	msg string
}

func (e *AuthError) Error() string { return e.msg }

var (
	// ErrAllFieldsRequired is returned when the register form is missing a field.
	ErrAllFieldsRequired = &ValidationError{msg: "all fields required"}

	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = &ValidationError{msg: "passwords do not match"}

	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = &ValidationError{msg: "email already registered"}

	// ErrCredentialsRequired is returned when the login form is missing a field.
	ErrCredentialsRequired = &ValidationError{msg: "email and password required"}

	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password. Both cases collapse to this one error on purpose.
	ErrInvalidCredentials = &AuthError{msg: "invalid email or password"}

	// ErrEmailNotVerified is returned when the credentials are correct but the
	// account has not confirmed its email address yet.
	ErrEmailNotVerified = &AuthError{msg: "must verify email before logging in"}

	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrRoleNotFound is returned when a role cannot be found by name.
	ErrRoleNotFound = errors.New("role not found")

	// ErrNoPendingVerification is returned when the caller's session has no
	// pending verification state.
	ErrNoPendingVerification = errors.New("no pending verification for session")
)

// UserFacing returns the message to show on the form when err belongs to the
// validation/auth taxonomy. Any other error is a storage fault and must be
// surfaced as a generic failure instead.
func UserFacing(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.msg, true
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.msg, true
	}
	return "", false
}
