package service

import "errors"

// Service errors. The API layer maps each of them to an error code and, where
// the failure concerns one request field, to that field.
var (
	// ErrInvalidLogin is returned for unknown usernames, wrong passwords and
	// accounts that were never activated. The three cases are not told apart.
	ErrInvalidLogin = errors.New("invalid username or password")

	// ErrAlreadyActivated is returned when activation is requested again for
	// an active account.
	ErrAlreadyActivated = errors.New("account already activated")

	// ErrEmailNotFound is returned when no account uses the given address.
	ErrEmailNotFound = errors.New("email not found")

	// ErrInvalidToken is returned for activation and reset links that are
	// malformed, expired, issued for another account or already used.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrMailFailed is returned when the account change succeeded but the
	// follow-up e-mail could not be delivered.
	ErrMailFailed = errors.New("failed to deliver e-mail")
)
