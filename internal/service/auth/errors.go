package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid account token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("account token has expired")

	// ErrWrongPurpose indicates a token issued for one purpose was presented for another,
	// such as an activation token used to reset a password.
	ErrWrongPurpose = errors.New("account token issued for another purpose")

	// ErrPasswordMismatch indicates the plaintext does not match the stored hash.
	ErrPasswordMismatch = errors.New("password does not match")
)
