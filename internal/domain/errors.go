// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyUsername is returned when a user has no username.
	ErrEmptyUsername = errors.New("username cannot be empty")

	// ErrEmptyEmail is returned when a user has no email address.
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrEmptyHashedPassword is returned when a user is stored without a password hash.
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")

	// ErrInvalidGender is returned for genders other than M and F.
	ErrInvalidGender = errors.New("invalid gender")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyTitle is returned when an article has no title.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrInvalidRating is returned for tab ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
