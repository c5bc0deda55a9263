package domain

import (
	"fmt"
	"strings"
	"time"
)

// Gender of a user profile.
type Gender string

// Genders accepted at signup.
const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// User roles. Admins may publish articles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Default avatars assigned at signup, one per gender.
const (
	DefaultAvatarMale   = "default-m.jpg"
	DefaultAvatarFemale = "default-f.jpg"
)

// User represents a registered member of the site.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // Never expose password hash in JSON
	Birthday       time.Time `json:"birthday"`
	Gender         Gender    `json:"gender"`
	Photo          string    `json:"photo"`
	Role           string    `json:"type"`
	Activated      bool      `json:"activated"`
	Reputation     int       `json:"reputation"`
	Location       string    `json:"location"`
	Occupation     string    `json:"occupation"`
	Web            string    `json:"web"`
	AboutMe        string    `json:"about_me"`
	Instrument     string    `json:"instrument"`
	FavouriteBands string    `json:"favourite_bands"`
	RegisterDate   time.Time `json:"register_date"`
	LastActiveDate time.Time `json:"last_active_date"`
}

// NewUser creates an inactive member account with the default avatar for
// gender. passwordHash must already be hashed.
func NewUser(username, email, passwordHash string, birthday time.Time, gender Gender) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		Username:       strings.TrimSpace(username),
		Email:          strings.TrimSpace(email),
		PasswordHash:   passwordHash,
		Birthday:       birthday,
		Gender:         gender,
		Photo:          DefaultAvatar(gender),
		Role:           RoleUser,
		RegisterDate:   now,
		LastActiveDate: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// DefaultAvatar returns the stock avatar for gender.
func DefaultAvatar(gender Gender) string {
	if gender == GenderMale {
		return DefaultAvatarMale
	}
	return DefaultAvatarFemale
}

// HasDefaultAvatar reports whether the user still uses a stock avatar.
func (u *User) HasDefaultAvatar() bool {
	return u.Photo == "" || strings.HasPrefix(u.Photo, "default")
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.Username == "" {
		return ErrEmptyUsername
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if u.PasswordHash == "" {
		return ErrEmptyHashedPassword
	}
	if u.Gender != GenderMale && u.Gender != GenderFemale {
		return fmt.Errorf("%w: %q", ErrInvalidGender, u.Gender)
	}
	return nil
}

// ProfileUpdate carries the editable profile fields. Empty PasswordHash and
// Photo keep the current values.
type ProfileUpdate struct {
	PasswordHash   string
	Photo          string
	Location       string
	Occupation     string
	Web            string
	AboutMe        string
	Instrument     string
	FavouriteBands string
}
