package store

import (
	"context"
	"database/sql"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// IsUnique reports whether no user holds value in field. Only
	// "username" and "email" are unique fields; others yield ErrUnknownField.
	IsUnique(ctx context.Context, field, value string) (bool, error)

	// Create saves a new user and sets its ID.
	// Returns ErrUsernameExists or ErrEmailExists on conflicts.
	Create(ctx context.Context, user *domain.User) error

	// GetByID, GetByUsername and GetByEmail return ErrUserNotFound when no
	// user matches.
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Activate marks the account as confirmed.
	Activate(ctx context.Context, id int64) error

	UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// TouchActivity sets the last active date to now.
	TouchActivity(ctx context.Context, id int64) error

	// GiveReputation adds points to the user's reputation.
	GiveReputation(ctx context.Context, id int64, points int) error

	// Search matches keyword against usernames and returns one page plus
	// the total number of matches.
	Search(ctx context.Context, keyword string, limit, offset int) ([]domain.User, int, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
