package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

const userColumns = `id, username, email, password_hash, birthday, gender, photo, role,
	activated, reputation, location, occupation, web, about_me, instrument,
	favourite_bands, register_date, last_active_date`

// uniqueUserColumns maps the fields IsUnique accepts to their columns.
var uniqueUserColumns = map[string]string{
	"username": "username",
	"email":    "email",
}

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// IsUnique implements store.UserStore.IsUnique
// Comparison ignores case so "Ivan" and "ivan" cannot both register.
func (s *PostgresUserStore) IsUnique(ctx context.Context, field, value string) (bool, error) {
	column, ok := uniqueUserColumns[field]
	if !ok {
		return false, fmt.Errorf("%w: %q", store.ErrUnknownField, field)
	}

	query := `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(` + column + `) = LOWER($1))`

	var taken bool
	if err := s.db.QueryRowContext(ctx, query, value).Scan(&taken); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("uniqueness check failed",
			slog.String("error", err.Error()),
			slog.String("field", field))
		return false, MapError(err)
	}
	return !taken, nil
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO users (username, email, password_hash, birthday, gender, photo, role,
			activated, register_date, last_active_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Birthday,
		string(user.Gender),
		user.Photo,
		user.Role,
		user.Activated,
		user.RegisterDate,
		user.LastActiveDate,
	).Scan(&user.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("user already exists", slog.String("username", user.Username))
		} else {
			log.Error("failed to create user", slog.String("error", err.Error()))
		}
		return MapError(err)
	}

	log.Info("user created", slog.Int64("user_id", user.ID))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getOne(ctx, "id = $1", id)
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getOne(ctx, "LOWER(username) = LOWER($1)", username)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, "LOWER(email) = LOWER($1)", email)
}

func (s *PostgresUserStore) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return user, nil
}

// Activate implements store.UserStore.Activate
func (s *PostgresUserStore) Activate(ctx context.Context, id int64) error {
	return s.exec(ctx, "activate", `UPDATE users SET activated = TRUE WHERE id = $1`, id)
}

// UpdateProfile implements store.UserStore.UpdateProfile
func (s *PostgresUserStore) UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) error {
	sets := []string{
		"location = $2",
		"occupation = $3",
		"web = $4",
		"about_me = $5",
		"instrument = $6",
		"favourite_bands = $7",
	}
	args := []any{
		id,
		update.Location,
		update.Occupation,
		update.Web,
		update.AboutMe,
		update.Instrument,
		update.FavouriteBands,
	}
	if update.PasswordHash != "" {
		args = append(args, update.PasswordHash)
		sets = append(sets, fmt.Sprintf("password_hash = $%d", len(args)))
	}
	if update.Photo != "" {
		args = append(args, update.Photo)
		sets = append(sets, fmt.Sprintf("photo = $%d", len(args)))
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	return s.exec(ctx, "update profile", query, args...)
}

// UpdatePassword implements store.UserStore.UpdatePassword
func (s *PostgresUserStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return s.exec(ctx, "update password",
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
}

// TouchActivity implements store.UserStore.TouchActivity
func (s *PostgresUserStore) TouchActivity(ctx context.Context, id int64) error {
	return s.exec(ctx, "touch activity",
		`UPDATE users SET last_active_date = $2 WHERE id = $1`, id, time.Now().UTC())
}

// GiveReputation implements store.UserStore.GiveReputation
func (s *PostgresUserStore) GiveReputation(ctx context.Context, id int64, points int) error {
	return s.exec(ctx, "give reputation",
		`UPDATE users SET reputation = reputation + $2 WHERE id = $1`, id, points)
}

func (s *PostgresUserStore) exec(ctx context.Context, op, query string, args ...any) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("user update failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Search implements store.UserStore.Search
func (s *PostgresUserStore) Search(
	ctx context.Context,
	keyword string,
	limit, offset int,
) ([]domain.User, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	pattern := "%" + escapeLike(keyword) + "%"

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(id) FROM users WHERE activated AND username ILIKE $1`, pattern,
	).Scan(&total)
	if err != nil {
		log.Error("failed to count users", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		WHERE activated AND username ILIKE $1
		ORDER BY username
		LIMIT $2 OFFSET $3`,
		pattern, limit, offset,
	)
	if err != nil {
		log.Error("failed to search users", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]domain.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, MapError(err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	return users, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user   domain.User
		gender string
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Birthday,
		&gender,
		&user.Photo,
		&user.Role,
		&user.Activated,
		&user.Reputation,
		&user.Location,
		&user.Occupation,
		&user.Web,
		&user.AboutMe,
		&user.Instrument,
		&user.FavouriteBands,
		&user.RegisterDate,
		&user.LastActiveDate,
	)
	if err != nil {
		return nil, err
	}
	user.Gender = domain.Gender(gender)
	return &user, nil
}

// escapeLike escapes the LIKE wildcards in s.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
