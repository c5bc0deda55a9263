package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

// PostgresUserCommentStore implements store.UserCommentStore on PostgreSQL.
type PostgresUserCommentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserCommentStore creates a new PostgreSQL implementation of the
// UserCommentStore interface. If logger is nil, a default logger will be used.
func NewPostgresUserCommentStore(db store.DBTX, logger *slog.Logger) *PostgresUserCommentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserCommentStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_comment_store")),
	}
}

var _ store.UserCommentStore = (*PostgresUserCommentStore)(nil)

// WithTx implements store.UserCommentStore.WithTx
func (s *PostgresUserCommentStore) WithTx(tx *sql.Tx) store.UserCommentStore {
	return &PostgresUserCommentStore{db: tx, logger: s.logger}
}

// List implements store.UserCommentStore.List
func (s *PostgresUserCommentStore) List(
	ctx context.Context,
	userID int64,
	limit, offset int,
) ([]domain.UserComment, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(id) FROM user_comments WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		log.Error("failed to count user comments", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.author_id, u.username, u.photo, c.content, c.date
		FROM user_comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.user_id = $1
		ORDER BY c.date DESC, c.id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		log.Error("failed to list user comments", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	comments := []domain.UserComment{}
	for rows.Next() {
		var c domain.UserComment
		err := rows.Scan(&c.ID, &c.UserID, &c.AuthorID, &c.Author, &c.AuthorPhoto, &c.Content, &c.Date)
		if err != nil {
			return nil, 0, MapError(err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	return comments, total, nil
}

// Create implements store.UserCommentStore.Create
func (s *PostgresUserCommentStore) Create(ctx context.Context, comment *domain.UserComment) error {
	if comment.Content == "" {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyContent)
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO user_comments (user_id, author_id, content, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		comment.UserID, comment.AuthorID, comment.Content, comment.Date,
	).Scan(&comment.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create user comment",
			slog.String("error", err.Error()),
			slog.Int64("user_id", comment.UserID))
		return MapError(err)
	}
	return nil
}
