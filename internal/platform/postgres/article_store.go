package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

const articleColumns = `a.id, a.author_id, u.username, a.title, a.summary, a.content,
	a.date, a.picture, a.views`

// PostgresArticleStore implements store.ArticleStore on PostgreSQL.
type PostgresArticleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresArticleStore creates a new PostgreSQL implementation of the ArticleStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresArticleStore(db store.DBTX, logger *slog.Logger) *PostgresArticleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresArticleStore{
		db:     db,
		logger: logger.With(slog.String("component", "article_store")),
	}
}

var _ store.ArticleStore = (*PostgresArticleStore)(nil)

// List implements store.ArticleStore.List
func (s *PostgresArticleStore) List(ctx context.Context, limit, offset int) ([]domain.Article, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(id) FROM articles`).Scan(&total); err != nil {
		log.Error("failed to count articles", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	articles, err := s.query(ctx, `
		SELECT `+articleColumns+`
		FROM articles a
		JOIN users u ON u.id = a.author_id
		ORDER BY a.date DESC, a.id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		log.Error("failed to list articles", slog.String("error", err.Error()))
		return nil, 0, err
	}
	return articles, total, nil
}

// ListByDate implements store.ArticleStore.ListByDate
func (s *PostgresArticleStore) ListByDate(
	ctx context.Context,
	day time.Time,
	limit, offset int,
) ([]domain.Article, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	articles, err := s.query(ctx, `
		SELECT `+articleColumns+`
		FROM articles a
		JOIN users u ON u.id = a.author_id
		WHERE a.date >= $1 AND a.date < $2
		ORDER BY a.date DESC, a.id DESC
		LIMIT $3 OFFSET $4`, start, start.AddDate(0, 0, 1), limit, offset)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list articles by date",
			slog.String("error", err.Error()),
			slog.String("day", start.Format(time.DateOnly)))
		return nil, err
	}
	return articles, nil
}

// Get implements store.ArticleStore.Get
func (s *PostgresArticleStore) Get(ctx context.Context, id int64) (*domain.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles a
		JOIN users u ON u.id = a.author_id
		WHERE a.id = $1`, id)

	article, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrArticleNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get article",
			slog.String("error", err.Error()),
			slog.Int64("article_id", id))
		return nil, MapError(err)
	}
	return article, nil
}

// AddView implements store.ArticleStore.AddView
func (s *PostgresArticleStore) AddView(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `UPDATE articles SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to add article view",
			slog.String("error", err.Error()),
			slog.Int64("article_id", id))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrArticleNotFound)
}

// Create implements store.ArticleStore.Create
func (s *PostgresArticleStore) Create(ctx context.Context, article *domain.Article) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := article.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO articles (author_id, title, summary, content, date, picture)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		article.AuthorID,
		article.Title,
		article.Summary,
		article.Content,
		article.Date,
		article.Picture,
	).Scan(&article.ID)
	if err != nil {
		log.Error("failed to create article", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("article created", slog.Int64("article_id", article.ID))
	return nil
}

// Update implements store.ArticleStore.Update
func (s *PostgresArticleStore) Update(ctx context.Context, article *domain.Article) error {
	if err := article.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE articles
		SET title = $2, summary = $3, content = $4, date = $5,
			picture = COALESCE(NULLIF($6, ''), picture)
		WHERE id = $1`,
		article.ID,
		article.Title,
		article.Summary,
		article.Content,
		article.Date,
		article.Picture,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update article",
			slog.String("error", err.Error()),
			slog.Int64("article_id", article.ID))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrArticleNotFound)
}

func (s *PostgresArticleStore) query(ctx context.Context, query string, args ...any) ([]domain.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	articles := []domain.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, MapError(err)
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return articles, nil
}

func scanArticle(row rowScanner) (*domain.Article, error) {
	var a domain.Article
	err := row.Scan(
		&a.ID,
		&a.AuthorID,
		&a.Author,
		&a.Title,
		&a.Summary,
		&a.Content,
		&a.Date,
		&a.Picture,
		&a.Views,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
