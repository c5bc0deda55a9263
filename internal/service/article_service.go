package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/redact"
	"github.com/gryp17/Tablaturi-bg-API/internal/storage"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

// ArticleInput carries a validated article form. A nil Picture keeps the
// current picture on update and leaves new articles without one.
type ArticleInput struct {
	Title   string
	Content string
	Date    time.Time
	Picture *Upload
}

// ArticleService manages news articles.
type ArticleService interface {
	List(ctx context.Context, limit, offset int) ([]domain.Article, int, error)
	ListByDate(ctx context.Context, day time.Time, limit, offset int) ([]domain.Article, error)

	// View returns an article and counts the view.
	View(ctx context.Context, id int64) (*domain.Article, error)

	Create(ctx context.Context, authorID int64, in ArticleInput) (*domain.Article, error)
	Update(ctx context.Context, id int64, in ArticleInput) (*domain.Article, error)
}

// ArticleServiceImpl implements ArticleService.
type ArticleServiceImpl struct {
	articles store.ArticleStore
	files    storage.FileStore
	logger   *slog.Logger
}

// NewArticleService creates an ArticleService.
func NewArticleService(
	articles store.ArticleStore,
	files storage.FileStore,
	logger *slog.Logger,
) (*ArticleServiceImpl, error) {
	if articles == nil {
		return nil, fmt.Errorf("articles cannot be nil")
	}
	if files == nil {
		return nil, fmt.Errorf("files cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ArticleServiceImpl{
		articles: articles,
		files:    files,
		logger:   logger.With(slog.String("component", "article_service")),
	}, nil
}

// List returns a page of articles, newest first, and the total count.
func (s *ArticleServiceImpl) List(ctx context.Context, limit, offset int) ([]domain.Article, int, error) {
	articles, total, err := s.articles.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, total, nil
}

// ListByDate returns the articles published on day.
func (s *ArticleServiceImpl) ListByDate(
	ctx context.Context,
	day time.Time,
	limit, offset int,
) ([]domain.Article, error) {
	articles, err := s.articles.ListByDate(ctx, day, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles by date: %w", err)
	}
	return articles, nil
}

// View counts the view before loading so the response includes it.
func (s *ArticleServiceImpl) View(ctx context.Context, id int64) (*domain.Article, error) {
	if err := s.articles.AddView(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to count article view: %w", err)
	}
	article, err := s.articles.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve article: %w", err)
	}
	return article, nil
}

// Create stores the picture, if any, and the article.
func (s *ArticleServiceImpl) Create(
	ctx context.Context,
	authorID int64,
	in ArticleInput,
) (*domain.Article, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	picture, err := s.savePicture(ctx, in.Picture)
	if err != nil {
		return nil, err
	}

	article, err := domain.NewArticle(authorID, in.Title, in.Content, in.Date, picture)
	if err != nil {
		s.discardPicture(ctx, picture)
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	if err := s.articles.Create(ctx, article); err != nil {
		s.discardPicture(ctx, picture)
		return nil, fmt.Errorf("failed to save article: %w", err)
	}

	log.Info("article created",
		slog.Int64("article_id", article.ID),
		slog.Int64("author_id", authorID))
	return article, nil
}

// Update replaces the article text and, when a new picture is uploaded, its
// picture. The replaced picture file is removed.
func (s *ArticleServiceImpl) Update(ctx context.Context, id int64, in ArticleInput) (*domain.Article, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	current, err := s.articles.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load article for update: %w", err)
	}

	picture, err := s.savePicture(ctx, in.Picture)
	if err != nil {
		return nil, err
	}

	updated, err := domain.NewArticle(current.AuthorID, in.Title, in.Content, in.Date, picture)
	if err != nil {
		s.discardPicture(ctx, picture)
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	updated.ID = current.ID
	updated.Author = current.Author
	updated.Views = current.Views

	if err := s.articles.Update(ctx, updated); err != nil {
		s.discardPicture(ctx, picture)
		return nil, fmt.Errorf("failed to save article: %w", err)
	}

	if picture == "" {
		updated.Picture = current.Picture
	} else if current.Picture != "" {
		s.discardPicture(ctx, current.Picture)
	}

	log.Info("article updated", slog.Int64("article_id", id))
	return updated, nil
}

// savePicture stores an uploaded picture under a fresh name.
func (s *ArticleServiceImpl) savePicture(ctx context.Context, upload *Upload) (string, error) {
	if upload == nil {
		return "", nil
	}
	name := uuid.NewString()
	if ext := upload.Extension(); ext != "" {
		name += "." + ext
	}
	if err := s.files.Save(ctx, storage.AreaArticles, name, upload.Content); err != nil {
		return "", fmt.Errorf("failed to save article picture: %w", err)
	}
	return name, nil
}

func (s *ArticleServiceImpl) discardPicture(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.files.Remove(ctx, storage.AreaArticles, name); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to remove article picture",
			slog.String("picture", name),
			slog.String("error", redact.Error(err)))
	}
}
