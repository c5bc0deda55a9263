package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/mail"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/redact"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

// commentReputation is awarded to the author of every profile comment.
const commentReputation = 1

// CommentService manages comments left on member profiles.
type CommentService interface {
	List(ctx context.Context, userID int64, limit, offset int) ([]domain.UserComment, int, error)

	// Add stores a comment by author on the profile of userID, awards the
	// author reputation and notifies the profile owner by e-mail.
	Add(ctx context.Context, author *domain.User, userID int64, content string) (*domain.UserComment, error)
}

// CommentServiceImpl implements CommentService.
type CommentServiceImpl struct {
	comments store.UserCommentStore
	users    store.UserStore
	mailer   mail.Mailer
	db       *sql.DB
	siteURL  string
	logger   *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(
	comments store.UserCommentStore,
	users store.UserStore,
	mailer mail.Mailer,
	db *sql.DB,
	siteURL string,
	logger *slog.Logger,
) (*CommentServiceImpl, error) {
	if comments == nil {
		return nil, fmt.Errorf("comments cannot be nil")
	}
	if users == nil {
		return nil, fmt.Errorf("users cannot be nil")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer cannot be nil")
	}
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CommentServiceImpl{
		comments: comments,
		users:    users,
		mailer:   mailer,
		db:       db,
		siteURL:  strings.TrimRight(siteURL, "/"),
		logger:   logger.With(slog.String("component", "comment_service")),
	}, nil
}

// List returns a page of the comments on a profile, newest first.
func (s *CommentServiceImpl) List(
	ctx context.Context,
	userID int64,
	limit, offset int,
) ([]domain.UserComment, int, error) {
	comments, total, err := s.comments.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, total, nil
}

// Add escapes the content, stores the comment and the reputation change in
// one transaction and then sends the notification. A failed notification is
// only logged.
func (s *CommentServiceImpl) Add(
	ctx context.Context,
	author *domain.User,
	userID int64,
	content string,
) (*domain.UserComment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	comment, err := domain.NewUserComment(userID, author.ID, html.EscapeString(content))
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.comments.WithTx(tx).Create(ctx, comment); err != nil {
			return fmt.Errorf("failed to save comment: %w", err)
		}
		if err := s.users.WithTx(tx).GiveReputation(ctx, author.ID, commentReputation); err != nil {
			return fmt.Errorf("failed to give reputation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("profile comment added",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("user_id", userID),
		slog.Int64("author_id", author.ID))

	if userID != author.ID {
		s.notify(ctx, author, userID, content)
	}
	return comment, nil
}

func (s *CommentServiceImpl) notify(ctx context.Context, author *domain.User, userID int64, content string) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	recipient, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Warn("failed to load comment recipient",
				slog.Int64("user_id", userID),
				slog.String("error", redact.Error(err)))
		}
		return
	}

	link := fmt.Sprintf("%s/profile/%d", s.siteURL, userID)
	msg := mail.CommentMessage(recipient.Username, recipient.Email, author.Username, content, link)
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Warn("failed to send comment notification",
			slog.Int64("user_id", userID),
			slog.String("error", redact.Error(err)))
	}
}
