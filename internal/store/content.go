package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
)

// ArticleStore defines the interface for article persistence.
type ArticleStore interface {
	// List returns one page of articles, newest first, and the total count.
	List(ctx context.Context, limit, offset int) ([]domain.Article, int, error)
	// ListByDate returns the articles published on day, newest first.
	ListByDate(ctx context.Context, day time.Time, limit, offset int) ([]domain.Article, error)
	// Get returns ErrArticleNotFound when no article matches.
	Get(ctx context.Context, id int64) (*domain.Article, error)
	AddView(ctx context.Context, id int64) error
	// Create saves the article and sets its ID.
	Create(ctx context.Context, article *domain.Article) error
	// Update saves title, content, summary and date. An empty Picture keeps
	// the stored picture.
	Update(ctx context.Context, article *domain.Article) error
}

// TabStore defines the interface for tablature persistence.
type TabStore interface {
	Count(ctx context.Context) (domain.TabsCount, error)
	Most(ctx context.Context, ranking domain.Ranking, limit int) ([]domain.RankedTab, error)
	// Autocomplete suggests distinct band or song names containing term.
	// Song suggestions are restricted to band when it is not empty.
	Autocomplete(ctx context.Context, field, term, band string) ([]domain.Suggestion, error)
	Search(ctx context.Context, search domain.TabSearch) ([]domain.Tab, int, error)
	// Get returns ErrTabNotFound when no tab matches.
	Get(ctx context.Context, id int64) (*domain.Tab, error)
	AddView(ctx context.Context, id int64) error
	// Rate records the user's vote, replacing an earlier one, and returns
	// the tab's new average rating.
	Rate(ctx context.Context, tabID, userID int64, rating int) (float64, error)
}

// FavouriteStore defines the interface for users' favourite tabs.
type FavouriteStore interface {
	List(ctx context.Context, userID int64, limit, offset int) ([]domain.Tab, int, error)
	// Add returns false when the tab already is a favourite.
	Add(ctx context.Context, userID, tabID int64) (bool, error)
	Delete(ctx context.Context, userID, tabID int64) error
	Exists(ctx context.Context, userID, tabID int64) (bool, error)
}

// UserCommentStore defines the interface for profile comments.
type UserCommentStore interface {
	List(ctx context.Context, userID int64, limit, offset int) ([]domain.UserComment, int, error)
	// Create saves the comment and sets its ID.
	Create(ctx context.Context, comment *domain.UserComment) error
	WithTx(tx *sql.Tx) UserCommentStore
}

// BackingTrackStore defines the interface for backing track lookups.
type BackingTrackStore interface {
	ByBand(ctx context.Context, band string) ([]domain.BackingTrack, error)
	BySong(ctx context.Context, song string) ([]domain.BackingTrack, error)
	// GetByLink returns ErrBackingTrackNotFound when no track matches.
	GetByLink(ctx context.Context, link string) (*domain.BackingTrack, error)
}
