package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
	"github.com/stretchr/testify/mock"
)

// ArticleStore is a mock of store.ArticleStore.
type ArticleStore struct {
	mock.Mock
}

var _ store.ArticleStore = (*ArticleStore)(nil)

// List is a mock implementation of store.ArticleStore.List
func (m *ArticleStore) List(ctx context.Context, limit, offset int) ([]domain.Article, int, error) {
	args := m.Called(ctx, limit, offset)
	articles, _ := args.Get(0).([]domain.Article)
	return articles, args.Int(1), args.Error(2)
}

// ListByDate is a mock implementation of store.ArticleStore.ListByDate
func (m *ArticleStore) ListByDate(ctx context.Context, day time.Time, limit, offset int) ([]domain.Article, error) {
	args := m.Called(ctx, day, limit, offset)
	articles, _ := args.Get(0).([]domain.Article)
	return articles, args.Error(1)
}

// Get is a mock implementation of store.ArticleStore.Get
func (m *ArticleStore) Get(ctx context.Context, id int64) (*domain.Article, error) {
	args := m.Called(ctx, id)
	article, _ := args.Get(0).(*domain.Article)
	return article, args.Error(1)
}

// AddView is a mock implementation of store.ArticleStore.AddView
func (m *ArticleStore) AddView(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// Create is a mock implementation of store.ArticleStore.Create
func (m *ArticleStore) Create(ctx context.Context, article *domain.Article) error {
	return m.Called(ctx, article).Error(0)
}

// Update is a mock implementation of store.ArticleStore.Update
func (m *ArticleStore) Update(ctx context.Context, article *domain.Article) error {
	return m.Called(ctx, article).Error(0)
}

// TabStore is a mock of store.TabStore.
type TabStore struct {
	mock.Mock
}

var _ store.TabStore = (*TabStore)(nil)

// Count is a mock implementation of store.TabStore.Count
func (m *TabStore) Count(ctx context.Context) (domain.TabsCount, error) {
	args := m.Called(ctx)
	count, _ := args.Get(0).(domain.TabsCount)
	return count, args.Error(1)
}

// Most is a mock implementation of store.TabStore.Most
func (m *TabStore) Most(ctx context.Context, ranking domain.Ranking, limit int) ([]domain.RankedTab, error) {
	args := m.Called(ctx, ranking, limit)
	tabs, _ := args.Get(0).([]domain.RankedTab)
	return tabs, args.Error(1)
}

// Autocomplete is a mock implementation of store.TabStore.Autocomplete
func (m *TabStore) Autocomplete(ctx context.Context, field, term, band string) ([]domain.Suggestion, error) {
	args := m.Called(ctx, field, term, band)
	suggestions, _ := args.Get(0).([]domain.Suggestion)
	return suggestions, args.Error(1)
}

// Search is a mock implementation of store.TabStore.Search
func (m *TabStore) Search(ctx context.Context, search domain.TabSearch) ([]domain.Tab, int, error) {
	args := m.Called(ctx, search)
	tabs, _ := args.Get(0).([]domain.Tab)
	return tabs, args.Int(1), args.Error(2)
}

// Get is a mock implementation of store.TabStore.Get
func (m *TabStore) Get(ctx context.Context, id int64) (*domain.Tab, error) {
	args := m.Called(ctx, id)
	tab, _ := args.Get(0).(*domain.Tab)
	return tab, args.Error(1)
}

// AddView is a mock implementation of store.TabStore.AddView
func (m *TabStore) AddView(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// Rate is a mock implementation of store.TabStore.Rate
func (m *TabStore) Rate(ctx context.Context, tabID, userID int64, rating int) (float64, error) {
	args := m.Called(ctx, tabID, userID, rating)
	average, _ := args.Get(0).(float64)
	return average, args.Error(1)
}

// FavouriteStore is a mock of store.FavouriteStore.
type FavouriteStore struct {
	mock.Mock
}

var _ store.FavouriteStore = (*FavouriteStore)(nil)

// List is a mock implementation of store.FavouriteStore.List
func (m *FavouriteStore) List(ctx context.Context, userID int64, limit, offset int) ([]domain.Tab, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	tabs, _ := args.Get(0).([]domain.Tab)
	return tabs, args.Int(1), args.Error(2)
}

// Add is a mock implementation of store.FavouriteStore.Add
func (m *FavouriteStore) Add(ctx context.Context, userID, tabID int64) (bool, error) {
	args := m.Called(ctx, userID, tabID)
	return args.Bool(0), args.Error(1)
}

// Delete is a mock implementation of store.FavouriteStore.Delete
func (m *FavouriteStore) Delete(ctx context.Context, userID, tabID int64) error {
	return m.Called(ctx, userID, tabID).Error(0)
}

// Exists is a mock implementation of store.FavouriteStore.Exists
func (m *FavouriteStore) Exists(ctx context.Context, userID, tabID int64) (bool, error) {
	args := m.Called(ctx, userID, tabID)
	return args.Bool(0), args.Error(1)
}

// UserCommentStore is a mock of store.UserCommentStore.
type UserCommentStore struct {
	mock.Mock
}

var _ store.UserCommentStore = (*UserCommentStore)(nil)

// List is a mock implementation of store.UserCommentStore.List
func (m *UserCommentStore) List(
	ctx context.Context,
	userID int64,
	limit, offset int,
) ([]domain.UserComment, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	comments, _ := args.Get(0).([]domain.UserComment)
	return comments, args.Int(1), args.Error(2)
}

// Create is a mock implementation of store.UserCommentStore.Create
func (m *UserCommentStore) Create(ctx context.Context, comment *domain.UserComment) error {
	return m.Called(ctx, comment).Error(0)
}

// WithTx is a mock implementation of store.UserCommentStore.WithTx
func (m *UserCommentStore) WithTx(tx *sql.Tx) store.UserCommentStore {
	args := m.Called(tx)
	if ret, ok := args.Get(0).(store.UserCommentStore); ok {
		return ret
	}
	return m
}

// BackingTrackStore is a mock of store.BackingTrackStore.
type BackingTrackStore struct {
	mock.Mock
}

var _ store.BackingTrackStore = (*BackingTrackStore)(nil)

// ByBand is a mock implementation of store.BackingTrackStore.ByBand
func (m *BackingTrackStore) ByBand(ctx context.Context, band string) ([]domain.BackingTrack, error) {
	args := m.Called(ctx, band)
	tracks, _ := args.Get(0).([]domain.BackingTrack)
	return tracks, args.Error(1)
}

// BySong is a mock implementation of store.BackingTrackStore.BySong
func (m *BackingTrackStore) BySong(ctx context.Context, song string) ([]domain.BackingTrack, error) {
	args := m.Called(ctx, song)
	tracks, _ := args.Get(0).([]domain.BackingTrack)
	return tracks, args.Error(1)
}

// GetByLink is a mock implementation of store.BackingTrackStore.GetByLink
func (m *BackingTrackStore) GetByLink(ctx context.Context, link string) (*domain.BackingTrack, error) {
	args := m.Called(ctx, link)
	track, _ := args.Get(0).(*domain.BackingTrack)
	return track, args.Error(1)
}
