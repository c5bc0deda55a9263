package mocks

import (
	"context"
	"time"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/service"
	"github.com/stretchr/testify/mock"
)

// AccountService is a mock of service.AccountService.
type AccountService struct {
	mock.Mock
}

var _ service.AccountService = (*AccountService)(nil)

// Login is a mock implementation of service.AccountService.Login
func (m *AccountService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

// Signup is a mock implementation of service.AccountService.Signup
func (m *AccountService) Signup(ctx context.Context, req service.SignupRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

// Activate is a mock implementation of service.AccountService.Activate
func (m *AccountService) Activate(ctx context.Context, userID int64, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

// ResendActivation is a mock implementation of service.AccountService.ResendActivation
func (m *AccountService) ResendActivation(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// ForgottenPassword is a mock implementation of service.AccountService.ForgottenPassword
func (m *AccountService) ForgottenPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// ResetPassword is a mock implementation of service.AccountService.ResetPassword
func (m *AccountService) ResetPassword(ctx context.Context, userID int64, token, password string) error {
	return m.Called(ctx, userID, token, password).Error(0)
}

// GetUser is a mock implementation of service.AccountService.GetUser
func (m *AccountService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

// UpdateProfile is a mock implementation of service.AccountService.UpdateProfile
func (m *AccountService) UpdateProfile(
	ctx context.Context,
	userID int64,
	req service.ProfileRequest,
) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

// Search is a mock implementation of service.AccountService.Search
func (m *AccountService) Search(ctx context.Context, keyword string, limit, offset int) ([]domain.User, int, error) {
	args := m.Called(ctx, keyword, limit, offset)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Int(1), args.Error(2)
}

// TouchActivity is a mock implementation of service.AccountService.TouchActivity
func (m *AccountService) TouchActivity(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

// CommentService is a mock of service.CommentService.
type CommentService struct {
	mock.Mock
}

var _ service.CommentService = (*CommentService)(nil)

// List is a mock implementation of service.CommentService.List
func (m *CommentService) List(
	ctx context.Context,
	userID int64,
	limit, offset int,
) ([]domain.UserComment, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	comments, _ := args.Get(0).([]domain.UserComment)
	return comments, args.Int(1), args.Error(2)
}

// Add is a mock implementation of service.CommentService.Add
func (m *CommentService) Add(
	ctx context.Context,
	author *domain.User,
	userID int64,
	content string,
) (*domain.UserComment, error) {
	args := m.Called(ctx, author, userID, content)
	comment, _ := args.Get(0).(*domain.UserComment)
	return comment, args.Error(1)
}

// ArticleService is a mock of service.ArticleService.
type ArticleService struct {
	mock.Mock
}

var _ service.ArticleService = (*ArticleService)(nil)

// List is a mock implementation of service.ArticleService.List
func (m *ArticleService) List(ctx context.Context, limit, offset int) ([]domain.Article, int, error) {
	args := m.Called(ctx, limit, offset)
	articles, _ := args.Get(0).([]domain.Article)
	return articles, args.Int(1), args.Error(2)
}

// ListByDate is a mock implementation of service.ArticleService.ListByDate
func (m *ArticleService) ListByDate(ctx context.Context, day time.Time, limit, offset int) ([]domain.Article, error) {
	args := m.Called(ctx, day, limit, offset)
	articles, _ := args.Get(0).([]domain.Article)
	return articles, args.Error(1)
}

// View is a mock implementation of service.ArticleService.View
func (m *ArticleService) View(ctx context.Context, id int64) (*domain.Article, error) {
	args := m.Called(ctx, id)
	article, _ := args.Get(0).(*domain.Article)
	return article, args.Error(1)
}

// Create is a mock implementation of service.ArticleService.Create
func (m *ArticleService) Create(ctx context.Context, authorID int64, in service.ArticleInput) (*domain.Article, error) {
	args := m.Called(ctx, authorID, in)
	article, _ := args.Get(0).(*domain.Article)
	return article, args.Error(1)
}

// Update is a mock implementation of service.ArticleService.Update
func (m *ArticleService) Update(ctx context.Context, id int64, in service.ArticleInput) (*domain.Article, error) {
	args := m.Called(ctx, id, in)
	article, _ := args.Get(0).(*domain.Article)
	return article, args.Error(1)
}

// TabService is a mock of service.TabService.
type TabService struct {
	mock.Mock
}

var _ service.TabService = (*TabService)(nil)

// Count is a mock implementation of service.TabService.Count
func (m *TabService) Count(ctx context.Context) (domain.TabsCount, error) {
	args := m.Called(ctx)
	count, _ := args.Get(0).(domain.TabsCount)
	return count, args.Error(1)
}

// Most is a mock implementation of service.TabService.Most
func (m *TabService) Most(ctx context.Context, ranking domain.Ranking, limit int) ([]domain.RankedTab, error) {
	args := m.Called(ctx, ranking, limit)
	tabs, _ := args.Get(0).([]domain.RankedTab)
	return tabs, args.Error(1)
}

// Autocomplete is a mock implementation of service.TabService.Autocomplete
func (m *TabService) Autocomplete(ctx context.Context, field, term, band string) ([]domain.Suggestion, error) {
	args := m.Called(ctx, field, term, band)
	suggestions, _ := args.Get(0).([]domain.Suggestion)
	return suggestions, args.Error(1)
}

// Search is a mock implementation of service.TabService.Search
func (m *TabService) Search(ctx context.Context, search domain.TabSearch) ([]domain.Tab, int, error) {
	args := m.Called(ctx, search)
	tabs, _ := args.Get(0).([]domain.Tab)
	return tabs, args.Int(1), args.Error(2)
}

// View is a mock implementation of service.TabService.View
func (m *TabService) View(ctx context.Context, id int64) (*domain.Tab, error) {
	args := m.Called(ctx, id)
	tab, _ := args.Get(0).(*domain.Tab)
	return tab, args.Error(1)
}

// Rate is a mock implementation of service.TabService.Rate
func (m *TabService) Rate(ctx context.Context, tabID, userID int64, rating int) (float64, error) {
	args := m.Called(ctx, tabID, userID, rating)
	avg, _ := args.Get(0).(float64)
	return avg, args.Error(1)
}

// BackingTrackService is a mock of service.BackingTrackService.
type BackingTrackService struct {
	mock.Mock
}

var _ service.BackingTrackService = (*BackingTrackService)(nil)

// Search is a mock implementation of service.BackingTrackService.Search
func (m *BackingTrackService) Search(ctx context.Context, band, song string) ([]domain.BackingTrack, error) {
	args := m.Called(ctx, band, song)
	tracks, _ := args.Get(0).([]domain.BackingTrack)
	return tracks, args.Error(1)
}

// MP3 is a mock implementation of service.BackingTrackService.MP3
func (m *BackingTrackService) MP3(ctx context.Context, link string) (string, error) {
	args := m.Called(ctx, link)
	return args.String(0), args.Error(1)
}
