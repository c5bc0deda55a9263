package mocks

import (
	"context"
	"database/sql"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
	"github.com/stretchr/testify/mock"
)

// UserStore is a mock of store.UserStore.
type UserStore struct {
	mock.Mock
}

var _ store.UserStore = (*UserStore)(nil)

// IsUnique is a mock implementation of store.UserStore.IsUnique
func (m *UserStore) IsUnique(ctx context.Context, field, value string) (bool, error) {
	args := m.Called(ctx, field, value)
	return args.Bool(0), args.Error(1)
}

// Create is a mock implementation of store.UserStore.Create
func (m *UserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// GetByID is a mock implementation of store.UserStore.GetByID
func (m *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	return userArg(args, 0), args.Error(1)
}

// GetByUsername is a mock implementation of store.UserStore.GetByUsername
func (m *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	return userArg(args, 0), args.Error(1)
}

// GetByEmail is a mock implementation of store.UserStore.GetByEmail
func (m *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	return userArg(args, 0), args.Error(1)
}

// Activate is a mock implementation of store.UserStore.Activate
func (m *UserStore) Activate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// UpdateProfile is a mock implementation of store.UserStore.UpdateProfile
func (m *UserStore) UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

// UpdatePassword is a mock implementation of store.UserStore.UpdatePassword
func (m *UserStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

// TouchActivity is a mock implementation of store.UserStore.TouchActivity
func (m *UserStore) TouchActivity(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// GiveReputation is a mock implementation of store.UserStore.GiveReputation
func (m *UserStore) GiveReputation(ctx context.Context, id int64, points int) error {
	return m.Called(ctx, id, points).Error(0)
}

// Search is a mock implementation of store.UserStore.Search
func (m *UserStore) Search(ctx context.Context, keyword string, limit, offset int) ([]domain.User, int, error) {
	args := m.Called(ctx, keyword, limit, offset)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Int(1), args.Error(2)
}

// WithTx is a mock implementation of store.UserStore.WithTx
func (m *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	args := m.Called(tx)
	if ret, ok := args.Get(0).(store.UserStore); ok {
		return ret
	}
	return m
}

func userArg(args mock.Arguments, i int) *domain.User {
	if user, ok := args.Get(i).(*domain.User); ok {
		return user
	}
	return nil
}
