package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/mail"
	"github.com/gryp17/Tablaturi-bg-API/internal/mocks"
	"github.com/gryp17/Tablaturi-bg-API/internal/service"
	"github.com/gryp17/Tablaturi-bg-API/internal/service/auth"
	"github.com/gryp17/Tablaturi-bg-API/internal/storage"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const siteURL = "https://tablaturi-bg.com/"

type accountDeps struct {
	users  *mocks.UserStore
	hasher *mocks.PasswordHasher
	tokens *mocks.TokenService
	mailer *mocks.Mailer
	files  *mocks.FileStore
}

func (d *accountDeps) assertExpectations(t *testing.T) {
	t.Helper()
	d.users.AssertExpectations(t)
	d.hasher.AssertExpectations(t)
	d.tokens.AssertExpectations(t)
	d.mailer.AssertExpectations(t)
}

func newAccountService(t *testing.T) (*service.AccountServiceImpl, *accountDeps) {
	t.Helper()

	deps := &accountDeps{
		users:  new(mocks.UserStore),
		hasher: new(mocks.PasswordHasher),
		tokens: new(mocks.TokenService),
		mailer: new(mocks.Mailer),
		files:  mocks.NewFileStore(),
	}
	svc, err := service.NewAccountService(
		deps.users, deps.hasher, deps.tokens, deps.mailer, deps.files,
		siteURL, 48*time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	require.NoError(t, err)
	return svc, deps
}

func activeUser() *domain.User {
	return &domain.User{
		ID:           7,
		Username:     "guitarist",
		Email:        "guitarist@example.com",
		PasswordHash: "stored-hash",
		Gender:       domain.GenderMale,
		Photo:        domain.DefaultAvatarMale,
		Role:         domain.RoleUser,
		Activated:    true,
	}
}

func TestNewAccountService_NilDependencies(t *testing.T) {
	_, err := service.NewAccountService(nil, nil, nil, nil, nil, siteURL, time.Hour, nil)
	assert.Error(t, err)
}

func TestAccountService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, deps := newAccountService(t)
		user := activeUser()
		deps.users.On("GetByUsername", mock.Anything, "guitarist").Return(user, nil)
		deps.hasher.On("Compare", "stored-hash", "secret1").Return(nil)
		deps.users.On("TouchActivity", mock.Anything, int64(7)).Return(nil)

		got, err := svc.Login(ctx, "guitarist", "secret1")

		require.NoError(t, err)
		assert.Equal(t, user, got)
		deps.assertExpectations(t)
	})

	t.Run("unknown username", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.users.On("GetByUsername", mock.Anything, "nobody").Return(nil, store.ErrUserNotFound)

		_, err := svc.Login(ctx, "nobody", "secret1")

		assert.ErrorIs(t, err, service.ErrInvalidLogin)
		deps.assertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.users.On("GetByUsername", mock.Anything, "guitarist").Return(activeUser(), nil)
		deps.hasher.On("Compare", "stored-hash", "wrong1").Return(auth.ErrPasswordMismatch)

		_, err := svc.Login(ctx, "guitarist", "wrong1")

		assert.ErrorIs(t, err, service.ErrInvalidLogin)
		deps.assertExpectations(t)
	})

	t.Run("inactive account", func(t *testing.T) {
		svc, deps := newAccountService(t)
		user := activeUser()
		user.Activated = false
		deps.users.On("GetByUsername", mock.Anything, "guitarist").Return(user, nil)
		deps.hasher.On("Compare", "stored-hash", "secret1").Return(nil)

		_, err := svc.Login(ctx, "guitarist", "secret1")

		assert.ErrorIs(t, err, service.ErrInvalidLogin)
		deps.assertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		svc, deps := newAccountService(t)
		dbErr := errors.New("connection reset")
		deps.users.On("GetByUsername", mock.Anything, "guitarist").Return(nil, dbErr)

		_, err := svc.Login(ctx, "guitarist", "secret1")

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, service.ErrInvalidLogin)
	})
}

func TestAccountService_Signup(t *testing.T) {
	ctx := context.Background()
	req := service.SignupRequest{
		Username: "newplayer",
		Email:    "new@example.com",
		Password: "secret1",
		Birthday: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		Gender:   domain.GenderFemale,
	}

	t.Run("creates inactive user and mails activation link", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.hasher.On("Hash", "secret1").Return("bcrypt-hash", nil)
		deps.users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Username == "newplayer" &&
				u.PasswordHash == "bcrypt-hash" &&
				u.Photo == domain.DefaultAvatarFemale &&
				!u.Activated
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 42
		}).Return(nil)
		deps.tokens.On("Issue", mock.Anything, auth.PurposeActivation, int64(42), "").Return("act-token", nil)
		deps.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m mail.Message) bool {
			return m.To == "new@example.com" &&
				strings.Contains(m.Body, "https://tablaturi-bg.com/activate/42/act-token") &&
				strings.Contains(m.Body, "2 days")
		})).Return(nil)

		user, err := svc.Signup(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, int64(42), user.ID)
		deps.assertExpectations(t)
	})

	t.Run("mail failure keeps the account", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.hasher.On("Hash", "secret1").Return("bcrypt-hash", nil)
		deps.users.On("Create", mock.Anything, mock.Anything).Return(nil)
		deps.tokens.On("Issue", mock.Anything, auth.PurposeActivation, mock.Anything, "").Return("act-token", nil)
		deps.mailer.On("Send", mock.Anything, mock.Anything).Return(mail.ErrSendFailed)

		user, err := svc.Signup(ctx, req)

		assert.ErrorIs(t, err, service.ErrMailFailed)
		assert.NotNil(t, user)
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.hasher.On("Hash", "secret1").Return("bcrypt-hash", nil)
		deps.users.On("Create", mock.Anything, mock.Anything).Return(store.ErrUsernameExists)

		_, err := svc.Signup(ctx, req)

		assert.ErrorIs(t, err, store.ErrUsernameExists)
		deps.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestAccountService_Activate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, deps := newAccountService(t)
		user := activeUser()
		user.Activated = false
		deps.tokens.On("Validate", mock.Anything, auth.PurposeActivation, "tok").
			Return(&auth.Claims{UserID: 7, Purpose: auth.PurposeActivation}, nil)
		deps.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
		deps.users.On("Activate", mock.Anything, int64(7)).Return(nil)

		require.NoError(t, svc.Activate(ctx, 7, "tok"))
		deps.assertExpectations(t)
	})

	t.Run("token for another user", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.tokens.On("Validate", mock.Anything, auth.PurposeActivation, "tok").
			Return(&auth.Claims{UserID: 8, Purpose: auth.PurposeActivation}, nil)

		assert.ErrorIs(t, svc.Activate(ctx, 7, "tok"), service.ErrInvalidToken)
		deps.users.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
	})

	t.Run("expired token", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.tokens.On("Validate", mock.Anything, auth.PurposeActivation, "old").Return(nil, auth.ErrExpiredToken)

		assert.ErrorIs(t, svc.Activate(ctx, 7, "old"), service.ErrInvalidToken)
	})

	t.Run("already active", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.tokens.On("Validate", mock.Anything, auth.PurposeActivation, "tok").
			Return(&auth.Claims{UserID: 7}, nil)
		deps.users.On("GetByID", mock.Anything, int64(7)).Return(activeUser(), nil)

		assert.ErrorIs(t, svc.Activate(ctx, 7, "tok"), service.ErrAlreadyActivated)
	})
}

func TestAccountService_ResendActivation(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.users.On("GetByEmail", mock.Anything, "x@example.com").Return(nil, store.ErrUserNotFound)

		assert.ErrorIs(t, svc.ResendActivation(ctx, "x@example.com"), service.ErrEmailNotFound)
	})

	t.Run("already activated", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.users.On("GetByEmail", mock.Anything, "guitarist@example.com").Return(activeUser(), nil)

		assert.ErrorIs(t, svc.ResendActivation(ctx, "guitarist@example.com"), service.ErrAlreadyActivated)
	})

	t.Run("sends a new link", func(t *testing.T) {
		svc, deps := newAccountService(t)
		user := activeUser()
		user.Activated = false
		deps.users.On("GetByEmail", mock.Anything, "guitarist@example.com").Return(user, nil)
		deps.tokens.On("Issue", mock.Anything, auth.PurposeActivation, int64(7), "").Return("fresh", nil)
		deps.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m mail.Message) bool {
			return strings.Contains(m.Body, "/activate/7/fresh")
		})).Return(nil)

		require.NoError(t, svc.ResendActivation(ctx, "guitarist@example.com"))
		deps.assertExpectations(t)
	})
}

func TestAccountService_PasswordReset(t *testing.T) {
	ctx := context.Background()
	fingerprint := auth.Fingerprint("stored-hash")

	t.Run("forgotten password mails a fingerprinted link", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.users.On("GetByEmail", mock.Anything, "guitarist@example.com").Return(activeUser(), nil)
		deps.tokens.On("Issue", mock.Anything, auth.PurposeReset, int64(7), fingerprint).Return("reset-tok", nil)
		deps.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m mail.Message) bool {
			return strings.Contains(m.Body, "https://tablaturi-bg.com/reset-password/7/reset-tok")
		})).Return(nil)

		require.NoError(t, svc.ForgottenPassword(ctx, "guitarist@example.com"))
		deps.assertExpectations(t)
	})

	t.Run("reset stores the new hash", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.tokens.On("Validate", mock.Anything, auth.PurposeReset, "reset-tok").
			Return(&auth.Claims{UserID: 7, Fingerprint: fingerprint}, nil)
		deps.users.On("GetByID", mock.Anything, int64(7)).Return(activeUser(), nil)
		deps.hasher.On("Hash", "newpass1").Return("new-hash", nil)
		deps.users.On("UpdatePassword", mock.Anything, int64(7), "new-hash").Return(nil)

		require.NoError(t, svc.ResetPassword(ctx, 7, "reset-tok", "newpass1"))
		deps.assertExpectations(t)
	})

	t.Run("used link is rejected", func(t *testing.T) {
		svc, deps := newAccountService(t)
		user := activeUser()
		user.PasswordHash = "changed-since"
		deps.tokens.On("Validate", mock.Anything, auth.PurposeReset, "reset-tok").
			Return(&auth.Claims{UserID: 7, Fingerprint: fingerprint}, nil)
		deps.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)

		assert.ErrorIs(t, svc.ResetPassword(ctx, 7, "reset-tok", "newpass1"), service.ErrInvalidToken)
		deps.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAccountService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("new avatar replaces a custom one", func(t *testing.T) {
		svc, deps := newAccountService(t)
		user := activeUser()
		user.Photo = "avatar-7.jpg"
		deps.files.Put(storage.AreaAvatars, "avatar-7.jpg", []byte("old"))
		updated := *user
		updated.Photo = "avatar-7.png"

		deps.users.On("GetByID", mock.Anything, int64(7)).Return(user, nil).Once()
		deps.hasher.On("Hash", "newpass1").Return("new-hash", nil)
		deps.users.On("UpdateProfile", mock.Anything, int64(7), domain.ProfileUpdate{
			PasswordHash: "new-hash",
			Photo:        "avatar-7.png",
			Location:     "Sofia",
		}).Return(nil)
		deps.users.On("GetByID", mock.Anything, int64(7)).Return(&updated, nil).Once()

		got, err := svc.UpdateProfile(ctx, 7, service.ProfileRequest{
			Password: "newpass1",
			Location: "Sofia",
			Avatar:   &service.Upload{Name: "Me.PNG", Content: strings.NewReader("png-bytes")},
		})

		require.NoError(t, err)
		assert.Equal(t, "avatar-7.png", got.Photo)
		content, ok := deps.files.Content(storage.AreaAvatars, "avatar-7.png")
		require.True(t, ok)
		assert.Equal(t, "png-bytes", string(content))
		_, ok = deps.files.Content(storage.AreaAvatars, "avatar-7.jpg")
		assert.False(t, ok)
		deps.assertExpectations(t)
	})

	t.Run("default avatar is kept on disk", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.files.Put(storage.AreaAvatars, domain.DefaultAvatarMale, []byte("stock"))

		deps.users.On("GetByID", mock.Anything, int64(7)).Return(activeUser(), nil)
		deps.users.On("UpdateProfile", mock.Anything, int64(7), mock.Anything).Return(nil)

		_, err := svc.UpdateProfile(ctx, 7, service.ProfileRequest{
			Avatar: &service.Upload{Name: "me.jpg", Content: strings.NewReader("jpg")},
		})

		require.NoError(t, err)
		_, ok := deps.files.Content(storage.AreaAvatars, domain.DefaultAvatarMale)
		assert.True(t, ok)
	})

	t.Run("no password keeps the hash", func(t *testing.T) {
		svc, deps := newAccountService(t)
		deps.users.On("GetByID", mock.Anything, int64(7)).Return(activeUser(), nil)
		deps.users.On("UpdateProfile", mock.Anything, int64(7), domain.ProfileUpdate{Web: "https://example.com"}).
			Return(nil)

		_, err := svc.UpdateProfile(ctx, 7, service.ProfileRequest{Web: "https://example.com"})

		require.NoError(t, err)
		deps.hasher.AssertNotCalled(t, "Hash", mock.Anything)
	})
}

func TestAccountService_Search(t *testing.T) {
	svc, deps := newAccountService(t)
	deps.users.On("Search", mock.Anything, "guit", 10, 0).Return([]domain.User{*activeUser()}, 1, nil)

	users, total, err := svc.Search(context.Background(), "guit", 10, 0)

	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
}
