package mocks

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/gryp17/Tablaturi-bg-API/internal/mail"
	"github.com/gryp17/Tablaturi-bg-API/internal/service/auth"
	"github.com/gryp17/Tablaturi-bg-API/internal/storage"
	"github.com/stretchr/testify/mock"
)

// Mailer is a mock of mail.Mailer.
type Mailer struct {
	mock.Mock
}

var _ mail.Mailer = (*Mailer)(nil)

// Send is a mock implementation of mail.Mailer.Send
func (m *Mailer) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// TokenService is a mock of auth.TokenService.
type TokenService struct {
	mock.Mock
}

var _ auth.TokenService = (*TokenService)(nil)

// Issue is a mock implementation of auth.TokenService.Issue
func (m *TokenService) Issue(
	ctx context.Context,
	purpose auth.Purpose,
	userID int64,
	fingerprint string,
) (string, error) {
	args := m.Called(ctx, purpose, userID, fingerprint)
	return args.String(0), args.Error(1)
}

// Validate is a mock implementation of auth.TokenService.Validate
func (m *TokenService) Validate(ctx context.Context, purpose auth.Purpose, token string) (*auth.Claims, error) {
	args := m.Called(ctx, purpose, token)
	claims, _ := args.Get(0).(*auth.Claims)
	return claims, args.Error(1)
}

// PasswordHasher is a mock of auth.PasswordHasher.
type PasswordHasher struct {
	mock.Mock
}

var _ auth.PasswordHasher = (*PasswordHasher)(nil)

// Hash is a mock implementation of auth.PasswordHasher.Hash
func (m *PasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

// Compare is a mock implementation of auth.PasswordHasher.Compare
func (m *PasswordHasher) Compare(hashedPassword, password string) error {
	return m.Called(hashedPassword, password).Error(0)
}

// FileStore is an in-memory storage.FileStore. Saved contents are kept
// per area and name so tests can inspect them.
type FileStore struct {
	mu    sync.Mutex
	files map[storage.Area]map[string][]byte
	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

var _ storage.FileStore = (*FileStore)(nil)

// NewFileStore creates an empty FileStore.
func NewFileStore() *FileStore {
	return &FileStore{files: make(map[storage.Area]map[string][]byte)}
}

// Put stores content directly, bypassing SaveErr.
func (f *FileStore) Put(area storage.Area, name string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.files[area] == nil {
		f.files[area] = make(map[string][]byte)
	}
	f.files[area][name] = content
}

// Content returns the stored bytes and whether the file exists.
func (f *FileStore) Content(area storage.Area, name string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.files[area][name]
	return content, ok
}

// Save implements storage.FileStore.
func (f *FileStore) Save(_ context.Context, area storage.Area, name string, src io.Reader) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	if !storage.ValidName(name) {
		return storage.ErrInvalidName
	}
	content, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	f.Put(area, name, content)
	return nil
}

// Open implements storage.FileStore.
func (f *FileStore) Open(_ context.Context, area storage.Area, name string) (storage.File, int64, error) {
	if !storage.ValidName(name) {
		return nil, 0, storage.ErrInvalidName
	}
	content, ok := f.Content(area, name)
	if !ok {
		return nil, 0, storage.ErrNotFound
	}
	return nopCloser{bytes.NewReader(content)}, int64(len(content)), nil
}

// Remove implements storage.FileStore.
func (f *FileStore) Remove(_ context.Context, area storage.Area, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files[area], name)
	return nil
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
