package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gryp17/Tablaturi-bg-API/internal/config"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
)

// ErrStoreUnavailable wraps failures of the backing store.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store persists session data.
type Store interface {
	// Get returns false when id is unknown or expired.
	Get(ctx context.Context, id string) (Data, bool, error)
	Save(ctx context.Context, id string, data Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Manager loads sessions from request cookies and commits them back.
type Manager struct {
	store  Store
	cfg    config.SessionConfig
	logger *slog.Logger
	newID  func() string
}

// NewManager creates a Manager. If logger is nil, a default logger will be used.
func NewManager(store Store, cfg config.SessionConfig, logger *slog.Logger) *Manager {
	if store == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  store,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "session_manager")),
		newID:  uuid.NewString,
	}
}

// Load returns the session named by the request cookie. Requests without a
// cookie, or with an unknown one, get a fresh empty session.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}, nil
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return &Session{}, nil
	}

	data, ok, err := m.store.Get(ctx, cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		logger.FromContextOrDefault(ctx, m.logger).Debug("session cookie refers to no session")
		return &Session{}, nil
	}
	return &Session{id: cookie.Value, data: data, stored: true}, nil
}

// Commit persists s and writes the matching cookie to w. Stored sessions are
// saved again so that their lifetime slides with activity.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, s *Session) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if s.previous != "" {
		if err := m.store.Delete(ctx, s.previous); err != nil {
			log.Warn("failed to delete replaced session", slog.String("error", err.Error()))
		}
		s.previous = ""
	}

	if s.destroyed || (s.dirty && s.data.empty()) {
		if s.stored {
			if err := m.store.Delete(ctx, s.id); err != nil {
				return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
		}
		if s.stored || s.destroyed {
			http.SetCookie(w, m.expiredCookie())
		}
		s.stored = false
		s.dirty = false
		return nil
	}

	if !s.stored && !s.dirty {
		return nil
	}

	if s.id == "" {
		s.id = m.newID()
	}
	ttl := m.ttl(s.data)
	if err := m.store.Save(ctx, s.id, s.data, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !s.stored || s.dirty {
		http.SetCookie(w, m.cookie(s.id, s.data))
	}
	s.stored = true
	s.dirty = false
	return nil
}

func (m *Manager) ttl(data Data) time.Duration {
	if data.Remember {
		return m.cfg.RememberTTL
	}
	return m.cfg.TTL
}

// cookie returns the session cookie. Remembered sessions outlive the
// browser; the others end with it.
func (m *Manager) cookie(id string, data Data) *http.Cookie {
	c := &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if data.Remember {
		c.MaxAge = int(m.cfg.RememberTTL.Seconds())
		c.Expires = time.Now().Add(m.cfg.RememberTTL)
	}
	return c
}

func (m *Manager) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	}
}
