package session

import (
	"context"

	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
)

// Data is the state persisted for a session.
type Data struct {
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	Captcha  string `json:"captcha,omitempty"`
	// Remember selects the long session lifetime.
	Remember bool `json:"remember,omitempty"`
}

func (d Data) empty() bool {
	return d == Data{}
}

// Session is the state of one browser for the duration of a request. It is
// not safe for concurrent use.
type Session struct {
	id        string
	data      Data
	stored    bool
	dirty     bool
	destroyed bool
	// previous holds the id replaced by Login.
	previous string
}

var (
	_ contract.SessionSource   = (*Session)(nil)
	_ contract.ChallengeSource = (*Session)(nil)
)

// ID returns the session identifier, empty until the session is stored.
func (s *Session) ID() string {
	return s.id
}

// Data returns a copy of the session state.
func (s *Session) Data() Data {
	return s.data
}

// CurrentCaller implements contract.SessionSource.
func (s *Session) CurrentCaller(_ context.Context) (*contract.Caller, error) {
	if s == nil || s.data.UserID == 0 {
		return nil, nil
	}
	return &contract.Caller{
		UserID:   s.data.UserID,
		Username: s.data.Username,
		Role:     s.data.Role,
	}, nil
}

// CurrentAnswer implements contract.ChallengeSource.
func (s *Session) CurrentAnswer(_ context.Context) (string, bool, error) {
	if s == nil || s.data.Captcha == "" {
		return "", false, nil
	}
	return s.data.Captcha, true, nil
}

// Login stores caller in the session. The session id is replaced on commit.
func (s *Session) Login(caller contract.Caller, remember bool) {
	if s.stored && s.previous == "" {
		s.previous = s.id
	}
	s.id = ""
	s.stored = false
	s.destroyed = false
	s.data.UserID = caller.UserID
	s.data.Username = caller.Username
	s.data.Role = caller.Role
	s.data.Remember = remember
	s.dirty = true
}

// Logout drops everything held by the session.
func (s *Session) Logout() {
	s.data = Data{}
	s.destroyed = true
	s.dirty = true
}

// SetCaptcha records the answer of a newly issued challenge.
func (s *Session) SetCaptcha(answer string) {
	s.data.Captcha = answer
	s.destroyed = false
	s.dirty = true
}

// ClearCaptcha forgets the current challenge so it cannot be answered twice.
func (s *Session) ClearCaptcha() {
	if s.data.Captcha == "" {
		return
	}
	s.data.Captcha = ""
	s.dirty = true
}
