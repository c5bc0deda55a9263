package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gryp17/Tablaturi-bg-API/internal/api/shared"
	"github.com/gryp17/Tablaturi-bg-API/internal/captcha"
	"github.com/gryp17/Tablaturi-bg-API/internal/config"
	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/mocks"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/service"
	"github.com/gryp17/Tablaturi-bg-API/internal/session"
	"github.com/gryp17/Tablaturi-bg-API/internal/storage"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var sessionConfig = config.SessionConfig{
	CookieName:  "tablaturi_session",
	TTL:         time.Hour,
	RememberTTL: 90 * 24 * time.Hour,
}

const captchaAnswer = "K7PX"

type fixedChallenge struct{}

func (fixedChallenge) New() (*captcha.Challenge, error) {
	return &captcha.Challenge{Answer: captchaAnswer, SVG: []byte("<svg></svg>")}, nil
}

type observation struct {
	controller string
	endpoint   string
	status     int
}

type fakeRecorder struct {
	mu       sync.Mutex
	observed []observation
	rejected []string
}

func (r *fakeRecorder) ObserveRequest(controller, endpoint string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed = append(r.observed, observation{controller, endpoint, status})
}

func (r *fakeRecorder) Reject(controller, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, controller+":"+reason)
}

type harness struct {
	accounts   *mocks.AccountService
	comments   *mocks.CommentService
	articles   *mocks.ArticleService
	tabs       *mocks.TabService
	tracks     *mocks.BackingTrackService
	favourites *mocks.FavouriteStore
	users      *mocks.UserStore
	mailer     *mocks.Mailer
	files      *mocks.FileStore
	sessions   *session.MemoryStore
	recorder   *fakeRecorder
	router     chi.Router
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	log, _ := logger.GetTestLogger(t)
	h := &harness{
		accounts:   &mocks.AccountService{},
		comments:   &mocks.CommentService{},
		articles:   &mocks.ArticleService{},
		tabs:       &mocks.TabService{},
		tracks:     &mocks.BackingTrackService{},
		favourites: &mocks.FavouriteStore{},
		users:      &mocks.UserStore{},
		mailer:     &mocks.Mailer{},
		files:      mocks.NewFileStore(),
		sessions:   session.NewMemoryStore(),
		recorder:   &fakeRecorder{},
	}

	dispatchers, err := NewDispatchers(Dependencies{
		Accounts:       h.accounts,
		Comments:       h.comments,
		Articles:       h.articles,
		Tabs:           h.tabs,
		BackingTracks:  h.tracks,
		Favourites:     h.favourites,
		Files:          h.files,
		Mailer:         h.mailer,
		Challenges:     fixedChallenge{},
		Uniqueness:     h.users,
		ContactAddress: "team@tablaturi-bg.com",
		Logger:         log,
	})
	require.NoError(t, err)

	srv, err := NewServer(session.NewManager(h.sessions, sessionConfig, log), h.recorder, log, dispatchers...)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api", srv.Routes)
	h.router = r
	return h
}

// login stores a session for caller and returns its cookie.
func (h *harness) login(t *testing.T, caller contract.Caller) *http.Cookie {
	t.Helper()

	id := uuid.NewString()
	require.NoError(t, h.sessions.Save(context.Background(), id, session.Data{
		UserID:   caller.UserID,
		Username: caller.Username,
		Role:     caller.Role,
	}, time.Hour))
	return &http.Cookie{Name: sessionConfig.CookieName, Value: id}
}

func (h *harness) post(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.serve(req, cookies...)
}

func (h *harness) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	return h.serve(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (h *harness) serve(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionConfig.CookieName && c.MaxAge >= 0 {
			return c
		}
	}
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

type errorBody struct {
	Error   json.RawMessage `json:"error"`
	TraceID string          `json:"trace_id"`
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	body := decode[errorBody](t, rec)
	var code string
	require.NoError(t, json.Unmarshal(body.Error, &code), string(body.Error))
	return code
}

func fieldError(t *testing.T, rec *httptest.ResponseRecorder) shared.FieldError {
	t.Helper()

	body := decode[errorBody](t, rec)
	var fe shared.FieldError
	require.NoError(t, json.Unmarshal(body.Error, &fe), string(body.Error))
	return fe
}

func TestServer_Routing(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
	}{
		{name: "unknown controller", path: "/api/forum/list", wantStatus: http.StatusNotFound, wantCode: CodeNotFound},
		{name: "unknown endpoint", path: "/api/user/fly", wantStatus: http.StatusNotFound, wantCode: CodeNotFound},
		{name: "no endpoint", path: "/api/user", wantStatus: http.StatusBadRequest, wantCode: CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.get(t, tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestServer_RouteFieldCannotBeOverridden(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.tabs.On("Count", mock.Anything).Return(domain.TabsCount{GuitarPro: 3, Text: 4}, nil)

	rec := h.post(t, "/api/tab/getTabsCount?url=user/logout", url.Values{"url": {"user/logout"}})

	require.Equal(t, http.StatusOK, rec.Code)
	count := decode[domain.TabsCount](t, rec)
	assert.Equal(t, domain.TabsCount{GuitarPro: 3, Text: 4}, count)
}

func TestServer_PaddedRouteFieldIsIgnored(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.tabs.On("Count", mock.Anything).Return(domain.TabsCount{GuitarPro: 1, Text: 2}, nil)

	rec := h.post(t, "/api/tab/getTabsCount?%20url=user/logout",
		url.Values{" url": {"user/login"}, "url ": {"user/login"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TabsCount{GuitarPro: 1, Text: 2}, decode[domain.TabsCount](t, rec))

	h.recorder.mu.Lock()
	defer h.recorder.mu.Unlock()
	assert.Equal(t, []observation{
		{controller: "tab", endpoint: "getTabsCount", status: http.StatusOK},
	}, h.recorder.observed)
}

func TestUser_IsLoggedIn(t *testing.T) {
	t.Parallel()

	t.Run("anonymous", func(t *testing.T) {
		h := newHarness(t)

		rec := h.get(t, "/api/user/isLoggedIn")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"logged_in":false}`, rec.Body.String())
		assert.Nil(t, sessionCookie(rec))
	})

	t.Run("member", func(t *testing.T) {
		h := newHarness(t)
		cookie := h.login(t, contract.Caller{UserID: 7, Username: "guitarist", Role: domain.RoleUser})
		h.accounts.On("GetUser", mock.Anything, int64(7)).
			Return(&domain.User{ID: 7, Username: "guitarist", Role: domain.RoleUser}, nil)
		h.accounts.On("TouchActivity", mock.Anything, int64(7)).Return(nil)

		rec := h.get(t, "/api/user/isLoggedIn", cookie)

		require.Equal(t, http.StatusOK, rec.Code)
		status := decode[struct {
			LoggedIn bool        `json:"logged_in"`
			User     domain.User `json:"user"`
		}](t, rec)
		assert.True(t, status.LoggedIn)
		assert.Equal(t, "guitarist", status.User.Username)
		h.accounts.AssertExpectations(t)
	})

	t.Run("deleted member is logged out", func(t *testing.T) {
		h := newHarness(t)
		cookie := h.login(t, contract.Caller{UserID: 9, Username: "gone"})
		h.accounts.On("GetUser", mock.Anything, int64(9)).Return(nil, store.ErrUserNotFound)

		rec := h.get(t, "/api/user/isLoggedIn", cookie)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"logged_in":false}`, rec.Body.String())
		_, found, err := h.sessions.Get(context.Background(), cookie.Value)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestUser_Login(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials start a session", func(t *testing.T) {
		h := newHarness(t)
		user := &domain.User{ID: 7, Username: "guitarist", Role: domain.RoleAdmin, PasswordHash: "hash"}
		h.accounts.On("Login", mock.Anything, "guitarist", "Secret123").Return(user, nil)

		rec := h.post(t, "/api/user/login", url.Values{
			"username":    {" guitarist "},
			"password":    {"Secret123"},
			"remember_me": {"1"},
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "hash")
		got := decode[domain.User](t, rec)
		assert.Equal(t, int64(7), got.ID)

		cookie := sessionCookie(rec)
		require.NotNil(t, cookie)
		data, found, err := h.sessions.Get(context.Background(), cookie.Value)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, session.Data{UserID: 7, Username: "guitarist", Role: domain.RoleAdmin, Remember: true}, data)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		h := newHarness(t)
		h.accounts.On("Login", mock.Anything, "guitarist", "wrong1").Return(nil, service.ErrInvalidLogin)

		rec := h.post(t, "/api/user/login", url.Values{"username": {"guitarist"}, "password": {"wrong1"}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, shared.FieldError{Field: "password", ErrorCode: CodeInvalidLogin}, fieldError(t, rec))
		assert.Nil(t, sessionCookie(rec))
	})

	t.Run("missing password", func(t *testing.T) {
		h := newHarness(t)

		rec := h.post(t, "/api/user/login", url.Values{"username": {"guitarist"}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, shared.FieldError{Field: "password", ErrorCode: "empty_field"}, fieldError(t, rec))
		h.accounts.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad remember flag", func(t *testing.T) {
		h := newHarness(t)

		rec := h.post(t, "/api/user/login", url.Values{
			"username": {"guitarist"}, "password": {"x"}, "remember_me": {"yes"},
		})

		assert.Equal(t, shared.FieldError{Field: "remember_me", ErrorCode: "not_in_list"}, fieldError(t, rec))
	})
}

func TestUser_Logout(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	cookie := h.login(t, contract.Caller{UserID: 7, Username: "guitarist"})

	rec := h.post(t, "/api/user/logout", url.Values{}, cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", strings.TrimSpace(rec.Body.String()))
	_, found, err := h.sessions.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUser_AccessLevels(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	t.Run("validation runs before the access check", func(t *testing.T) {
		rec := h.get(t, "/api/user/getUser")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, shared.FieldError{Field: "id", ErrorCode: "empty_field"}, fieldError(t, rec))
	})

	t.Run("anonymous caller is denied", func(t *testing.T) {
		rec := h.get(t, "/api/user/getUser?id=3")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, CodeAccessDenied, errorCode(t, rec))
	})

	t.Run("member may read profiles", func(t *testing.T) {
		h.accounts.On("GetUser", mock.Anything, int64(3)).Return(&domain.User{ID: 3, Username: "drummer"}, nil)
		cookie := h.login(t, contract.Caller{UserID: 7, Username: "guitarist"})

		rec := h.get(t, "/api/user/getUser?id=3", cookie)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "drummer", decode[domain.User](t, rec).Username)
	})

	t.Run("missing profile", func(t *testing.T) {
		h.accounts.On("GetUser", mock.Anything, int64(404)).Return(nil, store.ErrUserNotFound)
		cookie := h.login(t, contract.Caller{UserID: 7, Username: "guitarist"})

		rec := h.get(t, "/api/user/getUser?id=404", cookie)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, CodeNotFound, errorCode(t, rec))
	})
}

func TestUser_SignupWithCaptcha(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	rec := h.get(t, "/api/misc/generateCaptcha")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<svg></svg>", rec.Body.String())
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)

	h.users.On("IsUnique", mock.Anything, "username", "guitarist").Return(true, nil)
	h.users.On("IsUnique", mock.Anything, "email", "guitarist@example.com").Return(true, nil)
	h.accounts.On("Signup", mock.Anything, service.SignupRequest{
		Username: "guitarist",
		Email:    "guitarist@example.com",
		Password: "Secret123",
		Birthday: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		Gender:   domain.GenderMale,
	}).Return(&domain.User{ID: 11}, nil).Once()

	form := url.Values{
		"username":        {"guitarist"},
		"email":           {"guitarist@example.com"},
		"password":        {"Secret123"},
		"repeat_password": {"Secret123"},
		"birthday":        {"1990-05-17"},
		"gender":          {"M"},
		"captcha":         {strings.ToLower(captchaAnswer)},
	}

	rec = h.post(t, "/api/user/signup", form, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	h.accounts.AssertExpectations(t)

	// The answer is single use.
	rec = h.post(t, "/api/user/signup", form, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, shared.FieldError{Field: "captcha", ErrorCode: "invalid_captcha"}, fieldError(t, rec))
}

func TestUser_SignupRejectsTakenUsername(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.users.On("IsUnique", mock.Anything, "username", "guitarist").Return(false, nil)

	rec := h.post(t, "/api/user/signup", url.Values{"username": {"guitarist"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, shared.FieldError{Field: "username", ErrorCode: "username_in_use"}, fieldError(t, rec))
}

func TestUser_UniquenessLookupFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.users.On("IsUnique", mock.Anything, "username", "guitarist").Return(false, errors.New("connection reset"))

	rec := h.post(t, "/api/user/signup", url.Values{"username": {"guitarist"}})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, CodeDBError, errorCode(t, rec))
}

func TestUser_AccountLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		form       url.Values
		setup      func(*mocks.AccountService)
		wantStatus int
		wantBody   string
		wantField  *shared.FieldError
	}{
		{
			name: "activate",
			path: "/api/user/activate",
			form: url.Values{"user_id": {"11"}, "hash": {"token"}},
			setup: func(m *mocks.AccountService) {
				m.On("Activate", mock.Anything, int64(11), "token").Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "true",
		},
		{
			name: "activate twice",
			path: "/api/user/activate",
			form: url.Values{"user_id": {"11"}, "hash": {"token"}},
			setup: func(m *mocks.AccountService) {
				m.On("Activate", mock.Anything, int64(11), "token").Return(service.ErrAlreadyActivated)
			},
			wantStatus: http.StatusBadRequest,
			wantField:  &shared.FieldError{Field: "email", ErrorCode: CodeEmailAlreadyActivated},
		},
		{
			name: "resend to unknown email",
			path: "/api/user/resendUserActivation",
			form: url.Values{"email": {"nobody@example.com"}},
			setup: func(m *mocks.AccountService) {
				m.On("ResendActivation", mock.Anything, "nobody@example.com").Return(service.ErrEmailNotFound)
			},
			wantStatus: http.StatusBadRequest,
			wantField:  &shared.FieldError{Field: "email", ErrorCode: CodeEmailNotFound},
		},
		{
			name: "reset with expired token",
			path: "/api/user/updatePassword",
			form: url.Values{
				"user_id": {"11"}, "hash": {"old"}, "password": {"Secret123"}, "repeat_password": {"Secret123"},
			},
			setup: func(m *mocks.AccountService) {
				m.On("ResetPassword", mock.Anything, int64(11), "old", "Secret123").Return(service.ErrInvalidToken)
			},
			wantStatus: http.StatusBadRequest,
			wantField:  &shared.FieldError{Field: "hash", ErrorCode: CodeInvalidOrExpiredToken},
		},
		{
			name: "reset with mismatched repeat",
			path: "/api/user/updatePassword",
			form: url.Values{
				"user_id": {"11"}, "hash": {"old"}, "password": {"Secret123"}, "repeat_password": {"Secret124"},
			},
			setup:      func(*mocks.AccountService) {},
			wantStatus: http.StatusBadRequest,
			wantField:  &shared.FieldError{Field: "repeat_password", ErrorCode: "no_match"},
		},
		{
			name: "resend when mail fails",
			path: "/api/user/resendUserActivation",
			form: url.Values{"email": {"guitarist@example.com"}},
			setup: func(m *mocks.AccountService) {
				m.On("ResendActivation", mock.Anything, "guitarist@example.com").Return(service.ErrMailFailed)
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"email_error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h.accounts)

			rec := h.post(t, tt.path, tt.form)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantField != nil {
				assert.Equal(t, *tt.wantField, fieldError(t, rec))
				return
			}
			if strings.HasPrefix(tt.wantBody, "{") {
				body := decode[errorBody](t, rec)
				assert.JSONEq(t, tt.wantBody, `{"error":`+string(body.Error)+`}`)
				return
			}
			assert.Equal(t, tt.wantBody, strings.TrimSpace(rec.Body.String()))
		})
	}
}

func multipartRequest(t *testing.T, path string, fields map[string]string, file, name string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != "" {
		part, err := w.CreateFormFile(file, name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUser_UpdateUserWithAvatar(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	cookie := h.login(t, contract.Caller{UserID: 7, Username: "guitarist"})

	var uploaded []byte
	h.accounts.On("UpdateProfile", mock.Anything, int64(7), mock.AnythingOfType("service.ProfileRequest")).
		Run(func(args mock.Arguments) {
			req := args.Get(2).(service.ProfileRequest)
			require.NotNil(t, req.Avatar)
			assert.Equal(t, "me.png", req.Avatar.Name)
			assert.Equal(t, "Sofia", req.Location)
			uploaded, _ = io.ReadAll(req.Avatar.Content)
		}).
		Return(&domain.User{ID: 7}, nil)

	req := multipartRequest(t, "/api/user/updateUser",
		map[string]string{"location": "Sofia"}, "avatar", "me.png", []byte("avatar-bytes"))
	rec := h.serve(req, cookie)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, []byte("avatar-bytes"), uploaded)
}

func TestUser_UpdateUserRejectsAvatarExtension(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	cookie := h.login(t, contract.Caller{UserID: 7, Username: "guitarist"})

	req := multipartRequest(t, "/api/user/updateUser", nil, "avatar", "me.exe", []byte("MZ"))
	rec := h.serve(req, cookie)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, shared.FieldError{Field: "avatar", ErrorCode: "invalid_file_extension"}, fieldError(t, rec))
}

func TestUser_Search(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	cookie := h.login(t, contract.Caller{UserID: 7, Username: "guitarist"})
	h.accounts.On("Search", mock.Anything, "gui", 20, 40).Return([]domain.User(nil), 0, nil)

	rec := h.get(t, "/api/user/search?keyword=gui&limit=20&offset=40", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[],"total":0}`, rec.Body.String())
}

func TestFavourites(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	cookie := h.login(t, contract.Caller{UserID: 7, Username: "guitarist"})
	h.favourites.On("Add", mock.Anything, int64(7), int64(42)).Return(false, nil)
	h.favourites.On("Exists", mock.Anything, int64(7), int64(42)).Return(true, nil)
	h.favourites.On("Delete", mock.Anything, int64(7), int64(42)).Return(nil)
	h.favourites.On("List", mock.Anything, int64(3), 10, 0).
		Return([]domain.Tab{{ID: 42, Band: "Metallica", Song: "One"}}, 1, nil)

	rec := h.post(t, "/api/userFavourite/addFavouriteTab", url.Values{"tab_id": {"42"}}, cookie)
	assert.Equal(t, "false", strings.TrimSpace(rec.Body.String()))

	rec = h.post(t, "/api/userFavourite/isFavouriteTab", url.Values{"tab_id": {"42"}}, cookie)
	assert.Equal(t, "true", strings.TrimSpace(rec.Body.String()))

	rec = h.post(t, "/api/userFavourite/deleteFavouriteTab", url.Values{"tab_id": {"42"}}, cookie)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = h.get(t, "/api/userFavourite/getUserFavourites?user_id=3&limit=10&offset=0", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Results []domain.Tab `json:"results"`
		Total   int          `json:"total"`
	}](t, rec)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "One", list.Results[0].Song)

	rec = h.post(t, "/api/userFavourite/addFavouriteTab", url.Values{"tab_id": {"42"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestComments_Add(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	cookie := h.login(t, contract.Caller{UserID: 7, Username: "guitarist"})
	author := &domain.User{ID: 7, Username: "guitarist"}
	h.accounts.On("GetUser", mock.Anything, int64(7)).Return(author, nil)
	h.comments.On("Add", mock.Anything, author, int64(3), "Nice solo").
		Return(&domain.UserComment{ID: 1}, nil)

	rec := h.post(t, "/api/userComment/addUserComment",
		url.Values{"user_id": {"3"}, "content": {"Nice solo"}}, cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = h.post(t, "/api/userComment/addUserComment",
		url.Values{"user_id": {"3"}, "content": {strings.Repeat("a", 501)}}, cookie)
	assert.Equal(t, shared.FieldError{Field: "content", ErrorCode: "exceeds_characters_500"}, fieldError(t, rec))
}

func TestBackingTrack(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.tracks.On("Search", mock.Anything, "", "one").
		Return([]domain.BackingTrack{{Band: "Metallica", Song: "One"}}, nil)
	h.tracks.On("MP3", mock.Anything, "https://tracks.example/one").
		Return("", store.ErrBackingTrackNotFound)

	rec := h.get(t, "/api/backingTrack/search")
	assert.Equal(t, shared.FieldError{Field: "band", ErrorCode: "at_least_one_field_required"}, fieldError(t, rec))

	rec = h.get(t, "/api/backingTrack/search?song=one")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Metallica")

	rec = h.get(t, "/api/backingTrack/getMP3?link="+url.QueryEscape("https://tracks.example/one"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, errorCode(t, rec))
}

func TestMisc_ContactUs(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	rec := h.get(t, "/api/misc/generateCaptcha")
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)

	h.mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

	rec = h.post(t, "/api/misc/contactUs", url.Values{
		"username": {"guitarist"},
		"email":    {"guitarist@example.com"},
		"message":  {"Hello"},
		"captcha":  {captchaAnswer},
	}, cookie)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, CodeEmailError, errorCode(t, rec))
	h.mailer.AssertExpectations(t)
}

func TestMisc_ErrorCodes(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	rec := h.get(t, "/api/misc/getErrorCodes")

	require.Equal(t, http.StatusOK, rec.Code)
	codes := decode[map[string]string](t, rec)
	assert.Equal(t, "invalid_login", codes["INVALID_LOGIN"])
	assert.Equal(t, "below_characters_", codes["BELOW_CHARACTERS_"])
	assert.Equal(t, "_in_use", codes["_IN_USE"])
	assert.Equal(t, "too_many_requests", codes["TOO_MANY_REQUESTS"])
}

func TestCDN_File(t *testing.T) {
	t.Parallel()

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

	h := newHarness(t)
	h.files.Put(storage.AreaAvatars, "avatar-7.png", png)

	rec := h.get(t, "/api/cdn/file?type=avatars&file=avatar-7.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "avatar-7.png")
	assert.Equal(t, png, rec.Body.Bytes())

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
	}{
		{name: "missing file", query: "type=avatars&file=avatar-8.png", wantStatus: http.StatusNotFound, wantCode: CodeNotFound},
		{name: "path traversal", query: "type=avatars&file=" + url.QueryEscape("../config.yaml"),
			wantStatus: http.StatusNotFound, wantCode: CodeNotFound},
		{name: "unknown area", query: "type=tabs&file=a.txt", wantStatus: http.StatusBadRequest, wantCode: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.get(t, "/api/cdn/file?"+tt.query)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, rec))
			} else {
				assert.Equal(t, shared.FieldError{Field: "type", ErrorCode: "not_in_list"}, fieldError(t, rec))
			}
		})
	}
}

func TestArticle_AddRequiresAdmin(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	form := url.Values{"title": {"News"}, "content": {"Body"}, "date": {"2026-03-01 10:00:00"}}

	member := h.login(t, contract.Caller{UserID: 7, Username: "guitarist", Role: domain.RoleUser})
	rec := h.post(t, "/api/article/addArticle", form, member)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := h.login(t, contract.Caller{UserID: 1, Username: "admin", Role: contract.RoleAdmin})
	h.articles.On("Create", mock.Anything, int64(1), service.ArticleInput{
		Title:   "News",
		Content: "Body",
		Date:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}).Return(&domain.Article{ID: 5, Title: "News"}, nil)

	rec = h.post(t, "/api/article/addArticle", form, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(5), decode[domain.Article](t, rec).ID)
}

func TestArticle_Reads(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	h.articles.On("ListByDate", mock.Anything, day, 5, 0).Return([]domain.Article{{ID: 2}}, nil)
	h.articles.On("View", mock.Anything, int64(2)).Return(&domain.Article{ID: 2, Views: 8}, nil)
	h.articles.On("List", mock.Anything, 5, 10).Return([]domain.Article{{ID: 2}}, 11, nil)

	rec := h.get(t, "/api/article/getArticlesByDate?date=2026-03-01&limit=5&offset=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Article](t, rec), 1)

	rec = h.get(t, "/api/article/getArticle?id=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8, decode[domain.Article](t, rec).Views)

	rec = h.get(t, "/api/article/getArticles?limit=5&offset=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":11`)

	rec = h.get(t, "/api/article/getArticlesByDate?date=01.03.2026&limit=5&offset=0")
	assert.Equal(t, shared.FieldError{Field: "date", ErrorCode: "invalid_date"}, fieldError(t, rec))
}

func TestTab_Endpoints(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	cookie := h.login(t, contract.Caller{UserID: 7, Username: "guitarist"})
	h.tabs.On("Most", mock.Anything, domain.RankingLiked, 5).Return([]domain.RankedTab{{ID: 1, Score: 4.5}}, nil)
	h.tabs.On("Autocomplete", mock.Anything, "song", "on", "Metallica").
		Return([]domain.Suggestion{{ID: "One", Label: "One", Value: "One"}}, nil)
	h.tabs.On("Search", mock.Anything, domain.TabSearch{Type: "gp", Band: "metal", Limit: 20, Offset: 0}).
		Return([]domain.Tab{{ID: 1}}, 1, nil)
	h.tabs.On("View", mock.Anything, int64(1)).Return(&domain.Tab{ID: 1, Views: 3}, nil)
	h.tabs.On("Rate", mock.Anything, int64(1), int64(7), 4).Return(4.5, nil)

	rec := h.get(t, "/api/tab/getMost?type=liked&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"score":4.5`)

	rec = h.get(t, "/api/tab/autocomplete?type=song&term=on&band=Metallica")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"label":"One"`)

	rec = h.get(t, "/api/tab/search?type=gp&band=metal&limit=20&offset=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = h.get(t, "/api/tab/getTab?id=1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.post(t, "/api/tab/rateTab", url.Values{"tab_id": {"1"}, "rating": {"4"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rating":4.5}`, rec.Body.String())

	rec = h.post(t, "/api/tab/rateTab", url.Values{"tab_id": {"1"}, "rating": {"9"}}, cookie)
	assert.Equal(t, shared.FieldError{Field: "rating", ErrorCode: "not_in_list"}, fieldError(t, rec))

	h.tabs.AssertExpectations(t)
}

func TestServer_RecordsMetrics(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.accounts.On("Login", mock.Anything, "guitarist", "wrong1").Return(nil, service.ErrInvalidLogin)

	h.post(t, "/api/user/login", url.Values{"username": {"guitarist"}, "password": {"wrong1"}})
	h.get(t, "/api/user/fly")

	h.recorder.mu.Lock()
	defer h.recorder.mu.Unlock()
	assert.Equal(t, []observation{
		{controller: "user", endpoint: "login", status: http.StatusBadRequest},
		{controller: "user", endpoint: unknownEndpoint, status: http.StatusNotFound},
	}, h.recorder.observed)
	assert.Equal(t, []string{"user:handler_error", "user:unknown_endpoint"}, h.recorder.rejected)
}

func TestNewServer_RejectsDuplicateControllers(t *testing.T) {
	t.Parallel()

	table := contract.MustTable(contract.Endpoint("ping", contract.Public))
	handler := func(context.Context, *contract.Call) (any, error) { return true, nil }
	d, err := contract.NewDispatcher("misc", table, map[string]contract.Handler{"ping": handler},
		contract.NewEvaluator(nil))
	require.NoError(t, err)

	_, err = NewServer(session.NewManager(session.NewMemoryStore(), sessionConfig, nil), nil, nil, d, d)
	assert.Error(t, err)

	_, err = NewServer(nil, nil, nil, d)
	assert.Error(t, err)
}
