package contract

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFunc func(ctx context.Context) (*Caller, error)

func (f sessionFunc) CurrentCaller(ctx context.Context) (*Caller, error) { return f(ctx) }

func anonymous() SessionSource {
	return sessionFunc(func(context.Context) (*Caller, error) { return nil, nil })
}

func loggedIn(c *Caller) SessionSource {
	return sessionFunc(func(context.Context) (*Caller, error) { return c, nil })
}

func userTable() *Table {
	return MustTable(
		Endpoint("signup", Public,
			F("username", "required", "min-6", "max-20", "valid-characters", "unique[username]"),
			F("email", "required", "valid-email", "unique[email]"),
			F("password", "required", "min-6", "strong-password"),
			F("repeatPassword", "required", "matches[password]"),
		),
		Endpoint("updateUser", User,
			F("motto", "optional", "max-100"),
		),
		Endpoint("addArticle", Admin,
			F("title", "required", "max-100"),
		),
	)
}

type recorder struct {
	calls []*Call
}

func (r *recorder) handler(result any) Handler {
	return func(_ context.Context, call *Call) (any, error) {
		r.calls = append(r.calls, call)
		return result, nil
	}
}

func newUserDispatcher(t *testing.T, rec *recorder, opts ...Option) *Dispatcher {
	t.Helper()
	unique := uniqueFunc(func(context.Context, string, string) (bool, error) { return true, nil })
	d, err := NewDispatcher("user", userTable(), map[string]Handler{
		"signup":     rec.handler("created"),
		"updateUser": rec.handler("updated"),
		"addArticle": rec.handler("added"),
	}, NewEvaluator(unique), opts...)
	require.NoError(t, err)
	return d
}

func TestDispatch(t *testing.T) {
	member := &Caller{UserID: 7, Username: "ivan", Role: "user"}

	tests := []struct {
		name        string
		query       url.Values
		body        url.Values
		session     SessionSource
		expectErr   error
		expectCode  string
		expectField string
		expected    any
	}{
		{
			name:      "missing route",
			body:      url.Values{"username": {"ivan"}},
			session:   anonymous(),
			expectErr: ErrInvalidRequest,
		},
		{
			name:      "unknown endpoint",
			query:     url.Values{"url": {"user/nope"}},
			session:   anonymous(),
			expectErr: ErrNotFound,
		},
		{
			name:  "signup reports the first failing field",
			query: url.Values{"url": {"user/signup"}},
			body: url.Values{
				"username":       {"ab"},
				"email":          {"bad"},
				"password":       {"x"},
				"repeatPassword": {"y"},
			},
			session:     anonymous(),
			expectCode:  "below_characters_6",
			expectField: "username",
		},
		{
			name:  "signup passwords differ",
			query: url.Values{"url": {"user/signup"}},
			body: url.Values{
				"username":       {"ivan_petrov"},
				"email":          {"ivan@example.com"},
				"password":       {"abc123"},
				"repeatPassword": {"abc124"},
			},
			session:     anonymous(),
			expectCode:  "no_match",
			expectField: "repeatPassword",
		},
		{
			name:  "signup succeeds",
			query: url.Values{"url": {"user/signup"}},
			body: url.Values{
				"username":       {" ivan_petrov "},
				"email":          {"ivan@example.com"},
				"password":       {"abc123"},
				"repeatPassword": {"abc123"},
			},
			session:  anonymous(),
			expected: "created",
		},
		{
			name:      "user endpoint anonymous",
			body:      url.Values{"url": {"user/updateUser"}},
			session:   anonymous(),
			expectErr: ErrAccessDenied,
		},
		{
			name:     "user endpoint member",
			body:     url.Values{"url": {"user/updateUser"}},
			session:  loggedIn(member),
			expected: "updated",
		},
		{
			name:      "admin endpoint member",
			body:      url.Values{"url": {"user/addArticle"}, "title": {"news"}},
			session:   loggedIn(member),
			expectErr: ErrAccessDenied,
		},
		{
			name:     "admin endpoint admin",
			body:     url.Values{"url": {"user/addArticle"}, "title": {"news"}},
			session:  loggedIn(&Caller{UserID: 1, Role: RoleAdmin}),
			expected: "added",
		},
		{
			name:      "no session source is anonymous",
			query:     url.Values{"url": {"user/updateUser"}},
			session:   nil,
			expectErr: ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			d := newUserDispatcher(t, rec)

			result, err := d.Dispatch(context.Background(), &Request{
				Query:   tt.query,
				Body:    tt.body,
				Session: tt.session,
			})

			switch {
			case tt.expectErr != nil:
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Empty(t, rec.calls, "handler must not run")
			case tt.expectCode != "":
				verr, ok := AsValidationError(err)
				require.True(t, ok, "expected validation error, got %v", err)
				assert.Equal(t, tt.expectField, verr.Field)
				assert.Equal(t, tt.expectCode, verr.ErrorCode())
				assert.Empty(t, rec.calls, "handler must not run")
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
				require.Len(t, rec.calls, 1)
			}
		})
	}
}

func TestDispatch_PassesCallToHandler(t *testing.T) {
	rec := &recorder{}
	d := newUserDispatcher(t, rec)
	member := &Caller{UserID: 7, Username: "ivan", Role: "user"}

	_, err := d.Dispatch(context.Background(), &Request{
		Body:    url.Values{"url": {"user/updateUser"}, "motto": {" carpe diem "}},
		Session: loggedIn(member),
	})
	require.NoError(t, err)
	require.Len(t, rec.calls, 1)

	call := rec.calls[0]
	assert.Equal(t, "updateUser", call.Endpoint)
	assert.Equal(t, "carpe diem", call.Params.Get("motto"))
	assert.Same(t, member, call.Caller)
}

func TestDispatch_Order(t *testing.T) {
	// Anonymous caller, admin endpoint, invalid field: the order decides
	// which failure is reported.
	req := &Request{
		Body:    url.Values{"url": {"user/addArticle"}, "title": {""}},
		Session: anonymous(),
	}

	t.Run("validate first", func(t *testing.T) {
		d := newUserDispatcher(t, &recorder{})
		_, err := d.Dispatch(context.Background(), req)
		verr, ok := AsValidationError(err)
		require.True(t, ok, "expected validation error, got %v", err)
		assert.Equal(t, CodeEmptyField, verr.Code)
	})

	t.Run("authorize first", func(t *testing.T) {
		d := newUserDispatcher(t, &recorder{}, AuthorizeFirst())
		_, err := d.Dispatch(context.Background(), req)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestDispatch_SessionFailure(t *testing.T) {
	boom := errors.New("session store unavailable")
	d := newUserDispatcher(t, &recorder{})

	_, err := d.Dispatch(context.Background(), &Request{
		Body: url.Values{"url": {"user/updateUser"}},
		Session: sessionFunc(func(context.Context) (*Caller, error) {
			return nil, boom
		}),
	})

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrAccessDenied)
}

func TestDispatch_Idempotent(t *testing.T) {
	d := newUserDispatcher(t, &recorder{})
	req := &Request{
		Query: url.Values{"url": {"user/signup"}},
		Body:  url.Values{"username": {"ab"}},
	}

	_, first := d.Dispatch(context.Background(), req)
	_, second := d.Dispatch(context.Background(), req)
	assert.Equal(t, first, second)
}

func TestNewDispatcher_Mismatch(t *testing.T) {
	table := MustTable(Endpoint("a", Public), Endpoint("b", Public))
	noop := func(context.Context, *Call) (any, error) { return nil, nil }
	eval := NewEvaluator(nil)

	_, err := NewDispatcher("x", table, map[string]Handler{"a": noop}, eval)
	assert.Error(t, err, "missing handler")

	_, err = NewDispatcher("x", table, map[string]Handler{"a": noop, "b": noop, "c": noop}, eval)
	assert.Error(t, err, "handler without contract")

	_, err = NewDispatcher("x", nil, nil, eval)
	assert.Error(t, err)

	d, err := NewDispatcher("x", table, map[string]Handler{"a": noop, "b": noop}, eval)
	require.NoError(t, err)
	assert.Equal(t, "x", d.Name())
}
