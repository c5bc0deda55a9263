package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/redact"
	"github.com/gryp17/Tablaturi-bg-API/internal/service"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

const dateLayout = "2006-01-02"

// LoginStatus answers user/isLoggedIn.
type LoginStatus struct {
	LoggedIn bool         `json:"logged_in"`
	User     *domain.User `json:"user,omitempty"`
}

var userTable = contract.MustTable(
	contract.Endpoint("login", contract.Public,
		contract.F("username", "required"),
		contract.F("password", "required"),
		contract.F("remember_me", "in[1,0,]"),
	),
	contract.Endpoint("logout", contract.Public),
	contract.Endpoint("isLoggedIn", contract.Public),
	contract.Endpoint("signup", contract.Public,
		contract.F("username", "min-6", "max-20", "valid-characters", "unique[username]"),
		contract.F("email", "valid-email", "unique[email]"),
		contract.F("password", "min-6", "max-20", "strong-password"),
		contract.F("repeat_password", "matches[password]"),
		contract.F("birthday", "date"),
		contract.F("gender", "in[M,F]"),
		contract.F("captcha", "matches-captcha"),
	),
	contract.Endpoint("activate", contract.Public,
		contract.F("user_id", "required", "int"),
		contract.F("hash", "required"),
	),
	contract.Endpoint("resendUserActivation", contract.Public,
		contract.F("email", "required", "valid-email"),
	),
	contract.Endpoint("forgottenPassword", contract.Public,
		contract.F("email", "required", "valid-email"),
		contract.F("captcha", "matches-captcha"),
	),
	contract.Endpoint("updatePassword", contract.Public,
		contract.F("user_id", "required", "int"),
		contract.F("hash", "required"),
		contract.F("password", "min-6", "max-20", "strong-password"),
		contract.F("repeat_password", "matches[password]"),
	),
	contract.Endpoint("getUser", contract.User,
		contract.F("id", "required", "int"),
	),
	contract.Endpoint("updateUser", contract.User,
		contract.F("avatar", "optional", "valid-file-extensions[png,jpg,jpeg]", "max-file-size-1000"),
		contract.F("password", "optional", "min-6", "max-20", "strong-password"),
		contract.F("repeat_password", "matches[password]"),
		contract.F("location", "optional", "max-100"),
		contract.F("occupation", "optional", "max-200"),
		contract.F("web", "optional", "max-200"),
		contract.F("about_me", "optional", "max-500"),
		contract.F("instrument", "optional", "max-500"),
		contract.F("favourite_bands", "optional", "max-500"),
	),
	contract.Endpoint("search", contract.User,
		contract.F("keyword", "required", "min-3", "max-50"),
		contract.F("limit", "int"),
		contract.F("offset", "int"),
	),
)

// UserHandler serves the user controller: sessions, accounts and profiles.
type UserHandler struct {
	accounts service.AccountService
	logger   *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(accounts service.AccountService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}
	return &UserHandler{
		accounts: accounts,
		logger:   logger.With(slog.String("component", "user_handler")),
	}
}

func (h *UserHandler) name() string          { return "user" }
func (h *UserHandler) table() *contract.Table { return userTable }

func (h *UserHandler) handlers() map[string]contract.Handler {
	return map[string]contract.Handler{
		"login":                h.Login,
		"logout":               h.Logout,
		"isLoggedIn":           h.IsLoggedIn,
		"signup":               h.Signup,
		"activate":             h.Activate,
		"resendUserActivation": h.ResendActivation,
		"forgottenPassword":    h.ForgottenPassword,
		"updatePassword":       h.UpdatePassword,
		"getUser":              h.GetUser,
		"updateUser":           h.UpdateUser,
		"search":               h.Search,
	}
}

// Login starts a session for valid credentials and returns the member.
func (h *UserHandler) Login(ctx context.Context, call *contract.Call) (any, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	user, err := h.accounts.Login(ctx, call.Params.Get("username"), call.Params.Get("password"))
	if err != nil {
		return nil, err
	}

	sess.Login(contract.Caller{UserID: user.ID, Username: user.Username, Role: user.Role},
		call.Params.Bool("remember_me"))

	logger.FromContextOrDefault(ctx, h.logger).Info("user logged in", slog.Int64("user_id", user.ID))
	return user, nil
}

// Logout ends the session.
func (h *UserHandler) Logout(ctx context.Context, _ *contract.Call) (any, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	sess.Logout()
	return true, nil
}

// IsLoggedIn reports the session member and records their activity.
func (h *UserHandler) IsLoggedIn(ctx context.Context, call *contract.Call) (any, error) {
	if call.Caller == nil {
		return LoginStatus{LoggedIn: false}, nil
	}
	log := logger.FromContextOrDefault(ctx, h.logger)

	user, err := h.accounts.GetUser(ctx, call.Caller.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		log.Warn("session refers to a deleted user", slog.Int64("user_id", call.Caller.UserID))
		if sess, sessErr := currentSession(ctx); sessErr == nil {
			sess.Logout()
		}
		return LoginStatus{LoggedIn: false}, nil
	}

	if err := h.accounts.TouchActivity(ctx, user.ID); err != nil {
		log.Warn("failed to record activity",
			slog.Int64("user_id", user.ID),
			slog.String("error", redact.Error(err)))
	}
	return LoginStatus{LoggedIn: true, User: user}, nil
}

// Signup creates an account and sends its activation e-mail.
func (h *UserHandler) Signup(ctx context.Context, call *contract.Call) (any, error) {
	if err := clearCaptcha(ctx); err != nil {
		return nil, err
	}
	p := call.Params

	birthday, err := time.Parse(dateLayout, p.Get("birthday"))
	if err != nil {
		return nil, &contract.ValidationError{Field: "birthday", Code: contract.CodeInvalidDate}
	}

	if _, err := h.accounts.Signup(ctx, service.SignupRequest{
		Username: p.Get("username"),
		Email:    p.Get("email"),
		Password: p.Get("password"),
		Birthday: birthday,
		Gender:   domain.Gender(p.Get("gender")),
	}); err != nil {
		return nil, err
	}
	return success, nil
}

// Activate activates an account from its e-mailed link.
func (h *UserHandler) Activate(ctx context.Context, call *contract.Call) (any, error) {
	if err := h.accounts.Activate(ctx, call.Params.Int("user_id", 0), call.Params.Get("hash")); err != nil {
		return nil, err
	}
	return true, nil
}

// ResendActivation e-mails a fresh activation link.
func (h *UserHandler) ResendActivation(ctx context.Context, call *contract.Call) (any, error) {
	if err := h.accounts.ResendActivation(ctx, call.Params.Get("email")); err != nil {
		return nil, err
	}
	return success, nil
}

// ForgottenPassword e-mails a password reset link.
func (h *UserHandler) ForgottenPassword(ctx context.Context, call *contract.Call) (any, error) {
	if err := clearCaptcha(ctx); err != nil {
		return nil, err
	}
	if err := h.accounts.ForgottenPassword(ctx, call.Params.Get("email")); err != nil {
		return nil, err
	}
	return success, nil
}

// UpdatePassword sets a new password from a reset link.
func (h *UserHandler) UpdatePassword(ctx context.Context, call *contract.Call) (any, error) {
	p := call.Params
	if err := h.accounts.ResetPassword(ctx, p.Int("user_id", 0), p.Get("hash"), p.Get("password")); err != nil {
		return nil, err
	}
	return true, nil
}

// GetUser returns a member profile.
func (h *UserHandler) GetUser(ctx context.Context, call *contract.Call) (any, error) {
	return h.accounts.GetUser(ctx, call.Params.Int("id", 0))
}

// UpdateUser stores the profile form of the session member.
func (h *UserHandler) UpdateUser(ctx context.Context, call *contract.Call) (any, error) {
	p := call.Params

	avatar, closeAvatar, err := openUpload(p, "avatar")
	if err != nil {
		return nil, err
	}
	defer closeAvatar()

	if _, err := h.accounts.UpdateProfile(ctx, call.Caller.UserID, service.ProfileRequest{
		Password:       p.Get("password"),
		Location:       p.Get("location"),
		Occupation:     p.Get("occupation"),
		Web:            p.Get("web"),
		AboutMe:        p.Get("about_me"),
		Instrument:     p.Get("instrument"),
		FavouriteBands: p.Get("favourite_bands"),
		Avatar:         avatar,
	}); err != nil {
		return nil, fmt.Errorf("update profile of user %d: %w", call.Caller.UserID, err)
	}
	return success, nil
}

// Search lists members by username.
func (h *UserHandler) Search(ctx context.Context, call *contract.Call) (any, error) {
	limit, offset := page(call.Params)
	users, total, err := h.accounts.Search(ctx, call.Params.Get("keyword"), limit, offset)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return ListResponse{Results: users, Total: total}, nil
}

// clearCaptcha consumes the challenge answered by the request.
func clearCaptcha(ctx context.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	sess.ClearCaptcha()
	return nil
}
