package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/mail"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/redact"
	"github.com/gryp17/Tablaturi-bg-API/internal/service/auth"
	"github.com/gryp17/Tablaturi-bg-API/internal/storage"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

// Upload is a file received with a request.
type Upload struct {
	Name    string
	Content io.Reader
}

// Extension returns the lower-cased extension of the uploaded file name.
func (u *Upload) Extension() string {
	i := strings.LastIndexByte(u.Name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(u.Name[i+1:])
}

// SignupRequest carries a validated signup form.
type SignupRequest struct {
	Username string
	Email    string
	Password string
	Birthday time.Time
	Gender   domain.Gender
}

// ProfileRequest carries a validated profile form. Empty Password keeps the
// current password; nil Avatar keeps the current photo.
type ProfileRequest struct {
	Password       string
	Location       string
	Occupation     string
	Web            string
	AboutMe        string
	Instrument     string
	FavouriteBands string
	Avatar         *Upload
}

// AccountService manages member accounts: login, signup and activation,
// password resets and profiles.
type AccountService interface {
	// Login returns the member for a valid username and password pair.
	Login(ctx context.Context, username, password string) (*domain.User, error)

	// Signup creates an inactive account and e-mails its activation link.
	// The account is kept when only the e-mail fails (ErrMailFailed).
	Signup(ctx context.Context, req SignupRequest) (*domain.User, error)

	// Activate activates userID when token is its activation token.
	Activate(ctx context.Context, userID int64, token string) error

	// ResendActivation e-mails a fresh activation link.
	ResendActivation(ctx context.Context, email string) error

	// ForgottenPassword e-mails a single-use password reset link.
	ForgottenPassword(ctx context.Context, email string) error

	// ResetPassword sets a new password when token is a valid reset token.
	ResetPassword(ctx context.Context, userID int64, token, password string) error

	GetUser(ctx context.Context, id int64) (*domain.User, error)

	// UpdateProfile stores the profile form and returns the updated member.
	UpdateProfile(ctx context.Context, userID int64, req ProfileRequest) (*domain.User, error)

	Search(ctx context.Context, keyword string, limit, offset int) ([]domain.User, int, error)

	// TouchActivity records that userID is active now.
	TouchActivity(ctx context.Context, userID int64) error
}

// AccountServiceImpl implements AccountService.
type AccountServiceImpl struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	tokens auth.TokenService
	mailer mail.Mailer
	files  storage.FileStore
	// siteURL prefixes the links sent by e-mail.
	siteURL       string
	activationTTL time.Duration
	logger        *slog.Logger
}

// NewAccountService creates an AccountService. siteURL is the public site
// address; activationTTL is only quoted in the activation e-mail.
func NewAccountService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	tokens auth.TokenService,
	mailer mail.Mailer,
	files storage.FileStore,
	siteURL string,
	activationTTL time.Duration,
	logger *slog.Logger,
) (*AccountServiceImpl, error) {
	if users == nil {
		return nil, fmt.Errorf("users cannot be nil")
	}
	if hasher == nil {
		return nil, fmt.Errorf("hasher cannot be nil")
	}
	if tokens == nil {
		return nil, fmt.Errorf("tokens cannot be nil")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer cannot be nil")
	}
	if files == nil {
		return nil, fmt.Errorf("files cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AccountServiceImpl{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		mailer:        mailer,
		files:         files,
		siteURL:       strings.TrimRight(siteURL, "/"),
		activationTTL: activationTTL,
		logger:        logger.With(slog.String("component", "account_service")),
	}, nil
}

// Login checks the credentials against the stored bcrypt hash.
func (s *AccountServiceImpl) Login(ctx context.Context, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown username")
			return nil, ErrInvalidLogin
		}
		return nil, fmt.Errorf("failed to load user for login: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			log.Debug("login with wrong password", slog.Int64("user_id", user.ID))
			return nil, ErrInvalidLogin
		}
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}

	if !user.Activated {
		log.Debug("login to inactive account", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidLogin
	}

	if err := s.users.TouchActivity(ctx, user.ID); err != nil {
		log.Warn("failed to record login activity",
			slog.Int64("user_id", user.ID),
			slog.String("error", redact.Error(err)))
	}

	return user, nil
}

// Signup hashes the password, stores the account and sends the activation
// e-mail.
func (s *AccountServiceImpl) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUser(req.Username, req.Email, hash, req.Birthday, req.Gender)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("signup raced with another account", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	log.Info("user signed up", slog.Int64("user_id", user.ID))

	if err := s.sendActivation(ctx, user); err != nil {
		return user, err
	}
	return user, nil
}

// Activate validates the activation token.
func (s *AccountServiceImpl) Activate(ctx context.Context, userID int64, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.validToken(ctx, auth.PurposeActivation, userID, token); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to load user for activation: %w", err)
	}
	if user.Activated {
		return ErrAlreadyActivated
	}

	if err := s.users.Activate(ctx, userID); err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}

	log.Info("user activated", slog.Int64("user_id", userID))
	return nil
}

// ResendActivation re-sends the activation e-mail of an inactive account.
func (s *AccountServiceImpl) ResendActivation(ctx context.Context, email string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Activated {
		return ErrAlreadyActivated
	}
	return s.sendActivation(ctx, user)
}

// ForgottenPassword issues a reset token bound to the current password hash.
func (s *AccountServiceImpl) ForgottenPassword(ctx context.Context, email string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.tokens.Issue(ctx, auth.PurposeReset, user.ID, auth.Fingerprint(user.PasswordHash))
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password/%d/%s", s.siteURL, user.ID, token)
	if err := s.mailer.Send(ctx, mail.ResetMessage(user.Username, user.Email, link)); err != nil {
		log.Error("failed to send password reset e-mail",
			slog.Int64("user_id", user.ID),
			slog.String("error", redact.Error(err)))
		return fmt.Errorf("%w: %v", ErrMailFailed, err)
	}

	log.Info("password reset requested", slog.Int64("user_id", user.ID))
	return nil
}

// ResetPassword changes the password. The token fingerprint must match the
// stored hash, so a used link stops working.
func (s *AccountServiceImpl) ResetPassword(ctx context.Context, userID int64, token, password string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	claims, err := s.validToken(ctx, auth.PurposeReset, userID, token)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to load user for password reset: %w", err)
	}
	if claims.Fingerprint != auth.Fingerprint(user.PasswordHash) {
		log.Debug("reset token already used", slog.Int64("user_id", userID))
		return ErrInvalidToken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	log.Info("password reset", slog.Int64("user_id", userID))
	return nil
}

// GetUser returns a member profile.
func (s *AccountServiceImpl) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// UpdateProfile saves the new avatar as avatar-{id}.{ext}, removes the
// previous custom avatar and updates the profile row.
func (s *AccountServiceImpl) UpdateProfile(
	ctx context.Context,
	userID int64,
	req ProfileRequest,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for update: %w", err)
	}

	update := domain.ProfileUpdate{
		Location:       req.Location,
		Occupation:     req.Occupation,
		Web:            req.Web,
		AboutMe:        req.AboutMe,
		Instrument:     req.Instrument,
		FavouriteBands: req.FavouriteBands,
	}

	if req.Password != "" {
		if update.PasswordHash, err = s.hasher.Hash(req.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	if req.Avatar != nil {
		name := fmt.Sprintf("avatar-%d.%s", userID, req.Avatar.Extension())
		if err := s.files.Save(ctx, storage.AreaAvatars, name, req.Avatar.Content); err != nil {
			return nil, fmt.Errorf("failed to save avatar: %w", err)
		}
		if !user.HasDefaultAvatar() && user.Photo != name {
			if err := s.files.Remove(ctx, storage.AreaAvatars, user.Photo); err != nil {
				log.Warn("failed to remove previous avatar",
					slog.String("photo", user.Photo),
					slog.String("error", redact.Error(err)))
			}
		}
		update.Photo = name
	}

	if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	log.Info("profile updated", slog.Int64("user_id", userID))

	updated, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	return updated, nil
}

// Search lists active members whose username contains keyword.
func (s *AccountServiceImpl) Search(ctx context.Context, keyword string, limit, offset int) ([]domain.User, int, error) {
	users, total, err := s.users.Search(ctx, keyword, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	return users, total, nil
}

// TouchActivity updates the last active date.
func (s *AccountServiceImpl) TouchActivity(ctx context.Context, userID int64) error {
	if err := s.users.TouchActivity(ctx, userID); err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return nil
}

func (s *AccountServiceImpl) userByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, fmt.Errorf("failed to load user by email: %w", err)
	}
	return user, nil
}

func (s *AccountServiceImpl) sendActivation(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	token, err := s.tokens.Issue(ctx, auth.PurposeActivation, user.ID, "")
	if err != nil {
		return fmt.Errorf("failed to issue activation token: %w", err)
	}

	link := fmt.Sprintf("%s/activate/%d/%s", s.siteURL, user.ID, token)
	msg := mail.ActivationMessage(user.Username, user.Email, link, validity(s.activationTTL))
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Error("failed to send activation e-mail",
			slog.Int64("user_id", user.ID),
			slog.String("error", redact.Error(err)))
		return fmt.Errorf("%w: %v", ErrMailFailed, err)
	}
	return nil
}

// validToken maps every token failure to ErrInvalidToken.
func (s *AccountServiceImpl) validToken(
	ctx context.Context,
	purpose auth.Purpose,
	userID int64,
	token string,
) (*auth.Claims, error) {
	claims, err := s.tokens.Validate(ctx, purpose, token)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("rejected account token",
			slog.String("purpose", string(purpose)),
			slog.String("error", err.Error()))
		return nil, ErrInvalidToken
	}
	if claims.UserID != userID {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// validity renders ttl for e-mails, in days when it is a whole number of days.
func validity(ttl time.Duration) string {
	const day = 24 * time.Hour
	switch {
	case ttl >= day && ttl%day == 0:
		if ttl == day {
			return "1 day"
		}
		return fmt.Sprintf("%d days", ttl/day)
	case ttl >= time.Hour && ttl%time.Hour == 0:
		if ttl == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", ttl/time.Hour)
	default:
		return ttl.String()
	}
}
