package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gryp17/Tablaturi-bg-API/internal/config"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
)

// hmacTokenService is an implementation of TokenService using HMAC-SHA signing.
type hmacTokenService struct {
	signingKey []byte
	lifetimes  map[Purpose]time.Duration
	timeFunc   func() time.Time // Injectable for testing
	clockSkew  time.Duration
}

// tokenClaims defines the structure of JWT claims we use
type tokenClaims struct {
	Purpose     Purpose `json:"pur"`
	Fingerprint string  `json:"fp,omitempty"`
	jwt.RegisteredClaims
}

// Ensure hmacTokenService implements TokenService interface
var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a new token service using HMAC-SHA signing.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	return newTokenService(cfg, time.Now)
}

func newTokenService(cfg config.AuthConfig, timeFunc func() time.Time) (*hmacTokenService, error) {
	if len(cfg.TokenSecret) < 32 {
		return nil, fmt.Errorf("token secret must be at least 32 characters")
	}

	return &hmacTokenService{
		signingKey: []byte(cfg.TokenSecret),
		lifetimes: map[Purpose]time.Duration{
			PurposeActivation: cfg.ActivationTTL,
			PurposeReset:      cfg.ResetTTL,
		},
		timeFunc:  timeFunc,
		clockSkew: 2 * time.Minute,
	}, nil
}

// Issue implements TokenService.
func (s *hmacTokenService) Issue(
	ctx context.Context,
	purpose Purpose,
	userID int64,
	fingerprint string,
) (string, error) {
	log := logger.FromContext(ctx)

	lifetime, ok := s.lifetimes[purpose]
	if !ok {
		return "", fmt.Errorf("%w: unknown purpose %q", ErrWrongPurpose, purpose)
	}

	now := s.timeFunc()
	claims := tokenClaims{
		Purpose:     purpose,
		Fingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign account token",
			"error", err,
			"user_id", userID,
			"purpose", purpose)
		return "", fmt.Errorf("failed to sign %s token with HMAC-SHA256: %w", purpose, err)
	}
	return signed, nil
}

// Validate implements TokenService.
func (s *hmacTokenService) Validate(ctx context.Context, purpose Purpose, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("account token expired", "purpose", purpose)
			return nil, ErrExpiredToken
		}
		log.Debug("account token rejected",
			"error", err,
			"purpose", purpose)
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		log.Debug("account token has wrong purpose",
			"expected", purpose,
			"actual", claims.Purpose)
		return nil, ErrWrongPurpose
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, ErrInvalidToken
	}

	result := &Claims{
		UserID:      userID,
		Purpose:     claims.Purpose,
		Fingerprint: claims.Fingerprint,
		ExpiresAt:   claims.ExpiresAt.Time,
		ID:          claims.ID,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	return result, nil
}
