package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Purpose tells what an account token may be used for.
type Purpose string

// Token purposes.
const (
	PurposeActivation Purpose = "activation"
	PurposeReset      Purpose = "reset"
)

// TokenService issues the signed tokens e-mailed to members: account
// activation links and password reset links. Tokens are stateless; nothing is
// stored server side.
type TokenService interface {
	// Issue creates a token for userID. fingerprint binds the token to the
	// account state it was issued for; see Fingerprint.
	Issue(ctx context.Context, purpose Purpose, userID int64, fingerprint string) (string, error)

	// Validate checks the signature, expiry and purpose of token and returns
	// its claims. Errors are ErrInvalidToken, ErrExpiredToken or ErrWrongPurpose.
	Validate(ctx context.Context, purpose Purpose, token string) (*Claims, error)
}

// Claims are the validated contents of an account token.
type Claims struct {
	UserID      int64
	Purpose     Purpose
	Fingerprint string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	ID          string
}

// Fingerprint derives a short digest of the password hash. A reset token
// carrying it stops validating once the password changes, so each reset link
// works only once.
func Fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}
