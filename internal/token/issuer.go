// Package token issues and consumes single-use account tokens for email
// verification and password resets.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pro-power/polishr-sub001/internal/models"
	"github.com/pro-power/polishr-sub001/internal/repository"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = time.Hour

const tokenBytes = 32

// Issuer mints opaque tokens and redeems them through the token
// repository. Tokens are 64 hex characters from crypto/rand and are
// never logged or echoed back by error paths.
type Issuer struct {
	tokens repository.TokenRepository
	now    func() time.Time
}

// NewIssuer returns an Issuer backed by the given repository.
func NewIssuer(tokens repository.TokenRepository) *Issuer {
	return &Issuer{tokens: tokens, now: time.Now}
}

func generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// IssueVerification mints a fresh email verification token for the user,
// replacing any outstanding one, and returns the raw token value.
func (i *Issuer) IssueVerification(ctx context.Context, userID uint) (string, error) {
	raw, err := generate()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	record := &models.EmailVerificationToken{
		UserID: userID,
		Token:  raw,
	}
	if err := i.tokens.ReplaceVerificationToken(ctx, record); err != nil {
		return "", err
	}
	return raw, nil
}

// IssueReset mints a fresh password reset token for the user, replacing
// any outstanding one, and returns the raw token value.
func (i *Issuer) IssueReset(ctx context.Context, userID uint) (string, error) {
	raw, err := generate()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	record := &models.PasswordResetToken{
		UserID:    userID,
		Token:     raw,
		ExpiresAt: i.now().Add(ResetTokenTTL),
	}
	if err := i.tokens.ReplaceResetToken(ctx, record); err != nil {
		return "", err
	}
	return raw, nil
}

// ConsumeVerification redeems a verification token, marking its user's
// email as verified. The token is burned whether or not it has been
// redeemed before; a second redemption reports the token as not found.
func (i *Issuer) ConsumeVerification(ctx context.Context, raw string) (*models.User, error) {
	return i.tokens.ConsumeVerification(ctx, raw, i.now())
}

// ConsumeReset redeems a reset token against a new password hash.
func (i *Issuer) ConsumeReset(ctx context.Context, raw string, hashedPassword string) (*models.User, error) {
	return i.tokens.ConsumeReset(ctx, raw, hashedPassword, i.now())
}
