package repository

import (
	"context"
	"errors"
	"time"

	"github.com/pro-power/polishr-sub001/internal/models"

	"gorm.io/gorm"
)

// TokenRepository manages email verification and password reset tokens.
// At most one live token exists per user per kind: issuing replaces any
// prior token, and consuming deletes the token in the same transaction
// as the state change it authorizes.
type TokenRepository interface {
	ReplaceVerificationToken(ctx context.Context, token *models.EmailVerificationToken) error
	ReplaceResetToken(ctx context.Context, token *models.PasswordResetToken) error
	ConsumeVerification(ctx context.Context, token string, now time.Time) (*models.User, error)
	ConsumeReset(ctx context.Context, token string, hashedPassword string, now time.Time) (*models.User, error)
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository returns a new TokenRepository implementation.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) ReplaceVerificationToken(ctx context.Context, token *models.EmailVerificationToken) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).
			Delete(&models.EmailVerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tokenRepository) ReplaceResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ConsumeVerification marks the token's user as verified and burns the
// token in one transaction, so a token can never verify twice.
func (r *tokenRepository) ConsumeVerification(ctx context.Context, token string, now time.Time) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.EmailVerificationToken
		if err := tx.Where("token = ?", token).First(&record).Error; err != nil {
			return err
		}
		if err := tx.First(&user, record.UserID).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Update("email_verified_at", now).Error; err != nil {
			return err
		}
		user.EmailVerifiedAt = &now
		return tx.Delete(&record).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewTokenNotFoundError()
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// ConsumeReset swaps in the new password hash and burns the token in one
// transaction. Expired tokens are deleted on discovery and reported as
// expired, so a stale link fails cleanly instead of lingering.
func (r *tokenRepository) ConsumeReset(ctx context.Context, token string, hashedPassword string, now time.Time) (*models.User, error) {
	var user models.User
	var expired bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.PasswordResetToken
		if err := tx.Where("token = ?", token).First(&record).Error; err != nil {
			return err
		}
		if record.Expired(now) {
			expired = true
			return tx.Delete(&record).Error
		}
		if err := tx.First(&user, record.UserID).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Update("password", hashedPassword).Error; err != nil {
			return err
		}
		user.Password = hashedPassword
		return tx.Delete(&record).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewTokenNotFoundError()
		}
		return nil, models.NewInternalError(err)
	}
	if expired {
		return nil, models.NewExpiredTokenError()
	}
	return &user, nil
}
