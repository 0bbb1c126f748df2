package db

import (
	"context"
	"errors"
	"time"

	"library-management-api/models"
)

// Password resets

var ErrResetTokenInvalid = errors.New("password reset token is invalid or has expired")

// CreatePasswordReset replaces any outstanding token for the email, so only
// the most recent link works.
func (r *Repo) CreatePasswordReset(ctx context.Context, email, token string, expiresAt time.Time) (*models.PasswordReset, error) {
	if err := r.DB.WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.PasswordReset{}).Error; err != nil {
		return nil, err
	}
	pr := &models.PasswordReset{Email: email, Token: token, ExpiresAt: expiresAt}
	return pr, r.DB.WithContext(ctx).Create(pr).Error
}

func (r *Repo) FindValidPasswordReset(ctx context.Context, email, token string) (*models.PasswordReset, error) {
	var pr models.PasswordReset
	err := r.DB.WithContext(ctx).
		Where("email = ? AND token = ? AND used_at IS NULL AND expires_at > ?",
			email, token, time.Now().UTC()).
		First(&pr).Error
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrResetTokenInvalid
		}
		return nil, err
	}
	return &pr, nil
}

// ConsumePasswordReset marks the token used. The conditional update makes
// consumption single-shot even under concurrent resets.
func (r *Repo) ConsumePasswordReset(ctx context.Context, token string) error {
	now := time.Now().UTC()
	res := r.DB.WithContext(ctx).Model(&models.PasswordReset{}).
		Where("token = ? AND used_at IS NULL", token).
		Update("used_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrResetTokenInvalid
	}
	return nil
}
