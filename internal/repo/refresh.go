package repo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/travel_app/internal/models"
	"github.com/Skotchmaster/travel_app/pkg/clock"
)

// RefreshTokenStore persists issued refresh tokens. Tokens are looked up by
// the full token string; only its sha256 is stored.
type RefreshTokenStore interface {
	Create(ctx context.Context, token string, userID uint, expiresAt time.Time) (*models.RefreshToken, error)
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	// FindForUpdate locks the row for the rest of the transaction.
	FindForUpdate(ctx context.Context, token string) (*models.RefreshToken, error)
	IsValid(ctx context.Context, token string) (bool, error)
	// Revoke returns nil, nil when the token was never stored.
	Revoke(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeAllForUser(ctx context.Context, userID uint) (int64, error)
	// PurgeExpired deletes rows that are both expired and revoked.
	PurgeExpired(ctx context.Context) (int64, error)
}

type refreshRepo struct {
	db    *gorm.DB
	clock clock.Clock
}

func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (r *refreshRepo) Create(ctx context.Context, token string, userID uint, expiresAt time.Time) (*models.RefreshToken, error) {
	rec := models.RefreshToken{
		Token:     Sha256Hex(token),
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: r.clock.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *refreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rec models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ?", Sha256Hex(token)).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *refreshRepo) FindForUpdate(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rec models.RefreshToken
	if err := forUpdate(r.db.WithContext(ctx)).Where("token = ?", Sha256Hex(token)).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *refreshRepo) IsValid(ctx context.Context, token string) (bool, error) {
	rec, err := r.Find(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !rec.Revoked && r.clock.Now().Before(rec.ExpiresAt), nil
}

func (r *refreshRepo) Revoke(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rec models.RefreshToken
	tx := r.db.WithContext(ctx)
	if err := forUpdate(tx).Where("token = ?", Sha256Hex(token)).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if rec.Revoked {
		return &rec, nil
	}
	if err := tx.Model(&models.RefreshToken{}).Where("id = ?", rec.ID).Update("revoked", true).Error; err != nil {
		return nil, err
	}
	rec.Revoked = true
	return &rec, nil
}

func (r *refreshRepo) RevokeAllForUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true)
	return res.RowsAffected, res.Error
}

func (r *refreshRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("revoked = ? AND expires_at < ?", true, r.clock.Now()).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
