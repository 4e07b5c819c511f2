package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/travel_app/internal/models"
)

type UserRepository interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)
	Update(ctx context.Context, id uint, upd UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id uint) ([]uint, error)
	Search(ctx context.Context, q string, offset, limit int) ([]models.User, int64, error)
}

// UserUpdate carries only the fields to change; nil leaves a column untouched.
type UserUpdate struct {
	Email     *string
	Name      *string
	Bio       *string
	AvatarURL *string
}

type userRepo struct{ db *gorm.DB }

func (r *userRepo) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	user := models.User{
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, id uint, upd UserUpdate) (*models.User, error) {
	fields := map[string]any{}
	if upd.Email != nil {
		fields["email"] = *upd.Email
	}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Bio != nil {
		fields["bio"] = *upd.Bio
	}
	if upd.AvatarURL != nil {
		fields["avatar_url"] = *upd.AvatarURL
	}

	tx := r.db.WithContext(ctx)
	if len(fields) > 0 {
		res := tx.Model(&models.User{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.ByID(ctx, id)
}

// Delete removes the user together with their tokens, memberships, authored
// content and every trip they organise, returning the ids of the removed trips.
// Call it inside a transaction.
func (r *userRepo) Delete(ctx context.Context, id uint) ([]uint, error) {
	tx := r.db.WithContext(ctx)

	var organised []uint
	if err := tx.Model(&models.TripMember{}).
		Where("user_id = ? AND role = ?", id, models.RoleOrganizer).
		Order("trip_id").
		Pluck("trip_id", &organised).Error; err != nil {
		return nil, err
	}
	trips := &tripRepo{db: r.db}
	deleted := make([]uint, 0, len(organised))
	for _, tripID := range organised {
		err := trips.Delete(ctx, tripID)
		switch {
		case errors.Is(err, ErrNotFound):
			continue
		case err != nil:
			return nil, err
		}
		deleted = append(deleted, tripID)
	}

	for _, m := range []any{&models.Comment{}, &models.Message{}, &models.TripMember{}, &models.RefreshToken{}} {
		if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
			return nil, err
		}
	}

	res := tx.Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return deleted, nil
}

func (r *userRepo) Search(ctx context.Context, q string, offset, limit int) ([]models.User, int64, error) {
	pattern := likePattern(strings.ToLower(strings.TrimSpace(q)))
	base := r.db.WithContext(ctx).Model(&models.User{}).
		Where(`LOWER(COALESCE(name, '')) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, pattern, pattern).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := make([]models.User, 0, limit)
	if err := base.Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
