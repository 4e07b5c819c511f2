package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/travel_app/internal/models"
)

type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	ByID(ctx context.Context, id uint) (*models.Comment, error)
	ListForTrip(ctx context.Context, tripID uint, offset, limit int) ([]models.Comment, error)
	ListForUser(ctx context.Context, userID uint, offset, limit int) ([]models.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string) (*models.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepo struct{ db *gorm.DB }

func (r *commentRepo) Create(ctx context.Context, c *models.Comment) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *commentRepo) ByID(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *commentRepo) list(ctx context.Context, column string, id uint, offset, limit int) ([]models.Comment, error) {
	out := make([]models.Comment, 0, limit)
	err := r.db.WithContext(ctx).Where(column+" = ?", id).
		Order("created_at DESC, id DESC").Offset(offset).Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *commentRepo) ListForTrip(ctx context.Context, tripID uint, offset, limit int) ([]models.Comment, error) {
	return r.list(ctx, "trip_id", tripID, offset, limit)
}

func (r *commentRepo) ListForUser(ctx context.Context, userID uint, offset, limit int) ([]models.Comment, error) {
	return r.list(ctx, "user_id", userID, offset, limit)
}

func (r *commentRepo) UpdateContent(ctx context.Context, id uint, content string) (*models.Comment, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.ByID(ctx, id)
}

func (r *commentRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
