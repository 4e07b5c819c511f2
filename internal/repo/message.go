package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/travel_app/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ByID(ctx context.Context, id uint) (*models.Message, error)
	ListForTrip(ctx context.Context, tripID uint, offset, limit int) ([]models.Message, error)
	// History returns up to limit messages older than beforeID, newest first.
	// A zero beforeID starts from the latest message.
	History(ctx context.Context, tripID, beforeID uint, limit int) ([]models.Message, error)
	Search(ctx context.Context, tripID uint, q string, offset, limit int) ([]models.Message, error)
	UpdateContent(ctx context.Context, id uint, content string) (*models.Message, error)
	Delete(ctx context.Context, id uint) error
}

type messageRepo struct{ db *gorm.DB }

func (r *messageRepo) Create(ctx context.Context, msg *models.Message) error {
	return translate(r.db.WithContext(ctx).Create(msg).Error)
}

func (r *messageRepo) ByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

func (r *messageRepo) ListForTrip(ctx context.Context, tripID uint, offset, limit int) ([]models.Message, error) {
	msgs := make([]models.Message, 0, limit)
	err := r.db.WithContext(ctx).Where("trip_id = ?", tripID).
		Order("created_at DESC, id DESC").Offset(offset).Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

func (r *messageRepo) History(ctx context.Context, tripID, beforeID uint, limit int) ([]models.Message, error) {
	q := r.db.WithContext(ctx).Where("trip_id = ?", tripID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	msgs := make([]models.Message, 0, limit)
	err := q.Order("id DESC").Limit(limit).Find(&msgs).Error
	return msgs, err
}

func (r *messageRepo) Search(ctx context.Context, tripID uint, q string, offset, limit int) ([]models.Message, error) {
	pattern := likePattern(strings.ToLower(strings.TrimSpace(q)))
	msgs := make([]models.Message, 0, limit)
	err := r.db.WithContext(ctx).
		Where(`trip_id = ? AND LOWER(content) LIKE ? ESCAPE '\'`, tripID, pattern).
		Order("created_at DESC, id DESC").Offset(offset).Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

func (r *messageRepo) UpdateContent(ctx context.Context, id uint, content string) (*models.Message, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.ByID(ctx, id)
}

func (r *messageRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Message{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
