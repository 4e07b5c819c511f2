package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/travel_app/internal/models"
)

type MemberRepository interface {
	Get(ctx context.Context, tripID, userID uint) (*models.TripMember, error)
	// GetForUpdate locks the membership row for the rest of the transaction.
	GetForUpdate(ctx context.Context, tripID, userID uint) (*models.TripMember, error)
	Add(ctx context.Context, tripID, userID uint, role models.Role) (*models.TripMember, error)
	List(ctx context.Context, tripID uint) ([]models.TripMember, error)
	Count(ctx context.Context, tripID uint) (int64, error)
	SetRole(ctx context.Context, tripID, userID uint, role models.Role) (*models.TripMember, error)
	Remove(ctx context.Context, tripID, userID uint) error
}

type memberRepo struct{ db *gorm.DB }

func (r *memberRepo) get(tx *gorm.DB, tripID, userID uint) (*models.TripMember, error) {
	var m models.TripMember
	if err := tx.Where("trip_id = ? AND user_id = ?", tripID, userID).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *memberRepo) Get(ctx context.Context, tripID, userID uint) (*models.TripMember, error) {
	return r.get(r.db.WithContext(ctx), tripID, userID)
}

func (r *memberRepo) GetForUpdate(ctx context.Context, tripID, userID uint) (*models.TripMember, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), tripID, userID)
}

func (r *memberRepo) Add(ctx context.Context, tripID, userID uint, role models.Role) (*models.TripMember, error) {
	m := models.TripMember{TripID: tripID, UserID: userID, Role: role}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *memberRepo) List(ctx context.Context, tripID uint) ([]models.TripMember, error) {
	members := []models.TripMember{}
	if err := r.db.WithContext(ctx).Where("trip_id = ?", tripID).Order("joined_at, id").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepo) Count(ctx context.Context, tripID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.TripMember{}).Where("trip_id = ?", tripID).Count(&n).Error
	return n, err
}

func (r *memberRepo) SetRole(ctx context.Context, tripID, userID uint, role models.Role) (*models.TripMember, error) {
	res := r.db.WithContext(ctx).Model(&models.TripMember{}).
		Where("trip_id = ? AND user_id = ?", tripID, userID).
		Update("role", role)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, tripID, userID)
}

func (r *memberRepo) Remove(ctx context.Context, tripID, userID uint) error {
	res := r.db.WithContext(ctx).Where("trip_id = ? AND user_id = ?", tripID, userID).Delete(&models.TripMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
