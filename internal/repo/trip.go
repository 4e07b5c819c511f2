package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/travel_app/internal/models"
)

type TripRepository interface {
	Create(ctx context.Context, trip *models.Trip) error
	ByID(ctx context.Context, id uint) (*models.Trip, error)
	Update(ctx context.Context, id uint, upd TripUpdate) (*models.Trip, error)
	Delete(ctx context.Context, id uint) error
	ListForUser(ctx context.Context, userID uint, offset, limit int) ([]models.Trip, int64, error)
	SearchForUser(ctx context.Context, userID uint, q string, offset, limit int) ([]models.Trip, int64, error)
	ByIDsForUser(ctx context.Context, userID uint, ids []uint) ([]models.Trip, error)
}

type TripUpdate struct {
	Title       *string
	Description *string
	Destination *string
	StartDate   *time.Time
	EndDate     *time.Time
	BudgetTotal *float64
}

type tripRepo struct{ db *gorm.DB }

func (r *tripRepo) Create(ctx context.Context, trip *models.Trip) error {
	return translate(r.db.WithContext(ctx).Create(trip).Error)
}

func (r *tripRepo) ByID(ctx context.Context, id uint) (*models.Trip, error) {
	var trip models.Trip
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&trip).Error; err != nil {
		return nil, translate(err)
	}
	return &trip, nil
}

func (r *tripRepo) Update(ctx context.Context, id uint, upd TripUpdate) (*models.Trip, error) {
	fields := map[string]any{}
	if upd.Title != nil {
		fields["title"] = *upd.Title
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.Destination != nil {
		fields["destination"] = *upd.Destination
	}
	if upd.StartDate != nil {
		fields["start_date"] = upd.StartDate.UTC()
	}
	if upd.EndDate != nil {
		fields["end_date"] = upd.EndDate.UTC()
	}
	if upd.BudgetTotal != nil {
		fields["budget_total"] = *upd.BudgetTotal
	}

	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Trip{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.ByID(ctx, id)
}

// Delete removes the trip with its members, messages and comments.
// Call it inside a transaction.
func (r *tripRepo) Delete(ctx context.Context, id uint) error {
	tx := r.db.WithContext(ctx)
	for _, m := range []any{&models.Comment{}, &models.Message{}, &models.TripMember{}} {
		if err := tx.Where("trip_id = ?", id).Delete(m).Error; err != nil {
			return err
		}
	}
	res := tx.Where("id = ?", id).Delete(&models.Trip{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tripRepo) memberTrips(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Trip{}).
		Joins("JOIN trip_members ON trip_members.trip_id = trips.id").
		Where("trip_members.user_id = ?", userID)
}

func (r *tripRepo) ListForUser(ctx context.Context, userID uint, offset, limit int) ([]models.Trip, int64, error) {
	base := r.memberTrips(ctx, userID).Session(&gorm.Session{})
	return page(base, offset, limit)
}

func (r *tripRepo) SearchForUser(ctx context.Context, userID uint, q string, offset, limit int) ([]models.Trip, int64, error) {
	pattern := likePattern(strings.ToLower(strings.TrimSpace(q)))
	base := r.memberTrips(ctx, userID).
		Where(`(LOWER(trips.title) LIKE ? ESCAPE '\' OR LOWER(trips.destination) LIKE ? ESCAPE '\')`, pattern, pattern).
		Session(&gorm.Session{})
	return page(base, offset, limit)
}

// ByIDsForUser keeps only the given trips the user belongs to, in the order of ids.
func (r *tripRepo) ByIDsForUser(ctx context.Context, userID uint, ids []uint) ([]models.Trip, error) {
	if len(ids) == 0 {
		return []models.Trip{}, nil
	}
	var found []models.Trip
	if err := r.memberTrips(ctx, userID).Where("trips.id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Trip, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	out := make([]models.Trip, 0, len(found))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func page(base *gorm.DB, offset, limit int) ([]models.Trip, int64, error) {
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	trips := make([]models.Trip, 0, limit)
	if err := base.Select("trips.*").Order("trips.created_at DESC, trips.id DESC").
		Offset(offset).Limit(limit).Find(&trips).Error; err != nil {
		return nil, 0, err
	}
	return trips, total, nil
}
