package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/travel_app/internal/events"
	"github.com/Skotchmaster/travel_app/internal/models"
	"github.com/Skotchmaster/travel_app/internal/repo"
	"github.com/Skotchmaster/travel_app/internal/util"
	"github.com/Skotchmaster/travel_app/pkg/logging"
)

// TripIndex is the optional full-text index over trips.
type TripIndex interface {
	IndexTrip(ctx context.Context, trip *models.Trip) error
	DeleteTrip(ctx context.Context, id uint) error
	SearchTrips(ctx context.Context, query string) ([]uint, error)
}

type TripService struct {
	Store  repo.Store
	Access *AccessControl
	Index  TripIndex
	Events events.Publisher
}

type TripInput struct {
	Title       string
	Destination string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	BudgetTotal *float64
}

type TripPage struct {
	Items []models.Trip `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

type TripStats struct {
	Trip         *models.Trip `json:"trip"`
	MembersCount int64        `json:"members_count"`
	Role         models.Role  `json:"role"`
}

func validateDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("%w: end_date is before start_date", ErrValidation)
	}
	return nil
}

func validateBudget(b *float64) error {
	if b != nil && *b < 0 {
		return fmt.Errorf("%w: budget_total must not be negative", ErrValidation)
	}
	return nil
}

func (in TripInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.Destination) == "" {
		return fmt.Errorf("%w: destination is required", ErrValidation)
	}
	if err := validateBudget(in.BudgetTotal); err != nil {
		return err
	}
	return validateDates(in.StartDate, in.EndDate)
}

// Create inserts the trip and its organizer membership in one transaction.
func (s *TripService) Create(ctx context.Context, creatorID uint, in TripInput) (*models.Trip, error) {
	l := logging.FromContext(ctx).With("svc", "trips.create", "user_id", creatorID)
	if err := in.validate(); err != nil {
		return nil, err
	}

	trip := &models.Trip{
		Title:       strings.TrimSpace(in.Title),
		Destination: strings.TrimSpace(in.Destination),
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		BudgetTotal: in.BudgetTotal,
		CreatorID:   creatorID,
	}
	err := s.Store.Transaction(ctx, func(tx repo.Store) error {
		if err := tx.Trips().Create(ctx, trip); err != nil {
			return err
		}
		_, err := tx.Members().Add(ctx, trip.ID, creatorID, models.RoleOrganizer)
		return err
	})
	if err != nil {
		l.Error("create_trip_failed", "status", 500, "error", err)
		return nil, err
	}

	s.reindex(ctx, trip)
	publish(ctx, s.Events, time.Now().UTC(), events.TopicTrips, events.Event{Type: events.TripCreated, UserID: creatorID, TripID: trip.ID})
	l.Info("trip_created", "trip_id", trip.ID)
	return trip, nil
}

func (s *TripService) Get(ctx context.Context, tripID, userID uint) (*models.Trip, error) {
	if _, err := s.Access.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	trip, err := s.Store.Trips().ByID(ctx, tripID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrAccessDenied
	}
	return trip, err
}

func (s *TripService) Update(ctx context.Context, tripID, userID uint, upd repo.TripUpdate) (*models.Trip, error) {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if upd.Destination != nil && strings.TrimSpace(*upd.Destination) == "" {
		return nil, fmt.Errorf("%w: destination must not be empty", ErrValidation)
	}
	if err := validateBudget(upd.BudgetTotal); err != nil {
		return nil, err
	}

	var trip *models.Trip
	err := s.Store.Transaction(ctx, func(tx repo.Store) error {
		if _, err := s.Access.In(tx).RequireOrganizer(ctx, tripID, userID); err != nil {
			return err
		}
		current, err := tx.Trips().ByID(ctx, tripID)
		if err != nil {
			return err
		}
		start, end := current.StartDate, current.EndDate
		if upd.StartDate != nil {
			start = upd.StartDate
		}
		if upd.EndDate != nil {
			end = upd.EndDate
		}
		if err := validateDates(start, end); err != nil {
			return err
		}
		trip, err = tx.Trips().Update(ctx, tripID, upd)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, trip)
	return trip, nil
}

func (s *TripService) Delete(ctx context.Context, tripID, userID uint) error {
	err := s.Store.Transaction(ctx, func(tx repo.Store) error {
		if _, err := s.Access.In(tx).RequireOrganizer(ctx, tripID, userID); err != nil {
			return err
		}
		return tx.Trips().Delete(ctx, tripID)
	})
	if err != nil {
		return err
	}
	s.unindex(ctx, tripID)
	publish(ctx, s.Events, time.Now().UTC(), events.TopicTrips, events.Event{Type: events.TripDeleted, UserID: userID, TripID: tripID})
	logging.FromContext(ctx).Info("trip_deleted", "trip_id", tripID, "user_id", userID)
	return nil
}

func (s *TripService) ListMine(ctx context.Context, userID uint, page, size int) (*TripPage, error) {
	offset, limit := util.Calculate(page, size)
	items, total, err := s.Store.Trips().ListForUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	page, size = util.Normalize(page, size)
	return &TripPage{Items: items, Total: total, Page: page, Size: size}, nil
}

func (s *TripService) Stats(ctx context.Context, tripID, userID uint) (*TripStats, error) {
	m, err := s.Access.RequireMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	trip, err := s.Store.Trips().ByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, err
	}
	n, err := s.Store.Members().Count(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return &TripStats{Trip: trip, MembersCount: n, Role: m.Role}, nil
}

// Search returns only trips the user belongs to. The full-text index is used
// when configured; the database is the fallback.
func (s *TripService) Search(ctx context.Context, userID uint, q string, page, size int) (*TripPage, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	offset, limit := util.Calculate(page, size)
	page, size = util.Normalize(page, size)

	if s.Index != nil {
		ids, err := s.Index.SearchTrips(ctx, q)
		if err == nil {
			trips, err := s.Store.Trips().ByIDsForUser(ctx, userID, ids)
			if err != nil {
				return nil, err
			}
			total := int64(len(trips))
			if offset > len(trips) {
				offset = len(trips)
			}
			end := offset + limit
			if end > len(trips) {
				end = len(trips)
			}
			return &TripPage{Items: trips[offset:end], Total: total, Page: page, Size: size}, nil
		}
		logging.FromContext(ctx).Warn("trip_index_search_failed", "error", err)
	}

	items, total, err := s.Store.Trips().SearchForUser(ctx, userID, q, offset, limit)
	if err != nil {
		return nil, err
	}
	return &TripPage{Items: items, Total: total, Page: page, Size: size}, nil
}

func (s *TripService) reindex(ctx context.Context, trip *models.Trip) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexTrip(ctx, trip); err != nil {
		logging.FromContext(ctx).Warn("trip_index_failed", "trip_id", trip.ID, "error", err)
	}
}

func (s *TripService) unindex(ctx context.Context, tripID uint) {
	if s.Index == nil {
		return
	}
	if err := s.Index.DeleteTrip(ctx, tripID); err != nil {
		logging.FromContext(ctx).Warn("trip_unindex_failed", "trip_id", tripID, "error", err)
	}
}
