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

type UserService struct {
	Store  repo.Store
	Index  TripIndex
	Events events.Publisher
}

type UserPage struct {
	Items []models.User `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Store.Users().ByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	return u, err
}

func (s *UserService) Update(ctx context.Context, id uint, upd repo.UserUpdate) (*models.User, error) {
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
		}
		upd.Email = &email
	}
	u, err := s.Store.Users().Update(ctx, id, upd)
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		return nil, ErrDuplicateEmail
	case errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	return u, err
}

// Delete removes the account with everything it owns, including the trips the
// user organises.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "users.delete", "user_id", id)

	var organised []uint
	err := s.Store.Transaction(ctx, func(tx repo.Store) error {
		var err error
		organised, err = tx.Users().Delete(ctx, id)
		return err
	})
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: user not found", ErrNotFound)
	}
	if err != nil {
		l.Error("delete_user_failed", "status", 500, "error", err)
		return err
	}

	if s.Index != nil {
		for _, tripID := range organised {
			if err := s.Index.DeleteTrip(ctx, tripID); err != nil {
				l.Warn("trip_unindex_failed", "trip_id", tripID, "error", err)
			}
		}
	}
	publish(ctx, s.Events, time.Now().UTC(), events.TopicUsers, events.Event{Type: events.UserDeleted, UserID: id})
	l.Info("user_deleted", "trips_deleted", len(organised))
	return nil
}

func (s *UserService) Search(ctx context.Context, q string, page, size int) (*UserPage, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	offset, limit := util.Calculate(page, size)
	items, total, err := s.Store.Users().Search(ctx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	page, size = util.Normalize(page, size)
	return &UserPage{Items: items, Total: total, Page: page, Size: size}, nil
}
