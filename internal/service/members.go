package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/travel_app/internal/events"
	"github.com/Skotchmaster/travel_app/internal/models"
	"github.com/Skotchmaster/travel_app/internal/repo"
	"github.com/Skotchmaster/travel_app/pkg/logging"
)

type MemberService struct {
	Store  repo.Store
	Access *AccessControl
	Events events.Publisher
}

func (s *MemberService) add(ctx context.Context, tripID, userID uint) (*models.TripMember, error) {
	m, err := s.Store.Members().Add(ctx, tripID, userID, models.RoleMember)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrAlreadyMember
	}
	return m, err
}

// Join adds the caller to an existing trip as a member.
func (s *MemberService) Join(ctx context.Context, tripID, userID uint) (*models.TripMember, error) {
	if _, err := s.Store.Trips().ByID(ctx, tripID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: trip not found", ErrNotFound)
		}
		return nil, err
	}
	m, err := s.add(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.MemberJoined, tripID, userID, m.Role)
	logging.FromContext(ctx).Info("member_joined", "trip_id", tripID, "user_id", userID)
	return m, nil
}

func (s *MemberService) Invite(ctx context.Context, tripID, targetID, actorID uint) (*models.TripMember, error) {
	if _, err := s.Access.RequireOrganizer(ctx, tripID, actorID); err != nil {
		return nil, err
	}
	if _, err := s.Store.Users().ByID(ctx, targetID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}
	m, err := s.add(ctx, tripID, targetID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.MemberJoined, tripID, targetID, m.Role)
	return m, nil
}

func (s *MemberService) List(ctx context.Context, tripID, userID uint) ([]models.TripMember, error) {
	if _, err := s.Access.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.Store.Members().List(ctx, tripID)
}

func (s *MemberService) SetRole(ctx context.Context, tripID, memberID uint, role models.Role, actorID uint) (*models.TripMember, error) {
	m, err := s.Access.SetRole(ctx, tripID, memberID, role, actorID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.RoleChanged, tripID, memberID, m.Role)
	return m, nil
}

// Remove dispatches to Leave when the caller targets their own membership.
func (s *MemberService) Remove(ctx context.Context, tripID, memberID, actorID uint) error {
	if memberID == actorID {
		if err := s.Access.Leave(ctx, tripID, actorID); err != nil {
			return err
		}
		s.publish(ctx, events.MemberLeft, tripID, actorID, "")
		return nil
	}
	if err := s.Access.RemoveMember(ctx, tripID, memberID, actorID); err != nil {
		return err
	}
	s.publish(ctx, events.MemberRemoved, tripID, memberID, "")
	return nil
}

func (s *MemberService) publish(ctx context.Context, typ string, tripID, userID uint, role models.Role) {
	publish(ctx, s.Events, time.Now().UTC(), events.TopicTrips, events.Event{
		Type:   typ,
		TripID: tripID,
		UserID: userID,
		Role:   string(role),
	})
}
