package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/travel_app/internal/metrics"
	"github.com/Skotchmaster/travel_app/internal/models"
	"github.com/Skotchmaster/travel_app/internal/repo"
)

// AccessControl answers membership questions for trip-scoped resources and
// enforces the single-organizer rules. Use In to run the checks on a
// transactional store.
type AccessControl struct {
	Store repo.Store
}

func (a *AccessControl) In(tx repo.Store) *AccessControl {
	return &AccessControl{Store: tx}
}

func (a *AccessControl) member(ctx context.Context, tripID, userID uint) (*models.TripMember, error) {
	m, err := a.Store.Members().Get(ctx, tripID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

func (a *AccessControl) IsMember(ctx context.Context, tripID, userID uint) (bool, error) {
	m, err := a.member(ctx, tripID, userID)
	return m != nil, err
}

func (a *AccessControl) IsOrganizer(ctx context.Context, tripID, userID uint) (bool, error) {
	m, err := a.member(ctx, tripID, userID)
	return m != nil && m.Role == models.RoleOrganizer, err
}

// RequireMember fails with ErrAccessDenied for non-members. Absent trips have
// no members, so they are indistinguishable from trips the caller is not in.
func (a *AccessControl) RequireMember(ctx context.Context, tripID, userID uint) (*models.TripMember, error) {
	m, err := a.member(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		metrics.AccessDecisions.WithLabelValues("member", "denied").Inc()
		return nil, ErrAccessDenied
	}
	metrics.AccessDecisions.WithLabelValues("member", "allowed").Inc()
	return m, nil
}

func (a *AccessControl) RequireOrganizer(ctx context.Context, tripID, userID uint) (*models.TripMember, error) {
	m, err := a.member(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.Role != models.RoleOrganizer {
		metrics.AccessDecisions.WithLabelValues("organizer", "denied").Inc()
		return nil, ErrPermissionDenied
	}
	metrics.AccessDecisions.WithLabelValues("organizer", "allowed").Inc()
	return m, nil
}

func (a *AccessControl) lockTarget(ctx context.Context, tripID, userID uint) (*models.TripMember, error) {
	m, err := a.Store.Members().GetForUpdate(ctx, tripID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: member not found", ErrNotFound)
	}
	return m, err
}

// SetRole changes a member's role. The organizer row is fixed: it can neither
// be changed nor granted.
func (a *AccessControl) SetRole(ctx context.Context, tripID, memberID uint, role models.Role, actorID uint) (*models.TripMember, error) {
	var out *models.TripMember
	err := a.Store.Transaction(ctx, func(tx repo.Store) error {
		ac := a.In(tx)
		if _, err := ac.RequireOrganizer(ctx, tripID, actorID); err != nil {
			return err
		}
		target, err := ac.lockTarget(ctx, tripID, memberID)
		if err != nil {
			return err
		}
		if target.Role == models.RoleOrganizer || role == models.RoleOrganizer {
			return ErrOrganizerRoleImmutable
		}
		if !role.Valid() {
			return ErrInvalidRole
		}
		out, err = tx.Members().SetRole(ctx, tripID, memberID, role)
		return err
	})
	return out, err
}

func (a *AccessControl) RemoveMember(ctx context.Context, tripID, memberID, actorID uint) error {
	return a.Store.Transaction(ctx, func(tx repo.Store) error {
		ac := a.In(tx)
		if _, err := ac.RequireOrganizer(ctx, tripID, actorID); err != nil {
			return err
		}
		target, err := ac.lockTarget(ctx, tripID, memberID)
		if err != nil {
			return err
		}
		if target.Role == models.RoleOrganizer {
			return ErrCannotRemoveOrganizer
		}
		return tx.Members().Remove(ctx, tripID, memberID)
	})
}

func (a *AccessControl) Leave(ctx context.Context, tripID, userID uint) error {
	return a.Store.Transaction(ctx, func(tx repo.Store) error {
		m, err := tx.Members().GetForUpdate(ctx, tripID, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrAccessDenied
		}
		if err != nil {
			return err
		}
		if m.Role == models.RoleOrganizer {
			return ErrOrganizerCannotLeave
		}
		return tx.Members().Remove(ctx, tripID, userID)
	})
}
