package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/travel_app/internal/models"
	"github.com/Skotchmaster/travel_app/internal/repo"
	"github.com/Skotchmaster/travel_app/internal/util"
)

type CommentService struct {
	Store  repo.Store
	Access *AccessControl
}

func (s *CommentService) Create(ctx context.Context, tripID, userID uint, content string) (*models.Comment, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.Access.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	c := &models.Comment{TripID: tripID, UserID: userID, Content: content}
	if err := s.Store.Comments().Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) ListForTrip(ctx context.Context, tripID, userID uint, page, size int) ([]models.Comment, error) {
	if _, err := s.Access.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	offset, limit := util.Calculate(page, size)
	return s.Store.Comments().ListForTrip(ctx, tripID, offset, limit)
}

func (s *CommentService) ListMine(ctx context.Context, userID uint, page, size int) ([]models.Comment, error) {
	offset, limit := util.Calculate(page, size)
	return s.Store.Comments().ListForUser(ctx, userID, offset, limit)
}

func (s *CommentService) authored(ctx context.Context, st repo.Store, id, userID uint) error {
	c, err := st.Comments().ByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: comment not found", ErrNotFound)
	}
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return fmt.Errorf("%w: you can only change your own comments", ErrPermissionDenied)
	}
	return nil
}

func (s *CommentService) Update(ctx context.Context, id, userID uint, content string) (*models.Comment, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	var out *models.Comment
	err = s.Store.Transaction(ctx, func(tx repo.Store) error {
		if err := s.authored(ctx, tx, id, userID); err != nil {
			return err
		}
		out, err = tx.Comments().UpdateContent(ctx, id, content)
		return err
	})
	return out, err
}

func (s *CommentService) Delete(ctx context.Context, id, userID uint) error {
	return s.Store.Transaction(ctx, func(tx repo.Store) error {
		if err := s.authored(ctx, tx, id, userID); err != nil {
			return err
		}
		return tx.Comments().Delete(ctx, id)
	})
}
