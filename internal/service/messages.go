package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/travel_app/internal/models"
	"github.com/Skotchmaster/travel_app/internal/repo"
	"github.com/Skotchmaster/travel_app/internal/util"
)

const (
	defaultHistoryLimit = 50
	maxContentLen       = 4000
)

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: content is required", ErrValidation)
	}
	if len(content) > maxContentLen {
		return "", fmt.Errorf("%w: content is longer than %d bytes", ErrValidation, maxContentLen)
	}
	return content, nil
}

type MessageService struct {
	Store  repo.Store
	Access *AccessControl
}

func (s *MessageService) Send(ctx context.Context, tripID, userID uint, content string) (*models.Message, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.Access.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	msg := &models.Message{TripID: tripID, UserID: userID, Content: content}
	if err := s.Store.Messages().Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) List(ctx context.Context, tripID, userID uint, page, size int) ([]models.Message, error) {
	if _, err := s.Access.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	offset, limit := util.Calculate(page, size)
	return s.Store.Messages().ListForTrip(ctx, tripID, offset, limit)
}

// History pages backwards from beforeID; zero starts from the newest message.
func (s *MessageService) History(ctx context.Context, tripID, userID, beforeID uint, limit int) ([]models.Message, error) {
	if _, err := s.Access.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > util.MaxPageSize {
		limit = defaultHistoryLimit
	}
	return s.Store.Messages().History(ctx, tripID, beforeID, limit)
}

func (s *MessageService) Search(ctx context.Context, tripID, userID uint, q string, page, size int) ([]models.Message, error) {
	if strings.TrimSpace(q) == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	if _, err := s.Access.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	offset, limit := util.Calculate(page, size)
	return s.Store.Messages().Search(ctx, tripID, q, offset, limit)
}

func (s *MessageService) authored(ctx context.Context, st repo.Store, id, userID uint) error {
	msg, err := st.Messages().ByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: message not found", ErrNotFound)
	}
	if err != nil {
		return err
	}
	if msg.UserID != userID {
		return fmt.Errorf("%w: you can only change your own messages", ErrPermissionDenied)
	}
	return nil
}

func (s *MessageService) Update(ctx context.Context, id, userID uint, content string) (*models.Message, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	var out *models.Message
	err = s.Store.Transaction(ctx, func(tx repo.Store) error {
		if err := s.authored(ctx, tx, id, userID); err != nil {
			return err
		}
		out, err = tx.Messages().UpdateContent(ctx, id, content)
		return err
	})
	return out, err
}

func (s *MessageService) Delete(ctx context.Context, id, userID uint) error {
	return s.Store.Transaction(ctx, func(tx repo.Store) error {
		if err := s.authored(ctx, tx, id, userID); err != nil {
			return err
		}
		return tx.Messages().Delete(ctx, id)
	})
}
