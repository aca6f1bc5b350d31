package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/conversation"
)

type ThreadService struct {
	repo conversation.Repository
}

func NewThreadService(repo conversation.Repository) *ThreadService {
	return &ThreadService{repo: repo}
}

func (s *ThreadService) GetByID(ctx context.Context, id uuid.UUID) (conversation.Thread, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ThreadService) GetByAddress(ctx context.Context, address string) (conversation.Thread, error) {
	return s.repo.GetByAddress(ctx, address)
}

func (s *ThreadService) List(ctx context.Context) ([]conversation.Thread, error) {
	return s.repo.List(ctx)
}

func (s *ThreadService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
