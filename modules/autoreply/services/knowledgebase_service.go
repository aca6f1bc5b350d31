package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/knowledgebase"
)

type KnowledgeBaseService struct {
	repo knowledgebase.Repository
}

func NewKnowledgeBaseService(repo knowledgebase.Repository) *KnowledgeBaseService {
	return &KnowledgeBaseService{repo: repo}
}

func (s *KnowledgeBaseService) GetByID(ctx context.Context, id uuid.UUID) (knowledgebase.KnowledgeBase, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *KnowledgeBaseService) GetDefault(ctx context.Context) (knowledgebase.KnowledgeBase, error) {
	return s.repo.GetDefault(ctx)
}

func (s *KnowledgeBaseService) List(ctx context.Context) ([]knowledgebase.KnowledgeBase, error) {
	return s.repo.List(ctx)
}

func (s *KnowledgeBaseService) Save(ctx context.Context, kb knowledgebase.KnowledgeBase) (knowledgebase.KnowledgeBase, error) {
	if err := kb.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, kb)
}

func (s *KnowledgeBaseService) SetDefault(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetDefault(ctx, id)
}

// Delete refuses to remove the tenant's default knowledge base; a
// replacement must be promoted first.
func (s *KnowledgeBaseService) Delete(ctx context.Context, id uuid.UUID) error {
	kb, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if kb.IsDefault() {
		return knowledgebase.ErrDefaultUndeletable
	}
	return s.repo.Delete(ctx, id)
}

func (s *KnowledgeBaseService) IncrementUsage(ctx context.Context, id uuid.UUID, success bool) error {
	return s.repo.IncrementUsage(ctx, id, success)
}
