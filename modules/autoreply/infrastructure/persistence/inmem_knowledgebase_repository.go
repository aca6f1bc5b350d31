package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/knowledgebase"
	"github.com/replyhub/replyhub/pkg/composables"
)

// InmemKnowledgeBaseRepository mirrors the Postgres repository's
// tenant scoping and default semantics so services behave the same
// against either backend.
type InmemKnowledgeBaseRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]knowledgebase.KnowledgeBase
}

func NewInmemKnowledgeBaseRepository() knowledgebase.Repository {
	return &InmemKnowledgeBaseRepository{
		items: map[uuid.UUID]knowledgebase.KnowledgeBase{},
	}
}

func (r *InmemKnowledgeBaseRepository) GetByID(ctx context.Context, id uuid.UUID) (knowledgebase.KnowledgeBase, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	kb, ok := r.items[id]
	if !ok || kb.TenantID() != tenantID {
		return nil, knowledgebase.ErrNotFound
	}
	return kb, nil
}

func (r *InmemKnowledgeBaseRepository) GetDefault(ctx context.Context) (knowledgebase.KnowledgeBase, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, kb := range r.items {
		if kb.TenantID() == tenantID && kb.IsDefault() {
			return kb, nil
		}
	}
	return nil, knowledgebase.ErrNoDefault
}

func (r *InmemKnowledgeBaseRepository) Save(ctx context.Context, kb knowledgebase.KnowledgeBase) (knowledgebase.KnowledgeBase, error) {
	if _, err := composables.UseTenantID(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[kb.ID()] = kb
	return kb, nil
}

func (r *InmemKnowledgeBaseRepository) SetDefault(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.items[id]
	if !ok || target.TenantID() != tenantID {
		return knowledgebase.ErrNotFound
	}
	for kbID, kb := range r.items {
		if kb.TenantID() != tenantID {
			continue
		}
		r.items[kbID] = rebuildWithDefault(kb, kbID == id)
	}
	return nil
}

func (r *InmemKnowledgeBaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kb, ok := r.items[id]
	if !ok || kb.TenantID() != tenantID {
		return knowledgebase.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *InmemKnowledgeBaseRepository) List(ctx context.Context) ([]knowledgebase.KnowledgeBase, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]knowledgebase.KnowledgeBase, 0, len(r.items))
	for _, kb := range r.items {
		if kb.TenantID() == tenantID {
			out = append(out, kb)
		}
	}
	return out, nil
}

func (r *InmemKnowledgeBaseRepository) IncrementUsage(ctx context.Context, id uuid.UUID, success bool) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kb, ok := r.items[id]
	if !ok || kb.TenantID() != tenantID {
		return knowledgebase.ErrNotFound
	}
	stats := kb.Stats()
	stats.TotalReplies++
	if success {
		stats.SuccessfulReplies++
	}
	now := time.Now()
	stats.LastUsed = &now
	r.items[id] = rebuildWithStats(kb, stats)
	return nil
}

func rebuildWithDefault(kb knowledgebase.KnowledgeBase, isDefault bool) knowledgebase.KnowledgeBase {
	return knowledgebase.New(
		kb.TenantID(),
		kb.Title(),
		knowledgebase.WithID(kb.ID()),
		knowledgebase.WithFacts(kb.Facts()),
		knowledgebase.WithSystemPrompt(kb.SystemPrompt()),
		knowledgebase.WithResponseSettings(kb.ResponseSettings()),
		knowledgebase.WithSchedule(kb.Schedule()),
		knowledgebase.WithRules(kb.Rules()),
		knowledgebase.WithIsDefault(isDefault),
		knowledgebase.WithStats(kb.Stats()),
		knowledgebase.WithCreatedAt(kb.CreatedAt()),
		knowledgebase.WithUpdatedAt(kb.UpdatedAt()),
	)
}

func rebuildWithStats(kb knowledgebase.KnowledgeBase, stats knowledgebase.Stats) knowledgebase.KnowledgeBase {
	return knowledgebase.New(
		kb.TenantID(),
		kb.Title(),
		knowledgebase.WithID(kb.ID()),
		knowledgebase.WithFacts(kb.Facts()),
		knowledgebase.WithSystemPrompt(kb.SystemPrompt()),
		knowledgebase.WithResponseSettings(kb.ResponseSettings()),
		knowledgebase.WithSchedule(kb.Schedule()),
		knowledgebase.WithRules(kb.Rules()),
		knowledgebase.WithIsDefault(kb.IsDefault()),
		knowledgebase.WithStats(stats),
		knowledgebase.WithCreatedAt(kb.CreatedAt()),
		knowledgebase.WithUpdatedAt(kb.UpdatedAt()),
	)
}
