package persistence

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/conversation"
	"github.com/replyhub/replyhub/pkg/composables"
)

type InmemThreadRepository struct {
	mu      sync.RWMutex
	threads map[uuid.UUID]conversation.Thread
}

func NewInmemThreadRepository() conversation.Repository {
	return &InmemThreadRepository{
		threads: map[uuid.UUID]conversation.Thread{},
	}
}

func (r *InmemThreadRepository) GetByID(ctx context.Context, id uuid.UUID) (conversation.Thread, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.threads[id]
	if !ok || t.TenantID() != tenantID {
		return nil, conversation.ErrThreadNotFound
	}
	return t, nil
}

func (r *InmemThreadRepository) GetByAddress(ctx context.Context, address string) (conversation.Thread, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.threads {
		if t.TenantID() == tenantID && t.Address() == address {
			return t, nil
		}
	}
	return nil, conversation.ErrThreadNotFound
}

func (r *InmemThreadRepository) Save(ctx context.Context, thread conversation.Thread) (conversation.Thread, error) {
	if _, err := composables.UseTenantID(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.threads[thread.ID()] = thread
	return thread, nil
}

func (r *InmemThreadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok || t.TenantID() != tenantID {
		return conversation.ErrThreadNotFound
	}
	delete(r.threads, id)
	return nil
}

func (r *InmemThreadRepository) List(ctx context.Context) ([]conversation.Thread, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]conversation.Thread, 0, len(r.threads))
	for _, t := range r.threads {
		if t.TenantID() == tenantID {
			out = append(out, t)
		}
	}
	return out, nil
}
