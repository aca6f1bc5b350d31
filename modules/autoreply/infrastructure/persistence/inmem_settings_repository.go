package persistence

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/settings"
)

type InmemSettingsRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]settings.Settings
}

func NewInmemSettingsRepository() settings.Repository {
	return &InmemSettingsRepository{
		items: map[uuid.UUID]settings.Settings{},
	}
}

func (r *InmemSettingsRepository) GetByOwner(_ context.Context, ownerType settings.OwnerType, ownerID uuid.UUID) (settings.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.items {
		if s.OwnerType() == ownerType && s.OwnerID() == ownerID {
			return s, nil
		}
	}
	return nil, settings.ErrNotFound
}

func (r *InmemSettingsRepository) GetDefault(_ context.Context, ownerType settings.OwnerType) (settings.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.items {
		if s.OwnerType() == ownerType && s.IsDefault() {
			return s, nil
		}
	}
	return nil, settings.ErrNoDefault
}

func (r *InmemSettingsRepository) Save(_ context.Context, s settings.Settings) (settings.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[s.ID()] = s
	return s, nil
}

func (r *InmemSettingsRepository) SetDefault(_ context.Context, ownerType settings.OwnerType, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.items[id]
	if !ok || target.OwnerType() != ownerType {
		return settings.ErrNotFound
	}
	// Only records whose flag actually flips get their version bumped,
	// matching the row set the SQL backend touches.
	for sID, s := range r.items {
		if s.OwnerType() != ownerType || s.IsDefault() == (sID == id) {
			continue
		}
		r.items[sID] = s.SetIsDefault(sID == id)
	}
	return nil
}

func (r *InmemSettingsRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return settings.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
