package persistence

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/core/domain/entities/tenant"
)

type InmemTenantRepository struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]*tenant.Tenant
}

func NewInmemTenantRepository() tenant.Repository {
	return &InmemTenantRepository{
		tenants: map[uuid.UUID]*tenant.Tenant{},
	}
}

func (r *InmemTenantRepository) GetByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, tenant.ErrNotFound
	}
	return t, nil
}

func (r *InmemTenantRepository) GetByDomain(_ context.Context, domain string) (*tenant.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tenants {
		if strings.EqualFold(t.Domain(), domain) {
			return t, nil
		}
	}
	return nil, tenant.ErrNotFound
}

func (r *InmemTenantRepository) Create(_ context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants[t.ID()] = t
	return t, nil
}

func (r *InmemTenantRepository) Update(_ context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[t.ID()]; !ok {
		return nil, tenant.ErrNotFound
	}
	r.tenants[t.ID()] = t
	return t, nil
}

func (r *InmemTenantRepository) List(_ context.Context) ([]*tenant.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*tenant.Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		out = append(out, t)
	}
	return out, nil
}
