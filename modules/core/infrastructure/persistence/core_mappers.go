package persistence

import (
	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/core/domain/entities/tenant"
	"github.com/replyhub/replyhub/modules/core/infrastructure/persistence/models"
)

func ToDomainTenant(m models.Tenant) (*tenant.Tenant, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	return tenant.New(
		m.Name,
		tenant.WithID(id),
		tenant.WithDomain(m.Domain),
		tenant.WithKind(tenant.Kind(m.Kind)),
		tenant.WithIsActive(m.IsActive),
		tenant.WithCreatedAt(m.CreatedAt),
		tenant.WithUpdatedAt(m.UpdatedAt),
	), nil
}

func ToDBTenant(t *tenant.Tenant) models.Tenant {
	return models.Tenant{
		ID:        t.ID().String(),
		Name:      t.Name(),
		Domain:    t.Domain(),
		Kind:      string(t.Kind()),
		IsActive:  t.IsActive(),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
}
