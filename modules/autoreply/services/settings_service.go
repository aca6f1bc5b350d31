package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/settings"
	"github.com/replyhub/replyhub/pkg/composables"
)

// SettingsService owns configuration records and their inheritance.
// Coach records are created lazily on first access with inheritance
// enabled and no customizations.
type SettingsService struct {
	repo settings.Repository
}

func NewSettingsService(repo settings.Repository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) GetByOwner(ctx context.Context, ownerType settings.OwnerType, ownerID uuid.UUID) (settings.Settings, error) {
	return s.repo.GetByOwner(ctx, ownerType, ownerID)
}

// GetOrCreate returns the owner's record, creating a fresh inheriting
// one on first access.
func (s *SettingsService) GetOrCreate(ctx context.Context, ownerType settings.OwnerType, ownerID uuid.UUID) (settings.Settings, error) {
	rec, err := s.repo.GetByOwner(ctx, ownerType, ownerID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, settings.ErrNotFound) {
		return nil, err
	}
	return s.repo.Save(ctx, settings.New(ownerType, ownerID))
}

func (s *SettingsService) GetDefault(ctx context.Context, ownerType settings.OwnerType) (settings.Settings, error) {
	return s.repo.GetDefault(ctx, ownerType)
}

func (s *SettingsService) Save(ctx context.Context, rec settings.Settings) (settings.Settings, error) {
	return s.repo.Save(ctx, rec)
}

// Resolve computes the effective configuration for the owner. A
// missing parent falls back to the record itself and is logged as a
// warning, not an error.
func (s *SettingsService) Resolve(ctx context.Context, ownerType settings.OwnerType, ownerID uuid.UUID) (settings.Effective, error) {
	rec, err := s.GetOrCreate(ctx, ownerType, ownerID)
	if err != nil {
		return settings.Effective{}, err
	}
	effective := settings.Resolve(ctx, rec, s.parentLookup)
	if effective.ParentMissing {
		composables.UseLogger(ctx).WithField("owner_id", ownerID).
			Warn("no parent configuration found, using own record")
	}
	return effective, nil
}

// AddCustomization validates the field path and value before anything
// is persisted, then upserts the customization entry and saves the
// bumped record.
func (s *SettingsService) AddCustomization(ctx context.Context, ownerType settings.OwnerType, ownerID uuid.UUID, fieldPath string, value interface{}) (settings.Settings, error) {
	ref, err := settings.ParseFieldRef(fieldPath)
	if err != nil {
		return nil, err
	}
	var scratch settings.Config
	if err := ref.Set(&scratch, value); err != nil {
		return nil, err
	}
	rec, err := s.GetOrCreate(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, rec.UpsertCustomization(ref, value))
}

// RemoveCustomization deletes the entry for the path. The live view
// is recomputed by Resolve, so nothing else needs resetting.
func (s *SettingsService) RemoveCustomization(ctx context.Context, ownerType settings.OwnerType, ownerID uuid.UUID, fieldPath string) (settings.Settings, error) {
	ref, err := settings.ParseFieldRef(fieldPath)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, rec.RemoveCustomization(ref))
}

func (s *SettingsService) SetDefault(ctx context.Context, ownerType settings.OwnerType, id uuid.UUID) error {
	return s.repo.SetDefault(ctx, ownerType, id)
}

func (s *SettingsService) SetInheritanceEnabled(ctx context.Context, ownerType settings.OwnerType, ownerID uuid.UUID, enabled bool) (settings.Settings, error) {
	rec, err := s.GetOrCreate(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, rec.SetInheritanceEnabled(enabled))
}

func (s *SettingsService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// parentLookup resolves the inheritance source. Admin defaults come
// from the repository; coach hierarchies are not modeled here, so
// parent_coach also falls back to the admin default record.
func (s *SettingsService) parentLookup(ctx context.Context, source settings.InheritSource) (settings.Settings, error) {
	return s.repo.GetDefault(ctx, settings.OwnerAdmin)
}
