package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/settings"
	"github.com/replyhub/replyhub/modules/autoreply/infrastructure/persistence/models"
	"github.com/replyhub/replyhub/pkg/composables"
)

const (
	settingsFindQuery = `
		SELECT id,
		       owner_id,
		       owner_type,
		       inheritance,
		       config,
		       is_default,
		       version,
		       created_at,
		       updated_at
		FROM autoreply_settings`

	settingsUpsertQuery = `
		INSERT INTO autoreply_settings (
			id, owner_id, owner_type, inheritance, config, is_default,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			inheritance = EXCLUDED.inheritance,
			config = EXCLUDED.config,
			is_default = EXCLUDED.is_default,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at`

	settingsDeleteQuery = `DELETE FROM autoreply_settings WHERE id = $1`

	settingsUnsetDefaultQuery = `
		UPDATE autoreply_settings
		SET is_default = false, version = version + 1, updated_at = now()
		WHERE owner_type = $1 AND is_default`

	settingsSetDefaultQuery = `
		UPDATE autoreply_settings
		SET is_default = true, version = version + 1, updated_at = now()
		WHERE id = $1 AND owner_type = $2`
)

type PgSettingsRepository struct{}

func NewSettingsRepository() settings.Repository {
	return &PgSettingsRepository{}
}

func (r *PgSettingsRepository) GetByOwner(ctx context.Context, ownerType settings.OwnerType, ownerID uuid.UUID) (settings.Settings, error) {
	records, err := r.querySettings(
		ctx,
		settingsFindQuery+" WHERE owner_type = $1 AND owner_id = $2",
		string(ownerType), ownerID.String(),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, settings.ErrNotFound
	}
	return records[0], nil
}

func (r *PgSettingsRepository) GetDefault(ctx context.Context, ownerType settings.OwnerType) (settings.Settings, error) {
	records, err := r.querySettings(
		ctx,
		settingsFindQuery+" WHERE owner_type = $1 AND is_default",
		string(ownerType),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, settings.ErrNoDefault
	}
	return records[0], nil
}

func (r *PgSettingsRepository) Save(ctx context.Context, s settings.Settings) (settings.Settings, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	m, err := ToDBSettings(s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize settings")
	}
	if _, err := tx.Exec(
		ctx,
		settingsUpsertQuery,
		m.ID,
		m.OwnerID,
		m.OwnerType,
		m.Inheritance,
		m.Config,
		m.IsDefault,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to save settings")
	}
	return r.GetByOwner(ctx, s.OwnerType(), s.OwnerID())
}

// SetDefault demotes the current default for the owner type and
// promotes the given record in one transaction.
func (r *PgSettingsRepository) SetDefault(ctx context.Context, ownerType settings.OwnerType, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, settingsUnsetDefaultQuery, string(ownerType)); err != nil {
		return errors.Wrap(err, "failed to unset default settings")
	}
	tag, err := tx.Exec(ctx, settingsSetDefaultQuery, id.String(), string(ownerType))
	if err != nil {
		return errors.Wrap(err, "failed to set default settings")
	}
	if tag.RowsAffected() == 0 {
		return settings.ErrNotFound
	}
	return nil
}

func (r *PgSettingsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, settingsDeleteQuery, id.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete settings")
	}
	if tag.RowsAffected() == 0 {
		return settings.ErrNotFound
	}
	return nil
}

func (r *PgSettingsRepository) querySettings(ctx context.Context, query string, args ...interface{}) ([]settings.Settings, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query settings")
	}
	defer rows.Close()

	records := make([]settings.Settings, 0)
	for rows.Next() {
		m, err := scanSettings(rows)
		if err != nil {
			return nil, err
		}
		entity, err := ToDomainSettings(m)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map settings")
		}
		records = append(records, entity)
	}
	return records, rows.Err()
}

func scanSettings(rows pgx.Rows) (models.Settings, error) {
	var m models.Settings
	if err := rows.Scan(
		&m.ID,
		&m.OwnerID,
		&m.OwnerType,
		&m.Inheritance,
		&m.Config,
		&m.IsDefault,
		&m.Version,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return models.Settings{}, errors.Wrap(err, "failed to scan settings")
	}
	return m, nil
}
