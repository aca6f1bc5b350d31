package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/knowledgebase"
	"github.com/replyhub/replyhub/modules/autoreply/infrastructure/persistence/models"
	"github.com/replyhub/replyhub/pkg/composables"
)

const (
	kbFindQuery = `
		SELECT id,
		       tenant_id,
		       title,
		       facts,
		       system_prompt,
		       response_settings,
		       business_hours,
		       rules,
		       is_default,
		       total_replies,
		       successful_replies,
		       last_used,
		       created_at,
		       updated_at
		FROM knowledge_bases`

	kbInsertQuery = `
		INSERT INTO knowledge_bases (
			id, tenant_id, title, facts, system_prompt, response_settings,
			business_hours, rules, is_default, total_replies, successful_replies,
			last_used, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	kbUpdateQuery = `
		UPDATE knowledge_bases
		SET title = $1,
		    facts = $2,
		    system_prompt = $3,
		    response_settings = $4,
		    business_hours = $5,
		    rules = $6,
		    is_default = $7,
		    updated_at = $8
		WHERE id = $9 AND tenant_id = $10`

	kbDeleteQuery = `DELETE FROM knowledge_bases WHERE id = $1 AND tenant_id = $2`

	kbUnsetDefaultQuery = `UPDATE knowledge_bases SET is_default = false WHERE tenant_id = $1 AND is_default`

	kbSetDefaultQuery = `UPDATE knowledge_bases SET is_default = true, updated_at = now() WHERE id = $1 AND tenant_id = $2`

	kbIncrementQuery = `
		UPDATE knowledge_bases
		SET total_replies = total_replies + 1,
		    successful_replies = successful_replies + $1,
		    last_used = now()
		WHERE id = $2 AND tenant_id = $3`
)

type PgKnowledgeBaseRepository struct{}

func NewKnowledgeBaseRepository() knowledgebase.Repository {
	return &PgKnowledgeBaseRepository{}
}

func (r *PgKnowledgeBaseRepository) GetByID(ctx context.Context, id uuid.UUID) (knowledgebase.KnowledgeBase, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	kbs, err := r.queryKnowledgeBases(ctx, kbFindQuery+" WHERE id = $1 AND tenant_id = $2", id.String(), tenantID.String())
	if err != nil {
		return nil, err
	}
	if len(kbs) == 0 {
		return nil, knowledgebase.ErrNotFound
	}
	return kbs[0], nil
}

func (r *PgKnowledgeBaseRepository) GetDefault(ctx context.Context) (knowledgebase.KnowledgeBase, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	kbs, err := r.queryKnowledgeBases(ctx, kbFindQuery+" WHERE tenant_id = $1 AND is_default", tenantID.String())
	if err != nil {
		return nil, err
	}
	if len(kbs) == 0 {
		return nil, knowledgebase.ErrNoDefault
	}
	return kbs[0], nil
}

func (r *PgKnowledgeBaseRepository) Save(ctx context.Context, kb knowledgebase.KnowledgeBase) (knowledgebase.KnowledgeBase, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	m, err := ToDBKnowledgeBase(kb)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize knowledge base")
	}
	var exists bool
	if err := tx.QueryRow(
		ctx,
		"SELECT EXISTS (SELECT 1 FROM knowledge_bases WHERE id = $1 AND tenant_id = $2)",
		m.ID, m.TenantID,
	).Scan(&exists); err != nil {
		return nil, errors.Wrap(err, "failed to check knowledge base existence")
	}
	if exists {
		if _, err := tx.Exec(
			ctx,
			kbUpdateQuery,
			m.Title,
			m.Facts,
			m.SystemPrompt,
			m.ResponseSettings,
			m.BusinessHours,
			m.Rules,
			m.IsDefault,
			m.UpdatedAt,
			m.ID,
			m.TenantID,
		); err != nil {
			return nil, errors.Wrap(err, "failed to update knowledge base")
		}
	} else {
		if _, err := tx.Exec(
			ctx,
			kbInsertQuery,
			m.ID,
			m.TenantID,
			m.Title,
			m.Facts,
			m.SystemPrompt,
			m.ResponseSettings,
			m.BusinessHours,
			m.Rules,
			m.IsDefault,
			m.TotalReplies,
			m.SuccessfulReplies,
			m.LastUsed,
			m.CreatedAt,
			m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to insert knowledge base")
		}
	}
	return r.GetByID(ctx, kb.ID())
}

// SetDefault clears the current default for the tenant and promotes
// the given knowledge base in the same transaction, so at most one
// default is ever visible.
func (r *PgKnowledgeBaseRepository) SetDefault(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, kbUnsetDefaultQuery, tenantID.String()); err != nil {
		return errors.Wrap(err, "failed to unset default knowledge base")
	}
	tag, err := tx.Exec(ctx, kbSetDefaultQuery, id.String(), tenantID.String())
	if err != nil {
		return errors.Wrap(err, "failed to set default knowledge base")
	}
	if tag.RowsAffected() == 0 {
		return knowledgebase.ErrNotFound
	}
	return nil
}

func (r *PgKnowledgeBaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, kbDeleteQuery, id.String(), tenantID.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete knowledge base")
	}
	if tag.RowsAffected() == 0 {
		return knowledgebase.ErrNotFound
	}
	return nil
}

func (r *PgKnowledgeBaseRepository) List(ctx context.Context) ([]knowledgebase.KnowledgeBase, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return r.queryKnowledgeBases(ctx, kbFindQuery+" WHERE tenant_id = $1 ORDER BY created_at", tenantID.String())
}

// IncrementUsage is a single atomic UPDATE so concurrent replies never
// lose counts.
func (r *PgKnowledgeBaseRepository) IncrementUsage(ctx context.Context, id uuid.UUID, success bool) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	successDelta := 0
	if success {
		successDelta = 1
	}
	tag, err := tx.Exec(ctx, kbIncrementQuery, successDelta, id.String(), tenantID.String())
	if err != nil {
		return errors.Wrap(err, "failed to increment knowledge base usage")
	}
	if tag.RowsAffected() == 0 {
		return knowledgebase.ErrNotFound
	}
	return nil
}

func (r *PgKnowledgeBaseRepository) queryKnowledgeBases(ctx context.Context, query string, args ...interface{}) ([]knowledgebase.KnowledgeBase, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query knowledge bases")
	}
	defer rows.Close()

	kbs := make([]knowledgebase.KnowledgeBase, 0)
	for rows.Next() {
		m, err := scanKnowledgeBase(rows)
		if err != nil {
			return nil, err
		}
		entity, err := ToDomainKnowledgeBase(m)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map knowledge base")
		}
		kbs = append(kbs, entity)
	}
	return kbs, rows.Err()
}

func scanKnowledgeBase(rows pgx.Rows) (models.KnowledgeBase, error) {
	var m models.KnowledgeBase
	if err := rows.Scan(
		&m.ID,
		&m.TenantID,
		&m.Title,
		&m.Facts,
		&m.SystemPrompt,
		&m.ResponseSettings,
		&m.BusinessHours,
		&m.Rules,
		&m.IsDefault,
		&m.TotalReplies,
		&m.SuccessfulReplies,
		&m.LastUsed,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return models.KnowledgeBase{}, errors.Wrap(err, "failed to scan knowledge base")
	}
	return m, nil
}
