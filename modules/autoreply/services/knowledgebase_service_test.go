package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/knowledgebase"
	"github.com/replyhub/replyhub/modules/autoreply/infrastructure/persistence"
	"github.com/replyhub/replyhub/modules/autoreply/services"
	"github.com/replyhub/replyhub/pkg/composables"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupKnowledgeBaseService(t *testing.T) (context.Context, uuid.UUID, *services.KnowledgeBaseService) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	tenantID := uuid.New()
	ctx := composables.WithLogger(context.Background(), logrus.NewEntry(logger))
	ctx = composables.WithTenantID(ctx, tenantID)
	return ctx, tenantID, services.NewKnowledgeBaseService(persistence.NewInmemKnowledgeBaseRepository())
}

func TestKnowledgeBaseService_SaveAndGet(t *testing.T) {
	t.Parallel()
	ctx, tenantID, svc := setupKnowledgeBaseService(t)

	kb, err := svc.Save(ctx, knowledgebase.New(tenantID, "Studio FAQ"))
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, kb.ID())
	require.NoError(t, err)
	assert.Equal(t, "Studio FAQ", got.Title())
}

func TestKnowledgeBaseService_Save_RejectsOverlongSystemPrompt(t *testing.T) {
	t.Parallel()
	ctx, tenantID, svc := setupKnowledgeBaseService(t)

	kb := knowledgebase.New(tenantID, "FAQ",
		knowledgebase.WithSystemPrompt(strings.Repeat("x", knowledgebase.MaxSystemPromptLength+1)),
	)
	_, err := svc.Save(ctx, kb)
	require.ErrorIs(t, err, knowledgebase.ErrSystemPromptTooLong)
}

func TestKnowledgeBaseService_SetDefault_IsExclusive(t *testing.T) {
	t.Parallel()
	ctx, tenantID, svc := setupKnowledgeBaseService(t)

	first, err := svc.Save(ctx, knowledgebase.New(tenantID, "first", knowledgebase.WithIsDefault(true)))
	require.NoError(t, err)
	second, err := svc.Save(ctx, knowledgebase.New(tenantID, "second"))
	require.NoError(t, err)

	require.NoError(t, svc.SetDefault(ctx, second.ID()))

	def, err := svc.GetDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID(), def.ID())

	demoted, err := svc.GetByID(ctx, first.ID())
	require.NoError(t, err)
	assert.False(t, demoted.IsDefault())
}

func TestKnowledgeBaseService_Delete_GuardsDefault(t *testing.T) {
	t.Parallel()
	ctx, tenantID, svc := setupKnowledgeBaseService(t)

	kb, err := svc.Save(ctx, knowledgebase.New(tenantID, "FAQ", knowledgebase.WithIsDefault(true)))
	require.NoError(t, err)

	err = svc.Delete(ctx, kb.ID())
	require.ErrorIs(t, err, knowledgebase.ErrDefaultUndeletable)

	other, err := svc.Save(ctx, knowledgebase.New(tenantID, "other"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, other.ID()))
}

func TestKnowledgeBaseService_IncrementUsage(t *testing.T) {
	t.Parallel()
	ctx, tenantID, svc := setupKnowledgeBaseService(t)

	kb, err := svc.Save(ctx, knowledgebase.New(tenantID, "FAQ"))
	require.NoError(t, err)

	require.NoError(t, svc.IncrementUsage(ctx, kb.ID(), true))
	require.NoError(t, svc.IncrementUsage(ctx, kb.ID(), false))

	got, err := svc.GetByID(ctx, kb.ID())
	require.NoError(t, err)
	stats := got.Stats()
	assert.Equal(t, int64(2), stats.TotalReplies)
	assert.Equal(t, int64(1), stats.SuccessfulReplies)
	assert.InDelta(t, 50.0, stats.SuccessRate(), 0.001)
	require.NotNil(t, stats.LastUsed)
}

func TestKnowledgeBaseService_TenantIsolation(t *testing.T) {
	t.Parallel()
	ctx, tenantID, svc := setupKnowledgeBaseService(t)

	kb, err := svc.Save(ctx, knowledgebase.New(tenantID, "FAQ", knowledgebase.WithIsDefault(true)))
	require.NoError(t, err)

	otherCtx := composables.WithTenantID(ctx, uuid.New())
	_, err = svc.GetByID(otherCtx, kb.ID())
	assert.ErrorIs(t, err, knowledgebase.ErrNotFound)
	_, err = svc.GetDefault(otherCtx)
	assert.ErrorIs(t, err, knowledgebase.ErrNoDefault)
}
