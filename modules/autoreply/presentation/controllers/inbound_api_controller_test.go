package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/conversation"
	"github.com/replyhub/replyhub/modules/autoreply/presentation/controllers/dtos"
	"github.com/replyhub/replyhub/modules/core/domain/entities/tenant"
	corepersistence "github.com/replyhub/replyhub/modules/core/infrastructure/persistence"
	coreservices "github.com/replyhub/replyhub/modules/core/services"
	"github.com/replyhub/replyhub/pkg/application"
	"github.com/replyhub/replyhub/pkg/middleware"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupInboundRouter(t *testing.T) (*mux.Router, *coreservices.TenantService) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	app := application.New(&application.ApplicationOptions{Logger: logger})
	tenants := coreservices.NewTenantService(corepersistence.NewInmemTenantRepository())
	app.RegisterServices(tenants)

	router := mux.NewRouter()
	NewInboundAPIController(InboundAPIControllerConfig{
		App:         app,
		Middlewares: []mux.MiddlewareFunc{middleware.WithLogger(logger)},
	}).Register(router)
	return router, tenants
}

func postInbound(t *testing.T, router *mux.Router, tenantID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"message_id":"msg-1","tenant_id":"` + tenantID.String() + `","sender_address":"+15550001111","text":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/autoreply/inbound", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleInbound_UnknownTenant(t *testing.T) {
	t.Parallel()
	router, _ := setupInboundRouter(t)

	rec := postInbound(t, router, uuid.New())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp dtos.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dtos.ErrorCodeUnknownTenant, resp.Code)
}

func TestHandleInbound_InactiveTenant(t *testing.T) {
	t.Parallel()
	router, tenants := setupInboundRouter(t)

	inactive, err := tenants.Create(context.Background(), tenant.New("Dormant Gym", tenant.WithIsActive(false)))
	require.NoError(t, err)

	rec := postInbound(t, router, inactive.ID())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp dtos.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dtos.ErrorCodeTenantInactive, resp.Code)
}

func TestToDecisionResponse(t *testing.T) {
	t.Parallel()

	ruleID := uuid.New()
	resp := toDecisionResponse(conversation.Decision{
		Kind:          conversation.DecisionRuleMatched,
		Message:       "Plans start at $20.",
		IsAutoReply:   true,
		MatchedRuleID: &ruleID,
	})
	assert.Equal(t, "rule_matched", resp.Kind)
	assert.Equal(t, "Plans start at $20.", resp.Message)
	assert.Equal(t, ruleID.String(), resp.MatchedRuleID)
	assert.Nil(t, resp.Confidence)

	empty := toDecisionResponse(conversation.Decision{Kind: conversation.DecisionNoKnowledgeBase})
	assert.Equal(t, "no_knowledge_base", empty.Kind)
	assert.Empty(t, empty.MatchedRuleID)
}

func TestTransformThreadMessages(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	inbound, err := conversation.NewMessage(conversation.RoleCustomer, "hi", ts)
	require.NoError(t, err)

	out := transformThreadMessages([]conversation.Message{inbound})
	require.Len(t, out, 1)
	assert.Equal(t, "customer", out[0].Role)
	assert.Equal(t, "hi", out[0].Message)
	assert.Equal(t, "2025-06-02T12:00:00Z", out[0].Timestamp)
}
