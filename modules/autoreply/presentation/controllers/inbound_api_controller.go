package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/conversation"
	"github.com/replyhub/replyhub/modules/autoreply/presentation/controllers/dtos"
	"github.com/replyhub/replyhub/modules/autoreply/services"
	"github.com/replyhub/replyhub/modules/core/domain/entities/tenant"
	coreservices "github.com/replyhub/replyhub/modules/core/services"
	"github.com/replyhub/replyhub/pkg/application"
	"github.com/replyhub/replyhub/pkg/composables"
	"github.com/sirupsen/logrus"
)

// dedupeTTL bounds how long an inbound transport message id is
// remembered for duplicate suppression.
const dedupeTTL = 24 * time.Hour

type InboundAPIControllerConfig struct {
	BasePath    string
	App         application.Application
	Middlewares []mux.MiddlewareFunc
}

// InboundAPIController accepts normalized inbound messages from
// transport adapters and runs the reply engine. Duplicate suppression
// by transport message id lives here, at the ingestion boundary.
type InboundAPIController struct {
	basePath    string
	app         application.Application
	middlewares []mux.MiddlewareFunc
}

func NewInboundAPIController(cfg InboundAPIControllerConfig) application.Controller {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api/v1/autoreply"
	}
	return &InboundAPIController{
		basePath:    basePath,
		app:         cfg.App,
		middlewares: cfg.Middlewares,
	}
}

func (c *InboundAPIController) Key() string {
	return "InboundAPIController"
}

func (c *InboundAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	for _, mw := range c.middlewares {
		router.Use(mw)
	}
	router.HandleFunc("/inbound", c.handleInbound).Methods(http.MethodPost)
	router.HandleFunc("/threads/{thread_id}", c.getThread).Methods(http.MethodGet)
}

func (c *InboundAPIController) handleInbound(w http.ResponseWriter, r *http.Request) {
	logger := composables.UseLogger(r.Context())

	var req dtos.InboundMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithError(err).Error("failed to decode request body")
		writeJSONError(w, http.StatusBadRequest, "invalid request body", dtos.ErrorCodeInvalidRequest)
		return
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil || req.MessageID == "" || strings.TrimSpace(req.Text) == "" {
		writeJSONError(w, http.StatusBadRequest, "message_id, tenant_id and text are required", dtos.ErrorCodeInvalidRequest)
		return
	}

	if !c.checkTenant(w, r, tenantID, logger) {
		return
	}

	fresh, err := c.markSeen(r.Context(), tenantID, req.MessageID)
	if err != nil {
		logger.WithError(err).Error("failed to check message for duplicates")
		writeJSONError(w, http.StatusInternalServerError, "internal error", dtos.ErrorCodeInternalServer)
		return
	}
	if !fresh {
		writeJSONError(w, http.StatusConflict, "message already processed", dtos.ErrorCodeDuplicateMessage)
		return
	}

	engine := c.app.Service(services.AutoReplyService{}).(*services.AutoReplyService)
	decision, err := engine.HandleInbound(r.Context(), conversation.InboundMessage{
		ID:            req.MessageID,
		TenantID:      tenantID,
		SenderAddress: req.SenderAddress,
		SenderName:    req.SenderName,
		Text:          req.Text,
		ReceivedAt:    time.Now(),
	})
	if err != nil {
		c.handleEngineError(w, err, logger)
		return
	}

	writeJSON(w, toDecisionResponse(decision))
}

// checkTenant rejects messages for tenants that do not exist or were
// deactivated before any dedupe state is written for them.
func (c *InboundAPIController) checkTenant(w http.ResponseWriter, r *http.Request, tenantID uuid.UUID, logger *logrus.Entry) bool {
	tenants := c.app.Service(coreservices.TenantService{}).(*coreservices.TenantService)
	tn, err := tenants.GetByID(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "unknown tenant", dtos.ErrorCodeUnknownTenant)
			return false
		}
		logger.WithError(err).Error("failed to load tenant")
		writeJSONError(w, http.StatusInternalServerError, "internal error", dtos.ErrorCodeInternalServer)
		return false
	}
	if !tn.IsActive() {
		writeJSONError(w, http.StatusForbidden, "tenant is deactivated", dtos.ErrorCodeTenantInactive)
		return false
	}
	return true
}

func (c *InboundAPIController) handleEngineError(w http.ResponseWriter, err error, logger *logrus.Entry) {
	logger.WithError(err).Error("failed to process inbound message")
	if errors.Is(err, services.ErrGenerationFailed) {
		writeJSONError(w, http.StatusBadGateway, "reply generation failed", dtos.ErrorCodeGenerationFailed)
		return
	}
	writeJSONError(w, http.StatusInternalServerError, "internal error", dtos.ErrorCodeInternalServer)
}

func (c *InboundAPIController) getThread(w http.ResponseWriter, r *http.Request) {
	logger := composables.UseLogger(r.Context())

	threadID, err := uuid.Parse(mux.Vars(r)["thread_id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid thread id", dtos.ErrorCodeInvalidRequest)
		return
	}
	tenantID, err := uuid.Parse(r.URL.Query().Get("tenant_id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "tenant_id query parameter is required", dtos.ErrorCodeInvalidRequest)
		return
	}
	ctx := composables.WithTenantID(r.Context(), tenantID)

	threadsService := c.app.Service(services.ThreadService{}).(*services.ThreadService)
	thread, err := threadsService.GetByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, conversation.ErrThreadNotFound) {
			writeJSONError(w, http.StatusNotFound, "thread not found", dtos.ErrorCodeThreadNotFound)
			return
		}
		logger.WithError(err).Error("failed to load thread")
		writeJSONError(w, http.StatusInternalServerError, "internal error", dtos.ErrorCodeInternalServer)
		return
	}

	writeJSON(w, dtos.ThreadMessagesResponse{
		ThreadID: thread.ID().String(),
		Messages: transformThreadMessages(thread.Messages()),
	})
}

// markSeen records the transport message id with SETNX; a second
// arrival within the TTL reports the message as already handled.
func (c *InboundAPIController) markSeen(ctx context.Context, tenantID uuid.UUID, messageID string) (bool, error) {
	key := "autoreply:seen:" + tenantID.String() + ":" + messageID
	return c.app.Redis().SetNX(ctx, key, 1, dedupeTTL).Result()
}

func toDecisionResponse(d conversation.Decision) dtos.DecisionResponse {
	resp := dtos.DecisionResponse{
		Kind:        string(d.Kind),
		Message:     d.Message,
		IsAutoReply: d.IsAutoReply,
		Confidence:  d.Confidence,
	}
	if d.MatchedRuleID != nil {
		resp.MatchedRuleID = d.MatchedRuleID.String()
	}
	return resp
}

func transformThreadMessages(messages []conversation.Message) []dtos.ThreadMessage {
	out := make([]dtos.ThreadMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, dtos.ThreadMessage{
			Role:      string(msg.Role()),
			Message:   msg.Text(),
			Timestamp: msg.Timestamp().Format(time.RFC3339),
		})
	}
	return out
}
