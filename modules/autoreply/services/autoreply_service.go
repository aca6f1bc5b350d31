package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/conversation"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/knowledgebase"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/settings"
	"github.com/replyhub/replyhub/modules/autoreply/infrastructure/delivery"
	"github.com/replyhub/replyhub/modules/autoreply/infrastructure/llm"
	"github.com/replyhub/replyhub/pkg/composables"
	"github.com/replyhub/replyhub/pkg/eventbus"
	"github.com/replyhub/replyhub/pkg/serrors"
	"github.com/sirupsen/logrus"
)

// ErrGenerationFailed is returned when the generation call errors,
// times out, or produces an empty reply. It is the engine's only
// error path; every other outcome is a Decision.
var ErrGenerationFailed = serrors.NewError("AUTOREPLY_GENERATION_FAILED", "reply generation failed", "")

// ReplyDecisionEvent is published after every engine run.
type ReplyDecisionEvent struct {
	TenantID  uuid.UUID
	MessageID string
	Decision  conversation.Decision
}

type AutoReplyServiceOption func(*AutoReplyService)

func WithReplyCache(cache *ReplyCache) AutoReplyServiceOption {
	return func(s *AutoReplyService) {
		s.cache = cache
	}
}

func WithDispatchTimeout(timeout time.Duration) AutoReplyServiceOption {
	return func(s *AutoReplyService) {
		s.dispatchTimeout = timeout
	}
}

// AutoReplyService runs the reply state machine for inbound messages.
// States are evaluated strictly in order and the first applicable
// outcome wins: no knowledge base, auto-reply disabled, after hours,
// rule match, generation.
type AutoReplyService struct {
	settings   *SettingsService
	kbs        *KnowledgeBaseService
	threads    conversation.Repository
	provider   llm.Provider
	dispatcher delivery.Dispatcher
	publisher  eventbus.EventBus

	cache           *ReplyCache
	dispatchTimeout time.Duration
}

func NewAutoReplyService(
	settingsService *SettingsService,
	kbService *KnowledgeBaseService,
	threads conversation.Repository,
	provider llm.Provider,
	dispatcher delivery.Dispatcher,
	publisher eventbus.EventBus,
	opts ...AutoReplyServiceOption,
) *AutoReplyService {
	s := &AutoReplyService{
		settings:        settingsService,
		kbs:             kbService,
		threads:         threads,
		provider:        provider,
		dispatcher:      dispatcher,
		publisher:       publisher,
		dispatchTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// replyView is the behavior the engine acts on: the tenant's default
// knowledge base overlaid with the effective configuration sections
// that opted out of the defaults.
type replyView struct {
	kb           knowledgebase.KnowledgeBase
	systemPrompt string
	facts        knowledgebase.BusinessFacts
	response     knowledgebase.ResponseSettings
	schedule     knowledgebase.Schedule
	rules        []knowledgebase.Rule
}

// HandleInbound runs the state machine once for one inbound message.
// It always returns a Decision except when generation itself fails;
// statistics and delivery failures are logged, never surfaced.
func (s *AutoReplyService) HandleInbound(ctx context.Context, msg conversation.InboundMessage) (conversation.Decision, error) {
	ctx = composables.WithTenantID(ctx, msg.TenantID)
	log := composables.UseLogger(ctx).WithFields(map[string]interface{}{
		"tenant_id":  msg.TenantID,
		"message_id": msg.ID,
	})

	view, found, err := s.resolveView(ctx, msg.TenantID)
	if err != nil {
		return conversation.Decision{}, err
	}
	if !found {
		return s.finish(ctx, log, msg, nil, conversation.Decision{
			Kind: conversation.DecisionNoKnowledgeBase,
		})
	}

	if !view.response.AutoReplyEnabled {
		return s.finish(ctx, log, msg, view.kb, conversation.Decision{
			Kind: conversation.DecisionAutoReplyDisabled,
		})
	}

	if view.schedule.Enabled && !view.schedule.IsOpen(msg.ReceivedAt) {
		return s.finish(ctx, log, msg, view.kb, conversation.Decision{
			Kind:        conversation.DecisionAfterHours,
			Message:     view.schedule.AfterHoursMessage,
			IsAutoReply: true,
		})
	}

	if rule, ok := knowledgebase.Match(msg.Text, view.rules); ok {
		ruleID := rule.ID
		return s.finish(ctx, log, msg, view.kb, conversation.Decision{
			Kind:          conversation.DecisionRuleMatched,
			Message:       rule.Response,
			IsAutoReply:   true,
			MatchedRuleID: &ruleID,
		})
	}

	reply, err := s.generate(ctx, view, msg)
	if err != nil {
		if statsErr := s.kbs.IncrementUsage(ctx, view.kb.ID(), false); statsErr != nil {
			log.WithError(statsErr).Warn("failed to record usage stats")
		}
		s.publisher.Publish(ReplyDecisionEvent{TenantID: msg.TenantID, MessageID: msg.ID})
		return conversation.Decision{}, ErrGenerationFailed.WithDetails(err.Error())
	}
	return s.finish(ctx, log, msg, view.kb, conversation.Decision{
		Kind:        conversation.DecisionGenerated,
		Message:     reply,
		IsAutoReply: true,
	})
}

// resolveView loads the coach's settings record and the tenant's
// default knowledge base. A missing knowledge base is a business
// outcome, not an error.
func (s *AutoReplyService) resolveView(ctx context.Context, tenantID uuid.UUID) (replyView, bool, error) {
	rec, err := s.settings.GetOrCreate(ctx, settings.OwnerCoach, tenantID)
	if err != nil {
		return replyView{}, false, err
	}
	kb, err := s.kbs.GetDefault(ctx)
	if err != nil {
		if errors.Is(err, knowledgebase.ErrNoDefault) || errors.Is(err, knowledgebase.ErrNotFound) {
			return replyView{}, false, nil
		}
		return replyView{}, false, err
	}

	// The knowledge base content takes the parent position in the
	// layering, so field customizations apply to it even for sections
	// that still follow the defaults.
	cfg := settings.ResolveAgainst(baseConfigFromKB(kb), rec)
	return replyView{
		kb:           kb,
		systemPrompt: cfg.AIKnowledge.SystemPrompt,
		facts:        cfg.AIKnowledge.Facts,
		response:     cfg.AIKnowledge.ResponseSettings,
		schedule:     cfg.BusinessHours.Schedule,
		rules:        cfg.AutoReplyRules.Rules,
	}, true, nil
}

func baseConfigFromKB(kb knowledgebase.KnowledgeBase) settings.Config {
	return settings.Config{
		AIKnowledge: settings.AIKnowledgeSection{
			UseDefault:       true,
			SystemPrompt:     kb.SystemPrompt(),
			Facts:            kb.Facts(),
			ResponseSettings: kb.ResponseSettings(),
		},
		BusinessHours: settings.BusinessHoursSection{
			UseDefault: true,
			Schedule:   kb.Schedule(),
		},
		AutoReplyRules: settings.AutoReplyRulesSection{
			UseDefault: true,
			Rules:      kb.Rules(),
		},
	}
}

func (s *AutoReplyService) generate(ctx context.Context, view replyView, msg conversation.InboundMessage) (string, error) {
	prompt := buildPrompt(promptParams{
		SystemPrompt: view.systemPrompt,
		Facts:        view.facts,
		MaxLength:    view.response.MaxLength,
		Tone:         view.response.Tone,
		SenderName:   msg.SenderName,
		MessageText:  msg.Text,
	})

	cacheKey := replyCacheKey(view.kb.ID().String(), view.kb.UpdatedAt(), prompt)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	raw, err := s.provider.Complete(ctx, prompt, llm.Options{
		Temperature: 0.7,
		MaxTokens:   completionTokenBudget(view.response.MaxLength),
	})
	if err != nil {
		return "", err
	}
	reply := postprocess(raw, view.response)
	if reply == "" {
		return "", llm.ErrEmptyCompletion
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, reply); err != nil {
			composables.UseLogger(ctx).WithError(err).Warn("failed to cache reply")
		}
	}
	return reply, nil
}

// completionTokenBudget converts the reply character limit into a
// completion token ceiling. A token averages around four characters,
// and the extra headroom lets the model finish its sentence so the
// truncation step cuts at a whitespace boundary instead of mid-word.
func completionTokenBudget(maxLength int) int64 {
	if maxLength <= 0 {
		return 256
	}
	return int64(maxLength/2 + 64)
}

// finish records side effects for a terminal state: conversation
// history, fire-and-forget delivery, best-effort stats, and the
// decision event. Side-effect failures never change the decision.
func (s *AutoReplyService) finish(
	ctx context.Context,
	log *logrus.Entry,
	msg conversation.InboundMessage,
	kb knowledgebase.KnowledgeBase,
	decision conversation.Decision,
) (conversation.Decision, error) {
	s.recordThread(ctx, msg, decision)

	if decision.ShouldReply() {
		s.dispatch(ctx, msg, decision.Message)
	}
	if kb != nil {
		if err := s.kbs.IncrementUsage(ctx, kb.ID(), decision.ShouldReply()); err != nil {
			log.WithError(err).Warn("failed to record usage stats")
		}
	}
	s.publisher.Publish(ReplyDecisionEvent{TenantID: msg.TenantID, MessageID: msg.ID, Decision: decision})
	return decision, nil
}

func (s *AutoReplyService) recordThread(ctx context.Context, msg conversation.InboundMessage, decision conversation.Decision) {
	log := composables.UseLogger(ctx)
	thread, err := s.threads.GetByAddress(ctx, msg.SenderAddress)
	if err != nil {
		if !errors.Is(err, conversation.ErrThreadNotFound) {
			log.WithError(err).Warn("failed to load conversation thread")
			return
		}
		thread = conversation.New(msg.TenantID, msg.SenderAddress, conversation.WithSenderName(msg.SenderName))
	}

	inbound, err := conversation.NewMessage(conversation.RoleCustomer, msg.Text, msg.ReceivedAt)
	if err != nil {
		log.WithError(err).Warn("failed to record inbound message")
		return
	}
	thread = thread.AppendMessage(inbound)
	if decision.ShouldReply() {
		outbound, err := conversation.NewMessage(conversation.RoleAssistant, decision.Message, time.Now())
		if err != nil {
			log.WithError(err).Warn("failed to record outbound message")
		} else {
			thread = thread.AppendMessage(outbound)
		}
	}
	if _, err := s.threads.Save(ctx, thread); err != nil {
		log.WithError(err).Warn("failed to save conversation thread")
	}
}

// dispatch hands the reply to the delivery collaborator without
// blocking the decision. The spawned context is detached from the
// request so an early client disconnect does not cancel delivery.
func (s *AutoReplyService) dispatch(ctx context.Context, msg conversation.InboundMessage, text string) {
	log := composables.UseLogger(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), s.dispatchTimeout)
		defer cancel()
		deliveryID, err := s.dispatcher.Send(sendCtx, msg.SenderAddress, text)
		if err != nil {
			log.WithError(err).WithField("destination", msg.SenderAddress).Error("failed to deliver reply")
			return
		}
		log.WithField("delivery_id", deliveryID).Debug("reply delivered")
	}()
}
