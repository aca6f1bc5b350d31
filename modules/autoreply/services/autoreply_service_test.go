package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/conversation"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/knowledgebase"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/settings"
	"github.com/replyhub/replyhub/modules/autoreply/infrastructure/llm"
	"github.com/replyhub/replyhub/modules/autoreply/infrastructure/persistence"
	"github.com/replyhub/replyhub/modules/autoreply/services"
	"github.com/replyhub/replyhub/pkg/composables"
	"github.com/replyhub/replyhub/pkg/eventbus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (p *fakeProvider) Complete(_ context.Context, _ string, _ llm.Options) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []string
}

func (d *fakeDispatcher) Send(_ context.Context, destination, text string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, text)
	return "delivery-" + destination, nil
}

func (d *fakeDispatcher) sentCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

type engineFixture struct {
	ctx        context.Context
	tenantID   uuid.UUID
	engine     *services.AutoReplyService
	kbs        *services.KnowledgeBaseService
	settings   *services.SettingsService
	threads    conversation.Repository
	provider   *fakeProvider
	dispatcher *fakeDispatcher
}

func setupEngine(t *testing.T) *engineFixture {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	tenantID := uuid.New()
	ctx := composables.WithLogger(context.Background(), logrus.NewEntry(logger))
	ctx = composables.WithTenantID(ctx, tenantID)

	settingsSvc := services.NewSettingsService(persistence.NewInmemSettingsRepository())
	kbSvc := services.NewKnowledgeBaseService(persistence.NewInmemKnowledgeBaseRepository())
	threads := persistence.NewInmemThreadRepository()
	provider := &fakeProvider{reply: "Generated reply"}
	dispatcher := &fakeDispatcher{}

	engine := services.NewAutoReplyService(
		settingsSvc, kbSvc, threads, provider, dispatcher,
		eventbus.NewEventPublisher(logger),
	)
	return &engineFixture{
		ctx:        ctx,
		tenantID:   tenantID,
		engine:     engine,
		kbs:        kbSvc,
		settings:   settingsSvc,
		threads:    threads,
		provider:   provider,
		dispatcher: dispatcher,
	}
}

func (f *engineFixture) seedKB(t *testing.T, opts ...knowledgebase.Option) knowledgebase.KnowledgeBase {
	t.Helper()
	opts = append([]knowledgebase.Option{knowledgebase.WithIsDefault(true)}, opts...)
	kb, err := f.kbs.Save(f.ctx, knowledgebase.New(f.tenantID, "FAQ", opts...))
	require.NoError(t, err)
	return kb
}

func (f *engineFixture) inbound(text string) conversation.InboundMessage {
	return conversation.InboundMessage{
		ID:            uuid.NewString(),
		TenantID:      f.tenantID,
		SenderAddress: "+15550001111",
		SenderName:    "Dana",
		Text:          text,
		ReceivedAt:    time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), // Monday noon
	}
}

func weekdaySchedule(afterHoursMsg string) knowledgebase.Schedule {
	days := make([]knowledgebase.DaySchedule, 0, 5)
	for d := time.Monday; d <= time.Friday; d++ {
		days = append(days, knowledgebase.DaySchedule{Day: d, Start: "09:00", End: "18:00", IsActive: true})
	}
	return knowledgebase.Schedule{
		Enabled:           true,
		Timezone:          "UTC",
		Days:              days,
		AfterHoursMessage: afterHoursMsg,
	}
}

func TestEngine_NoKnowledgeBase(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)

	decision, err := f.engine.HandleInbound(f.ctx, f.inbound("hello"))
	require.NoError(t, err)
	assert.Equal(t, conversation.DecisionNoKnowledgeBase, decision.Kind)
	assert.False(t, decision.ShouldReply())
	assert.Zero(t, f.provider.callCount())
}

func TestEngine_AutoReplyDisabled(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	f.seedKB(t, knowledgebase.WithResponseSettings(knowledgebase.ResponseSettings{
		MaxLength: 500,
		Tone:      knowledgebase.ToneFriendly,
	}))

	decision, err := f.engine.HandleInbound(f.ctx, f.inbound("hello"))
	require.NoError(t, err)
	assert.Equal(t, conversation.DecisionAutoReplyDisabled, decision.Kind)
	assert.False(t, decision.ShouldReply())
	assert.Zero(t, f.provider.callCount())
}

func TestEngine_AfterHours(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	f.seedKB(t, knowledgebase.WithSchedule(weekdaySchedule("We are closed, back at 9am.")))

	msg := f.inbound("hello")
	msg.ReceivedAt = time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC) // Monday 8pm
	decision, err := f.engine.HandleInbound(f.ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, conversation.DecisionAfterHours, decision.Kind)
	assert.Equal(t, "We are closed, back at 9am.", decision.Message)
	assert.True(t, decision.IsAutoReply)
}

// A matching rule never overrides the closed-hours reply; schedule
// gating runs first.
func TestEngine_AfterHoursPrecedesRules(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	f.seedKB(t,
		knowledgebase.WithSchedule(weekdaySchedule("Closed.")),
		knowledgebase.WithRules([]knowledgebase.Rule{{
			ID:        uuid.New(),
			Trigger:   "hello",
			Condition: knowledgebase.ConditionContains,
			Response:  "Hi there!",
			Priority:  10,
			IsActive:  true,
		}}),
	)

	msg := f.inbound("hello")
	msg.ReceivedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) // Sunday
	decision, err := f.engine.HandleInbound(f.ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, conversation.DecisionAfterHours, decision.Kind)
	assert.Equal(t, "Closed.", decision.Message)
}

func TestEngine_RuleMatched(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	ruleID := uuid.New()
	f.seedKB(t, knowledgebase.WithRules([]knowledgebase.Rule{{
		ID:        ruleID,
		Trigger:   "pricing",
		Condition: knowledgebase.ConditionContains,
		Response:  "Plans start at $20.",
		Priority:  5,
		IsActive:  true,
	}}))

	decision, err := f.engine.HandleInbound(f.ctx, f.inbound("What is your PRICING?"))
	require.NoError(t, err)
	assert.Equal(t, conversation.DecisionRuleMatched, decision.Kind)
	assert.Equal(t, "Plans start at $20.", decision.Message)
	require.NotNil(t, decision.MatchedRuleID)
	assert.Equal(t, ruleID, *decision.MatchedRuleID)
	assert.Zero(t, f.provider.callCount())
}

func TestEngine_Generated(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	f.seedKB(t)
	f.provider.reply = "We offer yoga classes every evening."

	decision, err := f.engine.HandleInbound(f.ctx, f.inbound("Do you have yoga?"))
	require.NoError(t, err)
	assert.Equal(t, conversation.DecisionGenerated, decision.Kind)
	assert.Equal(t, "We offer yoga classes every evening.", decision.Message)
	assert.True(t, decision.IsAutoReply)
	assert.Equal(t, 1, f.provider.callCount())
}

func TestEngine_GenerationFailed(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	kb := f.seedKB(t)
	f.provider.err = errors.New("upstream timeout")

	_, err := f.engine.HandleInbound(f.ctx, f.inbound("Do you have yoga?"))
	require.ErrorIs(t, err, services.ErrGenerationFailed)

	// The failed attempt still counts against usage.
	got, err := f.kbs.GetByID(f.ctx, kb.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Stats().TotalReplies)
	assert.Equal(t, int64(0), got.Stats().SuccessfulReplies)
}

func TestEngine_EmptyCompletionIsGenerationFailure(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	f.seedKB(t)
	f.provider.reply = ""

	_, err := f.engine.HandleInbound(f.ctx, f.inbound("hi"))
	require.ErrorIs(t, err, services.ErrGenerationFailed)
}

func TestEngine_UsesEffectiveConfigOverlay(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	f.seedKB(t)

	// The coach opts out of the default rules section with own rules.
	rec, err := f.settings.GetOrCreate(f.ctx, settings.OwnerCoach, f.tenantID)
	require.NoError(t, err)
	cfg := rec.Config().Clone()
	cfg.AutoReplyRules.UseDefault = false
	cfg.AutoReplyRules.Rules = []knowledgebase.Rule{{
		ID:        uuid.New(),
		Trigger:   "hours",
		Condition: knowledgebase.ConditionContains,
		Response:  "Open 9 to 6, Monday to Friday.",
		Priority:  1,
		IsActive:  true,
	}}
	_, err = f.settings.Save(f.ctx, rec.SetConfig(cfg))
	require.NoError(t, err)

	decision, err := f.engine.HandleInbound(f.ctx, f.inbound("what are your hours?"))
	require.NoError(t, err)
	assert.Equal(t, conversation.DecisionRuleMatched, decision.Kind)
	assert.Equal(t, "Open 9 to 6, Monday to Friday.", decision.Message)
}

func TestEngine_DisabledViaSectionOverride(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	f.seedKB(t)

	rec, err := f.settings.GetOrCreate(f.ctx, settings.OwnerCoach, f.tenantID)
	require.NoError(t, err)
	cfg := rec.Config().Clone()
	cfg.AIKnowledge.UseDefault = false
	cfg.AIKnowledge.ResponseSettings = knowledgebase.ResponseSettings{
		MaxLength: 500,
		Tone:      knowledgebase.ToneFriendly,
	}
	_, err = f.settings.Save(f.ctx, rec.SetConfig(cfg))
	require.NoError(t, err)

	decision, err := f.engine.HandleInbound(f.ctx, f.inbound("hello"))
	require.NoError(t, err)
	assert.Equal(t, conversation.DecisionAutoReplyDisabled, decision.Kind)
}

// A field-level customization changes engine behavior even while the
// section itself still follows the defaults.
func TestEngine_DisabledViaCustomization(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	f.seedKB(t)
	f.provider.reply = "generated anyway"

	_, err := f.settings.AddCustomization(
		f.ctx, settings.OwnerCoach, f.tenantID,
		"aiKnowledge.responseSettings.autoReplyEnabled", false,
	)
	require.NoError(t, err)

	decision, err := f.engine.HandleInbound(f.ctx, f.inbound("hello"))
	require.NoError(t, err)
	assert.Equal(t, conversation.DecisionAutoReplyDisabled, decision.Kind)
	assert.Zero(t, f.provider.callCount())
}

func TestEngine_CustomizedAfterHoursMessage(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	f.seedKB(t, knowledgebase.WithSchedule(weekdaySchedule("Closed.")))

	_, err := f.settings.AddCustomization(
		f.ctx, settings.OwnerCoach, f.tenantID,
		"businessHours.afterHoursMessage", "Namaste, back tomorrow at 9.",
	)
	require.NoError(t, err)

	msg := f.inbound("hello")
	msg.ReceivedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) // Sunday
	decision, err := f.engine.HandleInbound(f.ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, conversation.DecisionAfterHours, decision.Kind)
	assert.Equal(t, "Namaste, back tomorrow at 9.", decision.Message)
}

// Removing the customization restores the knowledge base behavior.
func TestEngine_RemovedCustomizationRestoresDefaults(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	f.seedKB(t)

	_, err := f.settings.AddCustomization(
		f.ctx, settings.OwnerCoach, f.tenantID,
		"aiKnowledge.responseSettings.autoReplyEnabled", false,
	)
	require.NoError(t, err)
	_, err = f.settings.RemoveCustomization(
		f.ctx, settings.OwnerCoach, f.tenantID,
		"aiKnowledge.responseSettings.autoReplyEnabled",
	)
	require.NoError(t, err)

	decision, err := f.engine.HandleInbound(f.ctx, f.inbound("hello"))
	require.NoError(t, err)
	assert.Equal(t, conversation.DecisionGenerated, decision.Kind)
}

func TestEngine_RecordsConversationAndStats(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	kb := f.seedKB(t)
	f.provider.reply = "Sure, see you at 6pm."

	msg := f.inbound("Can I come tonight?")
	decision, err := f.engine.HandleInbound(f.ctx, msg)
	require.NoError(t, err)
	require.True(t, decision.ShouldReply())

	thread, err := f.threads.GetByAddress(f.ctx, msg.SenderAddress)
	require.NoError(t, err)
	messages := thread.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, conversation.RoleCustomer, messages[0].Role())
	assert.Equal(t, "Can I come tonight?", messages[0].Text())
	assert.Equal(t, conversation.RoleAssistant, messages[1].Role())
	assert.Equal(t, "Sure, see you at 6pm.", messages[1].Text())

	got, err := f.kbs.GetByID(f.ctx, kb.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Stats().TotalReplies)
	assert.Equal(t, int64(1), got.Stats().SuccessfulReplies)

	assert.Eventually(t, func() bool {
		return f.dispatcher.sentCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestEngine_ReinvocationIsDeterministic(t *testing.T) {
	t.Parallel()
	f := setupEngine(t)
	ruleID := uuid.New()
	f.seedKB(t, knowledgebase.WithRules([]knowledgebase.Rule{{
		ID:        ruleID,
		Trigger:   "pricing",
		Condition: knowledgebase.ConditionEquals,
		Response:  "From $20.",
		Priority:  1,
		IsActive:  true,
	}}))

	msg := f.inbound("pricing")
	first, err := f.engine.HandleInbound(f.ctx, msg)
	require.NoError(t, err)
	second, err := f.engine.HandleInbound(f.ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, first.Kind, second.Kind)
	assert.Equal(t, first.Message, second.Message)
}

func TestEngine_PublishesDecisionEvent(t *testing.T) {
	t.Parallel()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	tenantID := uuid.New()
	ctx := composables.WithLogger(context.Background(), logrus.NewEntry(logger))
	ctx = composables.WithTenantID(ctx, tenantID)

	bus := eventbus.NewEventPublisher(logger)
	var mu sync.Mutex
	var events []services.ReplyDecisionEvent
	bus.Subscribe(func(e services.ReplyDecisionEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	kbSvc := services.NewKnowledgeBaseService(persistence.NewInmemKnowledgeBaseRepository())
	engine := services.NewAutoReplyService(
		services.NewSettingsService(persistence.NewInmemSettingsRepository()),
		kbSvc,
		persistence.NewInmemThreadRepository(),
		&fakeProvider{reply: "ok"},
		&fakeDispatcher{},
		bus,
	)
	_, err := kbSvc.Save(ctx, knowledgebase.New(tenantID, "FAQ", knowledgebase.WithIsDefault(true)))
	require.NoError(t, err)

	msg := conversation.InboundMessage{
		ID:            "msg-1",
		TenantID:      tenantID,
		SenderAddress: "+15550001111",
		Text:          "hi",
		ReceivedAt:    time.Now(),
	}
	_, err = engine.HandleInbound(ctx, msg)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, "msg-1", events[0].MessageID)
	assert.Equal(t, conversation.DecisionGenerated, events[0].Decision.Kind)
}
