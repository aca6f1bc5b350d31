package persistence

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/conversation"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/knowledgebase"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/settings"
	"github.com/replyhub/replyhub/modules/autoreply/infrastructure/persistence/models"
	"github.com/replyhub/replyhub/pkg/mapping"
)

func toModelFacts(f knowledgebase.BusinessFacts) models.BusinessFacts {
	return models.BusinessFacts{
		CompanyName: f.CompanyName,
		Services:    f.Services,
		Pricing:     f.Pricing,
		ContactInfo: f.ContactInfo,
	}
}

func toDomainFacts(f models.BusinessFacts) knowledgebase.BusinessFacts {
	return knowledgebase.BusinessFacts{
		CompanyName: f.CompanyName,
		Services:    f.Services,
		Pricing:     f.Pricing,
		ContactInfo: f.ContactInfo,
	}
}

func toModelResponseSettings(s knowledgebase.ResponseSettings) models.ResponseSettings {
	return models.ResponseSettings{
		MaxLength:        s.MaxLength,
		Tone:             string(s.Tone),
		IncludeEmojis:    s.IncludeEmojis,
		AutoReplyEnabled: s.AutoReplyEnabled,
	}
}

func toDomainResponseSettings(s models.ResponseSettings) knowledgebase.ResponseSettings {
	return knowledgebase.ResponseSettings{
		MaxLength:        s.MaxLength,
		Tone:             knowledgebase.Tone(s.Tone),
		IncludeEmojis:    s.IncludeEmojis,
		AutoReplyEnabled: s.AutoReplyEnabled,
	}
}

func toModelSchedule(s knowledgebase.Schedule) models.Schedule {
	days := make([]models.DaySchedule, 0, len(s.Days))
	for _, d := range s.Days {
		days = append(days, models.DaySchedule{
			Day:      int(d.Day),
			Start:    d.Start,
			End:      d.End,
			IsActive: d.IsActive,
		})
	}
	return models.Schedule{
		Enabled:           s.Enabled,
		Timezone:          s.Timezone,
		Days:              days,
		AfterHoursMessage: s.AfterHoursMessage,
	}
}

func toDomainSchedule(s models.Schedule) knowledgebase.Schedule {
	days := make([]knowledgebase.DaySchedule, 0, len(s.Days))
	for _, d := range s.Days {
		days = append(days, knowledgebase.DaySchedule{
			Day:      time.Weekday(d.Day),
			Start:    d.Start,
			End:      d.End,
			IsActive: d.IsActive,
		})
	}
	return knowledgebase.Schedule{
		Enabled:           s.Enabled,
		Timezone:          s.Timezone,
		Days:              days,
		AfterHoursMessage: s.AfterHoursMessage,
	}
}

func toModelRules(rules []knowledgebase.Rule) []models.Rule {
	out := make([]models.Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, models.Rule{
			ID:        r.ID.String(),
			Trigger:   r.Trigger,
			Condition: string(r.Condition),
			Response:  r.Response,
			Priority:  r.Priority,
			IsActive:  r.IsActive,
		})
	}
	return out
}

func toDomainRules(rules []models.Rule) ([]knowledgebase.Rule, error) {
	out := make([]knowledgebase.Rule, 0, len(rules))
	for _, r := range rules {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, knowledgebase.Rule{
			ID:        id,
			Trigger:   r.Trigger,
			Condition: knowledgebase.Condition(r.Condition),
			Response:  r.Response,
			Priority:  r.Priority,
			IsActive:  r.IsActive,
		})
	}
	return out, nil
}

func ToDBKnowledgeBase(kb knowledgebase.KnowledgeBase) (models.KnowledgeBase, error) {
	facts, err := json.Marshal(toModelFacts(kb.Facts()))
	if err != nil {
		return models.KnowledgeBase{}, err
	}
	responseSettings, err := json.Marshal(toModelResponseSettings(kb.ResponseSettings()))
	if err != nil {
		return models.KnowledgeBase{}, err
	}
	hours, err := json.Marshal(toModelSchedule(kb.Schedule()))
	if err != nil {
		return models.KnowledgeBase{}, err
	}
	rules, err := json.Marshal(toModelRules(kb.Rules()))
	if err != nil {
		return models.KnowledgeBase{}, err
	}
	stats := kb.Stats()
	return models.KnowledgeBase{
		ID:                kb.ID().String(),
		TenantID:          kb.TenantID().String(),
		Title:             kb.Title(),
		Facts:             facts,
		SystemPrompt:      kb.SystemPrompt(),
		ResponseSettings:  responseSettings,
		BusinessHours:     hours,
		Rules:             rules,
		IsDefault:         kb.IsDefault(),
		TotalReplies:      stats.TotalReplies,
		SuccessfulReplies: stats.SuccessfulReplies,
		LastUsed:          mapping.PointerToSQLNullTime(stats.LastUsed),
		CreatedAt:         kb.CreatedAt(),
		UpdatedAt:         kb.UpdatedAt(),
	}, nil
}

func ToDomainKnowledgeBase(m models.KnowledgeBase) (knowledgebase.KnowledgeBase, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	tenantID, err := uuid.Parse(m.TenantID)
	if err != nil {
		return nil, err
	}
	var facts models.BusinessFacts
	if err := json.Unmarshal(m.Facts, &facts); err != nil {
		return nil, err
	}
	var responseSettings models.ResponseSettings
	if err := json.Unmarshal(m.ResponseSettings, &responseSettings); err != nil {
		return nil, err
	}
	var schedule models.Schedule
	if err := json.Unmarshal(m.BusinessHours, &schedule); err != nil {
		return nil, err
	}
	var modelRules []models.Rule
	if err := json.Unmarshal(m.Rules, &modelRules); err != nil {
		return nil, err
	}
	rules, err := toDomainRules(modelRules)
	if err != nil {
		return nil, err
	}
	return knowledgebase.New(
		tenantID,
		m.Title,
		knowledgebase.WithID(id),
		knowledgebase.WithFacts(toDomainFacts(facts)),
		knowledgebase.WithSystemPrompt(m.SystemPrompt),
		knowledgebase.WithResponseSettings(toDomainResponseSettings(responseSettings)),
		knowledgebase.WithSchedule(toDomainSchedule(schedule)),
		knowledgebase.WithRules(rules),
		knowledgebase.WithIsDefault(m.IsDefault),
		knowledgebase.WithStats(knowledgebase.Stats{
			TotalReplies:      m.TotalReplies,
			SuccessfulReplies: m.SuccessfulReplies,
			LastUsed:          mapping.SQLNullTimeToPointer(m.LastUsed),
		}),
		knowledgebase.WithCreatedAt(m.CreatedAt),
		knowledgebase.WithUpdatedAt(m.UpdatedAt),
	), nil
}

func toModelConfig(c settings.Config) models.Config {
	return models.Config{
		AIKnowledge: models.AIKnowledgeSection{
			UseDefault:       c.AIKnowledge.UseDefault,
			SystemPrompt:     c.AIKnowledge.SystemPrompt,
			Facts:            toModelFacts(c.AIKnowledge.Facts),
			ResponseSettings: toModelResponseSettings(c.AIKnowledge.ResponseSettings),
		},
		BusinessHours: models.BusinessHoursSection{
			UseDefault: c.BusinessHours.UseDefault,
			Schedule:   toModelSchedule(c.BusinessHours.Schedule),
		},
		AutoReplyRules: models.AutoReplyRulesSection{
			UseDefault: c.AutoReplyRules.UseDefault,
			Rules:      toModelRules(c.AutoReplyRules.Rules),
		},
		MessageFiltering: models.MessageFilteringSection{
			BlockedKeywords:     c.MessageFiltering.BlockedKeywords,
			AllowUnknownSenders: c.MessageFiltering.AllowUnknownSenders,
		},
		Notifications: models.NotificationsSection{
			EmailEnabled:     c.Notifications.EmailEnabled,
			Email:            c.Notifications.Email,
			NotifyOnFallback: c.Notifications.NotifyOnFallback,
		},
		Analytics: models.AnalyticsSection{
			TrackingEnabled: c.Analytics.TrackingEnabled,
		},
		Integrations: models.IntegrationsSection{
			WebhookURL: c.Integrations.WebhookURL,
			CRMEnabled: c.Integrations.CRMEnabled,
		},
		Advanced: models.AdvancedSection{
			ReplyDelaySeconds: c.Advanced.ReplyDelaySeconds,
			DebugMode:         c.Advanced.DebugMode,
		},
	}
}

func toDomainConfig(c models.Config) (settings.Config, error) {
	rules, err := toDomainRules(c.AutoReplyRules.Rules)
	if err != nil {
		return settings.Config{}, err
	}
	return settings.Config{
		AIKnowledge: settings.AIKnowledgeSection{
			UseDefault:       c.AIKnowledge.UseDefault,
			SystemPrompt:     c.AIKnowledge.SystemPrompt,
			Facts:            toDomainFacts(c.AIKnowledge.Facts),
			ResponseSettings: toDomainResponseSettings(c.AIKnowledge.ResponseSettings),
		},
		BusinessHours: settings.BusinessHoursSection{
			UseDefault: c.BusinessHours.UseDefault,
			Schedule:   toDomainSchedule(c.BusinessHours.Schedule),
		},
		AutoReplyRules: settings.AutoReplyRulesSection{
			UseDefault: c.AutoReplyRules.UseDefault,
			Rules:      rules,
		},
		MessageFiltering: settings.MessageFilteringSection{
			BlockedKeywords:     c.MessageFiltering.BlockedKeywords,
			AllowUnknownSenders: c.MessageFiltering.AllowUnknownSenders,
		},
		Notifications: settings.NotificationsSection{
			EmailEnabled:     c.Notifications.EmailEnabled,
			Email:            c.Notifications.Email,
			NotifyOnFallback: c.Notifications.NotifyOnFallback,
		},
		Analytics: settings.AnalyticsSection{
			TrackingEnabled: c.Analytics.TrackingEnabled,
		},
		Integrations: settings.IntegrationsSection{
			WebhookURL: c.Integrations.WebhookURL,
			CRMEnabled: c.Integrations.CRMEnabled,
		},
		Advanced: settings.AdvancedSection{
			ReplyDelaySeconds: c.Advanced.ReplyDelaySeconds,
			DebugMode:         c.Advanced.DebugMode,
		},
	}, nil
}

func ToDBSettings(s settings.Settings) (models.Settings, error) {
	inh := s.Inheritance()
	customizations := make([]models.Customization, 0, len(inh.Customizations))
	for _, c := range inh.Customizations {
		customizations = append(customizations, models.Customization{
			FieldPath:  c.FieldPath,
			Value:      c.Value,
			Overridden: c.Overridden,
		})
	}
	inheritance, err := json.Marshal(models.Inheritance{
		Enabled:        inh.Enabled,
		InheritFrom:    string(inh.InheritFrom),
		Customizations: customizations,
	})
	if err != nil {
		return models.Settings{}, err
	}
	config, err := json.Marshal(toModelConfig(s.Config()))
	if err != nil {
		return models.Settings{}, err
	}
	return models.Settings{
		ID:          s.ID().String(),
		OwnerID:     s.OwnerID().String(),
		OwnerType:   string(s.OwnerType()),
		Inheritance: inheritance,
		Config:      config,
		IsDefault:   s.IsDefault(),
		Version:     s.Version(),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	}, nil
}

func ToDomainSettings(m models.Settings) (settings.Settings, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	ownerID, err := uuid.Parse(m.OwnerID)
	if err != nil {
		return nil, err
	}
	var inheritance models.Inheritance
	if err := json.Unmarshal(m.Inheritance, &inheritance); err != nil {
		return nil, err
	}
	var config models.Config
	if err := json.Unmarshal(m.Config, &config); err != nil {
		return nil, err
	}
	domainConfig, err := toDomainConfig(config)
	if err != nil {
		return nil, err
	}
	customizations := make([]settings.Customization, 0, len(inheritance.Customizations))
	for _, c := range inheritance.Customizations {
		customizations = append(customizations, settings.Customization{
			FieldPath:  c.FieldPath,
			Value:      c.Value,
			Overridden: c.Overridden,
		})
	}
	return settings.New(
		settings.OwnerType(m.OwnerType),
		ownerID,
		settings.WithID(id),
		settings.WithInheritance(settings.Inheritance{
			Enabled:        inheritance.Enabled,
			InheritFrom:    settings.InheritSource(inheritance.InheritFrom),
			Customizations: customizations,
		}),
		settings.WithConfig(domainConfig),
		settings.WithIsDefault(m.IsDefault),
		settings.WithVersion(m.Version),
		settings.WithCreatedAt(m.CreatedAt),
		settings.WithUpdatedAt(m.UpdatedAt),
	), nil
}

func ToDBThread(t conversation.Thread) models.Thread {
	messages := make([]models.ThreadMessage, 0, len(t.Messages()))
	for _, msg := range t.Messages() {
		messages = append(messages, models.ThreadMessage{
			Role:      string(msg.Role()),
			Text:      msg.Text(),
			Timestamp: msg.Timestamp(),
		})
	}
	return models.Thread{
		ID:         t.ID().String(),
		TenantID:   t.TenantID().String(),
		Address:    t.Address(),
		SenderName: t.SenderName(),
		CreatedAt:  t.CreatedAt(),
		UpdatedAt:  t.UpdatedAt(),
		Messages:   messages,
	}
}

func ToDomainThread(m models.Thread) (conversation.Thread, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	tenantID, err := uuid.Parse(m.TenantID)
	if err != nil {
		return nil, err
	}
	messages := make([]conversation.Message, 0, len(m.Messages))
	for _, msg := range m.Messages {
		domainMsg, err := conversation.NewMessage(conversation.Role(msg.Role), msg.Text, msg.Timestamp)
		if err != nil {
			return nil, err
		}
		messages = append(messages, domainMsg)
	}
	return conversation.New(
		tenantID,
		m.Address,
		conversation.WithID(id),
		conversation.WithSenderName(m.SenderName),
		conversation.WithCreatedAt(m.CreatedAt),
		conversation.WithUpdatedAt(m.UpdatedAt),
		conversation.WithMessages(messages),
	), nil
}
