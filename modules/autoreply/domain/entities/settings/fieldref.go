package settings

import (
	"fmt"
	"strings"

	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/knowledgebase"
	"github.com/replyhub/replyhub/pkg/serrors"
)

var (
	ErrInvalidFieldPath  = serrors.NewError("SETTINGS_INVALID_FIELD_PATH", "invalid field path", "")
	ErrInvalidFieldValue = serrors.NewError("SETTINGS_INVALID_FIELD_VALUE", "value type does not fit field", "")
)

// Section is the fixed set of configuration roots shared between the
// resolver and the decision engine.
type Section string

const (
	SectionAIKnowledge      Section = "aiKnowledge"
	SectionBusinessHours    Section = "businessHours"
	SectionAutoReplyRules   Section = "autoReplyRules"
	SectionMessageFiltering Section = "messageFiltering"
	SectionNotifications    Section = "notifications"
	SectionAnalytics        Section = "analytics"
	SectionIntegrations     Section = "integrations"
	SectionAdvanced         Section = "advanced"
)

// FieldRef is a closed enumeration of customizable fields. Using a sum
// type instead of free-form dotted strings makes an unknown path a
// construction-time error rather than a silent no-op during resolution.
type FieldRef int

const (
	FieldSystemPrompt FieldRef = iota
	FieldCompanyName
	FieldServices
	FieldPricing
	FieldContactInfo
	FieldMaxLength
	FieldTone
	FieldIncludeEmojis
	FieldAutoReplyEnabled
	FieldHoursEnabled
	FieldHoursTimezone
	FieldAfterHoursMessage
	FieldBlockedKeywords
	FieldNotifyEmail
	FieldWebhookURL
	FieldReplyDelaySeconds
)

var fieldPaths = map[FieldRef]string{
	FieldSystemPrompt:      "aiKnowledge.systemPrompt",
	FieldCompanyName:       "aiKnowledge.facts.companyName",
	FieldServices:          "aiKnowledge.facts.services",
	FieldPricing:           "aiKnowledge.facts.pricing",
	FieldContactInfo:       "aiKnowledge.facts.contactInfo",
	FieldMaxLength:         "aiKnowledge.responseSettings.maxLength",
	FieldTone:              "aiKnowledge.responseSettings.tone",
	FieldIncludeEmojis:     "aiKnowledge.responseSettings.includeEmojis",
	FieldAutoReplyEnabled:  "aiKnowledge.responseSettings.autoReplyEnabled",
	FieldHoursEnabled:      "businessHours.enabled",
	FieldHoursTimezone:     "businessHours.timezone",
	FieldAfterHoursMessage: "businessHours.afterHoursMessage",
	FieldBlockedKeywords:   "messageFiltering.blockedKeywords",
	FieldNotifyEmail:       "notifications.email",
	FieldWebhookURL:        "integrations.webhookUrl",
	FieldReplyDelaySeconds: "advanced.replyDelaySeconds",
}

var fieldByPath = func() map[string]FieldRef {
	m := make(map[string]FieldRef, len(fieldPaths))
	for ref, path := range fieldPaths {
		m[path] = ref
	}
	return m
}()

func (f FieldRef) Path() string {
	return fieldPaths[f]
}

func (f FieldRef) Section() Section {
	root, _, _ := strings.Cut(f.Path(), ".")
	return Section(root)
}

// ParseFieldRef validates a dotted path and maps it onto the closed
// field set. Empty segments and unknown paths are rejected before any
// mutation can happen.
func ParseFieldRef(path string) (FieldRef, error) {
	if strings.TrimSpace(path) == "" {
		return 0, ErrInvalidFieldPath.WithDetails("empty path")
	}
	for _, segment := range strings.Split(path, ".") {
		if strings.TrimSpace(segment) == "" {
			return 0, ErrInvalidFieldPath.WithDetails(fmt.Sprintf("empty segment in %q", path))
		}
	}
	ref, ok := fieldByPath[path]
	if !ok {
		return 0, ErrInvalidFieldPath.WithDetails(fmt.Sprintf("unknown path %q", path))
	}
	return ref, nil
}

// Get reads the referenced field from a config.
func (f FieldRef) Get(cfg *Config) interface{} {
	switch f {
	case FieldSystemPrompt:
		return cfg.AIKnowledge.SystemPrompt
	case FieldCompanyName:
		return cfg.AIKnowledge.Facts.CompanyName
	case FieldServices:
		return cfg.AIKnowledge.Facts.Services
	case FieldPricing:
		return cfg.AIKnowledge.Facts.Pricing
	case FieldContactInfo:
		return cfg.AIKnowledge.Facts.ContactInfo
	case FieldMaxLength:
		return cfg.AIKnowledge.ResponseSettings.MaxLength
	case FieldTone:
		return string(cfg.AIKnowledge.ResponseSettings.Tone)
	case FieldIncludeEmojis:
		return cfg.AIKnowledge.ResponseSettings.IncludeEmojis
	case FieldAutoReplyEnabled:
		return cfg.AIKnowledge.ResponseSettings.AutoReplyEnabled
	case FieldHoursEnabled:
		return cfg.BusinessHours.Schedule.Enabled
	case FieldHoursTimezone:
		return cfg.BusinessHours.Schedule.Timezone
	case FieldAfterHoursMessage:
		return cfg.BusinessHours.Schedule.AfterHoursMessage
	case FieldBlockedKeywords:
		return cfg.MessageFiltering.BlockedKeywords
	case FieldNotifyEmail:
		return cfg.Notifications.Email
	case FieldWebhookURL:
		return cfg.Integrations.WebhookURL
	case FieldReplyDelaySeconds:
		return cfg.Advanced.ReplyDelaySeconds
	default:
		return nil
	}
}

// Set writes the value at the referenced field, coercing the loose
// types a JSON round-trip produces (float64 for ints and so on).
func (f FieldRef) Set(cfg *Config, value interface{}) error {
	switch f {
	case FieldSystemPrompt:
		return setString(&cfg.AIKnowledge.SystemPrompt, value)
	case FieldCompanyName:
		return setString(&cfg.AIKnowledge.Facts.CompanyName, value)
	case FieldServices:
		return setString(&cfg.AIKnowledge.Facts.Services, value)
	case FieldPricing:
		return setString(&cfg.AIKnowledge.Facts.Pricing, value)
	case FieldContactInfo:
		return setString(&cfg.AIKnowledge.Facts.ContactInfo, value)
	case FieldMaxLength:
		return setInt(&cfg.AIKnowledge.ResponseSettings.MaxLength, value)
	case FieldTone:
		var tone string
		if err := setString(&tone, value); err != nil {
			return err
		}
		cfg.AIKnowledge.ResponseSettings.Tone = knowledgebase.Tone(tone)
		return nil
	case FieldIncludeEmojis:
		return setBool(&cfg.AIKnowledge.ResponseSettings.IncludeEmojis, value)
	case FieldAutoReplyEnabled:
		return setBool(&cfg.AIKnowledge.ResponseSettings.AutoReplyEnabled, value)
	case FieldHoursEnabled:
		return setBool(&cfg.BusinessHours.Schedule.Enabled, value)
	case FieldHoursTimezone:
		return setString(&cfg.BusinessHours.Schedule.Timezone, value)
	case FieldAfterHoursMessage:
		return setString(&cfg.BusinessHours.Schedule.AfterHoursMessage, value)
	case FieldBlockedKeywords:
		return setStringSlice(&cfg.MessageFiltering.BlockedKeywords, value)
	case FieldNotifyEmail:
		return setString(&cfg.Notifications.Email, value)
	case FieldWebhookURL:
		return setString(&cfg.Integrations.WebhookURL, value)
	case FieldReplyDelaySeconds:
		return setInt(&cfg.Advanced.ReplyDelaySeconds, value)
	default:
		return ErrInvalidFieldPath
	}
}

func setString(dst *string, value interface{}) error {
	v, ok := value.(string)
	if !ok {
		return ErrInvalidFieldValue.WithDetails(fmt.Sprintf("want string, got %T", value))
	}
	*dst = v
	return nil
}

func setBool(dst *bool, value interface{}) error {
	v, ok := value.(bool)
	if !ok {
		return ErrInvalidFieldValue.WithDetails(fmt.Sprintf("want bool, got %T", value))
	}
	*dst = v
	return nil
}

func setInt(dst *int, value interface{}) error {
	switch v := value.(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	case float64:
		*dst = int(v)
	default:
		return ErrInvalidFieldValue.WithDetails(fmt.Sprintf("want int, got %T", value))
	}
	return nil
}

func setStringSlice(dst *[]string, value interface{}) error {
	switch v := value.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		*dst = out
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return ErrInvalidFieldValue.WithDetails(fmt.Sprintf("want []string, got element %T", item))
			}
			out = append(out, s)
		}
		*dst = out
	default:
		return ErrInvalidFieldValue.WithDetails(fmt.Sprintf("want []string, got %T", value))
	}
	return nil
}
