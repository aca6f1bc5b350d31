package models

import (
	"database/sql"
	"time"
)

type BusinessFacts struct {
	CompanyName string `json:"company_name"`
	Services    string `json:"services"`
	Pricing     string `json:"pricing"`
	ContactInfo string `json:"contact_info"`
}

type ResponseSettings struct {
	MaxLength        int    `json:"max_length"`
	Tone             string `json:"tone"`
	IncludeEmojis    bool   `json:"include_emojis"`
	AutoReplyEnabled bool   `json:"auto_reply_enabled"`
}

type DaySchedule struct {
	Day      int    `json:"day"`
	Start    string `json:"start"`
	End      string `json:"end"`
	IsActive bool   `json:"is_active"`
}

type Schedule struct {
	Enabled           bool          `json:"enabled"`
	Timezone          string        `json:"timezone"`
	Days              []DaySchedule `json:"days"`
	AfterHoursMessage string        `json:"after_hours_message"`
}

type Rule struct {
	ID        string `json:"id"`
	Trigger   string `json:"trigger"`
	Condition string `json:"condition"`
	Response  string `json:"response"`
	Priority  int    `json:"priority"`
	IsActive  bool   `json:"is_active"`
}

type KnowledgeBase struct {
	ID                string
	TenantID          string
	Title             string
	Facts             []byte
	SystemPrompt      string
	ResponseSettings  []byte
	BusinessHours     []byte
	Rules             []byte
	IsDefault         bool
	TotalReplies      int64
	SuccessfulReplies int64
	LastUsed          sql.NullTime
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Customization struct {
	FieldPath  string      `json:"field_path"`
	Value      interface{} `json:"value"`
	Overridden bool        `json:"overridden"`
}

type Inheritance struct {
	Enabled        bool            `json:"enabled"`
	InheritFrom    string          `json:"inherit_from"`
	Customizations []Customization `json:"customizations"`
}

type AIKnowledgeSection struct {
	UseDefault       bool             `json:"use_default"`
	SystemPrompt     string           `json:"system_prompt"`
	Facts            BusinessFacts    `json:"facts"`
	ResponseSettings ResponseSettings `json:"response_settings"`
}

type BusinessHoursSection struct {
	UseDefault bool     `json:"use_default"`
	Schedule   Schedule `json:"schedule"`
}

type AutoReplyRulesSection struct {
	UseDefault bool   `json:"use_default"`
	Rules      []Rule `json:"rules"`
}

type MessageFilteringSection struct {
	BlockedKeywords     []string `json:"blocked_keywords"`
	AllowUnknownSenders bool     `json:"allow_unknown_senders"`
}

type NotificationsSection struct {
	EmailEnabled     bool   `json:"email_enabled"`
	Email            string `json:"email"`
	NotifyOnFallback bool   `json:"notify_on_fallback"`
}

type AnalyticsSection struct {
	TrackingEnabled bool `json:"tracking_enabled"`
}

type IntegrationsSection struct {
	WebhookURL string `json:"webhook_url"`
	CRMEnabled bool   `json:"crm_enabled"`
}

type AdvancedSection struct {
	ReplyDelaySeconds int  `json:"reply_delay_seconds"`
	DebugMode         bool `json:"debug_mode"`
}

type Config struct {
	AIKnowledge      AIKnowledgeSection      `json:"ai_knowledge"`
	BusinessHours    BusinessHoursSection    `json:"business_hours"`
	AutoReplyRules   AutoReplyRulesSection   `json:"auto_reply_rules"`
	MessageFiltering MessageFilteringSection `json:"message_filtering"`
	Notifications    NotificationsSection    `json:"notifications"`
	Analytics        AnalyticsSection        `json:"analytics"`
	Integrations     IntegrationsSection     `json:"integrations"`
	Advanced         AdvancedSection         `json:"advanced"`
}

type Settings struct {
	ID          string
	OwnerID     string
	OwnerType   string
	Inheritance []byte
	Config      []byte
	IsDefault   bool
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Thread struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenant_id"`
	Address    string          `json:"address"`
	SenderName string          `json:"sender_name"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Messages   []ThreadMessage `json:"messages"`
}

type ThreadMessage struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
