package knowledgebase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("knowledge base not found")
	ErrNoDefault           = errors.New("no default knowledge base")
	ErrDefaultUndeletable  = errors.New("default knowledge base cannot be deleted")
	ErrSystemPromptTooLong = errors.New("system prompt too long")
)

const MaxSystemPromptLength = 8192

type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneCasual       Tone = "casual"
	ToneFormal       Tone = "formal"
)

// BusinessFacts is free-form company context injected into generation
// prompts. It never drives matching decisions.
type BusinessFacts struct {
	CompanyName string
	Services    string
	Pricing     string
	ContactInfo string
}

type ResponseSettings struct {
	MaxLength        int
	Tone             Tone
	IncludeEmojis    bool
	AutoReplyEnabled bool
}

// Stats are usage counters maintained by atomic increments at the
// storage layer. SuccessRate is derived, never stored.
type Stats struct {
	TotalReplies      int64
	SuccessfulReplies int64
	LastUsed          *time.Time
}

func (s Stats) SuccessRate() float64 {
	if s.TotalReplies == 0 {
		return 0
	}
	return float64(s.SuccessfulReplies) / float64(s.TotalReplies) * 100
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (KnowledgeBase, error)
	GetDefault(ctx context.Context) (KnowledgeBase, error)
	Save(ctx context.Context, kb KnowledgeBase) (KnowledgeBase, error)
	SetDefault(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]KnowledgeBase, error)
	IncrementUsage(ctx context.Context, id uuid.UUID, success bool) error
}

type KnowledgeBase interface {
	ID() uuid.UUID
	TenantID() uuid.UUID
	Title() string
	Facts() BusinessFacts
	SystemPrompt() string
	ResponseSettings() ResponseSettings
	Schedule() Schedule
	Rules() []Rule
	IsDefault() bool
	Stats() Stats
	CreatedAt() time.Time
	UpdatedAt() time.Time

	Validate() error
}

type knowledgeBase struct {
	id               uuid.UUID
	tenantID         uuid.UUID
	title            string
	facts            BusinessFacts
	systemPrompt     string
	responseSettings ResponseSettings
	schedule         Schedule
	rules            []Rule
	isDefault        bool
	stats            Stats
	createdAt        time.Time
	updatedAt        time.Time
}

type Option func(*knowledgeBase)

func WithID(id uuid.UUID) Option {
	return func(kb *knowledgeBase) {
		if id != uuid.Nil {
			kb.id = id
		}
	}
}

func WithFacts(facts BusinessFacts) Option {
	return func(kb *knowledgeBase) {
		kb.facts = facts
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(kb *knowledgeBase) {
		kb.systemPrompt = prompt
	}
}

func WithResponseSettings(settings ResponseSettings) Option {
	return func(kb *knowledgeBase) {
		kb.responseSettings = settings
	}
}

func WithSchedule(schedule Schedule) Option {
	return func(kb *knowledgeBase) {
		kb.schedule = schedule
	}
}

func WithRules(rules []Rule) Option {
	return func(kb *knowledgeBase) {
		kb.rules = rules
	}
}

func WithIsDefault(isDefault bool) Option {
	return func(kb *knowledgeBase) {
		kb.isDefault = isDefault
	}
}

func WithStats(stats Stats) Option {
	return func(kb *knowledgeBase) {
		kb.stats = stats
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(kb *knowledgeBase) {
		if !createdAt.IsZero() {
			kb.createdAt = createdAt
		}
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(kb *knowledgeBase) {
		if !updatedAt.IsZero() {
			kb.updatedAt = updatedAt
		}
	}
}

func New(tenantID uuid.UUID, title string, opts ...Option) KnowledgeBase {
	kb := &knowledgeBase{
		id:       uuid.New(),
		tenantID: tenantID,
		title:    title,
		responseSettings: ResponseSettings{
			MaxLength:        500,
			Tone:             ToneFriendly,
			AutoReplyEnabled: true,
		},
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(kb)
	}
	return kb
}

func (kb *knowledgeBase) ID() uuid.UUID                      { return kb.id }
func (kb *knowledgeBase) TenantID() uuid.UUID                { return kb.tenantID }
func (kb *knowledgeBase) Title() string                      { return kb.title }
func (kb *knowledgeBase) Facts() BusinessFacts               { return kb.facts }
func (kb *knowledgeBase) SystemPrompt() string               { return kb.systemPrompt }
func (kb *knowledgeBase) ResponseSettings() ResponseSettings { return kb.responseSettings }
func (kb *knowledgeBase) Schedule() Schedule                 { return kb.schedule }
func (kb *knowledgeBase) Rules() []Rule                      { return kb.rules }
func (kb *knowledgeBase) IsDefault() bool                    { return kb.isDefault }
func (kb *knowledgeBase) Stats() Stats                       { return kb.stats }
func (kb *knowledgeBase) CreatedAt() time.Time               { return kb.createdAt }
func (kb *knowledgeBase) UpdatedAt() time.Time               { return kb.updatedAt }

func (kb *knowledgeBase) Validate() error {
	if len(kb.systemPrompt) > MaxSystemPromptLength {
		return ErrSystemPromptTooLong
	}
	return nil
}
