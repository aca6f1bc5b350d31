package settings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/knowledgebase"
)

var (
	ErrNotFound  = errors.New("settings not found")
	ErrNoDefault = errors.New("no default settings")
)

type OwnerType string

const (
	OwnerAdmin OwnerType = "admin"
	OwnerCoach OwnerType = "coach"
)

type InheritSource string

const (
	InheritFromAdmin       InheritSource = "admin"
	InheritFromParentCoach InheritSource = "parent_coach"
)

// Customization is one recorded field-level override. The list of
// customizations is the single source of truth for a coach's
// deviations; the live view is only ever computed through Resolve.
type Customization struct {
	FieldPath  string
	Value      interface{}
	Overridden bool
}

type Inheritance struct {
	Enabled        bool
	InheritFrom    InheritSource
	Customizations []Customization
}

// AIKnowledgeSection carries the reply-generation knobs a coach may
// take wholesale instead of the inherited ones.
type AIKnowledgeSection struct {
	UseDefault       bool
	SystemPrompt     string
	Facts            knowledgebase.BusinessFacts
	ResponseSettings knowledgebase.ResponseSettings
}

type BusinessHoursSection struct {
	UseDefault bool
	Schedule   knowledgebase.Schedule
}

type AutoReplyRulesSection struct {
	UseDefault bool
	Rules      []knowledgebase.Rule
}

// Always-local sections. These are never taken from a parent,
// regardless of inheritance state.

type MessageFilteringSection struct {
	BlockedKeywords     []string
	AllowUnknownSenders bool
}

type NotificationsSection struct {
	EmailEnabled     bool
	Email            string
	NotifyOnFallback bool
}

type AnalyticsSection struct {
	TrackingEnabled bool
}

type IntegrationsSection struct {
	WebhookURL string
	CRMEnabled bool
}

type AdvancedSection struct {
	ReplyDelaySeconds int
	DebugMode         bool
}

// Config is the full per-owner configuration payload, inheritable
// sections first, always-local sections after.
type Config struct {
	AIKnowledge      AIKnowledgeSection
	BusinessHours    BusinessHoursSection
	AutoReplyRules   AutoReplyRulesSection
	MessageFiltering MessageFilteringSection
	Notifications    NotificationsSection
	Analytics        AnalyticsSection
	Integrations     IntegrationsSection
	Advanced         AdvancedSection
}

// Clone returns a deep copy; resolving must never alias the parent's
// slices.
func (c Config) Clone() Config {
	out := c
	if c.AutoReplyRules.Rules != nil {
		out.AutoReplyRules.Rules = make([]knowledgebase.Rule, len(c.AutoReplyRules.Rules))
		copy(out.AutoReplyRules.Rules, c.AutoReplyRules.Rules)
	}
	if c.BusinessHours.Schedule.Days != nil {
		out.BusinessHours.Schedule.Days = make([]knowledgebase.DaySchedule, len(c.BusinessHours.Schedule.Days))
		copy(out.BusinessHours.Schedule.Days, c.BusinessHours.Schedule.Days)
	}
	if c.MessageFiltering.BlockedKeywords != nil {
		out.MessageFiltering.BlockedKeywords = make([]string, len(c.MessageFiltering.BlockedKeywords))
		copy(out.MessageFiltering.BlockedKeywords, c.MessageFiltering.BlockedKeywords)
	}
	return out
}

type Repository interface {
	GetByOwner(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) (Settings, error)
	GetDefault(ctx context.Context, ownerType OwnerType) (Settings, error)
	Save(ctx context.Context, s Settings) (Settings, error)
	SetDefault(ctx context.Context, ownerType OwnerType, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Settings interface {
	ID() uuid.UUID
	OwnerID() uuid.UUID
	OwnerType() OwnerType
	Inheritance() Inheritance
	Config() Config
	IsDefault() bool
	Version() int64
	CreatedAt() time.Time
	UpdatedAt() time.Time

	// UpsertCustomization replaces any existing entry for the same
	// field path instead of duplicating it, and bumps the version.
	UpsertCustomization(ref FieldRef, value interface{}) Settings
	// RemoveCustomization deletes the entry for the path if present,
	// bumping the version only when something was removed.
	RemoveCustomization(ref FieldRef) Settings
	SetConfig(cfg Config) Settings
	SetInheritanceEnabled(enabled bool) Settings
	SetIsDefault(isDefault bool) Settings
}

type record struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	ownerType   OwnerType
	inheritance Inheritance
	config      Config
	isDefault   bool
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

type Option func(*record)

func WithID(id uuid.UUID) Option {
	return func(r *record) {
		if id != uuid.Nil {
			r.id = id
		}
	}
}

func WithInheritance(inh Inheritance) Option {
	return func(r *record) {
		r.inheritance = inh
	}
}

func WithConfig(cfg Config) Option {
	return func(r *record) {
		r.config = cfg
	}
}

func WithIsDefault(isDefault bool) Option {
	return func(r *record) {
		r.isDefault = isDefault
	}
}

func WithVersion(version int64) Option {
	return func(r *record) {
		if version > 0 {
			r.version = version
		}
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(r *record) {
		if !createdAt.IsZero() {
			r.createdAt = createdAt
		}
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(r *record) {
		if !updatedAt.IsZero() {
			r.updatedAt = updatedAt
		}
	}
}

// New creates a settings record. Coaches start inheriting from the
// admin defaults with no customizations; sections default to the
// inherited payloads.
func New(ownerType OwnerType, ownerID uuid.UUID, opts ...Option) Settings {
	r := &record{
		id:        uuid.New(),
		ownerID:   ownerID,
		ownerType: ownerType,
		inheritance: Inheritance{
			Enabled:     ownerType == OwnerCoach,
			InheritFrom: InheritFromAdmin,
		},
		config: Config{
			AIKnowledge:    AIKnowledgeSection{UseDefault: true},
			BusinessHours:  BusinessHoursSection{UseDefault: true},
			AutoReplyRules: AutoReplyRulesSection{UseDefault: true},
		},
		version:   1,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *record) ID() uuid.UUID            { return r.id }
func (r *record) OwnerID() uuid.UUID       { return r.ownerID }
func (r *record) OwnerType() OwnerType     { return r.ownerType }
func (r *record) Inheritance() Inheritance { return r.inheritance }
func (r *record) Config() Config           { return r.config }
func (r *record) IsDefault() bool          { return r.isDefault }
func (r *record) Version() int64           { return r.version }
func (r *record) CreatedAt() time.Time     { return r.createdAt }
func (r *record) UpdatedAt() time.Time     { return r.updatedAt }

func (r *record) UpsertCustomization(ref FieldRef, value interface{}) Settings {
	entry := Customization{
		FieldPath:  ref.Path(),
		Value:      value,
		Overridden: true,
	}
	replaced := false
	for i, c := range r.inheritance.Customizations {
		if c.FieldPath == entry.FieldPath {
			r.inheritance.Customizations[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		r.inheritance.Customizations = append(r.inheritance.Customizations, entry)
	}
	r.bump()
	return r
}

func (r *record) RemoveCustomization(ref FieldRef) Settings {
	path := ref.Path()
	for i, c := range r.inheritance.Customizations {
		if c.FieldPath == path {
			r.inheritance.Customizations = append(
				r.inheritance.Customizations[:i],
				r.inheritance.Customizations[i+1:]...,
			)
			r.bump()
			break
		}
	}
	return r
}

func (r *record) SetConfig(cfg Config) Settings {
	r.config = cfg
	r.bump()
	return r
}

func (r *record) SetInheritanceEnabled(enabled bool) Settings {
	r.inheritance.Enabled = enabled
	r.bump()
	return r
}

func (r *record) SetIsDefault(isDefault bool) Settings {
	r.isDefault = isDefault
	r.bump()
	return r
}

func (r *record) bump() {
	r.version++
	r.updatedAt = time.Now()
}
