package settings_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/knowledgebase"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminConfig() settings.Config {
	return settings.Config{
		AIKnowledge: settings.AIKnowledgeSection{
			UseDefault:   true,
			SystemPrompt: "You are the platform assistant.",
			Facts: knowledgebase.BusinessFacts{
				CompanyName: "ReplyHub",
				Services:    "coaching programs",
			},
			ResponseSettings: knowledgebase.ResponseSettings{
				MaxLength:        500,
				Tone:             knowledgebase.ToneFriendly,
				AutoReplyEnabled: true,
			},
		},
		BusinessHours: settings.BusinessHoursSection{
			UseDefault: true,
			Schedule: knowledgebase.Schedule{
				Enabled:  true,
				Timezone: "UTC",
				Days: []knowledgebase.DaySchedule{
					{Day: 1, Start: "09:00", End: "18:00", IsActive: true},
				},
				AfterHoursMessage: "We are closed.",
			},
		},
		AutoReplyRules: settings.AutoReplyRulesSection{
			UseDefault: true,
			Rules: []knowledgebase.Rule{
				{Trigger: "price", Condition: knowledgebase.ConditionContains, Response: "See pricing page.", Priority: 1, IsActive: true},
			},
		},
		Notifications: settings.NotificationsSection{EmailEnabled: true, Email: "ops@replyhub.io"},
	}
}

func adminLookup(admin settings.Settings) settings.ParentLookup {
	return func(_ context.Context, source settings.InheritSource) (settings.Settings, error) {
		if source == settings.InheritFromAdmin {
			return admin, nil
		}
		return nil, settings.ErrNotFound
	}
}

func newAdmin() settings.Settings {
	return settings.New(
		settings.OwnerAdmin,
		uuid.New(),
		settings.WithConfig(adminConfig()),
		settings.WithIsDefault(true),
	)
}

func TestResolve_InheritanceDisabledIsIdentity(t *testing.T) {
	t.Parallel()
	admin := newAdmin()
	coach := settings.New(settings.OwnerCoach, uuid.New())
	coach.SetInheritanceEnabled(false)
	coach.UpsertCustomization(settings.FieldMaxLength, 50)

	eff := settings.Resolve(context.Background(), coach, adminLookup(admin))

	assert.Equal(t, coach.Config(), eff.Config)
	// Overrides are never consulted when inheritance is off.
	assert.Zero(t, eff.Config.AIKnowledge.ResponseSettings.MaxLength)
}

func TestResolve_CustomizationsApplyOnParent(t *testing.T) {
	t.Parallel()
	admin := newAdmin()
	coach := settings.New(settings.OwnerCoach, uuid.New())
	coach.UpsertCustomization(settings.FieldMaxLength, 200)
	coach.UpsertCustomization(settings.FieldTone, "formal")

	eff := settings.Resolve(context.Background(), coach, adminLookup(admin))

	assert.Equal(t, 200, eff.Config.AIKnowledge.ResponseSettings.MaxLength)
	assert.Equal(t, knowledgebase.ToneFormal, eff.Config.AIKnowledge.ResponseSettings.Tone)
	// Untouched parent values come through.
	assert.Equal(t, "You are the platform assistant.", eff.Config.AIKnowledge.SystemPrompt)
	assert.Equal(t, "ReplyHub", eff.Config.AIKnowledge.Facts.CompanyName)
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()
	admin := newAdmin()
	coach := settings.New(settings.OwnerCoach, uuid.New())
	coach.UpsertCustomization(settings.FieldMaxLength, 200)
	lookup := adminLookup(admin)

	first := settings.Resolve(context.Background(), coach, lookup)
	second := settings.Resolve(context.Background(), coach, lookup)

	assert.Equal(t, first, second)
}

func TestResolve_WholesaleSectionWinsOverCustomization(t *testing.T) {
	t.Parallel()
	admin := newAdmin()
	coach := settings.New(settings.OwnerCoach, uuid.New())
	coach.UpsertCustomization(settings.FieldMaxLength, 200)

	cfg := coach.Config()
	cfg.AIKnowledge = settings.AIKnowledgeSection{
		UseDefault:   false,
		SystemPrompt: "Coach-specific prompt.",
		ResponseSettings: knowledgebase.ResponseSettings{
			MaxLength:        120,
			Tone:             knowledgebase.ToneCasual,
			AutoReplyEnabled: true,
		},
	}
	coach.SetConfig(cfg)

	eff := settings.Resolve(context.Background(), coach, adminLookup(admin))

	assert.Equal(t, 120, eff.Config.AIKnowledge.ResponseSettings.MaxLength,
		"wholesale section override wins over the field customization")
	assert.Equal(t, "Coach-specific prompt.", eff.Config.AIKnowledge.SystemPrompt)
}

func TestResolve_AlwaysLocalSectionsNeverInherited(t *testing.T) {
	t.Parallel()
	admin := newAdmin()
	coach := settings.New(settings.OwnerCoach, uuid.New())

	eff := settings.Resolve(context.Background(), coach, adminLookup(admin))

	assert.Empty(t, eff.Config.Notifications.Email,
		"parent notifications must not leak into the coach's effective config")
	assert.False(t, eff.Config.Notifications.EmailEnabled)
}

func TestResolve_MissingParentFallsBackToRecord(t *testing.T) {
	t.Parallel()
	coach := settings.New(settings.OwnerCoach, uuid.New())
	lookup := func(_ context.Context, _ settings.InheritSource) (settings.Settings, error) {
		return nil, settings.ErrNoDefault
	}

	eff := settings.Resolve(context.Background(), coach, lookup)

	assert.True(t, eff.ParentMissing)
	assert.Equal(t, coach.Config(), eff.Config)
}

func TestResolve_NilLookupFallsBackToRecord(t *testing.T) {
	t.Parallel()
	coach := settings.New(settings.OwnerCoach, uuid.New())

	eff := settings.Resolve(context.Background(), coach, nil)

	assert.True(t, eff.ParentMissing)
}

func TestResolve_DoesNotMutateParent(t *testing.T) {
	t.Parallel()
	admin := newAdmin()
	coach := settings.New(settings.OwnerCoach, uuid.New())
	coach.UpsertCustomization(settings.FieldAfterHoursMessage, "Back tomorrow!")

	before := admin.Config()
	eff := settings.Resolve(context.Background(), coach, adminLookup(admin))

	assert.Equal(t, "Back tomorrow!", eff.Config.BusinessHours.Schedule.AfterHoursMessage)
	assert.Equal(t, before, admin.Config(), "parent must remain untouched")
}

func TestResolve_CustomizationRoundTrip(t *testing.T) {
	t.Parallel()
	admin := newAdmin()
	coach := settings.New(settings.OwnerCoach, uuid.New())
	lookup := adminLookup(admin)

	coach.UpsertCustomization(settings.FieldMaxLength, 200)
	eff := settings.Resolve(context.Background(), coach, lookup)
	require.Equal(t, 200, eff.Config.AIKnowledge.ResponseSettings.MaxLength)

	coach.RemoveCustomization(settings.FieldMaxLength)
	eff = settings.Resolve(context.Background(), coach, lookup)
	assert.Equal(t, 500, eff.Config.AIKnowledge.ResponseSettings.MaxLength,
		"removal restores the parent's value")
}

func TestResolve_NotOverriddenEntriesIgnored(t *testing.T) {
	t.Parallel()
	admin := newAdmin()
	coach := settings.New(
		settings.OwnerCoach,
		uuid.New(),
		settings.WithInheritance(settings.Inheritance{
			Enabled:     true,
			InheritFrom: settings.InheritFromAdmin,
			Customizations: []settings.Customization{
				{FieldPath: settings.FieldMaxLength.Path(), Value: 42, Overridden: false},
			},
		}),
	)

	eff := settings.Resolve(context.Background(), coach, adminLookup(admin))
	assert.Equal(t, 500, eff.Config.AIKnowledge.ResponseSettings.MaxLength)
}

func TestResolveAgainst_LayersOntoSuppliedBase(t *testing.T) {
	t.Parallel()
	coach := settings.New(settings.OwnerCoach, uuid.New())
	coach.UpsertCustomization(settings.FieldAutoReplyEnabled, false)
	coach.UpsertCustomization(settings.FieldAfterHoursMessage, "Back at 9.")

	got := settings.ResolveAgainst(adminConfig(), coach)

	assert.False(t, got.AIKnowledge.ResponseSettings.AutoReplyEnabled)
	assert.Equal(t, "Back at 9.", got.BusinessHours.Schedule.AfterHoursMessage)
	// The rest of the base comes through unchanged.
	assert.Equal(t, 500, got.AIKnowledge.ResponseSettings.MaxLength)
	assert.Equal(t, "You are the platform assistant.", got.AIKnowledge.SystemPrompt)
}

func TestResolveAgainst_WholesaleSectionStillWins(t *testing.T) {
	t.Parallel()
	coach := settings.New(settings.OwnerCoach, uuid.New())
	coach.UpsertCustomization(settings.FieldMaxLength, 200)

	cfg := coach.Config()
	cfg.AIKnowledge = settings.AIKnowledgeSection{
		UseDefault: false,
		ResponseSettings: knowledgebase.ResponseSettings{
			MaxLength:        120,
			AutoReplyEnabled: true,
		},
	}
	coach.SetConfig(cfg)

	got := settings.ResolveAgainst(adminConfig(), coach)
	assert.Equal(t, 120, got.AIKnowledge.ResponseSettings.MaxLength)
}

func TestUpsertCustomization_ReplacesSamePath(t *testing.T) {
	t.Parallel()
	coach := settings.New(settings.OwnerCoach, uuid.New())

	coach.UpsertCustomization(settings.FieldMaxLength, 100)
	coach.UpsertCustomization(settings.FieldMaxLength, 300)

	customizations := coach.Inheritance().Customizations
	require.Len(t, customizations, 1)
	assert.Equal(t, 300, customizations[0].Value)
}

func TestVersion_StrictlyIncreasesOnMutation(t *testing.T) {
	t.Parallel()
	coach := settings.New(settings.OwnerCoach, uuid.New())
	v1 := coach.Version()

	coach.UpsertCustomization(settings.FieldMaxLength, 100)
	v2 := coach.Version()
	require.Greater(t, v2, v1)

	coach.RemoveCustomization(settings.FieldMaxLength)
	v3 := coach.Version()
	require.Greater(t, v3, v2)

	// Removing a path that is not present does not bump.
	coach.RemoveCustomization(settings.FieldTone)
	assert.Equal(t, v3, coach.Version())
}
