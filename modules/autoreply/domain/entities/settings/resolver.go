package settings

import "context"

// ParentLookup resolves the configuration a record inherits from. For
// InheritFromAdmin this is the default admin record; parent-coach
// hierarchies are supplied by the caller.
type ParentLookup func(ctx context.Context, source InheritSource) (Settings, error)

// Effective is the fully-resolved configuration. It is never persisted,
// always recomputed.
type Effective struct {
	Config Config
	// ParentMissing is set when inheritance was requested but no parent
	// could be found; the record's own values were used instead.
	ParentMissing bool
}

// Resolve layers a record's overrides onto its parent's configuration:
//
//  1. inheritance disabled -> the record itself, untouched
//  2. deep copy of the parent's config
//  3. field-level customizations, in list order, overridden entries only
//  4. wholesale section replacement where UseDefault is false (wins
//     over step 3 by running after it)
//  5. always-local sections taken from the record unconditionally
//
// Neither the record nor the parent is mutated. Resolving twice with
// unchanged inputs yields identical output.
func Resolve(ctx context.Context, rec Settings, lookup ParentLookup) Effective {
	inh := rec.Inheritance()
	if !inh.Enabled {
		return Effective{Config: rec.Config().Clone()}
	}

	var parent Settings
	if lookup != nil {
		p, err := lookup(ctx, inh.InheritFrom)
		if err == nil {
			parent = p
		}
	}
	if parent == nil {
		return Effective{Config: rec.Config().Clone(), ParentMissing: true}
	}
	return Effective{Config: ResolveAgainst(parent.Config(), rec)}
}

// ResolveAgainst layers rec's overrides onto base, which stands in for
// the parent configuration (steps 2-5 above). Callers supply the base
// when the inherited defaults live outside a settings record.
func ResolveAgainst(base Config, rec Settings) Config {
	inh := rec.Inheritance()
	if !inh.Enabled {
		return rec.Config().Clone()
	}

	effective := base.Clone()
	applyOverrides(&effective, inh.Customizations)

	own := rec.Config()
	if !own.AIKnowledge.UseDefault {
		effective.AIKnowledge = own.AIKnowledge
	}
	if !own.BusinessHours.UseDefault {
		effective.BusinessHours = own.BusinessHours
	}
	if !own.AutoReplyRules.UseDefault {
		effective.AutoReplyRules = own.AutoReplyRules
	}

	effective.MessageFiltering = own.MessageFiltering
	effective.Notifications = own.Notifications
	effective.Analytics = own.Analytics
	effective.Integrations = own.Integrations
	effective.Advanced = own.Advanced

	return effective.Clone()
}

func applyOverrides(cfg *Config, customizations []Customization) {
	for _, c := range customizations {
		if !c.Overridden {
			continue
		}
		ref, err := ParseFieldRef(c.FieldPath)
		if err != nil {
			continue
		}
		// Type mismatches are skipped the same way unknown paths are;
		// a bad stored value must not poison the whole resolution.
		_ = ref.Set(cfg, c.Value)
	}
}
