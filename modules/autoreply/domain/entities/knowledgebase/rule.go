package knowledgebase

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrInvalidTrigger = errors.New("invalid rule trigger")

type Condition string

const (
	ConditionContains   Condition = "contains"
	ConditionEquals     Condition = "equals"
	ConditionStartsWith Condition = "starts_with"
	ConditionRegex      Condition = "regex"
)

// Rule is a single trigger -> canned response pair. Rules are evaluated
// against case-normalized message text; regex triggers compile
// case-insensitively.
type Rule struct {
	ID        uuid.UUID
	Trigger   string
	Condition Condition
	Response  string
	Priority  int
	IsActive  bool
}

// Validate reports whether the rule's trigger is usable. For regex
// rules this compiles the pattern; a broken pattern is skipped at match
// time, never a match-time error.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Trigger) == "" {
		return ErrInvalidTrigger
	}
	if r.Condition == ConditionRegex {
		if _, err := compileTrigger(r.Trigger); err != nil {
			return errors.Join(ErrInvalidTrigger, err)
		}
	}
	return nil
}

// regexCache memoizes compiled triggers and their compile failures so a
// hot matching path never recompiles per message.
var regexCache sync.Map

func compileTrigger(trigger string) (*regexp.Regexp, error) {
	if cached, ok := regexCache.Load(trigger); ok {
		switch v := cached.(type) {
		case *regexp.Regexp:
			return v, nil
		case error:
			return nil, v
		}
	}
	re, err := regexp.Compile("(?i)" + trigger)
	if err != nil {
		regexCache.Store(trigger, err)
		return nil, err
	}
	regexCache.Store(trigger, re)
	return re, nil
}

// Match returns the highest-priority active rule matching the message
// text. Ties are broken by declaration order. A rule whose regex does
// not compile never matches and never aborts evaluation of the rest.
func Match(text string, rules []Rule) (Rule, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))

	active := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority > active[j].Priority
	})

	for _, r := range active {
		if r.matches(normalized) {
			return r, true
		}
	}
	return Rule{}, false
}

func (r Rule) matches(normalized string) bool {
	trigger := strings.ToLower(strings.TrimSpace(r.Trigger))
	switch r.Condition {
	case ConditionContains:
		return strings.Contains(normalized, trigger)
	case ConditionEquals:
		return normalized == trigger
	case ConditionStartsWith:
		return strings.HasPrefix(normalized, trigger)
	case ConditionRegex:
		re, err := compileTrigger(r.Trigger)
		if err != nil {
			return false
		}
		return re.MatchString(normalized)
	default:
		return false
	}
}
