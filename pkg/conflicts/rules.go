package conflicts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentstation/apidrift/pkg/errors"
)

// Rule configures how one conflict kind is treated.
type Rule struct {
	// Severity overrides the computed severity for this kind.
	// If nil, the computed severity is used.
	Severity *Severity

	// Ignore drops conflicts of this kind entirely.
	Ignore bool
}

// Rules holds per-kind overrides. A nil *Rules, or a nil entry, keeps the
// default rule table.
//
// Example:
//
//	rules := &conflicts.Rules{
//	    MissingInDocs:       &conflicts.Rule{Severity: conflicts.SeverityPtr(conflicts.SeverityLow)},
//	    DescriptionMismatch: &conflicts.Rule{Ignore: true},
//	}
type Rules struct {
	MissingInCode       *Rule
	MissingInDocs       *Rule
	SignatureMismatch   *Rule
	DescriptionMismatch *Rule
}

func (r *Rules) get(kind Kind) *Rule {
	if r == nil {
		return nil
	}
	switch kind {
	case KindMissingInCode:
		return r.MissingInCode
	case KindMissingInDocs:
		return r.MissingInDocs
	case KindSignatureMismatch:
		return r.SignatureMismatch
	case KindDescriptionMismatch:
		return r.DescriptionMismatch
	}
	return nil
}

func (r *Rules) set(kind Kind, rule *Rule) {
	switch kind {
	case KindMissingInCode:
		r.MissingInCode = rule
	case KindMissingInDocs:
		r.MissingInDocs = rule
	case KindSignatureMismatch:
		r.SignatureMismatch = rule
	case KindDescriptionMismatch:
		r.DescriptionMismatch = rule
	}
}

// apply returns the conflict with its rule applied, and false if the rule
// ignores it.
func (r *Rules) apply(c Conflict) (Conflict, bool) {
	rule := r.get(c.Kind)
	if rule == nil {
		return c, true
	}
	if rule.Ignore {
		return Conflict{}, false
	}
	if rule.Severity != nil {
		c.Severity = *rule.Severity
	}
	return c, true
}

// ParseRules builds Rules from `kind -> severity|ignore` pairs, as read from
// configuration, e.g. {"missing_in_docs": "low", "description_mismatch": "ignore"}.
func ParseRules(overrides map[string]string) (*Rules, error) {
	if len(overrides) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rules := &Rules{}
	for _, k := range keys {
		kind := Kind(strings.TrimSpace(strings.ToLower(k)))
		if !kind.Valid() {
			return nil, errors.NewValidationError("severity_overrides", k, fmt.Sprintf("unknown conflict kind %q", k))
		}
		value := strings.TrimSpace(strings.ToLower(overrides[k]))
		if value == "ignore" {
			rules.set(kind, &Rule{Ignore: true})
			continue
		}
		sev := Severity(value)
		if !sev.Valid() {
			return nil, errors.NewValidationError("severity_overrides", overrides[k], fmt.Sprintf("unknown severity %q for %s", overrides[k], kind))
		}
		rules.set(kind, &Rule{Severity: SeverityPtr(sev)})
	}
	return rules, nil
}
