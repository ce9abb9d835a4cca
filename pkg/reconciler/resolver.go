package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentstation/apidrift/pkg/authority"
	"github.com/agentstation/apidrift/pkg/conflicts"
	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/identity"
	"github.com/agentstation/apidrift/pkg/provenance"
	"github.com/agentstation/apidrift/pkg/records"
)

// Mode selects how chosen records are resolved.
type Mode string

// String returns the string representation of a mode.
func (m Mode) String() string {
	return string(m)
}

// Name returns the human-readable mode name.
func (m Mode) Name() string {
	words := strings.Split(m.String(), "_")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeRuleBased || m == ModeAIAssisted
}

const (
	// ModeRuleBased resolves every group with the authority precedence table.
	ModeRuleBased Mode = "rule_based"
	// ModeAIAssisted asks a text-generation collaborator to resolve ambiguous groups.
	ModeAIAssisted Mode = "ai_assisted"
)

// ParseMode parses a mode name, accepting hyphens for underscores.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !m.Valid() {
		return "", errors.NewValidationError("mode", s, "must be rule_based or ai_assisted")
	}
	return m, nil
}

// Decision is a resolver's choice for one group.
type Decision struct {
	Chosen     records.Record
	Alternate  *records.Record
	Conflicts  []conflicts.Conflict
	Resolution provenance.Resolution
}

// Resolver chooses a record for every group. Results are index-aligned
// with groups.
type Resolver interface {
	// Mode returns the resolver's mode
	Mode() Mode

	// Resolve decides every group. cs[i] holds the conflicts of groups[i].
	Resolve(ctx context.Context, groups []identity.Group, cs [][]conflicts.Conflict) ([]Decision, error)
}

// RuleBasedResolver resolves groups with deterministic origin precedence.
type RuleBasedResolver struct {
	authorities authority.Authority
}

// NewRuleBasedResolver creates a rule-based resolver. A nil authority uses
// the default precedence.
func NewRuleBasedResolver(authorities authority.Authority) *RuleBasedResolver {
	if authorities == nil {
		authorities = authority.New()
	}
	return &RuleBasedResolver{authorities: authorities}
}

// Mode returns ModeRuleBased.
func (r *RuleBasedResolver) Mode() Mode {
	return ModeRuleBased
}

// Resolve decides every group.
func (r *RuleBasedResolver) Resolve(ctx context.Context, groups []identity.Group, cs [][]conflicts.Conflict) ([]Decision, error) {
	out := make([]Decision, len(groups))
	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = r.Decide(g, cs[i])
	}
	return out, nil
}

// Decide resolves one group. Code wins on signature mismatch, docs win on
// description mismatch, a one-sided group keeps its only record, and a
// clean pair keeps the code record with the doc record as alternate.
func (r *RuleBasedResolver) Decide(g identity.Group, cs []conflicts.Conflict) Decision {
	doc, code := identity.BestPair(g)
	d := Decision{Conflicts: cloneConflicts(cs)}

	switch {
	case doc == nil && code == nil:
		// Matching never emits empty groups.
		d.Chosen = records.Record{Identity: g.Identity}
		d.Resolution = provenance.Resolution{Resolver: ModeRuleBased.String(), Reason: "group has no records"}
		return d
	case code == nil:
		d.Chosen = *doc
		d.Resolution = provenance.Resolution{Resolver: ModeRuleBased.String(), Origin: records.OriginDocumentation, Reason: "only available record"}
		return d
	case doc == nil:
		d.Chosen = *code
		d.Resolution = provenance.Resolution{Resolver: ModeRuleBased.String(), Origin: records.OriginCode, Reason: "only available record"}
		return d
	}

	paths := make([]string, 0, len(cs))
	for _, c := range cs {
		paths = append(paths, c.Kind.String())
	}
	origin, reason := records.OriginCode, "default precedence"
	if f := r.authorities.Decide(paths...); f != nil {
		origin = f.Origin
		reason = f.Reason
		if reason == "" {
			reason = fmt.Sprintf("authority %s (priority %d)", f.Path, f.Priority)
		}
	}

	if origin == records.OriginDocumentation {
		d.Chosen, d.Alternate = *doc, code
	} else {
		d.Chosen, d.Alternate = *code, doc
	}
	d.Resolution = provenance.Resolution{Resolver: ModeRuleBased.String(), Origin: d.Chosen.Origin, Reason: reason}
	return d
}

func cloneConflicts(cs []conflicts.Conflict) []conflicts.Conflict {
	out := make([]conflicts.Conflict, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}
