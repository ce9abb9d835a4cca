package reconciler

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/agentstation/apidrift/internal/ai"
	"github.com/agentstation/apidrift/pkg/conflicts"
	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/identity"
	"github.com/agentstation/apidrift/pkg/logging"
	"github.com/agentstation/apidrift/pkg/provenance"
	"github.com/agentstation/apidrift/pkg/records"
)

// Generator produces a JSON document for a system instruction and a prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, system, prompt string) (string, error)
}

const systemPrompt = `You reconcile one API described by documentation and by source code.
You receive a JSON object with the match group and its detected conflicts.
Reply with a single JSON object and nothing else, shaped as:
{"identity": string, "signature": {"parameters": [{"name": string, "type": string, "default": string, "variadic": bool}], "return_type": string, "parsed": bool}, "description": string, "origin": "documentation" | "code", "location": {"source": string, "anchor": string}, "rewritten_suggestion": string}
identity must be one of the identities in the group. origin names the record you chose.
Code is ground truth for behavior; documentation is ground truth for intent.`

// aiRequest is the structured prompt sent per ambiguous group.
type aiRequest struct {
	Group     identity.Group       `json:"group"`
	Conflicts []conflicts.Conflict `json:"conflicts"`
}

// AIAssistedResolver asks a Generator to resolve ambiguous groups: both
// sides present and at least one conflict. Every other group, and every
// group whose request fails or whose response is invalid, is resolved by
// the rule-based resolver.
type AIAssistedResolver struct {
	gen         Generator
	rules       *RuleBasedResolver
	concurrency int
	maxBytes    int
}

// NewAIAssistedResolver creates an ai-assisted resolver from options.
func NewAIAssistedResolver(gen Generator, opts ...Option) (*AIAssistedResolver, error) {
	if gen == nil {
		return nil, &errors.ConfigError{Component: "ai_assisted", Message: "a text generator is required", Err: errors.ErrAPIKeyRequired}
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return newAIAssistedResolver(gen, o), nil
}

func newAIAssistedResolver(gen Generator, o *options) *AIAssistedResolver {
	var wrapped ai.Generator = gen
	wrapped = ai.WithTimeout(wrapped, o.timeout)
	wrapped = ai.WithRateLimit(wrapped, o.limiter)
	return &AIAssistedResolver{
		gen:         wrapped,
		rules:       NewRuleBasedResolver(o.authorities),
		concurrency: o.concurrency,
		maxBytes:    o.maxResponseBytes,
	}
}

// Mode returns ModeAIAssisted.
func (r *AIAssistedResolver) Mode() Mode {
	return ModeAIAssisted
}

// Ambiguous reports whether a group needs the collaborator.
func Ambiguous(g identity.Group, cs []conflicts.Conflict) bool {
	return g.HasDocs() && g.HasCode() && len(cs) > 0
}

// Resolve decides every group, issuing at most concurrency requests at once.
// Results are stored by index so ordering does not depend on completion.
func (r *AIAssistedResolver) Resolve(ctx context.Context, groups []identity.Group, cs [][]conflicts.Conflict) ([]Decision, error) {
	out := make([]Decision, len(groups))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.concurrency)
	for i := range groups {
		if !Ambiguous(groups[i], cs[i]) {
			out[i] = r.rules.Decide(groups[i], cs[i])
			continue
		}
		eg.Go(func() error {
			d, err := r.decide(egctx, groups[i], cs[i])
			if err != nil {
				return err
			}
			out[i] = d
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// decide resolves one ambiguous group. It only returns an error when ctx
// is canceled; collaborator failures fall back to rules.
func (r *AIAssistedResolver) decide(ctx context.Context, g identity.Group, cs []conflicts.Conflict) (Decision, error) {
	ctx = logging.WithIdentity(ctx, g.Identity)
	logger := logging.FromContext(ctx)

	d, err := r.ask(ctx, g, cs)
	if err == nil {
		logger.Debug().Str("origin", d.Chosen.Origin.String()).Msg("ai resolution accepted")
		return d, nil
	}
	if ctx.Err() != nil {
		return Decision{}, ctx.Err()
	}

	logger.Warn().Err(err).Msg("ai resolution failed, falling back to rule-based")
	d = r.rules.Decide(g, cs)
	d.Resolution.Resolver = ModeAIAssisted.String()
	d.Resolution.Fallback = true
	d.Resolution.Error = err.Error()
	return d, nil
}

func (r *AIAssistedResolver) ask(ctx context.Context, g identity.Group, cs []conflicts.Conflict) (Decision, error) {
	prompt, err := json.Marshal(aiRequest{Group: g, Conflicts: cs})
	if err != nil {
		return Decision{}, errors.NewResolverError(ModeAIAssisted.String(), g.Identity, "failed to encode request", err)
	}

	raw, err := r.gen.GenerateJSON(ctx, systemPrompt, string(prompt))
	if err != nil {
		return Decision{}, errors.NewResolverError(ModeAIAssisted.String(), g.Identity, "generation failed", err)
	}
	resp, err := parseResponse(ai.CleanJSON(raw), g, r.maxBytes)
	if err != nil {
		return Decision{}, errors.NewResolverError(ModeAIAssisted.String(), g.Identity, "invalid response", err)
	}

	doc, code := identity.BestPair(g)
	same, other := code, doc
	if resp.Origin == records.OriginDocumentation {
		same, other = doc, code
	}
	chosen, err := resp.record(same)
	if err != nil {
		return Decision{}, errors.NewResolverError(ModeAIAssisted.String(), g.Identity, "invalid record", err)
	}

	d := Decision{
		Chosen:    chosen,
		Alternate: other,
		Conflicts: cloneConflicts(cs),
		Resolution: provenance.Resolution{
			Resolver: ModeAIAssisted.String(),
			Origin:   chosen.Origin,
			Reason:   "chosen by text-generation collaborator",
		},
	}
	if resp.RewrittenSuggestion != "" {
		for i := range d.Conflicts {
			d.Conflicts[i].Suggestion = resp.RewrittenSuggestion
		}
	}
	return d, nil
}

// limiterFor converts requests per second into a limiter. Zero means none.
func limiterFor(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}
