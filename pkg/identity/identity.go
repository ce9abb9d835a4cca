// Package identity aligns documentation and code records that describe the
// same API.
//
// Records are grouped by exact, case-sensitive identity first. Identities
// left on one side only are retried under a normalized name (see
// records.NormalizeName), and a fallback pair is accepted only when the
// normalized key is unique among the unmatched identities of both sides.
// Ambiguous candidates stay unmatched and surface later as one-sided groups.
package identity

import (
	"sort"

	"github.com/agentstation/apidrift/internal/matcher"
	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/records"
)

// MatchedBy records how a group was formed.
type MatchedBy string

// MatchedBy values.
const (
	MatchedExact      MatchedBy = "exact"
	MatchedNormalized MatchedBy = "normalized"
	MatchedNone       MatchedBy = "none"
)

// Group is the set of records believed to describe one API identity.
// A group with no doc records or no code records is one-sided.
type Group struct {
	Identity    string           `json:"identity" yaml:"identity"`
	DocRecords  []records.Record `json:"doc_records" yaml:"doc_records"`
	CodeRecords []records.Record `json:"code_records" yaml:"code_records"`
	MatchedBy   MatchedBy        `json:"matched_by" yaml:"matched_by"`
}

// HasDocs reports whether the group has documentation records.
func (g Group) HasDocs() bool { return len(g.DocRecords) > 0 }

// HasCode reports whether the group has code records.
func (g Group) HasCode() bool { return len(g.CodeRecords) > 0 }

// OneSided reports whether only one origin is present.
func (g Group) OneSided() bool { return g.HasDocs() != g.HasCode() }

// Identities returns the distinct record identities in the group, sorted.
func (g Group) Identities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, set := range [][]records.Record{g.DocRecords, g.CodeRecords} {
		for _, r := range set {
			if !seen[r.Identity] {
				seen[r.Identity] = true
				out = append(out, r.Identity)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Result is the output of MatchWithOptions.
type Result struct {
	Groups   []Group
	Excluded []records.Record
}

type options struct {
	exclude  *matcher.Set
	fallback bool
}

// Option configures matching.
type Option func(*options) error

// WithExclusions drops records whose identity matches any of the glob or
// regex patterns before matching.
func WithExclusions(patterns ...string) Option {
	return func(o *options) error {
		set, err := matcher.NewSet(patterns)
		if err != nil {
			return errors.NewValidationError("exclude", patterns, err.Error())
		}
		o.exclude = set
		return nil
	}
}

// WithFallback enables or disables normalized-name fallback matching.
func WithFallback(enabled bool) Option {
	return func(o *options) error {
		o.fallback = enabled
		return nil
	}
}

// Match groups records with default options.
func Match(docs, code []records.Record) ([]Group, error) {
	res, err := MatchWithOptions(docs, code)
	if err != nil {
		return nil, err
	}
	return res.Groups, nil
}

// MatchWithOptions groups doc and code records. Groups are ordered by
// identity. Every input record appears in exactly one group or in Excluded;
// a violation is reported as an *errors.InvariantError.
func MatchWithOptions(docs, code []records.Record, opts ...Option) (*Result, error) {
	o := &options{fallback: true}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	keptDocs := make([]records.Record, 0, len(docs))
	keptCode := make([]records.Record, 0, len(code))
	for _, r := range docs {
		if o.exclude.Match(r.Identity) {
			res.Excluded = append(res.Excluded, r.Clone())
			continue
		}
		keptDocs = append(keptDocs, r)
	}
	for _, r := range code {
		if o.exclude.Match(r.Identity) {
			res.Excluded = append(res.Excluded, r.Clone())
			continue
		}
		keptCode = append(keptCode, r)
	}

	groups := make(map[string]*Group)
	for _, r := range keptDocs {
		g := groupFor(groups, r.Identity)
		g.DocRecords = append(g.DocRecords, r.Clone())
	}
	for _, r := range keptCode {
		g := groupFor(groups, r.Identity)
		g.CodeRecords = append(g.CodeRecords, r.Clone())
	}

	for _, g := range groups {
		if g.HasDocs() && g.HasCode() {
			g.MatchedBy = MatchedExact
		}
	}

	if o.fallback {
		fallbackMerge(groups)
	}

	res.Groups = make([]Group, 0, len(groups))
	for _, g := range groups {
		res.Groups = append(res.Groups, *g)
	}
	sort.Slice(res.Groups, func(i, j int) bool {
		return res.Groups[i].Identity < res.Groups[j].Identity
	})

	if err := checkConservation(docs, code, res); err != nil {
		return nil, err
	}
	return res, nil
}

func groupFor(groups map[string]*Group, identity string) *Group {
	g, ok := groups[identity]
	if !ok {
		g = &Group{Identity: identity, MatchedBy: MatchedNone}
		groups[identity] = g
	}
	return g
}

// fallbackMerge pairs one-sided groups whose normalized names are unique
// on both sides. The merged group takes the code identity.
func fallbackMerge(groups map[string]*Group) {
	docKeys := make(map[string][]string)
	codeKeys := make(map[string][]string)
	for id, g := range groups {
		if !g.OneSided() {
			continue
		}
		key := records.NormalizeName(id)
		if key == "" {
			continue
		}
		if g.HasDocs() {
			docKeys[key] = append(docKeys[key], id)
		} else {
			codeKeys[key] = append(codeKeys[key], id)
		}
	}

	for key, docIDs := range docKeys {
		codeIDs := codeKeys[key]
		if len(docIDs) != 1 || len(codeIDs) != 1 {
			continue
		}
		docGroup := groups[docIDs[0]]
		codeGroup := groups[codeIDs[0]]
		codeGroup.DocRecords = docGroup.DocRecords
		codeGroup.MatchedBy = MatchedNormalized
		delete(groups, docIDs[0])
	}
}

// checkConservation verifies that the groups and exclusions hold exactly
// the input records, as multisets, per origin.
func checkConservation(docs, code []records.Record, res *Result) error {
	var gotDocs, gotCode []records.Record
	for _, g := range res.Groups {
		gotDocs = append(gotDocs, g.DocRecords...)
		gotCode = append(gotCode, g.CodeRecords...)
	}
	exDocs, exCode := records.Split(res.Excluded)
	gotDocs = append(gotDocs, exDocs...)
	gotCode = append(gotCode, exCode...)

	if !sameMultiset(docs, gotDocs) {
		return errors.NewInvariantError("match", "doc record conservation", len(docs), len(gotDocs))
	}
	if !sameMultiset(code, gotCode) {
		return errors.NewInvariantError("match", "code record conservation", len(code), len(gotCode))
	}
	return nil
}

func sameMultiset(want, got []records.Record) bool {
	if len(want) != len(got) {
		return false
	}
	counts := make(map[string]int, len(want))
	for _, r := range want {
		counts[r.Fingerprint()]++
	}
	for _, r := range got {
		fp := r.Fingerprint()
		if counts[fp] == 0 {
			return false
		}
		counts[fp]--
	}
	return true
}
