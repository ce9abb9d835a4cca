package conflicts

import (
	"strings"
	"unicode"

	"github.com/agentstation/apidrift/pkg/differ"
	"github.com/agentstation/apidrift/pkg/identity"
	"github.com/agentstation/apidrift/pkg/records"
)

// Suggestions attached to one-sided conflicts.
const (
	SuggestionMissingInCode = "remove from documentation or confirm the API still exists in code."
	SuggestionMissingInDocs = "add documentation for this implemented API."
)

// defaultMinDescription is the length both descriptions must exceed before
// they are compared.
const defaultMinDescription = 10

// Classifier applies the conflict rule table to match groups. The zero
// value uses the default differ and severities.
type Classifier struct {
	// Rules overrides severities or ignores kinds.
	Rules *Rules

	// Differ compares the best pair's signatures. Defaults to differ.New().
	Differ differ.Differ

	// MinDescription is the length, in runes, both descriptions must exceed
	// to be compared. Zero means 10.
	MinDescription int
}

var defaultClassifier = &Classifier{}

// Classify applies the default rule table to one group.
func Classify(g identity.Group) []Conflict {
	return defaultClassifier.Classify(g)
}

// ClassifyAll applies the default rule table to every group. The result is
// index aligned with groups.
func ClassifyAll(groups []identity.Group) [][]Conflict {
	return defaultClassifier.ClassifyAll(groups)
}

// ClassifyAll classifies every group. The result is index aligned with groups.
func (c *Classifier) ClassifyAll(groups []identity.Group) [][]Conflict {
	out := make([][]Conflict, len(groups))
	for i, g := range groups {
		out[i] = c.Classify(g)
	}
	return out
}

// Classify returns the conflicts of one group, ordered by rule:
//
//  1. docs only: missing_in_code (high)
//  2. code only: missing_in_docs (medium)
//  3. both: signature_mismatch of the best pair, at the highest severity found
//  4. both, no signature mismatch: description_mismatch (low)
//
// A clean match returns nil.
func (c *Classifier) Classify(g identity.Group) []Conflict {
	doc, code := identity.BestPair(g)

	switch {
	case doc == nil && code == nil:
		return nil
	case code == nil:
		return c.emit(nil, Conflict{
			Kind:       KindMissingInCode,
			Severity:   SeverityHigh,
			Identity:   g.Identity,
			DocRecord:  doc,
			Suggestion: SuggestionMissingInCode,
		})
	case doc == nil:
		return c.emit(nil, Conflict{
			Kind:       KindMissingInDocs,
			Severity:   SeverityMedium,
			Identity:   g.Identity,
			CodeRecord: code,
			Suggestion: SuggestionMissingInDocs,
		})
	}

	var out []Conflict
	signatureConflict := false
	if sc, ok := c.signatureConflict(g.Identity, doc, code); ok {
		signatureConflict = true
		out = c.emit(out, sc)
	}
	if !signatureConflict {
		if dc, ok := c.descriptionConflict(g.Identity, doc, code); ok {
			out = c.emit(out, dc)
		}
	}
	return out
}

func (c *Classifier) emit(out []Conflict, conflict Conflict) []Conflict {
	conflict, keep := c.Rules.apply(conflict)
	if !keep {
		return out
	}
	return append(out, conflict)
}

func (c *Classifier) signatureDiffer() differ.Differ {
	if c.Differ != nil {
		return c.Differ
	}
	return defaultDiffer
}

var defaultDiffer = differ.New()

// signatureConflict compares the pair's signatures. It is skipped when
// either signature could not be parsed.
func (c *Classifier) signatureConflict(id string, doc, code *records.Record) (Conflict, bool) {
	if !doc.Signature.Parsed || !code.Signature.Parsed {
		return Conflict{}, false
	}
	cs := c.signatureDiffer().Signatures(doc.Signature, code.Signature)
	if !cs.HasChanges() {
		return Conflict{}, false
	}

	var b strings.Builder
	if cs.OnlyAdditions() {
		b.WriteString("document the parameters the implementation adds: ")
	} else {
		b.WriteString("update the documented signature to match the implementation: ")
	}
	b.WriteString(cs.Summary())
	b.WriteString(".\n\n")
	b.WriteString(differ.Render(*doc, *code))

	return Conflict{
		Kind:       KindSignatureMismatch,
		Severity:   signatureSeverity(cs),
		Identity:   id,
		DocRecord:  doc,
		CodeRecord: code,
		Suggestion: b.String(),
	}, true
}

// signatureSeverity is high when the documentation describes something the
// code contradicts or lacks, and medium when code only extends, reorders or
// changes defaults or variadic flags.
func signatureSeverity(cs *differ.SignatureChangeset) Severity {
	if len(cs.Types) > 0 || len(cs.Removed) > 0 || cs.ReturnType != nil {
		return SeverityHigh
	}
	return SeverityMedium
}

func (c *Classifier) descriptionConflict(id string, doc, code *records.Record) (Conflict, bool) {
	minLen := c.MinDescription
	if minLen <= 0 {
		minLen = defaultMinDescription
	}
	d := normalizeDescription(doc.Description)
	k := normalizeDescription(code.Description)
	if len([]rune(strings.TrimSpace(doc.Description))) <= minLen || len([]rune(strings.TrimSpace(code.Description))) <= minLen {
		return Conflict{}, false
	}
	if d == k {
		return Conflict{}, false
	}
	return Conflict{
		Kind:       KindDescriptionMismatch,
		Severity:   SeverityLow,
		Identity:   id,
		DocRecord:  doc,
		CodeRecord: code,
		Suggestion: "reconcile the documented description with the implementation's docstring.",
	}, true
}

// normalizeDescription lowercases, drops punctuation and collapses whitespace.
func normalizeDescription(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
