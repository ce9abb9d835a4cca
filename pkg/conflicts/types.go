// Package conflicts classifies the discrepancies between the documentation
// and code records of a match group into typed, severity-ranked conflicts.
package conflicts

import (
	"github.com/agentstation/apidrift/pkg/records"
)

// Kind is the category of a conflict.
type Kind string

// Conflict kinds, in rule order.
const (
	KindMissingInCode       Kind = "missing_in_code"
	KindMissingInDocs       Kind = "missing_in_docs"
	KindSignatureMismatch   Kind = "signature_mismatch"
	KindDescriptionMismatch Kind = "description_mismatch"
)

// Kinds returns every conflict kind in rule order.
func Kinds() []Kind {
	return []Kind{KindMissingInCode, KindMissingInDocs, KindSignatureMismatch, KindDescriptionMismatch}
}

// String returns the string representation of a kind.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Severity ranks how actionable a conflict is.
type Severity string

// Severities, most severe first.
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityInfo   Severity = "info"
)

// Severities returns every severity, most severe first.
func Severities() []Severity {
	return []Severity{SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
}

// String returns the string representation of a severity.
func (s Severity) String() string {
	return string(s)
}

// Rank orders severities: high is 0, info is 3, unknown values sort last.
func (s Severity) Rank() int {
	for i, known := range Severities() {
		if s == known {
			return i
		}
	}
	return len(Severities())
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s.Rank() < len(Severities())
}

// SeverityPtr returns a pointer to a severity, for use in Rule.
func SeverityPtr(s Severity) *Severity {
	return &s
}

// Conflict is a single detected discrepancy. DocRecord and CodeRecord point
// at copies of the best pair the conflict was derived from; either may be
// nil for one-sided groups.
type Conflict struct {
	Kind       Kind            `json:"kind" yaml:"kind"`
	Severity   Severity        `json:"severity" yaml:"severity"`
	Identity   string          `json:"identity" yaml:"identity"`
	DocRecord  *records.Record `json:"doc_record" yaml:"doc_record"`
	CodeRecord *records.Record `json:"code_record" yaml:"code_record"`
	Suggestion string          `json:"suggestion" yaml:"suggestion"`
}

// Clone returns a deep copy of the conflict.
func (c Conflict) Clone() Conflict {
	if c.DocRecord != nil {
		c.DocRecord = c.DocRecord.Ptr()
	}
	if c.CodeRecord != nil {
		c.CodeRecord = c.CodeRecord.Ptr()
	}
	return c
}

// Has reports whether any conflict in cs has the given kind.
func Has(cs []Conflict, kind Kind) bool {
	for _, c := range cs {
		if c.Kind == kind {
			return true
		}
	}
	return false
}
