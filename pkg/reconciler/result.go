package reconciler

import (
	"github.com/agentstation/apidrift/pkg/conflicts"
	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/identity"
	"github.com/agentstation/apidrift/pkg/provenance"
	"github.com/agentstation/apidrift/pkg/records"
)

// MergedSet is the final reconciliation output. The caller owns it.
type MergedSet struct {
	Entries []Entry `json:"entries" yaml:"entries"`
	Summary Summary `json:"summary" yaml:"summary"`

	// Provenance of every resolution, keyed by entry identity.
	Provenance provenance.Map `json:"-" yaml:"-"`
}

// Entry is one reconciled API.
type Entry struct {
	Identity   string                `json:"identity" yaml:"identity"`
	MatchedBy  identity.MatchedBy    `json:"matched_by" yaml:"matched_by"`
	Chosen     records.Record        `json:"chosen_record" yaml:"chosen_record"`
	Alternate  *records.Record       `json:"alternate_record" yaml:"alternate_record"`
	Conflicts  []conflicts.Conflict  `json:"conflicts" yaml:"conflicts"`
	Resolution provenance.Resolution `json:"resolution" yaml:"resolution"`
}

// HasConflicts reports whether the entry carries any conflict.
func (e Entry) HasConflicts() bool {
	return len(e.Conflicts) > 0
}

// Summary aggregates conflict counts over all entries.
type Summary struct {
	Total      int                        `json:"total" yaml:"total"`
	ByKind     map[conflicts.Kind]int     `json:"by_kind" yaml:"by_kind"`
	BySeverity map[conflicts.Severity]int `json:"by_severity" yaml:"by_severity"`
}

// Summarize counts the conflicts of entries. Every kind and severity is
// present in the maps, zero when absent.
func Summarize(entries []Entry) Summary {
	s := Summary{
		ByKind:     make(map[conflicts.Kind]int, len(conflicts.Kinds())),
		BySeverity: make(map[conflicts.Severity]int, len(conflicts.Severities())),
	}
	for _, k := range conflicts.Kinds() {
		s.ByKind[k] = 0
	}
	for _, sev := range conflicts.Severities() {
		s.BySeverity[sev] = 0
	}
	for _, e := range entries {
		for _, c := range e.Conflicts {
			s.Total++
			s.ByKind[c.Kind]++
			s.BySeverity[c.Severity]++
		}
	}
	return s
}

// Count returns the number of conflicts with the given severity.
func (s Summary) Count(sev conflicts.Severity) int {
	return s.BySeverity[sev]
}

// Check verifies that the summary is the exact aggregate of entries.
func (s Summary) Check(entries []Entry) error {
	want := Summarize(entries)
	if s.Total != want.Total {
		return errors.NewInvariantError("merge", "summary total equals conflict count", want.Total, s.Total)
	}
	kinds, severities := 0, 0
	for k, n := range want.ByKind {
		if s.ByKind[k] != n {
			return errors.NewInvariantError("merge", "summary by_kind["+string(k)+"]", n, s.ByKind[k])
		}
	}
	for _, n := range s.ByKind {
		kinds += n
	}
	for sev, n := range want.BySeverity {
		if s.BySeverity[sev] != n {
			return errors.NewInvariantError("merge", "summary by_severity["+string(sev)+"]", n, s.BySeverity[sev])
		}
	}
	for _, n := range s.BySeverity {
		severities += n
	}
	if kinds != s.Total || severities != s.Total {
		return errors.NewInvariantError("merge", "summary maps sum to total", s.Total, []int{kinds, severities})
	}
	return nil
}

// Check verifies the set's summary against its entries.
func (m *MergedSet) Check() error {
	return m.Summary.Check(m.Entries)
}

// Conflicts returns every conflict in entry order.
func (m *MergedSet) Conflicts() []conflicts.Conflict {
	var out []conflicts.Conflict
	for _, e := range m.Entries {
		out = append(out, e.Conflicts...)
	}
	return out
}

// BySeverity returns the conflicts with the given severity in entry order.
func (m *MergedSet) BySeverity(sev conflicts.Severity) []conflicts.Conflict {
	var out []conflicts.Conflict
	for _, e := range m.Entries {
		for _, c := range e.Conflicts {
			if c.Severity == sev {
				out = append(out, c)
			}
		}
	}
	return out
}
