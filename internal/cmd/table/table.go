// Package table converts reconciliation results into table data for CLI output.
package table

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/apidrift/pkg/conflicts"
	"github.com/agentstation/apidrift/pkg/reconciler"
	"github.com/agentstation/apidrift/pkg/records"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

func label(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// SummaryToTableData renders per-kind and per-severity counts.
func SummaryToTableData(s reconciler.Summary) Data {
	rows := [][]string{{"Entries", strconv.Itoa(s.Total)}}
	for _, k := range conflicts.Kinds() {
		rows = append(rows, []string{label(k.String()), strconv.Itoa(s.ByKind[k])})
	}
	for _, sev := range conflicts.Severities() {
		rows = append(rows, []string{label(sev.String()) + " Severity", strconv.Itoa(s.BySeverity[sev])})
	}
	return Data{
		Headers:         []string{"Metric", "Count"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// ConflictsToTableData lists every conflict, highest severity first.
// Entries keep identity order within a severity.
func ConflictsToTableData(set *reconciler.MergedSet) Data {
	var rows [][]string
	for _, sev := range conflicts.Severities() {
		for _, e := range set.Entries {
			for _, c := range e.Conflicts {
				if c.Severity != sev {
					continue
				}
				rows = append(rows, []string{
					e.Identity,
					label(c.Kind.String()),
					label(c.Severity.String()),
					string(e.Chosen.Origin),
					e.Resolution.Resolver,
				})
			}
		}
	}
	return Data{
		Headers: []string{"Identity", "Kind", "Severity", "Chosen", "Resolver"},
		Rows:    rows,
	}
}

// SymbolsToTableData lists extracted code symbols.
func SymbolsToTableData(files [][]records.RawCodeSymbol) Data {
	var rows [][]string
	for _, f := range files {
		for _, s := range f {
			params := make([]string, 0, len(s.Parameters))
			for _, p := range s.Parameters {
				params = append(params, p.Name)
			}
			rows = append(rows, []string{
				s.QualifiedName,
				strings.Join(params, ", "),
				s.ReturnType,
				s.FilePath + ":" + strconv.Itoa(s.Line),
			})
		}
	}
	return Data{
		Headers: []string{"Symbol", "Parameters", "Returns", "Location"},
		Rows:    rows,
	}
}
