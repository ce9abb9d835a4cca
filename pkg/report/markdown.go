package report

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/apidrift/pkg/conflicts"
	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/reconciler"
	"github.com/agentstation/apidrift/pkg/records"
)

// Title heads every markdown report.
const Title = "API Reconciliation Report"

// Markdown renders set as annotated reference markdown: a summary table,
// a section listing every high severity conflict, then one section per
// entry. Entries with conflicts get one callout per conflict and a
// side-by-side view of both records; clean entries render as plain
// reference content.
func Markdown(set *reconciler.MergedSet) (string, error) {
	b := newBuilder()
	b.H1(Title).LF()

	writeSummary(b, set)
	writeHighSeverity(b, set)

	b.H2("Entries").LF()
	for _, e := range set.Entries {
		writeEntry(b, e)
	}

	out, err := b.Build()
	if err != nil {
		return "", errors.WrapIO("build", "markdown", err)
	}
	return out, nil
}

// Label title-cases a snake_case value, e.g. "missing_in_code" to
// "Missing In Code".
func Label(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

func writeSummary(b *builder, set *reconciler.MergedSet) {
	b.H2("Summary").LF()
	rows := [][]string{
		{"Entries", strconv.Itoa(len(set.Entries))},
		{"Conflicts", strconv.Itoa(set.Summary.Total)},
	}
	for _, k := range conflicts.Kinds() {
		rows = append(rows, []string{Label(k.String()), strconv.Itoa(set.Summary.ByKind[k])})
	}
	for _, s := range conflicts.Severities() {
		rows = append(rows, []string{Label(s.String()) + " severity", strconv.Itoa(set.Summary.BySeverity[s])})
	}
	b.Table([]string{"Metric", "Count"}, rows).LF()
}

func writeHighSeverity(b *builder, set *reconciler.MergedSet) {
	b.H2("High severity").LF()
	high := set.BySeverity(conflicts.SeverityHigh)
	if len(high) == 0 {
		b.PlainText("No high severity conflicts.").LF()
		return
	}
	items := make([]string, len(high))
	for i, c := range high {
		items[i] = fmt.Sprintf("`%s`: %s. %s", c.Identity, c.Kind, firstParagraph(c.Suggestion))
	}
	b.BulletList(items...).LF()
}

func writeEntry(b *builder, e reconciler.Entry) {
	b.H3(e.Identity).LF()
	b.CodeBlock("text", e.Chosen.RenderSignature()).LF()
	if e.Chosen.Description != "" {
		b.PlainText(e.Chosen.Description).LF()
	}
	if src := e.Chosen.Location.String(); src != "" {
		b.PlainTextf("Source: `%s` (%s)", src, e.Chosen.Origin).LF()
	}
	if !e.HasConflicts() {
		return
	}

	for _, c := range e.Conflicts {
		title := fmt.Sprintf("⚠️ Conflict: %s (%s)", c.Kind, c.Severity)
		b.Alert("warning", title, calloutBody(c.Suggestion))
	}

	if doc, code := sides(e); doc != nil && code != nil {
		b.SideBySide("Documentation", doc.RenderSignature(), "Code", code.RenderSignature())
	}
}

// calloutBody renders a suggestion for a quote block, fencing a trailing
// unified diff.
func calloutBody(suggestion string) string {
	head, tail, found := strings.Cut(suggestion, "\n\n")
	if !found || !strings.HasPrefix(tail, "---") {
		return suggestion
	}
	return head + "\n\n```diff\n" + strings.TrimRight(tail, "\n") + "\n```"
}

func firstParagraph(s string) string {
	head, _, _ := strings.Cut(s, "\n\n")
	return strings.TrimSpace(head)
}

// sides returns the documentation and code records of an entry, preferring
// the records its conflicts were classified on.
func sides(e reconciler.Entry) (doc, code *records.Record) {
	for _, c := range e.Conflicts {
		if c.DocRecord != nil && c.CodeRecord != nil {
			return c.DocRecord, c.CodeRecord
		}
	}
	for _, r := range []*records.Record{&e.Chosen, e.Alternate} {
		if r == nil {
			continue
		}
		switch r.Origin {
		case records.OriginDocumentation:
			doc = r
		case records.OriginCode:
			code = r
		}
	}
	return doc, code
}
