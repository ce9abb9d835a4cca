package report_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/identity"
	"github.com/agentstation/apidrift/pkg/reconciler"
	"github.com/agentstation/apidrift/pkg/records"
	"github.com/agentstation/apidrift/pkg/report"
)

func param(name, typ, def string) records.Parameter {
	return records.Parameter{Name: name, Type: typ, Default: def}
}

func mergedSet(t *testing.T) *reconciler.MergedSet {
	t.Helper()
	docs := []records.Record{
		{
			Identity:    "Node3D.move_local_x",
			Origin:      records.OriginDocumentation,
			Signature:   records.Signature{Parsed: true, Parameters: []records.Parameter{param("delta", "float", "")}},
			Description: "Moves the node locally",
			Location:    records.Location{Source: "https://docs.example/node3d", Anchor: "move_local_x"},
		},
		{
			Identity:    "Node2D.rotate",
			Origin:      records.OriginDocumentation,
			Signature:   records.Signature{Parsed: true, Parameters: []records.Parameter{param("angle", "float", "")}},
			Description: "Rotates the node",
		},
		{
			Identity:    "Node2D.show",
			Origin:      records.OriginDocumentation,
			Signature:   records.Signature{Parsed: true},
			Description: "Shows the node",
		},
	}
	code := []records.Record{
		{
			Identity:    "Node3D.move_local_x",
			Origin:      records.OriginCode,
			Signature:   records.Signature{Parsed: true, ReturnType: "None", Parameters: []records.Parameter{param("delta", "float", ""), param("snap", "bool", "False")}},
			Description: "Moves locally, optionally snapping to grid",
			Location:    records.Location{Source: "node3d.py", Anchor: "L42"},
		},
		{
			Identity:    "Node2D.show",
			Origin:      records.OriginCode,
			Signature:   records.Signature{Parsed: true},
			Description: "Shows the node",
		},
	}
	groups, err := identity.Match(docs, code)
	require.NoError(t, err)
	set, err := reconciler.Merge(context.Background(), groups, nil, reconciler.ModeRuleBased)
	require.NoError(t, err)
	return set
}

func TestJSONFieldNames(t *testing.T) {
	out, err := report.Format(mergedSet(t), report.StyleJSON)
	require.NoError(t, err)

	for _, field := range []string{
		`"entries"`, `"identity"`, `"chosen_record"`, `"alternate_record"`,
		`"conflicts"`, `"kind"`, `"severity"`, `"doc_record"`, `"code_record"`,
		`"suggestion"`, `"summary"`, `"total"`, `"by_kind"`, `"by_severity"`,
		`"signature"`, `"parameters"`, `"description"`, `"origin"`, `"location"`,
	} {
		assert.Contains(t, out, field)
	}

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	summary := decoded["summary"].(map[string]any)
	assert.EqualValues(t, 2, summary["total"])
}

func TestJSONDeterministic(t *testing.T) {
	a, err := report.Format(mergedSet(t), report.StyleJSON)
	require.NoError(t, err)
	b, err := report.Format(mergedSet(t), report.StyleJSON)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// Entries are ordered by identity.
	assert.Less(t, strings.Index(a, `"Node2D.rotate"`), strings.Index(a, `"Node3D.move_local_x"`))
}

func TestYAML(t *testing.T) {
	out, err := report.Format(mergedSet(t), report.StyleYAML)
	require.NoError(t, err)
	assert.Contains(t, out, "chosen_record:")
	assert.Contains(t, out, "by_severity:")

	var decoded struct {
		Entries []struct {
			Identity string `yaml:"identity"`
		} `yaml:"entries"`
		Summary struct {
			Total int `yaml:"total"`
		} `yaml:"summary"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded.Entries, 3)
	assert.Equal(t, 2, decoded.Summary.Total)
}

func TestMarkdownMoveLocalX(t *testing.T) {
	out, err := report.Format(mergedSet(t), report.StyleAnnotatedMarkdown)
	require.NoError(t, err)

	assert.Contains(t, out, "# "+report.Title)
	assert.Contains(t, out, "⚠️ Conflict: signature_mismatch (medium)")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "Node3D.move_local_x(delta: float)")
	assert.Contains(t, out, "Node3D.move_local_x(delta: float, snap: bool = False) -> None")
	assert.Contains(t, out, "```diff")
}

func TestMarkdownHighSeverityFirst(t *testing.T) {
	out, err := report.Format(mergedSet(t), report.StyleAnnotatedMarkdown)
	require.NoError(t, err)

	high := strings.Index(out, "## High severity")
	entries := strings.Index(out, "## Entries")
	require.Positive(t, high)
	require.Positive(t, entries)
	assert.Less(t, high, entries)

	listed := strings.Index(out, "`Node2D.rotate`: missing_in_code")
	assert.Greater(t, listed, high)
	assert.Less(t, listed, entries)
	assert.Contains(t, out, "⚠️ Conflict: missing_in_code (high)")
}

func TestMarkdownCleanEntryHasNoCallout(t *testing.T) {
	out, err := report.Format(mergedSet(t), report.StyleAnnotatedMarkdown)
	require.NoError(t, err)

	start := strings.Index(out, "### Node2D.show")
	require.Positive(t, start)
	section := out[start+len("### "):]
	if next := strings.Index(section, "### "); next >= 0 {
		section = section[:next]
	}
	assert.NotContains(t, section, "[!WARNING]")
	assert.NotContains(t, section, "<table>")
	assert.Contains(t, section, "Node2D.show()")
	assert.Equal(t, 2, strings.Count(out, "⚠️ Conflict"))
}

func TestMarkdownNoHighSeverity(t *testing.T) {
	set := &reconciler.MergedSet{Summary: reconciler.Summarize(nil)}
	out, err := report.Format(set, report.StyleAnnotatedMarkdown)
	require.NoError(t, err)
	assert.Contains(t, out, "No high severity conflicts.")
}

func TestUnsupportedStyle(t *testing.T) {
	_, err := report.Format(mergedSet(t), report.Style("pdf"))
	require.Error(t, err)
	assert.True(t, errors.IsUnsupportedFormat(err))

	_, err = report.Format(nil, report.StyleJSON)
	assert.True(t, errors.IsValidationError(err))
}

func TestParseStyle(t *testing.T) {
	for in, want := range map[string]report.Style{
		"json":               report.StyleJSON,
		"YAML":               report.StyleYAML,
		"annotated-markdown": report.StyleAnnotatedMarkdown,
		"md":                 report.StyleAnnotatedMarkdown,
	} {
		got, err := report.ParseStyle(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := report.ParseStyle("html")
	assert.True(t, errors.IsUnsupportedFormat(err))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Missing In Code", report.Label("missing_in_code"))
	assert.Equal(t, "High", report.Label("high"))
}
