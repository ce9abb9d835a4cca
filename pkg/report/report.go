// Package report renders a MergedSet as JSON, YAML or annotated markdown.
package report

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/reconciler"
)

// Style selects a report rendering.
type Style string

const (
	// StyleJSON renders the merged set with stable field names.
	StyleJSON Style = "json"
	// StyleAnnotatedMarkdown renders reference markdown with conflict callouts.
	StyleAnnotatedMarkdown Style = "annotated_markdown"
	// StyleYAML renders the merged set as YAML with the JSON field names.
	StyleYAML Style = "yaml"
)

// String returns the string representation of a style.
func (s Style) String() string {
	return string(s)
}

// Styles returns every supported style.
func Styles() []Style {
	return []Style{StyleJSON, StyleAnnotatedMarkdown, StyleYAML}
}

func styleNames() []string {
	out := make([]string, 0, len(Styles()))
	for _, s := range Styles() {
		out = append(out, s.String())
	}
	return out
}

// ParseStyle parses a style name. "markdown" and "md" name annotated markdown.
func ParseStyle(s string) (Style, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch name {
	case "json":
		return StyleJSON, nil
	case "yaml", "yml":
		return StyleYAML, nil
	case "annotated_markdown", "markdown", "md":
		return StyleAnnotatedMarkdown, nil
	}
	return "", errors.NewFormatError(s, styleNames()...)
}

// Format renders set in the given style.
func Format(set *reconciler.MergedSet, style Style) (string, error) {
	if set == nil {
		return "", errors.NewValidationError("set", nil, "cannot be nil")
	}
	switch style {
	case StyleJSON:
		return JSON(set)
	case StyleYAML:
		return YAML(set)
	case StyleAnnotatedMarkdown:
		return Markdown(set)
	default:
		return "", errors.NewFormatError(string(style), styleNames()...)
	}
}

// JSON renders set as indented JSON. Map keys are sorted, so equal sets
// render to equal bytes.
func JSON(set *reconciler.MergedSet) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(set); err != nil {
		return "", errors.WrapParse("json", "", err)
	}
	return buf.String(), nil
}

// YAML renders set as YAML.
func YAML(set *reconciler.MergedSet) (string, error) {
	data, err := yaml.MarshalWithOptions(set, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return "", errors.WrapParse("yaml", "", err)
	}
	return string(data), nil
}
