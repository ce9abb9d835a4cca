// Package differ compares a documented signature with an implemented one
// and reports the differences as a changeset.
package differ

import (
	"fmt"
	"strings"

	"github.com/agentstation/apidrift/pkg/records"
)

// ChangeType represents the type of change, read from documentation to code.
type ChangeType string

const (
	// ChangeTypeAdd indicates code has something the documentation lacks.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates both sides have it with different values.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates the documentation has something code lacks.
	ChangeTypeRemove ChangeType = "remove"
	// ChangeTypeReorder indicates shared parameters appear in a different order.
	ChangeTypeReorder ChangeType = "reorder"
)

// FieldChange represents a change to a specific signature field.
type FieldChange struct {
	Path     string     // Field path (e.g., "parameters.delta.type")
	OldValue string     // Documented value
	NewValue string     // Implemented value
	Type     ChangeType // Type of change
}

// String renders the change on one line.
func (c FieldChange) String() string {
	switch c.Type {
	case ChangeTypeAdd:
		return fmt.Sprintf("+ %s: %s", c.Path, c.NewValue)
	case ChangeTypeRemove:
		return fmt.Sprintf("- %s: %s", c.Path, c.OldValue)
	default:
		return fmt.Sprintf("~ %s: %s -> %s", c.Path, c.OldValue, c.NewValue)
	}
}

// SignatureChangeset represents the differences between two signatures.
type SignatureChangeset struct {
	Added      []records.Parameter // Parameters only in code, in code order
	Removed    []records.Parameter // Parameters only in documentation, in doc order
	Types      []FieldChange       // Conflicting types of shared parameters
	Defaults   []FieldChange       // Conflicting defaults of shared parameters
	Variadic   []FieldChange       // Shared parameters whose variadic flag differs
	Reordered  bool                // Shared parameters appear in a different order
	ReturnType *FieldChange        // Conflicting return types
}

// HasChanges returns true if the changeset contains any changes.
func (c *SignatureChangeset) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0 || len(c.Types) > 0 ||
		len(c.Defaults) > 0 || len(c.Variadic) > 0 || c.Reordered || c.ReturnType != nil
}

// OnlyAdditions reports whether code merely extends the documented
// signature: it has extra parameters and nothing else differs.
func (c *SignatureChangeset) OnlyAdditions() bool {
	return len(c.Added) > 0 && len(c.Removed) == 0 && len(c.Types) == 0 &&
		len(c.Defaults) == 0 && len(c.Variadic) == 0 && !c.Reordered && c.ReturnType == nil
}

// Changes flattens the changeset into field changes in a fixed order:
// removals, additions, types, defaults, variadic flags, order, return type.
func (c *SignatureChangeset) Changes() []FieldChange {
	var out []FieldChange
	for _, p := range c.Removed {
		out = append(out, FieldChange{Path: "parameters." + p.Name, OldValue: p.String(), Type: ChangeTypeRemove})
	}
	for _, p := range c.Added {
		out = append(out, FieldChange{Path: "parameters." + p.Name, NewValue: p.String(), Type: ChangeTypeAdd})
	}
	out = append(out, c.Types...)
	out = append(out, c.Defaults...)
	out = append(out, c.Variadic...)
	if c.Reordered {
		out = append(out, FieldChange{Path: "parameters", Type: ChangeTypeReorder, OldValue: "documented order", NewValue: "implemented order"})
	}
	if c.ReturnType != nil {
		out = append(out, *c.ReturnType)
	}
	return out
}

// Summary describes the changeset in one line, e.g.
// "code adds snap; delta type float -> int".
func (c *SignatureChangeset) Summary() string {
	var parts []string
	if len(c.Added) > 0 {
		parts = append(parts, "code adds "+paramNames(c.Added))
	}
	if len(c.Removed) > 0 {
		parts = append(parts, "code lacks "+paramNames(c.Removed))
	}
	for _, ch := range c.Types {
		parts = append(parts, fmt.Sprintf("%s type %s -> %s", pathName(ch.Path), ch.OldValue, ch.NewValue))
	}
	for _, ch := range c.Defaults {
		parts = append(parts, fmt.Sprintf("%s default %s -> %s", pathName(ch.Path), ch.OldValue, ch.NewValue))
	}
	for _, ch := range c.Variadic {
		parts = append(parts, fmt.Sprintf("%s variadic %s -> %s", pathName(ch.Path), ch.OldValue, ch.NewValue))
	}
	if c.Reordered {
		parts = append(parts, "parameters reordered")
	}
	if c.ReturnType != nil {
		parts = append(parts, fmt.Sprintf("return type %s -> %s", orNone(c.ReturnType.OldValue), orNone(c.ReturnType.NewValue)))
	}
	if len(parts) == 0 {
		return "no differences"
	}
	return strings.Join(parts, "; ")
}

func paramNames(ps []records.Parameter) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

// pathName extracts "delta" from "parameters.delta.type".
func pathName(path string) string {
	parts := strings.Split(path, ".")
	if len(parts) >= 2 {
		return parts[1]
	}
	return path
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
