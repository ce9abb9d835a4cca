// Package records defines the canonical API record shared by every stage of
// the reconciliation pipeline, together with the raw shapes produced by the
// documentation scraper and the code analyzer.
//
// Records are values. Constructors copy their inputs and accessors return
// copies, so a Record never changes after the normalizer emits it.
package records

import (
	"fmt"
	"strings"

	"github.com/agentstation/apidrift/pkg/errors"
)

// Origin identifies which side of the reconciliation a record came from.
type Origin string

// Origin values.
const (
	OriginDocumentation Origin = "documentation"
	OriginCode          Origin = "code"
)

// String returns the string representation of an origin.
func (o Origin) String() string {
	return string(o)
}

// Valid reports whether o is a known origin.
func (o Origin) Valid() bool {
	return o == OriginDocumentation || o == OriginCode
}

// Parameter is one entry of a signature's parameter list.
type Parameter struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	Variadic bool   `json:"variadic,omitempty" yaml:"variadic,omitempty"`
}

// Typed reports whether the parameter carries a type annotation.
func (p Parameter) Typed() bool {
	return strings.TrimSpace(p.Type) != ""
}

// String renders the parameter as `name: type = default`.
func (p Parameter) String() string {
	var b strings.Builder
	if p.Variadic {
		b.WriteString("*")
	}
	b.WriteString(p.Name)
	if p.Type != "" {
		b.WriteString(": ")
		b.WriteString(p.Type)
	}
	if p.Default != "" {
		b.WriteString(" = ")
		b.WriteString(p.Default)
	}
	return b.String()
}

// Signature is an ordered parameter list plus an optional return type.
// Parsed is false when no signature could be derived for the record, which
// is different from a parsed signature with zero parameters.
type Signature struct {
	Parameters []Parameter `json:"parameters" yaml:"parameters"`
	ReturnType string      `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Parsed     bool        `json:"parsed" yaml:"parsed"`
}

// Clone returns a deep copy of the signature.
func (s Signature) Clone() Signature {
	out := s
	out.Parameters = nil
	if len(s.Parameters) > 0 {
		out.Parameters = make([]Parameter, len(s.Parameters))
		copy(out.Parameters, s.Parameters)
	}
	return out
}

// TypedCount returns the number of parameters with a type annotation.
func (s Signature) TypedCount() int {
	n := 0
	for _, p := range s.Parameters {
		if p.Typed() {
			n++
		}
	}
	return n
}

// Names returns the parameter names in order.
func (s Signature) Names() []string {
	names := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		names[i] = p.Name
	}
	return names
}

// Render formats the signature for display, e.g.
// `move_local_x(delta: float, snap: bool = False) -> None`.
func (s Signature) Render(name string) string {
	parts := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		parts[i] = p.String()
	}
	out := fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
	if s.ReturnType != "" {
		out += " -> " + s.ReturnType
	}
	return out
}

// Location points back at where a record was extracted from.
type Location struct {
	Source string `json:"source" yaml:"source"`
	Anchor string `json:"anchor,omitempty" yaml:"anchor,omitempty"`
}

// String renders the location as `source#anchor`.
func (l Location) String() string {
	if l.Anchor == "" {
		return l.Source
	}
	return l.Source + "#" + l.Anchor
}

// Record is one documented or implemented API surface from a single origin.
type Record struct {
	Identity    string    `json:"identity" yaml:"identity"`
	Signature   Signature `json:"signature" yaml:"signature"`
	Description string    `json:"description" yaml:"description"`
	Origin      Origin    `json:"origin" yaml:"origin"`
	Location    Location  `json:"location" yaml:"location"`
}

// New constructs a validated record. The signature is copied.
func New(identity string, origin Origin, sig Signature, description string, loc Location) (Record, error) {
	r := Record{
		Identity:    identity,
		Signature:   sig.Clone(),
		Description: description,
		Origin:      origin,
		Location:    loc,
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate checks the record invariants.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Identity) == "" {
		return errors.NewValidationError("identity", r.Identity, "cannot be empty")
	}
	if !r.Origin.Valid() {
		return errors.NewValidationError("origin", r.Origin, fmt.Sprintf("must be %q or %q", OriginDocumentation, OriginCode))
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	r.Signature = r.Signature.Clone()
	return r
}

// Ptr returns a pointer to a copy of the record.
func (r Record) Ptr() *Record {
	c := r.Clone()
	return &c
}

// Parameters returns a copy of the record's parameters.
func (r Record) Parameters() []Parameter {
	return r.Signature.Clone().Parameters
}

// RenderSignature renders the record's signature under its identity.
func (r Record) RenderSignature() string {
	return r.Signature.Render(r.Identity)
}

// Fingerprint returns a string that is equal for records with equal content.
// It is used to compare record multisets.
func (r Record) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%q|%s|%q|%q|%t|%q", r.Origin, r.Identity, r.Description, r.Location, r.Location.Anchor, r.Signature.ReturnType, r.Signature.Parsed, r.Signature.Names())
	for _, p := range r.Signature.Parameters {
		fmt.Fprintf(&b, "|%q:%q:%q:%t", p.Name, p.Type, p.Default, p.Variadic)
	}
	return b.String()
}

// Split partitions records by origin, preserving order.
func Split(recs []Record) (docs, code []Record) {
	for _, r := range recs {
		switch r.Origin {
		case OriginDocumentation:
			docs = append(docs, r)
		case OriginCode:
			code = append(code, r)
		}
	}
	return docs, code
}

// CloneAll deep-copies a record slice. A nil slice stays nil.
func CloneAll(recs []Record) []Record {
	if recs == nil {
		return nil
	}
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}
