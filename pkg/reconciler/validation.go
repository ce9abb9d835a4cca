package reconciler

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/identity"
	"github.com/agentstation/apidrift/pkg/records"
)

// Bounds on an accepted AI response.
const (
	maxParameters     = 64
	maxFieldRunes     = 256
	maxDescription    = 8 << 10
	maxSuggestionRune = 4 << 10
)

// aiResponse is the record-shaped JSON a collaborator returns.
type aiResponse struct {
	Identity            string            `json:"identity"`
	Signature           records.Signature `json:"signature"`
	Description         string            `json:"description"`
	Origin              records.Origin    `json:"origin"`
	Location            records.Location  `json:"location"`
	RewrittenSuggestion string            `json:"rewritten_suggestion,omitempty"`
}

// ValidationResult collects the problems found in an AI response.
type ValidationResult struct {
	Errors []string
}

// IsValid returns true if validation passed.
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

func (v *ValidationResult) add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// String returns a string representation of the validation result.
func (v *ValidationResult) String() string {
	if v.IsValid() {
		return "Validation passed"
	}
	return fmt.Sprintf("Validation failed with %d errors: %s", len(v.Errors), strings.Join(v.Errors, "; "))
}

// parseResponse decodes and validates a collaborator response for group g.
func parseResponse(raw string, g identity.Group, maxBytes int) (*aiResponse, error) {
	if len(raw) > maxBytes {
		return nil, errors.NewValidationError("response", len(raw), fmt.Sprintf("exceeds %d bytes", maxBytes))
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	var resp aiResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	if result := validateResponse(&resp, g); !result.IsValid() {
		return nil, errors.NewValidationError("response", nil, result.String())
	}
	return &resp, nil
}

// validateResponse checks a response against the record schema and the
// group it answers.
func validateResponse(resp *aiResponse, g identity.Group) *ValidationResult {
	v := &ValidationResult{}

	if strings.TrimSpace(resp.Identity) == "" {
		v.add("identity is empty")
	} else if !slices.Contains(g.Identities(), resp.Identity) {
		v.add("identity %q does not belong to group %q", resp.Identity, g.Identity)
	}
	if !resp.Origin.Valid() {
		v.add("origin %q is not documentation or code", resp.Origin)
	} else if resp.Origin == records.OriginCode && !g.HasCode() || resp.Origin == records.OriginDocumentation && !g.HasDocs() {
		v.add("origin %q has no record in the group", resp.Origin)
	}

	if n := len(resp.Signature.Parameters); n > maxParameters {
		v.add("signature has %d parameters (max %d)", n, maxParameters)
	}
	for i, p := range resp.Signature.Parameters {
		if strings.TrimSpace(p.Name) == "" {
			v.add("parameter %d has no name", i)
		}
		if tooLong(p.Name) || tooLong(p.Type) || tooLong(p.Default) {
			v.add("parameter %d exceeds %d characters", i, maxFieldRunes)
		}
	}
	if tooLong(resp.Signature.ReturnType) {
		v.add("return type exceeds %d characters", maxFieldRunes)
	}
	if utf8.RuneCountInString(resp.Description) > maxDescription {
		v.add("description exceeds %d characters", maxDescription)
	}
	if utf8.RuneCountInString(resp.RewrittenSuggestion) > maxSuggestionRune {
		v.add("rewritten_suggestion exceeds %d characters", maxSuggestionRune)
	}
	return v
}

func tooLong(s string) bool {
	return utf8.RuneCountInString(s) > maxFieldRunes
}

// record converts an accepted response into a record, keeping the location
// of the group's record of the same origin when the response omits one.
func (r *aiResponse) record(fallback *records.Record) (records.Record, error) {
	loc := r.Location
	if loc.Source == "" && fallback != nil {
		loc = fallback.Location
	}
	return records.New(r.Identity, r.Origin, r.Signature.Clone(), r.Description, loc)
}
