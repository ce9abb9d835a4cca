// Package authority decides which origin is authoritative when the
// documentation and the code disagree.
//
// Each Field maps a resolution path (a conflict kind such as
// "signature_mismatch", or "clean" for a conflict-free pair) to the origin
// that wins, with a priority used when several paths apply to one group.
package authority

import (
	"path/filepath"

	"github.com/agentstation/apidrift/pkg/records"
)

// Resolution paths that are not conflict kinds.
const (
	PathClean    = "clean"
	PathFallback = "*"
)

// Authority determines which origin is authoritative for a resolution path.
type Authority interface {
	// Find returns the authority for a path, or nil if none matches.
	Find(path string) *Field

	// Decide returns the winning authority among several paths. With no
	// paths it decides the clean case.
	Decide(paths ...string) *Field
}

// Field defines origin priority for a resolution path.
type Field struct {
	Path     string         `json:"path" yaml:"path"`         // e.g., "signature_mismatch", "clean", "*"
	Origin   records.Origin `json:"origin" yaml:"origin"`     // Which origin is authoritative
	Priority int            `json:"priority" yaml:"priority"` // Priority (higher = more authoritative)
	Reason   string         `json:"reason" yaml:"reason"`     // Why this origin wins
}

type authorities struct {
	fields []Field
}

// New creates an Authority. Without fields it uses Defaults; fields given
// here replace defaults with the same path and add the rest.
func New(fields ...Field) Authority {
	merged := Defaults()
	for _, f := range fields {
		replaced := false
		for i := range merged {
			if merged[i].Path == f.Path {
				merged[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, f)
		}
	}
	return &authorities{fields: merged}
}

// Defaults returns the standard precedence: code is ground truth for
// behavior, documentation is ground truth for intent.
func Defaults() []Field {
	return []Field{
		{Path: "signature_mismatch", Origin: records.OriginCode, Priority: 100, Reason: "code is ground truth for behavior"},
		{Path: "description_mismatch", Origin: records.OriginDocumentation, Priority: 90, Reason: "documentation is ground truth for intent"},
		{Path: PathClean, Origin: records.OriginCode, Priority: 50, Reason: "records agree; implementation kept as reference"},
		{Path: PathFallback, Origin: records.OriginCode, Priority: 0, Reason: "default precedence"},
	}
}

// Find returns the authority configuration for a resolution path.
func (a *authorities) Find(path string) *Field {
	return ByField(path, a.fields)
}

// Decide returns the highest priority authority across paths.
func (a *authorities) Decide(paths ...string) *Field {
	if len(paths) == 0 {
		return a.Find(PathClean)
	}
	var best *Field
	for _, p := range paths {
		f := a.Find(p)
		if f != nil && (best == nil || f.Priority > best.Priority) {
			best = f
		}
	}
	return best
}

// ByField returns the highest priority authority for a given path.
// Ties are broken by pattern specificity (length), then order.
func ByField(path string, authorities []Field) *Field {
	var bestMatch *Field
	bestPriority, bestMatchLength := -1, -1

	for i, auth := range authorities {
		if !MatchesPattern(path, auth.Path) {
			continue
		}
		patternLength := len(auth.Path)
		if auth.Priority > bestPriority ||
			(auth.Priority == bestPriority && patternLength > bestMatchLength) {
			bestMatch = &authorities[i]
			bestPriority = auth.Priority
			bestMatchLength = patternLength
		}
	}

	return bestMatch
}

// MatchesPattern checks if a path matches a pattern (supports * wildcards).
func MatchesPattern(path, pattern string) bool {
	if path == pattern {
		return true
	}
	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(path) >= len(prefix) && path[:len(prefix)] == prefix
	}
	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	return matched
}
