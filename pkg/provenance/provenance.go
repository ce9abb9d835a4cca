// Package provenance records how every merged entry was resolved: which
// resolver chose its record, why, and whether a fallback was taken.
package provenance

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/apidrift/pkg/records"
)

// Resolution describes how one entry's chosen record was selected.
type Resolution struct {
	Resolver string         `json:"resolver" yaml:"resolver"`                     // "rule_based" or "ai_assisted"
	Origin   records.Origin `json:"origin,omitempty" yaml:"origin,omitempty"`     // Origin of the chosen record
	Reason   string         `json:"reason" yaml:"reason"`                         // Why the record was chosen
	Fallback bool           `json:"fallback,omitempty" yaml:"fallback,omitempty"` // AI resolution failed and rules were used
	Error    string         `json:"error,omitempty" yaml:"error,omitempty"`       // Failure that caused the fallback
}

// String renders the resolution on one line.
func (r Resolution) String() string {
	s := fmt.Sprintf("%s chose %s: %s", r.Resolver, r.Origin, r.Reason)
	if r.Fallback {
		s += " (fallback"
		if r.Error != "" {
			s += ": " + r.Error
		}
		s += ")"
	}
	return s
}

// Map tracks resolutions per identity.
type Map map[string][]Resolution

// Tracker records resolutions during a merge. It is safe for concurrent use.
type Tracker interface {
	// Track records a resolution for an identity
	Track(identity string, r Resolution)

	// Find retrieves the resolutions recorded for an identity
	Find(identity string) []Resolution

	// Map returns a copy of everything recorded
	Map() Map

	// Clear removes all provenance data
	Clear()
}

type tracker struct {
	mu         sync.RWMutex
	provenance Map
	enabled    bool
}

// NewTracker creates a new provenance tracker. A disabled tracker records
// nothing and returns nil from every lookup.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
	}
}

func (p *tracker) Track(identity string, r Resolution) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.provenance[identity] = append(p.provenance[identity], r)
}

func (p *tracker) Find(identity string) []Resolution {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Resolution(nil), p.provenance[identity]...)
}

func (p *tracker) Map() Map {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make(Map, len(p.provenance))
	for k, v := range p.provenance {
		result[k] = append([]Resolution(nil), v...)
	}
	return result
}

func (p *tracker) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.provenance = make(Map)
}

// Stats counts resolutions by resolver and fallback.
type Stats struct {
	Total      int
	ByResolver map[string]int
	Fallbacks  int
}

// Summarize counts the resolutions in m.
func Summarize(m Map) Stats {
	s := Stats{ByResolver: make(map[string]int)}
	for _, rs := range m {
		for _, r := range rs {
			s.Total++
			s.ByResolver[r.Resolver]++
			if r.Fallback {
				s.Fallbacks++
			}
		}
	}
	return s
}

// String generates a human-readable provenance report, sorted by identity.
func (m Map) String() string {
	var sb strings.Builder
	sb.WriteString("Provenance Report\n")
	sb.WriteString("=================\n\n")

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString("\n")
		for _, r := range m[k] {
			sb.WriteString("  - ")
			sb.WriteString(r.String())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// File represents a provenance file stored on disk.
type File struct {
	Provenance Map `yaml:"provenance"`
}

// Save writes provenance to a YAML file.
func Save(path string, m Map) error {
	data, err := yaml.MarshalWithOptions(File{Provenance: m}, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return fmt.Errorf("failed to marshal provenance: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write provenance file: %w", err)
	}
	return nil
}

// Load reads provenance data from a YAML file.
// Returns nil, nil if the file doesn't exist (not an error).
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from CLI configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read provenance file: %w", err)
	}

	var pf File
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse provenance file: %w", err)
	}
	return &pf, nil
}
