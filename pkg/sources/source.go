// Package sources defines the collaborators that supply raw input to the
// engine. Code symbol sources parse one language each and all produce the
// same RawCodeSymbol shape, so nothing downstream branches on language.
//
// Example usage:
//
//	reg := sources.NewRegistry(treesitter.NewGo(), treesitter.NewPython())
//	files, err := sources.Walk(ctx, reg, "./src", 4)
//	if err != nil {
//	    log.Fatal(err)
//	}
package sources

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/agentstation/apidrift/pkg/records"
)

// Language identifies the language a code symbol source parses.
type Language string

// String returns the string representation of a language.
func (l Language) String() string {
	return string(l)
}

// Supported languages.
const (
	LanguageGo     Language = "go"
	LanguagePython Language = "python"
)

// Languages returns all supported languages.
func Languages() []Language {
	return []Language{LanguageGo, LanguagePython}
}

// IsValid returns true if the language is one of the defined constants.
func (l Language) IsValid() bool {
	return slices.Contains(Languages(), l)
}

// CodeSymbolSource extracts API symbols from source files of one language.
type CodeSymbolSource interface {
	// Language returns the language this source parses
	Language() Language

	// Extensions returns the file extensions handled, with the leading dot
	Extensions() []string

	// Symbols parses one file's content; path is recorded on every symbol
	Symbols(ctx context.Context, path string, content []byte) ([]records.RawCodeSymbol, error)
}

// DocSource supplies documentation entries, one slice per page.
type DocSource interface {
	Pages(ctx context.Context) ([][]records.RawDocEntry, error)
}

// Registry is a thread-safe set of code symbol sources keyed by language.
type Registry struct {
	mu      sync.RWMutex
	sources map[Language]CodeSymbolSource
}

// NewRegistry creates a registry holding srcs.
func NewRegistry(srcs ...CodeSymbolSource) *Registry {
	r := &Registry{sources: make(map[Language]CodeSymbolSource)}
	for _, src := range srcs {
		r.Set(src)
	}
	return r
}

// Get returns the source for a language.
func (r *Registry) Get(lang Language) (CodeSymbolSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, found := r.sources[lang]
	return src, found
}

// Set registers src, replacing any source for the same language.
func (r *Registry) Set(src CodeSymbolSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[src.Language()] = src
}

// Delete removes the source for a language.
func (r *Registry) Delete(lang Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sources, lang)
}

// Len returns the number of sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

// Languages returns the registered languages in sorted order.
func (r *Registry) Languages() []Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	langs := make([]Language, 0, len(r.sources))
	for lang := range r.sources {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}

// ForPath returns the source handling path's extension.
func (r *Registry) ForPath(path string) (CodeSymbolSource, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, lang := range sortedKeys(r.sources) {
		src := r.sources[lang]
		if slices.Contains(src.Extensions(), ext) {
			return src, true
		}
	}
	return nil, false
}

func sortedKeys(m map[Language]CodeSymbolSource) []Language {
	keys := make([]Language, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
