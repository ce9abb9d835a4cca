// Package files loads collaborator output (scraped documentation pages and
// analyzed code symbols) from JSON or YAML files.
package files

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/logging"
	"github.com/agentstation/apidrift/pkg/records"
)

// Extensions lists the file extensions the loaders accept.
var Extensions = []string{".json", ".yaml", ".yml"}

// Supported reports whether path has a loadable extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// docFile is the wrapped form of a documentation page.
type docFile struct {
	Entries []records.RawDocEntry `json:"entries" yaml:"entries"`
}

// codeFile is the wrapped form of one analyzed source file.
type codeFile struct {
	Symbols []records.RawCodeSymbol `json:"symbols" yaml:"symbols"`
}

// LoadDocPage reads one documentation page. The file holds either a bare
// list of entries or an object with an "entries" key.
func LoadDocPage(path string) ([]records.RawDocEntry, error) {
	var wrapped docFile
	return load(path, &wrapped.Entries, &wrapped, func() []records.RawDocEntry { return wrapped.Entries })
}

// LoadCodeFile reads the symbols of one analyzed source file. The file holds
// either a bare list of symbols or an object with a "symbols" key.
func LoadCodeFile(path string) ([]records.RawCodeSymbol, error) {
	var wrapped codeFile
	return load(path, &wrapped.Symbols, &wrapped, func() []records.RawCodeSymbol { return wrapped.Symbols })
}

func load[T any](path string, list *[]T, wrapped any, get func() []T) ([]T, error) {
	data, err := os.ReadFile(path) //nolint:gosec // caller-provided input path
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	target := wrapped
	if isList(path, data) {
		target = list
	}
	if err := decode(path, data, target); err != nil {
		return nil, err
	}
	return get(), nil
}

// isList reports whether the document's top-level value is a sequence.
func isList(path string, data []byte) bool {
	if data[0] == '[' {
		return true
	}
	if format(path) == "json" {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "---" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.HasPrefix(line, "- ") || line == "-"
	}
	return false
}

func format(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

func decode(path string, data []byte, v any) error {
	f := format(path)
	var err error
	if f == "json" {
		err = json.Unmarshal(data, v)
	} else {
		err = yaml.Unmarshal(data, v)
	}
	return errors.WrapParse(f, path, err)
}

// Expand resolves paths to a sorted list of loadable files. Directories are
// walked recursively; files are taken as given.
func Expand(paths ...string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.WrapIO("stat", root, err)
		}
		if !info.IsDir() {
			if !Supported(root) {
				return nil, errors.NewFormatError(filepath.Ext(root), Extensions...)
			}
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if Supported(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, errors.WrapIO("walk", root, err)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Docs is a sources.DocSource reading one page per file.
type Docs struct {
	paths []string
}

// Option configures a file source.
type Option func(*Docs)

// WithPaths adds files or directories to read.
func WithPaths(paths ...string) Option {
	return func(d *Docs) {
		d.paths = append(d.paths, paths...)
	}
}

// NewDocs creates a documentation page source.
func NewDocs(opts ...Option) *Docs {
	d := &Docs{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Pages implements sources.DocSource.
func (d *Docs) Pages(ctx context.Context) ([][]records.RawDocEntry, error) {
	return readAll(ctx, d.paths, LoadDocPage)
}

// CodeFiles loads analyzer output, one symbol list per file.
func CodeFiles(ctx context.Context, paths ...string) ([][]records.RawCodeSymbol, error) {
	return readAll(ctx, paths, LoadCodeFile)
}

func readAll[T any](ctx context.Context, paths []string, read func(string) ([]T, error)) ([][]T, error) {
	files, err := Expand(paths...)
	if err != nil {
		return nil, err
	}
	out := make([][]T, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, err := read(f)
		if err != nil {
			return nil, err
		}
		logging.FromContext(logging.WithSource(ctx, f)).Debug().Int("items", len(items)).Msg("loaded collaborator output")
		out = append(out, items)
	}
	return out, nil
}
