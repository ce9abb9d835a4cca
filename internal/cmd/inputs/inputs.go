// Package inputs loads reconciliation inputs for CLI commands. Doc pages
// come from scraper output files; code files come either from analyzer
// output files or straight from source trees parsed with tree-sitter.
package inputs

import (
	"context"

	"github.com/agentstation/apidrift/internal/sources/files"
	"github.com/agentstation/apidrift/internal/sources/treesitter"
	"github.com/agentstation/apidrift/pkg/records"
	"github.com/agentstation/apidrift/pkg/sources"
)

// Registry returns the code symbol sources the CLI knows.
func Registry() *sources.Registry {
	return sources.NewRegistry(treesitter.NewGo(), treesitter.NewPython())
}

// Docs loads documentation pages, one page per file.
func Docs(ctx context.Context, paths []string) ([][]records.RawDocEntry, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	return files.NewDocs(files.WithPaths(paths...)).Pages(ctx)
}

// Code loads code symbols, one list per file. JSON and YAML paths are read
// as analyzer output; anything else is walked as a source tree.
func Code(ctx context.Context, paths []string, workers int) ([][]records.RawCodeSymbol, error) {
	reg := Registry()
	var out [][]records.RawCodeSymbol
	for _, p := range paths {
		var (
			loaded [][]records.RawCodeSymbol
			err    error
		)
		if files.Supported(p) {
			loaded, err = files.CodeFiles(ctx, p)
		} else {
			loaded, err = sources.Walk(ctx, reg, p, workers)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, loaded...)
	}
	return out, nil
}
