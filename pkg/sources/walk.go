package sources

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/logging"
	"github.com/agentstation/apidrift/pkg/records"
)

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"testdata":     true,
}

// Walk parses every file under root that a registered source handles and
// returns one symbol slice per file, ordered by path. A single file path
// is accepted too. Sources see each path relative to root, so symbol file
// paths and module names do not depend on where the tree is checked out.
// Files that fail to parse are logged and skipped.
func Walk(ctx context.Context, reg *Registry, root string, workers int) ([][]records.RawCodeSymbol, error) {
	paths, err := collect(reg, root)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	out := make([][]records.RawCodeSymbol, len(paths))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, path := range paths {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			rel := relative(root, path)
			fctx := logging.WithSource(egctx, rel)
			logger := logging.FromContext(fctx)

			src, _ := reg.ForPath(path)
			content, err := os.ReadFile(path) //nolint:gosec // path comes from walking the caller's root
			if err != nil {
				logger.Warn().Err(err).Msg("skipping unreadable source file")
				return nil
			}
			syms, err := src.Symbols(fctx, rel, content)
			if err != nil {
				if egctx.Err() != nil {
					return egctx.Err()
				}
				logger.Warn().Err(err).Str("language", src.Language().String()).Msg("skipping unparsable source file")
				return nil
			}
			out[i] = syms
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug().Int("files", len(paths)).Msg("walked source tree")
	return out, nil
}

// relative returns path relative to root in slash form. When root is the
// file itself, the file name is used.
func relative(root, path string) string {
	if path == root {
		return filepath.Base(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func collect(reg *Registry, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.WrapIO("stat", root, err)
	}
	if !info.IsDir() {
		if _, ok := reg.ForPath(root); !ok {
			return nil, errors.NewFormatError(filepath.Ext(root), registeredExtensions(reg)...)
		}
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := reg.ForPath(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapIO("walk", root, err)
	}
	slices.Sort(paths)
	return paths, nil
}

func registeredExtensions(reg *Registry) []string {
	var exts []string
	for _, lang := range reg.Languages() {
		src, _ := reg.Get(lang)
		exts = append(exts, src.Extensions()...)
	}
	return exts
}
