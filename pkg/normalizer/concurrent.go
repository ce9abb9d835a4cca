package normalizer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/apidrift/pkg/records"
)

// Concurrent normalizes documentation pages and code files on a bounded
// worker pool. Results are joined in input order, pages first, so the
// output is identical to normalizing the flattened input sequentially.
// It returns once every page and file is done, or with ctx.Err() if the
// context is canceled first.
func (n *Normalizer) Concurrent(ctx context.Context, pages [][]records.RawDocEntry, files [][]records.RawCodeSymbol, workers int) (Result, error) {
	if workers <= 0 {
		workers = 1
	}

	docResults := make([]Result, len(pages))
	codeResults := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docResults[i] = n.NormalizeDocs(page)
			return nil
		})
	}
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			codeResults[i] = n.NormalizeCode(file)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	return join(append(docResults, codeResults...)), nil
}

// Concurrent normalizes with default settings.
func Concurrent(ctx context.Context, pages [][]records.RawDocEntry, files [][]records.RawCodeSymbol, workers int) (Result, error) {
	return defaultNormalizer.Concurrent(ctx, pages, files, workers)
}

func join(parts []Result) Result {
	size := 0
	for _, p := range parts {
		size += len(p.Records)
	}
	out := Result{Records: make([]records.Record, 0, size)}
	for _, p := range parts {
		out.Records = append(out.Records, p.Records...)
		out.Stats = out.Stats.Add(p.Stats)
	}
	return out
}
