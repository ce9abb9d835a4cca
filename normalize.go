package apidrift

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/apidrift/pkg/cache"
	"github.com/agentstation/apidrift/pkg/logging"
	"github.com/agentstation/apidrift/pkg/normalizer"
	"github.com/agentstation/apidrift/pkg/records"
)

// Cache namespaces for normalized pages and files.
const (
	cacheDocs = "docs"
	cacheCode = "code"
)

// normalize runs the normalizer per page and file on a bounded pool,
// consulting the cache first. Without a cache it defers to
// normalizer.Concurrent. Cache failures are logged and never fatal.
func (e *engine) normalize(ctx context.Context, pages [][]records.RawDocEntry, files [][]records.RawCodeSymbol) (normalizer.Result, error) {
	if e.config.cache == nil {
		return e.normalizer.Concurrent(ctx, pages, files, e.config.workers)
	}

	// Results depend on normalizer settings, so a cache shared between
	// engines must not serve one engine's records to another.
	suffix := "@" + e.normalizer.Fingerprint()
	parts := make([]normalizer.Result, len(pages)+len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.workers)

	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parts[i] = e.cached(gctx, cacheDocs+suffix, page, func() normalizer.Result {
				return e.normalizer.NormalizeDocs(page)
			})
			return nil
		})
	}
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parts[len(pages)+i] = e.cached(gctx, cacheCode+suffix, file, func() normalizer.Result {
				return e.normalizer.NormalizeCode(file)
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return normalizer.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return normalizer.Result{}, err
	}

	out := normalizer.Result{}
	for _, p := range parts {
		out.Records = append(out.Records, p.Records...)
		out.Stats = out.Stats.Add(p.Stats)
	}
	return out, nil
}

func (e *engine) cached(ctx context.Context, namespace string, input any, run func() normalizer.Result) normalizer.Result {
	logger := logging.FromContext(ctx)
	key, err := cache.Key(namespace, input)
	if err != nil {
		logger.Warn().Err(err).Msg("cache key failed")
		return run()
	}

	if data, ok, err := e.config.cache.Get(key); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		var res normalizer.Result
		if err := json.Unmarshal(data, &res); err == nil {
			return res
		}
		logger.Warn().Str("key", key).Msg("discarding corrupt cache entry")
	}

	res := run()
	data, err := json.Marshal(res)
	if err == nil {
		err = e.config.cache.Set(key, data)
	}
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return res
}
