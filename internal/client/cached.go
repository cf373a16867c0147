package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/jma-weather-collector/internal/cache"
	"github.com/kjstillabower/jma-weather-collector/internal/observability"
)

// CachedFetcher serves documents from a cache and fills it from the wrapped Fetcher on a miss.
// Cache errors are logged and fall through to the upstream fetch.
type CachedFetcher struct {
	next   Fetcher
	cache  cache.Cache
	ttl    time.Duration
	skip   func(url string) bool
	logger *zap.Logger
}

// NewCachedFetcher wraps next. URLs for which skip returns true bypass the cache;
// skip may be nil.
func NewCachedFetcher(next Fetcher, c cache.Cache, ttl time.Duration, skip func(url string) bool, logger *zap.Logger) *CachedFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedFetcher{next: next, cache: c, ttl: ttl, skip: skip, logger: logger}
}

// Fetch implements Fetcher using cache-aside.
func (f *CachedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.skip != nil && f.skip(url) {
		return f.next.Fetch(ctx, url)
	}

	cached, ok, err := f.cache.Get(ctx, url)
	if err != nil {
		f.logger.Warn("document cache get failed", zap.String("url", url), zap.Error(err))
	} else if ok {
		observability.DocumentCacheHitsTotal.Inc()
		f.logger.Debug("document cache hit", zap.String("url", url))
		return cached, nil
	}

	body, err := f.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := f.cache.Set(ctx, url, body, f.ttl); err != nil {
		f.logger.Warn("document cache set failed", zap.String("url", url), zap.Error(err))
	}
	return body, nil
}

// SkipLatestTime keeps latest_time.txt out of the cache so each run sees the newest snapshot.
func SkipLatestTime(url string) bool {
	return ResourceLabel(url) == "latest_time"
}
