package collector

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kjstillabower/jma-weather-collector/internal/cache"
	"github.com/kjstillabower/jma-weather-collector/internal/client"
	"github.com/kjstillabower/jma-weather-collector/internal/config"
	"github.com/kjstillabower/jma-weather-collector/internal/extract"
)

// Stack is a Collector wired from config plus the resources it holds.
type Stack struct {
	Collector *Collector
	Fetcher   client.Fetcher
	// CachePing is set when the document cache is memcached.
	CachePing func() error

	closers []func() error
}

// Close releases the stack's resources.
func (s *Stack) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build wires the fetch pipeline (HTTP client, rate limiter, optional document cache) and a
// Collector on top of it. The cache sits outside the limiter so hits cost no tokens.
func Build(cfg *config.Config, out io.Writer, logger *zap.Logger) (*Stack, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	st := &Stack{}

	var fetcher client.Fetcher = client.NewJMAClient(cfg.UpstreamTimeout, cfg.UpstreamUserAgent)
	fetcher = client.NewRateLimitedFetcher(fetcher, cfg.RateLimitRPS, cfg.RateLimitBurst)

	switch cfg.CacheBackend {
	case config.CacheMemcached:
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			return nil, fmt.Errorf("memcached cache: %w", err)
		}
		st.CachePing = mc.Ping
		st.closers = append(st.closers, mc.Close)
		fetcher = client.NewCachedFetcher(fetcher, mc, cfg.CacheTTL, client.SkipLatestTime, logger)
		logger.Info("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	case config.CacheInMemory:
		fetcher = client.NewCachedFetcher(fetcher, cache.NewInMemoryCache(), cfg.CacheTTL, client.SkipLatestTime, logger)
		logger.Info("cache backend: in_memory")
	default:
		logger.Debug("cache backend: none")
	}
	st.Fetcher = fetcher

	ex := extract.New(fetcher, client.NewURLs(cfg.UpstreamBaseURL), logger)
	st.Collector = New(ex, Options{
		StationID:       cfg.StationID,
		OfficeCode:      cfg.OfficeCode,
		TempAreaCode:    cfg.TempAreaCode,
		WeatherAreaCode: cfg.WeatherAreaCode,
		Mode:            cfg.OutputMode,
		StoreDir:        cfg.StoreDir,
	}, out, logger)
	return st, nil
}
