//go:build integration
// +build integration

package testhelpers

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/jma-weather-collector/internal/collector"
	"github.com/kjstillabower/jma-weather-collector/internal/config"
	"github.com/kjstillabower/jma-weather-collector/internal/observability"
)

// IntegrationTestConfig holds configuration for integration tests against live JMA.
type IntegrationTestConfig struct {
	BaseURL       string
	CacheBackend  string // "none", "in_memory" or "memcached"
	MemcachedAddr string
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips the test unless JMA_INTEGRATION=1, so CI never hits the public endpoint by accident.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	t.Helper()
	if os.Getenv("JMA_INTEGRATION") != "1" {
		t.Skip("JMA_INTEGRATION not set to 1, skipping live JMA test")
	}

	baseURL := os.Getenv("JMA_BASE_URL")
	if baseURL == "" {
		baseURL = "https://www.jma.go.jp/bosai"
	}
	cacheBackend := os.Getenv("INTEGRATION_CACHE_BACKEND")
	if cacheBackend == "" {
		cacheBackend = config.CacheNone
	}
	memcachedAddr := os.Getenv("MEMCACHED_ADDRS")
	if memcachedAddr == "" {
		memcachedAddr = "localhost:11211"
	}

	return IntegrationTestConfig{
		BaseURL:       baseURL,
		CacheBackend:  cacheBackend,
		MemcachedAddr: memcachedAddr,
	}
}

// SetupIntegrationStack wires a collector for the Aichi defaults writing to storeDir.
// Output goes to out in stdout mode. Returns the stack and a cleanup function.
func SetupIntegrationStack(t *testing.T, cfg IntegrationTestConfig, mode, storeDir string, out io.Writer) (*collector.Stack, func()) {
	t.Helper()
	logger, err := observability.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	st, err := collector.Build(&config.Config{
		UpstreamBaseURL:       cfg.BaseURL,
		UpstreamTimeout:       10 * time.Second,
		UpstreamUserAgent:     "jma-weather-collector-integration/1.0",
		RateLimitRPS:          1,
		RateLimitBurst:        1,
		StationID:             51106,
		OfficeCode:            230000,
		TempAreaCode:          51106,
		WeatherAreaCode:       230010,
		StoreDir:              storeDir,
		OutputMode:            mode,
		CacheBackend:          cfg.CacheBackend,
		CacheTTL:              time.Minute,
		MemcachedAddrs:        cfg.MemcachedAddr,
		MemcachedTimeout:      500 * time.Millisecond,
		MemcachedMaxIdleConns: 2,
	}, out, logger)
	if err != nil {
		t.Fatalf("collector.Build() error = %v", err)
	}
	return st, func() { _ = st.Close() }
}
