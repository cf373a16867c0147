package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kjstillabower/jma-weather-collector/internal/validation"
)

// Output modes.
const (
	OutputStdout = "stdout"
	OutputStore  = "store"
)

// Cache backends for upstream documents.
const (
	CacheNone      = "none"
	CacheInMemory  = "in_memory"
	CacheMemcached = "memcached"
)

// Config holds collector configuration loaded from YAML, .env and env.
type Config struct {
	UpstreamBaseURL   string
	UpstreamTimeout   time.Duration
	UpstreamUserAgent string
	RateLimitRPS      float64
	RateLimitBurst    int

	StationID       int
	OfficeCode      int
	TempAreaCode    int
	WeatherAreaCode int

	StoreDir   string
	OutputMode string // "stdout" or "store"

	CacheBackend          string // "none", "in_memory" or "memcached"
	CacheTTL              time.Duration
	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	ScheduleSpec string
	RunTimeout   time.Duration

	MetricsTextfile string

	ServerPort      string
	ShutdownTimeout time.Duration
}

type fileConfig struct {
	Upstream struct {
		BaseURL        string  `yaml:"base_url"`
		Timeout        string  `yaml:"timeout"`
		UserAgent      string  `yaml:"user_agent"`
		RateLimitRPS   float64 `yaml:"rate_limit_rps"`
		RateLimitBurst int     `yaml:"rate_limit_burst"`
	} `yaml:"upstream"`

	Location struct {
		StationID       int `yaml:"station_id"`
		OfficeCode      int `yaml:"office_code"`
		TempAreaCode    int `yaml:"temp_area_code"`
		WeatherAreaCode int `yaml:"weather_area_code"`
	} `yaml:"location"`

	Store struct {
		Dir string `yaml:"dir"`
	} `yaml:"store"`

	Output struct {
		Mode string `yaml:"mode"`
	} `yaml:"output"`

	Cache struct {
		Backend   string `yaml:"backend"`
		TTL       string `yaml:"ttl"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"cache"`

	Schedule struct {
		Spec       string `yaml:"spec"`
		RunTimeout string `yaml:"run_timeout"`
	} `yaml:"schedule"`

	Metrics struct {
		Textfile string `yaml:"textfile_path"`
	} `yaml:"metrics"`

	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev). A .env file in the
// working directory is loaded into the environment first; variables already set win.
// Env overrides are applied last. Call from project root.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	if err := loadDotEnv(filepath.Join(cwd, ".env")); err != nil {
		return nil, err
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.UpstreamBaseURL = firstNonEmpty(os.Getenv("JMA_BASE_URL"), fc.Upstream.BaseURL, "https://www.jma.go.jp/bosai")
	cfg.UpstreamBaseURL = strings.TrimRight(cfg.UpstreamBaseURL, "/")
	cfg.UpstreamTimeout = parseDurationOrZero(fc.Upstream.Timeout, 10*time.Second)
	cfg.UpstreamUserAgent = firstNonEmpty(fc.Upstream.UserAgent, "jma-weather-collector/1.0")
	cfg.RateLimitRPS = fc.Upstream.RateLimitRPS
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 2
	}
	cfg.RateLimitBurst = fc.Upstream.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 2
	}

	if cfg.StationID, err = intOverride("JMA_STATION_ID", fc.Location.StationID, 51106); err != nil {
		return nil, err
	}
	if cfg.OfficeCode, err = intOverride("JMA_OFFICE_CODE", fc.Location.OfficeCode, 230000); err != nil {
		return nil, err
	}
	if cfg.TempAreaCode, err = intOverride("JMA_TEMP_AREA_CODE", fc.Location.TempAreaCode, 51106); err != nil {
		return nil, err
	}
	if cfg.WeatherAreaCode, err = intOverride("JMA_WEATHER_AREA_CODE", fc.Location.WeatherAreaCode, 230010); err != nil {
		return nil, err
	}

	cfg.StoreDir = firstNonEmpty(strings.TrimSpace(os.Getenv("STORE_DIR")), strings.TrimSpace(fc.Store.Dir), "data")
	cfg.OutputMode = firstNonEmpty(os.Getenv("OUTPUT_MODE"), fc.Output.Mode, OutputStdout)

	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = strings.TrimSpace(strings.ToLower(fc.Cache.Backend))
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = CacheNone
	}
	cfg.CacheTTL = parseDuration(fc.Cache.TTL, 5*time.Minute)
	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Cache.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.ScheduleSpec = firstNonEmpty(strings.TrimSpace(fc.Schedule.Spec), "*/10 * * * *")
	cfg.RunTimeout = parseDuration(fc.Schedule.RunTimeout, 2*time.Minute)

	cfg.MetricsTextfile = strings.TrimSpace(fc.Metrics.Textfile)

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads path into the environment when it exists. godotenv.Load does not
// override variables that are already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat .env: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// intOverride returns the env value of key when set, else fileVal, else defaultVal.
// A set but non-numeric env value is an error.
func intOverride(key string, fileVal, defaultVal int) (int, error) {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer, got %q", key, s)
		}
		return v, nil
	}
	if fileVal != 0 {
		return fileVal, nil
	}
	return defaultVal, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is (caller should handle fallback).
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
// Rejects a non-positive upstream timeout, non-positive codes and unknown modes.
// Normalizes OutputMode and CacheBackend in place.
func validate(cfg *Config) error {
	if cfg.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive")
	}
	codes := []struct {
		name string
		v    int
	}{
		{"station_id", cfg.StationID},
		{"office_code", cfg.OfficeCode},
		{"temp_area_code", cfg.TempAreaCode},
		{"weather_area_code", cfg.WeatherAreaCode},
	}
	for _, c := range codes {
		if err := validation.ValidateCode(c.name, c.v); err != nil {
			return err
		}
	}

	mode, err := validation.ValidateChoice("output.mode", cfg.OutputMode, OutputStdout, OutputStore)
	if err != nil {
		return err
	}
	cfg.OutputMode = mode

	backend, err := validation.ValidateChoice("cache.backend", cfg.CacheBackend, CacheNone, CacheInMemory, CacheMemcached)
	if err != nil {
		return err
	}
	cfg.CacheBackend = backend

	if cfg.OutputMode == OutputStore && cfg.StoreDir == "" {
		return fmt.Errorf("store.dir required when output.mode is store")
	}
	return nil
}
