package observability

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies LOG_LEVEL parsing is case- and whitespace-insensitive and
// falls back to info.
func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zap.InfoLevel},
		{"debug", zap.DebugLevel},
		{" WARN ", zap.WarnLevel},
		{"Error", zap.ErrorLevel},
		{"verbose", zap.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in).Level(); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestNewLogger_HonorsLogLevel verifies the built logger filters below the LOG_LEVEL threshold.
func TestNewLogger_HonorsLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	logger, err := NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if logger.Core().Enabled(zap.InfoLevel) {
		t.Error("info enabled with LOG_LEVEL=warn")
	}
	if !logger.Core().Enabled(zap.WarnLevel) {
		t.Error("warn disabled with LOG_LEVEL=warn")
	}
}

// TestLoggerConfig_EnvField verifies entries are tagged with ENV_NAME, defaulting to dev like config.Load.
func TestLoggerConfig_EnvField(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"", "dev"},
		{"prod", "prod"},
		{" staging ", "staging"},
	}
	for _, tt := range tests {
		cfg := loggerConfig("", tt.env)
		if got := cfg.InitialFields["env"]; got != tt.want {
			t.Errorf("loggerConfig(%q) env = %v, want %q", tt.env, got, tt.want)
		}
		if got := cfg.InitialFields["app"]; got != "jma-weather-collector" {
			t.Errorf("app = %v, want jma-weather-collector", got)
		}
	}
}
