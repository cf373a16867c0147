package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the JSON production logger for the collector. Level comes from LOG_LEVEL;
// every entry carries the app name and the ENV_NAME the config was loaded for.
func NewLogger() (*zap.Logger, error) {
	return loggerConfig(os.Getenv("LOG_LEVEL"), os.Getenv("ENV_NAME")).Build()
}

func loggerConfig(level, env string) zap.Config {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = parseLogLevel(level)

	env = strings.TrimSpace(env)
	if env == "" {
		env = "dev"
	}
	config.InitialFields = map[string]interface{}{
		"app": "jma-weather-collector",
		"env": env,
	}
	return config
}

func parseLogLevel(s string) zap.AtomicLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "WARN":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "ERROR":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}
