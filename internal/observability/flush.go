package observability

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// FlushTelemetry flushes telemetry before process exit. Batch runs have no scraper, so when
// textfilePath is set the registry is also written there for the node_exporter textfile collector.
func FlushTelemetry(ctx context.Context, logger *zap.Logger, textfilePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if textfilePath != "" {
		if err := prometheus.WriteToTextfile(textfilePath, registry); err != nil {
			return fmt.Errorf("write metrics textfile: %w", err)
		}
	}
	if logger != nil {
		if err := syncLogger(logger); err != nil {
			return fmt.Errorf("flush logs: %w", err)
		}
	}
	return nil
}

// syncLogger flushes logger. Terminals and pipes reject fsync with EINVAL or ENOTTY;
// there is nothing buffered to lose there, so those errors are dropped.
func syncLogger(logger *zap.Logger) error {
	err := logger.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
