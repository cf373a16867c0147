// Command collector fetches JMA observations and forecasts.
//
//	collector [run] [-mode stdout|store]   one run, then exit
//	collector schedule [-spec "*/10 * * * *"] [-mode stdout|store]
//	collector serve [-port 8080] [-schedule]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/jma-weather-collector/internal/collector"
	"github.com/kjstillabower/jma-weather-collector/internal/config"
	httphandler "github.com/kjstillabower/jma-weather-collector/internal/http"
	"github.com/kjstillabower/jma-weather-collector/internal/lifecycle"
	"github.com/kjstillabower/jma-weather-collector/internal/observability"
	"github.com/kjstillabower/jma-weather-collector/internal/scheduler"
	"github.com/kjstillabower/jma-weather-collector/internal/validation"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	cmd, args := "run", os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "run":
		err = runOnce(cfg, args, logger)
	case "schedule":
		err = runSchedule(cfg, args, logger)
	case "serve":
		err = runServe(cfg, args, logger)
	default:
		err = fmt.Errorf("unknown command %q (want run, schedule or serve)", cmd)
	}

	if flushErr := observability.FlushTelemetry(context.Background(), logger, cfg.MetricsTextfile); flushErr != nil {
		fmt.Fprintf(os.Stderr, "telemetry flush: %v\n", flushErr)
	}
	if err != nil {
		logger.Error("collector exited with error", zap.String("command", cmd), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// applyMode overrides cfg.OutputMode from a -mode flag value.
func applyMode(cfg *config.Config, mode string) error {
	if mode == "" {
		return nil
	}
	m, err := validation.ValidateChoice("-mode", mode, config.OutputStdout, config.OutputStore)
	if err != nil {
		return err
	}
	cfg.OutputMode = m
	return nil
}

func runOnce(cfg *config.Config, args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	mode := fs.String("mode", "", "output mode: stdout or store (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := applyMode(cfg, *mode); err != nil {
		return err
	}

	st, err := collector.Build(cfg, os.Stdout, logger)
	if err != nil {
		return err
	}
	defer closeStack(st, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	return st.Collector.Run(ctx, time.Now())
}

func runSchedule(cfg *config.Config, args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("schedule", flag.ContinueOnError)
	spec := fs.String("spec", cfg.ScheduleSpec, "cron spec evaluated in JST")
	mode := fs.String("mode", "", "output mode: stdout or store (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := applyMode(cfg, *mode); err != nil {
		return err
	}

	st, err := collector.Build(cfg, os.Stdout, logger)
	if err != nil {
		return err
	}
	defer closeStack(st, logger)

	sched, err := scheduler.New(*spec, cfg.RunTimeout, st.Collector.Run, logger)
	if err != nil {
		return err
	}
	sched.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	return stopScheduler(sched, cfg.ShutdownTimeout, logger)
}

func runServe(cfg *config.Config, args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.String("port", cfg.ServerPort, "listen port")
	withSchedule := fs.Bool("schedule", false, "also run the collector on the configured schedule in store mode")
	if err := fs.Parse(args); err != nil {
		return err
	}

	healthConfig := &httphandler.HealthConfig{StartTime: time.Now()}

	var sched *scheduler.Scheduler
	if *withSchedule {
		cfg.OutputMode = config.OutputStore
		st, err := collector.Build(cfg, os.Stdout, logger)
		if err != nil {
			return err
		}
		defer closeStack(st, logger)
		healthConfig.CachePing = st.CachePing

		sched, err = scheduler.New(cfg.ScheduleSpec, cfg.RunTimeout, st.Collector.Run, logger)
		if err != nil {
			return err
		}
		sched.Start()
	}

	handler := httphandler.NewHandler(cfg.StoreDir, healthConfig, logger)
	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      httphandler.NewRouter(handler, 5*time.Second, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("store_dir", cfg.StoreDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		stop()
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	if err := httphandler.WaitForInFlight(shutdownCtx, 50*time.Millisecond); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if sched != nil {
		return stopScheduler(sched, cfg.ShutdownTimeout, logger)
	}
	logger.Info("shutdown complete")
	return nil
}

func stopScheduler(sched *scheduler.Scheduler, timeout time.Duration, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	logger.Info("waiting for active runs", zap.Int64("count", lifecycle.ActiveRuns()))
	if err := sched.Stop(ctx); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func closeStack(st *collector.Stack, logger *zap.Logger) {
	if err := st.Close(); err != nil {
		logger.Error("close resources", zap.Error(err))
	}
}
