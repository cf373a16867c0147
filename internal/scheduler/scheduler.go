// Package scheduler repeats collector runs on a cron spec evaluated in JST.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kjstillabower/jma-weather-collector/internal/lifecycle"
	"github.com/kjstillabower/jma-weather-collector/internal/models"
)

// Job is one scheduled run. now is the tick time.
type Job func(ctx context.Context, now time.Time) error

// Scheduler runs a Job on a cron spec. A tick that fires while the previous run is still
// going is skipped. Job errors are logged and never stop the schedule.
type Scheduler struct {
	cron    *cron.Cron
	entry   cron.EntryID
	job     Job
	timeout time.Duration
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New parses spec (five fields or a descriptor such as "@every 10m") and binds job to it.
// Each run gets its own context bounded by timeout.
func New(spec string, timeout time.Duration, job Job, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(models.JST),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		job:     job,
		timeout: timeout,
		logger:  logger,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	id, err := s.cron.AddFunc(spec, s.tick)
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	s.entry = id
	return s, nil
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Time("next_run", s.Next()))
}

// Next returns the next fire time, zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Stop prevents new runs, cancels the in-flight run context and waits for it to return
// or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

func (s *Scheduler) tick() {
	if lifecycle.IsShuttingDown() {
		s.logger.Info("shutting down, run skipped")
		return
	}
	now := time.Now()
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	if err := s.job(ctx, now); err != nil {
		s.logger.Error("scheduled run failed", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
