package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kjstillabower/jma-weather-collector/internal/lifecycle"
	"github.com/kjstillabower/jma-weather-collector/internal/models"
)

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New("every ten minutes", time.Second, func(context.Context, time.Time) error { return nil }, nil)
	if err == nil {
		t.Fatal("New() expected error for invalid spec, got nil")
	}
}

// TestScheduler_FiresJob verifies that a started scheduler runs the job with a live context.
func TestScheduler_FiresJob(t *testing.T) {
	calls := make(chan time.Time, 4)
	s, err := New("@every 1s", 5*time.Second, func(ctx context.Context, now time.Time) error {
		if ctx.Err() != nil {
			t.Errorf("job context already done: %v", ctx.Err())
		}
		calls <- now
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("job not called within 3s")
	}
}

// TestScheduler_NextInJST verifies the schedule is evaluated on the JST clock.
func TestScheduler_NextInJST(t *testing.T) {
	s, err := New("0 6 * * *", time.Second, func(context.Context, time.Time) error { return nil }, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.Start()
	defer s.Stop(context.Background())

	next := s.Next().In(models.JST)
	if next.Hour() != 6 || next.Minute() != 0 {
		t.Errorf("Next() = %v, want 06:00 JST", next)
	}
}

// TestTick_LogsJobErrors verifies a failing job is logged and does not panic the scheduler.
func TestTick_LogsJobErrors(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s, err := New("@every 1h", time.Second, func(context.Context, time.Time) error {
		return errors.New("upstream parse failure")
	}, zap.New(core))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s.tick()

	if n := logs.FilterMessage("scheduled run failed").Len(); n != 1 {
		t.Errorf("scheduled run failed logs = %d, want 1", n)
	}
}

// TestTick_SkipsWhileShuttingDown verifies no run starts once shutdown has begun.
func TestTick_SkipsWhileShuttingDown(t *testing.T) {
	var calls atomic.Int32
	s, err := New("@every 1h", time.Second, func(context.Context, time.Time) error {
		calls.Add(1)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	lifecycle.SetShuttingDown(true)
	defer lifecycle.SetShuttingDown(false)
	s.tick()

	if calls.Load() != 0 {
		t.Errorf("job calls = %d, want 0 while shutting down", calls.Load())
	}
}

// TestStop_CancelsRunContext verifies Stop cancels the context handed to a running job.
func TestStop_CancelsRunContext(t *testing.T) {
	started := make(chan struct{})
	returned := make(chan error, 1)
	s, err := New("@every 1h", time.Minute, func(ctx context.Context, _ time.Time) error {
		close(started)
		<-ctx.Done()
		returned <- ctx.Err()
		return ctx.Err()
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	go s.tick()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	select {
	case err := <-returned:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("job context error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job did not observe cancellation")
	}
}
