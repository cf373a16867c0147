package lifecycle

import "sync/atomic"

var (
	shuttingDown atomic.Bool
	activeRuns   atomic.Int64
)

// SetShuttingDown sets the shutdown flag. Call when SIGTERM/SIGINT received.
// Health returns 503 shutting-down and the scheduler stops starting runs while true.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown reports whether the process is draining.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}

// BeginRun marks a collector run as in flight. The returned func ends it.
func BeginRun() (end func()) {
	activeRuns.Add(1)
	var done atomic.Bool
	return func() {
		if done.CompareAndSwap(false, true) {
			activeRuns.Add(-1)
		}
	}
}

// ActiveRuns returns the number of collector runs in flight.
func ActiveRuns() int64 {
	return activeRuns.Load()
}
