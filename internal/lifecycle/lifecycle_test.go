package lifecycle

import "testing"

func TestIsShuttingDown_DefaultFalse(t *testing.T) {
	SetShuttingDown(false)
	if IsShuttingDown() {
		t.Error("IsShuttingDown() = true, want false by default")
	}
}

func TestSetShuttingDown_Toggle(t *testing.T) {
	SetShuttingDown(true)
	if !IsShuttingDown() {
		t.Error("IsShuttingDown() = false after SetShuttingDown(true), want true")
	}
	SetShuttingDown(false)
	if IsShuttingDown() {
		t.Error("IsShuttingDown() = true after SetShuttingDown(false), want false")
	}
}

// TestBeginRun_EndIsIdempotent verifies that calling end twice releases the run once.
func TestBeginRun_EndIsIdempotent(t *testing.T) {
	before := ActiveRuns()
	end := BeginRun()
	if got := ActiveRuns(); got != before+1 {
		t.Fatalf("ActiveRuns() = %d, want %d", got, before+1)
	}
	end()
	end()
	if got := ActiveRuns(); got != before {
		t.Errorf("ActiveRuns() = %d after end, want %d", got, before)
	}
}
