package main

import "testing"

// TestCoverageGaps_IntentionallyUntested documents why cmd/collector has no unit tests.
// Run with -v to see skip reason.
func TestCoverageGaps_IntentionallyUntested(t *testing.T) {
	t.Skip("main.go is wiring-only; collection, scheduling and the records API live in internal packages with tests")
}
