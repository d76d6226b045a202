package failure

import (
	"testing"
)

func TestTracker_EscalatesAtThresholdAndKeepsFiring(t *testing.T) {
	tracker := NewTracker("members", 5)

	for i := 1; i <= 4; i++ {
		if escalated := tracker.RecordFailure(); escalated {
			t.Errorf("failure %d: escalated below threshold", i)
		}
	}

	// Threshold crossing fires, and keeps firing while the counter grows.
	for i := 5; i <= 7; i++ {
		if escalated := tracker.RecordFailure(); !escalated {
			t.Errorf("failure %d: expected escalation", i)
		}
	}

	if got := tracker.Consecutive(); got != 7 {
		t.Errorf("expected 7 consecutive failures, got %d", got)
	}
}

func TestTracker_ResetClearsCounter(t *testing.T) {
	tracker := NewTracker("members", 5)

	for i := 0; i < 6; i++ {
		tracker.RecordFailure()
	}
	tracker.Reset()

	if got := tracker.Consecutive(); got != 0 {
		t.Errorf("expected 0 after reset, got %d", got)
	}
	if escalated := tracker.RecordFailure(); escalated {
		t.Error("escalated immediately after reset")
	}
}

func TestTracker_ZeroThresholdFallsBackToDefault(t *testing.T) {
	tracker := NewTracker("members", 0)

	for i := 1; i < DefaultThreshold; i++ {
		if tracker.RecordFailure() {
			t.Fatalf("failure %d: escalated below default threshold", i)
		}
	}
	if !tracker.RecordFailure() {
		t.Errorf("expected escalation at failure %d", DefaultThreshold)
	}
}
