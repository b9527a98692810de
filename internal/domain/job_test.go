package domain

import "testing"

func TestJobStatusTerminal(t *testing.T) {
	tests := []struct {
		status   JobStatus
		terminal bool
	}{
		{JobStatusQueued, false},
		{JobStatusProcessing, false},
		{JobStatusCompleted, true},
		{JobStatusFailed, true},
	}
	for _, tc := range tests {
		if got := tc.status.Terminal(); got != tc.terminal {
			t.Fatalf("%s.Terminal() = %v, want %v", tc.status, got, tc.terminal)
		}
	}
}

func TestFailureError(t *testing.T) {
	f := &Failure{Kind: FailureTimeout, Message: "job exceeded its deadline"}
	if got := f.Error(); got != "timeout: job exceeded its deadline" {
		t.Fatalf("Error() = %q", got)
	}
	var nilFailure *Failure
	if nilFailure.Error() != "" {
		t.Fatal("nil failure should render empty")
	}
}
