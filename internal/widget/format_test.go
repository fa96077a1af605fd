package widget

import (
	"math"
	"testing"
)

// TestFormatSteps pins the compact step display, including the canonical
// 8432 → "8.4k" case.
func TestFormatSteps(t *testing.T) {
	tests := []struct {
		steps int
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1k"},
		{8432, "8.4k"},
		{10000, "10k"},
		{12345, "12.3k"},
		{9950, "10k"}, // %.1f rounds up
	}
	for _, tt := range tests {
		if got := FormatSteps(tt.steps); got != tt.want {
			t.Errorf("FormatSteps(%d) = %q, want %q", tt.steps, got, tt.want)
		}
	}
}

// TestStepsProgress verifies the fraction, the cap at 1, and the
// zero-goal guard.
func TestStepsProgress(t *testing.T) {
	if got := StepsProgress(8432, 10000); math.Abs(got-0.8432) > 1e-9 {
		t.Errorf("StepsProgress(8432, 10000) = %v, want 0.8432", got)
	}
	if got := StepsProgress(15000, 10000); got != 1 {
		t.Errorf("overshoot = %v, want capped at 1", got)
	}
	if got := StepsProgress(5000, 0); got != 0 {
		t.Errorf("zero goal = %v, want 0", got)
	}
}

// TestFormatStreak verifies singular/plural week labels.
func TestFormatStreak(t *testing.T) {
	for weeks, want := range map[int]string{0: "0 weeks", 1: "1 week", 7: "7 weeks"} {
		if got := FormatStreak(weeks); got != want {
			t.Errorf("FormatStreak(%d) = %q, want %q", weeks, got, want)
		}
	}
}
