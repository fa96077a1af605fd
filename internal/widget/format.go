package widget

import (
	"fmt"
	"strings"
)

// FormatSteps renders a step count the way the complication does:
// below 1000 as-is, otherwise thousands with one decimal ("8.4k"),
// trailing ".0" trimmed ("10k").
func FormatSteps(steps int) string {
	if steps < 1000 {
		return fmt.Sprintf("%d", steps)
	}
	s := fmt.Sprintf("%.1f", float64(steps)/1000)
	s = strings.TrimSuffix(s, ".0")
	return s + "k"
}

// StepsProgress returns the fractional progress toward the daily steps
// goal, uncapped below 1 but clamped to [0, 1] for ring rendering.
func StepsProgress(steps, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	f := float64(steps) / float64(goal)
	if f > 1 {
		return 1
	}
	return f
}

// FormatStreak renders a streak counter with its unit, singular-aware.
func FormatStreak(weeks int) string {
	if weeks == 1 {
		return "1 week"
	}
	return fmt.Sprintf("%d weeks", weeks)
}
