package models

import "testing"

// TestClassifyWorkout verifies workout type names map to the expected
// training categories, including substring variants and the cardio default.
func TestClassifyWorkout(t *testing.T) {
	tests := []struct {
		name string
		want Category
	}{
		{"Traditional Strength Training", CategoryStrength},
		{"Functional Strength Training", CategoryStrength},
		{"Running", CategoryCardio},
		{"Outdoor Running", CategoryCardio},
		{"Indoor Cycling", CategoryCardio},
		{"Yoga", CategoryRecovery},
		{"Pilates", CategoryRecovery},
		{"Other", CategoryCardio},
	}
	for _, tt := range tests {
		if got := ClassifyWorkout(tt.name); got != tt.want {
			t.Errorf("ClassifyWorkout(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// TestParseCategory verifies accepted spellings including the legacy
// "lifts" alias used by the widget wire format.
func TestParseCategory(t *testing.T) {
	for input, want := range map[string]Category{
		"strength": CategoryStrength,
		"Lifts":    CategoryStrength,
		"CARDIO":   CategoryCardio,
		"recovery": CategoryRecovery,
	} {
		got, err := ParseCategory(input)
		if err != nil {
			t.Errorf("ParseCategory(%q) error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseCategory(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := ParseCategory("swimming"); err == nil {
		t.Error("ParseCategory(\"swimming\") succeeded, want error")
	}
}
