package models

import (
	"fmt"
	"strings"
)

// Category is the training category a workout counts toward.
type Category string

const (
	CategoryStrength Category = "strength"
	CategoryCardio   Category = "cardio"
	CategoryRecovery Category = "recovery"
)

// Categories lists all categories in display order.
func Categories() []Category {
	return []Category{CategoryStrength, CategoryCardio, CategoryRecovery}
}

// ParseCategory parses a category string (case-insensitive).
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strength", "lifts":
		return CategoryStrength, nil
	case "cardio":
		return CategoryCardio, nil
	case "recovery":
		return CategoryRecovery, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// classification maps workout type names (as exported from the phone) to
// categories. Lookup is case-insensitive on the full name first, then by
// substring for variants like "Outdoor Running".
var classification = map[string]Category{
	"traditional strength training":    CategoryStrength,
	"functional strength training":     CategoryStrength,
	"high intensity interval training": CategoryCardio,
	"running":                          CategoryCardio,
	"cycling":                          CategoryCardio,
	"swimming":                         CategoryCardio,
	"rowing":                           CategoryCardio,
	"walking":                          CategoryCardio,
	"hiking":                           CategoryCardio,
	"elliptical":                       CategoryCardio,
	"yoga":                             CategoryRecovery,
	"pilates":                          CategoryRecovery,
	"stretching":                       CategoryRecovery,
	"flexibility":                      CategoryRecovery,
	"cooldown":                         CategoryRecovery,
	"mind and body":                    CategoryRecovery,
}

// ClassifyWorkout maps a raw workout type name to a category.
// Unrecognized names default to cardio, matching how the watch treats
// generic "Other" sessions.
func ClassifyWorkout(name string) Category {
	n := strings.ToLower(strings.TrimSpace(name))
	if c, ok := classification[n]; ok {
		return c
	}
	for key, c := range classification {
		if strings.Contains(n, key) {
			return c
		}
	}
	return CategoryCardio
}
