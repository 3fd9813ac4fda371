// Package validate implements the field and category rules a check-in entry
// must satisfy before it is persisted.
package validate

import (
	"strings"

	"github.com/and161185/smartfit/internal/model"
)

// minWeight is the smallest accepted weight reading in kg.
const minWeight = 0.1

// Entry returns category specific violations for e. An empty type yields no
// violations here; Fields reports it. All rules of the category are checked.
func Entry(e model.CheckinEntry) []string {
	var out []string
	switch e.Type {
	case model.Workout:
		if !positive(e.Duration) {
			out = append(out, "Duration is required for workouts and must be positive")
		}
	case model.Exercise:
		if !positive(e.Duration) {
			out = append(out, "Duration is required for exercises and must be positive")
		}
		if !positive(e.Calories) {
			out = append(out, "Calories are required for exercises and must be positive")
		}
	case model.Meal:
		if e.Title == nil || strings.TrimSpace(*e.Title) == "" {
			out = append(out, "Meal name is required")
		}
		if !positive(e.Calories) {
			out = append(out, "Calories are required for meals and must be positive")
		}
	case model.Weight:
		if e.Weight == nil || *e.Weight <= 0 {
			out = append(out, "Weight is required and must be positive")
		}
	case model.Water:
		if !positive(e.Water) {
			out = append(out, "Water amount is required and must be positive")
		}
	}
	return out
}

// Fields returns category independent constraint violations for e.
func Fields(e model.CheckinEntry) []string {
	var out []string
	if e.Type == "" {
		out = append(out, "type: Type is required")
	}
	if e.Calories != nil && *e.Calories <= 0 {
		out = append(out, "calories: Calories must be a positive number")
	}
	if e.Duration != nil && *e.Duration <= 0 {
		out = append(out, "duration: Duration must be a positive number")
	}
	if e.Weight != nil && *e.Weight < minWeight {
		out = append(out, "weight: Weight must be greater than 0")
	}
	if e.Water != nil && *e.Water <= 0 {
		out = append(out, "water: Water amount must be a positive number")
	}
	return out
}

// All runs Fields then Entry and returns the merged violations.
func All(e model.CheckinEntry) []string {
	return append(Fields(e), Entry(e)...)
}

func positive(v *int) bool { return v != nil && *v > 0 }
