// Package model defines domain entities used by services and repositories.
package model

import "time"

// Category is the fixed check-in type that governs which fields are required.
type Category string

// Known categories. The textual names are the wire and storage representation.
const (
	Workout  Category = "WORKOUT"
	Exercise Category = "EXERCISE"
	Meal     Category = "MEAL"
	Weight   Category = "WEIGHT"
	Water    Category = "WATER"
)

// Categories lists every known category in display order.
var Categories = []Category{Workout, Exercise, Meal, Weight, Water}

// Valid reports whether c is one of the known categories (exact match).
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// CheckinEntry is a single recorded event owned by one user.
// Optional numeric and text fields are nil when absent.
type CheckinEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        Category  `json:"type"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Calories    *int      `json:"calories"`
	Duration    *int      `json:"duration"`    // minutes
	Weight      *float64  `json:"weight"`      // kg
	Water       *int      `json:"water"`       // ml
	Timestamp   time.Time `json:"timestamp"`   // when the activity happened
	CreatedAt   time.Time `json:"createdAt"`   // set once by the store
	UpdatedAt   time.Time `json:"updatedAt"`   // refreshed on every mutation
}

// UserSettings holds per-category tracking preferences; at most one per user.
type UserSettings struct {
	ID             string    `json:"id,omitempty"`
	UserID         string    `json:"userId"`
	WorkoutEnabled bool      `json:"workoutEnabled"`
	MealEnabled    bool      `json:"mealEnabled"`
	WeightEnabled  bool      `json:"weightEnabled"`
	WaterEnabled   bool      `json:"waterEnabled"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
	UpdatedAt      time.Time `json:"updatedAt,omitzero"`
}

// DefaultSettings returns the transient settings record used when none is stored.
func DefaultSettings(userID string) UserSettings {
	return UserSettings{
		UserID:         userID,
		WorkoutEnabled: true,
		MealEnabled:    true,
		WeightEnabled:  true,
		WaterEnabled:   true,
	}
}

// Stats counts a user's entries per category within a time range.
type Stats struct {
	Workouts  int64 `json:"workouts"`
	Exercises int64 `json:"exercises"`
	Meals     int64 `json:"meals"`
	Weights   int64 `json:"weights"`
	Water     int64 `json:"water"`
}

// Add records n entries of category c.
func (s *Stats) Add(c Category, n int64) {
	switch c {
	case Workout:
		s.Workouts += n
	case Exercise:
		s.Exercises += n
	case Meal:
		s.Meals += n
	case Weight:
		s.Weights += n
	case Water:
		s.Water += n
	}
}

// TimeRange is an inclusive [Start, End] interval on entry timestamps.
type TimeRange struct {
	Start time.Time
	End   time.Time
}
