package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and161185/smartfit/internal/model"
)

func ip(v int) *int { return &v }
func fp(v float64) *float64 { return &v }
func sp(v string) *string { return &v }

func TestEntry_Workout(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		duration *int
		wantErr  bool
	}{
		{"missing", nil, true},
		{"zero", ip(0), true},
		{"negative", ip(-5), true},
		{"positive", ip(30), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Entry(model.CheckinEntry{Type: model.Workout, Duration: tc.duration})
			assert.Equal(t, tc.wantErr, len(got) > 0, "violations: %v", got)
		})
	}
}

func TestEntry_Exercise_EitherFieldFails(t *testing.T) {
	t.Parallel()
	ok := model.CheckinEntry{Type: model.Exercise, Duration: ip(20), Calories: ip(150)}
	require.Empty(t, Entry(ok))

	noCal := ok
	noCal.Calories = nil
	require.Equal(t, []string{"Calories are required for exercises and must be positive"}, Entry(noCal))

	noDur := ok
	noDur.Duration = ip(0)
	require.Equal(t, []string{"Duration is required for exercises and must be positive"}, Entry(noDur))

	// violations accumulate rather than short circuit
	neither := model.CheckinEntry{Type: model.Exercise}
	require.Len(t, Entry(neither), 2)
}

func TestEntry_Meal(t *testing.T) {
	t.Parallel()
	require.Empty(t, Entry(model.CheckinEntry{Type: model.Meal, Title: sp("Oats"), Calories: ip(300)}))
	require.Equal(t, []string{"Meal name is required"},
		Entry(model.CheckinEntry{Type: model.Meal, Title: sp("   "), Calories: ip(300)}))
	require.Len(t, Entry(model.CheckinEntry{Type: model.Meal, Calories: ip(-1)}), 2)
}

func TestEntry_WeightAndWater(t *testing.T) {
	t.Parallel()
	require.NotEmpty(t, Entry(model.CheckinEntry{Type: model.Weight}))
	require.NotEmpty(t, Entry(model.CheckinEntry{Type: model.Weight, Weight: fp(0)}))
	require.Empty(t, Entry(model.CheckinEntry{Type: model.Weight, Weight: fp(72.4)}))

	require.NotEmpty(t, Entry(model.CheckinEntry{Type: model.Water}))
	require.NotEmpty(t, Entry(model.CheckinEntry{Type: model.Water, Water: ip(0)}))
	require.Empty(t, Entry(model.CheckinEntry{Type: model.Water, Water: ip(250)}))
}

func TestEntry_EmptyTypeIsValidHere(t *testing.T) {
	t.Parallel()
	require.Empty(t, Entry(model.CheckinEntry{}))
	require.Equal(t, []string{"type: Type is required"}, Fields(model.CheckinEntry{}))
}

func TestFields_Constraints(t *testing.T) {
	t.Parallel()
	e := model.CheckinEntry{
		Type:     model.Workout,
		Calories: ip(0),
		Duration: ip(-1),
		Weight:   fp(0.05),
		Water:    ip(0),
	}
	got := Fields(e)
	assert.Len(t, got, 4)
	assert.Contains(t, got, "weight: Weight must be greater than 0")

	require.Empty(t, Fields(model.CheckinEntry{Type: model.Weight, Weight: fp(0.1)}))
}

func TestAll_Merges(t *testing.T) {
	t.Parallel()
	got := All(model.CheckinEntry{Type: model.Workout, Duration: ip(-3)})
	require.Equal(t, []string{
		"duration: Duration must be a positive number",
		"Duration is required for workouts and must be positive",
	}, got)
}
