package convert

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/model"
)

type settingsPayload struct {
	WorkoutEnabled *bool `json:"workoutEnabled"`
	MealEnabled    *bool `json:"mealEnabled"`
	WeightEnabled  *bool `json:"weightEnabled"`
	WaterEnabled   *bool `json:"waterEnabled"`
}

// ParseSettings decodes a settings body for callerID. Flags missing from the
// body default to true; id and timestamps are never taken from the client.
func ParseSettings(body []byte, callerID string) (model.UserSettings, error) {
	var in settingsPayload
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&in); err != nil {
		return model.UserSettings{}, errs.NewValidation(fmt.Sprintf("Malformed request body: %v", err))
	}
	s := model.DefaultSettings(callerID)
	setFlag(&s.WorkoutEnabled, in.WorkoutEnabled)
	setFlag(&s.MealEnabled, in.MealEnabled)
	setFlag(&s.WeightEnabled, in.WeightEnabled)
	setFlag(&s.WaterEnabled, in.WaterEnabled)
	return s, nil
}

func setFlag(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
