package convert

import (
	"fmt"
	"time"

	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/model"
)

// Document field names shared by the storage backends.
const (
	FieldUserID         = "userId"
	FieldType           = "type"
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldCalories       = "calories"
	FieldDuration       = "duration"
	FieldWeight         = "weight"
	FieldWater          = "water"
	FieldTimestamp      = "timestamp"
	FieldCreatedAt      = "createdAt"
	FieldUpdatedAt      = "updatedAt"
	FieldWorkoutEnabled = "workoutEnabled"
	FieldMealEnabled    = "mealEnabled"
	FieldWeightEnabled  = "weightEnabled"
	FieldWaterEnabled   = "waterEnabled"
)

// ToDocument maps an entry 1:1 onto a storage document. The id is not part of
// the document body. Absent optional fields are stored as nil.
func ToDocument(e model.CheckinEntry) map[string]any {
	return map[string]any{
		FieldUserID:      e.UserID,
		FieldType:        string(e.Type),
		FieldTitle:       derefString(e.Title),
		FieldDescription: derefString(e.Description),
		FieldCalories:    derefInt(e.Calories),
		FieldDuration:    derefInt(e.Duration),
		FieldWeight:      derefFloat(e.Weight),
		FieldWater:       derefInt(e.Water),
		FieldTimestamp:   e.Timestamp,
		FieldCreatedAt:   e.CreatedAt,
		FieldUpdatedAt:   e.UpdatedAt,
	}
}

// FromDocument rebuilds an entry from a stored document. A missing or unknown
// category fails with errs.ErrDataIntegrity.
func FromDocument(id string, doc map[string]any) (model.CheckinEntry, error) {
	typeText, _ := doc[FieldType].(string)
	c, err := ParseCategory(typeText)
	if err != nil {
		return model.CheckinEntry{}, fmt.Errorf("entry %s: %w", id, err)
	}
	e := model.CheckinEntry{
		ID:          id,
		Type:        c,
		Title:       stringField(doc, FieldTitle),
		Description: stringField(doc, FieldDescription),
		Timestamp:   timeField(doc, FieldTimestamp),
		CreatedAt:   timeField(doc, FieldCreatedAt),
		UpdatedAt:   timeField(doc, FieldUpdatedAt),
	}
	e.UserID, _ = doc[FieldUserID].(string)
	if e.Calories, err = intField(doc, FieldCalories); err != nil {
		return model.CheckinEntry{}, fmt.Errorf("entry %s: %w", id, err)
	}
	if e.Duration, err = intField(doc, FieldDuration); err != nil {
		return model.CheckinEntry{}, fmt.Errorf("entry %s: %w", id, err)
	}
	if e.Water, err = intField(doc, FieldWater); err != nil {
		return model.CheckinEntry{}, fmt.Errorf("entry %s: %w", id, err)
	}
	if e.Weight, err = floatField(doc, FieldWeight); err != nil {
		return model.CheckinEntry{}, fmt.Errorf("entry %s: %w", id, err)
	}
	return e, nil
}

// SettingsToDocument maps settings onto a storage document.
func SettingsToDocument(s model.UserSettings) map[string]any {
	return map[string]any{
		FieldUserID:         s.UserID,
		FieldWorkoutEnabled: s.WorkoutEnabled,
		FieldMealEnabled:    s.MealEnabled,
		FieldWeightEnabled:  s.WeightEnabled,
		FieldWaterEnabled:   s.WaterEnabled,
		FieldCreatedAt:      s.CreatedAt,
		FieldUpdatedAt:      s.UpdatedAt,
	}
}

// SettingsFromDocument rebuilds settings; absent flags read as true.
func SettingsFromDocument(id string, doc map[string]any) model.UserSettings {
	s := model.UserSettings{
		ID:             id,
		WorkoutEnabled: boolField(doc, FieldWorkoutEnabled),
		MealEnabled:    boolField(doc, FieldMealEnabled),
		WeightEnabled:  boolField(doc, FieldWeightEnabled),
		WaterEnabled:   boolField(doc, FieldWaterEnabled),
		CreatedAt:      timeField(doc, FieldCreatedAt),
		UpdatedAt:      timeField(doc, FieldUpdatedAt),
	}
	s.UserID, _ = doc[FieldUserID].(string)
	return s
}

// --- helpers ---

func derefString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func derefInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func derefFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringField(doc map[string]any, key string) *string {
	if s, ok := doc[key].(string); ok {
		return &s
	}
	return nil
}

func intField(doc map[string]any, key string) (*int, error) {
	switch v := doc[key].(type) {
	case nil:
		return nil, nil
	case int64:
		n := int(v)
		return &n, nil
	case int:
		return &v, nil
	case float64:
		n := int(v)
		return &n, nil
	default:
		return nil, fmt.Errorf("field %s has type %T: %w", key, v, errs.ErrDataIntegrity)
	}
}

func floatField(doc map[string]any, key string) (*float64, error) {
	switch v := doc[key].(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	case int64:
		f := float64(v)
		return &f, nil
	case int:
		f := float64(v)
		return &f, nil
	default:
		return nil, fmt.Errorf("field %s has type %T: %w", key, v, errs.ErrDataIntegrity)
	}
}

func timeField(doc map[string]any, key string) time.Time {
	if t, ok := doc[key].(time.Time); ok {
		return t
	}
	return time.Time{}
}

func boolField(doc map[string]any, key string) bool {
	if b, ok := doc[key].(bool); ok {
		return b
	}
	return true
}
