package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/model"
)

// SettingsRepo implements SettingsRepository using PostgreSQL.
type SettingsRepo struct{ db *DB }

// NewSettingsRepo constructs a settings repository.
func NewSettingsRepo(db *DB) *SettingsRepo { return &SettingsRepo{db: db} }

// GetByUser returns the oldest settings row for userID.
func (r *SettingsRepo) GetByUser(ctx context.Context, userID string) (model.UserSettings, bool, error) {
	const q = `
SELECT id, user_id, workout_enabled, meal_enabled, weight_enabled, water_enabled, created_at, updated_at
FROM user_settings WHERE user_id=$1
ORDER BY created_at ASC
LIMIT 1`
	var s model.UserSettings
	err := r.db.Pool.QueryRow(ctx, q, userID).Scan(
		&s.ID, &s.UserID, &s.WorkoutEnabled, &s.MealEnabled, &s.WeightEnabled, &s.WaterEnabled,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserSettings{}, false, nil
		}
		return model.UserSettings{}, false, err
	}
	return s, true, nil
}

// Upsert replaces the user's flags. An existing row keeps its id and createdAt;
// otherwise a new row is inserted.
func (r *SettingsRepo) Upsert(ctx context.Context, s model.UserSettings) (*model.UserSettings, error) {
	existing, found, err := r.GetByUser(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	now := r.db.now()
	s.UpdatedAt = now

	if found {
		s.ID, s.CreatedAt = existing.ID, existing.CreatedAt
		const upd = `
UPDATE user_settings
SET workout_enabled=$2, meal_enabled=$3, weight_enabled=$4, water_enabled=$5, updated_at=$6
WHERE id=$1`
		tag, err := r.db.Pool.Exec(ctx, upd,
			s.ID, s.WorkoutEnabled, s.MealEnabled, s.WeightEnabled, s.WaterEnabled, s.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, errs.ErrNotFound
		}
		return &s, nil
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	s.ID, s.CreatedAt = id.String(), now
	const ins = `
INSERT INTO user_settings (id, user_id, workout_enabled, meal_enabled, weight_enabled, water_enabled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.db.Pool.Exec(ctx, ins,
		s.ID, s.UserID, s.WorkoutEnabled, s.MealEnabled, s.WeightEnabled, s.WaterEnabled, s.CreatedAt, s.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("settings %s: %w", s.ID, errs.ErrDataIntegrity)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
