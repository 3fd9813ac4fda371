package repository

import (
	"context"

	"github.com/and161185/smartfit/internal/model"
)

// SettingsRepository stores one preferences record per user.
type SettingsRepository interface {
	// GetByUser returns the first record for userID; found is false when none exists.
	GetByUser(ctx context.Context, userID string) (s model.UserSettings, found bool, err error)
	// Upsert creates or fully replaces the record keyed by s.UserID,
	// preserving the original id and createdAt.
	Upsert(ctx context.Context, s model.UserSettings) (*model.UserSettings, error)
}
