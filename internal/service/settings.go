package service

import (
	"context"

	"github.com/and161185/smartfit/internal/model"
	"github.com/and161185/smartfit/internal/repository"
)

// SettingsService reads and writes a user's tracking preferences.
type SettingsService interface {
	// Get returns the stored settings or a transient default that is not persisted.
	Get(ctx context.Context, userID string) (model.UserSettings, error)
	// Save upserts the settings keyed by s.UserID.
	Save(ctx context.Context, s model.UserSettings) (*model.UserSettings, error)
}

type SettingsServiceImpl struct {
	repo repository.SettingsRepository
}

// NewSettingsService constructs SettingsService.
func NewSettingsService(repo repository.SettingsRepository) *SettingsServiceImpl {
	return &SettingsServiceImpl{repo: repo}
}

// Get never writes.
func (s *SettingsServiceImpl) Get(ctx context.Context, userID string) (model.UserSettings, error) {
	cur, found, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return model.UserSettings{}, err
	}
	if !found {
		return model.DefaultSettings(userID), nil
	}
	return cur, nil
}

// Save replaces every flag; id and createdAt are owned by the store.
func (s *SettingsServiceImpl) Save(ctx context.Context, in model.UserSettings) (*model.UserSettings, error) {
	in.ID = ""
	return s.repo.Upsert(ctx, in)
}
