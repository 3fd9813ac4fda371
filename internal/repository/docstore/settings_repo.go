package docstore

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/and161185/smartfit/internal/convert"
	"github.com/and161185/smartfit/internal/model"
)

// SettingsRepo implements SettingsRepository on the settings collection.
type SettingsRepo struct{ s *Store }

// NewSettingsRepo constructs a Firestore-backed settings repository.
func NewSettingsRepo(s *Store) *SettingsRepo { return &SettingsRepo{s: s} }

func (r *SettingsRepo) col() *firestore.CollectionRef {
	return r.s.Client.Collection(SettingsCollection)
}

// GetByUser returns the first settings document for userID.
func (r *SettingsRepo) GetByUser(ctx context.Context, userID string) (model.UserSettings, bool, error) {
	snaps, err := r.col().Where(convert.FieldUserID, "==", userID).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return model.UserSettings{}, false, err
	}
	if len(snaps) == 0 {
		return model.UserSettings{}, false, nil
	}
	return convert.SettingsFromDocument(snaps[0].Ref.ID, snaps[0].Data()), true, nil
}

// Upsert writes the full document, reusing the existing id and createdAt when present.
func (r *SettingsRepo) Upsert(ctx context.Context, s model.UserSettings) (*model.UserSettings, error) {
	existing, found, err := r.GetByUser(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	now := r.s.now()
	ref := r.col().NewDoc()
	s.CreatedAt = now
	if found {
		ref = r.col().Doc(existing.ID)
		s.CreatedAt = existing.CreatedAt
	}
	s.ID = ref.ID
	s.UpdatedAt = now
	if _, err := ref.Set(ctx, convert.SettingsToDocument(s)); err != nil {
		return nil, err
	}
	return &s, nil
}
