// Package service contains application services for check-ins, settings and authentication.
package service

import (
	"context"
	"slices"
	"time"

	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/model"
	"github.com/and161185/smartfit/internal/repository"
	"github.com/and161185/smartfit/internal/validate"
)

// CheckinService defines operations over a user's check-in entries.
// Every method is scoped to userID; entries owned by someone else are reported
// as errs.ErrNotFound.
type CheckinService interface {
	// List returns all of the user's entries, newest first.
	List(ctx context.Context, userID string) ([]model.CheckinEntry, error)
	// ListByType returns the user's entries of one category, newest first.
	ListByType(ctx context.Context, userID string, c model.Category) ([]model.CheckinEntry, error)
	// ListByRange returns the user's entries within r, newest first.
	ListByRange(ctx context.Context, userID string, r model.TimeRange) ([]model.CheckinEntry, error)
	// Get returns one owned entry.
	Get(ctx context.Context, userID, id string) (*model.CheckinEntry, error)
	// Create validates and stores a new entry owned by e.UserID.
	Create(ctx context.Context, e model.CheckinEntry) (*model.CheckinEntry, error)
	// Update validates e and replaces owned entry id.
	Update(ctx context.Context, userID, id string, e model.CheckinEntry) (*model.CheckinEntry, error)
	// Delete removes owned entry id.
	Delete(ctx context.Context, userID, id string) error
	// Stats counts the user's entries per category within r.
	Stats(ctx context.Context, userID string, r model.TimeRange) (model.Stats, error)
}

type CheckinServiceImpl struct {
	repo repository.EntryRepository
}

// NewCheckinService constructs CheckinService over an entry repository.
func NewCheckinService(repo repository.EntryRepository) *CheckinServiceImpl {
	return &CheckinServiceImpl{repo: repo}
}

// List returns all entries owned by userID.
func (s *CheckinServiceImpl) List(ctx context.Context, userID string) ([]model.CheckinEntry, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	return newestFirst(out), err
}

// ListByType returns entries of category c.
func (s *CheckinServiceImpl) ListByType(ctx context.Context, userID string, c model.Category) ([]model.CheckinEntry, error) {
	if !c.Valid() {
		return nil, errs.NewValidation("type: unknown check-in type " + string(c))
	}
	out, err := s.repo.ListByUserAndType(ctx, userID, c)
	return newestFirst(out), err
}

// ListByRange returns entries with r.Start <= timestamp <= r.End.
func (s *CheckinServiceImpl) ListByRange(ctx context.Context, userID string, r model.TimeRange) ([]model.CheckinEntry, error) {
	out, err := s.repo.ListByUserAndDateRange(ctx, userID, r.Start, r.End)
	return newestFirst(out), err
}

// Get loads entry id and checks ownership.
func (s *CheckinServiceImpl) Get(ctx context.Context, userID, id string) (*model.CheckinEntry, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, errs.ErrNotFound
	}
	return e, nil
}

// Create runs field and category validation before storing e.
func (s *CheckinServiceImpl) Create(ctx context.Context, e model.CheckinEntry) (*model.CheckinEntry, error) {
	if v := validate.All(e); len(v) > 0 {
		return nil, errs.NewValidation(v...)
	}
	return s.repo.Create(ctx, e)
}

// Update validates e, then replaces entry id if the caller owns it.
// The owner and createdAt of the stored entry are kept.
func (s *CheckinServiceImpl) Update(ctx context.Context, userID, id string, e model.CheckinEntry) (*model.CheckinEntry, error) {
	if v := validate.All(e); len(v) > 0 {
		return nil, errs.NewValidation(v...)
	}
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	e.UserID = userID
	return s.repo.Update(ctx, id, e)
}

// Delete removes entry id if the caller owns it.
func (s *CheckinServiceImpl) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Stats issues one count per category.
func (s *CheckinServiceImpl) Stats(ctx context.Context, userID string, r model.TimeRange) (model.Stats, error) {
	var st model.Stats
	for _, c := range model.Categories {
		n, err := s.repo.CountByUserTypeAndDateRange(ctx, userID, c, r.Start, r.End)
		if err != nil {
			return model.Stats{}, err
		}
		st.Add(c, n)
	}
	return st, nil
}

// newestFirst sorts by timestamp descending; ties keep storage order.
func newestFirst(in []model.CheckinEntry) []model.CheckinEntry {
	if in == nil {
		return []model.CheckinEntry{}
	}
	slices.SortStableFunc(in, func(a, b model.CheckinEntry) int {
		return compareDesc(a.Timestamp, b.Timestamp)
	})
	return in
}

func compareDesc(a, b time.Time) int {
	return b.Compare(a)
}
