// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/and161185/smartfit/internal/model"
)

// EntryRepository provides access to check-in entries. Implementations return
// list results in storage order; callers sort.
type EntryRepository interface {
	// ListByUser returns all entries owned by userID.
	ListByUser(ctx context.Context, userID string) ([]model.CheckinEntry, error)
	// ListByUserAndType returns the user's entries of one category.
	ListByUserAndType(ctx context.Context, userID string, c model.Category) ([]model.CheckinEntry, error)
	// ListByUserAndDateRange returns the user's entries with start <= timestamp <= end.
	ListByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]model.CheckinEntry, error)
	// CountByUserTypeAndDateRange counts entries without materializing them.
	CountByUserTypeAndDateRange(ctx context.Context, userID string, c model.Category, start, end time.Time) (int64, error)
	// GetByID loads an entry or returns errs.ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.CheckinEntry, error)
	// Create assigns an id, stamps audit timestamps and stores e.
	Create(ctx context.Context, e model.CheckinEntry) (*model.CheckinEntry, error)
	// Update replaces the mutable fields of entry id; errs.ErrNotFound if absent.
	Update(ctx context.Context, id string, e model.CheckinEntry) (*model.CheckinEntry, error)
	// Delete removes entry id; deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}
