package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/smartfit/internal/convert"
	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/model"
)

const entryColumns = `id, user_id, type, title, description, calories, duration, weight, water, occurred_at, created_at, updated_at`

// EntryRepo implements EntryRepository using PostgreSQL.
type EntryRepo struct{ db *DB }

// NewEntryRepo constructs a check-in entry repository.
func NewEntryRepo(db *DB) *EntryRepo { return &EntryRepo{db: db} }

// ListByUser returns every entry owned by userID.
func (r *EntryRepo) ListByUser(ctx context.Context, userID string) ([]model.CheckinEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM checkin_entries WHERE user_id=$1`
	return r.list(ctx, q, userID)
}

// ListByUserAndType returns the user's entries of category c.
func (r *EntryRepo) ListByUserAndType(ctx context.Context, userID string, c model.Category) ([]model.CheckinEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM checkin_entries WHERE user_id=$1 AND type=$2`
	return r.list(ctx, q, userID, string(c))
}

// ListByUserAndDateRange returns the user's entries whose timestamp lies in [start, end].
func (r *EntryRepo) ListByUserAndDateRange(
	ctx context.Context, userID string, start, end time.Time,
) ([]model.CheckinEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM checkin_entries WHERE user_id=$1 AND occurred_at>=$2 AND occurred_at<=$3`
	return r.list(ctx, q, userID, start, end)
}

// CountByUserTypeAndDateRange counts matching entries server-side.
func (r *EntryRepo) CountByUserTypeAndDateRange(
	ctx context.Context, userID string, c model.Category, start, end time.Time,
) (int64, error) {
	const q = `SELECT count(*) FROM checkin_entries WHERE user_id=$1 AND type=$2 AND occurred_at>=$3 AND occurred_at<=$4`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q, userID, string(c), start, end).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// GetByID loads a single entry.
func (r *EntryRepo) GetByID(ctx context.Context, id string) (*model.CheckinEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM checkin_entries WHERE id=$1`
	e, err := scanEntry(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Create assigns a fresh id and audit timestamps, then inserts the row.
func (r *EntryRepo) Create(ctx context.Context, e model.CheckinEntry) (*model.CheckinEntry, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	now := r.db.now()
	e.ID = id.String()
	e.CreatedAt, e.UpdatedAt = now, now

	const q = `
INSERT INTO checkin_entries (` + entryColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.db.Pool.Exec(ctx, q,
		e.ID, e.UserID, string(e.Type), e.Title, e.Description,
		e.Calories, e.Duration, e.Weight, e.Water,
		e.Timestamp, e.CreatedAt, e.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("entry %s: %w", e.ID, errs.ErrDataIntegrity)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Update replaces the mutable fields of entry id. Owner and createdAt stay as stored.
func (r *EntryRepo) Update(ctx context.Context, id string, e model.CheckinEntry) (*model.CheckinEntry, error) {
	const q = `
UPDATE checkin_entries
SET type=$2, title=$3, description=$4, calories=$5, duration=$6, weight=$7, water=$8, occurred_at=$9, updated_at=$10
WHERE id=$1
RETURNING user_id, created_at`
	e.ID = id
	e.UpdatedAt = r.db.now()
	row := r.db.Pool.QueryRow(ctx, q,
		id, string(e.Type), e.Title, e.Description,
		e.Calories, e.Duration, e.Weight, e.Water,
		e.Timestamp, e.UpdatedAt)
	if err := row.Scan(&e.UserID, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Delete removes the row; a missing id is not an error.
func (r *EntryRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM checkin_entries WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id)
	return err
}

func (r *EntryRepo) list(ctx context.Context, q string, args ...any) ([]model.CheckinEntry, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.CheckinEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntry(row rowScanner) (model.CheckinEntry, error) {
	var (
		e        model.CheckinEntry
		typeText string
	)
	if err := row.Scan(
		&e.ID, &e.UserID, &typeText, &e.Title, &e.Description,
		&e.Calories, &e.Duration, &e.Weight, &e.Water,
		&e.Timestamp, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return model.CheckinEntry{}, err
	}
	c, err := convert.ParseCategory(typeText)
	if err != nil {
		return model.CheckinEntry{}, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	e.Type = c
	return e, nil
}
