package docstore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"

	"github.com/and161185/smartfit/internal/convert"
	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/model"
)

const countAlias = "all"

// EntryRepo implements EntryRepository on the checkins collection.
type EntryRepo struct{ s *Store }

// NewEntryRepo constructs a Firestore-backed entry repository.
func NewEntryRepo(s *Store) *EntryRepo { return &EntryRepo{s: s} }

func (r *EntryRepo) col() *firestore.CollectionRef {
	return r.s.Client.Collection(CheckinsCollection)
}

// ListByUser returns every entry owned by userID.
func (r *EntryRepo) ListByUser(ctx context.Context, userID string) ([]model.CheckinEntry, error) {
	return r.list(ctx, r.col().Where(convert.FieldUserID, "==", userID))
}

// ListByUserAndType returns the user's entries of category c.
func (r *EntryRepo) ListByUserAndType(ctx context.Context, userID string, c model.Category) ([]model.CheckinEntry, error) {
	q := r.col().
		Where(convert.FieldUserID, "==", userID).
		Where(convert.FieldType, "==", string(c))
	return r.list(ctx, q)
}

// ListByUserAndDateRange returns the user's entries with start <= timestamp <= end.
func (r *EntryRepo) ListByUserAndDateRange(
	ctx context.Context, userID string, start, end time.Time,
) ([]model.CheckinEntry, error) {
	return r.list(ctx, rangeQuery(r.col().Query, userID, start, end))
}

// CountByUserTypeAndDateRange runs a server-side count aggregation.
func (r *EntryRepo) CountByUserTypeAndDateRange(
	ctx context.Context, userID string, c model.Category, start, end time.Time,
) (int64, error) {
	q := rangeQuery(r.col().Where(convert.FieldType, "==", string(c)), userID, start, end)
	res, err := q.NewAggregationQuery().WithCount(countAlias).Get(ctx)
	if err != nil {
		return 0, err
	}
	switch v := res[countAlias].(type) {
	case *firestorepb.Value:
		return v.GetIntegerValue(), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("count aggregation returned %T: %w", v, errs.ErrDataIntegrity)
	}
}

// GetByID loads a single entry document.
func (r *EntryRepo) GetByID(ctx context.Context, id string) (*model.CheckinEntry, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	e, err := convert.FromDocument(snap.Ref.ID, snap.Data())
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create stores e under a generated document id.
func (r *EntryRepo) Create(ctx context.Context, e model.CheckinEntry) (*model.CheckinEntry, error) {
	ref := r.col().NewDoc()
	now := r.s.now()
	e.ID = ref.ID
	e.CreatedAt, e.UpdatedAt = now, now
	if _, err := ref.Set(ctx, convert.ToDocument(e)); err != nil {
		return nil, err
	}
	return &e, nil
}

// Update overwrites the document, carrying over the stored owner and createdAt.
func (r *EntryRepo) Update(ctx context.Context, id string, e model.CheckinEntry) (*model.CheckinEntry, error) {
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.ID = id
	e.UserID = cur.UserID
	e.CreatedAt = cur.CreatedAt
	e.UpdatedAt = r.s.now()
	if _, err := r.col().Doc(id).Set(ctx, convert.ToDocument(e)); err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes the document; Firestore treats a missing document as success.
func (r *EntryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Delete(ctx)
	if isNotFound(err) {
		return nil
	}
	return err
}

func (r *EntryRepo) list(ctx context.Context, q firestore.Query) ([]model.CheckinEntry, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]model.CheckinEntry, 0, len(snaps))
	for _, snap := range snaps {
		e, err := convert.FromDocument(snap.Ref.ID, snap.Data())
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func rangeQuery(q firestore.Query, userID string, start, end time.Time) firestore.Query {
	return q.
		Where(convert.FieldUserID, "==", userID).
		Where(convert.FieldTimestamp, ">=", start).
		Where(convert.FieldTimestamp, "<=", end)
}
