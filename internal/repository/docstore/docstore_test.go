package docstore

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/require"

	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/model"
)

// newStore connects to the Firestore emulator; tests are skipped without it.
// Start one with `gcloud emulators firestore start --host-port=localhost:8085`
// and export FIRESTORE_EMULATOR_HOST=localhost:8085.
func newStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set; run the Firestore emulator to exercise docstore")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "smartfit-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return New(client)
}

func uniqueUser(t *testing.T) string {
	return t.Name() + "-" + time.Now().Format("150405.000000000")
}

func TestEntryRepo_Lifecycle(t *testing.T) {
	s := newStore(t)
	r := NewEntryRepo(s)
	ctx := context.Background()
	user := uniqueUser(t)
	water := 250
	ts := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)

	created, err := r.Create(ctx, model.CheckinEntry{UserID: user, Type: model.Water, Water: &water, Timestamp: ts})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, user, got.UserID)
	require.Equal(t, water, *got.Water)
	require.True(t, got.Timestamp.Equal(ts))

	list, err := r.ListByUserAndType(ctx, user, model.Water)
	require.NoError(t, err)
	require.Len(t, list, 1)

	n, err := r.CountByUserTypeAndDateRange(ctx, user, model.Water, ts.Add(-time.Minute), ts.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	more := 500
	upd, err := r.Update(ctx, created.ID, model.CheckinEntry{UserID: "someone-else", Type: model.Water, Water: &more, Timestamp: ts})
	require.NoError(t, err)
	require.Equal(t, user, upd.UserID)
	require.True(t, upd.CreatedAt.Equal(created.CreatedAt))

	require.NoError(t, r.Delete(ctx, created.ID))
	require.NoError(t, r.Delete(ctx, created.ID))
	_, err = r.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = r.Update(ctx, created.ID, *upd)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSettingsRepo_Upsert(t *testing.T) {
	s := newStore(t)
	r := NewSettingsRepo(s)
	ctx := context.Background()
	user := uniqueUser(t)

	_, found, err := r.GetByUser(ctx, user)
	require.NoError(t, err)
	require.False(t, found)

	first, err := r.Upsert(ctx, model.DefaultSettings(user))
	require.NoError(t, err)

	next := model.DefaultSettings(user)
	next.MealEnabled = false
	second, err := r.Upsert(ctx, next)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	got, found, err := r.GetByUser(ctx, user)
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, got.MealEnabled)
}

func TestStore_Ping(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Ping(context.Background()))
}
