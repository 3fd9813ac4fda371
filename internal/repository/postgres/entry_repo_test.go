package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/model"
)

var (
	fixedNow = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	entryCol = []string{
		"id", "user_id", "type", "title", "description",
		"calories", "duration", "weight", "water",
		"occurred_at", "created_at", "updated_at",
	}
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock, Now: func() time.Time { return fixedNow }}, mock
}

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func entryRow(rows *pgxmock.Rows, id, userID, typ string, water *int, ts time.Time) *pgxmock.Rows {
	return rows.AddRow(id, userID, typ, (*string)(nil), (*string)(nil),
		(*int)(nil), (*int)(nil), (*float64)(nil), water,
		ts, ts, ts)
}

func TestEntryRepo_ListByUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	ctx := context.Background()

	rows := pgxmock.NewRows(entryCol)
	entryRow(rows, "e1", "u1", "WATER", intPtr(250), fixedNow)
	entryRow(rows, "e2", "u1", "WEIGHT", nil, fixedNow.Add(-time.Hour))
	mock.ExpectQuery(`SELECT id, user_id, type, .* FROM checkin_entries WHERE user_id=\$1`).
		WithArgs("u1").
		WillReturnRows(rows)

	got, err := r.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, model.Water, got[0].Type)
	require.Equal(t, 250, *got[0].Water)
	require.Nil(t, got[0].Title)
	require.Equal(t, model.Weight, got[1].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_ListByUser_Empty(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)

	mock.ExpectQuery(`FROM checkin_entries WHERE user_id=\$1`).
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows(entryCol))

	got, err := r.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestEntryRepo_List_CorruptCategory(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)

	rows := pgxmock.NewRows(entryCol)
	entryRow(rows, "e1", "u1", "MEALX", nil, fixedNow)
	mock.ExpectQuery(`FROM checkin_entries WHERE user_id=\$1 AND type=\$2`).
		WithArgs("u1", "MEAL").
		WillReturnRows(rows)

	_, err := r.ListByUserAndType(context.Background(), "u1", model.Meal)
	require.ErrorIs(t, err, errs.ErrDataIntegrity)
}

func TestEntryRepo_ListByUser_LowercaseCategory(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)

	rows := pgxmock.NewRows(entryCol)
	entryRow(rows, "e1", "u1", "meal", nil, fixedNow)
	mock.ExpectQuery(`FROM checkin_entries WHERE user_id=\$1`).
		WithArgs("u1").
		WillReturnRows(rows)

	got, err := r.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, model.Meal, got[0].Type)
}

func TestEntryRepo_ListByUserAndDateRange(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	start, end := fixedNow.Add(-24*time.Hour), fixedNow

	rows := pgxmock.NewRows(entryCol)
	entryRow(rows, "e1", "u1", "WATER", intPtr(100), fixedNow.Add(-time.Hour))
	mock.ExpectQuery(`FROM checkin_entries WHERE user_id=\$1 AND occurred_at>=\$2 AND occurred_at<=\$3`).
		WithArgs("u1", start, end).
		WillReturnRows(rows)

	got, err := r.ListByUserAndDateRange(context.Background(), "u1", start, end)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_Count(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	start, end := fixedNow.Add(-24*time.Hour), fixedNow

	mock.ExpectQuery(`SELECT count\(\*\) FROM checkin_entries WHERE user_id=\$1 AND type=\$2`).
		WithArgs("u1", "WORKOUT", start, end).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := r.CountByUserTypeAndDateRange(context.Background(), "u1", model.Workout, start, end)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	mock.ExpectQuery(`SELECT count\(\*\)`).
		WithArgs("u1", "MEAL", start, end).
		WillReturnError(errors.New("boom"))
	_, err = r.CountByUserTypeAndDateRange(context.Background(), "u1", model.Meal, start, end)
	require.Error(t, err)
}

func TestEntryRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	ctx := context.Background()

	rows := pgxmock.NewRows(entryCol)
	entryRow(rows, "e1", "u1", "WATER", intPtr(300), fixedNow)
	mock.ExpectQuery(`FROM checkin_entries WHERE id=\$1`).
		WithArgs("e1").
		WillReturnRows(rows)
	e, err := r.GetByID(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "e1", e.ID)
	require.Equal(t, "u1", e.UserID)

	mock.ExpectQuery(`FROM checkin_entries WHERE id=\$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestEntryRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	ctx := context.Background()

	in := model.CheckinEntry{
		UserID:    "u1",
		Type:      model.Meal,
		Title:     strPtr("Lunch"),
		Calories:  intPtr(600),
		Weight:    floatPtr(70.5),
		Timestamp: fixedNow.Add(-time.Hour),
	}
	mock.ExpectExec(`INSERT INTO checkin_entries \(id, user_id, type`).
		WithArgs(pgxmock.AnyArg(), "u1", "MEAL", in.Title, (*string)(nil),
			in.Calories, (*int)(nil), in.Weight, (*int)(nil),
			in.Timestamp, fixedNow, fixedNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	out, err := r.Create(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, out.ID)
	require.Equal(t, fixedNow, out.CreatedAt)
	require.Equal(t, fixedNow, out.UpdatedAt)
	require.Equal(t, in.Timestamp, out.Timestamp)

	mock.ExpectExec(`INSERT INTO checkin_entries`).
		WithArgs(anyArgs(12)...).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err = r.Create(ctx, in)
	require.ErrorIs(t, err, errs.ErrDataIntegrity)
}

func TestEntryRepo_Update(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	ctx := context.Background()
	created := fixedNow.Add(-48 * time.Hour)

	in := model.CheckinEntry{UserID: "mallory", Type: model.Water, Water: intPtr(500), Timestamp: fixedNow}
	mock.ExpectQuery(`UPDATE checkin_entries SET type=\$2, .* WHERE id=\$1 RETURNING user_id, created_at`).
		WithArgs("e1", "WATER", (*string)(nil), (*string)(nil),
			(*int)(nil), (*int)(nil), (*float64)(nil), in.Water,
			in.Timestamp, fixedNow).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "created_at"}).AddRow("u1", created))

	out, err := r.Update(ctx, "e1", in)
	require.NoError(t, err)
	require.Equal(t, "e1", out.ID)
	require.Equal(t, "u1", out.UserID)
	require.Equal(t, created, out.CreatedAt)
	require.Equal(t, fixedNow, out.UpdatedAt)

	mock.ExpectQuery(`UPDATE checkin_entries`).
		WithArgs(anyArgs(10)...).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.Update(ctx, "gone", in)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestEntryRepo_Delete_Idempotent(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM checkin_entries WHERE id=\$1`).
		WithArgs("e1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM checkin_entries WHERE id=\$1`).
		WithArgs("e1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, r.Delete(ctx, "e1"))
	require.NoError(t, r.Delete(ctx, "e1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
