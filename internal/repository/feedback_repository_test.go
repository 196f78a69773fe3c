package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artci/feedback-api/internal/repository/models"
)

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)

	d, err = DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	_, err = DialectFor("oracle")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO t (a, b, c) VALUES (?, ?, ?)"
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)", Postgres.rebind(q))
}

func newMockRepo(t *testing.T) (*FeedbackRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFeedbackRepository(db, Postgres), mock
}

func TestFeedbackRepository_Postgres(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)

	t.Run("CreateFeedback uses numbered placeholders", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		ratings := `[{"c1":{"label":"Speed","rating":"3"}}]`

		mock.ExpectQuery(regexp.QuoteMeta("VALUES ($1, $2, $3, $4, $5, $6)")).
			WithArgs("mobile", "Orange", ratings, nil, nil, ts).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		rec, err := repo.CreateFeedback(ctx, models.FeedbackRecord{
			Type: "mobile", Provider: "Orange", Ratings: json.RawMessage(ratings), CreatedAt: ts,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), rec.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetFeedback maps no rows to ErrNotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
			WithArgs(int64(3)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetFeedback(ctx, 3)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AllFeedback scans nullable columns", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		rows := sqlmock.NewRows([]string{"id", "type", "provider", "ratings", "nperf_test_id", "sector", "created_at"}).
			AddRow(1, "mobile", "Orange", []byte(`[]`), nil, nil, ts).
			AddRow(2, "fixe", nil, []byte(`[{"a":{"label":"X","rating":"2"}}]`), "T1", "Nord", nil)
		mock.ExpectQuery(regexp.QuoteMeta("FROM feedbacks ORDER BY id")).WillReturnRows(rows)

		got, err := repo.AllFeedback(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, ts, got[0].CreatedAt)
		assert.Equal(t, "", got[0].NPerfTestID)
		assert.Equal(t, "", got[1].Provider)
		assert.Equal(t, "T1", got[1].NPerfTestID)
		assert.False(t, got[1].HasTimestamp())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListFeedback wraps driver errors", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1")).
			WithArgs(50).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.ListFeedback(ctx, 50)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("Migrate runs every statement", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		for range schemas[Postgres] {
			mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
		}

		require.NoError(t, repo.Migrate(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateNPerfResult", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO nperf_results")).
			WithArgs("abc", nil, "Plateau", ts).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		res, err := repo.CreateNPerfResult(ctx, models.NPerfResult{NPerfTestID: "abc", Sector: "Plateau", CreatedAt: ts})
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.ID)
	})
}
