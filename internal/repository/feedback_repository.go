package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/artci/feedback-api/internal/repository/models"
)

// ErrNotFound is returned when a lookup by id matches no record.
var ErrNotFound = errors.New("record not found")

// Dialect selects placeholder style and schema for a SQL backend.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "postgres", "postgresql":
		return Postgres, nil
	default:
		return 0, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite3"
}

// rebind rewrites ? placeholders as $1..$n for Postgres.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var schemas = map[Dialect][]string{
	SQLite: {
		`CREATE TABLE IF NOT EXISTS feedbacks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type VARCHAR(20) NOT NULL,
			provider VARCHAR(255),
			ratings TEXT NOT NULL,
			nperf_test_id TEXT,
			sector TEXT,
			created_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedbacks_created_at ON feedbacks (created_at)`,
		`CREATE TABLE IF NOT EXISTS nperf_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			nperf_test_id TEXT NOT NULL,
			external_uuid TEXT,
			sector TEXT NOT NULL DEFAULT '',
			created_at DATETIME
		)`,
	},
	Postgres: {
		`CREATE TABLE IF NOT EXISTS feedbacks (
			id BIGSERIAL PRIMARY KEY,
			type VARCHAR(20) NOT NULL,
			provider VARCHAR(255),
			ratings JSONB NOT NULL,
			nperf_test_id TEXT,
			sector TEXT,
			created_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedbacks_created_at ON feedbacks (created_at)`,
		`CREATE TABLE IF NOT EXISTS nperf_results (
			id BIGSERIAL PRIMARY KEY,
			nperf_test_id TEXT NOT NULL,
			external_uuid TEXT,
			sector TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ
		)`,
	},
}

const feedbackColumns = "id, type, provider, ratings, nperf_test_id, sector, created_at"

// FeedbackRepository stores feedback records and nPerf results in a SQL
// database.
type FeedbackRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewFeedbackRepository(db *sql.DB, dialect Dialect) *FeedbackRepository {
	return &FeedbackRepository{db: db, dialect: dialect}
}

// Migrate creates the tables when they do not exist yet.
func (r *FeedbackRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schemas[r.dialect] {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", r.dialect, err)
		}
	}
	return nil
}

// CreateFeedback inserts rec and returns it with its assigned id.
func (r *FeedbackRepository) CreateFeedback(ctx context.Context, rec models.FeedbackRecord) (models.FeedbackRecord, error) {
	query := r.dialect.rebind(`
		INSERT INTO feedbacks (type, provider, ratings, nperf_test_id, sector, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.QueryRowContext(ctx, query,
		rec.Type,
		rec.Provider,
		string(rec.Ratings),
		nullString(rec.NPerfTestID),
		nullString(rec.Sector),
		nullTime(rec.CreatedAt),
	).Scan(&rec.ID)
	if err != nil {
		return models.FeedbackRecord{}, fmt.Errorf("insert feedback: %w", err)
	}
	return rec, nil
}

// ListFeedback returns at most limit records, newest first. Records without a
// timestamp come last.
func (r *FeedbackRepository) ListFeedback(ctx context.Context, limit int) ([]models.FeedbackRecord, error) {
	query := r.dialect.rebind(`
		SELECT ` + feedbackColumns + `
		FROM feedbacks
		ORDER BY created_at IS NULL, created_at DESC, id DESC
		LIMIT ?
	`)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query ListFeedback: %w", err)
	}
	return collectFeedback(rows, "ListFeedback")
}

// GetFeedback returns the record with the given id or ErrNotFound.
func (r *FeedbackRepository) GetFeedback(ctx context.Context, id int64) (models.FeedbackRecord, error) {
	query := r.dialect.rebind(`SELECT ` + feedbackColumns + ` FROM feedbacks WHERE id = ?`)

	rec, err := scanFeedback(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.FeedbackRecord{}, fmt.Errorf("feedback %d: %w", id, ErrNotFound)
		}
		return models.FeedbackRecord{}, fmt.Errorf("query GetFeedback: %w", err)
	}
	return rec, nil
}

// AllFeedback returns every stored record in insertion order.
func (r *FeedbackRepository) AllFeedback(ctx context.Context) ([]models.FeedbackRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+feedbackColumns+` FROM feedbacks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query AllFeedback: %w", err)
	}
	return collectFeedback(rows, "AllFeedback")
}

// CreateNPerfResult inserts res and returns it with its assigned id.
func (r *FeedbackRepository) CreateNPerfResult(ctx context.Context, res models.NPerfResult) (models.NPerfResult, error) {
	query := r.dialect.rebind(`
		INSERT INTO nperf_results (nperf_test_id, external_uuid, sector, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.QueryRowContext(ctx, query,
		res.NPerfTestID,
		nullString(res.ExternalUUID),
		res.Sector,
		nullTime(res.CreatedAt),
	).Scan(&res.ID)
	if err != nil {
		return models.NPerfResult{}, fmt.Errorf("insert nperf result: %w", err)
	}
	return res, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeedback(row rowScanner) (models.FeedbackRecord, error) {
	var (
		rec       models.FeedbackRecord
		provider  sql.NullString
		ratings   []byte
		nperfID   sql.NullString
		sector    sql.NullString
		createdAt sql.NullTime
	)
	if err := row.Scan(&rec.ID, &rec.Type, &provider, &ratings, &nperfID, &sector, &createdAt); err != nil {
		return models.FeedbackRecord{}, err
	}
	rec.Provider = provider.String
	rec.Ratings = ratings
	rec.NPerfTestID = nperfID.String
	rec.Sector = sector.String
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time
	}
	return rec, nil
}

func collectFeedback(rows *sql.Rows, op string) ([]models.FeedbackRecord, error) {
	defer rows.Close()

	results := []models.FeedbackRecord{}
	for rows.Next() {
		rec, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", op, err)
		}
		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return results, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}
