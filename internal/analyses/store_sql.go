package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resume-match-api/internal/shared/storage/db"
)

const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z"

// SQLStore persists analyses in Postgres or SQLite through database/sql.
type SQLStore struct {
	DB      *sql.DB
	Dialect db.Dialect
	now     func() time.Time
}

// NewSQLStore wraps an open, migrated database.
func NewSQLStore(conn *sql.DB, dialect db.Dialect) *SQLStore {
	return &SQLStore{DB: conn, Dialect: dialect, now: time.Now}
}

// Create validates the full record against the schema and inserts it.
func (s *SQLStore) Create(ctx context.Context, draft Draft) (AnalysisResult, error) {
	// Postgres keeps microseconds; truncating keeps the returned record equal to what Get reads back.
	createdAt := s.now().UTC().Truncate(time.Microsecond)
	result := newResult(uuid.NewString(), createdAt, draft)
	if err := ValidateRecord(result); err != nil {
		return AnalysisResult{}, err
	}

	breakdown, err := json.Marshal(result.ScoreBreakdown)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("marshal score_breakdown: %w", err)
	}
	keywords, err := json.Marshal(result.MissingKeywords)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("marshal missing_keywords: %w", err)
	}
	bullets, err := json.Marshal(result.NewBulletPoints)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("marshal new_bullet_points_to_add: %w", err)
	}
	rephrase, err := json.Marshal(result.BulletsToRephrase)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("marshal bullets_to_rephrase: %w", err)
	}

	const query = `
INSERT INTO analyses (
	uuid, match_score, score_breakdown, missing_keywords, new_bullet_points_to_add,
	bullets_to_rephrase, one_sentence_summary, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = s.DB.ExecContext(ctx, query,
		result.ID,
		result.MatchScore,
		string(breakdown),
		string(keywords),
		string(bullets),
		string(rephrase),
		result.Summary,
		s.timeArg(createdAt),
	)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("%w: insert analysis: %w", ErrStoreUnavailable, err)
	}
	return result.Clone(), nil
}

// Get returns an analysis by its public ID.
func (s *SQLStore) Get(ctx context.Context, id string) (AnalysisResult, error) {
	const query = `
SELECT uuid, match_score, score_breakdown, missing_keywords, new_bullet_points_to_add,
       bullets_to_rephrase, one_sentence_summary, created_at
FROM analyses
WHERE uuid = $1
LIMIT 1`
	result, err := scanResult(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AnalysisResult{}, ErrNotFound
		}
		return AnalysisResult{}, fmt.Errorf("%w: get analysis: %w", ErrStoreUnavailable, err)
	}
	return result, nil
}

// List returns the newest analyses first.
func (s *SQLStore) List(ctx context.Context, limit int) ([]AnalysisResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	const query = `
SELECT uuid, match_score, score_breakdown, missing_keywords, new_bullet_points_to_add,
       bullets_to_rephrase, one_sentence_summary, created_at
FROM analyses
ORDER BY created_at DESC, id DESC
LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list analyses: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := make([]AnalysisResult, 0, limit)
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan analysis: %w", ErrStoreUnavailable, err)
		}
		out = append(out, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list analyses: %w", ErrStoreUnavailable, err)
	}
	return out, nil
}

func (s *SQLStore) timeArg(t time.Time) any {
	if s.Dialect == db.DialectSQLite {
		// Fixed width keeps lexical order equal to chronological order.
		return t.Format(sqliteTimeLayout)
	}
	return t
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (AnalysisResult, error) {
	var (
		r                                      AnalysisResult
		breakdown, keywords, bullets, rephrase []byte
		createdAt                              timestamp
	)
	if err := row.Scan(&r.ID, &r.MatchScore, &breakdown, &keywords, &bullets, &rephrase, &r.Summary, &createdAt); err != nil {
		return AnalysisResult{}, err
	}
	if err := json.Unmarshal(breakdown, &r.ScoreBreakdown); err != nil {
		return AnalysisResult{}, fmt.Errorf("decode score_breakdown: %w", err)
	}
	if err := json.Unmarshal(keywords, &r.MissingKeywords); err != nil {
		return AnalysisResult{}, fmt.Errorf("decode missing_keywords: %w", err)
	}
	if err := json.Unmarshal(bullets, &r.NewBulletPoints); err != nil {
		return AnalysisResult{}, fmt.Errorf("decode new_bullet_points_to_add: %w", err)
	}
	if err := json.Unmarshal(rephrase, &r.BulletsToRephrase); err != nil {
		return AnalysisResult{}, fmt.Errorf("decode bullets_to_rephrase: %w", err)
	}
	r.CreatedAt = createdAt.Time.UTC()
	return r.Clone(), nil
}

// timestamp scans the driver representations of created_at: time.Time from pgx,
// text or time.Time from SQLite depending on how the value was written.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	sqliteTimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case int64:
		t.Time = time.Unix(v, 0)
		return nil
	case nil:
		return errors.New("created_at is null")
	default:
		return fmt.Errorf("unsupported created_at type %T", src)
	}
}

func (t *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized created_at %q", s)
}
