package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "cryptoscout/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts an analysis record; re-saving the same ID replaces the row.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT INTO analyses (id, project_id, result_json, created_at)
VALUES (?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  project_id=excluded.project_id, result_json=excluded.result_json;
`
	result := a.ResultJSON
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, string(a.ID), a.ProjectID, result, createdAt.Unix())
	return err
}

func (r *AnalysisRepository) LatestByProject(ctx context.Context, projectID string) (*domain.Record, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, project_id, result_json, created_at
FROM analyses
WHERE project_id=?
ORDER BY created_at DESC, id DESC
LIMIT 1`, projectID)
	return scanRecord(row)
}

// Paginate returns a page of records ordered newest first.
func (r *AnalysisRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Record, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	rows, err := r.db.QueryContext(ctx, `
SELECT id, project_id, result_json, created_at
FROM analyses
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row interface{ Scan(...any) error }) (*domain.Record, error) {
	var (
		rec     domain.Record
		id      string
		created int64
	)
	if err := row.Scan(&id, &rec.ProjectID, &rec.ResultJSON, &created); err != nil {
		return nil, err
	}
	rec.ID = domain.RecordID(id)
	rec.CreatedAt = time.Unix(created, 0).UTC()
	return &rec, nil
}
