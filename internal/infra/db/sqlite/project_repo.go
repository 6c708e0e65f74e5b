package sqlite

import (
	"context"
	"database/sql"
	"time"

	domain "cryptoscout/internal/domain/projects"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// SaveBatch inserts new projects, ignoring ones already known. Returns the
// number actually inserted.
func (r *ProjectRepository) SaveBatch(ctx context.Context, batch []domain.Project) (int, error) {
	const q = `
INSERT OR IGNORE INTO projects
  (id, name, category, source, description, url, token_symbol, tvl, status, discovered_at)
VALUES (?,?,?,?,?,?,?,?,?,?);
`
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, p := range batch {
		status := p.Status
		if status == "" {
			status = domain.StatusNew
		}
		discovered := p.DiscoveredAt
		if discovered.IsZero() {
			discovered = time.Now()
		}
		res, err := tx.ExecContext(ctx, q,
			p.ID, p.Name, p.Category, p.Source, p.Description, p.URL,
			p.TokenSymbol, p.TVL, string(status), discovered.Unix())
		if err != nil {
			return 0, err
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

const projectColumns = `id, name, category, source, description, url, token_symbol, tvl, status, discovered_at, confidence_score, verdict`

func scanProject(row interface{ Scan(...any) error }) (*domain.Project, error) {
	var (
		p          domain.Project
		status     string
		discovered int64
		score      sql.NullFloat64
		verdict    sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Source, &p.Description,
		&p.URL, &p.TokenSymbol, &p.TVL, &status, &discovered, &score, &verdict); err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	p.DiscoveredAt = time.Unix(discovered, 0).UTC()
	p.ConfidenceScore = score.Float64
	p.Verdict = verdict.String
	return &p, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id=?`, id)
	return scanProject(row)
}

func (r *ProjectRepository) Latest(ctx context.Context, limit int) ([]domain.Project, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.list(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY discovered_at DESC, id LIMIT ?`, limit)
}

func (r *ProjectRepository) Unanalyzed(ctx context.Context, limit int) ([]domain.Project, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.list(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE status=? ORDER BY discovered_at DESC, id LIMIT ?`,
		string(domain.StatusNew), limit)
}

func (r *ProjectRepository) list(ctx context.Context, q string, args ...any) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) MarkAnalyzed(ctx context.Context, id string, score float64, verdict string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE projects
SET status=?, confidence_score=?, verdict=?
WHERE id=?`,
		string(domain.StatusAnalyzed), score, verdict, id)
	return err
}

// Summary aggregates project counts discovered in the last sinceDays days.
func (r *ProjectRepository) Summary(ctx context.Context, sinceDays int) (domain.Summary, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cutoff := time.Now().AddDate(0, 0, -sinceDays).Unix()

	const q = `
SELECT
  COUNT(*),
  SUM(CASE WHEN status='new' THEN 1 ELSE 0 END),
  SUM(CASE WHEN status='analyzed' THEN 1 ELSE 0 END),
  SUM(CASE WHEN verdict='BUY' THEN 1 ELSE 0 END),
  SUM(CASE WHEN verdict='STRONG_BUY' THEN 1 ELSE 0 END),
  SUM(CASE WHEN verdict='SCAM' THEN 1 ELSE 0 END)
FROM projects
WHERE discovered_at >= ?`

	var (
		s                                     domain.Summary
		newN, analyzed, buys, strong, scams sql.NullInt64
	)
	if err := r.db.QueryRowContext(ctx, q, cutoff).Scan(
		&s.Total, &newN, &analyzed, &buys, &strong, &scams); err != nil {
		return domain.Summary{}, err
	}
	s.New = int(newN.Int64)
	s.Analyzed = int(analyzed.Int64)
	s.Buys = int(buys.Int64)
	s.StrongBuy = int(strong.Int64)
	s.Scams = int(scams.Int64)
	return s, nil
}
