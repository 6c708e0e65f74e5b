package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cryptoscout/internal/application"
	"cryptoscout/internal/application/scout"
	"cryptoscout/internal/domain/analysis"
	"cryptoscout/internal/domain/projects"
)

type fakeProjectRepo struct {
	byID map[string]projects.Project
}

func (r *fakeProjectRepo) SaveBatch(ctx context.Context, batch []projects.Project) (int, error) {
	return len(batch), nil
}

func (r *fakeProjectRepo) Get(ctx context.Context, id string) (*projects.Project, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (r *fakeProjectRepo) Latest(ctx context.Context, limit int) ([]projects.Project, error) {
	var out []projects.Project
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProjectRepo) Unanalyzed(ctx context.Context, limit int) ([]projects.Project, error) {
	return nil, nil
}

func (r *fakeProjectRepo) MarkAnalyzed(ctx context.Context, id string, score float64, verdict string) error {
	return nil
}

func (r *fakeProjectRepo) Summary(ctx context.Context, sinceDays int) (projects.Summary, error) {
	return projects.Summary{Total: 3, Analyzed: 2, StrongBuy: 1}, nil
}

type fakeAnalysisRepo struct {
	latest *analysis.Record
}

func (r *fakeAnalysisRepo) Save(ctx context.Context, rec *analysis.Record) error { return nil }

func (r *fakeAnalysisRepo) LatestByProject(ctx context.Context, projectID string) (*analysis.Record, error) {
	if r.latest == nil {
		return nil, sql.ErrNoRows
	}
	return r.latest, nil
}

func (r *fakeAnalysisRepo) Paginate(ctx context.Context, page, pageSize int) ([]*analysis.Record, error) {
	if r.latest == nil {
		return nil, nil
	}
	return []*analysis.Record{r.latest}, nil
}

type fakeAnalyzer struct{ score float64 }

func (a *fakeAnalyzer) Analyze(ctx context.Context, p projects.Project) (analysis.ConsensusResult, error) {
	return analysis.ConsensusResult{
		ProjectID:    p.ID,
		FinalScore:   a.score,
		FinalVerdict: analysis.VerdictFromScore(a.score),
		AnalyzedAt:   time.Now(),
	}, nil
}

func newTestRouter(repo *fakeProjectRepo, analyses *fakeAnalysisRepo) http.Handler {
	svc := &scout.Service{
		Projects: repo,
		Analyses: analyses,
		Analyzer: &fakeAnalyzer{score: 7.2},
		Clock:    application.SystemClock{},
	}
	return NewRouter(svc, nil)
}

func TestHealth(t *testing.T) {
	h := newTestRouter(&fakeProjectRepo{}, &fakeAnalysisRepo{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestGetProjectWithAnalysis(t *testing.T) {
	repo := &fakeProjectRepo{byID: map[string]projects.Project{
		"p1": {ID: "p1", Name: "One"},
	}}
	analyses := &fakeAnalysisRepo{latest: &analysis.Record{
		ID: "r1", ProjectID: "p1", ResultJSON: `{"final_score":7.5}`,
	}}
	h := newTestRouter(repo, analyses)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/p1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Project  projects.Project `json:"project"`
		Analysis json.RawMessage  `json:"analysis"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Project.ID != "p1" {
		t.Errorf("project = %+v", body.Project)
	}
	if string(body.Analysis) != `{"final_score":7.5}` {
		t.Errorf("analysis = %s", body.Analysis)
	}
}

func TestGetProjectNotFound(t *testing.T) {
	h := newTestRouter(&fakeProjectRepo{byID: map[string]projects.Project{}}, &fakeAnalysisRepo{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	repo := &fakeProjectRepo{byID: map[string]projects.Project{
		"p1": {ID: "p1", Name: "One"},
	}}
	h := newTestRouter(repo, &fakeAnalysisRepo{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects/p1/analyze", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res analysis.ConsensusResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.FinalScore != 7.2 || res.FinalVerdict != analysis.VerdictBuy {
		t.Errorf("result = %+v", res)
	}
}

func TestListAnalysesEmptyPage(t *testing.T) {
	h := newTestRouter(&fakeProjectRepo{}, &fakeAnalysisRepo{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyses?page=3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty array", got)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	h := newTestRouter(&fakeProjectRepo{}, &fakeAnalysisRepo{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary?days=30", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var s projects.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatal(err)
	}
	if s.Total != 3 || s.StrongBuy != 1 {
		t.Errorf("summary = %+v", s)
	}
}

func TestScanEndpointReturnsAccepted(t *testing.T) {
	h := newTestRouter(&fakeProjectRepo{byID: map[string]projects.Project{}}, &fakeAnalysisRepo{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scan", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
}
