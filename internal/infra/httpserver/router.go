package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"cryptoscout/internal/application/consensus"
	"cryptoscout/internal/application/scout"
	"cryptoscout/internal/domain/analysis"
	"cryptoscout/internal/middleware"
)

type Router struct {
	svc *scout.Service
}

// NewRouter builds the REST facade over the scout service.
func NewRouter(svc *scout.Service, limiter *middleware.RateLimiter) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.Logging)
	if limiter != nil {
		mux.Use(limiter.Middleware)
	}

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Get("/projects", r.wrap(r.handleListProjects))
	mux.Get("/projects/{id}", r.wrap(r.handleGetProject))
	mux.Post("/projects/{id}/analyze", r.wrap(r.handleAnalyze))
	mux.Get("/analyses", r.wrap(r.handleListAnalyses))
	mux.Get("/summary", r.wrap(r.handleSummary))
	mux.Post("/scan", r.wrap(r.handleScan))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, consensus.ErrMissingProjectID) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// GET /projects?limit=50
func (r *Router) handleListProjects(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.svc.Projects.Latest(req.Context(), limit)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /projects/{id}
// Returns the project and, if present, its latest consensus result.
func (r *Router) handleGetProject(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	p, err := r.svc.Projects.Get(req.Context(), id)
	if err != nil {
		return err
	}

	resp := struct {
		Project  any             `json:"project"`
		Analysis json.RawMessage `json:"analysis,omitempty"`
	}{Project: p}

	rec, err := r.svc.Analyses.LatestByProject(req.Context(), id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if rec != nil {
		resp.Analysis = json.RawMessage(rec.ResultJSON)
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// POST /projects/{id}/analyze
// Runs the consensus pipeline synchronously and returns the result.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	p, err := r.svc.Projects.Get(req.Context(), id)
	if err != nil {
		return err
	}

	res, err := r.svc.AnalyzeOne(req.Context(), *p)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(res)
}

// GET /analyses?page=1&page_size=20
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	recs, err := r.svc.Analyses.Paginate(req.Context(), page, size)
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []*analysis.Record{}
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(recs)
}

// GET /summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))
	if days <= 0 {
		days = 7
	}

	summary, err := r.svc.Projects.Summary(req.Context(), days)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

// POST /scan
// Kicks off a scan-and-analyze cycle in the background and returns 202.
func (r *Router) handleScan(w http.ResponseWriter, req *http.Request) error {
	go func() {
		if err := r.svc.RunCycle(context.Background()); err != nil {
			log.Printf("[ERROR] background cycle: %v", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(map[string]string{
		"status":  "queued",
		"message": "scan cycle started in background",
	})
}
